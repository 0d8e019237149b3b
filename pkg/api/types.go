package api

import (
	"github.com/ssargent/muninn/pkg/codec"
	"github.com/ssargent/muninn/pkg/flash"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// RecordInfo is the metadata view of a block returned by the info
// endpoint.
type RecordInfo struct {
	Offset        uint64 `json:"offset"`
	Valid         bool   `json:"valid"`
	WriteCount    uint32 `json:"write_count"`
	PayloadLength uint64 `json:"payload_length"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Port   int
	Bind   string
	APIKey string
}

// IRecordStore defines the record store operations the server needs
type IRecordStore interface {
	Write(offset uint64, payload []byte) error
	ReadRecord(offset uint64) (*codec.Record, error)
	Erase(offset uint64) error
	WriteCount(offset uint64) uint32
	PayloadLength(offset uint64) uint64
	Capacity() uint64
	Geometry() flash.Geometry
}
