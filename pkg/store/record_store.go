package store

import (
	"fmt"
	"sync"

	"github.com/ssargent/muninn/pkg/codec"
	"github.com/ssargent/muninn/pkg/flash"
)

// RecordStore manages a single logical record per erasable flash
// block: encode/decode through the codec, validation through the
// bounds checker, and the erase+program sequence through the block
// store. Logical offsets are relative to the configured target base
// and must land on a block boundary.
//
// One RecordStore serializes its own operations with a mutex. Two
// stores (or two processes) driving the same offset concurrently is
// undefined behavior; callers give each block a single owner.
type RecordStore struct {
	config    RecordStoreConfig
	validator *Validator
	blocks    *BlockStore
	codec     *codec.RecordCodec
	mutex     sync.Mutex
}

// NewRecordStore creates a record store over the configured device.
func NewRecordStore(config RecordStoreConfig) (*RecordStore, error) {
	if config.Device == nil {
		return nil, fmt.Errorf("store: device is required")
	}
	if err := config.Geometry.Validate(); err != nil {
		return nil, err
	}

	return &RecordStore{
		config:    config,
		validator: NewValidator(config.Geometry),
		blocks: NewBlockStore(BlockStoreConfig{
			Geometry: config.Geometry,
			Device:   config.Device,
		}),
		codec: codec.NewRecordCodec(),
	}, nil
}

// Write stores payload as the record for the block at offset. The
// block's previous content is destroyed and replaced; the write
// counter read from the prior header (0 for a never-used block) is
// incremented and persisted with the new record.
func (rs *RecordStore) Write(offset uint64, payload []byte) error {
	rs.mutex.Lock()
	defer rs.mutex.Unlock()

	abs, err := rs.validator.Validate(offset, uint64(len(payload)))
	if err != nil {
		return err
	}

	if len(payload) == 0 {
		return ErrNullOrEmptyPayload
	}

	header, err := rs.blocks.ReadHeader(abs)
	if err != nil {
		return err
	}

	buf, err := rs.codec.Encode(codec.NewRecord(payload, header.WriteCount+1))
	if err != nil {
		return err
	}

	return rs.blocks.EraseAndProgram(abs, buf)
}

// Read copies the record payload at offset into buf and returns the
// number of bytes copied: min(len(buf), payload length). It fails
// with ErrInvalidOrUninitialized when the block holds no readable
// payload, whether never written or erased since the last write.
func (rs *RecordStore) Read(offset uint64, buf []byte) (int, error) {
	rs.mutex.Lock()
	defer rs.mutex.Unlock()

	record, err := rs.readRecord(offset)
	if err != nil {
		return 0, err
	}

	return copy(buf, record.Payload), nil
}

// ReadRecord returns the decoded record at offset, payload included.
// The payload is freshly allocated and owned by the caller.
func (rs *RecordStore) ReadRecord(offset uint64) (*codec.Record, error) {
	rs.mutex.Lock()
	defer rs.mutex.Unlock()

	return rs.readRecord(offset)
}

// readRecord reads header then payload without acquiring the mutex
// This is for internal use when the mutex is already held
func (rs *RecordStore) readRecord(offset uint64) (*codec.Record, error) {
	// Payload length is unknown until the header is read, so validate
	// with length 0 first.
	abs, err := rs.validator.Validate(offset, 0)
	if err != nil {
		return nil, err
	}

	raw, err := rs.blocks.Read(abs, codec.MetadataSize)
	if err != nil {
		return nil, err
	}
	if codec.IsUnwritten(raw) {
		return nil, ErrInvalidOrUninitialized
	}

	header, err := rs.codec.DecodeHeader(raw)
	if err != nil {
		return nil, err
	}

	if !header.Valid || header.PayloadLen == 0 {
		return nil, ErrInvalidOrUninitialized
	}

	// A header can only claim what one block holds; anything larger is
	// corruption and no buffer is allocated for it. The offset itself
	// was validated above, and a within-capacity record cannot extend
	// past its own block, so no further range check is needed.
	if header.PayloadLen > rs.validator.Capacity() {
		return nil, ErrAllocationFailure
	}

	full, err := rs.blocks.Read(abs, codec.MetadataSize+header.PayloadLen)
	if err != nil {
		return nil, err
	}

	// Decode copies the payload out of the mapped window.
	return rs.codec.Decode(full)
}

// Erase invalidates the record at offset while preserving its write
// counter. The payload is destroyed; the counter is carried into a
// valid=false header.
func (rs *RecordStore) Erase(offset uint64) error {
	rs.mutex.Lock()
	defer rs.mutex.Unlock()

	abs, err := rs.validator.Validate(offset, 0)
	if err != nil {
		return err
	}

	return rs.blocks.PreserveMetadataAcrossErase(abs)
}

// WriteCount returns the write cycle counter for the block at offset,
// or 0 on any validation or read failure. A 0 is ambiguous between
// "never written" and "unreadable"; callers that need the distinction
// use Read and inspect the error.
func (rs *RecordStore) WriteCount(offset uint64) uint32 {
	rs.mutex.Lock()
	defer rs.mutex.Unlock()

	header, err := rs.readHeader(offset)
	if err != nil {
		return 0
	}
	return header.WriteCount
}

// PayloadLength returns the stored payload length for the block at
// offset, or 0 on any validation or read failure. As with WriteCount,
// 0 is ambiguous with a legitimately empty block.
func (rs *RecordStore) PayloadLength(offset uint64) uint64 {
	rs.mutex.Lock()
	defer rs.mutex.Unlock()

	header, err := rs.readHeader(offset)
	if err != nil {
		return 0
	}
	return header.PayloadLen
}

// readHeader validates offset and reads only the metadata header
// without acquiring the mutex
func (rs *RecordStore) readHeader(offset uint64) (*codec.Record, error) {
	abs, err := rs.validator.Validate(offset, 0)
	if err != nil {
		return nil, err
	}
	return rs.blocks.ReadHeader(abs)
}

// Capacity returns the largest payload a single block can hold.
func (rs *RecordStore) Capacity() uint64 {
	return rs.validator.Capacity()
}

// Geometry returns the configured device geometry.
func (rs *RecordStore) Geometry() flash.Geometry {
	return rs.config.Geometry
}
