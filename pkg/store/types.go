package store

import (
	"github.com/ssargent/muninn/pkg/flash"
)

// RecordStoreConfig holds configuration for a record store
type RecordStoreConfig struct {
	Geometry flash.Geometry // device geometry, never hard-coded by the core
	Device   flash.Device   // erase/program/read primitives
}

// BlockStoreConfig holds configuration for the block store
type BlockStoreConfig struct {
	Geometry flash.Geometry
	Device   flash.Device
}

// Errors
var (
	ErrMisalignedOffset       = &StoreError{"offset is not block-aligned"}
	ErrPayloadTooLarge        = &StoreError{"payload exceeds single-block capacity"}
	ErrOutOfRange             = &StoreError{"access beyond device limits"}
	ErrNullOrEmptyPayload     = &StoreError{"payload is nil or empty"}
	ErrInvalidOrUninitialized = &StoreError{"record is invalid or uninitialized"}
	ErrAllocationFailure      = &StoreError{"record claims more payload than a block can hold"}
)

// StoreError represents a record store error
type StoreError struct {
	Message string
}

func (e *StoreError) Error() string {
	return e.Message
}
