package store

import (
	"github.com/ssargent/muninn/pkg/codec"
	"github.com/ssargent/muninn/pkg/flash"
)

// Validator performs the alignment, size and bounds checks that must
// pass before any destructive primitive call. The erase and program
// primitives have no bounds checking of their own, so every public
// store operation funnels through here first.
//
// Validation is pure: no check touches the device.
type Validator struct {
	geom flash.Geometry
}

// NewValidator creates a validator for the given geometry.
func NewValidator(geom flash.Geometry) *Validator {
	return &Validator{geom: geom}
}

// Capacity returns the largest payload one block can carry alongside
// the metadata header.
func (v *Validator) Capacity() uint64 {
	return v.geom.BlockSize - codec.MetadataSize
}

// Validate checks a logical offset and intended payload length, in
// order: block alignment of the absolute offset, payload fit within
// one block, and device range for the full serialized record. It
// returns the absolute offset on success. Operations that do not yet
// know a payload length pass 0.
func (v *Validator) Validate(offset, payloadLen uint64) (uint64, error) {
	// The target base is block-aligned (Geometry.Validate), so the
	// absolute offset is aligned exactly when the logical one is.
	// Checking the logical offset also keeps the check immune to
	// uint64 wraparound on huge offsets.
	if offset%v.geom.BlockSize != 0 {
		return 0, ErrMisalignedOffset
	}

	if payloadLen > v.Capacity() {
		return 0, ErrPayloadTooLarge
	}

	// Overflow-safe range check: payloadLen is at most one block here,
	// so the left side cannot wrap, and the subtraction stays inside
	// uint64 once offset is known to be in the window.
	if offset >= v.geom.DeviceSize || codec.MetadataSize+payloadLen > v.geom.DeviceSize-offset {
		return 0, ErrOutOfRange
	}

	return v.geom.TargetBase + offset, nil
}
