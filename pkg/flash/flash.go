package flash

import (
	"errors"
	"fmt"
)

// Errors reported by device implementations. The record store performs
// its own validation before touching a device; these exist so the
// simulators are safe to use on their own.
var (
	ErrOutOfBounds = errors.New("flash: access outside device bounds")
	ErrZeroLength  = errors.New("flash: zero-length access")
)

// Geometry describes the addressable flash window a store operates on.
// BlockSize is the minimal erasable unit. TargetBase is the absolute
// address where the window begins, DeviceSize the window length in
// bytes. Logical offsets handed to the record store are relative to
// TargetBase.
type Geometry struct {
	BlockSize  uint64 `yaml:"block_size"`
	TargetBase uint64 `yaml:"target_base"`
	DeviceSize uint64 `yaml:"device_size"`
}

// Validate checks that the geometry is internally consistent.
func (g Geometry) Validate() error {
	if g.BlockSize == 0 {
		return fmt.Errorf("flash: block size must be non-zero")
	}
	if g.DeviceSize == 0 {
		return fmt.Errorf("flash: device size must be non-zero")
	}
	if g.DeviceSize%g.BlockSize != 0 {
		return fmt.Errorf("flash: device size %d is not a multiple of block size %d", g.DeviceSize, g.BlockSize)
	}
	if g.TargetBase%g.BlockSize != 0 {
		return fmt.Errorf("flash: target base %d is not block-aligned", g.TargetBase)
	}
	return nil
}

// End returns the first absolute address past the device window.
func (g Geometry) End() uint64 {
	return g.TargetBase + g.DeviceSize
}

// BlockStart returns the absolute address of the start of the block
// containing abs. Block sizes are not required to be powers of two,
// so this rounds down by modulo rather than masking.
func (g Geometry) BlockStart(abs uint64) uint64 {
	return abs - abs%g.BlockSize
}

// Device is the set of primitives the record store consumes. Erase and
// Program are destructive and perform no bounds checking beyond the
// device's own window; callers validate first.
//
// ReadMapped returns a window into the device's mapped memory. The
// returned slice may alias device storage and is only valid until the
// next Erase or Program; callers that keep payload bytes must copy
// them out.
//
// DisableInterrupts and RestoreInterrupts model the target's
// save-and-disable / restore pair. Simulated devices implement them as
// bookkeeping so tests can assert the critical-section discipline.
type Device interface {
	Erase(absOffset, size uint64) error
	Program(absOffset uint64, data []byte) error
	ReadMapped(absOffset, length uint64) ([]byte, error)
	DisableInterrupts() uint32
	RestoreInterrupts(token uint32)
}

// ErasedByte is the value every cell reads as after an erase and
// before the first program. A header of ErasedByte values is the
// "unwritten" marker for a block.
const ErasedByte = 0xFF
