package flash

import "fmt"

// MemDevice is a flash simulator backed by a byte slice. Erase fills
// the range with ErasedByte, Program copies bytes in, and ReadMapped
// returns a subslice aliasing device memory, matching how an
// execute-in-place flash window behaves on real hardware.
type MemDevice struct {
	geom Geometry
	mem  []byte

	irqDepth int
	irqToken uint32

	erases   int
	programs int
}

// NewMemDevice creates a fully-erased in-memory device for the given
// geometry.
func NewMemDevice(geom Geometry) (*MemDevice, error) {
	if err := geom.Validate(); err != nil {
		return nil, err
	}

	mem := make([]byte, geom.DeviceSize)
	for i := range mem {
		mem[i] = ErasedByte
	}

	return &MemDevice{geom: geom, mem: mem}, nil
}

// Geometry returns the device geometry.
func (d *MemDevice) Geometry() Geometry {
	return d.geom
}

func (d *MemDevice) index(absOffset, length uint64) (uint64, error) {
	if length == 0 {
		return 0, ErrZeroLength
	}
	if absOffset < d.geom.TargetBase {
		return 0, fmt.Errorf("%w: address %#x below target base %#x", ErrOutOfBounds, absOffset, d.geom.TargetBase)
	}
	start := absOffset - d.geom.TargetBase
	if start+length > d.geom.DeviceSize {
		return 0, fmt.Errorf("%w: address %#x length %d exceeds device end %#x", ErrOutOfBounds, absOffset, length, d.geom.End())
	}
	return start, nil
}

// Erase fills [absOffset, absOffset+size) with the erased-cell value.
func (d *MemDevice) Erase(absOffset, size uint64) error {
	start, err := d.index(absOffset, size)
	if err != nil {
		return err
	}

	for i := start; i < start+size; i++ {
		d.mem[i] = ErasedByte
	}
	d.erases++
	return nil
}

// Program copies data into the device starting at absOffset.
func (d *MemDevice) Program(absOffset uint64, data []byte) error {
	start, err := d.index(absOffset, uint64(len(data)))
	if err != nil {
		return err
	}

	copy(d.mem[start:], data)
	d.programs++
	return nil
}

// ReadMapped returns a window into device memory. The slice aliases
// the simulated flash; it is invalidated by the next Erase or Program.
func (d *MemDevice) ReadMapped(absOffset, length uint64) ([]byte, error) {
	start, err := d.index(absOffset, length)
	if err != nil {
		return nil, err
	}
	return d.mem[start : start+length], nil
}

// DisableInterrupts records entry into a critical section and returns
// a token to hand back to RestoreInterrupts.
func (d *MemDevice) DisableInterrupts() uint32 {
	d.irqDepth++
	d.irqToken++
	return d.irqToken
}

// RestoreInterrupts ends the critical section opened by the matching
// DisableInterrupts call.
func (d *MemDevice) RestoreInterrupts(token uint32) {
	if token != d.irqToken {
		panic(fmt.Sprintf("flash: interrupt restore out of order: token %d, expected %d", token, d.irqToken))
	}
	d.irqDepth--
	d.irqToken--
}

// InterruptsDisabled reports whether the device is currently inside a
// critical section. Test hook.
func (d *MemDevice) InterruptsDisabled() bool {
	return d.irqDepth > 0
}

// EraseCount returns the number of erase operations performed. Test hook.
func (d *MemDevice) EraseCount() int {
	return d.erases
}

// ProgramCount returns the number of program operations performed. Test hook.
func (d *MemDevice) ProgramCount() int {
	return d.programs
}
