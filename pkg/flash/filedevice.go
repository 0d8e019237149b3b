package flash

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileDevice persists the flash image in a regular file so CLI and
// server invocations observe each other's writes. Semantics match
// MemDevice: erase fills with ErasedByte, program overwrites in place.
// Interrupt control is bookkeeping only; a host process has nothing to
// mask.
type FileDevice struct {
	geom Geometry
	file *os.File

	irqDepth int
	irqToken uint32
}

// OpenFileDevice opens (or creates) the device image at path. A new
// image is initialized to the erased state; an existing image must
// match the geometry's device size.
func OpenFileDevice(path string, geom Geometry) (*FileDevice, error) {
	if err := geom.Validate(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return nil, err
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}

	d := &FileDevice{geom: geom, file: file}

	switch {
	case stat.Size() == 0:
		if err := d.initialize(); err != nil {
			file.Close()
			return nil, err
		}
	case stat.Size() != int64(geom.DeviceSize):
		file.Close()
		return nil, fmt.Errorf("flash: image %s is %d bytes, geometry expects %d", path, stat.Size(), geom.DeviceSize)
	}

	return d, nil
}

// initialize writes a fully-erased image block by block.
func (d *FileDevice) initialize() error {
	blank := make([]byte, d.geom.BlockSize)
	for i := range blank {
		blank[i] = ErasedByte
	}
	for off := uint64(0); off < d.geom.DeviceSize; off += d.geom.BlockSize {
		if _, err := d.file.WriteAt(blank, int64(off)); err != nil {
			return err
		}
	}
	return nil
}

// Geometry returns the device geometry.
func (d *FileDevice) Geometry() Geometry {
	return d.geom
}

func (d *FileDevice) position(absOffset, length uint64) (int64, error) {
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
	return int64(start), nil
}

// Erase fills [absOffset, absOffset+size) with the erased-cell value.
func (d *FileDevice) Erase(absOffset, size uint64) error {
	pos, err := d.position(absOffset, size)
	if err != nil {
		return err
	}

	blank := make([]byte, size)
	for i := range blank {
		blank[i] = ErasedByte
	}
	_, err = d.file.WriteAt(blank, pos)
	return err
}

// Program writes data into the image starting at absOffset.
func (d *FileDevice) Program(absOffset uint64, data []byte) error {
	pos, err := d.position(absOffset, uint64(len(data)))
	if err != nil {
		return err
	}
	_, err = d.file.WriteAt(data, pos)
	return err
}

// ReadMapped reads length bytes at absOffset. Unlike MemDevice the
// returned slice is a private copy, which still satisfies the Device
// contract.
func (d *FileDevice) ReadMapped(absOffset, length uint64) ([]byte, error) {
	pos, err := d.position(absOffset, length)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, length)
	if _, err := d.file.ReadAt(buf, pos); err != nil {
		return nil, err
	}
	return buf, nil
}

// DisableInterrupts records entry into a critical section.
func (d *FileDevice) DisableInterrupts() uint32 {
	d.irqDepth++
	d.irqToken++
	return d.irqToken
}

// RestoreInterrupts ends the critical section.
func (d *FileDevice) RestoreInterrupts(token uint32) {
	if token == d.irqToken {
		d.irqDepth--
		d.irqToken--
	}
}

// Sync flushes the image to stable storage.
func (d *FileDevice) Sync() error {
	return d.file.Sync()
}

// Close releases the underlying file.
func (d *FileDevice) Close() error {
	return d.file.Close()
}
