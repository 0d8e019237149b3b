package codec

import (
	"encoding/binary"
	"fmt"
	"math"
)

// DeviceConfigSize is the fixed serialized size of a DeviceConfig:
// ID(4) + SensorValue(4) + Name(10).
const DeviceConfigSize = 18

// DeviceConfig is a fixed-layout structure applications commonly park
// in the record payload: a device identity plus a calibration reading.
// It doubles as the reference for how to layer typed structures over
// the raw payload bytes.
type DeviceConfig struct {
	ID          uint32
	SensorValue float32
	Name        [10]byte
}

// SetName copies s into the fixed-width name field, truncating if
// needed.
func (dc *DeviceConfig) SetName(s string) {
	for i := range dc.Name {
		dc.Name[i] = 0
	}
	copy(dc.Name[:], s)
}

// NameString returns the name field up to its first NUL byte.
func (dc *DeviceConfig) NameString() string {
	for i, b := range dc.Name {
		if b == 0 {
			return string(dc.Name[:i])
		}
	}
	return string(dc.Name[:])
}

// EncodeDeviceConfig serializes a DeviceConfig into its fixed binary
// layout, little-endian like the record header.
func EncodeDeviceConfig(dc *DeviceConfig) []byte {
	buf := make([]byte, DeviceConfigSize)
	binary.LittleEndian.PutUint32(buf[0:], dc.ID)
	binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(dc.SensorValue))
	copy(buf[8:], dc.Name[:])
	return buf
}

// DecodeDeviceConfig deserializes a DeviceConfig from buf.
func DecodeDeviceConfig(buf []byte) (*DeviceConfig, error) {
	if len(buf) < DeviceConfigSize {
		return nil, fmt.Errorf("%w: %d bytes, device config needs %d", ErrMalformedRecord, len(buf), DeviceConfigSize)
	}

	dc := &DeviceConfig{
		ID:          binary.LittleEndian.Uint32(buf[0:4]),
		SensorValue: math.Float32frombits(binary.LittleEndian.Uint32(buf[4:8])),
	}
	copy(dc.Name[:], buf[8:DeviceConfigSize])
	return dc, nil
}
