package flash

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGeometry() Geometry {
	return Geometry{
		BlockSize:  4096,
		TargetBase: 256 * 1024,
		DeviceSize: 64 * 1024,
	}
}

func TestGeometry_Validate(t *testing.T) {
	testCases := []struct {
		name    string
		geom    Geometry
		wantErr bool
	}{
		{
			name: "valid",
			geom: testGeometry(),
		},
		{
			name:    "zero block size",
			geom:    Geometry{BlockSize: 0, DeviceSize: 4096},
			wantErr: true,
		},
		{
			name:    "zero device size",
			geom:    Geometry{BlockSize: 4096},
			wantErr: true,
		},
		{
			name:    "device not a multiple of block",
			geom:    Geometry{BlockSize: 4096, DeviceSize: 6000},
			wantErr: true,
		},
		{
			name:    "unaligned target base",
			geom:    Geometry{BlockSize: 4096, TargetBase: 100, DeviceSize: 8192},
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.geom.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGeometry_BlockStart(t *testing.T) {
	g := testGeometry()
	assert.Equal(t, uint64(256*1024), g.BlockStart(256*1024))
	assert.Equal(t, uint64(256*1024), g.BlockStart(256*1024+100))
	assert.Equal(t, uint64(256*1024+4096), g.BlockStart(256*1024+4096+4095))
}

// Validate accepts any block size that divides the device size, so
// the rounding must hold for non-power-of-two blocks too.
func TestGeometry_BlockStartNonPowerOfTwo(t *testing.T) {
	g := Geometry{BlockSize: 100, TargetBase: 0, DeviceSize: 1000}
	require.NoError(t, g.Validate())

	assert.Equal(t, uint64(0), g.BlockStart(0))
	assert.Equal(t, uint64(0), g.BlockStart(99))
	assert.Equal(t, uint64(100), g.BlockStart(100))
	assert.Equal(t, uint64(100), g.BlockStart(104))
	assert.Equal(t, uint64(900), g.BlockStart(999))
}

func TestMemDevice_StartsErased(t *testing.T) {
	dev, err := NewMemDevice(testGeometry())
	require.NoError(t, err)

	window, err := dev.ReadMapped(testGeometry().TargetBase, 4096)
	require.NoError(t, err)

	for _, b := range window {
		require.Equal(t, byte(ErasedByte), b)
	}
}

func TestMemDevice_ProgramAndRead(t *testing.T) {
	dev, err := NewMemDevice(testGeometry())
	require.NoError(t, err)

	abs := testGeometry().TargetBase + 4096
	data := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	require.NoError(t, dev.Program(abs, data))

	window, err := dev.ReadMapped(abs, 4)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(data, window))

	// The window aliases device memory: an erase rewrites it in place.
	require.NoError(t, dev.Erase(abs, testGeometry().BlockSize))
	assert.Equal(t, byte(ErasedByte), window[0])
}

func TestMemDevice_Bounds(t *testing.T) {
	dev, err := NewMemDevice(testGeometry())
	require.NoError(t, err)

	g := testGeometry()

	assert.ErrorIs(t, dev.Program(g.TargetBase-1, []byte{1}), ErrOutOfBounds)
	assert.ErrorIs(t, dev.Program(g.End(), []byte{1}), ErrOutOfBounds)
	assert.ErrorIs(t, dev.Erase(g.End()-4096, 8192), ErrOutOfBounds)

	_, err = dev.ReadMapped(g.End()-2, 4)
	assert.ErrorIs(t, err, ErrOutOfBounds)

	_, err = dev.ReadMapped(g.TargetBase, 0)
	assert.ErrorIs(t, err, ErrZeroLength)
}

func TestMemDevice_InterruptDiscipline(t *testing.T) {
	dev, err := NewMemDevice(testGeometry())
	require.NoError(t, err)

	assert.False(t, dev.InterruptsDisabled())

	token := dev.DisableInterrupts()
	assert.True(t, dev.InterruptsDisabled())

	dev.RestoreInterrupts(token)
	assert.False(t, dev.InterruptsDisabled())
}

func TestMemDevice_OperationCounters(t *testing.T) {
	dev, err := NewMemDevice(testGeometry())
	require.NoError(t, err)

	abs := testGeometry().TargetBase
	require.NoError(t, dev.Erase(abs, 4096))
	require.NoError(t, dev.Program(abs, []byte{1, 2, 3}))
	require.NoError(t, dev.Program(abs+8, []byte{4}))

	assert.Equal(t, 1, dev.EraseCount())
	assert.Equal(t, 2, dev.ProgramCount())
}
