package flash

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileDevice_NewImageIsErased(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flash.img")

	dev, err := OpenFileDevice(path, testGeometry())
	require.NoError(t, err)
	defer dev.Close()

	window, err := dev.ReadMapped(testGeometry().TargetBase, 4096)
	require.NoError(t, err)
	for _, b := range window {
		require.Equal(t, byte(ErasedByte), b)
	}
}

func TestFileDevice_PersistsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flash.img")
	abs := testGeometry().TargetBase + 4096
	data := []byte("survives the reopen")

	dev, err := OpenFileDevice(path, testGeometry())
	require.NoError(t, err)
	require.NoError(t, dev.Program(abs, data))
	require.NoError(t, dev.Close())

	dev, err = OpenFileDevice(path, testGeometry())
	require.NoError(t, err)
	defer dev.Close()

	window, err := dev.ReadMapped(abs, uint64(len(data)))
	require.NoError(t, err)
	assert.True(t, bytes.Equal(data, window))
}

func TestFileDevice_EraseFills(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flash.img")
	abs := testGeometry().TargetBase

	dev, err := OpenFileDevice(path, testGeometry())
	require.NoError(t, err)
	defer dev.Close()

	require.NoError(t, dev.Program(abs, []byte{1, 2, 3, 4}))
	require.NoError(t, dev.Erase(abs, testGeometry().BlockSize))

	window, err := dev.ReadMapped(abs, 8)
	require.NoError(t, err)
	for _, b := range window {
		assert.Equal(t, byte(ErasedByte), b)
	}
}

func TestFileDevice_RejectsMismatchedImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flash.img")

	dev, err := OpenFileDevice(path, testGeometry())
	require.NoError(t, err)
	require.NoError(t, dev.Close())

	// Reopen with a different device size.
	other := testGeometry()
	other.DeviceSize *= 2
	_, err = OpenFileDevice(path, other)
	assert.Error(t, err)
}

func TestFileDevice_Bounds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flash.img")

	dev, err := OpenFileDevice(path, testGeometry())
	require.NoError(t, err)
	defer dev.Close()

	g := testGeometry()
	assert.ErrorIs(t, dev.Program(g.End(), []byte{1}), ErrOutOfBounds)
	_, err = dev.ReadMapped(g.TargetBase-1, 4)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}
