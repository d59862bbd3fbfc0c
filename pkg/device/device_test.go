package device

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// deviceUnderTest lets the shared conformance tests run against every
// implementation.
type deviceUnderTest struct {
	name string
	open func(t *testing.T, size uint32) Device
}

func allDevices() []deviceUnderTest {
	return []deviceUnderTest{
		{
			name: "mem",
			open: func(t *testing.T, size uint32) Device {
				return NewMemDevice(size)
			},
		},
		{
			name: "file",
			open: func(t *testing.T, size uint32) Device {
				dev, err := NewFileDevice(filepath.Join(t.TempDir(), "image.bin"), size)
				require.NoError(t, err)
				t.Cleanup(func() { _ = dev.Close() })

				return dev
			},
		},
		{
			name: "pebble",
			open: func(t *testing.T, size uint32) Device {
				dev, err := NewPebbleDevice(filepath.Join(t.TempDir(), "image"), size)
				require.NoError(t, err)
				t.Cleanup(func() { _ = dev.Close() })

				return dev
			},
		},
	}
}

func TestDeviceReadWriteRoundTrip(t *testing.T) {
	for _, d := range allDevices() {
		t.Run(d.name, func(t *testing.T) {
			dev := d.open(t, 1024)
			assert.Equal(t, uint32(1024), dev.Size())

			data := []byte("the quick brown fox jumps over the lazy dog")
			require.NoError(t, dev.Write(100, data))

			got := make([]byte, len(data))
			require.NoError(t, dev.Read(100, got))
			assert.Equal(t, data, got)

			// Partial overwrite inside the range.
			require.NoError(t, dev.Write(104, []byte("slow")))
			require.NoError(t, dev.Read(100, got))
			assert.Equal(t, []byte("the slow brown fox"), got[:18])
		})
	}
}

func TestDeviceVirginReadsZero(t *testing.T) {
	for _, d := range allDevices() {
		t.Run(d.name, func(t *testing.T) {
			dev := d.open(t, 512)

			got := make([]byte, 512)
			for i := range got {
				got[i] = 0xAA
			}

			require.NoError(t, dev.Read(0, got))
			assert.Equal(t, make([]byte, 512), got)
		})
	}
}

func TestDeviceBounds(t *testing.T) {
	for _, d := range allDevices() {
		t.Run(d.name, func(t *testing.T) {
			dev := d.open(t, 256)

			buf := make([]byte, 16)

			assert.ErrorIs(t, dev.Read(250, buf), ErrOutOfRange)
			assert.ErrorIs(t, dev.Write(250, buf), ErrOutOfRange)
			assert.ErrorIs(t, dev.Read(1<<20, buf), ErrOutOfRange)

			// Exactly at the limit is fine.
			assert.NoError(t, dev.Write(240, buf))
			assert.NoError(t, dev.Read(240, buf))
		})
	}
}

func TestDeviceCrossPageRanges(t *testing.T) {
	// Ranges spanning pebble page boundaries must round-trip.
	dev, err := NewPebbleDevice(filepath.Join(t.TempDir(), "image"), 2048)
	require.NoError(t, err)
	defer func() { _ = dev.Close() }()

	data := make([]byte, 700)
	for i := range data {
		data[i] = byte(i)
	}

	require.NoError(t, dev.Write(200, data))

	got := make([]byte, 700)
	require.NoError(t, dev.Read(200, got))
	assert.Equal(t, data, got)
}

func TestFileDeviceReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image.bin")

	dev, err := NewFileDevice(path, 512)
	require.NoError(t, err)
	require.NoError(t, dev.Write(10, []byte("persist me")))
	require.NoError(t, dev.Close())

	dev, err = NewFileDevice(path, 512)
	require.NoError(t, err)
	defer func() { _ = dev.Close() }()

	got := make([]byte, 10)
	require.NoError(t, dev.Read(10, got))
	assert.Equal(t, []byte("persist me"), got)
}

func TestFaultDevice(t *testing.T) {
	t.Run("injects scripted failures", func(t *testing.T) {
		dev := NewFaultDevice(NewMemDevice(256)).FailWriteN(2)

		require.NoError(t, dev.Write(0, []byte{1}))
		assert.ErrorIs(t, dev.Write(0, []byte{2}), ErrInjected)
		require.NoError(t, dev.Write(0, []byte{3}))

		got := make([]byte, 1)
		require.NoError(t, dev.Read(0, got))
		assert.Equal(t, byte(3), got[0])
	})

	t.Run("vetoed writes do not touch the media", func(t *testing.T) {
		dev := NewFaultDevice(NewMemDevice(256)).FailWriteN(1)

		assert.ErrorIs(t, dev.Write(0, []byte{0xFF}), ErrInjected)

		got := make([]byte, 1)
		require.NoError(t, dev.Read(0, got))
		assert.Equal(t, byte(0), got[0])
	})

	t.Run("counts operations", func(t *testing.T) {
		dev := NewFaultDevice(NewMemDevice(256))

		buf := make([]byte, 4)
		require.NoError(t, dev.Read(0, buf))
		require.NoError(t, dev.Read(4, buf))
		require.NoError(t, dev.Write(0, buf))

		assert.Equal(t, 2, dev.ReadCount())
		assert.Equal(t, 1, dev.WriteCount())

		dev.ResetCounts()
		assert.Equal(t, 0, dev.ReadCount())
		assert.Equal(t, 0, dev.WriteCount())
	})
}
