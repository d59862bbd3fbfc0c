package store

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mstovari/framstore/pkg/device"
)

// deviceCounters mirrors the kind of record the demo loop persists.
type deviceCounters struct {
	UptimeSec uint32
	Boots     uint32
	Flags     uint8
	Pad       [3]uint8
}

func newTypedStore(t *testing.T) *Typed[deviceCounters] {
	t.Helper()

	tp, err := NewTyped[deviceCounters](device.NewMemDevice(8*1024), Config{
		Base:    testBase,
		Slots:   4,
		Version: 1,
	})
	require.NoError(t, err)

	return tp
}

func TestTypedRoundTrip(t *testing.T) {
	tp := newTypedStore(t)

	_, err := tp.Load()
	assert.ErrorIs(t, err, ErrNotFound)

	want := deviceCounters{UptimeSec: 3600, Boots: 12, Flags: 0x81}
	require.NoError(t, tp.StoreImmediate(want))

	got, err := tp.Load()
	require.NoError(t, err)

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("value mismatch (-want +got):\n%s", diff)
	}
}

func TestTypedDeferredFlush(t *testing.T) {
	tp := newTypedStore(t)

	require.NoError(t, tp.StoreDeferred(deviceCounters{Boots: 1}))
	require.NoError(t, tp.StoreDeferred(deviceCounters{Boots: 2}))
	assert.True(t, tp.Dirty())

	require.NoError(t, tp.Flush())
	assert.False(t, tp.Dirty())

	got, err := tp.Load()
	require.NoError(t, err)
	assert.Equal(t, uint32(2), got.Boots)
}

func TestTypedPayloadSizeDerived(t *testing.T) {
	tp := newTypedStore(t)
	assert.Equal(t, 12, tp.Store().PayloadSize())

	// An explicit matching size is tolerated, a conflicting one is not.
	_, err := NewTyped[deviceCounters](device.NewMemDevice(1024), Config{
		Slots: 2, Version: 1, PayloadSize: 12,
	})
	assert.NoError(t, err)

	_, err = NewTyped[deviceCounters](device.NewMemDevice(1024), Config{
		Slots: 2, Version: 1, PayloadSize: 16,
	})
	assert.ErrorIs(t, err, ErrPayloadSize)
}

func TestTypedRejectsNonFixedTypes(t *testing.T) {
	type withString struct {
		Name string
	}

	type withSlice struct {
		Data []byte
	}

	_, err := NewTyped[withString](device.NewMemDevice(1024), Config{Slots: 2})
	assert.ErrorIs(t, err, ErrNotFixedSize)

	_, err = NewTyped[withSlice](device.NewMemDevice(1024), Config{Slots: 2})
	assert.ErrorIs(t, err, ErrNotFixedSize)
}

func TestTypedSharesMediaWithByteStore(t *testing.T) {
	// A typed store and a raw store over the same region interoperate:
	// the typed value's encoding is its persisted form.
	dev := device.NewMemDevice(8 * 1024)

	tp, err := NewTyped[deviceCounters](dev, Config{Base: testBase, Slots: 2, Version: 1})
	require.NoError(t, err)
	require.NoError(t, tp.StoreImmediate(deviceCounters{UptimeSec: 60, Boots: 3}))

	raw, err := New(dev, Config{Base: testBase, Slots: 2, Version: 1, PayloadSize: 12})
	require.NoError(t, err)

	buf := make([]byte, 12)
	require.NoError(t, raw.Load(buf))

	// Little-endian field layout.
	assert.Equal(t, []byte{60, 0, 0, 0, 3, 0, 0, 0, 0, 0, 0, 0}, buf)
}
