package mb85rs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mstovari/framstore/pkg/device"
)

// recordingBus logs every frame it is handed before delegating.
type recordingBus struct {
	inner  Bus
	frames [][]byte
	err    error
}

func (b *recordingBus) Transfer(tx, rx []byte) error {
	frame := make([]byte, len(tx))
	copy(frame, tx)
	b.frames = append(b.frames, frame)

	if b.err != nil {
		return b.err
	}

	return b.inner.Transfer(tx, rx)
}

func newTestFRAM(t *testing.T) (*FRAM, *recordingBus) {
	t.Helper()

	bus := &recordingBus{inner: NewSimBus(8 * 1024)}

	fram, err := New(bus, 8*1024)
	require.NoError(t, err)

	return fram, bus
}

func TestNewValidation(t *testing.T) {
	_, err := New(nil, 8*1024)
	assert.ErrorIs(t, err, ErrNilBus)

	_, err = New(NewSimBus(16), 0)
	assert.ErrorIs(t, err, ErrBadSize)

	_, err = New(NewSimBus(16), 1<<16+1)
	assert.ErrorIs(t, err, ErrBadSize)

	fram, err := New(NewSimBus(1<<16), 1<<16)
	require.NoError(t, err)
	assert.Equal(t, uint32(1<<16), fram.Size())
}

func TestReadWriteRoundTrip(t *testing.T) {
	fram, _ := newTestFRAM(t)

	data := []byte("persistent payload")
	require.NoError(t, fram.Write(0x0200, data))

	got := make([]byte, len(data))
	require.NoError(t, fram.Read(0x0200, got))
	assert.Equal(t, data, got)
}

func TestWriteEnableSequencing(t *testing.T) {
	fram, bus := newTestFRAM(t)

	require.NoError(t, fram.Write(0x0010, []byte{0x55}))

	// Every write is bracketed by WREN and WRDI.
	require.Len(t, bus.frames, 3)
	assert.Equal(t, byte(opWriteEnable), bus.frames[0][0])
	assert.Equal(t, []byte{opWrite, 0x00, 0x10, 0x55}, bus.frames[1])
	assert.Equal(t, byte(opWriteDisable), bus.frames[2][0])
}

func TestReadID(t *testing.T) {
	fram, _ := newTestFRAM(t)

	id, err := fram.ReadID()
	require.NoError(t, err)

	assert.Equal(t, byte(0x04), id.Manufacturer)
	assert.Equal(t, byte(0x7F), id.Continuation)
	assert.Equal(t, uint16(0x0302), id.ProductID)
	assert.Equal(t, "04 7F 03 02", id.String())
}

func TestStatusReflectsWriteLatch(t *testing.T) {
	sim := NewSimBus(256)

	fram, err := New(sim, 256)
	require.NoError(t, err)

	status, err := fram.Status()
	require.NoError(t, err)
	assert.Zero(t, status&statusWEL)

	require.NoError(t, fram.writeEnable(true))

	status, err = fram.Status()
	require.NoError(t, err)
	assert.NotZero(t, status&statusWEL)
}

func TestBounds(t *testing.T) {
	fram, _ := newTestFRAM(t)

	buf := make([]byte, 32)

	assert.ErrorIs(t, fram.Read(8*1024-16, buf), device.ErrOutOfRange)
	assert.ErrorIs(t, fram.Write(8*1024-16, buf), device.ErrOutOfRange)
	assert.NoError(t, fram.Write(8*1024-32, buf))
}

func TestBusErrorsPropagate(t *testing.T) {
	fram, bus := newTestFRAM(t)
	bus.err = errors.New("bus stuck low")

	assert.Error(t, fram.Read(0, make([]byte, 4)))
	assert.Error(t, fram.Write(0, make([]byte, 4)))

	_, err := fram.ReadID()
	assert.Error(t, err)
}

func TestSimBusDropsUnlatchedWrites(t *testing.T) {
	sim := NewSimBus(256)

	// WRITE without WREN is silently ignored, as on the real part.
	tx := writeFrame(0x0000, []byte{0xEE})
	require.NoError(t, sim.Transfer(tx, make([]byte, len(tx))))

	assert.Equal(t, byte(0x00), sim.Snapshot()[0])

	// With the latch set the same frame lands, and the latch clears.
	wren := cmdFrame(opWriteEnable)
	require.NoError(t, sim.Transfer(wren, make([]byte, 1)))
	require.NoError(t, sim.Transfer(tx, make([]byte, len(tx))))
	assert.Equal(t, byte(0xEE), sim.Snapshot()[0])

	tx2 := writeFrame(0x0001, []byte{0xDD})
	require.NoError(t, sim.Transfer(tx2, make([]byte, len(tx2))))
	assert.Equal(t, byte(0x00), sim.Snapshot()[1])
}

func TestSimBusRejectsMalformedFrames(t *testing.T) {
	sim := NewSimBus(256)

	assert.ErrorIs(t, sim.Transfer(nil, nil), ErrFrame)
	assert.ErrorIs(t, sim.Transfer([]byte{opRead}, []byte{0}), ErrFrame)
	assert.ErrorIs(t, sim.Transfer([]byte{0xAB}, []byte{0}), ErrFrame)
	assert.ErrorIs(t, sim.Transfer([]byte{opRead, 0, 0}, []byte{0, 0}), ErrFrame)
}
