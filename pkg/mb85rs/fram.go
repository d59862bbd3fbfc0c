package mb85rs

import (
	"errors"
	"fmt"

	"github.com/mstovari/framstore/pkg/device"
)

// Bus is a point-to-point SPI connection to one FRAM part. Transfer
// clocks tx out while filling rx; both must be the same length, and the
// implementation asserts chip select for the duration of the call.
type Bus interface {
	Transfer(tx, rx []byte) error
}

// Errors returned by the driver.
var (
	ErrNilBus  = errors.New("mb85rs: nil bus")
	ErrBadSize = errors.New("mb85rs: size must be 1..65536 bytes")
)

// ID is the decoded RDID response.
type ID struct {
	Manufacturer byte   // JEDEC manufacturer ID, 0x04 for Fujitsu
	Continuation byte   // continuation code
	ProductID    uint16 // density and revision
}

// String renders the ID the way datasheets print it.
func (id ID) String() string {
	return fmt.Sprintf("%02X %02X %02X %02X",
		id.Manufacturer, id.Continuation, byte(id.ProductID>>8), byte(id.ProductID))
}

// FRAM drives one MB85RSxx part over a Bus and satisfies the
// device.Device byte-range contract. The bus reference is borrowed;
// the caller owns its lifetime.
type FRAM struct {
	bus  Bus
	size uint32
}

var _ device.Device = (*FRAM)(nil)

// New creates a driver for a part of the given capacity.
func New(bus Bus, size uint32) (*FRAM, error) {
	if bus == nil {
		return nil, ErrNilBus
	}

	// 16-bit addressing caps the usable capacity.
	if size == 0 || size > 1<<16 {
		return nil, fmt.Errorf("%w: %d", ErrBadSize, size)
	}

	return &FRAM{bus: bus, size: size}, nil
}

// ReadID issues RDID and decodes the response.
func (f *FRAM) ReadID() (ID, error) {
	tx := idFrame()
	rx := make([]byte, len(tx))

	if err := f.bus.Transfer(tx, rx); err != nil {
		return ID{}, fmt.Errorf("rdid: %w", err)
	}

	return ID{
		Manufacturer: rx[1],
		Continuation: rx[2],
		ProductID:    uint16(rx[3])<<8 | uint16(rx[4]),
	}, nil
}

// Status issues RDSR and returns the status register.
func (f *FRAM) Status() (byte, error) {
	tx := statusFrame()
	rx := make([]byte, len(tx))

	if err := f.bus.Transfer(tx, rx); err != nil {
		return 0, fmt.Errorf("rdsr: %w", err)
	}

	return rx[1], nil
}

// Read fills dst with len(dst) bytes starting at addr.
func (f *FRAM) Read(addr uint32, dst []byte) error {
	if err := f.checkRange(addr, len(dst)); err != nil {
		return err
	}

	if len(dst) == 0 {
		return nil
	}

	tx := readFrame(uint16(addr), len(dst))
	rx := make([]byte, len(tx))

	if err := f.bus.Transfer(tx, rx); err != nil {
		return fmt.Errorf("read %d bytes at %#x: %w", len(dst), addr, err)
	}

	copy(dst, rx[frameOverhead:])

	return nil
}

// Write stores src at addr. The part requires WREN immediately before
// each WRITE; the latch is cleared again afterwards, matching the
// conservative sequencing of the original driver.
func (f *FRAM) Write(addr uint32, src []byte) error {
	if err := f.checkRange(addr, len(src)); err != nil {
		return err
	}

	if len(src) == 0 {
		return nil
	}

	if err := f.writeEnable(true); err != nil {
		return fmt.Errorf("wren: %w", err)
	}

	tx := writeFrame(uint16(addr), src)
	if err := f.bus.Transfer(tx, make([]byte, len(tx))); err != nil {
		// Best effort: do not leave the latch set after a failed write.
		_ = f.writeEnable(false)

		return fmt.Errorf("write %d bytes at %#x: %w", len(src), addr, err)
	}

	if err := f.writeEnable(false); err != nil {
		return fmt.Errorf("wrdi: %w", err)
	}

	return nil
}

// Size returns the part capacity in bytes.
func (f *FRAM) Size() uint32 {
	return f.size
}

// writeEnable sets or clears the write-enable latch.
func (f *FRAM) writeEnable(en bool) error {
	op := byte(opWriteDisable)
	if en {
		op = opWriteEnable
	}

	tx := cmdFrame(op)

	return f.bus.Transfer(tx, make([]byte, len(tx)))
}

// checkRange validates [addr, addr+n) against the part capacity.
func (f *FRAM) checkRange(addr uint32, n int) error {
	if n < 0 || uint64(addr)+uint64(n) > uint64(f.size) {
		return fmt.Errorf("%w: addr=%#x len=%d size=%d", device.ErrOutOfRange, addr, n, f.size)
	}

	return nil
}
