package mb85rs

import (
	"errors"
	"fmt"
)

// DefaultSimID is the RDID response of the simulated part, matching the
// Fujitsu MB85RS64V: manufacturer 0x04, continuation 0x7F, product 0x0302.
var DefaultSimID = [idLength]byte{0x04, 0x7F, 0x03, 0x02}

// ErrFrame reports a malformed SPI frame.
var ErrFrame = errors.New("mb85rs: malformed frame")

// SimBus emulates an MB85RSxx part behind the Bus interface: it decodes
// opcodes, honors the write-enable latch (WRITE without a preceding
// WREN is silently dropped, as on the real part), and auto-clears the
// latch after each WRITE and WRSR. Useful for tests and for running the
// CLI without hardware.
type SimBus struct {
	mem    []byte
	id     [idLength]byte
	status byte
	wel    bool
}

// NewSimBus creates a simulated part with the given capacity and the
// default MB85RS64V identity.
func NewSimBus(size uint32) *SimBus {
	return &SimBus{
		mem: make([]byte, size),
		id:  DefaultSimID,
	}
}

// Transfer decodes and executes one frame.
func (b *SimBus) Transfer(tx, rx []byte) error {
	if len(tx) == 0 || len(tx) != len(rx) {
		return fmt.Errorf("%w: tx=%d rx=%d", ErrFrame, len(tx), len(rx))
	}

	switch tx[0] {
	case opWriteEnable:
		b.wel = true

	case opWriteDisable:
		b.wel = false

	case opReadStatus:
		if len(rx) < 2 {
			return fmt.Errorf("%w: rdsr frame too short", ErrFrame)
		}

		status := b.status
		if b.wel {
			status |= statusWEL
		}

		rx[1] = status

	case opWriteStatus:
		if len(tx) < 2 {
			return fmt.Errorf("%w: wrsr frame too short", ErrFrame)
		}

		if b.wel {
			b.status = tx[1] &^ statusWEL
			b.wel = false
		}

	case opReadID:
		if len(rx) < 1+idLength {
			return fmt.Errorf("%w: rdid frame too short", ErrFrame)
		}

		copy(rx[1:], b.id[:])

	case opRead:
		if len(tx) < frameOverhead {
			return fmt.Errorf("%w: read frame too short", ErrFrame)
		}

		addr := int(tx[1])<<8 | int(tx[2])
		for i := frameOverhead; i < len(rx); i++ {
			// Addresses wrap at the capacity boundary, as on the part.
			rx[i] = b.mem[(addr+i-frameOverhead)%len(b.mem)]
		}

	case opWrite:
		if len(tx) < frameOverhead {
			return fmt.Errorf("%w: write frame too short", ErrFrame)
		}

		if !b.wel {
			return nil
		}

		addr := int(tx[1])<<8 | int(tx[2])
		for i := frameOverhead; i < len(tx); i++ {
			b.mem[(addr+i-frameOverhead)%len(b.mem)] = tx[i]
		}

		b.wel = false

	default:
		return fmt.Errorf("%w: unknown opcode %#02x", ErrFrame, tx[0])
	}

	return nil
}

// Snapshot returns a copy of the simulated memory.
func (b *SimBus) Snapshot() []byte {
	out := make([]byte, len(b.mem))
	copy(out, b.mem)

	return out
}
