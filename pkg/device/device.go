package device

import (
	"errors"
	"fmt"
)

// Device is a synchronous, byte-addressable non-volatile store.
//
// Read and Write block until the underlying transfer completes. A single
// Write call is atomic with respect to other Write calls only insofar as
// the implementation guarantees it; callers that need multi-range commit
// ordering (such as the slot store) sequence their own calls.
type Device interface {
	// Read fills dst with len(dst) bytes starting at addr.
	Read(addr uint32, dst []byte) error

	// Write stores src at addr.
	Write(addr uint32, src []byte) error

	// Size returns the device capacity in bytes.
	Size() uint32
}

// ErrOutOfRange reports a read or write that falls outside the device.
var ErrOutOfRange = errors.New("device: address range out of bounds")

// checkRange validates that [addr, addr+n) fits within size bytes.
func checkRange(size, addr uint32, n int) error {
	if n < 0 || uint64(addr)+uint64(n) > uint64(size) {
		return fmt.Errorf("%w: addr=%#x len=%d size=%d", ErrOutOfRange, addr, n, size)
	}

	return nil
}
