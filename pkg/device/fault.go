package device

import "errors"

// ErrInjected is the default error returned by scripted faults.
var ErrInjected = errors.New("device: injected fault")

// FaultFunc decides whether an operation fails. It receives the 1-based
// count of operations of that kind so far, plus the address and length.
// A non-nil return is surfaced instead of performing the operation.
type FaultFunc func(n int, addr uint32, length int) error

// FaultDevice wraps another Device and injects scripted failures. Tests
// use it to simulate media errors and interrupted commits, e.g. failing
// the header write that follows a successful payload write.
//
// The zero fault hooks pass everything through. FaultDevice also counts
// operations so tests can assert on I/O volume.
type FaultDevice struct {
	inner Device

	// OnRead and OnWrite, when set, may veto the operation.
	OnRead  FaultFunc
	OnWrite FaultFunc

	reads  int
	writes int
}

// NewFaultDevice wraps inner with pass-through fault hooks.
func NewFaultDevice(inner Device) *FaultDevice {
	return &FaultDevice{inner: inner}
}

// FailWriteN makes the n-th write (1-based) fail with ErrInjected and
// returns the device for chaining.
func (f *FaultDevice) FailWriteN(n int) *FaultDevice {
	f.OnWrite = func(count int, _ uint32, _ int) error {
		if count == n {
			return ErrInjected
		}

		return nil
	}

	return f
}

// FailReadN makes the n-th read (1-based) fail with ErrInjected and
// returns the device for chaining.
func (f *FaultDevice) FailReadN(n int) *FaultDevice {
	f.OnRead = func(count int, _ uint32, _ int) error {
		if count == n {
			return ErrInjected
		}

		return nil
	}

	return f
}

// Read counts the operation, consults OnRead, then delegates.
func (f *FaultDevice) Read(addr uint32, dst []byte) error {
	f.reads++

	if f.OnRead != nil {
		if err := f.OnRead(f.reads, addr, len(dst)); err != nil {
			return err
		}
	}

	return f.inner.Read(addr, dst)
}

// Write counts the operation, consults OnWrite, then delegates.
func (f *FaultDevice) Write(addr uint32, src []byte) error {
	f.writes++

	if f.OnWrite != nil {
		if err := f.OnWrite(f.writes, addr, len(src)); err != nil {
			return err
		}
	}

	return f.inner.Write(addr, src)
}

// Size delegates to the wrapped device.
func (f *FaultDevice) Size() uint32 {
	return f.inner.Size()
}

// ReadCount returns the number of Read calls observed, including vetoed ones.
func (f *FaultDevice) ReadCount() int {
	return f.reads
}

// WriteCount returns the number of Write calls observed, including vetoed ones.
func (f *FaultDevice) WriteCount() int {
	return f.writes
}

// ResetCounts zeroes the operation counters.
func (f *FaultDevice) ResetCounts() {
	f.reads = 0
	f.writes = 0
}
