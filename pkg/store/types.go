package store

import (
	"errors"
)

// Errors returned by the store.
var (
	// ErrNotFound reports that no structurally valid, checksum valid
	// record exists in any slot. This is the normal state on virgin or
	// erased media and on a version change.
	ErrNotFound = errors.New("store: no valid record found")

	// ErrPayloadSize reports a payload whose length does not match the
	// store's configured payload size.
	ErrPayloadSize = errors.New("store: payload size mismatch")

	// ErrNilDevice reports construction without a backing device.
	ErrNilDevice = errors.New("store: nil device")

	// ErrBadGeometry reports a slot region that does not fit the device
	// or an invalid slot count.
	ErrBadGeometry = errors.New("store: invalid slot geometry")

	// ErrNotFixedSize reports a typed value whose binary representation
	// is not a fixed size.
	ErrNotFixedSize = errors.New("store: value type has no fixed binary size")
)

// Config binds a store to a region of the backing device.
type Config struct {
	// Base is the device address of slot 0. The caller guarantees the
	// Slots contiguous slots starting here occupy reserved, disjoint
	// address space.
	Base uint32

	// Slots is the number of rotating slots. Must be at least 1; with a
	// single slot there is no wear leveling and no surviving previous
	// generation during a commit, so 2 or more is recommended.
	Slots int

	// Version tags the payload schema. Records carrying a different
	// version are treated as not found, not as an error.
	Version uint16

	// PayloadSize is the fixed record payload length in bytes.
	PayloadSize int

	// Metrics receives operation observations. Optional.
	Metrics Metrics
}

// Metrics is a minimal hook surface for storage observations.
type Metrics interface {
	// ObserveLoad is called once per Load with its outcome.
	ObserveLoad(err error)

	// ObserveCommit is called once per attempted commit with the
	// sequence number it targeted and its outcome.
	ObserveCommit(seq uint32, err error)

	// ObserveFlush is called once per Flush; committed is false when
	// the cache was clean and no I/O happened.
	ObserveFlush(committed bool, err error)

	// AddCRCFailure is called for each slot whose header passed the
	// structural checks but whose payload failed checksum verification.
	AddCRCFailure()
}

// NopMetrics is used when no metrics hook is configured.
type NopMetrics struct{}

func (NopMetrics) ObserveLoad(error)           {}
func (NopMetrics) ObserveCommit(uint32, error) {}
func (NopMetrics) ObserveFlush(bool, error)    {}
func (NopMetrics) AddCRCFailure()              {}
