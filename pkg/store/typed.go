package store

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/mstovari/framstore/pkg/device"
)

// Typed wraps a Store with a fixed-representation value type, replacing
// raw byte slices with values of T at the API surface.
//
// T must have a fixed little-endian binary size: a struct of exported
// fixed-size fields (sized integers, fixed arrays, nested such structs)
// as understood by encoding/binary. NewTyped rejects types that do not
// qualify and additionally verifies at construction that the zero value
// survives an encode/decode/encode round trip byte for byte, so a
// representation drift shows up at startup instead of as silent
// corruption on media.
type Typed[T any] struct {
	store *Store
}

// NewTyped creates a typed store over dev. Config.PayloadSize is
// derived from T and must be left zero.
func NewTyped[T any](dev device.Device, cfg Config) (*Typed[T], error) {
	var zero T

	size := binary.Size(zero)
	if size <= 0 {
		return nil, fmt.Errorf("%w: %T", ErrNotFixedSize, zero)
	}

	if cfg.PayloadSize != 0 && cfg.PayloadSize != size {
		return nil, fmt.Errorf("%w: configured %d, %T encodes to %d",
			ErrPayloadSize, cfg.PayloadSize, zero, size)
	}

	cfg.PayloadSize = size

	if err := verifyRoundTrip(zero, size); err != nil {
		return nil, err
	}

	s, err := New(dev, cfg)
	if err != nil {
		return nil, err
	}

	return &Typed[T]{store: s}, nil
}

// verifyRoundTrip checks that v encodes, decodes and re-encodes to
// identical bytes at the expected size.
func verifyRoundTrip[T any](v T, size int) error {
	first, err := marshalValue(v, size)
	if err != nil {
		return err
	}

	var decoded T
	if err := binary.Read(bytes.NewReader(first), binary.LittleEndian, &decoded); err != nil {
		return fmt.Errorf("%w: decoding %T: %v", ErrNotFixedSize, v, err)
	}

	second, err := marshalValue(decoded, size)
	if err != nil {
		return err
	}

	if !bytes.Equal(first, second) {
		return fmt.Errorf("%w: %T does not round-trip byte for byte", ErrNotFixedSize, v)
	}

	return nil
}

// marshalValue encodes v into its fixed little-endian form.
func marshalValue[T any](v T, size int) ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, size))
	if err := binary.Write(buf, binary.LittleEndian, v); err != nil {
		return nil, fmt.Errorf("%w: encoding %T: %v", ErrNotFixedSize, v, err)
	}

	if buf.Len() != size {
		return nil, fmt.Errorf("%w: %T encoded to %d bytes, want %d",
			ErrNotFixedSize, v, buf.Len(), size)
	}

	return buf.Bytes(), nil
}

// Load returns the authoritative value, or ErrNotFound.
func (tp *Typed[T]) Load() (T, error) {
	var v T

	buf := make([]byte, tp.store.PayloadSize())
	if err := tp.store.Load(buf); err != nil {
		return v, err
	}

	if err := binary.Read(bytes.NewReader(buf), binary.LittleEndian, &v); err != nil {
		return v, fmt.Errorf("decoding value: %w", err)
	}

	return v, nil
}

// StoreImmediate commits v as a new generation.
func (tp *Typed[T]) StoreImmediate(v T) error {
	buf, err := marshalValue(v, tp.store.PayloadSize())
	if err != nil {
		return err
	}

	return tp.store.StoreImmediate(buf)
}

// StoreDeferred caches v in memory for the next Flush.
func (tp *Typed[T]) StoreDeferred(v T) error {
	buf, err := marshalValue(v, tp.store.PayloadSize())
	if err != nil {
		return err
	}

	return tp.store.StoreDeferred(buf)
}

// Flush commits the cached value if dirty.
func (tp *Typed[T]) Flush() error {
	return tp.store.Flush()
}

// Dirty reports whether the cache holds an uncommitted value.
func (tp *Typed[T]) Dirty() bool {
	return tp.store.Dirty()
}

// Store exposes the underlying byte-level store.
func (tp *Typed[T]) Store() *Store {
	return tp.store
}
