package device

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
)

// pebblePageSize is the granularity at which the image is stored in the
// pebble keyspace. Ranges spanning pages are split across keys.
const pebblePageSize = 256

// PebbleDevice persists the device image in a pebble database, one key
// per 256-byte page. Pages never written read back as zeros, matching
// erased media. Useful as a durable emulation backend for the CLI when
// no hardware is attached.
type PebbleDevice struct {
	db   *pebble.DB
	size uint32
}

// NewPebbleDevice opens or creates a pebble-backed device image of the
// given size in the directory at path.
func NewPebbleDevice(path string, size uint32) (*PebbleDevice, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("opening pebble image: %w", err)
	}

	return &PebbleDevice{db: db, size: size}, nil
}

// pageKey returns the key for page n: "p" plus the big-endian page index.
func pageKey(n uint32) []byte {
	key := make([]byte, 5)
	key[0] = 'p'
	binary.BigEndian.PutUint32(key[1:], n)

	return key
}

// readPage loads page n into dst (pebblePageSize bytes). Missing pages
// are zero-filled.
func (p *PebbleDevice) readPage(n uint32, dst []byte) error {
	value, closer, err := p.db.Get(pageKey(n))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			for i := range dst {
				dst[i] = 0
			}

			return nil
		}

		return fmt.Errorf("reading page %d: %w", n, err)
	}

	copy(dst, value)
	_ = closer.Close()

	return nil
}

// Read fills dst from the image starting at addr.
func (p *PebbleDevice) Read(addr uint32, dst []byte) error {
	if err := checkRange(p.size, addr, len(dst)); err != nil {
		return err
	}

	page := make([]byte, pebblePageSize)
	for done := 0; done < len(dst); {
		n := (addr + uint32(done)) / pebblePageSize
		off := int((addr + uint32(done)) % pebblePageSize)

		if err := p.readPage(n, page); err != nil {
			return err
		}

		done += copy(dst[done:], page[off:])
	}

	return nil
}

// Write stores src at addr, read-modify-writing the affected pages in
// one synced batch.
func (p *PebbleDevice) Write(addr uint32, src []byte) error {
	if err := checkRange(p.size, addr, len(src)); err != nil {
		return err
	}

	batch := p.db.NewBatch()
	defer func() { _ = batch.Close() }()

	page := make([]byte, pebblePageSize)
	for done := 0; done < len(src); {
		n := (addr + uint32(done)) / pebblePageSize
		off := int((addr + uint32(done)) % pebblePageSize)

		if err := p.readPage(n, page); err != nil {
			return err
		}

		done += copy(page[off:], src[done:])

		if err := batch.Set(pageKey(n), page, nil); err != nil {
			return fmt.Errorf("staging page %d: %w", n, err)
		}
	}

	if err := batch.Commit(pebble.Sync); err != nil {
		return fmt.Errorf("committing pages: %w", err)
	}

	return nil
}

// Size returns the image capacity in bytes.
func (p *PebbleDevice) Size() uint32 {
	return p.size
}

// Close releases the underlying database.
func (p *PebbleDevice) Close() error {
	return p.db.Close()
}
