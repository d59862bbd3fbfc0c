package store

import (
	"fmt"

	"github.com/segmentio/ksuid"

	"github.com/mstovari/framstore/pkg/codec"
	"github.com/mstovari/framstore/pkg/device"
)

// Store persists one fixed-size record in a rotating set of slots on a
// backing device. The device reference is borrowed; the caller manages
// its lifetime and closes it after the store is no longer used.
type Store struct {
	id      string
	dev     device.Device
	cfg     Config
	metrics Metrics

	slotSize uint32

	// Deferred-write cache. Empty until the first StoreImmediate or
	// StoreDeferred call.
	cache   []byte
	dirty   bool
	lastSeq uint32
}

// New creates a store over dev using the given configuration.
func New(dev device.Device, cfg Config) (*Store, error) {
	if dev == nil {
		return nil, ErrNilDevice
	}

	if cfg.Slots < 1 {
		return nil, fmt.Errorf("%w: slot count %d", ErrBadGeometry, cfg.Slots)
	}

	if cfg.PayloadSize <= 0 {
		return nil, fmt.Errorf("%w: payload size %d", ErrBadGeometry, cfg.PayloadSize)
	}

	slotSize := uint32(codec.HeaderSize + cfg.PayloadSize)

	end := uint64(cfg.Base) + uint64(cfg.Slots)*uint64(slotSize)
	if end > uint64(dev.Size()) {
		return nil, fmt.Errorf("%w: region [%#x, %#x) exceeds device size %d",
			ErrBadGeometry, cfg.Base, end, dev.Size())
	}

	m := cfg.Metrics
	if m == nil {
		m = NopMetrics{}
	}

	return &Store{
		id:       ksuid.New().String(),
		dev:      dev,
		cfg:      cfg,
		metrics:  m,
		slotSize: slotSize,
	}, nil
}

// ID returns the process-unique identifier of this store instance.
func (s *Store) ID() string {
	return s.id
}

// slotAddr returns the device address of slot i.
func (s *Store) slotAddr(i int) uint32 {
	return s.cfg.Base + uint32(i)*s.slotSize
}

// scan reads every slot and returns the index, header and payload of
// the newest fully valid record. A record counts as valid only when its
// header passes the structural checks and its payload matches the
// stored CRC; both the read and the write path use this same criteria.
// Per-slot read failures mean that slot is skipped, never that the scan
// aborts.
func (s *Store) scan() (best int, bestHdr codec.Header, bestPayload []byte, found bool) {
	hdrBuf := make([]byte, codec.HeaderSize)
	payload := make([]byte, s.cfg.PayloadSize)

	for i := 0; i < s.cfg.Slots; i++ {
		addr := s.slotAddr(i)

		if err := s.dev.Read(addr, hdrBuf); err != nil {
			continue
		}

		hdr, err := codec.DecodeHeader(hdrBuf)
		if err != nil {
			continue
		}

		if !hdr.Structural(s.cfg.Version, s.cfg.PayloadSize) {
			continue
		}

		if err := s.dev.Read(addr+codec.HeaderSize, payload); err != nil {
			continue
		}

		if codec.Checksum(payload) != hdr.CRC {
			s.metrics.AddCRCFailure()

			continue
		}

		// Plain unsigned comparison; 2^32 generations outlasts the
		// endurance of the FRAM parts this targets.
		if !found || hdr.Seq > bestHdr.Seq {
			best = i
			bestHdr = hdr
			found = true

			if bestPayload == nil {
				bestPayload = make([]byte, s.cfg.PayloadSize)
			}

			copy(bestPayload, payload)
		}
	}

	return best, bestHdr, bestPayload, found
}

// Load copies the authoritative record into dst, which must be exactly
// the configured payload size. It returns ErrNotFound when no slot
// holds a valid record, which is the expected state on first use.
// Load never mutates the deferred cache.
func (s *Store) Load(dst []byte) error {
	err := s.load(dst)
	s.metrics.ObserveLoad(err)

	return err
}

func (s *Store) load(dst []byte) error {
	if len(dst) != s.cfg.PayloadSize {
		return fmt.Errorf("%w: got %d, want %d", ErrPayloadSize, len(dst), s.cfg.PayloadSize)
	}

	_, _, payload, found := s.scan()
	if !found {
		return ErrNotFound
	}

	copy(dst, payload)

	return nil
}

// StoreImmediate commits src as a new generation. The payload is
// written before the header, so an interrupted commit leaves the
// previous generation authoritative instead of exposing a torn record.
// On success the deferred cache is set to src and marked clean.
func (s *Store) StoreImmediate(src []byte) error {
	if len(src) != s.cfg.PayloadSize {
		return fmt.Errorf("%w: got %d, want %d", ErrPayloadSize, len(src), s.cfg.PayloadSize)
	}

	bestIdx, bestHdr, _, found := s.scan()

	seq := uint32(1)
	target := 0

	if found {
		seq = bestHdr.Seq + 1
		target = (bestIdx + 1) % s.cfg.Slots
	}

	err := s.commit(target, seq, src)
	s.metrics.ObserveCommit(seq, err)

	return err
}

// commit writes src with the given sequence number into slot target.
func (s *Store) commit(target int, seq uint32, src []byte) error {
	addr := s.slotAddr(target)
	hdr := codec.NewHeader(s.cfg.Version, seq, src)

	if err := s.dev.Write(addr+codec.HeaderSize, src); err != nil {
		return fmt.Errorf("writing payload to slot %d: %w", target, err)
	}

	if err := s.dev.Write(addr, codec.EncodeHeader(hdr)); err != nil {
		return fmt.Errorf("writing header to slot %d: %w", target, err)
	}

	if s.cache == nil {
		s.cache = make([]byte, s.cfg.PayloadSize)
	}

	copy(s.cache, src)
	s.dirty = false
	s.lastSeq = seq

	return nil
}

// StoreDeferred sets the in-memory cache to src and marks it dirty.
// It performs no device I/O; the value is committed by the next Flush.
func (s *Store) StoreDeferred(src []byte) error {
	if len(src) != s.cfg.PayloadSize {
		return fmt.Errorf("%w: got %d, want %d", ErrPayloadSize, len(src), s.cfg.PayloadSize)
	}

	if s.cache == nil {
		s.cache = make([]byte, s.cfg.PayloadSize)
	}

	copy(s.cache, src)
	s.dirty = true

	return nil
}

// Flush commits the cached value if it is dirty. A clean cache flushes
// immediately with no I/O. On failure the cache stays dirty so a later
// retry commits the same value.
func (s *Store) Flush() error {
	if !s.dirty {
		s.metrics.ObserveFlush(false, nil)

		return nil
	}

	err := s.StoreImmediate(s.cache)
	s.metrics.ObserveFlush(true, err)

	return err
}

// Dirty reports whether the cache holds an uncommitted value.
func (s *Store) Dirty() bool {
	return s.dirty
}

// LastSeq returns the sequence number of the last generation this
// instance committed, or 0 if it has not committed yet.
func (s *Store) LastSeq() uint32 {
	return s.lastSeq
}

// SlotCount returns the number of rotating slots.
func (s *Store) SlotCount() int {
	return s.cfg.Slots
}

// SlotSize returns the on-media size of one slot in bytes.
func (s *Store) SlotSize() uint32 {
	return s.slotSize
}

// PayloadSize returns the configured record payload length.
func (s *Store) PayloadSize() int {
	return s.cfg.PayloadSize
}

// Base returns the device address of slot 0.
func (s *Store) Base() uint32 {
	return s.cfg.Base
}
