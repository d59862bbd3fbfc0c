package device

// MemDevice is a volatile in-memory device image. It is the default
// backend for tests and demonstrations; contents are lost when the
// process exits.
type MemDevice struct {
	buf []byte
}

// NewMemDevice creates a zero-filled in-memory device of the given size.
func NewMemDevice(size uint32) *MemDevice {
	return &MemDevice{buf: make([]byte, size)}
}

// Read fills dst from the image starting at addr.
func (m *MemDevice) Read(addr uint32, dst []byte) error {
	if err := checkRange(m.Size(), addr, len(dst)); err != nil {
		return err
	}

	copy(dst, m.buf[addr:])

	return nil
}

// Write stores src into the image at addr.
func (m *MemDevice) Write(addr uint32, src []byte) error {
	if err := checkRange(m.Size(), addr, len(src)); err != nil {
		return err
	}

	copy(m.buf[addr:], src)

	return nil
}

// Size returns the image capacity in bytes.
func (m *MemDevice) Size() uint32 {
	return uint32(len(m.buf))
}
