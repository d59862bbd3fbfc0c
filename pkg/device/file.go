package device

import (
	"fmt"
	"os"
)

// FileDevice persists the device image in a regular file. The file is
// created (or grown) to the full device size on open so that every
// address is backed; each write is synced before returning, mirroring
// the durability of the FRAM parts this emulates.
type FileDevice struct {
	file *os.File
	size uint32
}

// NewFileDevice opens or creates a file-backed device image of the
// given size at path.
func NewFileDevice(path string, size uint32) (*FileDevice, error) {
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0600) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("opening device image: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()

		return nil, fmt.Errorf("stat device image: %w", err)
	}

	if info.Size() < int64(size) {
		if err := file.Truncate(int64(size)); err != nil {
			_ = file.Close()

			return nil, fmt.Errorf("sizing device image: %w", err)
		}
	}

	return &FileDevice{file: file, size: size}, nil
}

// Read fills dst from the image starting at addr.
func (f *FileDevice) Read(addr uint32, dst []byte) error {
	if err := checkRange(f.size, addr, len(dst)); err != nil {
		return err
	}

	if _, err := f.file.ReadAt(dst, int64(addr)); err != nil {
		return fmt.Errorf("reading device image: %w", err)
	}

	return nil
}

// Write stores src at addr and syncs the file.
func (f *FileDevice) Write(addr uint32, src []byte) error {
	if err := checkRange(f.size, addr, len(src)); err != nil {
		return err
	}

	if _, err := f.file.WriteAt(src, int64(addr)); err != nil {
		return fmt.Errorf("writing device image: %w", err)
	}

	if err := f.file.Sync(); err != nil {
		return fmt.Errorf("syncing device image: %w", err)
	}

	return nil
}

// Size returns the image capacity in bytes.
func (f *FileDevice) Size() uint32 {
	return f.size
}

// Close releases the underlying file.
func (f *FileDevice) Close() error {
	return f.file.Close()
}
