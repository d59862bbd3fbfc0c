package codec

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
)

// Magic is the sentinel identifying a valid record header ("FRAM").
const Magic uint32 = 0x4652414D

// HeaderSize is the encoded size of a Header in bytes.
const HeaderSize = 20

// Header describes one stored generation of the record.
type Header struct {
	Magic    uint32 // must equal Magic
	Version  uint16 // payload schema version
	Reserved uint16 // padding, written as zero
	Seq      uint32 // generation counter
	Len      uint32 // payload length in bytes
	CRC      uint32 // CRC-32 over the payload bytes
}

// EncodeHeader serializes h into its fixed 20-byte little-endian form.
func EncodeHeader(h Header) []byte {
	buf := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(buf[0:4], h.Magic)
	binary.LittleEndian.PutUint16(buf[4:6], h.Version)
	binary.LittleEndian.PutUint16(buf[6:8], h.Reserved)
	binary.LittleEndian.PutUint32(buf[8:12], h.Seq)
	binary.LittleEndian.PutUint32(buf[12:16], h.Len)
	binary.LittleEndian.PutUint32(buf[16:20], h.CRC)

	return buf
}

// DecodeHeader parses a header from the first HeaderSize bytes of data.
func DecodeHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, fmt.Errorf("header needs %d bytes, have %d", HeaderSize, len(data))
	}

	return Header{
		Magic:    binary.LittleEndian.Uint32(data[0:4]),
		Version:  binary.LittleEndian.Uint16(data[4:6]),
		Reserved: binary.LittleEndian.Uint16(data[6:8]),
		Seq:      binary.LittleEndian.Uint32(data[8:12]),
		Len:      binary.LittleEndian.Uint32(data[12:16]),
		CRC:      binary.LittleEndian.Uint32(data[16:20]),
	}, nil
}

// NewHeader builds a header for one generation of the given payload.
// The Reserved field is always written as zero.
func NewHeader(version uint16, seq uint32, payload []byte) Header {
	return Header{
		Magic:   Magic,
		Version: version,
		Seq:     seq,
		Len:     uint32(len(payload)),
		CRC:     Checksum(payload),
	}
}

// Structural reports whether the header passes the structural checks:
// magic sentinel, matching version, and matching payload length.
// It says nothing about the payload CRC; callers must read the payload
// back and compare [Checksum] against h.CRC for full validity.
func (h Header) Structural(version uint16, payloadLen int) bool {
	return h.Magic == Magic && h.Version == version && h.Len == uint32(payloadLen)
}

// Checksum computes the record CRC: reflected CRC-32, polynomial
// 0xEDB88320, init and final XOR 0xFFFFFFFF. Identical inputs always
// yield identical outputs.
func Checksum(data []byte) uint32 {
	return crc32.ChecksumIEEE(data)
}
