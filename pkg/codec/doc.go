// Package codec defines the on-media record format for framstore.
//
// Every slot on the backing device holds one header followed by one
// fixed-size payload. The header is a fixed 20-byte structure with the
// following layout (all fields little-endian):
//
//	[Magic(4)][Version(2)][Reserved(2)][Seq(4)][Len(4)][CRC(4)]
//
// Fields:
//   - Magic: fixed sentinel 0x4652414D ("FRAM") identifying a valid header
//   - Version: payload schema version; records of a different version are invisible
//   - Reserved: layout padding, written as zero, round-tripped but never interpreted
//   - Seq: monotonically increasing generation counter
//   - Len: payload byte length, must equal the store's configured payload size
//   - CRC: CRC-32 over the payload bytes only (not the header)
//
// # Checksum
//
// The CRC is the reflected CRC-32 with polynomial 0xEDB88320, seeded with
// 0xFFFFFFFF and finalized by XOR with 0xFFFFFFFF. This is exactly the
// stdlib IEEE CRC-32, so [Checksum] delegates to hash/crc32 and inherits
// its precomputed table; there is no lazy table initialization to race on.
//
// # Validity
//
// A header is structurally valid for a store when its magic, version and
// length all match the store's configuration. Full validity additionally
// requires the stored CRC to match a fresh checksum of the read-back
// payload; that comparison is the caller's job since the codec performs
// no I/O.
package codec
