// Package endian provides the little-endian wire-format helpers used across the
// stenos frame and section codecs.
//
// The wire format is fixed to little-endian integers so that a compressed
// frame is portable across hosts of either native byte order; a big-endian
// host must byte-swap on the way in and out. This package centralizes that
// byte-swap so every package that reads or writes a frame/superblock field
// goes through one place.
package endian

import "encoding/binary"

// Engine is the little-endian engine used for all stenos wire fields. The
// wire format has no per-frame endianness flag — it is always little-endian
// — so a single package-level engine suffices.
var Engine = binary.LittleEndian

// PutUint24 writes the low 24 bits of v into b (3 bytes, little-endian). Used for
// superblock payload_len and compressed_len fields.
func PutUint24(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
}

// Uint24 reads a 24-bit little-endian unsigned integer from b.
func Uint24(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16
}

// PutUint56 writes the low 56 bits of v into b (7 bytes, little-endian). Used for
// the frame header's decompressed_len field.
func PutUint56(b []byte, v uint64) {
	for i := 0; i < 7; i++ {
		b[i] = byte(v >> (8 * i))
	}
}

// Uint56 reads a 56-bit little-endian unsigned integer from b.
func Uint56(b []byte) uint64 {
	var v uint64
	for i := 0; i < 7; i++ {
		v |= uint64(b[i]) << (8 * i)
	}
	return v
}
