// Package block implements the block codec (C3): compression and decompression
// of a single 256-element tile of BPP bytes, combining bit-packing, byte-delta,
// run-length coding, and a constrained LZ pass.
//
// A block's encoding proceeds: transpose the 256·BPP input bytes into BPP
// planes of 256 bytes (one per byte position), then code each plane
// independently as 16 rows of 16 bytes. Each row picks whichever of four
// representations (literal bit-pack, delta bit-pack, RLE, delta-RLE) is
// cheapest; each plane picks whichever of four kinds (ALL_SAME, ALL_RAW,
// NORMAL, NORMAL_RLE) is cheapest. The whole block may instead be coded by the
// light-LZ pass (lz.go) or copied raw, whichever is smallest.
//
// The exact row-header bit assignment below is a clean, internally-consistent
// scheme designed for this implementation (see DESIGN.md): the specification
// treats the reference implementation's precise bit-packing choices as a
// tunable, not a wire contract ("implementers should treat it as a tunable, not
// a contract, and verify round-trip parity rather than size parity"), so this
// package is free to pick its own header table as long as the encoder and
// decoder agree and the documented costs/kinds/strategies are respected.
package block

// Block-scope kind markers, stored as a plain byte (not a packed nibble) in the
// first position of a block's kind prefix. They are always >= 252 so they can
// never collide with a pair of packed ordinary plane kinds (each in [0,3],
// giving a maximum packed byte value of 0x33 = 51).
const (
	KindCopyBlock    = 252 // entire block stored raw, 256*BPP bytes follow
	KindLZBlock      = 253 // entire block coded by the light LZ pass
	KindPartialBlock = 254 // tail-of-superblock partial block (see partial.go)
)

// Plane kinds, packed two per byte (4 bits each) in the ordinary (non-marker)
// case.
const (
	PlaneAllSame  = 0 // all 256 bytes of the plane are equal
	PlaneAllRaw   = 1 // plane bypasses the row coder, 256 bytes verbatim
	PlaneNormal   = 2 // per-row coding, mins stored raw
	PlaneNormalRL = 3 // per-row coding, mins RLE-coded
)

// Row headers (4 bits, packed two per byte across a plane's 16 rows).
const (
	rowLiteral0 = 0 // literal bit-pack, width 0
	rowLiteral5 = 5 // literal bit-pack, width 5 (headers 0-5 => width = header)
	rowDeltaRLE = 6
	rowRLE      = 7
	rowDelta0   = 8  // delta bit-pack, width 0
	rowDelta5   = 13 // delta bit-pack, width 5 (headers 8-13 => width = header-8)
	rowLitRaw   = 14 // literal, 8-bit raw (no min stored)
	rowDeltaRaw = 15 // delta, 8-bit raw (no min stored)
)

const (
	rowsPerPlane   = 16
	bytesPerRow    = 16
	bytesPerPlane  = rowsPerPlane * bytesPerRow // 256
	elemsPerBlock  = 256
	kindPrefixByte = 1
)
