// Package frame implements the frame codec: splitting a buffer into
// superblocks, dispatching each to the superblock orchestrator, optionally in
// parallel waves, and (de)serializing the frame header and per-superblock
// directory that make up the compressed wire format.
package frame

import (
	"github.com/Thermadiag/stenos/endian"
	"github.com/Thermadiag/stenos/errs"
	"github.com/Thermadiag/stenos/superblock"
)

// NoShift tells Compress to derive the superblock size automatically (the
// shift_byte ∈ {0..4} path) instead of using a caller-fixed custom
// superblock size.
const NoShift = -1

// CustomShiftMarker is the wire shift_byte value (255) that marks a
// caller-fixed superblock size, stored explicitly as a 4-byte field
// following the header.
const CustomShiftMarker = 255

// headerFixedSize is shift_byte(1) + decompressed_len(7).
const headerFixedSize = 8

// customSizeFieldSize is the extra 4-byte superblock_bytes field present only
// when shift_byte == CustomShiftMarker.
const customSizeFieldSize = 4

// superblockRecordHeaderSize is strategy_code(1) + compressed_len(3).
const superblockRecordHeaderSize = 4

// minSuperblockBytes is the smallest legal superblock size the bound()
// formula assumes (256 elements of the smallest meaningful element width
// class the format amortizes header overhead against).
const minSuperblockBytes = 65792

// header is the parsed frame header.
type header struct {
	shiftByte      byte
	decompressedLen uint64
	// superblockSize is the custom size field, set only when shiftByte ==
	// CustomShiftMarker; on the auto path it is 0 and the superblock size is
	// derived from shiftByte and BPP instead.
	superblockSize uint32
}

// HeaderSize returns the number of bytes writeHeader will write for a given
// custom flag.
func HeaderSize(custom bool) int {
	if custom {
		return headerFixedSize + customSizeFieldSize
	}
	return headerFixedSize
}

// writeHeader serializes h into dst, which must be at least HeaderSize(h
// has a custom size) bytes long. Returns the number of bytes written.
func writeHeader(h header, dst []byte) int {
	dst[0] = h.shiftByte
	endian.PutUint56(dst[1:8], h.decompressedLen)
	off := headerFixedSize

	if h.shiftByte == CustomShiftMarker {
		endian.Engine.PutUint32(dst[off:off+4], h.superblockSize)
		off += 4
	}

	return off
}

// parseHeader parses a frame header from the front of src, returning the
// parsed header and the number of bytes consumed.
func parseHeader(src []byte) (header, int, error) {
	if len(src) < headerFixedSize {
		return header{}, 0, errs.ErrSrcOverflow
	}

	h := header{
		shiftByte:       src[0],
		decompressedLen: endian.Uint56(src[1:8]),
	}
	off := headerFixedSize

	if h.shiftByte == CustomShiftMarker {
		if len(src) < off+4 {
			return header{}, 0, errs.ErrSrcOverflow
		}
		h.superblockSize = endian.Engine.Uint32(src[off : off+4])
		off += 4
	} else if h.shiftByte > 4 {
		return header{}, 0, errs.ErrInvalidInput
	}

	return h, off, nil
}

// writeSuperblockRecordHeader serializes a record's strategy code and
// 24-bit payload length.
func writeSuperblockRecordHeader(strategyCode byte, payloadLen int, dst []byte) {
	dst[0] = strategyCode
	endian.PutUint24(dst[1:4], uint32(payloadLen))
}

func parseSuperblockRecordHeader(src []byte) (strategyCode byte, payloadLen int, err error) {
	if len(src) < superblockRecordHeaderSize {
		return 0, 0, errs.ErrSrcOverflow
	}
	return src[0], int(endian.Uint24(src[1:4])), nil
}

// PeekHeader parses a frame's header without decompressing its body,
// returning the logical decompressed length and, for a custom superblock,
// its byte size. Exists so callers that need to validate or pre-size around
// a frame before committing to a full Decompress call (e.g. cvec.Deserialize,
// which must reject a frame whose custom superblock size doesn't match its
// own chunk byte size) don't need to duplicate the header parsing logic.
func PeekHeader(src []byte) (decompressedLen int64, custom bool, superblockBytes uint32, err error) {
	h, _, err := parseHeader(src)
	if err != nil {
		return 0, false, 0, err
	}
	return int64(h.decompressedLen), h.shiftByte == CustomShiftMarker, h.superblockSize, nil
}

// SuperblockInfo describes one superblock record within a frame, for
// diagnostic and observability use.
type SuperblockInfo struct {
	Strategy     superblock.Strategy
	PayloadLen   int
	LogicalBytes int
}

// Inspect walks a frame's header and per-superblock directory without
// decompressing any payload, returning the strategy code and sizes chosen for
// each superblock. Useful for diagnostics and tests that want to assert which
// strategy the orchestrator picked without round-tripping the data.
func Inspect(bpp int, src []byte) ([]SuperblockInfo, error) {
	h, off, err := parseHeader(src)
	if err != nil {
		return nil, err
	}

	n := int(h.decompressedLen)
	sbSize := int(h.superblockSize)
	if h.shiftByte != CustomShiftMarker {
		sbSize = autoBase(bpp) << h.shiftByte
	}
	if sbSize <= 0 {
		sbSize = n
	}

	ranges := superblockBounds(n, sbSize)

	infos := make([]SuperblockInfo, 0, len(ranges))
	pos := off
	for _, r := range ranges {
		strategyCode, payloadLen, err := parseSuperblockRecordHeader(src[pos:])
		if err != nil {
			return nil, err
		}
		pos += superblockRecordHeaderSize

		if pos+payloadLen > len(src) {
			return nil, errs.ErrSrcOverflow
		}

		infos = append(infos, SuperblockInfo{
			Strategy:     superblock.Strategy(strategyCode),
			PayloadLen:   payloadLen,
			LogicalBytes: r.end - r.start,
		})
		pos += payloadLen
	}

	return infos, nil
}

// Bound returns an upper bound on the compressed size of an n-byte buffer:
// a fixed header plus one 4-byte record header per superblock plus n itself,
// sized against the smallest superblock the automatic sizing can choose
// (minSuperblockBytes), so the estimate holds for any BPP on that path. A
// caller-fixed block shift can yield superblocks smaller than that, and then
// the frame can exceed this bound; BoundForShift covers that case.
func Bound(n int64) int64 {
	if n < 0 {
		n = 0
	}

	superblocks := n / minSuperblockBytes
	if n%minSuperblockBytes != 0 {
		superblocks++
	}
	if superblocks < 1 {
		superblocks = 1
	}

	return 12 + superblocks*4 + n
}

// BoundForShift returns an upper bound on the compressed size of an n-byte
// buffer when compressed with a caller-fixed block shift, rather than the
// automatic sizing Bound assumes. A custom shift can make the superblock
// larger than minSuperblockBytes, which tightens the directory-overhead
// term, or smaller, which widens it.
func BoundForShift(bpp int, n int64, shift int) int64 {
	if shift == NoShift {
		return Bound(n)
	}
	if n < 0 {
		n = 0
	}

	sbSize := int64(256*bpp) << uint(shift)
	if sbSize <= 0 {
		return Bound(n)
	}

	superblocks := n / sbSize
	if n%sbSize != 0 {
		superblocks++
	}
	if superblocks < 1 {
		superblocks = 1
	}

	return int64(HeaderSize(true)) + superblocks*int64(superblockRecordHeaderSize) + n
}

// BoundBatch returns an upper bound on the total compressed size of a batch
// of buffers of the given lengths, for callers who want to size one
// destination buffer once per batch rather than calling Bound per item.
func BoundBatch(ns []int64) int64 {
	var total int64
	for _, n := range ns {
		total += Bound(n)
	}
	return total
}
