package block

import (
	"github.com/Thermadiag/stenos/transpose"
)

// EncodedSize is the size in bytes of one block's input: 256 elements of bpp
// bytes each.
func EncodedSize(bpp int) int {
	return elemsPerBlock * bpp
}

// Encode compresses one block (256*bpp bytes) of raw, element-major data into
// dst, returning the number of bytes written. It never writes more than
// EncodedSize(bpp)+1 bytes: the coder never produces a result larger than its
// input plus the kind prefix, falling back to a raw copy per plane when a
// coded representation would grow the data.
func Encode(bpp int, src []byte, dst []byte) int {
	lzBuf := make([]byte, len(src)+kindPrefixByte)
	lzN, lzOK := encodeLZ(bpp, src, lzBuf)

	planeBuf := make([]byte, len(src))
	transpose.Shuffle(bpp, src, planeBuf)

	kindPrefixLen := (bpp + 1) / 2
	kinds := make([]byte, bpp)
	payloads := make([][]byte, bpp)
	total := kindPrefixLen

	for p := 0; p < bpp; p++ {
		enc := encodePlane(planeBuf[p*bytesPerPlane : (p+1)*bytesPerPlane])
		kinds[p] = enc.kind
		payloads[p] = enc.payload
		total += len(enc.payload)
	}

	if lzOK && lzN < total && lzN < len(src)+kindPrefixByte {
		return copy(dst, lzBuf[:lzN])
	}

	if total >= len(src)+kindPrefixByte {
		dst[0] = KindCopyBlock
		copy(dst[1:], src)
		return 1 + len(src)
	}

	packPlaneKinds(dst[:kindPrefixLen], kinds)
	off := kindPrefixLen
	for p := 0; p < bpp; p++ {
		off += copy(dst[off:], payloads[p])
	}

	return off
}

// Decode reconstructs one block of 256*bpp raw bytes from src (as produced by
// Encode) into dst, returning the number of source bytes consumed.
func Decode(bpp int, src []byte, dst []byte) int {
	if src[0] == KindCopyBlock {
		n := elemsPerBlock * bpp
		copy(dst, src[1:1+n])
		return 1 + n
	}
	if src[0] == KindLZBlock {
		return decodeLZ(bpp, src, dst)
	}

	kindPrefixLen := (bpp + 1) / 2
	kinds := unpackPlaneKinds(src[:kindPrefixLen], bpp)

	planeBuf := make([]byte, bpp*bytesPerPlane)
	off := kindPrefixLen
	for p := 0; p < bpp; p++ {
		plane, n := decodePlaneAt(kinds[p], src[off:])
		copy(planeBuf[p*bytesPerPlane:(p+1)*bytesPerPlane], plane)
		off += n
	}

	transpose.Unshuffle(bpp, planeBuf, dst)

	return off
}

func packPlaneKinds(dst []byte, kinds []byte) {
	for i := 0; i < len(kinds); i += 2 {
		b := kinds[i]
		if i+1 < len(kinds) {
			b |= kinds[i+1] << 4
		}
		dst[i/2] = b
	}
}

func unpackPlaneKinds(src []byte, bpp int) []byte {
	kinds := make([]byte, bpp)
	for i := 0; i < bpp; i++ {
		b := src[i/2]
		if i%2 == 0 {
			kinds[i] = b & 0x0F
		} else {
			kinds[i] = b >> 4
		}
	}
	return kinds
}

// decodePlaneAt decodes one plane starting at src[0] and reports how many
// bytes of src it consumed, since plane payloads are variable length (RLE
// variants, ALL_SAME, etc.).
func decodePlaneAt(kind byte, src []byte) ([]byte, int) {
	switch kind {
	case PlaneAllSame:
		return decodePlane(kind, src[:1]), 1
	case PlaneAllRaw:
		return decodePlane(kind, src[:bytesPerPlane]), bytesPerPlane
	case PlaneNormal, PlaneNormalRL:
		n := measureNormalPlane(kind, src)
		return decodePlane(kind, src[:n]), n
	default:
		panic("block: invalid plane kind")
	}
}

// measureNormalPlane walks a NORMAL/NORMAL_RLE plane payload far enough to
// determine its total byte length, without fully decoding it, so the block
// decoder knows where the next plane begins.
func measureNormalPlane(kind byte, src []byte) int {
	headers := unpackHeaders(src[:8])
	off := 8

	k := 0
	for _, h := range headers {
		if hasStoredMin(h) {
			k++
		}
	}

	if kind == PlaneNormalRL {
		mask := uint16(src[off]) | uint16(src[off+1])<<8
		off += 2 + popcount16(mask)
	} else {
		off += k
	}

	for _, h := range headers {
		if h == rowRLE || h == rowDeltaRLE {
			mask := uint16(src[off]) | uint16(src[off+1])<<8
			off += 2 + popcount16(mask)
		} else {
			off += rowPayloadLen(h)
		}
	}

	return off
}

func popcount16(v uint16) int {
	n := 0
	for v != 0 {
		v &= v - 1
		n++
	}
	return n
}
