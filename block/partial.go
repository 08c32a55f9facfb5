package block

import "github.com/Thermadiag/stenos/transpose"

// EncodePartial encodes the tail block of a superblock when its logical
// length is shorter than a full block (256*bpp bytes) but still spans at
// least one 16-element line. len(src) must be a multiple of bpp and
// len(src)/bpp must be >= bytesPerRow; the caller (EncodeBlocks) guarantees
// this and falls back to a raw copy otherwise.
//
// Layout: marker byte (KindPartialBlock), then, for each of the bpp planes,
// the row-coded lines (same row coder as a full plane, just fewer rows and no
// plane-kind selection), then the residual bytes copied verbatim.
func EncodePartial(bpp int, src []byte, dst []byte) int {
	numElems := len(src) / bpp
	lines := numElems / bytesPerRow
	lineBytes := lines * bytesPerRow * bpp
	residual := src[lineBytes:]

	dst[0] = KindPartialBlock
	off := 1

	planeLen := lines * bytesPerRow
	planeBuf := make([]byte, bpp*planeLen)
	if lineBytes > 0 {
		transpose.Shuffle(bpp, src[:lineBytes], planeBuf)
	}

	for p := 0; p < bpp; p++ {
		plane := planeBuf[p*planeLen : (p+1)*planeLen]
		off += encodePartialPlane(plane, lines, dst[off:])
	}

	off += copy(dst[off:], residual)

	return off
}

// DecodePartial is the exact inverse of EncodePartial. len(dst) is the
// partial block's logical byte length L.
func DecodePartial(bpp int, src []byte, dst []byte) int {
	numElems := len(dst) / bpp
	lines := numElems / bytesPerRow
	lineBytes := lines * bytesPerRow * bpp
	residualLen := len(dst) - lineBytes

	pos := 1 // skip marker

	planeLen := lines * bytesPerRow
	planeBuf := make([]byte, bpp*planeLen)

	for p := 0; p < bpp; p++ {
		n := decodePartialPlane(planeBuf[p*planeLen:(p+1)*planeLen], lines, src[pos:])
		pos += n
	}

	if lineBytes > 0 {
		transpose.Unshuffle(bpp, planeBuf, dst[:lineBytes])
	}

	pos += copy(dst[lineBytes:], src[pos:pos+residualLen])

	return pos
}

// encodePartialPlane row-codes a plane of lines*bytesPerRow bytes (lines <
// rowsPerPlane), writing packed headers + stored mins + row payloads into
// dst, and returns the number of bytes written. Unlike encodePlane, this
// never selects an ALL_SAME/ALL_RAW/RLE-mins plane kind; the caller
// (EncodeBlocks) is responsible for falling back to a raw copy of the whole
// tail if this coding does not shrink it.
func encodePartialPlane(plane []byte, lines int, dst []byte) int {
	headers := make([]int, lines)
	rows := make([]rowEncoding, lines)
	var mins []byte

	for r := 0; r < lines; r++ {
		var row [bytesPerRow]byte
		copy(row[:], plane[r*bytesPerRow:(r+1)*bytesPerRow])

		var carry byte
		if r > 0 {
			carry = plane[(r-1)*bytesPerRow+bytesPerRow-1]
		}

		rows[r] = analyzeRow(row, carry)
		headers[r] = rows[r].header
		if rows[r].hasMin {
			mins = append(mins, rows[r].min)
		}
	}

	off := copy(dst, packHeadersN(headers))
	off += copy(dst[off:], mins)
	for r := 0; r < lines; r++ {
		off += copy(dst[off:], rows[r].payload)
	}

	return off
}

func decodePartialPlane(plane []byte, lines int, src []byte) int {
	hdrLen := (lines + 1) / 2
	headers := unpackHeadersN(src[:hdrLen], lines)
	off := hdrLen

	k := 0
	for _, h := range headers {
		if hasStoredMin(h) {
			k++
		}
	}
	mins := src[off : off+k]
	off += k
	minIdx := 0

	for r := 0; r < lines; r++ {
		h := headers[r]
		var min byte
		if hasStoredMin(h) {
			min = mins[minIdx]
			minIdx++
		}

		var rowPayload []byte
		if h == rowRLE || h == rowDeltaRLE {
			n := 2 + popcount16(uint16(src[off])|uint16(src[off+1])<<8)
			rowPayload = src[off : off+n]
			off += n
		} else {
			n := rowPayloadLen(h)
			rowPayload = src[off : off+n]
			off += n
		}

		var carry byte
		if r > 0 {
			carry = plane[(r-1)*bytesPerRow+bytesPerRow-1]
		}

		row := decodeRow(h, min, rowPayload, carry)
		copy(plane[r*bytesPerRow:(r+1)*bytesPerRow], row[:])
	}

	return off
}

func packHeadersN(headers []int) []byte {
	n := len(headers)
	out := make([]byte, (n+1)/2)
	for i := 0; i < n; i += 2 {
		b := byte(headers[i])
		if i+1 < n {
			b |= byte(headers[i+1]) << 4
		}
		out[i/2] = b
	}
	return out
}

func unpackHeadersN(data []byte, n int) []int {
	headers := make([]int, n)
	for i := 0; i < n; i++ {
		b := data[i/2]
		if i%2 == 0 {
			headers[i] = int(b & 0x0F)
		} else {
			headers[i] = int(b >> 4)
		}
	}
	return headers
}
