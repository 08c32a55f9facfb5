package block

// lzSupportedWidths are the element byte-widths the light LZ pass supports.
// Widths outside this set disable the pass for a given bpp.
var lzSupportedWidths = map[int]bool{3: true, 4: true, 6: true, 8: true}

const (
	lzGroupSize = 8   // elements per anchor byte
	lzHashSize  = 256 // hash table entries
	lzMaxOffset = 255 // elements; window is the current block only
)

// encodeLZ attempts the light-LZ block encoding. It returns ok=false (falling
// back to the row coder) when bpp is unsupported or the pass would not fit
// within dst, and aborts early if its own output is already tracking too
// close to the worst case to be worth finishing.
func encodeLZ(bpp int, src, dst []byte) (int, bool) {
	if !lzSupportedWidths[bpp] {
		return 0, false
	}

	n := elemsPerBlock
	maxSize := len(dst) - 1 // reserve the KindLZBlock marker byte
	if maxSize <= 0 {
		return 0, false
	}

	var table [lzHashSize]int32
	for i := range table {
		table[i] = -1
	}

	out := make([]byte, 0, len(src))
	quarter := n / 4

	for g := 0; g < n; g += lzGroupSize {
		var anchor byte
		group := make([]byte, 0, lzGroupSize*bpp)

		for j := 0; j < lzGroupSize; j++ {
			idx := g + j
			elem := src[idx*bpp : idx*bpp+bpp]
			h := lzHash(elem)

			if cand := table[h]; cand >= 0 {
				offset := idx - int(cand)
				if offset >= 1 && offset <= lzMaxOffset && elemEqual(src, int(cand), idx, bpp) {
					anchor |= 1 << uint(j)
					group = appendBackref(group, offset)
					table[h] = int32(idx)
					continue
				}
			}

			table[h] = int32(idx)
			group = append(group, elem...)
		}

		out = append(out, anchor)
		out = append(out, group...)

		if len(out) > maxSize {
			return 0, false
		}
		if idx := g + lzGroupSize; idx == quarter*1 && len(out) > (maxSize*40)/100 {
			return 0, false
		}
	}

	dst[0] = KindLZBlock
	copy(dst[1:], out)

	return 1 + len(out), true
}

func decodeLZ(bpp int, src, dst []byte) int {
	pos := 1 // skip marker

	for elemIdx := 0; elemIdx < elemsPerBlock; {
		anchor := src[pos]
		pos++

		for j := 0; j < lzGroupSize; j++ {
			if anchor&(1<<uint(j)) != 0 {
				offset, n := readBackref(src[pos:])
				pos += n
				srcStart := (elemIdx - offset) * bpp
				copy(dst[elemIdx*bpp:elemIdx*bpp+bpp], dst[srcStart:srcStart+bpp])
			} else {
				copy(dst[elemIdx*bpp:elemIdx*bpp+bpp], src[pos:pos+bpp])
				pos += bpp
			}
			elemIdx++
		}
	}

	return pos
}

func lzHash(elem []byte) int {
	var h uint32
	for _, b := range elem {
		h = h*131 + uint32(b)
	}
	return int(h % lzHashSize)
}

func elemEqual(src []byte, a, b, bpp int) bool {
	for i := 0; i < bpp; i++ {
		if src[a*bpp+i] != src[b*bpp+i] {
			return false
		}
	}
	return true
}

func appendBackref(dst []byte, offset int) []byte {
	if offset <= 0x7F {
		return append(dst, byte(offset))
	}
	return append(dst, byte(0x80|(offset&0x7F)), byte(offset>>7))
}

func readBackref(src []byte) (offset, consumed int) {
	b0 := src[0]
	if b0&0x80 == 0 {
		return int(b0), 1
	}
	return int(b0&0x7F) | int(src[1])<<7, 2
}
