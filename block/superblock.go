package block

// EncodeBlocks block-codes an entire superblock's worth of element-major
// bytes: every full 256-element block via Encode, and (when src does not
// divide evenly) the shorter tail via EncodePartial, falling back to a raw
// copy if the tail is too short for even one 16-element line or if the
// partial coding would not shrink it. This is what the BLOCK and
// BLOCK_ENTROPY superblock strategies (package superblock) call to produce
// the bytes they either emit directly or hand to the entropy coder.
func EncodeBlocks(bpp int, src []byte, dst []byte) int {
	blockBytes := EncodedSize(bpp)
	n := len(src)
	off, doff := 0, 0

	for off+blockBytes <= n {
		doff += Encode(bpp, src[off:off+blockBytes], dst[doff:])
		off += blockBytes
	}

	if off < n {
		doff += encodeTailBlock(bpp, src[off:], dst[doff:])
	}

	return doff
}

// DecodeBlocks is the exact inverse of EncodeBlocks. len(dst) must equal the
// original superblock's logical byte length.
func DecodeBlocks(bpp int, src []byte, dst []byte) int {
	blockBytes := EncodedSize(bpp)
	n := len(dst)
	off, soff := 0, 0

	for off+blockBytes <= n {
		soff += Decode(bpp, src[soff:], dst[off:off+blockBytes])
		off += blockBytes
	}

	if off < n {
		soff += decodeTailBlock(bpp, src[soff:], dst[off:])
	}

	return soff
}

func encodeTailBlock(bpp int, tail, dst []byte) int {
	if len(tail)/bpp >= bytesPerRow {
		scratch := make([]byte, len(tail)+1)
		n := EncodePartial(bpp, tail, scratch)
		if n < len(tail)+1 {
			copy(dst, scratch[:n])
			return n
		}
	}

	dst[0] = KindCopyBlock
	copy(dst[1:], tail)
	return 1 + len(tail)
}

func decodeTailBlock(bpp int, src, tail []byte) int {
	if src[0] == KindCopyBlock {
		copy(tail, src[1:1+len(tail)])
		return 1 + len(tail)
	}

	return DecodePartial(bpp, src, tail)
}
