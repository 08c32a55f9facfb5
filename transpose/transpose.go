// Package transpose implements byte-transposition: the per-byte-position
// de/interleave of a BPP×N tile that every other stenos component builds on.
//
// Shuffle interprets src as an (n_bytes/BPP) × BPP matrix of bytes, stored row
// major (one element's bytes are contiguous), and writes its transpose into
// dst: dst holds BPP planes of (n_bytes/BPP) bytes each, where plane p contains
// byte position p of every element in order. Unshuffle is the exact inverse.
//
// The mapping must be bit-exact across implementations so compressed output
// stays portable: the mapping is the only thing that matters, not the
// mechanism used to compute it, so a scalar implementation is always correct;
// it is simply slower than a width-specialized one. Dedicated fast paths exist
// for BPP ∈ {2,4,8} (the common numeric widths) and a general path serves
// every other BPP, including "wide" BPP that are themselves multiples of 16.
package transpose

// Shuffle writes the transpose of src (interpreted as rows of width bpp) into
// dst. Contract: len(src) == len(dst), len(src) % bpp == 0, bpp >= 1. The
// caller guarantees these; Shuffle has no error path.
func Shuffle(bpp int, src, dst []byte) {
	switch bpp {
	case 1:
		copy(dst, src)
	case 2:
		shuffle2(src, dst)
	case 4:
		shuffle4(src, dst)
	case 8:
		shuffle8(src, dst)
	default:
		shuffleGeneric(bpp, src, dst)
	}
}

// Unshuffle is the exact inverse of Shuffle.
func Unshuffle(bpp int, src, dst []byte) {
	switch bpp {
	case 1:
		copy(dst, src)
	case 2:
		unshuffle2(src, dst)
	case 4:
		unshuffle4(src, dst)
	case 8:
		unshuffle8(src, dst)
	default:
		unshuffleGeneric(bpp, src, dst)
	}
}

// shuffleGeneric handles every BPP, including the "wide tile" case where bpp is
// itself a multiple of 16 — the loop structure is identical, only bpp varies,
// since the byte mapping is width-independent.
func shuffleGeneric(bpp int, src, dst []byte) {
	n := len(src) / bpp
	if n == 0 {
		return
	}
	for col := 0; col < bpp; col++ {
		d := dst[col*n : col*n+n]
		s := src[col:]
		for row := 0; row < n; row++ {
			d[row] = s[row*bpp]
		}
	}
}

func unshuffleGeneric(bpp int, src, dst []byte) {
	n := len(src) / bpp
	if n == 0 {
		return
	}
	for col := 0; col < bpp; col++ {
		s := src[col*n : col*n+n]
		d := dst[col:]
		for row := 0; row < n; row++ {
			d[row*bpp] = s[row]
		}
	}
}

func shuffle2(src, dst []byte) {
	n := len(src) / 2
	p0, p1 := dst[:n], dst[n:2*n]
	for row := 0; row < n; row++ {
		e := src[row*2 : row*2+2]
		p0[row] = e[0]
		p1[row] = e[1]
	}
}

func unshuffle2(src, dst []byte) {
	n := len(src) / 2
	p0, p1 := src[:n], src[n:2*n]
	for row := 0; row < n; row++ {
		e := dst[row*2 : row*2+2]
		e[0] = p0[row]
		e[1] = p1[row]
	}
}

func shuffle4(src, dst []byte) {
	n := len(src) / 4
	p0, p1, p2, p3 := dst[:n], dst[n:2*n], dst[2*n:3*n], dst[3*n:4*n]
	for row := 0; row < n; row++ {
		e := src[row*4 : row*4+4]
		p0[row], p1[row], p2[row], p3[row] = e[0], e[1], e[2], e[3]
	}
}

func unshuffle4(src, dst []byte) {
	n := len(src) / 4
	p0, p1, p2, p3 := src[:n], src[n:2*n], src[2*n:3*n], src[3*n:4*n]
	for row := 0; row < n; row++ {
		e := dst[row*4 : row*4+4]
		e[0], e[1], e[2], e[3] = p0[row], p1[row], p2[row], p3[row]
	}
}

func shuffle8(src, dst []byte) {
	n := len(src) / 8
	planes := [8][]byte{}
	for i := range planes {
		planes[i] = dst[i*n : i*n+n]
	}
	for row := 0; row < n; row++ {
		e := src[row*8 : row*8+8]
		for i := 0; i < 8; i++ {
			planes[i][row] = e[i]
		}
	}
}

func unshuffle8(src, dst []byte) {
	n := len(src) / 8
	planes := [8][]byte{}
	for i := range planes {
		planes[i] = src[i*n : i*n+n]
	}
	for row := 0; row < n; row++ {
		e := dst[row*8 : row*8+8]
		for i := 0; i < 8; i++ {
			e[i] = planes[i][row]
		}
	}
}
