// Package bytedelta implements a per-byte delta transform split across four
// contiguous streams so the inverse (prefix-sum) vectorizes.
//
// Delta splits src into four contiguous quarters when n > quarterThreshold,
// otherwise treats src as a single stream. Each stream's first byte is stored
// verbatim; each subsequent byte stores the wrapping difference from its
// predecessor. Any bytes left over because n does not divide evenly by four
// (n - 4*floor(n/4)) form a tail that is copied verbatim, unmodified, after the
// four streams — encoder and decoder must agree on this exact layout.
package bytedelta

// quarterThreshold is the size above which Delta splits its input into four
// independent streams, matching the inverse's four-way vectorized prefix sum.
const quarterThreshold = 2048

// Delta writes the byte-delta transform of src into dst. len(src) must equal
// len(dst) == n.
func Delta(dst, src []byte) {
	n := len(src)
	if n == 0 {
		return
	}

	if n <= quarterThreshold {
		deltaStream(dst, src)
		return
	}

	q := n / 4
	for i := 0; i < 4; i++ {
		deltaStream(dst[i*q:i*q+q], src[i*q:i*q+q])
	}

	// Tail: n - 4*q bytes, copied verbatim.
	copy(dst[4*q:], src[4*q:])
}

// DeltaInv is the exact inverse of Delta.
func DeltaInv(dst, src []byte) {
	n := len(src)
	if n == 0 {
		return
	}

	if n <= quarterThreshold {
		deltaInvStream(dst, src)
		return
	}

	q := n / 4
	for i := 0; i < 4; i++ {
		deltaInvStream(dst[i*q:i*q+q], src[i*q:i*q+q])
	}

	copy(dst[4*q:], src[4*q:])
}

func deltaStream(dst, src []byte) {
	if len(src) == 0 {
		return
	}

	dst[0] = src[0]
	for i := 1; i < len(src); i++ {
		dst[i] = src[i] - src[i-1]
	}
}

func deltaInvStream(dst, src []byte) {
	if len(src) == 0 {
		return
	}

	dst[0] = src[0]
	for i := 1; i < len(src); i++ {
		dst[i] = dst[i-1] + src[i]
	}
}
