package transpose_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Thermadiag/stenos/transpose"
)

func TestShuffleUnshuffleIdentity(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for _, bpp := range []int{1, 2, 3, 4, 5, 6, 7, 8, 12, 16, 17, 32, 48, 256} {
		for _, elems := range []int{0, 1, 2, 16, 255, 256, 1000} {
			n := elems * bpp
			src := make([]byte, n)
			rng.Read(src)

			shuffled := make([]byte, n)
			transpose.Shuffle(bpp, src, shuffled)

			back := make([]byte, n)
			transpose.Unshuffle(bpp, shuffled, back)

			require.Equal(t, src, back, "bpp=%d elems=%d", bpp, elems)
		}
	}
}

func TestShuffleKnownMapping(t *testing.T) {
	// bpp=2, 3 elements: [A0 A1][B0 B1][C0 C1] -> [A0 B0 C0][A1 B1 C1]
	src := []byte{0xA0, 0xA1, 0xB0, 0xB1, 0xC0, 0xC1}
	dst := make([]byte, len(src))
	transpose.Shuffle(2, src, dst)
	require.Equal(t, []byte{0xA0, 0xB0, 0xC0, 0xA1, 0xB1, 0xC1}, dst)
}
