package bytedelta_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Thermadiag/stenos/bytedelta"
)

func TestDeltaInvIdentity(t *testing.T) {
	rng := rand.New(rand.NewSource(2))

	for _, n := range []int{0, 1, 2, 100, 2048, 2049, 4096, 4099, 10007} {
		src := make([]byte, n)
		rng.Read(src)

		delta := make([]byte, n)
		bytedelta.Delta(delta, src)

		back := make([]byte, n)
		bytedelta.DeltaInv(back, delta)

		require.Equal(t, src, back, "n=%d", n)
	}
}

func TestDeltaSingleStreamRamp(t *testing.T) {
	// n=10: single-stream path (below threshold), exercised by a simple
	// monotonic ramp to check deltas are all 1 after the first byte.
	src := []byte{5, 6, 7, 8, 9, 10, 11, 12, 13, 14}
	dst := make([]byte, len(src))
	bytedelta.Delta(dst, src)
	require.Equal(t, byte(5), dst[0])
	for i := 1; i < len(dst); i++ {
		require.Equal(t, byte(1), dst[i])
	}
}
