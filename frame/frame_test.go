package frame_test

import (
	"encoding/binary"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Thermadiag/stenos/entropy"
	"github.com/Thermadiag/stenos/frame"
)

func newParams(bpp, level, threads int) frame.Params {
	zstd, _ := entropy.Get(entropy.Zstd)
	s2, _ := entropy.Get(entropy.S2)
	return frame.Params{
		BPP:       bpp,
		Level:     level,
		Threads:   threads,
		Entropy:   zstd,
		Estimator: s2,
		BlockShift: frame.NoShift,
	}
}

func roundTrip(t *testing.T, p frame.Params, src []byte) {
	t.Helper()

	bound := frame.BoundForShift(p.BPP, int64(len(src)), p.BlockShift)
	dst := make([]byte, bound+64)

	n, err := frame.Compress(p, src, dst)
	require.NoError(t, err)
	require.LessOrEqual(t, int64(n), bound)

	back := make([]byte, len(src))
	m, err := frame.Decompress(p, dst[:n], back)
	require.NoError(t, err)
	require.Equal(t, len(src), m)
	require.Equal(t, src, back)
}

func TestFrameRoundTripAllSame(t *testing.T) {
	src := make([]byte, 1024)
	for i := range src {
		src[i] = 0x7B
	}

	p := newParams(1, 5, 1)
	roundTrip(t, p, src)
}

func TestFrameRoundTripSortedU32(t *testing.T) {
	n := 65536
	src := make([]byte, n*4)
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint32(src[i*4:], uint32(i))
	}

	p := newParams(4, 3, 1)
	roundTrip(t, p, src)
}

func TestFrameRoundTripRandomU16(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	src := make([]byte, 1<<20)
	rng.Read(src)

	p := newParams(2, 1, 1)
	roundTrip(t, p, src)
}

func TestFrameRoundTripPartialTailBlock(t *testing.T) {
	bpp := 4
	n := 17*256 + 37
	rng := rand.New(rand.NewSource(5))
	src := make([]byte, n*bpp)
	rng.Read(src)

	p := newParams(bpp, 9, 1)
	roundTrip(t, p, src)
}

func TestFrameRoundTripMultiThreaded(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	src := make([]byte, 4*1024*1024)
	rng.Read(src)

	for _, threads := range []int{1, 2, 4, 8} {
		p := newParams(4, 4, threads)
		roundTrip(t, p, src)
	}
}

func TestFrameDeterministicAcrossThreads(t *testing.T) {
	rng := rand.New(rand.NewSource(13))
	src := make([]byte, 2*1024*1024)
	rng.Read(src)

	p1 := newParams(4, 4, 1)
	bound := frame.Bound(int64(len(src)))
	dst1 := make([]byte, bound)
	n1, err := frame.Compress(p1, src, dst1)
	require.NoError(t, err)

	p8 := newParams(4, 4, 8)
	dst8 := make([]byte, bound)
	n8, err := frame.Compress(p8, src, dst8)
	require.NoError(t, err)

	require.Equal(t, dst1[:n1], dst8[:n8], "compressed output must be byte-identical regardless of thread count")
}

func TestFrameCompressEmpty(t *testing.T) {
	p := newParams(4, 5, 1)
	dst := make([]byte, frame.Bound(0)+8)

	n, err := frame.Compress(p, nil, dst)
	require.NoError(t, err)

	back := make([]byte, 0)
	m, err := frame.Decompress(p, dst[:n], back)
	require.NoError(t, err)
	require.Equal(t, 0, m)
}

func TestFrameDstOverflow(t *testing.T) {
	src := make([]byte, 1<<20)
	rng := rand.New(rand.NewSource(21))
	rng.Read(src)

	p := newParams(2, 5, 1)
	dst := make([]byte, 4) // far too small

	_, err := frame.Compress(p, src, dst)
	require.Error(t, err)
}

func TestFrameCustomBlockShift(t *testing.T) {
	bpp := 4
	rng := rand.New(rand.NewSource(23))
	src := make([]byte, 512*1024)
	rng.Read(src)

	p := newParams(bpp, 5, 1)
	p.BlockShift = 1

	roundTrip(t, p, src)
}
