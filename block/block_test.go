package block_test

import (
	"encoding/binary"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Thermadiag/stenos/block"
)

func randBlock(rng *rand.Rand, bpp int) []byte {
	buf := make([]byte, block.EncodedSize(bpp))
	rng.Read(buf)
	return buf
}

func TestEncodeDecodeBlockRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for _, bpp := range []int{1, 2, 3, 4, 6, 8, 12, 16, 17} {
		src := randBlock(rng, bpp)
		dst := make([]byte, len(src)+1)
		n := block.Encode(bpp, src, dst)
		require.LessOrEqual(t, n, len(src)+1, "bpp=%d", bpp)

		back := make([]byte, len(src))
		consumed := block.Decode(bpp, dst[:n], back)
		require.Equal(t, n, consumed, "bpp=%d", bpp)
		require.Equal(t, src, back, "bpp=%d", bpp)
	}
}

func TestEncodeDecodeAllSameBlock(t *testing.T) {
	bpp := 4
	src := make([]byte, block.EncodedSize(bpp))
	for i := range src {
		src[i] = 0x7B
	}

	dst := make([]byte, len(src)+1)
	n := block.Encode(bpp, src, dst)
	require.Less(t, n, len(src)/4, "uniform block should compress well")

	back := make([]byte, len(src))
	block.Decode(bpp, dst[:n], back)
	require.Equal(t, src, back)
}

func TestEncodeDecodeSortedU32Block(t *testing.T) {
	bpp := 4
	n := block.EncodedSize(bpp) / bpp
	src := make([]byte, n*bpp)
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint32(src[i*bpp:], uint32(i))
	}

	dst := make([]byte, len(src)+1)
	w := block.Encode(bpp, src, dst)
	require.Less(t, w, len(src))

	back := make([]byte, len(src))
	block.Decode(bpp, dst[:w], back)
	require.Equal(t, src, back)
}

func TestEncodeBlocksWithPartialTail(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for _, bpp := range []int{1, 2, 4} {
		fullBlocks := 3
		tailElems := 37 // > 16 elements, not a multiple of 256
		n := fullBlocks*256 + tailElems
		src := make([]byte, n*bpp)
		rng.Read(src)

		dst := make([]byte, len(src)+fullBlocks+1+2*bpp+256)
		w := block.EncodeBlocks(bpp, src, dst)

		back := make([]byte, len(src))
		consumed := block.DecodeBlocks(bpp, dst[:w], back)
		require.Equal(t, w, consumed, "bpp=%d", bpp)
		require.Equal(t, src, back, "bpp=%d", bpp)
	}
}

func TestEncodeBlocksWithTooShortTail(t *testing.T) {
	bpp := 2
	n := 256 + 5 // tail of 5 elements, shorter than one 16-element line
	src := make([]byte, n*bpp)
	rng := rand.New(rand.NewSource(9))
	rng.Read(src)

	dst := make([]byte, len(src)+2)
	w := block.EncodeBlocks(bpp, src, dst)

	back := make([]byte, len(src))
	consumed := block.DecodeBlocks(bpp, dst[:w], back)
	require.Equal(t, w, consumed)
	require.Equal(t, src, back)
}

func TestEncodeBlocksExactMultiple(t *testing.T) {
	bpp := 8
	rng := rand.New(rand.NewSource(3))
	n := 256 * 2
	src := make([]byte, n*bpp)
	rng.Read(src)

	dst := make([]byte, len(src)+3)
	w := block.EncodeBlocks(bpp, src, dst)

	back := make([]byte, len(src))
	consumed := block.DecodeBlocks(bpp, dst[:w], back)
	require.Equal(t, w, consumed)
	require.Equal(t, src, back)
}
