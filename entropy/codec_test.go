package entropy_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Thermadiag/stenos/entropy"
)

func TestCodecsRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	src := make([]byte, 64*1024)
	rng.Read(src)

	for _, alg := range []entropy.Algorithm{entropy.Zstd, entropy.S2, entropy.LZ4} {
		codec, err := entropy.Get(alg)
		require.NoError(t, err, alg.String())

		for _, level := range []int{1, 5, 9} {
			compressed, err := codec.Compress(nil, src, level)
			require.NoError(t, err, alg.String())

			out, err := codec.Decompress(nil, compressed, len(src))
			require.NoError(t, err, alg.String())
			require.Equal(t, src, out, alg.String())
		}
	}
}

func TestCodecsRoundTripRepetitive(t *testing.T) {
	src := make([]byte, 16*1024)
	for i := range src {
		src[i] = byte(i % 4)
	}

	for _, alg := range []entropy.Algorithm{entropy.Zstd, entropy.S2, entropy.LZ4} {
		codec, err := entropy.Get(alg)
		require.NoError(t, err, alg.String())

		compressed, err := codec.Compress(nil, src, 5)
		require.NoError(t, err, alg.String())
		require.Less(t, len(compressed), len(src), alg.String())

		out, err := codec.Decompress(nil, compressed, len(src))
		require.NoError(t, err, alg.String())
		require.Equal(t, src, out, alg.String())
	}
}

func TestCodecsEstimateRatioBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	src := make([]byte, 8*1024)
	rng.Read(src)

	for _, alg := range []entropy.Algorithm{entropy.Zstd, entropy.S2, entropy.LZ4} {
		codec, err := entropy.Get(alg)
		require.NoError(t, err, alg.String())

		ratio := codec.EstimateRatio(src)
		require.Greater(t, ratio, 0.0, alg.String())
	}
}

func TestCodecsEmptyInput(t *testing.T) {
	for _, alg := range []entropy.Algorithm{entropy.Zstd, entropy.S2, entropy.LZ4} {
		codec, err := entropy.Get(alg)
		require.NoError(t, err, alg.String())

		compressed, err := codec.Compress(nil, nil, 5)
		require.NoError(t, err, alg.String())

		out, err := codec.Decompress(nil, compressed, 0)
		require.NoError(t, err, alg.String())
		require.Empty(t, out, alg.String())
	}
}

func TestAlgorithmString(t *testing.T) {
	require.Equal(t, "zstd", entropy.Zstd.String())
	require.Equal(t, "s2", entropy.S2.String())
	require.Equal(t, "lz4", entropy.LZ4.String())
}
