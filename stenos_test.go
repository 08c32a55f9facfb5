package stenos_test

import (
	"encoding/binary"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Thermadiag/stenos"
)

func roundTrip(t *testing.T, ctx *stenos.Context, bpp int, src []byte) {
	t.Helper()

	dst := make([]byte, ctx.Bound(bpp, int64(len(src))))
	n, err := ctx.Compress(bpp, src, dst)
	require.NoError(t, err)

	back := make([]byte, len(src))
	m, err := ctx.Decompress(bpp, dst[:n], back)
	require.NoError(t, err)
	require.Equal(t, len(src), m)
	require.Equal(t, src, back)
}

func TestContextDefaults(t *testing.T) {
	ctx, err := stenos.MakeContext()
	require.NoError(t, err)

	src := []byte("hello stenos")
	roundTrip(t, ctx, 1, src)
}

func TestContextAllSame(t *testing.T) {
	ctx, err := stenos.MakeContext(stenos.WithLevel(5))
	require.NoError(t, err)

	src := make([]byte, 1024)
	for i := range src {
		src[i] = 0x7B
	}
	roundTrip(t, ctx, 1, src)
}

func TestContextSortedU32(t *testing.T) {
	ctx, err := stenos.MakeContext(stenos.WithLevel(3))
	require.NoError(t, err)

	n := 65536
	src := make([]byte, n*4)
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint32(src[i*4:], uint32(i))
	}
	roundTrip(t, ctx, 4, src)
}

func TestContextRandomU16(t *testing.T) {
	ctx, err := stenos.MakeContext(stenos.WithLevel(1))
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(42))
	src := make([]byte, 1<<20)
	rng.Read(src)

	dst := make([]byte, stenos.Bound(int64(len(src))))
	n, err := ctx.Compress(2, src, dst)
	require.NoError(t, err)
	require.LessOrEqual(t, n, len(src), "compressed output must never expand")

	back := make([]byte, len(src))
	m, err := ctx.Decompress(2, dst[:n], back)
	require.NoError(t, err)
	require.Equal(t, len(src), m)
	require.Equal(t, src, back)
}

func TestContextMultiThreaded(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	src := make([]byte, 2*1024*1024)
	rng.Read(src)

	for _, threads := range []int{1, 2, 4, 8} {
		ctx, err := stenos.MakeContext(stenos.WithLevel(4), stenos.WithThreads(threads))
		require.NoError(t, err)
		roundTrip(t, ctx, 4, src)
	}
}

func TestContextCustomBlockShift(t *testing.T) {
	ctx, err := stenos.MakeContext(stenos.WithLevel(5))
	require.NoError(t, err)
	ctx.SetBlockShift(1)

	rng := rand.New(rand.NewSource(23))
	src := make([]byte, 512*1024)
	rng.Read(src)

	roundTrip(t, ctx, 4, src)
}

func TestContextSetLevelRejectsOutOfRange(t *testing.T) {
	ctx, err := stenos.MakeContext()
	require.NoError(t, err)

	require.Error(t, ctx.SetLevel(10))
	require.Error(t, ctx.SetLevel(-1))
}

func TestContextBoundMatchesFormula(t *testing.T) {
	require.Equal(t, int64(12+1*4+0), stenos.Bound(0))
}

func TestContextBoundAccountsForCustomShift(t *testing.T) {
	unshifted, err := stenos.MakeContext()
	require.NoError(t, err)
	require.Equal(t, stenos.Bound(1<<20), unshifted.Bound(4, 1<<20), "an unshifted Context's bound matches the package-level helper")

	shifted, err := stenos.MakeContext()
	require.NoError(t, err)
	shifted.SetBlockShift(7) // 1024*2^7 = 131072-byte superblocks, larger than the 65792-byte auto-path floor
	require.Less(t, shifted.Bound(4, 1<<20), stenos.Bound(1<<20), "a larger custom superblock amortizes per-superblock directory overhead, tightening the bound")
}

func TestContextInspectReportsStrategies(t *testing.T) {
	ctx, err := stenos.MakeContext(stenos.WithLevel(5))
	require.NoError(t, err)

	src := make([]byte, 1024)
	for i := range src {
		src[i] = 0x7B
	}

	dst := make([]byte, stenos.Bound(int64(len(src))))
	n, err := ctx.Compress(1, src, dst)
	require.NoError(t, err)

	infos, err := ctx.Inspect(1, dst[:n])
	require.NoError(t, err)
	require.NotEmpty(t, infos)

	total := 0
	for _, info := range infos {
		total += info.LogicalBytes
	}
	require.Equal(t, len(src), total)
}
