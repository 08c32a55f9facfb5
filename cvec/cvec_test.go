package cvec_test

import (
	"encoding/binary"
	"math/rand"
	"sort"
	"sync"
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/stretchr/testify/require"

	"github.com/Thermadiag/stenos/cvec"
)

func TestVectorPushSortIterate(t *testing.T) {
	v, err := cvec.New[uint32](cvec.DefaultOptions())
	require.NoError(t, err)

	const count = 1000

	for i := uint32(0); i < count; i++ {
		require.NoError(t, v.PushBack(i))
	}
	require.Equal(t, count, v.Len())

	rng := rand.New(rand.NewSource(7))
	for i := v.Len() - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		a, err := v.Get(i)
		require.NoError(t, err)
		b, err := v.Get(j)
		require.NoError(t, err)
		require.NoError(t, v.Put(i, b))
		require.NoError(t, v.Put(j, a))
	}

	all := make([]uint32, 0, count)
	v.ForEach(0, v.Len(), func(_ int, val uint32) bool {
		all = append(all, val)
		return true
	})
	require.Len(t, all, count)

	sort.Slice(all, func(i, j int) bool { return all[i] < all[j] })
	for i, val := range all {
		require.Equal(t, uint32(i), val)
	}
}

func TestVectorSerializeDeserializeRoundTrip(t *testing.T) {
	opts := cvec.DefaultOptions()
	opts.MaxRawChunks = 4

	v, err := cvec.New[uint64](opts)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(99))
	const count = 10000
	want := make([]uint64, count)
	for i := range want {
		want[i] = rng.Uint64()
		require.NoError(t, v.PushBack(want[i]))
	}

	buf, err := v.Serialize()
	require.NoError(t, err)

	v2, err := cvec.New[uint64](opts)
	require.NoError(t, err)
	require.NoError(t, v2.Deserialize(buf))

	require.Equal(t, v.Len(), v2.Len())

	got := make([]uint64, 0, count)
	v2.ForEach(0, v2.Len(), func(_ int, val uint64) bool {
		got = append(got, val)
		return true
	})
	require.Equal(t, want, got)
}

func TestVectorConcurrentReaders(t *testing.T) {
	v, err := cvec.New[uint32](cvec.DefaultOptions())
	require.NoError(t, err)

	const count = 50000
	for i := uint32(0); i < count; i++ {
		require.NoError(t, v.PushBack(i))
	}

	// fingerprint digests the traversal order with xxhash rather than a
	// commutative sum, so a concurrent traversal that visited elements out of
	// order (a for_each linearization bug) would be caught, not masked.
	fingerprint := func() uint64 {
		h := xxhash.New()
		var buf [4]byte
		v.ForEach(0, v.Len(), func(_ int, val uint32) bool {
			binary.LittleEndian.PutUint32(buf[:], val)
			h.Write(buf[:])
			return true
		})
		return h.Sum64()
	}

	want := fingerprint()

	var wg sync.WaitGroup
	results := make([]uint64, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = fingerprint()
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		require.Equal(t, want, got)
	}
}

func TestVectorPopBackShrinksChunks(t *testing.T) {
	v, err := cvec.New[uint32](cvec.DefaultOptions())
	require.NoError(t, err)

	for i := uint32(0); i < 300; i++ {
		require.NoError(t, v.PushBack(i))
	}
	for v.Len() > 0 {
		v.PopBack()
	}
	require.Equal(t, 0, v.Len())
}

func TestVectorResizeGrowAndShrink(t *testing.T) {
	v, err := cvec.New[uint32](cvec.DefaultOptions())
	require.NoError(t, err)

	require.NoError(t, v.Resize(1000, 42))
	require.Equal(t, 1000, v.Len())

	val, err := v.Get(999)
	require.NoError(t, err)
	require.Equal(t, uint32(42), val)

	require.NoError(t, v.Resize(10, 0))
	require.Equal(t, 10, v.Len())
}

func TestVectorInsertErase(t *testing.T) {
	v, err := cvec.New[uint32](cvec.DefaultOptions())
	require.NoError(t, err)

	for i := uint32(0); i < 10; i++ {
		require.NoError(t, v.PushBack(i))
	}

	require.NoError(t, v.Insert(3, 999))
	require.Equal(t, 11, v.Len())

	want := []uint32{0, 1, 2, 999, 3, 4, 5, 6, 7, 8, 9}
	for i, w := range want {
		got, err := v.Get(i)
		require.NoError(t, err)
		require.Equal(t, w, got)
	}

	require.NoError(t, v.Erase(3))
	require.Equal(t, 10, v.Len())
	for i := uint32(0); i < 10; i++ {
		got, err := v.Get(int(i))
		require.NoError(t, err)
		require.Equal(t, i, got)
	}

	require.Error(t, v.Insert(100, 1))
	require.Error(t, v.Erase(100))
}

func TestVectorInsertEraseAcrossChunkBoundary(t *testing.T) {
	opts := cvec.DefaultOptions()
	opts.MaxRawChunks = 2

	v, err := cvec.New[uint32](opts)
	require.NoError(t, err)

	const count = 600 // spans multiple 256-element chunks
	for i := uint32(0); i < count; i++ {
		require.NoError(t, v.PushBack(i))
	}

	require.NoError(t, v.Insert(300, 123456))
	require.Equal(t, count+1, v.Len())

	got, err := v.Get(300)
	require.NoError(t, err)
	require.Equal(t, uint32(123456), got)

	got, err = v.Get(301)
	require.NoError(t, err)
	require.Equal(t, uint32(300), got)

	require.NoError(t, v.Erase(300))
	require.Equal(t, count, v.Len())

	for i := uint32(0); i < count; i++ {
		got, err := v.Get(int(i))
		require.NoError(t, err)
		require.Equal(t, i, got)
	}
}

func TestVectorForEachChunk(t *testing.T) {
	v, err := cvec.New[uint32](cvec.DefaultOptions())
	require.NoError(t, err)

	const count = 600
	for i := uint32(0); i < count; i++ {
		require.NoError(t, v.PushBack(i))
	}

	chunksVisited := 0
	elemsVisited := 0
	v.ForEachChunk(0, v.Len(), func(chunkIndex, base int, data []uint32) bool {
		chunksVisited++
		for i, val := range data {
			require.Equal(t, uint32(base+i), val)
		}
		elemsVisited += len(data)
		return true
	})

	require.Equal(t, count, elemsVisited)
	require.Greater(t, chunksVisited, 1)
}

func TestVectorDeserializeRejectsMismatchedChunkSize(t *testing.T) {
	opts := cvec.DefaultOptions()
	opts.ChunkShift = 0

	v, err := cvec.New[uint32](opts)
	require.NoError(t, err)
	require.NoError(t, v.PushBack(1))
	require.NoError(t, v.PushBack(2))

	buf, err := v.Serialize()
	require.NoError(t, err)

	other := cvec.DefaultOptions()
	other.ChunkShift = 2
	v2, err := cvec.New[uint32](other)
	require.NoError(t, err)

	require.Error(t, v2.Deserialize(buf))
}
