package kv

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/benz9527/xtree/lib/infra"
	"github.com/benz9527/xtree/lib/layout"
)

// countingAllocator wraps the heap and can be told to fail after a
// budget of allocations, to drive the rollback paths.
type countingAllocator struct {
	allocated int
	released  int
	budget    int
}

var errBudget = errors.New("allocation budget exhausted")

func (a *countingAllocator) Allocate(size uintptr) ([]byte, error) {
	if a.budget > 0 && a.allocated >= a.budget {
		return nil, errBudget
	}
	a.allocated++
	return make([]byte, size), nil
}

func (a *countingAllocator) Release(block []byte) {
	a.released++
}

func beKey(k uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], k)
	return buf[:]
}

func newUint64RawMap(opts ...RawMapOpt) *RawMap {
	return NewRawMap(layout.Of(8, 8), layout.Of(4, 4), infra.BytesCompare, opts...)
}

func TestRawMap_EntryLayout(t *testing.T) {
	m := NewRawMap(layout.Of(4, 4), layout.Of(8, 8), infra.BytesCompare)
	require.Equal(t, 0, m.entry.keyOffset)
	require.Equal(t, 4, m.entry.keySize)
	require.Equal(t, 8, m.entry.valueOffset)
	require.Equal(t, 8, m.entry.valueSize)
	require.Equal(t, 16, m.entry.size)
}

func TestRawMap_BasicOps(t *testing.T) {
	m := newUint64RawMap()

	for k := uint64(0); k < 256; k++ {
		val := [4]byte{byte(k), 1, 2, 3}
		require.NoError(t, m.AddOrUpdate(beKey(k), val[:]))
		require.NoError(t, m.Check())
	}
	require.Equal(t, int64(256), m.Len())

	v, ok := m.Get(beKey(7))
	require.True(t, ok)
	require.Equal(t, []byte{7, 1, 2, 3}, v)

	_, ok = m.Get(beKey(1000))
	require.False(t, ok)

	// Keys come back in big-endian lexicographic order.
	m.Foreach(func(idx int64, key []byte, val []byte) bool {
		require.Equal(t, beKey(uint64(idx)), key)
		return true
	})

	for k := uint64(0); k < 256; k++ {
		require.True(t, m.Delete(beKey(k)))
		require.NoError(t, m.Check())
	}
	require.Equal(t, int64(0), m.Len())
	require.False(t, m.Delete(beKey(0)))
}

func TestRawMap_ValueOnlyOverwrite(t *testing.T) {
	alloc := &countingAllocator{}
	m := newUint64RawMap(WithRawMapAllocator(alloc))

	require.NoError(t, m.AddOrUpdate(beKey(1), []byte{1, 1, 1, 1}))
	require.Equal(t, 1, alloc.allocated)

	// Overwrite rewrites the value bytes in place, no allocation.
	require.NoError(t, m.AddOrUpdate(beKey(1), []byte{2, 2, 2, 2}))
	require.Equal(t, 1, alloc.allocated)
	require.Equal(t, int64(1), m.Len())

	v, ok := m.Get(beKey(1))
	require.True(t, ok)
	require.Equal(t, []byte{2, 2, 2, 2}, v)
}

func TestRawMap_AllocFailureLeavesMapUnchanged(t *testing.T) {
	alloc := &countingAllocator{budget: 8}
	m := newUint64RawMap(WithRawMapAllocator(alloc))

	for k := uint64(0); k < 8; k++ {
		require.NoError(t, m.AddOrUpdate(beKey(k), []byte{0, 0, 0, 0}))
	}

	err := m.AddOrUpdate(beKey(8), []byte{0, 0, 0, 0})
	require.ErrorIs(t, err, errBudget)
	require.Equal(t, int64(8), m.Len())
	require.NoError(t, m.Check())

	// Overwrites still work at the budget ceiling.
	require.NoError(t, m.AddOrUpdate(beKey(3), []byte{9, 9, 9, 9}))
}

func TestRawMap_CopyIndependence(t *testing.T) {
	m := newUint64RawMap()
	for k := uint64(0); k < 100; k++ {
		require.NoError(t, m.AddOrUpdate(beKey(k), []byte{byte(k), 0, 0, 0}))
	}

	twin, err := m.Copy()
	require.NoError(t, err)
	require.NoError(t, twin.Check())
	require.Equal(t, int64(100), twin.Len())

	for k := uint64(0); k < 100; k += 2 {
		require.True(t, twin.Delete(beKey(k)))
	}
	require.NoError(t, twin.AddOrUpdate(beKey(1), []byte{0xff, 0, 0, 0}))

	require.Equal(t, int64(100), m.Len())
	require.Equal(t, int64(50), twin.Len())

	v, ok := m.Get(beKey(2))
	require.True(t, ok)
	require.Equal(t, []byte{2, 0, 0, 0}, v)

	v, ok = m.Get(beKey(1))
	require.True(t, ok)
	require.Equal(t, []byte{1, 0, 0, 0}, v)

	_, ok = twin.Get(beKey(2))
	require.False(t, ok)
}

func TestRawMap_CopyRollbackReleasesBlocks(t *testing.T) {
	alloc := &countingAllocator{}
	m := newUint64RawMap(WithRawMapAllocator(alloc))
	for k := uint64(0); k < 100; k++ {
		require.NoError(t, m.AddOrUpdate(beKey(k), []byte{0, 0, 0, 0}))
	}

	alloc.budget = alloc.allocated + 20
	twin, err := m.Copy()
	require.ErrorIs(t, err, errBudget)
	require.Nil(t, twin)

	// Every block the failed copy obtained went back.
	require.Equal(t, 20, alloc.released)
	require.Equal(t, int64(100), m.Len())
	require.NoError(t, m.Check())
}

func TestRawMap_PurgeReleasesEverything(t *testing.T) {
	alloc := &countingAllocator{}
	m := newUint64RawMap(WithRawMapAllocator(alloc))
	for k := uint64(0); k < 64; k++ {
		require.NoError(t, m.AddOrUpdate(beKey(k), []byte{0, 0, 0, 0}))
	}

	m.Purge()
	require.Equal(t, int64(0), m.Len())
	require.Equal(t, alloc.allocated, alloc.released)
	require.NoError(t, m.Check())

	_, ok := m.Get(beKey(1))
	require.False(t, ok)
}

func TestRawMap_DeleteReleasesLookedUpBlock(t *testing.T) {
	alloc := &countingAllocator{}
	m := newUint64RawMap(WithRawMapAllocator(alloc))
	for k := uint64(0); k < 32; k++ {
		require.NoError(t, m.AddOrUpdate(beKey(k), []byte{0, 0, 0, 0}))
	}

	// Interior removals exercise the two-child promotion path.
	for _, k := range []uint64{16, 8, 24, 0, 31} {
		require.True(t, m.Delete(beKey(k)))
		require.NoError(t, m.Check())
	}
	require.Equal(t, 5, alloc.released)
	require.Equal(t, int64(27), m.Len())
}
