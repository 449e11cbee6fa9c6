package kv

import (
	"math"
	randv2 "math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/benz9527/xtree/lib/infra"
)

func TestTreeMap_Basic(t *testing.T) {
	m := NewTreeMap[int, int]()

	for _, k := range []int{3, 1, 4, 1, 5, 9, 2, 6} {
		require.NoError(t, m.AddOrUpdate(k, -k))
		require.NoError(t, m.Check())
	}

	require.Equal(t, int64(7), m.Len())

	v, ok := m.Get(1)
	require.True(t, ok)
	require.Equal(t, -1, v)

	_, ok = m.Get(7)
	require.False(t, ok)
}

func TestTreeMap_AddOrUpdateOverwrite(t *testing.T) {
	m := NewTreeMap[string, string]()
	require.NoError(t, m.AddOrUpdate("k", "a"))
	require.NoError(t, m.AddOrUpdate("k", "b"))

	v, ok := m.Get("k")
	require.True(t, ok)
	require.Equal(t, "b", v)
	require.Equal(t, int64(1), m.Len())
}

func TestTreeMap_DeleteIdempotent(t *testing.T) {
	m := NewTreeMap[int, int]()
	require.NoError(t, m.AddOrUpdate(1, -1))
	require.True(t, m.Delete(1))
	require.False(t, m.Delete(1))
	require.Equal(t, int64(0), m.Len())
	require.NoError(t, m.Check())
}

func TestTreeMap_FloatKeyTotalOrder(t *testing.T) {
	negNaN := math.Float64frombits(math.Float64bits(math.NaN()) | (1 << 63))
	posNaN := math.Float64frombits(math.Float64bits(math.NaN()) &^ (1 << 63))
	negZero := math.Copysign(0, -1)

	m := NewTreeMap[float64, int]()
	for i, k := range []float64{0, negZero, posNaN, negNaN, 1.0, -1.0} {
		require.NoError(t, m.AddOrUpdate(k, i))
		require.NoError(t, m.Check())
	}
	require.Equal(t, int64(6), m.Len())

	expected := []float64{negNaN, -1.0, negZero, 0, 1.0, posNaN}
	visited := int64(0)
	m.Foreach(func(idx int64, key float64, val int) bool {
		require.Equal(t, math.Float64bits(expected[idx]), math.Float64bits(key))
		visited++
		return true
	})
	require.Equal(t, int64(6), visited)

	v, ok := m.Get(posNaN)
	require.True(t, ok)
	require.Equal(t, 2, v)
}

func TestTreeMap_CopyIndependence(t *testing.T) {
	m := NewTreeMap[int, int]()
	for i := 0; i < 100; i++ {
		require.NoError(t, m.AddOrUpdate(i, -i))
	}

	twin, err := m.Copy()
	require.NoError(t, err)
	require.NoError(t, twin.Check())

	for i := 0; i < 100; i += 2 {
		require.True(t, twin.Delete(i))
	}

	require.Equal(t, int64(100), m.Len())
	require.Equal(t, int64(50), twin.Len())

	v, ok := m.Get(2)
	require.True(t, ok)
	require.Equal(t, -2, v)

	_, ok = twin.Get(2)
	require.False(t, ok)
}

func TestTreeMap_PurgeEmpties(t *testing.T) {
	m := NewTreeMap[uint32, string]()
	for i := uint32(0); i < 64; i++ {
		require.NoError(t, m.AddOrUpdate(i, "v"))
	}
	m.Purge()
	require.Equal(t, int64(0), m.Len())
	for i := uint32(0); i < 64; i++ {
		_, ok := m.Get(i)
		require.False(t, ok)
	}
	require.NoError(t, m.Check())
}

func TestTreeMap_RandomizedCheck(t *testing.T) {
	rng := randv2.New(randv2.NewPCG(23, 29))
	m := NewTreeMap[uint64, uint64]()
	live := make(map[uint64]uint64)

	for i := 0; i < 4096; i++ {
		key := uint64(rng.IntN(512))
		if rng.IntN(3) == 0 {
			require.Equal(t, func() bool { _, ok := live[key]; return ok }(), m.Delete(key))
			delete(live, key)
		} else {
			require.NoError(t, m.AddOrUpdate(key, key*2))
			live[key] = key * 2
		}
		if i%128 == 0 {
			require.NoError(t, m.Check())
		}
		require.Equal(t, int64(len(live)), m.Len())
	}
	require.NoError(t, m.Check())

	for key, val := range live {
		v, ok := m.Get(key)
		require.True(t, ok)
		require.Equal(t, val, v)
	}
}

func TestTreeMap_CustomComparatorDescending(t *testing.T) {
	m := NewTreeMapWith[int, int](func(i, j int) int64 {
		return infra.NaturalCompare(j, i)
	})
	for i := 0; i < 10; i++ {
		require.NoError(t, m.AddOrUpdate(i, i))
	}
	require.NoError(t, m.Check())

	m.Foreach(func(idx int64, key int, val int) bool {
		require.Equal(t, int(9-idx), key)
		return true
	})
}
