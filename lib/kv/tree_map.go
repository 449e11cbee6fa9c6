package kv

import (
	"github.com/benz9527/xtree/lib/infra"
	"github.com/benz9527/xtree/lib/tree"
)

var (
	_ OrderedStorer[int, int] = (*TreeMap[int, int])(nil)
)

// TreeMap is the typed ordered map. Keys and values are stored by
// value; a duplicate AddOrUpdate overwrites the stored value and keeps
// the stored key.
type TreeMap[K infra.OrderedKey, V any] struct {
	tree tree.RBTree[K, V]
}

// NewTreeMap builds an empty map over the canonical ordering of K:
// the total float order for the predeclared float32 and float64 types
// (NaNs at the two ends split by sign bit, -0.0 before +0.0), the
// natural ordering otherwise, named float types included.
func NewTreeMap[K infra.OrderedKey, V any](opts ...tree.RBTreeOpt[K, V]) *TreeMap[K, V] {
	return NewTreeMapWith[K, V](tree.KeyComparator[K](infra.DefaultComparator[K]()), opts...)
}

// NewTreeMapWith builds an empty map over a caller-supplied ordering.
func NewTreeMapWith[K infra.OrderedKey, V any](cmp tree.KeyComparator[K], opts ...tree.RBTreeOpt[K, V]) *TreeMap[K, V] {
	return &TreeMap[K, V]{
		tree: tree.NewRBTree[K, V](cmp, opts...),
	}
}

func (m *TreeMap[K, V]) Len() int64 {
	return m.tree.Len()
}

func (m *TreeMap[K, V]) Get(key K) (V, bool) {
	return m.tree.Get(key)
}

func (m *TreeMap[K, V]) AddOrUpdate(key K, val V) error {
	return m.tree.Insert(key, val)
}

func (m *TreeMap[K, V]) Delete(key K) bool {
	return m.tree.Remove(key)
}

// Copy returns an independent map with identical contents. On
// allocation failure nothing is retained and the source is untouched.
func (m *TreeMap[K, V]) Copy() (*TreeMap[K, V], error) {
	twin, err := m.tree.Copy()
	if err != nil {
		return nil, err
	}
	return &TreeMap[K, V]{tree: twin}, nil
}

func (m *TreeMap[K, V]) Purge() {
	m.tree.Release()
}

func (m *TreeMap[K, V]) Check() error {
	return m.tree.Validate()
}

func (m *TreeMap[K, V]) Foreach(action func(idx int64, key K, val V) bool) {
	m.tree.Foreach(func(idx int64, color tree.RBColor, key K, val V) bool {
		return action(idx, key, val)
	})
}
