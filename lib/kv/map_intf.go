// Package kv provides ordered associative containers backed by the
// 2-3 red-black tree kernel in lib/tree: a typed TreeMap and a
// type-erased RawMap over opaque byte payloads.
//
// The containers are single-threaded and externally synchronized.
// Lookups do not mutate observable state but must not overlap writers.
package kv

import "github.com/benz9527/xtree/lib/tree"

// OrderedStorer is the common contract of the ordered containers.
// Keys are unique under the container's comparator; AddOrUpdate on an
// existing key overwrites the stored value only.
type OrderedStorer[K any, V any] interface {
	Len() int64
	Get(key K) (V, bool)
	AddOrUpdate(key K, val V) error
	Delete(key K) bool
	Purge()
	// Check cross-validates the container's internal invariants. A
	// failure is a bug in this library, not a usage error.
	Check() error
	Foreach(action func(idx int64, key K, val V) bool)
}

// RawComparator is a pure three-way comparison over opaque key
// payloads, forming a total (or weak) order. The container trusts it.
type RawComparator = tree.KeyComparator[[]byte]
