package kv

import (
	"github.com/benz9527/xtree/lib/infra"
	"github.com/benz9527/xtree/lib/layout"
	"github.com/benz9527/xtree/lib/tree"
)

var (
	_ OrderedStorer[[]byte, []byte] = (*RawMap)(nil)
)

// rawEntryLayout caches the layout of one entry block: the key and
// value payloads packed into a single allocation at aligned offsets.
type rawEntryLayout struct {
	size        int
	keyOffset   int
	keySize     int
	valueOffset int
	valueSize   int
}

// RawMap is the type-erased ordered map: keys and values are opaque
// fixed-size byte payloads described by a pair of layouts and ordered
// by a RawComparator. Each entry owns one allocator block holding both
// payloads at the offsets computed on construction.
type RawMap struct {
	tree  tree.RBTree[[]byte, []byte]
	alloc infra.Allocator
	entry rawEntryLayout
}

type RawMapOpt func(*RawMap)

// WithRawMapAllocator swaps the allocator the entry blocks come from.
func WithRawMapAllocator(alloc infra.Allocator) RawMapOpt {
	return func(m *RawMap) {
		m.alloc = alloc
	}
}

// NewRawMap builds an empty type-erased map for keys and values of the
// given layouts, ordered by cmp over the key payload bytes.
func NewRawMap(keyLayout, valueLayout layout.Layout, cmp RawComparator, opts ...RawMapOpt) *RawMap {
	l := layout.Empty()
	keyOffset := l.Add(keyLayout)
	valueOffset := l.Add(valueLayout)
	l.Pad()

	m := &RawMap{
		tree:  tree.NewRBTree[[]byte, []byte](cmp),
		alloc: infra.HeapAllocator,
		entry: rawEntryLayout{
			size:        int(l.Size),
			keyOffset:   int(keyOffset),
			keySize:     int(keyLayout.Size),
			valueOffset: int(valueOffset),
			valueSize:   int(valueLayout.Size),
		},
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

func (m *RawMap) key(block []byte) []byte {
	return block[m.entry.keyOffset : m.entry.keyOffset+m.entry.keySize]
}

func (m *RawMap) value(block []byte) []byte {
	return block[m.entry.valueOffset : m.entry.valueOffset+m.entry.valueSize]
}

func (m *RawMap) Len() int64 {
	return m.tree.Len()
}

// Get returns the stored value payload. The slice aliases the entry's
// live storage: it is invalidated by any structural mutation of the
// map and must be copied out to survive one.
func (m *RawMap) Get(key []byte) ([]byte, bool) {
	block, ok := m.tree.Get(key)
	if !ok {
		return nil, false
	}
	return m.value(block), true
}

// AddOrUpdate copies the key and value payloads into the map. An
// existing key keeps its stored key bytes and has only its value bytes
// overwritten, without allocating.
func (m *RawMap) AddOrUpdate(key, val []byte) error {
	if block, ok := m.tree.Get(key); ok {
		copy(m.value(block), val)
		return nil
	}

	block, err := m.alloc.Allocate(uintptr(m.entry.size))
	if err != nil {
		return err
	}
	copy(m.key(block), key)
	copy(m.value(block), val)

	if err = m.tree.Insert(m.key(block), block); err != nil {
		m.alloc.Release(block)
		return err
	}
	return nil
}

func (m *RawMap) Delete(key []byte) bool {
	// A two-child removal promotes the in-order predecessor's payload
	// into the target node, so the block going back to the allocator
	// is the one looked up here, whichever node gets spliced out.
	block, ok := m.tree.Get(key)
	if !ok {
		return false
	}
	m.tree.Remove(key)
	m.alloc.Release(block)
	return true
}

// Copy returns an independent map, re-allocating every entry block.
// On allocation failure every block the copy obtained is released and
// the source is untouched.
func (m *RawMap) Copy() (*RawMap, error) {
	var blocks [][]byte
	clone := func(key, block []byte) ([]byte, []byte, error) {
		twinBlock, err := m.alloc.Allocate(uintptr(m.entry.size))
		if err != nil {
			return nil, nil, err
		}
		copy(twinBlock, block)
		blocks = append(blocks, twinBlock)
		return m.key(twinBlock), twinBlock, nil
	}

	twinTree, err := m.tree.CopyWith(clone)
	if err != nil {
		for _, block := range blocks {
			m.alloc.Release(block)
		}
		return nil, err
	}

	return &RawMap{tree: twinTree, alloc: m.alloc, entry: m.entry}, nil
}

func (m *RawMap) Purge() {
	blocks := make([][]byte, 0, m.tree.Len())
	m.tree.Foreach(func(idx int64, color tree.RBColor, key []byte, block []byte) bool {
		blocks = append(blocks, block)
		return true
	})
	m.tree.Release()
	for _, block := range blocks {
		m.alloc.Release(block)
	}
}

func (m *RawMap) Check() error {
	return m.tree.Validate()
}

// Foreach walks the entries in key order, exposing the live payload
// slices.
func (m *RawMap) Foreach(action func(idx int64, key []byte, val []byte) bool) {
	m.tree.Foreach(func(idx int64, color tree.RBColor, key []byte, block []byte) bool {
		return action(idx, key, m.value(block))
	})
}
