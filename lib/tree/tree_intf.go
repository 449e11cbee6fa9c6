package tree

// go install golang.org/x/tools/cmd/stringer@latest

//go:generate stringer -type=RBColor
type RBColor uint8

const (
	Black RBColor = iota
	Red
)

// RBDirection indexes a node's children array. Mirror cases share one
// code path through 1-dir.
//
//go:generate stringer -type=RBDirection
type RBDirection uint8

const (
	Left RBDirection = iota
	Right
)

// KeyComparator is a pure three-way comparison forming a total (or
// weak) order over K. The tree trusts it: a non-transitive comparator
// yields undefined behavior.
type KeyComparator[K any] func(i, j K) int64

// RBNode is the read-only view of a tree node, exposed for validation
// and tests.
type RBNode[K any, V any] interface {
	Key() K
	Val() V
	Color() RBColor
	// Direction reports which child slot of the parent holds this
	// node. Meaningless for the root.
	Direction() RBDirection
	Left() RBNode[K, V]
	Right() RBNode[K, V]
	Parent() RBNode[K, V]
}

// RBTree is a 2-3 red-black tree: a red-black tree in which a node may
// have at most one red child, isomorphic to a 2-3 tree.
type RBTree[K any, V any] interface {
	Len() int64
	Root() RBNode[K, V]
	Get(key K) (V, bool)
	Insert(key K, val V) error
	Remove(key K) bool
	Copy() (RBTree[K, V], error)
	CopyWith(clone func(key K, val V) (K, V, error)) (RBTree[K, V], error)
	Foreach(action func(idx int64, color RBColor, key K, val V) bool)
	Validate() error
	Release()
}
