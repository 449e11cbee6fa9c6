package tree

import (
	"sync/atomic"

	"github.com/benz9527/xtree/lib/infra"
)

// rbNode is a doubly-linked tree node. The children array is indexed
// by RBDirection and the direction tag caches which slot of the parent
// holds this node, so rotations and the bottom-up balance walks never
// have to re-identify the child pointer to update.
type rbNode[K any, V any] struct {
	children  [2]*rbNode[K, V]
	parent    *rbNode[K, V]
	direction RBDirection
	color     RBColor
	key       K
	val       V
}

func (node *rbNode[K, V]) Key() K {
	return node.key
}

func (node *rbNode[K, V]) Val() V {
	return node.val
}

func (node *rbNode[K, V]) Color() RBColor {
	return node.color
}

func (node *rbNode[K, V]) Direction() RBDirection {
	return node.direction
}

func (node *rbNode[K, V]) Left() RBNode[K, V] {
	if node == nil || node.children[Left] == nil {
		return nil
	}
	return node.children[Left]
}

func (node *rbNode[K, V]) Right() RBNode[K, V] {
	if node == nil || node.children[Right] == nil {
		return nil
	}
	return node.children[Right]
}

func (node *rbNode[K, V]) Parent() RBNode[K, V] {
	if node == nil || node.parent == nil {
		return nil
	}
	return node.parent
}

func (node *rbNode[K, V]) isRed() bool {
	return node != nil && node.color == Red
}

func (node *rbNode[K, V]) isBlack() bool {
	return node == nil || node.color == Black
}

// xmostNode walks the dir child chain to the minimum (Left) or maximum
// (Right) of the subtree.
func (node *rbNode[K, V]) xmostNode(dir RBDirection) *rbNode[K, V] {
	aux := node
	for aux.children[dir] != nil {
		aux = aux.children[dir]
	}
	return aux
}

// xmostLeaf descends preferring the dir child, falling back to the
// other child, until a leaf is reached. With dir == Left it yields the
// first node of a post-order walk over the subtree.
func (node *rbNode[K, V]) xmostLeaf(dir RBDirection) *rbNode[K, V] {
	aux := node
	for {
		if aux.children[dir] != nil {
			aux = aux.children[dir]
		} else if aux.children[1-dir] != nil {
			aux = aux.children[1-dir]
		} else {
			return aux
		}
	}
}

// postOrderXcessor returns the next node of a post-order walk (Right),
// or the next node of the mirrored post-order walk that visits right
// subtrees before left ones (Left); nil past the root.
func (node *rbNode[K, V]) postOrderXcessor(dir RBDirection) *rbNode[K, V] {
	if node.direction != dir && node.parent != nil && node.parent.children[dir] != nil {
		return node.parent.children[dir].xmostLeaf(1 - dir)
	}
	return node.parent
}

// inOrderXcessor returns the in-order successor (Right) or predecessor
// (Left), nil past the extreme.
func (node *rbNode[K, V]) inOrderXcessor(dir RBDirection) *rbNode[K, V] {
	if node.children[dir] != nil {
		return node.children[dir].xmostNode(1 - dir)
	}
	aux := node
	for aux.parent != nil && aux.direction == dir {
		aux = aux.parent
	}
	return aux.parent
}

/*
rotate restructures the subtree rooted at node toward dir and returns
the new subtree root. The caller re-hooks the parent's child pointer
(or the tree root).

	      C                         A
	    ┌╌┴╌┐         →B          ┌╌┴╌┐
	   →B   d       ┌╌╌┴╌╌┐       a   B←
	  ┌╌┴╌┐    ◁    A     C    ▷    ┌╌┴╌┐
	  A   c       ┌╌┴╌┐ ┌╌┴╌┐       b   C
	┌╌┴╌┐         a   b c   d         ┌╌┴╌┐
	a   b                             c   d

The node that rises into B's former slot keeps B's former color and
direction, while B takes the riser's former color. This transfer is
what lets the insert and remove walks express every rebalancing rule
as at most two rotations plus repaints.
*/
func rotate[K any, V any](node *rbNode[K, V], dir RBDirection) *rbNode[K, V] {
	if node == nil || node.children[1-dir] == nil {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] rotate node is nil or has no child to rise")
	}

	b := node
	ca := b.children[1-dir]
	parent := b.parent
	bDirection := b.direction
	bColor := b.color

	cb := ca.children[dir]
	caColor := ca.color

	if cb != nil {
		cb.parent = b
		cb.direction = 1 - dir
	}

	b.children[1-dir] = cb
	b.parent = ca
	b.direction = dir
	b.color = caColor

	ca.children[dir] = b
	ca.parent = parent
	ca.direction = bDirection
	ca.color = bColor

	return ca
}

type rbTree[K any, V any] struct {
	root      *rbNode[K, V]
	count     int64
	cmp       KeyComparator[K]
	allocGate func() error
}

func (tree *rbTree[K, V]) Len() int64 {
	return atomic.LoadInt64(&tree.count)
}

func (tree *rbTree[K, V]) Root() RBNode[K, V] {
	if tree.root == nil {
		return nil
	}
	return tree.root
}

// reattach hooks a subtree root returned by rotate back under its
// parent, or makes it the tree root.
func (tree *rbTree[K, V]) reattach(node *rbNode[K, V]) {
	if node.parent != nil {
		node.parent.children[node.direction] = node
	} else {
		tree.root = node
	}
}

// reserve consults the allocation gate before one node allocation.
func (tree *rbTree[K, V]) reserve() error {
	if tree.allocGate != nil {
		if err := tree.allocGate(); err != nil {
			return infra.ErrAllocFailed
		}
	}
	return nil
}

func (tree *rbTree[K, V]) Get(key K) (V, bool) {
	node := tree.root
	for node != nil {
		res := tree.cmp(key, node.key)
		if res < 0 {
			node = node.children[Left]
		} else if res > 0 {
			node = node.children[Right]
		} else {
			return node.val, true
		}
	}

	var zero V
	return zero, false
}

/*
Insert runs one top-down pass and one bottom-up pass.

The descent either overwrites the value of an equal key in place or
attaches a fresh red node at the reached slot. The balance walk then
restores the 2-3 restriction upward from the new node.

New node X is red. <X> is RED, [X] is BLACK (or nil).

Zig-zag normalization (only when the parent is red and X leans the
other way); afterwards X and its parent lean the same way:

	  A           A        ╎        C           C
	┌─┶━┓       ┌─┶━┓      ╎      ┏━┵─┐       ┏━┵─┐
	a   C       a   B      ╎      B   d       A   d
	  ┏━┵─┐  ▷    ┌─┶━┓    ╎    ┏━┵─┐    ◁  ┌─┶━┓
	 →B   δ       b   C←   ╎   →A   c       a   B←

Grandparent rotation lifts the red pair:

	      C                    ╎                    A
	    ┏━┵─┐          B       ╎       B          ┌─┶━┓
	    B   d       ┏━━┷━━┓    ╎    ┏━━┷━━┓       a   B
	  ┏━┵─┐    ▷   →A     C    ╎    A     C←   ◁    ┌─┶━┓
	 →A   c       ┌─┴─┐ ┌─┴─┐  ╎  ┌─┴─┐ ┌─┴─┐       b   C←

Red-uncle recoloring pushes the violation one level up and loops:

	     ╷               ╻               ╷
	     B              →B               B
	  ┏━━┷━━┓    ▷    ┌──┴──┐    ◁    ┏━━┷━━┓
	 →A     C         A     C         A     C←
*/
func (tree *rbTree[K, V]) Insert(key K, val V) error {
	// Top-down pass:

	node := tree.root
	var parent *rbNode[K, V]
	nodeDirection := Left

	for node != nil {
		res := tree.cmp(key, node.key)
		if res < 0 {
			parent = node
			nodeDirection = Left
			node = node.children[Left]
		} else if res > 0 {
			parent = node
			nodeDirection = Right
			node = node.children[Right]
		} else {
			// Value-only overwrite, the stored key survives.
			node.val = val
			return nil
		}
	}

	if err := tree.reserve(); err != nil {
		return err
	}

	node = &rbNode[K, V]{
		parent:    parent,
		direction: nodeDirection,
		color:     Red,
		key:       key,
		val:       val,
	}
	if parent != nil {
		parent.children[nodeDirection] = node
	} else {
		tree.root = node
	}
	atomic.AddInt64(&tree.count, 1)

	// Bottom-up pass:

	for node.parent != nil {
		if node.parent.color == Red {
			if node.direction != node.parent.direction {
				// Zig-zag normalization.
				node = node.parent
				b := rotate(node, node.direction)
				b.parent.children[b.direction] = b
			}

			// Grandparent rotation.
			b := rotate(node.parent.parent, 1-node.direction)
			tree.reattach(b)
		}

		if node.parent.children[1-node.direction].isRed() {
			// Red-uncle recoloring.
			node.color = Black
			node.parent.children[1-node.direction].color = Black
			node.parent.color = Red
			node = node.parent
		} else {
			break
		}
	}

	tree.root.color = Black
	return nil
}

/*
Remove runs one top-down pass and one bottom-up pass.

A two-child target is overwritten with its in-order predecessor's key
and value, retargeting the splice to the predecessor (which has at most
one child). The balance walk then repairs the black deficit left by
splicing out a black node.

<X> is RED, [X] is BLACK (or nil), {X} is either.

Red-sibling rotation lowers the red sibling over the deficit side; the
deficit slot gains a black sibling (the former inner nephew):

	     D                 B          ╎          D                 B
	 ┏━━━┵───┐         ┌───┶━━━┓      ╎      ┏━━━┵───┐         ┌───┶━━━┓
	 B       E←        A       D      ╎      B       E        →A       D
	      ┌─┴─┐  ▷  ┌─┴─┐   ┌──┴──┐   ╎   ┌──┴──┐        ◁          ┌──┴──┐
	      e   f     a   b   C     E←  ╎  →A     C                   C     E

Sibling repaint (unconditional, balances black depth locally):

	   B              →B       ╎       B←              B
	┌──┴──┐         ┌──┶━━┓    ╎    ┏━━┵──┐         ┌──┴──┐
	A     C    ▷    A     C    ╎    A     C    ◁    A     C←

Inner-nephew normalization, when the red nephew is the inner one:

	  A              A         ╎         D              D
	┌─┶━┓          ┌─┶━┓       ╎       ┏━┵─┐          ┏━┵─┐
	→a  C         →a   B       ╎       C   e←         B   e←
	  ┏━━┵──┐  ▷     ┌─┶━┓     ╎     ┏━┵─┐     ◁   ┌──┶━━┓
	  B     D        b   C     ╎     B   d         A     C
	                   ┌─┴─┐   ╎   ┌─┴─┐

Outer rotation + recolor resolves the deficit and exits:

	    C                       ╎                       A
	  ┏━┵─┐            B        ╎        B            ┌─┶━┓
	  B   d←        ┏━━┷━━┓     ╎     ┏━━┷━━┓        →a   B
	┏━┵─┐      ▷    A     C     ╎     A     C     ◁     ┌─┶━┓
	A   c         ┌─┴─┐ ┌─┴─┐   ╎   ┌─┴─┐ ┌─┴─┐         b   C

With no red nephew the walk climbs while the climbed-into node is
black; on exit that node absorbs the deficit by turning black.
*/
func (tree *rbTree[K, V]) Remove(key K) bool {
	// Top-down pass:

	node := tree.root
	for node != nil {
		res := tree.cmp(key, node.key)
		if res < 0 {
			node = node.children[Left]
		} else if res > 0 {
			node = node.children[Right]
		} else {
			break
		}
	}
	if node == nil {
		return false
	}

	if node.children[Left] != nil && node.children[Right] != nil {
		pred := node.children[Left].xmostNode(Right)
		node.key, node.val = pred.key, pred.val
		node = pred
	}

	parent := node.parent
	nodeDirection := node.direction
	nodeColor := node.color

	for _, dir := range [2]RBDirection{Left, Right} {
		if child := node.children[dir]; child != nil {
			// Single-child splice: the child inherits the doomed
			// node's attachment and color.
			child.parent = parent
			child.direction = nodeDirection
			child.color = nodeColor
			tree.unlink(node)
			if parent != nil {
				parent.children[nodeDirection] = child
			} else {
				tree.root = child
			}
			atomic.AddInt64(&tree.count, -1)
			return true
		}
	}

	tree.unlink(node)
	if parent != nil {
		parent.children[nodeDirection] = nil
	} else {
		tree.root = nil
	}
	atomic.AddInt64(&tree.count, -1)

	// Bottom-up pass:

	if nodeColor == Red || parent == nil {
		return true
	}

	// Entering each iteration, the paths through the slot under
	// parent.children[nodeDirection] carry one black fewer than the
	// paths through the sibling.
	for {
		sibling := parent.children[1-nodeDirection]

		if sibling.color == Red {
			// Red-sibling rotation.
			db := rotate(parent, nodeDirection)
			tree.reattach(db)
			sibling = parent.children[1-nodeDirection]
		}

		// Sibling repaint.
		sibling.color = Red

		if sibling.children[Left].isRed() || sibling.children[Right].isRed() {
			if sibling.children[sibling.direction].isBlack() {
				// Inner-nephew normalization.
				sibling = rotate(sibling, sibling.direction)
				parent.children[sibling.direction] = sibling
			}

			// Outer rotation + recolor.
			b := rotate(parent, nodeDirection)
			tree.reattach(b)
			b.children[Left].color = Black
			b.children[Right].color = Black
			return true
		}

		node = parent
		parent = node.parent
		nodeDirection = node.direction
		if parent == nil || node.color != Black {
			break
		}
	}

	// The climbed-into node absorbs the deficit.
	node.color = Black
	return true
}

func (tree *rbTree[K, V]) unlink(node *rbNode[K, V]) {
	node.children[Left] = nil
	node.children[Right] = nil
	node.parent = nil
}

// Copy deep-copies the tree by replaying its shape top-down with a
// (src, dst) pointer pair, climbing through parent links instead of
// recursing. On allocation failure the partial twin is released and
// the source is untouched.
func (tree *rbTree[K, V]) Copy() (RBTree[K, V], error) {
	return tree.CopyWith(nil)
}

// CopyWith is Copy with a payload clone hook, letting type-erased
// containers re-allocate key/value storage per node during the replay.
// A nil clone copies key and value by value. A clone error aborts the
// copy: the partial twin is released and the error is surfaced.
func (tree *rbTree[K, V]) CopyWith(clone func(key K, val V) (K, V, error)) (RBTree[K, V], error) {
	twin := &rbTree[K, V]{cmp: tree.cmp, allocGate: tree.allocGate}
	if tree.root == nil {
		return twin, nil
	}

	replay := func(branch *rbNode[K, V]) (*rbNode[K, V], error) {
		if err := twin.reserve(); err != nil {
			return nil, err
		}
		key, val := branch.key, branch.val
		if clone != nil {
			var err error
			if key, val, err = clone(key, val); err != nil {
				return nil, err
			}
		}
		return &rbNode[K, V]{
			direction: branch.direction,
			color:     branch.color,
			key:       key,
			val:       val,
		}, nil
	}

	dst, err := replay(tree.root)
	if err != nil {
		return nil, err
	}
	src := tree.root
	twin.root = dst
	twin.count = 1

	for {
		var dir RBDirection

		if src.children[Left] != nil {
			dir = Left
		} else if src.children[Right] != nil {
			dir = Right
		} else {
			// Climb to the nearest src node whose right subtree has
			// not been replayed yet.
			for src.children[Right] == nil || dst.children[Right] != nil {
				if src.parent == nil {
					return twin, nil
				}
				src, dst = src.parent, dst.parent
			}
			dir = Right
		}

		branch := src.children[dir]
		next, err := replay(branch)
		if err != nil {
			twin.Release()
			return nil, err
		}
		next.parent = dst
		next.direction = dir
		dst.children[dir] = next
		src, dst = branch, next
		atomic.AddInt64(&twin.count, 1)
	}
}

// Foreach walks the tree in order through parent links, without
// allocating. Stops early when action returns false.
func (tree *rbTree[K, V]) Foreach(action func(idx int64, color RBColor, key K, val V) bool) {
	if tree.root == nil {
		return
	}

	idx := int64(0)
	for node := tree.root.xmostNode(Left); node != nil; node = node.inOrderXcessor(Right) {
		if !action(idx, node.color, node.key, node.val) {
			return
		}
		idx++
	}
}

// Release empties the tree with a destructive post-order walk, so no
// freed node is ever revisited.
func (tree *rbTree[K, V]) Release() {
	if tree.root != nil {
		node := tree.root.xmostLeaf(Left)
		for node != nil {
			succ := node.postOrderXcessor(Right)
			tree.unlink(node)
			node = succ
		}
	}

	tree.root = nil
	atomic.StoreInt64(&tree.count, 0)
}

type RBTreeOpt[K any, V any] func(*rbTree[K, V])

// WithRBTreeAllocGate installs a gate consulted before every node
// allocation. A gate error surfaces as infra.ErrAllocFailed from
// Insert or Copy with the tree unchanged. Stands in for allocator
// indirection; the default gate always admits.
func WithRBTreeAllocGate[K any, V any](gate func() error) RBTreeOpt[K, V] {
	return func(tree *rbTree[K, V]) {
		tree.allocGate = gate
	}
}

func NewRBTree[K any, V any](cmp KeyComparator[K], opts ...RBTreeOpt[K, V]) RBTree[K, V] {
	if cmp == nil {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] nil key comparator")
	}

	tree := &rbTree[K, V]{
		count: 0,
		cmp:   cmp,
	}
	for _, o := range opts {
		o(tree)
	}
	return tree
}
