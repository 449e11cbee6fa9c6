package tree

import (
	"errors"

	"go.uber.org/multierr"
)

func isNilLeaf[K any, V any](node RBNode[K, V]) bool {
	return node == nil
}

func isRed[K any, V any](node RBNode[K, V]) bool {
	return !isNilLeaf(node) && node.Color() == Red
}

func isBlack[K any, V any](node RBNode[K, V]) bool {
	return isNilLeaf(node) || node.Color() == Black
}

// rbtree rule validation utilities.

// LinkViolationValidate checks that every child points back at its
// parent and carries the direction tag of the slot it occupies.
func LinkViolationValidate[K any, V any](tree RBTree[K, V]) error {
	root := tree.Root()
	if root == nil {
		return nil
	}
	if root.Parent() != nil {
		return errors.New("rbtree link violation (root with parent)")
	}

	stack := []RBNode[K, V]{root}
	for len(stack) > 0 {
		aux := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if l := aux.Left(); l != nil {
			if l.Parent() != aux || l.Direction() != Left {
				return errors.New("rbtree link violation")
			}
			stack = append(stack, l)
		}
		if r := aux.Right(); r != nil {
			if r.Parent() != aux || r.Direction() != Right {
				return errors.New("rbtree link violation")
			}
			stack = append(stack, r)
		}
	}
	return nil
}

// RedViolationValidate checks that no red node has a red parent and
// that no node has two red children. The latter is the 2-3
// restriction: a red child on either side joins its black parent into
// a 3-node, and two red children would form a 4-node.
func RedViolationValidate[K any, V any](tree RBTree[K, V]) error {
	root := tree.Root()
	if root == nil {
		return nil
	}

	stack := []RBNode[K, V]{root}
	for len(stack) > 0 {
		aux := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if isRed(aux) && isRed(aux.Parent()) {
			return errors.New("rbtree red violation")
		}
		if isRed(aux.Left()) && isRed(aux.Right()) {
			return errors.New("rbtree red violation (two red children)")
		}

		if l := aux.Left(); l != nil {
			stack = append(stack, l)
		}
		if r := aux.Right(); r != nil {
			stack = append(stack, r)
		}
	}
	return nil
}

// BlackViolationValidate checks that every root-to-leaf path carries
// the same number of black nodes, counting absent children as black.
func BlackViolationValidate[K any, V any](tree RBTree[K, V]) error {
	_, err := blackDepthValidate[K, V](tree.Root())
	return err
}

func blackDepthValidate[K any, V any](node RBNode[K, V]) (int, error) {
	if isNilLeaf(node) {
		return 1, nil
	}

	leftDepth, err := blackDepthValidate[K, V](node.Left())
	if err != nil {
		return 0, err
	}
	rightDepth, err := blackDepthValidate[K, V](node.Right())
	if err != nil {
		return 0, err
	}
	if leftDepth != rightDepth {
		return 0, errors.New("rbtree black violation")
	}

	if isBlack(node) {
		leftDepth++
	}
	return leftDepth, nil
}

// OrderViolationValidate checks that the in-order walk yields strictly
// increasing unique keys under cmp.
func OrderViolationValidate[K any, V any](tree RBTree[K, V], cmp KeyComparator[K]) error {
	var (
		err     error
		prevKey K
	)
	first := true
	tree.Foreach(func(idx int64, color RBColor, key K, val V) bool {
		if !first && cmp(prevKey, key) >= 0 {
			err = errors.New("rbtree order violation")
			return false
		}
		first = false
		prevKey = key
		return true
	})
	return err
}

// CountViolationValidate checks that Len matches the number of
// reachable nodes.
func CountViolationValidate[K any, V any](tree RBTree[K, V]) error {
	reachable := int64(0)
	tree.Foreach(func(idx int64, color RBColor, key K, val V) bool {
		reachable++
		return true
	})
	if reachable != tree.Len() {
		return errors.New("rbtree count violation")
	}
	return nil
}

// Validate cross-checks every tree invariant and aggregates the
// violations. A failure is a bug in this package.
func (tree *rbTree[K, V]) Validate() error {
	var rootErr error
	if tree.root.isRed() {
		rootErr = errors.New("rbtree root violation (red root)")
	}

	return multierr.Combine(
		rootErr,
		LinkViolationValidate[K, V](tree),
		RedViolationValidate[K, V](tree),
		BlackViolationValidate[K, V](tree),
		OrderViolationValidate[K, V](tree, tree.cmp),
		CountViolationValidate[K, V](tree),
	)
}
