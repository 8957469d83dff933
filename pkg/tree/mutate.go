package tree

import (
	"math"

	errs "github.com/matzehuels/treemap/pkg/errors"
)

// UpdateDataSizes recomputes sizes bottom-up and returns the new size of n.
// Leaves keep their intrinsic size.
func (n *Node) UpdateDataSizes() int64 {
	if len(n.children) == 0 {
		return n.size
	}
	var sum int64
	for _, c := range n.children {
		sum += c.UpdateDataSizes()
	}
	n.size = sum
	return sum
}

// propagateSizes recomputes the size of every ancestor of n, nearest first.
// Siblings are already consistent, so each level is a single pass over the
// direct children.
func (n *Node) propagateSizes() {
	for p := n.parent; p != nil; p = p.parent {
		p.resum()
	}
}

func (n *Node) resum() {
	if len(n.children) == 0 {
		return
	}
	var sum int64
	for _, c := range n.children {
		sum += c.size
	}
	n.size = sum
}

// ChangeSize grows or shrinks a leaf by factor of its current size and
// updates every ancestor. Growth is rounded up and shrinkage rounded down, so
// any non-zero factor changes the size, but a leaf never drops below 1.
// Growth stops where the root's size would overflow int64. Internal nodes,
// NaN and infinite factors are left alone.
func (n *Node) ChangeSize(factor float64) {
	if len(n.children) != 0 || n.IsEmpty() || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return
	}
	limit := int64(math.MaxInt64) - (n.Root().size - n.size)

	cur := float64(n.size)
	delta := factor * cur
	next := cur + math.Floor(delta)
	if delta > 0 {
		next = cur + math.Ceil(delta)
	}

	switch {
	case next < 1:
		n.size = 1
	case next >= float64(limit):
		n.size = limit
	default:
		n.size = min(int64(next), limit)
	}
	n.propagateSizes()
}

// addSizes returns a+b for non-negative sizes, or false when the sum does
// not fit in an int64.
func addSizes(a, b int64) (int64, bool) {
	if b > math.MaxInt64-a {
		return 0, false
	}
	return a + b, true
}

// Move re-parents the leaf n as the last child of dest and updates sizes
// along both ancestor chains.
//
// Move is a no-op unless n is a leaf and dest already has children, and
// neither is the empty tree. A destination equal to n or inside n's subtree
// is rejected with an [errs.ErrCodeCycle] error; a move into another tree
// whose size would overflow is rejected with [errs.ErrCodeInvariant]. A former parent left without children becomes
// a collapsed leaf of size 0.
func (n *Node) Move(dest *Node) error {
	if dest == nil || n.IsEmpty() || dest.IsEmpty() {
		return nil
	}
	if dest == n || n.IsAncestorOf(dest) {
		return errs.New(errs.ErrCodeCycle, "cannot move %q into its own subtree", n.name)
	}
	if len(n.children) != 0 || len(dest.children) == 0 {
		return nil
	}
	if top := dest.Root(); top != n.Root() {
		if _, ok := addSizes(top.size, n.size); !ok {
			return errs.New(errs.ErrCodeInvariant, "moving %q would overflow the size of %q", n.name, top.name)
		}
	}

	if old := n.parent; old != nil {
		old.removeChild(n)
		if len(old.children) == 0 {
			old.size = 0
			old.expanded = false
		}
		old.resum()
		old.propagateSizes()
	}

	dest.children = append(dest.children, n)
	n.parent = dest
	dest.resum()
	dest.propagateSizes()
	return nil
}

// removeChild detaches c from n's child list and reports whether it was
// found. c keeps its parent pointer.
func (n *Node) removeChild(c *Node) bool {
	for i, cur := range n.children {
		if cur == c {
			n.children = append(n.children[:i:i], n.children[i+1:]...)
			return true
		}
	}
	return false
}

// Delete removes n and its subtree from the tree and reports whether
// anything was removed. A root cannot be deleted, and neither can a node
// that was already removed.
//
// The removed subtree is cleared to size 0 with empty rectangles but keeps
// its parent pointers, so a caller can still navigate back up from it. The
// remaining tree has its sizes recomputed and is laid out again into the
// root's current rectangle.
func (n *Node) Delete() bool {
	parent := n.parent
	if parent == nil || !parent.removeChild(n) {
		return false
	}

	n.Walk(func(c *Node) bool {
		c.size = 0
		c.rect = Rect{}
		c.expanded = false
		return true
	})

	if len(parent.children) == 0 {
		parent.size = 0
		parent.expanded = false
	}
	parent.resum()
	parent.propagateSizes()

	root := parent.Root()
	root.UpdateRectangles(root.rect)
	return true
}
