package tree

import (
	errs "github.com/matzehuels/treemap/pkg/errors"
)

// Node is one node of a treemap tree.
//
// A node exclusively owns its children. The parent pointer is a non-owning
// back-reference used for upward size propagation and expansion checks.
type Node struct {
	name     string
	hasName  bool
	size     int64
	colour   Colour
	rect     Rect
	children []*Node
	parent   *Node
	expanded bool
	// truncated marks a leaf standing in for a subtree that was not built.
	truncated bool
}

// Option configures node construction.
type Option func(*config)

type config struct {
	colours   ColourSource
	colour    *Colour
	expanded  bool
	truncated bool
}

// WithColours sets the colour source used to pick the node's colour.
// Without it, colours come from [RandomColours].
func WithColours(src ColourSource) Option {
	return func(c *config) { c.colours = src }
}

// WithColour fixes the node's colour, bypassing the colour source. It is
// used when restoring a saved tree.
func WithColour(col Colour) Option {
	return func(c *config) { c.colour = &col }
}

// WithExpanded sets the initial expansion flag. It is ignored for leaves.
// Callers restoring a tree should run [Node.Validate] afterwards.
func WithExpanded(expanded bool) Option {
	return func(c *config) { c.expanded = expanded }
}

// WithTruncated marks a leaf as the summary of a subtree that was cut off
// while building, such as a folder below the scan depth. It is ignored for
// internal nodes.
func WithTruncated(truncated bool) Option {
	return func(c *config) { c.truncated = truncated }
}

func newConfig(opts []Option) config {
	var c config
	for _, opt := range opts {
		opt(&c)
	}
	if c.colours == nil {
		c.colours = RandomColours()
	}
	return c
}

// Empty returns the empty-tree sentinel: a node with no name, no children,
// no parent and size 0.
func Empty() *Node {
	return &Node{}
}

// NewLeaf builds a leaf with an intrinsic size. A negative size is a
// contract violation and returns an [errs.ErrCodeInvariant] error.
func NewLeaf(name string, size int64, opts ...Option) (*Node, error) {
	return New(name, nil, size, opts...)
}

// NewInternal builds a node whose size is the sum of children. An empty
// children slice produces a leaf of size 0.
func NewInternal(name string, children []*Node, opts ...Option) (*Node, error) {
	return New(name, children, 0, opts...)
}

// New builds a node from a name, an ordered list of already-constructed
// children and, for leaves only, an intrinsic size. When children is
// non-empty size is ignored and the node's size is the sum of its children.
//
// Every child must be a parentless, non-empty node appearing once.
func New(name string, children []*Node, size int64, opts ...Option) (*Node, error) {
	cfg := newConfig(opts)

	n := &Node{name: name, hasName: true}
	if cfg.colour != nil {
		n.colour = *cfg.colour
	} else {
		n.colour = cfg.colours.Next()
	}

	if len(children) == 0 {
		if size < 0 {
			return nil, errs.New(errs.ErrCodeInvariant, "leaf %q has negative size %d", name, size)
		}
		n.size = size
		n.truncated = cfg.truncated
		return n, nil
	}

	seen := make(map[*Node]struct{}, len(children))
	n.children = make([]*Node, 0, len(children))
	for i, c := range children {
		switch {
		case c == nil:
			return nil, errs.New(errs.ErrCodeInvariant, "child %d of %q is nil", i, name)
		case c.IsEmpty():
			return nil, errs.New(errs.ErrCodeInvariant, "child %d of %q is the empty tree", i, name)
		case c.parent != nil:
			return nil, errs.New(errs.ErrCodeInvariant, "child %q of %q already has a parent", c.name, name)
		}
		if _, dup := seen[c]; dup {
			return nil, errs.New(errs.ErrCodeInvariant, "child %q appears twice under %q", c.name, name)
		}
		seen[c] = struct{}{}
		sum, ok := addSizes(n.size, c.size)
		if !ok {
			return nil, errs.New(errs.ErrCodeInvariant, "size of %q overflows int64", name)
		}
		n.children = append(n.children, c)
		n.size = sum
	}
	for _, c := range n.children {
		c.parent = n
	}
	n.expanded = cfg.expanded
	return n, nil
}

// Name returns the node's label, or "" for the empty tree.
func (n *Node) Name() string { return n.name }

// IsEmpty reports whether n is the empty-tree sentinel.
func (n *Node) IsEmpty() bool { return !n.hasName }

// Size returns the node's data size.
func (n *Node) Size() int64 { return n.size }

// Colour returns the display colour assigned at construction.
func (n *Node) Colour() Colour { return n.colour }

// Rect returns the rectangle from the most recent layout. It is stale after
// any size or structure change until the tree is laid out again.
func (n *Node) Rect() Rect { return n.rect }

// Parent returns the parent node, or nil for a root.
func (n *Node) Parent() *Node { return n.parent }

// Children returns a copy of the ordered child list.
func (n *Node) Children() []*Node {
	if len(n.children) == 0 {
		return nil
	}
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// NumChildren returns the number of direct children.
func (n *Node) NumChildren() int { return len(n.children) }

// IsLeaf reports whether n has no children.
func (n *Node) IsLeaf() bool { return len(n.children) == 0 }

// Expanded reports whether n currently shows its children.
func (n *Node) Expanded() bool { return n.expanded }

// Truncated reports whether n is a leaf summarising a subtree that was not
// built.
func (n *Node) Truncated() bool { return n.truncated }

// Root walks parent pointers up to the root.
func (n *Node) Root() *Node {
	for n.parent != nil {
		n = n.parent
	}
	return n
}

// Depth returns the number of ancestors above n.
func (n *Node) Depth() int {
	d := 0
	for p := n.parent; p != nil; p = p.parent {
		d++
	}
	return d
}

// IsAncestorOf reports whether n appears on the parent chain of other.
// A node is not its own ancestor.
func (n *Node) IsAncestorOf(other *Node) bool {
	for p := other.parent; p != nil; p = p.parent {
		if p == n {
			return true
		}
	}
	return false
}

// Walk visits n and its descendants in pre-order. Returning false from fn
// skips the children of the node just visited. The traversal uses an
// explicit stack, so very deep trees do not grow the call stack.
func (n *Node) Walk(fn func(*Node) bool) {
	stack := []*Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(cur) {
			continue
		}
		for i := len(cur.children) - 1; i >= 0; i-- {
			stack = append(stack, cur.children[i])
		}
	}
}

// Len returns the number of nodes in the subtree rooted at n.
func (n *Node) Len() int {
	count := 0
	n.Walk(func(*Node) bool {
		count++
		return true
	})
	return count
}

// Leaves returns the true leaves of the subtree in left-to-right order,
// regardless of expansion state.
func (n *Node) Leaves() []*Node {
	var out []*Node
	n.Walk(func(c *Node) bool {
		if c.IsLeaf() {
			out = append(out, c)
		}
		return true
	})
	return out
}

// Find follows child names down from n and returns the node reached, or nil
// when a name is missing. Among siblings sharing a name the first wins.
func (n *Node) Find(names ...string) *Node {
	cur := n
	for _, name := range names {
		var next *Node
		for _, c := range cur.children {
			if c.name == name {
				next = c
				break
			}
		}
		if next == nil {
			return nil
		}
		cur = next
	}
	return cur
}
