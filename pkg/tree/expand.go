package tree

// canExpand reports whether expanding n keeps expanded nodes connected to
// the root: n must be internal, and either the root or under an expanded
// parent.
func (n *Node) canExpand() bool {
	if len(n.children) == 0 {
		return false
	}
	return n.parent == nil || n.parent.expanded
}

// Expand shows n's children instead of n itself. It is a no-op on a leaf or
// when n's parent is collapsed.
func (n *Node) Expand() {
	if n.canExpand() {
		n.expanded = true
	}
}

// ExpandAll expands n and every internal node below it. It is a no-op under
// the same conditions as [Node.Expand].
func (n *Node) ExpandAll() {
	if !n.canExpand() {
		return
	}
	n.Walk(func(c *Node) bool {
		if len(c.children) > 0 {
			c.expanded = true
		}
		return true
	})
}

// Collapse folds n's parent, and everything below it, back into a single
// visible unit. It is a no-op on a root.
func (n *Node) Collapse() {
	if n.parent == nil {
		return
	}
	n.parent.collapseSubtree()
}

func (n *Node) collapseSubtree() {
	n.Walk(func(c *Node) bool {
		c.expanded = false
		return true
	})
}

// CollapseAll collapses the whole tree containing n, so the root is drawn as
// a single unit. It is a no-op on a root.
func (n *Node) CollapseAll() {
	if n.parent == nil {
		return
	}
	top := n
	for top.parent.parent != nil {
		top = top.parent
	}
	top.Collapse()
}
