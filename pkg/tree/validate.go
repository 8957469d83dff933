package tree

import (
	errs "github.com/matzehuels/treemap/pkg/errors"
)

// Validate checks the structural invariants of the subtree rooted at n and
// returns an [errs.ErrCodeInvariant] error describing the first violation.
func (n *Node) Validate() error {
	if n.IsEmpty() {
		if len(n.children) != 0 || n.parent != nil || n.size != 0 {
			return errs.New(errs.ErrCodeInvariant, "empty tree must have no children, no parent and size 0")
		}
		return nil
	}

	seen := make(map[*Node]struct{})
	var firstErr error
	n.Walk(func(c *Node) bool {
		if firstErr != nil {
			return false
		}
		if _, dup := seen[c]; dup {
			firstErr = violation(c, "reachable more than once")
			return false
		}
		seen[c] = struct{}{}
		firstErr = c.checkLocal()
		return firstErr == nil
	})
	return firstErr
}

func (n *Node) checkLocal() error {
	if n.size < 0 {
		return violation(n, "negative size %d", n.size)
	}
	if n.IsEmpty() {
		return violation(n, "empty tree used as a child")
	}

	if len(n.children) == 0 {
		if n.expanded {
			return violation(n, "leaf is expanded")
		}
	} else {
		var sum int64
		for _, c := range n.children {
			if c.parent != n {
				return violation(c, "parent pointer does not match owner")
			}
			if !n.expanded && c.expanded {
				return violation(c, "expanded under a collapsed parent")
			}
			var ok bool
			if sum, ok = addSizes(sum, c.size); !ok {
				return violation(n, "sum of children overflows int64")
			}
		}
		if sum != n.size {
			return violation(n, "size %d does not equal sum of children %d", n.size, sum)
		}
	}

	if n.expanded && n.parent != nil && !n.parent.expanded {
		return violation(n, "expanded under a collapsed parent")
	}
	return nil
}

func violation(n *Node, format string, args ...any) error {
	err := errs.New(errs.ErrCodeInvariant, format, args...)
	err.Message = n.PathString(PlainLabeler{}) + ": " + err.Message
	return err
}
