package tree

import (
	"fmt"
	"strings"
)

// Labeler supplies the domain-specific parts of a node's display label.
type Labeler interface {
	// Separator joins ancestor names in a path string.
	Separator() string
	// Suffix describes the node, e.g. " (file, 1.00kB)".
	Suffix(n *Node) string
}

// PlainLabeler is the Labeler for trees that do not come from a filesystem.
type PlainLabeler struct{}

// Separator returns "/".
func (PlainLabeler) Separator() string { return "/" }

// Suffix returns " (<size>)" for leaves and " (<N> items, <size>)" for
// internal nodes.
func (PlainLabeler) Suffix(n *Node) string {
	if n.IsLeaf() {
		return fmt.Sprintf(" (%s)", FormatSize(n.size))
	}
	return fmt.Sprintf(" (%d items, %s)", len(n.children), FormatSize(n.size))
}

// PathString joins the names from the root down to n with l's separator.
func (n *Node) PathString(l Labeler) string {
	var names []string
	for cur := n; cur != nil; cur = cur.parent {
		names = append(names, cur.name)
	}
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return strings.Join(names, l.Separator())
}

// Label returns the path string followed by the suffix.
func (n *Node) Label(l Labeler) string {
	return n.PathString(l) + l.Suffix(n)
}

var sizeUnits = []string{"B", "kB", "MB", "GB", "TB"}

// FormatSize renders a byte count in the largest unit from B to TB that
// keeps the value at or above 1, dividing by 1024 per step, with two
// decimals. TB is used for anything larger.
func FormatSize(size int64) string {
	v := float64(size)
	unit := 0
	for v >= 1024 && unit < len(sizeUnits)-1 {
		v /= 1024
		unit++
	}
	return fmt.Sprintf("%.2f%s", v, sizeUnits[unit])
}
