// Package tree provides the treemap engine: a sized hierarchy that can be laid
// out as nested rectangles, queried by screen position, and mutated in place.
//
// # Overview
//
// A [Node] is either a leaf, which carries an intrinsic size, or an internal
// node whose size is always the sum of its children. Every node remembers the
// rectangle it was last assigned by [Node.UpdateRectangles] and a display
// colour drawn once from a [ColourSource] at construction.
//
// The usual cycle is:
//
//	root, _ := tree.NewInternal("home", children, tree.WithColours(tree.NewSeededColours(42)))
//	root.ExpandAll()
//	root.UpdateRectangles(tree.Rect{W: 800, H: 600})
//
//	for _, t := range root.Rectangles() {
//	    // paint t.Rect with t.Colour
//	}
//
//	if hit := root.TreeAtPosition(tree.Point{X: 120, Y: 40}); hit != nil {
//	    hit.ChangeSize(0.1)
//	    root.UpdateRectangles(root.Rect())
//	}
//
// # Layout
//
// The layout is slice-and-dice: a node splits its rectangle into strips along
// its longer side (vertical strips when the rectangle is square), one strip per
// child, proportional to size. The last child absorbs rounding so the strips
// tile the parent exactly.
//
// # Expansion
//
// Expansion decides which nodes are drawn. An expanded node shows its children;
// a collapsed node is drawn as a single unit. Expanded nodes always form a
// connected region starting at the root, and leaves are never expanded.
//
// # Invariants
//
// [Node.Validate] checks the structural invariants: non-negative sizes,
// internal sizes equal to the sum of their children, a consistent parent
// back-reference, and the expansion rules above. All mutating methods keep
// them. None of the methods are safe for concurrent use; callers sharing a tree
// between goroutines must serialize access with a single lock per tree.
package tree
