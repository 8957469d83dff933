package tree

// Rectangles returns the tiles to paint for the visible part of the tree
// rooted at n, in child order.
//
// A node of size 0 contributes nothing. A collapsed node or a leaf
// contributes its own rectangle and colour. An expanded internal node
// contributes the tiles of its children. Later tiles should be painted on top
// of earlier ones.
func (n *Node) Rectangles() []Tile {
	var out []Tile
	n.appendTiles(&out)
	return out
}

func (n *Node) appendTiles(out *[]Tile) {
	if n.size == 0 {
		return
	}
	if !n.expanded || len(n.children) == 0 {
		*out = append(*out, Tile{Rect: n.rect, Colour: n.colour, Node: n})
		return
	}
	for _, c := range n.children {
		c.appendTiles(out)
	}
}

// TreeAtPosition returns the visible unit whose rectangle contains p, or nil
// when p is outside n's rectangle. Nodes of size 0 are never returned since
// they are not drawn.
//
// Points on a shared edge hit several rectangles; the one whose top-left
// corner is closest to the origin wins, which prefers the leftmost and
// topmost candidate. On an exact tie the earlier child wins.
func (n *Node) TreeAtPosition(p Point) *Node {
	if n.size == 0 {
		return nil
	}
	if !n.expanded || len(n.children) == 0 {
		if n.rect.Contains(p) {
			return n
		}
		return nil
	}

	var best *Node
	bestDist := 0.0
	for _, c := range n.children {
		hit := c.TreeAtPosition(p)
		if hit == nil {
			continue
		}
		if d := hit.rect.originDistance(); best == nil || d < bestDist {
			best, bestDist = hit, d
		}
	}
	return best
}
