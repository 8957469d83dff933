package tree

// UpdateRectangles lays out the subtree rooted at n so that it fills r.
//
// n is assigned r. Its children then split r into strips along the width
// when r is wider than tall, and along the height otherwise. Each strip is
// floor(child/total * length) long, except the strip of the last sized child,
// which takes whatever length remains so the strips tile r exactly. Children
// of size 0 get a 0x0 rectangle at the current cursor.
//
// When n has size 0 its children are left untouched.
func (n *Node) UpdateRectangles(r Rect) {
	n.rect = r
	if len(n.children) == 0 || n.size <= 0 {
		return
	}

	horizontal := r.W > r.H
	length := r.H
	if horizontal {
		length = r.W
	}

	last := n.lastSizedChild()
	cursor := 0
	for i, c := range n.children {
		x, y := r.X, r.Y+cursor
		if horizontal {
			x, y = r.X+cursor, r.Y
		}

		if c.size <= 0 {
			c.UpdateRectangles(Rect{X: x, Y: y})
			continue
		}

		strip := length - cursor
		if i != last {
			strip = int(float64(c.size) / float64(n.size) * float64(length))
		}

		if horizontal {
			c.UpdateRectangles(Rect{X: x, Y: y, W: strip, H: r.H})
		} else {
			c.UpdateRectangles(Rect{X: x, Y: y, W: r.W, H: strip})
		}
		cursor += strip
	}
}

// lastSizedChild returns the index of the last child with a positive size,
// or -1 if there is none.
func (n *Node) lastSizedChild() int {
	for i := len(n.children) - 1; i >= 0; i-- {
		if n.children[i].size > 0 {
			return i
		}
	}
	return -1
}
