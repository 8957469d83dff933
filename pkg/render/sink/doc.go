// Package sink writes laid-out trees to output formats.
//
// Every renderer reads the tiles returned by [tree.Node.Rectangles], so it
// draws exactly the visible units of the current expansion state. Lay the
// tree out with [tree.Node.UpdateRectangles] first; the root's rectangle
// becomes the canvas.
//
//	root.UpdateRectangles(tree.Rect{W: 1024, H: 768})
//	svg := sink.RenderSVG(root, sink.WithText(), sink.WithStyle(sink.Cushion{}))
//	data, err := sink.RenderJSON(root)
//	png, err := sink.RenderPNG(root, sink.WithScale(2))
//
// PNG and PDF go through rsvg-convert; see [render.ToPNG].
package sink
