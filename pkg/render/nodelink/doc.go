// Package nodelink renders a tree's hierarchy as a node-link diagram.
//
// # Overview
//
// A treemap hides structure inside nested rectangles; this package shows
// the same tree as boxes connected by arrows, laid out by Graphviz. It is
// useful for checking what a scan produced and which nodes are expanded.
//
// # Usage
//
// Convert a tree to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(root, nodelink.Options{Detailed: true, MaxDepth: 3})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0)  // 2x scale
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
