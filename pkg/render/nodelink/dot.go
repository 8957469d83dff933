package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/treemap/pkg/render"
	"github.com/matzehuels/treemap/pkg/tree"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the formatted size and child count to node labels.
	// When false, only the node name is shown.
	Detailed bool
	// MaxDepth stops the diagram below this depth. Zero draws every node.
	MaxDepth int
}

// ToDOT converts a tree to Graphviz DOT format, one box per node and one
// edge per parent/child link. Node identifiers follow pre-order, so the
// output is stable for an unchanged tree.
//
// Leaves are filled with their treemap colour. Collapsed internal nodes get
// a dashed grey outline, matching how they draw as a single tile.
func ToDOT(root *tree.Node, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=24, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	if root.IsEmpty() {
		buf.WriteString("}\n")
		return buf.String()
	}

	ids := make(map[*tree.Node]string)
	var edges []string
	rootDepth := root.Depth()
	root.Walk(func(n *tree.Node) bool {
		depth := n.Depth() - rootDepth
		id := "n" + strconv.Itoa(len(ids))
		ids[n] = id

		fmt.Fprintf(&buf, "  %q [%s];\n", id, strings.Join(fmtAttrs(n, fmtLabel(n, opts.Detailed)), ", "))
		if p := n.Parent(); p != nil && n != root {
			edges = append(edges, fmt.Sprintf("  %q -> %q;\n", ids[p], id))
		}
		return opts.MaxDepth <= 0 || depth < opts.MaxDepth
	})

	buf.WriteString("\n")
	for _, e := range edges {
		buf.WriteString(e)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n *tree.Node, detailed bool) string {
	if !detailed {
		return n.Name()
	}
	if n.IsLeaf() {
		return n.Name() + "\n" + tree.FormatSize(n.Size())
	}
	return fmt.Sprintf("%s\n%s\n%d items", n.Name(), tree.FormatSize(n.Size()), n.NumChildren())
}

func fmtAttrs(n *tree.Node, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch {
	case n.IsLeaf():
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", n.Colour().Hex()))
	case !n.Expanded():
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey", "fontcolor=black")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's svg tag with one whose viewBox
// starts at the origin and whose size matches the viewBox.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion. A scale of 2.0
// produces a 2x resolution image.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(svg, scale)
}
