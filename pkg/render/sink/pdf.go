package sink

import (
	"github.com/matzehuels/treemap/pkg/render"
	"github.com/matzehuels/treemap/pkg/tree"
)

// RenderPDF renders the tree as PDF via SVG conversion.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(root *tree.Node, opts ...SVGOption) ([]byte, error) {
	return render.ToPDF(RenderSVG(root, opts...))
}
