// Package render turns laid-out trees into pictures.
//
// # Overview
//
//   - [sink]: treemap tiles as SVG, JSON, PNG and PDF
//   - [nodelink]: the tree's hierarchy as a Graphviz node-link diagram
//   - [term]: a coloured cell grid for terminals
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg). Both the treemap and the
// node-link renderers use them.
//
//	svg := sink.RenderSVG(root)
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// [sink]: github.com/matzehuels/treemap/pkg/render/sink
// [nodelink]: github.com/matzehuels/treemap/pkg/render/nodelink
// [term]: github.com/matzehuels/treemap/pkg/render/term
package render
