package sink

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/matzehuels/treemap/pkg/tree"
)

const tileInteractionCSS = `
    .tile { transition: stroke-width 0.15s ease; }
    .tile.highlight { stroke: #000000; stroke-width: 3; }`

const tileInteractionJS = `
    document.querySelectorAll('.tile').forEach(el => {
      el.addEventListener('mouseenter', () => el.classList.add('highlight'));
      el.addEventListener('mouseleave', () => el.classList.remove('highlight'));
    });`

// SVGOption configures [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	style       Style
	labeler     tree.Labeler
	text        bool
	interactive bool
}

// WithStyle sets the tile style (default [Flat]).
func WithStyle(s Style) SVGOption { return func(r *svgRenderer) { r.style = s } }

// WithLabeler sets how tooltips are formatted (default [tree.PlainLabeler]).
func WithLabeler(l tree.Labeler) SVGOption { return func(r *svgRenderer) { r.labeler = l } }

// WithText draws node names inside tiles large enough to hold them.
func WithText() SVGOption { return func(r *svgRenderer) { r.text = true } }

// WithInteraction adds hover highlighting.
func WithInteraction() SVGOption { return func(r *svgRenderer) { r.interactive = true } }

// RenderSVG draws the visible tiles of a laid-out tree. The canvas is the
// root's rectangle; tiles that rounded down to zero area are omitted.
func RenderSVG(root *tree.Node, opts ...SVGOption) []byte {
	r := svgRenderer{style: Flat{}, labeler: tree.PlainLabeler{}}
	for _, opt := range opts {
		opt(&r)
	}

	frame := root.Rect()
	tiles := buildTiles(root, r.labeler)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%d %d %d %d" width="%d" height="%d">`+"\n",
		frame.X, frame.Y, frame.W, frame.H, frame.W, frame.H)

	r.style.RenderDefs(&buf)
	for _, t := range tiles {
		r.style.RenderTile(&buf, t)
	}
	if r.text {
		for _, t := range tiles {
			r.style.RenderText(&buf, t)
		}
	}
	if r.interactive {
		fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", tileInteractionCSS)
		fmt.Fprintf(&buf, "  <script type=\"text/javascript\"><![CDATA[%s\n  ]]></script>\n", tileInteractionJS)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func buildTiles(root *tree.Node, l tree.Labeler) []Tile {
	visible := root.Rectangles()
	tiles := make([]Tile, 0, len(visible))
	for i, v := range visible {
		if v.Rect.Empty() {
			continue
		}
		tiles = append(tiles, Tile{
			ID:    "tile-" + strconv.Itoa(i),
			Name:  v.Node.Name(),
			Label: v.Node.Label(l),
			Fill:  v.Colour.Hex(),
			X:     float64(v.Rect.X),
			Y:     float64(v.Rect.Y),
			W:     float64(v.Rect.W),
			H:     float64(v.Rect.H),
		})
	}
	return tiles
}
