package sink

import (
	"encoding/json"

	"github.com/matzehuels/treemap/pkg/tree"
)

// JSONOption configures [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	labeler tree.Labeler
	seed    uint64
	hasSeed bool
}

// WithJSONLabeler sets how tile labels are formatted.
func WithJSONLabeler(l tree.Labeler) JSONOption { return func(r *jsonRenderer) { r.labeler = l } }

// WithJSONSeed records the colour seed, so a consumer can reproduce the
// render.
func WithJSONSeed(seed uint64) JSONOption {
	return func(r *jsonRenderer) { r.seed = seed; r.hasSeed = true }
}

type jsonOutput struct {
	Width  int        `json:"width"`
	Height int        `json:"height"`
	Seed   *uint64    `json:"seed,omitempty"`
	Tiles  []jsonTile `json:"tiles"`
}

type jsonTile struct {
	Name   string `json:"name"`
	Label  string `json:"label"`
	Size   int64  `json:"size"`
	Depth  int    `json:"depth"`
	Leaf   bool   `json:"leaf"`
	Colour string `json:"colour"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// RenderJSON exports the visible tiles of a laid-out tree, in tree order,
// as a pretty-printed JSON document. Unlike the SVG sink it keeps tiles that
// rounded down to zero area, so consumers see every visible unit.
func RenderJSON(root *tree.Node, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{labeler: tree.PlainLabeler{}}
	for _, opt := range opts {
		opt(&r)
	}

	frame := root.Rect()
	out := jsonOutput{
		Width:  frame.W,
		Height: frame.H,
		Tiles:  make([]jsonTile, 0),
	}
	if r.hasSeed {
		out.Seed = &r.seed
	}

	for _, t := range root.Rectangles() {
		out.Tiles = append(out.Tiles, jsonTile{
			Name:   t.Node.Name(),
			Label:  t.Node.Label(r.labeler),
			Size:   t.Node.Size(),
			Depth:  t.Node.Depth(),
			Leaf:   t.Node.IsLeaf(),
			Colour: t.Colour.Hex(),
			X:      t.Rect.X,
			Y:      t.Rect.Y,
			Width:  t.Rect.W,
			Height: t.Rect.H,
		})
	}
	return json.MarshalIndent(out, "", "  ")
}
