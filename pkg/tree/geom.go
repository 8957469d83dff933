package tree

import (
	"fmt"
	"math"

	errs "github.com/matzehuels/treemap/pkg/errors"
)

// Point is a screen position in layout units.
type Point struct {
	X, Y int
}

// Rect is an axis-aligned rectangle given by its top-left corner and size.
type Rect struct {
	X, Y int
	W, H int
}

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	return r.X <= p.X && p.X <= r.X+r.W && r.Y <= p.Y && p.Y <= r.Y+r.H
}

// Empty reports whether r covers no area.
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// Area returns W*H, or 0 for an empty rectangle.
func (r Rect) Area() int {
	if r.Empty() {
		return 0
	}
	return r.W * r.H
}

// originDistance is the Euclidean distance of the top-left corner from (0, 0).
func (r Rect) originDistance() float64 {
	return math.Hypot(float64(r.X), float64(r.Y))
}

func (r Rect) String() string {
	return fmt.Sprintf("(%d,%d %dx%d)", r.X, r.Y, r.W, r.H)
}

// Colour is an RGB display colour.
type Colour struct {
	R, G, B uint8
}

// Hex returns the colour as a CSS hex string, e.g. "#1e3a5f".
func (c Colour) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ParseColour parses a "#rrggbb" hex string.
func ParseColour(s string) (Colour, error) {
	var c Colour
	if len(s) != 7 || s[0] != '#' {
		return c, errs.New(errs.ErrCodeInvalidFormat, "colour %q: want #rrggbb", s)
	}
	if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &c.R, &c.G, &c.B); err != nil {
		return c, errs.Wrap(errs.ErrCodeInvalidFormat, err, "colour %q", s)
	}
	return c, nil
}

// Tile is one paintable unit of a laid-out tree.
type Tile struct {
	Rect   Rect
	Colour Colour
	Node   *Node
}
