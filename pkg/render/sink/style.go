package sink

import (
	"bytes"
	"fmt"
)

// Style controls how tiles and their labels are drawn.
type Style interface {
	// RenderDefs writes SVG <defs> content (gradients, filters).
	RenderDefs(buf *bytes.Buffer)
	// RenderTile writes the SVG for one tile shape.
	RenderTile(buf *bytes.Buffer, t Tile)
	// RenderText writes the SVG for one tile's label.
	RenderText(buf *bytes.Buffer, t Tile)
}

// Tile contains everything needed to draw one visible unit.
type Tile struct {
	ID         string  // Stable element id ("tile-<n>")
	Name       string  // Node name, drawn inside the tile
	Label      string  // Full label, shown as a tooltip
	Fill       string  // "#rrggbb"
	X, Y, W, H float64 // Position and size
}

// Style names accepted by [StyleByName].
const (
	StyleFlat    = "flat"
	StyleCushion = "cushion"
)

// StyleByName returns the style for a name, defaulting to [Flat].
func StyleByName(name string) Style {
	if name == StyleCushion {
		return Cushion{}
	}
	return Flat{}
}

// Flat draws solid tiles with a thin white border.
type Flat struct{}

func (Flat) RenderDefs(buf *bytes.Buffer) {}

func (Flat) RenderTile(buf *bytes.Buffer, t Tile) {
	fmt.Fprintf(buf, `  <rect id="%s" class="tile" x="%.0f" y="%.0f" width="%.0f" height="%.0f" fill="%s" stroke="#ffffff" stroke-width="1"><title>%s</title></rect>`+"\n",
		t.ID, t.X, t.Y, t.W, t.H, t.Fill, EscapeXML(t.Label))
}

func (Flat) RenderText(buf *bytes.Buffer, t Tile) { renderText(buf, t) }

// Cushion overlays each tile with a radial highlight, so neighbouring tiles
// of similar colour stay distinguishable.
type Cushion struct{}

func (Cushion) RenderDefs(buf *bytes.Buffer) {
	buf.WriteString(`  <defs>
    <radialGradient id="cushion" cx="35%" cy="30%" r="80%">
      <stop offset="0%" stop-color="#ffffff" stop-opacity="0.45"/>
      <stop offset="100%" stop-color="#000000" stop-opacity="0.35"/>
    </radialGradient>
  </defs>
`)
}

func (Cushion) RenderTile(buf *bytes.Buffer, t Tile) {
	Flat{}.RenderTile(buf, t)
	fmt.Fprintf(buf, `  <rect x="%.0f" y="%.0f" width="%.0f" height="%.0f" fill="url(#cushion)" pointer-events="none"/>`+"\n",
		t.X, t.Y, t.W, t.H)
}

func (Cushion) RenderText(buf *bytes.Buffer, t Tile) { renderText(buf, t) }

func renderText(buf *bytes.Buffer, t Tile) {
	if !fitsText(t) {
		return
	}
	size := fontSize(t)
	fmt.Fprintf(buf, `  <text class="tile-text" data-tile="%s" x="%.1f" y="%.1f" font-family="%s" font-size="%.1f" fill="%s" text-anchor="middle" dominant-baseline="central" pointer-events="none">%s</text>`+"\n",
		t.ID, t.X+t.W/2, t.Y+t.H/2, fontFamily, size, textColour(t.Fill), EscapeXML(truncate(t, size)))
}
