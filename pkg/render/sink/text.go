package sink

import (
	"bytes"
	"encoding/xml"
	"strconv"
)

const (
	fontFamily     = "Helvetica, Arial, sans-serif"
	fontHeightRat  = 0.6
	fontWidthRatio = 0.85
	fontCharWidth  = 0.55
	fontSizeMin    = 8.0
	fontSizeMax    = 24.0
	minTextWidth   = 24.0
)

func fontSize(t Tile) float64 {
	n := max(1, len(t.Name))
	byHeight := t.H * fontHeightRat
	byWidth := (t.W * fontWidthRatio) / (float64(n) * fontCharWidth)
	return max(fontSizeMin, min(fontSizeMax, min(byHeight, byWidth)))
}

// fitsText reports whether a tile can hold a minimum-size label.
func fitsText(t Tile) bool {
	return t.W >= minTextWidth && t.H >= fontSizeMin/fontHeightRat
}

func truncate(t Tile, size float64) string {
	maxChars := max(3, int(t.W*fontWidthRatio/(size*fontCharWidth)))
	runes := []rune(t.Name)
	if len(runes) <= maxChars {
		return t.Name
	}
	return string(runes[:maxChars-2]) + ".."
}

// textColour picks black or white, whichever contrasts more with fill.
func textColour(fill string) string {
	if len(fill) != 7 {
		return "#000000"
	}
	rgb, err := strconv.ParseUint(fill[1:], 16, 32)
	if err != nil {
		return "#000000"
	}
	r, g, b := float64(rgb>>16&0xff), float64(rgb>>8&0xff), float64(rgb&0xff)
	if 0.299*r+0.587*g+0.114*b > 150 {
		return "#000000"
	}
	return "#ffffff"
}

// EscapeXML escapes s for use in SVG text and attributes.
func EscapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
