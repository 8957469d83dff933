// Package term draws a laid-out tree as a grid of coloured terminal cells.
//
// The tree must be laid out in cell units, one layout unit per character:
//
//	root.UpdateRectangles(tree.Rect{W: cols, H: rows})
//	fmt.Println(term.Render(root, term.Options{Labels: true}))
//
// Each tile paints the half-open cell range [X, X+W) x [Y, Y+H), so
// neighbouring tiles never overwrite each other's edges.
package term

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/treemap/pkg/tree"
)

var (
	colourDark   = lipgloss.Color("#000000")
	colourLight  = lipgloss.Color("#ffffff")
	colourSelect = lipgloss.Color("#ffd700")
)

// Options configures [Render].
type Options struct {
	// Selected is drawn with a highlighted border. It may be any node; a
	// node that is not itself a visible tile is ignored.
	Selected *tree.Node
	// Labels writes node names into tiles at least three cells wide.
	Labels bool
}

type cell struct {
	r    rune
	tile int
	edge bool
}

// Render returns the tiles of root as rows of styled cells joined by
// newlines. Cells no tile covers are left blank.
func Render(root *tree.Node, opts Options) string {
	frame := root.Rect()
	if frame.Empty() {
		return ""
	}

	tiles := root.Rectangles()
	grid := make([][]cell, frame.H)
	for y := range grid {
		grid[y] = make([]cell, frame.W)
		for x := range grid[y] {
			grid[y][x] = cell{r: ' ', tile: -1}
		}
	}

	for i, t := range tiles {
		paint(grid, frame, t.Rect, i)
		if t.Node == opts.Selected {
			outline(grid, frame, t.Rect)
		}
		if opts.Labels {
			label(grid, frame, t)
		}
	}

	styles := make([]lipgloss.Style, len(tiles))
	for i, t := range tiles {
		styles[i] = lipgloss.NewStyle().
			Background(lipgloss.Color(t.Colour.Hex())).
			Foreground(foreground(t.Colour))
	}
	edgeStyle := lipgloss.NewStyle().Foreground(colourSelect).Bold(true)

	lines := make([]string, len(grid))
	for y, row := range grid {
		var line strings.Builder
		// Consecutive cells with the same style are rendered as one run.
		for start := 0; start < len(row); {
			end := start + 1
			for end < len(row) && row[end].tile == row[start].tile && row[end].edge == row[start].edge {
				end++
			}
			var run strings.Builder
			for _, c := range row[start:end] {
				run.WriteRune(c.r)
			}
			switch c := row[start]; {
			case c.tile < 0:
				line.WriteString(run.String())
			case c.edge:
				line.WriteString(edgeStyle.Inherit(styles[c.tile]).Render(run.String()))
			default:
				line.WriteString(styles[c.tile].Render(run.String()))
			}
			start = end
		}
		lines[y] = line.String()
	}
	return strings.Join(lines, "\n")
}

// clip intersects r with the frame and returns grid-relative bounds.
func clip(frame, r tree.Rect) (x0, y0, x1, y1 int) {
	x0 = max(r.X, frame.X) - frame.X
	y0 = max(r.Y, frame.Y) - frame.Y
	x1 = min(r.X+r.W, frame.X+frame.W) - frame.X
	y1 = min(r.Y+r.H, frame.Y+frame.H) - frame.Y
	return
}

func paint(grid [][]cell, frame, r tree.Rect, tile int) {
	x0, y0, x1, y1 := clip(frame, r)
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			grid[y][x] = cell{r: ' ', tile: tile}
		}
	}
}

func outline(grid [][]cell, frame, r tree.Rect) {
	x0, y0, x1, y1 := clip(frame, r)
	if x1-x0 < 2 || y1-y0 < 2 {
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				grid[y][x].r, grid[y][x].edge = '█', true
			}
		}
		return
	}
	set := func(x, y int, r rune) { grid[y][x].r, grid[y][x].edge = r, true }
	for x := x0 + 1; x < x1-1; x++ {
		set(x, y0, '─')
		set(x, y1-1, '─')
	}
	for y := y0 + 1; y < y1-1; y++ {
		set(x0, y, '│')
		set(x1-1, y, '│')
	}
	set(x0, y0, '┌')
	set(x1-1, y0, '┐')
	set(x0, y1-1, '└')
	set(x1-1, y1-1, '┘')
}

func label(grid [][]cell, frame tree.Rect, t tree.Tile) {
	x0, y0, x1, y1 := clip(frame, t.Rect)
	if x1-x0 < 3 || y1 <= y0 {
		return
	}
	y := y0
	if y1-y0 >= 3 {
		y = y0 + 1
	}
	name := t.Node.Name()
	room := x1 - x0 - 2
	if utf8.RuneCountInString(name) > room {
		name = string([]rune(name)[:room])
	}
	x := x0 + 1
	for _, r := range name {
		if !grid[y][x].edge {
			grid[y][x].r = r
		}
		x++
	}
}

func foreground(c tree.Colour) lipgloss.Color {
	if 299*int(c.R)+587*int(c.G)+114*int(c.B) > 150_000 {
		return colourDark
	}
	return colourLight
}
