package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	errs "github.com/matzehuels/treemap/pkg/errors"
	"github.com/matzehuels/treemap/pkg/pipeline"
	termrender "github.com/matzehuels/treemap/pkg/render/term"
	"github.com/matzehuels/treemap/pkg/tree"
)

// exploreCommand creates the interactive explorer.
func (c *CLI) exploreCommand() *cobra.Command {
	opts := c.Config.pipelineOptions()
	var (
		expand  = c.Config.Expand
		save    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "explore [path]",
		Short: "Browse and edit a treemap in the terminal",
		Long: `Browse and edit a treemap in the terminal.

Keys:
  arrows, hjkl   select the neighbouring tile (or click a tile)
  e / E          expand the selection / everything below it
  c / C          collapse the selection's folder / the whole tree
  + / -          grow or shrink the selected leaf by 1%
  m then M       mark a leaf, then move it into the selected folder
  d              delete the selection
  q              quit

Edits only change the in-memory tree. Use --save to store it on exit.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.Path = args[0]
			}
			depth, err := parseExpand(expand)
			if err != nil {
				return err
			}
			opts.Expand = depth
			return c.runExplore(cmd.Context(), opts, save, noCache)
		},
	}

	cmd.Flags().StringVar(&expand, "expand", expand, "levels to open: all, none or a depth")
	cmd.Flags().StringVar(&save, "save", "", "save the edited tree to the store under this name on exit")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	addLoadFlags(cmd, &opts)

	return cmd
}

func (c *CLI) runExplore(ctx context.Context, opts pipeline.Options, save string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	if opts.Stored != "" || save != "" {
		store, err := c.openStore(ctx)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		runner.Store = store
	}

	loaded, err := runner.Load(ctx, opts)
	if err != nil {
		return err
	}
	pipeline.ApplyExpansion(loaded.Root, opts.Expand)

	m := newExploreModel(loaded.Root, loaded.Labeler)
	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx)).Run()
	if err != nil {
		return fmt.Errorf("explorer: %w", err)
	}

	if save == "" {
		return nil
	}
	if fm, ok := final.(*exploreModel); ok {
		c.Logger.Debug("saving explored tree", "name", save, "edits", fm.edits)
	}
	if err := runner.Store.Save(ctx, save, loaded.Snapshot()); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	printSuccess("Saved snapshot %s", StyleHighlight.Render(save))
	return nil
}

// exploreChrome is the number of rows below the treemap: status and help.
const exploreChrome = 2

var (
	exploreStatus = lipgloss.NewStyle().Foreground(colorWhite).Bold(true)
	exploreMarked = lipgloss.NewStyle().Foreground(colorYellow)
	exploreHelp   = StyleDim
)

// exploreModel is the bubbletea model of the explorer. The tree is laid out
// one layout unit per terminal cell.
type exploreModel struct {
	root     *tree.Node
	labeler  tree.Labeler
	selected *tree.Node
	marked   *tree.Node
	message  string
	edits    int
	width    int
	height   int
}

func newExploreModel(root *tree.Node, l tree.Labeler) *exploreModel {
	return &exploreModel{root: root, labeler: l}
}

func (m *exploreModel) Init() tea.Cmd { return nil }

func (m *exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			if n := m.cellOwner(msg.X, msg.Y); n != nil {
				m.selected = n
				m.message = ""
			}
		}
	case tea.KeyMsg:
		return m, m.handleKey(msg.String())
	}
	return m, nil
}

func (m *exploreModel) handleKey(key string) tea.Cmd {
	switch key {
	case "q", "ctrl+c", "esc":
		return tea.Quit
	case "up", "k":
		m.step(0, -1)
	case "down", "j":
		m.step(0, 1)
	case "left", "h":
		m.step(-1, 0)
	case "right", "l":
		m.step(1, 0)
	}

	sel := m.selected
	if sel == nil {
		return nil
	}
	r := sel.Rect()
	anchor := tree.Point{X: r.X + r.W/2, Y: r.Y + r.H/2}

	switch key {
	case "e":
		sel.Expand()
	case "E":
		sel.ExpandAll()
	case "c":
		sel.Collapse()
	case "C":
		sel.CollapseAll()
	case "+", "=":
		m.resizeLeaf(sel, 0.01)
	case "-":
		m.resizeLeaf(sel, -0.01)
	case "m":
		if !sel.IsLeaf() {
			m.message = "only leaves can be moved"
			return nil
		}
		m.marked = sel
		m.message = "marked " + sel.Name()
		return nil
	case "M":
		m.move(sel)
	case "d":
		if !sel.Delete() {
			m.message = "the root cannot be deleted"
			return nil
		}
		if m.marked == sel || (m.marked != nil && sel.IsAncestorOf(m.marked)) {
			m.marked = nil
		}
		m.message = "deleted " + sel.Name()
		m.edits++
	default:
		return nil
	}

	m.relayout(anchor)
	return nil
}

func (m *exploreModel) resizeLeaf(n *tree.Node, factor float64) {
	if !n.IsLeaf() {
		m.message = "only leaves can be resized"
		return
	}
	n.ChangeSize(factor)
	m.message = "size " + tree.FormatSize(n.Size())
	m.edits++
}

func (m *exploreModel) move(dest *tree.Node) {
	if m.marked == nil {
		m.message = "mark a leaf with m first"
		return
	}
	if dest.IsLeaf() {
		dest = dest.Parent()
	}
	if dest == nil {
		return
	}
	if err := m.marked.Move(dest); err != nil {
		m.message = errs.UserMessage(err)
		return
	}
	m.message = fmt.Sprintf("moved %s into %s", m.marked.Name(), dest.Name())
	m.selected = m.marked
	m.marked = nil
	m.edits++
}

func (m *exploreModel) resize(w, h int) {
	m.width, m.height = w, h
	frame := tree.Rect{W: max(w, 1), H: max(h-exploreChrome, 1)}
	m.root.UpdateRectangles(frame)
	m.reselect(tree.Point{})
}

// relayout lays the tree out again in its current frame and keeps the
// selection on a visible tile, falling back to whatever now covers anchor.
func (m *exploreModel) relayout(anchor tree.Point) {
	m.root.UpdateRectangles(m.root.Rect())
	m.reselect(anchor)
}

func (m *exploreModel) reselect(anchor tree.Point) {
	tiles := m.root.Rectangles()
	for _, t := range tiles {
		if t.Node == m.selected {
			return
		}
	}
	m.selected = m.root.TreeAtPosition(anchor)
	if m.selected == nil && len(tiles) > 0 {
		m.selected = tiles[0].Node
	}
}

// step selects the tile just past the selection's edge in direction
// (dx, dy). Nothing changes at the frame border.
func (m *exploreModel) step(dx, dy int) {
	if m.selected == nil {
		return
	}
	r := m.selected.Rect()
	p := tree.Point{X: r.X + r.W/2, Y: r.Y + r.H/2}
	switch {
	case dx > 0:
		p.X = r.X + r.W + 1
	case dx < 0:
		p.X = r.X - 1
	case dy > 0:
		p.Y = r.Y + r.H + 1
	case dy < 0:
		p.Y = r.Y - 1
	}
	if n := m.root.TreeAtPosition(p); n != nil {
		m.selected = n
		m.message = ""
	}
}

// cellOwner returns the tile painted at a terminal cell. Cells are
// half-open, so this differs from TreeAtPosition on shared edges.
func (m *exploreModel) cellOwner(x, y int) *tree.Node {
	var owner *tree.Node
	for _, t := range m.root.Rectangles() {
		r := t.Rect
		if r.X <= x && x < r.X+r.W && r.Y <= y && y < r.Y+r.H {
			owner = t.Node
		}
	}
	return owner
}

func (m *exploreModel) View() string {
	if m.width == 0 {
		return "loading..."
	}

	var b strings.Builder
	b.WriteString(termrender.Render(m.root, termrender.Options{Selected: m.selected, Labels: true}))
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(exploreHelp.Render("arrows move · e/E expand · c/C collapse · +/- resize · m/M move · d delete · q quit"))
	return b.String()
}

func (m *exploreModel) statusLine() string {
	if m.root.IsEmpty() || m.selected == nil {
		return exploreStatus.Render("empty tree")
	}
	line := exploreStatus.Render(m.selected.Label(m.labeler))
	if m.marked != nil {
		line += "  " + exploreMarked.Render("marked: "+m.marked.Name())
	}
	if m.message != "" {
		line += "  " + StyleDim.Render(m.message)
	}
	return lipgloss.NewStyle().MaxWidth(m.width).Render(line)
}
