package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/matzehuels/treemap/pkg/tree"
)

// exploreTree builds root{a:50, b{b1:20, b2:10}, c:20} with the root open.
func exploreTree(t *testing.T) *tree.Node {
	t.Helper()
	leaf := func(name string, size int64) *tree.Node {
		n, err := tree.NewLeaf(name, size)
		if err != nil {
			t.Fatal(err)
		}
		return n
	}
	b, err := tree.NewInternal("b", []*tree.Node{leaf("b1", 20), leaf("b2", 10)})
	if err != nil {
		t.Fatal(err)
	}
	root, err := tree.NewInternal("root", []*tree.Node{leaf("a", 50), b, leaf("c", 20)})
	if err != nil {
		t.Fatal(err)
	}
	root.Expand()
	return root
}

// newTestExplorer lays the tree out in 40x5 cells (plus two rows of chrome):
// a covers x 0-19, b 20-31, c 32-39.
func newTestExplorer(t *testing.T) (*exploreModel, *tree.Node) {
	root := exploreTree(t)
	m := newExploreModel(root, tree.PlainLabeler{})
	m.Update(tea.WindowSizeMsg{Width: 40, Height: 5 + exploreChrome})
	return m, root
}

func selectedName(m *exploreModel) string {
	if m.selected == nil {
		return "<nil>"
	}
	return m.selected.Name()
}

func TestExploreNavigation(t *testing.T) {
	m, _ := newTestExplorer(t)

	if got := selectedName(m); got != "a" {
		t.Fatalf("initial selection = %s, want a", got)
	}

	steps := []struct {
		key  tea.KeyMsg
		want string
	}{
		{tea.KeyMsg{Type: tea.KeyRight}, "b"},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("l")}, "c"},
		{tea.KeyMsg{Type: tea.KeyRight}, "c"}, // frame border
		{tea.KeyMsg{Type: tea.KeyLeft}, "b"},
		{tea.KeyMsg{Type: tea.KeyUp}, "b"},
		{tea.KeyMsg{Type: tea.KeyDown}, "b"},
	}
	for i, s := range steps {
		m.Update(s.key)
		if got := selectedName(m); got != s.want {
			t.Errorf("step %d (%s): selection = %s, want %s", i, s.key, got, s.want)
		}
	}
}

func TestExploreMouse(t *testing.T) {
	m, root := newTestExplorer(t)

	// x=20 is on the shared edge of a and b; the cell belongs to b.
	m.Update(tea.MouseMsg{X: 20, Y: 0, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if got := selectedName(m); got != "b" {
		t.Errorf("click at 20,0 selected %s, want b", got)
	}
	if hit := root.TreeAtPosition(tree.Point{X: 20, Y: 0}); hit.Name() != "a" {
		t.Errorf("TreeAtPosition(20,0) = %s, want a", hit.Name())
	}

	// Releases and other buttons are ignored.
	m.Update(tea.MouseMsg{X: 0, Y: 0, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	if got := selectedName(m); got != "b" {
		t.Errorf("release changed selection to %s", got)
	}
}

func TestExploreExpandCollapseDelete(t *testing.T) {
	m, root := newTestExplorer(t)
	m.handleKey("right")

	m.handleKey("e")
	if got := selectedName(m); got != "b1" {
		t.Fatalf("after expand selection = %s, want b1", got)
	}
	if n := len(root.Rectangles()); n != 4 {
		t.Errorf("visible tiles = %d, want 4", n)
	}

	m.handleKey("c")
	if got := selectedName(m); got != "b" {
		t.Fatalf("after collapse selection = %s, want b", got)
	}

	m.handleKey("d")
	if got := selectedName(m); got != "a" {
		t.Errorf("after delete selection = %s, want a", got)
	}
	if root.Size() != 70 || root.NumChildren() != 2 {
		t.Errorf("root size %d with %d children, want 70 with 2", root.Size(), root.NumChildren())
	}
	if want := (tree.Rect{W: 28, H: 5}); m.selected.Rect() != want {
		t.Errorf("a = %v, want %v", m.selected.Rect(), want)
	}
	if m.message != "deleted b" || m.edits != 1 {
		t.Errorf("message %q edits %d", m.message, m.edits)
	}

	m.handleKey("C")
	if got := selectedName(m); got != "root" {
		t.Errorf("after collapse all selection = %s, want root", got)
	}
	m.handleKey("d")
	if root.Size() != 70 || !strings.Contains(m.message, "root") {
		t.Errorf("deleting the root: size %d, message %q", root.Size(), m.message)
	}
	m.handleKey("E")
	if got := selectedName(m); got != "a" {
		t.Errorf("after expand all selection = %s, want a", got)
	}
}

func TestExploreMoveAndResize(t *testing.T) {
	m, root := newTestExplorer(t)
	a := root.Find("a")
	b := root.Find("b")

	m.handleKey("M")
	if !strings.Contains(m.message, "mark") {
		t.Errorf("move without mark: message %q", m.message)
	}

	m.handleKey("m")
	if m.marked != a {
		t.Fatalf("marked = %v, want a", m.marked)
	}

	m.handleKey("right")
	m.handleKey("m")
	if m.marked != a || m.message != "only leaves can be moved" {
		t.Errorf("marking an internal node: marked %v, message %q", m.marked.Name(), m.message)
	}

	m.handleKey("M")
	if a.Parent() != b || b.Size() != 80 || root.Size() != 100 {
		t.Fatalf("after move: parent %s, b %d, root %d", a.Parent().Name(), b.Size(), root.Size())
	}
	if m.marked != nil {
		t.Error("move should clear the mark")
	}
	if got := selectedName(m); got != "b" {
		t.Errorf("after move selection = %s, want b (a is hidden inside it)", got)
	}

	m.handleKey("right")
	m.handleKey("+")
	if c := root.Find("c"); c.Size() != 21 || root.Size() != 101 {
		t.Errorf("after grow: c %d, root %d", c.Size(), root.Size())
	}
	m.handleKey("-")
	if c := root.Find("c"); c.Size() != 20 {
		t.Errorf("after shrink: c %d, want 20", c.Size())
	}
}

func TestExploreView(t *testing.T) {
	m, _ := newTestExplorer(t)
	m.handleKey("right")

	view := ansi.Strip(m.View())
	lines := strings.Split(view, "\n")
	if len(lines) != 5+exploreChrome {
		t.Fatalf("view has %d lines, want %d", len(lines), 5+exploreChrome)
	}
	if !strings.Contains(lines[5], "root/b (2 items, 30.00B)") {
		t.Errorf("status line = %q", lines[5])
	}
	if !strings.Contains(lines[6], "q quit") {
		t.Errorf("help line = %q", lines[6])
	}

	if cmd := m.handleKey("q"); cmd == nil {
		t.Error("q should quit")
	}
}

func TestExploreEmptyTree(t *testing.T) {
	m := newExploreModel(tree.Empty(), tree.PlainLabeler{})
	if m.View() != "loading..." {
		t.Errorf("view before the first size message = %q", m.View())
	}
	m.Update(tea.WindowSizeMsg{Width: 20, Height: 6})
	for _, k := range []string{"right", "e", "d", "m", "M", "+"} {
		m.handleKey(k)
	}
	if m.selected != nil {
		t.Errorf("selection on an empty tree = %v", m.selected.Name())
	}
	if !strings.Contains(ansi.Strip(m.View()), "empty tree") {
		t.Error("empty tree should say so")
	}
}
