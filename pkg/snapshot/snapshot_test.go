package snapshot

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	errs "github.com/matzehuels/treemap/pkg/errors"
	"github.com/matzehuels/treemap/pkg/source"
	"github.com/matzehuels/treemap/pkg/source/filesystem"
	"github.com/matzehuels/treemap/pkg/tree"
)

func sample(t *testing.T) *tree.Node {
	t.Helper()
	cs := tree.WithColours(tree.NewSeededColours(11))
	mk := func(n *tree.Node, err error) *tree.Node {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
		return n
	}
	a1 := mk(tree.NewLeaf("a1", 10, cs))
	a2 := mk(tree.NewLeaf("a2", 30, cs))
	a := mk(tree.NewInternal("a", []*tree.Node{a1, a2}, cs))
	b := mk(tree.NewLeaf("b", 40, cs, tree.WithTruncated(true)))
	empty := mk(tree.NewLeaf("empty", 0, cs))
	root := mk(tree.NewInternal("root", []*tree.Node{a, b, empty}, cs))
	root.Expand()
	a.Expand()
	return root
}

// describe flattens the parts of a tree a snapshot must preserve.
func describe(root *tree.Node) []string {
	var out []string
	root.Walk(func(n *tree.Node) bool {
		s := n.Label(tree.PlainLabeler{}) + " " + n.Colour().Hex()
		if n.Expanded() {
			s += " expanded"
		}
		if n.Truncated() {
			s += " truncated"
		}
		out = append(out, s)
		return true
	})
	return out
}

func TestRoundTrip(t *testing.T) {
	root := sample(t)
	want := describe(root)

	codecs := []struct {
		name   string
		encode func(*Snapshot) ([]byte, error)
		decode func([]byte) (*Snapshot, error)
	}{
		{"json", MarshalJSON, UnmarshalJSON},
		{"bson", MarshalBSON, UnmarshalBSON},
		{"indented json",
			func(s *Snapshot) ([]byte, error) {
				var buf bytes.Buffer
				err := WriteJSON(&buf, s)
				return buf.Bytes(), err
			},
			func(data []byte) (*Snapshot, error) { return ReadJSON(bytes.NewReader(data)) },
		},
	}

	for _, c := range codecs {
		t.Run(c.name, func(t *testing.T) {
			data, err := c.encode(New(root, "manifest", "tree.toml"))
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			snap, err := c.decode(data)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if snap.Kind != "manifest" || snap.Location != "tree.toml" {
				t.Errorf("Kind/Location = %s/%s", snap.Kind, snap.Location)
			}

			got, err := snap.Tree()
			if err != nil {
				t.Fatalf("Tree: %v", err)
			}
			if diff := cmp.Diff(want, describe(got)); diff != "" {
				t.Errorf("restored tree mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRestoredTreeLaysOutIdentically(t *testing.T) {
	root := sample(t)
	frame := tree.Rect{W: 120, H: 80}
	root.UpdateRectangles(frame)

	restored, err := New(root, "", "").Tree()
	if err != nil {
		t.Fatal(err)
	}
	restored.UpdateRectangles(frame)

	rects := func(n *tree.Node) []tree.Rect {
		var out []tree.Rect
		for _, tile := range n.Rectangles() {
			out = append(out, tile.Rect)
		}
		return out
	}
	if diff := cmp.Diff(rects(root), rects(restored)); diff != "" {
		t.Errorf("tiles differ (-original +restored):\n%s", diff)
	}
}

func TestEmptyTree(t *testing.T) {
	got, err := New(tree.Empty(), "", "").Tree()
	if err != nil {
		t.Fatal(err)
	}
	if !got.IsEmpty() {
		t.Error("restored tree should be the empty tree")
	}
}

func TestTreeRejectsBadSnapshots(t *testing.T) {
	tests := []struct {
		name string
		snap Snapshot
		code errs.Code
	}{
		{
			name: "version",
			snap: Snapshot{Version: 99, Root: Node{Name: "x", Colour: "#000000"}},
			code: errs.ErrCodeUnsupported,
		},
		{
			name: "colour",
			snap: Snapshot{Version: Version, Root: Node{Name: "x", Colour: "blue"}},
			code: errs.ErrCodeInvalidFormat,
		},
		{
			name: "negative size",
			snap: Snapshot{Version: Version, Root: Node{Name: "x", Size: -4, Colour: "#000000"}},
			code: errs.ErrCodeInvariant,
		},
		{
			name: "expanded under collapsed parent",
			snap: Snapshot{Version: Version, Root: Node{
				Name: "root", Colour: "#000000",
				Children: []Node{{
					Name: "a", Colour: "#000000", Expanded: true,
					Children: []Node{{Name: "a1", Size: 1, Colour: "#000000"}},
				}},
			}},
			code: errs.ErrCodeInvariant,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.snap.Tree()
			if !errs.Is(err, tt.code) {
				t.Errorf("Tree() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestDecodeGarbage(t *testing.T) {
	if _, err := UnmarshalJSON([]byte("{")); !errs.Is(err, errs.ErrCodeInvalidFormat) {
		t.Errorf("UnmarshalJSON error = %v", err)
	}
	if _, err := UnmarshalBSON([]byte{1, 2, 3}); !errs.Is(err, errs.ErrCodeInvalidFormat) {
		t.Errorf("UnmarshalBSON error = %v", err)
	}
}

func TestLabeler(t *testing.T) {
	if _, ok := (&Snapshot{Kind: "fs"}).Labeler().(filesystem.Labeler); !ok {
		t.Error("fs snapshots should use the filesystem labeler")
	}
	if _, ok := (&Snapshot{Kind: "manifest"}).Labeler().(tree.PlainLabeler); !ok {
		t.Error("manifest snapshots should use the plain labeler")
	}
}

func TestSource(t *testing.T) {
	root := sample(t)
	path := filepath.Join(t.TempDir(), "snap.json")

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := WriteJSON(f, New(root, "fs", "/home")); err != nil {
		t.Fatal(err)
	}
	f.Close()

	src, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	if src.Kind() != "snapshot" || src.Location() != path {
		t.Errorf("Kind/Location = %s/%s", src.Kind(), src.Location())
	}
	if _, ok := src.Labeler().(filesystem.Labeler); !ok {
		t.Error("labeler should follow the original source kind")
	}

	got, err := src.Build(context.Background(), source.Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if diff := cmp.Diff(describe(root), describe(got)); diff != "" {
		t.Errorf("restored tree mismatch (-want +got):\n%s", diff)
	}

	if _, err := OpenFile(filepath.Join(t.TempDir(), "missing.json")); !errs.Is(err, errs.ErrCodeInvalidPath) {
		t.Errorf("OpenFile(missing) error = %v", err)
	}
}
