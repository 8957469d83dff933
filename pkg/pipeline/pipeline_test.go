package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/treemap/pkg/cache"
	errs "github.com/matzehuels/treemap/pkg/errors"
	"github.com/matzehuels/treemap/pkg/snapshot"
	"github.com/matzehuels/treemap/pkg/storage"
	"github.com/matzehuels/treemap/pkg/tree"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"json", false},
		{"dot", false},
		{"graph", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !errs.Is(err, errs.ErrCodeInvalidInput) {
			t.Errorf("ValidateFormat(%q) code = %s", tt.format, errs.GetCode(err))
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "dot"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestValidateStyle(t *testing.T) {
	tests := []struct {
		style   string
		wantErr bool
	}{
		{"flat", false},
		{"cushion", false},
		{"handdrawn", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateStyle(tt.style)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateStyle(%q) error = %v, wantErr %v", tt.style, err, tt.wantErr)
		}
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	opts := Options{Path: "."}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}
	if opts.Width != DefaultWidth || opts.Height != DefaultHeight {
		t.Errorf("frame = %dx%d", opts.Width, opts.Height)
	}
	if opts.Seed != DefaultSeed || opts.Style != DefaultStyle {
		t.Errorf("seed/style = %d/%s", opts.Seed, opts.Style)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatSVG {
		t.Errorf("formats = %v", opts.Formats)
	}
	if opts.Logger == nil {
		t.Error("logger should default to a discard logger")
	}

	bad := []struct {
		name string
		opts Options
		code errs.Code
	}{
		{"no path", Options{}, errs.ErrCodeInvalidPath},
		{"bad store key", Options{Stored: "../x"}, errs.ErrCodeInvalidInput},
		{"negative depth", Options{Path: ".", MaxDepth: -1}, errs.ErrCodeInvalidInput},
		{"negative width", Options{Path: ".", Width: -5}, errs.ErrCodeInvalidInput},
		{"bad expand", Options{Path: ".", Expand: -2}, errs.ErrCodeInvalidInput},
		{"bad format", Options{Path: ".", Formats: []string{"gif"}}, errs.ErrCodeInvalidInput},
		{"bad style", Options{Path: ".", Style: "neon"}, errs.ErrCodeInvalidInput},
	}
	for _, tt := range bad {
		t.Run(tt.name, func(t *testing.T) {
			opts := tt.opts
			err := opts.ValidateAndSetDefaults()
			if !errs.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}

// writeTree creates a small directory:
//
//	root/a.txt      10 bytes
//	root/b.txt      30 bytes
//	root/sub/c.txt  60 bytes
func writeTree(t *testing.T) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "root")
	files := map[string]int{"a.txt": 10, "b.txt": 30, "sub/c.txt": 60}
	for name, size := range files {
		p := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, bytes.Repeat([]byte("x"), size), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestOpenSource(t *testing.T) {
	dir := writeTree(t)
	tmp := t.TempDir()

	manifestTOML := filepath.Join(tmp, "tree.toml")
	os.WriteFile(manifestTOML, []byte("name = \"x\"\nsize = 4\n"), 0o644)
	manifestJSON := filepath.Join(tmp, "tree.json")
	os.WriteFile(manifestJSON, []byte(`{"name": "x", "size": 4}`), 0o644)

	leaf, _ := tree.NewLeaf("x", 4)
	snapData, err := snapshot.MarshalJSON(snapshot.New(leaf, "manifest", "tree.toml"))
	if err != nil {
		t.Fatal(err)
	}
	snapJSON := filepath.Join(tmp, "snap.json")
	os.WriteFile(snapJSON, snapData, 0o644)

	tests := []struct {
		path string
		kind string
	}{
		{dir, "fs"},
		{filepath.Join(dir, "a.txt"), "fs"},
		{manifestTOML, "manifest"},
		{manifestJSON, "manifest"},
		{snapJSON, "snapshot"},
	}
	for _, tt := range tests {
		src, err := OpenSource(tt.path)
		if err != nil {
			t.Errorf("OpenSource(%s): %v", tt.path, err)
			continue
		}
		if src.Kind() != tt.kind {
			t.Errorf("OpenSource(%s).Kind() = %s, want %s", filepath.Base(tt.path), src.Kind(), tt.kind)
		}
	}

	if _, err := OpenSource(filepath.Join(tmp, "missing")); !errs.Is(err, errs.ErrCodeInvalidPath) {
		t.Errorf("missing path error = %v", err)
	}
}

func TestApplyExpansion(t *testing.T) {
	build := func() *tree.Node {
		c, _ := tree.NewLeaf("c", 1)
		sub, _ := tree.NewInternal("sub", []*tree.Node{c})
		a, _ := tree.NewLeaf("a", 1)
		root, _ := tree.NewInternal("root", []*tree.Node{a, sub})
		return root
	}

	tests := []struct {
		depth    int
		expanded []string
	}{
		{0, nil},
		{1, []string{"root"}},
		{2, []string{"root", "sub"}},
		{ExpandAll, []string{"root", "sub"}},
	}
	for _, tt := range tests {
		root := build()
		ApplyExpansion(root, tt.depth)
		var got []string
		root.Walk(func(n *tree.Node) bool {
			if n.Expanded() {
				got = append(got, n.Name())
			}
			return true
		})
		if strings.Join(got, ",") != strings.Join(tt.expanded, ",") {
			t.Errorf("ApplyExpansion(%d) expanded %v, want %v", tt.depth, got, tt.expanded)
		}
	}
}

func TestExecute(t *testing.T) {
	dir := writeTree(t)
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(fc, nil, nil)
	defer r.Close()

	opts := Options{
		Path:    dir,
		Width:   100,
		Height:  50,
		Formats: []string{FormatSVG, FormatJSON, FormatDOT},
	}
	res, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if res.Kind != "fs" || res.Location != dir {
		t.Errorf("Kind/Location = %s/%s", res.Kind, res.Location)
	}
	if res.Stats.NodeCount != 5 {
		t.Errorf("NodeCount = %d, want 5", res.Stats.NodeCount)
	}
	if res.Stats.TileCount != 3 {
		t.Errorf("TileCount = %d, want 3 (a.txt, b.txt, sub)", res.Stats.TileCount)
	}
	if res.Tree.Size() != 100 || res.Tree.Rect() != (tree.Rect{W: 100, H: 50}) {
		t.Errorf("root = %d %v", res.Tree.Size(), res.Tree.Rect())
	}
	if !bytes.HasPrefix(res.Artifacts[FormatSVG], []byte("<svg")) {
		t.Errorf("svg artifact = %.40q", res.Artifacts[FormatSVG])
	}
	if !bytes.Contains(res.Artifacts[FormatJSON], []byte(`"name": "sub"`)) {
		t.Errorf("json artifact lacks sub tile:\n%s", res.Artifacts[FormatJSON])
	}
	if !bytes.HasPrefix(res.Artifacts[FormatDOT], []byte("digraph G {")) {
		t.Errorf("dot artifact = %.40q", res.Artifacts[FormatDOT])
	}
	if res.CacheInfo.LoadHit || res.CacheInfo.RenderHit {
		t.Errorf("first run CacheInfo = %+v", res.CacheInfo)
	}

	again, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("second Execute: %v", err)
	}
	if !again.CacheInfo.LoadHit || !again.CacheInfo.RenderHit {
		t.Errorf("second run CacheInfo = %+v", again.CacheInfo)
	}
	if !bytes.Equal(again.Artifacts[FormatSVG], res.Artifacts[FormatSVG]) {
		t.Error("cached svg differs from the rendered one")
	}

	// Cached trees keep their colours.
	want := res.Tree.Rectangles()
	for i, tile := range again.Tree.Rectangles() {
		if tile.Rect != want[i].Rect || tile.Colour != want[i].Colour || tile.Node.Name() != want[i].Node.Name() {
			t.Errorf("tile %d = %v %s, want %v %s", i, tile.Rect, tile.Node.Name(), want[i].Rect, want[i].Node.Name())
		}
	}

	opts.Refresh = true
	fresh, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("refresh Execute: %v", err)
	}
	if fresh.CacheInfo.LoadHit {
		t.Error("Refresh should bypass the scan cache")
	}
}

func TestExecuteExpandAll(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), Options{
		Path:    writeTree(t),
		Width:   100,
		Height:  50,
		Expand:  ExpandAll,
		Formats: []string{FormatJSON},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Stats.TileCount != 3 {
		t.Errorf("TileCount = %d, want 3 (a.txt, b.txt, c.txt)", res.Stats.TileCount)
	}
	if got := res.Tree.Find("sub", "c.txt"); got == nil || got.Rect().Empty() {
		t.Errorf("c.txt should be visible, got %v", got)
	}
}

func TestLoadStored(t *testing.T) {
	store, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	r := NewRunner(nil, nil, nil)
	ctx := context.Background()

	if _, err := r.Load(ctx, Options{Stored: "home"}); !errs.Is(err, errs.ErrCodeUnsupported) {
		t.Errorf("Load without store error = %v", err)
	}

	r.Store = store
	loaded, err := r.Load(ctx, Options{Path: writeTree(t)})
	if err != nil {
		t.Fatal(err)
	}
	loaded.Root.Expand()
	if err := store.Save(ctx, "home", loaded.Snapshot()); err != nil {
		t.Fatal(err)
	}

	got, err := r.Load(ctx, Options{Stored: "home"})
	if err != nil {
		t.Fatalf("Load stored: %v", err)
	}
	if got.Kind != "fs" || got.Location != loaded.Location {
		t.Errorf("Kind/Location = %s/%s", got.Kind, got.Location)
	}
	if !got.Root.Expanded() || got.Root.Size() != 100 {
		t.Errorf("restored root expanded=%v size=%d", got.Root.Expanded(), got.Root.Size())
	}

	if _, err := r.Load(ctx, Options{Stored: "nope"}); !errs.Is(err, errs.ErrCodeNotFound) {
		t.Errorf("Load missing error = %v", err)
	}
}
