package filesystem

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	errs "github.com/matzehuels/treemap/pkg/errors"
	"github.com/matzehuels/treemap/pkg/source"
	"github.com/matzehuels/treemap/pkg/tree"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"docs/a.txt":        {Data: make([]byte, 10)},
		"docs/b.txt":        {Data: make([]byte, 30)},
		"media/x.mp4":       {Data: make([]byte, 60)},
		"media/deep/y.webm": {Data: make([]byte, 5)},
		"empty":             {Mode: fs.ModeDir},
		"link":              {Mode: fs.ModeSymlink, Data: []byte("docs")},
	}
}

func childNames(n *tree.Node) []string {
	var out []string
	for _, c := range n.Children() {
		out = append(out, c.Name())
	}
	return out
}

func TestBuild(t *testing.T) {
	src := New(testFS(), ".", "home")

	root, err := src.Build(context.Background(), source.Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if root.Name() != "home" {
		t.Errorf("root Name() = %q, want home", root.Name())
	}
	if root.Size() != 105 {
		t.Errorf("root Size() = %d, want 105", root.Size())
	}
	if diff := cmp.Diff([]string{"docs", "empty", "media"}, childNames(root)); diff != "" {
		t.Errorf("children mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"deep", "x.mp4"}, childNames(root.Find("media"))); diff != "" {
		t.Errorf("media children mismatch (-want +got):\n%s", diff)
	}

	empty := root.Find("empty")
	if !empty.IsLeaf() || empty.Size() != 0 {
		t.Errorf("empty folder should be a size-0 leaf, got leaf=%v size=%d", empty.IsLeaf(), empty.Size())
	}
	if err := root.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestBuildIsStable(t *testing.T) {
	opts := source.Options{TreeOptions: []tree.Option{tree.WithColours(tree.NewSeededColours(3))}}
	a, err := New(testFS(), ".", "home").Build(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	opts.TreeOptions = []tree.Option{tree.WithColours(tree.NewSeededColours(3))}
	b, err := New(testFS(), ".", "home").Build(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}

	var pa, pb []string
	a.Walk(func(n *tree.Node) bool { pa = append(pa, n.Label(Labeler{})+n.Colour().Hex()); return true })
	b.Walk(func(n *tree.Node) bool { pb = append(pb, n.Label(Labeler{})+n.Colour().Hex()); return true })
	if diff := cmp.Diff(pa, pb); diff != "" {
		t.Errorf("two scans differ (-first +second):\n%s", diff)
	}
}

func TestBuildMaxDepth(t *testing.T) {
	root, err := New(testFS(), ".", "home").Build(context.Background(), source.Options{MaxDepth: 1})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	media := root.Find("media")
	if !media.IsLeaf() || media.Size() != 65 {
		t.Errorf("media should be summarized as a 65-byte leaf, got leaf=%v size=%d", media.IsLeaf(), media.Size())
	}
	if root.Size() != 105 {
		t.Errorf("root Size() = %d, want 105", root.Size())
	}
	if !media.Truncated() {
		t.Error("media should be marked truncated")
	}
	if got, want := (Labeler{}).Suffix(media), " (folder, 65.00B)"; got != want {
		t.Errorf("Suffix(media) = %q, want %q", got, want)
	}
	if docs := root.Find("docs"); docs.Truncated() {
		t.Error("docs was built in full and should not be truncated")
	}
}

func TestBuildMaxNodes(t *testing.T) {
	_, err := New(testFS(), ".", "home").Build(context.Background(), source.Options{MaxNodes: 3})
	if !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("Build() error = %v, want %s", err, errs.ErrCodeInvalidInput)
	}
}

func TestBuildCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(testFS(), ".", "home").Build(ctx, source.Options{})
	if err != context.Canceled {
		t.Errorf("Build() error = %v, want context.Canceled", err)
	}
}

func TestBuildSingleFile(t *testing.T) {
	root, err := New(testFS(), "docs/b.txt", "b.txt").Build(context.Background(), source.Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !root.IsLeaf() || root.Size() != 30 || root.Name() != "b.txt" {
		t.Errorf("got leaf=%v size=%d name=%q", root.IsLeaf(), root.Size(), root.Name())
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "sub", "f.bin"), make([]byte, 2048), 0o644); err != nil {
		t.Fatal(err)
	}

	src, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if src.Kind() != "fs" || src.Location() != dir {
		t.Errorf("Kind/Location = %s/%s", src.Kind(), src.Location())
	}

	root, err := src.Build(context.Background(), source.Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if root.Name() != filepath.Base(dir) {
		t.Errorf("root Name() = %q, want the base name %q", root.Name(), filepath.Base(dir))
	}

	f := root.Find("sub", "f.bin")
	if f == nil {
		t.Fatal("sub/f.bin missing")
	}
	want := filepath.Base(dir) + string(os.PathSeparator) + "sub" + string(os.PathSeparator) + "f.bin (file, 2.00kB)"
	if got := f.Label(src.Labeler()); got != want {
		t.Errorf("Label() = %q, want %q", got, want)
	}
	if got := root.Find("sub").Label(src.Labeler()); got != filepath.Base(dir)+string(os.PathSeparator)+"sub (folder, 1 items, 2.00kB)" {
		t.Errorf("folder Label() = %q", got)
	}
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope"))
	if !errs.Is(err, errs.ErrCodeInvalidPath) {
		t.Errorf("Open() error = %v, want %s", err, errs.ErrCodeInvalidPath)
	}
}
