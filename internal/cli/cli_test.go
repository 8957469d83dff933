package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"

	"github.com/matzehuels/treemap/pkg/cache"
	"github.com/matzehuels/treemap/pkg/pipeline"
	"github.com/matzehuels/treemap/pkg/tree"
)

func newTestCLI(t *testing.T) *CLI {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	return New(&bytes.Buffer{}, LogInfo)
}

func TestRootCommand(t *testing.T) {
	root := newTestCLI(t).RootCommand()

	var got []string
	for _, cmd := range root.Commands() {
		got = append(got, cmd.Name())
	}
	for _, want := range []string{"scan", "render", "explore", "serve", "cache", "store", "completion"} {
		found := false
		for _, name := range got {
			if name == want {
				found = true
			}
		}
		if !found {
			t.Errorf("missing command %q in %v", want, got)
		}
	}
}

func TestCompleteFormats(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{"dot", "graph", "json", "pdf", "png", "svg"}},
		{"svg,", []string{"svg,dot", "svg,graph", "svg,json", "svg,pdf", "svg,png"}},
		{"svg,png,j", []string{"svg,png,dot", "svg,png,graph", "svg,png,json", "svg,png,pdf"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, dir := completeFormats(nil, nil, tt.in)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("completeFormats(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}
			if dir&cobra.ShellCompDirectiveNoSpace == 0 {
				t.Error("format completion should not append a space")
			}
		})
	}
}

func TestRenderFlagCompletion(t *testing.T) {
	root := newTestCLI(t).RootCommand()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs([]string{cobra.ShellCompRequestCmd, "render", "--style", ""})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("complete: %v", err)
	}
	for _, want := range []string{"flat", "cushion"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("style completion %q missing %q", buf.String(), want)
		}
	}
}

func TestCompletion(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			root := newTestCLI(t).RootCommand()
			var buf bytes.Buffer
			root.SetOut(&buf)
			root.SetArgs([]string{"completion", shell})
			if err := root.ExecuteContext(context.Background()); err != nil {
				t.Fatalf("completion %s: %v", shell, err)
			}
			if !strings.Contains(buf.String(), appName) {
				t.Errorf("completion %s output does not mention %q", shell, appName)
			}
		})
	}
}

func TestParseFormats(t *testing.T) {
	if diff := cmp.Diff([]string{"svg"}, parseFormats("")); diff != "" {
		t.Errorf("empty (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"svg", "json", "dot"}, parseFormats("svg,json,dot")); diff != "" {
		t.Errorf("list (-want +got):\n%s", diff)
	}
}

func TestParseExpand(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"all", pipeline.ExpandAll, false},
		{"none", 0, false},
		{"", 0, false},
		{"3", 3, false},
		{"-1", 0, true},
		{"deep", 0, true},
	}
	for _, tt := range tests {
		got, err := parseExpand(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseExpand(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseExpand(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestOutputBase(t *testing.T) {
	tests := []struct {
		name   string
		output string
		opts   pipeline.Options
		want   string
	}{
		{"output with format ext", "out/map.svg", pipeline.Options{Path: "x"}, "out/map"},
		{"output without ext", "out/map", pipeline.Options{Path: "x"}, "out/map"},
		{"output with other ext", "out/map.v2", pipeline.Options{Path: "x"}, "out/map.v2"},
		{"stored", "", pipeline.Options{Stored: "downloads"}, "downloads"},
		{"directory", "", pipeline.Options{Path: "/home/me/Downloads/"}, "Downloads"},
		{"manifest", "", pipeline.Options{Path: "examples/project.toml"}, "project"},
		{"current dir", "", pipeline.Options{Path: "."}, "treemap"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := outputBase(tt.output, tt.opts); got != tt.want {
				t.Errorf("outputBase(%q) = %q, want %q", tt.output, got, tt.want)
			}
		})
	}
}

func TestWriteArtifacts(t *testing.T) {
	dir := t.TempDir()
	artifacts := map[string][]byte{"svg": []byte("<svg/>"), "json": []byte("{}")}

	base := filepath.Join(dir, "map")
	if err := writeArtifacts(artifacts, []string{"svg", "json"}, base, ""); err != nil {
		t.Fatalf("writeArtifacts: %v", err)
	}
	for format, want := range artifacts {
		got, err := os.ReadFile(base + "." + format)
		if err != nil {
			t.Fatalf("read %s: %v", format, err)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("%s = %q, want %q", format, got, want)
		}
	}

	// A single format keeps the requested file name.
	output := filepath.Join(dir, "exact.name")
	if err := writeArtifacts(artifacts, []string{"svg"}, base, output); err != nil {
		t.Fatalf("writeArtifacts single: %v", err)
	}
	if _, err := os.Stat(output); err != nil {
		t.Errorf("single output not written: %v", err)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
		return p
	}

	t.Run("missing", func(t *testing.T) {
		cfg, err := loadConfig(filepath.Join(dir, "nope.toml"))
		if err != nil {
			t.Fatalf("loadConfig: %v", err)
		}
		if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
			t.Errorf("defaults (-want +got):\n%s", diff)
		}
	})

	t.Run("valid", func(t *testing.T) {
		cfg, err := loadConfig(write("valid.toml", `
width = 1600
height = 900
expand = "all"
cache = "none"
cache_ttl = "90m"
store = "/srv/snapshots"
`))
		if err != nil {
			t.Fatalf("loadConfig: %v", err)
		}
		want := DefaultConfig()
		want.Width, want.Height = 1600, 900
		want.Expand = "all"
		want.Cache = cacheNone
		want.CacheTTL = duration{90 * time.Minute}
		want.Store = "/srv/snapshots"
		if diff := cmp.Diff(want, cfg); diff != "" {
			t.Errorf("config (-want +got):\n%s", diff)
		}

		opts := cfg.pipelineOptions()
		if opts.Expand != pipeline.ExpandAll || opts.CacheTTL != 90*time.Minute || opts.Width != 1600 {
			t.Errorf("pipelineOptions() = %+v", opts)
		}
	})

	bad := map[string]string{
		"unknown key": `colour = "red"`,
		"bad syntax":  `width = `,
		"bad size":    `width = -3`,
		"bad expand":  `expand = "deep"`,
		"bad ttl":     `cache_ttl = "soon"`,
	}
	for name, body := range bad {
		t.Run(name, func(t *testing.T) {
			cfg, err := loadConfig(write(strings.ReplaceAll(name, " ", "_")+".toml", body))
			if err == nil {
				t.Fatal("expected an error")
			}
			if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
				t.Errorf("fallback (-want +got):\n%s", diff)
			}
		})
	}
}

func TestOpenCache(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	ctx := context.Background()

	c, err := openCache(ctx, cacheNone)
	if err != nil {
		t.Fatalf("openCache(none): %v", err)
	}
	if _, ok := c.(*cache.NullCache); !ok {
		t.Errorf("openCache(none) = %T", c)
	}

	c, err = openCache(ctx, cacheFile)
	if err != nil {
		t.Fatalf("openCache(file): %v", err)
	}
	defer c.Close()
	if _, ok := c.(*cache.FileCache); !ok {
		t.Errorf("openCache(file) = %T", c)
	}

	if _, err := openCache(ctx, "memcached://localhost"); err == nil {
		t.Error("expected an error for an unknown backend")
	}
}

func TestLargest(t *testing.T) {
	leaf := func(name string, size int64) *tree.Node {
		n, err := tree.NewLeaf(name, size)
		if err != nil {
			t.Fatal(err)
		}
		return n
	}
	root, err := tree.NewInternal("root", []*tree.Node{
		leaf("a", 10), leaf("b", 30), leaf("c", 20), leaf("d", 30),
	})
	if err != nil {
		t.Fatal(err)
	}

	var names []string
	for _, n := range largest(root, 3) {
		names = append(names, n.Name())
	}
	if diff := cmp.Diff([]string{"b", "d", "c"}, names); diff != "" {
		t.Errorf("largest (-want +got):\n%s", diff)
	}
	if got := len(largest(root, 10)); got != 4 {
		t.Errorf("largest(10) returned %d nodes", got)
	}
}
