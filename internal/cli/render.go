package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/matzehuels/treemap/pkg/pipeline"
	termrender "github.com/matzehuels/treemap/pkg/render/term"
)

// renderOpts holds the render flags that are not pipeline options.
type renderOpts struct {
	output  string // output file (single format) or base path (multiple)
	formats string // comma-separated formats
	expand  string // all, none or a depth
	inline  bool   // print a terminal treemap instead of writing files
	noCache bool
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	opts := c.Config.pipelineOptions()
	ro := renderOpts{expand: c.Config.Expand}

	cmd := &cobra.Command{
		Use:   "render [path]",
		Short: "Lay a tree out and write SVG, PNG, PDF, JSON or DOT files",
		Long: `Lay a tree out in a --width x --height frame and render it.

--expand opens that many levels below the root ("all" opens every folder).
Snapshots keep their saved expansion with --expand none.

Formats: svg (default), png, pdf (need rsvg-convert), json (tile list),
dot (node-link diagram of the tree as Graphviz source) and graph (the same
diagram laid out by Graphviz, written as .graph.svg). Use --inline to draw
the treemap in the terminal instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Path = args[0]
			expand, err := parseExpand(ro.expand)
			if err != nil {
				return err
			}
			opts.Expand = expand
			opts.Formats = parseFormats(ro.formats)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			if err := pipeline.ValidateStyle(opts.Style); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), opts, ro)
		},
	}

	cmd.Flags().StringVarP(&ro.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&ro.formats, "format", "f", "", "output format(s): svg (default), png, pdf, json, dot, graph (comma-separated)")
	cmd.Flags().StringVar(&ro.expand, "expand", ro.expand, "levels to open: all, none or a depth")
	cmd.Flags().BoolVar(&ro.inline, "inline", false, "draw the treemap in the terminal")
	cmd.Flags().BoolVar(&ro.noCache, "no-cache", false, "disable caching")
	cmd.Flags().IntVar(&opts.Width, "width", opts.Width, "frame width")
	cmd.Flags().IntVar(&opts.Height, "height", opts.Height, "frame height")
	cmd.Flags().StringVar(&opts.Style, "style", opts.Style, "tile style: flat, cushion")
	cmd.Flags().BoolVar(&opts.Text, "text", false, "label tiles that have room")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "show sizes in dot and graph output")
	addLoadFlags(cmd, &opts)
	registerRenderCompletions(cmd)

	return cmd
}

func (c *CLI) runRender(ctx context.Context, opts pipeline.Options, ro renderOpts) error {
	runner, err := c.newRunner(ctx, ro.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	if opts.Stored != "" {
		store, err := c.openStore(ctx)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		runner.Store = store
	}

	if ro.inline {
		return c.renderInline(ctx, runner, opts)
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", describeInput(opts)))
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	printSuccess("Rendered %s", result.Tree.Label(result.Labeler))
	printStats(result.Stats.NodeCount, result.Stats.TileCount, result.CacheInfo.LoadHit)

	return writeArtifacts(result.Artifacts, opts.Formats, outputBase(ro.output, opts), ro.output)
}

// renderInline draws the treemap sized to the terminal.
func (c *CLI) renderInline(ctx context.Context, runner *pipeline.Runner, opts pipeline.Options) error {
	w, h, err := term.GetSize(os.Stdout.Fd())
	if err != nil || w <= 0 || h <= 1 {
		w, h = 80, 24
	}
	opts.Width, opts.Height = w, h-1

	loaded, err := runner.Load(ctx, opts)
	if err != nil {
		return err
	}
	if _, err := runner.Layout(ctx, loaded.Root, opts); err != nil {
		return err
	}
	fmt.Println(termrender.Render(loaded.Root, termrender.Options{Labels: true}))
	return nil
}

// outputBase derives the base output path. Without -o, files are named
// after the input and written to the working directory.
func outputBase(output string, opts pipeline.Options) string {
	if output != "" {
		ext := filepath.Ext(output)
		if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
			return strings.TrimSuffix(output, ext)
		}
		return output
	}
	if opts.Stored != "" {
		return opts.Stored
	}
	name := filepath.Base(filepath.Clean(opts.Path))
	if name == "." || name == string(filepath.Separator) {
		name = "treemap"
	}
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// writeArtifacts writes one file per format. A single format goes to output
// verbatim when one was given.
func writeArtifacts(artifacts map[string][]byte, formats []string, base, output string) error {
	for _, format := range formats {
		path := base + "." + pipeline.Extension(format)
		if len(formats) == 1 && output != "" {
			path = output
		}
		if err := os.WriteFile(path, artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	return nil
}
