package cli

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/matzehuels/treemap/pkg/pipeline"
	"github.com/matzehuels/treemap/pkg/snapshot"
	"github.com/matzehuels/treemap/pkg/tree"
)

// scanOpts holds the flags of the scan command.
type scanOpts struct {
	output  string // snapshot file to write
	save    string // store name to save under
	top     int    // largest children to list
	noCache bool
}

// scanCommand creates the scan command.
func (c *CLI) scanCommand() *cobra.Command {
	var so scanOpts
	opts := c.Config.pipelineOptions()

	cmd := &cobra.Command{
		Use:   "scan [path]",
		Short: "Build a tree from a directory or manifest and summarize it",
		Long: `Build a tree from a directory, a file, a TOML/JSON manifest or a snapshot,
and print its size and largest children.

Scanned trees are cached; use --refresh to rescan. Use -o to write a
snapshot file, or --save to keep the tree in the snapshot store.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Path = args[0]
			return c.runScan(cmd.Context(), opts, so)
		},
	}

	cmd.Flags().StringVarP(&so.output, "output", "o", "", "write a snapshot JSON file")
	cmd.Flags().StringVar(&so.save, "save", "", "save a snapshot to the store under this name")
	cmd.Flags().IntVar(&so.top, "top", 5, "number of largest children to list")
	cmd.Flags().BoolVar(&so.noCache, "no-cache", false, "disable caching")
	addLoadFlags(cmd, &opts)

	return cmd
}

// addLoadFlags registers the flags shared by every command that loads a tree.
func addLoadFlags(cmd *cobra.Command, opts *pipeline.Options) {
	cmd.Flags().IntVar(&opts.MaxDepth, "max-depth", 0, "summarize folders below this depth (default 64)")
	cmd.Flags().IntVar(&opts.MaxNodes, "max-nodes", 0, "maximum number of nodes (default 500000)")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", opts.Seed, "colour seed")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "ignore cached scans")
	cmd.Flags().StringVar(&opts.Stored, "stored", "", "load a stored snapshot instead of a path")
}

func (c *CLI) runScan(ctx context.Context, opts pipeline.Options, so scanOpts) error {
	runner, err := c.newRunner(ctx, so.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	needStore := opts.Stored != "" || so.save != ""
	if needStore {
		store, err := c.openStore(ctx)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		runner.Store = store
	}

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Scanning %s...", describeInput(opts)))
	spinner.Start()

	loaded, hit, err := runner.LoadWithCacheInfo(ctx, opts)
	if err != nil {
		spinner.StopWithError("Scan failed")
		return fmt.Errorf("scan: %w", err)
	}
	spinner.Stop()
	prog.done("scanned", "kind", loaded.Kind, "nodes", loaded.Root.Len())

	printSummary(loaded, so.top)
	printStats(loaded.Root.Len(), 0, hit)

	snap := loaded.Snapshot()
	if so.output != "" {
		if err := writeSnapshot(so.output, snap); err != nil {
			return err
		}
		printFile(so.output)
	}
	if so.save != "" {
		if err := runner.Store.Save(ctx, so.save, snap); err != nil {
			return fmt.Errorf("save snapshot: %w", err)
		}
		printSuccess("Saved snapshot %s", StyleHighlight.Render(so.save))
	}

	if so.output == "" && so.save == "" {
		printNewline()
		printNextStep("Explore it", fmt.Sprintf("%s explore %s", appName, describeInput(opts)))
	}
	return nil
}

func describeInput(opts pipeline.Options) string {
	if opts.Stored != "" {
		return "--stored " + opts.Stored
	}
	return opts.Path
}

// printSummary prints the root and its largest children.
func printSummary(l *pipeline.Loaded, top int) {
	root := l.Root
	if root.IsEmpty() {
		printInfo("Tree is empty")
		return
	}
	printKeyValue("Root", root.Label(l.Labeler))
	printKeyValue("Source", l.Kind+" "+l.Location)
	printKeyValue("Size", tree.FormatSize(root.Size()))
	printKeyValue("Leaves", fmt.Sprint(len(root.Leaves())))

	for i, c := range largest(root, top) {
		share := 0.0
		if root.Size() > 0 {
			share = 100 * float64(c.Size()) / float64(root.Size())
		}
		key := ""
		if i == 0 {
			key = "Largest"
		}
		printKeyValue(key, fmt.Sprintf("%s %s", c.Label(l.Labeler), StyleNumber.Render(fmt.Sprintf("%.1f%%", share))))
	}
}

// largest returns up to n children of root, biggest first. Ties keep child
// order.
func largest(root *tree.Node, n int) []*tree.Node {
	children := root.Children()
	slices.SortStableFunc(children, func(a, b *tree.Node) int {
		return cmp.Compare(b.Size(), a.Size())
	})
	if n >= 0 && len(children) > n {
		children = children[:n]
	}
	return children
}

func writeSnapshot(path string, s *snapshot.Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := snapshot.WriteJSON(f, s); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
