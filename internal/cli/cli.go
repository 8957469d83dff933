// Package cli implements the treemap command-line interface.
//
// # Commands
//
//   - scan: build a tree and print a summary, optionally saving a snapshot
//   - render: lay a tree out and write SVG, PNG, PDF, JSON or DOT files
//   - explore: browse and edit a tree in the terminal
//   - serve: expose trees over an HTTP API
//   - cache, store: manage the scan cache and saved snapshots
//
// All commands support --verbose (-v) for debug-level logging. Defaults for
// frame size, seed, cache and store come from an optional TOML config file;
// flags override it.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/treemap/pkg/buildinfo"
	"github.com/matzehuels/treemap/pkg/cache"
	errs "github.com/matzehuels/treemap/pkg/errors"
	"github.com/matzehuels/treemap/pkg/pipeline"
	"github.com/matzehuels/treemap/pkg/storage"
)

// appName is the application name used for directories and display.
const appName = "treemap"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config Config
}

// New creates a CLI with a timestamped logger and the user's config file.
// A broken config file is reported and replaced by defaults.
func New(w io.Writer, level log.Level) *CLI {
	c := &CLI{Logger: newLogger(w, level), Config: DefaultConfig()}
	path, err := configPath()
	if err != nil {
		return c
	}
	cfg, err := loadConfig(path)
	if err != nil {
		c.Logger.Warn("ignoring config file", "path", path, "error", err)
		return c
	}
	c.Config = cfg
	return c
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Treemap shows hierarchical sizes as nested rectangles",
		Long:         `Treemap scans directories or tree descriptions and draws them as slice-and-dice treemaps: as files, in the terminal, or over HTTP.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.scanCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.storeCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// newRunner creates a pipeline runner for CLI use. The snapshot store is
// opened lazily by the commands that need it.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	backend := c.Config.Cache
	if noCache {
		backend = cacheNone
	}
	ch, err := openCache(ctx, backend)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(ch, nil, c.Logger), nil
}

// openStore opens the configured snapshot store.
func (c *CLI) openStore(ctx context.Context) (storage.Store, error) {
	backend := c.Config.Store
	if backend == "" {
		dir, err := dataDir()
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidPath, err, "locate store directory")
		}
		backend = filepath.Join(dir, "snapshots")
	}
	return storage.Open(ctx, backend)
}

// Cache backend settings.
const (
	cacheFile = "file"
	cacheNone = "none"
)

// openCache returns the cache for a backend setting: "file" (or empty),
// "none", or a redis:// URL.
func openCache(ctx context.Context, backend string) (cache.Cache, error) {
	switch {
	case backend == cacheNone:
		return cache.NewNullCache(), nil
	case strings.HasPrefix(backend, "redis://"), strings.HasPrefix(backend, "rediss://"):
		return cache.NewRedisCache(ctx, backend)
	case backend == "" || backend == cacheFile:
		dir, err := cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	default:
		return nil, errs.New(errs.ErrCodeInvalidInput, "unknown cache backend %q (want file, none or redis://...)", backend)
	}
}

// cacheDir returns the cache directory using XDG standard (~/.cache/treemap/).
func cacheDir() (string, error) {
	return xdgDir("XDG_CACHE_HOME", ".cache")
}

// dataDir returns the data directory (~/.local/share/treemap/).
func dataDir() (string, error) {
	return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

// configPath returns the config file path (~/.config/treemap/config.toml).
func configPath() (string, error) {
	dir, err := xdgDir("XDG_CONFIG_HOME", ".config")
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

func xdgDir(env, fallback string) (string, error) {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, fallback, appName), nil
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	return strings.Split(s, ",")
}

// parseExpand parses the --expand flag: "all", "none" or a depth.
func parseExpand(s string) (int, error) {
	switch s {
	case "all":
		return pipeline.ExpandAll, nil
	case "none", "":
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, errs.New(errs.ErrCodeInvalidInput, "invalid --expand %q (want all, none or a depth)", s)
	}
	return n, nil
}
