package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/treemap/pkg/cache"
	"github.com/matzehuels/treemap/pkg/storage"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for its collaborators; it does not keep
// trees between calls. Multiple goroutines can use the same Runner as long
// as each works on its own tree.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Store  storage.Store // Optional; required for Options.Stored
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Load
	loadStart := time.Now()
	loaded, loadHit, err := r.LoadWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Tree = loaded.Root
	result.Kind = loaded.Kind
	result.Location = loaded.Location
	result.Labeler = loaded.Labeler
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.NodeCount = loaded.Root.Len()
	result.CacheInfo.LoadHit = loadHit

	r.Logger.Info("loaded tree",
		"kind", loaded.Kind,
		"nodes", result.Stats.NodeCount,
		"cached", loadHit,
		"duration", result.Stats.LoadTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	tiles, err := r.Layout(ctx, loaded.Root, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.TileCount = tiles

	r.Logger.Info("computed layout",
		"tiles", tiles,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, loaded, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Close releases resources held by the runner.
func (r *Runner) Close() error {
	if r.Store != nil {
		if err := r.Store.Close(context.Background()); err != nil {
			return err
		}
	}
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
