package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/matzehuels/treemap/pkg/cache"
	errs "github.com/matzehuels/treemap/pkg/errors"
	"github.com/matzehuels/treemap/pkg/observability"
	"github.com/matzehuels/treemap/pkg/snapshot"
	"github.com/matzehuels/treemap/pkg/source"
	"github.com/matzehuels/treemap/pkg/source/filesystem"
	"github.com/matzehuels/treemap/pkg/source/manifest"
	"github.com/matzehuels/treemap/pkg/tree"
)

// Loaded is a tree together with where it came from.
type Loaded struct {
	Root     *tree.Node
	Kind     string
	Location string
	Labeler  tree.Labeler
}

// Snapshot captures the loaded tree in its current state.
func (l *Loaded) Snapshot() *snapshot.Snapshot {
	return snapshot.New(l.Root, l.Kind, l.Location)
}

// OpenSource picks the source for a path:
//
//   - a directory, or any file without a recognized extension: the filesystem
//   - *.toml: a manifest
//   - *.json: a snapshot when the document carries a version, otherwise a
//     manifest
func OpenSource(path string) (source.Source, error) {
	if err := errs.ValidatePath(path); err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidPath, err, "stat %s", path)
	}
	if info.IsDir() {
		return filesystem.Open(path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return manifest.Open(path)
	case ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidPath, err, "read %s", path)
		}
		if s, err := snapshot.UnmarshalJSON(data); err == nil && s.Version != 0 {
			return snapshot.NewSource(s, path), nil
		}
		return manifest.Open(path)
	default:
		return filesystem.Open(path)
	}
}

// LoadWithCacheInfo builds the tree named by opts and reports whether it came
// from cache. Stored snapshots and snapshot files are never cached.
func (r *Runner) LoadWithCacheInfo(ctx context.Context, opts Options) (*Loaded, bool, error) {
	if err := opts.ValidateForLoad(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	if opts.Stored != "" {
		return r.loadStored(ctx, opts)
	}

	src, err := OpenSource(opts.Path)
	if err != nil {
		return nil, false, err
	}

	hooks := observability.Pipeline()
	hooks.OnScanStart(ctx, src.Kind(), src.Location())
	start := time.Now()

	loaded, hit, err := r.build(ctx, src, opts)

	count := 0
	if loaded != nil {
		count = loaded.Root.Len()
	}
	hooks.OnScanComplete(ctx, src.Kind(), src.Location(), count, time.Since(start), err)
	return loaded, hit, err
}

// Load is a convenience wrapper that calls LoadWithCacheInfo and discards the
// cache hit info.
func (r *Runner) Load(ctx context.Context, opts Options) (*Loaded, error) {
	l, _, err := r.LoadWithCacheInfo(ctx, opts)
	return l, err
}

func (r *Runner) build(ctx context.Context, src source.Source, opts Options) (*Loaded, bool, error) {
	loaded := &Loaded{Kind: src.Kind(), Location: src.Location(), Labeler: src.Labeler()}

	cacheable := src.Kind() != "snapshot"
	var cacheKey string
	if cacheable {
		cacheKey = r.Keyer.ScanKey(src.Kind(), src.Location(), cache.ScanKeyOpts{
			MaxDepth: opts.MaxDepth,
			MaxNodes: opts.MaxNodes,
			Seed:     opts.Seed,
			Stamp:    stamp(src.Location()),
		})
	}

	if cacheable && !opts.Refresh {
		if root, ok := r.cachedTree(ctx, cacheKey); ok {
			loaded.Root = root
			opts.Logger.Debug("tree from cache", "kind", loaded.Kind, "location", loaded.Location)
			return loaded, true, nil
		}
	}

	root, err := src.Build(ctx, opts.SourceOptions())
	if err != nil {
		return nil, false, err
	}
	loaded.Root = root

	if cacheable {
		if data, err := snapshot.MarshalJSON(loaded.Snapshot()); err == nil {
			if err := r.Cache.Set(ctx, cacheKey, data, opts.CacheTTL); err != nil {
				opts.Logger.Warn("cache write failed", "error", err)
			} else {
				observability.Cache().OnCacheSet(ctx, cacheKey, len(data))
			}
		}
	}
	return loaded, false, nil
}

// cachedTree returns the tree stored under key. Undecodable entries count as
// misses and are rebuilt.
func (r *Runner) cachedTree(ctx context.Context, key string) (*tree.Node, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, key)
		return nil, false
	}
	s, err := snapshot.UnmarshalJSON(data)
	if err != nil {
		observability.Cache().OnCacheMiss(ctx, key)
		return nil, false
	}
	root, err := s.Tree()
	if err != nil {
		observability.Cache().OnCacheMiss(ctx, key)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, key)
	return root, true
}

func (r *Runner) loadStored(ctx context.Context, opts Options) (*Loaded, bool, error) {
	if r.Store == nil {
		return nil, false, errs.New(errs.ErrCodeUnsupported, "no snapshot store configured")
	}
	s, err := r.Store.Load(ctx, opts.Stored)
	if err != nil {
		return nil, false, err
	}
	src := snapshot.NewSource(s, opts.Stored)
	root, err := src.Build(ctx, opts.SourceOptions())
	if err != nil {
		return nil, false, err
	}
	return &Loaded{Root: root, Kind: s.Kind, Location: s.Location, Labeler: src.Labeler()}, false, nil
}

// stamp fingerprints a source location by its modification time. Changes
// deeper in a directory do not touch the root's mtime; Refresh forces a
// rescan in that case.
func stamp(location string) string {
	info, err := os.Stat(location)
	if err != nil {
		return ""
	}
	return info.ModTime().UTC().Format(time.RFC3339Nano)
}
