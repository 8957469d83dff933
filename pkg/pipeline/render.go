package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/treemap/pkg/cache"
	errs "github.com/matzehuels/treemap/pkg/errors"
	"github.com/matzehuels/treemap/pkg/observability"
	"github.com/matzehuels/treemap/pkg/render/nodelink"
	"github.com/matzehuels/treemap/pkg/render/sink"
	"github.com/matzehuels/treemap/pkg/snapshot"
	"github.com/matzehuels/treemap/pkg/tree"
)

// ApplyExpansion opens the top depth levels of the tree below root. Zero
// leaves the tree alone; [ExpandAll] opens everything.
func ApplyExpansion(root *tree.Node, depth int) {
	switch {
	case depth == ExpandAll:
		root.ExpandAll()
	case depth > 0:
		// Walk is pre-order, so parents open before their children try to.
		root.Walk(func(n *tree.Node) bool {
			if n.Depth() >= depth {
				return false
			}
			n.Expand()
			return true
		})
	}
}

// Layout applies the requested expansion and lays the tree out in the
// frame. It returns the number of visible tiles.
func (r *Runner) Layout(ctx context.Context, root *tree.Node, opts Options) (int, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return 0, err
	}
	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, root.Len())
	start := time.Now()

	ApplyExpansion(root, opts.Expand)
	root.UpdateRectangles(tree.Rect{W: opts.Width, H: opts.Height})
	tiles := len(root.Rectangles())

	hooks.OnLayoutComplete(ctx, tiles, time.Since(start))
	return tiles, nil
}

// RenderWithCacheInfo renders every requested format of a laid-out tree and
// reports whether all of them came from cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, l *Loaded, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	hash, err := treeHash(l)
	if err != nil {
		return nil, false, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	allCached := true
	for _, format := range opts.Formats {
		key := r.Keyer.RenderKey(hash, opts.renderKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, key)
			artifacts[format] = data
		} else {
			observability.Cache().OnCacheMiss(ctx, key)
			allCached = false
			break
		}
	}
	if allCached && len(artifacts) == len(opts.Formats) {
		return artifacts, true, nil
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	rendered, err := RenderFormats(ctx, l, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		key := r.Keyer.RenderKey(hash, opts.renderKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, cache.TTLRender); err == nil {
			observability.Cache().OnCacheSet(ctx, key, len(data))
		}
	}
	return rendered, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and
// discards the cache hit info.
func (r *Runner) Render(ctx context.Context, l *Loaded, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, l, opts)
	return artifacts, err
}

// RenderFormats renders a laid-out tree without consulting any cache.
func RenderFormats(ctx context.Context, l *Loaded, opts Options) (map[string][]byte, error) {
	svgOpts := []sink.SVGOption{
		sink.WithStyle(sink.StyleByName(opts.Style)),
		sink.WithLabeler(l.Labeler),
	}
	if opts.Text {
		svgOpts = append(svgOpts, sink.WithText())
	}

	out := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var (
			data []byte
			err  error
		)
		switch format {
		case FormatSVG:
			data = sink.RenderSVG(l.Root, svgOpts...)
		case FormatJSON:
			data, err = sink.RenderJSON(l.Root, sink.WithJSONLabeler(l.Labeler), sink.WithJSONSeed(opts.Seed))
		case FormatPNG:
			data, err = sink.RenderPNG(l.Root, sink.WithPNGSVGOptions(svgOpts...))
		case FormatPDF:
			data, err = sink.RenderPDF(l.Root, svgOpts...)
		case FormatDOT:
			data = []byte(nodelink.ToDOT(l.Root, nodelink.Options{Detailed: opts.Detailed}))
		case FormatGraph:
			data, err = nodelink.RenderSVG(ctx, nodelink.ToDOT(l.Root, nodelink.Options{Detailed: opts.Detailed}))
		default:
			err = errs.New(errs.ErrCodeUnsupported, "unsupported format: %s", format)
		}
		if err != nil {
			return nil, err
		}
		opts.Logger.Debug("rendered", "format", format, "bytes", len(data))
		out[format] = data
	}
	return out, nil
}

func (o *Options) renderKeyOpts(format string) cache.RenderKeyOpts {
	return cache.RenderKeyOpts{
		Format: format,
		Width:  o.Width,
		Height: o.Height,
		Expand: o.Expand,
		Style:  o.Style,
		Text:   o.Text,

		Detailed: o.Detailed,
	}
}

// treeHash identifies a tree's content and expansion state, independent of
// when it was loaded.
func treeHash(l *Loaded) (string, error) {
	s := l.Snapshot()
	s.Created = time.Time{}
	data, err := snapshot.MarshalJSON(s)
	if err != nil {
		return "", err
	}
	return cache.Hash(data), nil
}
