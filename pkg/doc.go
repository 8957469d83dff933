// Package pkg provides the core libraries for treemap visualization.
//
// # Overview
//
// A treemap draws a hierarchy of sized items as nested rectangles: every
// node gets a share of its parent's rectangle proportional to its size.
// The pkg directory is organized into these areas:
//
//  1. [tree] - the tree model, slice-and-dice layout, queries and edits
//  2. [source] - building trees from directories and manifests
//  3. [snapshot] - saving and restoring trees with their colours and expansion
//  4. [render] - SVG, PNG, PDF, JSON, DOT and terminal output
//  5. [pipeline] - orchestration (load → layout → render)
//  6. [cache], [storage] - scan caching and saved snapshots
//
// # Architecture
//
// The typical data flow:
//
//	Directory / Manifest / Snapshot
//	         ↓
//	    [source] packages (build the tree)
//	         ↓
//	    [tree] package (expand, lay out, query, edit)
//	         ↓
//	    [render] packages
//	         ↓
//	    SVG/PDF/PNG/JSON/DOT output
//
// # Quick Start
//
//	import (
//	    "context"
//	    "github.com/matzehuels/treemap/pkg/source"
//	    "github.com/matzehuels/treemap/pkg/source/filesystem"
//	    "github.com/matzehuels/treemap/pkg/tree"
//	    "github.com/matzehuels/treemap/pkg/render/sink"
//	)
//
//	// 1. Build the tree
//	src, _ := filesystem.Open("testdata")
//	root, _ := src.Build(context.Background(), source.Options{})
//
//	// 2. Open the top level and lay it out
//	root.Expand()
//	root.UpdateRectangles(tree.Rect{W: 1200, H: 800})
//
//	// 3. Render to SVG
//	svg := sink.RenderSVG(root, sink.WithLabeler(src.Labeler()))
//
// # Infrastructure
//
//   - [errors]: error codes shared by every package and the HTTP API
//   - [observability]: hooks for scan, layout, render, cache and server events
//   - [buildinfo]: version information set at link time
//
// [tree]: github.com/matzehuels/treemap/pkg/tree
// [source]: github.com/matzehuels/treemap/pkg/source
// [snapshot]: github.com/matzehuels/treemap/pkg/snapshot
// [render]: github.com/matzehuels/treemap/pkg/render
// [pipeline]: github.com/matzehuels/treemap/pkg/pipeline
// [cache]: github.com/matzehuels/treemap/pkg/cache
// [storage]: github.com/matzehuels/treemap/pkg/storage
// [errors]: github.com/matzehuels/treemap/pkg/errors
// [observability]: github.com/matzehuels/treemap/pkg/observability
// [buildinfo]: github.com/matzehuels/treemap/pkg/buildinfo
package pkg
