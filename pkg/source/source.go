// Package source defines how concrete trees are built from external data.
//
// A [Source] reads some domain (a directory on disk, a tree description
// file) and hands names and sizes to the tree constructors. Sources do all
// their I/O during Build; the returned tree never touches the source again.
//
// # Implementations
//
//   - [github.com/matzehuels/treemap/pkg/source/filesystem]: files and folders
//   - [github.com/matzehuels/treemap/pkg/source/manifest]: TOML or JSON tree descriptions
package source

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/treemap/pkg/tree"
)

const (
	DefaultMaxDepth = 64      // Default maximum directory depth
	DefaultMaxNodes = 500_000 // Default maximum number of nodes in one tree
)

// Source builds a tree from an external domain.
type Source interface {
	// Kind returns the source type identifier (e.g., "fs", "manifest").
	Kind() string
	// Location returns the path the source reads from.
	Location() string
	// Labeler returns the label formatting rules for trees from this source.
	Labeler() tree.Labeler
	// Build reads the domain and constructs the tree.
	Build(ctx context.Context, opts Options) (*tree.Node, error)
}

// Options configures tree construction.
type Options struct {
	MaxDepth    int           // Deeper folders are summarized as leaves (default: 64)
	MaxNodes    int           // Maximum nodes in one tree (default: 500000)
	TreeOptions []tree.Option // Passed to every node constructor
	Logger      *log.Logger   // Progress logger (optional)
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.MaxNodes <= 0 {
		opts.MaxNodes = DefaultMaxNodes
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return opts
}
