// Package pipeline provides the scan → layout → render pipeline for treemaps.
//
// The CLI, the interactive explorer and the HTTP server all build trees and
// artifacts through a [Runner], so caching, expansion defaults and output
// formats behave the same everywhere.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: build a tree from a directory, a manifest, a snapshot file or a
//     stored snapshot. Trees built from sources are cached as snapshots.
//  2. Layout: apply the requested expansion and divide the frame.
//  3. Render: produce artifacts (SVG, PNG, PDF, JSON, DOT).
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Path:    "/var/log",
//	    Expand:  2,
//	    Formats: []string{"svg"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/treemap/pkg/cache"
	errs "github.com/matzehuels/treemap/pkg/errors"
	"github.com/matzehuels/treemap/pkg/render/sink"
	"github.com/matzehuels/treemap/pkg/source"
	"github.com/matzehuels/treemap/pkg/tree"
)

const (
	// DefaultWidth is the default frame width in pixels.
	DefaultWidth = 1024

	// DefaultHeight is the default frame height in pixels.
	DefaultHeight = 768

	// DefaultSeed seeds tile colours so repeated scans look the same.
	DefaultSeed = uint64(42)

	// DefaultExpand shows the root's children.
	DefaultExpand = 1

	// DefaultStyle is the default SVG tile style.
	DefaultStyle = sink.StyleFlat
)

// ExpandAll expands every internal node before layout.
const ExpandAll = -1

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
	FormatDOT  = "dot"
	// FormatGraph is the node-link diagram of the hierarchy, laid out by
	// Graphviz and written as SVG.
	FormatGraph = "graph"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
	FormatDOT:  true,

	FormatGraph: true,
}

// Extension returns the file extension for a format, without the dot.
func Extension(format string) string {
	if format == FormatGraph {
		return "graph.svg"
	}
	return format
}

// ValidStyles is the set of supported tile styles.
var ValidStyles = map[string]bool{
	sink.StyleFlat:    true,
	sink.StyleCushion: true,
}

// Options contains all configuration for one pipeline run.
type Options struct {
	// Load options
	Path     string `json:"path,omitempty"`   // Directory, file, manifest or snapshot
	Stored   string `json:"stored,omitempty"` // Name of a stored snapshot; replaces Path
	MaxDepth int    `json:"max_depth,omitempty"`
	MaxNodes int    `json:"max_nodes,omitempty"`
	Seed     uint64 `json:"seed,omitempty"`
	Refresh  bool   `json:"refresh,omitempty"`
	// CacheTTL is how long a scanned tree stays cached (default: cache.TTLScan).
	CacheTTL time.Duration `json:"cache_ttl,omitempty"`

	// Layout options
	Width  int `json:"width,omitempty"`
	Height int `json:"height,omitempty"`
	// Expand is the number of levels opened below the root, or ExpandAll.
	// Zero keeps the loaded expansion state (useful for snapshots).
	Expand int `json:"expand,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Style    string   `json:"style,omitempty"`
	Text     bool     `json:"text,omitempty"`
	Detailed bool     `json:"detailed,omitempty"` // DOT labels carry sizes

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Tree is the loaded tree, laid out and expanded.
	Tree *tree.Node

	// Kind and Location identify where the tree came from.
	Kind     string
	Location string

	// Labeler formats node labels for the tree's source.
	Labeler tree.Labeler

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	TileCount  int
	LoadTime   time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LoadHit   bool // Whether the tree came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errs.New(errs.ErrCodeInvalidInput, "invalid format: %q (must be one of: %s)", format, strings.Join(formatNames(), ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateStyle checks that a style is valid.
func ValidateStyle(style string) error {
	if !ValidStyles[style] {
		return errs.New(errs.ErrCodeInvalidInput, "invalid style: %q (must be one of: flat, cushion)", style)
	}
	return nil
}

func formatNames() []string {
	names := make([]string, 0, len(ValidFormats))
	for f := range ValidFormats {
		names = append(names, f)
	}
	slices.Sort(names)
	return names
}

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline. Calling it more than once has no further effect.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLoad checks the load fields and applies their defaults.
func (o *Options) ValidateForLoad() error {
	if o.Stored == "" {
		if err := errs.ValidatePath(o.Path); err != nil {
			return err
		}
	} else if err := errs.ValidateStoreKey(o.Stored); err != nil {
		return err
	}
	if o.MaxDepth < 0 || o.MaxNodes < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "max depth and max nodes must not be negative")
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.CacheTTL <= 0 {
		o.CacheTTL = cache.TTLScan
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if o.Expand < ExpandAll {
		return errs.New(errs.ErrCodeInvalidInput, "invalid expand depth %d", o.Expand)
	}
	return errs.ValidateDimensions(o.Width, o.Height)
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Style == "" {
		o.Style = DefaultStyle
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for layout and rendering.
func (o *Options) ValidateForRender() error {
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	return ValidateStyle(o.Style)
}

// SourceOptions returns the build options for a source scan.
func (o *Options) SourceOptions() source.Options {
	return source.Options{
		MaxDepth:    o.MaxDepth,
		MaxNodes:    o.MaxNodes,
		TreeOptions: []tree.Option{tree.WithColours(tree.NewSeededColours(o.Seed))},
		Logger:      o.Logger,
	}
}
