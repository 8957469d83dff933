// Package manifest builds trees from TOML or JSON descriptions.
//
// A manifest lists named entries. Entries with children become internal
// nodes; entries without children become leaves with the given size:
//
//	name = "project"
//
//	[[children]]
//	name = "src"
//
//	  [[children.children]]
//	  name = "main.go"
//	  size = 1200
//	  colour = "#ff8800"
//
// The JSON form uses the same field names.
package manifest

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	errs "github.com/matzehuels/treemap/pkg/errors"
	"github.com/matzehuels/treemap/pkg/source"
	"github.com/matzehuels/treemap/pkg/tree"
)

// Format is a manifest encoding.
type Format string

const (
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// FormatFor picks the format from a file extension. Anything other than
// .json is read as TOML.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatTOML
}

// Entry is one node of a manifest.
type Entry struct {
	Name     string  `toml:"name" json:"name"`
	Size     int64   `toml:"size" json:"size,omitempty"`
	Colour   string  `toml:"colour" json:"colour,omitempty"`
	Children []Entry `toml:"children" json:"children,omitempty"`
}

// Decode reads a manifest without building a tree.
func Decode(data []byte, format Format, opts source.Options) (*Entry, error) {
	opts = opts.WithDefaults()
	var root Entry

	switch format {
	case FormatTOML:
		md, err := toml.Decode(string(data), &root)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode toml manifest")
		}
		for _, key := range md.Undecoded() {
			opts.Logger.Warn("unknown manifest key", "key", key.String())
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(&root); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode json manifest")
		}
	default:
		return nil, errs.New(errs.ErrCodeUnsupported, "unsupported manifest format %q", format)
	}
	return &root, nil
}

// Parse decodes a manifest and builds its tree.
func Parse(ctx context.Context, data []byte, format Format, opts source.Options) (*tree.Node, error) {
	opts = opts.WithDefaults()
	root, err := Decode(data, format, opts)
	if err != nil {
		return nil, err
	}
	count := 0
	return build(ctx, root, 0, opts, &count)
}

func build(ctx context.Context, e *Entry, depth int, opts source.Options, count *int) (*tree.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	*count++
	if *count > opts.MaxNodes {
		return nil, errs.New(errs.ErrCodeInvalidInput, "tree exceeds %d nodes", opts.MaxNodes)
	}
	if depth > opts.MaxDepth {
		return nil, errs.New(errs.ErrCodeInvalidInput, "manifest nests deeper than %d levels", opts.MaxDepth)
	}
	if err := errs.ValidateName(e.Name); err != nil {
		return nil, err
	}
	if e.Size < 0 {
		return nil, errs.New(errs.ErrCodeInvalidInput, "entry %q has negative size %d", e.Name, e.Size)
	}

	nodeOpts := opts.TreeOptions
	if e.Colour != "" {
		col, err := tree.ParseColour(e.Colour)
		if err != nil {
			return nil, err
		}
		nodeOpts = append(nodeOpts[:len(nodeOpts):len(nodeOpts)], tree.WithColour(col))
	}

	if len(e.Children) == 0 {
		return tree.NewLeaf(e.Name, e.Size, nodeOpts...)
	}
	if e.Size != 0 {
		opts.Logger.Debug("ignoring size on entry with children", "name", e.Name, "size", e.Size)
	}

	children := make([]*tree.Node, 0, len(e.Children))
	for i := range e.Children {
		c, err := build(ctx, &e.Children[i], depth+1, opts, count)
		if err != nil {
			return nil, err
		}
		children = append(children, c)
	}
	return tree.NewInternal(e.Name, children, nodeOpts...)
}

// Source reads a manifest file.
type Source struct {
	path   string
	format Format
}

// Open returns a Source for a manifest file. The format follows the file
// extension.
func Open(path string) (*Source, error) {
	if err := errs.ValidatePath(path); err != nil {
		return nil, err
	}
	return &Source{path: path, format: FormatFor(path)}, nil
}

// Kind returns "manifest".
func (s *Source) Kind() string { return "manifest" }

// Location returns the manifest path.
func (s *Source) Location() string { return s.path }

// Labeler returns [tree.PlainLabeler].
func (s *Source) Labeler() tree.Labeler { return tree.PlainLabeler{} }

// Build reads and parses the manifest file.
func (s *Source) Build(ctx context.Context, opts source.Options) (*tree.Node, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidPath, err, "read manifest %s", s.path)
	}
	return Parse(ctx, data, s.format, opts)
}

// Ensure Source implements source.Source.
var _ source.Source = (*Source)(nil)
