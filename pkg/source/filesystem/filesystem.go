// Package filesystem builds trees from directories: folders become internal
// nodes and regular files become leaves sized in bytes.
package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	errs "github.com/matzehuels/treemap/pkg/errors"
	"github.com/matzehuels/treemap/pkg/source"
	"github.com/matzehuels/treemap/pkg/tree"
)

// Source scans a file or directory inside an fs.FS.
type Source struct {
	fsys     fs.FS
	root     string
	name     string
	location string
}

// New returns a Source for root inside fsys. The tree's root node is named
// name; every other node takes the base name of its entry.
func New(fsys fs.FS, root, name string) *Source {
	return &Source{fsys: fsys, root: root, name: name, location: root}
}

// Open returns a Source for a path on the local disk.
func Open(p string) (*Source, error) {
	if err := errs.ValidatePath(p); err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidPath, err, "resolve %s", p)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidPath, err, "stat %s", p)
	}

	name := filepath.Base(abs)
	var s *Source
	if info.IsDir() {
		s = New(os.DirFS(abs), ".", name)
	} else {
		s = New(os.DirFS(filepath.Dir(abs)), name, name)
	}
	s.location = abs
	return s, nil
}

// Kind returns "fs".
func (s *Source) Kind() string { return "fs" }

// Location returns the scanned path.
func (s *Source) Location() string { return s.location }

// Labeler returns the filesystem label rules.
func (s *Source) Labeler() tree.Labeler { return Labeler{} }

// stats counts what a scan saw, for the summary log line.
type stats struct {
	files, dirs, skipped, nodes int
}

// Build walks the directory tree. Directory entries are visited in the
// lexical order fs.ReadDir returns, so repeated scans of an unchanged
// directory produce the same tree. Symlinks, special files and unreadable
// entries are skipped. Folders below MaxDepth become truncated leaves holding
// the total size of their contents.
func (s *Source) Build(ctx context.Context, opts source.Options) (*tree.Node, error) {
	opts = opts.WithDefaults()
	var st stats

	info, err := fs.Stat(s.fsys, s.root)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidPath, err, "stat %s", s.location)
	}

	n, err := s.build(ctx, s.root, s.name, info, 0, opts, &st)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, errs.New(errs.ErrCodeUnsupported, "%s is neither a regular file nor a directory", s.location)
	}

	opts.Logger.Debug("scan complete", "path", s.location, "files", st.files, "dirs", st.dirs, "skipped", st.skipped)
	return n, nil
}

func (s *Source) build(ctx context.Context, p, name string, info fs.FileInfo, depth int, opts source.Options, st *stats) (*tree.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	st.nodes++
	if st.nodes > opts.MaxNodes {
		return nil, errs.New(errs.ErrCodeInvalidInput, "tree exceeds %d nodes", opts.MaxNodes)
	}

	switch {
	case info.Mode().IsRegular():
		st.files++
		return tree.NewLeaf(name, info.Size(), opts.TreeOptions...)
	case !info.IsDir():
		return nil, nil
	}

	st.dirs++
	if depth >= opts.MaxDepth {
		total, err := s.du(p)
		if err != nil {
			return nil, err
		}
		return tree.NewLeaf(name, total, append(opts.TreeOptions[:len(opts.TreeOptions):len(opts.TreeOptions)], tree.WithTruncated(true))...)
	}

	entries, err := fs.ReadDir(s.fsys, p)
	if err != nil {
		if depth == 0 {
			return nil, errs.Wrap(errs.ErrCodeInvalidPath, err, "read %s", s.location)
		}
		opts.Logger.Debug("skipping unreadable directory", "path", p, "err", err)
		st.skipped++
		return tree.NewLeaf(name, 0, opts.TreeOptions...)
	}

	children := make([]*tree.Node, 0, len(entries))
	for _, e := range entries {
		if e.Type()&fs.ModeSymlink != 0 {
			st.skipped++
			continue
		}
		childInfo, err := e.Info()
		if err != nil {
			opts.Logger.Debug("skipping entry", "path", path.Join(p, e.Name()), "err", err)
			st.skipped++
			continue
		}
		child, err := s.build(ctx, path.Join(p, e.Name()), e.Name(), childInfo, depth+1, opts, st)
		if err != nil {
			return nil, err
		}
		if child == nil {
			st.skipped++
			continue
		}
		children = append(children, child)
	}
	return tree.NewInternal(name, children, opts.TreeOptions...)
}

// du returns the total size of the regular files below p.
func (s *Source) du(p string) (int64, error) {
	var total int64
	err := fs.WalkDir(s.fsys, p, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		total += info.Size()
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("sum %s: %w", p, err)
	}
	return total, nil
}

// Ensure Source implements source.Source.
var _ source.Source = (*Source)(nil)
