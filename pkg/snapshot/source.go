package snapshot

import (
	"context"
	"os"

	errs "github.com/matzehuels/treemap/pkg/errors"
	"github.com/matzehuels/treemap/pkg/source"
	"github.com/matzehuels/treemap/pkg/tree"
)

// Source replays a saved snapshot. Colours and expansion come from the
// snapshot; the build options' colour settings are ignored.
type Source struct {
	snap     *Snapshot
	location string
}

// NewSource wraps an already-decoded snapshot.
func NewSource(s *Snapshot, location string) *Source {
	return &Source{snap: s, location: location}
}

// OpenFile reads a JSON snapshot file.
func OpenFile(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidPath, err, "open snapshot %s", path)
	}
	defer f.Close()

	s, err := ReadJSON(f)
	if err != nil {
		return nil, err
	}
	return NewSource(s, path), nil
}

// Kind returns "snapshot".
func (s *Source) Kind() string { return "snapshot" }

// Location returns the snapshot path.
func (s *Source) Location() string { return s.location }

// Labeler returns the labeler of the source the snapshot was taken from.
func (s *Source) Labeler() tree.Labeler { return s.snap.Labeler() }

// Snapshot returns the wrapped snapshot.
func (s *Source) Snapshot() *Snapshot { return s.snap }

// Build restores the tree.
func (s *Source) Build(ctx context.Context, opts source.Options) (*tree.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.snap.Tree()
}

var _ source.Source = (*Source)(nil)
