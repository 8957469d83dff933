// Package storage keeps named tree snapshots.
//
// The CLI saves scans with "treemap scan --save NAME" and lists or deletes
// them with "treemap store". Backends:
//   - [FileStore]: one JSON file per snapshot in a local directory
//   - [MongoStore]: a MongoDB collection, for shared deployments
package storage

import (
	"context"
	"strings"
	"time"

	errs "github.com/matzehuels/treemap/pkg/errors"
	"github.com/matzehuels/treemap/pkg/snapshot"
)

// Info summarizes a stored snapshot without loading its tree.
type Info struct {
	Name     string    `json:"name" bson:"_id"`
	Kind     string    `json:"kind" bson:"kind"`
	Location string    `json:"location" bson:"location"`
	Size     int64     `json:"size" bson:"size"`
	Created  time.Time `json:"created" bson:"created"`
}

// Store persists snapshots by name.
type Store interface {
	// Save stores s under name, replacing any previous snapshot.
	Save(ctx context.Context, name string, s *snapshot.Snapshot) error
	// Load returns the snapshot stored under name, or an
	// [errs.ErrCodeNotFound] error.
	Load(ctx context.Context, name string) (*snapshot.Snapshot, error)
	// List returns every stored snapshot, sorted by name.
	List(ctx context.Context) ([]Info, error)
	// Delete removes name. It returns an [errs.ErrCodeNotFound] error when
	// nothing was stored under it.
	Delete(ctx context.Context, name string) error
	// Close releases backend resources.
	Close(ctx context.Context) error
}

// Open returns the store for a backend setting: a directory path, or a
// "mongodb://" / "mongodb+srv://" URI.
func Open(ctx context.Context, backend string) (Store, error) {
	if strings.HasPrefix(backend, "mongodb://") || strings.HasPrefix(backend, "mongodb+srv://") {
		return NewMongoStore(ctx, backend, DefaultDatabase)
	}
	return NewFileStore(backend)
}

func infoOf(name string, s *snapshot.Snapshot) Info {
	return Info{
		Name:     name,
		Kind:     s.Kind,
		Location: s.Location,
		Size:     s.Root.Size,
		Created:  s.Created,
	}
}

func notFound(name string) error {
	return errs.New(errs.ErrCodeNotFound, "no snapshot named %q", name)
}
