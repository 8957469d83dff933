package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	errs "github.com/matzehuels/treemap/pkg/errors"
	"github.com/matzehuels/treemap/pkg/snapshot"
)

// FileStore is a file-based snapshot store for CLI use.
// Snapshots are stored as JSON files named <name>.json.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a file store in baseDir, creating it if needed.
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		return nil, errs.New(errs.ErrCodeInvalidPath, "store directory cannot be empty")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

// Path returns the store directory.
func (s *FileStore) Path() string { return s.baseDir }

func (s *FileStore) snapshotPath(name string) string {
	return filepath.Join(s.baseDir, name+".json")
}

func (s *FileStore) Save(ctx context.Context, name string, snap *snapshot.Snapshot) error {
	if err := errs.ValidateStoreKey(name); err != nil {
		return err
	}
	data, err := snapshot.MarshalJSON(snap)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Readers only ever see a complete file.
	tmp := s.snapshotPath(name) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.snapshotPath(name)); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

func (s *FileStore) Load(ctx context.Context, name string) (*snapshot.Snapshot, error) {
	if err := errs.ValidateStoreKey(name); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.snapshotPath(name))
	if os.IsNotExist(err) {
		return nil, notFound(name)
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return snapshot.UnmarshalJSON(data)
}

func (s *FileStore) List(ctx context.Context) ([]Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read store dir: %w", err)
	}

	var out []Info
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name()))
		if err != nil {
			continue
		}
		snap, err := snapshot.UnmarshalJSON(data)
		if err != nil {
			continue
		}
		out = append(out, infoOf(strings.TrimSuffix(entry.Name(), ".json"), snap))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *FileStore) Delete(ctx context.Context, name string) error {
	if err := errs.ValidateStoreKey(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.snapshotPath(name))
	if os.IsNotExist(err) {
		return notFound(name)
	}
	if err != nil {
		return fmt.Errorf("remove snapshot: %w", err)
	}
	return nil
}

func (s *FileStore) Close(ctx context.Context) error { return nil }

var _ Store = (*FileStore)(nil)
