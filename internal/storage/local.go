package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// LocalStore serves objects from a directory on disk. Used by the batch CLI so
// the full pipeline runs without cloud credentials.
type LocalStore struct {
	basePath string
}

func NewLocalStore(basePath string) (*LocalStore, error) {
	info, err := os.Stat(basePath)
	if err != nil {
		return nil, fmt.Errorf("storage directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage path %q is not a directory", basePath)
	}
	return &LocalStore{basePath: basePath}, nil
}

func (l *LocalStore) Size(_ context.Context, key string) (int64, error) {
	info, err := os.Stat(filepath.Join(l.basePath, key))
	if err != nil {
		return 0, fmt.Errorf("stat %q: %w", key, err)
	}
	return info.Size(), nil
}

func (l *LocalStore) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(l.basePath, key))
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", key, err)
	}
	return data, nil
}
