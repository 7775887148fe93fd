// Package local implements blob storage in a directory on disk.
package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"stellar-copytrade-lab/internal/blob"
	"stellar-copytrade-lab/internal/storage"
)

// Store keeps objects as files under a root directory.
type Store struct {
	root string
}

var _ blob.Store = (*Store)(nil)

// NewStore creates a Store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{root: dir}
}

func (s *Store) resolve(path string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(path))
	if clean == "." || filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("local blob: invalid path %q: %w", path, storage.ErrInvalidInput)
	}
	return filepath.Join(s.root, clean), nil
}

// Put writes data to a temp file and renames it into place.
func (s *Store) Put(ctx context.Context, path string, data io.Reader, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("local blob: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(full), ".tmp-*")
	if err != nil {
		return fmt.Errorf("local blob: create temp: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, data); err != nil {
		tmp.Close()
		return fmt.Errorf("local blob: write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("local blob: close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), full); err != nil {
		return fmt.Errorf("local blob: rename %s: %w", path, err)
	}
	return nil
}

// Get opens the file at path.
func (s *Store) Get(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	full, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("local blob: get %s: %w", path, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("local blob: get %s: %w", path, err)
	}
	return f, nil
}
