package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	errs "github.com/matzehuels/blokdust/pkg/errors"
)

const fileExt = ".bdc"

// File is a [Store] keeping one file per composition in a directory.
type File struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFile creates a file store rooted at baseDir.
// If baseDir is empty, defaults to ~/.local/share/blokdust/compositions/
func NewFile(baseDir string) (*File, error) {
	if baseDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		baseDir = dir
	}
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &File{baseDir: baseDir}, nil
}

// DefaultDir returns the default directory of the file store.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".local", "share", "blokdust", "compositions"), nil
}

func (s *File) path(id string) string {
	return filepath.Join(s.baseDir, id+fileExt)
}

func (s *File) Save(ctx context.Context, id string, payload []byte) (string, error) {
	id, err := resolveID(id)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.baseDir, "."+id+"-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write composition: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("write composition: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(id)); err != nil {
		return "", fmt.Errorf("write composition: %w", err)
	}
	return id, nil
}

func (s *File) Load(ctx context.Context, id string) ([]byte, error) {
	if err := errs.ValidateCompositionID(id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, notFound("file", id)
		}
		return nil, fmt.Errorf("read composition: %w", err)
	}
	return data, nil
}

// List returns the ids of all stored compositions.
func (s *File) List() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read store dir: %w", err)
	}
	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != fileExt {
			continue
		}
		ids = append(ids, name[:len(name)-len(fileExt)])
	}
	return ids, nil
}

// Clear removes every stored composition and returns how many were removed.
func (s *File) Clear() (int, error) {
	ids, err := s.List()
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, id := range ids {
		if err := os.Remove(s.path(id)); err != nil && !os.IsNotExist(err) {
			return n, fmt.Errorf("remove composition: %w", err)
		}
		n++
	}
	return n, nil
}

func (s *File) Close() error { return nil }

// Path returns the base directory for composition files.
func (s *File) Path() string {
	return s.baseDir
}

var _ Store = (*File)(nil)
