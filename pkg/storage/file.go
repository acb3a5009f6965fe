package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	apperr "github.com/shaikhimroz/new-nfm-sub000/pkg/errors"
)

// FileStore is a file-based document store for CLI applications.
// Documents are stored as JSON files in a data directory.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// DefaultDir returns the directory used when no path is configured:
// $XDG_DATA_HOME/dashgrid, falling back to ~/.local/share/dashgrid.
func DefaultDir() (string, error) {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "dashgrid"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".local", "share", "dashgrid"), nil
}

// NewFileStore creates a file-based store rooted at baseDir.
// If baseDir is empty, [DefaultDir] is used.
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		baseDir = dir
	}
	if err := os.MkdirAll(baseDir, 0o700); err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeStorage, err, "create data dir")
	}
	return &FileStore{baseDir: baseDir}, nil
}

// KeyPath returns the file a key is stored in.
func (s *FileStore) KeyPath(key string) string {
	return FilePath(s.baseDir, key)
}

// FilePath returns the file a [FileStore] rooted at dir keeps key in.
func FilePath(dir, key string) string {
	return filepath.Join(dir, key+".json")
}

// Path returns the base directory for document files.
func (s *FileStore) Path() string { return s.baseDir }

func (s *FileStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := apperr.ValidateStorageKey(key); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.KeyPath(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read document file: %w", err)
	}
	return data, nil
}

// Put writes to a temporary file and renames it over the old one, so a
// crash never leaves a half-written document behind.
func (s *FileStore) Put(ctx context.Context, key string, data []byte) error {
	if err := apperr.ValidateStorageKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.baseDir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write document file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close document file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.KeyPath(key)); err != nil {
		return fmt.Errorf("replace document file: %w", err)
	}
	return nil
}

func (s *FileStore) Delete(ctx context.Context, key string) error {
	if err := apperr.ValidateStorageKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.KeyPath(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove document file: %w", err)
	}
	return nil
}

func (s *FileStore) Backend() string { return BackendFile }
func (s *FileStore) Close() error    { return nil }

var _ Store = (*FileStore)(nil)
