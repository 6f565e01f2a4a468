package repository

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/okian/books/internal/domain/model"
)

const defaultFileMode fs.FileMode = 0o644

// FileStore keeps the collection in one JSON file on local disk.
//
// Saves go through a temp file in the same directory followed by a rename, so a
// concurrent Load sees either the old or the new document, never a partial one.
type FileStore struct {
	mu   sync.RWMutex
	path string
	mode fs.FileMode
}

// NewFileStore creates a store for the document at path. The file is not touched until
// the first Load, Save or Init.
func NewFileStore(path string, opts ...FileOption) *FileStore {
	s := &FileStore{path: path, mode: defaultFileMode}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Backend implements Store.
func (s *FileStore) Backend() string { return "file" }

// Path returns the document location.
func (s *FileStore) Path() string { return s.path }

// Load implements Store.
func (s *FileStore) Load(ctx context.Context) (model.Collection, error) {
	const op = "repository.file.load"
	if err := ctx.Err(); err != nil {
		return nil, accessError(op, err)
	}

	s.mu.RLock()
	data, err := os.ReadFile(s.path)
	s.mu.RUnlock()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, notFoundError(op, s.path)
		}
		return nil, accessError(op, err)
	}

	books, err := Decode(data)
	if err != nil {
		return nil, malformedError(op, err)
	}
	return books, nil
}

// Save implements Store.
func (s *FileStore) Save(ctx context.Context, books model.Collection) error {
	const op = "repository.file.save"
	if err := ctx.Err(); err != nil {
		return accessError(op, err)
	}
	data, err := Encode(books)
	if err != nil {
		return accessError(op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writeAtomic(data); err != nil {
		return accessError(op, err)
	}
	return nil
}

// Init implements Initializer.
func (s *FileStore) Init(ctx context.Context) (bool, error) {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return false, accessError("repository.file.init", err)
		}
	}
	return initIfMissing(ctx, s)
}

func (s *FileStore) writeAtomic(data []byte) (err error) {
	dir, base := filepath.Split(s.path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+base+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), s.mode); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}
