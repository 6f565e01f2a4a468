// Package repository persists the book collection as a single JSON document.
package repository

import (
	"context"

	"github.com/okian/books/internal/domain/model"
)

// Store loads and saves the whole book collection. Each call is a full read or a full
// rewrite of the document; callers doing read-modify-write get no isolation between calls.
type Store interface {
	// Load returns the stored collection in insertion order.
	// Errors match ErrStorageAccess or ErrMalformed.
	Load(ctx context.Context) (model.Collection, error)
	// Save replaces the stored collection.
	Save(ctx context.Context, books model.Collection) error
	// Backend names the implementation for logs and metrics, e.g. "file".
	Backend() string
}

// Initializer is implemented by stores that can create an empty document on startup.
type Initializer interface {
	// Init creates an empty collection when the document does not exist yet.
	// It reports whether a document was created.
	Init(ctx context.Context) (bool, error)
}

// EnsureInitialized calls Init when the store supports it.
func EnsureInitialized(ctx context.Context, s Store) (bool, error) {
	if in, ok := s.(Initializer); ok {
		return in.Init(ctx)
	}
	return false, nil
}

// initIfMissing implements Init for stores whose Load reports ErrNotFound.
func initIfMissing(ctx context.Context, s Store) (bool, error) {
	_, err := s.Load(ctx)
	switch {
	case err == nil:
		return false, nil
	case isNotFound(err):
		if err := s.Save(ctx, model.Collection{}); err != nil {
			return false, err
		}
		return true, nil
	default:
		return false, err
	}
}
