package repository

import (
	"io/fs"

	"github.com/okian/books/internal/domain/model"
)

// FileOption applies a configuration option to the FileStore.
type FileOption func(*FileStore)

// WithFileMode sets the permission bits of the written document.
func WithFileMode(mode fs.FileMode) FileOption {
	return func(s *FileStore) {
		if mode != 0 {
			s.mode = mode
		}
	}
}

// MemoryOption applies a configuration option to the MemoryStore.
type MemoryOption func(*MemoryStore)

// WithBooks seeds the MemoryStore with an initial collection.
func WithBooks(books model.Collection) MemoryOption {
	return func(s *MemoryStore) {
		data, err := Encode(books)
		if err == nil {
			s.data = data
		}
	}
}

// WithRawDocument seeds the MemoryStore with raw bytes, which may be malformed.
func WithRawDocument(data []byte) MemoryOption {
	return func(s *MemoryStore) {
		s.data = append([]byte(nil), data...)
	}
}
