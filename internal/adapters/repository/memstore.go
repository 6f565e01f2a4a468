package repository

import (
	"context"
	"sync"

	"github.com/okian/books/internal/domain/model"
)

// MemoryStore keeps the encoded document in memory. It goes through the same codec as
// the persistent stores, so it behaves like them in tests and ephemeral runs.
type MemoryStore struct {
	mu   sync.RWMutex
	data []byte // nil means no document yet
}

// NewMemoryStore creates an in-memory store. Without options it holds an empty collection.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{data: []byte("[]")}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Backend implements Store.
func (s *MemoryStore) Backend() string { return "memory" }

// Load implements Store.
func (s *MemoryStore) Load(ctx context.Context) (model.Collection, error) {
	const op = "repository.memory.load"
	if err := ctx.Err(); err != nil {
		return nil, accessError(op, err)
	}
	s.mu.RLock()
	data := s.data
	s.mu.RUnlock()
	if data == nil {
		return nil, notFoundError(op, "memory")
	}
	books, err := Decode(data)
	if err != nil {
		return nil, malformedError(op, err)
	}
	return books, nil
}

// Save implements Store.
func (s *MemoryStore) Save(ctx context.Context, books model.Collection) error {
	const op = "repository.memory.save"
	if err := ctx.Err(); err != nil {
		return accessError(op, err)
	}
	data, err := Encode(books)
	if err != nil {
		return accessError(op, err)
	}
	s.mu.Lock()
	s.data = data
	s.mu.Unlock()
	return nil
}

// Document returns a copy of the raw stored bytes.
func (s *MemoryStore) Document() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]byte(nil), s.data...)
}
