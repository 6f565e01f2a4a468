// Package service provides the book operations behind the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/okian/books/internal/adapters/repository"
	"github.com/okian/books/internal/domain/catalog"
	"github.com/okian/books/internal/domain/model"
	"github.com/okian/books/pkg/logger"
	"github.com/okian/books/pkg/metrics"
)

// ErrNoStore is returned by Start when no store was configured.
var ErrNoStore = errors.New("service has no store")

// Mutation outcomes reported to metrics.
const (
	outcomeApplied = "applied"
	outcomeNoop    = "noop"
)

// Service implements the book operations. Every call loads the whole collection from the
// store, transforms it in memory and, for mutations, saves it back. Nothing is cached
// between calls and concurrent read-modify-write cycles are not serialized.
type Service struct {
	mu sync.RWMutex

	store repository.Store

	// Configuration
	idStrategy catalog.IDStrategy
	strict     bool

	// State
	started   bool
	lastCount atomic.Int64
	calls     map[string]*atomic.Int64

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the collection store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithIDStrategy sets how ids of new books are computed.
func WithIDStrategy(strategy catalog.IDStrategy) Option {
	return func(s *Service) {
		if strategy != "" {
			s.idStrategy = strategy
		}
	}
}

// WithStrictPayloads makes Create and Update reject inputs without a title or author.
func WithStrictPayloads(strict bool) Option {
	return func(s *Service) {
		s.strict = strict
	}
}

// New constructs a Service. Without WithStore it keeps books in memory.
func New(opts ...Option) *Service {
	s := &Service{
		idStrategy: catalog.Length,
		strict:     true,
		calls: map[string]*atomic.Int64{
			"list":   {},
			"create": {},
			"update": {},
			"delete": {},
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}
	return s
}

// Start prepares the service. It is safe to call more than once.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.store == nil {
		return ErrNoStore
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.started = true
	s.logger.Info(ctx, "books service started",
		logger.String("backend", s.store.Backend()),
		logger.String("idStrategy", string(s.idStrategy)),
		logger.Bool("strictPayloads", s.strict),
	)
	return nil
}

// Stop marks the service stopped. The store holds no open handles that need closing.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.log().Info(context.Background(), "books service stopped")
}

// List returns the stored collection in insertion order.
func (s *Service) List(ctx context.Context) (model.Collection, error) {
	const op = "service.list"
	s.count("list")

	books, err := s.load(ctx, op)
	if err != nil {
		return nil, err
	}
	return books, nil
}

// Create appends a book with a server-assigned id and returns the whole updated collection.
func (s *Service) Create(ctx context.Context, in model.BookInput) (model.Collection, error) {
	const op = "service.create"
	s.count("create")

	if err := s.validate(in); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	books, err := s.load(ctx, op)
	if err != nil {
		return nil, err
	}

	books, created := catalog.Append(books, in, s.idStrategy)
	if err := s.save(ctx, op, books); err != nil {
		return nil, err
	}

	metrics.RecordBookMutation("create", outcomeApplied)
	s.log().Debug(ctx, "book created",
		logger.Int64("id", created.ID),
		logger.Int("total", len(books)),
	)
	return books, nil
}

// Update overwrites title and author of every book with the given id. The collection is
// saved even when nothing matched; an unknown id is not an error.
func (s *Service) Update(ctx context.Context, id int64, in model.BookInput) (model.Collection, error) {
	const op = "service.update"
	s.count("update")

	if err := s.validate(in); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	books, err := s.load(ctx, op)
	if err != nil {
		return nil, err
	}

	books, matched := catalog.Update(books, id, in)
	if err := s.save(ctx, op, books); err != nil {
		return nil, err
	}

	metrics.RecordBookMutation("update", outcome(matched))
	s.log().Debug(ctx, "books updated",
		logger.Int64("id", id),
		logger.Int("matched", matched),
	)
	return books, nil
}

// Delete removes every book with the given id and returns what remains. An unknown id is
// not an error.
func (s *Service) Delete(ctx context.Context, id int64) (model.Collection, error) {
	const op = "service.delete"
	s.count("delete")

	books, err := s.load(ctx, op)
	if err != nil {
		return nil, err
	}

	books, removed := catalog.Remove(books, id)
	if err := s.save(ctx, op, books); err != nil {
		return nil, err
	}

	metrics.RecordBookMutation("delete", outcome(removed))
	s.log().Debug(ctx, "books deleted",
		logger.Int64("id", id),
		logger.Int("removed", removed),
	)
	return books, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	calls := make(map[string]int64, len(s.calls))
	for name, c := range s.calls {
		calls[name] = c.Load()
	}
	return map[string]interface{}{
		"started":        s.started,
		"backend":        s.store.Backend(),
		"idStrategy":     string(s.idStrategy),
		"strictPayloads": s.strict,
		"lastBookCount":  s.lastCount.Load(),
		"requests":       calls,
	}
}

func (s *Service) validate(in model.BookInput) error {
	if !s.strict {
		return nil
	}
	return in.Validate()
}

func (s *Service) load(ctx context.Context, op string) (model.Collection, error) {
	books, err := s.store.Load(ctx)
	if err != nil {
		s.log().Error(ctx, "load books failed",
			logger.String("op", op),
			logger.String("backend", s.store.Backend()),
			logger.Error(err),
		)
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.lastCount.Store(int64(len(books)))
	return books, nil
}

func (s *Service) save(ctx context.Context, op string, books model.Collection) error {
	if err := s.store.Save(ctx, books); err != nil {
		s.log().Error(ctx, "save books failed",
			logger.String("op", op),
			logger.String("backend", s.store.Backend()),
			logger.Error(err),
		)
		return fmt.Errorf("%s: %w", op, err)
	}
	s.lastCount.Store(int64(len(books)))
	return nil
}

func (s *Service) count(name string) {
	if c, ok := s.calls[name]; ok {
		c.Add(1)
	}
}

func (s *Service) log() logger.Logger {
	if s.logger != nil {
		return s.logger
	}
	return logger.Get().Named("service")
}

func outcome(affected int) string {
	if affected > 0 {
		return outcomeApplied
	}
	return outcomeNoop
}
