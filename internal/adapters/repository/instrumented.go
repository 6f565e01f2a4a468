package repository

import (
	"context"
	"time"

	"github.com/okian/books/internal/domain/model"
	"github.com/okian/books/pkg/metrics"
)

const nanosecondsPerMillisecond = 1e6

// instrumentedStore records latency, errors and document size for the wrapped store.
type instrumentedStore struct {
	next Store
}

// Instrument wraps s so every Load and Save is reported to pkg/metrics. Init is forwarded
// when the wrapped store supports it.
func Instrument(s Store) Store {
	return &instrumentedStore{next: s}
}

func (s *instrumentedStore) Backend() string { return s.next.Backend() }

func (s *instrumentedStore) Load(ctx context.Context) (model.Collection, error) {
	start := time.Now()
	books, err := s.next.Load(ctx)
	s.observe("load", start, err)
	if err == nil {
		metrics.UpdateBooksTotal(len(books))
	}
	return books, err
}

func (s *instrumentedStore) Save(ctx context.Context, books model.Collection) error {
	start := time.Now()
	err := s.next.Save(ctx, books)
	s.observe("save", start, err)
	if err == nil {
		metrics.UpdateBooksTotal(len(books))
		if data, encErr := Encode(books); encErr == nil {
			metrics.UpdateStorageDocumentBytes(s.Backend(), len(data))
		}
	}
	return err
}

func (s *instrumentedStore) Init(ctx context.Context) (bool, error) {
	return EnsureInitialized(ctx, s.next)
}

func (s *instrumentedStore) observe(op string, start time.Time, err error) {
	backend := s.next.Backend()
	metrics.RecordStorageLatency(backend, op, float64(time.Since(start).Nanoseconds())/nanosecondsPerMillisecond)
	if err != nil {
		metrics.RecordStorageError(backend, op, Kind(err))
	}
}
