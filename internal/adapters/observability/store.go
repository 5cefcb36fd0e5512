package observability

import (
	"context"
	"errors"
	"time"

	"dealership_api/internal/domain"
)

// InstrumentStore wraps a DocumentStore so every call is counted and timed.
func InstrumentStore(s domain.DocumentStore) domain.DocumentStore {
	return &instrumentedStore{next: s}
}

type instrumentedStore struct{ next domain.DocumentStore }

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrValidation):
		return "invalid"
	case errors.Is(err, domain.ErrStorageUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}

func observe(c domain.Collection, op string, start time.Time, err error) {
	ObserveStore(string(c), op, outcome(err), time.Since(start))
}

func (s *instrumentedStore) Insert(ctx context.Context, c domain.Collection, d domain.Document) (domain.Document, error) {
	start := time.Now()
	out, err := s.next.Insert(ctx, c, d)
	observe(c, "insert", start, err)
	return out, err
}

func (s *instrumentedStore) InsertMany(ctx context.Context, c domain.Collection, ds []domain.Document) (int, error) {
	start := time.Now()
	n, err := s.next.InsertMany(ctx, c, ds)
	observe(c, "insert_many", start, err)
	return n, err
}

func (s *instrumentedStore) DeleteAll(ctx context.Context, c domain.Collection) (int64, error) {
	start := time.Now()
	n, err := s.next.DeleteAll(ctx, c)
	observe(c, "delete_all", start, err)
	return n, err
}

func (s *instrumentedStore) Find(ctx context.Context, c domain.Collection, f domain.Filter) ([]domain.Document, error) {
	start := time.Now()
	out, err := s.next.Find(ctx, c, f)
	observe(c, "find", start, err)
	return out, err
}

func (s *instrumentedStore) FindByID(ctx context.Context, c domain.Collection, id string) (domain.Document, error) {
	start := time.Now()
	out, err := s.next.FindByID(ctx, c, id)
	observe(c, "find_by_id", start, err)
	return out, err
}

func (s *instrumentedStore) Ping(ctx context.Context) error { return s.next.Ping(ctx) }

func (s *instrumentedStore) Close(ctx context.Context) error { return s.next.Close(ctx) }
