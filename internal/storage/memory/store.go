// Package memory is an in-process document store. It backs tests and
// STORE_DRIVER=memory.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"dealership_api/internal/domain"
)

type Store struct {
	mu     sync.RWMutex
	docs   map[domain.Collection][]domain.Document
	closed bool
}

func New() *Store {
	return &Store{docs: make(map[domain.Collection][]domain.Document)}
}

func (s *Store) Insert(ctx context.Context, c domain.Collection, d domain.Document) (domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usable(ctx); err != nil {
		return nil, err
	}
	saved := d.Clone()
	saved[domain.IDField] = uuid.NewString()
	s.docs[c] = append(s.docs[c], saved)
	return saved.Clone(), nil
}

func (s *Store) InsertMany(ctx context.Context, c domain.Collection, ds []domain.Document) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usable(ctx); err != nil {
		return 0, err
	}
	for _, d := range ds {
		saved := d.Clone()
		saved[domain.IDField] = uuid.NewString()
		s.docs[c] = append(s.docs[c], saved)
	}
	return len(ds), nil
}

func (s *Store) DeleteAll(ctx context.Context, c domain.Collection) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usable(ctx); err != nil {
		return 0, err
	}
	n := int64(len(s.docs[c]))
	delete(s.docs, c)
	return n, nil
}

func (s *Store) Find(ctx context.Context, c domain.Collection, f domain.Filter) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.usable(ctx); err != nil {
		return nil, err
	}
	out := []domain.Document{}
	for _, d := range s.docs[c] {
		if f.Matches(d) {
			out = append(out, d.Clone())
		}
	}
	return out, nil
}

func (s *Store) FindByID(ctx context.Context, c domain.Collection, id string) (domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.usable(ctx); err != nil {
		return nil, err
	}
	for _, d := range s.docs[c] {
		if d.ID() == id {
			return d.Clone(), nil
		}
	}
	return nil, fmt.Errorf("%s %s: %w", c, id, domain.ErrNotFound)
}

func (s *Store) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.usable(ctx)
}

// Close makes every later call fail with ErrStorageUnavailable, like a
// dropped database connection.
func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// usable must be called with mu held.
func (s *Store) usable(ctx context.Context) error {
	if s.closed {
		return fmt.Errorf("memory store closed: %w", domain.ErrStorageUnavailable)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%v: %w", err, domain.ErrStorageUnavailable)
	}
	return nil
}
