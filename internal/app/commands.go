package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"dealership_api/internal/domain"
)

type CommandService struct {
	store domain.DocumentStore
	cache domain.Cache
}

// NewCommandService serves writes. cache may be nil.
func NewCommandService(s domain.DocumentStore, c domain.Cache) *CommandService {
	return &CommandService{store: s, cache: c}
}

// Create validates a client body and persists it as a new document of c.
// The returned document carries the generated _id.
func (s *CommandService) Create(ctx context.Context, c domain.Collection, body []byte) (domain.Document, error) {
	d, err := domain.DecodeDocument(c, body)
	if err != nil {
		return nil, err
	}
	saved, err := s.store.Insert(ctx, c, d)
	if err != nil {
		return nil, err
	}
	s.evict(ctx, affectedKeys(c, saved)...)
	return saved, nil
}

func (s *CommandService) evict(ctx context.Context, keys ...string) {
	if s.cache == nil {
		return
	}
	for _, k := range keys {
		if err := s.cache.Del(ctx, k); err != nil {
			log.Warn().Err(err).Str("key", k).Msg("cache evict failed")
		}
	}
}
