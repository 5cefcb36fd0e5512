package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"dealership_api/internal/domain"
)

type QueryService struct {
	store    domain.DocumentStore
	cache    domain.Cache
	cacheTTL time.Duration
}

// NewQueryService serves reads. cache may be nil.
func NewQueryService(s domain.DocumentStore, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{store: s, cache: c, cacheTTL: ttl}
}

// List returns every document of the collection.
func (s *QueryService) List(ctx context.Context, c domain.Collection) ([]domain.Document, error) {
	return s.cachedFind(ctx, allKey(c), c, nil)
}

// ListCarsByDealer returns the cars whose dealer_id equals dealerID exactly.
// No match is an empty list, not an error.
func (s *QueryService) ListCarsByDealer(ctx context.Context, dealerID string) ([]domain.Document, error) {
	return s.cachedFind(ctx, dealerCarsKey(dealerID), domain.Cars, domain.ByDealer(dealerID))
}

func (s *QueryService) GetDealership(ctx context.Context, id string) (domain.Document, error) {
	return s.store.FindByID(ctx, domain.Dealerships, id)
}

func (s *QueryService) cachedFind(ctx context.Context, key string, c domain.Collection, f domain.Filter) ([]domain.Document, error) {
	if s.cache != nil {
		var out []domain.Document
		ok, err := s.cache.Get(ctx, key, &out)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("cache get failed")
		}
		if ok && out != nil {
			return out, nil
		}
	}

	docs, err := s.store.Find(ctx, c, f)
	if err != nil {
		return nil, err
	}
	if docs == nil {
		docs = []domain.Document{}
	}

	if s.cache != nil && s.cacheTTL > 0 {
		if err := s.cache.Set(ctx, key, docs, int(s.cacheTTL.Seconds())); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("cache set failed")
		}
	}
	return docs, nil
}
