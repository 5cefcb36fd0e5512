package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	"dealership_api/internal/domain"
)

type SeedService struct {
	store domain.DocumentStore
	cache domain.Cache
}

func NewSeedService(s domain.DocumentStore, c domain.Cache) *SeedService {
	return &SeedService{store: s, cache: c}
}

type SeedResult struct {
	Collection domain.Collection
	Deleted    int64
	Inserted   int
	Skipped    int
}

// ParseSeed reads a seed file for c. Both a bare JSON array and an object
// wrapping the array under the collection name ({"cars": [...]}) are
// accepted.
func ParseSeed(c domain.Collection, r io.Reader) ([]domain.Document, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s seed: %w", c, err)
	}
	var list []domain.Document
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}
	var wrapped map[string][]domain.Document
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("%s seed is neither an array nor {%q: [...]}: %w", c, c, domain.ErrValidation)
	}
	list, ok := wrapped[string(c)]
	if !ok {
		return nil, fmt.Errorf("%s seed has no %q key: %w", c, c, domain.ErrValidation)
	}
	return list, nil
}

// Seed loads docs into c, wiping the collection first when reset is set.
// Documents that fail validation are skipped and counted.
func (s *SeedService) Seed(ctx context.Context, c domain.Collection, docs []domain.Document, reset bool) (SeedResult, error) {
	res := SeedResult{Collection: c}
	keys := map[string]struct{}{allKey(c): {}}

	if reset {
		if old, err := s.store.Find(ctx, c, nil); err == nil {
			for _, d := range old {
				for _, k := range affectedKeys(c, d) {
					keys[k] = struct{}{}
				}
			}
		}
		n, err := s.store.DeleteAll(ctx, c)
		if err != nil {
			return res, err
		}
		res.Deleted = n
	}

	valid := make([]domain.Document, 0, len(docs))
	for i, d := range docs {
		if _, err := domain.CheckDocument(c, d, nil); err != nil {
			log.Warn().Str("collection", string(c)).Int("index", i).Err(err).Msg("seed document skipped")
			res.Skipped++
			continue
		}
		valid = append(valid, d)
		for _, k := range affectedKeys(c, d) {
			keys[k] = struct{}{}
		}
	}

	n, err := s.store.InsertMany(ctx, c, valid)
	res.Inserted = n
	if s.cache != nil {
		for k := range keys {
			if derr := s.cache.Del(ctx, k); derr != nil {
				log.Warn().Err(derr).Str("key", k).Msg("cache evict failed")
			}
		}
	}
	return res, err
}
