package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"dealership_api/internal/app"
	"dealership_api/internal/domain"
	"dealership_api/internal/storage/memory"
)

// ---- fakes ----

// countingStore counts Find calls so tests can tell cache hits from misses.
type countingStore struct {
	domain.DocumentStore
	finds int
}

func (s *countingStore) Find(ctx context.Context, c domain.Collection, f domain.Filter) ([]domain.Document, error) {
	s.finds++
	return s.DocumentStore.Find(ctx, c, f)
}

// fakeCache stores JSON like the real cache so values round-trip the same way.
type fakeCache struct {
	store  map[string][]byte
	getErr error
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	if c.getErr != nil {
		return false, c.getErr
	}
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	delete(c.store, key)
	return nil
}

// ---- tests ----

func TestList_CacheMissThenHit(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{DocumentStore: memory.New()}
	if _, err := store.Insert(ctx, domain.Reviews, domain.Document{"name": "Ana"}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	cache := &fakeCache{}
	q := app.NewQueryService(store, cache, 10*time.Minute)

	// Miss (first time, populates cache)
	out, err := q.List(ctx, domain.Reviews)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(out) != 1 || out[0]["name"] != "Ana" {
		t.Fatalf("unexpected reviews: %+v", out)
	}

	// Hit (served from cache, store untouched)
	out2, err := q.List(ctx, domain.Reviews)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if store.finds != 1 {
		t.Fatalf("expected 1 store find, got %d", store.finds)
	}
	if len(out2) != 1 || out2[0]["name"] != "Ana" {
		t.Fatalf("unexpected cached reviews: %+v", out2)
	}
}

func TestCreate_EvictsCachedLists(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{DocumentStore: memory.New()}
	cache := &fakeCache{}
	q := app.NewQueryService(store, cache, time.Minute)
	cmd := app.NewCommandService(store, cache)

	// prime both car lists
	if _, err := q.List(ctx, domain.Cars); err != nil {
		t.Fatalf("list: %v", err)
	}
	if _, err := q.ListCarsByDealer(ctx, "7"); err != nil {
		t.Fatalf("list dealer: %v", err)
	}

	saved, err := cmd.Create(ctx, domain.Cars, []byte(`{"dealer_id":"7","make":"Audi"}`))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if saved.ID() == "" {
		t.Fatalf("expected generated id, got %+v", saved)
	}

	cars, err := q.ListCarsByDealer(ctx, "7")
	if err != nil {
		t.Fatalf("list dealer: %v", err)
	}
	if len(cars) != 1 || cars[0]["make"] != "Audi" {
		t.Fatalf("expected fresh list after insert, got %+v", cars)
	}
	all, _ := q.List(ctx, domain.Cars)
	if len(all) != 1 {
		t.Fatalf("expected fresh full list after insert, got %+v", all)
	}
}

func TestListCarsByDealer_NoMatchIsEmpty(t *testing.T) {
	q := app.NewQueryService(memory.New(), nil, 0)
	cars, err := q.ListCarsByDealer(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if cars == nil || len(cars) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", cars)
	}
}

func TestList_CacheErrorFallsBackToStore(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	_, _ = store.Insert(ctx, domain.Dealerships, domain.Document{"name": "Acme"})
	q := app.NewQueryService(store, &fakeCache{getErr: errors.New("redis down")}, time.Minute)

	out, err := q.List(ctx, domain.Dealerships)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("unexpected dealerships: %+v", out)
	}
}

func TestCreate_ValidationStoresNothing(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	cmd := app.NewCommandService(store, nil)

	_, err := cmd.Create(ctx, domain.Reviews, []byte(`{"car_year":"soon"}`))
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "car_year") {
		t.Fatalf("expected field name in error, got %v", err)
	}
	all, _ := store.Find(ctx, domain.Reviews, nil)
	if len(all) != 0 {
		t.Fatalf("expected nothing stored, got %+v", all)
	}
}

func TestGetDealership(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	saved, _ := store.Insert(ctx, domain.Dealerships, domain.Document{"name": "Acme"})
	q := app.NewQueryService(store, nil, 0)

	got, err := q.GetDealership(ctx, saved.ID())
	if err != nil || got["name"] != "Acme" {
		t.Fatalf("unexpected: %+v, %v", got, err)
	}
	if _, err := q.GetDealership(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
