package main

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"dealership_api/internal/adapters/observability"
	redisad "dealership_api/internal/adapters/redis"
	"dealership_api/internal/app"
	"dealership_api/internal/domain"
	"dealership_api/internal/shared"
	"dealership_api/internal/storage"
)

// Loads <SEED_DIR>/{reviews,dealerships,cars}.json. Missing files are skipped.
func main() {
	os.Exit(run())
}

// run returns the exit code so deferred closes happen before exiting.
func run() int {
	ctx := context.Background()
	cfg, err := shared.Load()
	if err != nil {
		log.Error().Err(err).Msg("config")
		return 1
	}

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	log.Info().
		Str("dir", cfg.SeedDir).
		Str("driver", cfg.StoreDriver).
		Int("workers", cfg.SeedWorkers).
		Bool("reset", cfg.SeedReset).
		Msg("seeder starting")

	store, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Error().Err(err).Msg("store open failed")
		return 1
	}
	defer store.Close(context.Background())

	var cache domain.Cache
	if cfg.CacheEnabled() {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		defer rc.Close()
		cache = rc
	}
	seeder := app.NewSeedService(store, cache)

	sem := semaphore.NewWeighted(int64(cfg.SeedWorkers))
	var wg sync.WaitGroup
	var mu sync.Mutex
	failed := 0

	for _, c := range domain.Collections {
		path := filepath.Join(cfg.SeedDir, string(c)+".json")
		if _, err := os.Stat(path); err != nil {
			log.Warn().Str("file", path).Msg("seed file missing, skipping")
			continue
		}

		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Error().Err(err).Msg("semaphore acquire failed")
			mu.Lock()
			failed++
			mu.Unlock()
			break
		}

		wg.Add(1)
		go func(c domain.Collection, path string) {
			defer wg.Done()
			defer sem.Release(1)

			start := time.Now()
			res, err := seedFile(ctx, seeder, c, path, cfg.SeedReset)
			if err != nil {
				log.Warn().Str("collection", string(c)).Err(err).Msg("seed failed")
				mu.Lock()
				failed++
				mu.Unlock()
				return
			}
			log.Info().
				Str("collection", string(c)).
				Int64("deleted", res.Deleted).
				Int("inserted", res.Inserted).
				Int("skipped", res.Skipped).
				Dur("took", time.Since(start)).
				Msg("seed ok")
		}(c, path)
	}

	wg.Wait()
	if failed > 0 {
		log.Error().Int("failed", failed).Msg("seeding finished with errors")
		return 1
	}
	log.Info().Msg("seeding completed")
	return 0
}

func seedFile(ctx context.Context, s *app.SeedService, c domain.Collection, path string, reset bool) (app.SeedResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return app.SeedResult{Collection: c}, err
	}
	defer f.Close()

	docs, err := app.ParseSeed(c, f)
	if err != nil {
		return app.SeedResult{Collection: c}, err
	}
	return s.Seed(ctx, c, docs, reset)
}
