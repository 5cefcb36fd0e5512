// Package storage picks the document store backend named by STORE_DRIVER.
package storage

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"dealership_api/internal/adapters/observability"
	"dealership_api/internal/domain"
	"dealership_api/internal/shared"
	"dealership_api/internal/storage/memory"
	"dealership_api/internal/storage/mongodb"
	mysqlstore "dealership_api/internal/storage/mysql"
)

// Open connects the configured backend once. The returned store is
// instrumented with Prometheus metrics.
func Open(ctx context.Context, cfg shared.Config) (domain.DocumentStore, error) {
	var (
		s   domain.DocumentStore
		err error
	)
	switch cfg.StoreDriver {
	case shared.DriverMongo:
		s, err = mongodb.Open(ctx, mongodb.Config{
			URI:            cfg.Mongo.URI,
			Database:       cfg.Mongo.Database,
			ConnectTimeout: cfg.MongoConnectTimeout(),
		})
	case shared.DriverMySQL:
		s, err = mysqlstore.Open(ctx, cfg.MySQLDSN)
	case shared.DriverMemory:
		log.Warn().Msg("using in-memory store; data is lost on exit")
		s = memory.New()
	default:
		err = fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
	if err != nil {
		return nil, err
	}
	return observability.InstrumentStore(s), nil
}
