package domain

import "context"

type DocumentStore interface {
	// Write paths
	Insert(ctx context.Context, c Collection, d Document) (Document, error)
	InsertMany(ctx context.Context, c Collection, ds []Document) (int, error)
	DeleteAll(ctx context.Context, c Collection) (int64, error)

	// Read paths
	Find(ctx context.Context, c Collection, f Filter) ([]Document, error)
	FindByID(ctx context.Context, c Collection, id string) (Document, error)

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
