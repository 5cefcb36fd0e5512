//go:build integration

package mongodb_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealership_api/internal/domain"
	"dealership_api/internal/storage/mongodb"
)

func startMongo(t *testing.T) string {
	t.Helper()
	pool, err := dockertest.NewPool("")
	require.NoError(t, err, "dockertest")

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mongo",
		Tag:        "7.0",
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err, "run mongo")
	t.Cleanup(func() { _ = pool.Purge(resource) })

	uri := fmt.Sprintf("mongodb://127.0.0.1:%s", resource.GetPort("27017/tcp"))
	require.NoError(t, pool.Retry(func() error {
		s, err := mongodb.Open(context.Background(), mongodb.Config{URI: uri, Database: "probe", ConnectTimeout: 2 * time.Second})
		if err != nil {
			return err
		}
		return s.Close(context.Background())
	}), "connect mongo")
	return uri
}

func TestStore_Mongo_InsertFindFilter(t *testing.T) {
	uri := startMongo(t)
	ctx := context.Background()

	s, err := mongodb.Open(ctx, mongodb.Config{URI: uri, Database: "dealership"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(context.Background()) })

	saved, err := s.Insert(ctx, domain.Dealerships, domain.Document{"name": "Acme Motors", "city": "Springfield"})
	require.NoError(t, err)
	require.Len(t, saved.ID(), 24)

	all, err := s.Find(ctx, domain.Dealerships, nil)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, saved, all[0])

	got, err := s.FindByID(ctx, domain.Dealerships, saved.ID())
	require.NoError(t, err)
	assert.Equal(t, "Springfield", got["city"])

	_, err = s.FindByID(ctx, domain.Dealerships, "0123456789abcdef01234567")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = s.FindByID(ctx, domain.Dealerships, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	n, err := s.InsertMany(ctx, domain.Cars, []domain.Document{
		{"dealer_id": "7", "make": "Audi", "year": 2021.0},
		{"dealer_id": "70", "make": "BMW"},
		{"dealer_id": 7.0, "make": "Numeric"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	cars, err := s.Find(ctx, domain.Cars, domain.ByDealer("7"))
	require.NoError(t, err)
	require.Len(t, cars, 1)
	assert.Equal(t, "Audi", cars[0]["make"])
	assert.Equal(t, 2021.0, cars[0]["year"])

	deleted, err := s.DeleteAll(ctx, domain.Cars)
	require.NoError(t, err)
	assert.EqualValues(t, 3, deleted)
}

func TestStore_Mongo_DisconnectedIsUnavailable(t *testing.T) {
	uri := startMongo(t)
	ctx := context.Background()

	s, err := mongodb.Open(ctx, mongodb.Config{URI: uri, Database: "dealership"})
	require.NoError(t, err)
	require.NoError(t, s.Close(ctx))

	_, err = s.Find(ctx, domain.Reviews, nil)
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
	_, err = s.Insert(ctx, domain.Reviews, domain.Document{"name": "x"})
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
}
