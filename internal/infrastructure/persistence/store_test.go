package persistence

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vl4ks/filmorate/config"
	"github.com/vl4ks/filmorate/pkg/logger"
)

func testConfig(backend string) *config.Config {
	return &config.Config{
		Storage: config.StorageConfig{Backend: backend, ConnectAttempts: 1},
		Redis:   config.RedisConfig{KeyPrefix: "test:"},
	}
}

func TestOpenMemory(t *testing.T) {
	store, err := Open(context.Background(), testConfig(config.BackendMemory), logger.Nop())
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, "memory", store.Backend())
	assert.NoError(t, store.Ping(context.Background()))
}

func TestOpenRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(config.BackendRedis)
	cfg.Redis.Addr = mr.Addr()

	store, err := Open(context.Background(), cfg, logger.Nop())
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, "redis", store.Backend())
	assert.NoError(t, store.Ping(context.Background()))
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), testConfig("sqlite"), logger.Nop())
	assert.ErrorContains(t, err, `unknown storage backend "sqlite"`)
}

func TestSeedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, testConfig(config.BackendMemory), logger.Nop())
	require.NoError(t, err)

	catalog, err := config.DefaultCatalog()
	require.NoError(t, err)

	res, err := Seed(ctx, store, catalog, logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, SeedResult{Genres: 6, Ratings: 5}, res)

	res, err = Seed(ctx, store, catalog, logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, SeedResult{}, res)

	genres, err := store.Genres().FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, genres, 6)
	assert.Equal(t, "Комедия", genres[0].Name)
	assert.Equal(t, "Боевик", genres[5].Name)

	ratings, err := store.Ratings().FindAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, "NC-17", ratings[4].Name)
}
