package redis_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/vl4ks/filmorate/config"
	"github.com/vl4ks/filmorate/internal/domain/film"
	"github.com/vl4ks/filmorate/internal/domain/shared"
	"github.com/vl4ks/filmorate/internal/infrastructure/persistence"
	"github.com/vl4ks/filmorate/internal/infrastructure/persistence/redis"
	"github.com/vl4ks/filmorate/internal/infrastructure/persistence/storetest"
)

func newStore(t *testing.T, prefix string) (*redis.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	client, err := redis.NewClient(context.Background(), redis.ConfigFrom(config.RedisConfig{Addr: mr.Addr()}))
	require.NoError(t, err)
	return redis.NewStore(client, prefix), mr
}

func TestRedisStore(t *testing.T) {
	suite.Run(t, &storetest.Suite{
		NewStore: func(t *testing.T) persistence.Store {
			s, _ := newStore(t, "filmorate:")
			return s
		},
	})
}

func TestKeysCarryPrefix(t *testing.T) {
	s, mr := newStore(t, "test:")
	defer s.Close()
	ctx := context.Background()

	m := &film.MpaRating{Name: "G"}
	require.NoError(t, s.Ratings().Create(ctx, m))
	f := &film.Film{Name: "Matrix", ReleaseDate: shared.MustParseDate("1999-03-31"), Duration: 136, MpaID: m.ID}
	require.NoError(t, s.Films().Create(ctx, f))

	for _, key := range mr.Keys() {
		assert.Regexp(t, `^test:`, key)
	}
	assert.True(t, mr.Exists("test:film:1"))
	assert.True(t, mr.Exists("test:mpa:1"))
}

func TestReferenceCreateAllocatesIDBeforeScript(t *testing.T) {
	s, mr := newStore(t, "test:")
	defer s.Close()
	ctx := context.Background()

	g := &film.Genre{Name: "Комедия"}
	require.NoError(t, s.Genres().Create(ctx, g))
	assert.Equal(t, int64(1), g.ID)
	got, err := mr.Get("test:genre:1")
	require.NoError(t, err)
	assert.Equal(t, "Комедия", got)

	err = s.Genres().Create(ctx, &film.Genre{Name: "Комедия"})
	require.Error(t, err)
	assert.True(t, shared.IsAlreadyExists(err))
	assert.False(t, mr.Exists("test:genre:2"))

	// The rejected name burned id 2.
	next := &film.Genre{Name: "Драма"}
	require.NoError(t, s.Genres().Create(ctx, next))
	assert.Equal(t, int64(3), next.ID)

	all, err := s.Genres().FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, []int64{1, 3}, []int64{all[0].ID, all[1].ID})
}

func TestNewClientFailsWithoutServer(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := redis.NewClient(context.Background(), redis.ConfigFrom(config.RedisConfig{Addr: addr}))
	require.Error(t, err)
	assert.ErrorIs(t, err, redis.ErrConnection)
}

func TestConfigFrom(t *testing.T) {
	cfg := redis.ConfigFrom(config.RedisConfig{Addr: "cache:6380", DB: 2, PoolSize: 0})

	assert.Equal(t, "cache:6380", cfg.Addr)
	assert.Equal(t, 2, cfg.DB)
	assert.Equal(t, redis.DefaultConfig().PoolSize, cfg.PoolSize)
}

func TestConcurrentDeleteAbortsWatchedUpdate(t *testing.T) {
	s, _ := newStore(t, "filmorate:")
	defer s.Close()
	ctx := context.Background()

	m := &film.MpaRating{Name: "G"}
	require.NoError(t, s.Ratings().Create(ctx, m))
	f := &film.Film{Name: "Matrix", ReleaseDate: shared.MustParseDate("1999-03-31"), Duration: 136, MpaID: m.ID}
	require.NoError(t, s.Films().Create(ctx, f))

	// A write to the watched key between read and EXEC aborts the update.
	other := goredis.NewClient(&goredis.Options{Addr: s.Client().Options().Addr})
	defer other.Close()

	_, err := s.Films().Update(ctx, f.ID, func(cur *film.Film) error {
		cur.Name = "Matrix Reloaded"
		return other.Set(ctx, "filmorate:film:1", `{"id":1,"name":"changed","releaseDate":"1999-03-31","duration":1,"mpaId":1}`, 0).Err()
	})
	require.Error(t, err)
	assert.True(t, shared.IsInternal(err))
	assert.ErrorIs(t, err, shared.ErrConcurrentModification)

	got, err := s.Films().FindByID(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, "changed", got.Name)
}
