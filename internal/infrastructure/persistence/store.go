// Package persistence wires the storage backend selected by configuration.
// Every backend exposes the same repositories, so the application layer never
// knows which one it talks to.
package persistence

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/vl4ks/filmorate/config"
	"github.com/vl4ks/filmorate/internal/domain/film"
	"github.com/vl4ks/filmorate/internal/domain/social"
	"github.com/vl4ks/filmorate/internal/domain/user"
	"github.com/vl4ks/filmorate/internal/infrastructure/persistence/memory"
	"github.com/vl4ks/filmorate/internal/infrastructure/persistence/postgres"
	"github.com/vl4ks/filmorate/internal/infrastructure/persistence/redis"
	"github.com/vl4ks/filmorate/pkg/logger"
	"github.com/vl4ks/filmorate/pkg/retry"
)

// Store aggregates the repositories of one backend.
type Store interface {
	Films() film.Repository
	Genres() film.GenreRepository
	Ratings() film.RatingRepository
	Users() user.Repository
	Likes() social.LikeRepository
	Friends() social.FriendRepository

	// Backend names the implementation ("memory", "postgres", "redis").
	Backend() string

	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases connections.
	Close() error
}

var (
	_ Store = (*memory.Store)(nil)
	_ Store = (*postgres.Store)(nil)
	_ Store = (*redis.Store)(nil)
)

// Open creates the store named by cfg.Storage.Backend.
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger) (Store, error) {
	log = log.With(logger.Component("persistence"), logger.Backend(cfg.Storage.Backend))

	switch cfg.Storage.Backend {
	case config.BackendMemory:
		log.Info("using in-memory store")
		return memory.New(), nil

	case config.BackendPostgres:
		conn, err := retry.DoWithData(ctx, func(ctx context.Context) (*postgres.Connection, error) {
			return postgres.NewConnectionFromConfig(ctx, cfg.Postgres)
		}, connectOptions(cfg, log)...)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if cfg.Postgres.AutoMigrate {
			applied, err := postgres.NewMigrator(conn).Migrate(ctx)
			if err != nil {
				conn.Close()
				return nil, fmt.Errorf("migrate postgres: %w", err)
			}
			log.Info("postgres schema is up to date", logger.Int("applied", applied))
		}
		log.Info("using postgres store")
		return postgres.NewStore(conn), nil

	case config.BackendRedis:
		client, err := retry.DoWithData(ctx, func(ctx context.Context) (*goredis.Client, error) {
			return redis.NewClient(ctx, redis.ConfigFrom(cfg.Redis))
		}, connectOptions(cfg, log)...)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		log.Info("using redis store", logger.String("addr", cfg.Redis.Addr))
		return redis.NewStore(client, cfg.Redis.KeyPrefix), nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// connectOptions retries the initial connection while the backend starts up.
func connectOptions(cfg *config.Config, log *logger.Logger) []retry.Option {
	return []retry.Option{
		retry.WithMaxAttempts(cfg.Storage.ConnectAttempts),
		retry.WithOnRetry(func(attempt int, err error, delay time.Duration) {
			log.Warn("backend not reachable, retrying",
				logger.Int("attempt", attempt),
				logger.Duration("delay", delay),
				logger.Err(err),
			)
		}),
	}
}
