package postgres_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/vl4ks/filmorate/internal/infrastructure/persistence"
	"github.com/vl4ks/filmorate/internal/infrastructure/persistence/postgres"
	"github.com/vl4ks/filmorate/internal/infrastructure/persistence/storetest"
)

// databaseURL points at a disposable database; every test truncates it.
func databaseURL(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	url := os.Getenv("FILMORATE_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("Skipping: FILMORATE_TEST_DATABASE_URL not set")
	}
	return url
}

func openClean(t *testing.T, url string) *postgres.Connection {
	t.Helper()
	ctx := context.Background()

	conn, err := postgres.NewConnectionFromURL(ctx, url)
	require.NoError(t, err)

	_, err = postgres.NewMigrator(conn).Migrate(ctx)
	require.NoError(t, err)

	_, err = conn.Exec(ctx, `
		TRUNCATE likes, friends, film_genres, films, users, genres, mpa_ratings
		RESTART IDENTITY CASCADE
	`)
	require.NoError(t, err)
	return conn
}

func TestPostgresStore(t *testing.T) {
	url := databaseURL(t)

	suite.Run(t, &storetest.Suite{
		NewStore: func(t *testing.T) persistence.Store {
			return postgres.NewStore(openClean(t, url))
		},
	})
}

func TestMigrator(t *testing.T) {
	url := databaseURL(t)
	ctx := context.Background()

	conn := openClean(t, url)
	defer conn.Close()
	m := postgres.NewMigrator(conn)

	applied, err := m.Migrate(ctx)
	require.NoError(t, err)
	require.Zero(t, applied, "second run must be a no-op")

	status, err := m.Status(ctx)
	require.NoError(t, err)
	require.Len(t, status, len(postgres.GetMigrations()))
	for _, mig := range status {
		require.True(t, mig.IsApplied, "migration %d", mig.Version)
	}

	health, err := conn.Health(ctx)
	require.NoError(t, err)
	require.True(t, health.Healthy)
	require.NoError(t, postgres.NewStore(conn).Ping(ctx))
}
