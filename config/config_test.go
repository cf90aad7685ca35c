package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "filmorate", cfg.App.Name)
	assert.Equal(t, BackendMemory, cfg.Storage.Backend)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 15*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, 600, cfg.HTTP.RateLimitPerMinute)
	assert.Equal(t, "filmorate:", cfg.Redis.KeyPrefix)
	assert.True(t, cfg.Seed.Enabled)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
storage:
  backend: postgres
postgres:
  url: postgres://film:secret@db:5432/filmorate?sslmode=disable
http:
  port: 9090
log:
  level: debug
`)
	t.Setenv("FILMORATE_HTTP_PORT", "9191")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, BackendPostgres, cfg.Storage.Backend)
	assert.Equal(t, 9191, cfg.HTTP.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "postgres://film:secret@db:5432/filmorate?sslmode=disable", cfg.Postgres.DSN())
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Setenv("FILMORATE_STORAGE_BACKEND", "mongo")
	_, err := Load("")
	assert.ErrorContains(t, err, "storage.backend")

	t.Setenv("FILMORATE_STORAGE_BACKEND", "postgres")
	_, err = Load("")
	assert.ErrorContains(t, err, "postgres.url")
}

func TestPostgresDSN_FromFields(t *testing.T) {
	c := PostgresConfig{Host: "db", Port: 5432, User: "film", Password: "p@ss", Database: "filmorate", SSLMode: "disable"}
	assert.Equal(t, "postgres://film:p%40ss@db:5432/filmorate?sslmode=disable", c.DSN())
	assert.Empty(t, PostgresConfig{}.DSN())
}

func TestHTTPAddress(t *testing.T) {
	assert.Equal(t, "127.0.0.1:8080", HTTPConfig{Host: "127.0.0.1", Port: 8080}.Address())
}
