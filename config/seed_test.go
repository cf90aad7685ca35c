package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := DefaultCatalog()
	require.NoError(t, err)

	assert.Equal(t, []string{"Комедия", "Драма", "Мультфильм", "Триллер", "Документальный", "Боевик"}, c.Genres)
	assert.Equal(t, []string{"G", "PG", "PG-13", "R", "NC-17"}, c.Ratings)
}

func TestParseCatalog_Rejects(t *testing.T) {
	_, err := ParseCatalog([]byte("genres: [Драма, Драма]"))
	assert.ErrorContains(t, err, "twice")

	_, err = ParseCatalog([]byte("mpa: ['  ']"))
	assert.ErrorContains(t, err, "blank")

	_, err = ParseCatalog([]byte("genres: {"))
	assert.Error(t, err)
}

func TestLoadCatalog_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte("genres: [Нуар]\nmpa: [X]\n"), 0o600))

	c, err := LoadCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Нуар"}, c.Genres)
	assert.Equal(t, []string{"X"}, c.Ratings)

	_, err = LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
