package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBuffered(level Level) (*Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return New(Options{Output: buf, Level: level, Format: "json"}), buf
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		out = append(out, entry)
	}
	return out
}

func TestLogger_WritesStructuredJSON(t *testing.T) {
	log, buf := newBuffered(LevelInfo)

	log.With(Component("http")).Info("film created", FilmID(7), Err(errors.New("none")))

	entries := decodeLines(t, buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "film created", entries[0]["msg"])
	assert.Equal(t, "info", entries[0]["level"])
	assert.Equal(t, "http", entries[0]["component"])
	assert.EqualValues(t, 7, entries[0]["film_id"])
	assert.Equal(t, "none", entries[0]["error"])
	assert.Contains(t, entries[0], "timestamp")
}

func TestLogger_LevelFiltering(t *testing.T) {
	log, buf := newBuffered(LevelWarn)

	log.Debug("hidden")
	log.Info("hidden")
	log.Warn("shown")
	assert.Len(t, decodeLines(t, buf), 1)

	log.Error("also shown")
	entries := decodeLines(t, buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "also shown", entries[1]["msg"])
	assert.Equal(t, "error", entries[1]["level"])
}

func TestNewFromConfig(t *testing.T) {
	log := NewFromConfig("debug", "console")
	require.NotNil(t, log)
	assert.True(t, log.z.Core().Enabled(LevelDebug))

	log = NewFromConfig("warn", "")
	assert.False(t, log.z.Core().Enabled(LevelInfo))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelWarn, ParseLevel(" WARNING "))
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelInfo, ParseLevel("verbose"))
}

func TestContextPropagation(t *testing.T) {
	log, buf := newBuffered(LevelInfo)
	ctx := WithContext(context.Background(), log.WithRequestID("req-1"))

	FromContext(ctx).Info("hello")

	entries := decodeLines(t, buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "req-1", entries[0][RequestIDKey])
	assert.NotNil(t, FromContext(context.Background()))
}

func TestNop(t *testing.T) {
	assert.NotPanics(t, func() {
		Nop().With(UserID(1)).Error("discarded")
	})
}
