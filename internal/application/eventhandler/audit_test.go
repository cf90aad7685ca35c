package eventhandler

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vl4ks/filmorate/internal/domain/shared"
	"github.com/vl4ks/filmorate/internal/infrastructure/messaging"
	"github.com/vl4ks/filmorate/pkg/logger"
)

type counter map[string]int

func (c counter) RecordEvent(eventType string) { c[eventType]++ }

func TestAuditHandlerLogsAndCounts(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Options{Output: &buf, Level: logger.LevelInfo, Format: "json"})
	counts := counter{}

	bus, err := messaging.NewInMemoryEventBus(messaging.InMemoryEventBusConfig{})
	require.NoError(t, err)
	defer bus.Close()
	require.NoError(t, NewAuditHandler(log, counts).Register(bus))

	require.NoError(t, bus.Publish(shared.NewFilmLikedEvent(7, 3)))
	require.NoError(t, bus.Publish(shared.NewFriendAddedEvent(1, 2)))
	require.NoError(t, bus.Publish(shared.NewEntityChangedEvent(shared.EventFilmCreated, 7, "Matrix")))
	require.NoError(t, bus.Publish(shared.NewFilmLikedEvent(7, 4)))

	assert.Equal(t, counter{
		"social.film_liked":   2,
		"social.friend_added": 1,
		"film.created":        1,
	}, counts)

	out := buf.String()
	assert.Contains(t, out, `"component":"audit"`)
	assert.Contains(t, out, `"event_type":"social.film_liked"`)
	assert.Contains(t, out, `"film_id":7`)
	assert.Contains(t, out, `"friend_id":2`)
	assert.Contains(t, out, `"name":"Matrix"`)
}

func TestAuditHandlerWithoutCounter(t *testing.T) {
	h := NewAuditHandler(nil, nil)
	assert.NoError(t, h.Handle(shared.NewEntityChangedEvent(shared.EventUserDeleted, 1, "")))
}
