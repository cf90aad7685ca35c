package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDown = errors.New("connection refused")

func fast(n int) []Option {
	return []Option{WithMaxAttempts(n), WithInitialDelay(time.Millisecond), WithMaxDelay(2 * time.Millisecond)}
}

func TestDoSucceedsAfterFailures(t *testing.T) {
	var calls, retries int
	opts := append(fast(5), WithOnRetry(func(int, error, time.Duration) { retries++ }))

	err := New(opts...).Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errDown
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 2, retries)
}

func TestDoGivesUp(t *testing.T) {
	calls := 0
	err := New(fast(3)...).Do(context.Background(), func(context.Context) error {
		calls++
		return errDown
	})
	assert.ErrorIs(t, err, errDown)
	assert.Equal(t, 3, calls)
}

func TestDoPermanentStops(t *testing.T) {
	calls := 0
	bad := errors.New("bad dsn")
	err := New(fast(5)...).Do(context.Background(), func(context.Context) error {
		calls++
		return Permanent(bad)
	})
	assert.Equal(t, bad, err)
	assert.Equal(t, 1, calls)
}

func TestDoHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := New(fast(5)...).Do(ctx, func(context.Context) error { return errDown })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDoWithData(t *testing.T) {
	calls := 0
	v, err := DoWithData(context.Background(), func(context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", errDown
		}
		return "ok", nil
	}, fast(2)...)
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
}

func TestDelayIsCapped(t *testing.T) {
	r := New(WithInitialDelay(time.Second), WithMaxDelay(3*time.Second), WithJitter(0))
	assert.Equal(t, time.Second, r.delay(1))
	assert.Equal(t, 2*time.Second, r.delay(2))
	assert.Equal(t, 3*time.Second, r.delay(5))
}
