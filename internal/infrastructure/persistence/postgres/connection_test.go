package postgres_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vl4ks/filmorate/internal/infrastructure/persistence/postgres"
)

func TestHealthStatusErr(t *testing.T) {
	assert.NoError(t, (&postgres.HealthStatus{Healthy: true, MaxConns: 10}).Err())

	err := (&postgres.HealthStatus{Error: "connection refused"}).Err()
	assert.EqualError(t, err, "postgres: ping failed: connection refused")
}
