package memory_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/vl4ks/filmorate/internal/infrastructure/persistence"
	"github.com/vl4ks/filmorate/internal/infrastructure/persistence/memory"
	"github.com/vl4ks/filmorate/internal/infrastructure/persistence/storetest"
)

func TestMemoryStore(t *testing.T) {
	suite.Run(t, &storetest.Suite{
		NewStore: func(t *testing.T) persistence.Store {
			return memory.New()
		},
	})
}
