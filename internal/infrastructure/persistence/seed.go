package persistence

import (
	"context"
	"fmt"

	"github.com/vl4ks/filmorate/config"
	"github.com/vl4ks/filmorate/internal/domain/film"
	"github.com/vl4ks/filmorate/internal/domain/shared"
	"github.com/vl4ks/filmorate/pkg/logger"
)

// SeedResult reports how many reference rows were inserted.
type SeedResult struct {
	Genres  int
	Ratings int
}

// Seed inserts catalog entries whose names are not yet present.
// Running it twice inserts nothing the second time.
func Seed(ctx context.Context, store Store, catalog *config.Catalog, log *logger.Logger) (SeedResult, error) {
	var res SeedResult

	for _, name := range catalog.Genres {
		_, err := store.Genres().FindByName(ctx, name)
		if err == nil {
			continue
		}
		if !shared.IsNotFound(err) {
			return res, fmt.Errorf("lookup genre %q: %w", name, err)
		}
		g := &film.Genre{Name: name}
		if err := store.Genres().Create(ctx, g); err != nil && !shared.IsAlreadyExists(err) {
			return res, fmt.Errorf("create genre %q: %w", name, err)
		}
		res.Genres++
	}

	for _, name := range catalog.Ratings {
		_, err := store.Ratings().FindByName(ctx, name)
		if err == nil {
			continue
		}
		if !shared.IsNotFound(err) {
			return res, fmt.Errorf("lookup mpa %q: %w", name, err)
		}
		m := &film.MpaRating{Name: name}
		if err := store.Ratings().Create(ctx, m); err != nil && !shared.IsAlreadyExists(err) {
			return res, fmt.Errorf("create mpa %q: %w", name, err)
		}
		res.Ratings++
	}

	log.Info("reference catalog seeded",
		logger.Component("seed"),
		logger.Int("genres_added", res.Genres),
		logger.Int("ratings_added", res.Ratings),
	)
	return res, nil
}
