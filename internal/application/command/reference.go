package command

import (
	"context"
	"strings"

	"github.com/vl4ks/filmorate/internal/domain/film"
	"github.com/vl4ks/filmorate/internal/domain/shared"
	"github.com/vl4ks/filmorate/pkg/logger"
)

// ── genres ──────────────────────────────────────────────────────────────────

// CreateGenreCommand adds a genre to the catalog. Names are unique.
type CreateGenreCommand struct {
	Name string
}

// CreateGenreHandler handles CreateGenreCommand.
type CreateGenreHandler struct {
	genres film.GenreRepository
	deps   Deps
}

// NewCreateGenreHandler creates a new CreateGenreHandler.
func NewCreateGenreHandler(genres film.GenreRepository, deps Deps) *CreateGenreHandler {
	return &CreateGenreHandler{genres: genres, deps: deps.withDefaults()}
}

// Handle executes the command.
func (h *CreateGenreHandler) Handle(ctx context.Context, cmd CreateGenreCommand) (*film.Genre, error) {
	g := &film.Genre{Name: strings.TrimSpace(cmd.Name)}
	if err := film.ValidateGenre(g).Err("genre", "Create"); err != nil {
		return nil, err
	}
	if err := h.genres.Create(ctx, g); err != nil {
		return nil, err
	}

	h.deps.Logger.Info("genre created", logger.GenreID(g.ID), logger.String("name", g.Name))
	h.deps.publish(shared.NewEntityChangedEvent(shared.EventGenreCreated, g.ID, g.Name))
	return g, nil
}

// DeleteGenreCommand removes a genre; films lose the link to it.
type DeleteGenreCommand struct {
	ID int64
}

// DeleteGenreHandler handles DeleteGenreCommand.
type DeleteGenreHandler struct {
	genres film.GenreRepository
	deps   Deps
}

// NewDeleteGenreHandler creates a new DeleteGenreHandler.
func NewDeleteGenreHandler(genres film.GenreRepository, deps Deps) *DeleteGenreHandler {
	return &DeleteGenreHandler{genres: genres, deps: deps.withDefaults()}
}

// Handle executes the command.
func (h *DeleteGenreHandler) Handle(ctx context.Context, cmd DeleteGenreCommand) error {
	if err := requireID("genre", "Delete", "id", cmd.ID); err != nil {
		return err
	}
	if err := h.genres.Delete(ctx, cmd.ID); err != nil {
		return err
	}

	h.deps.Logger.Info("genre deleted", logger.GenreID(cmd.ID))
	h.deps.publish(shared.NewEntityChangedEvent(shared.EventGenreDeleted, cmd.ID, ""))
	return nil
}

// ── MPA ratings ─────────────────────────────────────────────────────────────

// CreateRatingCommand adds an MPA rating to the catalog. Names are unique.
type CreateRatingCommand struct {
	Name string
}

// CreateRatingHandler handles CreateRatingCommand.
type CreateRatingHandler struct {
	ratings film.RatingRepository
	deps    Deps
}

// NewCreateRatingHandler creates a new CreateRatingHandler.
func NewCreateRatingHandler(ratings film.RatingRepository, deps Deps) *CreateRatingHandler {
	return &CreateRatingHandler{ratings: ratings, deps: deps.withDefaults()}
}

// Handle executes the command.
func (h *CreateRatingHandler) Handle(ctx context.Context, cmd CreateRatingCommand) (*film.MpaRating, error) {
	r := &film.MpaRating{Name: strings.TrimSpace(cmd.Name)}
	if err := film.ValidateRating(r).Err("mpa", "Create"); err != nil {
		return nil, err
	}
	if err := h.ratings.Create(ctx, r); err != nil {
		return nil, err
	}

	h.deps.Logger.Info("mpa rating created", logger.RatingID(r.ID), logger.String("name", r.Name))
	h.deps.publish(shared.NewEntityChangedEvent(shared.EventRatingCreated, r.ID, r.Name))
	return r, nil
}

// DeleteRatingCommand removes an MPA rating that no film references.
type DeleteRatingCommand struct {
	ID int64
}

// DeleteRatingHandler handles DeleteRatingCommand.
type DeleteRatingHandler struct {
	ratings film.RatingRepository
	deps    Deps
}

// NewDeleteRatingHandler creates a new DeleteRatingHandler.
func NewDeleteRatingHandler(ratings film.RatingRepository, deps Deps) *DeleteRatingHandler {
	return &DeleteRatingHandler{ratings: ratings, deps: deps.withDefaults()}
}

// Handle executes the command. A rating still used by films yields ErrInUse.
func (h *DeleteRatingHandler) Handle(ctx context.Context, cmd DeleteRatingCommand) error {
	if err := requireID("mpa", "Delete", "id", cmd.ID); err != nil {
		return err
	}
	if err := h.ratings.Delete(ctx, cmd.ID); err != nil {
		return err
	}

	h.deps.Logger.Info("mpa rating deleted", logger.RatingID(cmd.ID))
	h.deps.publish(shared.NewEntityChangedEvent(shared.EventRatingDeleted, cmd.ID, ""))
	return nil
}
