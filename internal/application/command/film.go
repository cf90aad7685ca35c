package command

import (
	"context"

	"github.com/vl4ks/filmorate/internal/domain/film"
	"github.com/vl4ks/filmorate/internal/domain/shared"
	"github.com/vl4ks/filmorate/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// CREATE FILM
// ══════════════════════════════════════════════════════════════════════════════

// CreateFilmCommand contains the data of a new film.
type CreateFilmCommand struct {
	Name        string
	Description string
	ReleaseDate shared.Date
	Duration    int
	MpaID       int64
	GenreIDs    []int64
}

func (c CreateFilmCommand) film() *film.Film {
	return &film.Film{
		Name:        c.Name,
		Description: c.Description,
		ReleaseDate: c.ReleaseDate,
		Duration:    c.Duration,
		MpaID:       c.MpaID,
		GenreIDs:    film.NormalizeGenreIDs(c.GenreIDs),
	}
}

// CreateFilmHandler validates and stores a new film.
type CreateFilmHandler struct {
	films film.Repository
	deps  Deps
}

// NewCreateFilmHandler creates a new CreateFilmHandler.
func NewCreateFilmHandler(films film.Repository, deps Deps) *CreateFilmHandler {
	return &CreateFilmHandler{films: films, deps: deps.withDefaults()}
}

// Handle executes the command and returns the stored film with its ID.
func (h *CreateFilmHandler) Handle(ctx context.Context, cmd CreateFilmCommand) (*film.Film, error) {
	f := cmd.film()
	if err := film.ValidateCreate(f, h.deps.today()).Err("film", "Create"); err != nil {
		return nil, err
	}

	// Ссылки на MPA и жанры проверяет хранилище в той же транзакции.
	if err := h.films.Create(ctx, f); err != nil {
		return nil, err
	}

	h.deps.Logger.Info("film created", logger.FilmID(f.ID), logger.String("name", f.Name))
	h.deps.publish(shared.NewEntityChangedEvent(shared.EventFilmCreated, f.ID, f.Name))
	return f, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// UPDATE FILM
// ══════════════════════════════════════════════════════════════════════════════

// UpdateFilmCommand carries a partial update; nil patch fields keep stored values.
type UpdateFilmCommand struct {
	ID    int64
	Patch film.Patch
}

// Validate validates the command.
func (c UpdateFilmCommand) Validate() error {
	return requireID("film", "Update", "id", c.ID)
}

// UpdateFilmHandler merges a patch into a stored film.
type UpdateFilmHandler struct {
	films film.Repository
	deps  Deps
}

// NewUpdateFilmHandler creates a new UpdateFilmHandler.
func NewUpdateFilmHandler(films film.Repository, deps Deps) *UpdateFilmHandler {
	return &UpdateFilmHandler{films: films, deps: deps.withDefaults()}
}

// Handle validates the merged film and stores it.
func (h *UpdateFilmHandler) Handle(ctx context.Context, cmd UpdateFilmCommand) (*film.Film, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	today := h.deps.today()

	updated, err := h.films.Update(ctx, cmd.ID, func(f *film.Film) error {
		if err := film.ValidateUpdate(f, cmd.Patch, today).Err("film", "Update"); err != nil {
			return err
		}
		cmd.Patch.ApplyTo(f)
		return nil
	})
	if err != nil {
		return nil, err
	}

	h.deps.Logger.Debug("film updated", logger.FilmID(updated.ID))
	h.deps.publish(shared.NewEntityChangedEvent(shared.EventFilmUpdated, updated.ID, updated.Name))
	return updated, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DELETE FILM
// ══════════════════════════════════════════════════════════════════════════════

// DeleteFilmCommand removes a film with its likes and genre links.
type DeleteFilmCommand struct {
	ID int64
}

// DeleteFilmHandler handles DeleteFilmCommand.
type DeleteFilmHandler struct {
	films film.Repository
	deps  Deps
}

// NewDeleteFilmHandler creates a new DeleteFilmHandler.
func NewDeleteFilmHandler(films film.Repository, deps Deps) *DeleteFilmHandler {
	return &DeleteFilmHandler{films: films, deps: deps.withDefaults()}
}

// Handle executes the command.
func (h *DeleteFilmHandler) Handle(ctx context.Context, cmd DeleteFilmCommand) error {
	if err := requireID("film", "Delete", "id", cmd.ID); err != nil {
		return err
	}
	if err := h.films.Delete(ctx, cmd.ID); err != nil {
		return err
	}

	h.deps.Logger.Info("film deleted", logger.FilmID(cmd.ID))
	h.deps.publish(shared.NewEntityChangedEvent(shared.EventFilmDeleted, cmd.ID, ""))
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// SET FILM GENRES / RATING
// ══════════════════════════════════════════════════════════════════════════════

// SetFilmGenresCommand replaces the genre set of a film. Either every genre
// exists and the whole set is stored, or nothing changes.
type SetFilmGenresCommand struct {
	FilmID   int64
	GenreIDs []int64
}

// Validate validates the command.
func (c SetFilmGenresCommand) Validate() error {
	if err := requireID("film", "SetGenres", "id", c.FilmID); err != nil {
		return err
	}
	for _, id := range c.GenreIDs {
		if err := requireID("film", "SetGenres", "genres", id); err != nil {
			return err
		}
	}
	return nil
}

// SetFilmGenresHandler handles SetFilmGenresCommand.
type SetFilmGenresHandler struct {
	films film.Repository
	deps  Deps
}

// NewSetFilmGenresHandler creates a new SetFilmGenresHandler.
func NewSetFilmGenresHandler(films film.Repository, deps Deps) *SetFilmGenresHandler {
	return &SetFilmGenresHandler{films: films, deps: deps.withDefaults()}
}

// Handle executes the command and returns the updated film.
func (h *SetFilmGenresHandler) Handle(ctx context.Context, cmd SetFilmGenresCommand) (*film.Film, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	updated, err := h.films.SetGenres(ctx, cmd.FilmID, film.NormalizeGenreIDs(cmd.GenreIDs))
	if err != nil {
		return nil, err
	}

	h.deps.Logger.Debug("film genres replaced", logger.FilmID(updated.ID), logger.Count(len(updated.GenreIDs)))
	h.deps.publish(shared.NewEntityChangedEvent(shared.EventFilmUpdated, updated.ID, updated.Name))
	return updated, nil
}

// SetFilmRatingCommand assigns an MPA rating to a film.
type SetFilmRatingCommand struct {
	FilmID int64
	MpaID  int64
}

// SetFilmRatingHandler handles SetFilmRatingCommand.
type SetFilmRatingHandler struct {
	films film.Repository
	deps  Deps
}

// NewSetFilmRatingHandler creates a new SetFilmRatingHandler.
func NewSetFilmRatingHandler(films film.Repository, deps Deps) *SetFilmRatingHandler {
	return &SetFilmRatingHandler{films: films, deps: deps.withDefaults()}
}

// Handle executes the command and returns the updated film.
func (h *SetFilmRatingHandler) Handle(ctx context.Context, cmd SetFilmRatingCommand) (*film.Film, error) {
	if err := requireID("film", "SetRating", "id", cmd.FilmID); err != nil {
		return nil, err
	}
	if err := requireID("film", "SetRating", "mpa", cmd.MpaID); err != nil {
		return nil, err
	}
	updated, err := h.films.SetRating(ctx, cmd.FilmID, cmd.MpaID)
	if err != nil {
		return nil, err
	}

	h.deps.Logger.Debug("film rating changed", logger.FilmID(updated.ID), logger.RatingID(updated.MpaID))
	h.deps.publish(shared.NewEntityChangedEvent(shared.EventFilmUpdated, updated.ID, updated.Name))
	return updated, nil
}
