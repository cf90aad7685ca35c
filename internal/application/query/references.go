package query

import (
	"context"

	"github.com/vl4ks/filmorate/internal/domain/film"
)

// ── жанры ───────────────────────────────────────────────────────────────────

// GetGenreHandler возвращает жанр по ID.
type GetGenreHandler struct {
	genres film.GenreRepository
}

// NewGetGenreHandler создаёт GetGenreHandler.
func NewGetGenreHandler(genres film.GenreRepository) *GetGenreHandler {
	return &GetGenreHandler{genres: genres}
}

func (h *GetGenreHandler) Handle(ctx context.Context, id int64) (*film.Genre, error) {
	return h.genres.FindByID(ctx, id)
}

// ListGenresHandler возвращает справочник жанров по возрастанию ID.
type ListGenresHandler struct {
	genres film.GenreRepository
}

// NewListGenresHandler создаёт ListGenresHandler.
func NewListGenresHandler(genres film.GenreRepository) *ListGenresHandler {
	return &ListGenresHandler{genres: genres}
}

func (h *ListGenresHandler) Handle(ctx context.Context) ([]*film.Genre, error) {
	return h.genres.FindAll(ctx)
}

// ── рейтинги MPA ────────────────────────────────────────────────────────────

// GetRatingHandler возвращает рейтинг MPA по ID.
type GetRatingHandler struct {
	ratings film.RatingRepository
}

// NewGetRatingHandler создаёт GetRatingHandler.
func NewGetRatingHandler(ratings film.RatingRepository) *GetRatingHandler {
	return &GetRatingHandler{ratings: ratings}
}

func (h *GetRatingHandler) Handle(ctx context.Context, id int64) (*film.MpaRating, error) {
	return h.ratings.FindByID(ctx, id)
}

// ListRatingsHandler возвращает справочник рейтингов по возрастанию ID.
type ListRatingsHandler struct {
	ratings film.RatingRepository
}

// NewListRatingsHandler создаёт ListRatingsHandler.
func NewListRatingsHandler(ratings film.RatingRepository) *ListRatingsHandler {
	return &ListRatingsHandler{ratings: ratings}
}

func (h *ListRatingsHandler) Handle(ctx context.Context) ([]*film.MpaRating, error) {
	return h.ratings.FindAll(ctx)
}
