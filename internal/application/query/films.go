package query

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/vl4ks/filmorate/internal/domain/film"
	"github.com/vl4ks/filmorate/internal/domain/social"
)

// ══════════════════════════════════════════════════════════════════════════════
// FILM VIEW
// Фильм вместе с рейтингом, жанрами и числом лайков — то, что отдаёт API.
// ══════════════════════════════════════════════════════════════════════════════

// FilmView — фильм с разрешёнными ссылками.
type FilmView struct {
	Film   *film.Film
	Mpa    film.MpaRating
	Genres []film.Genre // по возрастанию ID
	Likes  int
}

// ViewBuilder собирает FilmView для набора фильмов за один проход.
type ViewBuilder struct {
	genres  film.GenreRepository
	ratings film.RatingRepository
	likes   social.LikeRepository
}

// NewViewBuilder создаёт ViewBuilder над репозиториями справочников и лайков.
func NewViewBuilder(repos Repositories) *ViewBuilder {
	return &ViewBuilder{genres: repos.Genres, ratings: repos.Ratings, likes: repos.Likes}
}

// build читает справочники и счётчики лайков параллельно. Если known != nil,
// лайки берутся из него, а хранилище не опрашивается.
func (v *ViewBuilder) build(ctx context.Context, films []*film.Film, known map[int64]int) ([]FilmView, error) {
	out := make([]FilmView, 0, len(films))
	if len(films) == 0 {
		return out, nil
	}

	var (
		genres  []*film.Genre
		ratings []*film.MpaRating
		likes   = known
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		genres, err = v.genres.FindAll(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		ratings, err = v.ratings.FindAll(gctx)
		return err
	})
	if likes == nil {
		ids := make([]int64, len(films))
		for i, f := range films {
			ids[i] = f.ID
		}
		g.Go(func() error {
			var err error
			likes, err = v.likes.CountMany(gctx, ids)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	genreByID := make(map[int64]film.Genre, len(genres))
	for _, gr := range genres {
		genreByID[gr.ID] = *gr
	}
	ratingByID := make(map[int64]film.MpaRating, len(ratings))
	for _, r := range ratings {
		ratingByID[r.ID] = *r
	}

	for _, f := range films {
		view := FilmView{
			Film:   f,
			Mpa:    film.MpaRating{ID: f.MpaID},
			Genres: make([]film.Genre, 0, len(f.GenreIDs)),
			Likes:  likes[f.ID],
		}
		if r, ok := ratingByID[f.MpaID]; ok {
			view.Mpa = r
		}
		for _, id := range f.GenreIDs {
			if gr, ok := genreByID[id]; ok {
				view.Genres = append(view.Genres, gr)
			}
		}
		out = append(out, view)
	}
	return out, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// GET FILM / LIST FILMS
// ══════════════════════════════════════════════════════════════════════════════

// GetFilmHandler возвращает один фильм.
type GetFilmHandler struct {
	films film.Repository
	views *ViewBuilder
}

// NewGetFilmHandler создаёт GetFilmHandler.
func NewGetFilmHandler(films film.Repository, views *ViewBuilder) *GetFilmHandler {
	return &GetFilmHandler{films: films, views: views}
}

// Handle возвращает фильм или NotFound.
func (h *GetFilmHandler) Handle(ctx context.Context, id int64) (*FilmView, error) {
	f, err := h.films.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	views, err := h.views.build(ctx, []*film.Film{f}, nil)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// ListFilmsHandler возвращает все фильмы по возрастанию ID.
type ListFilmsHandler struct {
	films film.Repository
	views *ViewBuilder
}

// NewListFilmsHandler создаёт ListFilmsHandler.
func NewListFilmsHandler(films film.Repository, views *ViewBuilder) *ListFilmsHandler {
	return &ListFilmsHandler{films: films, views: views}
}

// Handle выполняет запрос.
func (h *ListFilmsHandler) Handle(ctx context.Context) ([]FilmView, error) {
	films, err := h.films.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return h.views.build(ctx, films, nil)
}

// ══════════════════════════════════════════════════════════════════════════════
// POPULAR FILMS
// ══════════════════════════════════════════════════════════════════════════════

// PopularFilmsQuery — параметры топа. Count == nil означает значение
// по умолчанию, неположительный Count даёт пустой список.
type PopularFilmsQuery struct {
	Count *int
}

// Limit возвращает итоговый размер топа.
func (q PopularFilmsQuery) Limit() int {
	if q.Count == nil {
		return social.DefaultPopularCount
	}
	return *q.Count
}

// PopularFilmsHandler возвращает фильмы по убыванию лайков, при равенстве —
// по возрастанию ID.
type PopularFilmsHandler struct {
	films film.Repository
	likes social.LikeRepository
	views *ViewBuilder
}

// NewPopularFilmsHandler создаёт PopularFilmsHandler.
func NewPopularFilmsHandler(films film.Repository, likes social.LikeRepository, views *ViewBuilder) *PopularFilmsHandler {
	return &PopularFilmsHandler{films: films, likes: likes, views: views}
}

// popularRereads — сколько раз топ перечитывается, если между Popular и
// FindByIDs часть фильмов успели удалить.
const popularRereads = 3

// Handle выполняет запрос. Топ и фильмы читаются разными запросами: фильм,
// удалённый между ними, выпадает из выдачи, и тогда топ запрашивается
// заново с запасом на выпавшие позиции. Если хранилище отдало меньше
// запрошенного, перечитывать нечего — фильмов просто нет.
func (h *PopularFilmsHandler) Handle(ctx context.Context, q PopularFilmsQuery) ([]FilmView, error) {
	limit := q.Limit()
	if limit <= 0 {
		return []FilmView{}, nil
	}

	request := limit
	for attempt := 0; ; attempt++ {
		ranked, err := h.likes.Popular(ctx, request)
		if err != nil {
			return nil, err
		}

		ids := make([]int64, len(ranked))
		counts := make(map[int64]int, len(ranked))
		for i, r := range ranked {
			ids[i] = r.FilmID
			counts[r.FilmID] = r.Likes
		}

		// FindByIDs сохраняет порядок ранжирования и пропускает удалённые фильмы.
		films, err := h.films.FindByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}

		missing := len(ranked) - len(films)
		if len(films) >= limit || len(ranked) < request || attempt == popularRereads || request > math.MaxInt-missing {
			if len(films) > limit {
				films = films[:limit]
			}
			return h.views.build(ctx, films, counts)
		}
		request += missing
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// LIKE COUNT
// ══════════════════════════════════════════════════════════════════════════════

// LikeCountResult — число лайков фильма.
type LikeCountResult struct {
	FilmID int64
	Likes  int
}

// LikeCountHandler возвращает число лайков. Для удалённого фильма — NotFound.
type LikeCountHandler struct {
	likes social.LikeRepository
}

// NewLikeCountHandler создаёт LikeCountHandler.
func NewLikeCountHandler(likes social.LikeRepository) *LikeCountHandler {
	return &LikeCountHandler{likes: likes}
}

// Handle выполняет запрос.
func (h *LikeCountHandler) Handle(ctx context.Context, filmID int64) (*LikeCountResult, error) {
	n, err := h.likes.Count(ctx, filmID)
	if err != nil {
		return nil, err
	}
	return &LikeCountResult{FilmID: filmID, Likes: n}, nil
}
