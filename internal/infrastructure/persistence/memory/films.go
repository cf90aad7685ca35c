package memory

import (
	"context"
	"slices"

	"github.com/vl4ks/filmorate/internal/domain/film"
)

type filmRepo struct{ s *Store }

// checkRefs must be called with the write lock held.
func (s *Store) checkFilmRefs(f *film.Film) error {
	if _, ok := s.ratings[f.MpaID]; !ok {
		return film.UnknownRating(f.MpaID)
	}
	for _, id := range f.GenreIDs {
		if _, ok := s.genres[id]; !ok {
			return film.UnknownGenre(id)
		}
	}
	return nil
}

func (r filmRepo) Create(ctx context.Context, f *film.Film) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	f.GenreIDs = film.NormalizeGenreIDs(f.GenreIDs)
	if err := r.s.checkFilmRefs(f); err != nil {
		return err
	}

	f.ID = r.s.filmSeq.Add(1)
	r.s.films[f.ID] = f.Clone()
	return nil
}

func (r filmRepo) Update(ctx context.Context, id int64, fn film.UpdateFunc) (*film.Film, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.films[id]
	if !ok {
		return nil, film.NotFound(id)
	}

	next := current.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	next.ID = id
	next.GenreIDs = film.NormalizeGenreIDs(next.GenreIDs)
	if err := r.s.checkFilmRefs(next); err != nil {
		return nil, err
	}

	r.s.films[id] = next
	return next.Clone(), nil
}

func (r filmRepo) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.films[id]; !ok {
		return film.NotFound(id)
	}
	delete(r.s.films, id)
	delete(r.s.likes, id)
	return nil
}

func (r filmRepo) SetGenres(ctx context.Context, id int64, genreIDs []int64) (*film.Film, error) {
	return r.Update(ctx, id, func(f *film.Film) error {
		f.GenreIDs = genreIDs
		return nil
	})
}

func (r filmRepo) SetRating(ctx context.Context, id int64, ratingID int64) (*film.Film, error) {
	return r.Update(ctx, id, func(f *film.Film) error {
		f.MpaID = ratingID
		return nil
	})
}

func (r filmRepo) FindByID(ctx context.Context, id int64) (*film.Film, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	f, ok := r.s.films[id]
	if !ok {
		return nil, film.NotFound(id)
	}
	return f.Clone(), nil
}

func (r filmRepo) FindByIDs(ctx context.Context, ids []int64) ([]*film.Film, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*film.Film, 0, len(ids))
	for _, id := range ids {
		if f, ok := r.s.films[id]; ok {
			out = append(out, f.Clone())
		}
	}
	return out, nil
}

func (r filmRepo) FindAll(ctx context.Context) ([]*film.Film, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := sortedValues(r.s.films)
	for i, f := range out {
		out[i] = f.Clone()
	}
	return out, nil
}

// ── reference tables ────────────────────────────────────────────────────────

type genreRepo struct{ s *Store }

func (r genreRepo) Create(ctx context.Context, g *film.Genre) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.genres {
		if existing.Name == g.Name {
			return film.GenreExists(g.Name)
		}
	}
	g.ID = r.s.genreSeq.Add(1)
	stored := *g
	r.s.genres[g.ID] = &stored
	return nil
}

func (r genreRepo) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.genres[id]; !ok {
		return film.GenreNotFound(id)
	}
	delete(r.s.genres, id)
	for _, f := range r.s.films {
		f.GenreIDs = slices.DeleteFunc(f.GenreIDs, func(g int64) bool { return g == id })
	}
	return nil
}

func (r genreRepo) FindByID(ctx context.Context, id int64) (*film.Genre, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	g, ok := r.s.genres[id]
	if !ok {
		return nil, film.GenreNotFound(id)
	}
	c := *g
	return &c, nil
}

func (r genreRepo) FindByIDs(ctx context.Context, ids []int64) ([]*film.Genre, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*film.Genre, 0, len(ids))
	for _, id := range ids {
		if g, ok := r.s.genres[id]; ok {
			c := *g
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r genreRepo) FindByName(ctx context.Context, name string) (*film.Genre, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, g := range r.s.genres {
		if g.Name == name {
			c := *g
			return &c, nil
		}
	}
	return nil, film.GenreNameNotFound(name)
}

func (r genreRepo) FindAll(ctx context.Context) ([]*film.Genre, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := sortedValues(r.s.genres)
	for i, g := range out {
		c := *g
		out[i] = &c
	}
	return out, nil
}

type ratingRepo struct{ s *Store }

func (r ratingRepo) Create(ctx context.Context, m *film.MpaRating) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.ratings {
		if existing.Name == m.Name {
			return film.RatingExists(m.Name)
		}
	}
	m.ID = r.s.ratingSeq.Add(1)
	stored := *m
	r.s.ratings[m.ID] = &stored
	return nil
}

func (r ratingRepo) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.ratings[id]; !ok {
		return film.RatingNotFound(id)
	}
	for _, f := range r.s.films {
		if f.MpaID == id {
			return film.RatingInUse(id)
		}
	}
	delete(r.s.ratings, id)
	return nil
}

func (r ratingRepo) FindByID(ctx context.Context, id int64) (*film.MpaRating, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	m, ok := r.s.ratings[id]
	if !ok {
		return nil, film.RatingNotFound(id)
	}
	c := *m
	return &c, nil
}

func (r ratingRepo) FindByName(ctx context.Context, name string) (*film.MpaRating, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, m := range r.s.ratings {
		if m.Name == name {
			c := *m
			return &c, nil
		}
	}
	return nil, film.RatingNameNotFound(name)
}

func (r ratingRepo) FindAll(ctx context.Context) ([]*film.MpaRating, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := sortedValues(r.s.ratings)
	for i, m := range out {
		c := *m
		out[i] = &c
	}
	return out, nil
}
