package postgres

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/vl4ks/filmorate/internal/domain/film"
	"github.com/vl4ks/filmorate/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// FILM REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// FilmRepository implements film.Repository for PostgreSQL.
type FilmRepository struct {
	conn *Connection
}

// NewFilmRepository creates a new FilmRepository.
func NewFilmRepository(conn *Connection) *FilmRepository {
	return &FilmRepository{conn: conn}
}

// Фильм вместе с отсортированным списком жанров.
const selectFilm = `
	SELECT f.id, f.name, f.description, f.release_date, f.duration, f.mpa_id,
	       COALESCE(array_agg(fg.genre_id ORDER BY fg.genre_id)
	                FILTER (WHERE fg.genre_id IS NOT NULL), '{}') AS genre_ids
	FROM films f
	LEFT JOIN film_genres fg ON fg.film_id = f.id
`

// ─────────────────────────────────────────────────────────────────────────────
// Commands
// ─────────────────────────────────────────────────────────────────────────────

// Create inserts the film and its genre links in one transaction.
func (r *FilmRepository) Create(ctx context.Context, f *film.Film) error {
	f.GenreIDs = film.NormalizeGenreIDs(f.GenreIDs)

	err := r.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		if err := checkFilmRefs(ctx, tx, f); err != nil {
			return err
		}

		query := `
			INSERT INTO films (name, description, release_date, duration, mpa_id)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`
		err := tx.QueryRow(ctx, query,
			f.Name,
			f.Description,
			f.ReleaseDate.Time(),
			f.Duration,
			f.MpaID,
		).Scan(&f.ID)
		if err != nil {
			return fmt.Errorf("failed to insert film: %w", err)
		}

		return replaceGenres(ctx, tx, f.ID, f.GenreIDs)
	})
	if err != nil {
		f.ID = 0
		return shared.Internal("film", "Create", err)
	}
	return nil
}

// Update locks the row, applies fn to a copy and writes the result back.
func (r *FilmRepository) Update(ctx context.Context, id int64, fn film.UpdateFunc) (*film.Film, error) {
	var updated *film.Film

	err := r.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		var locked int64
		err := tx.QueryRow(ctx, "SELECT id FROM films WHERE id = $1 FOR UPDATE", id).Scan(&locked)
		if IsNoRows(err) {
			return film.NotFound(id)
		}
		if err != nil {
			return fmt.Errorf("failed to lock film: %w", err)
		}

		current, err := scanFilm(tx.QueryRow(ctx, selectFilm+" WHERE f.id = $1 GROUP BY f.id", id))
		if err != nil {
			return err
		}

		next := current.Clone()
		if err := fn(next); err != nil {
			return err
		}
		next.ID = id
		next.GenreIDs = film.NormalizeGenreIDs(next.GenreIDs)

		if err := checkFilmRefs(ctx, tx, next); err != nil {
			return err
		}

		query := `
			UPDATE films SET
				name = $1,
				description = $2,
				release_date = $3,
				duration = $4,
				mpa_id = $5
			WHERE id = $6
		`
		_, err = tx.Exec(ctx, query,
			next.Name,
			next.Description,
			next.ReleaseDate.Time(),
			next.Duration,
			next.MpaID,
			id,
		)
		if err != nil {
			return fmt.Errorf("failed to update film: %w", err)
		}

		if !slices.Equal(current.GenreIDs, next.GenreIDs) {
			if err := replaceGenres(ctx, tx, id, next.GenreIDs); err != nil {
				return err
			}
		}

		updated = next
		return nil
	})
	if err != nil {
		return nil, shared.Internal("film", "Update", err)
	}
	return updated, nil
}

// Delete removes the film. Likes and genre links go with it (ON DELETE CASCADE).
func (r *FilmRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.conn.Exec(ctx, "DELETE FROM films WHERE id = $1", id)
	if err != nil {
		return shared.Internal("film", "Delete", err)
	}
	if tag.RowsAffected() == 0 {
		return film.NotFound(id)
	}
	return nil
}

// SetGenres replaces the genre set; an unknown genre aborts the whole batch.
func (r *FilmRepository) SetGenres(ctx context.Context, id int64, genreIDs []int64) (*film.Film, error) {
	return r.Update(ctx, id, func(f *film.Film) error {
		f.GenreIDs = genreIDs
		return nil
	})
}

// SetRating changes the MPA rating.
func (r *FilmRepository) SetRating(ctx context.Context, id int64, ratingID int64) (*film.Film, error) {
	return r.Update(ctx, id, func(f *film.Film) error {
		f.MpaID = ratingID
		return nil
	})
}

// ─────────────────────────────────────────────────────────────────────────────
// Queries
// ─────────────────────────────────────────────────────────────────────────────

// FindByID returns a film by ID.
func (r *FilmRepository) FindByID(ctx context.Context, id int64) (*film.Film, error) {
	f, err := scanFilm(r.conn.QueryRow(ctx, selectFilm+" WHERE f.id = $1 GROUP BY f.id", id))
	if IsNoRows(err) {
		return nil, film.NotFound(id)
	}
	if err != nil {
		return nil, shared.Internal("film", "FindByID", err)
	}
	return f, nil
}

// FindByIDs returns the films that exist, in the order of ids.
func (r *FilmRepository) FindByIDs(ctx context.Context, ids []int64) ([]*film.Film, error) {
	if len(ids) == 0 {
		return []*film.Film{}, nil
	}

	rows, err := r.conn.Query(ctx, selectFilm+" WHERE f.id = ANY($1) GROUP BY f.id", ids)
	if err != nil {
		return nil, shared.Internal("film", "FindByIDs", err)
	}
	found, err := collectFilms(rows)
	if err != nil {
		return nil, shared.Internal("film", "FindByIDs", err)
	}

	byID := make(map[int64]*film.Film, len(found))
	for _, f := range found {
		byID[f.ID] = f
	}
	out := make([]*film.Film, 0, len(ids))
	for _, id := range ids {
		if f, ok := byID[id]; ok {
			out = append(out, f.Clone())
		}
	}
	return out, nil
}

// FindAll returns every film ordered by ID.
func (r *FilmRepository) FindAll(ctx context.Context) ([]*film.Film, error) {
	rows, err := r.conn.Query(ctx, selectFilm+" GROUP BY f.id ORDER BY f.id")
	if err != nil {
		return nil, shared.Internal("film", "FindAll", err)
	}
	films, err := collectFilms(rows)
	if err != nil {
		return nil, shared.Internal("film", "FindAll", err)
	}
	return films, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Helper Methods
// ─────────────────────────────────────────────────────────────────────────────

// checkFilmRefs verifies the rating and every genre, locking them against
// concurrent deletion. The rating is checked first, then genres in order.
func checkFilmRefs(ctx context.Context, tx pgx.Tx, f *film.Film) error {
	ok, err := lockRow(ctx, tx, "mpa_ratings", f.MpaID)
	if err != nil {
		return fmt.Errorf("failed to check rating: %w", err)
	}
	if !ok {
		return film.UnknownRating(f.MpaID)
	}

	if len(f.GenreIDs) == 0 {
		return nil
	}

	rows, err := tx.Query(ctx, "SELECT id FROM genres WHERE id = ANY($1) FOR KEY SHARE", f.GenreIDs)
	if err != nil {
		return fmt.Errorf("failed to check genres: %w", err)
	}
	known, err := collectIDs(rows)
	if err != nil {
		return fmt.Errorf("failed to check genres: %w", err)
	}
	for _, id := range f.GenreIDs {
		if !slices.Contains(known, id) {
			return film.UnknownGenre(id)
		}
	}
	return nil
}

func replaceGenres(ctx context.Context, tx pgx.Tx, filmID int64, genreIDs []int64) error {
	if _, err := tx.Exec(ctx, "DELETE FROM film_genres WHERE film_id = $1", filmID); err != nil {
		return fmt.Errorf("failed to clear film genres: %w", err)
	}
	if len(genreIDs) == 0 {
		return nil
	}

	query := `
		INSERT INTO film_genres (film_id, genre_id)
		SELECT $1, g FROM unnest($2::bigint[]) AS g
	`
	if _, err := tx.Exec(ctx, query, filmID, genreIDs); err != nil {
		return fmt.Errorf("failed to insert film genres: %w", err)
	}
	return nil
}

func scanFilm(row pgx.Row) (*film.Film, error) {
	var (
		f           film.Film
		releaseDate time.Time
		genreIDs    []int64
	)
	err := row.Scan(
		&f.ID,
		&f.Name,
		&f.Description,
		&releaseDate,
		&f.Duration,
		&f.MpaID,
		&genreIDs,
	)
	if err != nil {
		return nil, err
	}

	f.ReleaseDate = shared.DateOf(releaseDate)
	f.GenreIDs = genreIDs
	if f.GenreIDs == nil {
		f.GenreIDs = []int64{}
	}
	return &f, nil
}

func collectFilms(rows pgx.Rows) ([]*film.Film, error) {
	defer rows.Close()

	films := []*film.Film{}
	for rows.Next() {
		f, err := scanFilm(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan film: %w", err)
		}
		films = append(films, f)
	}
	return films, rows.Err()
}
