package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/vl4ks/filmorate/internal/domain/film"
	"github.com/vl4ks/filmorate/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GENRE REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// GenreRepository implements film.GenreRepository for PostgreSQL.
type GenreRepository struct {
	conn *Connection
}

// NewGenreRepository creates a new GenreRepository.
func NewGenreRepository(conn *Connection) *GenreRepository {
	return &GenreRepository{conn: conn}
}

// Create inserts a genre; names are unique.
func (r *GenreRepository) Create(ctx context.Context, g *film.Genre) error {
	err := r.conn.QueryRow(ctx, "INSERT INTO genres (name) VALUES ($1) RETURNING id", g.Name).Scan(&g.ID)
	if err != nil {
		if IsUniqueViolation(err) {
			return film.GenreExists(g.Name)
		}
		return shared.Internal("genre", "Create", err)
	}
	return nil
}

// Delete removes a genre; film links are dropped by ON DELETE CASCADE.
func (r *GenreRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.conn.Exec(ctx, "DELETE FROM genres WHERE id = $1", id)
	if err != nil {
		return shared.Internal("genre", "Delete", err)
	}
	if tag.RowsAffected() == 0 {
		return film.GenreNotFound(id)
	}
	return nil
}

// FindByID returns a genre by ID.
func (r *GenreRepository) FindByID(ctx context.Context, id int64) (*film.Genre, error) {
	g, err := scanGenre(r.conn.QueryRow(ctx, "SELECT id, name FROM genres WHERE id = $1", id))
	if IsNoRows(err) {
		return nil, film.GenreNotFound(id)
	}
	if err != nil {
		return nil, shared.Internal("genre", "FindByID", err)
	}
	return g, nil
}

// FindByIDs returns the genres that exist, in the order of ids.
func (r *GenreRepository) FindByIDs(ctx context.Context, ids []int64) ([]*film.Genre, error) {
	if len(ids) == 0 {
		return []*film.Genre{}, nil
	}

	rows, err := r.conn.Query(ctx, "SELECT id, name FROM genres WHERE id = ANY($1)", ids)
	if err != nil {
		return nil, shared.Internal("genre", "FindByIDs", err)
	}
	found, err := collectGenres(rows)
	if err != nil {
		return nil, shared.Internal("genre", "FindByIDs", err)
	}

	byID := make(map[int64]*film.Genre, len(found))
	for _, g := range found {
		byID[g.ID] = g
	}
	out := make([]*film.Genre, 0, len(ids))
	for _, id := range ids {
		if g, ok := byID[id]; ok {
			c := *g
			out = append(out, &c)
		}
	}
	return out, nil
}

// FindByName returns a genre by its unique name.
func (r *GenreRepository) FindByName(ctx context.Context, name string) (*film.Genre, error) {
	g, err := scanGenre(r.conn.QueryRow(ctx, "SELECT id, name FROM genres WHERE name = $1", name))
	if IsNoRows(err) {
		return nil, film.GenreNameNotFound(name)
	}
	if err != nil {
		return nil, shared.Internal("genre", "FindByName", err)
	}
	return g, nil
}

// FindAll returns every genre ordered by ID.
func (r *GenreRepository) FindAll(ctx context.Context) ([]*film.Genre, error) {
	rows, err := r.conn.Query(ctx, "SELECT id, name FROM genres ORDER BY id")
	if err != nil {
		return nil, shared.Internal("genre", "FindAll", err)
	}
	genres, err := collectGenres(rows)
	if err != nil {
		return nil, shared.Internal("genre", "FindAll", err)
	}
	return genres, nil
}

func scanGenre(row pgx.Row) (*film.Genre, error) {
	var g film.Genre
	if err := row.Scan(&g.ID, &g.Name); err != nil {
		return nil, err
	}
	return &g, nil
}

func collectGenres(rows pgx.Rows) ([]*film.Genre, error) {
	defer rows.Close()

	genres := []*film.Genre{}
	for rows.Next() {
		g, err := scanGenre(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan genre: %w", err)
		}
		genres = append(genres, g)
	}
	return genres, rows.Err()
}

// ══════════════════════════════════════════════════════════════════════════════
// RATING REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// RatingRepository implements film.RatingRepository for PostgreSQL.
type RatingRepository struct {
	conn *Connection
}

// NewRatingRepository creates a new RatingRepository.
func NewRatingRepository(conn *Connection) *RatingRepository {
	return &RatingRepository{conn: conn}
}

// Create inserts a rating; names are unique.
func (r *RatingRepository) Create(ctx context.Context, m *film.MpaRating) error {
	err := r.conn.QueryRow(ctx, "INSERT INTO mpa_ratings (name) VALUES ($1) RETURNING id", m.Name).Scan(&m.ID)
	if err != nil {
		if IsUniqueViolation(err) {
			return film.RatingExists(m.Name)
		}
		return shared.Internal("mpa", "Create", err)
	}
	return nil
}

// Delete removes a rating. Films reference it with ON DELETE RESTRICT, so a
// rating in use is reported as RatingInUse.
func (r *RatingRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.conn.Exec(ctx, "DELETE FROM mpa_ratings WHERE id = $1", id)
	if err != nil {
		if IsForeignKeyViolation(err) || IsRestrictViolation(err) {
			return film.RatingInUse(id)
		}
		return shared.Internal("mpa", "Delete", err)
	}
	if tag.RowsAffected() == 0 {
		return film.RatingNotFound(id)
	}
	return nil
}

// FindByID returns a rating by ID.
func (r *RatingRepository) FindByID(ctx context.Context, id int64) (*film.MpaRating, error) {
	m, err := scanRating(r.conn.QueryRow(ctx, "SELECT id, name FROM mpa_ratings WHERE id = $1", id))
	if IsNoRows(err) {
		return nil, film.RatingNotFound(id)
	}
	if err != nil {
		return nil, shared.Internal("mpa", "FindByID", err)
	}
	return m, nil
}

// FindByName returns a rating by its unique name.
func (r *RatingRepository) FindByName(ctx context.Context, name string) (*film.MpaRating, error) {
	m, err := scanRating(r.conn.QueryRow(ctx, "SELECT id, name FROM mpa_ratings WHERE name = $1", name))
	if IsNoRows(err) {
		return nil, film.RatingNameNotFound(name)
	}
	if err != nil {
		return nil, shared.Internal("mpa", "FindByName", err)
	}
	return m, nil
}

// FindAll returns every rating ordered by ID.
func (r *RatingRepository) FindAll(ctx context.Context) ([]*film.MpaRating, error) {
	rows, err := r.conn.Query(ctx, "SELECT id, name FROM mpa_ratings ORDER BY id")
	if err != nil {
		return nil, shared.Internal("mpa", "FindAll", err)
	}
	defer rows.Close()

	ratings := []*film.MpaRating{}
	for rows.Next() {
		m, err := scanRating(rows)
		if err != nil {
			return nil, shared.Internal("mpa", "FindAll", err)
		}
		ratings = append(ratings, m)
	}
	if err := rows.Err(); err != nil {
		return nil, shared.Internal("mpa", "FindAll", err)
	}
	return ratings, nil
}

func scanRating(row pgx.Row) (*film.MpaRating, error) {
	var m film.MpaRating
	if err := row.Scan(&m.ID, &m.Name); err != nil {
		return nil, err
	}
	return &m, nil
}
