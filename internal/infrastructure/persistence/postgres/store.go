package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/vl4ks/filmorate/internal/domain/film"
	"github.com/vl4ks/filmorate/internal/domain/social"
	"github.com/vl4ks/filmorate/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// STORE
// ══════════════════════════════════════════════════════════════════════════════

// Store groups the PostgreSQL repositories over one connection pool.
type Store struct {
	conn *Connection

	films   *FilmRepository
	genres  *GenreRepository
	ratings *RatingRepository
	users   *UserRepository
	likes   *LikeRepository
	friends *FriendRepository
}

// NewStore creates a store over an open connection. The schema must already
// be migrated (see Migrator).
func NewStore(conn *Connection) *Store {
	return &Store{
		conn:    conn,
		films:   NewFilmRepository(conn),
		genres:  NewGenreRepository(conn),
		ratings: NewRatingRepository(conn),
		users:   NewUserRepository(conn),
		likes:   NewLikeRepository(conn),
		friends: NewFriendRepository(conn),
	}
}

// Backend names the implementation.
func (s *Store) Backend() string { return "postgres" }

func (s *Store) Films() film.Repository           { return s.films }
func (s *Store) Genres() film.GenreRepository     { return s.genres }
func (s *Store) Ratings() film.RatingRepository   { return s.ratings }
func (s *Store) Users() user.Repository           { return s.users }
func (s *Store) Likes() social.LikeRepository     { return s.likes }
func (s *Store) Friends() social.FriendRepository { return s.friends }

// Ping backs the readiness check.
func (s *Store) Ping(ctx context.Context) error {
	status, err := s.conn.Health(ctx)
	if err != nil {
		return err
	}
	return status.Err()
}

// Close closes the pool.
func (s *Store) Close() error {
	s.conn.Close()
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Shared helpers
// ─────────────────────────────────────────────────────────────────────────────

// lockRow takes a key-share lock on one row so that it cannot be deleted
// until the surrounding transaction ends. Reports false if the row is absent.
func lockRow(ctx context.Context, q Querier, table string, id int64) (bool, error) {
	var found int64
	err := q.QueryRow(ctx, "SELECT id FROM "+table+" WHERE id = $1 FOR KEY SHARE", id).Scan(&found)
	if IsNoRows(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// rowExists reports whether a row with the id exists, without locking.
func rowExists(ctx context.Context, q Querier, table string, id int64) (bool, error) {
	var exists bool
	err := q.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM "+table+" WHERE id = $1)", id).Scan(&exists)
	return exists, err
}

// collectIDs reads a single BIGINT column.
func collectIDs(rows pgx.Rows) ([]int64, error) {
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []int64{}
	}
	return ids, nil
}
