package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/vl4ks/filmorate/internal/domain/film"
	"github.com/vl4ks/filmorate/internal/domain/shared"
	"github.com/vl4ks/filmorate/internal/domain/social"
	"github.com/vl4ks/filmorate/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// LIKE REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// LikeRepository implements social.LikeRepository for PostgreSQL.
type LikeRepository struct {
	conn *Connection
}

// NewLikeRepository creates a new LikeRepository.
func NewLikeRepository(conn *Connection) *LikeRepository {
	return &LikeRepository{conn: conn}
}

// Add inserts a like after locking both ends.
func (r *LikeRepository) Add(ctx context.Context, filmID, userID int64) error {
	err := r.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		if err := lockLikeEnds(ctx, tx, filmID, userID); err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, `
			INSERT INTO likes (film_id, user_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, filmID, userID)
		if err != nil {
			return fmt.Errorf("failed to insert like: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return social.LikeExists(filmID, userID)
		}
		return nil
	})
	return shared.Internal("social", "AddLike", err)
}

// Remove deletes a like.
func (r *LikeRepository) Remove(ctx context.Context, filmID, userID int64) error {
	err := r.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		if err := lockLikeEnds(ctx, tx, filmID, userID); err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, "DELETE FROM likes WHERE film_id = $1 AND user_id = $2", filmID, userID)
		if err != nil {
			return fmt.Errorf("failed to delete like: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return social.LikeNotFound(filmID, userID)
		}
		return nil
	})
	return shared.Internal("social", "RemoveLike", err)
}

// Count returns the like count of an existing film.
func (r *LikeRepository) Count(ctx context.Context, filmID int64) (int, error) {
	var count int
	err := r.conn.QueryRow(ctx, `
		SELECT (SELECT COUNT(*) FROM likes WHERE film_id = f.id)
		FROM films f
		WHERE f.id = $1
	`, filmID).Scan(&count)
	if IsNoRows(err) {
		return 0, film.NotFound(filmID)
	}
	if err != nil {
		return 0, shared.Internal("social", "CountLikes", err)
	}
	return count, nil
}

// CountMany returns like counts keyed by film; missing films count zero.
func (r *LikeRepository) CountMany(ctx context.Context, filmIDs []int64) (map[int64]int, error) {
	out := make(map[int64]int, len(filmIDs))
	if len(filmIDs) == 0 {
		return out, nil
	}
	for _, id := range filmIDs {
		out[id] = 0
	}

	rows, err := r.conn.Query(ctx, `
		SELECT film_id, COUNT(*)
		FROM likes
		WHERE film_id = ANY($1)
		GROUP BY film_id
	`, filmIDs)
	if err != nil {
		return nil, shared.Internal("social", "CountLikes", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id    int64
			count int
		)
		if err := rows.Scan(&id, &count); err != nil {
			return nil, shared.Internal("social", "CountLikes", err)
		}
		out[id] = count
	}
	if err := rows.Err(); err != nil {
		return nil, shared.Internal("social", "CountLikes", err)
	}
	return out, nil
}

// Popular ranks films by like count, then by ID. Films without likes take part.
func (r *LikeRepository) Popular(ctx context.Context, limit int) ([]social.FilmLikes, error) {
	if limit <= 0 {
		return []social.FilmLikes{}, nil
	}

	rows, err := r.conn.Query(ctx, `
		SELECT f.id, COUNT(l.user_id) AS like_count
		FROM films f
		LEFT JOIN likes l ON l.film_id = f.id
		GROUP BY f.id
		ORDER BY like_count DESC, f.id ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, shared.Internal("social", "Popular", err)
	}
	defer rows.Close()

	// limit comes from the client; size by the rows actually returned.
	top := []social.FilmLikes{}
	for rows.Next() {
		var fl social.FilmLikes
		if err := rows.Scan(&fl.FilmID, &fl.Likes); err != nil {
			return nil, shared.Internal("social", "Popular", err)
		}
		top = append(top, fl)
	}
	if err := rows.Err(); err != nil {
		return nil, shared.Internal("social", "Popular", err)
	}
	return top, nil
}

func lockLikeEnds(ctx context.Context, tx pgx.Tx, filmID, userID int64) error {
	ok, err := lockRow(ctx, tx, "films", filmID)
	if err != nil {
		return fmt.Errorf("failed to check film: %w", err)
	}
	if !ok {
		return film.NotFound(filmID)
	}
	return lockUsers(ctx, tx, userID)
}

// ══════════════════════════════════════════════════════════════════════════════
// FRIEND REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// FriendRepository implements social.FriendRepository for PostgreSQL.
// Каждая дружба хранится двумя строками (u, f) и (f, u).
type FriendRepository struct {
	conn *Connection
}

// NewFriendRepository creates a new FriendRepository.
func NewFriendRepository(conn *Connection) *FriendRepository {
	return &FriendRepository{conn: conn}
}

// Add creates the friendship in both directions.
func (r *FriendRepository) Add(ctx context.Context, userID, friendID int64) error {
	edge := social.Friendship{UserID: userID, FriendID: friendID}
	if err := edge.Validate(); err != nil {
		return err
	}

	err := r.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		if err := lockUsers(ctx, tx, userID, friendID); err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, `
			INSERT INTO friends (user_id, friend_id) VALUES ($1, $2), ($2, $1)
			ON CONFLICT DO NOTHING
		`, userID, friendID)
		if err != nil {
			return fmt.Errorf("failed to insert friendship: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return social.FriendshipExists(userID, friendID)
		}
		return nil
	})
	return shared.Internal("social", "AddFriend", err)
}

// Remove deletes both rows of the friendship.
func (r *FriendRepository) Remove(ctx context.Context, userID, friendID int64) error {
	err := r.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		if err := lockUsers(ctx, tx, userID, friendID); err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, `
			DELETE FROM friends
			WHERE (user_id = $1 AND friend_id = $2)
			   OR (user_id = $2 AND friend_id = $1)
		`, userID, friendID)
		if err != nil {
			return fmt.Errorf("failed to delete friendship: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return social.FriendshipNotFound(userID, friendID)
		}
		return nil
	})
	return shared.Internal("social", "RemoveFriend", err)
}

// FriendIDs returns the user's friends ordered by ID.
func (r *FriendRepository) FriendIDs(ctx context.Context, userID int64) ([]int64, error) {
	if err := r.requireUsers(ctx, userID); err != nil {
		return nil, err
	}

	rows, err := r.conn.Query(ctx, "SELECT friend_id FROM friends WHERE user_id = $1 ORDER BY friend_id", userID)
	if err != nil {
		return nil, shared.Internal("social", "FriendIDs", err)
	}
	ids, err := collectIDs(rows)
	if err != nil {
		return nil, shared.Internal("social", "FriendIDs", err)
	}
	return ids, nil
}

// CommonFriendIDs returns the friends shared by two users ordered by ID.
func (r *FriendRepository) CommonFriendIDs(ctx context.Context, userID, otherID int64) ([]int64, error) {
	if err := r.requireUsers(ctx, userID, otherID); err != nil {
		return nil, err
	}

	rows, err := r.conn.Query(ctx, `
		SELECT a.friend_id
		FROM friends a
		JOIN friends b ON b.friend_id = a.friend_id
		WHERE a.user_id = $1 AND b.user_id = $2
		ORDER BY a.friend_id
	`, userID, otherID)
	if err != nil {
		return nil, shared.Internal("social", "CommonFriendIDs", err)
	}
	ids, err := collectIDs(rows)
	if err != nil {
		return nil, shared.Internal("social", "CommonFriendIDs", err)
	}
	return ids, nil
}

func (r *FriendRepository) requireUsers(ctx context.Context, ids ...int64) error {
	for _, id := range ids {
		ok, err := rowExists(ctx, r.conn, "users", id)
		if err != nil {
			return shared.Internal("social", "CheckUser", err)
		}
		if !ok {
			return user.NotFound(id)
		}
	}
	return nil
}

func lockUsers(ctx context.Context, tx pgx.Tx, ids ...int64) error {
	for _, id := range ids {
		ok, err := lockRow(ctx, tx, "users", id)
		if err != nil {
			return fmt.Errorf("failed to check user: %w", err)
		}
		if !ok {
			return user.NotFound(id)
		}
	}
	return nil
}
