package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/vl4ks/filmorate/internal/domain/shared"
	"github.com/vl4ks/filmorate/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// USER REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// UserRepository implements user.Repository for PostgreSQL.
type UserRepository struct {
	conn *Connection
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(conn *Connection) *UserRepository {
	return &UserRepository{conn: conn}
}

const selectUser = `SELECT id, email, login, name, birthday FROM users`

// Create inserts a user and assigns its ID.
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	query := `
		INSERT INTO users (email, login, name, birthday)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := r.conn.QueryRow(ctx, query, u.Email, u.Login, u.Name, birthdayArg(u.Birthday)).Scan(&u.ID)
	if err != nil {
		return shared.Internal("user", "Create", err)
	}
	return nil
}

// Update locks the row, applies fn to a copy and writes the result back.
func (r *UserRepository) Update(ctx context.Context, id int64, fn user.UpdateFunc) (*user.User, error) {
	var updated *user.User

	err := r.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		current, err := scanUser(tx.QueryRow(ctx, selectUser+" WHERE id = $1 FOR UPDATE", id))
		if IsNoRows(err) {
			return user.NotFound(id)
		}
		if err != nil {
			return fmt.Errorf("failed to load user: %w", err)
		}

		next := current.Clone()
		if err := fn(next); err != nil {
			return err
		}
		next.ID = id

		query := `
			UPDATE users SET
				email = $1,
				login = $2,
				name = $3,
				birthday = $4
			WHERE id = $5
		`
		if _, err := tx.Exec(ctx, query, next.Email, next.Login, next.Name, birthdayArg(next.Birthday), id); err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}

		updated = next
		return nil
	})
	if err != nil {
		return nil, shared.Internal("user", "Update", err)
	}
	return updated, nil
}

// Delete removes the user; likes and friendships cascade.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.conn.Exec(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return shared.Internal("user", "Delete", err)
	}
	if tag.RowsAffected() == 0 {
		return user.NotFound(id)
	}
	return nil
}

// FindByID returns a user by ID.
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*user.User, error) {
	u, err := scanUser(r.conn.QueryRow(ctx, selectUser+" WHERE id = $1", id))
	if IsNoRows(err) {
		return nil, user.NotFound(id)
	}
	if err != nil {
		return nil, shared.Internal("user", "FindByID", err)
	}
	return u, nil
}

// FindByIDs returns the users that exist, in the order of ids.
func (r *UserRepository) FindByIDs(ctx context.Context, ids []int64) ([]*user.User, error) {
	if len(ids) == 0 {
		return []*user.User{}, nil
	}

	rows, err := r.conn.Query(ctx, selectUser+" WHERE id = ANY($1)", ids)
	if err != nil {
		return nil, shared.Internal("user", "FindByIDs", err)
	}
	found, err := collectUsers(rows)
	if err != nil {
		return nil, shared.Internal("user", "FindByIDs", err)
	}

	byID := make(map[int64]*user.User, len(found))
	for _, u := range found {
		byID[u.ID] = u
	}
	out := make([]*user.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := byID[id]; ok {
			out = append(out, u.Clone())
		}
	}
	return out, nil
}

// FindAll returns every user ordered by ID.
func (r *UserRepository) FindAll(ctx context.Context) ([]*user.User, error) {
	rows, err := r.conn.Query(ctx, selectUser+" ORDER BY id")
	if err != nil {
		return nil, shared.Internal("user", "FindAll", err)
	}
	users, err := collectUsers(rows)
	if err != nil {
		return nil, shared.Internal("user", "FindAll", err)
	}
	return users, nil
}

// birthdayArg maps an absent birthday to NULL.
func birthdayArg(d shared.Date) any {
	if d.IsZero() {
		return nil
	}
	return d.Time()
}

func scanUser(row pgx.Row) (*user.User, error) {
	var (
		u        user.User
		birthday *time.Time
	)
	if err := row.Scan(&u.ID, &u.Email, &u.Login, &u.Name, &birthday); err != nil {
		return nil, err
	}
	if birthday != nil {
		u.Birthday = shared.DateOf(*birthday)
	}
	return &u, nil
}

func collectUsers(rows pgx.Rows) ([]*user.User, error) {
	defer rows.Close()

	users := []*user.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
