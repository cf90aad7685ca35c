// Package memory implements the filmorate store over in-process maps.
// All entities live in one arena guarded by a single RWMutex: entities are
// keyed by id and relations are kept as separate id sets, so a mutation that
// touches several tables (cascading delete, genre batch) is atomic.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/vl4ks/filmorate/internal/domain/film"
	"github.com/vl4ks/filmorate/internal/domain/social"
	"github.com/vl4ks/filmorate/internal/domain/user"
)

// Store is the in-memory backend.
type Store struct {
	mu sync.RWMutex

	films   map[int64]*film.Film
	genres  map[int64]*film.Genre
	ratings map[int64]*film.MpaRating
	users   map[int64]*user.User

	likes   map[int64]idSet // film -> users who liked it
	friends map[int64]idSet // user -> friends (both directions stored)

	filmSeq   atomic.Int64
	genreSeq  atomic.Int64
	ratingSeq atomic.Int64
	userSeq   atomic.Int64
}

type idSet map[int64]struct{}

func (s idSet) sorted() []int64 {
	return slices.Sorted(maps.Keys(s))
}

// New creates an empty store.
func New() *Store {
	return &Store{
		films:   make(map[int64]*film.Film),
		genres:  make(map[int64]*film.Genre),
		ratings: make(map[int64]*film.MpaRating),
		users:   make(map[int64]*user.User),
		likes:   make(map[int64]idSet),
		friends: make(map[int64]idSet),
	}
}

// Backend names the implementation.
func (s *Store) Backend() string { return "memory" }

// Films returns the film repository.
func (s *Store) Films() film.Repository { return filmRepo{s} }

// Genres returns the genre repository.
func (s *Store) Genres() film.GenreRepository { return genreRepo{s} }

// Ratings returns the MPA rating repository.
func (s *Store) Ratings() film.RatingRepository { return ratingRepo{s} }

// Users returns the user repository.
func (s *Store) Users() user.Repository { return userRepo{s} }

// Likes returns the like repository.
func (s *Store) Likes() social.LikeRepository { return likeRepo{s} }

// Friends returns the friendship repository.
func (s *Store) Friends() social.FriendRepository { return friendRepo{s} }

// Ping always succeeds.
func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

// Close is a no-op.
func (s *Store) Close() error { return nil }

func sortedValues[V any](m map[int64]V) []V {
	out := make([]V, 0, len(m))
	for _, id := range slices.Sorted(maps.Keys(m)) {
		out = append(out, m[id])
	}
	return out
}
