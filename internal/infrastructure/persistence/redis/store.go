package redis

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/vl4ks/filmorate/internal/domain/film"
	"github.com/vl4ks/filmorate/internal/domain/social"
	"github.com/vl4ks/filmorate/internal/domain/user"
)

// Store is the Redis backend.
type Store struct {
	client *redis.Client
	keys   keyspace
}

// NewStore wraps a connected client. Every key is prefixed with prefix.
// Scripts only touch the keys they declare, so behind a cluster proxy a
// hash-tagged prefix such as "{filmorate}:" keeps them in one slot.
func NewStore(client *redis.Client, prefix string) *Store {
	return &Store{client: client, keys: keyspace{prefix: prefix}}
}

// Backend names the implementation.
func (s *Store) Backend() string { return "redis" }

// Client returns the underlying client.
func (s *Store) Client() *redis.Client { return s.client }

func (s *Store) Films() film.Repository           { return filmRepo{s} }
func (s *Store) Genres() film.GenreRepository     { return genreRepo{s, s.keys.genres()} }
func (s *Store) Ratings() film.RatingRepository   { return ratingRepo{s, s.keys.ratings()} }
func (s *Store) Users() user.Repository           { return userRepo{s} }
func (s *Store) Likes() social.LikeRepository     { return likeRepo{s} }
func (s *Store) Friends() social.FriendRepository { return friendRepo{s} }

// Ping checks if Redis is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (s *Store) Close() error {
	return s.client.Close()
}
