package memory

import (
	"context"

	"github.com/vl4ks/filmorate/internal/domain/film"
	"github.com/vl4ks/filmorate/internal/domain/social"
	"github.com/vl4ks/filmorate/internal/domain/user"
)

// ── likes ───────────────────────────────────────────────────────────────────

type likeRepo struct{ s *Store }

// checkLikeEnds must be called with the lock held.
func (s *Store) checkLikeEnds(filmID, userID int64) error {
	if _, ok := s.films[filmID]; !ok {
		return film.NotFound(filmID)
	}
	if _, ok := s.users[userID]; !ok {
		return user.NotFound(userID)
	}
	return nil
}

func (r likeRepo) Add(ctx context.Context, filmID, userID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.checkLikeEnds(filmID, userID); err != nil {
		return err
	}
	likers := r.s.likes[filmID]
	if likers == nil {
		likers = make(idSet)
		r.s.likes[filmID] = likers
	}
	if _, dup := likers[userID]; dup {
		return social.LikeExists(filmID, userID)
	}
	likers[userID] = struct{}{}
	return nil
}

func (r likeRepo) Remove(ctx context.Context, filmID, userID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.checkLikeEnds(filmID, userID); err != nil {
		return err
	}
	if _, ok := r.s.likes[filmID][userID]; !ok {
		return social.LikeNotFound(filmID, userID)
	}
	delete(r.s.likes[filmID], userID)
	return nil
}

func (r likeRepo) Count(ctx context.Context, filmID int64) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if _, ok := r.s.films[filmID]; !ok {
		return 0, film.NotFound(filmID)
	}
	return len(r.s.likes[filmID]), nil
}

func (r likeRepo) CountMany(ctx context.Context, filmIDs []int64) (map[int64]int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make(map[int64]int, len(filmIDs))
	for _, id := range filmIDs {
		out[id] = len(r.s.likes[id])
	}
	return out, nil
}

func (r likeRepo) Popular(ctx context.Context, limit int) ([]social.FilmLikes, error) {
	if limit <= 0 {
		return []social.FilmLikes{}, nil
	}

	r.s.mu.RLock()
	counts := make([]social.FilmLikes, 0, len(r.s.films))
	for id := range r.s.films {
		counts = append(counts, social.FilmLikes{FilmID: id, Likes: len(r.s.likes[id])})
	}
	r.s.mu.RUnlock()

	return social.RankByLikes(counts, limit), nil
}

// ── friends ─────────────────────────────────────────────────────────────────

type friendRepo struct{ s *Store }

func (s *Store) checkUsers(ids ...int64) error {
	for _, id := range ids {
		if _, ok := s.users[id]; !ok {
			return user.NotFound(id)
		}
	}
	return nil
}

func (r friendRepo) Add(ctx context.Context, userID, friendID int64) error {
	edge := social.Friendship{UserID: userID, FriendID: friendID}
	if err := edge.Validate(); err != nil {
		return err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.checkUsers(userID, friendID); err != nil {
		return err
	}
	if _, dup := r.s.friends[userID][friendID]; dup {
		return social.FriendshipExists(userID, friendID)
	}
	r.s.link(edge)
	r.s.link(edge.Reverse())
	return nil
}

func (s *Store) link(edge social.Friendship) {
	set := s.friends[edge.UserID]
	if set == nil {
		set = make(idSet)
		s.friends[edge.UserID] = set
	}
	set[edge.FriendID] = struct{}{}
}

func (r friendRepo) Remove(ctx context.Context, userID, friendID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.checkUsers(userID, friendID); err != nil {
		return err
	}
	if _, ok := r.s.friends[userID][friendID]; !ok {
		return social.FriendshipNotFound(userID, friendID)
	}
	delete(r.s.friends[userID], friendID)
	delete(r.s.friends[friendID], userID)
	return nil
}

func (r friendRepo) FriendIDs(ctx context.Context, userID int64) ([]int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if err := r.s.checkUsers(userID); err != nil {
		return nil, err
	}
	return r.s.friends[userID].sorted(), nil
}

func (r friendRepo) CommonFriendIDs(ctx context.Context, userID, otherID int64) ([]int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if err := r.s.checkUsers(userID, otherID); err != nil {
		return nil, err
	}
	return social.IntersectIDs(r.s.friends[userID].sorted(), r.s.friends[otherID].sorted()), nil
}
