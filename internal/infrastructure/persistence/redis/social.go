package redis

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/vl4ks/filmorate/internal/domain/film"
	"github.com/vl4ks/filmorate/internal/domain/social"
	"github.com/vl4ks/filmorate/internal/domain/user"
)

// ── likes ───────────────────────────────────────────────────────────────────

type likeRepo struct{ s *Store }

func (r likeRepo) run(ctx context.Context, script *redis.Script, filmID, userID int64) (int64, error) {
	k := r.s.keys
	keys := []string{k.film(filmID), k.user(userID), k.filmLikes(filmID), k.userLikes(userID), k.popularity()}
	return script.Run(ctx, r.s.client, keys, filmID, userID).Int64()
}

func (r likeRepo) Add(ctx context.Context, filmID, userID int64) error {
	code, err := r.run(ctx, addLikeScript, filmID, userID)
	if err != nil {
		return storageErr("social", "AddLike", err)
	}
	switch code {
	case scriptMissingFirst:
		return film.NotFound(filmID)
	case scriptMissingSecond:
		return user.NotFound(userID)
	case scriptNoop:
		return social.LikeExists(filmID, userID)
	}
	return nil
}

func (r likeRepo) Remove(ctx context.Context, filmID, userID int64) error {
	code, err := r.run(ctx, removeLikeScript, filmID, userID)
	if err != nil {
		return storageErr("social", "RemoveLike", err)
	}
	switch code {
	case scriptMissingFirst:
		return film.NotFound(filmID)
	case scriptMissingSecond:
		return user.NotFound(userID)
	case scriptNoop:
		return social.LikeNotFound(filmID, userID)
	}
	return nil
}

func (r likeRepo) Count(ctx context.Context, filmID int64) (int, error) {
	k := r.s.keys

	var (
		exists *redis.IntCmd
		count  *redis.IntCmd
	)
	_, err := r.s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		exists = pipe.Exists(ctx, k.film(filmID))
		count = pipe.SCard(ctx, k.filmLikes(filmID))
		return nil
	})
	if err != nil {
		return 0, storageErr("social", "CountLikes", err)
	}
	if exists.Val() == 0 {
		return 0, film.NotFound(filmID)
	}
	return int(count.Val()), nil
}

func (r likeRepo) CountMany(ctx context.Context, filmIDs []int64) (map[int64]int, error) {
	out := make(map[int64]int, len(filmIDs))
	if len(filmIDs) == 0 {
		return out, nil
	}

	cmds := make([]*redis.IntCmd, len(filmIDs))
	_, err := r.s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range filmIDs {
			cmds[i] = pipe.SCard(ctx, r.s.keys.filmLikes(id))
		}
		return nil
	})
	if err != nil {
		return nil, storageErr("social", "CountLikes", err)
	}
	for i, id := range filmIDs {
		out[id] = int(cmds[i].Val())
	}
	return out, nil
}

// Popular reads the whole popularity set and ranks it in process: the sorted
// set orders equal scores by member text, not by numeric id.
func (r likeRepo) Popular(ctx context.Context, limit int) ([]social.FilmLikes, error) {
	if limit <= 0 {
		return []social.FilmLikes{}, nil
	}

	entries, err := r.s.client.ZRangeWithScores(ctx, r.s.keys.popularity(), 0, -1).Result()
	if err != nil {
		return nil, storageErr("social", "Popular", err)
	}

	counts := make([]social.FilmLikes, 0, len(entries))
	for _, e := range entries {
		member, _ := e.Member.(string)
		id, err := strconv.ParseInt(member, 10, 64)
		if err != nil {
			return nil, storageErr("social", "Popular", err)
		}
		counts = append(counts, social.FilmLikes{FilmID: id, Likes: int(e.Score)})
	}
	return social.RankByLikes(counts, limit), nil
}

// ── friends ─────────────────────────────────────────────────────────────────

type friendRepo struct{ s *Store }

func (r friendRepo) run(ctx context.Context, script *redis.Script, userID, friendID int64) (int64, error) {
	k := r.s.keys
	keys := []string{k.user(userID), k.user(friendID), k.userFriends(userID), k.userFriends(friendID)}
	return script.Run(ctx, r.s.client, keys, userID, friendID).Int64()
}

func (r friendRepo) Add(ctx context.Context, userID, friendID int64) error {
	edge := social.Friendship{UserID: userID, FriendID: friendID}
	if err := edge.Validate(); err != nil {
		return err
	}

	code, err := r.run(ctx, addFriendScript, userID, friendID)
	if err != nil {
		return storageErr("social", "AddFriend", err)
	}
	switch code {
	case scriptMissingFirst:
		return user.NotFound(userID)
	case scriptMissingSecond:
		return user.NotFound(friendID)
	case scriptNoop:
		return social.FriendshipExists(userID, friendID)
	}
	return nil
}

func (r friendRepo) Remove(ctx context.Context, userID, friendID int64) error {
	code, err := r.run(ctx, removeFriendScript, userID, friendID)
	if err != nil {
		return storageErr("social", "RemoveFriend", err)
	}
	switch code {
	case scriptMissingFirst:
		return user.NotFound(userID)
	case scriptMissingSecond:
		return user.NotFound(friendID)
	case scriptNoop:
		return social.FriendshipNotFound(userID, friendID)
	}
	return nil
}

func (r friendRepo) FriendIDs(ctx context.Context, userID int64) ([]int64, error) {
	k := r.s.keys

	var (
		exists  *redis.IntCmd
		members *redis.StringSliceCmd
	)
	_, err := r.s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		exists = pipe.Exists(ctx, k.user(userID))
		members = pipe.SMembers(ctx, k.userFriends(userID))
		return nil
	})
	if err != nil {
		return nil, storageErr("social", "FriendIDs", err)
	}
	if exists.Val() == 0 {
		return nil, user.NotFound(userID)
	}
	ids, err := parseIDs(members.Val())
	if err != nil {
		return nil, storageErr("social", "FriendIDs", err)
	}
	return ids, nil
}

func (r friendRepo) CommonFriendIDs(ctx context.Context, userID, otherID int64) ([]int64, error) {
	k := r.s.keys

	var (
		userExists  *redis.IntCmd
		otherExists *redis.IntCmd
		members     *redis.StringSliceCmd
	)
	_, err := r.s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		userExists = pipe.Exists(ctx, k.user(userID))
		otherExists = pipe.Exists(ctx, k.user(otherID))
		members = pipe.SInter(ctx, k.userFriends(userID), k.userFriends(otherID))
		return nil
	})
	if err != nil {
		return nil, storageErr("social", "CommonFriendIDs", err)
	}
	if userExists.Val() == 0 {
		return nil, user.NotFound(userID)
	}
	if otherExists.Val() == 0 {
		return nil, user.NotFound(otherID)
	}
	ids, err := parseIDs(members.Val())
	if err != nil {
		return nil, storageErr("social", "CommonFriendIDs", err)
	}
	return ids, nil
}
