package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/vl4ks/filmorate/internal/domain/shared"
	"github.com/vl4ks/filmorate/internal/domain/user"
)

type userRecord struct {
	ID       int64       `json:"id"`
	Email    string      `json:"email"`
	Login    string      `json:"login"`
	Name     string      `json:"name"`
	Birthday shared.Date `json:"birthday"`
}

func encodeUser(u *user.User) ([]byte, error) {
	return json.Marshal(userRecord{
		ID:       u.ID,
		Email:    u.Email,
		Login:    u.Login,
		Name:     u.Name,
		Birthday: u.Birthday,
	})
}

func decodeUser(data []byte) (*user.User, error) {
	var rec userRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return &user.User{
		ID:       rec.ID,
		Email:    rec.Email,
		Login:    rec.Login,
		Name:     rec.Name,
		Birthday: rec.Birthday,
	}, nil
}

type userRepo struct{ s *Store }

func (r userRepo) Create(ctx context.Context, u *user.User) error {
	k := r.s.keys

	id, err := r.s.client.Incr(ctx, k.seq("user")).Result()
	if err != nil {
		return storageErr("user", "Create", err)
	}
	stored := u.Clone()
	stored.ID = id
	data, err := encodeUser(stored)
	if err != nil {
		return storageErr("user", "Create", err)
	}

	_, err = r.s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, k.user(id), data, 0)
		pipe.ZAdd(ctx, k.users(), redis.Z{Score: float64(id), Member: id})
		return nil
	})
	if err != nil {
		return storageErr("user", "Create", err)
	}
	u.ID = id
	return nil
}

func (r userRepo) Update(ctx context.Context, id int64, fn user.UpdateFunc) (*user.User, error) {
	key := r.s.keys.user(id)
	var updated *user.User

	err := r.s.client.Watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return user.NotFound(id)
		}
		if err != nil {
			return err
		}
		current, err := decodeUser(data)
		if err != nil {
			return err
		}

		next := current.Clone()
		if err := fn(next); err != nil {
			return err
		}
		next.ID = id

		encoded, err := encodeUser(next)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, encoded, 0)
			return nil
		})
		if err != nil {
			return err
		}
		updated = next
		return nil
	}, key)

	if err != nil {
		return nil, storageErr("user", "Update", err)
	}
	return updated, nil
}

// Delete removes the user together with its likes and friendships.
func (r userRepo) Delete(ctx context.Context, id int64) error {
	k := r.s.keys

	err := r.s.client.Watch(ctx, func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, k.user(id)).Result()
		if err != nil {
			return err
		}
		if n == 0 {
			return user.NotFound(id)
		}

		liked, err := tx.SMembers(ctx, k.userLikes(id)).Result()
		if err != nil {
			return err
		}
		filmIDs, err := parseIDs(liked)
		if err != nil {
			return err
		}
		friends, err := tx.SMembers(ctx, k.userFriends(id)).Result()
		if err != nil {
			return err
		}
		friendIDs, err := parseIDs(friends)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, k.user(id), k.userLikes(id), k.userFriends(id))
			pipe.ZRem(ctx, k.users(), id)
			for _, f := range filmIDs {
				pipe.SRem(ctx, k.filmLikes(f), id)
				pipe.ZIncrBy(ctx, k.popularity(), -1, itoa(f))
			}
			for _, fr := range friendIDs {
				pipe.SRem(ctx, k.userFriends(fr), id)
			}
			return nil
		})
		return err
	}, k.user(id), k.userLikes(id), k.userFriends(id))

	return storageErr("user", "Delete", err)
}

func (r userRepo) FindByID(ctx context.Context, id int64) (*user.User, error) {
	users, err := r.load(ctx, []int64{id})
	if err != nil {
		return nil, storageErr("user", "FindByID", err)
	}
	if len(users) == 0 {
		return nil, user.NotFound(id)
	}
	return users[0], nil
}

func (r userRepo) FindByIDs(ctx context.Context, ids []int64) ([]*user.User, error) {
	users, err := r.load(ctx, ids)
	if err != nil {
		return nil, storageErr("user", "FindByIDs", err)
	}
	return users, nil
}

func (r userRepo) FindAll(ctx context.Context) ([]*user.User, error) {
	members, err := r.s.client.ZRange(ctx, r.s.keys.users(), 0, -1).Result()
	if err != nil {
		return nil, storageErr("user", "FindAll", err)
	}
	ids, err := parseIDs(members)
	if err != nil {
		return nil, storageErr("user", "FindAll", err)
	}
	users, err := r.load(ctx, ids)
	if err != nil {
		return nil, storageErr("user", "FindAll", err)
	}
	return users, nil
}

// load reads users in the order of ids, skipping missing ones.
func (r userRepo) load(ctx context.Context, ids []int64) ([]*user.User, error) {
	out := make([]*user.User, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.s.keys.user(id)
	}
	values, err := r.s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	for _, v := range values {
		data, ok := v.(string)
		if !ok {
			continue
		}
		u, err := decodeUser([]byte(data))
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}
