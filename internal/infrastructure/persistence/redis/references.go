package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/vl4ks/filmorate/internal/domain/film"
)

// reference is one row of a catalog.
type reference struct {
	ID   int64
	Name string
}

// create returns 0 when the name is already taken. The id is allocated
// before the script runs, so a rejected name leaves a gap in the sequence,
// the same as films and users.
func (t referenceTable) create(ctx context.Context, c *redis.Client, name string) (int64, error) {
	id, err := c.Incr(ctx, t.seq).Result()
	if err != nil {
		return 0, err
	}
	ok, err := createReferenceScript.Run(ctx, c, []string{t.names, t.index, t.key(id)}, name, id).Int()
	if err != nil || ok == 0 {
		return 0, err
	}
	return id, nil
}

// load reads records in the order of ids, skipping missing ones.
func (t referenceTable) load(ctx context.Context, c *redis.Client, ids []int64) ([]reference, error) {
	out := make([]reference, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = t.key(id)
	}
	values, err := c.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	for i, v := range values {
		if name, ok := v.(string); ok {
			out = append(out, reference{ID: ids[i], Name: name})
		}
	}
	return out, nil
}

func (t referenceTable) all(ctx context.Context, c *redis.Client) ([]reference, error) {
	members, err := c.ZRange(ctx, t.index, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	ids, err := parseIDs(members)
	if err != nil {
		return nil, err
	}
	return t.load(ctx, c, ids)
}

// idByName returns 0 when no record has the name.
func (t referenceTable) idByName(ctx context.Context, c *redis.Client, name string) (int64, error) {
	id, err := c.HGet(ctx, t.names, name).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return id, err
}

// remove deletes the record and its name entry inside a MULTI.
func (t referenceTable) remove(ctx context.Context, pipe redis.Pipeliner, id int64, name string) {
	pipe.Del(ctx, t.key(id), t.films(id))
	pipe.HDel(ctx, t.names, name)
	pipe.ZRem(ctx, t.index, id)
}

// ══════════════════════════════════════════════════════════════════════════════
// GENRES
// ══════════════════════════════════════════════════════════════════════════════

type genreRepo struct {
	s *Store
	t referenceTable
}

func (r genreRepo) Create(ctx context.Context, g *film.Genre) error {
	id, err := r.t.create(ctx, r.s.client, g.Name)
	if err != nil {
		return storageErr("genre", "Create", err)
	}
	if id == 0 {
		return film.GenreExists(g.Name)
	}
	g.ID = id
	return nil
}

// Delete removes the genre and unlinks it from every film.
func (r genreRepo) Delete(ctx context.Context, id int64) error {
	k := r.s.keys

	err := r.s.client.Watch(ctx, func(tx *redis.Tx) error {
		name, err := tx.Get(ctx, r.t.key(id)).Result()
		if errors.Is(err, redis.Nil) {
			return film.GenreNotFound(id)
		}
		if err != nil {
			return err
		}
		members, err := tx.SMembers(ctx, r.t.films(id)).Result()
		if err != nil {
			return err
		}
		filmIDs, err := parseIDs(members)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			r.t.remove(ctx, pipe, id, name)
			for _, f := range filmIDs {
				pipe.SRem(ctx, k.filmGenres(f), id)
			}
			return nil
		})
		return err
	}, r.t.key(id), r.t.films(id))

	return storageErr("genre", "Delete", err)
}

func (r genreRepo) FindByID(ctx context.Context, id int64) (*film.Genre, error) {
	refs, err := r.t.load(ctx, r.s.client, []int64{id})
	if err != nil {
		return nil, storageErr("genre", "FindByID", err)
	}
	if len(refs) == 0 {
		return nil, film.GenreNotFound(id)
	}
	return &film.Genre{ID: refs[0].ID, Name: refs[0].Name}, nil
}

func (r genreRepo) FindByIDs(ctx context.Context, ids []int64) ([]*film.Genre, error) {
	refs, err := r.t.load(ctx, r.s.client, ids)
	if err != nil {
		return nil, storageErr("genre", "FindByIDs", err)
	}
	return toGenres(refs), nil
}

func (r genreRepo) FindByName(ctx context.Context, name string) (*film.Genre, error) {
	id, err := r.t.idByName(ctx, r.s.client, name)
	if err != nil {
		return nil, storageErr("genre", "FindByName", err)
	}
	if id == 0 {
		return nil, film.GenreNameNotFound(name)
	}
	return &film.Genre{ID: id, Name: name}, nil
}

func (r genreRepo) FindAll(ctx context.Context) ([]*film.Genre, error) {
	refs, err := r.t.all(ctx, r.s.client)
	if err != nil {
		return nil, storageErr("genre", "FindAll", err)
	}
	return toGenres(refs), nil
}

func toGenres(refs []reference) []*film.Genre {
	out := make([]*film.Genre, len(refs))
	for i, ref := range refs {
		out[i] = &film.Genre{ID: ref.ID, Name: ref.Name}
	}
	return out
}

// ══════════════════════════════════════════════════════════════════════════════
// MPA RATINGS
// ══════════════════════════════════════════════════════════════════════════════

type ratingRepo struct {
	s *Store
	t referenceTable
}

func (r ratingRepo) Create(ctx context.Context, m *film.MpaRating) error {
	id, err := r.t.create(ctx, r.s.client, m.Name)
	if err != nil {
		return storageErr("mpa", "Create", err)
	}
	if id == 0 {
		return film.RatingExists(m.Name)
	}
	m.ID = id
	return nil
}

// Delete refuses while any film still uses the rating.
func (r ratingRepo) Delete(ctx context.Context, id int64) error {
	err := r.s.client.Watch(ctx, func(tx *redis.Tx) error {
		name, err := tx.Get(ctx, r.t.key(id)).Result()
		if errors.Is(err, redis.Nil) {
			return film.RatingNotFound(id)
		}
		if err != nil {
			return err
		}
		used, err := tx.SCard(ctx, r.t.films(id)).Result()
		if err != nil {
			return err
		}
		if used > 0 {
			return film.RatingInUse(id)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			r.t.remove(ctx, pipe, id, name)
			return nil
		})
		return err
	}, r.t.key(id), r.t.films(id))

	return storageErr("mpa", "Delete", err)
}

func (r ratingRepo) FindByID(ctx context.Context, id int64) (*film.MpaRating, error) {
	refs, err := r.t.load(ctx, r.s.client, []int64{id})
	if err != nil {
		return nil, storageErr("mpa", "FindByID", err)
	}
	if len(refs) == 0 {
		return nil, film.RatingNotFound(id)
	}
	return &film.MpaRating{ID: refs[0].ID, Name: refs[0].Name}, nil
}

func (r ratingRepo) FindByName(ctx context.Context, name string) (*film.MpaRating, error) {
	id, err := r.t.idByName(ctx, r.s.client, name)
	if err != nil {
		return nil, storageErr("mpa", "FindByName", err)
	}
	if id == 0 {
		return nil, film.RatingNameNotFound(name)
	}
	return &film.MpaRating{ID: id, Name: name}, nil
}

func (r ratingRepo) FindAll(ctx context.Context) ([]*film.MpaRating, error) {
	refs, err := r.t.all(ctx, r.s.client)
	if err != nil {
		return nil, storageErr("mpa", "FindAll", err)
	}
	out := make([]*film.MpaRating, len(refs))
	for i, ref := range refs {
		out[i] = &film.MpaRating{ID: ref.ID, Name: ref.Name}
	}
	return out, nil
}
