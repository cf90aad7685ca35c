package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/redis/go-redis/v9"

	"github.com/vl4ks/filmorate/internal/domain/film"
	"github.com/vl4ks/filmorate/internal/domain/shared"
)

// filmRecord is the JSON stored under film:{id}. Genres live in film:{id}:genres.
type filmRecord struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	ReleaseDate shared.Date `json:"releaseDate"`
	Duration    int         `json:"duration"`
	MpaID       int64       `json:"mpaId"`
}

func encodeFilm(f *film.Film) ([]byte, error) {
	return json.Marshal(filmRecord{
		ID:          f.ID,
		Name:        f.Name,
		Description: f.Description,
		ReleaseDate: f.ReleaseDate,
		Duration:    f.Duration,
		MpaID:       f.MpaID,
	})
}

func decodeFilm(data []byte, genres []string) (*film.Film, error) {
	var rec filmRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode film: %w", err)
	}
	genreIDs, err := parseIDs(genres)
	if err != nil {
		return nil, fmt.Errorf("decode film genres: %w", err)
	}
	return &film.Film{
		ID:          rec.ID,
		Name:        rec.Name,
		Description: rec.Description,
		ReleaseDate: rec.ReleaseDate,
		Duration:    rec.Duration,
		MpaID:       rec.MpaID,
		GenreIDs:    genreIDs,
	}, nil
}

type filmRepo struct{ s *Store }

// refKeys lists the reference records a film points at.
func (r filmRepo) refKeys(f *film.Film) []string {
	genres, ratings := r.s.keys.genres(), r.s.keys.ratings()
	keys := []string{ratings.key(f.MpaID)}
	for _, g := range f.GenreIDs {
		keys = append(keys, genres.key(g))
	}
	return keys
}

// checkRefs must run inside a WATCH on refKeys(f).
func (r filmRepo) checkRefs(ctx context.Context, tx *redis.Tx, f *film.Film) error {
	genres, ratings := r.s.keys.genres(), r.s.keys.ratings()

	n, err := tx.Exists(ctx, ratings.key(f.MpaID)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return film.UnknownRating(f.MpaID)
	}
	for _, g := range f.GenreIDs {
		n, err := tx.Exists(ctx, genres.key(g)).Result()
		if err != nil {
			return err
		}
		if n == 0 {
			return film.UnknownGenre(g)
		}
	}
	return nil
}

func (r filmRepo) Create(ctx context.Context, f *film.Film) error {
	k := r.s.keys
	f.GenreIDs = film.NormalizeGenreIDs(f.GenreIDs)

	err := r.s.client.Watch(ctx, func(tx *redis.Tx) error {
		if err := r.checkRefs(ctx, tx, f); err != nil {
			return err
		}

		id, err := tx.Incr(ctx, k.seq("film")).Result()
		if err != nil {
			return err
		}
		stored := f.Clone()
		stored.ID = id
		data, err := encodeFilm(stored)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, k.film(id), data, 0)
			pipe.ZAdd(ctx, k.films(), redis.Z{Score: float64(id), Member: id})
			pipe.ZAdd(ctx, k.popularity(), redis.Z{Score: 0, Member: id})
			pipe.SAdd(ctx, k.ratings().films(stored.MpaID), id)
			for _, g := range stored.GenreIDs {
				pipe.SAdd(ctx, k.filmGenres(id), g)
				pipe.SAdd(ctx, k.genres().films(g), id)
			}
			return nil
		})
		if err != nil {
			return err
		}
		f.ID = id
		return nil
	}, r.refKeys(f)...)

	return storageErr("film", "Create", err)
}

func (r filmRepo) Update(ctx context.Context, id int64, fn film.UpdateFunc) (*film.Film, error) {
	k := r.s.keys
	var updated *film.Film

	err := r.s.client.Watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, k.film(id)).Bytes()
		if errors.Is(err, redis.Nil) {
			return film.NotFound(id)
		}
		if err != nil {
			return err
		}
		genres, err := tx.SMembers(ctx, k.filmGenres(id)).Result()
		if err != nil {
			return err
		}
		current, err := decodeFilm(data, genres)
		if err != nil {
			return err
		}

		next := current.Clone()
		if err := fn(next); err != nil {
			return err
		}
		next.ID = id
		next.GenreIDs = film.NormalizeGenreIDs(next.GenreIDs)

		if err := tx.Watch(ctx, r.refKeys(next)...).Err(); err != nil {
			return err
		}
		if err := r.checkRefs(ctx, tx, next); err != nil {
			return err
		}

		encoded, err := encodeFilm(next)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, k.film(id), encoded, 0)
			if current.MpaID != next.MpaID {
				pipe.SRem(ctx, k.ratings().films(current.MpaID), id)
				pipe.SAdd(ctx, k.ratings().films(next.MpaID), id)
			}
			for _, g := range current.GenreIDs {
				if !slices.Contains(next.GenreIDs, g) {
					pipe.SRem(ctx, k.filmGenres(id), g)
					pipe.SRem(ctx, k.genres().films(g), id)
				}
			}
			for _, g := range next.GenreIDs {
				if !slices.Contains(current.GenreIDs, g) {
					pipe.SAdd(ctx, k.filmGenres(id), g)
					pipe.SAdd(ctx, k.genres().films(g), id)
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
		updated = next
		return nil
	}, k.film(id), k.filmGenres(id))

	if err != nil {
		return nil, storageErr("film", "Update", err)
	}
	return updated, nil
}

func (r filmRepo) Delete(ctx context.Context, id int64) error {
	k := r.s.keys

	err := r.s.client.Watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, k.film(id)).Bytes()
		if errors.Is(err, redis.Nil) {
			return film.NotFound(id)
		}
		if err != nil {
			return err
		}
		genres, err := tx.SMembers(ctx, k.filmGenres(id)).Result()
		if err != nil {
			return err
		}
		current, err := decodeFilm(data, genres)
		if err != nil {
			return err
		}
		likers, err := tx.SMembers(ctx, k.filmLikes(id)).Result()
		if err != nil {
			return err
		}
		likerIDs, err := parseIDs(likers)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, k.film(id), k.filmGenres(id), k.filmLikes(id))
			pipe.ZRem(ctx, k.films(), id)
			pipe.ZRem(ctx, k.popularity(), id)
			pipe.SRem(ctx, k.ratings().films(current.MpaID), id)
			for _, g := range current.GenreIDs {
				pipe.SRem(ctx, k.genres().films(g), id)
			}
			for _, u := range likerIDs {
				pipe.SRem(ctx, k.userLikes(u), id)
			}
			return nil
		})
		return err
	}, k.film(id), k.filmGenres(id), k.filmLikes(id))

	return storageErr("film", "Delete", err)
}

func (r filmRepo) SetGenres(ctx context.Context, id int64, genreIDs []int64) (*film.Film, error) {
	return r.Update(ctx, id, func(f *film.Film) error {
		f.GenreIDs = genreIDs
		return nil
	})
}

func (r filmRepo) SetRating(ctx context.Context, id int64, ratingID int64) (*film.Film, error) {
	return r.Update(ctx, id, func(f *film.Film) error {
		f.MpaID = ratingID
		return nil
	})
}

func (r filmRepo) FindByID(ctx context.Context, id int64) (*film.Film, error) {
	films, err := r.load(ctx, []int64{id})
	if err != nil {
		return nil, storageErr("film", "FindByID", err)
	}
	if len(films) == 0 {
		return nil, film.NotFound(id)
	}
	return films[0], nil
}

func (r filmRepo) FindByIDs(ctx context.Context, ids []int64) ([]*film.Film, error) {
	films, err := r.load(ctx, ids)
	if err != nil {
		return nil, storageErr("film", "FindByIDs", err)
	}
	return films, nil
}

func (r filmRepo) FindAll(ctx context.Context) ([]*film.Film, error) {
	members, err := r.s.client.ZRange(ctx, r.s.keys.films(), 0, -1).Result()
	if err != nil {
		return nil, storageErr("film", "FindAll", err)
	}
	ids, err := parseIDs(members)
	if err != nil {
		return nil, storageErr("film", "FindAll", err)
	}
	films, err := r.load(ctx, ids)
	if err != nil {
		return nil, storageErr("film", "FindAll", err)
	}
	return films, nil
}

// load reads films in the order of ids in one MULTI, skipping missing ones.
func (r filmRepo) load(ctx context.Context, ids []int64) ([]*film.Film, error) {
	out := make([]*film.Film, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	k := r.s.keys
	records := make([]*redis.StringCmd, len(ids))
	genres := make([]*redis.StringSliceCmd, len(ids))
	_, err := r.s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			records[i] = pipe.Get(ctx, k.film(id))
			genres[i] = pipe.SMembers(ctx, k.filmGenres(id))
		}
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}

	for i := range ids {
		data, err := records[i].Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, err
		}
		f, err := decodeFilm(data, genres[i].Val())
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}
