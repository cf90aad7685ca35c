package redis

import (
	"errors"
	"slices"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/vl4ks/filmorate/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// KEY SPACE
// ══════════════════════════════════════════════════════════════════════════════

type keyspace struct {
	prefix string
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }

func (k keyspace) seq(kind string) string { return k.prefix + "seq:" + kind }

func (k keyspace) film(id int64) string       { return k.prefix + "film:" + itoa(id) }
func (k keyspace) filmGenres(id int64) string { return k.film(id) + ":genres" }
func (k keyspace) filmLikes(id int64) string  { return k.film(id) + ":likes" }
func (k keyspace) films() string              { return k.prefix + "films" }
func (k keyspace) popularity() string         { return k.prefix + "popularity" }

func (k keyspace) user(id int64) string        { return k.prefix + "user:" + itoa(id) }
func (k keyspace) userLikes(id int64) string   { return k.user(id) + ":likes" }
func (k keyspace) userFriends(id int64) string { return k.user(id) + ":friends" }
func (k keyspace) users() string               { return k.prefix + "users" }

// referenceTable describes the keys of one reference catalog (genres or MPA ratings).
type referenceTable struct {
	domain string // "genre" or "mpa"
	record string // prefix of a record key, e.g. "filmorate:genre:"
	index  string // sorted set of ids
	names  string // hash name -> id
	seq    string
}

func (k keyspace) genres() referenceTable  { return k.reference("genre", "genres") }
func (k keyspace) ratings() referenceTable { return k.reference("mpa", "mpas") }

func (k keyspace) reference(kind, index string) referenceTable {
	return referenceTable{
		domain: kind,
		record: k.prefix + kind + ":",
		index:  k.prefix + index,
		names:  k.prefix + kind + "-names",
		seq:    k.seq(kind),
	}
}

func (t referenceTable) key(id int64) string   { return t.record + itoa(id) }
func (t referenceTable) films(id int64) string { return t.key(id) + ":films" }

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// parseIDs converts set members into sorted ids.
func parseIDs(members []string) ([]int64, error) {
	ids := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

// storageErr maps Redis failures onto the domain taxonomy. A WATCH conflict
// is reported as a concurrent modification; domain errors pass through.
func storageErr(domain, op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, redis.TxFailedErr) {
		return shared.WrapError(domain, op, shared.ErrConcurrentModification,
			"Данные изменились во время операции, повторите запрос", err)
	}
	return shared.Internal(domain, op, err)
}
