package social

import (
	"cmp"
	"slices"
)

// DefaultPopularCount — размер рейтинга, если count не задан.
const DefaultPopularCount = 10

// FilmLikes — фильм и число его лайков.
type FilmLikes struct {
	FilmID int64
	Likes  int
}

// RankByLikes упорядочивает фильмы по убыванию лайков, при равенстве —
// по возрастанию ID, и обрезает результат до limit.
// При limit <= 0 возвращается пустой срез. Вход не изменяется.
func RankByLikes(counts []FilmLikes, limit int) []FilmLikes {
	if limit <= 0 {
		return []FilmLikes{}
	}

	ranked := slices.Clone(counts)
	slices.SortFunc(ranked, func(a, b FilmLikes) int {
		if c := cmp.Compare(b.Likes, a.Likes); c != 0 {
			return c
		}
		return cmp.Compare(a.FilmID, b.FilmID)
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// IntersectIDs возвращает общие элементы двух наборов ID по возрастанию.
func IntersectIDs(a, b []int64) []int64 {
	if len(a) > len(b) {
		a, b = b, a
	}
	seen := make(map[int64]struct{}, len(a))
	for _, id := range a {
		seen[id] = struct{}{}
	}

	out := make([]int64, 0, len(a))
	for _, id := range b {
		if _, ok := seen[id]; ok {
			out = append(out, id)
			delete(seen, id)
		}
	}
	slices.Sort(out)
	return out
}
