package social

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vl4ks/filmorate/internal/domain/shared"
)

func TestRankByLikes(t *testing.T) {
	counts := []FilmLikes{
		{FilmID: 1, Likes: 2},
		{FilmID: 2, Likes: 1},
		{FilmID: 3, Likes: 3},
	}

	assert.Equal(t, []FilmLikes{{3, 3}, {1, 2}, {2, 1}}, RankByLikes(counts, DefaultPopularCount))
	assert.Equal(t, []FilmLikes{{3, 3}, {1, 2}}, RankByLikes(counts, 2))
	assert.Equal(t, FilmLikes{1, 2}, counts[0], "input must not be reordered")
}

func TestRankByLikes_TieBreakByID(t *testing.T) {
	counts := []FilmLikes{{FilmID: 9, Likes: 1}, {FilmID: 4, Likes: 0}, {FilmID: 2, Likes: 1}, {FilmID: 7, Likes: 0}}

	assert.Equal(t, []FilmLikes{{2, 1}, {9, 1}, {4, 0}, {7, 0}}, RankByLikes(counts, 10))
}

func TestRankByLikes_NonPositiveLimit(t *testing.T) {
	counts := []FilmLikes{{FilmID: 1, Likes: 5}}

	assert.Empty(t, RankByLikes(counts, 0))
	assert.Empty(t, RankByLikes(counts, -3))
	assert.NotNil(t, RankByLikes(counts, 0))
	assert.Empty(t, RankByLikes(nil, 10))
}

func TestIntersectIDs(t *testing.T) {
	assert.Equal(t, []int64{3}, IntersectIDs([]int64{2, 3}, []int64{1, 3}))
	assert.Equal(t, []int64{2, 5, 8}, IntersectIDs([]int64{8, 5, 2, 1}, []int64{2, 8, 5, 9, 11}))
	assert.Empty(t, IntersectIDs(nil, []int64{1}))
	assert.Empty(t, IntersectIDs([]int64{1}, []int64{2}))
}

func TestFriendship(t *testing.T) {
	f := Friendship{UserID: 1, FriendID: 2}
	assert.Equal(t, Friendship{UserID: 2, FriendID: 1}, f.Reverse())
	assert.NoError(t, f.Validate())
	assert.True(t, shared.IsValidation(Friendship{UserID: 3, FriendID: 3}.Validate()))
}

func TestEdgeErrors(t *testing.T) {
	assert.True(t, shared.IsAlreadyExists(LikeExists(1, 2)))
	assert.True(t, shared.IsNotFound(LikeNotFound(1, 2)))
	assert.True(t, shared.IsAlreadyExists(FriendshipExists(1, 2)))
	assert.True(t, shared.IsNotFound(FriendshipNotFound(1, 2)))
}
