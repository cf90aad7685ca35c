// Package storetest holds the behavioural contract every storage backend
// must satisfy. Backend packages run it from their own tests:
//
//	suite.Run(t, &storetest.Suite{NewStore: func(t *testing.T) persistence.Store { ... }})
package storetest

import (
	"context"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/vl4ks/filmorate/internal/domain/film"
	"github.com/vl4ks/filmorate/internal/domain/shared"
	"github.com/vl4ks/filmorate/internal/domain/social"
	"github.com/vl4ks/filmorate/internal/domain/user"
	"github.com/vl4ks/filmorate/internal/infrastructure/persistence"
)

// Suite is the shared backend contract.
type Suite struct {
	suite.Suite

	// NewStore returns an empty store. It is called before every test.
	NewStore func(t *testing.T) persistence.Store

	ctx   context.Context
	store persistence.Store

	ratings []*film.MpaRating
	genres  []*film.Genre
}

func (s *Suite) SetupTest() {
	s.ctx = context.Background()
	s.store = s.NewStore(s.T())

	s.ratings = nil
	for _, name := range []string{"G", "PG", "PG-13", "R", "NC-17"} {
		m := &film.MpaRating{Name: name}
		s.Require().NoError(s.store.Ratings().Create(s.ctx, m))
		s.ratings = append(s.ratings, m)
	}
	s.genres = nil
	for _, name := range []string{"Комедия", "Драма", "Мультфильм", "Триллер"} {
		g := &film.Genre{Name: name}
		s.Require().NoError(s.store.Genres().Create(s.ctx, g))
		s.genres = append(s.genres, g)
	}
}

func (s *Suite) TearDownTest() {
	if s.store != nil {
		s.NoError(s.store.Close())
	}
}

// ── helpers ─────────────────────────────────────────────────────────────────

func (s *Suite) newFilm(name string, genres ...int64) *film.Film {
	f := &film.Film{
		Name:        name,
		Description: "description of " + name,
		ReleaseDate: shared.MustParseDate("2000-01-01"),
		Duration:    100,
		MpaID:       s.ratings[0].ID,
		GenreIDs:    genres,
	}
	s.Require().NoError(s.store.Films().Create(s.ctx, f))
	return f
}

func (s *Suite) newUser(login string) *user.User {
	u := &user.User{
		Email:    login + "@example.com",
		Login:    login,
		Name:     login,
		Birthday: shared.MustParseDate("1990-05-05"),
	}
	s.Require().NoError(s.store.Users().Create(s.ctx, u))
	return u
}

func (s *Suite) like(filmID int64, users ...*user.User) {
	for _, u := range users {
		s.Require().NoError(s.store.Likes().Add(s.ctx, filmID, u.ID))
	}
}

func (s *Suite) befriend(a, b *user.User) {
	s.Require().NoError(s.store.Friends().Add(s.ctx, a.ID, b.ID))
}

// ── ping ────────────────────────────────────────────────────────────────────

func (s *Suite) TestPing() {
	s.NoError(s.store.Ping(s.ctx))
	s.NotEmpty(s.store.Backend())
}

// ── reference tables ────────────────────────────────────────────────────────

func (s *Suite) TestReferenceLookup() {
	all, err := s.store.Genres().FindAll(s.ctx)
	s.Require().NoError(err)
	s.Len(all, 4)
	s.Equal("Комедия", all[0].Name)
	s.Less(all[0].ID, all[1].ID)

	g, err := s.store.Genres().FindByName(s.ctx, "Драма")
	s.Require().NoError(err)
	s.Equal(s.genres[1].ID, g.ID)

	_, err = s.store.Genres().FindByName(s.ctx, "Нуар")
	s.True(shared.IsNotFound(err))

	byIDs, err := s.store.Genres().FindByIDs(s.ctx, []int64{s.genres[2].ID, 9999, s.genres[0].ID})
	s.Require().NoError(err)
	s.Require().Len(byIDs, 2)
	s.Equal("Мультфильм", byIDs[0].Name)

	m, err := s.store.Ratings().FindByID(s.ctx, s.ratings[2].ID)
	s.Require().NoError(err)
	s.Equal("PG-13", m.Name)

	_, err = s.store.Ratings().FindByID(s.ctx, 9999)
	s.True(shared.IsNotFound(err))

	ratings, err := s.store.Ratings().FindAll(s.ctx)
	s.Require().NoError(err)
	s.Len(ratings, 5)
}

func (s *Suite) TestReferenceDuplicateName() {
	err := s.store.Genres().Create(s.ctx, &film.Genre{Name: "Драма"})
	s.True(shared.IsAlreadyExists(err))

	err = s.store.Ratings().Create(s.ctx, &film.MpaRating{Name: "R"})
	s.True(shared.IsAlreadyExists(err))
}

func (s *Suite) TestGenreDeleteUnlinksFilms() {
	f := s.newFilm("Alien", s.genres[0].ID, s.genres[3].ID)

	s.Require().NoError(s.store.Genres().Delete(s.ctx, s.genres[0].ID))

	got, err := s.store.Films().FindByID(s.ctx, f.ID)
	s.Require().NoError(err)
	s.Equal([]int64{s.genres[3].ID}, got.GenreIDs)

	_, err = s.store.Genres().FindByID(s.ctx, s.genres[0].ID)
	s.True(shared.IsNotFound(err))
	s.True(shared.IsNotFound(s.store.Genres().Delete(s.ctx, s.genres[0].ID)))
}

func (s *Suite) TestRatingDeleteInUse() {
	s.newFilm("Alien")

	err := s.store.Ratings().Delete(s.ctx, s.ratings[0].ID)
	s.True(shared.IsInUse(err))

	s.NoError(s.store.Ratings().Delete(s.ctx, s.ratings[1].ID))
	s.True(shared.IsNotFound(s.store.Ratings().Delete(s.ctx, s.ratings[1].ID)))
}

// ── films ───────────────────────────────────────────────────────────────────

func (s *Suite) TestFilmCreateAndFind() {
	f := s.newFilm("Matrix", s.genres[3].ID, s.genres[1].ID, s.genres[3].ID)
	s.Positive(f.ID)

	got, err := s.store.Films().FindByID(s.ctx, f.ID)
	s.Require().NoError(err)
	s.Equal("Matrix", got.Name)
	s.Equal("description of Matrix", got.Description)
	s.True(got.ReleaseDate.Equal(shared.MustParseDate("2000-01-01")))
	s.Equal(100, got.Duration)
	s.Equal(s.ratings[0].ID, got.MpaID)
	s.Equal([]int64{s.genres[1].ID, s.genres[3].ID}, got.GenreIDs)

	_, err = s.store.Films().FindByID(s.ctx, f.ID+100)
	s.True(shared.IsNotFound(err))
}

func (s *Suite) TestFilmIDsIncreaseAndAreNotReused() {
	a := s.newFilm("A")
	b := s.newFilm("B")
	s.Greater(b.ID, a.ID)

	s.Require().NoError(s.store.Films().Delete(s.ctx, b.ID))
	c := s.newFilm("C")
	s.Greater(c.ID, b.ID)

	all, err := s.store.Films().FindAll(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 2)
	s.Equal(a.ID, all[0].ID)
	s.Equal(c.ID, all[1].ID)
}

func (s *Suite) TestFilmCreateRejectsUnknownReferences() {
	f := &film.Film{Name: "X", ReleaseDate: shared.MustParseDate("2000-01-01"), Duration: 1, MpaID: 9999}
	err := s.store.Films().Create(s.ctx, f)
	s.True(shared.IsValidation(err))
	s.Equal("mpa", shared.FieldOf(err))

	f = &film.Film{Name: "Y", ReleaseDate: shared.MustParseDate("2000-01-01"), Duration: 1,
		MpaID: s.ratings[0].ID, GenreIDs: []int64{s.genres[0].ID, 9999}}
	err = s.store.Films().Create(s.ctx, f)
	s.True(shared.IsValidation(err))
	s.Equal("genres", shared.FieldOf(err))

	all, err := s.store.Films().FindAll(s.ctx)
	s.Require().NoError(err)
	s.Empty(all, "failed create must not leave a partial film")
}

func (s *Suite) TestFilmUpdate() {
	f := s.newFilm("Matrix", s.genres[0].ID)

	updated, err := s.store.Films().Update(s.ctx, f.ID, func(cur *film.Film) error {
		cur.Name = "Matrix Reloaded"
		cur.MpaID = s.ratings[3].ID
		cur.GenreIDs = []int64{s.genres[2].ID, s.genres[1].ID}
		cur.ID = 12345
		return nil
	})
	s.Require().NoError(err)
	s.Equal(f.ID, updated.ID, "id is immutable")
	s.Equal("Matrix Reloaded", updated.Name)

	got, err := s.store.Films().FindByID(s.ctx, f.ID)
	s.Require().NoError(err)
	s.Equal(*updated, *got)
	s.Equal([]int64{s.genres[1].ID, s.genres[2].ID}, got.GenreIDs)
	s.Equal(s.ratings[3].ID, got.MpaID)
	s.Equal(100, got.Duration)
}

func (s *Suite) TestFilmUpdateFailuresLeaveFilmUntouched() {
	f := s.newFilm("Matrix", s.genres[0].ID)

	_, err := s.store.Films().Update(s.ctx, f.ID+100, func(*film.Film) error { return nil })
	s.True(shared.IsNotFound(err))

	rejected := shared.NewValidationError("film", "Update", "name", "bad")
	_, err = s.store.Films().Update(s.ctx, f.ID, func(cur *film.Film) error {
		cur.Name = "changed"
		return rejected
	})
	s.ErrorIs(err, rejected)

	_, err = s.store.Films().Update(s.ctx, f.ID, func(cur *film.Film) error {
		cur.Name = "changed"
		cur.GenreIDs = []int64{9999}
		return nil
	})
	s.True(shared.IsValidation(err))

	got, err := s.store.Films().FindByID(s.ctx, f.ID)
	s.Require().NoError(err)
	s.Equal("Matrix", got.Name)
	s.Equal([]int64{s.genres[0].ID}, got.GenreIDs)
}

func (s *Suite) TestSetGenresAllOrNothing() {
	f := s.newFilm("Matrix", s.genres[0].ID)

	_, err := s.store.Films().SetGenres(s.ctx, f.ID, []int64{s.genres[1].ID, 9999, s.genres[2].ID})
	s.True(shared.IsValidation(err))

	got, err := s.store.Films().FindByID(s.ctx, f.ID)
	s.Require().NoError(err)
	s.Equal([]int64{s.genres[0].ID}, got.GenreIDs)

	updated, err := s.store.Films().SetGenres(s.ctx, f.ID, []int64{s.genres[2].ID, s.genres[1].ID})
	s.Require().NoError(err)
	s.Equal([]int64{s.genres[1].ID, s.genres[2].ID}, updated.GenreIDs)

	cleared, err := s.store.Films().SetGenres(s.ctx, f.ID, nil)
	s.Require().NoError(err)
	s.Empty(cleared.GenreIDs)

	_, err = s.store.Films().SetGenres(s.ctx, f.ID+100, nil)
	s.True(shared.IsNotFound(err))
}

func (s *Suite) TestSetRating() {
	f := s.newFilm("Matrix")

	updated, err := s.store.Films().SetRating(s.ctx, f.ID, s.ratings[4].ID)
	s.Require().NoError(err)
	s.Equal(s.ratings[4].ID, updated.MpaID)

	_, err = s.store.Films().SetRating(s.ctx, f.ID, 9999)
	s.True(shared.IsValidation(err))

	got, err := s.store.Films().FindByID(s.ctx, f.ID)
	s.Require().NoError(err)
	s.Equal(s.ratings[4].ID, got.MpaID)
}

func (s *Suite) TestFindFilmsByIDsKeepsRequestOrder() {
	a := s.newFilm("A")
	b := s.newFilm("B")

	got, err := s.store.Films().FindByIDs(s.ctx, []int64{b.ID, 9999, a.ID})
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.Equal(b.ID, got[0].ID)
	s.Equal(a.ID, got[1].ID)
}

func (s *Suite) TestFilmDeleteCascadesLikes() {
	f := s.newFilm("Matrix")
	u := s.newUser("neo")
	s.like(f.ID, u)

	s.Require().NoError(s.store.Films().Delete(s.ctx, f.ID))

	_, err := s.store.Likes().Count(s.ctx, f.ID)
	s.True(shared.IsNotFound(err))

	top, err := s.store.Likes().Popular(s.ctx, 10)
	s.Require().NoError(err)
	s.Empty(top)

	s.True(shared.IsNotFound(s.store.Films().Delete(s.ctx, f.ID)))

	// the user survives and can like again
	g := s.newFilm("Alien")
	s.like(g.ID, u)
}

// ── users ───────────────────────────────────────────────────────────────────

func (s *Suite) TestUserCRUD() {
	u := s.newUser("neo")
	s.Positive(u.ID)

	got, err := s.store.Users().FindByID(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Equal(*u, *got)

	updated, err := s.store.Users().Update(s.ctx, u.ID, func(cur *user.User) error {
		cur.Name = "Thomas"
		cur.Birthday = shared.Date{}
		return nil
	})
	s.Require().NoError(err)
	s.Equal("Thomas", updated.Name)
	s.True(updated.Birthday.IsZero())

	got, err = s.store.Users().FindByID(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Equal(*updated, *got)

	_, err = s.store.Users().Update(s.ctx, u.ID+100, func(*user.User) error { return nil })
	s.True(shared.IsNotFound(err))

	other := s.newUser("trinity")
	all, err := s.store.Users().FindAll(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 2)
	s.Equal(u.ID, all[0].ID)

	byIDs, err := s.store.Users().FindByIDs(s.ctx, []int64{other.ID, u.ID})
	s.Require().NoError(err)
	s.Require().Len(byIDs, 2)
	s.Equal("trinity", byIDs[0].Login)

	s.Require().NoError(s.store.Users().Delete(s.ctx, u.ID))
	_, err = s.store.Users().FindByID(s.ctx, u.ID)
	s.True(shared.IsNotFound(err))
	s.True(shared.IsNotFound(s.store.Users().Delete(s.ctx, u.ID)))
}

func (s *Suite) TestLongTextFields() {
	ctx := s.ctx

	genre := &film.Genre{Name: strings.Repeat("Ж", 100)}
	s.Require().NoError(s.store.Genres().Create(ctx, genre))
	rating := &film.MpaRating{Name: strings.Repeat("R", 100)}
	s.Require().NoError(s.store.Ratings().Create(ctx, rating))

	f := &film.Film{
		Name:        strings.Repeat("Фильм", 100),
		Description: strings.Repeat("д", film.MaxDescriptionLength),
		ReleaseDate: shared.MustParseDate("2000-01-01"),
		Duration:    100,
		MpaID:       rating.ID,
		GenreIDs:    []int64{genre.ID},
	}
	s.Require().NoError(s.store.Films().Create(ctx, f))
	gotFilm, err := s.store.Films().FindByID(ctx, f.ID)
	s.Require().NoError(err)
	s.Equal(f.Name, gotFilm.Name)
	s.Equal(f.Description, gotFilm.Description)

	long := strings.Repeat("x", 300)
	u := &user.User{Email: long + "@example.com", Login: long, Name: strings.Repeat("Имя", 100)}
	s.Require().NoError(s.store.Users().Create(ctx, u))
	gotUser, err := s.store.Users().FindByID(ctx, u.ID)
	s.Require().NoError(err)
	s.Equal(*u, *gotUser)
}

func (s *Suite) TestUserDeleteCascadesEdges() {
	neo := s.newUser("neo")
	trinity := s.newUser("trinity")
	morpheus := s.newUser("morpheus")
	f := s.newFilm("Matrix")

	s.like(f.ID, neo, trinity)
	s.befriend(neo, trinity)
	s.befriend(neo, morpheus)

	s.Require().NoError(s.store.Users().Delete(s.ctx, neo.ID))

	n, err := s.store.Likes().Count(s.ctx, f.ID)
	s.Require().NoError(err)
	s.Equal(1, n)

	friends, err := s.store.Friends().FriendIDs(s.ctx, trinity.ID)
	s.Require().NoError(err)
	s.Empty(friends)

	friends, err = s.store.Friends().FriendIDs(s.ctx, morpheus.ID)
	s.Require().NoError(err)
	s.Empty(friends)
}

// ── likes ───────────────────────────────────────────────────────────────────

func (s *Suite) TestLikeLifecycle() {
	f := s.newFilm("Matrix")
	u := s.newUser("neo")

	s.Require().NoError(s.store.Likes().Add(s.ctx, f.ID, u.ID))
	n, err := s.store.Likes().Count(s.ctx, f.ID)
	s.Require().NoError(err)
	s.Equal(1, n)

	s.True(shared.IsAlreadyExists(s.store.Likes().Add(s.ctx, f.ID, u.ID)))

	s.Require().NoError(s.store.Likes().Remove(s.ctx, f.ID, u.ID))
	n, err = s.store.Likes().Count(s.ctx, f.ID)
	s.Require().NoError(err)
	s.Equal(0, n)

	s.True(shared.IsNotFound(s.store.Likes().Remove(s.ctx, f.ID, u.ID)))
}

func (s *Suite) TestLikeRequiresExistingEnds() {
	f := s.newFilm("Matrix")
	u := s.newUser("neo")

	err := s.store.Likes().Add(s.ctx, f.ID+100, u.ID)
	s.True(shared.IsNotFound(err))
	s.Contains(shared.MessageOf(err), "Фильм")

	err = s.store.Likes().Add(s.ctx, f.ID, u.ID+100)
	s.True(shared.IsNotFound(err))
	s.Contains(shared.MessageOf(err), "Пользователь")

	err = s.store.Likes().Remove(s.ctx, f.ID, u.ID+100)
	s.True(shared.IsNotFound(err))
}

func (s *Suite) TestCountMany() {
	a := s.newFilm("A")
	b := s.newFilm("B")
	s.like(a.ID, s.newUser("u1"), s.newUser("u2"))

	counts, err := s.store.Likes().CountMany(s.ctx, []int64{a.ID, b.ID, 9999})
	s.Require().NoError(err)
	s.Equal(2, counts[a.ID])
	s.Equal(0, counts[b.ID])
	s.Equal(0, counts[9999])
}

func (s *Suite) TestPopular() {
	f1 := s.newFilm("F1")
	f2 := s.newFilm("F2")
	f3 := s.newFilm("F3")
	u1, u2, u3 := s.newUser("u1"), s.newUser("u2"), s.newUser("u3")

	s.like(f1.ID, u1, u2)
	s.like(f2.ID, u1)
	s.like(f3.ID, u1, u2, u3)

	top, err := s.store.Likes().Popular(s.ctx, 10)
	s.Require().NoError(err)
	s.Equal([]social.FilmLikes{{FilmID: f3.ID, Likes: 3}, {FilmID: f1.ID, Likes: 2}, {FilmID: f2.ID, Likes: 1}}, top)

	top, err = s.store.Likes().Popular(s.ctx, 2)
	s.Require().NoError(err)
	s.Equal([]social.FilmLikes{{FilmID: f3.ID, Likes: 3}, {FilmID: f1.ID, Likes: 2}}, top)

	top, err = s.store.Likes().Popular(s.ctx, 0)
	s.Require().NoError(err)
	s.Empty(top)

	// unliking reorders immediately
	s.Require().NoError(s.store.Likes().Remove(s.ctx, f3.ID, u1.ID))
	s.Require().NoError(s.store.Likes().Remove(s.ctx, f3.ID, u2.ID))
	top, err = s.store.Likes().Popular(s.ctx, 3)
	s.Require().NoError(err)
	s.Equal([]social.FilmLikes{{FilmID: f1.ID, Likes: 2}, {FilmID: f2.ID, Likes: 1}, {FilmID: f3.ID, Likes: 1}}, top)
}

func (s *Suite) TestPopularWithHugeLimit() {
	f1 := s.newFilm("F1")
	f2 := s.newFilm("F2")
	s.like(f2.ID, s.newUser("u1"))

	for _, limit := range []int{1_000_000_000, math.MaxInt} {
		top, err := s.store.Likes().Popular(s.ctx, limit)
		s.Require().NoError(err)
		s.Equal([]social.FilmLikes{{FilmID: f2.ID, Likes: 1}, {FilmID: f1.ID, Likes: 0}}, top)
	}
}

func (s *Suite) TestPopularIncludesUnlikedFilmsByID() {
	a := s.newFilm("A")
	b := s.newFilm("B")
	c := s.newFilm("C")
	s.like(c.ID, s.newUser("u1"))

	top, err := s.store.Likes().Popular(s.ctx, 10)
	s.Require().NoError(err)
	s.Equal([]social.FilmLikes{{FilmID: c.ID, Likes: 1}, {FilmID: a.ID, Likes: 0}, {FilmID: b.ID, Likes: 0}}, top)
}

func (s *Suite) TestConcurrentLikes() {
	f := s.newFilm("Matrix")
	const n = 20
	users := make([]*user.User, n)
	for i := range users {
		users[i] = s.newUser("user" + string(rune('a'+i)))
	}

	var wg sync.WaitGroup
	errs := make(chan error, 2*n)
	for _, u := range users {
		wg.Add(2)
		for range 2 {
			go func(userID int64) {
				defer wg.Done()
				errs <- s.store.Likes().Add(s.ctx, f.ID, userID)
			}(u.ID)
		}
	}
	wg.Wait()
	close(errs)

	var ok, dup int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case shared.IsAlreadyExists(err):
			dup++
		default:
			s.Failf("unexpected error", "%v", err)
		}
	}
	s.Equal(n, ok)
	s.Equal(n, dup)

	count, err := s.store.Likes().Count(s.ctx, f.ID)
	s.Require().NoError(err)
	s.Equal(n, count)
}

// ── friends ─────────────────────────────────────────────────────────────────

func (s *Suite) TestFriendshipIsSymmetric() {
	a, b := s.newUser("a"), s.newUser("b")

	s.befriend(a, b)

	ids, err := s.store.Friends().FriendIDs(s.ctx, a.ID)
	s.Require().NoError(err)
	s.Equal([]int64{b.ID}, ids)

	ids, err = s.store.Friends().FriendIDs(s.ctx, b.ID)
	s.Require().NoError(err)
	s.Equal([]int64{a.ID}, ids)

	s.True(shared.IsAlreadyExists(s.store.Friends().Add(s.ctx, a.ID, b.ID)))
	s.True(shared.IsAlreadyExists(s.store.Friends().Add(s.ctx, b.ID, a.ID)))

	s.Require().NoError(s.store.Friends().Remove(s.ctx, b.ID, a.ID))
	ids, err = s.store.Friends().FriendIDs(s.ctx, a.ID)
	s.Require().NoError(err)
	s.Empty(ids)

	s.True(shared.IsNotFound(s.store.Friends().Remove(s.ctx, a.ID, b.ID)))
}

func (s *Suite) TestFriendshipValidation() {
	a := s.newUser("a")

	s.True(shared.IsValidation(s.store.Friends().Add(s.ctx, a.ID, a.ID)))
	s.True(shared.IsNotFound(s.store.Friends().Add(s.ctx, a.ID, a.ID+100)))

	_, err := s.store.Friends().FriendIDs(s.ctx, a.ID+100)
	s.True(shared.IsNotFound(err))

	_, err = s.store.Friends().CommonFriendIDs(s.ctx, a.ID, a.ID+100)
	s.True(shared.IsNotFound(err))
}

func (s *Suite) TestCommonFriends() {
	u1, u2, u3, u4 := s.newUser("u1"), s.newUser("u2"), s.newUser("u3"), s.newUser("u4")

	s.befriend(u1, u2)
	s.befriend(u1, u3)
	s.befriend(u2, u3)
	s.befriend(u1, u4)

	common, err := s.store.Friends().CommonFriendIDs(s.ctx, u1.ID, u2.ID)
	s.Require().NoError(err)
	s.Equal([]int64{u3.ID}, common)

	common, err = s.store.Friends().CommonFriendIDs(s.ctx, u3.ID, u4.ID)
	s.Require().NoError(err)
	s.Equal([]int64{u1.ID}, common)

	common, err = s.store.Friends().CommonFriendIDs(s.ctx, u2.ID, u4.ID)
	s.Require().NoError(err)
	s.Equal([]int64{u1.ID}, common)
}
