package command_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vl4ks/filmorate/internal/application/command"
	"github.com/vl4ks/filmorate/internal/domain/film"
	"github.com/vl4ks/filmorate/internal/domain/shared"
	"github.com/vl4ks/filmorate/internal/domain/user"
	"github.com/vl4ks/filmorate/internal/infrastructure/persistence/memory"
	"github.com/vl4ks/filmorate/pkg/timeutil"
)

type recorder struct {
	mu     sync.Mutex
	events []shared.Event
}

func (r *recorder) Publish(e shared.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) types() []shared.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]shared.EventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.EventType()
	}
	return out
}

type fixture struct {
	store  *memory.Store
	h      *command.Handlers
	events *recorder
	mpa    *film.MpaRating
	drama  *film.Genre
	comedy *film.Genre
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	events := &recorder{}
	h := command.NewHandlers(command.Repositories{
		Films:   store.Films(),
		Genres:  store.Genres(),
		Ratings: store.Ratings(),
		Users:   store.Users(),
		Likes:   store.Likes(),
		Friends: store.Friends(),
	}, command.Deps{
		Clock:     timeutil.NewFixedClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)),
		Publisher: events,
	})

	ctx := context.Background()
	mpa, err := h.CreateRating.Handle(ctx, command.CreateRatingCommand{Name: "PG-13"})
	require.NoError(t, err)
	comedy, err := h.CreateGenre.Handle(ctx, command.CreateGenreCommand{Name: "Комедия"})
	require.NoError(t, err)
	drama, err := h.CreateGenre.Handle(ctx, command.CreateGenreCommand{Name: "Драма"})
	require.NoError(t, err)

	return &fixture{store: store, h: h, events: events, mpa: mpa, drama: drama, comedy: comedy}
}

func (f *fixture) validFilm() command.CreateFilmCommand {
	return command.CreateFilmCommand{
		Name:        "Matrix",
		Description: "Нео выбирает красную таблетку",
		ReleaseDate: shared.MustParseDate("1999-03-31"),
		Duration:    136,
		MpaID:       f.mpa.ID,
	}
}

func ptr[T any](v T) *T { return &v }

// ══════════════════════════════════════════════════════════════════════════════
// FILMS
// ══════════════════════════════════════════════════════════════════════════════

func TestCreateFilm(t *testing.T) {
	fx := newFixture(t)
	cmd := fx.validFilm()
	cmd.GenreIDs = []int64{fx.drama.ID, fx.comedy.ID, fx.drama.ID}

	got, err := fx.h.CreateFilm.Handle(context.Background(), cmd)
	require.NoError(t, err)

	assert.Positive(t, got.ID)
	assert.Equal(t, cmd.Name, got.Name)
	assert.Equal(t, cmd.Description, got.Description)
	assert.True(t, cmd.ReleaseDate.Equal(got.ReleaseDate))
	assert.Equal(t, cmd.Duration, got.Duration)
	assert.Equal(t, fx.mpa.ID, got.MpaID)
	assert.Equal(t, []int64{fx.comedy.ID, fx.drama.ID}, got.GenreIDs)
	assert.Contains(t, fx.events.types(), shared.EventFilmCreated)
}

func TestCreateFilmValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*command.CreateFilmCommand)
		field  string
	}{
		{"empty name", func(c *command.CreateFilmCommand) { c.Name = " " }, "name"},
		{"description 201", func(c *command.CreateFilmCommand) { c.Description = strings.Repeat("я", 201) }, "description"},
		{"before cinema", func(c *command.CreateFilmCommand) { c.ReleaseDate = shared.MustParseDate("1895-12-27") }, "releaseDate"},
		{"in future", func(c *command.CreateFilmCommand) { c.ReleaseDate = shared.MustParseDate("2024-06-02") }, "releaseDate"},
		{"zero duration", func(c *command.CreateFilmCommand) { c.Duration = 0 }, "duration"},
		{"negative duration", func(c *command.CreateFilmCommand) { c.Duration = -1 }, "duration"},
		{"missing mpa", func(c *command.CreateFilmCommand) { c.MpaID = 0 }, "mpa"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newFixture(t)
			cmd := fx.validFilm()
			tt.mutate(&cmd)

			_, err := fx.h.CreateFilm.Handle(context.Background(), cmd)
			require.Error(t, err)
			assert.True(t, shared.IsValidation(err))
			assert.Equal(t, tt.field, shared.FieldOf(err))

			all, err := fx.store.Films().FindAll(context.Background())
			require.NoError(t, err)
			assert.Empty(t, all)
		})
	}
}

func TestCreateFilmBoundaries(t *testing.T) {
	fx := newFixture(t)
	cmd := fx.validFilm()
	cmd.Description = strings.Repeat("я", 200)
	cmd.ReleaseDate = shared.MustParseDate("1895-12-28")
	cmd.Duration = 1

	_, err := fx.h.CreateFilm.Handle(context.Background(), cmd)
	require.NoError(t, err)

	cmd.ReleaseDate = shared.MustParseDate("2024-06-01")
	_, err = fx.h.CreateFilm.Handle(context.Background(), cmd)
	require.NoError(t, err)
}

func TestCreateFilmUnknownReferences(t *testing.T) {
	fx := newFixture(t)

	cmd := fx.validFilm()
	cmd.MpaID = 99
	_, err := fx.h.CreateFilm.Handle(context.Background(), cmd)
	assert.True(t, shared.IsValidation(err))

	cmd = fx.validFilm()
	cmd.GenreIDs = []int64{fx.drama.ID, 99}
	_, err = fx.h.CreateFilm.Handle(context.Background(), cmd)
	assert.True(t, shared.IsValidation(err))
}

func TestUpdateFilmMergesPatch(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	created, err := fx.h.CreateFilm.Handle(ctx, fx.validFilm())
	require.NoError(t, err)

	patches := []film.Patch{
		{Name: ptr("Matrix Reloaded")},
		{Duration: ptr(138), Description: ptr("")},
		{GenreIDs: ptr([]int64{fx.drama.ID})},
		{ReleaseDate: ptr(shared.MustParseDate("2003-05-07"))},
	}

	want := created.Clone()
	for _, p := range patches {
		p.ApplyTo(want)

		got, err := fx.h.UpdateFilm.Handle(ctx, command.UpdateFilmCommand{ID: created.ID, Patch: p})
		require.NoError(t, err)
		assert.Equal(t, want, got)

		stored, err := fx.store.Films().FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, want, stored)
	}
}

func TestUpdateFilmRejectsInvalidMerge(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	created, err := fx.h.CreateFilm.Handle(ctx, fx.validFilm())
	require.NoError(t, err)

	_, err = fx.h.UpdateFilm.Handle(ctx, command.UpdateFilmCommand{ID: created.ID, Patch: film.Patch{Duration: ptr(-1)}})
	assert.True(t, shared.IsValidation(err))

	stored, err := fx.store.Films().FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 136, stored.Duration)

	_, err = fx.h.UpdateFilm.Handle(ctx, command.UpdateFilmCommand{ID: 999, Patch: film.Patch{Name: ptr("x")}})
	assert.True(t, shared.IsNotFound(err))

	_, err = fx.h.UpdateFilm.Handle(ctx, command.UpdateFilmCommand{ID: 0})
	assert.True(t, shared.IsValidation(err))
}

func TestSetFilmGenresIsAllOrNothing(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	created, err := fx.h.CreateFilm.Handle(ctx, fx.validFilm())
	require.NoError(t, err)

	_, err = fx.h.SetFilmGenres.Handle(ctx, command.SetFilmGenresCommand{
		FilmID: created.ID, GenreIDs: []int64{fx.drama.ID, 42},
	})
	require.Error(t, err)
	stored, err := fx.store.Films().FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.GenreIDs)

	got, err := fx.h.SetFilmGenres.Handle(ctx, command.SetFilmGenresCommand{
		FilmID: created.ID, GenreIDs: []int64{fx.drama.ID, fx.comedy.ID, fx.comedy.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{fx.comedy.ID, fx.drama.ID}, got.GenreIDs)
}

func TestSetFilmRating(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	created, err := fx.h.CreateFilm.Handle(ctx, fx.validFilm())
	require.NoError(t, err)
	r, err := fx.h.CreateRating.Handle(ctx, command.CreateRatingCommand{Name: "R"})
	require.NoError(t, err)

	got, err := fx.h.SetFilmRating.Handle(ctx, command.SetFilmRatingCommand{FilmID: created.ID, MpaID: r.ID})
	require.NoError(t, err)
	assert.Equal(t, r.ID, got.MpaID)

	_, err = fx.h.SetFilmRating.Handle(ctx, command.SetFilmRatingCommand{FilmID: created.ID, MpaID: 77})
	assert.True(t, shared.IsValidation(err))
}

func TestDeleteFilmCascadesLikes(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	f, err := fx.h.CreateFilm.Handle(ctx, fx.validFilm())
	require.NoError(t, err)
	u, err := fx.h.CreateUser.Handle(ctx, command.CreateUserCommand{Email: "a@b.c", Login: "neo"})
	require.NoError(t, err)
	require.NoError(t, fx.h.LikeFilm.Handle(ctx, command.LikeCommand{FilmID: f.ID, UserID: u.ID}))

	require.NoError(t, fx.h.DeleteFilm.Handle(ctx, command.DeleteFilmCommand{ID: f.ID}))

	_, err = fx.store.Likes().Count(ctx, f.ID)
	assert.True(t, shared.IsNotFound(err))
	assert.True(t, shared.IsNotFound(fx.h.DeleteFilm.Handle(ctx, command.DeleteFilmCommand{ID: f.ID})))
}

// ══════════════════════════════════════════════════════════════════════════════
// USERS
// ══════════════════════════════════════════════════════════════════════════════

func TestCreateUserDefaultsNameToLogin(t *testing.T) {
	fx := newFixture(t)

	for _, name := range []string{"", "   "} {
		u, err := fx.h.CreateUser.Handle(context.Background(), command.CreateUserCommand{
			Email: "neo@matrix.io", Login: "neo", Name: name,
		})
		require.NoError(t, err)
		assert.Equal(t, "neo", u.Name)
		assert.Positive(t, u.ID)
	}
}

func TestCreateUserValidation(t *testing.T) {
	tests := []struct {
		name  string
		cmd   command.CreateUserCommand
		field string
	}{
		{"email without at", command.CreateUserCommand{Email: "neo.matrix.io", Login: "neo"}, "email"},
		{"blank email", command.CreateUserCommand{Email: "", Login: "neo"}, "email"},
		{"login with space", command.CreateUserCommand{Email: "a@b", Login: "the one"}, "login"},
		{"empty login", command.CreateUserCommand{Email: "a@b", Login: ""}, "login"},
		{"birthday in future", command.CreateUserCommand{Email: "a@b", Login: "neo", Birthday: shared.MustParseDate("2030-01-01")}, "birthday"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newFixture(t)
			_, err := fx.h.CreateUser.Handle(context.Background(), tt.cmd)
			require.Error(t, err)
			assert.True(t, shared.IsValidation(err))
			assert.Equal(t, tt.field, shared.FieldOf(err))
		})
	}
}

func TestUpdateUser(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	u, err := fx.h.CreateUser.Handle(ctx, command.CreateUserCommand{Email: "neo@matrix.io", Login: "neo", Name: "Thomas"})
	require.NoError(t, err)

	got, err := fx.h.UpdateUser.Handle(ctx, command.UpdateUserCommand{ID: u.ID, Patch: user.Patch{Name: ptr("")}})
	require.NoError(t, err)
	assert.Equal(t, "neo", got.Name)
	assert.Equal(t, "neo@matrix.io", got.Email)

	_, err = fx.h.UpdateUser.Handle(ctx, command.UpdateUserCommand{ID: u.ID, Patch: user.Patch{Email: ptr(" ")}})
	assert.True(t, shared.IsValidation(err))

	_, err = fx.h.UpdateUser.Handle(ctx, command.UpdateUserCommand{ID: 404, Patch: user.Patch{Login: ptr("x")}})
	assert.True(t, shared.IsNotFound(err))
}

func TestDeleteUserRemovesEdges(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	a, err := fx.h.CreateUser.Handle(ctx, command.CreateUserCommand{Email: "a@x", Login: "a"})
	require.NoError(t, err)
	b, err := fx.h.CreateUser.Handle(ctx, command.CreateUserCommand{Email: "b@x", Login: "b"})
	require.NoError(t, err)
	f, err := fx.h.CreateFilm.Handle(ctx, fx.validFilm())
	require.NoError(t, err)

	require.NoError(t, fx.h.AddFriend.Handle(ctx, command.FriendCommand{UserID: a.ID, FriendID: b.ID}))
	require.NoError(t, fx.h.LikeFilm.Handle(ctx, command.LikeCommand{FilmID: f.ID, UserID: a.ID}))

	require.NoError(t, fx.h.DeleteUser.Handle(ctx, command.DeleteUserCommand{ID: a.ID}))

	friends, err := fx.store.Friends().FriendIDs(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, friends)
	count, err := fx.store.Likes().Count(ctx, f.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

// ══════════════════════════════════════════════════════════════════════════════
// REFERENCES
// ══════════════════════════════════════════════════════════════════════════════

func TestReferenceCatalog(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	_, err := fx.h.CreateGenre.Handle(ctx, command.CreateGenreCommand{Name: "Драма"})
	assert.True(t, shared.IsAlreadyExists(err))
	_, err = fx.h.CreateGenre.Handle(ctx, command.CreateGenreCommand{Name: "  "})
	assert.True(t, shared.IsValidation(err))
	_, err = fx.h.CreateRating.Handle(ctx, command.CreateRatingCommand{Name: "PG-13"})
	assert.True(t, shared.IsAlreadyExists(err))

	cmd := fx.validFilm()
	cmd.GenreIDs = []int64{fx.drama.ID}
	f, err := fx.h.CreateFilm.Handle(ctx, cmd)
	require.NoError(t, err)

	// Рейтинг, на который ссылается фильм, удалить нельзя.
	err = fx.h.DeleteRating.Handle(ctx, command.DeleteRatingCommand{ID: fx.mpa.ID})
	assert.True(t, shared.IsInUse(err))

	require.NoError(t, fx.h.DeleteGenre.Handle(ctx, command.DeleteGenreCommand{ID: fx.drama.ID}))
	stored, err := fx.store.Films().FindByID(ctx, f.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.GenreIDs)

	require.NoError(t, fx.h.DeleteFilm.Handle(ctx, command.DeleteFilmCommand{ID: f.ID}))
	require.NoError(t, fx.h.DeleteRating.Handle(ctx, command.DeleteRatingCommand{ID: fx.mpa.ID}))
	assert.True(t, shared.IsNotFound(fx.h.DeleteRating.Handle(ctx, command.DeleteRatingCommand{ID: fx.mpa.ID})))
}

// ══════════════════════════════════════════════════════════════════════════════
// SOCIAL
// ══════════════════════════════════════════════════════════════════════════════

func TestLikeLifecycle(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	f, err := fx.h.CreateFilm.Handle(ctx, fx.validFilm())
	require.NoError(t, err)
	u, err := fx.h.CreateUser.Handle(ctx, command.CreateUserCommand{Email: "a@x", Login: "a"})
	require.NoError(t, err)
	like := command.LikeCommand{FilmID: f.ID, UserID: u.ID}

	require.NoError(t, fx.h.LikeFilm.Handle(ctx, like))
	assert.True(t, shared.IsAlreadyExists(fx.h.LikeFilm.Handle(ctx, like)))

	require.NoError(t, fx.h.UnlikeFilm.Handle(ctx, like))
	count, err := fx.store.Likes().Count(ctx, f.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.True(t, shared.IsNotFound(fx.h.UnlikeFilm.Handle(ctx, like)))

	assert.True(t, shared.IsNotFound(fx.h.LikeFilm.Handle(ctx, command.LikeCommand{FilmID: 99, UserID: u.ID})))
	assert.True(t, shared.IsNotFound(fx.h.LikeFilm.Handle(ctx, command.LikeCommand{FilmID: f.ID, UserID: 99})))

	assert.Equal(t, []shared.EventType{
		shared.EventRatingCreated, shared.EventGenreCreated, shared.EventGenreCreated,
		shared.EventFilmCreated, shared.EventUserCreated,
		shared.EventFilmLiked, shared.EventFilmUnliked,
	}, fx.events.types())
}

func TestFriendshipIsSymmetric(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	a, err := fx.h.CreateUser.Handle(ctx, command.CreateUserCommand{Email: "a@x", Login: "a"})
	require.NoError(t, err)
	b, err := fx.h.CreateUser.Handle(ctx, command.CreateUserCommand{Email: "b@x", Login: "b"})
	require.NoError(t, err)

	require.NoError(t, fx.h.AddFriend.Handle(ctx, command.FriendCommand{UserID: a.ID, FriendID: b.ID}))
	assert.True(t, shared.IsAlreadyExists(fx.h.AddFriend.Handle(ctx, command.FriendCommand{UserID: b.ID, FriendID: a.ID})))
	assert.True(t, shared.IsValidation(fx.h.AddFriend.Handle(ctx, command.FriendCommand{UserID: a.ID, FriendID: a.ID})))

	ofB, err := fx.store.Friends().FriendIDs(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{a.ID}, ofB)

	require.NoError(t, fx.h.RemoveFriend.Handle(ctx, command.FriendCommand{UserID: b.ID, FriendID: a.ID}))
	ofA, err := fx.store.Friends().FriendIDs(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, ofA)
	assert.True(t, shared.IsNotFound(fx.h.RemoveFriend.Handle(ctx, command.FriendCommand{UserID: a.ID, FriendID: b.ID})))
}
