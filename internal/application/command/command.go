// Package command contains write operations (CQRS - Commands).
// Every handler validates its input, performs exactly one atomic store
// mutation and publishes one domain event after the mutation commits.
package command

import (
	"github.com/vl4ks/filmorate/internal/domain/film"
	"github.com/vl4ks/filmorate/internal/domain/shared"
	"github.com/vl4ks/filmorate/internal/domain/social"
	"github.com/vl4ks/filmorate/internal/domain/user"
	"github.com/vl4ks/filmorate/pkg/logger"
	"github.com/vl4ks/filmorate/pkg/timeutil"
)

// Repositories groups the store interfaces the command handlers write through.
type Repositories struct {
	Films   film.Repository
	Genres  film.GenreRepository
	Ratings film.RatingRepository
	Users   user.Repository
	Likes   social.LikeRepository
	Friends social.FriendRepository
}

// Deps are the ambient dependencies shared by all handlers.
type Deps struct {
	// Clock defines "today" for release date and birthday checks.
	Clock timeutil.Clock

	// Publisher receives domain events. Defaults to shared.NopPublisher.
	Publisher shared.EventPublisher

	Logger *logger.Logger
}

func (d Deps) withDefaults() Deps {
	if d.Clock == nil {
		d.Clock = timeutil.SystemClock{}
	}
	if d.Publisher == nil {
		d.Publisher = shared.NopPublisher{}
	}
	if d.Logger == nil {
		d.Logger = logger.Nop()
	}
	return d
}

func (d Deps) today() shared.Date {
	return shared.DateOf(timeutil.Today(d.Clock))
}

// publish hands the event to the bus. The mutation has already committed,
// so a bus failure is logged and not reported to the caller.
func (d Deps) publish(event shared.Event) {
	if err := d.Publisher.Publish(event); err != nil {
		d.Logger.Warn("failed to publish domain event",
			logger.EventType(string(event.EventType())),
			logger.Err(err),
		)
	}
}

// requireID rejects a non-positive identifier.
func requireID(domain, op, field string, id int64) error {
	if id <= 0 {
		return shared.NewValidationError(domain, op, field, "Идентификатор должен быть положительным")
	}
	return nil
}

// Handlers bundles every command handler for the transport layer.
type Handlers struct {
	CreateFilm    *CreateFilmHandler
	UpdateFilm    *UpdateFilmHandler
	DeleteFilm    *DeleteFilmHandler
	SetFilmGenres *SetFilmGenresHandler
	SetFilmRating *SetFilmRatingHandler
	CreateUser    *CreateUserHandler
	UpdateUser    *UpdateUserHandler
	DeleteUser    *DeleteUserHandler
	CreateGenre   *CreateGenreHandler
	DeleteGenre   *DeleteGenreHandler
	CreateRating  *CreateRatingHandler
	DeleteRating  *DeleteRatingHandler
	LikeFilm      *LikeFilmHandler
	UnlikeFilm    *UnlikeFilmHandler
	AddFriend     *AddFriendHandler
	RemoveFriend  *RemoveFriendHandler
}

// NewHandlers wires all command handlers over one set of repositories.
func NewHandlers(repos Repositories, deps Deps) *Handlers {
	deps = deps.withDefaults()
	return &Handlers{
		CreateFilm:    NewCreateFilmHandler(repos.Films, deps),
		UpdateFilm:    NewUpdateFilmHandler(repos.Films, deps),
		DeleteFilm:    NewDeleteFilmHandler(repos.Films, deps),
		SetFilmGenres: NewSetFilmGenresHandler(repos.Films, deps),
		SetFilmRating: NewSetFilmRatingHandler(repos.Films, deps),
		CreateUser:    NewCreateUserHandler(repos.Users, deps),
		UpdateUser:    NewUpdateUserHandler(repos.Users, deps),
		DeleteUser:    NewDeleteUserHandler(repos.Users, deps),
		CreateGenre:   NewCreateGenreHandler(repos.Genres, deps),
		DeleteGenre:   NewDeleteGenreHandler(repos.Genres, deps),
		CreateRating:  NewCreateRatingHandler(repos.Ratings, deps),
		DeleteRating:  NewDeleteRatingHandler(repos.Ratings, deps),
		LikeFilm:      NewLikeFilmHandler(repos.Likes, deps),
		UnlikeFilm:    NewUnlikeFilmHandler(repos.Likes, deps),
		AddFriend:     NewAddFriendHandler(repos.Friends, deps),
		RemoveFriend:  NewRemoveFriendHandler(repos.Friends, deps),
	}
}
