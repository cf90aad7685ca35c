// Package query contains read operations (CQRS - Queries).
// Запросы ничего не меняют и возвращают ошибки хранилища без изменений.
package query

import (
	"github.com/vl4ks/filmorate/internal/domain/film"
	"github.com/vl4ks/filmorate/internal/domain/social"
	"github.com/vl4ks/filmorate/internal/domain/user"
)

// Repositories — интерфейсы хранилища, из которых читают запросы.
type Repositories struct {
	Films   film.Repository
	Genres  film.GenreRepository
	Ratings film.RatingRepository
	Users   user.Repository
	Likes   social.LikeRepository
	Friends social.FriendRepository
}

// Handlers собирает все обработчики запросов для транспортного слоя.
type Handlers struct {
	GetFilm       *GetFilmHandler
	ListFilms     *ListFilmsHandler
	PopularFilms  *PopularFilmsHandler
	LikeCount     *LikeCountHandler
	GetUser       *GetUserHandler
	ListUsers     *ListUsersHandler
	Friends       *FriendsHandler
	CommonFriends *CommonFriendsHandler
	GetGenre      *GetGenreHandler
	ListGenres    *ListGenresHandler
	GetRating     *GetRatingHandler
	ListRatings   *ListRatingsHandler
}

// NewHandlers создаёт все обработчики запросов над одним набором репозиториев.
func NewHandlers(repos Repositories) *Handlers {
	views := NewViewBuilder(repos)
	return &Handlers{
		GetFilm:       NewGetFilmHandler(repos.Films, views),
		ListFilms:     NewListFilmsHandler(repos.Films, views),
		PopularFilms:  NewPopularFilmsHandler(repos.Films, repos.Likes, views),
		LikeCount:     NewLikeCountHandler(repos.Likes),
		GetUser:       NewGetUserHandler(repos.Users),
		ListUsers:     NewListUsersHandler(repos.Users),
		Friends:       NewFriendsHandler(repos.Users, repos.Friends),
		CommonFriends: NewCommonFriendsHandler(repos.Users, repos.Friends),
		GetGenre:      NewGetGenreHandler(repos.Genres),
		ListGenres:    NewListGenresHandler(repos.Genres),
		GetRating:     NewGetRatingHandler(repos.Ratings),
		ListRatings:   NewListRatingsHandler(repos.Ratings),
	}
}
