// Package social содержит социальный граф сервиса: лайки фильмов
// и дружбу пользователей. Рёбра хранятся как пары идентификаторов.
package social

import (
	"fmt"

	"github.com/vl4ks/filmorate/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// EDGES
// ══════════════════════════════════════════════════════════════════════════════

// Like — отметка «нравится» пользователя на фильме. Пара уникальна.
type Like struct {
	FilmID int64
	UserID int64
}

// Friendship — ребро дружбы. Хранится в обе стороны, поэтому
// дружба всегда симметрична.
type Friendship struct {
	UserID   int64
	FriendID int64
}

// Reverse возвращает встречное ребро.
func (f Friendship) Reverse() Friendship {
	return Friendship{UserID: f.FriendID, FriendID: f.UserID}
}

// Validate отклоняет дружбу с самим собой.
func (f Friendship) Validate() error {
	if f.UserID == f.FriendID {
		return shared.NewValidationError("social", "AddFriend", "friendId",
			"Пользователь не может добавить в друзья самого себя")
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// ERRORS
// ══════════════════════════════════════════════════════════════════════════════

// LikeExists — пользователь уже поставил лайк этому фильму.
func LikeExists(filmID, userID int64) *shared.DomainError {
	return shared.NewDomainError("social", "AddLike", shared.ErrAlreadyExists,
		fmt.Sprintf("Лайк от пользователя с id = %d для фильма с id = %d уже существует", userID, filmID))
}

// LikeNotFound — лайка, который пытаются удалить, нет.
func LikeNotFound(filmID, userID int64) *shared.DomainError {
	return shared.NewDomainError("social", "RemoveLike", shared.ErrNotFound,
		fmt.Sprintf("Лайк от пользователя с id = %d для фильма с id = %d не найден", userID, filmID))
}

// FriendshipExists — пользователи уже друзья.
func FriendshipExists(userID, friendID int64) *shared.DomainError {
	return shared.NewDomainError("social", "AddFriend", shared.ErrAlreadyExists,
		fmt.Sprintf("Пользователи с id = %d и id = %d уже друзья", userID, friendID))
}

// FriendshipNotFound — пользователи не являются друзьями.
func FriendshipNotFound(userID, friendID int64) *shared.DomainError {
	return shared.NewDomainError("social", "RemoveFriend", shared.ErrNotFound,
		fmt.Sprintf("Пользователи с id = %d и id = %d не являются друзьями", userID, friendID))
}
