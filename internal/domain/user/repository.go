package user

import "context"

// UpdateFunc получает копию текущего пользователя и изменяет её.
type UpdateFunc func(u *User) error

// Repository определяет операции CRUD для пользователей.
// Удаление каскадно убирает лайки и дружбы пользователя.
type Repository interface {
	// Create присваивает пользователю ID и сохраняет его.
	Create(ctx context.Context, u *User) error

	// Update выполняет атомарный read-modify-write.
	// Возвращает NotFound, если пользователя нет.
	Update(ctx context.Context, id int64, fn UpdateFunc) (*User, error)

	// Delete удаляет пользователя и все рёбра, которые на него ссылаются.
	Delete(ctx context.Context, id int64) error

	// FindByID возвращает пользователя или NotFound.
	FindByID(ctx context.Context, id int64) (*User, error)

	// FindByIDs возвращает найденных пользователей в порядке запрошенных ID.
	FindByIDs(ctx context.Context, ids []int64) ([]*User, error)

	// FindAll возвращает всех пользователей по возрастанию ID.
	FindAll(ctx context.Context) ([]*User, error)
}
