package query

import (
	"context"

	"github.com/vl4ks/filmorate/internal/domain/social"
	"github.com/vl4ks/filmorate/internal/domain/user"
)

// GetUserHandler возвращает пользователя по ID.
type GetUserHandler struct {
	users user.Repository
}

// NewGetUserHandler создаёт GetUserHandler.
func NewGetUserHandler(users user.Repository) *GetUserHandler {
	return &GetUserHandler{users: users}
}

// Handle выполняет запрос.
func (h *GetUserHandler) Handle(ctx context.Context, id int64) (*user.User, error) {
	return h.users.FindByID(ctx, id)
}

// ListUsersHandler возвращает всех пользователей по возрастанию ID.
type ListUsersHandler struct {
	users user.Repository
}

// NewListUsersHandler создаёт ListUsersHandler.
func NewListUsersHandler(users user.Repository) *ListUsersHandler {
	return &ListUsersHandler{users: users}
}

// Handle выполняет запрос.
func (h *ListUsersHandler) Handle(ctx context.Context) ([]*user.User, error) {
	return h.users.FindAll(ctx)
}

// ══════════════════════════════════════════════════════════════════════════════
// FRIENDS
// ══════════════════════════════════════════════════════════════════════════════

// FriendsHandler возвращает друзей пользователя.
type FriendsHandler struct {
	users   user.Repository
	friends social.FriendRepository
}

// NewFriendsHandler создаёт FriendsHandler.
func NewFriendsHandler(users user.Repository, friends social.FriendRepository) *FriendsHandler {
	return &FriendsHandler{users: users, friends: friends}
}

// Handle возвращает друзей по возрастанию ID или NotFound для неизвестного пользователя.
func (h *FriendsHandler) Handle(ctx context.Context, userID int64) ([]*user.User, error) {
	ids, err := h.friends.FriendIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return h.users.FindByIDs(ctx, ids)
}

// CommonFriendsQuery — пара пользователей, чьих общих друзей ищем.
type CommonFriendsQuery struct {
	UserID  int64
	OtherID int64
}

// CommonFriendsHandler возвращает пересечение списков друзей.
type CommonFriendsHandler struct {
	users   user.Repository
	friends social.FriendRepository
}

// NewCommonFriendsHandler создаёт CommonFriendsHandler.
func NewCommonFriendsHandler(users user.Repository, friends social.FriendRepository) *CommonFriendsHandler {
	return &CommonFriendsHandler{users: users, friends: friends}
}

// Handle выполняет запрос. Общие друзья пользователя с самим собой — все его друзья.
func (h *CommonFriendsHandler) Handle(ctx context.Context, q CommonFriendsQuery) ([]*user.User, error) {
	ids, err := h.friends.CommonFriendIDs(ctx, q.UserID, q.OtherID)
	if err != nil {
		return nil, err
	}
	return h.users.FindByIDs(ctx, ids)
}
