package command

import (
	"context"

	"github.com/vl4ks/filmorate/internal/domain/shared"
	"github.com/vl4ks/filmorate/internal/domain/social"
	"github.com/vl4ks/filmorate/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// LIKES
// ══════════════════════════════════════════════════════════════════════════════

// LikeCommand identifies a like edge.
type LikeCommand struct {
	FilmID int64
	UserID int64
}

// Validate validates the command.
func (c LikeCommand) Validate(op string) error {
	if err := requireID("social", op, "id", c.FilmID); err != nil {
		return err
	}
	return requireID("social", op, "userId", c.UserID)
}

// LikeFilmHandler adds a like. A repeated like is ErrAlreadyExists.
type LikeFilmHandler struct {
	likes social.LikeRepository
	deps  Deps
}

// NewLikeFilmHandler creates a new LikeFilmHandler.
func NewLikeFilmHandler(likes social.LikeRepository, deps Deps) *LikeFilmHandler {
	return &LikeFilmHandler{likes: likes, deps: deps.withDefaults()}
}

// Handle executes the command.
func (h *LikeFilmHandler) Handle(ctx context.Context, cmd LikeCommand) error {
	if err := cmd.Validate("AddLike"); err != nil {
		return err
	}
	if err := h.likes.Add(ctx, cmd.FilmID, cmd.UserID); err != nil {
		return err
	}

	h.deps.Logger.Debug("film liked", logger.FilmID(cmd.FilmID), logger.UserID(cmd.UserID))
	h.deps.publish(shared.NewFilmLikedEvent(cmd.FilmID, cmd.UserID))
	return nil
}

// UnlikeFilmHandler removes a like. A missing like is ErrNotFound.
type UnlikeFilmHandler struct {
	likes social.LikeRepository
	deps  Deps
}

// NewUnlikeFilmHandler creates a new UnlikeFilmHandler.
func NewUnlikeFilmHandler(likes social.LikeRepository, deps Deps) *UnlikeFilmHandler {
	return &UnlikeFilmHandler{likes: likes, deps: deps.withDefaults()}
}

// Handle executes the command.
func (h *UnlikeFilmHandler) Handle(ctx context.Context, cmd LikeCommand) error {
	if err := cmd.Validate("RemoveLike"); err != nil {
		return err
	}
	if err := h.likes.Remove(ctx, cmd.FilmID, cmd.UserID); err != nil {
		return err
	}

	h.deps.Logger.Debug("film unliked", logger.FilmID(cmd.FilmID), logger.UserID(cmd.UserID))
	h.deps.publish(shared.NewFilmUnlikedEvent(cmd.FilmID, cmd.UserID))
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// FRIENDS
// ══════════════════════════════════════════════════════════════════════════════

// FriendCommand identifies a friendship. Both directions are affected.
type FriendCommand struct {
	UserID   int64
	FriendID int64
}

// Validate validates the command.
func (c FriendCommand) Validate(op string) error {
	if err := requireID("social", op, "id", c.UserID); err != nil {
		return err
	}
	return requireID("social", op, "friendId", c.FriendID)
}

// AddFriendHandler makes two users friends.
type AddFriendHandler struct {
	friends social.FriendRepository
	deps    Deps
}

// NewAddFriendHandler creates a new AddFriendHandler.
func NewAddFriendHandler(friends social.FriendRepository, deps Deps) *AddFriendHandler {
	return &AddFriendHandler{friends: friends, deps: deps.withDefaults()}
}

// Handle executes the command.
func (h *AddFriendHandler) Handle(ctx context.Context, cmd FriendCommand) error {
	if err := cmd.Validate("AddFriend"); err != nil {
		return err
	}
	edge := social.Friendship{UserID: cmd.UserID, FriendID: cmd.FriendID}
	if err := edge.Validate(); err != nil {
		return err
	}
	if err := h.friends.Add(ctx, cmd.UserID, cmd.FriendID); err != nil {
		return err
	}

	h.deps.Logger.Debug("friendship added", logger.UserID(cmd.UserID), logger.FriendID(cmd.FriendID))
	h.deps.publish(shared.NewFriendAddedEvent(cmd.UserID, cmd.FriendID))
	return nil
}

// RemoveFriendHandler ends a friendship.
type RemoveFriendHandler struct {
	friends social.FriendRepository
	deps    Deps
}

// NewRemoveFriendHandler creates a new RemoveFriendHandler.
func NewRemoveFriendHandler(friends social.FriendRepository, deps Deps) *RemoveFriendHandler {
	return &RemoveFriendHandler{friends: friends, deps: deps.withDefaults()}
}

// Handle executes the command.
func (h *RemoveFriendHandler) Handle(ctx context.Context, cmd FriendCommand) error {
	if err := cmd.Validate("RemoveFriend"); err != nil {
		return err
	}
	if err := h.friends.Remove(ctx, cmd.UserID, cmd.FriendID); err != nil {
		return err
	}

	h.deps.Logger.Debug("friendship removed", logger.UserID(cmd.UserID), logger.FriendID(cmd.FriendID))
	h.deps.publish(shared.NewFriendRemovedEvent(cmd.UserID, cmd.FriendID))
	return nil
}
