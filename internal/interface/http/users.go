package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vl4ks/filmorate/internal/application/command"
	"github.com/vl4ks/filmorate/internal/application/query"
)

// ══════════════════════════════════════════════════════════════════════════════
// USERS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleListUsers(c *gin.Context) {
	users, err := s.deps.Queries.ListUsers.Handle(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, userList(users))
}

func (s *Server) handleGetUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	u, err := s.deps.Queries.GetUser.Handle(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, userResponse(u))
}

func (s *Server) handleCreateUser(c *gin.Context) {
	var req UserRequest
	if !bindJSON(c, &req) {
		return
	}
	created, err := s.deps.Commands.CreateUser.Handle(c.Request.Context(), command.CreateUserCommand{
		Email:    deref(req.Email),
		Login:    deref(req.Login),
		Name:     deref(req.Name),
		Birthday: deref(req.Birthday),
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, userResponse(created))
}

func (s *Server) handleUpdateUser(c *gin.Context) {
	var req UserRequest
	if !bindJSON(c, &req) {
		return
	}
	updated, err := s.deps.Commands.UpdateUser.Handle(c.Request.Context(), command.UpdateUserCommand{
		ID:    deref(req.ID),
		Patch: req.patch(),
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, userResponse(updated))
}

func (s *Server) handleDeleteUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := s.deps.Commands.DeleteUser.Handle(c.Request.Context(), command.DeleteUserCommand{ID: id}); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ══════════════════════════════════════════════════════════════════════════════
// FRIENDS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleAddFriend(c *gin.Context) {
	ids, ok := pathIDs(c, "id", "friendId")
	if !ok {
		return
	}
	err := s.deps.Commands.AddFriend.Handle(c.Request.Context(), command.FriendCommand{UserID: ids[0], FriendID: ids[1]})
	if err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleRemoveFriend(c *gin.Context) {
	ids, ok := pathIDs(c, "id", "friendId")
	if !ok {
		return
	}
	err := s.deps.Commands.RemoveFriend.Handle(c.Request.Context(), command.FriendCommand{UserID: ids[0], FriendID: ids[1]})
	if err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleFriends(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	friends, err := s.deps.Queries.Friends.Handle(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, userList(friends))
}

func (s *Server) handleCommonFriends(c *gin.Context) {
	ids, ok := pathIDs(c, "id", "otherId")
	if !ok {
		return
	}
	common, err := s.deps.Queries.CommonFriends.Handle(c.Request.Context(), query.CommonFriendsQuery{
		UserID:  ids[0],
		OtherID: ids[1],
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, userList(common))
}
