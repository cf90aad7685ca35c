package command

import (
	"context"

	"github.com/vl4ks/filmorate/internal/domain/shared"
	"github.com/vl4ks/filmorate/internal/domain/user"
	"github.com/vl4ks/filmorate/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// CREATE USER
// ══════════════════════════════════════════════════════════════════════════════

// CreateUserCommand contains the data of a new user.
// An empty Name is replaced with Login.
type CreateUserCommand struct {
	Email    string
	Login    string
	Name     string
	Birthday shared.Date
}

// CreateUserHandler handles CreateUserCommand.
type CreateUserHandler struct {
	users user.Repository
	deps  Deps
}

// NewCreateUserHandler creates a new CreateUserHandler.
func NewCreateUserHandler(users user.Repository, deps Deps) *CreateUserHandler {
	return &CreateUserHandler{users: users, deps: deps.withDefaults()}
}

// Handle executes the command and returns the stored user with its ID.
func (h *CreateUserHandler) Handle(ctx context.Context, cmd CreateUserCommand) (*user.User, error) {
	u := &user.User{
		Email:    cmd.Email,
		Login:    cmd.Login,
		Name:     cmd.Name,
		Birthday: cmd.Birthday,
	}
	if err := user.ValidateCreate(u, h.deps.today()).Err("user", "Create"); err != nil {
		return nil, err
	}
	u.ApplyDefaultName()

	if err := h.users.Create(ctx, u); err != nil {
		return nil, err
	}

	h.deps.Logger.Info("user created", logger.UserID(u.ID), logger.String("login", u.Login))
	h.deps.publish(shared.NewEntityChangedEvent(shared.EventUserCreated, u.ID, u.Login))
	return u, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// UPDATE USER
// ══════════════════════════════════════════════════════════════════════════════

// UpdateUserCommand carries a partial update of a user.
type UpdateUserCommand struct {
	ID    int64
	Patch user.Patch
}

// UpdateUserHandler handles UpdateUserCommand.
type UpdateUserHandler struct {
	users user.Repository
	deps  Deps
}

// NewUpdateUserHandler creates a new UpdateUserHandler.
func NewUpdateUserHandler(users user.Repository, deps Deps) *UpdateUserHandler {
	return &UpdateUserHandler{users: users, deps: deps.withDefaults()}
}

// Handle validates the merged user and stores it.
func (h *UpdateUserHandler) Handle(ctx context.Context, cmd UpdateUserCommand) (*user.User, error) {
	if err := requireID("user", "Update", "id", cmd.ID); err != nil {
		return nil, err
	}
	today := h.deps.today()

	updated, err := h.users.Update(ctx, cmd.ID, func(u *user.User) error {
		if err := user.ValidateUpdate(u, cmd.Patch, today).Err("user", "Update"); err != nil {
			return err
		}
		cmd.Patch.ApplyTo(u)
		return nil
	})
	if err != nil {
		return nil, err
	}

	h.deps.Logger.Debug("user updated", logger.UserID(updated.ID))
	h.deps.publish(shared.NewEntityChangedEvent(shared.EventUserUpdated, updated.ID, updated.Login))
	return updated, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DELETE USER
// ══════════════════════════════════════════════════════════════════════════════

// DeleteUserCommand removes a user with every like and friendship of theirs.
type DeleteUserCommand struct {
	ID int64
}

// DeleteUserHandler handles DeleteUserCommand.
type DeleteUserHandler struct {
	users user.Repository
	deps  Deps
}

// NewDeleteUserHandler creates a new DeleteUserHandler.
func NewDeleteUserHandler(users user.Repository, deps Deps) *DeleteUserHandler {
	return &DeleteUserHandler{users: users, deps: deps.withDefaults()}
}

// Handle executes the command.
func (h *DeleteUserHandler) Handle(ctx context.Context, cmd DeleteUserCommand) error {
	if err := requireID("user", "Delete", "id", cmd.ID); err != nil {
		return err
	}
	if err := h.users.Delete(ctx, cmd.ID); err != nil {
		return err
	}

	h.deps.Logger.Info("user deleted", logger.UserID(cmd.ID))
	h.deps.publish(shared.NewEntityChangedEvent(shared.EventUserDeleted, cmd.ID, ""))
	return nil
}
