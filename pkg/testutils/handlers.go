package testutils

import (
	"net/http"

	"github.com/bookbridge/bookbridge/pkg/errcodes"
	"github.com/bookbridge/bookbridge/pkg/models"
	"github.com/bookbridge/bookbridge/pkg/token"
	"github.com/bookbridge/bookbridge/pkg/users"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type handler struct {
	db     *bun.DB
	signer token.Signer
}

// createUserRequest is the request body for creating a test user.
type createUserRequest struct {
	Name     string `json:"name" validate:"required"`
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"required,role"`
}

// createUserResponse is the response body for creating a test user.
type createUserResponse struct {
	ID    int    `json:"id"`
	Login string `json:"login"`
	Token string `json:"token"`
}

// createUser creates a user with the given role and returns a session token
// for it, so end-to-end tests can skip the login round trip.
// POST /test/users.
func (h *handler) createUser(c echo.Context) error {
	ctx := c.Request().Context()

	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return errors.WithStack(err)
	}
	if !models.ValidRole(req.Role) {
		return errcodes.BadFieldContents("role must be one of viewer, editor, or admin.")
	}

	svc := users.NewService(h.db, h.signer)

	user := &models.User{
		Name:  req.Name,
		Login: req.Login,
		Role:  req.Role,
	}
	if err := svc.CreateUser(ctx, user, req.Password); err != nil {
		return errors.WithStack(err)
	}

	sessionToken, err := h.signer.IssueSessionToken(user)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, createUserResponse{
		ID:    user.ID,
		Login: user.Login,
		Token: sessionToken,
	}))
}

// deleteAllUsers removes every user.
// DELETE /test/users.
func (h *handler) deleteAllUsers(c echo.Context) error {
	ctx := c.Request().Context()

	_, err := h.db.NewDelete().
		Model((*models.User)(nil)).
		Where("1 = 1").
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return c.NoContent(http.StatusNoContent)
}
