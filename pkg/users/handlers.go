package users

import (
	"net/http"
	"strconv"

	"github.com/bookbridge/bookbridge/pkg/errcodes"
	"github.com/bookbridge/bookbridge/pkg/models"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	userService *Service
}

func (h *handler) login(c echo.Context) error {
	ctx := c.Request().Context()

	params := LoginPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}
	if params.Login == nil {
		return errcodes.MissingField("login is required.")
	}
	if params.Password == nil {
		return errcodes.MissingField("password is required.")
	}

	sessionToken, err := h.userService.Login(ctx, *params.Login, *params.Password)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, map[string]any{"token": sessionToken}))
}

// validate exchanges a session token for an internal identity token. The
// response always succeeds; an unusable session token comes back as a null
// token so the gateway can treat null as its 401 signal.
func (h *handler) validate(c echo.Context) error {
	ctx := c.Request().Context()

	params := ValidatePayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}
	if params.Token == nil {
		return errcodes.MissingField("token is required.")
	}

	internalToken, err := h.userService.ExchangeToken(ctx, *params.Token)
	if err != nil {
		return errors.WithStack(err)
	}

	if internalToken == "" {
		return errors.WithStack(c.JSON(http.StatusOK, map[string]any{"token": nil}))
	}
	return errors.WithStack(c.JSON(http.StatusOK, map[string]any{"token": internalToken}))
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	params := CreateUserPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}
	if params.Name == nil {
		return errcodes.MissingField("name is required.")
	}
	if params.Login == nil {
		return errcodes.MissingField("login is required.")
	}
	if params.Password == nil {
		return errcodes.MissingField("password is required.")
	}
	if params.Role == nil {
		return errcodes.MissingField("role is required.")
	}

	user := &models.User{
		Name:  *params.Name,
		Login: *params.Login,
		Role:  *params.Role,
	}
	if err := h.userService.CreateUser(ctx, user, *params.Password); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, user))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("User")
	}

	user, err := h.userService.RetrieveUser(ctx, RetrieveUserOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, user))
}

func (h *handler) retrieveByLogin(c echo.Context) error {
	ctx := c.Request().Context()
	login := c.Param("login")

	user, err := h.userService.RetrieveUser(ctx, RetrieveUserOptions{Login: &login})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, user))
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListUsersQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	users, total, err := h.userService.ListUsersWithTotal(ctx, ListUsersOptions{
		Limit:  &params.Limit,
		Offset: &params.Offset,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	response := map[string]any{
		"users": users,
		"total": total,
	}

	return errors.WithStack(c.JSON(http.StatusOK, response))
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("User")
	}

	params := UpdateUserPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	user, err := h.userService.RetrieveUser(ctx, RetrieveUserOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	columns := []string{}
	if params.Name != nil && *params.Name != user.Name {
		user.Name = *params.Name
		columns = append(columns, "name")
	}
	if params.Login != nil && *params.Login != user.Login {
		user.Login = *params.Login
		columns = append(columns, "login")
	}
	if params.Role != nil && *params.Role != user.Role {
		user.Role = *params.Role
		columns = append(columns, "role")
	}
	if err := h.userService.UpdateUser(ctx, user, UpdateUserOptions{Columns: columns}); err != nil {
		return errors.WithStack(err)
	}

	if params.Password != nil {
		if err := h.userService.ChangePassword(ctx, user, *params.Password); err != nil {
			return errors.WithStack(err)
		}
	}

	return errors.WithStack(c.JSON(http.StatusOK, user))
}

func (h *handler) deleteUser(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("User")
	}

	if err := h.userService.DeleteUser(ctx, id); err != nil {
		return errors.WithStack(err)
	}

	return c.NoContent(http.StatusNoContent)
}
