package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/actu/newsroom/internal/core/ports"
)

// UserHandler exposes administrative account management.
type UserHandler struct {
	users ports.UserService
}

func NewUserHandler(users ports.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// List handles GET /api/users.
//
// @Summary      List users
// @Tags         users
// @Produce      json,xml
// @Security     BearerAuth
// @Success      200  {array}   domain.Account
// @Failure      403  {object}  errorResponse
// @Router       /api/users [get]
func (h *UserHandler) List(c echo.Context) error {
	accounts, err := h.users.List(c.Request().Context())
	if err != nil {
		return err
	}
	return respondList(c, http.StatusOK, "users", "user", accounts)
}

// Get handles GET /api/users/:id.
//
// @Summary      Get a user
// @Tags         users
// @Produce      json,xml
// @Security     BearerAuth
// @Param        id   path      string  true  "Account id"
// @Success      200  {object}  domain.Account
// @Failure      404  {object}  errorResponse
// @Router       /api/users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	account, err := h.users.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "user", account)
}

// Create handles POST /api/users. The role defaults to VISITOR.
//
// @Summary      Create a user
// @Tags         users
// @Accept       json,xml
// @Produce      json,xml
// @Security     BearerAuth
// @Param        body  body      userRequest  true  "Account"
// @Success      201   {object}  domain.Account
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/users [post]
func (h *UserHandler) Create(c echo.Context) error {
	var req userRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	role, err := parseRole(req.Role)
	if err != nil {
		return err
	}

	account, err := h.users.Create(c.Request().Context(), ports.AccountInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     role,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "user", account)
}

// Update handles PUT /api/users/:id. An empty password keeps the current one
// and an empty role keeps the current role.
//
// @Summary      Update a user
// @Tags         users
// @Accept       json,xml
// @Produce      json,xml
// @Security     BearerAuth
// @Param        id    path      string       true  "Account id"
// @Param        body  body      userRequest  true  "Account"
// @Success      200   {object}  domain.Account
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/users/{id} [put]
func (h *UserHandler) Update(c echo.Context) error {
	var req userRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	role, err := parseRole(req.Role)
	if err != nil {
		return err
	}

	account, err := h.users.Update(c.Request().Context(), c.Param("id"), ports.AccountInput{
		Username:       req.Username,
		Email:          req.Email,
		Password:       req.Password,
		ChangePassword: req.Password != "",
		Role:           role,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "user", account)
}

// Delete handles DELETE /api/users/:id. The account's tokens go with it.
//
// @Summary      Delete a user
// @Tags         users
// @Security     BearerAuth
// @Param        id   path  string  true  "Account id"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /api/users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	if err := h.users.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
