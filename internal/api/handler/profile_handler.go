package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/actu/newsroom/internal/core/ports"
)

// ProfileHandler serves the caller's own account. The role is never
// writable from here.
type ProfileHandler struct {
	users ports.UserService
}

func NewProfileHandler(users ports.UserService) *ProfileHandler {
	return &ProfileHandler{users: users}
}

// Get handles GET /api/profile.
//
// @Summary      Get own profile
// @Tags         profile
// @Produce      json,xml
// @Security     BearerAuth
// @Success      200  {object}  domain.Account
// @Failure      401  {object}  errorResponse
// @Router       /api/profile [get]
func (h *ProfileHandler) Get(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	account, err := h.users.Profile(c.Request().Context(), p.AccountID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "user", account)
}

// Update handles PUT /api/profile. An empty password keeps the current one.
//
// @Summary      Update own profile
// @Tags         profile
// @Accept       json,xml
// @Produce      json,xml
// @Security     BearerAuth
// @Param        body  body      profileRequest  true  "Profile changes"
// @Success      200   {object}  domain.Account
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/profile [put]
func (h *ProfileHandler) Update(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req profileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	account, err := h.users.UpdateProfile(c.Request().Context(), p.AccountID, ports.ProfileInput{
		Username:       req.Username,
		Email:          req.Email,
		Password:       req.Password,
		ChangePassword: req.Password != "",
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "user", account)
}
