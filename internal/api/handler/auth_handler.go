package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/actu/newsroom/internal/core/authn"
	"github.com/actu/newsroom/internal/core/domain"
	"github.com/actu/newsroom/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register creates a VISITOR account.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json,xml
// @Produce      json,xml
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  domain.Account
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	account, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	return respond(c, http.StatusCreated, "user", account)
}

// Login authenticates a user and returns its bearer token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json,xml
// @Produce      json,xml
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "login", loginResponse{
		Token:     result.Token.Value,
		ExpiresAt: result.Token.ExpiresAt,
		User:      result.Account,
	})
}

// Logout revokes the token the request authenticated with.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json,xml
// @Security     BearerAuth
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  errorResponse
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	token, ok := authn.TokenFrom(c.Request().Context())
	if !ok {
		return domain.ErrUnauthenticated
	}
	if err := h.authService.Logout(c.Request().Context(), token); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "result", messageResponse{Success: true, Message: "Logged out"})
}

// Me returns the authenticated account.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json,xml
// @Security     BearerAuth
// @Success      200  {object}  domain.Account
// @Failure      401  {object}  errorResponse
// @Router       /api/auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	account, err := h.authService.CurrentUser(c.Request().Context(), p.AccountID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "user", account)
}
