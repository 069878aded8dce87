package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/actu/newsroom/internal/core/ports"
)

// TokenHandler exposes administrative token management.
type TokenHandler struct {
	tokens ports.TokenService
}

func NewTokenHandler(tokens ports.TokenService) *TokenHandler {
	return &TokenHandler{tokens: tokens}
}

// List handles GET /api/tokens.
//
// @Summary      List all tokens
// @Tags         tokens
// @Produce      json,xml
// @Security     BearerAuth
// @Success      200  {array}   domain.IssuedToken
// @Failure      403  {object}  errorResponse
// @Router       /api/tokens [get]
func (h *TokenHandler) List(c echo.Context) error {
	tokens, err := h.tokens.List(c.Request().Context())
	if err != nil {
		return err
	}
	return respondList(c, http.StatusOK, "tokens", "token", tokens)
}

// ListByUser handles GET /api/tokens/user/:userId.
//
// @Summary      List the tokens of one user
// @Tags         tokens
// @Produce      json,xml
// @Security     BearerAuth
// @Param        userId  path      string  true  "Account id"
// @Success      200     {array}   domain.IssuedToken
// @Failure      404     {object}  errorResponse
// @Router       /api/tokens/user/{userId} [get]
func (h *TokenHandler) ListByUser(c echo.Context) error {
	tokens, err := h.tokens.ListForAccount(c.Request().Context(), c.Param("userId"))
	if err != nil {
		return err
	}
	return respondList(c, http.StatusOK, "tokens", "token", tokens)
}

// Generate handles POST /api/tokens: issue or rotate the user's live token.
//
// @Summary      Generate a token for a user
// @Tags         tokens
// @Accept       json,xml
// @Produce      json,xml
// @Security     BearerAuth
// @Param        body  body      generateTokenRequest  true  "Target account"
// @Success      201   {object}  domain.IssuedToken
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/tokens [post]
func (h *TokenHandler) Generate(c echo.Context) error {
	var req generateTokenRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	tok, err := h.tokens.Generate(c.Request().Context(), req.UserID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "token", tok)
}

// Revoke handles PUT /api/tokens/:id/revoke.
//
// @Summary      Revoke a token
// @Tags         tokens
// @Produce      json,xml
// @Security     BearerAuth
// @Param        id   path      string  true  "Token id"
// @Success      200  {object}  messageResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/tokens/{id}/revoke [put]
func (h *TokenHandler) Revoke(c echo.Context) error {
	if err := h.tokens.Revoke(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "result", messageResponse{Success: true, Message: "Token revoked"})
}

// Reactivate handles PUT /api/tokens/:id/reactivate.
//
// @Summary      Reactivate a token
// @Tags         tokens
// @Produce      json,xml
// @Security     BearerAuth
// @Param        id   path      string  true  "Token id"
// @Success      200  {object}  domain.IssuedToken
// @Failure      404  {object}  errorResponse
// @Router       /api/tokens/{id}/reactivate [put]
func (h *TokenHandler) Reactivate(c echo.Context) error {
	tok, err := h.tokens.Reactivate(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "token", tok)
}

// Delete handles DELETE /api/tokens/:id.
//
// @Summary      Delete a token
// @Tags         tokens
// @Security     BearerAuth
// @Param        id   path  string  true  "Token id"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /api/tokens/{id} [delete]
func (h *TokenHandler) Delete(c echo.Context) error {
	if err := h.tokens.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
