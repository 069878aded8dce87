package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/actu/newsroom/internal/core/authn"
	"github.com/actu/newsroom/internal/core/domain"
)

// principal returns the caller bound by the Authenticate middleware. Routes
// that reach a handler calling it are already behind Require, so a missing
// principal only happens when the middleware is miswired.
func principal(c echo.Context) (domain.Principal, error) {
	p, ok := authn.PrincipalFrom(c.Request().Context())
	if !ok || p.AccountID == "" {
		return domain.Principal{}, domain.ErrUnauthenticated
	}
	return p, nil
}

// parseRole accepts an empty role, leaving the service default in place.
func parseRole(s string) (domain.Role, error) {
	if s == "" {
		return domain.RoleUnknown, nil
	}
	return domain.ParseRole(s)
}
