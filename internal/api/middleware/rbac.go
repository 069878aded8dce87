package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/actu/newsroom/internal/core/access"
)

// Require enforces the minimum role of op against the principal bound by
// Authenticate. Failures are returned as domain errors and rendered by the
// HTTP error handler (401 without a principal, 403 for a low role).
func Require(op access.Operation) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, err := access.Authorize(c.Request().Context(), op); err != nil {
				return err
			}
			return next(c)
		}
	}
}
