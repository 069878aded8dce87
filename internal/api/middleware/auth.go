package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/actu/newsroom/internal/core/authn"
)

// Authenticate runs every request through gate. Requests without a usable
// bearer token continue anonymously; the role check on each route decides
// whether that is enough. Paths under one of exemptPrefixes skip the gate.
func Authenticate(gate *authn.Gate, exemptPrefixes ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			defer c.SetRequest(req)

			carrier := &httpCarrier{c: c, exempt: hasAnyPrefix(req.URL.Path, exemptPrefixes)}
			return gate.Guard(req.Context(), carrier, func(ctx context.Context) error {
				c.SetRequest(req.WithContext(ctx))
				return next(c)
			})
		}
	}
}

type httpCarrier struct {
	c      echo.Context
	exempt bool
}

func (h *httpCarrier) Exempt() bool { return h.exempt }

// Credential only accepts the "Bearer <token>" form.
func (h *httpCarrier) Credential() (string, bool) {
	raw := strings.TrimSpace(h.c.Request().Header.Get(echo.HeaderAuthorization))
	if len(raw) < len(authn.BearerPrefix) || !strings.EqualFold(raw[:len(authn.BearerPrefix)], authn.BearerPrefix) {
		return "", false
	}
	return authn.StripBearer(raw), true
}

func (h *httpCarrier) Reject(error) error { return nil }

func hasAnyPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
