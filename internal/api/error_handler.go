package api

import (
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/actu/newsroom/internal/api/handler"
	"github.com/actu/newsroom/internal/core/domain"
)

type errorBody struct {
	XMLName xml.Name `json:"-" xml:"error"`
	Error   string   `json:"error" xml:"message"`
}

// errorStatus maps a domain sentinel to its HTTP status. An empty message
// means the wrapped error text is safe to show.
type errorStatus struct {
	target  error
	status  int
	message string
}

// Authentication failures collapse to one message so a caller cannot tell a
// forged token from a revoked one.
var errorStatuses = []errorStatus{
	{domain.ErrInvalidCredential, http.StatusUnauthorized, "invalid credentials"},
	{domain.ErrUnauthenticated, http.StatusUnauthorized, "authentication required"},
	{domain.ErrTokenInvalid, http.StatusUnauthorized, "authentication required"},
	{domain.ErrTokenNotLive, http.StatusUnauthorized, "authentication required"},
	{domain.ErrInsufficientRole, http.StatusForbidden, "access forbidden"},
	{domain.ErrNotFound, http.StatusNotFound, ""},
	{domain.ErrDuplicateIdentity, http.StatusConflict, "username or email already taken"},
	{domain.ErrConflict, http.StatusConflict, ""},
	{domain.ErrInvalidInput, http.StatusBadRequest, ""},
}

// NewHTTPErrorHandler renders every error returned by a handler or middleware
// in the representation the client asked for. Unmapped errors are logged and
// reported as a bare 500.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		switch {
		case c.Request().Method == http.MethodHead:
			_ = c.NoContent(code)
		case handler.WantsXML(c):
			_ = c.XML(code, errorBody{Error: msg})
		default:
			_ = c.JSON(code, errorBody{Error: msg})
		}
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprint(he.Message)
	}

	for _, m := range errorStatuses {
		if !errors.Is(err, m.target) {
			continue
		}
		if m.message == "" {
			return m.status, err.Error()
		}
		return m.status, m.message
	}

	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("route", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("unhandled error")
	return http.StatusInternalServerError, "internal server error"
}
