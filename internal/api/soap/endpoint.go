package soap

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/actu/newsroom/internal/core/authn"
	"github.com/actu/newsroom/internal/core/domain"
	"github.com/actu/newsroom/internal/core/ports"
)

const maxEnvelopeBytes = 1 << 20

// errFaulted stops the gate once the carrier has already answered.
var errFaulted = errors.New("soap fault written")

type operation func(ctx context.Context, raw []byte) (any, error)

// Endpoint dispatches SOAP requests to the auth, user and token services.
type Endpoint struct {
	gate   *authn.Gate
	auth   ports.AuthService
	users  ports.UserService
	tokens ports.TokenService
	log    zerolog.Logger
	ops    map[string]operation
}

func NewEndpoint(gate *authn.Gate, auth ports.AuthService, users ports.UserService, tokens ports.TokenService, log zerolog.Logger) *Endpoint {
	ep := &Endpoint{
		gate:   gate,
		auth:   auth,
		users:  users,
		tokens: tokens,
		log:    log.With().Str("component", "soap").Logger(),
	}
	ep.ops = ep.operations()
	return ep
}

// Handle is the echo handler for POST /ws.
func (ep *Endpoint) Handle(c echo.Context) error {
	raw, err := io.ReadAll(io.LimitReader(c.Request().Body, maxEnvelopeBytes+1))
	if err != nil || len(raw) > maxEnvelopeBytes {
		return writeFault(c, faultClient, "Request too large or unreadable")
	}
	env, err := parseEnvelope(raw)
	if err != nil {
		return writeFault(c, faultClient, err.Error())
	}

	err = ep.gate.Guard(c.Request().Context(), &carrier{c: c, env: env}, func(ctx context.Context) error {
		return ep.dispatch(ctx, c, env, raw)
	})
	if errors.Is(err, errFaulted) {
		return nil
	}
	return err
}

func (ep *Endpoint) dispatch(ctx context.Context, c echo.Context, env *requestEnvelope, raw []byte) error {
	name := env.operation()
	op, ok := ep.ops[name.Local]
	if !ok || name.Space != UsersNS {
		return writeFault(c, faultClient, "No endpoint mapping found for "+name.Local)
	}

	resp, err := op(ctx, raw)
	if err != nil {
		return ep.fault(c, name.Local, err)
	}
	return writeEnvelope(c, http.StatusOK, resp)
}

// fault maps a service error to a SOAP fault. Only unexpected errors are
// reported as server faults.
func (ep *Endpoint) fault(c echo.Context, op string, err error) error {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated),
		errors.Is(err, domain.ErrTokenInvalid),
		errors.Is(err, domain.ErrTokenNotLive):
		return writeFault(c, faultClient, "Authentication required")
	case errors.Is(err, domain.ErrInsufficientRole):
		return writeFault(c, faultClient, "Access denied")
	case errors.Is(err, domain.ErrInvalidCredential):
		return writeFault(c, faultClient, "Invalid credentials")
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrDuplicateIdentity),
		errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrInvalidInput):
		return writeFault(c, faultClient, err.Error())
	}

	ep.log.Error().Err(err).Str("operation", op).Msg("soap operation failed")
	return writeFault(c, faultServer, "Internal error")
}

// carrier adapts a SOAP request to the authentication gate.
type carrier struct {
	c   echo.Context
	env *requestEnvelope
}

// Exempt covers the two operations that run before a token exists.
func (s *carrier) Exempt() bool {
	local := s.env.operation().Local
	return strings.Contains(local, "loginRequest") || strings.Contains(local, "registerRequest")
}

func (s *carrier) Credential() (string, bool) {
	for _, h := range s.env.Header.Authorization {
		if v := strings.TrimSpace(h); v != "" {
			return authn.StripBearer(v), true
		}
	}
	return "", false
}

func (s *carrier) Reject(error) error {
	if err := writeFault(s.c, faultClient, "Authentication required"); err != nil {
		return err
	}
	return errFaulted
}
