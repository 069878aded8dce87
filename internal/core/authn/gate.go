// Package authn holds the authentication gate shared by every transport.
//
// A transport adapts its request to a Carrier; the Gate runs the admission
// algorithm once, so the HTTP middleware and the SOAP interceptor enforce the
// exact same policy.
package authn

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/actu/newsroom/internal/core/domain"
	"github.com/actu/newsroom/internal/core/ports"
)

// BearerPrefix precedes the token in both credential carriages.
const BearerPrefix = "Bearer "

// Outcome classifies a single pass through the gate.
type Outcome string

const (
	OutcomeExempt        Outcome = "exempt"
	OutcomeAuthenticated Outcome = "authenticated"
	OutcomeMissing       Outcome = "missing"
	OutcomeRejected      Outcome = "rejected"
	OutcomeError         Outcome = "error"
)

// Carrier is the transport-specific half of the gate.
type Carrier interface {
	// Exempt reports whether the call skips authentication entirely.
	Exempt() bool
	// Credential returns the bearer token without its prefix.
	Credential() (string, bool)
	// Reject is called once when the call cannot be authenticated. Returning
	// nil lets the call continue without a principal.
	Reject(err error) error
}

// Gate admits calls whose bearer token validates.
type Gate struct {
	validator ports.TokenValidator
	transport string
	log       zerolog.Logger
	observe   func(transport string, outcome Outcome)
}

// NewGate builds a gate for one transport. observe may be nil.
func NewGate(validator ports.TokenValidator, transport string, log zerolog.Logger, observe func(string, Outcome)) *Gate {
	if observe == nil {
		observe = func(string, Outcome) {}
	}
	return &Gate{
		validator: validator,
		transport: transport,
		log:       log.With().Str("transport", transport).Logger(),
		observe:   observe,
	}
}

// Guard authenticates the call described by carrier and invokes next with a
// context carrying the principal. The principal only ever lives in the
// context handed to next, so it cannot outlive the call.
func (g *Gate) Guard(ctx context.Context, carrier Carrier, next func(ctx context.Context) error) error {
	ctx = WithTransport(ctx, g.transport)
	if carrier.Exempt() {
		g.observe(g.transport, OutcomeExempt)
		return next(ctx)
	}

	token, ok := carrier.Credential()
	token = strings.TrimSpace(token)
	if !ok || token == "" {
		g.observe(g.transport, OutcomeMissing)
		return g.reject(ctx, carrier, next)
	}

	principal, err := g.validator.Validate(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrTokenInvalid) || errors.Is(err, domain.ErrTokenNotLive) {
			g.observe(g.transport, OutcomeRejected)
			g.log.Debug().Err(err).Msg("bearer token rejected")
		} else {
			g.observe(g.transport, OutcomeError)
			g.log.Error().Err(err).Msg("token validation failed")
		}
		return g.reject(ctx, carrier, next)
	}

	g.observe(g.transport, OutcomeAuthenticated)
	ctx = WithToken(WithPrincipal(ctx, *principal), token)
	return next(ctx)
}

// reject never tells the carrier which check failed.
func (g *Gate) reject(ctx context.Context, carrier Carrier, next func(ctx context.Context) error) error {
	if err := carrier.Reject(domain.ErrUnauthenticated); err != nil {
		return err
	}
	return next(ctx)
}

// StripBearer removes an optional "Bearer " prefix.
func StripBearer(raw string) string {
	raw = strings.TrimSpace(raw)
	if len(raw) >= len(BearerPrefix) && strings.EqualFold(raw[:len(BearerPrefix)], BearerPrefix) {
		return strings.TrimSpace(raw[len(BearerPrefix):])
	}
	return raw
}
