package authn

import (
	"context"

	"github.com/actu/newsroom/internal/core/domain"
)

type principalContextKey struct{}
type tokenContextKey struct{}
type transportContextKey struct{}

// WithPrincipal returns a copy of ctx carrying the authenticated principal.
func WithPrincipal(ctx context.Context, principal domain.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, principal)
}

// PrincipalFrom extracts the principal bound by the gate.
func PrincipalFrom(ctx context.Context) (domain.Principal, bool) {
	if ctx == nil {
		return domain.Principal{}, false
	}
	p, ok := ctx.Value(principalContextKey{}).(domain.Principal)
	if !ok || p.Subject == "" {
		return domain.Principal{}, false
	}
	return p, true
}

// WithToken stores the raw bearer token the call authenticated with.
func WithToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, tokenContextKey{}, token)
}

// TokenFrom returns the bearer token attached by the gate.
func TokenFrom(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	v, ok := ctx.Value(tokenContextKey{}).(string)
	return v, ok && v != ""
}

// WithTransport records which transport ("rest", "soap") carried the call.
func WithTransport(ctx context.Context, transport string) context.Context {
	return context.WithValue(ctx, transportContextKey{}, transport)
}

// TransportFrom returns the transport recorded by the gate.
func TransportFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(transportContextKey{}).(string)
	return v
}
