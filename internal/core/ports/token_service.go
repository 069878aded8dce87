package ports

import (
	"context"

	"github.com/actu/newsroom/internal/core/domain"
)

// TokenValidator decides whether a bearer token admits a call.
type TokenValidator interface {
	// Validate returns the principal for value, or domain.ErrTokenInvalid /
	// domain.ErrTokenNotLive.
	Validate(ctx context.Context, value string) (*domain.Principal, error)
}

// TokenService is the administrative surface of the token lifecycle.
type TokenService interface {
	TokenValidator
	Generate(ctx context.Context, accountID string) (*domain.IssuedToken, error)
	Revoke(ctx context.Context, id string) error
	Reactivate(ctx context.Context, id string) (*domain.IssuedToken, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*domain.IssuedToken, error)
	ListForAccount(ctx context.Context, accountID string) ([]*domain.IssuedToken, error)
}
