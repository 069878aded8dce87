package ports

import (
	"context"

	"github.com/actu/newsroom/internal/core/domain"
)

// RegisterInput carries self-service registration data.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token   *domain.IssuedToken
	Account *domain.Account
}

// AuthService covers the unauthenticated entry points and the session of the
// caller.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.Account, error)
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	// Logout revokes the token the caller authenticated with.
	Logout(ctx context.Context, tokenValue string) error
	CurrentUser(ctx context.Context, accountID string) (*domain.Account, error)
}
