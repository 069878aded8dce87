package ports

import (
	"context"

	"github.com/actu/newsroom/internal/core/domain"
)

// AccountInput carries administrative create/update data. Password is only
// applied on update when ChangePassword is set.
type AccountInput struct {
	Username       string
	Email          string
	Password       string
	ChangePassword bool
	Role           domain.Role
}

// ProfileInput carries self-service profile changes. The role is not part of
// it: self-service never changes privileges.
type ProfileInput struct {
	Username       string
	Email          string
	Password       string
	ChangePassword bool
}

// UserService covers administrative account management and the caller's own
// profile.
type UserService interface {
	List(ctx context.Context) ([]*domain.Account, error)
	Get(ctx context.Context, id string) (*domain.Account, error)
	Create(ctx context.Context, input AccountInput) (*domain.Account, error)
	Update(ctx context.Context, id string, input AccountInput) (*domain.Account, error)
	// Delete removes the account and all of its tokens in one transaction.
	Delete(ctx context.Context, id string) error

	Profile(ctx context.Context, accountID string) (*domain.Account, error)
	UpdateProfile(ctx context.Context, accountID string, input ProfileInput) (*domain.Account, error)
}
