package ports

import (
	"context"
	"time"

	"github.com/actu/newsroom/internal/core/domain"
)

// TokenRepository is the registry of issued tokens and the authority for
// revocation state. Single-row lookups report absence with domain.ErrNotFound.
type TokenRepository interface {
	FindByID(ctx context.Context, id string) (*domain.IssuedToken, error)
	FindByValue(ctx context.Context, value string) (*domain.IssuedToken, error)
	// FindLive returns the account's non-revoked token with ExpiresAt > now.
	FindLive(ctx context.Context, accountID string, now time.Time) (*domain.IssuedToken, error)
	ListByAccount(ctx context.Context, accountID string) ([]*domain.IssuedToken, error)
	ListAll(ctx context.Context) ([]*domain.IssuedToken, error)
	// Save inserts the token when its ID is empty (assigning one) and
	// replaces the stored row otherwise.
	Save(ctx context.Context, token *domain.IssuedToken) error
	DeleteByAccount(ctx context.Context, accountID string) (int64, error)
	DeleteByID(ctx context.Context, id string) error
}
