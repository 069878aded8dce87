package ports

import (
	"context"

	"github.com/actu/newsroom/internal/core/domain"
)

// AccountRepository defines persistence operations for accounts.
// Lookups report absence with domain.ErrNotFound; a taken username or email
// is reported with domain.ErrDuplicateIdentity.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	FindByUsername(ctx context.Context, username string) (*domain.Account, error)
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	List(ctx context.Context) ([]*domain.Account, error)
	Update(ctx context.Context, account *domain.Account) (*domain.Account, error)
	Delete(ctx context.Context, id string) error
}
