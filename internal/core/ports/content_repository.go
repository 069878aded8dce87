package ports

import (
	"context"

	"github.com/actu/newsroom/internal/core/domain"
)

// ArticleRepository defines persistence operations for articles.
type ArticleRepository interface {
	Create(ctx context.Context, article *domain.Article) error
	FindByID(ctx context.Context, id string) (*domain.Article, error)
	// ListNewest returns one page (0-based) ordered by created_at descending
	// and the total number of articles.
	ListNewest(ctx context.Context, page, size int) ([]*domain.Article, int64, error)
	ListByCategory(ctx context.Context, categoryID string) ([]*domain.Article, error)
	Update(ctx context.Context, article *domain.Article) error
	Delete(ctx context.Context, id string) error
}

// CategoryRepository defines persistence operations for categories.
// A duplicate name is reported with domain.ErrConflict.
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	FindByID(ctx context.Context, id string) (*domain.Category, error)
	List(ctx context.Context) ([]*domain.Category, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, category *domain.Category) error
	Delete(ctx context.Context, id string) error
}
