package ports

import (
	"context"

	"github.com/actu/newsroom/internal/core/domain"
)

// ArticleInput carries article create/update data.
type ArticleInput struct {
	Title      string
	Summary    string
	Content    string
	CategoryID string
	Author     string
}

// CategoryInput carries category create/update data.
type CategoryInput struct {
	Name        string
	Description string
}

// ArticleService defines use-case operations for articles.
type ArticleService interface {
	List(ctx context.Context, page, size int) (*domain.ArticlePage, error)
	Get(ctx context.Context, id string) (*domain.Article, error)
	ListByCategory(ctx context.Context, categoryID string) ([]*domain.Article, error)
	// GroupedByCategory maps every category name to its articles.
	GroupedByCategory(ctx context.Context) (map[string][]*domain.Article, error)
	Create(ctx context.Context, input ArticleInput) (*domain.Article, error)
	Update(ctx context.Context, id string, input ArticleInput) (*domain.Article, error)
	Delete(ctx context.Context, id string) error
}

// CategoryService defines use-case operations for categories.
type CategoryService interface {
	List(ctx context.Context) ([]*domain.Category, error)
	Get(ctx context.Context, id string) (*domain.Category, error)
	Create(ctx context.Context, input CategoryInput) (*domain.Category, error)
	Update(ctx context.Context, id string, input CategoryInput) (*domain.Category, error)
	Delete(ctx context.Context, id string) error
}
