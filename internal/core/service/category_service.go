package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/actu/newsroom/internal/core/domain"
	"github.com/actu/newsroom/internal/core/ports"
)

// CategoryService implements category use-cases.
type CategoryService struct {
	categories ports.CategoryRepository
	articles   ports.ArticleRepository
	log        zerolog.Logger
}

func NewCategoryService(categories ports.CategoryRepository, articles ports.ArticleRepository, log zerolog.Logger) *CategoryService {
	return &CategoryService{
		categories: categories,
		articles:   articles,
		log:        log.With().Str("component", "categories").Logger(),
	}
}

func (s *CategoryService) List(ctx context.Context) ([]*domain.Category, error) {
	return s.categories.List(ctx)
}

func (s *CategoryService) Get(ctx context.Context, id string) (*domain.Category, error) {
	return s.categories.FindByID(ctx, id)
}

func (s *CategoryService) Create(ctx context.Context, input ports.CategoryInput) (*domain.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	category := &domain.Category{Name: name, Description: input.Description}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CategoryService) Update(ctx context.Context, id string, input ports.CategoryInput) (*domain.Category, error) {
	category, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	category.Name = name
	category.Description = input.Description
	if err := s.categories.Update(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// Delete refuses to remove a category that still has articles.
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	if _, err := s.categories.FindByID(ctx, id); err != nil {
		return err
	}
	articles, err := s.articles.ListByCategory(ctx, id)
	if err != nil {
		return err
	}
	if len(articles) > 0 {
		return fmt.Errorf("%w: category has %d articles", domain.ErrConflict, len(articles))
	}
	return s.categories.Delete(ctx, id)
}
