package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/actu/newsroom/internal/core/domain"
	"github.com/actu/newsroom/internal/core/ports"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// ArticleService implements article use-cases.
type ArticleService struct {
	articles   ports.ArticleRepository
	categories ports.CategoryRepository
	log        zerolog.Logger
	now        func() time.Time
}

func NewArticleService(articles ports.ArticleRepository, categories ports.CategoryRepository, log zerolog.Logger) *ArticleService {
	return &ArticleService{
		articles:   articles,
		categories: categories,
		log:        log.With().Str("component", "articles").Logger(),
		now:        time.Now,
	}
}

// List returns one page of articles, newest first. page is 0-based; a
// non-positive size selects DefaultPageSize and sizes above MaxPageSize are
// clamped.
func (s *ArticleService) List(ctx context.Context, page, size int) (*domain.ArticlePage, error) {
	if page < 0 {
		return nil, fmt.Errorf("%w: page must not be negative", domain.ErrInvalidInput)
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}

	items, total, err := s.articles.ListNewest(ctx, page, size)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*domain.Article{}
	}
	return &domain.ArticlePage{
		Items:      items,
		Page:       page,
		Size:       size,
		Total:      total,
		TotalPages: int((total + int64(size) - 1) / int64(size)),
	}, nil
}

func (s *ArticleService) Get(ctx context.Context, id string) (*domain.Article, error) {
	return s.articles.FindByID(ctx, id)
}

func (s *ArticleService) ListByCategory(ctx context.Context, categoryID string) ([]*domain.Article, error) {
	if _, err := s.categories.FindByID(ctx, categoryID); err != nil {
		return nil, err
	}
	return s.articles.ListByCategory(ctx, categoryID)
}

// GroupedByCategory maps every category name to its articles. Categories
// without articles map to an empty slice.
func (s *ArticleService) GroupedByCategory(ctx context.Context) (map[string][]*domain.Article, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	grouped := make(map[string][]*domain.Article, len(categories))
	for _, c := range categories {
		items, err := s.articles.ListByCategory(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		if items == nil {
			items = []*domain.Article{}
		}
		grouped[c.Name] = items
	}
	return grouped, nil
}

func (s *ArticleService) Create(ctx context.Context, input ports.ArticleInput) (*domain.Article, error) {
	if err := s.validate(ctx, input); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	article := &domain.Article{
		Title:      strings.TrimSpace(input.Title),
		Summary:    input.Summary,
		Content:    input.Content,
		CategoryID: input.CategoryID,
		Author:     input.Author,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.articles.Create(ctx, article); err != nil {
		return nil, err
	}
	s.log.Info().Str("article_id", article.ID).Str("category_id", article.CategoryID).Msg("article created")
	return article, nil
}

func (s *ArticleService) Update(ctx context.Context, id string, input ports.ArticleInput) (*domain.Article, error) {
	article, err := s.articles.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.validate(ctx, input); err != nil {
		return nil, err
	}

	article.Title = strings.TrimSpace(input.Title)
	article.Summary = input.Summary
	article.Content = input.Content
	article.CategoryID = input.CategoryID
	if input.Author != "" {
		article.Author = input.Author
	}
	article.UpdatedAt = s.now().UTC()

	if err := s.articles.Update(ctx, article); err != nil {
		return nil, err
	}
	return article, nil
}

func (s *ArticleService) Delete(ctx context.Context, id string) error {
	return s.articles.Delete(ctx, id)
}

func (s *ArticleService) validate(ctx context.Context, input ports.ArticleInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(input.Content) == "" {
		return fmt.Errorf("%w: content is required", domain.ErrInvalidInput)
	}
	if input.CategoryID == "" {
		return fmt.Errorf("%w: category is required", domain.ErrInvalidInput)
	}
	if _, err := s.categories.FindByID(ctx, input.CategoryID); err != nil {
		return err
	}
	return nil
}
