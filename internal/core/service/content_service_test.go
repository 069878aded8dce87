package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/actu/newsroom/internal/core/domain"
	"github.com/actu/newsroom/internal/core/ports"
)

func newContentFixture() (*ArticleService, *CategoryService) {
	articles := newMemArticles()
	categories := newMemCategories()
	return NewArticleService(articles, categories, zerolog.Nop()), NewCategoryService(categories, articles, zerolog.Nop())
}

func TestArticleService_CreateRequiresCategory(t *testing.T) {
	articles, categories := newContentFixture()
	ctx := context.Background()

	if _, err := articles.Create(ctx, ports.ArticleInput{Title: "t", Content: "c", CategoryID: "missing"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := articles.Create(ctx, ports.ArticleInput{Content: "c"}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	cat, _ := categories.Create(ctx, ports.CategoryInput{Name: "Sport"})
	a, err := articles.Create(ctx, ports.ArticleInput{Title: " Match ", Content: "c", CategoryID: cat.ID, Author: "ed"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if a.ID == "" || a.Title != "Match" || a.CreatedAt.IsZero() {
		t.Fatalf("unexpected article: %+v", a)
	}
}

func TestArticleService_ListPaging(t *testing.T) {
	articles, categories := newContentFixture()
	ctx := context.Background()
	cat, _ := categories.Create(ctx, ports.CategoryInput{Name: "Sport"})

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 25; i++ {
		at := base.Add(time.Duration(i) * time.Minute)
		articles.now = func() time.Time { return at }
		if _, err := articles.Create(ctx, ports.ArticleInput{Title: "t", Content: "c", CategoryID: cat.ID}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	page, err := articles.List(ctx, 0, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Size != DefaultPageSize || len(page.Items) != DefaultPageSize || page.Total != 25 || page.TotalPages != 3 {
		t.Fatalf("unexpected page: size=%d items=%d total=%d pages=%d", page.Size, len(page.Items), page.Total, page.TotalPages)
	}
	if !page.Items[0].CreatedAt.After(page.Items[1].CreatedAt) {
		t.Fatalf("expected newest first")
	}

	last, _ := articles.List(ctx, 2, 10)
	if len(last.Items) != 5 {
		t.Fatalf("expected 5 items on the last page, got %d", len(last.Items))
	}
	beyond, _ := articles.List(ctx, 9, 10)
	if beyond.Items == nil || len(beyond.Items) != 0 {
		t.Fatalf("expected an empty, non-nil page")
	}
	clamped, _ := articles.List(ctx, 0, 1000)
	if clamped.Size != MaxPageSize {
		t.Fatalf("expected size clamped to %d, got %d", MaxPageSize, clamped.Size)
	}
	if _, err := articles.List(ctx, -1, 10); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestArticleService_GroupedByCategory(t *testing.T) {
	articles, categories := newContentFixture()
	ctx := context.Background()
	sport, _ := categories.Create(ctx, ports.CategoryInput{Name: "Sport"})
	_, _ = categories.Create(ctx, ports.CategoryInput{Name: "Culture"})
	_, _ = articles.Create(ctx, ports.ArticleInput{Title: "a", Content: "c", CategoryID: sport.ID})
	_, _ = articles.Create(ctx, ports.ArticleInput{Title: "b", Content: "c", CategoryID: sport.ID})

	grouped, err := articles.GroupedByCategory(ctx)
	if err != nil {
		t.Fatalf("GroupedByCategory: %v", err)
	}
	if len(grouped["Sport"]) != 2 {
		t.Fatalf("expected 2 sport articles, got %d", len(grouped["Sport"]))
	}
	if items, ok := grouped["Culture"]; !ok || len(items) != 0 {
		t.Fatalf("expected empty culture group, got %v", items)
	}
}

func TestArticleService_UpdateDelete(t *testing.T) {
	articles, categories := newContentFixture()
	ctx := context.Background()
	cat, _ := categories.Create(ctx, ports.CategoryInput{Name: "Sport"})
	a, _ := articles.Create(ctx, ports.ArticleInput{Title: "a", Content: "c", CategoryID: cat.ID, Author: "ed"})

	updated, err := articles.Update(ctx, a.ID, ports.ArticleInput{Title: "b", Content: "d", CategoryID: cat.ID})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Title != "b" || updated.Author != "ed" {
		t.Fatalf("unexpected article: %+v", updated)
	}
	if err := articles.Delete(ctx, a.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := articles.Get(ctx, a.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCategoryService(t *testing.T) {
	articles, categories := newContentFixture()
	ctx := context.Background()

	sport, err := categories.Create(ctx, ports.CategoryInput{Name: "Sport"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := categories.Create(ctx, ports.CategoryInput{Name: "Sport"}); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if _, err := categories.Create(ctx, ports.CategoryInput{Name: " "}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	renamed, err := categories.Update(ctx, sport.ID, ports.CategoryInput{Name: "Sports", Description: "all"})
	if err != nil || renamed.Name != "Sports" {
		t.Fatalf("Update: %v %+v", err, renamed)
	}

	_, _ = articles.Create(ctx, ports.ArticleInput{Title: "a", Content: "c", CategoryID: sport.ID})
	if err := categories.Delete(ctx, sport.ID); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict for a category in use, got %v", err)
	}

	empty, _ := categories.Create(ctx, ports.CategoryInput{Name: "Empty"})
	if err := categories.Delete(ctx, empty.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
}

func TestSeeder(t *testing.T) {
	accounts := newMemAccounts()
	categories := newMemCategories()
	seeder := NewSeeder(accounts, categories, plainHasher{}, zerolog.Nop())
	ctx := context.Background()
	admin := AdminSeed{Username: "admin", Email: "admin@actu.test", Password: "admin123"}

	for i := 0; i < 2; i++ {
		if err := seeder.Seed(ctx, admin); err != nil {
			t.Fatalf("Seed #%d: %v", i, err)
		}
	}

	acc, err := accounts.FindByUsername(ctx, "admin")
	if err != nil {
		t.Fatalf("admin not seeded: %v", err)
	}
	if acc.Role != domain.RoleAdmin {
		t.Fatalf("expected ADMIN, got %v", acc.Role)
	}
	if n, _ := categories.Count(ctx); n != int64(len(defaultCategories)) {
		t.Fatalf("expected %d categories, got %d", len(defaultCategories), n)
	}
	all, _ := accounts.List(ctx)
	if len(all) != 1 {
		t.Fatalf("expected one account after re-seeding, got %d", len(all))
	}
}

func TestSeeder_SkipsAdminWithoutPassword(t *testing.T) {
	accounts := newMemAccounts()
	seeder := NewSeeder(accounts, newMemCategories(), plainHasher{}, zerolog.Nop())

	if err := seeder.Seed(context.Background(), AdminSeed{Username: "admin"}); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if all, _ := accounts.List(context.Background()); len(all) != 0 {
		t.Fatalf("expected no accounts, got %d", len(all))
	}
}
