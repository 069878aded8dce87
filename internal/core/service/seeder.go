package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/actu/newsroom/internal/core/domain"
	"github.com/actu/newsroom/internal/core/ports"
)

// AdminSeed describes the bootstrap administrator. An empty Password skips it.
type AdminSeed struct {
	Username string
	Email    string
	Password string
}

var defaultCategories = []domain.Category{
	{Name: "Politique", Description: "Actualités politiques"},
	{Name: "Économie", Description: "Actualités économiques"},
	{Name: "Technologie", Description: "Actualités technologiques"},
	{Name: "Sport", Description: "Actualités sportives"},
	{Name: "Culture", Description: "Actualités culturelles"},
}

// Seeder creates the bootstrap administrator and the default categories.
// Running it again is harmless.
type Seeder struct {
	accounts   ports.AccountRepository
	categories ports.CategoryRepository
	hasher     ports.PasswordHasher
	log        zerolog.Logger
}

func NewSeeder(accounts ports.AccountRepository, categories ports.CategoryRepository, hasher ports.PasswordHasher, log zerolog.Logger) *Seeder {
	return &Seeder{accounts: accounts, categories: categories, hasher: hasher, log: log.With().Str("component", "seeder").Logger()}
}

func (s *Seeder) Seed(ctx context.Context, admin AdminSeed) error {
	if err := s.seedAdmin(ctx, admin); err != nil {
		return err
	}
	return s.seedCategories(ctx)
}

func (s *Seeder) seedAdmin(ctx context.Context, admin AdminSeed) error {
	if admin.Password == "" || admin.Username == "" {
		s.log.Info().Msg("admin seed skipped")
		return nil
	}
	if _, err := s.accounts.FindByUsername(ctx, admin.Username); err == nil {
		return nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("find admin: %w", err)
	}

	hash, err := s.hasher.Hash(admin.Password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	now := time.Now().UTC()
	created, err := s.accounts.Create(ctx, &domain.Account{
		Username:     admin.Username,
		Email:        admin.Email,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	s.log.Info().Str("account_id", created.ID).Str("username", created.Username).Msg("admin account seeded")
	return nil
}

func (s *Seeder) seedCategories(ctx context.Context) error {
	n, err := s.categories.Count(ctx)
	if err != nil {
		return fmt.Errorf("count categories: %w", err)
	}
	if n > 0 {
		return nil
	}
	for _, c := range defaultCategories {
		category := c
		if err := s.categories.Create(ctx, &category); err != nil {
			return fmt.Errorf("seed category %s: %w", c.Name, err)
		}
	}
	s.log.Info().Int("count", len(defaultCategories)).Msg("default categories seeded")
	return nil
}
