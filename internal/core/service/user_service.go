package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/actu/newsroom/internal/core/domain"
	"github.com/actu/newsroom/internal/core/ports"
)

// UserService implements administrative account management and the
// self-service profile.
type UserService struct {
	accounts ports.AccountRepository
	hasher   ports.PasswordHasher
	tokens   *TokenLifecycleService
	tx       ports.Transactor
	log      zerolog.Logger
	now      func() time.Time
}

// NewUserService wires the service. tx may be nil when the store has no
// transactions; the steps then run one after the other.
func NewUserService(accounts ports.AccountRepository, hasher ports.PasswordHasher, tokens *TokenLifecycleService, tx ports.Transactor, log zerolog.Logger) *UserService {
	if tx == nil {
		tx = directTransactor{}
	}
	return &UserService{
		accounts: accounts,
		hasher:   hasher,
		tokens:   tokens,
		tx:       tx,
		log:      log.With().Str("component", "users").Logger(),
		now:      time.Now,
	}
}

func (s *UserService) List(ctx context.Context) ([]*domain.Account, error) {
	return s.accounts.List(ctx)
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.Account, error) {
	return s.accounts.FindByID(ctx, id)
}

func (s *UserService) Create(ctx context.Context, input ports.AccountInput) (*domain.Account, error) {
	username, email, err := normalizeIdentity(input.Username, input.Email)
	if err != nil {
		return nil, err
	}
	if input.Password == "" {
		return nil, fmt.Errorf("%w: password is required", domain.ErrInvalidInput)
	}
	role := input.Role
	if role == domain.RoleUnknown {
		role = domain.RoleVisitor
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: role", domain.ErrInvalidInput)
	}
	if err := ensureIdentityFree(ctx, s.accounts, "", username, email); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	created, err := s.accounts.Create(ctx, &domain.Account{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("account_id", created.ID).Str("role", role.String()).Msg("account created")
	return created, nil
}

// Update applies an administrator's changes. A role or username change
// revokes the account's live token.
func (s *UserService) Update(ctx context.Context, id string, input ports.AccountInput) (*domain.Account, error) {
	account, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	previousUsername, previousRole := account.Username, account.Role

	if input.Role != domain.RoleUnknown {
		if !input.Role.Valid() {
			return nil, fmt.Errorf("%w: role", domain.ErrInvalidInput)
		}
		account.Role = input.Role
	}
	if err := s.applyIdentity(ctx, account, input.Username, input.Email, input.Password, input.ChangePassword); err != nil {
		return nil, err
	}

	updated, err := s.save(ctx, account, previousUsername, previousRole)
	if err != nil {
		return nil, err
	}
	if updated.Role != previousRole {
		s.log.Info().
			Str("account_id", updated.ID).
			Str("from", previousRole.String()).
			Str("to", updated.Role.String()).
			Msg("role changed")
	}
	return updated, nil
}

// save stores account and, when its username or role moved away from the
// given values, revokes its live token in the same transaction. Tokens sign
// both.
func (s *UserService) save(ctx context.Context, account *domain.Account, previousUsername string, previousRole domain.Role) (*domain.Account, error) {
	var updated *domain.Account
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		updated, err = s.accounts.Update(ctx, account)
		if err != nil {
			return err
		}
		if updated.Username == previousUsername && updated.Role == previousRole {
			return nil
		}
		return s.tokens.RevokeLive(ctx, updated.ID)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the account and all of its tokens in one transaction.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if _, err := s.accounts.FindByID(ctx, id); err != nil {
		return err
	}
	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.tokens.DeleteForAccount(ctx, id); err != nil {
			return err
		}
		return s.accounts.Delete(ctx, id)
	})
}

func (s *UserService) Profile(ctx context.Context, accountID string) (*domain.Account, error) {
	if accountID == "" {
		return nil, domain.ErrUnauthenticated
	}
	return s.accounts.FindByID(ctx, accountID)
}

// UpdateProfile changes the caller's own username, email or password. The
// role is left untouched. A new username retires the caller's token.
func (s *UserService) UpdateProfile(ctx context.Context, accountID string, input ports.ProfileInput) (*domain.Account, error) {
	account, err := s.Profile(ctx, accountID)
	if err != nil {
		return nil, err
	}
	previousUsername := account.Username
	if err := s.applyIdentity(ctx, account, input.Username, input.Email, input.Password, input.ChangePassword); err != nil {
		return nil, err
	}
	return s.save(ctx, account, previousUsername, account.Role)
}

// applyIdentity overlays the non-empty fields onto account.
func (s *UserService) applyIdentity(ctx context.Context, account *domain.Account, username, email, password string, changePassword bool) error {
	if username == "" {
		username = account.Username
	}
	if email == "" {
		email = account.Email
	}
	username, email, err := normalizeIdentity(username, email)
	if err != nil {
		return err
	}
	if username != account.Username || email != account.Email {
		if err := ensureIdentityFree(ctx, s.accounts, account.ID, username, email); err != nil {
			return err
		}
	}
	account.Username = username
	account.Email = email

	if changePassword {
		if password == "" {
			return fmt.Errorf("%w: password is required", domain.ErrInvalidInput)
		}
		hash, err := s.hasher.Hash(password)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		account.PasswordHash = hash
	}
	account.UpdatedAt = s.now().UTC()
	return nil
}

type directTransactor struct{}

func (directTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
