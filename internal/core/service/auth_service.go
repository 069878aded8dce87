package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/actu/newsroom/internal/core/domain"
	"github.com/actu/newsroom/internal/core/ports"
)

// AuthService implements registration, login and logout.
type AuthService struct {
	accounts ports.AccountRepository
	hasher   ports.PasswordHasher
	tokens   *TokenLifecycleService
	auditor  ports.SecurityAuditor
	log      zerolog.Logger
	now      func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(accounts ports.AccountRepository, hasher ports.PasswordHasher, tokens *TokenLifecycleService, auditor ports.SecurityAuditor, log zerolog.Logger) *AuthService {
	if auditor == nil {
		auditor = nopAuditor{}
	}
	return &AuthService{
		accounts: accounts,
		hasher:   hasher,
		tokens:   tokens,
		auditor:  auditor,
		log:      log.With().Str("component", "auth").Logger(),
		now:      time.Now,
	}
}

// Register creates a VISITOR account.
func (s *AuthService) Register(ctx context.Context, input ports.RegisterInput) (*domain.Account, error) {
	username, email, err := normalizeIdentity(input.Username, input.Email)
	if err != nil {
		return nil, err
	}
	if input.Password == "" {
		return nil, fmt.Errorf("%w: password is required", domain.ErrInvalidInput)
	}
	if err := ensureIdentityFree(ctx, s.accounts, "", username, email); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	return s.accounts.Create(ctx, &domain.Account{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleVisitor,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

// Login checks the password and returns the account's live token. An unknown
// username and a wrong password both yield domain.ErrInvalidCredential.
func (s *AuthService) Login(ctx context.Context, username, password string) (*ports.LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredential
	}

	account, err := s.accounts.FindByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("find account: %w", err)
		}
		// Same cost as a real comparison.
		_ = s.hasher.Verify(s.dummy(), password)
		s.auditor.Record(ctx, newSecurityEvent(ctx, domain.EventLoginFailed, "", "", "unknown username", s.now()))
		return nil, domain.ErrInvalidCredential
	}

	if err := s.hasher.Verify(account.PasswordHash, password); err != nil {
		s.auditor.Record(ctx, newSecurityEvent(ctx, domain.EventLoginFailed, account.ID, "", "wrong password", s.now()))
		return nil, domain.ErrInvalidCredential
	}

	token, err := s.tokens.IssueOrRotate(ctx, account)
	if err != nil {
		return nil, err
	}
	s.auditor.Record(ctx, newSecurityEvent(ctx, domain.EventLoginSucceeded, account.ID, token.ID, "", s.now()))
	s.log.Info().Str("account_id", account.ID).Str("token_id", token.ID).Msg("login")

	return &ports.LoginResult{Token: token, Account: account}, nil
}

// Logout revokes the token the caller authenticated with.
func (s *AuthService) Logout(ctx context.Context, tokenValue string) error {
	if tokenValue == "" {
		return domain.ErrUnauthenticated
	}
	return s.tokens.Logout(ctx, tokenValue)
}

func (s *AuthService) CurrentUser(ctx context.Context, accountID string) (*domain.Account, error) {
	if accountID == "" {
		return nil, domain.ErrUnauthenticated
	}
	return s.accounts.FindByID(ctx, accountID)
}

func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash("not-a-real-password")
		if err != nil {
			s.log.Error().Err(err).Msg("dummy hash")
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

// identityRules applies the REST DTO email rule to every transport.
var identityRules = validator.New()

func normalizeIdentity(username, email string) (string, string, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" {
		return "", "", fmt.Errorf("%w: username is required", domain.ErrInvalidInput)
	}
	if email == "" {
		return "", "", fmt.Errorf("%w: email is required", domain.ErrInvalidInput)
	}
	if err := identityRules.Var(email, "email"); err != nil {
		return "", "", fmt.Errorf("%w: email %q", domain.ErrInvalidInput, email)
	}
	return username, email, nil
}

// ensureIdentityFree fails with domain.ErrDuplicateIdentity when username or
// email belongs to an account other than selfID.
func ensureIdentityFree(ctx context.Context, accounts ports.AccountRepository, selfID, username, email string) error {
	if existing, err := accounts.FindByUsername(ctx, username); err == nil {
		if existing.ID != selfID {
			return domain.ErrDuplicateIdentity
		}
	} else if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("find by username: %w", err)
	}

	if existing, err := accounts.FindByEmail(ctx, email); err == nil {
		if existing.ID != selfID {
			return domain.ErrDuplicateIdentity
		}
	} else if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("find by email: %w", err)
	}
	return nil
}
