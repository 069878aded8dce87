package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/actu/newsroom/internal/core/authn"
	"github.com/actu/newsroom/internal/core/domain"
	"github.com/actu/newsroom/internal/core/ports"
)

// DefaultTokenTTL is the lifetime of a freshly issued token.
const DefaultTokenTTL = 30 * 24 * time.Hour

// TokenLifecycleService owns every transition of an issued token. All writes
// for one account happen under that account's lock, which keeps at most one
// live token per account.
type TokenLifecycleService struct {
	tokens   ports.TokenRepository
	accounts ports.AccountRepository
	codec    *TokenCodec
	locker   ports.Locker
	auditor  ports.SecurityAuditor
	ttl      time.Duration
	now      func() time.Time
	log      zerolog.Logger
}

// LifecycleOption customises a TokenLifecycleService.
type LifecycleOption func(*TokenLifecycleService)

// WithTokenTTL overrides DefaultTokenTTL.
func WithTokenTTL(ttl time.Duration) LifecycleOption {
	return func(s *TokenLifecycleService) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) LifecycleOption {
	return func(s *TokenLifecycleService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLocker replaces the in-process locker, e.g. with a Redis lease.
func WithLocker(l ports.Locker) LifecycleOption {
	return func(s *TokenLifecycleService) {
		if l != nil {
			s.locker = l
		}
	}
}

// WithAuditor attaches a security audit sink.
func WithAuditor(a ports.SecurityAuditor) LifecycleOption {
	return func(s *TokenLifecycleService) {
		if a != nil {
			s.auditor = a
		}
	}
}

func NewTokenLifecycleService(tokens ports.TokenRepository, accounts ports.AccountRepository, codec *TokenCodec, log zerolog.Logger, opts ...LifecycleOption) *TokenLifecycleService {
	s := &TokenLifecycleService{
		tokens:   tokens,
		accounts: accounts,
		codec:    codec,
		locker:   NewLocalLocker(),
		auditor:  nopAuditor{},
		ttl:      DefaultTokenTTL,
		now:      time.Now,
		log:      log.With().Str("component", "token_lifecycle").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IssueOrRotate returns the account's usable live token, or mints a new value
// into a reused row (the unusable live row first, then any revoked or expired
// row) or a new one.
func (s *TokenLifecycleService) IssueOrRotate(ctx context.Context, account *domain.Account) (*domain.IssuedToken, error) {
	if account == nil || account.ID == "" {
		return nil, fmt.Errorf("%w: account is required", domain.ErrInvalidInput)
	}

	var issued *domain.IssuedToken
	err := s.withAccountLock(ctx, account.ID, func() error {
		now := s.now().UTC()

		live, err := s.tokens.FindLive(ctx, account.ID, now)
		switch {
		case err == nil:
			if s.usable(live, account, now) {
				issued = live
				s.audit(ctx, domain.EventTokenReused, account.ID, live.ID, "")
				return nil
			}
			if err := s.mint(ctx, live, account, now); err != nil {
				return err
			}
			issued = live
			s.audit(ctx, domain.EventTokenRotated, account.ID, live.ID, "stale live token")
			return nil
		case errors.Is(err, domain.ErrNotFound):
		default:
			return fmt.Errorf("find live token: %w", err)
		}

		history, err := s.tokens.ListByAccount(ctx, account.ID)
		if err != nil {
			return fmt.Errorf("list tokens: %w", err)
		}
		for _, tok := range history {
			if tok.IsLive(now) {
				continue
			}
			if err := s.mint(ctx, tok, account, now); err != nil {
				return err
			}
			issued = tok
			s.audit(ctx, domain.EventTokenRotated, account.ID, tok.ID, "")
			return nil
		}

		tok := &domain.IssuedToken{OwnerAccountID: account.ID}
		if err := s.mint(ctx, tok, account, now); err != nil {
			return err
		}
		issued = tok
		s.audit(ctx, domain.EventTokenIssued, account.ID, tok.ID, "")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return issued, nil
}

// usable reports whether a live row can be handed out again as is.
func (s *TokenLifecycleService) usable(tok *domain.IssuedToken, account *domain.Account, now time.Time) bool {
	claims, err := s.codec.VerifyAt(tok.Value, now)
	if err != nil {
		return false
	}
	return claims.Subject == account.Username && claims.Role == account.Role
}

// mint signs a new value into tok and persists it.
func (s *TokenLifecycleService) mint(ctx context.Context, tok *domain.IssuedToken, account *domain.Account, now time.Time) error {
	value, expiresAt, err := s.codec.IssueAt(account.Username, account.Role, now, s.ttl)
	if err != nil {
		return err
	}
	tok.Value = value
	tok.OwnerAccountID = account.ID
	tok.CreatedAt = now
	tok.ExpiresAt = expiresAt
	tok.Revoked = false
	if err := s.tokens.Save(ctx, tok); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

// Validate admits value only when it verifies, its stored row is live at a
// single instant and its claims match the owning account's current username
// and role. Codec failures report domain.ErrTokenInvalid and anything the
// stores rule out reports domain.ErrTokenNotLive.
func (s *TokenLifecycleService) Validate(ctx context.Context, value string) (*domain.Principal, error) {
	now := s.now()

	claims, err := s.codec.VerifyAt(value, now)
	if err != nil {
		return nil, domain.ErrTokenInvalid
	}

	tok, err := s.tokens.FindByValue(ctx, value)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.log.Error().Err(err).Msg("token lookup failed")
		}
		return nil, domain.ErrTokenNotLive
	}
	if !tok.IsLive(now) {
		return nil, domain.ErrTokenNotLive
	}

	// The claims must still describe the owner. A rename or a role change
	// leaves older values signed for an identity the account no longer has.
	owner, err := s.accounts.FindByID(ctx, tok.OwnerAccountID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.log.Error().Err(err).Str("account_id", tok.OwnerAccountID).Msg("token owner lookup failed")
		}
		return nil, domain.ErrTokenNotLive
	}
	if claims.Subject != owner.Username || claims.Role != owner.Role {
		return nil, domain.ErrTokenNotLive
	}

	return &domain.Principal{
		Subject:   claims.Subject,
		Role:      claims.Role,
		AccountID: tok.OwnerAccountID,
	}, nil
}

// Revoke marks the token revoked. Revoking twice is a no-op.
func (s *TokenLifecycleService) Revoke(ctx context.Context, id string) error {
	return s.withToken(ctx, id, func(tok *domain.IssuedToken, _ time.Time) error {
		if tok.Revoked {
			return nil
		}
		tok.Revoked = true
		if err := s.tokens.Save(ctx, tok); err != nil {
			return fmt.Errorf("revoke token: %w", err)
		}
		s.audit(ctx, domain.EventTokenRevoked, tok.OwnerAccountID, tok.ID, "")
		return nil
	})
}

// Reactivate clears the revoked flag and extends the row by one TTL. Any other
// live token of the same account is revoked. The signed value is kept, so a
// value whose own claim has expired stays unusable.
func (s *TokenLifecycleService) Reactivate(ctx context.Context, id string) (*domain.IssuedToken, error) {
	var out *domain.IssuedToken
	err := s.withToken(ctx, id, func(tok *domain.IssuedToken, now time.Time) error {
		siblings, err := s.tokens.ListByAccount(ctx, tok.OwnerAccountID)
		if err != nil {
			return fmt.Errorf("list tokens: %w", err)
		}
		for _, other := range siblings {
			if other.ID == tok.ID || !other.IsLive(now) {
				continue
			}
			other.Revoked = true
			if err := s.tokens.Save(ctx, other); err != nil {
				return fmt.Errorf("revoke sibling token: %w", err)
			}
			s.audit(ctx, domain.EventTokenRevoked, other.OwnerAccountID, other.ID, "superseded by reactivation")
		}

		tok.Revoked = false
		tok.ExpiresAt = now.Add(s.ttl)
		if err := s.tokens.Save(ctx, tok); err != nil {
			return fmt.Errorf("reactivate token: %w", err)
		}
		s.audit(ctx, domain.EventTokenReactivated, tok.OwnerAccountID, tok.ID, "")
		out = tok
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes one token row.
func (s *TokenLifecycleService) Delete(ctx context.Context, id string) error {
	return s.withToken(ctx, id, func(tok *domain.IssuedToken, _ time.Time) error {
		if err := s.tokens.DeleteByID(ctx, tok.ID); err != nil {
			return fmt.Errorf("delete token: %w", err)
		}
		s.audit(ctx, domain.EventTokenDeleted, tok.OwnerAccountID, tok.ID, "")
		return nil
	})
}

// DeleteForAccount purges every token of accountID. Run it in the same
// transaction as the account deletion.
func (s *TokenLifecycleService) DeleteForAccount(ctx context.Context, accountID string) (int64, error) {
	var purged int64
	err := s.withAccountLock(ctx, accountID, func() error {
		n, err := s.tokens.DeleteByAccount(ctx, accountID)
		if err != nil {
			return fmt.Errorf("purge tokens: %w", err)
		}
		purged = n
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.audit(ctx, domain.EventTokensPurged, accountID, "", fmt.Sprintf("%d rows", purged))
	return purged, nil
}

// RevokeLive revokes the account's live token, if any. It is used when the
// account's role changes so the old claims stop admitting calls.
func (s *TokenLifecycleService) RevokeLive(ctx context.Context, accountID string) error {
	return s.withAccountLock(ctx, accountID, func() error {
		now := s.now().UTC()
		history, err := s.tokens.ListByAccount(ctx, accountID)
		if err != nil {
			return fmt.Errorf("list tokens: %w", err)
		}
		for _, tok := range history {
			if !tok.IsLive(now) {
				continue
			}
			tok.Revoked = true
			if err := s.tokens.Save(ctx, tok); err != nil {
				return fmt.Errorf("revoke token: %w", err)
			}
			s.audit(ctx, domain.EventTokenRevoked, accountID, tok.ID, "account changed")
		}
		return nil
	})
}

// Generate issues or rotates the token of accountID on an administrator's
// behalf.
func (s *TokenLifecycleService) Generate(ctx context.Context, accountID string) (*domain.IssuedToken, error) {
	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return s.IssueOrRotate(ctx, account)
}

// Logout revokes the token the caller presented.
func (s *TokenLifecycleService) Logout(ctx context.Context, value string) error {
	tok, err := s.tokens.FindByValue(ctx, value)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrTokenNotLive
		}
		return fmt.Errorf("lookup token: %w", err)
	}
	return s.Revoke(ctx, tok.ID)
}

func (s *TokenLifecycleService) List(ctx context.Context) ([]*domain.IssuedToken, error) {
	return s.tokens.ListAll(ctx)
}

func (s *TokenLifecycleService) ListForAccount(ctx context.Context, accountID string) ([]*domain.IssuedToken, error) {
	if _, err := s.accounts.FindByID(ctx, accountID); err != nil {
		return nil, err
	}
	return s.tokens.ListByAccount(ctx, accountID)
}

// withToken loads id, takes its owner's lock and re-reads the row before
// handing it to fn.
func (s *TokenLifecycleService) withToken(ctx context.Context, id string, fn func(tok *domain.IssuedToken, now time.Time) error) error {
	if id == "" {
		return fmt.Errorf("%w: token id is required", domain.ErrInvalidInput)
	}
	tok, err := s.tokens.FindByID(ctx, id)
	if err != nil {
		return err
	}
	return s.withAccountLock(ctx, tok.OwnerAccountID, func() error {
		current, err := s.tokens.FindByID(ctx, id)
		if err != nil {
			return err
		}
		return fn(current, s.now().UTC())
	})
}

func (s *TokenLifecycleService) withAccountLock(ctx context.Context, accountID string, fn func() error) error {
	unlock, err := s.locker.Lock(ctx, "token-owner:"+accountID)
	if err != nil {
		return fmt.Errorf("lock account %s: %w", accountID, err)
	}
	defer unlock()
	return fn()
}

func (s *TokenLifecycleService) audit(ctx context.Context, kind domain.SecurityEventKind, accountID, tokenID, detail string) {
	s.log.Debug().
		Str("event", string(kind)).
		Str("account_id", accountID).
		Str("token_id", tokenID).
		Msg("token lifecycle")
	s.auditor.Record(ctx, newSecurityEvent(ctx, kind, accountID, tokenID, detail, s.now()))
}

func newSecurityEvent(ctx context.Context, kind domain.SecurityEventKind, accountID, tokenID, detail string, at time.Time) domain.SecurityEvent {
	ev := domain.SecurityEvent{
		Kind:      kind,
		AccountID: accountID,
		TokenID:   tokenID,
		Transport: authn.TransportFrom(ctx),
		Detail:    detail,
		At:        at.UTC(),
	}
	if p, ok := authn.PrincipalFrom(ctx); ok {
		ev.Actor = p.Subject
	}
	return ev
}

type nopAuditor struct{}

func (nopAuditor) Record(context.Context, domain.SecurityEvent) {}
