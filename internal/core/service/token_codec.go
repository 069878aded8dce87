package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/actu/newsroom/internal/core/domain"
)

const tokenIssuer = "actu"

type tokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies bearer tokens with a process-wide HS256
// secret. It performs no I/O: a successful Verify only proves that the value
// was minted with this secret and that its claim has not expired. Changing the
// secret invalidates every outstanding token.
type TokenCodec struct {
	secret []byte
	now    func() time.Time
}

// NewTokenCodec returns a codec for secret. now defaults to time.Now.
func NewTokenCodec(secret string, now func() time.Time) (*TokenCodec, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("token codec: secret is required")
	}
	if now == nil {
		now = time.Now
	}
	return &TokenCodec{secret: []byte(secret), now: now}, nil
}

// Issue signs a token for subject and role valid for ttl from now.
func (c *TokenCodec) Issue(subject string, role domain.Role, ttl time.Duration) (string, time.Time, error) {
	return c.IssueAt(subject, role, c.now(), ttl)
}

// IssueAt signs a token issued at issuedAt. The returned expiry is the one
// embedded in the claims (second precision).
func (c *TokenCodec) IssueAt(subject string, role domain.Role, issuedAt time.Time, ttl time.Duration) (string, time.Time, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return "", time.Time{}, fmt.Errorf("%w: token subject is required", domain.ErrInvalidInput)
	}
	if !role.Valid() {
		return "", time.Time{}, fmt.Errorf("%w: token role %v", domain.ErrInvalidInput, role)
	}
	if ttl <= 0 {
		return "", time.Time{}, fmt.Errorf("%w: token ttl must be positive", domain.ErrInvalidInput)
	}

	issuedAt = issuedAt.UTC()
	claims := tokenClaims{
		Role: role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, claims.ExpiresAt.Time.UTC(), nil
}

// Verify checks value against the codec clock.
func (c *TokenCodec) Verify(value string) (*domain.TokenClaims, error) {
	return c.VerifyAt(value, c.now())
}

// VerifyAt checks signature, structure and claim expiry at now. Every failure
// is reported as domain.ErrTokenInvalid.
func (c *TokenCodec) VerifyAt(value string, now time.Time) (*domain.TokenClaims, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, domain.ErrTokenInvalid
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)

	claims := &tokenClaims{}
	parsed, err := parser.ParseWithClaims(value, claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, domain.ErrTokenInvalid
	}
	if strings.TrimSpace(claims.Subject) == "" || claims.ExpiresAt == nil {
		return nil, domain.ErrTokenInvalid
	}
	if !claims.ExpiresAt.Time.After(now) {
		return nil, domain.ErrTokenInvalid
	}
	role, err := domain.ParseRole(claims.Role)
	if err != nil {
		return nil, domain.ErrTokenInvalid
	}

	out := &domain.TokenClaims{
		ID:        claims.ID,
		Subject:   claims.Subject,
		Role:      role,
		ExpiresAt: claims.ExpiresAt.Time.UTC(),
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time.UTC()
	}
	return out, nil
}
