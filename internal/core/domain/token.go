package domain

import "time"

// IssuedToken is the persisted record of a signed bearer token. The signed
// value proves origin and claim expiry; the record holds revocation state.
type IssuedToken struct {
	ID             string    `json:"id" xml:"id"`
	Value          string    `json:"value" xml:"value"`
	OwnerAccountID string    `json:"user_id" xml:"userId"`
	CreatedAt      time.Time `json:"created_at" xml:"createdAt"`
	ExpiresAt      time.Time `json:"expires_at" xml:"expiresAt"`
	Revoked        bool      `json:"revoked" xml:"revoked"`
}

// IsLive reports whether the record is neither revoked nor expired at now.
func (t *IssuedToken) IsLive(now time.Time) bool {
	return !t.Revoked && t.ExpiresAt.After(now)
}

// TokenClaims is the verified content of a signed token.
type TokenClaims struct {
	ID        string
	Subject   string
	Role      Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}
