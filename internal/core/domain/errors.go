package domain

import "errors"

var (
	// ErrInvalidCredential is returned by login for an unknown username and for
	// a wrong password alike.
	ErrInvalidCredential = errors.New("invalid credentials")

	// ErrTokenInvalid covers a bad signature, a malformed token or an expired claim.
	ErrTokenInvalid = errors.New("token invalid")

	// ErrTokenNotLive is returned for a well-formed token whose stored record is
	// missing, revoked or expired.
	ErrTokenNotLive = errors.New("token not live")

	ErrUnauthenticated   = errors.New("authentication required")
	ErrInsufficientRole  = errors.New("insufficient role")
	ErrNotFound          = errors.New("not found")
	ErrDuplicateIdentity = errors.New("username or email already taken")
	ErrConflict          = errors.New("conflict")
	ErrInvalidInput      = errors.New("invalid input")
)
