package domain

import "time"

// SecurityEventKind names an entry in the security audit trail.
type SecurityEventKind string

const (
	EventTokenIssued      SecurityEventKind = "token_issued"
	EventTokenReused      SecurityEventKind = "token_reused"
	EventTokenRotated     SecurityEventKind = "token_rotated"
	EventTokenRevoked     SecurityEventKind = "token_revoked"
	EventTokenReactivated SecurityEventKind = "token_reactivated"
	EventTokenDeleted     SecurityEventKind = "token_deleted"
	EventTokensPurged     SecurityEventKind = "tokens_purged"
	EventLoginSucceeded   SecurityEventKind = "login_succeeded"
	EventLoginFailed      SecurityEventKind = "login_failed"
)

// SecurityEvent is an append-only audit record. It never contains token values.
type SecurityEvent struct {
	Kind      SecurityEventKind
	AccountID string
	TokenID   string
	Actor     string
	Transport string
	Detail    string
	At        time.Time
}
