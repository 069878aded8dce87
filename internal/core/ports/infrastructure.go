package ports

import (
	"context"

	"github.com/actu/newsroom/internal/core/domain"
)

// Transactor runs fn inside one store transaction. Repositories called with
// the ctx handed to fn take part in that transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Locker provides mutual exclusion keyed by an arbitrary string. The returned
// unlock func must be called exactly once.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// PasswordHasher hashes and verifies account passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Verify returns nil when password matches hash.
	Verify(hash, password string) error
}

// SecurityAuditor receives security audit events. Record must not block the
// caller for long and never fails the calling operation.
type SecurityAuditor interface {
	Record(ctx context.Context, event domain.SecurityEvent)
}

// SecurityEventRepository persists audit events.
type SecurityEventRepository interface {
	Insert(ctx context.Context, event *domain.SecurityEvent) error
}
