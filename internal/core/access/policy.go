// Package access maps operations to the minimum role allowed to run them.
package access

import (
	"context"

	"github.com/actu/newsroom/internal/core/authn"
	"github.com/actu/newsroom/internal/core/domain"
)

// Operation names a role-gated capability.
type Operation string

const (
	ReadContent     Operation = "read_content"
	MutateContent   Operation = "mutate_content"
	ReadCurrentUser Operation = "read_current_user"
	ReadProfile     Operation = "read_profile"
	UpdateProfile   Operation = "update_profile"
	Logout          Operation = "logout"
	ManageUsers     Operation = "manage_users"
	ManageTokens    Operation = "manage_tokens"
)

var public = map[Operation]struct{}{
	ReadContent: {},
}

var minimumRole = map[Operation]domain.Role{
	MutateContent:   domain.RoleEditor,
	ReadCurrentUser: domain.RoleVisitor,
	ReadProfile:     domain.RoleVisitor,
	UpdateProfile:   domain.RoleVisitor,
	Logout:          domain.RoleVisitor,
	ManageUsers:     domain.RoleAdmin,
	ManageTokens:    domain.RoleAdmin,
}

// MinimumRole returns the role required by op. Public operations report false.
func MinimumRole(op Operation) (domain.Role, bool) {
	r, ok := minimumRole[op]
	return r, ok
}

// Authorize checks the principal bound to ctx against op. It returns
// domain.ErrUnauthenticated when no principal is bound and
// domain.ErrInsufficientRole when the role is too low. Unknown operations are
// denied.
func Authorize(ctx context.Context, op Operation) (domain.Principal, error) {
	p, ok := authn.PrincipalFrom(ctx)
	if _, open := public[op]; open {
		return p, nil
	}
	if !ok {
		return domain.Principal{}, domain.ErrUnauthenticated
	}
	min, known := minimumRole[op]
	if !known || !p.Role.AtLeast(min) {
		return p, domain.ErrInsufficientRole
	}
	return p, nil
}

// AuthorizeSelf allows any authenticated principal to act on its own account.
func AuthorizeSelf(ctx context.Context, accountID string) (domain.Principal, error) {
	p, ok := authn.PrincipalFrom(ctx)
	if !ok {
		return domain.Principal{}, domain.ErrUnauthenticated
	}
	if accountID == "" || p.AccountID != accountID {
		return p, domain.ErrInsufficientRole
	}
	return p, nil
}
