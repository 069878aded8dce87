package domain

import (
	"fmt"
	"strings"
)

// Role is the privilege level attached to every account and embedded in every
// issued token. Values are ordered: VISITOR < EDITOR < ADMIN.
type Role int

const (
	RoleUnknown Role = iota
	RoleVisitor
	RoleEditor
	RoleAdmin
)

var roleNames = map[Role]string{
	RoleVisitor: "VISITOR",
	RoleEditor:  "EDITOR",
	RoleAdmin:   "ADMIN",
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "UNKNOWN"
}

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	_, ok := roleNames[r]
	return ok
}

// AtLeast reports whether r grants at least the privileges of min.
func (r Role) AtLeast(min Role) bool {
	return r.Valid() && r >= min
}

// ParseRole converts the storage representation ("VISITOR", "EDITOR", "ADMIN",
// case-insensitive) to a Role.
func ParseRole(s string) (Role, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for r, n := range roleNames {
		if n == name {
			return r, nil
		}
	}
	return RoleUnknown, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, s)
}

func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: role %d", ErrInvalidInput, int(r))
	}
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
