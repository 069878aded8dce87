package domain

import "time"

// Account models a registered user of the newsroom.
type Account struct {
	ID           string    `json:"id" xml:"id"`
	Username     string    `json:"username" xml:"username"`
	Email        string    `json:"email" xml:"email"`
	PasswordHash string    `json:"-" xml:"-"`
	Role         Role      `json:"role" xml:"role"`
	CreatedAt    time.Time `json:"created_at" xml:"createdAt"`
	UpdatedAt    time.Time `json:"updated_at" xml:"updatedAt"`
}

// Principal is the authenticated identity of a single call. It is carried in
// the request context and never persisted.
type Principal struct {
	Subject   string
	Role      Role
	AccountID string
}
