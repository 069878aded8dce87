package handler

import (
	"time"

	"github.com/actu/newsroom/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Auth ---

type registerRequest struct {
	Username string `json:"username" xml:"username" validate:"required,min=3"`
	Email    string `json:"email"    xml:"email"    validate:"required,email"`
	Password string `json:"password" xml:"password" validate:"required,min=6"`
}

type loginRequest struct {
	Username string `json:"username" xml:"username" validate:"required"`
	Password string `json:"password" xml:"password" validate:"required"`
}

type loginResponse struct {
	Token     string          `json:"token"      xml:"token"`
	ExpiresAt time.Time       `json:"expires_at" xml:"expiresAt"`
	User      *domain.Account `json:"user"       xml:"user"`
}

type messageResponse struct {
	Success bool     `json:"success" xml:"success"`
	Message string   `json:"message" xml:"message"`
}

// --- Users and profile ---

type userRequest struct {
	Username string `json:"username" xml:"username" validate:"required,min=3"`
	Email    string `json:"email"    xml:"email"    validate:"required,email"`
	Password string `json:"password" xml:"password" validate:"omitempty,min=6"`
	Role     string `json:"role"     xml:"role"     validate:"omitempty,role"`
}

type profileRequest struct {
	Username string `json:"username" xml:"username" validate:"required,min=3"`
	Email    string `json:"email"    xml:"email"    validate:"required,email"`
	Password string `json:"password" xml:"password" validate:"omitempty,min=6"`
}

// --- Tokens ---

type generateTokenRequest struct {
	UserID string `json:"user_id" xml:"userId" validate:"required"`
}

// --- Content ---

type articleRequest struct {
	Title      string `json:"title"       xml:"title"      validate:"required"`
	Summary    string `json:"summary"     xml:"summary"`
	Content    string `json:"content"     xml:"content"    validate:"required"`
	CategoryID string `json:"category_id" xml:"categoryId" validate:"required"`
}

type categoryRequest struct {
	Name        string `json:"name"        xml:"name" validate:"required"`
	Description string `json:"description" xml:"description"`
}

// categoryGroup is the XML shape of one entry of the grouped article listing.
type categoryGroup struct {
	Name     string            `xml:"name,attr"`
	Articles []*domain.Article `xml:"article"`
}
