package soap

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/actu/newsroom/internal/core/domain"
)

// --- Requests ---

type loginRequest struct {
	Username string `xml:"username"`
	Password string `xml:"password"`
}

type registerRequest struct {
	Username string `xml:"username"`
	Email    string `xml:"email"`
	Password string `xml:"password"`
}

type emptyRequest struct{}

type idRequest struct {
	ID string `xml:"id"`
}

type userIDRequest struct {
	UserID string `xml:"userId"`
}

type userInput struct {
	Username string `xml:"username"`
	Email    string `xml:"email"`
	Password string `xml:"password"`
	Role     string `xml:"role"`
}

type userRequest struct {
	User userInput `xml:"user"`
}

type updateUserRequest struct {
	ID   string    `xml:"id"`
	User userInput `xml:"user"`
}

// --- Responses ---

type user struct {
	ID       string `xml:"id"`
	Username string `xml:"username"`
	Email    string `xml:"email"`
	Role     string `xml:"role"`
}

type token struct {
	ID        string    `xml:"id"`
	Value     string    `xml:"value"`
	UserID    string    `xml:"userId"`
	CreatedAt time.Time `xml:"createdAt"`
	ExpiresAt time.Time `xml:"expiresAt"`
	Revoked   bool      `xml:"revoked"`
}

type loginResponse struct {
	XMLName xml.Name `xml:"http://actu.com/users loginResponse"`
	Token   string   `xml:"token"`
	User    *user    `xml:"user,omitempty"`
}

// statusResponse is shared by every operation answering success/message.
type statusResponse struct {
	XMLName xml.Name
	Success bool   `xml:"success"`
	Message string `xml:"message"`
}

type userResponse struct {
	XMLName xml.Name
	User    *user `xml:"user,omitempty"`
}

type usersResponse struct {
	XMLName xml.Name `xml:"http://actu.com/users getAllUsersResponse"`
	Users   []user   `xml:"users>user"`
}

type tokenResponse struct {
	XMLName xml.Name `xml:"http://actu.com/users generateTokenResponse"`
	Token   *token   `xml:"token,omitempty"`
}

type tokensResponse struct {
	XMLName xml.Name
	Tokens  []token `xml:"tokens>token"`
}

func responseName(local string) xml.Name {
	return xml.Name{Space: UsersNS, Local: local}
}

func status(local string, success bool, message string) statusResponse {
	return statusResponse{XMLName: responseName(local), Success: success, Message: message}
}

// --- Mapping ---

// The SOAP contract names the lowest role USER; everywhere else it is VISITOR.
func toWireRole(r domain.Role) string {
	if r == domain.RoleVisitor {
		return "USER"
	}
	return r.String()
}

// fromWireRole maps the SOAP role. An empty role yields RoleUnknown so the
// service applies its default (or keeps the current role on update).
func fromWireRole(s string) (domain.Role, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "":
		return domain.RoleUnknown, nil
	case "USER":
		return domain.RoleVisitor, nil
	case "EDITOR":
		return domain.RoleEditor, nil
	case "ADMIN":
		return domain.RoleAdmin, nil
	default:
		return domain.RoleUnknown, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, s)
	}
}

func toUser(a *domain.Account) *user {
	if a == nil {
		return nil
	}
	return &user{ID: a.ID, Username: a.Username, Email: a.Email, Role: toWireRole(a.Role)}
}

func toUsers(accounts []*domain.Account) []user {
	out := make([]user, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, *toUser(a))
	}
	return out
}

func toToken(t *domain.IssuedToken) *token {
	if t == nil {
		return nil
	}
	return &token{
		ID:        t.ID,
		Value:     t.Value,
		UserID:    t.OwnerAccountID,
		CreatedAt: t.CreatedAt,
		ExpiresAt: t.ExpiresAt,
		Revoked:   t.Revoked,
	}
}

func toTokens(tokens []*domain.IssuedToken) []token {
	out := make([]token, 0, len(tokens))
	for _, t := range tokens {
		out = append(out, *toToken(t))
	}
	return out
}
