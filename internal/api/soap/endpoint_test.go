package soap

import (
	"context"
	"encoding/xml"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/actu/newsroom/internal/core/authn"
	"github.com/actu/newsroom/internal/core/domain"
	"github.com/actu/newsroom/internal/core/ports"
)

// roleValidator admits "<role>-token" and binds a principal with that role.
type roleValidator struct{}

func (roleValidator) Validate(_ context.Context, value string) (*domain.Principal, error) {
	role, err := domain.ParseRole(strings.TrimSuffix(value, "-token"))
	if err != nil {
		return nil, domain.ErrTokenNotLive
	}
	return &domain.Principal{Subject: "caller", Role: role, AccountID: "acc-" + role.String()}, nil
}

type stubAuth struct {
	ports.AuthService
	loginFn    func(ctx context.Context, username, password string) (*ports.LoginResult, error)
	registerFn func(ctx context.Context, input ports.RegisterInput) (*domain.Account, error)
	logoutFn   func(ctx context.Context, value string) error
}

func (s *stubAuth) Login(ctx context.Context, username, password string) (*ports.LoginResult, error) {
	return s.loginFn(ctx, username, password)
}

func (s *stubAuth) Register(ctx context.Context, input ports.RegisterInput) (*domain.Account, error) {
	return s.registerFn(ctx, input)
}

func (s *stubAuth) Logout(ctx context.Context, value string) error {
	return s.logoutFn(ctx, value)
}

type stubUsers struct {
	ports.UserService
	listFn          func(ctx context.Context) ([]*domain.Account, error)
	createFn        func(ctx context.Context, input ports.AccountInput) (*domain.Account, error)
	updateProfileFn func(ctx context.Context, accountID string, input ports.ProfileInput) (*domain.Account, error)
}

func (s *stubUsers) List(ctx context.Context) ([]*domain.Account, error) {
	return s.listFn(ctx)
}

func (s *stubUsers) Create(ctx context.Context, input ports.AccountInput) (*domain.Account, error) {
	return s.createFn(ctx, input)
}

func (s *stubUsers) UpdateProfile(ctx context.Context, accountID string, input ports.ProfileInput) (*domain.Account, error) {
	return s.updateProfileFn(ctx, accountID, input)
}

type stubTokens struct {
	ports.TokenService
	revokeFn func(ctx context.Context, id string) error
}

func (s *stubTokens) Revoke(ctx context.Context, id string) error {
	return s.revokeFn(ctx, id)
}

type fixture struct {
	auth   *stubAuth
	users  *stubUsers
	tokens *stubTokens
	e      *echo.Echo
}

func newFixture() *fixture {
	f := &fixture{auth: &stubAuth{}, users: &stubUsers{}, tokens: &stubTokens{}}
	gate := authn.NewGate(roleValidator{}, "soap", zerolog.Nop(), nil)
	ep := NewEndpoint(gate, f.auth, f.users, f.tokens, zerolog.Nop())
	f.e = echo.New()
	f.e.POST("/ws", ep.Handle)
	return f
}

func envelope(token, body string) string {
	if token == "" {
		return envelopeWith("", body)
	}
	return envelopeWith("Bearer "+token, body)
}

// envelopeWith places credential in the Authorization header verbatim.
func envelopeWith(credential, body string) string {
	header := "<soapenv:Header/>"
	if credential != "" {
		header = "<soapenv:Header><sec:Authorization>" + credential + "</sec:Authorization></soapenv:Header>"
	}
	return `<?xml version="1.0" encoding="UTF-8"?>
<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/"
                  xmlns:usr="http://actu.com/users"
                  xmlns:sec="http://actu.com/security">
   ` + header + `
   <soapenv:Body>` + body + `</soapenv:Body>
</soapenv:Envelope>`
}

func (f *fixture) call(token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/ws", strings.NewReader(envelope(token, body)))
	req.Header.Set(echo.HeaderContentType, "text/xml; charset=utf-8")
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

type faultBody struct {
	Code   string `xml:"faultcode"`
	String string `xml:"faultstring"`
}

func decodeResponse[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var env typedEnvelope[T]
	if err := xml.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("invalid envelope %q: %v", rec.Body.String(), err)
	}
	return env.Body.Payload
}

func expectFault(t *testing.T, rec *httptest.ResponseRecorder, code, message string) {
	t.Helper()
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 for a fault, got %d: %s", rec.Code, rec.Body.String())
	}
	f := decodeResponse[faultBody](t, rec)
	if f.Code != code || !strings.Contains(f.String, message) {
		t.Fatalf("expected fault %s %q, got %+v", code, message, f)
	}
}

func TestEndpoint_LoginIsExempt(t *testing.T) {
	f := newFixture()
	f.auth.loginFn = func(_ context.Context, username, password string) (*ports.LoginResult, error) {
		if username != "alice" || password != "pw" {
			t.Fatalf("unexpected credentials %q/%q", username, password)
		}
		return &ports.LoginResult{
			Token:   &domain.IssuedToken{ID: "t1", Value: "signed"},
			Account: &domain.Account{ID: "acc-1", Username: "alice", Role: domain.RoleVisitor},
		}, nil
	}

	rec := f.call("", `<usr:loginRequest><usr:username>alice</usr:username><usr:password>pw</usr:password></usr:loginRequest>`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeResponse[struct {
		XMLName xml.Name
		Token   string `xml:"token"`
		User    user   `xml:"user"`
	}](t, rec)
	if resp.XMLName.Space != UsersNS || resp.XMLName.Local != "loginResponse" {
		t.Fatalf("unexpected response element %v", resp.XMLName)
	}
	if resp.Token != "signed" || resp.User.Role != "USER" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestEndpoint_LoginFailureIsClientFault(t *testing.T) {
	f := newFixture()
	f.auth.loginFn = func(context.Context, string, string) (*ports.LoginResult, error) {
		return nil, domain.ErrInvalidCredential
	}
	rec := f.call("", `<usr:loginRequest><usr:username>alice</usr:username><usr:password>x</usr:password></usr:loginRequest>`)
	expectFault(t, rec, faultClient, "Invalid credentials")
}

func TestEndpoint_RegisterDuplicate(t *testing.T) {
	f := newFixture()
	f.auth.registerFn = func(context.Context, ports.RegisterInput) (*domain.Account, error) {
		return nil, domain.ErrDuplicateIdentity
	}
	rec := f.call("", `<usr:registerRequest><usr:username>a</usr:username><usr:email>a@x.io</usr:email><usr:password>p</usr:password></usr:registerRequest>`)

	resp := decodeResponse[statusResponse](t, rec)
	if resp.Success || resp.Message != "Username or email already exists" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestEndpoint_AuthenticationFaults(t *testing.T) {
	cases := []struct {
		name    string
		token   string
		message string
	}{
		{"missing header", "", "Authentication required"},
		{"rejected token", "bogus", "Authentication required"},
		{"role too low", "EDITOR-token", "Access denied"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			f.users.listFn = func(context.Context) ([]*domain.Account, error) {
				t.Fatalf("service must not be reached")
				return nil, nil
			}
			rec := f.call(tc.token, `<usr:getAllUsersRequest/>`)
			expectFault(t, rec, faultClient, tc.message)
		})
	}
}

func TestEndpoint_GetAllUsers(t *testing.T) {
	f := newFixture()
	f.users.listFn = func(context.Context) ([]*domain.Account, error) {
		return []*domain.Account{
			{ID: "1", Username: "alice", Email: "a@x.io", Role: domain.RoleVisitor},
			{ID: "2", Username: "root", Email: "r@x.io", Role: domain.RoleAdmin},
		}, nil
	}

	rec := f.call("ADMIN-token", `<usr:getAllUsersRequest/>`)

	resp := decodeResponse[struct {
		Users []user `xml:"users>user"`
	}](t, rec)
	if len(resp.Users) != 2 || resp.Users[0].Role != "USER" || resp.Users[1].Role != "ADMIN" {
		t.Fatalf("unexpected users: %+v", resp.Users)
	}
}

func TestEndpoint_CreateUserTranslatesRole(t *testing.T) {
	f := newFixture()
	f.users.createFn = func(_ context.Context, input ports.AccountInput) (*domain.Account, error) {
		if input.Role != domain.RoleVisitor {
			t.Fatalf("USER must map to VISITOR, got %v", input.Role)
		}
		return &domain.Account{ID: "9", Username: input.Username, Role: input.Role}, nil
	}

	rec := f.call("ADMIN-token", `<usr:createUserRequest><usr:user><usr:username>bob</usr:username><usr:email>b@x.io</usr:email><usr:password>pw</usr:password><usr:role>USER</usr:role></usr:user></usr:createUserRequest>`)

	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "<role>USER</role>") {
		t.Fatalf("unexpected response %d: %s", rec.Code, rec.Body.String())
	}
}

func TestEndpoint_CreateUserRejectsUnknownRole(t *testing.T) {
	f := newFixture()
	rec := f.call("ADMIN-token", `<usr:createUserRequest><usr:user><usr:username>bob</usr:username><usr:role>ROOT</usr:role></usr:user></usr:createUserRequest>`)
	expectFault(t, rec, faultClient, "unknown role")
}

func TestEndpoint_UpdateProfileUsesCaller(t *testing.T) {
	f := newFixture()
	f.users.updateProfileFn = func(_ context.Context, accountID string, input ports.ProfileInput) (*domain.Account, error) {
		if accountID != "acc-VISITOR" {
			t.Fatalf("expected the caller's account, got %q", accountID)
		}
		if input.ChangePassword {
			t.Fatalf("empty password must keep the current one")
		}
		return &domain.Account{ID: accountID, Username: input.Username, Role: domain.RoleVisitor}, nil
	}

	rec := f.call("VISITOR-token", `<usr:updateProfileRequest><usr:user><usr:username>me</usr:username><usr:email>me@x.io</usr:email><usr:role>ADMIN</usr:role></usr:user></usr:updateProfileRequest>`)

	if !strings.Contains(rec.Body.String(), "<role>USER</role>") {
		t.Fatalf("profile update must not change role: %s", rec.Body.String())
	}
}

func TestEndpoint_LogoutRevokesPresentedToken(t *testing.T) {
	f := newFixture()
	var got string
	f.auth.logoutFn = func(_ context.Context, value string) error {
		got = value
		return nil
	}

	rec := f.call("VISITOR-token", `<usr:logoutRequest/>`)

	if got != "VISITOR-token" {
		t.Fatalf("expected the presented token, got %q", got)
	}
	if resp := decodeResponse[statusResponse](t, rec); !resp.Success {
		t.Fatalf("expected success: %s", rec.Body.String())
	}
}

func TestEndpoint_RevokeUnknownToken(t *testing.T) {
	f := newFixture()
	f.tokens.revokeFn = func(context.Context, string) error { return domain.ErrNotFound }

	rec := f.call("ADMIN-token", `<usr:revokeTokenRequest><usr:id>nope</usr:id></usr:revokeTokenRequest>`)

	resp := decodeResponse[statusResponse](t, rec)
	if resp.Success || resp.Message != "Token not found" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestEndpoint_InternalErrorIsServerFault(t *testing.T) {
	f := newFixture()
	f.tokens.revokeFn = func(context.Context, string) error { return errors.New("mongo down") }

	rec := f.call("ADMIN-token", `<usr:revokeTokenRequest><usr:id>t1</usr:id></usr:revokeTokenRequest>`)

	expectFault(t, rec, faultServer, "Internal error")
	if strings.Contains(rec.Body.String(), "mongo") {
		t.Fatalf("internal cause leaked: %s", rec.Body.String())
	}
}

func TestEndpoint_UnknownOperation(t *testing.T) {
	f := newFixture()
	rec := f.call("ADMIN-token", `<usr:dropDatabaseRequest/>`)
	expectFault(t, rec, faultClient, "No endpoint mapping found for dropDatabaseRequest")
}

func TestEndpoint_WrongNamespace(t *testing.T) {
	f := newFixture()
	rec := f.call("ADMIN-token", `<getAllUsersRequest xmlns="urn:other"/>`)
	expectFault(t, rec, faultClient, "No endpoint mapping found")
}

func TestEndpoint_MalformedEnvelope(t *testing.T) {
	f := newFixture()
	req := httptest.NewRequest(http.MethodPost, "/ws", strings.NewReader("<not-soap>"))
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	expectFault(t, rec, faultClient, "malformed SOAP envelope")
}

func TestRoleTranslation(t *testing.T) {
	for role, wire := range map[domain.Role]string{
		domain.RoleVisitor: "USER",
		domain.RoleEditor:  "EDITOR",
		domain.RoleAdmin:   "ADMIN",
	} {
		if got := toWireRole(role); got != wire {
			t.Fatalf("toWireRole(%v) = %q, want %q", role, got, wire)
		}
		back, err := fromWireRole(wire)
		if err != nil || back != role {
			t.Fatalf("fromWireRole(%q) = %v, %v", wire, back, err)
		}
	}
	if r, err := fromWireRole(""); err != nil || r != domain.RoleUnknown {
		t.Fatalf("empty role must defer to the service, got %v %v", r, err)
	}
	if _, err := fromWireRole("VISITOR"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("VISITOR is not a wire role, got %v", err)
	}
}
