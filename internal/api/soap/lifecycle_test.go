package soap

import (
	"context"
	"encoding/xml"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/actu/newsroom/internal/core/authn"
	"github.com/actu/newsroom/internal/core/domain"
	"github.com/actu/newsroom/internal/core/service/servicetest"
)

type serviceFixture struct {
	stack *servicetest.Stack
	e     *echo.Echo
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	stack := servicetest.New(t)
	gate := authn.NewGate(stack.Lifecycle, "soap", zerolog.Nop(), nil)
	ep := NewEndpoint(gate, stack.Auth, stack.Users, stack.Lifecycle, zerolog.Nop())
	e := echo.New()
	e.POST("/ws", ep.Handle)
	return &serviceFixture{stack: stack, e: e}
}

func (f *serviceFixture) send(credential, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/ws", strings.NewReader(envelopeWith(credential, body)))
	req.Header.Set(echo.HeaderContentType, "text/xml; charset=utf-8")
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

func (f *serviceFixture) login(t *testing.T, username, password string) string {
	t.Helper()
	rec := f.send("", `<usr:loginRequest><usr:username>`+username+`</usr:username><usr:password>`+password+`</usr:password></usr:loginRequest>`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: %d %s", username, rec.Code, rec.Body.String())
	}
	resp := decodeResponse[loginResponse](t, rec)
	if resp.Token == "" {
		t.Fatalf("login %s: empty token in %s", username, rec.Body.String())
	}
	return resp.Token
}

func (f *serviceFixture) currentUser(credential string) *httptest.ResponseRecorder {
	return f.send(credential, `<usr:getCurrentUserRequest/>`)
}

func TestLifecycle_RevokeAndReactivateOverSOAP(t *testing.T) {
	f := newServiceFixture(t)
	f.stack.Account(t, "alice", "alice-pw", domain.RoleVisitor)
	f.stack.Account(t, "root", "root-pw", domain.RoleAdmin)

	t1 := f.login(t, "alice", "alice-pw")
	if again := f.login(t, "alice", "alice-pw"); again != t1 {
		t.Fatalf("second login must return the live token")
	}
	row, err := f.stack.TokenStore.FindByValue(context.Background(), t1)
	if err != nil {
		t.Fatalf("FindByValue: %v", err)
	}
	admin := "Bearer " + f.login(t, "root", "root-pw")

	if rec := f.currentUser("Bearer " + t1); rec.Code != http.StatusOK {
		t.Fatalf("issued token rejected: %d %s", rec.Code, rec.Body.String())
	}

	rec := f.send(admin, `<usr:revokeTokenRequest><usr:id>`+row.ID+`</usr:id></usr:revokeTokenRequest>`)
	if resp := decodeResponse[statusResponse](t, rec); !resp.Success {
		t.Fatalf("revoke failed: %s", rec.Body.String())
	}
	expectFault(t, f.currentUser("Bearer "+t1), faultClient, "Authentication required")

	rec = f.send(admin, `<usr:reactivateTokenRequest><usr:id>`+row.ID+`</usr:id></usr:reactivateTokenRequest>`)
	if resp := decodeResponse[statusResponse](t, rec); !resp.Success {
		t.Fatalf("reactivate failed: %s", rec.Body.String())
	}
	rec = f.currentUser("Bearer " + t1)
	if rec.Code != http.StatusOK {
		t.Fatalf("reactivated token rejected: %d %s", rec.Code, rec.Body.String())
	}
	var me struct {
		Body struct {
			Resp struct {
				User user `xml:"user"`
			} `xml:"getCurrentUserResponse"`
		} `xml:"Body"`
	}
	if err := xml.Unmarshal(rec.Body.Bytes(), &me); err != nil || me.Body.Resp.User.Username != "alice" {
		t.Fatalf("expected alice, got %+v (%v)", me.Body.Resp.User, err)
	}
}

func TestLifecycle_CredentialWithoutBearerPrefix(t *testing.T) {
	f := newServiceFixture(t)
	f.stack.Account(t, "alice", "alice-pw", domain.RoleVisitor)
	t1 := f.login(t, "alice", "alice-pw")

	for _, credential := range []string{t1, "  " + t1 + "  ", "bearer " + t1} {
		if rec := f.currentUser(credential); rec.Code != http.StatusOK {
			t.Fatalf("credential %q rejected: %d %s", credential, rec.Code, rec.Body.String())
		}
	}
	expectFault(t, f.currentUser("Bearer"), faultClient, "Authentication required")
}

func TestLifecycle_LogoutOverSOAP(t *testing.T) {
	f := newServiceFixture(t)
	f.stack.Account(t, "alice", "alice-pw", domain.RoleVisitor)
	t1 := f.login(t, "alice", "alice-pw")

	rec := f.send(t1, `<usr:logoutRequest/>`)
	if resp := decodeResponse[statusResponse](t, rec); !resp.Success {
		t.Fatalf("logout failed: %s", rec.Body.String())
	}
	expectFault(t, f.currentUser(t1), faultClient, "Authentication required")

	if t2 := f.login(t, "alice", "alice-pw"); t2 == t1 {
		t.Fatalf("login after logout must mint a new value")
	}
}
