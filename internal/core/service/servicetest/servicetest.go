// Package servicetest assembles the account and token services over
// in-memory stores so transport packages can test against the real
// lifecycle rules.
package servicetest

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/actu/newsroom/internal/core/domain"
	"github.com/actu/newsroom/internal/core/service"
)

const secret = "servicetest-secret"

// Stack is a wired set of identity services sharing one pair of stores.
type Stack struct {
	AccountStore *Accounts
	TokenStore   *Tokens
	Lifecycle    *service.TokenLifecycleService
	Auth         *service.AuthService
	Users        *service.UserService
}

// New builds a Stack. Passwords are stored with a reversible marker rather
// than bcrypt to keep tests fast.
func New(t testing.TB) *Stack {
	t.Helper()
	codec, err := service.NewTokenCodec(secret, nil)
	if err != nil {
		t.Fatalf("NewTokenCodec: %v", err)
	}
	s := &Stack{AccountStore: NewAccounts(), TokenStore: NewTokens()}
	s.Lifecycle = service.NewTokenLifecycleService(s.TokenStore, s.AccountStore, codec, zerolog.Nop())
	s.Auth = service.NewAuthService(s.AccountStore, Hasher{}, s.Lifecycle, nil, zerolog.Nop())
	s.Users = service.NewUserService(s.AccountStore, Hasher{}, s.Lifecycle, nil, zerolog.Nop())
	return s
}

// Account stores an account that can log in with password.
func (s *Stack) Account(t testing.TB, username, password string, role domain.Role) *domain.Account {
	t.Helper()
	hash, _ := Hasher{}.Hash(password)
	now := time.Now().UTC()
	a, err := s.AccountStore.Create(context.Background(), &domain.Account{
		Username:     username,
		Email:        username + "@actu.test",
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("create account %s: %v", username, err)
	}
	return a
}

// Hasher prefixes the password instead of hashing it.
type Hasher struct{}

func (Hasher) Hash(pw string) (string, error) { return "plain:" + pw, nil }

func (Hasher) Verify(hash, pw string) error {
	if hash != "plain:"+pw {
		return domain.ErrInvalidCredential
	}
	return nil
}

// Accounts is an in-memory ports.AccountRepository.
type Accounts struct {
	mu   sync.Mutex
	seq  int
	rows map[string]domain.Account
}

func NewAccounts() *Accounts {
	return &Accounts{rows: make(map[string]domain.Account)}
}

func (r *Accounts) Create(_ context.Context, a *domain.Account) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.rows {
		if existing.Username == a.Username || existing.Email == a.Email {
			return nil, domain.ErrDuplicateIdentity
		}
	}
	r.seq++
	row := *a
	row.ID = "acc-" + strconv.Itoa(r.seq)
	r.rows[row.ID] = row
	return &row, nil
}

func (r *Accounts) FindByID(_ context.Context, id string) (*domain.Account, error) {
	return r.find(func(a domain.Account) bool { return a.ID == id })
}

func (r *Accounts) FindByUsername(_ context.Context, username string) (*domain.Account, error) {
	return r.find(func(a domain.Account) bool { return a.Username == username })
}

func (r *Accounts) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	return r.find(func(a domain.Account) bool { return a.Email == email })
}

func (r *Accounts) find(match func(domain.Account) bool) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.rows {
		if match(a) {
			return &a, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *Accounts) List(_ context.Context) ([]*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Account, 0, len(r.rows))
	for _, a := range r.rows {
		out = append(out, &a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *Accounts) Update(_ context.Context, a *domain.Account) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[a.ID]; !ok {
		return nil, domain.ErrNotFound
	}
	r.rows[a.ID] = *a
	row := *a
	return &row, nil
}

func (r *Accounts) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

// Tokens is an in-memory ports.TokenRepository.
type Tokens struct {
	mu   sync.Mutex
	seq  int
	rows map[string]domain.IssuedToken
}

func NewTokens() *Tokens {
	return &Tokens{rows: make(map[string]domain.IssuedToken)}
}

func (r *Tokens) FindByID(_ context.Context, id string) (*domain.IssuedToken, error) {
	return r.first(func(t domain.IssuedToken) bool { return t.ID == id })
}

func (r *Tokens) FindByValue(_ context.Context, value string) (*domain.IssuedToken, error) {
	return r.first(func(t domain.IssuedToken) bool { return t.Value == value })
}

func (r *Tokens) FindLive(_ context.Context, accountID string, now time.Time) (*domain.IssuedToken, error) {
	return r.first(func(t domain.IssuedToken) bool { return t.OwnerAccountID == accountID && t.IsLive(now) })
}

func (r *Tokens) ListByAccount(_ context.Context, accountID string) ([]*domain.IssuedToken, error) {
	return r.filter(func(t domain.IssuedToken) bool { return t.OwnerAccountID == accountID }), nil
}

func (r *Tokens) ListAll(_ context.Context) ([]*domain.IssuedToken, error) {
	return r.filter(func(domain.IssuedToken) bool { return true }), nil
}

func (r *Tokens) Save(_ context.Context, t *domain.IssuedToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t.ID == "" {
		r.seq++
		t.ID = "tok-" + strconv.Itoa(r.seq)
	}
	for id, existing := range r.rows {
		if id != t.ID && existing.Value == t.Value {
			return domain.ErrConflict
		}
	}
	r.rows[t.ID] = *t
	return nil
}

func (r *Tokens) DeleteByAccount(_ context.Context, accountID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, t := range r.rows {
		if t.OwnerAccountID == accountID {
			delete(r.rows, id)
			n++
		}
	}
	return n, nil
}

func (r *Tokens) DeleteByID(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *Tokens) first(match func(domain.IssuedToken) bool) (*domain.IssuedToken, error) {
	if found := r.filter(match); len(found) > 0 {
		return found[0], nil
	}
	return nil, domain.ErrNotFound
}

// filter returns copies ordered by id.
func (r *Tokens) filter(match func(domain.IssuedToken) bool) []*domain.IssuedToken {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.IssuedToken
	for _, t := range r.rows {
		if match(t) {
			out = append(out, &t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
