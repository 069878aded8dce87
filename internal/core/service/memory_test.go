package service

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/actu/newsroom/internal/core/domain"
)

// In-memory repositories shared by the service tests. Every read and write
// copies so callers never alias stored rows.

type memAccounts struct {
	mu     sync.Mutex
	seq    int
	byID   map[string]*domain.Account
	failOn string
}

func newMemAccounts() *memAccounts {
	return &memAccounts{byID: make(map[string]*domain.Account)}
}

func cloneAccount(a *domain.Account) *domain.Account {
	c := *a
	return &c
}

func (r *memAccounts) Create(_ context.Context, a *domain.Account) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if existing.Username == a.Username || existing.Email == a.Email {
			return nil, domain.ErrDuplicateIdentity
		}
	}
	r.seq++
	c := cloneAccount(a)
	c.ID = "acc-" + strconv.Itoa(r.seq)
	r.byID[c.ID] = c
	return cloneAccount(c), nil
}

func (r *memAccounts) FindByID(_ context.Context, id string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneAccount(a), nil
}

func (r *memAccounts) FindByUsername(_ context.Context, username string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.byID {
		if a.Username == username {
			return cloneAccount(a), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memAccounts) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.byID {
		if strings.EqualFold(a.Email, email) {
			return cloneAccount(a), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memAccounts) List(_ context.Context) ([]*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Account, 0, len(r.byID))
	for _, a := range r.byID {
		out = append(out, cloneAccount(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memAccounts) Update(_ context.Context, a *domain.Account) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[a.ID]; !ok {
		return nil, domain.ErrNotFound
	}
	r.byID[a.ID] = cloneAccount(a)
	return cloneAccount(a), nil
}

func (r *memAccounts) snapshot() map[string]*domain.Account {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]*domain.Account, len(r.byID))
	for id, a := range r.byID {
		out[id] = cloneAccount(a)
	}
	return out
}

func (r *memAccounts) restore(rows map[string]*domain.Account) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID = rows
}

func (r *memAccounts) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failOn == "delete" {
		return context.DeadlineExceeded
	}
	if _, ok := r.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

type memTokens struct {
	mu           sync.Mutex
	seq          int
	rows         map[string]*domain.IssuedToken
	valueLookups int
	saveErr      error
}

func newMemTokens() *memTokens {
	return &memTokens{rows: make(map[string]*domain.IssuedToken)}
}

func cloneToken(t *domain.IssuedToken) *domain.IssuedToken {
	c := *t
	return &c
}

func (r *memTokens) FindByID(_ context.Context, id string) (*domain.IssuedToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.rows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneToken(t), nil
}

func (r *memTokens) FindByValue(_ context.Context, value string) (*domain.IssuedToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.valueLookups++
	for _, t := range r.rows {
		if t.Value == value {
			return cloneToken(t), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memTokens) FindLive(_ context.Context, accountID string, now time.Time) (*domain.IssuedToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.sorted() {
		if t.OwnerAccountID == accountID && t.IsLive(now) {
			return cloneToken(t), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memTokens) ListByAccount(_ context.Context, accountID string) ([]*domain.IssuedToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.IssuedToken
	for _, t := range r.sorted() {
		if t.OwnerAccountID == accountID {
			out = append(out, cloneToken(t))
		}
	}
	return out, nil
}

func (r *memTokens) ListAll(_ context.Context) ([]*domain.IssuedToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.IssuedToken
	for _, t := range r.sorted() {
		out = append(out, cloneToken(t))
	}
	return out, nil
}

func (r *memTokens) Save(_ context.Context, t *domain.IssuedToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	if t.ID == "" {
		r.seq++
		t.ID = "tok-" + strconv.Itoa(r.seq)
	}
	for id, existing := range r.rows {
		if id != t.ID && existing.Value == t.Value {
			return domain.ErrConflict
		}
	}
	r.rows[t.ID] = cloneToken(t)
	return nil
}

func (r *memTokens) DeleteByAccount(_ context.Context, accountID string) (int64, error) {
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

func (r *memTokens) DeleteByID(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *memTokens) failSaves(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saveErr = err
}

func (r *memTokens) liveCount(accountID string, now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, t := range r.rows {
		if t.OwnerAccountID == accountID && t.IsLive(now) {
			n++
		}
	}
	return n
}

func (r *memTokens) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

func (r *memTokens) lookups() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.valueLookups
}

// sorted must be called with mu held.
func (r *memTokens) sorted() []*domain.IssuedToken {
	out := make([]*domain.IssuedToken, 0, len(r.rows))
	for _, t := range r.rows {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type memCategories struct {
	mu   sync.Mutex
	seq  int
	rows map[string]*domain.Category
}

func newMemCategories() *memCategories {
	return &memCategories{rows: make(map[string]*domain.Category)}
}

func (r *memCategories) Create(_ context.Context, c *domain.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.rows {
		if existing.Name == c.Name {
			return domain.ErrConflict
		}
	}
	r.seq++
	c.ID = "cat-" + strconv.Itoa(r.seq)
	copy := *c
	r.rows[c.ID] = &copy
	return nil
}

func (r *memCategories) FindByID(_ context.Context, id string) (*domain.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.rows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copy := *c
	return &copy, nil
}

func (r *memCategories) List(_ context.Context) ([]*domain.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Category, 0, len(r.rows))
	for _, c := range r.rows {
		copy := *c
		out = append(out, &copy)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memCategories) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.rows)), nil
}

func (r *memCategories) Update(_ context.Context, c *domain.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[c.ID]; !ok {
		return domain.ErrNotFound
	}
	for id, existing := range r.rows {
		if id != c.ID && existing.Name == c.Name {
			return domain.ErrConflict
		}
	}
	copy := *c
	r.rows[c.ID] = &copy
	return nil
}

func (r *memCategories) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

type memArticles struct {
	mu   sync.Mutex
	seq  int
	rows map[string]*domain.Article
}

func newMemArticles() *memArticles {
	return &memArticles{rows: make(map[string]*domain.Article)}
}

func (r *memArticles) Create(_ context.Context, a *domain.Article) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	a.ID = "art-" + strconv.Itoa(r.seq)
	copy := *a
	r.rows[a.ID] = &copy
	return nil
}

func (r *memArticles) FindByID(_ context.Context, id string) (*domain.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.rows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copy := *a
	return &copy, nil
}

func (r *memArticles) ListNewest(_ context.Context, page, size int) ([]*domain.Article, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]*domain.Article, 0, len(r.rows))
	for _, a := range r.rows {
		copy := *a
		all = append(all, &copy)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	start := page * size
	if start >= len(all) {
		return nil, int64(len(all)), nil
	}
	end := start + size
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], int64(len(all)), nil
}

func (r *memArticles) ListByCategory(_ context.Context, categoryID string) ([]*domain.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Article
	for _, a := range r.rows {
		if a.CategoryID == categoryID {
			copy := *a
			out = append(out, &copy)
		}
	}
	return out, nil
}

func (r *memArticles) Update(_ context.Context, a *domain.Article) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[a.ID]; !ok {
		return domain.ErrNotFound
	}
	copy := *a
	r.rows[a.ID] = &copy
	return nil
}

func (r *memArticles) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

// plainHasher keeps tests fast; the bcrypt hasher has its own tests.
type plainHasher struct{}

func (plainHasher) Hash(pw string) (string, error) { return "hashed:" + pw, nil }

func (plainHasher) Verify(hash, pw string) error {
	if hash != "hashed:"+pw {
		return domain.ErrInvalidCredential
	}
	return nil
}

type recordingAuditor struct {
	mu     sync.Mutex
	events []domain.SecurityEvent
}

func (a *recordingAuditor) Record(_ context.Context, ev domain.SecurityEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, ev)
}

func (a *recordingAuditor) kinds() []domain.SecurityEventKind {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]domain.SecurityEventKind, 0, len(a.events))
	for _, ev := range a.events {
		out = append(out, ev.Kind)
	}
	return out
}

// testClock is a settable clock.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
