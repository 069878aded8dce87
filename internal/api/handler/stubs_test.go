package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/actu/newsroom/internal/core/authn"
	"github.com/actu/newsroom/internal/core/domain"
	"github.com/actu/newsroom/internal/core/ports"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, input ports.RegisterInput) (*domain.Account, error)
	loginFn    func(ctx context.Context, username, password string) (*ports.LoginResult, error)
	logoutFn   func(ctx context.Context, token string) error
	currentFn  func(ctx context.Context, accountID string) (*domain.Account, error)
}

func (s *stubAuthService) Register(ctx context.Context, input ports.RegisterInput) (*domain.Account, error) {
	return s.registerFn(ctx, input)
}

func (s *stubAuthService) Login(ctx context.Context, username, password string) (*ports.LoginResult, error) {
	return s.loginFn(ctx, username, password)
}

func (s *stubAuthService) Logout(ctx context.Context, token string) error {
	return s.logoutFn(ctx, token)
}

func (s *stubAuthService) CurrentUser(ctx context.Context, accountID string) (*domain.Account, error) {
	return s.currentFn(ctx, accountID)
}

type stubUserService struct {
	ports.UserService
	createFn        func(ctx context.Context, input ports.AccountInput) (*domain.Account, error)
	updateFn        func(ctx context.Context, id string, input ports.AccountInput) (*domain.Account, error)
	listFn          func(ctx context.Context) ([]*domain.Account, error)
	profileFn       func(ctx context.Context, accountID string) (*domain.Account, error)
	updateProfileFn func(ctx context.Context, accountID string, input ports.ProfileInput) (*domain.Account, error)
}

func (s *stubUserService) Create(ctx context.Context, input ports.AccountInput) (*domain.Account, error) {
	return s.createFn(ctx, input)
}

func (s *stubUserService) Update(ctx context.Context, id string, input ports.AccountInput) (*domain.Account, error) {
	return s.updateFn(ctx, id, input)
}

func (s *stubUserService) List(ctx context.Context) ([]*domain.Account, error) {
	return s.listFn(ctx)
}

func (s *stubUserService) Profile(ctx context.Context, accountID string) (*domain.Account, error) {
	return s.profileFn(ctx, accountID)
}

func (s *stubUserService) UpdateProfile(ctx context.Context, accountID string, input ports.ProfileInput) (*domain.Account, error) {
	return s.updateProfileFn(ctx, accountID, input)
}

type stubTokenService struct {
	ports.TokenService
	generateFn func(ctx context.Context, accountID string) (*domain.IssuedToken, error)
	listFn     func(ctx context.Context) ([]*domain.IssuedToken, error)
	revokeFn   func(ctx context.Context, id string) error
}

func (s *stubTokenService) Generate(ctx context.Context, accountID string) (*domain.IssuedToken, error) {
	return s.generateFn(ctx, accountID)
}

func (s *stubTokenService) List(ctx context.Context) ([]*domain.IssuedToken, error) {
	return s.listFn(ctx)
}

func (s *stubTokenService) Revoke(ctx context.Context, id string) error {
	return s.revokeFn(ctx, id)
}

type stubArticleService struct {
	ports.ArticleService
	listFn    func(ctx context.Context, page, size int) (*domain.ArticlePage, error)
	groupedFn func(ctx context.Context) (map[string][]*domain.Article, error)
	createFn  func(ctx context.Context, input ports.ArticleInput) (*domain.Article, error)
}

func (s *stubArticleService) List(ctx context.Context, page, size int) (*domain.ArticlePage, error) {
	return s.listFn(ctx, page, size)
}

func (s *stubArticleService) GroupedByCategory(ctx context.Context) (map[string][]*domain.Article, error) {
	return s.groupedFn(ctx)
}

func (s *stubArticleService) Create(ctx context.Context, input ports.ArticleInput) (*domain.Article, error) {
	return s.createFn(ctx, input)
}

type stubCategoryService struct {
	ports.CategoryService
	listFn   func(ctx context.Context) ([]*domain.Category, error)
	deleteFn func(ctx context.Context, id string) error
}

func (s *stubCategoryService) List(ctx context.Context) ([]*domain.Category, error) {
	return s.listFn(ctx)
}

func (s *stubCategoryService) Delete(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

// request describes one handler invocation.
type request struct {
	method    string
	target    string
	body      string
	accept    string
	principal *domain.Principal
	token     string
}

func newContext(r request) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	var body io.Reader
	if r.body != "" {
		body = strings.NewReader(r.body)
	}
	req := httptest.NewRequest(r.method, r.target, body)
	if r.body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if r.accept != "" {
		req.Header.Set(echo.HeaderAccept, r.accept)
	}
	ctx := req.Context()
	if r.principal != nil {
		ctx = authn.WithPrincipal(ctx, *r.principal)
	}
	ctx = authn.WithToken(ctx, r.token)
	req = req.WithContext(ctx)

	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func httpStatus(err error) int {
	if he, ok := err.(*echo.HTTPError); ok {
		return he.Code
	}
	return http.StatusInternalServerError
}

var (
	alice  = &domain.Principal{Subject: "alice", Role: domain.RoleVisitor, AccountID: "acc-1"}
	editor = &domain.Principal{Subject: "ed", Role: domain.RoleEditor, AccountID: "acc-2"}
)
