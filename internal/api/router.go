package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/actu/newsroom/internal/api/handler"
	"github.com/actu/newsroom/internal/api/middleware"
	"github.com/actu/newsroom/internal/core/access"
	"github.com/actu/newsroom/internal/core/authn"
	"github.com/actu/newsroom/internal/core/ports"
)

// SOAPPath is served by the SOAP endpoint, which runs its own gate.
const SOAPPath = "/ws"

// Deps carries everything the router needs. SOAP and Readiness are optional.
type Deps struct {
	Log        zerolog.Logger
	Gate       *authn.Gate
	Auth       ports.AuthService
	Users      ports.UserService
	Tokens     ports.TokenService
	Articles   ports.ArticleService
	Categories ports.CategoryService
	SOAP       echo.HandlerFunc
	Readiness  map[string]handler.DependencyCheck
	// Registerer receives the HTTP request metrics. Defaults to the global
	// Prometheus registry.
	Registerer prometheus.Registerer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "newsroom",
		Registerer: d.Registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))
	e.Use(middleware.Authenticate(d.Gate, SOAPPath, "/health", "/metrics", "/swagger"))

	// --- Health probes, metrics and docs (no auth required) ---
	e.GET("/health", handler.NewHealthHandler().Liveness)
	e.GET("/health/ready", handler.NewHealthDependenciesHandler(d.Readiness).Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// --- Auth ---
	authHandler := handler.NewAuthHandler(d.Auth)
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/logout", authHandler.Logout, middleware.Require(access.Logout))
	api.GET("/auth/me", authHandler.Me, middleware.Require(access.ReadCurrentUser))

	// --- Profile ---
	profileHandler := handler.NewProfileHandler(d.Users)
	api.GET("/profile", profileHandler.Get, middleware.Require(access.ReadProfile))
	api.PUT("/profile", profileHandler.Update, middleware.Require(access.UpdateProfile))

	// --- Users (ADMIN) ---
	userHandler := handler.NewUserHandler(d.Users)
	users := api.Group("/users", middleware.Require(access.ManageUsers))
	users.GET("", userHandler.List)
	users.GET("/:id", userHandler.Get)
	users.POST("", userHandler.Create)
	users.PUT("/:id", userHandler.Update)
	users.DELETE("/:id", userHandler.Delete)

	// --- Tokens (ADMIN) ---
	tokenHandler := handler.NewTokenHandler(d.Tokens)
	tokens := api.Group("/tokens", middleware.Require(access.ManageTokens))
	tokens.GET("", tokenHandler.List)
	tokens.GET("/user/:userId", tokenHandler.ListByUser)
	tokens.POST("", tokenHandler.Generate)
	tokens.PUT("/:id/revoke", tokenHandler.Revoke)
	tokens.PUT("/:id/reactivate", tokenHandler.Reactivate)
	tokens.DELETE("/:id", tokenHandler.Delete)

	// --- Articles: public reads, EDITOR writes ---
	articleHandler := handler.NewArticleHandler(d.Articles)
	mutate := middleware.Require(access.MutateContent)
	api.GET("/articles", articleHandler.List)
	api.GET("/articles/grouped-by-category", articleHandler.Grouped)
	api.GET("/articles/category/:categoryId", articleHandler.ByCategory)
	api.GET("/articles/:id", articleHandler.Get)
	api.POST("/articles", articleHandler.Create, mutate)
	api.PUT("/articles/:id", articleHandler.Update, mutate)
	api.DELETE("/articles/:id", articleHandler.Delete, mutate)

	// --- Categories: public reads, EDITOR writes ---
	categoryHandler := handler.NewCategoryHandler(d.Categories)
	api.GET("/categories", categoryHandler.List)
	api.GET("/categories/:id", categoryHandler.Get)
	api.POST("/categories", categoryHandler.Create, mutate)
	api.PUT("/categories/:id", categoryHandler.Update, mutate)
	api.DELETE("/categories/:id", categoryHandler.Delete, mutate)

	// --- SOAP ---
	if d.SOAP != nil {
		e.POST(SOAPPath, d.SOAP)
		e.POST(SOAPPath+"/*", d.SOAP)
	}

	return e
}

// requestLogger emits one structured line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Error != nil {
				evt = log.Warn().Err(v.Error)
			}
			evt.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
