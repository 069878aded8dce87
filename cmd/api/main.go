package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	_ "github.com/actu/newsroom/docs"
	"github.com/actu/newsroom/internal/api"
	"github.com/actu/newsroom/internal/api/handler"
	"github.com/actu/newsroom/internal/api/metrics"
	"github.com/actu/newsroom/internal/api/soap"
	"github.com/actu/newsroom/internal/core/authn"
	"github.com/actu/newsroom/internal/core/ports"
	"github.com/actu/newsroom/internal/core/service"
	mongostore "github.com/actu/newsroom/internal/infrastructure/db/mongo"
	"github.com/actu/newsroom/internal/infrastructure/db/postgres"
	redisstore "github.com/actu/newsroom/internal/infrastructure/db/redis"
	"github.com/actu/newsroom/internal/infrastructure/queue"
	"github.com/actu/newsroom/internal/infrastructure/security"
	"github.com/actu/newsroom/internal/pkg/config"
	"github.com/actu/newsroom/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// @title                       Newsroom API
// @version                     1.0
// @description                 Articles and categories over REST; accounts and bearer tokens over REST and SOAP (/ws).
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "newsroom",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	// --- Document store (content, audit trail, default identity store) ---
	mongoClient, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = mongoClient.Disconnect(dctx)
	}()
	if err := mongostore.EnsureIndexes(ctx, db); err != nil {
		return err
	}
	readiness := map[string]handler.DependencyCheck{"mongodb": handler.MongoCheck(db)}

	// --- Identity store ---
	var (
		accounts ports.AccountRepository
		tokens   ports.TokenRepository
		tx       ports.Transactor
	)
	switch cfg.IdentityStore {
	case config.IdentityStorePostgres:
		pg, err := postgres.Open(ctx, cfg.Postgres.DSN)
		if err != nil {
			return err
		}
		defer pg.Close()
		if err := postgres.EnsureSchema(ctx, pg); err != nil {
			return err
		}
		accounts = postgres.NewAccountRepository(pg)
		tokens = postgres.NewTokenRepository(pg)
		tx = postgres.NewTransactor(pg)
		readiness["postgres"] = handler.SQLCheck(pg)
	default:
		accounts = mongostore.NewAccountRepository(db)
		tokens = mongostore.NewTokenRepository(db)
		tx = mongostore.NewTransactor(mongoClient, cfg.Mongo.Transactions)
	}
	log.Info().Str("identity_store", cfg.IdentityStore).Msg("identity store ready")

	// --- Per-account lock ---
	var locker ports.Locker = service.NewLocalLocker()
	if cfg.Redis.Addr != "" {
		rdb, err := redisstore.Connect(ctx, redisstore.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB, Password: cfg.Redis.Password})
		if err != nil {
			return err
		}
		defer rdb.Close()
		locker = redisstore.NewLocker(rdb, cfg.Redis.LockTTL, log)
		readiness["redis"] = handler.RedisCheck(rdb)
	}

	// --- Security audit trail ---
	dispatcher := queue.NewDispatcher(cfg.AuditWorkers, mongostore.NewSecurityEventRepository(db), log, metrics.ObserveAuditDrop)
	dispatcher.Start(context.WithoutCancel(ctx))
	defer dispatcher.Close()
	auditor := metrics.NewCountingAuditor(dispatcher)

	// --- Services ---
	codec, err := service.NewTokenCodec(cfg.Auth.JWTSecret, nil)
	if err != nil {
		return err
	}
	hasher := security.NewBcryptHasher(bcrypt.DefaultCost)
	tokenService := service.NewTokenLifecycleService(tokens, accounts, codec, log,
		service.WithTokenTTL(cfg.Auth.TokenTTL),
		service.WithLocker(locker),
		service.WithAuditor(auditor),
	)
	authService := service.NewAuthService(accounts, hasher, tokenService, auditor, log)
	userService := service.NewUserService(accounts, hasher, tokenService, tx, log)

	articles := mongostore.NewArticleRepository(db)
	categories := mongostore.NewCategoryRepository(db)
	articleService := service.NewArticleService(articles, categories, log)
	categoryService := service.NewCategoryService(categories, articles, log)

	if err := service.NewSeeder(accounts, categories, hasher, log).Seed(ctx, service.AdminSeed{
		Username: cfg.Admin.Username,
		Email:    cfg.Admin.Email,
		Password: cfg.Admin.Password,
	}); err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	// --- Transports ---
	soapEndpoint := soap.NewEndpoint(
		authn.NewGate(tokenService, "soap", log, metrics.ObserveAuth),
		authService, userService, tokenService, log,
	)
	e := api.NewRouter(api.Deps{
		Log:        log,
		Gate:       authn.NewGate(tokenService, "rest", log, metrics.ObserveAuth),
		Auth:       authService,
		Users:      userService,
		Tokens:     tokenService,
		Articles:   articleService,
		Categories: categoryService,
		SOAP:       soapEndpoint.Handle,
		Readiness:  readiness,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("http server listening")
		errCh <- e.Start(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
