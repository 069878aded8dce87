package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Identity stores selectable with IDENTITY_STORE.
const (
	IdentityStoreMongo    = "mongo"
	IdentityStorePostgres = "postgres"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Auth          AuthConfig
	IdentityStore string `env:"IDENTITY_STORE, default=mongo"`
	AuditWorkers  int    `env:"AUDIT_WORKERS,  default=4"`

	Mongo    MongoConfig
	Redis    RedisConfig
	Postgres PostgresConfig
	Admin    AdminConfig
}

type AuthConfig struct {
	JWTSecret string        `env:"JWT_SECRET, required"`
	TokenTTL  time.Duration `env:"TOKEN_TTL,  default=720h"`
}

type MongoConfig struct {
	URI          string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database     string `env:"MONGO_DB,  default=actu"`
	Transactions bool   `env:"MONGO_TX,  default=false"`
}

type RedisConfig struct {
	// Addr empty disables the Redis lock; an in-process lock is used instead.
	Addr     string        `env:"REDIS_ADDR"`
	DB       int           `env:"REDIS_DB,  default=0"`
	Password string        `env:"REDIS_PASSWORD"`
	LockTTL  time.Duration `env:"LOCK_TTL,  default=5s"`
}

type PostgresConfig struct {
	DSN string `env:"POSTGRES_DSN"`
}

// AdminConfig seeds the bootstrap administrator. An empty password skips it.
type AdminConfig struct {
	Username string `env:"ADMIN_USERNAME, default=admin"`
	Email    string `env:"ADMIN_EMAIL,    default=admin@actu.com"`
	Password string `env:"ADMIN_PASSWORD"`
}

// IsDevelopment reports whether ENV selects the human friendly setup.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadFrom(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadFrom reads configuration from l and validates it.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.IdentityStore {
	case IdentityStoreMongo:
	case IdentityStorePostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("POSTGRES_DSN is required when IDENTITY_STORE=%s", IdentityStorePostgres)
		}
	default:
		return fmt.Errorf("IDENTITY_STORE must be %q or %q, got %q", IdentityStoreMongo, IdentityStorePostgres, c.IdentityStore)
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	return nil
}
