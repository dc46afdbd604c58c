package config

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Session SessionConfig
	Ledger  LedgerConfig
	View    ViewConfig
	Audit   AuditConfig
	Mongo   MongoConfig
	Redis   RedisConfig
}

type SessionConfig struct {
	Secret       string        `env:"SESSION_SECRET, required"`
	TTL          time.Duration `env:"SESSION_TTL,    default=12h"`
	CookieSecure bool          `env:"COOKIE_SECURE,  default=false"`
}

type LedgerConfig struct {
	BaseURL string        `env:"LEDGER_API_URL,     default=http://localhost:8000/api"`
	Timeout time.Duration `env:"LEDGER_API_TIMEOUT, default=0s"`
}

type ViewConfig struct {
	BannerTTL   time.Duration `env:"BANNER_TTL,   default=5s"`
	TopAccounts int           `env:"TOP_ACCOUNTS, default=5"`
}

type AuditConfig struct {
	Workers int `env:"AUDIT_WORKERS, default=4"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=safeledger_dashboard"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// Development reports whether the service runs on a developer machine.
func (c *Config) Development() bool {
	return c.Env == "development"
}

// Load reads an optional .env file and then the process environment.
func Load() *Config {
	_ = godotenv.Load()

	cfg, err := Process(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// Process fills a Config from lookuper and checks the values envconfig cannot.
func Process(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, err
	}
	if cfg.Session.TTL <= 0 {
		return nil, fmt.Errorf("SESSION_TTL must be positive")
	}
	if cfg.View.TopAccounts <= 0 {
		return nil, fmt.Errorf("TOP_ACCOUNTS must be positive")
	}
	return &cfg, nil
}
