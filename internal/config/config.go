package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the process-wide immutable configuration. It is loaded once
// at startup and injected into constructors; business logic never reads
// the environment directly.
type Config struct {
	AppPort string `env:"APP_PORT" envDefault:"8080"`

	// SessionSecret signs every session token. The process must not
	// serve a single request without it.
	SessionSecret string        `env:"SESSION_SECRET"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"24h"`

	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string `env:"GOOGLE_REDIRECT_URL"`

	GithubClientID     string `env:"GITHUB_CLIENT_ID"`
	GithubClientSecret string `env:"GITHUB_CLIENT_SECRET"`
	GithubRedirectURL  string `env:"GITHUB_REDIRECT_URL"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	DatabaseDSN string `env:"DATABASE_DSN"`

	// SignInPath is where unauthenticated callers hitting a protected
	// path are bounced to.
	SignInPath string `env:"SIGN_IN_PATH" envDefault:"/"`

	// ProtectedPaths are the glob patterns gating the route guard.
	ProtectedPaths []string `env:"PROTECTED_PATHS" envSeparator:"," envDefault:"/conversations,/conversations/**,/user,/user/**"`
}

// Load parses configuration from the environment and validates the
// startup-fatal invariants.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if cfg.SessionSecret == "" {
		return Config{}, errors.New("SESSION_SECRET is required")
	}
	if cfg.SessionTTL <= 0 {
		return Config{}, errors.New("SESSION_TTL must be positive")
	}

	return cfg, nil
}
