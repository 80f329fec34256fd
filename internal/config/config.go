// Package config loads the frontend's settings from an optional YAML file,
// a .env file and FLIPFIT_* environment variables, in increasing precedence.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Session backends.
const (
	SessionSQLite = "sqlite"
	SessionRedis  = "redis"
	SessionMemory = "memory"
)

// Config is the complete runtime configuration.
type Config struct {
	Env     string        `yaml:"env" env:"FLIPFIT_ENV" env-default:"development"`
	Addr    string        `yaml:"addr" env:"FLIPFIT_ADDR" env-default:":8081"`
	Backend BackendConfig `yaml:"backend"`
	Storage StorageConfig `yaml:"storage"`
	Session SessionConfig `yaml:"session"`
	Redis   RedisConfig   `yaml:"redis"`
	Web     WebConfig     `yaml:"web"`
	Email   EmailConfig   `yaml:"email"`
}

// BackendConfig points at the FlipFit REST API.
type BackendConfig struct {
	URL     string        `yaml:"url" env:"FLIPFIT_BACKEND_URL" env-default:"http://localhost:8080"`
	Timeout time.Duration `yaml:"timeout" env:"FLIPFIT_BACKEND_TIMEOUT" env-default:"0s"`
	SlowMs  int           `yaml:"slow_ms" env:"FLIPFIT_SLOW_BACKEND_MS" env-default:"500"`
}

// StorageConfig locates the local SQLite database.
type StorageConfig struct {
	DBPath string `yaml:"db_path" env:"FLIPFIT_DB_PATH" env-default:"flipfit.db"`
	SlowMs int    `yaml:"slow_ms" env:"FLIPFIT_SLOW_QUERY_MS" env-default:"50"`
}

// SessionConfig chooses where sessions live and how long they last.
type SessionConfig struct {
	Backend string        `yaml:"backend" env:"FLIPFIT_SESSION_BACKEND" env-default:"sqlite"`
	TTL     time.Duration `yaml:"ttl" env:"FLIPFIT_SESSION_TTL" env-default:"24h"`
}

// RedisConfig is used when Session.Backend is redis.
type RedisConfig struct {
	Addr     string `yaml:"addr" env:"FLIPFIT_REDIS_ADDR" env-default:"localhost:6379"`
	Password string `yaml:"password" env:"FLIPFIT_REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"FLIPFIT_REDIS_DB" env-default:"0"`
}

// WebConfig covers the HTTP surface.
type WebConfig struct {
	CSRFKey            string `yaml:"csrf_key" env:"FLIPFIT_CSRF_KEY"`
	RateLimitPerSecond int    `yaml:"rate_limit_per_second" env:"FLIPFIT_RATE_LIMIT_PER_SECOND" env-default:"20"`
	SlowRequestMs      int    `yaml:"slow_request_ms" env:"FLIPFIT_SLOW_REQUEST_MS" env-default:"200"`

	TrustedOrigins []string `yaml:"trusted_origins" env:"FLIPFIT_TRUSTED_ORIGINS" env-separator:","`
}

// EmailConfig enables Resend delivery when ResendKey is set.
type EmailConfig struct {
	ResendKey string `yaml:"resend_key" env:"FLIPFIT_RESEND_KEY"`
	From      string `yaml:"from" env:"FLIPFIT_RESEND_FROM" env-default:"FlipFit <noreply@flipfit.example>"`
	ReplyTo   string `yaml:"reply_to" env:"FLIPFIT_REPLY_TO"`
}

// PathEnv names the variable that may point at a YAML config file.
const PathEnv = "FLIPFIT_CONFIG"

// Load reads configuration. path may be empty; FLIPFIT_CONFIG overrides it.
// A missing .env file is fine; a named YAML file that cannot be read is not.
// POST: the returned config has passed Validate
func Load(path string) (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("dotenv_unreadable", "error", err)
	}
	if p, ok := os.LookupEnv(PathEnv); ok && p != "" {
		path = p
	}

	cfg := &Config{}
	if path != "" {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that have no safe default.
func (c *Config) Validate() error {
	switch c.Env {
	case EnvDevelopment, EnvProduction:
	default:
		return fmt.Errorf("FLIPFIT_ENV must be %q or %q, got %q", EnvDevelopment, EnvProduction, c.Env)
	}

	u, err := url.Parse(c.Backend.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("FLIPFIT_BACKEND_URL must be an absolute http(s) URL, got %q", c.Backend.URL)
	}
	if c.Backend.Timeout < 0 {
		return errors.New("FLIPFIT_BACKEND_TIMEOUT must not be negative")
	}

	switch c.Session.Backend {
	case SessionSQLite, SessionRedis, SessionMemory:
	default:
		return fmt.Errorf("FLIPFIT_SESSION_BACKEND must be sqlite, redis or memory, got %q", c.Session.Backend)
	}

	if c.Web.CSRFKey != "" {
		if _, err := c.CSRFKeyBytes(); err != nil {
			return err
		}
	} else if c.IsProduction() {
		return errors.New("FLIPFIT_CSRF_KEY is required in production")
	}
	if c.Web.RateLimitPerSecond <= 0 {
		return errors.New("FLIPFIT_RATE_LIMIT_PER_SECOND must be positive")
	}
	return nil
}

// IsProduction reports whether the frontend runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// CSRFKeyBytes decodes the 64 hex character CSRF key into 32 bytes.
func (c *Config) CSRFKeyBytes() ([]byte, error) {
	key, err := hex.DecodeString(c.Web.CSRFKey)
	if err != nil || len(key) != 32 {
		return nil, errors.New("FLIPFIT_CSRF_KEY must be 64 hex characters")
	}
	return key, nil
}

// Millis converts a millisecond setting to a duration.
func Millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
