package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load reads so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, kv := range os.Environ() {
		if name, _, _ := strings.Cut(kv, "="); strings.HasPrefix(name, "FLIPFIT_") {
			t.Setenv(name, "")
			os.Unsetenv(name)
		}
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, ":8081", cfg.Addr)
	assert.Equal(t, "http://localhost:8080", cfg.Backend.URL)
	assert.Zero(t, cfg.Backend.Timeout)
	assert.Equal(t, SessionSQLite, cfg.Session.Backend)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, 20, cfg.Web.RateLimitPerSecond)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("FLIPFIT_BACKEND_URL", "https://api.flipfit.test")
	t.Setenv("FLIPFIT_BACKEND_TIMEOUT", "3s")
	t.Setenv("FLIPFIT_SESSION_BACKEND", "redis")
	t.Setenv("FLIPFIT_REDIS_ADDR", "cache:6379")
	t.Setenv("FLIPFIT_SLOW_BACKEND_MS", "900")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "https://api.flipfit.test", cfg.Backend.URL)
	assert.Equal(t, 3*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, SessionRedis, cfg.Session.Backend)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
	assert.Equal(t, 900*time.Millisecond, Millis(cfg.Backend.SlowMs))
}

// TestLoad_YAMLThenEnv verifies file values apply and environment variables win over them.
func TestLoad_YAMLThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "flipfit.yaml")
	yaml := "addr: \":9000\"\nbackend:\n  url: http://backend:8080\nsession:\n  backend: memory\n  ttl: 2h\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv("FLIPFIT_ADDR", ":9100")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9100", cfg.Addr)
	assert.Equal(t, "http://backend:8080", cfg.Backend.URL)
	assert.Equal(t, SessionMemory, cfg.Session.Backend)
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
}

// TestLoad_ConfigEnvPath verifies FLIPFIT_CONFIG takes precedence over the argument.
func TestLoad_ConfigEnvPath(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "c.yaml")
	require.NoError(t, os.WriteFile(path, []byte("addr: \":7000\"\n"), 0o600))
	t.Setenv(PathEnv, path)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Addr)
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Env:     EnvDevelopment,
			Backend: BackendConfig{URL: "http://localhost:8080"},
			Session: SessionConfig{Backend: SessionSQLite},
			Web:     WebConfig{RateLimitPerSecond: 10},
		}
	}
	key := strings.Repeat("ab", 32)

	cases := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"bad env", func(c *Config) { c.Env = "staging" }, "FLIPFIT_ENV"},
		{"relative backend", func(c *Config) { c.Backend.URL = "/api" }, "FLIPFIT_BACKEND_URL"},
		{"negative timeout", func(c *Config) { c.Backend.Timeout = -time.Second }, "FLIPFIT_BACKEND_TIMEOUT"},
		{"bad session backend", func(c *Config) { c.Session.Backend = "file" }, "FLIPFIT_SESSION_BACKEND"},
		{"production without key", func(c *Config) { c.Env = EnvProduction }, "FLIPFIT_CSRF_KEY"},
		{"production with key", func(c *Config) { c.Env = EnvProduction; c.Web.CSRFKey = key }, ""},
		{"short key", func(c *Config) { c.Web.CSRFKey = "abcd" }, "64 hex"},
		{"zero rate", func(c *Config) { c.Web.RateLimitPerSecond = 0 }, "RATE_LIMIT"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := valid()
			tc.mutate(c)
			err := c.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestCSRFKeyBytes(t *testing.T) {
	c := &Config{Web: WebConfig{CSRFKey: strings.Repeat("0f", 32)}}
	key, err := c.CSRFKeyBytes()
	require.NoError(t, err)
	assert.Len(t, key, 32)
	assert.Equal(t, byte(0x0f), key[0])
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(EnvProduction, &buf).Info("auth_event", "event", "login")
	assert.True(t, strings.HasPrefix(buf.String(), "{"), "production logs are JSON: %s", buf.String())

	buf.Reset()
	dev := NewLogger(EnvDevelopment, &buf)
	dev.Debug("query", "op", "ExecContext")
	assert.Contains(t, buf.String(), "msg=query")
}
