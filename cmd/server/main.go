package main

import (
	"context"
	"crypto/rand"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"flipfit/internal/adapters/api"
	emailPkg "flipfit/internal/adapters/email"
	web "flipfit/internal/adapters/http"
	"flipfit/internal/adapters/http/perf"
	"flipfit/internal/adapters/storage"
	auditStore "flipfit/internal/adapters/storage/audit"
	sessionStore "flipfit/internal/adapters/storage/session"
	"flipfit/internal/config"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

// sessionPurgeInterval is how often expired SQLite sessions are deleted.
const sessionPurgeInterval = 15 * time.Minute

func main() {
	configPath := flag.String("config", "", "optional YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("config_invalid", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(config.NewLogger(cfg.Env, os.Stdout))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("server_failed", "error", err)
		os.Exit(1)
	}
	slog.Info("server_stopped")
}

func run(ctx context.Context, cfg *config.Config) error {
	db, err := storage.Open(ctx, cfg.Storage.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := storage.MigrateDB(ctx, db); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	// Performance instrumentation: wrap DB with timing, create collector
	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, collector, config.Millis(cfg.Storage.SlowMs))

	sessions, err := openSessionStore(ctx, cfg, timedDB)
	if err != nil {
		return err
	}

	client, err := api.New(cfg.Backend.URL,
		api.WithTimeout(cfg.Backend.Timeout),
		api.WithObserver(collector.ObserveBackend),
		api.WithSlowThreshold(config.Millis(cfg.Backend.SlowMs)),
	)
	if err != nil {
		return err
	}

	csrfKey, err := loadCSRFKey(cfg)
	if err != nil {
		return err
	}

	mux := web.NewMux(ctx, web.Deps{
		Backend:            client,
		Sessions:           sessions,
		Audit:              auditStore.NewSQLiteStore(timedDB),
		Mailer:             newMailer(cfg),
		Collector:          collector,
		CSRFKey:            csrfKey,
		TrustedOrigins:     cfg.Web.TrustedOrigins,
		Secure:             cfg.IsProduction(),
		SessionTTL:         cfg.Session.TTL,
		RateLimitPerSecond: cfg.Web.RateLimitPerSecond,
		SlowRequest:        config.Millis(cfg.Web.SlowRequestMs),
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server_starting",
			"version", version, "addr", cfg.Addr, "env", cfg.Env,
			"backend", cfg.Backend.URL, "sessions", cfg.Session.Backend,
			"schema", storage.LatestSchemaVersion())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// openSessionStore builds the configured session backend.
func openSessionStore(ctx context.Context, cfg *config.Config, db storage.SQLDB) (sessionStore.Store, error) {
	switch cfg.Session.Backend {
	case config.SessionRedis:
		client, err := sessionStore.NewRedisClient(ctx, &redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, 5, time.Second)
		if err != nil {
			return nil, err
		}
		context.AfterFunc(ctx, func() { _ = client.Close() })
		return sessionStore.NewRedisStore(client, cfg.Session.TTL), nil
	case config.SessionMemory:
		return sessionStore.NewMemoryStore(cfg.Session.TTL), nil
	}

	store := sessionStore.NewSQLiteStore(db, cfg.Session.TTL)
	go purgeSessions(ctx, store)
	return store, nil
}

// purgeSessions deletes expired SQLite sessions until ctx is done.
func purgeSessions(ctx context.Context, store *sessionStore.SQLiteStore) {
	ticker := time.NewTicker(sessionPurgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := store.PurgeExpired(ctx)
			if err != nil {
				slog.Warn("session_purge_failed", "error", err)
				continue
			}
			if n > 0 {
				slog.Info("sessions_purged", "count", n)
			}
		}
	}
}

// loadCSRFKey returns the configured key, or a random one outside production.
func loadCSRFKey(cfg *config.Config) ([]byte, error) {
	if cfg.Web.CSRFKey != "" {
		return cfg.CSRFKeyBytes()
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate CSRF key: %w", err)
	}
	slog.Warn("csrf_key_random", "hint", "forms break across restarts; set FLIPFIT_CSRF_KEY")
	return key, nil
}

func newMailer(cfg *config.Config) emailPkg.Sender {
	if cfg.Email.ResendKey != "" {
		slog.Info("email_sender", "provider", "resend")
		return emailPkg.NewResendSender(cfg.Email.ResendKey, cfg.Email.From, cfg.Email.ReplyTo)
	}
	if cfg.IsProduction() {
		slog.Warn("email_sender", "provider", "noop", "hint", "FLIPFIT_RESEND_KEY is not set; notifications are disabled")
	} else {
		slog.Info("email_sender", "provider", "noop")
	}
	return emailPkg.NewNoopSender()
}
