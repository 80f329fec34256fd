package web

import (
	"context"
	"embed"
	"net/http"
	"time"

	"flipfit/internal/adapters/email"
	"flipfit/internal/adapters/http/middleware"
	"flipfit/internal/adapters/http/perf"
	auditStore "flipfit/internal/adapters/storage/audit"
	sessionStore "flipfit/internal/adapters/storage/session"
	"flipfit/internal/application/orchestrators"
	"flipfit/internal/domain/session"
)

//go:embed templates/*.html static
var assets embed.FS

// Deps holds everything the web frontend talks to.
type Deps struct {
	Backend   orchestrators.BackendCaller
	Sessions  sessionStore.Store
	Audit     auditStore.Store // nil disables the audit trail
	Mailer    email.Sender     // nil disables notifications
	Collector *perf.Collector  // nil disables the perf page data

	CSRFKey        []byte // 32 bytes
	TrustedOrigins []string
	Secure         bool // HTTPS-only cookies
	SessionTTL     time.Duration

	RateLimitPerSecond int
	SlowRequest        time.Duration

	Now func() time.Time
}

// app carries Deps into the handlers.
type app struct {
	Deps
	cookies middleware.CookieOptions
}

func (a *app) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}

// NewMux wires HTTP handlers for the frontend.
// ctx bounds background work started here, such as the rate limiter sweep.
func NewMux(ctx context.Context, deps Deps) http.Handler {
	a := &app{
		Deps:    deps,
		cookies: middleware.CookieOptions{Secure: deps.Secure, TTL: deps.SessionTTL},
	}

	mux := http.NewServeMux()
	registerRoutes(mux, a)

	rate := deps.RateLimitPerSecond
	if rate <= 0 {
		rate = 20
	}
	limiter := middleware.NewRateLimiter(ctx, rate, time.Second)

	// Timing -> RateLimit -> SecurityHeaders -> CSRF -> Auth -> Mux
	return middleware.Chain(mux,
		middleware.Auth(deps.Sessions),
		middleware.CSRF(deps.CSRFKey, middleware.CSRFOptions{Secure: deps.Secure, TrustedOrigins: deps.TrustedOrigins}),
		middleware.SecurityHeaders,
		middleware.RateLimit(limiter),
		middleware.Timing(deps.Collector, deps.SlowRequest),
	)
}

func registerRoutes(mux *http.ServeMux, a *app) {
	mux.Handle("GET /static/", http.FileServerFS(assets))
	mux.HandleFunc("GET /{$}", a.handleRoot)
	mux.HandleFunc("GET /healthz", handleHealth)

	mux.HandleFunc("GET /login", a.handleLoginPage)
	mux.HandleFunc("POST /login", a.handleLogin)
	mux.HandleFunc("GET /register", a.handleRegisterPage)
	mux.HandleFunc("POST /register", a.handleRegister)
	mux.HandleFunc("POST /logout", a.handleLogout)

	for _, role := range session.ValidRoles {
		guard := middleware.RequireRole(role)
		base := session.DashboardPathFor(role)
		mux.Handle("GET "+base, guard(http.HandlerFunc(a.handleDashboard)))
		mux.Handle("GET "+base+"/action/{id}", guard(http.HandlerFunc(a.handleActionPage)))
		mux.Handle("POST "+base+"/action/{id}", guard(http.HandlerFunc(a.handleAction)))
	}

	admin := middleware.RequireRole(session.RoleAdmin)
	mux.Handle("GET /dashboard/admin/activity", admin(http.HandlerFunc(a.handleActivity)))
	mux.Handle("GET /dashboard/admin/perf", admin(http.HandlerFunc(a.handlePerf)))
}
