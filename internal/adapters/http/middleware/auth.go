package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"flipfit/internal/domain/session"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

const (
	sessionContextKey contextKey = "session"
	tokenContextKey   contextKey = "session_token"
)

// SessionCookieName is the HttpOnly cookie that references the server-side session.
const SessionCookieName = "flipfit_session"

// SessionReader looks up a session by its cookie token.
type SessionReader interface {
	Get(ctx context.Context, token string) (session.Session, bool, error)
}

// Auth returns middleware that loads the session named by the cookie into the request context.
// It does NOT block anonymous requests; RequireRole does that.
// A store failure is logged and the request proceeds anonymously.
func Auth(sessions SessionReader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err == nil && cookie.Value != "" {
				sess, ok, err := sessions.Get(r.Context(), cookie.Value)
				switch {
				case err != nil:
					slog.Error("session_lookup_failed", "error", err)
				case ok:
					ctx := context.WithValue(r.Context(), sessionContextKey, sess)
					ctx = context.WithValue(ctx, tokenContextKey, cookie.Value)
					r = r.WithContext(ctx)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole returns middleware that admits only sessions of the given role.
// No session, or a session of another role, is sent to the login page.
func RequireRole(role session.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := SessionFrom(r.Context())
			if !ok || sess.Role != role {
				if ok {
					slog.Info("auth_event", "event", "role_mismatch", "user_id", sess.UserID, "role", sess.Role, "path", r.URL.Path)
				}
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SessionFrom extracts the session from the request context.
func SessionFrom(ctx context.Context) (session.Session, bool) {
	sess, ok := ctx.Value(sessionContextKey).(session.Session)
	return sess, ok
}

// TokenFrom returns the cookie token of the authenticated session, if any.
func TokenFrom(ctx context.Context) (string, bool) {
	tok, ok := ctx.Value(tokenContextKey).(string)
	return tok, ok && tok != ""
}

// ContextWithSession returns a context carrying sess.
// Intended for use in tests.
func ContextWithSession(ctx context.Context, sess session.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, sess)
}

// CookieOptions controls the attributes of the session cookie.
type CookieOptions struct {
	Secure bool
	TTL    time.Duration // zero means a browser-session cookie
}

// SetSessionCookie sets the session cookie on the response.
func SetSessionCookie(w http.ResponseWriter, token string, opts CookieOptions) {
	c := &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
	}
	if opts.TTL > 0 {
		c.MaxAge = int(opts.TTL.Seconds())
	}
	http.SetCookie(w, c)
}

// ClearSessionCookie removes the session cookie.
func ClearSessionCookie(w http.ResponseWriter, opts CookieOptions) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   -1,
	})
}
