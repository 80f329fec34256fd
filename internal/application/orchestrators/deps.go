package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"flipfit/internal/domain/audit"
	"flipfit/internal/domain/backend"
	"flipfit/internal/domain/session"
)

// BackendCaller sends one request to the FlipFit REST backend.
type BackendCaller interface {
	Do(ctx context.Context, req backend.Request) (backend.Result, error)
}

// SessionWriter defines the session store operations needed by login and logout.
type SessionWriter interface {
	Create(ctx context.Context, sess session.Session) (string, error)
	Delete(ctx context.Context, token string) error
}

// AuditRecorder persists audit events.
type AuditRecorder interface {
	Save(ctx context.Context, e audit.Event) error
}

// recordAudit saves e when a recorder is configured. Failures are logged, never returned.
func recordAudit(ctx context.Context, rec AuditRecorder, e audit.Event) {
	if rec == nil {
		return
	}
	if err := rec.Save(ctx, e); err != nil {
		slog.ErrorContext(ctx, "audit_save_failed", "kind", e.Kind, "action", e.Action, "error", err)
	}
}

// statusOf returns the HTTP status behind a call outcome, or 0 when no response arrived.
func statusOf(res backend.Result, err error) int {
	if err == nil {
		return res.Status
	}
	if re, ok := backend.AsRequestError(err); ok {
		return re.StatusCode
	}
	return 0
}

func nowOr(now func() time.Time) time.Time {
	if now == nil {
		return time.Now()
	}
	return now()
}
