package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"flipfit/internal/domain/audit"
	"flipfit/internal/domain/backend"
	"flipfit/internal/domain/session"
)

// LogoutInput carries input for the logout orchestrator.
type LogoutInput struct {
	Token     string
	Session   session.Session
	RequestID string
}

// LogoutDeps holds dependencies for Logout.
type LogoutDeps struct {
	Backend  BackendCaller
	Sessions SessionWriter
	Audit    AuditRecorder
	Now      func() time.Time
}

// ExecuteLogout tells the backend the user left and drops the local session.
// The backend call is best-effort; its failure does not keep the session alive.
// POST: The session for Token no longer exists
func ExecuteLogout(ctx context.Context, input LogoutInput, deps LogoutDeps) error {
	start := nowOr(deps.Now)
	req := backend.Request{Method: http.MethodPost, Path: "/user/logout"}
	res, callErr := deps.Backend.Do(ctx, req)
	elapsed := nowOr(deps.Now).Sub(start)
	if callErr != nil {
		slog.WarnContext(ctx, "backend_logout_failed", "user_id", input.Session.UserID, "error", callErr)
	}

	if input.Token != "" {
		if err := deps.Sessions.Delete(ctx, input.Token); err != nil {
			return fmt.Errorf("delete session: %w", err)
		}
	}

	event := audit.NewEvent(audit.KindLogout, input.Session, start).
		WithCall(req.Method, req.Path, statusOf(res, callErr), elapsed).
		WithRequestID(input.RequestID)
	if callErr != nil {
		event = event.WithOutcome(audit.OutcomeError, callErr.Error())
	}
	recordAudit(ctx, deps.Audit, event)
	slog.InfoContext(ctx, "auth_event", "event", "logout", "user_id", input.Session.UserID, "role", input.Session.Role)
	return nil
}
