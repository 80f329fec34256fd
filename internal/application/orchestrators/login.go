package orchestrators

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"flipfit/internal/domain/audit"
	"flipfit/internal/domain/backend"
	"flipfit/internal/domain/session"
)

// LoginInput carries input for the login orchestrator.
type LoginInput struct {
	Email     string
	Password  string
	RequestID string
}

// LoginResult carries the result of a successful login.
type LoginResult struct {
	Token   string // session cookie value
	Session session.Session
	Welcome string
}

// LoginDeps holds dependencies for Login.
type LoginDeps struct {
	Backend  BackendCaller
	Sessions SessionWriter
	Audit    AuditRecorder
	Now      func() time.Time
}

var (
	ErrInvalidCredentials = errors.New("email and password are required")
	ErrMalformedLogin     = errors.New("login response is missing user details")
)

// loginPath is the backend credential check.
const loginPath = "/user/login"

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ExecuteLogin asks the backend to check credentials and opens a session for the returned user.
// PRE: Email and Password are non-blank
// POST: On success a session exists for the backend's userId and role
// INVARIANT: No session is created for a role outside session.ValidRoles
func ExecuteLogin(ctx context.Context, input LoginInput, deps LoginDeps) (LoginResult, error) {
	email := strings.TrimSpace(input.Email)
	if email == "" || input.Password == "" {
		return LoginResult{}, ErrInvalidCredentials
	}

	start := nowOr(deps.Now)
	req := backend.Request{Method: http.MethodPost, Path: loginPath, Body: loginRequest{Email: email, Password: input.Password}}
	res, err := deps.Backend.Do(ctx, req)
	elapsed := nowOr(deps.Now).Sub(start)

	event := audit.NewEvent(audit.KindLogin, session.Session{Email: email}, start).
		WithCall(req.Method, req.Path, statusOf(res, err), elapsed).
		WithRequestID(input.RequestID)
	event.ActorName = email

	if err != nil {
		slog.InfoContext(ctx, "auth_event", "event", "login_failed", "email", email, "reason", err.Error())
		recordAudit(ctx, deps.Audit, event.WithOutcome(audit.OutcomeError, err.Error()))
		return LoginResult{}, err
	}

	sess, err := sessionFromLogin(res, email, start)
	if err != nil {
		slog.InfoContext(ctx, "auth_event", "event", "login_rejected", "email", email, "reason", err.Error())
		recordAudit(ctx, deps.Audit, event.WithOutcome(audit.OutcomeError, err.Error()))
		return LoginResult{}, err
	}

	token, err := deps.Sessions.Create(ctx, sess)
	if err != nil {
		return LoginResult{}, fmt.Errorf("create session: %w", err)
	}

	event.ActorID = sess.UserID
	event.ActorName = sess.FullName
	event.ActorRole = sess.Role
	recordAudit(ctx, deps.Audit, event)
	slog.InfoContext(ctx, "auth_event", "event", "login_success", "user_id", sess.UserID, "role", sess.Role)

	return LoginResult{
		Token:   token,
		Session: sess,
		Welcome: fmt.Sprintf("Login successful! Welcome, %s.", sess.FullName),
	}, nil
}

// sessionFromLogin reads userId, role and fullName from the login response.
// An unrecognised role yields session.ErrInvalidRole.
func sessionFromLogin(res backend.Result, email string, now time.Time) (session.Session, error) {
	obj, ok := res.Value.(*backend.Object)
	if !ok {
		return session.Session{}, ErrMalformedLogin
	}
	id, ok := intField(obj, "userId")
	if !ok {
		return session.Session{}, ErrMalformedLogin
	}
	rawRole, _ := obj.Get("role")
	roleText, _ := rawRole.(string)
	role, err := session.ParseRole(roleText)
	if err != nil {
		return session.Session{}, err
	}
	name, _ := obj.Get("fullName")
	fullName, _ := name.(string)
	if e, ok := obj.Get("email"); ok {
		if s, ok := e.(string); ok && s != "" {
			email = s
		}
	}

	sess := session.Session{UserID: id, Role: role, FullName: fullName, Email: email, CreatedAt: now}
	if err := sess.Validate(); err != nil {
		return session.Session{}, err
	}
	return sess, nil
}

// intField reads an integer that may arrive as a JSON number or a numeric string.
func intField(obj *backend.Object, key string) (int, bool) {
	v, ok := obj.Get(key)
	if !ok {
		return 0, false
	}
	var text string
	switch n := v.(type) {
	case json.Number:
		text = n.String()
	case string:
		text = n
	default:
		return 0, false
	}
	i, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, false
	}
	return i, true
}
