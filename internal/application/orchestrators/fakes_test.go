package orchestrators

import (
	"context"
	"errors"
	"strconv"
	"time"

	emailAdapter "flipfit/internal/adapters/email"
	"flipfit/internal/domain/audit"
	"flipfit/internal/domain/backend"
	"flipfit/internal/domain/session"
)

// fakeBackend replies with a canned body or error and records every request.
type fakeBackend struct {
	body   string
	status int
	err    error
	calls  []backend.Request
}

// Do implements BackendCaller.
func (f *fakeBackend) Do(_ context.Context, req backend.Request) (backend.Result, error) {
	f.calls = append(f.calls, req)
	if f.err != nil {
		return backend.Result{}, f.err
	}
	res := backend.ParseResult([]byte(f.body))
	res.Status = f.status
	if res.Status == 0 {
		res.Status = 200
	}
	return res, nil
}

type fakeSessions struct {
	created   []session.Session
	deleted   []string
	createErr error
	deleteErr error
}

// Create implements SessionWriter.
func (f *fakeSessions) Create(_ context.Context, sess session.Session) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	f.created = append(f.created, sess)
	return "token-" + strconv.Itoa(len(f.created)), nil
}

// Delete implements SessionWriter.
func (f *fakeSessions) Delete(_ context.Context, token string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, token)
	return nil
}

type fakeAudit struct {
	events []audit.Event
	err    error
}

// Save implements AuditRecorder.
func (f *fakeAudit) Save(_ context.Context, e audit.Event) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, e)
	return nil
}

func (f *fakeAudit) last() audit.Event {
	if len(f.events) == 0 {
		return audit.Event{}
	}
	return f.events[len(f.events)-1]
}

type fakeMailer struct {
	sent []emailAdapter.Message
	err  error
}

// Send implements email.Sender.
func (f *fakeMailer) Send(_ context.Context, msg emailAdapter.Message) (emailAdapter.SendResult, error) {
	if f.err != nil {
		return emailAdapter.SendResult{}, f.err
	}
	f.sent = append(f.sent, msg)
	return emailAdapter.SendResult{MessageID: "msg-1"}, nil
}

var fixedTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// steppingClock advances by step on every call so call durations are predictable.
func steppingClock(step time.Duration) func() time.Time {
	t := fixedTime
	return func() time.Time {
		now := t
		t = t.Add(step)
		return now
	}
}

var errBoom = errors.New("boom")

var customerSession = session.Session{UserID: 7, Role: session.RoleCustomer, FullName: "Asha Rao", Email: "asha@example.com", CreatedAt: fixedTime}
