// Package audit records who did what against the backend through the frontend.
package audit

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"flipfit/internal/domain/session"
)

// Kind is the type of audited event.
type Kind string

const (
	KindAction   Kind = "action"
	KindLogin    Kind = "login"
	KindLogout   Kind = "logout"
	KindRegister Kind = "register"
)

// Outcome is how the event ended.
type Outcome string

const (
	OutcomeOK        Outcome = "ok"
	OutcomeError     Outcome = "error"
	OutcomeCancelled Outcome = "cancelled"
)

var (
	ErrMissingID   = errors.New("audit event has no id")
	ErrUnknownKind = errors.New("unknown audit event kind")
)

// Event is a single audit log entry.
// ActorID is 0 when nobody was logged in (failed login, registration).
type Event struct {
	ID        string        `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	Kind      Kind          `json:"kind"`
	ActorID   int           `json:"actorId"`
	ActorName string        `json:"actorName"`
	ActorRole session.Role  `json:"actorRole"`
	Action    string        `json:"action"`
	Method    string        `json:"method"`
	Path      string        `json:"path"`
	Status    int           `json:"status"`
	Outcome   Outcome       `json:"outcome"`
	Duration  time.Duration `json:"-"`
	Message   string        `json:"message"`
	RequestID string        `json:"requestId"`
}

// NewEvent starts an event for actor at now. Outcome defaults to ok.
// POST: ID is a fresh UUID
func NewEvent(kind Kind, actor session.Session, now time.Time) Event {
	return Event{
		ID:        uuid.NewString(),
		Timestamp: now.UTC(),
		Kind:      kind,
		ActorID:   actor.UserID,
		ActorName: actor.FullName,
		ActorRole: actor.Role,
		Outcome:   OutcomeOK,
	}
}

// WithCall sets the backend call the event made.
func (e Event) WithCall(method, path string, status int, d time.Duration) Event {
	e.Method = method
	e.Path = path
	e.Status = status
	e.Duration = d
	return e
}

// WithAction names the dashboard action.
func (e Event) WithAction(id string) Event {
	e.Action = id
	return e
}

// WithOutcome sets how the event ended and the message shown to the user.
func (e Event) WithOutcome(o Outcome, message string) Event {
	e.Outcome = o
	e.Message = message
	return e
}

// WithRequestID ties the event to the inbound request.
func (e Event) WithRequestID(id string) Event {
	e.RequestID = id
	return e
}

// DurationMs is the backend call duration in whole milliseconds.
func (e Event) DurationMs() int64 {
	return e.Duration.Milliseconds()
}

// Validate checks the fields a store relies on.
func (e Event) Validate() error {
	if e.ID == "" {
		return ErrMissingID
	}
	switch e.Kind {
	case KindAction, KindLogin, KindLogout, KindRegister:
		return nil
	}
	return ErrUnknownKind
}
