package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	emailAdapter "flipfit/internal/adapters/email"
	"flipfit/internal/application/render"
	"flipfit/internal/domain/action"
	"flipfit/internal/domain/audit"
	"flipfit/internal/domain/backend"
	"flipfit/internal/domain/session"
)

// DispatchActionInput carries input for the dispatch orchestrator.
type DispatchActionInput struct {
	Session   session.Session
	ActionID  action.ID
	Values    action.Values
	RequestID string

	// Cancelled means the user declined to give input. Values are ignored.
	Cancelled bool
}

// DispatchResult is the action that ran and what to show for it.
type DispatchResult struct {
	Spec    action.Spec
	Outcome render.Outcome
}

// DispatchActionDeps holds dependencies for DispatchAction.
type DispatchActionDeps struct {
	Backend BackendCaller
	Audit   AuditRecorder
	Mailer  emailAdapter.Sender
	Now     func() time.Time
}

// ExecuteDispatchAction runs one dashboard action: resolve inputs, make exactly one backend
// call, and turn the result into an Outcome.
// PRE: Session is valid
// POST: Returns action.ErrUnknownAction when the role has no such action. Every other
// failure, including cancellation, is reported in the Outcome with a nil error.
// INVARIANT: At most one backend call per invocation; none when inputs are missing or malformed
func ExecuteDispatchAction(ctx context.Context, input DispatchActionInput, deps DispatchActionDeps) (DispatchResult, error) {
	spec, err := action.Lookup(input.Session.Role, input.ActionID)
	if err != nil {
		return DispatchResult{}, err
	}

	start := nowOr(deps.Now)
	event := audit.NewEvent(audit.KindAction, input.Session, start).
		WithAction(string(spec.ID)).
		WithRequestID(input.RequestID)

	req, err := resolve(spec, input)
	if err != nil {
		var out render.Outcome
		if errors.Is(err, action.ErrCancelled) {
			out = render.Cancelled()
			event = event.WithCall(spec.Method, spec.Path, 0, 0).WithOutcome(audit.OutcomeCancelled, out.Text)
		} else {
			out = render.Failure(err)
			event = event.WithCall(spec.Method, spec.Path, 0, 0).WithOutcome(audit.OutcomeError, err.Error())
		}
		recordAudit(ctx, deps.Audit, event)
		slog.InfoContext(ctx, "action_dispatched", "action", spec.ID, "role", spec.Role, "outcome", out.Kind, "called", false)
		return DispatchResult{Spec: spec, Outcome: out}, nil
	}

	res, callErr := deps.Backend.Do(ctx, req)
	elapsed := nowOr(deps.Now).Sub(start)
	event = event.WithCall(req.Method, req.Path, statusOf(res, callErr), elapsed)

	var out render.Outcome
	if callErr != nil {
		out = render.Failure(callErr)
		event = event.WithOutcome(audit.OutcomeError, callErr.Error())
	} else {
		out = render.FromResult(res, spec.Category, spec.Render, spec.ResultHeading(input.Values))
		if msg, ok := res.Message(); ok {
			event = event.WithOutcome(audit.OutcomeOK, msg)
		}
	}
	recordAudit(ctx, deps.Audit, event)
	slog.InfoContext(ctx, "action_dispatched",
		"action", spec.ID, "role", spec.Role, "request", req.String(),
		"status", event.Status, "outcome", out.Kind, "duration_ms", elapsed.Milliseconds())

	if callErr == nil && spec.Notify == action.NotifyBookingReceipt && input.Session.Email != "" {
		msg, _ := res.Message()
		deliver(ctx, deps.Mailer, bookingReceipt(input.Session, input.Values, msg))
	}
	return DispatchResult{Spec: spec, Outcome: out}, nil
}

// resolve builds the backend request unless the user cancelled.
func resolve(spec action.Spec, input DispatchActionInput) (backend.Request, error) {
	if input.Cancelled {
		return backend.Request{}, action.ErrCancelled
	}
	return spec.Resolve(input.Session, input.Values)
}
