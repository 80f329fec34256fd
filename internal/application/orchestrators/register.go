package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	emailAdapter "flipfit/internal/adapters/email"
	"flipfit/internal/application/render"
	"flipfit/internal/domain/audit"
	"flipfit/internal/domain/backend"
	"flipfit/internal/domain/session"
)

// RegisterKind selects the registration endpoint.
type RegisterKind string

const (
	RegisterCustomer RegisterKind = "customer"
	RegisterOwner    RegisterKind = "owner"
)

// FormField is one input on a registration form.
type FormField struct {
	Name  string
	Label string
	Type  string // HTML input type
}

var commonRegistrationFields = []FormField{
	{Name: "fullName", Label: "Full Name", Type: "text"},
	{Name: "email", Label: "Email", Type: "email"},
	{Name: "password", Label: "Password", Type: "password"},
	{Name: "userPhone", Label: "Phone", Type: "tel"},
	{Name: "city", Label: "City", Type: "text"},
	{Name: "pinCode", Label: "Pin Code", Type: "text"},
}

var registrationFields = map[RegisterKind][]FormField{
	RegisterCustomer: append(append([]FormField{}, commonRegistrationFields...),
		FormField{Name: "paymentType", Label: "Payment Type", Type: "number"},
		FormField{Name: "paymentInfo", Label: "Payment Info", Type: "text"},
	),
	RegisterOwner: append(append([]FormField{}, commonRegistrationFields...),
		FormField{Name: "aadhaar", Label: "Aadhaar", Type: "text"},
		FormField{Name: "pan", Label: "PAN", Type: "text"},
		FormField{Name: "gst", Label: "GST", Type: "text"},
	),
}

// RegistrationFields lists the form fields for kind, in the order they are sent.
func RegistrationFields(kind RegisterKind) []FormField {
	return registrationFields[kind]
}

// ParseRegisterKind maps a form value to a RegisterKind.
func ParseRegisterKind(s string) (RegisterKind, bool) {
	k := RegisterKind(strings.ToLower(strings.TrimSpace(s)))
	_, ok := registrationFields[k]
	return k, ok
}

var (
	ErrUnknownRegistration    = errors.New("unknown registration type")
	ErrIncompleteRegistration = errors.New("all fields are required")
)

// RegisterInput carries input for the register orchestrator.
type RegisterInput struct {
	Kind      RegisterKind
	Fields    map[string]string
	RequestID string
}

// RegisterResult carries the backend's confirmation.
type RegisterResult struct {
	Message string
}

// RegisterDeps holds dependencies for Register.
type RegisterDeps struct {
	Backend BackendCaller
	Audit   AuditRecorder
	Mailer  emailAdapter.Sender
	Now     func() time.Time
}

// ExecuteRegister creates a customer or gym owner account on the backend.
// Field values are sent as the strings the form submitted.
// PRE: every field for Kind is non-blank
// POST: Returns the backend's confirmation text; emails the registrant on success
func ExecuteRegister(ctx context.Context, input RegisterInput, deps RegisterDeps) (RegisterResult, error) {
	fields, ok := registrationFields[input.Kind]
	if !ok {
		return RegisterResult{}, ErrUnknownRegistration
	}

	payload := backend.NewObject()
	for _, f := range fields {
		v := strings.TrimSpace(input.Fields[f.Name])
		if f.Name == "password" {
			v = input.Fields[f.Name]
		}
		if v == "" {
			return RegisterResult{}, ErrIncompleteRegistration
		}
		payload.Set(f.Name, v)
	}
	email := strings.TrimSpace(input.Fields["email"])
	fullName := strings.TrimSpace(input.Fields["fullName"])

	start := nowOr(deps.Now)
	req := backend.Request{Method: http.MethodPost, Path: "/user/register/" + string(input.Kind), Body: payload}
	res, err := deps.Backend.Do(ctx, req)
	elapsed := nowOr(deps.Now).Sub(start)

	event := audit.NewEvent(audit.KindRegister, session.Session{FullName: fullName}, start).
		WithCall(req.Method, req.Path, statusOf(res, err), elapsed).
		WithAction(string(input.Kind)).
		WithRequestID(input.RequestID)

	if err != nil {
		slog.InfoContext(ctx, "auth_event", "event", "register_failed", "kind", input.Kind, "email", email, "reason", err.Error())
		recordAudit(ctx, deps.Audit, event.WithOutcome(audit.OutcomeError, err.Error()))
		return RegisterResult{}, err
	}

	msg, ok := res.Message()
	if !ok {
		msg = render.PrettyJSON(res.Value)
	}
	recordAudit(ctx, deps.Audit, event.WithOutcome(audit.OutcomeOK, msg))
	slog.InfoContext(ctx, "auth_event", "event", "register_success", "kind", input.Kind, "email", email)

	deliver(ctx, deps.Mailer, registrationConfirmation(input.Kind, fullName, email))
	return RegisterResult{Message: msg}, nil
}
