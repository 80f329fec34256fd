// Package action maps dashboard intents to backend calls.
//
// Every button on a role dashboard is an ID. The catalog gives each ID a Spec: the HTTP
// verb, a path template, the inputs to collect first, and how to build the JSON payload.
// Resolve turns a Spec plus the session and collected inputs into a backend.Request.
package action

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"flipfit/internal/domain/backend"
	"flipfit/internal/domain/session"
)

// ID names a UI intent, e.g. "approve-owner" or "viewCenters".
// IDs are unique within a role; two roles may share one (both have "editDetails").
type ID string

// Kind is the input type of a Param.
type Kind int

const (
	KindText Kind = iota
	KindInt
	KindEmail
	KindPassword
	KindDate
)

// Category classifies the rows an action returns. It drives column suppression.
type Category string

const (
	CategoryNone     Category = ""
	CategoryGyms     Category = "gyms"
	CategoryUsers    Category = "users"
	CategoryBookings Category = "bookings"
)

// RenderMode selects how a non-table result is presented.
type RenderMode int

const (
	RenderAuto RenderMode = iota
	RenderCurrency
)

// Notification is a follow-up message sent after an action succeeds.
type Notification int

const (
	NotifyNone Notification = iota
	NotifyBookingReceipt
)

// selfPlaceholder in a path template is replaced by the session user's ID.
const selfPlaceholder = "self"

// Domain errors
var (
	// ErrCancelled means a required input was not provided; no call is made.
	ErrCancelled     = errors.New("action cancelled")
	ErrUnknownAction = errors.New("unknown action")
)

// Param is one input collected before the call.
type Param struct {
	Name     string // form field name; also the path placeholder and payload key
	Label    string
	Kind     Kind
	Required bool
}

// Values holds collected inputs by Param name.
type Values map[string]string

// Get returns the trimmed value for name.
func (v Values) Get(name string) string {
	return strings.TrimSpace(v[name])
}

// Int parses the named value as an integer.
func (v Values) Int(name string) (int, error) {
	return strconv.Atoi(v.Get(name))
}

// PayloadFunc builds the JSON body for a call. Inputs have already passed presence
// and numeric checks when it runs.
type PayloadFunc func(sess session.Session, in Values) (any, error)

// Spec is the static description of one action.
type Spec struct {
	ID       ID
	Role     session.Role
	Label    string // dashboard button text
	Title    string // heading over the input form
	Heading  string // heading over the result; {name} expands to an input value
	Method   string
	Path     string
	Params   []Param
	Payload  PayloadFunc
	Category Category
	Render   RenderMode
	Notify   Notification
}

// NeedsInput reports whether the action collects inputs before calling the backend.
func (s Spec) NeedsInput() bool {
	return len(s.Params) > 0
}

// IsReadOnly reports whether the action can run straight from a link.
// Only input-free GETs qualify; everything else goes through a form POST.
func (s Spec) IsReadOnly() bool {
	return s.Method == http.MethodGet && !s.NeedsInput()
}

// Validate checks the spec is internally consistent: every path placeholder is either
// {self} or a declared param, and the method is one the backend accepts.
// PRE: Spec is populated
// POST: Returns nil if the spec can be resolved
func (s Spec) Validate() error {
	if s.ID == "" {
		return errors.New("action id is empty")
	}
	if _, err := session.ParseRole(string(s.Role)); err != nil {
		return fmt.Errorf("%s: %w", s.ID, err)
	}
	if err := (backend.Request{Method: s.Method, Path: s.Path}).Validate(); err != nil {
		return fmt.Errorf("%s: %w", s.ID, err)
	}
	names, err := placeholders(s.Path)
	if err != nil {
		return fmt.Errorf("%s: %w", s.ID, err)
	}
	for _, n := range names {
		if n == selfPlaceholder {
			continue
		}
		p, ok := s.param(n)
		if !ok {
			return fmt.Errorf("%s: path placeholder {%s} has no param", s.ID, n)
		}
		if !p.Required {
			return fmt.Errorf("%s: path param %s must be required", s.ID, n)
		}
	}
	return nil
}

// Resolve builds the backend request for this action.
// PRE: sess is a valid session for s.Role
// POST: Returns ErrCancelled if a required input is blank (no request is built),
// a *backend.RequestError if an input is malformed, or the request to send
func (s Spec) Resolve(sess session.Session, in Values) (backend.Request, error) {
	for _, p := range s.Params {
		v := in.Get(p.Name)
		if v == "" {
			if p.Required {
				return backend.Request{}, ErrCancelled
			}
			continue
		}
		if p.Kind == KindInt {
			if _, err := strconv.Atoi(v); err != nil {
				return backend.Request{}, backend.NewInputError("Invalid %s. Please enter a number.", strings.ToLower(p.Label))
			}
		}
	}

	path, err := s.expandPath(sess, in)
	if err != nil {
		return backend.Request{}, err
	}

	var body any
	if s.Payload != nil {
		body, err = s.Payload(sess, in)
		if err != nil {
			return backend.Request{}, err
		}
	}

	req := backend.Request{Method: s.Method, Path: path, Body: body}
	if err := req.Validate(); err != nil {
		return backend.Request{}, err
	}
	return req, nil
}

// ResultHeading expands {name} references in Heading with the collected inputs.
func (s Spec) ResultHeading(in Values) string {
	h := s.Heading
	for _, p := range s.Params {
		h = strings.ReplaceAll(h, "{"+p.Name+"}", in.Get(p.Name))
	}
	return h
}

func (s Spec) param(name string) (Param, bool) {
	for _, p := range s.Params {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}

func (s Spec) expandPath(sess session.Session, in Values) (string, error) {
	var b strings.Builder
	rest := s.Path
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			b.WriteString(rest)
			break
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			return "", fmt.Errorf("unterminated placeholder in %q", s.Path)
		}
		name := rest[open+1 : open+end]
		b.WriteString(rest[:open])
		if name == selfPlaceholder {
			b.WriteString(strconv.Itoa(sess.UserID))
		} else {
			b.WriteString(url.PathEscape(in.Get(name)))
		}
		rest = rest[open+end+1:]
	}
	return b.String(), nil
}

// placeholders lists the {name} segments of a path template.
func placeholders(tmpl string) ([]string, error) {
	var names []string
	rest := tmpl
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			return names, nil
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			return nil, fmt.Errorf("unterminated placeholder in %q", tmpl)
		}
		names = append(names, rest[open+1:open+end])
		rest = rest[open+end+1:]
	}
}
