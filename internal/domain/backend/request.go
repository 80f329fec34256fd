// Package backend describes calls to the FlipFit REST backend and the values they return.
// The backend is an opaque collaborator: success is decided by HTTP status alone.
package backend

import (
	"fmt"
	"net/http"
)

// Request is a single backend call: an HTTP verb, a path under the backend base URL,
// and an optional JSON payload.
type Request struct {
	Method string
	Path   string
	Body   any // nil means no request body
}

// String renders the request as "METHOD /path" for logs and audit records.
func (r Request) String() string {
	return r.Method + " " + r.Path
}

// Validate checks the request is dispatchable.
// PRE: Request is populated
// POST: Returns nil if the method is supported and the path is rooted
func (r Request) Validate() error {
	switch r.Method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete:
	default:
		return fmt.Errorf("unsupported method %q", r.Method)
	}
	if len(r.Path) == 0 || r.Path[0] != '/' {
		return fmt.Errorf("path must start with '/': %q", r.Path)
	}
	return nil
}
