// Package audit persists the frontend's audit trail.
package audit

import (
	"context"

	domain "flipfit/internal/domain/audit"
	"flipfit/internal/domain/session"
)

// Store defines audit event persistence.
type Store interface {
	// Save persists an audit event.
	// PRE: event.Validate() == nil
	Save(ctx context.Context, event domain.Event) error

	// List returns events matching filter, newest first, skipping offset rows.
	// PRE: limit > 0, offset >= 0
	List(ctx context.Context, filter Filter, limit, offset int) ([]domain.Event, error)

	// Count returns how many events match filter.
	Count(ctx context.Context, filter Filter) (int, error)
}

// Filter narrows List. Zero values match everything.
type Filter struct {
	Kind    domain.Kind
	Outcome domain.Outcome
	ActorID int
	Role    session.Role
}

var _ Store = (*SQLiteStore)(nil)
