package audit

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"flipfit/internal/adapters/storage"
	domain "flipfit/internal/domain/audit"
	"flipfit/internal/domain/session"
)

const dateLayout = "2006-01-02T15:04:05.000000000Z07:00"

const eventColumns = `id, timestamp, kind, actor_id, actor_name, actor_role, action, method, path, status, outcome, duration_ms, message, request_id`

// SQLiteStore implements Store on the audit_event table.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates an audit event store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save persists an audit event.
func (s *SQLiteStore) Save(ctx context.Context, e domain.Event) error {
	if err := e.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_event (`+eventColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Timestamp.UTC().Format(dateLayout), string(e.Kind), e.ActorID, e.ActorName, string(e.ActorRole),
		e.Action, e.Method, e.Path, e.Status, string(e.Outcome), e.DurationMs(), e.Message, e.RequestID)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// List returns one page of events matching filter, newest first.
func (s *SQLiteStore) List(ctx context.Context, filter Filter, limit, offset int) ([]domain.Event, error) {
	where, args := filter.where()
	query := `SELECT ` + eventColumns + ` FROM audit_event` + where +
		` ORDER BY timestamp DESC, rowid DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Count returns how many events match filter.
func (s *SQLiteStore) Count(ctx context.Context, filter Filter) (int, error) {
	where, args := filter.where()
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_event`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count audit events: %w", err)
	}
	return n, nil
}

// where builds the WHERE clause for a filter.
func (f Filter) where() (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.Kind != "" {
		conds = append(conds, "kind = ?")
		args = append(args, string(f.Kind))
	}
	if f.Outcome != "" {
		conds = append(conds, "outcome = ?")
		args = append(args, string(f.Outcome))
	}
	if f.ActorID != 0 {
		conds = append(conds, "actor_id = ?")
		args = append(args, f.ActorID)
	}
	if f.Role != "" {
		conds = append(conds, "actor_role = ?")
		args = append(args, string(f.Role))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanEvent(rows *sql.Rows) (domain.Event, error) {
	var (
		e                          domain.Event
		timestamp, kind, role, out string
		durationMs                 int64
	)
	err := rows.Scan(&e.ID, &timestamp, &kind, &e.ActorID, &e.ActorName, &role,
		&e.Action, &e.Method, &e.Path, &e.Status, &out, &durationMs, &e.Message, &e.RequestID)
	if err != nil {
		return domain.Event{}, fmt.Errorf("scan audit event: %w", err)
	}
	e.Kind = domain.Kind(kind)
	e.ActorRole = session.Role(role)
	e.Outcome = domain.Outcome(out)
	e.Duration = time.Duration(durationMs) * time.Millisecond
	e.Timestamp, err = time.Parse(dateLayout, timestamp)
	if err != nil {
		return domain.Event{}, fmt.Errorf("parse audit timestamp: %w", err)
	}
	return e, nil
}
