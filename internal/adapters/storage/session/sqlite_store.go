package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"flipfit/internal/adapters/storage"
	domain "flipfit/internal/domain/session"
)

// timeLayout is fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore persists sessions in the session table, keyed by token hash.
type SQLiteStore struct {
	db  storage.SQLDB
	ttl time.Duration
	now func() time.Time
}

// NewSQLiteStore creates a session store. ttl <= 0 means sessions never expire.
// PRE: db has been migrated
func NewSQLiteStore(db storage.SQLDB, ttl time.Duration) *SQLiteStore {
	return &SQLiteStore{db: db, ttl: ttl, now: time.Now}
}

// Create stores sess and returns its token.
func (s *SQLiteStore) Create(ctx context.Context, sess domain.Session) (string, error) {
	if err := sess.Validate(); err != nil {
		return "", err
	}
	token, err := newToken()
	if err != nil {
		return "", err
	}
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = s.now()
	}
	var expires sql.NullString
	if s.ttl > 0 {
		expires = sql.NullString{String: sess.CreatedAt.Add(s.ttl).UTC().Format(timeLayout), Valid: true}
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO session (token_hash, user_id, role, full_name, email, created_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		hashToken(token), sess.UserID, string(sess.Role), sess.FullName, sess.Email,
		sess.CreatedAt.UTC().Format(timeLayout), expires)
	if err != nil {
		return "", fmt.Errorf("insert session: %w", err)
	}
	return token, nil
}

// Get returns the session for token. An expired row is deleted and reported missing.
func (s *SQLiteStore) Get(ctx context.Context, token string) (domain.Session, bool, error) {
	var (
		sess      domain.Session
		role      string
		createdAt string
	)
	key := hashToken(token)
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, role, full_name, email, created_at FROM session WHERE token_hash = ?`, key).
		Scan(&sess.UserID, &role, &sess.FullName, &sess.Email, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Session{}, false, nil
	}
	if err != nil {
		return domain.Session{}, false, fmt.Errorf("select session: %w", err)
	}
	sess.Role = domain.Role(role)
	sess.CreatedAt, err = time.Parse(timeLayout, createdAt)
	if err != nil {
		return domain.Session{}, false, fmt.Errorf("parse session created_at: %w", err)
	}
	if sess.IsExpired(s.now(), s.ttl) {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM session WHERE token_hash = ?`, key); err != nil {
			return domain.Session{}, false, fmt.Errorf("delete expired session: %w", err)
		}
		return domain.Session{}, false, nil
	}
	return sess, true, nil
}

// Delete removes the session for token.
func (s *SQLiteStore) Delete(ctx context.Context, token string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM session WHERE token_hash = ?`, hashToken(token)); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// PurgeExpired deletes every expired session and returns how many went.
func (s *SQLiteStore) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM session WHERE expires_at IS NOT NULL AND expires_at <= ?`,
		s.now().UTC().Format(timeLayout))
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	return res.RowsAffected()
}
