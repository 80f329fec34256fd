// Package storage holds the local SQLite database of the web frontend: schema migrations
// and the timing wrapper shared by every store. Business data lives in the backend.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	_ "modernc.org/sqlite"
)

// pragmas applied to every file database via the DSN.
var pragmas = []string{
	"journal_mode(WAL)",
	"busy_timeout(5000)",
	"foreign_keys(ON)",
	"synchronous(NORMAL)",
}

// Open opens the SQLite database at path and checks it is reachable.
// ":memory:" opens a private in-memory database limited to one connection.
// POST: returned db has been pinged
func Open(ctx context.Context, path string) (*sql.DB, error) {
	dsn := path
	if path != ":memory:" {
		params := make([]string, len(pragmas))
		for i, p := range pragmas {
			params[i] = "_pragma=" + p
		}
		dsn = path + "?" + strings.Join(params, "&")
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", path, err)
	}
	return db, nil
}

// migration is one forward-only schema step.
type migration struct {
	version     int
	description string
	statements  []string
}

var migrations = []migration{
	{
		version:     1,
		description: "sessions",
		statements: []string{
			`CREATE TABLE session (
				token_hash TEXT PRIMARY KEY,
				user_id INTEGER NOT NULL,
				role TEXT NOT NULL,
				full_name TEXT NOT NULL DEFAULT '',
				email TEXT NOT NULL DEFAULT '',
				created_at TEXT NOT NULL,
				expires_at TEXT
			)`,
			`CREATE INDEX idx_session_expires ON session(expires_at)`,
		},
	},
	{
		version:     2,
		description: "audit trail",
		statements: []string{
			`CREATE TABLE audit_event (
				id TEXT PRIMARY KEY,
				timestamp TEXT NOT NULL,
				kind TEXT NOT NULL,
				actor_id INTEGER NOT NULL DEFAULT 0,
				actor_name TEXT NOT NULL DEFAULT '',
				actor_role TEXT NOT NULL DEFAULT '',
				action TEXT NOT NULL DEFAULT '',
				method TEXT NOT NULL DEFAULT '',
				path TEXT NOT NULL DEFAULT '',
				status INTEGER NOT NULL DEFAULT 0,
				outcome TEXT NOT NULL,
				duration_ms INTEGER NOT NULL DEFAULT 0,
				message TEXT NOT NULL DEFAULT '',
				request_id TEXT NOT NULL DEFAULT ''
			)`,
			`CREATE INDEX idx_audit_event_timestamp ON audit_event(timestamp)`,
			`CREATE INDEX idx_audit_event_actor ON audit_event(actor_id, timestamp)`,
		},
	},
}

// LatestSchemaVersion is the version MigrateDB brings a database to.
func LatestSchemaVersion() int {
	return migrations[len(migrations)-1].version
}

// SchemaVersion returns the applied version, 0 for a fresh database.
func SchemaVersion(ctx context.Context, db SQLDB) (int, error) {
	var exists int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'schema_version'`).Scan(&exists)
	if err != nil || exists == 0 {
		return 0, err
	}
	var v sql.NullInt64
	if err := db.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_version`).Scan(&v); err != nil {
		return 0, err
	}
	return int(v.Int64), nil
}

// MigrateDB applies every migration newer than the recorded version, each in its own transaction.
// PRE: db is reachable
// POST: SchemaVersion(db) == LatestSchemaVersion()
// INVARIANT: running it again is a no-op
func MigrateDB(ctx context.Context, db SQLDB) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		description TEXT NOT NULL,
		applied_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
	)`); err != nil {
		return fmt.Errorf("create schema_version: %w", err)
	}
	current, err := SchemaVersion(ctx, db)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := apply(ctx, db, m); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.version, m.description, err)
		}
		slog.Info("schema_migrated", "version", m.version, "description", m.description)
	}
	return nil
}

func apply(ctx context.Context, db SQLDB, m migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, stmt := range m.statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_version (version, description) VALUES (?, ?)`, m.version, m.description); err != nil {
		return err
	}
	return tx.Commit()
}
