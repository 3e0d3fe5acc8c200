package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/taskmind/taskmind/internal/types"
)

// migration is a single versioned schema change.
type migration struct {
	version int
	name    string
	up      string
}

// migrations is the ordered list of schema changes. Versions are applied
// exactly once, in order, and recorded in the migrations table.
var migrations = []migration{
	{
		version: 1,
		name:    "initial_schema",
		up: `
CREATE TABLE IF NOT EXISTS tasks (
    id           TEXT PRIMARY KEY,
    user_id      TEXT NOT NULL,
    title        TEXT NOT NULL,
    description  TEXT NOT NULL DEFAULT '',
    priority     TEXT NOT NULL DEFAULT 'medium',
    status       TEXT NOT NULL DEFAULT 'pending',
    due_date     TIMESTAMP,
    recurrence   TEXT NOT NULL DEFAULT 'none',
    template_id  TEXT,
    created_at   TIMESTAMP NOT NULL,
    updated_at   TIMESTAMP NOT NULL,
    completed_at TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_tasks_user ON tasks(user_id);
CREATE INDEX IF NOT EXISTS idx_tasks_user_status ON tasks(user_id, status);
CREATE INDEX IF NOT EXISTS idx_tasks_user_due ON tasks(user_id, due_date);

CREATE TABLE IF NOT EXISTS templates (
    id          TEXT PRIMARY KEY,
    user_id     TEXT NOT NULL,
    name        TEXT NOT NULL,
    title       TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    priority    TEXT NOT NULL DEFAULT 'medium',
    recurrence  TEXT NOT NULL DEFAULT 'none',
    created_at  TIMESTAMP NOT NULL,
    UNIQUE(user_id, name)
);

CREATE INDEX IF NOT EXISTS idx_templates_user ON templates(user_id);

CREATE TABLE IF NOT EXISTS conversation_messages (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id      TEXT NOT NULL,
    role         TEXT NOT NULL,
    content      TEXT NOT NULL DEFAULT '',
    name         TEXT NOT NULL DEFAULT '',
    tool_calls   TEXT,
    tool_call_id TEXT NOT NULL DEFAULT '',
    created_at   TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_conversation_user ON conversation_messages(user_id, id);
`,
	},
}

// Migrate applies all pending migrations in order.
func (db *DB) Migrate(ctx context.Context) error {
	if err := db.ensureMigrationsTable(ctx); err != nil {
		return err
	}

	applied, err := db.appliedVersions(ctx)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if applied[m.version] {
			continue
		}

		if err := db.applyMigration(ctx, m); err != nil {
			return types.WrapError(types.DB_MIGRATION_FAILED,
				fmt.Sprintf("migration %d (%s) failed", m.version, m.name), err)
		}

		db.logger.Info("applied migration", "version", m.version, "name", m.name)
	}

	return nil
}

func (db *DB) ensureMigrationsTable(ctx context.Context) error {
	_, err := db.conn.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS migrations (
			version    INTEGER PRIMARY KEY,
			name       TEXT NOT NULL,
			applied_at TIMESTAMP NOT NULL
		)`)
	if err != nil {
		return types.WrapError(types.DB_MIGRATION_FAILED, "failed to create migrations table", err)
	}
	return nil
}

func (db *DB) appliedVersions(ctx context.Context) (map[int]bool, error) {
	rows, err := db.conn.QueryContext(ctx, "SELECT version FROM migrations")
	if err != nil {
		return nil, types.WrapError(types.DB_MIGRATION_FAILED, "failed to read applied migrations", err)
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, types.WrapError(types.DB_MIGRATION_FAILED, "failed to scan migration version", err)
		}
		applied[version] = true
	}

	return applied, rows.Err()
}

// applyMigration runs a migration's statements and records the version,
// all inside a single transaction.
func (db *DB) applyMigration(ctx context.Context, m migration) error {
	return db.WithTx(ctx, func(tx *sql.Tx) error {
		for _, stmt := range splitStatements(m.up) {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("statement %q: %w", firstLine(stmt), err)
			}
		}

		_, err := tx.ExecContext(ctx,
			"INSERT INTO migrations (version, name, applied_at) VALUES (?, ?, CURRENT_TIMESTAMP)",
			m.version, m.name)
		return err
	})
}

// splitStatements splits a migration script into individual statements.
func splitStatements(script string) []string {
	var stmts []string
	for _, raw := range strings.Split(script, ";") {
		stmt := strings.TrimSpace(raw)
		if stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}
