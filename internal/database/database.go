// Package database provides the SQLite persistence layer: connection
// management, schema migrations, and data access objects for tasks,
// templates, and conversation history.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/taskmind/taskmind/internal/types"
)

// Config holds database connection settings.
type Config struct {
	// Path is the filesystem path to the SQLite database file.
	Path string

	// BusyTimeout is how long SQLite waits on a locked database
	// before returning SQLITE_BUSY, in milliseconds.
	BusyTimeout int

	// MaxOpenConns limits the connection pool size.
	MaxOpenConns int

	// MaxIdleConns limits idle connections retained in the pool.
	MaxIdleConns int
}

// DefaultConfig returns sensible defaults for a local single-process service.
func DefaultConfig(path string) Config {
	return Config{
		Path:         path,
		BusyTimeout:  5000,
		MaxOpenConns: 10,
		MaxIdleConns: 5,
	}
}

// DB wraps a SQLite connection pool with migrations and health checks.
type DB struct {
	conn   *sql.DB
	path   string
	logger *slog.Logger
}

// Open opens (or creates) the SQLite database at path with default settings
// and applies any pending migrations.
func Open(path string) (*DB, error) {
	return OpenWithConfig(DefaultConfig(path))
}

// OpenWithConfig opens the database with explicit settings.
// WAL journaling and foreign key enforcement are always enabled.
func OpenWithConfig(cfg Config) (*DB, error) {
	if cfg.Path == "" {
		return nil, types.NewError(types.DB_OPEN_FAILED, "database path is required")
	}

	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=%d",
		cfg.Path, cfg.BusyTimeout)

	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, types.WrapError(types.DB_OPEN_FAILED, "failed to open database", err)
	}

	conn.SetMaxOpenConns(cfg.MaxOpenConns)
	conn.SetMaxIdleConns(cfg.MaxIdleConns)
	conn.SetConnMaxLifetime(time.Hour)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, types.WrapError(types.DB_OPEN_FAILED, "failed to connect to database", err)
	}

	db := &DB{
		conn:   conn,
		path:   cfg.Path,
		logger: slog.Default().With("component", "database"),
	}

	if err := db.verifyPragmas(); err != nil {
		conn.Close()
		return nil, err
	}

	if err := db.Migrate(context.Background()); err != nil {
		conn.Close()
		return nil, err
	}

	db.logger.Info("database opened", "path", cfg.Path)
	return db, nil
}

// verifyPragmas confirms the DSN pragmas actually took effect.
func (db *DB) verifyPragmas() error {
	var journalMode string
	if err := db.conn.QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		return types.WrapError(types.DB_OPEN_FAILED, "failed to check journal mode", err)
	}
	// In-memory databases report "memory" instead of "wal".
	if journalMode != "wal" && journalMode != "memory" {
		return types.NewError(types.DB_OPEN_FAILED,
			fmt.Sprintf("unexpected journal mode: %s", journalMode))
	}

	var foreignKeys int
	if err := db.conn.QueryRow("PRAGMA foreign_keys").Scan(&foreignKeys); err != nil {
		return types.WrapError(types.DB_OPEN_FAILED, "failed to check foreign keys", err)
	}
	if foreignKeys != 1 {
		return types.NewError(types.DB_OPEN_FAILED, "foreign key enforcement is disabled")
	}

	return nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}
	return db.conn.Close()
}

// Conn returns the underlying connection pool for DAO use.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// Health checks database connectivity.
func (db *DB) Health(ctx context.Context) types.HealthStatus {
	if db.conn == nil {
		return types.Unhealthy("database not open")
	}

	if err := db.conn.PingContext(ctx); err != nil {
		return types.Unhealthy(fmt.Sprintf("ping failed: %v", err))
	}

	var result int
	if err := db.conn.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return types.Degraded(fmt.Sprintf("query failed: %v", err))
	}

	return types.Healthy("")
}

// WithTx executes fn inside a transaction, committing on success and
// rolling back on error or panic.
func (db *DB) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return types.WrapError(types.DB_QUERY_FAILED, "failed to begin transaction", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			db.logger.Error("transaction rollback failed", "error", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return types.WrapError(types.DB_QUERY_FAILED, "failed to commit transaction", err)
	}

	return nil
}
