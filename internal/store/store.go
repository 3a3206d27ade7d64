package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/mik629/ktorm/internal/expr"
	"github.com/mik629/ktorm/internal/querysql"
	"github.com/mik629/ktorm/internal/rowset"
)

// Store executes statements against a SQLite database.
// Uses SQLite with WAL mode for concurrent read access.
type Store struct {
	db *sql.DB

	compact *querysql.SQLCompiler
	pretty  *querysql.SQLCompiler
}

// Open creates or opens a SQLite database at the given path.
// The path ":memory:" opens a private in-memory database.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
//
// This function is idempotent - safe to call multiple times.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, and every connection to
	// ":memory:" is a separate database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	pretty := querysql.NewSQLCompiler()
	pretty.Beautify = true

	return &Store{
		db:      db,
		compact: querysql.NewSQLCompiler(),
		pretty:  pretty,
	}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB for direct queries.
// Use with caution - prefer using Store methods when available.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Query executes a raw statement and returns the resulting rows.
// Callers are responsible for closing the returned rows.
func (s *Store) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, query, args...)
}

// Exec executes a raw statement that returns no rows.
func (s *Store) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.db.ExecContext(ctx, query, args...)
}

// ExecScript runs a script of semicolon-separated statements, such as a
// schema or seed file.
func (s *Store) ExecScript(ctx context.Context, script string) error {
	if _, err := s.db.ExecContext(ctx, script); err != nil {
		return fmt.Errorf("exec script: %w", err)
	}
	return nil
}

// FormatExpression renders q to SQL text and its ordered parameters.
// Beautify only changes whitespace.
func (s *Store) FormatExpression(q expr.QueryExpression, beautify bool) (string, []any, error) {
	c := s.compact
	if beautify {
		c = s.pretty
	}
	return c.Compile(q)
}

// ExecuteQuery renders q, runs it and materializes the result.
func (s *Store) ExecuteQuery(ctx context.Context, q expr.QueryExpression) (*rowset.RowSet, error) {
	query, params, err := s.FormatExpression(q, false)
	if err != nil {
		return nil, fmt.Errorf("format expression: %w", err)
	}

	execID := uuid.Must(uuid.NewV7()).String()
	start := time.Now()
	slog.Debug("executing query",
		"exec_id", execID,
		"sql", query,
		"params", params,
	)

	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		slog.Debug("query failed", "exec_id", execID, "error", err)
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer rows.Close()

	rs, err := rowset.FromRows(rows)
	if err != nil {
		return nil, fmt.Errorf("read results: %w", err)
	}

	slog.Debug("query executed",
		"exec_id", execID,
		"rows", rs.Len(),
		"duration", time.Since(start),
	)
	return rs, nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
