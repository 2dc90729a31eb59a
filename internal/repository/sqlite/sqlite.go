// Package sqlite implements the repository interfaces using SQLite as the storage backend.
//
// WHY SQLITE?
// SQLite is an embedded database: it lives inside the Go binary and keeps the
// whole graph in a single file. No separate server to run, and ":memory:"
// gives every test its own throwaway database.
//
// modernc.org/sqlite is a pure Go translation of the SQLite C code, so the
// binary still builds without a C compiler.
//
// SCHEMA:
//
//	users(id, user_str_id UNIQUE, display_name, created_at)
//	connections(user1_str_id, user2_str_id, created_at)
//	  PRIMARY KEY (user1_str_id, user2_str_id)
//	  CHECK (user1_str_id < user2_str_id)
//
// The CHECK constraint makes the database itself refuse a non-canonical or
// self edge, so {alice, bob} can only ever be stored one way.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	// Importing the driver registers "sqlite" with database/sql. The named
	// import also gives us its error type for constraint checks.
	moderncsqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/sakif/social-connections/internal/repository"
)

// compile-time check that *DB implements every repository contract
var _ repository.Store = (*DB)(nil)

// DB wraps a sql.DB connection pool and provides repository methods.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the database at dbPath and runs migrations.
//
// dbPath examples:
//   - "data/social.db"  → file-based database (persistent)
//   - ":memory:"        → in-memory database (tests, lost on close)
func New(dbPath string) (*DB, error) {
	// PRAGMAs run through Exec only reach one pooled connection. The DSN
	// form is applied by the driver to every connection it opens.
	dsn := dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Every new connection to ":memory:" is a brand new, empty database.
	// Pin the pool to one connection so all queries see the same data.
	if dbPath == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL mode lets readers proceed while a write is in flight.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are OFF by default in SQLite. Edges reference users, so
	// an edge to an unregistered user is rejected by the database too.
	var fk int
	if err := conn.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil || fk != 1 {
		conn.Close()
		return nil, fmt.Errorf("sqlite: foreign keys not enabled (err=%v)", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping verifies the database is still reachable.
func (db *DB) Ping(ctx context.Context) error {
	if err := db.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite: ping: %w", err)
	}
	return nil
}

// migrate creates the schema. CREATE ... IF NOT EXISTS makes it safe to run
// on every start against an existing file.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id           TEXT PRIMARY KEY,
			user_str_id  TEXT NOT NULL UNIQUE,
			display_name TEXT NOT NULL,
			created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	// The primary key index serves lookups by user1_str_id; the second
	// index serves the other half of a neighbor query.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS connections (
			user1_str_id TEXT NOT NULL REFERENCES users(user_str_id),
			user2_str_id TEXT NOT NULL REFERENCES users(user_str_id),
			created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (user1_str_id, user2_str_id),
			CHECK (user1_str_id < user2_str_id)
		);
		CREATE INDEX IF NOT EXISTS idx_connections_user2 ON connections(user2_str_id);
	`)
	if err != nil {
		return fmt.Errorf("creating connections table: %w", err)
	}

	return nil
}

// isUniqueViolation reports whether err is SQLite rejecting a duplicate key.
func isUniqueViolation(err error) bool {
	var sqliteErr *moderncsqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// placeholders returns "?, ?, ?" for n arguments.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
