// Package sqlite implements the repository interfaces on SQLite via the pure
// Go driver modernc.org/sqlite (no CGo, cross-compiles everywhere Go does).
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	// Registers the "sqlite" driver with database/sql.
	sqlite3 "modernc.org/sqlite"
	sqlitelib "modernc.org/sqlite/lib"
)

// DB wraps the sql.DB pool and carries the repository methods.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the database at path and prepares the schema.
// Use ":memory:" for throwaway test databases.
func New(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Each pooled connection to ":memory:" would get its own empty database;
	// pin the pool to one connection so tests see a single schema.
	if path == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL allows concurrent readers while a write is in flight — required for
	// a server where many request goroutines share the pool.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: preparing schema: %w", err)
	}

	return db, nil
}

// Close closes the connection pool. Always deferred next to New.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps this safe to
// run on every start.
//
// accounts.upstream_id is UNIQUE: one local account per upstream identity.
// This constraint, not application logic, is what ultimately guarantees that
// two concurrent first logins cannot both insert.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS accounts (
			id           TEXT PRIMARY KEY,
			username     TEXT NOT NULL,
			display_name TEXT NOT NULL,
			avatar_url   TEXT NOT NULL DEFAULT '',
			upstream_id  TEXT NOT NULL UNIQUE
		);
	`)
	if err != nil {
		return fmt.Errorf("creating accounts table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS codes (
			id           TEXT PRIMARY KEY,
			owner_id     TEXT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
			content      TEXT NOT NULL,
			display_name TEXT NOT NULL,
			icon_url     TEXT,
			website_url  TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_codes_owner_id ON codes(owner_id);
	`)
	if err != nil {
		return fmt.Errorf("creating codes table: %w", err)
	}

	return nil
}

// isUniqueViolation reports whether err is SQLite's UNIQUE constraint error.
// The driver exposes the extended result code on its Error type.
func isUniqueViolation(err error) bool {
	var serr *sqlite3.Error
	return errors.As(err, &serr) && serr.Code() == sqlitelib.SQLITE_CONSTRAINT_UNIQUE
}
