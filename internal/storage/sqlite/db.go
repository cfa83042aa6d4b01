// ABOUTME: SQLite database connection and lifecycle management
// ABOUTME: Uses modernc.org/sqlite (pure Go) and tracks the schema version with PRAGMA user_version
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const memoryPath = ":memory:"

// DB is the newsclip database. Query methods come from the embedded *sql.DB.
type DB struct {
	*sql.DB
	path string
}

// Open opens or creates the database file at path, creating its directory.
// WAL mode lets the HTTP server read while an analysis is being written.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return open(path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
}

// OpenInMemory opens a private in-memory database, used by tests
func OpenInMemory() (*DB, error) {
	return open(memoryPath, memoryPath)
}

func open(dsn, path string) (*DB, error) {
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	if path == memoryPath {
		// each pooled connection would otherwise see its own empty database
		conn.SetMaxOpenConns(1)
	}

	db := &DB{DB: conn, path: path}
	if err := db.migrate(); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return db, nil
}

// migrate applies the schema to a fresh database. A database written by a
// newer build is refused rather than silently misread.
func (db *DB) migrate() error {
	var version int
	if err := db.QueryRow(`PRAGMA user_version`).Scan(&version); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	switch {
	case version == SchemaVersion:
		return nil
	case version > SchemaVersion:
		return fmt.Errorf("database %s has schema version %d, this build supports %d", db.path, version, SchemaVersion)
	}

	if _, err := db.Exec(Schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf(`PRAGMA user_version = %d`, SchemaVersion)); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}
	return nil
}

// Path returns the database file path, or ":memory:"
func (db *DB) Path() string {
	return db.path
}
