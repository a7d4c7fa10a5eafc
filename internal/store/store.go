package store

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"net/url"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is stamped into PRAGMA user_version of every trace database.
// Bump it whenever schema.sql changes shape.
const schemaVersion = 1

// ErrSchemaTooNew is returned by Open for a database written by a newer
// build whose layout this one cannot read.
var ErrSchemaTooNew = errors.New("trace database schema is newer than this build")

// connParams are passed to the driver in the DSN so every connection the
// pool opens gets them, not only the first.
var connParams = url.Values{
	"_journal_mode": {"WAL"},
	"_synchronous":  {"NORMAL"},
	"_busy_timeout": {"5000"},
	"_foreign_keys": {"on"},
}

// Store is an append-only log of runs and their trace records.
type Store struct {
	db *sql.DB
}

// Open opens the trace database at path, creating it and its tables when
// missing. Reopening an existing database is safe.
func Open(path string) (*Store, error) {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	db, err := sql.Open("sqlite3", path+sep+connParams.Encode())
	if err != nil {
		return nil, fmt.Errorf("failed to open trace database %s: %w", path, err)
	}
	// One writer at a time; a single pooled connection also keeps an
	// in-memory database alive for the store's lifetime.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := prepare(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare trace database %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// prepare creates the tables and indexes and stamps or checks the schema
// version.
func prepare(db *sql.DB) error {
	if err := db.Ping(); err != nil {
		return err
	}

	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version > schemaVersion {
		return fmt.Errorf("%w (found %d, want %d)", ErrSchemaTooNew, version, schemaVersion)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if version < schemaVersion {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
			return fmt.Errorf("stamp schema version: %w", err)
		}
	}
	return nil
}

// Close releases the database. A zero Store closes cleanly.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB exposes the connection for ad hoc queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// pragma reads a single pragma value as text.
func (s *Store) pragma(name string) (string, error) {
	var value string
	if err := s.db.QueryRow("PRAGMA " + name).Scan(&value); err != nil {
		return "", fmt.Errorf("read pragma %s: %w", name, err)
	}
	return value, nil
}
