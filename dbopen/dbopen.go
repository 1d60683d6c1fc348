// Package dbopen opens the SQLite files written by the ingest tools. Pragmas
// are issued as plain statements after sql.Open, so the opener does not
// depend on driver-specific DSN parameters.
//
//	import _ "modernc.org/sqlite"
//	db, err := dbopen.Open("out/chunks.db", dbopen.WithMkdirAll(), dbopen.WithJournalMode("DELETE"))
//
// Tests use an in-memory database closed by t.Cleanup:
//
//	db := dbopen.OpenMemory(t, dbopen.WithSchema(ddl))
package dbopen

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Memory is the path of a private in-memory database.
const Memory = ":memory:"

type settings struct {
	driver      string
	journal     string
	synchronous string
	busyMS      int
	mkdir       bool
	ddl         []string
}

// Option adjusts how Open prepares the database.
type Option func(*settings)

// WithDriver selects the database/sql driver. Default: "sqlite".
func WithDriver(name string) Option { return func(s *settings) { s.driver = name } }

// WithJournalMode sets PRAGMA journal_mode. Default: "WAL". A file handed
// to another tool is easier to move around with "DELETE", which leaves no
// -wal and -shm companions behind.
func WithJournalMode(mode string) Option { return func(s *settings) { s.journal = mode } }

// WithSynchronous sets PRAGMA synchronous. Default: "NORMAL".
func WithSynchronous(mode string) Option { return func(s *settings) { s.synchronous = mode } }

// WithBusyTimeout sets PRAGMA busy_timeout in milliseconds. Default: 10000.
func WithBusyTimeout(ms int) Option { return func(s *settings) { s.busyMS = ms } }

// WithMkdirAll creates the parent directory of the database file.
func WithMkdirAll() Option { return func(s *settings) { s.mkdir = true } }

// WithSchema appends DDL run once the pragmas are in place.
func WithSchema(ddl string) Option { return func(s *settings) { s.ddl = append(s.ddl, ddl) } }

func (s *settings) pragmas() []string {
	return []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = " + s.journal,
		fmt.Sprintf("PRAGMA busy_timeout = %d", s.busyMS),
		"PRAGMA synchronous = " + s.synchronous,
	}
}

// Open opens or creates the database at path, applies the pragmas, runs the
// queued DDL and checks the connection. The driver must be registered by a
// blank import.
func Open(path string, opts ...Option) (*sql.DB, error) {
	s := settings{driver: "sqlite", journal: "WAL", synchronous: "NORMAL", busyMS: 10_000}
	for _, o := range opts {
		o(&s)
	}

	memory := path == Memory || strings.HasPrefix(path, "file::memory:")
	if s.mkdir && !memory {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("dbopen: create dir for %s: %w", path, err)
		}
	}

	db, err := sql.Open(s.driver, path)
	if err != nil {
		return nil, fmt.Errorf("dbopen: open %s: %w", path, err)
	}
	// Every new connection to an in-memory path is a fresh, empty database.
	if memory {
		db.SetMaxOpenConns(1)
	}

	fail := func(format string, args ...any) (*sql.DB, error) {
		db.Close()
		return nil, fmt.Errorf("dbopen: "+format, args...)
	}
	for _, p := range s.pragmas() {
		if _, err := db.Exec(p); err != nil {
			return fail("%s: %w", p, err)
		}
	}
	for i, ddl := range s.ddl {
		if _, err := db.Exec(ddl); err != nil {
			return fail("schema %d: %w", i, err)
		}
	}
	if err := db.Ping(); err != nil {
		return fail("ping %s: %w", path, err)
	}
	return db, nil
}

// OpenMemory opens a private in-memory database for a test.
func OpenMemory(t testing.TB, opts ...Option) *sql.DB {
	t.Helper()
	db, err := Open(Memory, opts...)
	if err != nil {
		t.Fatalf("dbopen.OpenMemory: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}
