package dbopen_test

import (
	"os"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/Capstone-project-Engventure/EngAgent/dbopen"
)

func TestOpenMemory_Defaults(t *testing.T) {
	db := dbopen.OpenMemory(t)

	var fk, busy int
	if err := db.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatal(err)
	}
	if err := db.QueryRow("PRAGMA busy_timeout").Scan(&busy); err != nil {
		t.Fatal(err)
	}
	if fk != 1 {
		t.Errorf("foreign_keys = %d, want 1", fk)
	}
	if busy != 10_000 {
		t.Errorf("busy_timeout = %d, want 10000", busy)
	}
	if n := db.Stats().MaxOpenConnections; n != 1 {
		t.Errorf("MaxOpenConnections = %d, want 1", n)
	}
}

func TestOpen_FileJournalModes(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		opts []dbopen.Option
		want string
	}{
		{nil, "wal"},
		{[]dbopen.Option{dbopen.WithJournalMode("DELETE")}, "delete"},
	}
	for i, tt := range tests {
		path := filepath.Join(dir, "db", string(rune('a'+i))+".db")
		db, err := dbopen.Open(path, append(tt.opts, dbopen.WithMkdirAll())...)
		if err != nil {
			t.Fatal(err)
		}
		var mode string
		if err := db.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
			t.Fatal(err)
		}
		db.Close()
		if mode != tt.want {
			t.Errorf("journal_mode = %q, want %q", mode, tt.want)
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("database file not created: %v", err)
		}
	}
}

func TestWithBusyTimeoutAndSynchronous(t *testing.T) {
	db := dbopen.OpenMemory(t, dbopen.WithBusyTimeout(2500), dbopen.WithSynchronous("FULL"))

	var busy, sync int
	if err := db.QueryRow("PRAGMA busy_timeout").Scan(&busy); err != nil {
		t.Fatal(err)
	}
	if err := db.QueryRow("PRAGMA synchronous").Scan(&sync); err != nil {
		t.Fatal(err)
	}
	if busy != 2500 {
		t.Errorf("busy_timeout = %d, want 2500", busy)
	}
	if sync != 2 { // FULL
		t.Errorf("synchronous = %d, want 2", sync)
	}
}

func TestWithSchema(t *testing.T) {
	db := dbopen.OpenMemory(t,
		dbopen.WithSchema(`CREATE TABLE runs (id TEXT PRIMARY KEY)`),
		dbopen.WithSchema(`CREATE TABLE skips (run_id TEXT NOT NULL REFERENCES runs(id))`),
	)

	if _, err := db.Exec(`INSERT INTO runs (id) VALUES ('r1')`); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`INSERT INTO skips (run_id) VALUES ('r1')`); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`INSERT INTO skips (run_id) VALUES ('missing')`); err == nil {
		t.Error("foreign key should reject unknown run")
	}
}

func TestOpen_Errors(t *testing.T) {
	if _, err := dbopen.Open(dbopen.Memory, dbopen.WithSchema("NOT SQL")); err == nil {
		t.Error("expected error for invalid schema")
	}
	if _, err := dbopen.Open(dbopen.Memory, dbopen.WithDriver("no-such-driver")); err == nil {
		t.Error("expected error for unknown driver")
	}
}
