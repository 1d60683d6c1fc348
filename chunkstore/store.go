package chunkstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Capstone-project-Engventure/EngAgent/corpus"
	"github.com/Capstone-project-Engventure/EngAgent/dbopen"
)

// Schema is the DDL of the export database.
const Schema = `
CREATE TABLE IF NOT EXISTS chunks (
    id          TEXT PRIMARY KEY,
    source      TEXT NOT NULL,
    url         TEXT NOT NULL,
    crawl_date  TEXT NOT NULL,
    type        TEXT NOT NULL,
    text        TEXT NOT NULL,
    exercise    INTEGER NOT NULL DEFAULT 0,
    name        TEXT,
    level       TEXT,
    question    TEXT,
    option_a    TEXT,
    option_b    TEXT,
    option_c    TEXT,
    option_d    TEXT,
    answer      TEXT
);

CREATE TABLE IF NOT EXISTS skipped_files (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id      TEXT NOT NULL,
    source      TEXT NOT NULL,
    path        TEXT NOT NULL,
    kind        TEXT NOT NULL,
    reason      TEXT,
    skipped_at  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_chunks_type   ON chunks(type);
CREATE INDEX IF NOT EXISTS idx_chunks_source ON chunks(source);
CREATE INDEX IF NOT EXISTS idx_skipped_run   ON skipped_files(run_id);
`

// Store wraps the SQLite export database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the export database at path. The file uses the
// rollback journal so it can be copied as a single file after Close.
func Open(path string) (*Store, error) {
	db, err := dbopen.Open(path,
		dbopen.WithMkdirAll(),
		dbopen.WithJournalMode("DELETE"),
		dbopen.WithSchema(Schema))
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// NewStore wraps an already opened database, applying Schema.
func NewStore(db *sql.DB) (*Store, error) {
	if _, err := db.Exec(Schema); err != nil {
		return nil, fmt.Errorf("chunkstore: schema: %w", err)
	}
	return &Store{db: db}, nil
}

// DB returns the underlying *sql.DB.
func (s *Store) DB() *sql.DB { return s.db }

// Close closes the underlying database connection.
func (s *Store) Close() error { return s.db.Close() }

// --- Chunks ---

// InsertChunks upserts chunks in one transaction. Re-inserting an id keeps
// its original position in ListChunks order.
func (s *Store) InsertChunks(ctx context.Context, chunks []corpus.Chunk) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, source, url, crawl_date, type, text, exercise,
		                    name, level, question, option_a, option_b, option_c, option_d, answer)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		    source = excluded.source, url = excluded.url, crawl_date = excluded.crawl_date,
		    type = excluded.type, text = excluded.text, exercise = excluded.exercise,
		    name = excluded.name, level = excluded.level, question = excluded.question,
		    option_a = excluded.option_a, option_b = excluded.option_b,
		    option_c = excluded.option_c, option_d = excluded.option_d,
		    answer = excluded.answer`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, c := range chunks {
		var (
			exercise               int
			name, question         sql.NullString
			level, answer          sql.NullString
			optA, optB, optC, optD sql.NullString
		)
		if ex := c.Exercise; ex != nil {
			exercise = 1
			name = sql.NullString{String: ex.Name, Valid: true}
			question = sql.NullString{String: ex.Question, Valid: true}
			level = nullString(ex.Level)
			answer = nullString(ex.Answer)
			optA = sql.NullString{String: ex.Options.A, Valid: true}
			optB = sql.NullString{String: ex.Options.B, Valid: true}
			optC = sql.NullString{String: ex.Options.C, Valid: true}
			optD = sql.NullString{String: ex.Options.D, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx,
			c.ID, c.Source, c.URL, c.CrawlDate.Format(time.RFC3339Nano), c.Type, c.Text, exercise,
			name, level, question, optA, optB, optC, optD, answer,
		); err != nil {
			return fmt.Errorf("insert chunk %s: %w", c.ID, err)
		}
	}
	return tx.Commit()
}

// ListChunks returns stored chunks in insertion order. An empty typ returns
// every type.
func (s *Store) ListChunks(ctx context.Context, typ string) ([]corpus.Chunk, error) {
	query := `SELECT id, source, url, crawl_date, type, text, exercise,
	                 name, level, question, option_a, option_b, option_c, option_d, answer
	          FROM chunks`
	var args []any
	if typ != "" {
		query += ` WHERE type = ?`
		args = append(args, typ)
	}
	query += ` ORDER BY rowid`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []corpus.Chunk
	for rows.Next() {
		var (
			c                      corpus.Chunk
			crawled                string
			exercise               int
			name, question         sql.NullString
			level, answer          sql.NullString
			optA, optB, optC, optD sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.Source, &c.URL, &crawled, &c.Type, &c.Text, &exercise,
			&name, &level, &question, &optA, &optB, &optC, &optD, &answer); err != nil {
			return nil, err
		}
		if c.CrawlDate, err = time.Parse(time.RFC3339Nano, crawled); err != nil {
			return nil, fmt.Errorf("chunk %s: crawl_date: %w", c.ID, err)
		}
		if exercise == 1 {
			c.Exercise = &corpus.Exercise{
				Name:     name.String,
				Level:    stringPtr(level),
				Question: question.String,
				Options:  corpus.Options{A: optA.String, B: optB.String, C: optC.String, D: optD.String},
				Answer:   stringPtr(answer),
			}
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Stats returns the number of stored chunks per content type.
func (s *Store) Stats(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT type, COUNT(*) FROM chunks GROUP BY type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var typ string
		var n int
		if err := rows.Scan(&typ, &n); err != nil {
			return nil, err
		}
		out[typ] = n
	}
	return out, rows.Err()
}

// --- Skip log ---

// Skip is one skipped file or source location of a run.
type Skip struct {
	RunID     string    `json:"run_id"`
	Source    string    `json:"source"`
	Path      string    `json:"path"`
	Kind      string    `json:"kind"`
	Reason    string    `json:"reason,omitempty"`
	SkippedAt time.Time `json:"skipped_at"`
}

// RecordSkips appends skip log rows.
func (s *Store) RecordSkips(ctx context.Context, skips []Skip) error {
	if len(skips) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, sk := range skips {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO skipped_files (run_id, source, path, kind, reason, skipped_at) VALUES (?, ?, ?, ?, ?, ?)`,
			sk.RunID, sk.Source, sk.Path, sk.Kind, sk.Reason, sk.SkippedAt.UTC().Format(time.RFC3339Nano),
		); err != nil {
			return fmt.Errorf("insert skip %s: %w", sk.Path, err)
		}
	}
	return tx.Commit()
}

// ListSkips returns the skip log of a run, or of every run when runID is empty.
func (s *Store) ListSkips(ctx context.Context, runID string) ([]Skip, error) {
	query := `SELECT run_id, source, path, kind, COALESCE(reason, ''), skipped_at FROM skipped_files`
	var args []any
	if runID != "" {
		query += ` WHERE run_id = ?`
		args = append(args, runID)
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Skip
	for rows.Next() {
		var sk Skip
		var at string
		if err := rows.Scan(&sk.RunID, &sk.Source, &sk.Path, &sk.Kind, &sk.Reason, &at); err != nil {
			return nil, err
		}
		if sk.SkippedAt, err = time.Parse(time.RFC3339Nano, at); err != nil {
			return nil, fmt.Errorf("skip %s: skipped_at: %w", sk.Path, err)
		}
		out = append(out, sk)
	}
	return out, rows.Err()
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}
