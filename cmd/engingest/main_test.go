package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Capstone-project-Engventure/EngAgent/chunkstore"
	"github.com/Capstone-project-Engventure/EngAgent/corpus"
)

func TestResolveConfig_Overrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ingest.yaml")
	os.WriteFile(path, []byte("data_dir: /from/file\nworkers: 2\n"), 0o644)

	cfg, err := resolveConfig(options{
		configPath: path,
		output:     "/tmp/out.json",
		dbPath:     "/tmp/out.db",
		workers:    8,
	})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DataDir != "/from/file" {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if cfg.Workers != 8 || cfg.Output != "/tmp/out.json" || cfg.SQLitePath != "/tmp/out.db" {
		t.Errorf("flags should override file values: %+v", cfg)
	}

	cfg, err = resolveConfig(options{dataDir: dir})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.OutputPath() != filepath.Join(dir, "chunks.json") {
		t.Errorf("OutputPath = %q", cfg.OutputPath())
	}
}

func TestResolveConfig_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ingest.yaml")
	os.WriteFile(path, []byte("chunk:\n  overlap: 1.5\n"), 0o644)
	if _, err := resolveConfig(options{configPath: path}); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestInspect(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chunks.json")
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	chunks := []corpus.Chunk{
		{ID: "1", Source: "vocab_csv", URL: "csv://vocabs/vocab.csv#row=1", CrawlDate: now, Type: corpus.TypeVocabulary, Text: "cat: animal"},
		{ID: "2", Source: "vocab_csv", URL: "csv://vocabs/vocab.csv#row=2", CrawlDate: now, Type: corpus.TypeVocabulary, Text: "dog: animal"},
	}
	if err := chunkstore.Save(path, chunks); err != nil {
		t.Fatal(err)
	}
	if err := inspect(path); err != nil {
		t.Fatal(err)
	}
	if err := inspect(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestSummarize(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	id := "0191e6a2-7c3b-4d2e-9f10-2a3b4c5d6e7f"
	chunks := []corpus.Chunk{
		{ID: id, Source: "grammar", URL: "file://grammar/a.docx", CrawlDate: now, Type: corpus.TypeGrammar,
			Exercise: &corpus.Exercise{Name: "a", Question: "q"}},
		{ID: id, Source: "vocab_csv", URL: "csv://vocabs/vocab.csv#row=1", CrawlDate: now, Type: corpus.TypeVocabulary},
		{ID: "chunk-3", Source: "vocab_csv", URL: "csv://vocabs/vocab.csv#row=2", CrawlDate: now, Type: corpus.TypeVocabulary},
	}

	s := summarize(chunks)
	if s.Chunks != 3 || s.Exercises != 1 || s.Unanswered != 1 {
		t.Errorf("counts = %+v", s)
	}
	if s.BadIDs != 1 {
		t.Errorf("BadIDs = %d, want 1", s.BadIDs)
	}
	if s.DuplicateIDs != 1 {
		t.Errorf("DuplicateIDs = %d, want 1", s.DuplicateIDs)
	}
	if len(s.Files) != 2 || s.Files[0] != "csv://vocabs/vocab.csv" || s.Files[1] != "file://grammar/a.docx" {
		t.Errorf("Files = %v", s.Files)
	}
	if s.BySource["vocab_csv"] != 2 {
		t.Errorf("BySource = %v", s.BySource)
	}
}
