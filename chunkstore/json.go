// Package chunkstore persists chunk sequences: a JSON array file consumed
// by the vector indexer, and an optional SQLite export that also keeps the
// skip log of each run.
package chunkstore

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Capstone-project-Engventure/EngAgent/corpus"
)

// ErrEmptyPath is returned when Save or Load is given an empty path.
var ErrEmptyPath = errors.New("chunkstore: empty path")

// Save writes chunks as an indented JSON array, creating parent directories.
// Non-ASCII text is written verbatim. The file is replaced atomically.
func Save(path string, chunks []corpus.Chunk) error {
	if path == "" {
		return ErrEmptyPath
	}
	if chunks == nil {
		chunks = []corpus.Chunk{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(chunks); err != nil {
		return fmt.Errorf("encode chunks: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}

// Load reads a chunk array written by Save.
func Load(path string) ([]corpus.Chunk, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var chunks []corpus.Chunk
	if err := json.Unmarshal(data, &chunks); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return chunks, nil
}
