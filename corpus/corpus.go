// Package corpus defines the chunk record shared by the extractors, the
// ingest orchestrator and the persistence layer.
//
// A Chunk serializes to the JSON object consumed by the vector indexing
// service. Grammar exercises embed an *Exercise whose fields are flattened
// into the same object; plain chunks leave it nil and the exercise keys are
// omitted entirely.
package corpus

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Content-type tags used by the built-in source registry.
const (
	TypeGrammar    = "grammar"
	TypeVocabulary = "vocabulary"
	TypeReading    = "reading"
	TypeListening  = "listening"
	TypeWriting    = "writing"
	TypeSpeaking   = "speaking"
)

// Chunk is one retrieval-ready text fragment with provenance metadata.
type Chunk struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	URL       string    `json:"url"`
	CrawlDate time.Time `json:"crawl_date"`
	Type      string    `json:"type"`
	Text      string    `json:"text"`

	*Exercise
}

// Exercise holds the structured fields of a multiple-choice grammar record.
// Level and Answer serialize as null when unknown.
type Exercise struct {
	Name     string  `json:"name"`
	Level    *string `json:"level"`
	Question string  `json:"question"`
	Options  Options `json:"options"`
	Answer   *string `json:"answer"`
}

// Options are the four labeled answer choices of an exercise.
type Options struct {
	A string `json:"A"`
	B string `json:"B"`
	C string `json:"C"`
	D string `json:"D"`
}

// Letters are the option labels in display order.
var Letters = [4]string{"A", "B", "C", "D"}

// At returns the option text at index i (A=0 ... D=3).
func (o Options) At(i int) (string, bool) {
	switch i {
	case 0:
		return o.A, true
	case 1:
		return o.B, true
	case 2:
		return o.C, true
	case 3:
		return o.D, true
	}
	return "", false
}

// Values returns the options in A..D order.
func (o Options) Values() [4]string {
	return [4]string{o.A, o.B, o.C, o.D}
}

// IsExercise reports whether c carries structured exercise fields.
func (c Chunk) IsExercise() bool { return c.Exercise != nil }

// FileURL builds the file:// locator of path relative to the data root.
func FileURL(root, path string) string {
	return "file://" + relSlash(root, path)
}

// RowURL builds the csv:// locator of a data row (1-based) in a tabular file.
func RowURL(root, path string, row int) string {
	return "csv://" + relSlash(root, path) + "#row=" + strconv.Itoa(row)
}

func relSlash(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = path
	}
	return filepath.ToSlash(rel)
}

// Validate checks the record invariants shared by every chunk.
func (c Chunk) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("chunk: empty id")
	}
	if strings.TrimSpace(c.Text) == "" {
		return fmt.Errorf("chunk %s: empty text", c.ID)
	}
	if c.Exercise != nil && c.Answer != nil {
		for _, v := range c.Options.Values() {
			if v == *c.Answer {
				return nil
			}
		}
		return fmt.Errorf("chunk %s: answer %q is not one of the options", c.ID, *c.Answer)
	}
	return nil
}
