// Package vocab reads vocabulary tables: delimited files with one headword
// per row, its definition and an example sentence.
package vocab

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Columns names the header cells holding each field. Matching ignores case
// and surrounding whitespace.
type Columns struct {
	Term       string `yaml:"term_column" json:"term_column"`
	Definition string `yaml:"definition_column" json:"definition_column"`
	Example    string `yaml:"example_column" json:"example_column"`
}

// DefaultColumns returns the header names of the bundled vocabulary sheet.
func DefaultColumns() Columns {
	return Columns{Term: "keyword", Definition: "definition", Example: "example"}
}

func (c *Columns) defaults() {
	d := DefaultColumns()
	if c.Term == "" {
		c.Term = d.Term
	}
	if c.Definition == "" {
		c.Definition = d.Definition
	}
	if c.Example == "" {
		c.Example = d.Example
	}
}

// ErrMissingColumn is returned when the header lacks the term column.
var ErrMissingColumn = errors.New("vocab: missing column")

// Entry is one vocabulary row.
type Entry struct {
	Row        int // 1-based data row, header excluded
	Term       string
	Definition string
	Example    string
}

// Text renders the entry as a retrieval chunk body.
func (e Entry) Text() string {
	var sb strings.Builder
	sb.WriteString(e.Term)
	if e.Definition != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Definition)
	}
	if e.Example != "" {
		sb.WriteString("\nExample: ")
		sb.WriteString(e.Example)
	}
	return sb.String()
}

// Read parses the vocabulary file at path. Rows with an empty term are
// skipped; definition and example columns are optional.
func Read(path string, cols Columns) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f, cols)
}

// Parse reads vocabulary rows from r.
func Parse(r io.Reader, cols Columns) ([]Entry, error) {
	cols.defaults()

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("vocab: read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, seen := index[h]; !seen {
			index[h] = i
		}
	}
	col := func(name string) int {
		if i, ok := index[strings.ToLower(strings.TrimSpace(name))]; ok {
			return i
		}
		return -1
	}
	termIdx, defIdx, exIdx := col(cols.Term), col(cols.Definition), col(cols.Example)
	if termIdx < 0 {
		return nil, fmt.Errorf("%w %q in header %v", ErrMissingColumn, cols.Term, header)
	}

	var entries []Entry
	for row := 1; ; row++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("vocab: row %d: %w", row, err)
		}
		e := Entry{
			Row:        row,
			Term:       cell(rec, termIdx),
			Definition: cell(rec, defIdx),
			Example:    cell(rec, exIdx),
		}
		if e.Term == "" {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// cell returns field i trimmed. Bytes that are not UTF-8, as left by a
// sheet exported as Latin-1, become U+FFFD.
func cell(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(strings.ToValidUTF8(rec[i], "\ufffd"))
}
