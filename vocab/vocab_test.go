package vocab

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	in := "Keyword,Definition,Example\n" +
		"abandon,to leave behind,They abandon the car.\n" +
		",orphan definition,ignored\n" +
		"\"brief, short\",lasting a short time,A brief visit.\n"

	entries, err := Parse(strings.NewReader(in), Columns{})
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Term != "abandon" || entries[0].Row != 1 {
		t.Errorf("entry 0 = %+v", entries[0])
	}
	// Row numbers keep counting across skipped rows.
	if entries[1].Term != "brief, short" || entries[1].Row != 3 {
		t.Errorf("entry 1 = %+v", entries[1])
	}
}

func TestParse_InvalidUTF8(t *testing.T) {
	in := "keyword,definition,example\ncaf\xe9,a place,I went to the caf\xe9\n"
	entries, err := Parse(strings.NewReader(in), Columns{})
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	e := entries[0]
	if e.Term != "caf\ufffd" || e.Example != "I went to the caf\ufffd" {
		t.Errorf("entry = %+v", e)
	}
}

func TestEntryText(t *testing.T) {
	e := Entry{Term: "abandon", Definition: "to leave behind", Example: "They abandon the car."}
	want := "abandon: to leave behind\nExample: They abandon the car."
	if got := e.Text(); got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}

	bare := Entry{Term: "hello"}
	if got := bare.Text(); got != "hello" {
		t.Errorf("Text() = %q, want hello", got)
	}
}

func TestParse_CustomColumnsAndBOM(t *testing.T) {
	csvIn := "\ufeffWord,Meaning\nzeal,great energy\n"
	entries, err := Parse(strings.NewReader(csvIn), Columns{Term: "word", Definition: "meaning"})
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Definition != "great energy" || entries[0].Example != "" {
		t.Fatalf("entries = %+v", entries)
	}
}

func TestParse_MissingTermColumn(t *testing.T) {
	_, err := Parse(strings.NewReader("a,b\n1,2\n"), Columns{})
	if !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn, got %v", err)
	}
}

func TestParse_Empty(t *testing.T) {
	entries, err := Parse(strings.NewReader(""), Columns{})
	if err != nil || entries != nil {
		t.Fatalf("empty input: entries=%v err=%v", entries, err)
	}
}

func TestRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocab.csv")
	os.WriteFile(path, []byte("keyword,definition,example\nrun,to move fast,I run daily.\n"), 0644)

	entries, err := Read(path, DefaultColumns())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Example != "I run daily." {
		t.Fatalf("entries = %+v", entries)
	}
}
