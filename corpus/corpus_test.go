package corpus

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestFileURL(t *testing.T) {
	root := filepath.Join("data")
	path := filepath.Join("data", "bank_exercises", "grammar", "A1-A2 tenses.pdf")

	got := FileURL(root, path)
	want := "file://bank_exercises/grammar/A1-A2 tenses.pdf"
	if got != want {
		t.Errorf("FileURL = %q, want %q", got, want)
	}
}

func TestRowURL(t *testing.T) {
	got := RowURL("data", filepath.Join("data", "vocabs", "vocab.csv"), 7)
	want := "csv://vocabs/vocab.csv#row=7"
	if got != want {
		t.Errorf("RowURL = %q, want %q", got, want)
	}
}

func TestChunkJSON_PlainOmitsExerciseKeys(t *testing.T) {
	c := Chunk{
		ID:        "c1",
		Source:    "listening_transcripts",
		URL:       "file://listening/a.txt",
		CrawlDate: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
		Type:      TypeListening,
		Text:      "some words here",
	}
	data, err := json.Marshal(c)
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	for _, key := range []string{`"name"`, `"level"`, `"options"`, `"answer"`} {
		if strings.Contains(s, key) {
			t.Errorf("plain chunk JSON should not contain %s: %s", key, s)
		}
	}
	if !strings.Contains(s, `"crawl_date":"2026-03-01T09:30:00Z"`) {
		t.Errorf("crawl_date not RFC 3339: %s", s)
	}
}

func TestChunkJSON_ExerciseNullables(t *testing.T) {
	c := Chunk{
		ID:   "g1",
		Type: TypeGrammar,
		Text: "1. Q",
		Exercise: &Exercise{
			Name:     "unit1",
			Question: "Q",
			Options:  Options{A: "a", B: "b", C: "c", D: "d"},
		},
	}
	data, err := json.Marshal(c)
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	if !strings.Contains(s, `"level":null`) || !strings.Contains(s, `"answer":null`) {
		t.Errorf("expected null level and answer: %s", s)
	}
	if !strings.Contains(s, `"options":{"A":"a","B":"b","C":"c","D":"d"}`) {
		t.Errorf("options not keyed A-D: %s", s)
	}

	var back Chunk
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if back.Exercise == nil || back.Name != "unit1" || back.Options.C != "c" {
		t.Fatalf("exercise fields lost on decode: %+v", back)
	}
}

func TestValidate(t *testing.T) {
	answer := "b"
	bad := "z"
	tests := []struct {
		name    string
		chunk   Chunk
		wantErr bool
	}{
		{"ok", Chunk{ID: "1", Text: "hello"}, false},
		{"no id", Chunk{Text: "hello"}, true},
		{"blank text", Chunk{ID: "1", Text: "  "}, true},
		{"valid answer", Chunk{ID: "1", Text: "x", Exercise: &Exercise{Options: Options{A: "a", B: "b"}, Answer: &answer}}, false},
		{"answer outside options", Chunk{ID: "1", Text: "x", Exercise: &Exercise{Options: Options{A: "a"}, Answer: &bad}}, true},
	}
	for _, tt := range tests {
		err := tt.chunk.Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: Validate() error = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}
}

func TestOptionsAt(t *testing.T) {
	o := Options{A: "a", B: "b", C: "c", D: "d"}
	for i, want := range []string{"a", "b", "c", "d"} {
		got, ok := o.At(i)
		if !ok || got != want {
			t.Errorf("At(%d) = %q, %v; want %q", i, got, ok, want)
		}
	}
	if _, ok := o.At(4); ok {
		t.Error("At(4): expected ok=false")
	}
}
