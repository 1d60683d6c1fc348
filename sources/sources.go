// Package sources holds the registry of ingest sources: where each corpus
// lives under the data root, which files it accepts and which content-type
// tag its chunks carry.
//
// A Registry is built once and never mutated; it is passed to the ingest
// pipeline explicitly on every run.
package sources

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Capstone-project-Engventure/EngAgent/corpus"
)

// Source describes one corpus location.
type Source struct {
	Name string `yaml:"name" json:"name"`
	// Path is relative to the data root unless absolute.
	Path string `yaml:"path" json:"path"`
	// Exts filters the files of a directory source (".pdf", ".docx").
	// An empty list means Path names a single file.
	Exts []string `yaml:"exts,omitempty" json:"exts,omitempty"`
	Type string   `yaml:"type" json:"type"`
}

// SingleFile reports whether the source points at one file rather than a directory.
func (s Source) SingleFile() bool { return len(s.Exts) == 0 }

// Accepts reports whether a file name matches the source's extension filter.
func (s Source) Accepts(name string) bool {
	if s.SingleFile() {
		return true
	}
	lower := strings.ToLower(name)
	for _, ext := range s.Exts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// Registry is an immutable, ordered set of sources.
type Registry struct {
	list   []Source
	byName map[string]int
}

// New validates list and builds a Registry. Extensions are lower-cased and
// given a leading dot. Names must be unique.
func New(list []Source) (*Registry, error) {
	r := &Registry{
		list:   make([]Source, 0, len(list)),
		byName: make(map[string]int, len(list)),
	}
	for i, s := range list {
		if s.Name == "" {
			return nil, fmt.Errorf("source[%d]: name is required", i)
		}
		if s.Path == "" {
			return nil, fmt.Errorf("source %q: path is required", s.Name)
		}
		if s.Type == "" {
			return nil, fmt.Errorf("source %q: type is required", s.Name)
		}
		if _, dup := r.byName[s.Name]; dup {
			return nil, fmt.Errorf("source %q: duplicate name", s.Name)
		}

		exts := make([]string, 0, len(s.Exts))
		for _, e := range s.Exts {
			e = strings.ToLower(strings.TrimSpace(e))
			if e == "" {
				continue
			}
			if !strings.HasPrefix(e, ".") {
				e = "." + e
			}
			exts = append(exts, e)
		}
		s.Exts = exts

		r.byName[s.Name] = len(r.list)
		r.list = append(r.list, s)
	}
	return r, nil
}

// Default returns the built-in registry of the English learning corpus.
func Default() *Registry {
	r, err := New(DefaultSources())
	if err != nil {
		panic("sources: invalid default registry: " + err.Error())
	}
	return r
}

// DefaultSources lists the built-in sources, relative to the data root.
func DefaultSources() []Source {
	return []Source{
		{Name: "grammar", Path: "bank_exercises/grammar", Exts: []string{".pdf", ".docx"}, Type: corpus.TypeGrammar},
		{Name: "vocab_csv", Path: "vocabs/vocab.csv", Type: corpus.TypeVocabulary},
		{Name: "reading_slides", Path: "Reading_Comprehension_Slides", Exts: []string{".pptx"}, Type: corpus.TypeReading},
		{Name: "listening_transcripts", Path: "listening/Listening_Transcripts", Exts: []string{".txt"}, Type: corpus.TypeListening},
		{Name: "writing_exams", Path: "exam_bank", Exts: []string{".pdf", ".docx"}, Type: corpus.TypeWriting},
		{Name: "speaking_scripts", Path: "Speaking_Scripts.md", Type: corpus.TypeSpeaking},
	}
}

// All returns a copy of the sources in registration order.
func (r *Registry) All() []Source {
	out := make([]Source, len(r.list))
	for i, s := range r.list {
		s.Exts = slices.Clone(s.Exts)
		out[i] = s
	}
	return out
}

// Lookup returns the source registered under name.
func (r *Registry) Lookup(name string) (Source, bool) {
	i, ok := r.byName[name]
	if !ok {
		return Source{}, false
	}
	s := r.list[i]
	s.Exts = slices.Clone(s.Exts)
	return s, true
}

// Len returns the number of sources.
func (r *Registry) Len() int { return len(r.list) }
