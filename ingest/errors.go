package ingest

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSources is returned when none of the registry's locations exist.
	ErrNoSources = errors.New("ingest: no source location exists")

	// ErrPersistence wraps failures writing or reading the chunk output.
	ErrPersistence = errors.New("ingest: persistence failure")
)

// Kind classifies why a file or source was skipped.
type Kind string

const (
	KindUnsupportedFormat Kind = "unsupported_format"
	KindExtraction        Kind = "extraction_failure"
	KindMissingLocation   Kind = "missing_location"
)

// FileError records a skipped file or source location.
type FileError struct {
	Source string `json:"source"`
	Path   string `json:"path"`
	Kind   Kind   `json:"kind"`
	Err    error  `json:"-"`
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s %s (%s): %v", e.Source, e.Path, e.Kind, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }
