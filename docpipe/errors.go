package docpipe

import "errors"

var (
	// ErrUnsupportedFormat is returned for extensions with no extractor.
	ErrUnsupportedFormat = errors.New("docpipe: unsupported format")

	// ErrNoText is returned when a document yields no extractable text at all.
	ErrNoText = errors.New("docpipe: no text content")

	// ErrTooLarge is returned for files above Config.MaxFileSize.
	ErrTooLarge = errors.New("docpipe: file too large")
)
