// Package normalize strips boilerplate from extracted document text before
// it is chunked: running headers and footers, page numbers, and inline
// advertisement markers left behind by publishers.
package normalize

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Options configures Clean.
type Options struct {
	// MinLineWords is the minimum word count a line needs to survive.
	// Default: 3.
	MinLineWords int `yaml:"min_line_words" json:"min_line_words"`
	// Markers are literal strings removed wherever they appear.
	// Default: ["ADVERTISEMENT"].
	Markers []string `yaml:"markers" json:"markers"`
}

func (o *Options) defaults() {
	if o.MinLineWords <= 0 {
		o.MinLineWords = 3
	}
	if o.Markers == nil {
		o.Markers = []string{"ADVERTISEMENT"}
	}
}

// Clean returns text with markers removed and every line shorter than
// MinLineWords words dropped. Surviving lines are trimmed and keep their
// original order, joined by "\n".
func Clean(text string, opts Options) string {
	opts.defaults()

	text = norm.NFC.String(text)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var kept []string
	for _, line := range strings.Split(text, "\n") {
		for _, m := range opts.Markers {
			if m != "" {
				line = strings.ReplaceAll(line, m, "")
			}
		}
		line = strings.TrimSpace(line)
		if len(strings.Fields(line)) < opts.MinLineWords {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}
