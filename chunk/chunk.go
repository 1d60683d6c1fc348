// Package chunk splits normalized text into overlapping fixed-size word
// windows for retrieval indexing.
//
// Windows start at offsets 0, step, 2*step, ... where
// step = floor(MaxWords * (1 - Overlap)). Every window holds up to MaxWords
// words; windows shorter than MinWords (the trailing partial ones) are
// dropped, never padded or merged. Identical input always yields the same
// sequence.
package chunk

import (
	"math"
	"strings"
)

// Options configures the window size and overlap.
type Options struct {
	// MinWords is the minimum word count of an emitted window. Default: 100.
	MinWords int `yaml:"min_words" json:"min_words"`
	// MaxWords is the window size in words. Default: 300.
	MaxWords int `yaml:"max_words" json:"max_words"`
	// Overlap is the fraction of a window reused by the next, in [0, 1).
	// Default: 0.2.
	Overlap float64 `yaml:"overlap" json:"overlap"`
}

// DefaultOptions returns the corpus defaults: 100..300 words, 20% overlap.
func DefaultOptions() Options {
	return Options{MinWords: 100, MaxWords: 300, Overlap: 0.2}
}

func (o *Options) defaults() {
	if o.MaxWords <= 0 {
		o.MaxWords = 300
	}
	if o.MinWords < 0 {
		o.MinWords = 0
	}
	if o.Overlap < 0 || o.Overlap >= 1 {
		o.Overlap = 0.2
	}
}

// Step returns the distance in words between consecutive window starts.
// It is never less than 1.
func (o Options) Step() int {
	o.defaults()
	step := int(math.Floor(float64(o.MaxWords) * (1 - o.Overlap)))
	if step < 1 {
		step = 1
	}
	return step
}

// Window is one emitted chunk of words.
type Window struct {
	Index int    // 0-based position among emitted windows
	Start int    // offset of the first word in the source word sequence
	Words int    // word count
	Text  string // words joined by single spaces
}

// Split divides text into overlapping word windows.
func Split(text string, opts Options) []Window {
	opts.defaults()

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	step := opts.Step()
	var windows []Window
	for start := 0; start < len(words); start += step {
		end := min(start+opts.MaxWords, len(words))
		if end-start < opts.MinWords {
			continue
		}
		windows = append(windows, Window{
			Index: len(windows),
			Start: start,
			Words: end - start,
			Text:  strings.Join(words[start:end], " "),
		})
	}
	return windows
}

// CountWords returns the whitespace-separated word count of text.
func CountWords(text string) int {
	return len(strings.Fields(text))
}
