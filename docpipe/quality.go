package docpipe

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ExtractionQuality describes how much usable text a PDF gave up. Scanned
// worksheets yield a few characters per page and still carry image streams.
type ExtractionQuality struct {
	PageCount       int     `json:"page_count"`
	CharsPerPage    float64 `json:"chars_per_page"`
	PrintableRatio  float64 `json:"printable_ratio"`
	WordlikeRatio   float64 `json:"wordlike_ratio"`
	HasImageStreams bool    `json:"has_image_streams"`
	VisualRefCount  int     `json:"visual_ref_count"`
}

const (
	minCharsPerPage = 50
	minPrintable    = 0.85
)

// NeedsOCR reports whether the text layer is too thin or too garbled to chunk.
func (q *ExtractionQuality) NeedsOCR() bool {
	if q.PrintableRatio < minPrintable {
		return true
	}
	return q.HasImageStreams && q.CharsPerPage < minCharsPerPage
}

// HasVisualGap reports whether the text points at pictures or tables that
// only exist as images ("look at the picture", "see table 2").
func (q *ExtractionQuality) HasVisualGap() bool {
	return q.HasImageStreams && q.VisualRefCount > 0
}

// printableRatio is the share of printable runes in text. Empty text scores 1.
func printableRatio(text string) float64 {
	var total, good int
	for _, r := range text {
		total++
		if printableRune(r) {
			good++
		}
	}
	if total == 0 {
		return 1
	}
	return float64(good) / float64(total)
}

// printableRune rejects private-use runes, which CID fonts without a
// ToUnicode map decode to, as well as U+FFFD and control characters other
// than tab and line breaks.
func printableRune(r rune) bool {
	switch {
	case r == '\n', r == '\r', r == '\t':
		return true
	case r == utf8.RuneError, unicode.Is(unicode.Co, r):
		return false
	}
	return unicode.IsPrint(r)
}

// wordlikeRatio is the share of tokens between 2 and 15 runes long.
// Glyph-by-glyph extraction leaves mostly single-rune tokens.
func wordlikeRatio(text string) float64 {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return 0
	}
	n := 0
	for _, f := range fields {
		if l := utf8.RuneCountInString(f); l >= 2 && l <= 15 {
			n++
		}
	}
	return float64(n) / float64(len(fields))
}

var visualRef = regexp.MustCompile(`(?i)\b(?:(?:look\s+at|see|refer\s+to|describe)\s+(?:the\s+)?(?:picture|photo|image|illustration|chart|graph|diagram|map)s?\b|(?:figure|fig\.|table|chart|picture)\s+\d+)`)

func visualRefs(text string) int {
	return len(visualRef.FindAllStringIndex(text, -1))
}
