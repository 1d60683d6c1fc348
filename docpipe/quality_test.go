package docpipe

import "testing"

func TestPrintableRatio(t *testing.T) {
	if r := printableRatio("Choose the correct answer for each question."); r < 0.95 {
		t.Errorf("printable ratio = %f, want > 0.95", r)
	}

	// WHAT: PUA and control chars produce low printable ratio.
	// WHY: CID fonts without ToUnicode come out as private-use runes.
	garbage := "abcdefghi\x01\x02\x03\x04\x05"
	if r := printableRatio(garbage); r >= 0.85 {
		t.Errorf("printable ratio = %f, want < 0.85", r)
	}

	if r := printableRatio(""); r != 1.0 {
		t.Errorf("empty printable ratio = %f, want 1", r)
	}
}

func TestWordlikeRatio(t *testing.T) {
	if r := wordlikeRatio("She goes to school every morning by bus"); r < 0.70 {
		t.Errorf("wordlike ratio = %f, want > 0.70", r)
	}
	// WHAT: Single-char tokens produce low wordlike ratio.
	// WHY: Character-by-character extraction splits every glyph.
	if r := wordlikeRatio("a b c d e f g h i j k l"); r >= 0.40 {
		t.Errorf("wordlike ratio = %f, want < 0.40", r)
	}
}

func TestCountVisualRefs(t *testing.T) {
	text := "Look at the picture and answer. See Table 2 and figure 3 for details."
	if count := visualRefs(text); count < 3 {
		t.Errorf("visual refs = %d, want >= 3", count)
	}
	if count := visualRefs("Fill in the blanks with the past tense."); count != 0 {
		t.Errorf("visual refs = %d, want 0", count)
	}
}

func TestNeedsOCR(t *testing.T) {
	q := &ExtractionQuality{CharsPerPage: 30, HasImageStreams: true, PrintableRatio: 0.9}
	if !q.NeedsOCR() {
		t.Error("expected NeedsOCR=true for low chars + images")
	}
	q = &ExtractionQuality{CharsPerPage: 1200, PrintableRatio: 0.99}
	if q.NeedsOCR() {
		t.Error("expected NeedsOCR=false for a text PDF")
	}
}

func TestHasVisualGap(t *testing.T) {
	q := &ExtractionQuality{VisualRefCount: 2, HasImageStreams: true}
	if !q.HasVisualGap() {
		t.Error("expected HasVisualGap=true for visual refs + images")
	}
	q.HasImageStreams = false
	if q.HasVisualGap() {
		t.Error("expected HasVisualGap=false when the figures are in the text layer")
	}
}

func TestPrintableRune(t *testing.T) {
	for r, want := range map[rune]bool{
		'a':      true,
		'\n':     true,
		'\t':     true,
		'\u00e9': true,
		'\ue000': false,
		'\ufffd': false,
		'\x07':   false,
	} {
		if got := printableRune(r); got != want {
			t.Errorf("printableRune(%U) = %v, want %v", r, got, want)
		}
	}
}
