package chunk

import (
	"reflect"
	"strconv"
	"strings"
	"testing"
)

func words(n int) string {
	w := make([]string, n)
	for i := range w {
		w[i] = "w" + strconv.Itoa(i)
	}
	return strings.Join(w, " ")
}

func TestSplit_Empty(t *testing.T) {
	if got := Split("", DefaultOptions()); got != nil {
		t.Errorf("split empty: got %v, want nil", got)
	}
	if got := Split(" \n\t ", DefaultOptions()); got != nil {
		t.Errorf("split blank: got %v, want nil", got)
	}
}

func TestSplit_SingleWindowTrailingDropped(t *testing.T) {
	// 250 words: start 0 holds 250 words, start 240 holds only 10 (< 100).
	text := strings.TrimSpace(strings.Repeat("w ", 250))
	chunks := Split(text, DefaultOptions())
	if len(chunks) != 1 {
		t.Fatalf("split 250: got %d chunks, want 1", len(chunks))
	}
	if chunks[0].Words != 250 {
		t.Errorf("chunk[0]: %d words, want 250", chunks[0].Words)
	}
}

func TestSplit_BelowMinimum(t *testing.T) {
	if got := Split(words(99), DefaultOptions()); len(got) != 0 {
		t.Errorf("split 99 words: got %d chunks, want 0", len(got))
	}
}

func TestSplit_StepOffsets(t *testing.T) {
	opts := DefaultOptions()
	if opts.Step() != 240 {
		t.Fatalf("Step() = %d, want 240", opts.Step())
	}

	chunks := Split(words(1000), opts)
	// Starts 0, 240, 480, 720 qualify; 960 has 40 words.
	if len(chunks) != 4 {
		t.Fatalf("split 1000: got %d chunks, want 4", len(chunks))
	}
	for i := 1; i < len(chunks); i++ {
		if d := chunks[i].Start - chunks[i-1].Start; d != 240 {
			t.Errorf("chunk[%d]: start delta %d, want 240", i, d)
		}
	}
	for i, c := range chunks {
		if c.Index != i {
			t.Errorf("chunk[%d]: index=%d", i, c.Index)
		}
		if c.Words > 300 {
			t.Errorf("chunk[%d]: %d words > 300", i, c.Words)
		}
	}
}

func TestSplit_OverlapContent(t *testing.T) {
	chunks := Split(words(600), DefaultOptions())
	if len(chunks) < 2 {
		t.Fatalf("got %d chunks, want >= 2", len(chunks))
	}
	first := strings.Fields(chunks[0].Text)
	second := strings.Fields(chunks[1].Text)
	// The last 60 words of the first window open the second.
	if strings.Join(first[240:], " ") != strings.Join(second[:60], " ") {
		t.Error("consecutive windows do not share the 60-word overlap")
	}
	if second[0] != "w240" {
		t.Errorf("second window starts at %q, want w240", second[0])
	}
}

func TestSplit_NeverBelowMinWords(t *testing.T) {
	for _, n := range []int{0, 1, 50, 100, 101, 299, 300, 301, 539, 540, 777, 2048} {
		text := words(n)
		for _, opts := range []Options{
			DefaultOptions(),
			{MinWords: 10, MaxWords: 40, Overlap: 0.5},
			{MinWords: 1, MaxWords: 7, Overlap: 0},
		} {
			for _, c := range Split(text, opts) {
				if c.Words < opts.MinWords {
					t.Fatalf("n=%d opts=%+v: window with %d words < %d", n, opts, c.Words, opts.MinWords)
				}
				if CountWords(c.Text) != c.Words {
					t.Fatalf("n=%d: Words=%d but text has %d", n, c.Words, CountWords(c.Text))
				}
			}
		}
	}
}

func TestSplit_Deterministic(t *testing.T) {
	text := words(900)
	a := Split(text, DefaultOptions())
	b := Split(text, DefaultOptions())
	if !reflect.DeepEqual(a, b) {
		t.Error("Split is not deterministic")
	}
}

func TestStep(t *testing.T) {
	tests := []struct {
		opts Options
		want int
	}{
		{Options{MaxWords: 300, Overlap: 0.2}, 240},
		{Options{MaxWords: 100, Overlap: 0}, 100},
		{Options{MaxWords: 10, Overlap: 0.55}, 4},
		{Options{MaxWords: 1, Overlap: 0.9}, 1},
	}
	for _, tt := range tests {
		if got := tt.opts.Step(); got != tt.want {
			t.Errorf("Step(%+v) = %d, want %d", tt.opts, got, tt.want)
		}
	}
}

func TestCountWords(t *testing.T) {
	if got := CountWords("one two  three\nfour\tfive"); got != 5 {
		t.Errorf("CountWords: got %d, want 5", got)
	}
}
