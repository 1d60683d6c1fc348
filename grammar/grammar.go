// Package grammar reconstructs multiple-choice exercises from the raw text
// of a grammar worksheet.
//
// A worksheet is a run of numbered questions, each followed by four options
// labeled A) to D), then an "Answer Key:" section listing "<number>: <letter>"
// pairs. The key and the question blocks are matched independently by
// ParseAnswerKey and MatchBlocks and joined by Parse.
package grammar

import (
	"regexp"
	"strings"
	"time"

	"github.com/Capstone-project-Engventure/EngAgent/corpus"
	"github.com/Capstone-project-Engventure/EngAgent/idgen"
)

var (
	keyMarkerRe = regexp.MustCompile(`(?i)answer key:`)
	keyEntryRe  = regexp.MustCompile(`(\d+):\s*([A-D])`)

	// A block ends where a new line opens with "<number>.", or at end of text.
	blockBoundaryRe = regexp.MustCompile(`\n\d+\.`)
	blockRe         = regexp.MustCompile(`(?s)(\d{1,2})[.)]\s*(.*?)\s*A\)\s*(.*?)\s*B\)\s*(.*?)\s*C\)\s*(.*?)\s*D\)\s*(.*)`)
	blockStartRe    = regexp.MustCompile(`\d{1,2}[.)]`)

	levelRe = regexp.MustCompile(`(?i)([a-z]\d-[a-z]\d)`)
)

// Block is one numbered question with its four options.
type Block struct {
	Number   string
	Question string
	Options  corpus.Options
}

// Record is a Block joined with its answer from the key.
type Record struct {
	Block
	// Answer is the text of the keyed option, nil when the key has no entry.
	Answer *string
}

// Stats counts what the parser skipped.
type Stats struct {
	HasKey     bool // the text carries an "Answer Key:" section
	Candidates int  // numbered segments found in the question section
	Matched    int  // segments with all four options
	Unanswered int  // matched blocks absent from the key
}

// Mismatched returns the number of numbered segments that did not have the
// question/option shape and were dropped.
func (s Stats) Mismatched() int { return s.Candidates - s.Matched }

// ParseAnswerKey maps question numbers to answer letters. A number listed
// more than once keeps its last letter.
func ParseAnswerKey(key string) map[string]string {
	out := make(map[string]string)
	for _, m := range keyEntryRe.FindAllStringSubmatch(key, -1) {
		out[m[1]] = m[2]
	}
	return out
}

// MatchBlocks finds the numbered question blocks of a question section.
// A block lacking any of the four option labels is skipped.
func MatchBlocks(section string) []Block {
	blocks, _ := matchBlocks(section)
	return blocks
}

func matchBlocks(section string) ([]Block, int) {
	var blocks []Block
	candidates := 0
	for _, seg := range splitSegments(section) {
		if blockStartRe.MatchString(seg) {
			candidates++
		}
		m := blockRe.FindStringSubmatch(seg)
		if m == nil {
			continue
		}
		blocks = append(blocks, Block{
			Number:   m[1],
			Question: strings.TrimSpace(m[2]),
			Options: corpus.Options{
				A: strings.TrimSpace(m[3]),
				B: strings.TrimSpace(m[4]),
				C: strings.TrimSpace(m[5]),
				D: strings.TrimSpace(m[6]),
			},
		})
	}
	return blocks, candidates
}

// splitSegments cuts text before every "\n<number>." boundary.
func splitSegments(text string) []string {
	var segs []string
	prev := 0
	for _, loc := range blockBoundaryRe.FindAllStringIndex(text, -1) {
		if loc[0] > prev {
			segs = append(segs, text[prev:loc[0]])
		}
		prev = loc[0] + 1
	}
	if prev < len(text) {
		segs = append(segs, text[prev:])
	}
	return segs
}

// Parse splits text at the answer key and resolves every matched block.
// Text without an "Answer Key:" marker is not an exercise sheet and yields
// no records.
func Parse(text string) ([]Record, Stats) {
	parts := keyMarkerRe.Split(text, -1)
	if len(parts) < 2 {
		return nil, Stats{}
	}

	key := ParseAnswerKey(parts[1])
	blocks, candidates := matchBlocks(parts[0])

	st := Stats{HasKey: true, Candidates: candidates, Matched: len(blocks)}
	records := make([]Record, 0, len(blocks))
	for _, b := range blocks {
		r := Record{Block: b}
		if letter, ok := key[b.Number]; ok {
			if opt, ok := b.Options.At(int(letter[0] - 'A')); ok {
				r.Answer = &opt
			}
		}
		if r.Answer == nil {
			st.Unanswered++
		}
		records = append(records, r)
	}
	return records, st
}

// Text renders the record as indexed by retrieval: the numbered question,
// the labeled options and the resolved answer.
func (r Record) Text() string {
	lines := make([]string, 0, 6)
	lines = append(lines, r.Number+". "+r.Question)
	for i, opt := range r.Options.Values() {
		lines = append(lines, corpus.Letters[i]+") "+opt)
	}
	answer := ""
	if r.Answer != nil {
		answer = *r.Answer
	}
	lines = append(lines, "Answer: "+answer)
	return strings.Join(lines, "\n")
}

// InferLevel extracts a level code such as "A1-A2" from a file name.
// Naming conventions vary between worksheet banks, so this is best effort:
// nil means no code was found.
func InferLevel(name string) *string {
	m := levelRe.FindString(name)
	if m == "" {
		return nil
	}
	level := strings.ToUpper(m)
	return &level
}

// Origin is the provenance shared by every record of one document.
type Origin struct {
	Name      string // file stem
	URL       string
	CrawlDate time.Time
}

// Assemble turns records into grammar chunks with fresh ids.
func Assemble(records []Record, o Origin, newID idgen.Generator) []corpus.Chunk {
	level := InferLevel(o.Name)
	out := make([]corpus.Chunk, 0, len(records))
	for _, r := range records {
		out = append(out, corpus.Chunk{
			ID:        newID(),
			Source:    corpus.TypeGrammar,
			URL:       o.URL,
			CrawlDate: o.CrawlDate,
			Type:      corpus.TypeGrammar,
			Text:      r.Text(),
			Exercise: &corpus.Exercise{
				Name:     o.Name,
				Level:    cloneString(level),
				Question: r.Question,
				Options:  r.Options,
				Answer:   cloneString(r.Answer),
			},
		})
	}
	return out
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
