package docpipe

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// glyph is one positioned character run of a page.
type glyph struct {
	X, W, Size float64
	S          string
}

// textRow holds the glyphs sharing a baseline, sorted left to right.
type textRow struct {
	Y      float64
	Glyphs []glyph
}

// pdfPage is the positioned text of one page, rows sorted top to bottom.
type pdfPage struct {
	Number int
	Width  float64
	Rows   []textRow
}

// defaultPageWidth is US Letter, used when no MediaBox can be resolved.
const defaultPageWidth = 612

// pdfText is the outcome of extractPDF. Layout is the reading order the
// text was actually produced in, which drops to single column when the
// content-stream fallback had to be used.
type pdfText struct {
	Title    string
	Sections []Section
	Quality  *ExtractionQuality
	Layout   Layout
}

// extractPDF extracts text page by page in reading order for the given
// layout. Positioned text comes from ledongthuc/pdf; when it fails or finds
// nothing, the pdfcpu content-stream reader is tried.
func extractPDF(path string, layout Layout) (pdfText, error) {
	out := pdfText{Layout: layout}

	var texts []string
	pages, err := readPDFPages(path, 0)
	if err == nil {
		for _, pg := range pages {
			texts = append(texts, renderPage(pg, layout))
		}
	}

	// pdfcpu validates the file, feeds the quality metrics and serves as
	// a fallback text source.
	ctx, cerr := readPDFContext(path)
	if err != nil || isBlank(texts) {
		if cerr != nil {
			if err == nil {
				err = ErrNoText
			}
			return out, fmt.Errorf("%w (pdfcpu: %v)", err, cerr)
		}
		fallback, used := fallbackPages(ctx)
		if isBlank(fallback) {
			if err == nil {
				err = ErrNoText
			}
			out.Quality = qualityFor(ctx, "")
			return out, err
		}
		texts, out.Layout = fallback, used
	}

	for i, text := range texts {
		if out.Title == "" {
			out.Title = firstLine(text)
		}
		out.Sections = append(out.Sections, Section{
			Text:     text,
			Type:     "page",
			Metadata: map[string]string{"page": strconv.Itoa(i + 1)},
		})
	}

	if cerr == nil {
		out.Quality = qualityFor(ctx, joinSections(out.Sections))
	}
	return out, nil
}

// fallbackPages reads every page from its content stream. Text comes out
// in drawing order with no positions, so columns cannot be interleaved and
// the returned layout is always single column.
func fallbackPages(ctx *model.Context) ([]string, Layout) {
	texts := make([]string, 0, ctx.PageCount)
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		texts = append(texts, extractPageText(ctx, pageNr))
	}
	return texts, LayoutSingle
}

// readPDFPages loads positioned text for up to limit pages (0 = all).
// ledongthuc/pdf panics on some malformed inputs; those panics are
// returned as errors.
func readPDFPages(path string, limit int) (pages []pdfPage, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("pdf: parser panic: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("pdf open: %w", err)
	}
	defer f.Close()

	n := r.NumPage()
	if limit > 0 && n > limit {
		n = limit
	}
	for i := 1; i <= n; i++ {
		p := r.Page(i)
		pg := pdfPage{Number: i}
		if p.V.IsNull() {
			pages = append(pages, pg)
			continue
		}
		pg.Width = pageWidth(p.V)
		pg.Rows = groupRows(p.Content().Text)
		pages = append(pages, pg)
	}
	return pages, nil
}

// pageWidth reads the MediaBox width, following inherited Parent boxes.
func pageWidth(v pdf.Value) float64 {
	for depth := 0; depth < 32 && !v.IsNull(); depth++ {
		box := v.Key("MediaBox")
		if box.Len() == 4 {
			if w := box.Index(2).Float64() - box.Index(0).Float64(); w > 0 {
				return w
			}
		}
		v = v.Key("Parent")
	}
	return defaultPageWidth
}

// groupRows buckets characters by rounded baseline.
func groupRows(texts []pdf.Text) []textRow {
	byY := make(map[int64]int)
	var rows []textRow
	for _, t := range texts {
		key := int64(math.Round(t.Y))
		i, ok := byY[key]
		if !ok {
			i = len(rows)
			byY[key] = i
			rows = append(rows, textRow{Y: float64(key)})
		}
		rows[i].Glyphs = append(rows[i].Glyphs, glyph{X: t.X, W: t.W, Size: t.FontSize, S: t.S})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Y > rows[j].Y })
	for _, row := range rows {
		sort.SliceStable(row.Glyphs, func(a, b int) bool { return row.Glyphs[a].X < row.Glyphs[b].X })
	}
	return rows
}

// lineText joins glyphs into a line, inserting a space at explicit blanks
// and at horizontal gaps wider than a quarter of the font size.
func lineText(glyphs []glyph) string {
	var sb strings.Builder
	var prevEnd float64
	pending := false
	for _, g := range glyphs {
		if strings.TrimSpace(g.S) == "" {
			pending = true
			prevEnd = g.X + g.W
			continue
		}
		if sb.Len() > 0 {
			gap := 2.0
			if g.Size > 0 {
				gap = g.Size / 4
			}
			if pending || g.X-prevEnd > gap {
				sb.WriteByte(' ')
			}
		}
		pending = false
		sb.WriteString(g.S)
		prevEnd = g.X + g.W
	}
	return strings.TrimSpace(sb.String())
}

func renderPage(pg pdfPage, layout Layout) string {
	if layout == LayoutDual {
		left, right := splitColumns(pg)
		return strings.Join(interleave(left, right), "\n")
	}
	var lines []string
	for _, row := range pg.Rows {
		if s := lineText(row.Glyphs); s != "" {
			lines = append(lines, s)
		}
	}
	return strings.Join(lines, "\n")
}

func isBlank(texts []string) bool {
	for _, t := range texts {
		if strings.TrimSpace(t) != "" {
			return false
		}
	}
	return true
}

func readPDFContext(path string) (*model.Context, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("pdfcpu read: %w", err)
	}
	return ctx, nil
}

func qualityFor(ctx *model.Context, fullText string) *ExtractionQuality {
	var charsPerPage float64
	if ctx.PageCount > 0 {
		charsPerPage = float64(len([]rune(fullText))) / float64(ctx.PageCount)
	}
	return &ExtractionQuality{
		PageCount:       ctx.PageCount,
		CharsPerPage:    charsPerPage,
		PrintableRatio:  printableRatio(fullText),
		WordlikeRatio:   wordlikeRatio(fullText),
		HasImageStreams: detectImageStreams(ctx),
		VisualRefCount:  visualRefs(fullText),
	}
}

// extractPageText extracts text from a single PDF page via pdfcpu content stream.
func extractPageText(ctx *model.Context, pageNr int) string {
	r, err := pdfcpu.ExtractPageContent(ctx, pageNr)
	if err != nil || r == nil {
		return ""
	}
	data, err := io.ReadAll(r)
	if err != nil || len(data) == 0 {
		return ""
	}
	return extractTextFromStream(data)
}

// detectImageStreams checks if the PDF contains image XObjects.
func detectImageStreams(ctx *model.Context) bool {
	if ctx.Optimize != nil {
		for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
			if len(pdfcpu.ImageObjNrs(ctx, pageNr)) > 0 {
				return true
			}
		}
	}
	for _, entry := range ctx.Table {
		if entry == nil || entry.Free || entry.Compressed {
			continue
		}
		sd, ok := entry.Object.(types.StreamDict)
		if !ok {
			continue
		}
		if subtype, found := sd.Find("Subtype"); found {
			if name, isName := subtype.(types.Name); isName && name == "Image" {
				return true
			}
		}
	}
	return false
}

// pdfStringRe matches PDF string literals in parentheses, escaped
// parentheses included: (text \(here\))
var pdfStringRe = regexp.MustCompile(`\(((?:[^()\\]|\\.)*)\)`)

// extractTextFromStream reads Tj, TJ and ' operators from a content stream.
// Td, TD, T* and ' start a new line.
func extractTextFromStream(data []byte) string {
	var lines []string
	var cur strings.Builder
	flush := func() {
		if s := cleanPDFLine(cur.String()); s != "" {
			lines = append(lines, s)
		}
		cur.Reset()
	}

	for _, line := range bytes.Split(data, []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		switch {
		case len(line) == 0:
		case bytes.HasSuffix(line, []byte("Tj")), bytes.HasSuffix(line, []byte("TJ")):
			for _, m := range pdfStringRe.FindAllSubmatch(line, -1) {
				cur.WriteString(decodePDFString(m[1]))
			}
		case bytes.HasSuffix(line, []byte("'")) && bytes.Contains(line, []byte("(")):
			flush()
			for _, m := range pdfStringRe.FindAllSubmatch(line, -1) {
				cur.WriteString(decodePDFString(m[1]))
			}
		case bytes.HasSuffix(line, []byte("Td")), bytes.HasSuffix(line, []byte("TD")),
			bytes.Equal(line, []byte("T*")), bytes.Equal(line, []byte("ET")):
			flush()
		}
	}
	flush()
	return strings.Join(lines, "\n")
}

// decodePDFString handles basic PDF escape sequences.
func decodePDFString(raw []byte) string {
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' || i+1 >= len(raw) {
			sb.WriteByte(raw[i])
			continue
		}
		i++
		switch raw[i] {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case '\\', '(', ')':
			sb.WriteByte(raw[i])
		default:
			// Octal escape, up to three digits (\040 is a space).
			if raw[i] < '0' || raw[i] > '7' {
				sb.WriteByte(raw[i])
				continue
			}
			val := int(raw[i] - '0')
			for k := 0; k < 2 && i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7'; k++ {
				i++
				val = val*8 + int(raw[i]-'0')
			}
			sb.WriteByte(byte(val))
		}
	}
	return sb.String()
}

// cleanPDFLine collapses whitespace and drops non-printable runes.
func cleanPDFLine(text string) string {
	var sb strings.Builder
	prevSpace := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			if !prevSpace && sb.Len() > 0 {
				sb.WriteByte(' ')
				prevSpace = true
			}
		} else if unicode.IsPrint(r) {
			sb.WriteRune(r)
			prevSpace = false
		}
	}
	return strings.TrimSpace(sb.String())
}
