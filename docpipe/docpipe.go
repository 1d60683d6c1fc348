// Package docpipe extracts raw text from the document formats found in a
// course material bank.
//
// Supported formats:
//   - .pdf   paged documents, single- or dual-column (ledongthuc/pdf, pdfcpu fallback)
//   - .docx  Microsoft Word (archive/zip -> word/document.xml)
//   - .odt   OpenDocument Text (archive/zip -> content.xml)
//   - .pptx  PowerPoint slide decks (archive/zip -> ppt/slides/slideN.xml)
//   - .md    Markdown (goldmark AST)
//   - .txt   plain text, line structure kept
//   - .html  HTML reading material (golang.org/x/net/html)
//
// Usage:
//
//	pipe := docpipe.New(docpipe.Config{})
//	doc, err := pipe.Extract(ctx, "/path/to/unit1.pdf")
//	fmt.Println(doc.Layout, len(doc.Sections), "pages")
package docpipe

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Pipeline is the document extraction engine. It holds no per-document
// state and is safe for concurrent use.
type Pipeline struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a Pipeline with the given configuration.
func New(cfg Config) *Pipeline {
	cfg.defaults()
	return &Pipeline{
		cfg:    cfg,
		logger: cfg.Logger,
	}
}

// Detect returns the document format based on file extension.
func (p *Pipeline) Detect(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".pdf":
		return FormatPDF, nil
	case ".docx":
		return FormatDocx, nil
	case ".odt":
		return FormatODT, nil
	case ".pptx":
		return FormatPPTX, nil
	case ".md", ".markdown":
		return FormatMD, nil
	case ".txt", ".text":
		return FormatTXT, nil
	case ".html", ".htm":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// Extract reads a document and returns its sections and raw text.
// PDFs are routed through the layout detector unless Config.Layout is set.
func (p *Pipeline) Extract(ctx context.Context, path string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	format, err := p.Detect(path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.Size() > p.cfg.MaxFileSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrTooLarge, info.Size(), p.cfg.MaxFileSize)
	}

	p.logger.Debug("extracting document", "path", path, "format", format)

	doc := &Document{Path: path, Format: format}
	switch format {
	case FormatPDF:
		doc.Layout = p.cfg.Layout
		if doc.Layout == "" {
			doc.Layout, err = DetectLayout(path)
			if err != nil {
				p.logger.Debug("layout detection failed, assuming single column", "path", path, "error", err)
				doc.Layout = LayoutSingle
			}
		}
		var res pdfText
		res, err = extractPDF(path, doc.Layout)
		if err == nil && res.Layout != doc.Layout {
			p.logger.Warn("positioned text unavailable, column order not restored",
				"path", path, "detected", doc.Layout, "used", res.Layout)
		}
		doc.Title, doc.Sections, doc.Quality, doc.Layout = res.Title, res.Sections, res.Quality, res.Layout
	case FormatDocx:
		doc.Title, doc.Sections, err = extractDocx(path)
	case FormatODT:
		doc.Title, doc.Sections, err = extractODT(path)
	case FormatPPTX:
		doc.Title, doc.Sections, err = extractPPTX(path)
	case FormatMD:
		doc.Title, doc.Sections, err = extractMarkdown(path)
	case FormatTXT:
		doc.Title, doc.Sections, err = extractText(path)
	case FormatHTML:
		doc.Title, doc.Sections, err = extractHTMLFile(path)
	default:
		return nil, fmt.Errorf("%w: no parser for %s", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("extract %s (%s): %w", path, format, err)
	}

	doc.RawText = joinSections(doc.Sections)
	return doc, nil
}

// ExtractPDF extracts a PDF with an explicit layout, bypassing detection.
func (p *Pipeline) ExtractPDF(path string, layout Layout) (*Document, error) {
	res, err := extractPDF(path, layout)
	if err != nil {
		return nil, fmt.Errorf("extract %s (pdf): %w", path, err)
	}
	if res.Layout != layout {
		p.logger.Warn("positioned text unavailable, column order not restored",
			"path", path, "requested", layout, "used", res.Layout)
	}
	return &Document{
		Path:     path,
		Format:   FormatPDF,
		Title:    res.Title,
		Layout:   res.Layout,
		Sections: res.Sections,
		RawText:  joinSections(res.Sections),
		Quality:  res.Quality,
	}, nil
}

func joinSections(sections []Section) string {
	var sb strings.Builder
	for i, s := range sections {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(s.Text)
	}
	return sb.String()
}

// SupportedFormats returns all supported format names.
func SupportedFormats() []string {
	return []string{"pdf", "docx", "odt", "pptx", "md", "txt", "html"}
}

func firstLine(text string) string {
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = text[:idx]
	}
	text = strings.TrimSpace(text)
	if len(text) > 200 {
		text = text[:200]
	}
	return text
}
