package docpipe

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// extractDocx reads word/document.xml paragraph by paragraph. Tabs become
// spaces and explicit breaks become newlines.
func extractDocx(path string) (string, []Section, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return "", nil, fmt.Errorf("open zip: %w", err)
	}
	defer r.Close()

	rc, err := openZipPart(&r.Reader, "word/document.xml")
	if err != nil {
		return "", nil, err
	}
	defer rc.Close()

	w := newXMLWalker(rc)
	var sections []Section
	var title string
	var currentText strings.Builder
	var inParagraph, inText bool
	var paragraphStyle string

	for {
		tok, err := w.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", nil, fmt.Errorf("document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				inParagraph = true
				currentText.Reset()
				paragraphStyle = ""
			case "pStyle":
				if inParagraph {
					for _, attr := range t.Attr {
						if attr.Name.Local == "val" {
							paragraphStyle = attr.Value
						}
					}
				}
			case "t":
				inText = inParagraph
			case "tab":
				if inParagraph {
					currentText.WriteByte(' ')
				}
			case "br", "cr":
				if inParagraph {
					currentText.WriteByte('\n')
				}
			}

		case xml.CharData:
			if inText {
				currentText.Write(t)
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if !inParagraph {
					continue
				}
				inParagraph = false
				text := strings.TrimSpace(currentText.String())
				if text == "" {
					continue
				}
				if level := docxHeadingLevel(paragraphStyle); level > 0 {
					if title == "" {
						title = text
					}
					sections = append(sections, Section{Title: text, Level: level, Text: text, Type: "heading"})
				} else {
					sections = append(sections, Section{Text: text, Type: "paragraph"})
				}
			}
		}
	}

	return title, sections, nil
}

// docxHeadingLevel extracts the heading level from a paragraph style name.
// e.g. "Heading1" -> 1, "Title" -> 1, "Subtitle" -> 2.
func docxHeadingLevel(style string) int {
	lower := strings.ToLower(style)
	switch lower {
	case "title":
		return 1
	case "subtitle":
		return 2
	}
	if rest, ok := strings.CutPrefix(lower, "heading"); ok {
		rest = strings.TrimSpace(rest)
		if len(rest) == 1 && rest[0] >= '1' && rest[0] <= '6' {
			return int(rest[0] - '0')
		}
	}
	return 0
}
