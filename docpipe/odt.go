package docpipe

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// extractODT reads content.xml of an OpenDocument Text archive.
func extractODT(path string) (string, []Section, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return "", nil, fmt.Errorf("open zip: %w", err)
	}
	defer r.Close()

	rc, err := openZipPart(&r.Reader, "content.xml")
	if err != nil {
		return "", nil, err
	}
	defer rc.Close()

	w := newXMLWalker(rc)
	var sections []Section
	var title string
	var currentText strings.Builder
	var inHeading, inParagraph bool
	var headingLevel, listDepth int

	for {
		tok, err := w.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", nil, fmt.Errorf("content.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "h":
				inHeading = true
				currentText.Reset()
				headingLevel = 1
				for _, attr := range t.Attr {
					if attr.Name.Local == "outline-level" {
						if n, err := strconv.Atoi(attr.Value); err == nil {
							headingLevel = n
						}
					}
				}
			case "p":
				inParagraph = true
				currentText.Reset()
			case "list":
				listDepth++
			case "s", "tab":
				currentText.WriteByte(' ')
			case "line-break":
				currentText.WriteByte('\n')
			}

		case xml.CharData:
			if inHeading || inParagraph {
				currentText.Write(t)
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "h":
				if !inHeading {
					continue
				}
				inHeading = false
				text := strings.TrimSpace(currentText.String())
				if text == "" {
					continue
				}
				if title == "" {
					title = text
				}
				sections = append(sections, Section{Title: text, Level: headingLevel, Text: text, Type: "heading"})
			case "p":
				if !inParagraph {
					continue
				}
				inParagraph = false
				text := strings.TrimSpace(currentText.String())
				if text == "" {
					continue
				}
				stype := "paragraph"
				if listDepth > 0 {
					stype = "list"
				}
				sections = append(sections, Section{Text: text, Type: stype})
			case "list":
				listDepth--
			}
		}
	}

	return title, sections, nil
}
