package docpipe

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var slidePartRe = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// extractPPTX returns one section per slide, in slide number order. Each
// DrawingML paragraph of every shape becomes one line.
func extractPPTX(path string) (string, []Section, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return "", nil, fmt.Errorf("open zip: %w", err)
	}
	defer r.Close()

	type slidePart struct {
		num  int
		file *zip.File
	}
	var slides []slidePart
	for _, f := range r.File {
		m := slidePartRe.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		n, _ := strconv.Atoi(m[1])
		slides = append(slides, slidePart{num: n, file: f})
	}
	if len(slides) == 0 {
		return "", nil, fmt.Errorf("no slides found in archive")
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].num < slides[j].num })

	var sections []Section
	var title string
	for _, s := range slides {
		rc, err := s.file.Open()
		if err != nil {
			return "", nil, fmt.Errorf("open %s: %w", s.file.Name, err)
		}
		lines, err := slideLines(rc)
		rc.Close()
		if err != nil {
			return "", nil, fmt.Errorf("%s: %w", s.file.Name, err)
		}

		text := strings.Join(lines, "\n")
		if title == "" && len(lines) > 0 {
			title = lines[0]
		}
		sections = append(sections, Section{
			Text:     text,
			Type:     "slide",
			Metadata: map[string]string{"slide": strconv.Itoa(s.num)},
		})
	}
	return title, sections, nil
}

// slideLines collects the text of every a:p paragraph of a slide.
func slideLines(r io.Reader) ([]string, error) {
	w := newXMLWalker(r)
	var lines []string
	var cur strings.Builder
	var inPara, inText bool

	for {
		tok, err := w.next()
		if err == io.EOF {
			return lines, nil
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				inPara = true
				cur.Reset()
			case "t":
				inText = inPara
			case "br":
				if inPara {
					cur.WriteByte(' ')
				}
			}
		case xml.CharData:
			if inText {
				cur.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if inPara {
					if s := strings.TrimSpace(cur.String()); s != "" {
						lines = append(lines, s)
					}
					inPara = false
				}
			}
		}
	}
}
