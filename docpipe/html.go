package docpipe

import (
	"bytes"
	"os"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Saved reading articles carry hidden promo blocks; text hidden by inline
// style is not part of the passage.
var hiddenStylePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)display\s*:\s*none`),
	regexp.MustCompile(`(?i)visibility\s*:\s*hidden`),
	regexp.MustCompile(`(?i)font-size\s*:\s*0[^1-9.]`),
	regexp.MustCompile(`(?i)opacity\s*:\s*0(\s*;|\s*$)`),
}

func isHidden(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	for _, a := range n.Attr {
		switch a.Key {
		case "hidden":
			return true
		case "aria-hidden":
			if a.Val == "true" {
				return true
			}
		case "style":
			for _, pat := range hiddenStylePatterns {
				if pat.MatchString(a.Val) {
					return true
				}
			}
		}
	}
	return false
}

func skipElement(n *html.Node) bool {
	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Noscript, atom.Template, atom.Nav, atom.Footer, atom.Header, atom.Aside, atom.Form:
		return true
	}
	return isHidden(n)
}

// extractHTMLFile extracts headings, paragraphs, lists and tables from a
// saved HTML page. List items and table rows become separate lines.
func extractHTMLFile(path string) (string, []Section, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, err
	}
	data = validUTF8(data)

	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return "", nil, err
	}

	var sections []Section
	collectHTMLSections(doc, &sections)

	if len(sections) == 0 {
		if text := htmlText(doc); text != "" {
			sections = append(sections, Section{Text: text, Type: "paragraph"})
		}
	}

	title := findHTMLTitle(doc)
	if title == "" && len(sections) > 0 {
		title = firstLine(sections[0].Text)
	}
	return title, sections, nil
}

func findHTMLTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.DataAtom == atom.Title {
		return strings.TrimSpace(htmlText(n))
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findHTMLTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func collectHTMLSections(n *html.Node, sections *[]Section) {
	if n.Type == html.ElementNode {
		if n.DataAtom == atom.Head || skipElement(n) {
			return
		}

		var s Section
		switch n.DataAtom {
		case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
			s = Section{Level: int(n.Data[1] - '0'), Type: "heading"}
		case atom.P, atom.Blockquote, atom.Pre:
			s = Section{Type: "paragraph"}
		case atom.Ul, atom.Ol, atom.Dl:
			s = Section{Type: "list"}
		case atom.Table:
			s = Section{Type: "table"}
		default:
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				collectHTMLSections(c, sections)
			}
			return
		}

		s.Text = htmlText(n)
		if s.Text == "" {
			return
		}
		if s.Type == "heading" {
			s.Title = s.Text
		}
		*sections = append(*sections, s)
		return
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectHTMLSections(c, sections)
	}
}

// htmlText returns the visible text of a subtree. Words inside a line are
// separated by single spaces; li, tr, dt, dd and br start new lines.
func htmlText(n *html.Node) string {
	var lines []string
	var cur []string
	breakLine := func() {
		if len(cur) > 0 {
			lines = append(lines, strings.Join(cur, " "))
			cur = cur[:0]
		}
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			cur = append(cur, strings.Fields(n.Data)...)
			return
		case html.ElementNode:
			if skipElement(n) {
				return
			}
			switch n.DataAtom {
			case atom.Br:
				breakLine()
				return
			case atom.Li, atom.Tr, atom.Dt, atom.Dd:
				breakLine()
				defer breakLine()
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	breakLine()
	return strings.Join(lines, "\n")
}
