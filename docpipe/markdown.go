package docpipe

import (
	"os"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// extractMarkdown parses a Markdown file with goldmark and emits one section
// per top-level block.
func extractMarkdown(path string) (string, []Section, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return "", nil, err
	}
	src = validUTF8(src)

	root := goldmark.DefaultParser().Parse(text.NewReader(src))

	var sections []Section
	var title string
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		body := strings.TrimSpace(markdownText(n, src))
		if body == "" {
			continue
		}
		switch b := n.(type) {
		case *ast.Heading:
			if title == "" {
				title = body
			}
			sections = append(sections, Section{Title: body, Level: b.Level, Text: body, Type: "heading"})
		case *ast.List:
			sections = append(sections, Section{Text: body, Type: "list"})
		case *ast.CodeBlock, *ast.FencedCodeBlock:
			sections = append(sections, Section{Text: body, Type: "code"})
		default:
			sections = append(sections, Section{Text: body, Type: "paragraph"})
		}
	}

	if title == "" && len(sections) > 0 {
		title = firstLine(sections[0].Text)
	}
	return title, sections, nil
}

// markdownText flattens a block to plain text. Line breaks inside
// paragraphs and block boundaries are kept as newlines.
func markdownText(n ast.Node, src []byte) string {
	var sb strings.Builder
	newline := func() {
		if sb.Len() > 0 && !strings.HasSuffix(sb.String(), "\n") {
			sb.WriteByte('\n')
		}
	}
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		switch node := c.(type) {
		case *ast.Text:
			if entering {
				sb.Write(node.Segment.Value(src))
				if node.SoftLineBreak() || node.HardLineBreak() {
					sb.WriteByte('\n')
				}
			}
			return ast.WalkContinue, nil
		case *ast.String:
			if entering {
				sb.Write(node.Value)
			}
			return ast.WalkContinue, nil
		case *ast.CodeBlock, *ast.FencedCodeBlock:
			if entering {
				lines := c.Lines()
				for i := 0; i < lines.Len(); i++ {
					seg := lines.At(i)
					sb.Write(seg.Value(src))
				}
				newline()
			}
			return ast.WalkSkipChildren, nil
		}
		if !entering && c.Type() == ast.TypeBlock {
			newline()
		}
		return ast.WalkContinue, nil
	})
	return sb.String()
}
