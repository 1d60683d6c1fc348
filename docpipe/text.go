package docpipe

import (
	"os"
	"strings"
	"unicode/utf8"
)

// validUTF8 replaces byte sequences that are not UTF-8 with U+FFFD.
func validUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}
	return []byte(strings.ToValidUTF8(string(data), "\ufffd"))
}

// extractText reads a plain text file as a single section. Line breaks are
// kept since the normalizer works line by line; trailing blanks are dropped.
func extractText(path string) (string, []Section, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, err
	}
	data = validUTF8(data)

	text := strings.TrimPrefix(string(data), "\ufeff")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t\r")
	}
	text = strings.TrimSpace(strings.Join(lines, "\n"))
	if text == "" {
		return "", nil, nil
	}

	return firstLine(text), []Section{{
		Text: text,
		Type: "paragraph",
	}}, nil
}
