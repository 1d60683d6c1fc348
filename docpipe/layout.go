package docpipe

// DetectLayout classifies a PDF by its first page. The page is cut into
// left and right halves at half the MediaBox width; the layout is dual-column
// only when both halves carry text.
func DetectLayout(path string) (Layout, error) {
	pages, err := readPDFPages(path, 1)
	if err != nil {
		return LayoutSingle, err
	}
	if len(pages) == 0 {
		return LayoutSingle, nil
	}
	return classifyPage(pages[0]), nil
}

func classifyPage(pg pdfPage) Layout {
	left, right := splitColumns(pg)
	if len(left) > 0 && len(right) > 0 {
		return LayoutDual
	}
	return LayoutSingle
}

// splitColumns returns the non-empty lines of each half of the page, top to
// bottom. A glyph belongs to the half its origin falls in.
func splitColumns(pg pdfPage) (left, right []string) {
	mid := pg.Width / 2
	if mid <= 0 {
		mid = defaultPageWidth / 2
	}
	for _, row := range pg.Rows {
		var l, r []glyph
		for _, g := range row.Glyphs {
			if g.X < mid {
				l = append(l, g)
			} else {
				r = append(r, g)
			}
		}
		if s := lineText(l); s != "" {
			left = append(left, s)
		}
		if s := lineText(r); s != "" {
			right = append(right, s)
		}
	}
	return left, right
}

// interleave pairs column lines: left 1, right 1, left 2, right 2, ...
// Lines of the longer column past the end of the shorter one follow in order.
func interleave(left, right []string) []string {
	out := make([]string, 0, len(left)+len(right))
	n := max(len(left), len(right))
	for i := 0; i < n; i++ {
		if i < len(left) {
			out = append(out, left[i])
		}
		if i < len(right) {
			out = append(out, right[i])
		}
	}
	return out
}
