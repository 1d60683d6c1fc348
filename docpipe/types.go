package docpipe

// Format identifies a document type.
type Format string

const (
	FormatDocx Format = "docx"
	FormatODT  Format = "odt"
	FormatPPTX Format = "pptx"
	FormatPDF  Format = "pdf"
	FormatMD   Format = "md"
	FormatTXT  Format = "txt"
	FormatHTML Format = "html"
)

// Layout is the column arrangement of a paged document.
type Layout string

const (
	LayoutSingle Layout = "single-column"
	LayoutDual   Layout = "dual-column"
)

// Section is a structural unit of a document: a page, a slide, a heading
// or a paragraph depending on the format.
type Section struct {
	Title    string            `json:"title,omitempty"`
	Level    int               `json:"level"` // heading level 1-6, 0 for body
	Text     string            `json:"text"`
	Type     string            `json:"type"` // page, slide, heading, paragraph, list, table, code
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Document is the result of extracting content from a file.
type Document struct {
	Path     string             `json:"path"`
	Format   Format             `json:"format"`
	Title    string             `json:"title"`
	Layout   Layout             `json:"layout,omitempty"` // PDF only
	Sections []Section          `json:"sections"`
	RawText  string             `json:"raw_text"` // sections joined by newlines
	Quality  *ExtractionQuality `json:"quality,omitempty"`
}
