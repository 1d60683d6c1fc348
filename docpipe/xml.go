package docpipe

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
)

// maxXMLDepth bounds element nesting in archive XML parts.
const maxXMLDepth = 256

// xmlWalker wraps a decoder and rejects documents nested deeper than maxXMLDepth.
type xmlWalker struct {
	dec   *xml.Decoder
	depth int
}

func newXMLWalker(r io.Reader) *xmlWalker {
	return &xmlWalker{dec: xml.NewDecoder(r)}
}

// next returns the next token, io.EOF at the end of the document.
func (w *xmlWalker) next() (xml.Token, error) {
	tok, err := w.dec.Token()
	if err != nil {
		return nil, err
	}
	switch tok.(type) {
	case xml.StartElement:
		w.depth++
		if w.depth > maxXMLDepth {
			return nil, fmt.Errorf("xml nesting depth exceeds %d", maxXMLDepth)
		}
	case xml.EndElement:
		w.depth--
	}
	return tok, nil
}

// openZipPart opens a named member of an archive.
func openZipPart(r *zip.Reader, name string) (io.ReadCloser, error) {
	for _, f := range r.File {
		if f.Name == name {
			return f.Open()
		}
	}
	return nil, fmt.Errorf("%s not found in archive", name)
}
