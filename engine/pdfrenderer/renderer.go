package pdfrenderer

import (
	"fmt"
	"image"
)

// Renderer defines the interface for rasterizing single PDF pages
type Renderer interface {
	// RenderPage renders the 0-indexed page of an in-memory PDF document at
	// the given DPI. Returns a *PageRangeError when the page does not exist.
	RenderPage(pdfData []byte, pageIndex int, dpi int) (image.Image, error)

	// Close cleans up any resources used by the renderer
	Close() error
}

// PageRangeError reports a request for a page beyond the end of the document.
type PageRangeError struct {
	Requested int // 1-indexed page the caller asked for
	Total     int // pages in the document
}

func (e *PageRangeError) Error() string {
	return fmt.Sprintf("Page %d does not exist in the PDF (document has %d pages)", e.Requested, e.Total)
}

// NewRenderer creates a renderer for the given backend. PDFium runs as
// WebAssembly and needs no CGo, so it is the default; "fitz" selects the
// MuPDF-backed renderer for builds where CGo is available.
func NewRenderer(backend string) (Renderer, error) {
	switch backend {
	case "", "pdfium":
		return NewPDFiumRenderer()
	case "fitz":
		return NewFitzRenderer(), nil
	}
	return nil, fmt.Errorf("unknown renderer backend %q", backend)
}
