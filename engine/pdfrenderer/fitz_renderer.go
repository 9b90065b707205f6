package pdfrenderer

import (
	"fmt"
	"image"

	"github.com/gen2brain/go-fitz"
)

// FitzRenderer implements PDF rendering using go-fitz (requires CGo and MuPDF)
type FitzRenderer struct {
}

// NewFitzRenderer creates a new Fitz-based PDF renderer
func NewFitzRenderer() *FitzRenderer {
	return &FitzRenderer{}
}

// RenderPage renders a single page to an image using go-fitz
func (r *FitzRenderer) RenderPage(pdfData []byte, pageIndex int, dpi int) (image.Image, error) {
	doc, err := fitz.NewFromMemory(pdfData)
	if err != nil {
		return nil, fmt.Errorf("unable to open PDF document: %w", err)
	}
	defer doc.Close()

	if total := doc.NumPage(); pageIndex < 0 || pageIndex >= total {
		return nil, &PageRangeError{Requested: pageIndex + 1, Total: total}
	}

	img, err := doc.ImageDPI(pageIndex, float64(dpi))
	if err != nil {
		return nil, fmt.Errorf("unable to render page %d: %w", pageIndex+1, err)
	}
	return img, nil
}

// Close cleans up resources (no-op for Fitz renderer as doc is closed per-render)
func (r *FitzRenderer) Close() error {
	return nil
}
