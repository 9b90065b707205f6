package engine

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image/png"

	"github.com/disintegration/imaging"

	"github.com/dhauru/pdf-to-image-api/engine/pdfrenderer"
)

// PageImage is one rendered page, immutable after creation
type PageImage struct {
	PNG       []byte
	SizeBytes int
}

// BatchItem is the per-page outcome of a batch conversion
type BatchItem struct {
	Page        int    `json:"page"`
	Success     bool   `json:"success"`
	ImageBase64 string `json:"image_base64,omitempty"`
	SizeBytes   int    `json:"size_bytes,omitempty"`
	Error       string `json:"error,omitempty"`
}

// convertPage renders one 1-indexed page of the document to PNG at the given
// DPI. A page beyond the end of the document is a caller error carrying the
// requested page and the actual page count; any other renderer failure is
// surfaced opaquely rather than interpreted.
func (serverHandler *ServerHandler) convertPage(pdfData []byte, page, dpi, width int) (*PageImage, *apiError) {
	img, err := serverHandler.Renderer.RenderPage(pdfData, page-1, dpi)
	if err != nil {
		var rangeErr *pdfrenderer.PageRangeError
		if errors.As(err, &rangeErr) {
			return nil, errBadRequest("%s", rangeErr.Error())
		}
		return nil, errInternal("Conversion failed: %v", err)
	}

	if width > 0 && width < img.Bounds().Dx() {
		img = imaging.Resize(img, width, 0, imaging.Lanczos)
	}

	var buffer bytes.Buffer
	if err := png.Encode(&buffer, img); err != nil {
		return nil, errInternal("Conversion failed: %v", err)
	}
	return &PageImage{PNG: buffer.Bytes(), SizeBytes: buffer.Len()}, nil
}

// convertPages renders each requested page independently, in the order given
// and without deduplication. A failing page becomes a failure item; it never
// aborts the rest of the batch.
func (serverHandler *ServerHandler) convertPages(pdfData []byte, pages []int, dpi int) []BatchItem {
	results := make([]BatchItem, 0, len(pages))
	for _, page := range pages {
		pageImage, apiErr := serverHandler.convertPage(pdfData, page, dpi, 0)
		if apiErr != nil {
			Logger.Warn("Batch page conversion failed", "page", page, "error", apiErr.message)
			results = append(results, BatchItem{Page: page, Error: apiErr.message})
			continue
		}
		results = append(results, BatchItem{
			Page:        page,
			Success:     true,
			ImageBase64: base64.StdEncoding.EncodeToString(pageImage.PNG),
			SizeBytes:   pageImage.SizeBytes,
		})
	}
	return results
}
