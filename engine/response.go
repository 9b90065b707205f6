package engine

import (
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// convertResponse is the base64 JSON body for /convert
type convertResponse struct {
	Success     bool   `json:"success"`
	ImageBase64 string `json:"image_base64"`
	Filename    string `json:"filename"`
	Page        int    `json:"page"`
	DPI         int    `json:"dpi"`
	Format      string `json:"format"`
	SizeBytes   int    `json:"size_bytes"`
}

// batchResponse is the envelope for /convert-batch. Success refers to the
// batch request itself; callers must inspect the per-item flags.
type batchResponse struct {
	Success    bool        `json:"success"`
	Results    []BatchItem `json:"results"`
	TotalPages int         `json:"total_pages"`
}

// writeImage shapes the conversion result per the requested response format:
// a file attachment for "binary", the base64 JSON body otherwise.
func writeImage(context echo.Context, pageImage *PageImage, filenameBase string, page, dpi int, format string) error {
	filename := fmt.Sprintf("%s_page_%d.png", filenameBase, page)

	if format == formatBinary {
		context.Response().Header().Set(echo.HeaderContentDisposition,
			fmt.Sprintf("attachment; filename=%q", filename))
		return context.Blob(http.StatusOK, "image/png", pageImage.PNG)
	}

	return context.JSON(http.StatusOK, convertResponse{
		Success:     true,
		ImageBase64: base64.StdEncoding.EncodeToString(pageImage.PNG),
		Filename:    filename,
		Page:        page,
		DPI:         dpi,
		Format:      "PNG",
		SizeBytes:   pageImage.SizeBytes,
	})
}
