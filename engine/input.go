package engine

import (
	"encoding/base64"
	"errors"
	"io"
	"net"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Downloader fetches remote PDFs with a bounded timeout
type Downloader struct {
	HTTPClient *http.Client
	MaxBytes   int64
}

// NewDownloader creates a download client for URL-sourced PDFs. Reads are
// capped at maxBytes+1 so the size ceiling can reject oversized documents
// without buffering them fully.
func NewDownloader(timeout time.Duration, maxBytes int64) *Downloader {
	return &Downloader{
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
		MaxBytes: maxBytes,
	}
}

// FetchPDF downloads a PDF from the given URL. The response must be a 200 and
// must look like a PDF (content type or URL suffix); anything else is a
// caller error, a timeout maps to 408.
func (downloader *Downloader) FetchPDF(rawURL string) ([]byte, *apiError) {
	response, err := downloader.HTTPClient.Get(rawURL)
	if err != nil {
		if isTimeout(err) {
			return nil, errTimeout("Timeout downloading PDF from URL")
		}
		return nil, errBadRequest("Failed to download PDF: %v", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, errBadRequest("Failed to download PDF: HTTP %d", response.StatusCode)
	}

	contentType := strings.ToLower(response.Header.Get("Content-Type"))
	if !strings.Contains(contentType, "pdf") && !strings.HasSuffix(strings.ToLower(rawURL), ".pdf") {
		Logger.Warn("Rejecting URL download, response does not look like a PDF", "url", rawURL, "contentType", contentType)
		return nil, errBadRequest("URL does not point to a PDF file")
	}

	data, err := io.ReadAll(io.LimitReader(response.Body, downloader.MaxBytes+1))
	if err != nil {
		if isTimeout(err) {
			return nil, errTimeout("Timeout downloading PDF from URL")
		}
		return nil, errBadRequest("Failed to download PDF: %v", err)
	}
	return data, nil
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// resolvePDF picks the PDF source of the request in priority order: multipart
// upload, then pdf_url, then pdf_base64. Exactly one source is honored.
// Returns the document bytes plus the filename base used for the output file.
func (serverHandler *ServerHandler) resolvePDF(envelope *requestEnvelope) ([]byte, string, *apiError) {
	switch {
	case envelope.upload != nil:
		filename := envelope.upload.filename
		if !strings.HasSuffix(strings.ToLower(filename), ".pdf") {
			return nil, "", errBadRequest("File must be a PDF")
		}
		base := sanitizeFilename(filename[:len(filename)-len(".pdf")])
		return envelope.upload.data, base, nil

	case envelope.body != nil && envelope.body.PDFURL != "":
		data, apiErr := serverHandler.Downloader.FetchPDF(envelope.body.PDFURL)
		if apiErr != nil {
			return nil, "", apiErr
		}
		return data, "url_pdf_" + newFileID(), nil

	case envelope.body != nil && envelope.body.PDFBase64 != "":
		data, err := base64.StdEncoding.DecodeString(envelope.body.PDFBase64)
		if err != nil {
			return nil, "", errBadRequest("Invalid base64 PDF data")
		}
		return data, "base64_pdf_" + newFileID(), nil
	}
	return nil, "", errBadRequest("No PDF provided. Use file upload, pdf_url, or pdf_base64")
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// sanitizeFilename strips path-unsafe characters from an uploaded filename
func sanitizeFilename(name string) string {
	name = unsafeFilenameChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._-")
	if name == "" {
		return "converted_page"
	}
	return name
}

// newFileID generates a collision-safe identifier for URL/base64 sources,
// which carry no usable filename of their own
func newFileID() string {
	return strings.ToLower(ulid.Make().String())
}
