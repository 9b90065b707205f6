package engine

import (
	"bytes"
	"encoding/json"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

const (
	formatBase64 = "base64"
	formatBinary = "binary"
)

// jsonBody is the JSON request envelope shared by /convert and /convert-batch
type jsonBody struct {
	PDFURL    string `json:"pdf_url"`
	PDFBase64 string `json:"pdf_base64"`
	Page      *int   `json:"page"`
	DPI       *int   `json:"dpi"`
	Format    string `json:"format"`
	Width     *int   `json:"width"`
	Pages     []int  `json:"pages"`
}

// uploadedPDF is a multipart file upload read fully into memory
type uploadedPDF struct {
	data     []byte
	filename string
}

// requestEnvelope normalizes the two request shapes (multipart form, JSON
// body) so the rest of the pipeline never touches echo.Context again.
type requestEnvelope struct {
	upload *uploadedPDF
	form   url.Values
	body   *jsonBody
}

// convertOptions are the resolved scalar options of a conversion request
type convertOptions struct {
	page   int // 1-indexed
	dpi    int
	format string
	width  int   // 0 means keep the rendered size
	pages  []int // batch mode, 1-indexed, caller order
}

// parseEnvelope reads the request exactly once into a normalized envelope.
// Multipart and urlencoded bodies populate the form values (and the optional
// upload); everything else is treated as a JSON body, which may be absent.
func (serverHandler *ServerHandler) parseEnvelope(context echo.Context) (*requestEnvelope, *apiError) {
	envelope := &requestEnvelope{}
	contentType := context.Request().Header.Get(echo.HeaderContentType)

	switch {
	case strings.HasPrefix(contentType, echo.MIMEMultipartForm):
		form, err := context.MultipartForm()
		if err != nil {
			return nil, errBadRequest("invalid multipart form: %v", err)
		}
		envelope.form = url.Values(form.Value)
		if files := form.File["pdf"]; len(files) > 0 {
			fileHeader := files[0]
			file, err := fileHeader.Open()
			if err != nil {
				return nil, errBadRequest("unable to read uploaded file: %v", err)
			}
			defer file.Close()
			data, err := io.ReadAll(file)
			if err != nil {
				return nil, errBadRequest("unable to read uploaded file: %v", err)
			}
			envelope.upload = &uploadedPDF{data: data, filename: fileHeader.Filename}
		}
		return envelope, nil

	case strings.HasPrefix(contentType, echo.MIMEApplicationForm):
		if err := context.Request().ParseForm(); err != nil {
			return nil, errBadRequest("invalid form body: %v", err)
		}
		envelope.form = context.Request().PostForm
		return envelope, nil
	}

	body, err := io.ReadAll(context.Request().Body)
	if err != nil {
		return nil, errBadRequest("unable to read request body: %v", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return envelope, nil
	}
	payload := new(jsonBody)
	if err := json.Unmarshal(body, payload); err != nil {
		return nil, errBadRequest("invalid JSON payload: %v", err)
	}
	envelope.body = payload
	return envelope, nil
}

// resolveOptions produces the typed options for a request with the documented
// priority order: form value > JSON field > default. A DPI above the ceiling
// is clamped rather than rejected; it is a soft resource guard, not a contract
// violation.
func (envelope *requestEnvelope) resolveOptions(maxDPI int) (convertOptions, *apiError) {
	options := convertOptions{page: 1, dpi: 300, format: formatBase64, pages: []int{1}}

	if envelope.body != nil {
		if envelope.body.Page != nil {
			options.page = *envelope.body.Page
		}
		if envelope.body.DPI != nil {
			options.dpi = *envelope.body.DPI
		}
		if envelope.body.Format != "" {
			options.format = envelope.body.Format
		}
		if envelope.body.Width != nil {
			options.width = *envelope.body.Width
		}
		if len(envelope.body.Pages) > 0 {
			options.pages = append([]int(nil), envelope.body.Pages...)
		}
	}

	// Form values win over the JSON body
	var apiErr *apiError
	if value := envelope.form.Get("page"); value != "" {
		if options.page, apiErr = parseIntOption("page", value); apiErr != nil {
			return options, apiErr
		}
	}
	if value := envelope.form.Get("dpi"); value != "" {
		if options.dpi, apiErr = parseIntOption("dpi", value); apiErr != nil {
			return options, apiErr
		}
	}
	if value := envelope.form.Get("width"); value != "" {
		if options.width, apiErr = parseIntOption("width", value); apiErr != nil {
			return options, apiErr
		}
	}
	if value := envelope.form.Get("format"); value != "" {
		options.format = value
	}

	if options.format != formatBase64 && options.format != formatBinary {
		return options, errBadRequest("format must be %q or %q", formatBase64, formatBinary)
	}
	if options.page < 1 {
		return options, errBadRequest("page must be a positive integer")
	}
	if options.dpi < 1 {
		return options, errBadRequest("dpi must be a positive integer")
	}
	if options.width < 0 {
		return options, errBadRequest("width must not be negative")
	}
	if options.dpi > maxDPI {
		options.dpi = maxDPI
	}
	return options, nil
}

func parseIntOption(name, value string) (int, *apiError) {
	number, err := strconv.Atoi(value)
	if err != nil {
		return 0, errBadRequest("invalid %s value: %q", name, value)
	}
	return number, nil
}
