package engine

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/dhauru/pdf-to-image-api/config"
	"github.com/dhauru/pdf-to-image-api/engine/pdfrenderer"
	"github.com/dhauru/pdf-to-image-api/internal/build"
)

// Logger is injected from main so all packages share one logger
var Logger *slog.Logger

// ServerHandler will inject the variables needed into routes
type ServerHandler struct {
	Echo         *echo.Echo
	Renderer     pdfrenderer.Renderer
	Downloader   *Downloader
	ServerConfig config.ServerConfig
}

// HealthCheck reports service liveness
// @Summary Health check
// @Description Liveness probe for workflow-automation callers
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string "Service status"
// @Router /health [get]
func (serverHandler *ServerHandler) HealthCheck(context echo.Context) error {
	return context.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"message": "PDF to Image API is running",
		"version": build.Version,
	})
}

// ConvertPDF converts a single PDF page to a PNG image
// @Summary Convert a PDF page to PNG
// @Description Accepts a PDF via multipart upload (field "pdf"), pdf_url, or pdf_base64 and returns one page rendered as PNG
// @Tags Conversion
// @Accept multipart/form-data
// @Accept json
// @Produce json
// @Produce image/png
// @Param page formData int false "Page number, 1-indexed (default 1)"
// @Param dpi formData int false "Render resolution (default 300, ceiling 400)"
// @Param format formData string false "Response format: base64 or binary (default base64)"
// @Success 200 {object} convertResponse "Rendered page"
// @Failure 400 {object} map[string]string "Bad input, oversized PDF, or page out of range"
// @Failure 408 {object} map[string]string "Timeout downloading PDF"
// @Failure 500 {object} map[string]string "Render failure"
// @Router /convert [post]
func (serverHandler *ServerHandler) ConvertPDF(context echo.Context) error {
	envelope, apiErr := serverHandler.parseEnvelope(context)
	if apiErr != nil {
		return respondError(context, apiErr)
	}
	options, apiErr := envelope.resolveOptions(serverHandler.ServerConfig.MaxDPI)
	if apiErr != nil {
		return respondError(context, apiErr)
	}

	pdfData, filenameBase, apiErr := serverHandler.resolvePDF(envelope)
	if apiErr != nil {
		return respondError(context, apiErr)
	}
	if apiErr = serverHandler.validatePDF(pdfData); apiErr != nil {
		return respondError(context, apiErr)
	}

	pageImage, apiErr := serverHandler.convertPage(pdfData, options.page, options.dpi, options.width)
	if apiErr != nil {
		Logger.Error("Page conversion failed", "page", options.page, "dpi", options.dpi, "error", apiErr.message)
		return respondError(context, apiErr)
	}

	Logger.Info("Converted PDF page",
		"page", options.page,
		"dpi", options.dpi,
		"format", options.format,
		"pdfBytes", len(pdfData),
		"imageBytes", pageImage.SizeBytes)
	return writeImage(context, pageImage, filenameBase, options.page, options.dpi, options.format)
}

// ConvertPDFBatch converts up to MaxBatchPages pages in one request
// @Summary Convert multiple PDF pages to PNG
// @Description Renders each requested page independently; a failing page becomes a failure item instead of aborting the batch
// @Tags Conversion
// @Accept json
// @Produce json
// @Success 200 {object} batchResponse "Per-page results in request order"
// @Failure 400 {object} map[string]string "Bad input or too many pages"
// @Failure 500 {object} map[string]string "Batch-level failure"
// @Router /convert-batch [post]
func (serverHandler *ServerHandler) ConvertPDFBatch(context echo.Context) error {
	envelope, apiErr := serverHandler.parseEnvelope(context)
	if apiErr != nil {
		return respondError(context, apiErr)
	}
	if envelope.body == nil {
		return respondError(context, errBadRequest("JSON payload required"))
	}
	options, apiErr := envelope.resolveOptions(serverHandler.ServerConfig.MaxDPI)
	if apiErr != nil {
		return respondError(context, apiErr)
	}

	// Page-count ceiling is checked before any download or rendering work
	if apiErr = serverHandler.validatePages(options.pages); apiErr != nil {
		return respondError(context, apiErr)
	}

	pdfData, _, apiErr := serverHandler.resolvePDF(envelope)
	if apiErr != nil {
		return respondError(context, apiErr)
	}
	if apiErr = serverHandler.validatePDF(pdfData); apiErr != nil {
		return respondError(context, apiErr)
	}

	results := serverHandler.convertPages(pdfData, options.pages, options.dpi)
	Logger.Info("Converted PDF batch", "pages", len(results), "dpi", options.dpi)
	return context.JSON(http.StatusOK, batchResponse{
		Success:    true,
		Results:    results,
		TotalPages: len(results),
	})
}

// TestWebhook echoes the request payload and headers back to the caller, for
// verifying webhook wiring in workflow tools
// @Summary Echo a webhook payload
// @Description Returns the received JSON body and request headers
// @Tags Health
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{} "Echoed payload"
// @Router /test-webhook [post]
func (serverHandler *ServerHandler) TestWebhook(context echo.Context) error {
	var payload any
	if err := json.NewDecoder(context.Request().Body).Decode(&payload); err != nil {
		payload = nil
	}

	headers := make(map[string]string, len(context.Request().Header))
	for name, values := range context.Request().Header {
		headers[name] = strings.Join(values, ", ")
	}

	return context.JSON(http.StatusOK, map[string]any{
		"message": "Webhook received successfully",
		"data":    payload,
		"headers": headers,
	})
}

// RegisterRoutes attaches all API routes to the echo instance
func (serverHandler *ServerHandler) RegisterRoutes() {
	serverHandler.Echo.GET("/health", serverHandler.HealthCheck)
	serverHandler.Echo.POST("/convert", serverHandler.ConvertPDF)
	serverHandler.Echo.POST("/convert-batch", serverHandler.ConvertPDFBatch)
	serverHandler.Echo.POST("/test-webhook", serverHandler.TestWebhook)
}
