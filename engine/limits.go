package engine

// validatePDF enforces the document size ceiling before any rendering work
func (serverHandler *ServerHandler) validatePDF(pdfData []byte) *apiError {
	if len(pdfData) == 0 {
		return errBadRequest("No PDF data received")
	}
	maxBytes := serverHandler.ServerConfig.MaxPDFBytes
	if int64(len(pdfData)) > maxBytes {
		return errBadRequest("PDF file too large. Maximum size: %dMB", maxBytes>>20)
	}
	return nil
}

// validatePages rejects a batch outright when it asks for too many pages.
// Silently dropping pages would corrupt the caller's expected response shape,
// so unlike DPI this ceiling is a hard error.
func (serverHandler *ServerHandler) validatePages(pages []int) *apiError {
	maxPages := serverHandler.ServerConfig.MaxBatchPages
	if len(pages) == 0 {
		return errBadRequest("pages must not be empty")
	}
	if len(pages) > maxPages {
		return errBadRequest("Maximum %d pages allowed in batch mode", maxPages)
	}
	for _, page := range pages {
		if page < 1 {
			return errBadRequest("page numbers must be positive integers")
		}
	}
	return nil
}
