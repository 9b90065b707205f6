package engine

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// apiError carries the HTTP status a failure should map to at the route
// boundary, so route code never has to string-match error text.
type apiError struct {
	status  int
	message string
}

func (e *apiError) Error() string {
	return e.message
}

func errBadRequest(format string, args ...any) *apiError {
	return &apiError{status: http.StatusBadRequest, message: fmt.Sprintf(format, args...)}
}

func errTimeout(format string, args ...any) *apiError {
	return &apiError{status: http.StatusRequestTimeout, message: fmt.Sprintf(format, args...)}
}

func errInternal(format string, args ...any) *apiError {
	return &apiError{status: http.StatusInternalServerError, message: fmt.Sprintf(format, args...)}
}

// respondError writes the JSON error body used by every route.
func respondError(context echo.Context, apiErr *apiError) error {
	return context.JSON(apiErr.status, map[string]string{"error": apiErr.message})
}
