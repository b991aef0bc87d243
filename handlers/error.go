package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/EcoTrackAI/ecotrackai-dashboard-sub000/repositories/base"
	"github.com/EcoTrackAI/ecotrackai-dashboard-sub000/utils"

	"github.com/labstack/echo/v4"
)

var errorLogger *slog.Logger

// SetErrorLogger sets the logger for the central error handler.
func SetErrorLogger(logger *slog.Logger) {
	errorLogger = logger.With("component", "error_handler")
}

// statusForError maps the repository error taxonomy to HTTP status codes:
// validation failures are the caller's fault, unreachable or failing stores
// are 503 so clients can distinguish them from bugs, everything else is 500.
func statusForError(err error) int {
	switch {
	case base.IsValidationError(err):
		return http.StatusBadRequest
	case base.IsEntityNotFound(err):
		return http.StatusNotFound
	case base.IsUnavailable(err):
		return http.StatusServiceUnavailable
	default:
		var repoErr *base.RepositoryError
		if errors.As(err, &repoErr) {
			return http.StatusServiceUnavailable
		}
		return http.StatusInternalServerError
	}
}

// CustomHTTPErrorHandler catches errors that escape the handlers themselves,
// such as routing errors from echo. Internal details are logged, never leaked.
func CustomHTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	if httpErr, ok := err.(*echo.HTTPError); ok {
		message := http.StatusText(httpErr.Code)
		if s, ok := httpErr.Message.(string); ok {
			message = s
		}
		c.JSON(httpErr.Code, utils.ErrorMessage(message))
		return
	}

	if errorLogger != nil {
		errorLogger.Error("Unhandled error occurred", slog.Any("error", err))
	}
	c.JSON(http.StatusInternalServerError, utils.ErrorMessage("An unexpected internal error occurred."))
}
