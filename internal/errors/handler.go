package errors

import (
	"log/slog"
	"net/http"
)

// ErrorHandler centralizes the mapping of service errors onto HTTP responses
// so handlers never hand-roll status codes.
type ErrorHandler struct {
	logger *slog.Logger
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *slog.Logger) *ErrorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ErrorHandler{logger: logger}
}

// HandleError writes the appropriate error response for err.
// *APIError values pass through unchanged; *AppError values are mapped via
// FromAppError; anything else becomes a generic 500.
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := h.toAPIError(err)

	if apiErr.StatusCode >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "request failed",
			slog.String("error", err.Error()),
			slog.String("error_code", apiErr.ErrorCode),
			slog.Int("status", apiErr.StatusCode),
			slog.String("path", r.URL.Path),
		)
	} else {
		h.logger.WarnContext(r.Context(), "request rejected",
			slog.String("error", err.Error()),
			slog.String("error_code", apiErr.ErrorCode),
			slog.Int("status", apiErr.StatusCode),
			slog.String("path", r.URL.Path),
		)
	}

	WriteError(w, apiErr)
}

func (h *ErrorHandler) toAPIError(err error) *APIError {
	switch e := err.(type) {
	case *APIError:
		return e
	case *AppError:
		return FromAppError(e)
	default:
		return ErrInternalServer
	}
}
