package http

import (
	"errors"
	"log/slog"
	"net/http"

	"ecodeli/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable,omitempty"`
}

type errorMapping struct {
	target error
	status int
	code   string
}

// Checked in order: a joined error matching several sentinels gets the first.
var errorMappings = []errorMapping{
	{errs.ErrObjectNotFound, http.StatusNotFound, "not_found"},
	{errs.ErrPermissionDenied, http.StatusForbidden, "permission_denied"},
	{errs.ErrConcurrentModification, http.StatusConflict, "concurrent_modification"},
	{errs.ErrInvalidTransition, http.StatusConflict, "invalid_transition"},
	{errs.ErrInvalidConfirmationCode, http.StatusUnprocessableEntity, "invalid_confirmation_code"},
	{errs.ErrTrackingDisabled, http.StatusConflict, "tracking_disabled"},
	{errs.ErrCapacityExceeded, http.StatusConflict, "capacity_exceeded"},
}

// StatusFor maps an application error to its HTTP status and error code.
func StatusFor(err error) (int, string) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.status, m.code
		}
	}
	if errs.IsValidation(err) {
		return http.StatusBadRequest, "validation_failed"
	}
	return http.StatusInternalServerError, "internal"
}

// NewHTTPErrorHandler renders application errors as ErrorResponse. Server
// errors are logged and their details withheld from the client.
func NewHTTPErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	logger = logger.With("component", "http")

	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var echoErr *echo.HTTPError
		if errors.As(err, &echoErr) {
			resp := ErrorResponse{Code: "request_rejected", Message: http.StatusText(echoErr.Code)}
			if msg, ok := echoErr.Message.(string); ok {
				resp.Message = msg
			}
			writeError(c, logger, echoErr.Code, resp)
			return
		}

		status, code := StatusFor(err)
		resp := ErrorResponse{Code: code, Message: err.Error(), Retryable: errs.IsRetryable(err)}
		if status >= http.StatusInternalServerError {
			logger.ErrorContext(c.Request().Context(), "request failed",
				"method", c.Request().Method,
				"path", c.Path(),
				"error", err,
			)
			resp.Message = http.StatusText(status)
		}
		writeError(c, logger, status, resp)
	}
}

func writeError(c echo.Context, logger *slog.Logger, status int, resp ErrorResponse) {
	var err error
	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, resp)
	}
	if err != nil {
		logger.ErrorContext(c.Request().Context(), "failed to write error response", "error", err)
	}
}
