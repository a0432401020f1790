package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ambulink/dispatch-core/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrEmergencyNotPending),
		errors.Is(err, domain.ErrUnitNotAvailable),
		errors.Is(err, domain.ErrUnitEngaged),
		errors.Is(err, domain.ErrVersionConflict),
		errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict, err.Error()
	case errors.Is(err, domain.ErrOperationCancelled):
		return http.StatusConflict, "operation cancelled"
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrOutOfRange),
		errors.Is(err, domain.ErrNotAssigned),
		errors.Is(err, domain.ErrInvalidInput):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, domain.ErrPermissionDenied):
		return http.StatusForbidden, "location permission denied"
	case errors.Is(err, domain.ErrSourceUnavailable),
		errors.Is(err, domain.ErrUnsupported):
		log.Warn().Err(err).Str("path", c.Path()).Msg("location source failure")
		return http.StatusServiceUnavailable, "location source unavailable"
	case errors.Is(err, domain.ErrTimedOut),
		errors.Is(err, domain.ErrNoFixAvailable):
		return http.StatusGatewayTimeout, err.Error()
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
