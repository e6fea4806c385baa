package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/vidstream/account-service/internal/core/domain"
)

// errorResponse mirrors the success envelope with data pinned to null and an
// optional detail list for validation failures.
type errorResponse struct {
	StatusCode int      `json:"statusCode"`
	Data       any      `json:"data"`
	Message    string   `json:"message"`
	Success    bool     `json:"success"`
	Errors     []string `json:"errors,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Renders domain errors with their own status, message and detail list.
//   - Maps Echo's errors (bind failures, 404 from router) into the envelope.
//   - Logs unexpected errors internally without leaking details to the client.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg, details := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{
			StatusCode: code,
			Data:       nil,
			Message:    msg,
			Success:    false,
			Errors:     details,
		})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string, []string) {
	// The domain taxonomy is the sole error vocabulary the API exposes.
	var de *domain.Error
	if errors.As(err, &de) {
		return de.Status, de.Message, de.Errs
	}

	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message), nil
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "Internal server error", nil
}
