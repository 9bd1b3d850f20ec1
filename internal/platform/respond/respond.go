package respond

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/oncoserve/oncoserve/internal/platform/apperrors"
)

// Envelope is the uniform JSON wrapper returned by every endpoint.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// OK writes a 200 success envelope.
func OK(c echo.Context, data interface{}, message string) error {
	return c.JSON(http.StatusOK, Envelope{Success: true, Data: data, Message: message})
}

// Created writes a 201 success envelope with the materialized record.
func Created(c echo.Context, data interface{}, message string) error {
	return c.JSON(http.StatusCreated, Envelope{Success: true, Data: data, Message: message})
}

// ErrorHandler returns an echo HTTPErrorHandler that maps the error taxonomy
// to the envelope. Internal error text and stack content never reach the
// caller: Storage and Unknown errors are logged server-side and surfaced as a
// generic message.
func ErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		appErr := apperrors.From(err)

		// echo's own errors (404 on unknown routes, 405, body limit) arrive
		// as *echo.HTTPError; map them without reclassifying.
		if httpErr, ok := err.(*echo.HTTPError); ok {
			msg := http.StatusText(httpErr.Code)
			if s, ok := httpErr.Message.(string); ok && httpErr.Code < http.StatusInternalServerError {
				msg = s
			}
			_ = c.JSON(httpErr.Code, Envelope{Success: false, Error: msg})
			return
		}

		status := apperrors.HTTPStatus(appErr.Kind)
		body := Envelope{Success: false, Error: appErr.Message}

		if appErr.Kind == apperrors.Validation {
			body.Details = appErr.Violations
		}

		if status >= http.StatusInternalServerError {
			logger.Error().
				Err(err).
				Str("kind", string(appErr.Kind)).
				Str("path", c.Request().URL.Path).
				Msg("request failed")
			body.Error = "internal server error"
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, body)
	}
}
