package http

import (
	"context"
	"log/slog"
	"net/http"

	"fulfillment/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// Error is the body of every failed response.
type Error struct {
	Code    int    `json:"code"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message"`
}

func statusFor(kind errs.Kind) int {
	switch kind {
	case errs.KindNotFound:
		return http.StatusNotFound
	case errs.KindValidation, errs.KindStateGuard:
		return http.StatusBadRequest
	case errs.KindConflict:
		return http.StatusConflict
	case errs.KindInvariant, errs.KindInternal:
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}

// respondError classifies err and writes it. Internal errors and invariant
// violations are logged and reach the caller only as "Internal error".
func (s *Server) respondError(c echo.Context, err error) error {
	kind := errs.Classify(err)
	message := errs.Message(err)

	switch kind {
	case errs.KindInvariant:
		s.logger.ErrorContext(requestContext(c), "invariant violation",
			"invariant_violation", true, "path", c.Path(), "error", err)
		message = "Internal error"
	case errs.KindInternal:
		s.logger.ErrorContext(requestContext(c), "request failed", "path", c.Path(), "error", err)
		message = "Internal error"
	case errs.KindNotFound, errs.KindValidation, errs.KindStateGuard, errs.KindConflict:
	}

	return writeError(c, statusFor(kind), kind.String(), message)
}

func writeError(c echo.Context, status int, kind, message string) error {
	return c.JSON(status, Error{Code: status, Kind: kind, Message: message})
}

func requestContext(c echo.Context) context.Context {
	return c.Request().Context()
}

// slogHTTPErrorHandler keeps echo's own errors (404 routes, 429 from the rate
// limiter, bind failures) in the same body shape as ours.
func slogHTTPErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		message := "Internal error"
		if he, ok := err.(*echo.HTTPError); ok { //nolint:errorlint // echo returns it unwrapped
			status = he.Code
			if m, isString := he.Message.(string); isString {
				message = m
			} else {
				message = http.StatusText(status)
			}
		} else {
			logger.ErrorContext(requestContext(c), "unhandled error", "path", c.Path(), "error", err)
		}

		if writeErr := writeError(c, status, http.StatusText(status), message); writeErr != nil {
			logger.ErrorContext(requestContext(c), "write error response", "error", writeErr)
		}
	}
}
