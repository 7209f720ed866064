package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"search-gateway/domain"
	"search-gateway/logger"
)

// ErrorResponse is the body of every error answer.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusFor maps an error to its HTTP status and client-facing message.
func StatusFor(err error) (int, string) {
	var validation *domain.ValidationError
	var httpErr *echo.HTTPError

	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest, validation.Message
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests, "Rate limit exceeded"
	case errors.Is(err, domain.ErrEngineUnavailable):
		return http.StatusInternalServerError, domain.ErrEngineUnavailable.Error()
	case errors.Is(err, domain.ErrStoreUnavailable):
		return http.StatusInternalServerError, domain.ErrStoreUnavailable.Error()
	case errors.As(err, &httpErr):
		msg := http.StatusText(httpErr.Code)
		if m, ok := httpErr.Message.(string); ok && httpErr.Code < 500 {
			msg = m
		}
		return httpErr.Code, msg
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// CustomHTTPErrorHandler renders errors returned by handlers as
// {"error": "..."} and logs server-side failures with the request id.
func CustomHTTPErrorHandler(log *slog.Logger) echo.HTTPErrorHandler {
	cl := logger.NewContextLogger(log)

	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		ctx := c.Request().Context()
		status, msg := StatusFor(err)
		if status >= 500 {
			cl.WithContext(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
		} else {
			cl.WithContext(ctx).DebugContext(ctx, "request rejected", "status", status, "error", err)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, ErrorResponse{Error: msg})
		}
		if err != nil {
			cl.WithContext(ctx).ErrorContext(ctx, "failed to send error response", "error", err)
		}
	}
}
