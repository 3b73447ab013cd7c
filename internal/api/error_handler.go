package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/pskiad17/FinancialOrganizer/internal/api/handler"
	"github.com/pskiad17/FinancialOrganizer/internal/core/domain"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status codes.
//   - Logs integrity and unexpected errors without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>", "details": [...]}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, handler.ErrorResponse) {
	// Echo's own errors (router 404, auth middleware, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, handler.ErrorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, handler.ErrorResponse{Error: domain.ErrValidationFailed.Error(), Details: ve.Fields}
	}

	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, handler.ErrorResponse{Error: domain.ErrInvalidCredentials.Error()}
	case errors.Is(err, domain.ErrAccountNotFound):
		return http.StatusBadRequest, handler.ErrorResponse{Error: domain.ErrAccountNotFound.Error()}
	case errors.Is(err, domain.ErrDuplicateEmail):
		return http.StatusBadRequest, handler.ErrorResponse{Error: domain.ErrDuplicateEmail.Error()}
	case errors.Is(err, domain.ErrDuplicateUsername):
		return http.StatusBadRequest, handler.ErrorResponse{Error: domain.ErrDuplicateUsername.Error()}
	case errors.Is(err, domain.ErrValidationFailed):
		return http.StatusBadRequest, handler.ErrorResponse{Error: domain.ErrValidationFailed.Error()}
	}

	// Integrity failures and anything unexpected: log the real cause, return a
	// generic message.
	log.Error().
		Err(err).
		Str("kind", domain.ErrorKind(err)).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("unhandled error")

	return http.StatusInternalServerError, handler.ErrorResponse{Error: "internal server error"}
}
