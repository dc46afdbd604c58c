package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/safeledger/dashboard/internal/api/middleware"
	"github.com/safeledger/dashboard/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status codes.
//   - Answers unauthenticated requests with {"authenticated": false} instead of an error.
//     A rejected login still carries its message.
//   - Logs unexpected errors internally without leaking details to the client.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if code == http.StatusUnauthorized && msg == "" {
			_ = c.JSON(code, middleware.Unauthenticated{})
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

	// Backend rejections of mutations carry their own message and status.
	var me *domain.MutationError
	if errors.As(err, &me) {
		return mutationStatus(me.Status), me.Message
	}

	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, ""
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "access forbidden"
	case errors.Is(err, domain.ErrScopeLocked):
		return http.StatusForbidden, domain.ErrScopeLocked.Error()
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidScope):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrScopeSuperseded):
		return http.StatusConflict, domain.ErrScopeSuperseded.Error()
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not found"
	}

	var be *domain.BackendError
	if errors.As(err, &be) {
		switch {
		case be.Redirected(), be.Status == http.StatusUnauthorized:
			return http.StatusUnauthorized, ""
		case be.Status == http.StatusForbidden:
			return http.StatusForbidden, "access forbidden"
		case be.Status == http.StatusNotFound:
			return http.StatusNotFound, "not found"
		}
		log.Warn().Err(err).Str("path", c.Path()).Msg("ledger backend error")
		return http.StatusBadGateway, "ledger backend error"
	}
	if errors.Is(err, domain.ErrBackendUnavailable) || errors.Is(err, domain.ErrMalformedResponse) {
		log.Warn().Err(err).Str("path", c.Path()).Msg("ledger backend error")
		return http.StatusBadGateway, "ledger backend error"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}

// mutationStatus keeps client errors as the backend reported them and turns any
// backend-side failure into a gateway error.
func mutationStatus(status int) int {
	if status >= 400 && status < 500 {
		return status
	}
	return http.StatusBadGateway
}
