package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/tableserve/pos-portal/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors. Code is
// the stable machine-readable taxonomy member; Error is the human message.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps the scoping taxonomy and known domain errors to deterministic
//     HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>", "code": "<CODE>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := resolveError(err, log, c)
		_ = c.JSON(status, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	// Scoping taxonomy → deterministic codes. Conflict never appears here:
	// CAS races are absorbed inside the device service.
	var authErr *domain.AuthorizationError
	if errors.As(err, &authErr) {
		return http.StatusForbidden, errorResponse{Error: authErr.Reason, Code: domain.CodeAuthorization}
	}
	var scopeErr *domain.ScopeError
	if errors.As(err, &scopeErr) {
		return http.StatusForbidden, errorResponse{Error: scopeErr.Reason, Code: domain.CodeScope}
	}
	var valErr *domain.ValidationError
	if errors.As(err, &valErr) {
		return http.StatusBadRequest, errorResponse{Error: valErr.Reason, Code: domain.CodeValidation}
	}

	switch {
	case errors.Is(err, domain.ErrDeviceNotFound):
		return http.StatusNotFound, errorResponse{Error: "device not found"}
	case errors.Is(err, domain.ErrCategoryNotFound):
		return http.StatusNotFound, errorResponse{Error: "category not found"}
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, errorResponse{Error: "invalid credentials"}
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, errorResponse{Error: "user not found"}
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, errorResponse{Error: "user already exists"}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Error: "internal server error"}
}
