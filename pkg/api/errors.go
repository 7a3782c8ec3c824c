package api

import (
	"errors"
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/llmail-inject/ctf-control-plane/pkg/auth"
	"github.com/llmail-inject/ctf-control-plane/pkg/services"
)

// errorBody is the JSON shape of every non-2xx response.
type errorBody struct {
	Message string `json:"message"`
	Advice  string `json:"advice"`
	TraceID string `json:"trace_id"`
}

// handleError maps a service-layer error to the HTTP status and body the
// external interface table promises. Unrecognized errors become 500s
// that still carry a trace id for support correlation, matching the
// original's error_handler mixin.
func (s *Server) handleError(c *echo.Context, err error) error {
	traceID := traceIDFromContext(c)

	var ve *services.ValidationError
	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		return respondError(c, http.StatusUnauthorized, "not authenticated", "log in and retry with a valid token", traceID)
	case errors.Is(err, services.ErrNotFound):
		return respondError(c, http.StatusNotFound, "not found", "check the id and try again", traceID)
	case errors.Is(err, services.ErrAlreadyExists):
		return respondError(c, http.StatusConflict, err.Error(), "resolve the conflicting state and retry", traceID)
	case errors.Is(err, services.ErrNotAuthorized):
		return respondError(c, http.StatusForbidden, "not authorized", "you do not have permission to perform this action", traceID)
	case errors.Is(err, services.ErrRateLimited):
		return respondError(c, http.StatusTooManyRequests, "rate limited", "slow down and retry after a short delay", traceID)
	case errors.As(err, &ve):
		return respondError(c, http.StatusBadRequest, ve.Error(), "check the request body and try again", traceID)
	default:
		s.logger.Error("unhandled request error", "error", err, "trace_id", traceID)
		return respondError(c, http.StatusInternalServerError, "internal error", "please report this issue to the competition organizers", traceID)
	}
}

func respondError(c *echo.Context, status int, message, advice, traceID string) error {
	return c.JSON(status, errorBody{Message: message, Advice: advice, TraceID: traceID})
}

func notAuthenticated(c *echo.Context) error {
	return respondError(c, http.StatusUnauthorized, "not authenticated", "log in and retry with a valid token", traceIDFromContext(c))
}

// traceIDFromContext returns the request's correlation id, set by the
// traceID middleware.
func traceIDFromContext(c *echo.Context) string {
	if v, ok := c.Get(traceIDContextKey).(string); ok {
		return v
	}
	return ""
}
