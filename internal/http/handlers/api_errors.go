package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v5"

	"github.com/PlayerIUnknown/aegis-gui/internal/configapi"
)

const (
	sessionExpiredMessage = "Session expired. Please sign in again."
	unexpectedAPIMessage  = "An unexpected error occurred."
	unreachableAPIMessage = "Unable to reach the Config API. Try again shortly."
)

// expireSession ends the session after the Config API rejected its token.
func (h *Handlers) expireSession(c *echo.Context) error {
	if h.Sessions != nil {
		if err := h.Sessions.Destroy(c.Request().Context()); err != nil {
			return err
		}
	}
	h.flash(c, "error", sessionExpiredMessage, "")
	return redirect(c, "/login")
}

// apiErrorMessage is the banner text for a failed Config API call. Transport
// failures are logged and reported generically.
func (h *Handlers) apiErrorMessage(c *echo.Context, err error) string {
	var apiErr *configapi.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Status >= http.StatusInternalServerError {
			h.logAPIError(c, err)
		}
		return apiErr.Message
	}
	h.logAPIError(c, err)
	if errors.Is(err, context.DeadlineExceeded) {
		return unreachableAPIMessage
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) {
		return unreachableAPIMessage
	}
	return unexpectedAPIMessage
}

func (h *Handlers) logAPIError(c *echo.Context, err error) {
	requestID, _ := c.Get(ContextKeyRequestID).(string)
	h.logger().Warn("config api request failed",
		"request_id", requestID,
		"path", c.Request().URL.Path,
		"error", err,
	)
}
