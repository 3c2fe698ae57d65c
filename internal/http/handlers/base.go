// Package handlers contains HTTP handler logic split by domain.
package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/alexedwards/scs/v2"
	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"

	"github.com/PlayerIUnknown/aegis-gui/internal/auth"
	"github.com/PlayerIUnknown/aegis-gui/internal/config"
	"github.com/PlayerIUnknown/aegis-gui/internal/configapi"
	"github.com/PlayerIUnknown/aegis-gui/internal/http/authn"
	"github.com/PlayerIUnknown/aegis-gui/internal/http/viewmodels"
)

const (
	// ContextKeyRequestID stores the request id (X-Request-ID) for logging and client error references.
	ContextKeyRequestID = "request_id"

	// InternalErrorCode is a stable error code safe to return to clients.
	InternalErrorCode = "INTERNAL_ERROR"
)

// ConfigAPI is the subset of the Config API client the handlers use.
type ConfigAPI interface {
	Login(ctx context.Context, email, password string) (configapi.AuthResponse, error)
	Register(ctx context.Context, name, email, password string) (configapi.AuthResponse, error)
	DashboardSummary(ctx context.Context, token string) (configapi.DashboardSummary, error)
	Scans(ctx context.Context, token string, limit, offset int) (configapi.ScanListResponse, error)
	ScanDetails(ctx context.Context, token, scanID string) (configapi.ScanDetailsResponse, error)
	TenantProfile(ctx context.Context, token string) (configapi.TenantProfile, error)
	UpdateQualityGates(ctx context.Context, token string, update configapi.QualityGateUpdate) (configapi.QualityGateUpdateResponse, error)
	BaseURL() string
}

// Handlers groups all HTTP handlers and shared dependencies.
type Handlers struct {
	Cfg      config.Config
	API      ConfigAPI
	Sessions *scs.SessionManager
	Details  *DetailsCache
	Logger   *slog.Logger
}

func (h *Handlers) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func csrfToken(c *echo.Context) string {
	token, _ := c.Get(middleware.DefaultCSRFConfig.ContextKey).(string)
	return token
}

// principal returns the session principal set by authn.RequireSession.
func principal(c *echo.Context) auth.Principal {
	p, _ := authn.PrincipalFromContext(c)
	return p
}

// LayoutData builds the common layout data for page rendering.
func (h *Handlers) LayoutData(c *echo.Context, title string) viewmodels.LayoutData {
	p := principal(c)
	return viewmodels.LayoutData{
		Title:      title,
		CSRFToken:  csrfToken(c),
		UserEmail:  p.Email,
		TenantID:   p.TenantID,
		OwnerName:  p.Name,
		ActivePath: c.Request().URL.Path,
		CurrentURL: c.Request().URL.RequestURI(),
		Toast:      popFlashToast(c),
	}
}

// RenderComponent renders a templ component as the response.
func (h *Handlers) RenderComponent(c *echo.Context, component templ.Component) error {
	c.Response().Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := component.Render(c.Request().Context(), c.Response()); err != nil {
		return h.RenderError(c, err)
	}
	return nil
}

// RenderError returns a plain text error response.
func (h *Handlers) RenderError(c *echo.Context, err error) error {
	requestID, _ := c.Get(ContextKeyRequestID).(string)
	path := ""
	if req := c.Request(); req != nil && req.URL != nil {
		path = req.URL.Path
	}
	method := ""
	if req := c.Request(); req != nil {
		method = req.Method
	}
	c.Logger().Error("http error",
		"request_id", requestID,
		"method", method,
		"path", path,
		"ip", c.RealIP(),
		"error", err,
	)

	msg := "Internal server error."
	if requestID != "" {
		msg = fmt.Sprintf("%s Reference: %s.", msg, requestID)
	}
	msg = fmt.Sprintf("%s Code: %s.", msg, InternalErrorCode)
	return c.String(http.StatusInternalServerError, msg)
}

// RenderNotFound returns a 404 response.
func RenderNotFound(c *echo.Context) error {
	return c.String(http.StatusNotFound, "404 page not found")
}

// ParseBoolForm parses a form value as a boolean.
func ParseBoolForm(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
