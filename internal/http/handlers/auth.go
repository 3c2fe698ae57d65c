package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v5"

	"github.com/PlayerIUnknown/aegis-gui/internal/auth"
	"github.com/PlayerIUnknown/aegis-gui/internal/configapi"
	"github.com/PlayerIUnknown/aegis-gui/internal/http/authn"
	"github.com/PlayerIUnknown/aegis-gui/internal/http/viewmodels"
	"github.com/PlayerIUnknown/aegis-gui/internal/http/views"
)

const (
	missingCredentialsMessage = "Please provide both an email and password to continue."
	passwordMismatchMessage   = "Passwords do not match."
)

var errSessionsNotConfigured = errors.New("auth sessions not configured")

func (h *Handlers) HandleLoginGet(c *echo.Context) error {
	if h.Sessions == nil {
		return errSessionsNotConfigured
	}
	if _, ok := authn.LoadPrincipal(c, h.Sessions); ok {
		return c.Redirect(http.StatusSeeOther, "/")
	}

	mode := viewmodels.LoginModeSignIn
	if strings.EqualFold(strings.TrimSpace(c.QueryParam("mode")), viewmodels.LoginModeSignUp) {
		mode = viewmodels.LoginModeSignUp
	}
	data := viewmodels.LoginViewData{
		CSRFToken: csrfToken(c),
		Mode:      mode,
		Next:      authn.SanitizeNext(c.QueryParam("next")),
		Toast:     popFlashToast(c),
	}
	return h.RenderComponent(c, views.LoginPage(data))
}

func (h *Handlers) HandleLoginPost(c *echo.Context) error {
	if h.Sessions == nil {
		return errSessionsNotConfigured
	}

	email := auth.NormalizeEmail(c.FormValue("email"))
	password := c.FormValue("password")
	data := viewmodels.LoginViewData{
		CSRFToken: csrfToken(c),
		Mode:      viewmodels.LoginModeSignIn,
		Email:     email,
		Next:      authn.SanitizeNext(c.FormValue("next")),
	}

	if email == "" || strings.TrimSpace(password) == "" {
		data.ErrorMessage = missingCredentialsMessage
		return h.RenderComponent(c, views.LoginPage(data))
	}

	resp, err := h.API.Login(c.Request().Context(), email, password)
	if err != nil {
		data.ErrorMessage = h.apiErrorMessage(c, err)
		return h.RenderComponent(c, views.LoginPage(data))
	}
	if err := h.signIn(c, resp, email, ""); err != nil {
		return err
	}

	if data.Next != "" {
		return c.Redirect(http.StatusSeeOther, data.Next)
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handlers) HandleRegisterPost(c *echo.Context) error {
	if h.Sessions == nil {
		return errSessionsNotConfigured
	}

	name := strings.TrimSpace(c.FormValue("name"))
	email := auth.NormalizeEmail(c.FormValue("email"))
	password := c.FormValue("password")
	data := viewmodels.LoginViewData{
		CSRFToken: csrfToken(c),
		Mode:      viewmodels.LoginModeSignUp,
		Email:     email,
		Name:      name,
		Next:      authn.SanitizeNext(c.FormValue("next")),
	}

	switch {
	case email == "" || strings.TrimSpace(password) == "":
		data.ErrorMessage = missingCredentialsMessage
	case password != c.FormValue("confirm_password"):
		data.ErrorMessage = passwordMismatchMessage
	}
	if data.ErrorMessage != "" {
		return h.RenderComponent(c, views.LoginPage(data))
	}

	resp, err := h.API.Register(c.Request().Context(), name, email, password)
	if err != nil {
		data.ErrorMessage = h.apiErrorMessage(c, err)
		return h.RenderComponent(c, views.LoginPage(data))
	}
	if err := h.signIn(c, resp, email, name); err != nil {
		return err
	}

	h.flash(c, "success", "Account created", "Connect a repository from the Setup tab to start ingesting scans.")
	if data.Next != "" {
		return c.Redirect(http.StatusSeeOther, data.Next)
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handlers) signIn(c *echo.Context, resp configapi.AuthResponse, email, name string) error {
	return authn.StorePrincipal(c, h.Sessions, auth.Principal{
		Token:     resp.AccessToken,
		TenantID:  resp.TenantID,
		Email:     email,
		Name:      name,
		ExpiresAt: auth.ExpiresAtFrom(time.Now(), resp.ExpiresIn),
	})
}

func (h *Handlers) HandleLogoutPost(c *echo.Context) error {
	if h.Sessions == nil {
		return errSessionsNotConfigured
	}

	if err := h.Sessions.Destroy(c.Request().Context()); err != nil {
		return err
	}
	h.flash(c, "success", "Signed out", "")
	return redirect(c, "/login")
}
