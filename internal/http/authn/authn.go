package authn

import (
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode"

	"github.com/PlayerIUnknown/aegis-gui/internal/auth"
	"github.com/alexedwards/scs/v2"
	"github.com/labstack/echo/v5"
)

const ContextKeyPrincipal = "auth_principal"

func PrincipalFromContext(c *echo.Context) (auth.Principal, bool) {
	p, ok := c.Get(ContextKeyPrincipal).(auth.Principal)
	return p, ok
}

// LoadPrincipal reads the principal from the session. An expired token destroys the session.
func LoadPrincipal(c *echo.Context, sessions *scs.SessionManager) (auth.Principal, bool) {
	ctx := c.Request().Context()
	token := strings.TrimSpace(sessions.GetString(ctx, auth.SessionKeyToken))
	if token == "" {
		return auth.Principal{}, false
	}

	p := auth.Principal{
		Token:    token,
		TenantID: sessions.GetString(ctx, auth.SessionKeyTenantID),
		Email:    sessions.GetString(ctx, auth.SessionKeyEmail),
		Name:     sessions.GetString(ctx, auth.SessionKeyName),
	}
	if exp := sessions.GetInt64(ctx, auth.SessionKeyExpiresAt); exp > 0 {
		p.ExpiresAt = time.Unix(exp, 0)
	}
	if p.Expired(time.Now()) {
		if err := sessions.Destroy(ctx); err != nil {
			c.Logger().Debug("session destroy failed", "error", err)
		}
		return auth.Principal{}, false
	}
	return p, true
}

// StorePrincipal renews the session token and writes p into the session.
func StorePrincipal(c *echo.Context, sessions *scs.SessionManager, p auth.Principal) error {
	ctx := c.Request().Context()
	if err := sessions.RenewToken(ctx); err != nil {
		return err
	}
	sessions.Put(ctx, auth.SessionKeyToken, p.Token)
	sessions.Put(ctx, auth.SessionKeyTenantID, p.TenantID)
	sessions.Put(ctx, auth.SessionKeyEmail, p.Email)
	if p.Name != "" {
		sessions.Put(ctx, auth.SessionKeyName, p.Name)
	}
	if !p.ExpiresAt.IsZero() {
		sessions.Put(ctx, auth.SessionKeyExpiresAt, p.ExpiresAt.Unix())
	}
	return nil
}

func RequireSession(sessions *scs.SessionManager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c *echo.Context) error {
			principal, ok := LoadPrincipal(c, sessions)
			if !ok {
				return handleUnauth(c)
			}
			c.Set(ContextKeyPrincipal, principal)
			return next(c)
		}
	}
}

func isAPIRequest(c *echo.Context) bool {
	return strings.HasPrefix(c.Path(), "/api/") || strings.HasPrefix(c.Request().URL.Path, "/api/")
}

func handleUnauth(c *echo.Context) error {
	if isAPIRequest(c) {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}

	location := LoginURL(c.Request())
	if strings.EqualFold(strings.TrimSpace(c.Request().Header.Get("HX-Request")), "true") {
		c.Response().Header().Set("HX-Redirect", location)
		return c.NoContent(http.StatusOK)
	}
	return c.Redirect(http.StatusSeeOther, location)
}

// LoginURL is /login, carrying the current GET location as next.
func LoginURL(r *http.Request) string {
	if r == nil || r.Method != http.MethodGet || r.URL == nil {
		return "/login"
	}
	if next := SanitizeNext(r.URL.RequestURI()); next != "" {
		return "/login?next=" + url.QueryEscape(next)
	}
	return "/login"
}

// SanitizeNext accepts only same-origin relative paths other than / and the login page.
func SanitizeNext(next string) string {
	next = strings.TrimSpace(next)
	if next == "" || next == "/" || len(next) > 2048 {
		return ""
	}
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return ""
	}
	if strings.Contains(next, "\\") || strings.IndexFunc(next, unicode.IsControl) >= 0 {
		return ""
	}

	u, err := url.Parse(next)
	if err != nil || u.IsAbs() || u.Host != "" || u.Scheme != "" {
		return ""
	}
	if strings.HasPrefix(u.Path, "//") || strings.Contains(u.Path, "\\") {
		return ""
	}
	if u.Path == "/login" || strings.HasPrefix(u.Path, "/login/") {
		return ""
	}
	return next
}
