package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v5"

	"github.com/PlayerIUnknown/aegis-gui/internal/http/views"
)

const (
	headerHXRequest  = "HX-Request"
	headerHXTarget   = "HX-Target"
	headerHXRedirect = "HX-Redirect"
)

func hxRequest(c *echo.Context) bool {
	return strings.EqualFold(strings.TrimSpace(c.Request().Header.Get(headerHXRequest)), "true")
}

// hxTarget is the id of the element being swapped. htmx sends it bare but a
// leading '#' is tolerated.
func hxTarget(c *echo.Context) string {
	return strings.TrimPrefix(strings.TrimSpace(c.Request().Header.Get(headerHXTarget)), "#")
}

// wantsDashboardResults reports whether only the filterable results region
// should be rendered instead of the full dashboard page.
func wantsDashboardResults(c *echo.Context) bool {
	return hxRequest(c) && hxTarget(c) == views.DashboardResultsID
}

func hxRedirect(c *echo.Context, location string) {
	c.Response().Header().Set(headerHXRedirect, location)
}

// varyOn merges names into the Vary header so caches keep htmx fragments
// apart from full pages. An existing "*" is left alone.
func varyOn(c *echo.Context, names ...string) {
	header := c.Response().Header()
	seen := make(map[string]bool)
	var merged []string
	add := func(token string) {
		token = http.CanonicalHeaderKey(strings.TrimSpace(token))
		if token == "" || seen[strings.ToLower(token)] {
			return
		}
		seen[strings.ToLower(token)] = true
		merged = append(merged, token)
	}
	for _, line := range header.Values(echo.HeaderVary) {
		for _, token := range strings.Split(line, ",") {
			if strings.TrimSpace(token) == "*" {
				return
			}
			add(token)
		}
	}
	for _, name := range names {
		add(name)
	}
	if len(merged) > 0 {
		header.Set(echo.HeaderVary, strings.Join(merged, ", "))
	}
}
