package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v5"
)

func newTestContext(method, target string) (*echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}

func parseVaryHeader(value string) map[string]int {
	parts := strings.Split(value, ",")
	out := make(map[string]int, len(parts))
	for _, part := range parts {
		token := strings.ToLower(strings.TrimSpace(part))
		if token == "" {
			continue
		}
		out[token]++
	}
	return out
}

func TestWantsDashboardResults(t *testing.T) {
	tests := []struct {
		name    string
		request string
		target  string
		want    bool
	}{
		{name: "full_page", want: false},
		{name: "boosted_navigation", request: "true", want: false},
		{name: "results_swap", request: "true", target: "dashboard-results", want: true},
		{name: "results_swap_with_hash", request: "true", target: " #dashboard-results ", want: true},
		{name: "upper_case_flag", request: "TRUE", target: "dashboard-results", want: true},
		{name: "run_details_swap", request: "true", target: "run-details-s1", want: false},
		{name: "target_without_htmx", target: "dashboard-results", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestContext(http.MethodGet, "http://example.com/?q=api")
			if tt.request != "" {
				c.Request().Header.Set(headerHXRequest, tt.request)
			}
			if tt.target != "" {
				c.Request().Header.Set(headerHXTarget, tt.target)
			}
			if got := wantsDashboardResults(c); got != tt.want {
				t.Fatalf("wantsDashboardResults() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVaryOnMergesHTMXHeaders(t *testing.T) {
	c, _ := newTestContext(http.MethodGet, "http://example.com/")
	c.Response().Header().Set(echo.HeaderVary, "Accept-Encoding, hx-request")

	varyOn(c, headerHXRequest, headerHXTarget)
	varyOn(c, headerHXTarget)

	got := parseVaryHeader(c.Response().Header().Get(echo.HeaderVary))
	for _, token := range []string{"accept-encoding", "hx-request", "hx-target"} {
		if got[token] != 1 {
			t.Fatalf("Vary %q count = %d in %v", token, got[token], got)
		}
	}
}

func TestVaryOnKeepsWildcard(t *testing.T) {
	c, _ := newTestContext(http.MethodGet, "http://example.com/")
	c.Response().Header().Set(echo.HeaderVary, "*")

	varyOn(c, headerHXRequest, headerHXTarget)

	if got := c.Response().Header().Get(echo.HeaderVary); got != "*" {
		t.Fatalf("Vary = %q, want *", got)
	}
}

func TestRedirectAnswersHTMXWithHeader(t *testing.T) {
	c, rec := newTestContext(http.MethodPost, "http://example.com/setup/quality-gates")
	c.Request().Header.Set(headerHXRequest, "true")

	if err := redirect(c, "/?repo=acme%2Fapi"); err != nil {
		t.Fatalf("redirect() error = %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := rec.Header().Get(headerHXRedirect); got != "/?repo=acme%2Fapi" {
		t.Fatalf("HX-Redirect = %q", got)
	}

	c, rec = newTestContext(http.MethodPost, "http://example.com/setup/quality-gates")
	if err := redirect(c, "/setup"); err != nil {
		t.Fatalf("redirect() error = %v", err)
	}
	if rec.Code != http.StatusSeeOther || rec.Header().Get(echo.HeaderLocation) != "/setup" {
		t.Fatalf("plain redirect = %d %q", rec.Code, rec.Header().Get(echo.HeaderLocation))
	}
}
