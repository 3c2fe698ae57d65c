package handlers

import (
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/PlayerIUnknown/aegis-gui/internal/configapi"
	"github.com/PlayerIUnknown/aegis-gui/internal/findings"
	"github.com/PlayerIUnknown/aegis-gui/internal/http/viewmodels"
)

func TestHandleDashboardRendersFullPage(t *testing.T) {
	c, rec := newTestContext(http.MethodGet, "http://example.com/")
	api := seededAPI()
	h := newSignedInHandler(t, c, api)

	if err := h.HandleDashboard(c); err != nil {
		t.Fatalf("HandleDashboard() error = %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	body := rec.Body.String()
	for _, want := range []string{
		"<!doctype html>",
		"Stay ahead of every scan",
		"Tenant tenant-1",
		"2 connected workspaces",
		"Acme Security",
		"Showing 2 of 2 workspaces",
		"acme/api",
		"acme/web",
		`id="run-scan-2"`,
		"1 critical finding exceeds limit 0",
		"Prototype pollution",
		"/scans/scan-2/sbom.csv",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("body missing %q", want)
		}
	}
	if api.count("details") != 1 {
		t.Fatalf("details calls = %d, want 1", api.count("details"))
	}

	vary := parseVaryHeader(rec.Header().Get("Vary"))
	if vary["hx-request"] != 1 || vary["hx-target"] != 1 {
		t.Fatalf("Vary header = %v", vary)
	}
}

func TestHandleDashboardHTMXReturnsResultsFragment(t *testing.T) {
	c, rec := newTestContext(http.MethodGet, "http://example.com/?q=web&run=none")
	c.Request().Header.Set("HX-Request", "true")
	c.Request().Header.Set("HX-Target", "dashboard-results")
	api := seededAPI()
	h := newSignedInHandler(t, c, api)

	if err := h.HandleDashboard(c); err != nil {
		t.Fatalf("HandleDashboard() error = %v", err)
	}

	body := rec.Body.String()
	if strings.Contains(body, "<html") {
		t.Fatalf("fragment response rendered full layout")
	}
	if !strings.HasPrefix(body, `<div id="dashboard-results"`) {
		t.Fatalf("fragment should start with results region, got %q", body[:min(len(body), 80)])
	}
	if !strings.Contains(body, "Showing 1 of 2 workspaces") {
		t.Fatalf("missing filtered count in %q", body)
	}
	if strings.Contains(body, "acme/api") {
		t.Fatalf("filtered repository leaked into fragment")
	}
	if api.count("details") != 0 {
		t.Fatalf("collapsed timeline should not load details, calls = %d", api.count("details"))
	}
}

func TestHandleDashboardUnauthorizedExpiresSession(t *testing.T) {
	c, rec := newTestContext(http.MethodGet, "http://example.com/")
	api := seededAPI()
	api.scansErr = &configapi.APIError{Status: http.StatusUnauthorized, Message: "Token expired"}
	h := newSignedInHandler(t, c, api)

	if err := h.HandleDashboard(c); err != nil {
		t.Fatalf("HandleDashboard() error = %v", err)
	}
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if got := rec.Header().Get("Location"); got != "/login" {
		t.Fatalf("Location = %q, want /login", got)
	}
	if !hasCookie(rec, flashToastCookieName) {
		t.Fatalf("expected session expired toast cookie")
	}
}

func TestHandleDashboardShowsBannerOnAPIFailure(t *testing.T) {
	c, rec := newTestContext(http.MethodGet, "http://example.com/")
	api := seededAPI()
	api.scansErr = &configapi.APIError{Status: http.StatusBadGateway, Message: "Upstream unavailable"}
	h := newSignedInHandler(t, c, api)

	if err := h.HandleDashboard(c); err != nil {
		t.Fatalf("HandleDashboard() error = %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Upstream unavailable") {
		t.Fatalf("missing error banner in body")
	}
	if !strings.Contains(body, "Connect a repository or adjust your filters") {
		t.Fatalf("missing empty state in body")
	}
}

func TestHandleDashboardInlineDetailsError(t *testing.T) {
	c, rec := newTestContext(http.MethodGet, "http://example.com/")
	api := seededAPI()
	api.detErr = errors.New("connection reset")
	h := newSignedInHandler(t, c, api)

	if err := h.HandleDashboard(c); err != nil {
		t.Fatalf("HandleDashboard() error = %v", err)
	}
	body := rec.Body.String()
	if !strings.Contains(body, unexpectedAPIMessage) {
		t.Fatalf("missing inline details error")
	}
	if strings.Contains(body, "connection reset") {
		t.Fatalf("transport error leaked into page")
	}
}

func TestDetailsCacheServesRepeatRequests(t *testing.T) {
	c, _ := newTestContext(http.MethodGet, "http://example.com/")
	api := seededAPI()
	h := newSignedInHandler(t, c, api)
	h.Details = NewDetailsCache(time.Minute)

	for range 2 {
		if _, err := h.scanDetails(c.Request().Context(), testPrincipal(), "scan-2"); err != nil {
			t.Fatalf("scanDetails() error = %v", err)
		}
	}
	if api.count("details") != 1 {
		t.Fatalf("details calls = %d, want 1", api.count("details"))
	}

	other := testPrincipal()
	other.TenantID = "tenant-2"
	if _, err := h.scanDetails(c.Request().Context(), other, "scan-2"); err != nil {
		t.Fatalf("scanDetails() error = %v", err)
	}
	if api.count("details") != 2 {
		t.Fatalf("cache must be keyed by tenant, calls = %d", api.count("details"))
	}
}

func TestNilDetailsCacheIsSafe(t *testing.T) {
	var d *DetailsCache
	if _, ok := d.Get("t", "s"); ok {
		t.Fatalf("nil cache returned a hit")
	}
	d.Flush()
}

func TestToolPanelsCountSeveritiesMostSevereFirst(t *testing.T) {
	tools := findings.ToolSet{
		{Name: "grype", Category: findings.CategorySCA, Findings: []findings.Finding{
			{Severity: findings.SeverityLow},
			{Severity: findings.SeverityCritical},
			{Severity: findings.SeverityLow},
			{Severity: findings.SeverityUnknown},
		}},
		{Name: "gitleaks", Category: findings.CategorySecrets},
	}

	panels := toolPanels(tools)
	if len(panels) != 2 {
		t.Fatalf("len(panels) = %d, want 2", len(panels))
	}
	want := []viewmodels.SeverityCount{
		{Severity: findings.SeverityCritical, Count: 1},
		{Severity: findings.SeverityLow, Count: 2},
		{Severity: findings.SeverityUnknown, Count: 1},
	}
	got := panels[0].Counts
	if len(got) != len(want) {
		t.Fatalf("Counts = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Counts[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
	if len(panels[1].Counts) != 0 {
		t.Fatalf("empty tool Counts = %+v, want none", panels[1].Counts)
	}
	if total := tools.Total(); total != 4 {
		t.Fatalf("Total() = %d, want 4", total)
	}
}
