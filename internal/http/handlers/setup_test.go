package handlers

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/PlayerIUnknown/aegis-gui/internal/configapi"
	"github.com/PlayerIUnknown/aegis-gui/internal/http/viewmodels"
)

func TestActionsSnippet(t *testing.T) {
	t.Parallel()

	got := ActionsSnippet("ghcr.io/aegis/scanner:latest", "ak_live_123", "https://config.example.com")
	for _, want := range []string{
		"- name: Run Aegis Security Scan",
		"ghcr.io/aegis/scanner:latest",
		"--api-key ak_live_123",
		"--config-api-url https://config.example.com",
		"--parallel",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("snippet missing %q:\n%s", want, got)
		}
	}

	if got := ActionsSnippet("img", "  ", "https://x"); !strings.Contains(got, "--api-key "+apiKeySecretPlaceholder) {
		t.Fatalf("blank key should use the secret placeholder:\n%s", got)
	}
}

func TestParseThreshold(t *testing.T) {
	t.Parallel()

	tests := map[string]int{
		"":      0,
		"  7 ":  7,
		"-3":    0,
		"abc":   0,
		"2.9":   2,
		"-1.5":  0,
		"10000": 10000,
	}
	for raw, want := range tests {
		if got := parseThreshold(raw); got != want {
			t.Fatalf("parseThreshold(%q) = %d, want %d", raw, got, want)
		}
	}
}

func TestHandleSetupRendersProfile(t *testing.T) {
	c, rec := newTestContext(http.MethodGet, "http://example.com/setup")
	api := seededAPI()
	api.profile.QualityGates = &configapi.QualityGateConfig{Enabled: true, MaxCritical: 2, FailOnSecrets: true}
	h := newSignedInHandler(t, c, api)

	if err := h.HandleSetup(c); err != nil {
		t.Fatalf("HandleSetup() error = %v", err)
	}
	body := rec.Body.String()
	for _, want := range []string{"ak_live_123", "--config-api-url https://config.example.com", "Tenant tenant-1", `name="max_critical"`, `value="2"`} {
		if !strings.Contains(body, want) {
			t.Fatalf("setup page missing %q", want)
		}
	}
}

func TestHandleSetupShowsGateMessageInline(t *testing.T) {
	c, rec := newTestContext(http.MethodGet, "http://example.com/setup")
	payload, err := json.Marshal(viewmodels.ToastViewData{Category: "success", Title: gatesSavedTitle, Description: "Thresholds stored"})
	if err != nil {
		t.Fatalf("marshal toast: %v", err)
	}
	c.Request().AddCookie(&http.Cookie{Name: flashToastCookieName, Value: base64.RawURLEncoding.EncodeToString(payload)})
	h := newSignedInHandler(t, c, seededAPI())

	if err := h.HandleSetup(c); err != nil {
		t.Fatalf("HandleSetup() error = %v", err)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Thresholds stored") {
		t.Fatalf("gate message missing from page")
	}
	if strings.Contains(body, `class="toast`) {
		t.Fatalf("gate message should not render as a toast")
	}
}

func TestHandleQualityGatesPostClampsThresholds(t *testing.T) {
	form := url.Values{
		"enabled":      {"on"},
		"max_critical": {"-5"},
		"max_high":     {"3"},
		"max_medium":   {""},
		"max_low":      {"12"},
	}
	c, rec := newFormContext("http://example.com/setup/quality-gates", form)
	api := seededAPI()
	api.gateResp = configapi.QualityGateUpdateResponse{Message: "Quality gates updated"}
	h := newSignedInHandler(t, c, api)

	if err := h.HandleQualityGatesPost(c); err != nil {
		t.Fatalf("HandleQualityGatesPost() error = %v", err)
	}
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/setup" {
		t.Fatalf("status = %d location = %q", rec.Code, rec.Header().Get("Location"))
	}
	if !hasCookie(rec, flashToastCookieName) {
		t.Fatalf("expected result toast cookie")
	}

	u := api.lastUpdate
	if u.Enabled == nil || !*u.Enabled {
		t.Fatalf("enabled not sent")
	}
	if u.FailOnSecrets == nil || *u.FailOnSecrets {
		t.Fatalf("unchecked fail_on_secrets must be sent as false")
	}
	if *u.MaxCritical != 0 || *u.MaxHigh != 3 || *u.MaxMedium != 0 || *u.MaxLow != 12 {
		t.Fatalf("thresholds = %d/%d/%d/%d", *u.MaxCritical, *u.MaxHigh, *u.MaxMedium, *u.MaxLow)
	}
}

func TestHandleQualityGatesPostUnauthorized(t *testing.T) {
	c, rec := newFormContext("http://example.com/setup/quality-gates", url.Values{})
	c.Request().Header.Set("HX-Request", "true")
	api := seededAPI()
	api.gateErr = &configapi.APIError{Status: http.StatusUnauthorized, Message: "expired"}
	h := newSignedInHandler(t, c, api)

	if err := h.HandleQualityGatesPost(c); err != nil {
		t.Fatalf("HandleQualityGatesPost() error = %v", err)
	}
	if got := rec.Header().Get("HX-Redirect"); got != "/login" {
		t.Fatalf("HX-Redirect = %q, want /login", got)
	}
}
