package handlers

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/labstack/echo/v5"

	"github.com/PlayerIUnknown/aegis-gui/internal/configapi"
	"github.com/PlayerIUnknown/aegis-gui/internal/http/viewmodels"
	"github.com/PlayerIUnknown/aegis-gui/internal/http/views"
	"github.com/PlayerIUnknown/aegis-gui/internal/scans"
)

const (
	apiKeySecretPlaceholder = "${{ secrets.AEGIS_API_KEY }}"

	gatesSavedTitle    = "Quality gates saved"
	gatesNotSavedTitle = "Quality gates not saved"
)

// ActionsSnippet is the GitHub Actions step that runs the scanner image.
func ActionsSnippet(image, apiKey, baseURL string) string {
	if strings.TrimSpace(apiKey) == "" {
		apiKey = apiKeySecretPlaceholder
	}
	return `- name: Run Aegis Security Scan
  run: |
    docker run --rm \
      -v ${{ github.workspace }}:/app/target \
      -e GITHUB_REPOSITORY=${{ github.repository }} \
      -e GITHUB_REF=${{ github.ref }} \
      -e GITHUB_SHA=${{ github.sha }} \
      ` + image + ` \
      /app/target \
      --api-key ` + apiKey + ` \
      --config-api-url ` + baseURL + ` \
      --parallel`
}

func (h *Handlers) HandleSetup(c *echo.Context) error {
	p := principal(c)
	layout := h.LayoutData(c, "Setup")

	profile, err := h.API.TenantProfile(c.Request().Context(), p.Token)
	if err != nil {
		if configapi.IsUnauthorized(err) {
			return h.expireSession(c)
		}
		if errors.Is(err, context.Canceled) {
			return err
		}
		layout.Error = h.apiErrorMessage(c, err)
	}

	gates := scans.DefaultQualityGates()
	if profile.QualityGates != nil {
		gates = *profile.QualityGates
	}
	layout.Badges = []viewmodels.HeaderBadge{tenantBadge(firstNonEmpty(p.TenantID, profile.TenantID))}
	if owner := firstNonEmpty(profile.Name, p.Name); owner != "" {
		layout.Badges = append(layout.Badges, viewmodels.HeaderBadge{Key: "owner", Icon: "user", Label: owner})
	}

	data := viewmodels.SetupViewData{
		Layout:    layout,
		APIKey:    strings.TrimSpace(profile.APIKey),
		Snippet:   ActionsSnippet(h.Cfg.ScannerImage, profile.APIKey, h.API.BaseURL()),
		Steps:     viewmodels.OnboardingSteps,
		GateStats: scans.QualityGateStats(profile.QualityGates),
		Gates:     gates,
	}
	// Quality gate results render next to the form instead of as a toast.
	if t := layout.Toast; t != nil && (t.Title == gatesSavedTitle || t.Title == gatesNotSavedTitle) {
		data.GateMessage = &viewmodels.FormMessage{Type: t.Category, Text: t.Description}
		data.Layout.Toast = nil
	}
	return h.RenderComponent(c, views.SetupPage(data))
}

// HandleQualityGatesPost saves the quality gate form. Thresholds are clamped at zero.
func (h *Handlers) HandleQualityGatesPost(c *echo.Context) error {
	update := qualityGateUpdateFromForm(c)
	resp, err := h.API.UpdateQualityGates(c.Request().Context(), principal(c).Token, update)
	if err != nil {
		if configapi.IsUnauthorized(err) {
			return h.expireSession(c)
		}
		h.flash(c, "error", gatesNotSavedTitle, h.apiErrorMessage(c, err))
		return redirect(c, "/setup")
	}

	msg := strings.TrimSpace(resp.Message)
	if msg == "" {
		msg = "Quality gate thresholds updated."
	}
	h.flash(c, "success", gatesSavedTitle, msg)
	return redirect(c, "/setup")
}

func qualityGateUpdateFromForm(c *echo.Context) configapi.QualityGateUpdate {
	enabled := ParseBoolForm(c.FormValue("enabled"))
	failOnSecrets := ParseBoolForm(c.FormValue("fail_on_secrets"))
	failOnCritical := ParseBoolForm(c.FormValue("fail_on_critical_code_issues"))
	maxCritical := parseThreshold(c.FormValue("max_critical"))
	maxHigh := parseThreshold(c.FormValue("max_high"))
	maxMedium := parseThreshold(c.FormValue("max_medium"))
	maxLow := parseThreshold(c.FormValue("max_low"))
	return configapi.QualityGateUpdate{
		Enabled:                  &enabled,
		MaxCritical:              &maxCritical,
		MaxHigh:                  &maxHigh,
		MaxMedium:                &maxMedium,
		MaxLow:                   &maxLow,
		FailOnSecrets:            &failOnSecrets,
		FailOnCriticalCodeIssues: &failOnCritical,
	}
}

// parseThreshold reads a non-negative integer; blanks, garbage, and negatives become 0.
func parseThreshold(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	if v, err := strconv.Atoi(raw); err == nil {
		return max(v, 0)
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil && f > 0 && f < 1e9 {
		return int(f)
	}
	return 0
}

func tenantBadge(tenantID string) viewmodels.HeaderBadge {
	label := "Tenant unknown"
	if tenantID != "" {
		label = "Tenant " + tenantID
	}
	return viewmodels.HeaderBadge{Key: "tenant", Icon: "globe", Label: label}
}
