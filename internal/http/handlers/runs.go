package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v5"

	"github.com/PlayerIUnknown/aegis-gui/internal/configapi"
	"github.com/PlayerIUnknown/aegis-gui/internal/findings"
	"github.com/PlayerIUnknown/aegis-gui/internal/http/viewmodels"
	"github.com/PlayerIUnknown/aegis-gui/internal/http/views"
	"github.com/PlayerIUnknown/aegis-gui/internal/scans"
)

// HandleRunDetails renders one run's details fragment. Non-htmx requests are
// sent to the dashboard with the run expanded.
func (h *Handlers) HandleRunDetails(c *echo.Context) error {
	varyOn(c, headerHXRequest)
	scanID := strings.TrimSpace(c.Param("scanID"))
	if scanID == "" {
		return RenderNotFound(c)
	}
	repo := strings.TrimSpace(c.QueryParam("repo"))
	tool := findings.ParseCategory(c.QueryParam("tool"))

	if !hxRequest(c) {
		return c.Redirect(http.StatusSeeOther, views.DashboardURL("", scans.RiskAll, repo, scanID, tool))
	}

	ctx := c.Request().Context()
	p := principal(c)
	details, err := h.scanDetails(ctx, p, scanID)
	if err != nil {
		if configapi.IsUnauthorized(err) {
			return h.expireSession(c)
		}
		var apiErr *configapi.APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return RenderNotFound(c)
		}
		return h.RenderComponent(c, views.RunDetails(viewmodels.RunDetailsData{
			ScanID:    scanID,
			RepoID:    repo,
			Category:  tool,
			LoadError: h.apiErrorMessage(c, err),
		}))
	}
	if repo == "" {
		repo = details.Repository.Name
	}

	data := runDetailsData(details.Scan, repo, tool, &details, "")
	return h.RenderComponent(c, views.RunDetails(data))
}
