package handlers

import (
	"net/http"

	"github.com/labstack/echo/v5"

	"github.com/PlayerIUnknown/aegis-gui/internal/configapi"
	"github.com/PlayerIUnknown/aegis-gui/internal/scans"
)

type repositoryJSON struct {
	ID         string       `json:"id"`
	RepoName   string       `json:"repoName"`
	ScanCount  int          `json:"scanCount"`
	LatestScan *scans.Scan  `json:"latestScan"`
	Scans      []scans.Scan `json:"scans"`
}

type repositoriesResponse struct {
	Items []repositoryJSON `json:"items"`
	Count int              `json:"count"`
	Total int              `json:"total"`
}

// HandleAPIRepositories returns repository groups as JSON, filtered like the dashboard.
func (h *Handlers) HandleAPIRepositories(c *echo.Context) error {
	q := parseDashboardQuery(c)
	p := principal(c)

	resp, err := h.API.Scans(c.Request().Context(), p.Token, h.Cfg.ScanPageLimit, 0)
	if err != nil {
		if configapi.IsUnauthorized(err) {
			if h.Sessions != nil {
				if err := h.Sessions.Destroy(c.Request().Context()); err != nil {
					c.Logger().Debug("session destroy failed", "error", err)
				}
			}
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		}
		return c.JSON(http.StatusBadGateway, map[string]string{"error": h.apiErrorMessage(c, err)})
	}

	groups := scans.GroupByRepository(scans.MapScans(resp.Items))
	filtered := scans.FilterRepositories(groups, q.Query, q.Risk)
	out := repositoriesResponse{Items: make([]repositoryJSON, 0, len(filtered)), Count: len(filtered), Total: len(groups)}
	for _, group := range filtered {
		out.Items = append(out.Items, repositoryJSON{
			ID:         group.ID,
			RepoName:   group.Name,
			ScanCount:  len(group.Scans),
			LatestScan: group.Latest,
			Scans:      group.Scans,
		})
	}
	return c.JSON(http.StatusOK, out)
}

func HandleHealthz(c *echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
