package handlers

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/labstack/echo/v5"
	"golang.org/x/sync/errgroup"

	"github.com/PlayerIUnknown/aegis-gui/internal/auth"
	"github.com/PlayerIUnknown/aegis-gui/internal/configapi"
	"github.com/PlayerIUnknown/aegis-gui/internal/export"
	"github.com/PlayerIUnknown/aegis-gui/internal/findings"
	"github.com/PlayerIUnknown/aegis-gui/internal/http/viewmodels"
	"github.com/PlayerIUnknown/aegis-gui/internal/http/views"
	"github.com/PlayerIUnknown/aegis-gui/internal/scans"
)

// runNone collapses every run in the timeline.
const runNone = "none"

// tenantSnapshot is the data every dashboard render starts from.
type tenantSnapshot struct {
	Summary configapi.DashboardSummary
	Scans   []scans.Scan
	Profile configapi.TenantProfile
}

// dashboardQuery is the parsed dashboard location.
type dashboardQuery struct {
	Query string
	Risk  scans.RiskFilter
	Repo  string
	Run   string
	Tool  findings.Category
}

func parseDashboardQuery(c *echo.Context) dashboardQuery {
	return dashboardQuery{
		Query: strings.TrimSpace(c.QueryParam("q")),
		Risk:  scans.ParseRiskFilter(c.QueryParam("risk")),
		Repo:  strings.TrimSpace(c.QueryParam("repo")),
		Run:   strings.TrimSpace(c.QueryParam("run")),
		Tool:  findings.ParseCategory(c.QueryParam("tool")),
	}
}

func (q dashboardQuery) url(repo, run string, tool findings.Category) string {
	return views.DashboardURL(q.Query, q.Risk, repo, run, tool)
}

// loadTenant fetches the summary, scans, and profile in parallel. Any failure fails the load.
func (h *Handlers) loadTenant(ctx context.Context, token string) (tenantSnapshot, error) {
	var snap tenantSnapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		summary, err := h.API.DashboardSummary(gctx, token)
		snap.Summary = summary
		return err
	})
	g.Go(func() error {
		resp, err := h.API.Scans(gctx, token, h.Cfg.ScanPageLimit, 0)
		snap.Scans = scans.MapScans(resp.Items)
		return err
	})
	g.Go(func() error {
		profile, err := h.API.TenantProfile(gctx, token)
		snap.Profile = profile
		return err
	})
	if err := g.Wait(); err != nil {
		return tenantSnapshot{}, err
	}
	return snap, nil
}

// HandleDashboard renders the dashboard page, or only its results region for htmx swaps.
func (h *Handlers) HandleDashboard(c *echo.Context) error {
	varyOn(c, headerHXRequest, headerHXTarget)
	ctx := c.Request().Context()
	p := principal(c)
	q := parseDashboardQuery(c)

	layout := h.LayoutData(c, "Dashboard")
	snap, err := h.loadTenant(ctx, p.Token)
	if err != nil {
		if configapi.IsUnauthorized(err) {
			return h.expireSession(c)
		}
		if errors.Is(err, context.Canceled) {
			return err
		}
		layout.Error = h.apiErrorMessage(c, err)
	}

	groups := scans.GroupByRepository(snap.Scans)
	results, err := h.buildResults(ctx, p, q, groups)
	if err != nil {
		if configapi.IsUnauthorized(err) {
			return h.expireSession(c)
		}
		return h.RenderError(c, err)
	}

	if wantsDashboardResults(c) {
		return h.RenderComponent(c, views.DashboardResults(results))
	}

	layout.Badges = headerBadges(p, snap, len(groups))
	data := viewmodels.DashboardViewData{
		Layout:  layout,
		Summary: summaryTiles(snap.Summary),
		Results: results,
	}
	return h.RenderComponent(c, views.DashboardPage(data))
}

func (h *Handlers) buildResults(ctx context.Context, p auth.Principal, q dashboardQuery, groups []scans.RepositoryGroup) (viewmodels.DashboardResultsData, error) {
	filtered := scans.FilterRepositories(groups, q.Query, q.Risk)
	results := viewmodels.DashboardResultsData{
		Query:            q.Query,
		Risk:             q.Risk,
		RiskDescription:  q.Risk.Description(),
		ShowingLabel:     "Showing " + strconv.Itoa(len(filtered)) + " of " + strconv.Itoa(len(groups)) + " " + scans.WorkspaceLabel(len(groups)),
		TotalRepos:       len(groups),
		HasRepositories:  len(filtered) > 0,
		SelectedCategory: q.Tool,
	}
	for _, risk := range scans.RiskFilters {
		results.RiskOptions = append(results.RiskOptions, viewmodels.RiskOption{
			Value:  risk,
			Label:  risk.Label(),
			Href:   views.DashboardURL(q.Query, risk, q.Repo, "", findings.CategoryNone),
			Active: risk == q.Risk,
		})
	}

	selected, ok := scans.SelectRepository(filtered, q.Repo)
	if ok {
		results.SelectedRepoID = selected.ID
	}
	for _, group := range filtered {
		results.Repositories = append(results.Repositories, repositoryListItem(group, group.ID == results.SelectedRepoID, q.url(group.ID, "", findings.CategoryNone)))
	}
	if !ok {
		return results, nil
	}

	detail := &viewmodels.RepositoryDetail{
		ID:       selected.ID,
		Name:     selected.Name,
		Overview: scans.Overview(selected),
	}
	runs := scans.SortRuns(selected.Scans)
	var open scans.Scan
	hasOpen := false
	if q.Run != runNone {
		open, hasOpen = scans.SelectRun(runs, q.Run)
	}
	for _, run := range runs {
		isOpen := hasOpen && run.ID == open.ID
		item := viewmodels.RunItem{
			ID:          run.ID,
			Time:        run.DisplayTime(),
			Branch:      run.Repository.Branch,
			ShortCommit: run.Repository.ShortCommit(),
			Status:      string(run.Status),
			Gate:        run.Gate,
			Open:        isOpen,
			ToggleHref:  q.url(selected.ID, run.ID, findings.CategoryNone),
		}
		if isOpen {
			item.ToggleHref = q.url(selected.ID, runNone, findings.CategoryNone)
			details, err := h.runDetails(ctx, p, run, selected.ID, q.Tool)
			if err != nil {
				return results, err
			}
			item.Details = &details
			results.SelectedRunID = run.ID
		}
		detail.Runs = append(detail.Runs, item)
	}
	results.Selected = detail
	return results, nil
}

// runDetails loads and builds the expanded run. Config API failures other than 401 render inline.
func (h *Handlers) runDetails(ctx context.Context, p auth.Principal, run scans.Scan, repoID string, tool findings.Category) (viewmodels.RunDetailsData, error) {
	details, err := h.scanDetails(ctx, p, run.ID)
	if err != nil {
		if configapi.IsUnauthorized(err) {
			return viewmodels.RunDetailsData{}, err
		}
		var apiErr *configapi.APIError
		msg := unexpectedAPIMessage
		if errors.As(err, &apiErr) {
			msg = apiErr.Message
		} else {
			h.logger().Warn("scan details request failed", "scan_id", run.ID, "error", err)
		}
		return runDetailsData(run, repoID, tool, nil, msg), nil
	}
	return runDetailsData(run, repoID, tool, &details, ""), nil
}

func runDetailsData(run scans.Scan, repoID string, tool findings.Category, details *scans.ScanDetails, loadErr string) viewmodels.RunDetailsData {
	data := viewmodels.RunDetailsData{
		ScanID:        run.ID,
		RepoID:        repoID,
		TargetPath:    run.TargetPath,
		Category:      tool,
		GateReasons:   run.GateReasons,
		ToolStats:     toolStats(run, repoID, tool),
		SeverityStats: severityStats(run.Summary),
		LoadError:     loadErr,
	}
	if details == nil {
		return data
	}
	if data.TargetPath == "" {
		data.TargetPath = details.TargetPath
	}
	if len(data.GateReasons) == 0 {
		data.GateReasons = details.GateReasons
	}
	shown := details.Tools.Filter(tool)
	data.Tools = toolPanels(shown)
	data.TotalFindings = shown.Total()
	data.SBOMComponents = len(export.SBOMRows(*details))
	data.ExportCSVHref = views.ExportURL(run.ID, "csv")
	data.ExportPDFHref = views.ExportURL(run.ID, "pdf")
	return data
}

func repositoryListItem(group scans.RepositoryGroup, active bool, href string) viewmodels.RepositoryListItem {
	item := viewmodels.RepositoryListItem{
		ID:       group.ID,
		Name:     group.Name,
		Initials: views.Initials(group.Name),
		Active:   active,
		Href:     href,
	}
	if latest := group.Latest; latest != nil {
		item.HasLatest = true
		item.Branch = latest.Repository.Branch
		item.ScanType = latest.ScanType
		item.LatestTime = latest.DisplayTime()
		item.ShortCommit = latest.Repository.ShortCommit()
		item.Status = string(latest.Status)
		item.Gate = latest.Gate
	}
	return item
}

func toolStats(run scans.Scan, repoID string, active findings.Category) []viewmodels.DetailStat {
	values := map[findings.Category]int{
		findings.CategorySBOM:     run.Summary.PackagesFound,
		findings.CategorySCA:      run.Summary.VulnerabilitiesInPackages,
		findings.CategoryVulnScan: run.Summary.CodeVulnerabilities,
		findings.CategorySecrets:  run.Summary.SecretsFound,
	}
	tones := map[findings.Category]string{
		findings.CategorySBOM:     "accent",
		findings.CategorySCA:      "warning",
		findings.CategoryVulnScan: "neutral",
		findings.CategorySecrets:  "danger",
	}
	out := make([]viewmodels.DetailStat, 0, len(findings.FilterCategories))
	for _, category := range findings.FilterCategories {
		next := category
		if category == active {
			next = findings.CategoryNone
		}
		out = append(out, viewmodels.DetailStat{
			Label:   category.Label(),
			Value:   strconv.Itoa(values[category]),
			Tooltip: category.Tooltip(),
			Tone:    tones[category],
			Href:    views.RunDetailsURL(run.ID, repoID, next),
			Active:  category == active,
		})
	}
	return out
}

func severityStats(s scans.Summary) []viewmodels.DetailStat {
	return []viewmodels.DetailStat{
		{Label: "Low", Value: strconv.Itoa(s.LowSeverity), Tone: "success"},
		{Label: "Medium", Value: strconv.Itoa(s.MediumSeverity), Tone: "warning"},
		{Label: "High", Value: strconv.Itoa(s.HighSeverity), Tone: "danger"},
		{Label: "Critical", Value: strconv.Itoa(s.CriticalSeverity), Tone: "danger"},
	}
}

func toolPanels(tools findings.ToolSet) []viewmodels.ToolPanel {
	out := make([]viewmodels.ToolPanel, 0, len(tools))
	for _, tool := range tools {
		out = append(out, viewmodels.ToolPanel{
			Name:          tool.Name,
			CategoryLabel: tool.Category.Label(),
			Icon:          toolIcon(tool.Category),
			Total:         len(tool.Findings),
			Counts:        severityCounts(tool.Findings),
			Groups:        findings.GroupBySeverity(tool.Findings),
		})
	}
	return out
}

// severityCounts orders the per-severity tallies most severe first, skipping empty ones.
func severityCounts(in []findings.Finding) []viewmodels.SeverityCount {
	counts := findings.SeverityCounts(in)
	out := make([]viewmodels.SeverityCount, 0, len(counts))
	for _, sev := range findings.OrderedSeverities {
		if n := counts[sev]; n > 0 {
			out = append(out, viewmodels.SeverityCount{Severity: sev, Count: n})
		}
	}
	return out
}

func toolIcon(category findings.Category) string {
	switch category {
	case findings.CategorySBOM:
		return "package-export"
	case findings.CategorySCA:
		return "bug"
	case findings.CategorySecrets:
		return "key"
	case findings.CategoryVulnScan:
		return "code"
	default:
		return "package"
	}
}

func summaryTiles(summary configapi.DashboardSummary) []viewmodels.SummaryTile {
	return []viewmodels.SummaryTile{
		{Title: "Total scans", Value: strconv.Itoa(summary.Totals.Scans), Helper: "Total pipeline executions recorded for this tenant.", Icon: "activity", Tone: "neutral"},
		{Title: "Quality gates passed", Value: strconv.Itoa(summary.QualityGate.Passed), Helper: "Runs that cleared every policy control.", Icon: "check-circle", Tone: "success"},
		{Title: "Quality gates failed", Value: strconv.Itoa(summary.QualityGate.Failed), Helper: "Executions that require follow-up action.", Icon: "x-circle", Tone: "danger"},
		{Title: "Pass rate", Value: strconv.Itoa(scans.PassRate(summary)) + "%", Helper: "Share of runs currently passing configured gates.", Icon: "shield", Tone: "accent"},
	}
}

func headerBadges(p auth.Principal, snap tenantSnapshot, totalRepos int) []viewmodels.HeaderBadge {
	updated := "Awaiting first scan"
	if last := scans.FormatTimestamp(string(snap.Summary.LastScanAt)); last != scans.EmptyValue {
		updated = "Last updated • " + last
	}
	badges := []viewmodels.HeaderBadge{
		tenantBadge(firstNonEmpty(p.TenantID, snap.Profile.TenantID)),
		{Key: "repos", Icon: "users", Label: strconv.Itoa(totalRepos) + " connected " + scans.WorkspaceLabel(totalRepos)},
		{Key: "updated", Icon: "clock", Label: updated},
	}
	if owner := firstNonEmpty(snap.Profile.Name, p.Name); owner != "" {
		badges = append(badges, viewmodels.HeaderBadge{Key: "owner", Icon: "user", Label: owner})
	}
	return badges
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
