package views

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"

	"github.com/PlayerIUnknown/aegis-gui/internal/http/viewmodels"
	"github.com/PlayerIUnknown/aegis-gui/internal/scans"
)

func renderViewComponent(t *testing.T, component templ.Component) string {
	t.Helper()

	var buf bytes.Buffer
	if err := component.Render(context.Background(), &buf); err != nil {
		t.Fatalf("render component: %v", err)
	}
	return buf.String()
}

func TestDashboardPageUsesDebouncedHTMXFilters(t *testing.T) {
	t.Parallel()

	html := renderViewComponent(t, DashboardPage(viewmodels.DashboardViewData{
		Results: viewmodels.DashboardResultsData{
			Query: "api",
			RiskOptions: []viewmodels.RiskOption{
				{Value: scans.RiskAll, Label: "All workspaces"},
				{Value: scans.RiskAttention, Label: "Needs attention", Active: true},
			},
		},
	}))
	assertContains(t, html, `hx-get="/"`)
	assertContains(t, html, `hx-target="#dashboard-results"`)
	assertContains(t, html, `hx-swap="outerHTML"`)
	assertContains(t, html, `hx-push-url="true"`)
	assertContains(t, html, `hx-trigger="input changed delay:300ms from:input[name=&#39;q&#39;], change from:input[name=&#39;risk&#39;], submit"`)
	assertContains(t, html, `name="q" placeholder="Filter by repository name" autocomplete="off" value="api"`)
	assertContains(t, html, `name="risk" value="attention" checked="checked"`)
	assertContains(t, html, `id="dashboard-results"`)
}

func TestDashboardResultsEmptyStates(t *testing.T) {
	t.Parallel()

	html := renderViewComponent(t, DashboardResults(viewmodels.DashboardResultsData{ShowingLabel: "Showing 0 of 0 workspaces"}))
	assertContains(t, html, "Showing 0 of 0 workspaces")
	assertContains(t, html, "No repositories match the current filters.")
	assertContains(t, html, "Connect a repository or adjust your filters to begin exploring scan history.")
	assertNotContains(t, html, "Pipeline runs")
}

func TestRepositoryListTargetsResults(t *testing.T) {
	t.Parallel()

	html := renderViewComponent(t, RepositoryList([]viewmodels.RepositoryListItem{{
		ID:          "acme/api",
		Name:        "acme/api",
		Initials:    "AP",
		Branch:      "main",
		ScanType:    "full",
		LatestTime:  "Mar 1, 2024 3:04 PM",
		ShortCommit: "deadbeef",
		Status:      "completed",
		Gate:        scans.GateFailed,
		HasLatest:   true,
		Active:      true,
		Href:        "/?repo=acme%2Fapi",
	}}))
	assertContains(t, html, `href="/?repo=acme%2Fapi" hx-get="/?repo=acme%2Fapi" hx-target="#dashboard-results"`)
	assertContains(t, html, `aria-current="true"`)
	assertContains(t, html, "Branch · main")
	assertContains(t, html, "#deadbeef")
	assertContains(t, html, "Gate failed")
	assertContains(t, html, ">Active<")
}

func TestRunTimelineShowsToggleState(t *testing.T) {
	t.Parallel()

	html := renderViewComponent(t, RunTimeline([]viewmodels.RunItem{
		{ID: "s2", Time: "Mar 2, 2024 1:00 PM", Status: "completed", Gate: scans.GatePassed, Open: true, ToggleHref: "/?run=none",
			Details: &viewmodels.RunDetailsData{ScanID: "s2", TargetPath: "/app/target"}},
		{ID: "s1", Time: "Mar 1, 2024 1:00 PM", Status: "failed", Gate: scans.GateFailed, ToggleHref: "/?run=s1"},
	}))
	assertContains(t, html, "Scan executed Mar 2, 2024 1:00 PM")
	assertContains(t, html, `aria-expanded="true">Hide details`)
	assertContains(t, html, `aria-expanded="false">Show details`)
	assertContains(t, html, `id="run-details-s2"`)
	assertContains(t, html, "Target path: ")
	assertNotContains(t, html, `id="run-details-s1"`)
}

func assertContains(t *testing.T, content, want string) {
	t.Helper()
	if !strings.Contains(content, want) {
		t.Fatalf("expected rendered HTML to contain %q", want)
	}
}

func assertNotContains(t *testing.T, content, disallowed string) {
	t.Helper()
	if strings.Contains(content, disallowed) {
		t.Fatalf("expected rendered HTML to not contain %q", disallowed)
	}
}
