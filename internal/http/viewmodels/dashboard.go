package viewmodels

import (
	"github.com/PlayerIUnknown/aegis-gui/internal/findings"
	"github.com/PlayerIUnknown/aegis-gui/internal/scans"
)

// SummaryTile is one card of the tenant-wide summary.
type SummaryTile struct {
	Title  string
	Value  string
	Helper string
	Icon   string
	Tone   string
}

type DashboardViewData struct {
	Layout  LayoutData
	Summary []SummaryTile
	Results DashboardResultsData
}

// RiskOption is one risk filter chip.
type RiskOption struct {
	Value  scans.RiskFilter
	Label  string
	Href   string
	Active bool
}

type DashboardResultsData struct {
	Query            string
	Risk             scans.RiskFilter
	RiskDescription  string
	RiskOptions      []RiskOption
	ShowingLabel     string
	TotalRepos       int
	Repositories     []RepositoryListItem
	Selected         *RepositoryDetail
	HasRepositories  bool
	SelectedRepoID   string
	SelectedRunID    string
	SelectedCategory findings.Category
}

// RepositoryListItem is one row of the repository list.
type RepositoryListItem struct {
	ID          string
	Name        string
	Initials    string
	Branch      string
	ScanType    string
	LatestTime  string
	ShortCommit string
	Status      string
	Gate        scans.GateState
	HasLatest   bool
	Active      bool
	Href        string
}

// RepositoryDetail is the selected repository with its overview and run timeline.
type RepositoryDetail struct {
	ID       string
	Name     string
	Overview scans.RepositoryOverview
	Runs     []RunItem
}

// RunItem is one entry of the run timeline. Open marks the expanded run.
type RunItem struct {
	ID          string
	Time        string
	Branch      string
	ShortCommit string
	Status      string
	Gate        scans.GateState
	Open        bool
	ToggleHref  string
	Details     *RunDetailsData
}

// DetailStat is one tile in the expanded run.
type DetailStat struct {
	Label   string
	Value   string
	Tooltip string
	Tone    string
	Href    string
	Active  bool
}

// Interactive reports whether the tile toggles a tool filter.
func (s DetailStat) Interactive() bool {
	return s.Href != ""
}

// SeverityCount is one severity chip in a tool header.
type SeverityCount struct {
	Severity findings.Severity
	Count    int
}

// ToolPanel is the display form of one tool's findings.
type ToolPanel struct {
	Name          string
	CategoryLabel string
	Icon          string
	Total         int
	Counts        []SeverityCount
	Groups        []findings.SeverityGroup
}

type RunDetailsData struct {
	ScanID         string
	RepoID         string
	TargetPath     string
	Category       findings.Category
	ToolStats      []DetailStat
	SeverityStats  []DetailStat
	Tools          []ToolPanel
	TotalFindings  int
	GateReasons    []string
	ExportCSVHref  string
	ExportPDFHref  string
	SBOMComponents int
	LoadError      string
}
