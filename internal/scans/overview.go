package scans

import (
	"math"
	"strconv"

	"github.com/PlayerIUnknown/aegis-gui/internal/configapi"
)

// RepositoryOverview is the stat block rendered for the selected repository.
type RepositoryOverview struct {
	TotalRuns        int
	Passing          int
	Failed           int
	Running          int
	LastCompleted    string
	Latest           *Scan
	CommitHelper     string
	Branch           string
	ScanType         string
	GateLabel        string
	StatusHelper     string
	Packages         string
	VulnerableHelper string
	LatestGate       GateState
	HasLatestScan    bool
	RunCountLabel    string
}

// Overview aggregates the runs of one repository.
func Overview(group RepositoryGroup) RepositoryOverview {
	out := RepositoryOverview{
		TotalRuns:     len(group.Scans),
		LastCompleted: EmptyValue,
		Branch:        EmptyValue,
		GateLabel:     EmptyValue,
		Packages:      EmptyValue,
	}
	out.RunCountLabel = strconv.Itoa(out.TotalRuns) + " recorded run" + plural(out.TotalRuns) + " for this workspace."

	var lastCompleted *Scan
	for i := range group.Scans {
		scan := &group.Scans[i]
		switch scan.Gate {
		case GatePassed:
			out.Passing++
		case GateFailed:
			out.Failed++
		}
		if scan.Status == StatusRunning {
			out.Running++
		}
		if scan.Status == StatusCompleted && (lastCompleted == nil || newer(*scan, *lastCompleted)) {
			lastCompleted = scan
		}
	}
	if lastCompleted != nil {
		out.LastCompleted = lastCompleted.DisplayTime()
	}

	latest := group.Latest
	if latest == nil {
		return out
	}
	out.Latest = latest
	out.HasLatestScan = true
	out.LatestGate = latest.Gate
	out.GateLabel = latest.Gate.Label()
	out.StatusHelper = "Status: " + latest.Status.String()
	out.ScanType = latest.ScanType
	if latest.Repository.Branch != "" {
		out.Branch = latest.Repository.Branch
	}
	if commit := latest.Repository.ShortCommit(); commit != "" {
		out.CommitHelper = "Commit #" + commit
	}
	out.Packages = strconv.Itoa(latest.Summary.PackagesFound)
	out.VulnerableHelper = strconv.Itoa(latest.Summary.VulnerabilitiesInPackages) + " vulnerable"
	return out
}

// PassRate is the rounded share of scans that passed their quality gate.
func PassRate(summary configapi.DashboardSummary) int {
	total := summary.Totals.Scans
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(summary.QualityGate.Passed) / float64(total) * 100))
}

// Stat is a label and display value pair.
type Stat struct {
	Label string
	Value string
}

// QualityGateStats lists the tenant's gate configuration. nil yields no stats.
func QualityGateStats(cfg *configapi.QualityGateConfig) []Stat {
	if cfg == nil {
		return nil
	}
	return []Stat{
		{Label: "Quality gates", Value: enabledLabel(cfg.Enabled)},
		{Label: "Max critical", Value: strconv.Itoa(cfg.MaxCritical)},
		{Label: "Max high", Value: strconv.Itoa(cfg.MaxHigh)},
		{Label: "Max medium", Value: strconv.Itoa(cfg.MaxMedium)},
		{Label: "Max low", Value: strconv.Itoa(cfg.MaxLow)},
		{Label: "Fail on secrets", Value: yesNo(cfg.FailOnSecrets)},
		{Label: "Fail on critical code issues", Value: yesNo(cfg.FailOnCriticalCodeIssues)},
	}
}

// DefaultQualityGates is the form state used before a tenant has gates configured.
func DefaultQualityGates() configapi.QualityGateConfig {
	return configapi.QualityGateConfig{Enabled: true}
}

// WorkspaceLabel pluralizes "workspace" for n.
func WorkspaceLabel(n int) string {
	return "workspace" + plural(n)
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func enabledLabel(v bool) string {
	if v {
		return "Enabled"
	}
	return "Disabled"
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
