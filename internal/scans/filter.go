package scans

import "strings"

type RiskFilter string

const (
	RiskAll       RiskFilter = "all"
	RiskHealthy   RiskFilter = "healthy"
	RiskAttention RiskFilter = "attention"
)

// RiskFilters lists the filter chips in display order.
var RiskFilters = []RiskFilter{RiskAll, RiskHealthy, RiskAttention}

// ParseRiskFilter returns RiskAll for unknown values.
func ParseRiskFilter(raw string) RiskFilter {
	switch RiskFilter(strings.ToLower(strings.TrimSpace(raw))) {
	case RiskHealthy:
		return RiskHealthy
	case RiskAttention:
		return RiskAttention
	default:
		return RiskAll
	}
}

func (r RiskFilter) Label() string {
	switch r {
	case RiskHealthy:
		return "Passing gates"
	case RiskAttention:
		return "Needs attention"
	default:
		return "All workspaces"
	}
}

func (r RiskFilter) Description() string {
	switch r {
	case RiskHealthy:
		return "Latest pipeline cleared every quality gate with no critical findings."
	case RiskAttention:
		return "Recent run failed, is running, or reported actionable findings."
	default:
		return "View every repository connected to Aegis."
	}
}

// HasFindings reports actionable findings in a scan summary.
func HasFindings(s Summary) bool {
	return s.CodeVulnerabilities > 0 ||
		s.VulnerabilitiesInPackages > 0 ||
		s.SecretsFound > 0 ||
		s.HighSeverity > 0 ||
		s.CriticalSeverity > 0
}

// Healthy is a passed gate, no findings, and a completed run.
func Healthy(s Scan) bool {
	return s.Gate == GatePassed && !HasFindings(s.Summary) && s.Status == StatusCompleted
}

// NeedsAttention is a failed gate, any findings, or a run that has not completed.
// A pending gate alone does not need attention.
func NeedsAttention(s Scan) bool {
	return s.Gate == GateFailed || HasFindings(s.Summary) || s.Status != StatusCompleted
}

// FilterRepositories applies the name search and risk filter. The search is a
// case-insensitive substring match on the repository name.
func FilterRepositories(groups []RepositoryGroup, query string, risk RiskFilter) []RepositoryGroup {
	needle := strings.ToLower(strings.TrimSpace(query))
	out := make([]RepositoryGroup, 0, len(groups))
	for _, group := range groups {
		if needle != "" && !strings.Contains(strings.ToLower(group.Name), needle) {
			continue
		}
		if risk == RiskAll || risk == "" {
			out = append(out, group)
			continue
		}
		if group.Latest == nil {
			continue
		}
		latest := *group.Latest
		if (risk == RiskHealthy && Healthy(latest)) || (risk == RiskAttention && NeedsAttention(latest)) {
			out = append(out, group)
		}
	}
	return out
}
