package findings

import "strings"

// Severity is a normalized finding severity. The zero value is SeverityUnknown.
type Severity int

const (
	SeverityUnknown Severity = iota
	SeverityInfo
	SeverityLow
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

// OrderedSeverities lists severities from most to least severe.
var OrderedSeverities = []Severity{
	SeverityCritical,
	SeverityHigh,
	SeverityMedium,
	SeverityLow,
	SeverityInfo,
	SeverityUnknown,
}

// ParseSeverity maps scanner severity labels onto Severity.
func ParseSeverity(raw string) Severity {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "critical", "crit":
		return SeverityCritical
	case "high", "error", "severe":
		return SeverityHigh
	case "medium", "moderate", "warning", "warn":
		return SeverityMedium
	case "low", "note", "minor":
		return SeverityLow
	case "info", "informational", "none", "negligible":
		return SeverityInfo
	default:
		return SeverityUnknown
	}
}

func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "critical"
	case SeverityHigh:
		return "high"
	case SeverityMedium:
		return "medium"
	case SeverityLow:
		return "low"
	case SeverityInfo:
		return "info"
	default:
		return "unknown"
	}
}

// Label is the display form used in pills and group headings.
func (s Severity) Label() string {
	switch s {
	case SeverityUnknown:
		return "Unrated"
	default:
		str := s.String()
		return strings.ToUpper(str[:1]) + str[1:]
	}
}

// Rank orders severities for sorting; lower ranks sort first.
func (s Severity) Rank() int {
	for idx, sev := range OrderedSeverities {
		if sev == s {
			return idx
		}
	}
	return len(OrderedSeverities)
}
