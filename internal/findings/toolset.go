package findings

import (
	"encoding/json"
	"sort"
	"strings"
)

// ToolResult is the decoded output of one scanner tool.
type ToolResult struct {
	Name     string
	Category Category
	Findings []Finding
}

// ToolSet is the decoded tool output of one scan, ordered by tool name.
type ToolSet []ToolResult

// SeverityGroup holds the findings sharing one severity.
type SeverityGroup struct {
	Severity Severity
	Findings []Finding
}

// DecodeTools classifies every tool's records. Tool names are sorted for stable output.
func DecodeTools(tools map[string][]json.RawMessage) ToolSet {
	if len(tools) == 0 {
		return nil
	}
	names := make([]string, 0, len(tools))
	for name := range tools {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(ToolSet, 0, len(names))
	for _, name := range names {
		out = append(out, ToolResult{
			Name:     name,
			Category: CategoryForTool(name),
			Findings: DecodeAll(name, tools[name]),
		})
	}
	return out
}

// Filter keeps the tools of one category. CategoryNone keeps every tool.
func (ts ToolSet) Filter(category Category) ToolSet {
	if category == CategoryNone {
		return ts
	}
	out := make(ToolSet, 0, len(ts))
	for _, tool := range ts {
		if tool.Category == category {
			out = append(out, tool)
		}
	}
	return out
}

// SBOM collects SBOM components across all tools.
func (ts ToolSet) SBOM() []Finding {
	var out []Finding
	for _, tool := range ts {
		for _, f := range tool.Findings {
			if f.Kind == KindSBOM {
				out = append(out, f)
			}
		}
	}
	return out
}

// Total counts findings across all tools.
func (ts ToolSet) Total() int {
	n := 0
	for _, tool := range ts {
		n += len(tool.Findings)
	}
	return n
}

// SortBySeverity orders findings most severe first, then by title. The input is not modified.
func SortBySeverity(in []Finding) []Finding {
	out := append([]Finding(nil), in...)
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := out[i].Severity.Rank(), out[j].Severity.Rank()
		if ri != rj {
			return ri < rj
		}
		return strings.ToLower(out[i].Title) < strings.ToLower(out[j].Title)
	})
	return out
}

// GroupBySeverity buckets findings in severity order, omitting empty buckets.
func GroupBySeverity(in []Finding) []SeverityGroup {
	buckets := make(map[Severity][]Finding, len(OrderedSeverities))
	for _, f := range SortBySeverity(in) {
		buckets[f.Severity] = append(buckets[f.Severity], f)
	}
	out := make([]SeverityGroup, 0, len(buckets))
	for _, sev := range OrderedSeverities {
		if items := buckets[sev]; len(items) > 0 {
			out = append(out, SeverityGroup{Severity: sev, Findings: items})
		}
	}
	return out
}

// SeverityCounts tallies findings per severity.
func SeverityCounts(in []Finding) map[Severity]int {
	out := make(map[Severity]int, len(OrderedSeverities))
	for _, f := range in {
		out[f.Severity]++
	}
	return out
}
