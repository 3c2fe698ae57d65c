// Package scans maps Config API scan payloads into the dashboard's domain
// model and computes the repository aggregates the views render.
package scans

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/PlayerIUnknown/aegis-gui/internal/configapi"
	"github.com/PlayerIUnknown/aegis-gui/internal/findings"
)

// UnknownRepository names the group of scans reported without a repository.
const UnknownRepository = "unknown-repo"

// Status is a scan's pipeline status. Values outside the known set are kept verbatim.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

func (s Status) String() string { return string(s) }

// GateState is the tri-state quality gate verdict. The zero value is GatePending.
type GateState int

const (
	GatePending GateState = iota
	GatePassed
	GateFailed
)

func (g GateState) Label() string {
	switch g {
	case GatePassed:
		return "Passed"
	case GateFailed:
		return "Failed"
	default:
		return "Pending"
	}
}

func (g GateState) String() string {
	return strings.ToLower(g.Label())
}

// MarshalJSON keeps the API's bool-or-null shape.
func (g GateState) MarshalJSON() ([]byte, error) {
	switch g {
	case GatePassed:
		return []byte("true"), nil
	case GateFailed:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

type Summary struct {
	PackagesFound             int `json:"packagesFound"`
	VulnerabilitiesInPackages int `json:"vulnerabilitiesInPackages"`
	SecretsFound              int `json:"secretsFound"`
	CodeVulnerabilities       int `json:"codeVulnerabilities"`
	CriticalSeverity          int `json:"criticalSeverity"`
	HighSeverity              int `json:"highSeverity"`
	MediumSeverity            int `json:"mediumSeverity"`
	LowSeverity               int `json:"lowSeverity"`
}

type Repository struct {
	Name       string `json:"repoName"`
	Branch     string `json:"branch,omitempty"`
	CommitHash string `json:"commitHash,omitempty"`
}

// ShortCommit returns the first 8 characters of the commit hash.
func (r Repository) ShortCommit() string {
	if len(r.CommitHash) <= 8 {
		return r.CommitHash
	}
	return r.CommitHash[:8]
}

type Scan struct {
	ID          string     `json:"id"`
	Timestamp   string     `json:"timestamp"`
	Time        time.Time  `json:"-"`
	Status      Status     `json:"status"`
	Gate        GateState  `json:"qualityGatePassed"`
	GateReasons []string   `json:"qualityGateReasons"`
	Summary     Summary    `json:"summary"`
	Repository  Repository `json:"repository"`
	ScanType    string     `json:"scanType"`
	TargetPath  string     `json:"targetPath,omitempty"`
}

// HasTime reports whether the scan timestamp parsed.
func (s Scan) HasTime() bool {
	return !s.Time.IsZero()
}

// DisplayTime is the formatted timestamp, or an em dash when it did not parse.
func (s Scan) DisplayTime() string {
	return FormatTime(s.Time)
}

type ScanDetails struct {
	Scan
	Tools findings.ToolSet `json:"-"`
}

// NormalizeGate maps the raw quality_gate_passed value onto GateState.
func NormalizeGate(raw json.RawMessage) GateState {
	raw = bytes.TrimSpace(raw)
	switch string(raw) {
	case "true":
		return GatePassed
	case "false":
		return GateFailed
	}
	var s string
	if len(raw) == 0 || raw[0] != '"' || json.Unmarshal(raw, &s) != nil {
		return GatePending
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "passed", "pass", "success":
		return GatePassed
	case "failed", "fail", "error":
		return GateFailed
	default:
		return GatePending
	}
}

func mapSummary(in configapi.ScanSummary) Summary {
	return Summary{
		PackagesFound:             in.PackagesFound,
		VulnerabilitiesInPackages: in.VulnerabilitiesInPackages,
		SecretsFound:              in.SecretsFound,
		CodeVulnerabilities:       in.CodeVulnerabilities,
		CriticalSeverity:          in.CriticalSeverity,
		HighSeverity:              in.HighSeverity,
		MediumSeverity:            in.MediumSeverity,
		LowSeverity:               in.LowSeverity,
	}
}

func mapScanItem(in configapi.ScanItem, status string) Scan {
	ts := strings.TrimSpace(in.Timestamp.String())
	if ts == "" {
		ts = strings.TrimSpace(in.CreatedAt.String())
	}
	parsed, _ := ParseTimestamp(ts)

	reasons := make([]string, 0, len(in.QualityGateReasons))
	for _, reason := range in.QualityGateReasons {
		if reason = strings.TrimSpace(reason); reason != "" {
			reasons = append(reasons, reason)
		}
	}

	return Scan{
		ID:          strings.TrimSpace(in.ID),
		Timestamp:   ts,
		Time:        parsed,
		Status:      Status(strings.TrimSpace(status)),
		Gate:        NormalizeGate(in.QualityGatePassed),
		GateReasons: reasons,
		Summary:     mapSummary(in.Summary),
		Repository: Repository{
			Name:       strings.TrimSpace(in.Repository.RepoName),
			Branch:     strings.TrimSpace(in.Repository.Branch),
			CommitHash: strings.TrimSpace(in.Repository.CommitHash),
		},
		ScanType:   strings.TrimSpace(in.ScanType),
		TargetPath: strings.TrimSpace(in.TargetPath),
	}
}

func MapScan(in configapi.ScanItem) Scan {
	return mapScanItem(in, in.Status)
}

func MapScans(in []configapi.ScanItem) []Scan {
	out := make([]Scan, 0, len(in))
	for _, item := range in {
		out = append(out, MapScan(item))
	}
	return out
}

// MapScanDetails maps a details payload. The status comes from status_text and
// every tool's output is classified into findings.
func MapScanDetails(in configapi.ScanDetailsResponse) ScanDetails {
	status := in.StatusText
	if strings.TrimSpace(status) == "" {
		status = in.Status
	}

	tools := make(map[string][]json.RawMessage, len(in.Tools))
	for name, output := range in.Tools {
		tools[name] = output.Output
	}

	return ScanDetails{
		Scan:  mapScanItem(in.ScanItem, status),
		Tools: findings.DecodeTools(tools),
	}
}
