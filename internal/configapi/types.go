package configapi

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"time"
)

type AuthResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	TenantID    string `json:"tenant_id"`
	ExpiresIn   int64  `json:"expires_in"`
}

type DashboardSummary struct {
	Status      string       `json:"status"`
	Totals      ScanTotals   `json:"totals"`
	ByStatus    StatusCounts `json:"by_status"`
	QualityGate GateCounts   `json:"quality_gate"`
	Repos       RepoCounts   `json:"repos"`
	LastScanAt  Timestamp    `json:"last_scan_at"`
}

type ScanTotals struct {
	Scans int `json:"scans"`
}

type StatusCounts struct {
	Running   int `json:"running"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
}

type GateCounts struct {
	Passed int `json:"passed"`
	Failed int `json:"failed"`
}

type RepoCounts struct {
	TotalRepos   int `json:"total_repos"`
	TotalCommits int `json:"total_commits"`
}

type ScanSummary struct {
	PackagesFound             int `json:"packages_found"`
	VulnerabilitiesInPackages int `json:"vulnerabilities_in_packages"`
	SecretsFound              int `json:"secrets_found"`
	CodeVulnerabilities       int `json:"code_vulnerabilities"`
	CriticalSeverity          int `json:"critical_severity"`
	HighSeverity              int `json:"high_severity"`
	MediumSeverity            int `json:"medium_severity"`
	LowSeverity               int `json:"low_severity"`
}

type RepositoryInfo struct {
	RepoName   string `json:"repo_name"`
	Branch     string `json:"branch"`
	CommitHash string `json:"commit_hash"`
}

// ScanItem is one entry of GET /v1/scans. QualityGatePassed is kept raw because
// the API sends a bool, null, or occasionally a string verdict.
type ScanItem struct {
	ID                 string          `json:"id"`
	Timestamp          Timestamp       `json:"timestamp"`
	CreatedAt          Timestamp       `json:"created_at"`
	ScanType           string          `json:"scan_type"`
	TargetPath         string          `json:"target_path"`
	Status             string          `json:"status"`
	QualityGatePassed  json.RawMessage `json:"quality_gate_passed"`
	QualityGateReasons []string        `json:"quality_gate_reasons"`
	Repository         RepositoryInfo  `json:"repository"`
	Summary            ScanSummary     `json:"summary"`
}

type ScanListResponse struct {
	Status string     `json:"status"`
	Items  []ScanItem `json:"items"`
	Count  int        `json:"count"`
}

// ScanDetailsResponse is GET /v1/scans/{id}. The status is reported as status_text.
type ScanDetailsResponse struct {
	ScanItem
	StatusText string                `json:"status_text"`
	Tools      map[string]ToolOutput `json:"tools"`
}

// ToolOutput holds the raw records one tool produced.
type ToolOutput struct {
	Output []json.RawMessage `json:"output"`
}

// UnmarshalJSON accepts a non-array output as a single record.
func (t *ToolOutput) UnmarshalJSON(data []byte) error {
	var payload struct {
		Output json.RawMessage `json:"output"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}
	raw := bytes.TrimSpace(payload.Output)
	switch {
	case len(raw) == 0 || bytes.Equal(raw, []byte("null")):
		t.Output = nil
	case raw[0] == '[':
		return json.Unmarshal(raw, &t.Output)
	default:
		t.Output = []json.RawMessage{append(json.RawMessage(nil), raw...)}
	}
	return nil
}

type TenantProfile struct {
	Status           string             `json:"status"`
	TenantID         string             `json:"tenant_id"`
	Name             string             `json:"name"`
	Email            string             `json:"email"`
	APIKey           string             `json:"api_key"`
	SubscriptionTier string             `json:"subscription_tier"`
	QualityGates     *QualityGateConfig `json:"quality_gates"`
}

type QualityGateConfig struct {
	Enabled                  bool `json:"enabled"`
	MaxCritical              int  `json:"max_critical"`
	MaxHigh                  int  `json:"max_high"`
	MaxMedium                int  `json:"max_medium"`
	MaxLow                   int  `json:"max_low"`
	FailOnSecrets            bool `json:"fail_on_secrets"`
	FailOnCriticalCodeIssues bool `json:"fail_on_critical_code_issues"`
}

// QualityGateUpdate is a partial update; nil fields are omitted from the request.
type QualityGateUpdate struct {
	Enabled                  *bool `json:"enabled,omitempty"`
	MaxCritical              *int  `json:"max_critical,omitempty"`
	MaxHigh                  *int  `json:"max_high,omitempty"`
	MaxMedium                *int  `json:"max_medium,omitempty"`
	MaxLow                   *int  `json:"max_low,omitempty"`
	FailOnSecrets            *bool `json:"fail_on_secrets,omitempty"`
	FailOnCriticalCodeIssues *bool `json:"fail_on_critical_code_issues,omitempty"`
}

type QualityGateUpdateResponse struct {
	Status       string            `json:"status"`
	Message      string            `json:"message"`
	QualityGates QualityGateConfig `json:"quality_gates"`
}

// Timestamp is a timestamp as sent by the API: an ISO string, a numeric
// string, or a bare JSON number. null decodes to the empty string. Bare
// numbers are epoch seconds unless they exceed epochMillisThreshold, and are
// stored as RFC 3339 so later parsing cannot misread their unit.
type Timestamp string

const (
	epochMillisThreshold = 1e12
	maxEpochMillis       = 8.64e15
)

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	raw := bytes.TrimSpace(data)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		*t = ""
		return nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		*t = Timestamp(strings.TrimSpace(s))
		return nil
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err != nil {
		return err
	}
	*t = Timestamp(epochNumber(n, string(raw)))
	return nil
}

func epochNumber(n float64, raw string) string {
	ms := n
	if n <= epochMillisThreshold {
		ms = n * 1000
	}
	if math.IsNaN(ms) || math.Abs(ms) > maxEpochMillis {
		return raw
	}
	ms = math.Round(ms)
	sec := math.Floor(ms / 1000)
	nsec := (ms - sec*1000) * 1e6
	return time.Unix(int64(sec), int64(nsec)).UTC().Format(time.RFC3339Nano)
}

func (t Timestamp) String() string { return string(t) }
