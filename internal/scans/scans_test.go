package scans

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/PlayerIUnknown/aegis-gui/internal/configapi"
	"github.com/PlayerIUnknown/aegis-gui/internal/findings"
)

func scanAt(id, repo, ts string) Scan {
	t, _ := ParseTimestamp(ts)
	return Scan{ID: id, Timestamp: ts, Time: t, Repository: Repository{Name: repo}, Status: StatusCompleted}
}

func TestNormalizeGate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want GateState
	}{
		{raw: `true`, want: GatePassed},
		{raw: `false`, want: GateFailed},
		{raw: `null`, want: GatePending},
		{raw: ``, want: GatePending},
		{raw: `" Passed "`, want: GatePassed},
		{raw: `"success"`, want: GatePassed},
		{raw: `"FAIL"`, want: GateFailed},
		{raw: `"error"`, want: GateFailed},
		{raw: `"maybe"`, want: GatePending},
		{raw: `1`, want: GatePending},
	}
	for _, tt := range tests {
		if got := NormalizeGate(json.RawMessage(tt.raw)); got != tt.want {
			t.Fatalf("NormalizeGate(%s) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{in: "2024-03-01T10:30:00Z", want: time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC), ok: true},
		{in: "2024-03-01T12:30:00+02:00", want: time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC), ok: true},
		{in: "2024-03-01T10:30:00.123456", want: time.Date(2024, 3, 1, 10, 30, 0, 123456000, time.UTC), ok: true},
		{in: "2024-03-01 10:30:00", want: time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC), ok: true},
		{in: "1700000000", want: time.Unix(1700000000, 0).UTC(), ok: true},
		{in: "1700000000000", want: time.Unix(1700000000, 0).UTC(), ok: true},
		{in: "  ", ok: false},
		{in: "yesterday", ok: false},
		{in: "12.", ok: false},
		{in: "-5", ok: false},
	}
	for _, tt := range tests {
		got, ok := ParseTimestamp(tt.in)
		if ok != tt.ok {
			t.Fatalf("ParseTimestamp(%q) ok = %v, want %v", tt.in, ok, tt.ok)
		}
		if ok && !got.Equal(tt.want) {
			t.Fatalf("ParseTimestamp(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseTimestampFractionalMilliseconds(t *testing.T) {
	t.Parallel()

	// 12 characters, so milliseconds with a fractional part.
	got, ok := ParseTimestamp("1700000000.5")
	if !ok {
		t.Fatalf("expected parse")
	}
	if got.Unix() != 1700000 {
		t.Fatalf("ParseTimestamp(ms) = %v", got)
	}
}

func TestFormatTimestamp(t *testing.T) {
	t.Parallel()

	if got := FormatTimestamp("2024-03-01T15:04:00Z"); got != "Mar 1, 2024 3:04 PM" {
		t.Fatalf("FormatTimestamp = %q", got)
	}
	if got := FormatTimestamp("not a date"); got != EmptyValue {
		t.Fatalf("FormatTimestamp(invalid) = %q", got)
	}
}

func TestMapScanDetailsUsesStatusText(t *testing.T) {
	t.Parallel()

	var dto configapi.ScanDetailsResponse
	raw := `{
		"id":"s1","timestamp":"2024-03-01T10:00:00Z","status":"completed","status_text":"failed",
		"quality_gate_passed":"fail","quality_gate_reasons":[" too many criticals ",""],
		"repository":{"repo_name":"api","branch":"main","commit_hash":"0123456789abcdef"},
		"summary":{"packages_found":4,"critical_severity":1},
		"tools":{"syft":{"output":[{"name":"react","version":"18.2.0"}]}}
	}`
	if err := json.Unmarshal([]byte(raw), &dto); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	details := MapScanDetails(dto)
	if details.Status != StatusFailed || details.Gate != GateFailed {
		t.Fatalf("status/gate = %q/%v", details.Status, details.Gate)
	}
	if len(details.GateReasons) != 1 || details.GateReasons[0] != "too many criticals" {
		t.Fatalf("GateReasons = %v", details.GateReasons)
	}
	if details.Repository.ShortCommit() != "01234567" {
		t.Fatalf("ShortCommit = %q", details.Repository.ShortCommit())
	}
	if !details.HasTime() || details.Summary.PackagesFound != 4 {
		t.Fatalf("unexpected details %+v", details.Scan)
	}
	if len(details.Tools) != 1 || details.Tools[0].Category != findings.CategorySBOM {
		t.Fatalf("unexpected tools %+v", details.Tools)
	}
	if got := details.Tools.SBOM(); len(got) != 1 || got[0].Title != "react" {
		t.Fatalf("SBOM() = %+v", got)
	}
}

func TestMapScanNumericTimestamps(t *testing.T) {
	t.Parallel()

	tests := map[string]time.Time{
		`1700000000.123`: time.Date(2023, 11, 14, 22, 13, 20, 123e6, time.UTC),
		`1700000000123`:  time.Date(2023, 11, 14, 22, 13, 20, 123e6, time.UTC),
	}
	for raw, want := range tests {
		var item configapi.ScanItem
		if err := json.Unmarshal([]byte(`{"id":"s1","timestamp":`+raw+`}`), &item); err != nil {
			t.Fatalf("Unmarshal(%s) error: %v", raw, err)
		}
		scan := MapScan(item)
		if !scan.Time.Equal(want) {
			t.Fatalf("MapScan(%s).Time = %v, want %v", raw, scan.Time, want)
		}
		if got := scan.DisplayTime(); got != "Nov 14, 2023 10:13 PM" {
			t.Fatalf("DisplayTime(%s) = %q", raw, got)
		}
	}
}

func TestMapScanFallsBackToCreatedAt(t *testing.T) {
	t.Parallel()

	scan := MapScan(configapi.ScanItem{ID: "s1", CreatedAt: "2024-01-01T00:00:00Z", Status: "running"})
	if scan.Timestamp != "2024-01-01T00:00:00Z" || !scan.HasTime() {
		t.Fatalf("unexpected scan %+v", scan)
	}
	if scan.Gate != GatePending {
		t.Fatalf("Gate = %v", scan.Gate)
	}
}

func TestGroupByRepository(t *testing.T) {
	t.Parallel()

	in := []Scan{
		scanAt("a1", "alpha", "2024-01-01T00:00:00Z"),
		scanAt("b1", "beta", "2024-02-01T00:00:00Z"),
		scanAt("a2", "alpha", "2024-03-01T00:00:00Z"),
		scanAt("a3", "alpha", "2024-03-01T00:00:00Z"),
		scanAt("u1", "", "garbage"),
		scanAt("b2", "beta", "garbage"),
	}

	groups := GroupByRepository(in)
	if len(groups) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(groups))
	}
	if groups[0].Name != "alpha" || groups[1].Name != "beta" || groups[2].Name != UnknownRepository {
		t.Fatalf("unexpected group order %q %q %q", groups[0].Name, groups[1].Name, groups[2].Name)
	}
	if groups[0].Latest.ID != "a2" {
		t.Fatalf("alpha latest = %q, want a2 (ties keep the earlier scan)", groups[0].Latest.ID)
	}
	if groups[1].Latest.ID != "b1" {
		t.Fatalf("beta latest = %q, want b1", groups[1].Latest.ID)
	}
	if ids := []string{groups[0].Scans[0].ID, groups[0].Scans[1].ID, groups[0].Scans[2].ID}; ids[0] != "a1" || ids[2] != "a3" {
		t.Fatalf("alpha scans reordered: %v", ids)
	}

	for _, group := range groups {
		for _, scan := range group.Scans {
			if newer(scan, *group.Latest) {
				t.Fatalf("group %q has scan %q newer than latest %q", group.Name, scan.ID, group.Latest.ID)
			}
		}
	}
}

func TestFilterRepositories(t *testing.T) {
	t.Parallel()

	healthy := scanAt("h", "payments-api", "2024-01-01T00:00:00Z")
	healthy.Gate = GatePassed

	failing := scanAt("f", "web", "2024-01-02T00:00:00Z")
	failing.Gate = GateFailed

	pending := scanAt("p", "Payments-worker", "2024-01-03T00:00:00Z")

	noisy := scanAt("n", "infra", "2024-01-04T00:00:00Z")
	noisy.Gate = GatePassed
	noisy.Summary.SecretsFound = 1

	groups := GroupByRepository([]Scan{healthy, failing, pending, noisy})

	names := func(in []RepositoryGroup) map[string]bool {
		out := map[string]bool{}
		for _, g := range in {
			out[g.Name] = true
		}
		return out
	}

	if got := FilterRepositories(groups, "", RiskAll); len(got) != 4 {
		t.Fatalf("all = %d groups", len(got))
	}
	if got := names(FilterRepositories(groups, " PAYMENTS ", RiskAll)); len(got) != 2 || !got["payments-api"] || !got["Payments-worker"] {
		t.Fatalf("search = %v", got)
	}
	if got := names(FilterRepositories(groups, "", RiskHealthy)); len(got) != 1 || !got["payments-api"] {
		t.Fatalf("healthy = %v", got)
	}
	got := names(FilterRepositories(groups, "", RiskAttention))
	if len(got) != 2 || !got["web"] || !got["infra"] {
		t.Fatalf("attention = %v (a pending gate alone is neither)", got)
	}
}

func TestParseRiskFilter(t *testing.T) {
	t.Parallel()

	if ParseRiskFilter("Attention") != RiskAttention || ParseRiskFilter("bogus") != RiskAll {
		t.Fatalf("unexpected ParseRiskFilter results")
	}
	if RiskHealthy.Label() != "Passing gates" {
		t.Fatalf("Label = %q", RiskHealthy.Label())
	}
}

func TestSortAndSelectRuns(t *testing.T) {
	t.Parallel()

	runs := SortRuns([]Scan{
		scanAt("old", "r", "2024-01-01T00:00:00Z"),
		scanAt("bad", "r", ""),
		scanAt("new", "r", "2024-05-01T00:00:00Z"),
	})
	if runs[0].ID != "new" || runs[1].ID != "old" || runs[2].ID != "bad" {
		t.Fatalf("SortRuns order = %s %s %s", runs[0].ID, runs[1].ID, runs[2].ID)
	}

	if run, ok := SelectRun(runs, "old"); !ok || run.ID != "old" {
		t.Fatalf("SelectRun(old) = %q %v", run.ID, ok)
	}
	if run, ok := SelectRun(runs, "missing"); !ok || run.ID != "new" {
		t.Fatalf("SelectRun(missing) = %q %v", run.ID, ok)
	}
	if _, ok := SelectRun(nil, "x"); ok {
		t.Fatalf("SelectRun(nil) should report false")
	}
}

func TestSelectRepository(t *testing.T) {
	t.Parallel()

	groups := []RepositoryGroup{{ID: "a"}, {ID: "b"}}
	if g, _ := SelectRepository(groups, "b"); g.ID != "b" {
		t.Fatalf("SelectRepository(b) = %q", g.ID)
	}
	if g, _ := SelectRepository(groups, "zzz"); g.ID != "a" {
		t.Fatalf("SelectRepository(zzz) = %q", g.ID)
	}
	if _, ok := SelectRepository(nil, "a"); ok {
		t.Fatalf("SelectRepository(nil) should report false")
	}
}

func TestOverview(t *testing.T) {
	t.Parallel()

	first := scanAt("1", "api", "2024-01-01T09:00:00Z")
	first.Gate = GatePassed
	second := scanAt("2", "api", "2024-01-02T09:00:00Z")
	second.Gate = GateFailed
	third := scanAt("3", "api", "2024-01-03T09:00:00Z")
	third.Status = StatusRunning
	third.Repository.Branch = "main"
	third.Repository.CommitHash = "abcdef0123456"
	third.Summary.PackagesFound = 12
	third.Summary.VulnerabilitiesInPackages = 2

	groups := GroupByRepository([]Scan{first, second, third})
	ov := Overview(groups[0])

	if ov.TotalRuns != 3 || ov.Passing != 1 || ov.Failed != 1 || ov.Running != 1 {
		t.Fatalf("counts = %+v", ov)
	}
	if ov.LastCompleted != "Jan 2, 2024 9:00 AM" {
		t.Fatalf("LastCompleted = %q", ov.LastCompleted)
	}
	if ov.GateLabel != "Pending" || ov.Branch != "main" || ov.CommitHelper != "Commit #abcdef01" {
		t.Fatalf("latest fields = %+v", ov)
	}
	if ov.Packages != "12" || ov.VulnerableHelper != "2 vulnerable" || ov.StatusHelper != "Status: running" {
		t.Fatalf("package fields = %+v", ov)
	}
	if ov.RunCountLabel != "3 recorded runs for this workspace." {
		t.Fatalf("RunCountLabel = %q", ov.RunCountLabel)
	}

	empty := Overview(RepositoryGroup{Name: "none"})
	if empty.GateLabel != EmptyValue || empty.Packages != EmptyValue || empty.HasLatestScan {
		t.Fatalf("empty overview = %+v", empty)
	}
}

func TestPassRate(t *testing.T) {
	t.Parallel()

	var summary configapi.DashboardSummary
	if PassRate(summary) != 0 {
		t.Fatalf("PassRate(empty) != 0")
	}
	summary.Totals.Scans = 3
	summary.QualityGate.Passed = 2
	if got := PassRate(summary); got != 67 {
		t.Fatalf("PassRate = %d, want 67", got)
	}
}

func TestQualityGateStatsAndLabels(t *testing.T) {
	t.Parallel()

	if QualityGateStats(nil) != nil {
		t.Fatalf("QualityGateStats(nil) should be nil")
	}
	stats := QualityGateStats(&configapi.QualityGateConfig{Enabled: true, MaxHigh: 3, FailOnSecrets: true})
	if len(stats) != 7 || stats[0].Value != "Enabled" || stats[2].Value != "3" || stats[5].Value != "Yes" || stats[6].Value != "No" {
		t.Fatalf("stats = %+v", stats)
	}
	if WorkspaceLabel(1) != "workspace" || WorkspaceLabel(0) != "workspaces" {
		t.Fatalf("unexpected workspace labels")
	}
}
