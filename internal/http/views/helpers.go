package views

import (
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"

	"github.com/PlayerIUnknown/aegis-gui/internal/findings"
	"github.com/PlayerIUnknown/aegis-gui/internal/scans"
)

func FormatInt(v int) string {
	return strconv.Itoa(v)
}

func QueryEscape(v string) string {
	return url.QueryEscape(v)
}

// DashboardURL builds a dashboard location. Empty values and the default risk filter are omitted.
func DashboardURL(query string, risk scans.RiskFilter, repo, run string, tool findings.Category) string {
	values := url.Values{}
	if query = strings.TrimSpace(query); query != "" {
		values.Set("q", query)
	}
	if risk != "" && risk != scans.RiskAll {
		values.Set("risk", string(risk))
	}
	if repo = strings.TrimSpace(repo); repo != "" {
		values.Set("repo", repo)
	}
	if run = strings.TrimSpace(run); run != "" {
		values.Set("run", run)
	}
	if tool != findings.CategoryNone {
		values.Set("tool", string(tool))
	}
	if len(values) == 0 {
		return "/"
	}
	return "/?" + values.Encode()
}

// RunDetailsURL is the fragment endpoint for one run's details.
func RunDetailsURL(scanID, repo string, tool findings.Category) string {
	href := "/runs/" + url.PathEscape(scanID)
	values := url.Values{}
	if repo = strings.TrimSpace(repo); repo != "" {
		values.Set("repo", repo)
	}
	if tool != findings.CategoryNone {
		values.Set("tool", string(tool))
	}
	if len(values) == 0 {
		return href
	}
	return href + "?" + values.Encode()
}

// ExportURL is the SBOM download location for a scan in the given format.
func ExportURL(scanID, format string) string {
	return "/scans/" + url.PathEscape(scanID) + "/sbom." + format
}

// Initials returns the first two characters of a repository name.
func Initials(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.LastIndex(name, "/"); i >= 0 && i < len(name)-1 {
		name = name[i+1:]
	}
	out := make([]rune, 0, 2)
	for _, r := range name {
		if len(out) == 2 {
			break
		}
		out = append(out, r)
	}
	if len(out) == 0 {
		return "?"
	}
	return strings.ToUpper(string(out))
}

func GateClass(g scans.GateState) string {
	switch g {
	case scans.GatePassed:
		return "gate-passed"
	case scans.GateFailed:
		return "gate-failed"
	default:
		return "gate-pending"
	}
}

func GatePillLabel(g scans.GateState) string {
	switch g {
	case scans.GatePassed:
		return "Gate passed"
	case scans.GateFailed:
		return "Gate failed"
	default:
		return "Gate pending"
	}
}

func SeverityClass(s findings.Severity) string {
	return "severity-" + s.String()
}

func ToneClass(tone string) string {
	switch tone {
	case "accent", "warning", "danger", "success":
		return "tone-" + tone
	default:
		return "tone-neutral"
	}
}

// IDSafe maps v onto the characters allowed in an element id. Values that
// lose non-ASCII runes get a hash suffix so distinct names keep distinct ids.
func IDSafe(v string) string {
	var b strings.Builder
	dropped := false
	for _, r := range v {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r < utf8.RuneSelf:
			b.WriteByte('-')
		default:
			dropped = true
		}
	}
	if dropped {
		b.WriteByte('-')
		b.WriteString(strconv.FormatUint(xxhash.Sum64String(v)>>32, 16))
	}
	return b.String()
}
