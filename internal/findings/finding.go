// Package findings classifies raw scanner tool output into typed findings.
package findings

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Kind discriminates the Finding union.
type Kind string

const (
	KindSCA           Kind = "sca"
	KindSBOM          Kind = "sbom"
	KindSecret        Kind = "secret"
	KindVulnerability Kind = "vulnerability"
	KindUnknown       Kind = "unknown"
)

// Finding is one record of tool output. Which fields are set depends on Kind:
// SCA sets Package/Version/FixVersions, SBOM sets Title/Version/ComponentType/PURL,
// secrets set Match/File/Line, vulnerabilities set Message/File/Line/Snippet.
type Finding struct {
	Kind          Kind
	Tool          string
	Title         string
	Severity      Severity
	Package       string
	Version       string
	FixVersions   []string
	ComponentType string
	PURL          string
	Match         string
	File          string
	Line          int
	Message       string
	Snippet       string
	RuleID        string
	Description   string
	Raw           json.RawMessage
}

// Location renders file:line, or just the file when the line is unknown.
func (f Finding) Location() string {
	if f.File == "" {
		return ""
	}
	if f.Line > 0 {
		return f.File + ":" + strconv.Itoa(f.Line)
	}
	return f.File
}

// RedactedMatch keeps the first four characters of a secret match.
func (f Finding) RedactedMatch() string {
	runes := []rune(strings.TrimSpace(f.Match))
	if len(runes) == 0 {
		return ""
	}
	if len(runes) <= 4 {
		return strings.Repeat("*", len(runes))
	}
	return string(runes[:4]) + strings.Repeat("*", min(len(runes)-4, 12))
}

var (
	secretKeys     = []string{"match", "secret", "secret_type"}
	packageKeys    = []string{"package", "pkg_name", "package_name"}
	scaMarkerKeys  = []string{"fix_versions", "fixed_versions", "fixed_version", "vulnerability_id", "cve", "severity", "vulnerability"}
	fileKeys       = []string{"file", "path", "filename", "file_path"}
	lineKeys       = []string{"line", "line_number", "start_line", "StartLine"}
	severityKeys   = []string{"severity", "level", "risk"}
	ruleKeys       = []string{"rule_id", "rule", "check_id", "test_id", "vulnerability_id", "cve", "id"}
	snippetKeys    = []string{"code", "snippet", "code_snippet", "lines"}
	fixKeys        = []string{"fix_versions", "fixed_versions", "fixed_version", "fix_version"}
	describeKeys   = []string{"description", "title", "summary", "details"}
	sbomMarkerKeys = []string{"type", "version", "purl"}
)

// Decode classifies one raw record emitted by tool.
func Decode(tool string, raw json.RawMessage) Finding {
	raw = bytes.TrimSpace(raw)
	f := Finding{Kind: KindUnknown, Tool: tool, Raw: append(json.RawMessage(nil), raw...)}

	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		var text string
		if json.Unmarshal(raw, &text) == nil && strings.TrimSpace(text) != "" {
			f.Title = strings.TrimSpace(text)
		} else {
			f.Title = "Unrecognized finding"
		}
		return f
	}

	f.Severity = ParseSeverity(firstString(obj, severityKeys...))
	f.File = firstString(obj, fileKeys...)
	f.Line = firstInt(obj, lineKeys...)
	f.Description = firstString(obj, describeKeys...)

	switch {
	case hasAny(obj, secretKeys...):
		f.Kind = KindSecret
		f.Match = firstString(obj, "match", "secret")
		f.RuleID = firstString(obj, "rule_id", "rule", "secret_type", "type")
		f.Title = firstNonEmpty(f.RuleID, f.Description)
		if f.Title == "" {
			f.Title = "Secret"
			if f.File != "" {
				f.Title = "Secret in " + f.File
			}
		}
	case hasAny(obj, packageKeys...) && hasAny(obj, scaMarkerKeys...):
		f.Kind = KindSCA
		f.Package = firstString(obj, packageKeys...)
		f.Version = firstString(obj, "version", "installed_version", "package_version")
		f.FixVersions = stringList(obj, fixKeys...)
		f.RuleID = firstString(obj, "vulnerability_id", "cve", "id", "vulnerability")
		f.Title = f.Package
	case hasAny(obj, "message") && hasAny(obj, fileKeys...):
		f.Kind = KindVulnerability
		f.Message = firstString(obj, "message")
		f.Snippet = firstString(obj, snippetKeys...)
		f.RuleID = firstString(obj, ruleKeys...)
		f.Title = firstLine(f.Message)
	case hasAny(obj, "name") && hasAny(obj, sbomMarkerKeys...):
		f.Kind = KindSBOM
		f.Title = firstString(obj, "name")
		f.Version = firstString(obj, "version")
		f.ComponentType = firstString(obj, "type")
		f.PURL = firstString(obj, "purl")
	default:
		f.RuleID = firstString(obj, ruleKeys...)
		f.Title = firstNonEmpty(firstString(obj, "name", "title", "message"), f.RuleID, "Unrecognized finding")
	}
	return f
}

// DecodeAll decodes every record of one tool's output.
func DecodeAll(tool string, records []json.RawMessage) []Finding {
	out := make([]Finding, 0, len(records))
	for _, raw := range records {
		out = append(out, Decode(tool, raw))
	}
	return out
}

func hasAny(obj map[string]any, keys ...string) bool {
	for _, key := range keys {
		if v, ok := obj[key]; ok && v != nil {
			return true
		}
	}
	return false
}

func firstString(obj map[string]any, keys ...string) string {
	for _, key := range keys {
		if s := scalarString(obj[key]); s != "" {
			return s
		}
	}
	return ""
}

func scalarString(v any) string {
	switch value := v.(type) {
	case string:
		return strings.TrimSpace(value)
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(value)
	case []any:
		parts := make([]string, 0, len(value))
		for _, item := range value {
			if s := scalarString(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "\n")
	default:
		return ""
	}
}

func firstInt(obj map[string]any, keys ...string) int {
	for _, key := range keys {
		switch value := obj[key].(type) {
		case float64:
			if value > 0 {
				return int(value)
			}
		case string:
			if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && n > 0 {
				return n
			}
		}
	}
	return 0
}

func stringList(obj map[string]any, keys ...string) []string {
	for _, key := range keys {
		var out []string
		switch value := obj[key].(type) {
		case []any:
			for _, item := range value {
				if s := scalarString(item); s != "" {
					out = append(out, s)
				}
			}
		case string:
			for _, part := range strings.Split(value, ",") {
				if s := strings.TrimSpace(part); s != "" {
					out = append(out, s)
				}
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return strings.TrimSpace(s[:idx])
	}
	return s
}

// String is used in logs and test failures.
func (f Finding) String() string {
	return fmt.Sprintf("%s/%s %q (%s)", f.Tool, f.Kind, f.Title, f.Severity)
}
