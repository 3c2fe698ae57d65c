package findings

import "strings"

// Category groups scanner tools by the summary counter they feed.
type Category string

const (
	CategoryNone     Category = ""
	CategorySBOM     Category = "sbom"
	CategorySCA      Category = "sca"
	CategoryVulnScan Category = "vulnScan"
	CategorySecrets  Category = "secrets"
	CategoryOther    Category = "other"
)

// FilterCategories are the categories a run's detail stats can toggle, in display order.
var FilterCategories = []Category{CategorySBOM, CategorySCA, CategoryVulnScan, CategorySecrets}

// ParseCategory accepts a query value and returns CategoryNone for anything not toggleable.
func ParseCategory(raw string) Category {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "sbom":
		return CategorySBOM
	case "sca":
		return CategorySCA
	case "vulnscan", "vuln_scan", "vuln-scan", "vulnerability":
		return CategoryVulnScan
	case "secrets", "secret":
		return CategorySecrets
	default:
		return CategoryNone
	}
}

// CategoryForTool classifies a tool name from the scan details payload.
func CategoryForTool(name string) Category {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.NewReplacer("_", " ", "-", " ").Replace(n)
	switch {
	case n == "":
		return CategoryOther
	case strings.Contains(n, "sbom") || strings.Contains(n, "syft") || strings.Contains(n, "inventory"):
		return CategorySBOM
	case strings.Contains(n, "secret") || strings.Contains(n, "gitleaks") || strings.Contains(n, "trufflehog"):
		return CategorySecrets
	case n == "sca" || strings.HasPrefix(n, "sca ") || strings.Contains(n, "dependency") ||
		strings.Contains(n, "grype") || strings.Contains(n, "osv"):
		return CategorySCA
	case strings.Contains(n, "vuln") || strings.Contains(n, "sast") || strings.Contains(n, "semgrep") ||
		strings.Contains(n, "bandit") || strings.Contains(n, "code"):
		return CategoryVulnScan
	default:
		return CategoryOther
	}
}

// Label returns the display name used by the run detail stats.
func (c Category) Label() string {
	switch c {
	case CategorySBOM:
		return "SBOM"
	case CategorySCA:
		return "SCA"
	case CategoryVulnScan:
		return "Vuln Scan"
	case CategorySecrets:
		return "Secrets"
	case CategoryOther:
		return "Other"
	default:
		return ""
	}
}

// Tooltip describes what the category's tools look for.
func (c Category) Tooltip() string {
	switch c {
	case CategorySBOM:
		return "Enumerates dependencies and components detected in the build."
	case CategorySCA:
		return "Identifies known vulnerabilities affecting third-party packages."
	case CategoryVulnScan:
		return "Surfaces security issues uncovered in application source code."
	case CategorySecrets:
		return "Flags hardcoded credentials, tokens, and other sensitive values."
	default:
		return ""
	}
}
