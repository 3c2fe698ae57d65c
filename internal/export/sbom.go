// Package export renders a scan's SBOM components as CSV or PDF.
package export

import (
	"sort"
	"strings"

	"github.com/PlayerIUnknown/aegis-gui/internal/findings"
	"github.com/PlayerIUnknown/aegis-gui/internal/scans"
)

// SBOMRow is one component of the software bill of materials.
type SBOMRow struct {
	Name    string
	Version string
	Type    string
	PURL    string
}

// Meta describes the scan an export was produced from.
type Meta struct {
	Repository string
	ScanID     string
	Timestamp  string
	Branch     string
	Commit     string
}

// MetaFor builds export metadata from scan details.
func MetaFor(details scans.ScanDetails) Meta {
	return Meta{
		Repository: details.Repository.Name,
		ScanID:     details.ID,
		Timestamp:  details.DisplayTime(),
		Branch:     details.Repository.Branch,
		Commit:     details.Repository.ShortCommit(),
	}
}

// SBOMRows collects SBOM components sorted by name then version. Identical
// components reported by several tools appear once.
func SBOMRows(details scans.ScanDetails) []SBOMRow {
	return rowsFrom(details.Tools.SBOM())
}

func rowsFrom(components []findings.Finding) []SBOMRow {
	seen := make(map[SBOMRow]struct{}, len(components))
	out := make([]SBOMRow, 0, len(components))
	for _, f := range components {
		row := SBOMRow{
			Name:    strings.TrimSpace(f.Title),
			Version: strings.TrimSpace(f.Version),
			Type:    strings.TrimSpace(f.ComponentType),
			PURL:    strings.TrimSpace(f.PURL),
		}
		if _, ok := seen[row]; ok {
			continue
		}
		seen[row] = struct{}{}
		out = append(out, row)
	}
	sort.SliceStable(out, func(i, j int) bool {
		ni, nj := strings.ToLower(out[i].Name), strings.ToLower(out[j].Name)
		if ni != nj {
			return ni < nj
		}
		return out[i].Version < out[j].Version
	})
	return out
}

// Filename returns sbom-<repo>-<scan8>.<ext> with unsafe characters replaced.
func Filename(repo, scanID, ext string) string {
	name := sanitize(repo)
	if name == "" {
		name = scans.UnknownRepository
	}
	id := sanitize(scanID)
	if len(id) > 8 {
		id = id[:8]
	}
	if id == "" {
		id = "scan"
	}
	ext = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
	if ext == "" {
		ext = "csv"
	}
	return "sbom-" + name + "-" + id + "." + ext
}

func sanitize(s string) string {
	var b strings.Builder
	lastDash := false
	for _, r := range strings.TrimSpace(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-.")
}
