package scans

import (
	"sort"
	"strings"
)

// RepositoryGroup is every scan of one repository together with its latest scan.
type RepositoryGroup struct {
	ID     string `json:"id"`
	Name   string `json:"repoName"`
	Scans  []Scan `json:"scans"`
	Latest *Scan  `json:"latestScan,omitempty"`
}

// newer reports whether a should replace b as the latest scan. Ties keep b, and
// an unparseable timestamp never beats a parseable one.
func newer(a, b Scan) bool {
	if !a.HasTime() {
		return false
	}
	if !b.HasTime() {
		return true
	}
	return a.Time.After(b.Time)
}

// GroupByRepository groups scans by repository name. Scans keep their input
// order inside a group; groups are ordered by latest scan, newest first, and
// groups without a dated scan sort last.
func GroupByRepository(in []Scan) []RepositoryGroup {
	index := make(map[string]int)
	var groups []RepositoryGroup
	for _, scan := range in {
		key := strings.TrimSpace(scan.Repository.Name)
		if key == "" {
			key = UnknownRepository
		}
		idx, ok := index[key]
		if !ok {
			idx = len(groups)
			index[key] = idx
			groups = append(groups, RepositoryGroup{ID: key, Name: key})
		}
		groups[idx].Scans = append(groups[idx].Scans, scan)
	}

	for i := range groups {
		scans := groups[i].Scans
		latest := 0
		for j := 1; j < len(scans); j++ {
			if newer(scans[j], scans[latest]) {
				latest = j
			}
		}
		groups[i].Latest = &groups[i].Scans[latest]
	}

	sort.SliceStable(groups, func(i, j int) bool {
		a, b := groups[i].Latest, groups[j].Latest
		return newer(*a, *b)
	})
	return groups
}

// SelectRepository returns the group with id, falling back to the first group.
func SelectRepository(groups []RepositoryGroup, id string) (RepositoryGroup, bool) {
	if len(groups) == 0 {
		return RepositoryGroup{}, false
	}
	id = strings.TrimSpace(id)
	for _, group := range groups {
		if group.ID == id {
			return group, true
		}
	}
	return groups[0], true
}

// SortRuns orders scans newest first; undated scans keep their order at the end.
func SortRuns(in []Scan) []Scan {
	out := append([]Scan(nil), in...)
	sort.SliceStable(out, func(i, j int) bool {
		return newer(out[i], out[j])
	})
	return out
}

// SelectRun returns the run with id when present, else the first run.
func SelectRun(runs []Scan, id string) (Scan, bool) {
	if len(runs) == 0 {
		return Scan{}, false
	}
	id = strings.TrimSpace(id)
	if id != "" {
		for _, run := range runs {
			if run.ID == id {
				return run, true
			}
		}
	}
	return runs[0], true
}
