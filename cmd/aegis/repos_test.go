package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/PlayerIUnknown/aegis-gui/internal/scans"
)

func TestWriteRepositoryTable(t *testing.T) {
	t.Parallel()

	latest := scans.Scan{
		ID:         "s2",
		Time:       time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC),
		Status:     scans.StatusCompleted,
		Gate:       scans.GateFailed,
		Repository: scans.Repository{Name: "acme/api", Branch: "main", CommitHash: "abcdef1234567890"},
	}
	groups := []scans.RepositoryGroup{
		{ID: "acme/api", Name: "acme/api", Scans: []scans.Scan{latest, {ID: "s1"}}, Latest: &latest},
		{ID: "acme/empty", Name: "acme/empty"},
	}

	var out bytes.Buffer
	if err := writeRepositoryTable(&out, groups); err != nil {
		t.Fatalf("writeRepositoryTable() error = %v", err)
	}

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d:\n%s", len(lines), out.String())
	}
	if fields := strings.Fields(lines[0]); len(fields) != 7 || fields[0] != "REPOSITORY" || fields[6] != "COMMIT" {
		t.Fatalf("unexpected header %q", lines[0])
	}
	for _, want := range []string{"acme/api", "2", "completed", "Failed", "main", "abcdef12"} {
		if !strings.Contains(lines[1], want) {
			t.Fatalf("row %q missing %q", lines[1], want)
		}
	}
	if !strings.Contains(lines[2], "Pending") || !strings.Contains(lines[2], scans.EmptyValue) {
		t.Fatalf("empty repository row = %q", lines[2])
	}
}
