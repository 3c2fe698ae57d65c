package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/PlayerIUnknown/aegis-gui/internal/scans"
)

func TestExportOutputPath(t *testing.T) {
	t.Parallel()

	details := scans.ScanDetails{Scan: scans.Scan{ID: "0123456789abcdef", Repository: scans.Repository{Name: "acme/api"}}}
	if got := exportOutputPath("", details, "pdf"); got != "sbom-acme-api-01234567.pdf" {
		t.Fatalf("default path = %q", got)
	}
	if got := exportOutputPath(" out.csv ", details, "csv"); got != "out.csv" {
		t.Fatalf("explicit path = %q", got)
	}
}

func TestWriteOutput(t *testing.T) {
	t.Parallel()

	var stdout bytes.Buffer
	if err := writeOutput("-", &stdout, []byte("a,b\n")); err != nil {
		t.Fatalf("writeOutput(-) error = %v", err)
	}
	if stdout.String() != "a,b\n" {
		t.Fatalf("stdout = %q", stdout.String())
	}

	path := filepath.Join(t.TempDir(), "sbom.csv")
	if err := writeOutput(path, &stdout, []byte("x")); err != nil {
		t.Fatalf("writeOutput(file) error = %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil || string(raw) != "x" {
		t.Fatalf("file contents = %q, %v", raw, err)
	}
}
