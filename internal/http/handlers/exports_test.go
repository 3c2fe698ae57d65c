package handlers

import (
	"bytes"
	"net/http"
	"strings"
	"testing"

	"github.com/labstack/echo/v5"
)

func TestHandleExportCSV(t *testing.T) {
	c, rec := newTestContext(http.MethodGet, "http://example.com/scans/scan-2/sbom.csv")
	c.SetPathValues(echo.PathValues{{Name: "scanID", Value: "scan-2"}})
	h := newSignedInHandler(t, c, seededAPI())

	if err := h.HandleExportCSV(c); err != nil {
		t.Fatalf("HandleExportCSV() error = %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := rec.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/csv") {
		t.Fatalf("Content-Type = %q", got)
	}
	if got, want := rec.Header().Get("Content-Disposition"), `attachment; filename="sbom-acme-api-scan-2.csv"`; got != want {
		t.Fatalf("Content-Disposition = %q, want %q", got, want)
	}

	body := rec.Body.Bytes()
	if !bytes.HasPrefix(body, []byte("\xEF\xBB\xBF")) {
		t.Fatalf("csv missing UTF-8 BOM")
	}
	text := string(body)
	if !strings.Contains(text, "lodash,4.17.20,npm,pkg:npm/lodash@4.17.20") || !strings.Contains(text, "zlib,1.3,deb,") {
		t.Fatalf("csv rows missing: %q", text)
	}
}

func TestHandleExportPDF(t *testing.T) {
	c, rec := newTestContext(http.MethodGet, "http://example.com/scans/scan-2/sbom.pdf")
	c.SetPathValues(echo.PathValues{{Name: "scanID", Value: "scan-2"}})
	h := newSignedInHandler(t, c, seededAPI())

	if err := h.HandleExportPDF(c); err != nil {
		t.Fatalf("HandleExportPDF() error = %v", err)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/pdf" {
		t.Fatalf("Content-Type = %q", got)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")) {
		t.Fatalf("body is not a PDF")
	}
}

func TestHandleExportUnknownScan(t *testing.T) {
	c, rec := newTestContext(http.MethodGet, "http://example.com/scans/nope/sbom.csv")
	c.SetPathValues(echo.PathValues{{Name: "scanID", Value: "nope"}})
	h := newSignedInHandler(t, c, seededAPI())

	if err := h.HandleExportCSV(c); err != nil {
		t.Fatalf("HandleExportCSV() error = %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	if rec.Header().Get("Content-Disposition") != "" {
		t.Fatalf("failed export must not start a download")
	}
}
