package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/go-pdf/fpdf"

	"github.com/PlayerIUnknown/aegis-gui/internal/findings"
	"github.com/PlayerIUnknown/aegis-gui/internal/scans"
)

func testDetails() scans.ScanDetails {
	return scans.ScanDetails{
		Scan: scans.Scan{ID: "0123456789abcdef", Repository: scans.Repository{Name: "acme/api"}},
		Tools: findings.DecodeTools(map[string][]json.RawMessage{
			"syft": {
				json.RawMessage(`{"name":"zlib","version":"1.3","type":"deb"}`),
				json.RawMessage(`{"name":"React","version":"18.2.0","type":"npm","purl":"pkg:npm/react@18.2.0"}`),
				json.RawMessage(`{"name":"react","version":"17.0.0","type":"npm"}`),
			},
			"sbom-merge": {
				json.RawMessage(`{"name":"zlib","version":"1.3","type":"deb"}`),
			},
			"gitleaks": {
				json.RawMessage(`{"match":"secret"}`),
			},
		}),
	}
}

func TestSBOMRowsSortsAndDedupes(t *testing.T) {
	t.Parallel()

	rows := SBOMRows(testDetails())
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d: %+v", len(rows), rows)
	}
	if rows[0].Version != "17.0.0" || rows[1].Version != "18.2.0" || rows[2].Name != "zlib" {
		t.Fatalf("unexpected order: %+v", rows)
	}
	if rows[1].PURL != "pkg:npm/react@18.2.0" {
		t.Fatalf("PURL = %q", rows[1].PURL)
	}
}

func TestWriteSBOMCSV(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := WriteSBOMCSV(&buf, SBOMRows(testDetails())); err != nil {
		t.Fatalf("WriteSBOMCSV error: %v", err)
	}
	raw := buf.Bytes()
	if !bytes.HasPrefix(raw, utf8BOM) {
		t.Fatalf("missing UTF-8 BOM")
	}
	records, err := csv.NewReader(bytes.NewReader(raw[len(utf8BOM):])).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("expected header + 3 rows, got %d", len(records))
	}
	if got := fmt.Sprint(records[0]); got != "[Name Version Type PURL]" {
		t.Fatalf("header = %s", got)
	}
	if records[3][0] != "zlib" || records[3][2] != "deb" {
		t.Fatalf("last row = %v", records[3])
	}
}

func TestWriteSBOMPDF(t *testing.T) {
	t.Parallel()

	rows := make([]SBOMRow, 0, 80)
	for i := range 80 {
		rows = append(rows, SBOMRow{Name: fmt.Sprintf("pkg-%02d", i), Version: "1.0.0", Type: "npm", PURL: "pkg:npm/very/long/purl/that/needs/truncation/because/it/does/not/fit/in/the/column/width@1.0.0"})
	}

	var buf bytes.Buffer
	if err := WriteSBOMPDF(&buf, Meta{Repository: "acme/api", ScanID: "s1", Timestamp: "Mar 1, 2024 3:04 PM"}, rows); err != nil {
		t.Fatalf("WriteSBOMPDF error: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatalf("output is not a PDF")
	}
}

func TestFitTextKeepsTranslatedAccents(t *testing.T) {
	t.Parallel()

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetFont("Helvetica", "", 8.5)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	src := tr(strings.Repeat("café-", 40))

	got := fitText(pdf, src, 40)
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("fitText() = %q, want ellipsis", got)
	}
	if strings.Contains(got, "\uFFFD") {
		t.Fatalf("fitText() produced replacement characters: %q", got)
	}
	kept := strings.TrimSuffix(got, "...")
	if !strings.HasPrefix(src, kept) || !strings.Contains(kept, "\xe9") {
		t.Fatalf("fitText() = %q is not a byte prefix of the translated name", got)
	}
	if w := pdf.GetStringWidth(got); w > 40 {
		t.Fatalf("width = %v, want <= 40", w)
	}
	if short := tr("café"); fitText(pdf, short, 40) != short {
		t.Fatalf("short text should not be truncated")
	}
}

func TestWriteSBOMPDFEmpty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := WriteSBOMPDF(&buf, Meta{ScanID: "s1"}, nil); err != nil {
		t.Fatalf("WriteSBOMPDF error: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatalf("expected PDF output")
	}
}

func TestFilename(t *testing.T) {
	t.Parallel()

	tests := []struct {
		repo, scanID, ext, want string
	}{
		{repo: "acme/api", scanID: "0123456789abcdef", ext: "csv", want: "sbom-acme-api-01234567.csv"},
		{repo: "  ", scanID: "abc", ext: ".PDF", want: "sbom-unknown-repo-abc.pdf"},
		{repo: "web app!!", scanID: "", ext: "", want: "sbom-web-app-scan.csv"},
	}
	for _, tt := range tests {
		if got := Filename(tt.repo, tt.scanID, tt.ext); got != tt.want {
			t.Fatalf("Filename(%q, %q, %q) = %q, want %q", tt.repo, tt.scanID, tt.ext, got, tt.want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	for raw, want := range map[string]string{"csv": FormatCSV, " PDF ": FormatPDF, ".csv": FormatCSV} {
		got, err := ParseFormat(raw)
		if err != nil || got != want {
			t.Fatalf("ParseFormat(%q) = %q, %v", raw, got, err)
		}
	}
	if _, err := ParseFormat("xlsx"); err == nil {
		t.Fatalf("expected error for xlsx")
	}
}

func TestWriteDispatchesByFormat(t *testing.T) {
	t.Parallel()

	var pdf bytes.Buffer
	if err := Write(&pdf, FormatPDF, testDetails()); err != nil {
		t.Fatalf("Write(pdf) error: %v", err)
	}
	if !bytes.HasPrefix(pdf.Bytes(), []byte("%PDF-")) {
		t.Fatalf("pdf output missing header")
	}

	var csvOut bytes.Buffer
	if err := Write(&csvOut, FormatCSV, testDetails()); err != nil {
		t.Fatalf("Write(csv) error: %v", err)
	}
	if !bytes.HasPrefix(csvOut.Bytes(), utf8BOM) {
		t.Fatalf("csv output missing BOM")
	}

	if err := Write(&bytes.Buffer{}, "xml", testDetails()); err == nil {
		t.Fatalf("expected error for unknown format")
	}
	if ContentType(FormatPDF) != "application/pdf" || ContentType(FormatCSV) != "text/csv; charset=utf-8" {
		t.Fatalf("unexpected content types")
	}
}
