package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/PlayerIUnknown/aegis-gui/internal/scans"
)

const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

// ParseFormat accepts csv or pdf in any case, with or without a leading dot.
func ParseFormat(raw string) (string, error) {
	switch f := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(raw), ".")); f {
	case FormatCSV, FormatPDF:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported export format %q (want csv or pdf)", raw)
	}
}

func ContentType(format string) string {
	if format == FormatPDF {
		return "application/pdf"
	}
	return "text/csv; charset=utf-8"
}

// Write renders the SBOM of details in format.
func Write(w io.Writer, format string, details scans.ScanDetails) error {
	rows := SBOMRows(details)
	switch format {
	case FormatCSV:
		return WriteSBOMCSV(w, rows)
	case FormatPDF:
		return WriteSBOMPDF(w, MetaFor(details), rows)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}
