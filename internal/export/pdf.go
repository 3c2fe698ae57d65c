package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"
)

const (
	pdfMargin    = 12.0
	pdfRowHeight = 7.0
	// EmptySBOMMessage is printed instead of a table when a scan has no components.
	EmptySBOMMessage = "No SBOM components reported."
)

type pdfColumn struct {
	title string
	width float64
	value func(SBOMRow) string
}

var pdfColumns = []pdfColumn{
	{title: "Name", width: 80, value: func(r SBOMRow) string { return r.Name }},
	{title: "Version", width: 40, value: func(r SBOMRow) string { return r.Version }},
	{title: "Type", width: 33, value: func(r SBOMRow) string { return r.Type }},
	{title: "PURL", width: 120, value: func(r SBOMRow) string { return r.PURL }},
}

// WriteSBOMPDF renders rows as an A4 landscape table. The column header is
// repeated on every page the table spans.
func WriteSBOMPDF(w io.Writer, meta Meta, rows []SBOMRow) error {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin+6)
	pdf.AliasNbPages("")
	pdf.SetTitle("SBOM "+meta.Repository, true)
	pdf.SetCreator("aegis", true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	tableStarted := false
	pdf.SetHeaderFunc(func() {
		pdf.SetFont("Helvetica", "B", 14)
		pdf.CellFormat(0, 8, tr(pdfTitle(meta)), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(90, 90, 90)
		pdf.CellFormat(0, 5, tr(pdfSubtitle(meta)), "", 1, "L", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
		pdf.Ln(3)
		if tableStarted {
			writePDFHeaderRow(pdf, tr)
		}
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 5, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "R", false, 0, "")
	})

	pdf.AddPage()
	if len(rows) == 0 {
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, 10, EmptySBOMMessage, "", 1, "L", false, 0, "")
		return pdf.Output(w)
	}

	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("%d components", len(rows))), "", 1, "L", false, 0, "")
	pdf.Ln(1)

	tableStarted = true
	writePDFHeaderRow(pdf, tr)

	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	for idx, row := range rows {
		if pdf.GetY()+pdfRowHeight > pageHeight-bottom {
			pdf.AddPage()
		}
		fill := idx%2 == 1
		pdf.SetFont("Helvetica", "", 8.5)
		pdf.SetFillColor(245, 247, 250)
		for _, col := range pdfColumns {
			text := fitText(pdf, tr(col.value(row)), col.width-2)
			pdf.CellFormat(col.width, pdfRowHeight, text, "B", 0, "L", fill, 0, "")
		}
		pdf.Ln(-1)
	}
	return pdf.Output(w)
}

func writePDFHeaderRow(pdf *fpdf.Fpdf, tr func(string) string) {
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(15, 23, 42)
	pdf.SetTextColor(255, 255, 255)
	for _, col := range pdfColumns {
		pdf.CellFormat(col.width, pdfRowHeight+1, tr(col.title), "", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetTextColor(0, 0, 0)
}

func pdfTitle(meta Meta) string {
	repo := strings.TrimSpace(meta.Repository)
	if repo == "" {
		repo = "unknown-repo"
	}
	return "Software Bill of Materials - " + repo
}

func pdfSubtitle(meta Meta) string {
	parts := []string{"Scan " + strings.TrimSpace(meta.ScanID)}
	if meta.Timestamp != "" {
		parts = append(parts, meta.Timestamp)
	}
	if meta.Branch != "" {
		parts = append(parts, "Branch "+meta.Branch)
	}
	if meta.Commit != "" {
		parts = append(parts, "Commit #"+meta.Commit)
	}
	return strings.Join(parts, "  |  ")
}

// fitText truncates s with an ellipsis so it fits in width. s is already
// translated to the single-byte font encoding, so it is cut by byte.
func fitText(pdf *fpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	const ellipsis = "..."
	for n := len(s) - 1; n > 0; n-- {
		candidate := s[:n] + ellipsis
		if pdf.GetStringWidth(candidate) <= width {
			return candidate
		}
	}
	return ellipsis
}
