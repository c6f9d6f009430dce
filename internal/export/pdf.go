package export

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/jonathan/feedback360/internal/types"
)

// PDF table layout constants, in millimeters on A4 landscape.
const (
	pdfLineHeight   = 6.0
	pdfBottomMargin = 20.0
	pdfCellPadding  = 1.0
	// pdfCellBudget is the per-column character budget; longer values are
	// truncated with an ellipsis.
	pdfCellBudget = 28
)

// renderPDF lays the row set out as a paginated table with fixed column
// widths. A new page starts whenever the vertical position would pass the
// page height minus the bottom margin, and the header row repeats on every
// page.
func renderPDF(rows []types.ExportRow, details []types.DimensionDetail, opts types.ExportOptions) ([]byte, error) {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 10, "Assessment Results")
	pdf.Ln(12)

	headers := headerCells(opts.IncludeNames)
	widths := columnWidths(pdf, len(headers))

	writeTableHeader(pdf, headers, widths)
	pdf.SetFont("Helvetica", "", 8)
	for _, row := range rows {
		if pageBreakNeeded(pdf) {
			pdf.AddPage()
			writeTableHeader(pdf, headers, widths)
			pdf.SetFont("Helvetica", "", 8)
		}
		writeTableRow(pdf, rowCells(row, opts.IncludeNames), widths)
	}

	if len(details) > 0 {
		writeDetailTable(pdf, details)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// writeDetailTable appends the per-dimension detail table, which only
// exists for a scalar participant/assessment target.
func writeDetailTable(pdf *fpdf.Fpdf, details []types.DimensionDetail) {
	if pageBreakNeeded(pdf) {
		pdf.AddPage()
	}
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Dimension Detail")
	pdf.Ln(10)

	headers := detailHeaderCells()
	widths := columnWidths(pdf, len(headers))
	writeTableHeader(pdf, headers, widths)
	pdf.SetFont("Helvetica", "", 8)
	for _, d := range details {
		if pageBreakNeeded(pdf) {
			pdf.AddPage()
			writeTableHeader(pdf, headers, widths)
			pdf.SetFont("Helvetica", "", 8)
		}
		writeTableRow(pdf, detailCells(d), widths)
	}
}

// columnWidths splits the printable page width evenly across n columns.
func columnWidths(pdf *fpdf.Fpdf, n int) []float64 {
	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	usable := pageWidth - left - right
	widths := make([]float64, n)
	for i := range widths {
		widths[i] = usable / float64(n)
	}
	return widths
}

func pageBreakNeeded(pdf *fpdf.Fpdf) bool {
	_, pageHeight := pdf.GetPageSize()
	return pdf.GetY()+pdfLineHeight > pageHeight-pdfBottomMargin
}

func writeTableHeader(pdf *fpdf.Fpdf, headers []string, widths []float64) {
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range headers {
		pdf.CellFormat(widths[i], pdfLineHeight, truncate(h, pdfCellBudget), "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)
}

func writeTableRow(pdf *fpdf.Fpdf, cells []string, widths []float64) {
	for i, c := range cells {
		pdf.CellFormat(widths[i], pdfLineHeight, truncate(c, pdfCellBudget), "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)
}

// truncate enforces the per-column character budget. Counted in runes so
// multibyte names are never split mid-character.
func truncate(s string, budget int) string {
	runes := []rune(s)
	if len(runes) <= budget {
		return s
	}
	if budget <= 3 {
		return string(runes[:budget])
	}
	return string(runes[:budget-3]) + "..."
}
