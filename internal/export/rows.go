package export

import (
	"strconv"

	"github.com/jonathan/feedback360/internal/types"
)

// headerCells returns the column headers for the main result table. The
// identity columns exist only when names are included, so a redacted
// document carries no personally identifying fields at all.
func headerCells(includeNames bool) []string {
	var cells []string
	if includeNames {
		cells = append(cells, "First Name", "Last Name", "Email", "Role")
	}
	return append(cells,
		"Organization",
		"Department",
		"Assessment",
		"Status",
		"Completed",
		"Self Avg",
		"Reviewer Avg",
		"Reviewers",
	)
}

// rowCells flattens one export row into the column order of headerCells.
func rowCells(r types.ExportRow, includeNames bool) []string {
	var cells []string
	if includeNames {
		cells = append(cells, r.FirstName, r.LastName, r.Email, r.Role)
	}
	completed := ""
	if r.CompletedAt != nil {
		completed = r.CompletedAt.Format("2006-01-02")
	}
	return append(cells,
		r.Organization,
		r.Department,
		r.AssessmentTitle,
		r.Status,
		completed,
		formatRating(r.SelfAverage),
		formatRating(r.ReviewerAverage),
		strconv.Itoa(r.ReviewerCount),
	)
}

// detailHeaderCells returns the column headers for the per-dimension
// detail table.
func detailHeaderCells() []string {
	return []string{"Dimension", "Self", "Peers", "Subordinates", "Supervisor", "Gap"}
}

// detailCells flattens one per-dimension detail row.
func detailCells(d types.DimensionDetail) []string {
	return []string{
		d.Dimension,
		formatRating(d.SelfRating),
		formatRating(d.PeerAverage),
		formatRating(d.SubordinateAvg),
		formatRating(d.SupervisorAverage),
		formatRating(d.Gap),
	}
}

// statsHeaderCells returns the column headers for the anonymized
// statistics table.
func statsHeaderCells() []string {
	return []string{"Dimension", "Relationship", "Mean", "Min", "Max", "Std Dev", "Sample Size"}
}

// statsCells flattens one anonymized statistics row.
func statsCells(s types.DimensionStats) []string {
	return []string{
		s.Dimension,
		s.RelationshipType,
		formatRating(s.Mean),
		formatRating(s.Min),
		formatRating(s.Max),
		formatRating(s.StdDev),
		strconv.Itoa(s.SampleSize),
	}
}

func formatRating(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// rowValues is the spreadsheet variant of rowCells: identical column
// order, but ratings and counts stay numeric so Excel can sort and chart
// them.
func rowValues(r types.ExportRow, includeNames bool) []interface{} {
	var cells []interface{}
	if includeNames {
		cells = append(cells, r.FirstName, r.LastName, r.Email, r.Role)
	}
	completed := ""
	if r.CompletedAt != nil {
		completed = r.CompletedAt.Format("2006-01-02")
	}
	return append(cells,
		r.Organization,
		r.Department,
		r.AssessmentTitle,
		r.Status,
		completed,
		r.SelfAverage,
		r.ReviewerAverage,
		r.ReviewerCount,
	)
}

// detailValues is the spreadsheet variant of detailCells.
func detailValues(d types.DimensionDetail) []interface{} {
	return []interface{}{
		d.Dimension,
		d.SelfRating,
		d.PeerAverage,
		d.SubordinateAvg,
		d.SupervisorAverage,
		d.Gap,
	}
}

// statsValues is the spreadsheet variant of statsCells.
func statsValues(s types.DimensionStats) []interface{} {
	return []interface{}{
		s.Dimension,
		s.RelationshipType,
		s.Mean,
		s.Min,
		s.Max,
		s.StdDev,
		s.SampleSize,
	}
}
