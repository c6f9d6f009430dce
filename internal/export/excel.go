package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/jonathan/feedback360/internal/types"
)

// Sheet names in the generated workbook.
const (
	sheetResults = "Results"
	sheetDetail  = "Dimension Detail"
	sheetStats   = "Anonymized Statistics"
)

// renderExcel produces a workbook with a primary results sheet plus
// optional sheets for per-dimension detail and anonymized statistics. The
// optional sheets appear only when details were requested and the source
// data is non-empty.
func renderExcel(rows []types.ExportRow, details []types.DimensionDetail, stats []types.DimensionStats, opts types.ExportOptions) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetResults); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	if err := writeSheet(f, sheetResults, headerCells(opts.IncludeNames), len(rows), func(i int) []interface{} {
		return rowValues(rows[i], opts.IncludeNames)
	}); err != nil {
		return nil, err
	}

	if opts.IncludeCharts && len(rows) > 0 {
		if err := addReviewerAverageChart(f, rows, opts.IncludeNames); err != nil {
			return nil, fmt.Errorf("add chart: %w", err)
		}
	}

	if opts.IncludeDetails && len(details) > 0 {
		if _, err := f.NewSheet(sheetDetail); err != nil {
			return nil, fmt.Errorf("create detail sheet: %w", err)
		}
		if err := writeSheet(f, sheetDetail, detailHeaderCells(), len(details), func(i int) []interface{} {
			return detailValues(details[i])
		}); err != nil {
			return nil, err
		}
	}

	if opts.IncludeDetails && len(stats) > 0 {
		if _, err := f.NewSheet(sheetStats); err != nil {
			return nil, fmt.Errorf("create stats sheet: %w", err)
		}
		if err := writeSheet(f, sheetStats, statsHeaderCells(), len(stats), func(i int) []interface{} {
			return statsValues(stats[i])
		}); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// writeSheet fills a sheet with a header row and count data rows produced
// by values.
func writeSheet(f *excelize.File, sheet string, headers []string, count int, values func(i int) []interface{}) error {
	headerRow := make([]interface{}, len(headers))
	for i, h := range headers {
		headerRow[i] = h
	}
	if err := setRow(f, sheet, 1, headerRow); err != nil {
		return fmt.Errorf("write %s header: %w", sheet, err)
	}
	for i := 0; i < count; i++ {
		if err := setRow(f, sheet, i+2, values(i)); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, rowNum int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

// addReviewerAverageChart embeds a column chart of per-row reviewer
// averages on the results sheet, to the right of the data.
func addReviewerAverageChart(f *excelize.File, rows []types.ExportRow, includeNames bool) error {
	columns := len(headerCells(includeNames))
	// Reviewer average is the second-to-last column.
	valueCol, err := excelize.ColumnNumberToName(columns - 1)
	if err != nil {
		return err
	}
	// Assessment title column labels the categories.
	labelCol, err := excelize.ColumnNumberToName(columns - 5)
	if err != nil {
		return err
	}
	anchor, err := excelize.CoordinatesToCellName(columns+2, 2)
	if err != nil {
		return err
	}

	lastRow := len(rows) + 1
	return f.AddChart(sheetResults, anchor, &excelize.Chart{
		Type: excelize.Col,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("%s!$%s$1", sheetResults, valueCol),
			Categories: fmt.Sprintf("%s!$%s$2:$%s$%d", sheetResults, labelCol, labelCol, lastRow),
			Values:     fmt.Sprintf("%s!$%s$2:$%s$%d", sheetResults, valueCol, valueCol, lastRow),
		}},
	})
}
