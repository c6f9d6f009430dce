package export

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/jonathan/feedback360/internal/types"
)

// renderCSV writes the row set as RFC 4180 CSV: one header row plus one
// line per input row. encoding/csv quotes fields containing delimiters,
// quotes or newlines, so organization names with commas survive intact.
func renderCSV(rows []types.ExportRow, details []types.DimensionDetail, opts types.ExportOptions) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(headerCells(opts.IncludeNames)); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(rowCells(row, opts.IncludeNames)); err != nil {
			return nil, fmt.Errorf("write row: %w", err)
		}
	}

	if len(details) > 0 {
		// Detail block separated by a blank record, same document.
		if err := w.Write([]string{}); err != nil {
			return nil, fmt.Errorf("write separator: %w", err)
		}
		if err := w.Write(detailHeaderCells()); err != nil {
			return nil, fmt.Errorf("write detail header: %w", err)
		}
		for _, d := range details {
			if err := w.Write(detailCells(d)); err != nil {
				return nil, fmt.Errorf("write detail row: %w", err)
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
