package export

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/feedback360/internal/types"
)

// RowSource supplies the externally fetched data an export is built from.
// Filtering and scope enforcement happen here; the formatter only shapes
// and redacts.
type RowSource interface {
	// Rows returns the flattened result rows visible to the given scope,
	// narrowed by the options' filters and date range.
	Rows(ctx context.Context, scope types.Scope, opts types.ExportOptions) ([]types.ExportRow, error)
	// DimensionDetails returns the per-dimension breakdown for a single
	// participant/assessment pair.
	DimensionDetails(ctx context.Context, assessmentID, participantID uuid.UUID) ([]types.DimensionDetail, error)
	// AnonymizedStats returns aggregate statistics with no participant
	// identity attached.
	AnonymizedStats(ctx context.Context, opts types.ExportOptions) ([]types.DimensionStats, error)
}

// Document is a rendered export payload with its suggested filename.
type Document struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Service renders role-scoped result rows into export documents.
type Service struct {
	source  RowSource
	now     func() time.Time
	maxRows int
}

// NewService creates an export service backed by the given row source.
func NewService(source RowSource) *Service {
	return &Service{source: source, now: time.Now}
}

// SetMaxRows caps the number of rows a single export may contain. Rows
// arrive newest first, so the cap keeps the most recent completions.
// Zero means unlimited.
func (s *Service) SetMaxRows(n int) {
	s.maxRows = n
}

// Export fetches the data for the requested scope and renders it in the
// requested format. The row, detail and statistics fetches are independent
// reads and run concurrently. An empty row set yields a NoDataError; fetch
// or document-library failures yield an UpstreamError. Single attempt, no
// partial documents.
func (s *Service) Export(ctx context.Context, scope types.Scope, opts types.ExportOptions) (*Document, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid export options: %w", err)
	}

	var (
		rows    []types.ExportRow
		details []types.DimensionDetail
		stats   []types.DimensionStats
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rows, err = s.source.Rows(gCtx, scope, opts)
		if err != nil {
			return &UpstreamError{Op: "fetch rows", Cause: err}
		}
		return nil
	})
	if assessmentID, participantID, ok := opts.DetailTarget(); ok {
		g.Go(func() error {
			var err error
			details, err = s.source.DimensionDetails(gCtx, assessmentID, participantID)
			if err != nil {
				return &UpstreamError{Op: "fetch dimension details", Cause: err}
			}
			return nil
		})
	}
	if opts.IncludeDetails && opts.Format == types.FormatExcel {
		g.Go(func() error {
			var err error
			stats, err = s.source.AnonymizedStats(gCtx, opts)
			if err != nil {
				return &UpstreamError{Op: "fetch anonymized stats", Cause: err}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, &NoDataError{Message: "no data available for export"}
	}
	if s.maxRows > 0 && len(rows) > s.maxRows {
		rows = rows[:s.maxRows]
	}

	var data []byte
	var err error
	switch opts.Format {
	case types.FormatCSV:
		data, err = renderCSV(rows, details, opts)
	case types.FormatPDF:
		data, err = renderPDF(rows, details, opts)
	case types.FormatExcel:
		data, err = renderExcel(rows, details, stats, opts)
	default:
		return nil, fmt.Errorf("unknown export format %q", opts.Format)
	}
	if err != nil {
		return nil, &UpstreamError{Op: fmt.Sprintf("render %s", opts.Format), Cause: err}
	}

	return &Document{
		Filename:    s.filename(opts.Format),
		ContentType: opts.Format.ContentType(),
		Data:        data,
	}, nil
}

// filename builds the suggested download name: <artifact>_<ISO-date>.<ext>.
func (s *Service) filename(format types.Format) string {
	return fmt.Sprintf("assessment_results_%s.%s", s.now().Format("2006-01-02"), format.Extension())
}
