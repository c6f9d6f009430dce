package export

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/feedback360/internal/types"
)

// fakeSource is an in-memory RowSource for service tests.
type fakeSource struct {
	rows    []types.ExportRow
	details []types.DimensionDetail
	stats   []types.DimensionStats

	rowsErr error

	detailsCalled bool
	statsCalled   bool
}

func (f *fakeSource) Rows(_ context.Context, _ types.Scope, _ types.ExportOptions) ([]types.ExportRow, error) {
	return f.rows, f.rowsErr
}

func (f *fakeSource) DimensionDetails(_ context.Context, _, _ uuid.UUID) ([]types.DimensionDetail, error) {
	f.detailsCalled = true
	return f.details, nil
}

func (f *fakeSource) AnonymizedStats(_ context.Context, _ types.ExportOptions) ([]types.DimensionStats, error) {
	f.statsCalled = true
	return f.stats, nil
}

func sampleRows() []types.ExportRow {
	completed := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	return []types.ExportRow{
		{
			ParticipantID:   uuid.New(),
			FirstName:       "Jane",
			LastName:        "Doe",
			Email:           "jane.doe@example.com",
			Role:            "Engineer",
			Organization:    "Acme, Inc.",
			Department:      "Platform",
			AssessmentTitle: "Q1 Leadership Review",
			Status:          "completed",
			CompletedAt:     &completed,
			SelfAverage:     5.2,
			ReviewerAverage: 4.8,
			ReviewerCount:   6,
		},
		{
			ParticipantID:   uuid.New(),
			FirstName:       "Sam",
			LastName:        "Reyes",
			Email:           "sam.reyes@example.com",
			Role:            "Manager",
			Organization:    "Acme, Inc.",
			Department:      "Sales",
			AssessmentTitle: "Q1 Leadership Review",
			Status:          "completed",
			SelfAverage:     4.1,
			ReviewerAverage: 5.5,
			ReviewerCount:   4,
		},
	}
}

func TestExport_EmptyRowSetFailsForEveryFormat(t *testing.T) {
	for _, format := range []types.Format{types.FormatCSV, types.FormatPDF, types.FormatExcel} {
		svc := NewService(&fakeSource{})

		doc, err := svc.Export(context.Background(), types.ScopeSystem, types.ExportOptions{Format: format})

		require.Error(t, err, "format %s", format)
		assert.Nil(t, doc)
		assert.True(t, IsNoData(err), "format %s", format)
		assert.NotEmpty(t, err.Error())
	}
}

func TestExport_RowFetchFailureIsUpstream(t *testing.T) {
	cause := errors.New("connection refused")
	svc := NewService(&fakeSource{rowsErr: cause})

	_, err := svc.Export(context.Background(), types.ScopeSystem, types.ExportOptions{Format: types.FormatCSV})

	require.Error(t, err)
	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.ErrorIs(t, err, cause)
	assert.False(t, IsNoData(err))
}

func TestExport_InvalidOptionsRejected(t *testing.T) {
	svc := NewService(&fakeSource{rows: sampleRows()})

	_, err := svc.Export(context.Background(), types.ScopeSystem, types.ExportOptions{Format: "docx"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid export options")
}

func TestExport_FilenameCarriesISODate(t *testing.T) {
	svc := NewService(&fakeSource{rows: sampleRows()})
	svc.now = func() time.Time { return time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC) }

	for format, want := range map[types.Format]string{
		types.FormatCSV:   "assessment_results_2026-08-28.csv",
		types.FormatPDF:   "assessment_results_2026-08-28.pdf",
		types.FormatExcel: "assessment_results_2026-08-28.xlsx",
	} {
		doc, err := svc.Export(context.Background(), types.ScopeSystem, types.ExportOptions{Format: format})
		require.NoError(t, err)
		assert.Equal(t, want, doc.Filename)
		assert.Equal(t, format.ContentType(), doc.ContentType)
		assert.NotEmpty(t, doc.Data)
	}
}

func TestExport_DetailFetchRequiresScalarTarget(t *testing.T) {
	source := &fakeSource{rows: sampleRows()}
	svc := NewService(source)

	// Batch export with details requested but no participant filter.
	_, err := svc.Export(context.Background(), types.ScopeSystem, types.ExportOptions{
		Format:         types.FormatCSV,
		IncludeDetails: true,
	})
	require.NoError(t, err)
	assert.False(t, source.detailsCalled)

	// Scalar target present.
	_, err = svc.Export(context.Background(), types.ScopeSystem, types.ExportOptions{
		Format:         types.FormatCSV,
		IncludeDetails: true,
		Filters: &types.ExportFilters{
			AssessmentID:  uuid.New(),
			ParticipantID: uuid.New(),
		},
	})
	require.NoError(t, err)
	assert.True(t, source.detailsCalled)
}

func TestExport_StatsFetchedOnlyForExcelWithDetails(t *testing.T) {
	source := &fakeSource{rows: sampleRows()}
	svc := NewService(source)

	_, err := svc.Export(context.Background(), types.ScopeSystem, types.ExportOptions{
		Format:         types.FormatCSV,
		IncludeDetails: true,
	})
	require.NoError(t, err)
	assert.False(t, source.statsCalled)

	_, err = svc.Export(context.Background(), types.ScopeSystem, types.ExportOptions{
		Format:         types.FormatExcel,
		IncludeDetails: true,
	})
	require.NoError(t, err)
	assert.True(t, source.statsCalled)
}

func TestExport_MaxRowsCapsOutput(t *testing.T) {
	rows := sampleRows()
	for i := 0; i < 10; i++ {
		rows = append(rows, rows[0])
	}
	svc := NewService(&fakeSource{rows: rows})
	svc.SetMaxRows(3)

	doc, err := svc.Export(context.Background(), types.ScopeSystem, types.ExportOptions{Format: types.FormatCSV})
	require.NoError(t, err)

	// Header plus three rows, each ending in a newline.
	assert.Equal(t, 4, bytes.Count(doc.Data, []byte("\n")))
}
