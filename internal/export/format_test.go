package export

import (
	"bytes"
	"compress/zlib"
	"encoding/csv"
	"io"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jonathan/feedback360/internal/types"
)

func TestRenderCSV_RowCountRoundTrip(t *testing.T) {
	rows := sampleRows()

	data, err := renderCSV(rows, nil, types.ExportOptions{Format: types.FormatCSV, IncludeNames: true})
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, len(rows)+1)
}

func TestRenderCSV_EscapesDelimitersInFields(t *testing.T) {
	rows := sampleRows() // organization is "Acme, Inc."

	data, err := renderCSV(rows, nil, types.ExportOptions{Format: types.FormatCSV})
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	// The comma survives the round trip inside a single field.
	assert.Equal(t, "Acme, Inc.", records[1][0])
}

func TestRenderCSV_RedactsIdentityColumns(t *testing.T) {
	rows := sampleRows()

	data, err := renderCSV(rows, nil, types.ExportOptions{Format: types.FormatCSV, IncludeNames: false})
	require.NoError(t, err)

	out := string(data)
	assert.NotContains(t, out, "Jane")
	assert.NotContains(t, out, "Doe")
	assert.NotContains(t, out, "jane.doe@example.com")
	assert.NotContains(t, out, "Email")
}

func TestRenderCSV_IncludesIdentityColumnsWhenRequested(t *testing.T) {
	rows := sampleRows()

	data, err := renderCSV(rows, nil, types.ExportOptions{Format: types.FormatCSV, IncludeNames: true})
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, "First Name")
	assert.Contains(t, out, "Jane")
	assert.Contains(t, out, "jane.doe@example.com")
}

func TestRenderCSV_AppendsDetailBlock(t *testing.T) {
	details := []types.DimensionDetail{
		{Dimension: "Communication", SelfRating: 5, PeerAverage: 4.5, SubordinateAvg: 4, SupervisorAverage: 5, Gap: 0.5},
	}

	data, err := renderCSV(sampleRows(), details, types.ExportOptions{Format: types.FormatCSV})
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, "Dimension")
	assert.Contains(t, out, "Communication")
}

func TestRenderPDF_ProducesDocument(t *testing.T) {
	data, err := renderPDF(sampleRows(), nil, types.ExportOptions{Format: types.FormatPDF, IncludeNames: true})
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")), "payload should be a PDF document")
}

func TestRenderPDF_ManyRowsPaginate(t *testing.T) {
	var rows []types.ExportRow
	for i := 0; i < 200; i++ {
		rows = append(rows, sampleRows()[0])
	}

	data, err := renderPDF(rows, nil, types.ExportOptions{Format: types.FormatPDF})
	require.NoError(t, err)

	// A 200-row table cannot fit one A4 landscape page. A document with n
	// pages carries n "/Type /Page" objects plus one "/Type /Pages" root.
	assert.Greater(t, bytes.Count(data, []byte("/Type /Page")), 2)
}

func TestRenderPDF_TruncatesLongFields(t *testing.T) {
	rows := sampleRows()
	rows[0].Organization = strings.Repeat("VeryLongOrganizationName", 10)

	_, err := renderPDF(rows, nil, types.ExportOptions{Format: types.FormatPDF})
	require.NoError(t, err)

	assert.Equal(t, pdfCellBudget, len(truncate(rows[0].Organization, pdfCellBudget)))
	assert.True(t, strings.HasSuffix(truncate(rows[0].Organization, pdfCellBudget), "..."))
}

// pdfStreamText inflates the document's FlateDecode content streams so
// tests can assert on the rendered text.
func pdfStreamText(t *testing.T, data []byte) string {
	t.Helper()
	var out bytes.Buffer
	marker := []byte("stream\n")
	rest := data
	for {
		i := bytes.Index(rest, marker)
		if i < 0 {
			break
		}
		// Skip matches inside "endstream".
		if i > 0 && rest[i-1] == 'd' {
			rest = rest[i+len(marker):]
			continue
		}
		body := rest[i+len(marker):]
		j := bytes.Index(body, []byte("endstream"))
		if j < 0 {
			break
		}
		chunk := bytes.TrimSuffix(body[:j], []byte("\n"))
		if r, err := zlib.NewReader(bytes.NewReader(chunk)); err == nil {
			_, _ = io.Copy(&out, r)
			r.Close()
		} else {
			out.Write(chunk)
		}
		rest = body[j:]
	}
	return out.String()
}

func TestRenderPDF_RedactsIdentityColumns(t *testing.T) {
	data, err := renderPDF(sampleRows(), nil, types.ExportOptions{Format: types.FormatPDF})
	require.NoError(t, err)

	text := pdfStreamText(t, data)
	// Anchor on a non-identity column so the stream extraction is proven
	// to see real content.
	require.Contains(t, text, "Platform")
	assert.NotContains(t, text, "Jane")
	assert.NotContains(t, text, "@example.com")
	assert.NotContains(t, text, "Email")
}

func TestRenderPDF_IncludesIdentityColumnsWhenRequested(t *testing.T) {
	data, err := renderPDF(sampleRows(), nil, types.ExportOptions{Format: types.FormatPDF, IncludeNames: true})
	require.NoError(t, err)

	text := pdfStreamText(t, data)
	assert.Contains(t, text, "Jane")
	assert.Contains(t, text, "Email")
}

func TestRenderExcel_PrimarySheetMatchesRows(t *testing.T) {
	rows := sampleRows()

	data, err := renderExcel(rows, nil, nil, types.ExportOptions{Format: types.FormatExcel, IncludeNames: true})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows(sheetResults)
	require.NoError(t, err)
	require.Len(t, got, len(rows)+1)
	assert.Equal(t, "First Name", got[0][0])
	assert.Equal(t, "Jane", got[1][0])
}

func TestRenderExcel_RedactsIdentityColumns(t *testing.T) {
	data, err := renderExcel(sampleRows(), nil, nil, types.ExportOptions{Format: types.FormatExcel, IncludeNames: false})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows(sheetResults)
	require.NoError(t, err)
	assert.Equal(t, "Organization", got[0][0])
	for _, row := range got {
		joined := strings.Join(row, " ")
		assert.NotContains(t, joined, "Jane")
		assert.NotContains(t, joined, "jane.doe@example.com")
	}
}

func TestRenderExcel_OptionalSheets(t *testing.T) {
	details := []types.DimensionDetail{{Dimension: "Communication", SelfRating: 5}}
	stats := []types.DimensionStats{{Dimension: "Communication", RelationshipType: "peer", Mean: 4.5, SampleSize: 8}}

	data, err := renderExcel(sampleRows(), details, stats, types.ExportOptions{
		Format:         types.FormatExcel,
		IncludeDetails: true,
	})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	assert.Contains(t, sheets, sheetResults)
	assert.Contains(t, sheets, sheetDetail)
	assert.Contains(t, sheets, sheetStats)
}

func TestRenderExcel_SkipsEmptyOptionalSheets(t *testing.T) {
	data, err := renderExcel(sampleRows(), nil, nil, types.ExportOptions{
		Format:         types.FormatExcel,
		IncludeDetails: true,
	})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	assert.Equal(t, []string{sheetResults}, sheets)
}

func TestTruncate_ShortStringsUntouched(t *testing.T) {
	assert.Equal(t, "short", truncate("short", pdfCellBudget))
}

func TestTruncate_KeepsRuneBoundaries(t *testing.T) {
	long := strings.Repeat("é", pdfCellBudget*2)

	got := truncate(long, pdfCellBudget)

	assert.True(t, utf8.ValidString(got), "truncation must not split a rune")
	assert.Equal(t, pdfCellBudget, utf8.RuneCountInString(got))
	assert.True(t, strings.HasSuffix(got, "..."))
}
