package db

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/feedback360/internal/types"
)

func TestBuildRowQuery_SystemScopeNoFilters(t *testing.T) {
	query, args, err := buildRowQuery(types.ScopeSystem, types.ExportOptions{Format: types.FormatCSV})

	require.NoError(t, err)
	assert.Empty(t, args)
	assert.NotContains(t, query, "$1")
}

func TestBuildRowQuery_OrganizationScopeRequiresOrgFilter(t *testing.T) {
	_, _, err := buildRowQuery(types.ScopeOrganization, types.ExportOptions{Format: types.FormatCSV})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "organization")

	orgID := uuid.New()
	query, args, err := buildRowQuery(types.ScopeOrganization, types.ExportOptions{
		Format:  types.FormatCSV,
		Filters: &types.ExportFilters{OrganizationID: orgID},
	})
	require.NoError(t, err)
	assert.Contains(t, query, "u.organization_id = $1")
	assert.Equal(t, []any{orgID}, args)
}

func TestBuildRowQuery_SelfScopeRequiresParticipantFilter(t *testing.T) {
	_, _, err := buildRowQuery(types.ScopeSelf, types.ExportOptions{Format: types.FormatCSV})
	require.Error(t, err)

	participantID := uuid.New()
	query, args, err := buildRowQuery(types.ScopeSelf, types.ExportOptions{
		Format:  types.FormatCSV,
		Filters: &types.ExportFilters{ParticipantID: participantID},
	})
	require.NoError(t, err)
	assert.Contains(t, query, "ap.user_id = $1")
	assert.Equal(t, []any{participantID}, args)
}

func TestBuildRowQuery_FilterPlaceholdersNumberConsecutively(t *testing.T) {
	assessmentID := uuid.New()
	participantID := uuid.New()
	departmentID := uuid.New()

	query, args, err := buildRowQuery(types.ScopeSystem, types.ExportOptions{
		Format: types.FormatCSV,
		Filters: &types.ExportFilters{
			AssessmentID:  assessmentID,
			ParticipantID: participantID,
			DepartmentID:  departmentID,
		},
	})

	require.NoError(t, err)
	assert.Contains(t, query, "ap.assessment_id = $1")
	assert.Contains(t, query, "ap.user_id = $2")
	assert.Contains(t, query, "u.department_id = $3")
	assert.Equal(t, []any{assessmentID, participantID, departmentID}, args)
}

func TestBuildRowQuery_DateRangeAddsBetweenClause(t *testing.T) {
	opts := types.ExportOptions{
		Format:    types.FormatCSV,
		DateRange: &types.DateRange{},
	}

	query, args, err := buildRowQuery(types.ScopeSystem, opts)

	require.NoError(t, err)
	assert.Contains(t, query, "ap.completed_at BETWEEN $1 AND $2")
	assert.Len(t, args, 2)
}

func TestBuildRowQuery_UnknownScopeRejected(t *testing.T) {
	_, _, err := buildRowQuery(types.Scope("galaxy"), types.ExportOptions{Format: types.FormatCSV})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "galaxy")
}

func TestBuildRowQuery_OrdersByCompletionNewestFirst(t *testing.T) {
	query, _, err := buildRowQuery(types.ScopeSystem, types.ExportOptions{Format: types.FormatCSV})

	require.NoError(t, err)
	// Newest completions come first so a row cap keeps the most recent ones;
	// never-completed rows sort last.
	assert.Contains(t, query, "ORDER BY ap.completed_at DESC NULLS LAST")
}
