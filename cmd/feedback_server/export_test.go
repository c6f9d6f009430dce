package main

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/feedback360/internal/types"
)

func TestFileSource_Rows(t *testing.T) {
	src := &fileSource{set: &types.ResultSet{
		ParticipantID: uuid.New(),
		Sections: []types.SectionResult{
			{Title: "Communication", Questions: []types.QuestionResult{
				{SelfRating: 6, AvgReviewerRating: 4, ReviewerCount: 3},
				{SelfRating: 4, AvgReviewerRating: 6, ReviewerCount: 5},
			}},
		},
	}}

	rows, err := src.Rows(context.Background(), types.ScopeSystem, types.ExportOptions{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, src.set.ParticipantID, rows[0].ParticipantID)
	assert.InDelta(t, 5.0, rows[0].SelfAverage, 1e-9)
	assert.InDelta(t, 5.0, rows[0].ReviewerAverage, 1e-9)
	assert.Equal(t, 5, rows[0].ReviewerCount)
}

func TestFileSource_EmptyDocumentHasNoRows(t *testing.T) {
	src := &fileSource{set: &types.ResultSet{}}
	rows, err := src.Rows(context.Background(), types.ScopeSystem, types.ExportOptions{})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestFileSource_DimensionDetails(t *testing.T) {
	src := &fileSource{set: &types.ResultSet{
		Sections: []types.SectionResult{
			{Title: "Leadership", Questions: []types.QuestionResult{
				{SelfRating: 6, AvgReviewerRating: 4},
			}},
			{Title: "Empty"},
		},
	}}

	details, err := src.DimensionDetails(context.Background(), uuid.Nil, uuid.Nil)
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, "Leadership", details[0].Dimension)
	assert.InDelta(t, 2.0, details[0].Gap, 1e-9)
}
