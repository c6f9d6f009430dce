package aggregation

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/feedback360/internal/types"
)

func question(self, reviewer float64, competencies ...types.Competency) types.QuestionResult {
	return types.QuestionResult{
		ID:                uuid.New(),
		SelfRating:        self,
		AvgReviewerRating: reviewer,
		ReviewerCount:     4,
		Competencies:      competencies,
	}
}

func section(title string, questions ...types.QuestionResult) types.SectionResult {
	return types.SectionResult{ID: uuid.New(), Title: title, Questions: questions}
}

func TestCompute_NoSectionsReturnsErrNoData(t *testing.T) {
	summary, err := Compute(nil)

	require.ErrorIs(t, err, ErrNoData)
	assert.Nil(t, summary)
}

func TestCompute_OnlyEmptySectionsReturnsErrNoData(t *testing.T) {
	summary, err := Compute([]types.SectionResult{
		section("Empty A"),
		section("Empty B"),
	})

	require.ErrorIs(t, err, ErrNoData)
	assert.Nil(t, summary)
}

func TestCompute_SingleQuestionBlindSpot(t *testing.T) {
	summary, err := Compute([]types.SectionResult{
		section("Leadership", question(5, 3)),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.QuestionCount)
	assert.InDelta(t, 5.0, summary.AvgSelfRating, 0.0001)
	assert.InDelta(t, 3.0, summary.AvgReviewerRating, 0.0001)
	assert.InDelta(t, 2.0, summary.OverallGap, 0.0001)
	assert.Equal(t, types.AlignmentBlindSpot, summary.OverallAlignment)
	assert.InDelta(t, 0.0, summary.AlignedPercentage, 0.0001)
	assert.InDelta(t, 100.0, summary.BlindSpotPercentage, 0.0001)
	assert.InDelta(t, 0.0, summary.HiddenStrengthPercentage, 0.0001)
}

func TestCompute_PercentagesPartitionQuestions(t *testing.T) {
	summary, err := Compute([]types.SectionResult{
		section("Mixed",
			question(5, 5),   // aligned
			question(6, 3),   // blind spot
			question(2, 5),   // hidden strength
			question(4, 4.5), // aligned
		),
	})
	require.NoError(t, err)

	assert.InDelta(t, 50.0, summary.AlignedPercentage, 0.0001)
	assert.InDelta(t, 25.0, summary.BlindSpotPercentage, 0.0001)
	assert.InDelta(t, 25.0, summary.HiddenStrengthPercentage, 0.0001)
}

func TestCompute_OverallGapIsDifferenceOfMeans(t *testing.T) {
	summary, err := Compute([]types.SectionResult{
		section("A", question(6, 4), question(4, 5)),
	})
	require.NoError(t, err)

	assert.InDelta(t, 5.0, summary.AvgSelfRating, 0.0001)
	assert.InDelta(t, 4.5, summary.AvgReviewerRating, 0.0001)
	assert.InDelta(t, 0.5, summary.OverallGap, 0.0001)
	assert.Equal(t, types.AlignmentAligned, summary.OverallAlignment)
}

func TestCompute_EmptySectionContributesNothing(t *testing.T) {
	summary, err := Compute([]types.SectionResult{
		section("Empty"),
		section("Full", question(5, 5)),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.QuestionCount)
	require.Len(t, summary.Sections, 2)
	assert.Equal(t, 0.0, summary.Sections[0].ReviewerAverage)
	// The empty section never wins a section extreme.
	require.NotNil(t, summary.HighestSection)
	assert.Equal(t, "Full", summary.HighestSection.Title)
	require.NotNil(t, summary.LowestSection)
	assert.Equal(t, "Full", summary.LowestSection.Title)
}

func TestCompute_SectionExtremes(t *testing.T) {
	summary, err := Compute([]types.SectionResult{
		section("Middle", question(5, 5)),
		section("Best", question(5, 6.5)),
		section("Worst", question(5, 2)),
	})
	require.NoError(t, err)

	require.NotNil(t, summary.HighestSection)
	assert.Equal(t, "Best", summary.HighestSection.Title)
	require.NotNil(t, summary.LowestSection)
	assert.Equal(t, "Worst", summary.LowestSection.Title)
}

func TestCompute_SectionExtremeTieGoesToFirstSeen(t *testing.T) {
	summary, err := Compute([]types.SectionResult{
		section("First", question(5, 6)),
		section("Second", question(5, 6)),
	})
	require.NoError(t, err)

	require.NotNil(t, summary.HighestSection)
	assert.Equal(t, "First", summary.HighestSection.Title)
	require.NotNil(t, summary.LowestSection)
	assert.Equal(t, "First", summary.LowestSection.Title)
}

func TestCompute_CompetencyAggregateAcrossSections(t *testing.T) {
	leadership := types.Competency{ID: uuid.New(), Name: "Leadership"}

	summary, err := Compute([]types.SectionResult{
		section("A", question(4, 5, leadership)),
		section("B", question(6, 5, leadership)),
	})
	require.NoError(t, err)

	require.Len(t, summary.Competencies, 1)
	agg := summary.Competencies[0]
	assert.Equal(t, "Leadership", agg.Name)
	assert.Equal(t, 2, agg.QuestionCount)
	assert.InDelta(t, 5.0, agg.SelfAverage, 0.0001)
	assert.InDelta(t, 5.0, agg.ReviewerAverage, 0.0001)
	assert.InDelta(t, 0.0, agg.Gap(), 0.0001)
	assert.Equal(t, types.AlignmentAligned, agg.Alignment())
}

func TestCompute_QuestionWithMultipleCompetenciesContributesToEach(t *testing.T) {
	a := types.Competency{ID: uuid.New(), Name: "A"}
	b := types.Competency{ID: uuid.New(), Name: "B"}

	summary, err := Compute([]types.SectionResult{
		section("S", question(6, 4, a, b), question(2, 4, b)),
	})
	require.NoError(t, err)

	require.Len(t, summary.Competencies, 2)
	assert.Equal(t, 1, summary.Competencies[0].QuestionCount)
	assert.Equal(t, 2, summary.Competencies[1].QuestionCount)
	assert.InDelta(t, 4.0, summary.Competencies[1].SelfAverage, 0.0001)
}

func TestCompute_UntaggedQuestionsProduceNoAggregates(t *testing.T) {
	summary, err := Compute([]types.SectionResult{
		section("S", question(5, 5)),
	})
	require.NoError(t, err)

	assert.Empty(t, summary.Competencies)
	assert.Empty(t, summary.TopCompetencies)
	assert.Empty(t, summary.BottomCompetencies)
}
