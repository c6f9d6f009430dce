// Package aggregation computes summary statistics over a participant's
// assessment results: overall self/reviewer averages, alignment breakdowns,
// competency aggregates and curated strength/development lists.
package aggregation

import (
	"errors"

	"github.com/jonathan/feedback360/internal/types"
)

// ErrNoData is returned when aggregation has nothing to aggregate: zero
// sections, or sections that contain no questions.
var ErrNoData = errors.New("no assessment data available")

// Thresholds for the curated lists, on the 1-7 rating scale.
const (
	strengthThreshold    = 5.5
	developmentThreshold = 4.5
	topListSize          = 3
)

// SectionSummary is the per-section average pair reported alongside the
// overall statistics.
type SectionSummary struct {
	SectionID       string  `json:"section_id"`
	Title           string  `json:"title"`
	SelfAverage     float64 `json:"self_average"`
	ReviewerAverage float64 `json:"reviewer_average"`
}

// Summary is the full aggregation result for one participant.
type Summary struct {
	QuestionCount     int             `json:"question_count"`
	AvgSelfRating     float64         `json:"avg_self_rating"`
	AvgReviewerRating float64         `json:"avg_reviewer_rating"`
	OverallGap        float64         `json:"overall_gap"`
	OverallAlignment  types.Alignment `json:"overall_alignment"`

	AlignedPercentage        float64 `json:"aligned_percentage"`
	BlindSpotPercentage      float64 `json:"blind_spot_percentage"`
	HiddenStrengthPercentage float64 `json:"hidden_strength_percentage"`

	TopStrengths     []types.QuestionResult `json:"top_strengths"`
	DevelopmentAreas []types.QuestionResult `json:"development_areas"`
	BlindSpots       []types.QuestionResult `json:"blind_spots"`
	HiddenStrengths  []types.QuestionResult `json:"hidden_strengths"`

	Competencies       []CompetencyAggregate `json:"competencies"`
	TopCompetencies    []CompetencyAggregate `json:"top_competencies"`
	BottomCompetencies []CompetencyAggregate `json:"bottom_competencies"`

	Sections       []SectionSummary `json:"sections"`
	HighestSection *SectionSummary  `json:"highest_section,omitempty"`
	LowestSection  *SectionSummary  `json:"lowest_section,omitempty"`
}

// Compute aggregates a participant's section results into a Summary.
// It makes a single pass over all questions across all sections. Empty
// input (no sections, or only empty sections) returns ErrNoData rather
// than a Summary with NaN fields.
func Compute(sections []types.SectionResult) (*Summary, error) {
	var questions []types.QuestionResult
	for _, section := range sections {
		questions = append(questions, section.Questions...)
	}
	if len(questions) == 0 {
		return nil, ErrNoData
	}

	summary := &Summary{QuestionCount: len(questions)}

	var selfSum, reviewerSum float64
	var aligned, blindSpots, hiddenStrengths int
	for _, q := range questions {
		selfSum += q.SelfRating
		reviewerSum += q.AvgReviewerRating
		switch q.Alignment() {
		case types.AlignmentAligned:
			aligned++
		case types.AlignmentBlindSpot:
			blindSpots++
		case types.AlignmentHiddenStrength:
			hiddenStrengths++
		}
	}

	total := float64(len(questions))
	summary.AvgSelfRating = selfSum / total
	summary.AvgReviewerRating = reviewerSum / total
	// Difference of means over the same question set, which equals the mean
	// of per-question gaps under uniform weighting.
	summary.OverallGap = summary.AvgSelfRating - summary.AvgReviewerRating
	summary.OverallAlignment = types.AlignmentFor(summary.AvgSelfRating, summary.AvgReviewerRating)

	summary.AlignedPercentage = float64(aligned) / total * 100
	summary.BlindSpotPercentage = float64(blindSpots) / total * 100
	summary.HiddenStrengthPercentage = float64(hiddenStrengths) / total * 100

	summary.TopStrengths = topStrengths(questions)
	summary.DevelopmentAreas = developmentAreas(questions)
	summary.BlindSpots = topBlindSpots(questions)
	summary.HiddenStrengths = topHiddenStrengths(questions)

	summary.Competencies = aggregateCompetencies(questions)
	summary.TopCompetencies = topCompetencies(summary.Competencies)
	summary.BottomCompetencies = bottomCompetencies(summary.Competencies)

	summary.Sections, summary.HighestSection, summary.LowestSection = summarizeSections(sections)

	return summary, nil
}

// summarizeSections computes per-section averages and picks the sections
// with the highest and lowest reviewer average. Sections without questions
// are reported with zero averages but never win an extreme. Ties go to the
// first section seen in iteration order.
func summarizeSections(sections []types.SectionResult) (summaries []SectionSummary, highest, lowest *SectionSummary) {
	var highIdx, lowIdx = -1, -1
	for _, section := range sections {
		s := SectionSummary{
			SectionID:       section.ID.String(),
			Title:           section.Title,
			SelfAverage:     section.SelfAverage(),
			ReviewerAverage: section.ReviewerAverage(),
		}
		summaries = append(summaries, s)
		if len(section.Questions) == 0 {
			continue
		}
		idx := len(summaries) - 1
		if highIdx == -1 || s.ReviewerAverage > summaries[highIdx].ReviewerAverage {
			highIdx = idx
		}
		if lowIdx == -1 || s.ReviewerAverage < summaries[lowIdx].ReviewerAverage {
			lowIdx = idx
		}
	}
	if highIdx >= 0 {
		highest = &summaries[highIdx]
	}
	if lowIdx >= 0 {
		lowest = &summaries[lowIdx]
	}
	return summaries, highest, lowest
}
