// Package types provides type definitions for structured data used throughout the feedback360 system.
package types

import (
	"math"

	"github.com/google/uuid"
)

// Rating scale bounds for both self and reviewer ratings.
const (
	MinRating = 1.0
	MaxRating = 7.0
)

// alignmentThreshold is the gap magnitude (on the 7-point scale) inside
// which self and reviewer perception count as aligned. Fixed design
// constant; existing data expectations depend on it.
const alignmentThreshold = 1.0

// Alignment classifies the relationship between a self rating and the
// average reviewer rating. It is always derived from the current ratings,
// never stored.
type Alignment string

const (
	// AlignmentAligned means self and reviewer perception agree to within one point.
	AlignmentAligned Alignment = "aligned"
	// AlignmentBlindSpot means the participant rates themselves higher than reviewers do.
	AlignmentBlindSpot Alignment = "blind_spot"
	// AlignmentHiddenStrength means the participant rates themselves lower than reviewers do.
	AlignmentHiddenStrength Alignment = "hidden_strength"
)

// AlignmentFor computes the alignment category for a self rating and an
// average reviewer rating. A gap of exactly ±1.0 classifies as aligned.
func AlignmentFor(selfRating, avgReviewerRating float64) Alignment {
	gap := selfRating - avgReviewerRating
	switch {
	case math.Abs(gap) <= alignmentThreshold:
		return AlignmentAligned
	case gap > alignmentThreshold:
		return AlignmentBlindSpot
	default:
		return AlignmentHiddenStrength
	}
}

// Competency is a named skill tag that groups questions for aggregate reporting.
type Competency struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// QuestionResult is one evaluated question after reviewer aggregation has
// completed. Ratings are on the closed 1-7 scale.
type QuestionResult struct {
	ID                uuid.UUID    `json:"id"`
	Text              string       `json:"text"`
	SelfRating        float64      `json:"self_rating"`
	AvgReviewerRating float64      `json:"avg_reviewer_rating"`
	ReviewerCount     int          `json:"reviewer_count"`
	Competencies      []Competency `json:"competencies,omitempty"`
}

// Gap returns the perception gap (self minus reviewer average), in [-6, 6].
func (q QuestionResult) Gap() float64 {
	return q.SelfRating - q.AvgReviewerRating
}

// Alignment returns the alignment category for this question, recomputed
// from the current ratings.
func (q QuestionResult) Alignment() Alignment {
	return AlignmentFor(q.SelfRating, q.AvgReviewerRating)
}

// SectionResult is a named group of question results belonging to a single
// participant's result set.
type SectionResult struct {
	ID        uuid.UUID        `json:"id"`
	Title     string           `json:"title"`
	Questions []QuestionResult `json:"questions"`
}

// SelfAverage returns the mean self rating over the section's questions,
// or 0 for an empty section.
func (s SectionResult) SelfAverage() float64 {
	if len(s.Questions) == 0 {
		return 0
	}
	var sum float64
	for _, q := range s.Questions {
		sum += q.SelfRating
	}
	return sum / float64(len(s.Questions))
}

// ReviewerAverage returns the mean reviewer rating over the section's
// questions, or 0 for an empty section.
func (s SectionResult) ReviewerAverage() float64 {
	if len(s.Questions) == 0 {
		return 0
	}
	var sum float64
	for _, q := range s.Questions {
		sum += q.AvgReviewerRating
	}
	return sum / float64(len(s.Questions))
}

// ResultSet is the full set of aggregated results for one participant in
// one assessment, as produced by the submission-collection process.
type ResultSet struct {
	AssessmentID  uuid.UUID       `json:"assessment_id"`
	ParticipantID uuid.UUID       `json:"participant_id"`
	Sections      []SectionResult `json:"sections"`
}
