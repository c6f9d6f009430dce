package aggregation

import (
	"sort"

	"github.com/jonathan/feedback360/internal/types"
)

// selectQuestions filters questions with keep, stably sorts them with less
// and returns at most topListSize entries. Stable sort preserves input
// order between equal keys, so curated lists are deterministic.
func selectQuestions(questions []types.QuestionResult, keep func(types.QuestionResult) bool, less func(a, b types.QuestionResult) bool) []types.QuestionResult {
	var picked []types.QuestionResult
	for _, q := range questions {
		if keep(q) {
			picked = append(picked, q)
		}
	}
	sort.SliceStable(picked, func(i, j int) bool { return less(picked[i], picked[j]) })
	if len(picked) > topListSize {
		picked = picked[:topListSize]
	}
	return picked
}

// topStrengths returns up to three questions rated at or above the strength
// threshold by reviewers, best first.
func topStrengths(questions []types.QuestionResult) []types.QuestionResult {
	return selectQuestions(questions,
		func(q types.QuestionResult) bool { return q.AvgReviewerRating >= strengthThreshold },
		func(a, b types.QuestionResult) bool { return a.AvgReviewerRating > b.AvgReviewerRating })
}

// developmentAreas returns up to three questions rated below the
// development threshold by reviewers, lowest first.
func developmentAreas(questions []types.QuestionResult) []types.QuestionResult {
	return selectQuestions(questions,
		func(q types.QuestionResult) bool { return q.AvgReviewerRating < developmentThreshold },
		func(a, b types.QuestionResult) bool { return a.AvgReviewerRating < b.AvgReviewerRating })
}

// topBlindSpots returns up to three blind-spot questions, widest gap first.
func topBlindSpots(questions []types.QuestionResult) []types.QuestionResult {
	return selectQuestions(questions,
		func(q types.QuestionResult) bool { return q.Alignment() == types.AlignmentBlindSpot },
		func(a, b types.QuestionResult) bool { return a.Gap() > b.Gap() })
}

// topHiddenStrengths returns up to three hidden-strength questions, most
// negative gap first.
func topHiddenStrengths(questions []types.QuestionResult) []types.QuestionResult {
	return selectQuestions(questions,
		func(q types.QuestionResult) bool { return q.Alignment() == types.AlignmentHiddenStrength },
		func(a, b types.QuestionResult) bool { return a.Gap() < b.Gap() })
}
