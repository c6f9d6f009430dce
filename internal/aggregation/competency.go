package aggregation

import (
	"sort"

	"github.com/google/uuid"

	"github.com/jonathan/feedback360/internal/types"
)

// CompetencyAggregate is the derived per-competency average pair. It is
// computed on demand and never persisted.
type CompetencyAggregate struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	SelfAverage     float64   `json:"self_average"`
	ReviewerAverage float64   `json:"reviewer_average"`
	QuestionCount   int       `json:"question_count"`
}

// Gap returns the perception gap for the competency averages.
func (c CompetencyAggregate) Gap() float64 {
	return c.SelfAverage - c.ReviewerAverage
}

// Alignment returns the alignment category for the competency averages,
// using the same classification rule as individual questions.
func (c CompetencyAggregate) Alignment() types.Alignment {
	return types.AlignmentFor(c.SelfAverage, c.ReviewerAverage)
}

// aggregateCompetencies groups questions by each competency tag they carry.
// A question with several tags contributes to each of them; a question with
// none contributes to no aggregate. Aggregates are returned in first-seen
// tag order.
func aggregateCompetencies(questions []types.QuestionResult) []CompetencyAggregate {
	type accumulator struct {
		name        string
		selfSum     float64
		reviewerSum float64
		count       int
	}

	byID := make(map[uuid.UUID]*accumulator)
	var order []uuid.UUID
	for _, q := range questions {
		for _, c := range q.Competencies {
			acc, ok := byID[c.ID]
			if !ok {
				acc = &accumulator{name: c.Name}
				byID[c.ID] = acc
				order = append(order, c.ID)
			}
			acc.selfSum += q.SelfRating
			acc.reviewerSum += q.AvgReviewerRating
			acc.count++
		}
	}

	aggregates := make([]CompetencyAggregate, 0, len(order))
	for _, id := range order {
		acc := byID[id]
		aggregates = append(aggregates, CompetencyAggregate{
			ID:              id,
			Name:            acc.name,
			SelfAverage:     acc.selfSum / float64(acc.count),
			ReviewerAverage: acc.reviewerSum / float64(acc.count),
			QuestionCount:   acc.count,
		})
	}
	return aggregates
}

// topCompetencies returns up to three competencies with the highest
// reviewer average, best first.
func topCompetencies(aggregates []CompetencyAggregate) []CompetencyAggregate {
	return selectCompetencies(aggregates, func(a, b CompetencyAggregate) bool {
		return a.ReviewerAverage > b.ReviewerAverage
	})
}

// bottomCompetencies returns up to three competencies with the lowest
// reviewer average, lowest first.
func bottomCompetencies(aggregates []CompetencyAggregate) []CompetencyAggregate {
	return selectCompetencies(aggregates, func(a, b CompetencyAggregate) bool {
		return a.ReviewerAverage < b.ReviewerAverage
	})
}

func selectCompetencies(aggregates []CompetencyAggregate, less func(a, b CompetencyAggregate) bool) []CompetencyAggregate {
	picked := make([]CompetencyAggregate, len(aggregates))
	copy(picked, aggregates)
	sort.SliceStable(picked, func(i, j int) bool { return less(picked[i], picked[j]) })
	if len(picked) > topListSize {
		picked = picked[:topListSize]
	}
	return picked
}
