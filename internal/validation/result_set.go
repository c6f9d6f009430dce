// Package validation provides rule checks over imported result-set documents.
package validation

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/jonathan/feedback360/internal/types"
)

// Violation severities. Errors block an import; warnings are reported but
// do not.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Violation represents a single rule-check failure inside a result set.
type Violation struct {
	Type       string `json:"type"`
	Severity   string `json:"severity"`
	Details    string `json:"details"`
	Section    string `json:"section,omitempty"`
	QuestionID string `json:"question_id,omitempty"`
}

// HasErrors reports whether any violation carries error severity.
func HasErrors(violations []Violation) bool {
	for _, v := range violations {
		if v.Severity == SeverityError {
			return true
		}
	}
	return false
}

// CheckResultSet runs the domain rule checks a schema cannot express:
// rating ranges, duplicate question ids across sections, and reviewer
// count consistency.
func CheckResultSet(set *types.ResultSet) []Violation {
	var violations []Violation
	seen := make(map[uuid.UUID]string)

	for _, section := range set.Sections {
		if section.Title == "" {
			violations = append(violations, Violation{
				Type:     "empty_section_title",
				Severity: SeverityError,
				Details:  "section has no title",
			})
		}

		for _, q := range section.Questions {
			if q.ID != uuid.Nil {
				if prev, dup := seen[q.ID]; dup {
					violations = append(violations, Violation{
						Type:       "duplicate_question",
						Severity:   SeverityError,
						Details:    fmt.Sprintf("question %s appears in sections %q and %q", q.ID, prev, section.Title),
						Section:    section.Title,
						QuestionID: q.ID.String(),
					})
				} else {
					seen[q.ID] = section.Title
				}
			}

			violations = append(violations, checkRatings(section.Title, q)...)

			if q.ReviewerCount == 0 {
				violations = append(violations, Violation{
					Type:       "no_reviewers",
					Severity:   SeverityWarning,
					Details:    "question carries a reviewer average but zero reviewers",
					Section:    section.Title,
					QuestionID: q.ID.String(),
				})
			}
		}
	}
	return violations
}

func checkRatings(sectionTitle string, q types.QuestionResult) []Violation {
	var violations []Violation
	for name, rating := range map[string]float64{
		"self_rating":         q.SelfRating,
		"avg_reviewer_rating": q.AvgReviewerRating,
	} {
		if rating < types.MinRating || rating > types.MaxRating {
			violations = append(violations, Violation{
				Type:       "rating_out_of_range",
				Severity:   SeverityError,
				Details:    fmt.Sprintf("%s %.2f outside [%.0f, %.0f]", name, rating, types.MinRating, types.MaxRating),
				Section:    sectionTitle,
				QuestionID: q.ID.String(),
			})
		}
	}
	return violations
}
