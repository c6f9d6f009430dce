package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jonathan/feedback360/internal/types"
)

// GetResultSet loads the aggregated result sections for one participant in
// one assessment, in stored section and question order. Returns nil when
// the pair has no stored results.
func (db *DB) GetResultSet(ctx context.Context, assessmentID, participantID uuid.UUID) (*types.ResultSet, error) {
	sectionRows, err := db.pool.Query(ctx,
		`SELECT id, title FROM result_sections
		 WHERE assessment_id = $1 AND participant_id = $2
		 ORDER BY position ASC`,
		assessmentID, participantID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query sections: %w", err)
	}
	defer sectionRows.Close()

	var sections []types.SectionResult
	var sectionIDs []uuid.UUID
	for sectionRows.Next() {
		var s types.SectionResult
		if err := sectionRows.Scan(&s.ID, &s.Title); err != nil {
			return nil, fmt.Errorf("failed to scan section: %w", err)
		}
		sections = append(sections, s)
		sectionIDs = append(sectionIDs, s.ID)
	}
	if err := sectionRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sections: %w", err)
	}
	if len(sections) == 0 {
		return nil, nil
	}

	questionsBySection, err := db.loadQuestions(ctx, sectionIDs)
	if err != nil {
		return nil, err
	}
	for i := range sections {
		sections[i].Questions = questionsBySection[sections[i].ID]
	}

	return &types.ResultSet{
		AssessmentID:  assessmentID,
		ParticipantID: participantID,
		Sections:      sections,
	}, nil
}

// loadQuestions fetches the questions for a set of sections, with their
// competency tags, keyed by section id and ordered by stored position.
func (db *DB) loadQuestions(ctx context.Context, sectionIDs []uuid.UUID) (map[uuid.UUID][]types.QuestionResult, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, section_id, text, self_rating, avg_reviewer_rating, reviewer_count
		 FROM result_questions
		 WHERE section_id = ANY($1)
		 ORDER BY section_id, position ASC`,
		sectionIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query questions: %w", err)
	}
	defer rows.Close()

	type position struct {
		section uuid.UUID
		index   int
	}
	bySection := make(map[uuid.UUID][]types.QuestionResult)
	positions := make(map[uuid.UUID]position)
	var questionIDs []uuid.UUID
	for rows.Next() {
		var q types.QuestionResult
		var sectionID uuid.UUID
		if err := rows.Scan(&q.ID, &sectionID, &q.Text, &q.SelfRating, &q.AvgReviewerRating, &q.ReviewerCount); err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		positions[q.ID] = position{section: sectionID, index: len(bySection[sectionID])}
		bySection[sectionID] = append(bySection[sectionID], q)
		questionIDs = append(questionIDs, q.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read questions: %w", err)
	}
	if len(questionIDs) == 0 {
		return bySection, nil
	}

	tagRows, err := db.pool.Query(ctx,
		`SELECT qc.question_id, c.id, c.name
		 FROM question_competencies qc
		 JOIN competencies c ON c.id = qc.competency_id
		 WHERE qc.question_id = ANY($1)
		 ORDER BY c.name ASC`,
		questionIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query competencies: %w", err)
	}
	defer tagRows.Close()

	for tagRows.Next() {
		var questionID uuid.UUID
		var c types.Competency
		if err := tagRows.Scan(&questionID, &c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan competency: %w", err)
		}
		if p, ok := positions[questionID]; ok {
			q := &bySection[p.section][p.index]
			q.Competencies = append(q.Competencies, c)
		}
	}
	if err := tagRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read competencies: %w", err)
	}

	return bySection, nil
}

// SaveResultSet replaces the stored result sections for the result set's
// participant/assessment pair in a single transaction.
func (db *DB) SaveResultSet(ctx context.Context, set *types.ResultSet) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	_, err = tx.Exec(ctx,
		`DELETE FROM result_sections WHERE assessment_id = $1 AND participant_id = $2`,
		set.AssessmentID, set.ParticipantID,
	)
	if err != nil {
		return fmt.Errorf("failed to clear previous results: %w", err)
	}

	for sectionPos, section := range set.Sections {
		sectionID := section.ID
		if sectionID == uuid.Nil {
			sectionID = uuid.New()
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO result_sections (id, assessment_id, participant_id, title, position)
			 VALUES ($1, $2, $3, $4, $5)`,
			sectionID, set.AssessmentID, set.ParticipantID, section.Title, sectionPos,
		)
		if err != nil {
			return fmt.Errorf("failed to insert section %q: %w", section.Title, err)
		}

		for questionPos, q := range section.Questions {
			questionID := q.ID
			if questionID == uuid.Nil {
				questionID = uuid.New()
			}
			_, err = tx.Exec(ctx,
				`INSERT INTO result_questions (id, section_id, text, self_rating, avg_reviewer_rating, reviewer_count, position)
				 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				questionID, sectionID, q.Text, q.SelfRating, q.AvgReviewerRating, q.ReviewerCount, questionPos,
			)
			if err != nil {
				return fmt.Errorf("failed to insert question: %w", err)
			}

			for _, c := range q.Competencies {
				_, err = tx.Exec(ctx,
					`INSERT INTO competencies (id, name) VALUES ($1, $2)
					 ON CONFLICT (id) DO UPDATE SET name = $2`,
					c.ID, c.Name,
				)
				if err != nil {
					return fmt.Errorf("failed to upsert competency %q: %w", c.Name, err)
				}
				_, err = tx.Exec(ctx,
					`INSERT INTO question_competencies (question_id, competency_id) VALUES ($1, $2)
					 ON CONFLICT DO NOTHING`,
					questionID, c.ID,
				)
				if err != nil {
					return fmt.Errorf("failed to link competency: %w", err)
				}
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit results: %w", err)
	}
	return nil
}

// AssessmentExists reports whether an assessment id is known.
func (db *DB) AssessmentExists(ctx context.Context, assessmentID uuid.UUID) (bool, error) {
	var exists bool
	err := db.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM assessments WHERE id = $1)`,
		assessmentID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check assessment: %w", err)
	}
	return exists, nil
}

// ParticipantExists reports whether a user id is known.
func (db *DB) ParticipantExists(ctx context.Context, participantID uuid.UUID) (bool, error) {
	var exists bool
	err := db.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`,
		participantID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check participant: %w", err)
	}
	return exists, nil
}
