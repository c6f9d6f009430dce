package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jonathan/feedback360/internal/types"
)

// Rows returns the flattened export rows visible to the given scope,
// narrowed by the options' filters and date range. Organization scope
// requires an organization filter and self scope a participant filter;
// the server injects those from the caller's token before the call.
func (db *DB) Rows(ctx context.Context, scope types.Scope, opts types.ExportOptions) ([]types.ExportRow, error) {
	query, args, err := buildRowQuery(scope, opts)
	if err != nil {
		return nil, err
	}

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query export rows: %w", err)
	}
	defer rows.Close()

	var out []types.ExportRow
	for rows.Next() {
		var r types.ExportRow
		if err := rows.Scan(
			&r.ParticipantID, &r.FirstName, &r.LastName, &r.Email, &r.Role,
			&r.Organization, &r.Department, &r.AssessmentTitle, &r.Status,
			&r.CompletedAt, &r.SelfAverage, &r.ReviewerAverage, &r.ReviewerCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan export row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read export rows: %w", err)
	}
	return out, nil
}

// buildRowQuery assembles the scoped, filtered export-row query.
func buildRowQuery(scope types.Scope, opts types.ExportOptions) (string, []any, error) {
	query := `SELECT u.id, u.first_name, u.last_name, u.email, u.role,
		COALESCE(o.name, ''), COALESCE(d.name, ''), a.title, ap.status, ap.completed_at,
		COALESCE(AVG(q.self_rating), 0), COALESCE(AVG(q.avg_reviewer_rating), 0),
		COALESCE(MAX(q.reviewer_count), 0)
	FROM assessment_participants ap
	JOIN users u ON u.id = ap.user_id
	JOIN assessments a ON a.id = ap.assessment_id
	LEFT JOIN organizations o ON o.id = u.organization_id
	LEFT JOIN departments d ON d.id = u.department_id
	LEFT JOIN result_sections s ON s.assessment_id = ap.assessment_id AND s.participant_id = ap.user_id
	LEFT JOIN result_questions q ON q.section_id = s.id
	WHERE 1=1`
	args := []any{}
	argNum := 1

	filters := types.ExportFilters{}
	if opts.Filters != nil {
		filters = *opts.Filters
	}

	switch scope {
	case types.ScopeSystem:
		// No implicit restriction.
	case types.ScopeOrganization:
		if filters.OrganizationID == uuid.Nil {
			return "", nil, fmt.Errorf("organization scope requires an organization filter")
		}
	case types.ScopeSelf:
		if filters.ParticipantID == uuid.Nil {
			return "", nil, fmt.Errorf("self scope requires a participant filter")
		}
	default:
		return "", nil, fmt.Errorf("unknown export scope %q", scope)
	}

	if filters.AssessmentID != uuid.Nil {
		query += fmt.Sprintf(" AND ap.assessment_id = $%d", argNum)
		args = append(args, filters.AssessmentID)
		argNum++
	}
	if filters.ParticipantID != uuid.Nil {
		query += fmt.Sprintf(" AND ap.user_id = $%d", argNum)
		args = append(args, filters.ParticipantID)
		argNum++
	}
	if filters.OrganizationID != uuid.Nil {
		query += fmt.Sprintf(" AND u.organization_id = $%d", argNum)
		args = append(args, filters.OrganizationID)
		argNum++
	}
	if filters.DepartmentID != uuid.Nil {
		query += fmt.Sprintf(" AND u.department_id = $%d", argNum)
		args = append(args, filters.DepartmentID)
		argNum++
	}
	if opts.DateRange != nil {
		query += fmt.Sprintf(" AND ap.completed_at BETWEEN $%d AND $%d", argNum, argNum+1)
		args = append(args, opts.DateRange.Start, opts.DateRange.End)
		argNum += 2
	}

	query += ` GROUP BY u.id, u.first_name, u.last_name, u.email, u.role,
		o.name, d.name, a.title, a.created_at, ap.status, ap.completed_at
	ORDER BY ap.completed_at DESC NULLS LAST, u.last_name ASC, u.first_name ASC`

	return query, args, nil
}
