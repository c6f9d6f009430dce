package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jonathan/feedback360/internal/types"
)

// DimensionDetails returns the per-dimension rating breakdown for a single
// participant/assessment pair, split by reviewer relationship. The gap is
// self average minus the average over all non-self ratings.
func (db *DB) DimensionDetails(ctx context.Context, assessmentID, participantID uuid.UUID) ([]types.DimensionDetail, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT dimension,
			COALESCE(AVG(rating) FILTER (WHERE relationship_type = 'self'), 0),
			COALESCE(AVG(rating) FILTER (WHERE relationship_type = 'peer'), 0),
			COALESCE(AVG(rating) FILTER (WHERE relationship_type = 'subordinate'), 0),
			COALESCE(AVG(rating) FILTER (WHERE relationship_type = 'supervisor'), 0),
			COALESCE(AVG(rating) FILTER (WHERE relationship_type <> 'self'), 0)
		 FROM dimension_ratings
		 WHERE assessment_id = $1 AND participant_id = $2
		 GROUP BY dimension
		 ORDER BY dimension ASC`,
		assessmentID, participantID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query dimension details: %w", err)
	}
	defer rows.Close()

	var details []types.DimensionDetail
	for rows.Next() {
		var d types.DimensionDetail
		var reviewerAvg float64
		if err := rows.Scan(&d.Dimension, &d.SelfRating, &d.PeerAverage, &d.SubordinateAvg, &d.SupervisorAverage, &reviewerAvg); err != nil {
			return nil, fmt.Errorf("failed to scan dimension detail: %w", err)
		}
		d.Gap = d.SelfRating - reviewerAvg
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read dimension details: %w", err)
	}
	return details, nil
}

// AnonymizedStats returns mean/min/max/standard deviation per dimension and
// reviewer relationship, with no participant identity attached. Self
// ratings are excluded.
func (db *DB) AnonymizedStats(ctx context.Context, opts types.ExportOptions) ([]types.DimensionStats, error) {
	query := `SELECT r.dimension, r.relationship_type,
		AVG(r.rating), MIN(r.rating), MAX(r.rating),
		COALESCE(STDDEV_POP(r.rating), 0), COUNT(*)
	FROM dimension_ratings r
	JOIN users u ON u.id = r.participant_id
	WHERE r.relationship_type <> 'self'`
	args := []any{}
	argNum := 1

	if opts.Filters != nil {
		if opts.Filters.AssessmentID != uuid.Nil {
			query += fmt.Sprintf(" AND r.assessment_id = $%d", argNum)
			args = append(args, opts.Filters.AssessmentID)
			argNum++
		}
		if opts.Filters.OrganizationID != uuid.Nil {
			query += fmt.Sprintf(" AND u.organization_id = $%d", argNum)
			args = append(args, opts.Filters.OrganizationID)
			argNum++
		}
		if opts.Filters.RelationshipType != "" {
			query += fmt.Sprintf(" AND r.relationship_type = $%d", argNum)
			args = append(args, opts.Filters.RelationshipType)
		}
	}

	query += ` GROUP BY r.dimension, r.relationship_type
	ORDER BY r.dimension ASC, r.relationship_type ASC`

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query anonymized stats: %w", err)
	}
	defer rows.Close()

	var stats []types.DimensionStats
	for rows.Next() {
		var s types.DimensionStats
		if err := rows.Scan(&s.Dimension, &s.RelationshipType, &s.Mean, &s.Min, &s.Max, &s.StdDev, &s.SampleSize); err != nil {
			return nil, fmt.Errorf("failed to scan anonymized stats: %w", err)
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read anonymized stats: %w", err)
	}
	return stats, nil
}
