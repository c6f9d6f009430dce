package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/feedback360/internal/types"
)

// RecordConsent stores a consent decision. Decisions are append-only so the
// full consent history stays auditable.
func (db *DB) RecordConsent(ctx context.Context, req *types.ConsentRequest) (*types.ConsentRecord, error) {
	var rec types.ConsentRecord
	err := db.pool.QueryRow(ctx,
		`INSERT INTO consent_records (user_id, policy_version, granted)
		 VALUES ($1, $2, $3)
		 RETURNING id, user_id, policy_version, granted, recorded_at`,
		req.UserID, req.PolicyVersion, req.Granted,
	).Scan(&rec.ID, &rec.UserID, &rec.PolicyVersion, &rec.Granted, &rec.RecordedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to record consent: %w", err)
	}
	return &rec, nil
}

// LatestConsent returns the most recent consent decision for a user, or nil
// when the user has never answered.
func (db *DB) LatestConsent(ctx context.Context, userID uuid.UUID) (*types.ConsentRecord, error) {
	var rec types.ConsentRecord
	err := db.pool.QueryRow(ctx,
		`SELECT id, user_id, policy_version, granted, recorded_at
		 FROM consent_records
		 WHERE user_id = $1
		 ORDER BY recorded_at DESC
		 LIMIT 1`,
		userID,
	).Scan(&rec.ID, &rec.UserID, &rec.PolicyVersion, &rec.Granted, &rec.RecordedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get consent: %w", err)
	}
	return &rec, nil
}
