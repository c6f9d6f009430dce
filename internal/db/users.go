package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/feedback360/internal/types"
)

// UserRecord is a stored user row, including the password hash. The hash
// never leaves the db/server packages.
type UserRecord struct {
	User         types.User
	PasswordHash string
}

// CreateUser inserts a new user and returns the stored record.
func (db *DB) CreateUser(ctx context.Context, firstName, lastName, email, passwordHash string, role types.UserRole) (*UserRecord, error) {
	var rec UserRecord
	rec.PasswordHash = passwordHash
	err := db.pool.QueryRow(ctx,
		`INSERT INTO users (first_name, last_name, email, password_hash, role)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, first_name, last_name, email, role, COALESCE(organization_id, '00000000-0000-0000-0000-000000000000'::uuid), created_at, updated_at`,
		firstName, lastName, email, passwordHash, role,
	).Scan(&rec.User.ID, &rec.User.FirstName, &rec.User.LastName, &rec.User.Email, &rec.User.Role, &rec.User.OrganizationID, &rec.User.CreatedAt, &rec.User.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &rec, nil
}

// GetUserByEmail retrieves a user by email. Returns nil when no user exists.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*UserRecord, error) {
	var rec UserRecord
	err := db.pool.QueryRow(ctx,
		`SELECT id, first_name, last_name, email, password_hash, role, COALESCE(organization_id, '00000000-0000-0000-0000-000000000000'::uuid), created_at, updated_at
		 FROM users WHERE email = $1`,
		email,
	).Scan(&rec.User.ID, &rec.User.FirstName, &rec.User.LastName, &rec.User.Email, &rec.PasswordHash, &rec.User.Role, &rec.User.OrganizationID, &rec.User.CreatedAt, &rec.User.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &rec, nil
}

// GetUserByID retrieves a user by id. Returns nil when no user exists.
func (db *DB) GetUserByID(ctx context.Context, id uuid.UUID) (*UserRecord, error) {
	var rec UserRecord
	err := db.pool.QueryRow(ctx,
		`SELECT id, first_name, last_name, email, password_hash, role, COALESCE(organization_id, '00000000-0000-0000-0000-000000000000'::uuid), created_at, updated_at
		 FROM users WHERE id = $1`,
		id,
	).Scan(&rec.User.ID, &rec.User.FirstName, &rec.User.LastName, &rec.User.Email, &rec.PasswordHash, &rec.User.Role, &rec.User.OrganizationID, &rec.User.CreatedAt, &rec.User.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &rec, nil
}
