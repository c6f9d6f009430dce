package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jonathan/feedback360/internal/config"
	"github.com/jonathan/feedback360/internal/db"
	"github.com/jonathan/feedback360/internal/types"
)

// UserStore is the persistence surface the user service needs.
type UserStore interface {
	CreateUser(ctx context.Context, firstName, lastName, email, passwordHash string, role types.UserRole) (*db.UserRecord, error)
	GetUserByEmail(ctx context.Context, email string) (*db.UserRecord, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*db.UserRecord, error)
}

// UserService handles registration and authentication.
type UserService struct {
	store          UserStore
	passwordConfig *config.PasswordConfig
}

// NewUserService creates a new user service.
func NewUserService(store UserStore, passwordConfig *config.PasswordConfig) *UserService {
	return &UserService{store: store, passwordConfig: passwordConfig}
}

// Register creates a new user account with a hashed password.
// Self-registration always yields a participant account; root and
// org_admin accounts are provisioned out of band, so a caller-supplied
// elevated role is rejected rather than stored.
func (s *UserService) Register(ctx context.Context, req *types.CreateUserRequest) (*types.User, error) {
	if err := req.Validate(); err != nil {
		return nil, validationError(err)
	}
	if req.Role != "" && req.Role != string(types.RoleUser) {
		return nil, &ValidationError{
			Message: "elevated roles cannot be self-assigned",
			Fields:  map[string]string{"role": "only participant accounts can self-register"},
		}
	}

	existing, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailAlreadyExists
	}

	hash, err := s.passwordConfig.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	rec, err := s.store.CreateUser(ctx, req.FirstName, req.LastName, req.Email, hash, types.RoleUser)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &rec.User, nil
}

// Login verifies credentials and returns the user profile.
func (s *UserService) Login(ctx context.Context, req *types.LoginRequest) (*types.User, error) {
	if err := req.Validate(); err != nil {
		return nil, validationError(err)
	}

	rec, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if rec == nil {
		return nil, ErrInvalidCredentials
	}

	if !s.passwordConfig.VerifyPassword(req.Password, rec.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return &rec.User, nil
}

// validationError converts validator.ValidationErrors into a
// field-keyed ValidationError for the API response.
func validationError(err error) error {
	fields := make(map[string]string)
	var vErrs validator.ValidationErrors
	if errors.As(err, &vErrs) {
		for _, fe := range vErrs {
			fields[fe.Field()] = fmt.Sprintf("failed on the '%s' rule", fe.Tag())
		}
	}
	return &ValidationError{Message: "validation failed", Fields: fields}
}
