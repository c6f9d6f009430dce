package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// UserRole is the privilege level of an account.
type UserRole string

const (
	// RoleRoot has system-wide access (root dashboard).
	RoleRoot UserRole = "root"
	// RoleOrgAdmin manages a single organization.
	RoleOrgAdmin UserRole = "org_admin"
	// RoleUser is a regular participant.
	RoleUser UserRole = "user"
)

// ExportScope maps an account role to the row-source scope its exports see.
func (r UserRole) ExportScope() Scope {
	switch r {
	case RoleRoot:
		return ScopeSystem
	case RoleOrgAdmin:
		return ScopeOrganization
	default:
		return ScopeSelf
	}
}

// CreateUserRequest represents the request to create a new user with password
// authentication. Role is accepted on the wire but self-registration only
// ever produces participant accounts; the user service rejects anything else.
type CreateUserRequest struct {
	FirstName string `json:"first_name" validate:"required,min=1"`
	LastName  string `json:"last_name" validate:"required,min=1"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	Role      string `json:"role,omitempty"`
}

// LoginRequest represents the login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// User represents a user profile for API responses (avoids import cycle with db package).
type User struct {
	ID             uuid.UUID `json:"id"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Email          string    `json:"email"`
	Role           UserRole  `json:"role"`
	OrganizationID uuid.UUID `json:"organization_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// LoginResponse represents the login/register response with user data and authentication token.
type LoginResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// ConsentRequest records a participant's GDPR consent decision.
type ConsentRequest struct {
	UserID        uuid.UUID `json:"user_id" validate:"required"`
	PolicyVersion string    `json:"policy_version" validate:"required"`
	Granted       bool      `json:"granted"`
}

// ConsentRecord is a stored consent decision.
type ConsentRecord struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"user_id"`
	PolicyVersion string    `json:"policy_version"`
	Granted       bool      `json:"granted"`
	RecordedAt    time.Time `json:"recorded_at"`
}

// Validate validates the CreateUserRequest using the validator.
func (r *CreateUserRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the LoginRequest using the validator.
func (r *LoginRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the ConsentRequest using the validator.
func (r *ConsentRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
