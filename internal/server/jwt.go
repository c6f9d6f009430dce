package server

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/jonathan/feedback360/internal/config"
	"github.com/jonathan/feedback360/internal/server/middleware"
	"github.com/jonathan/feedback360/internal/types"
)

// Claims is the JWT payload issued at login. The role and organization
// claims let handlers enforce export scope without a database round trip.
type Claims struct {
	UserID         uuid.UUID      `json:"user_id"`
	Role           types.UserRole `json:"role"`
	OrganizationID uuid.UUID      `json:"organization_id"`
	jwt.RegisteredClaims
}

// JWTService creates and validates JWT tokens.
type JWTService struct {
	config *config.JWTConfig
}

// NewJWTService creates a new JWT service with the given configuration.
func NewJWTService(cfg *config.JWTConfig) *JWTService {
	return &JWTService{config: cfg}
}

// GenerateToken creates a signed JWT for the given user.
func (s *JWTService) GenerateToken(user *types.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:         user.ID,
		Role:           user.Role,
		OrganizationID: user.OrganizationID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(s.config.ExpirationHours) * time.Hour)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and validates a JWT, returning its claims.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

// tokenValidatorAdapter adapts JWTService to the middleware.TokenValidator
// interface.
type tokenValidatorAdapter struct {
	jwtService *JWTService
}

func (a *tokenValidatorAdapter) ValidateToken(token string) (*middleware.Identity, error) {
	claims, err := a.jwtService.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	return &middleware.Identity{
		UserID:         claims.UserID,
		Role:           claims.Role,
		OrganizationID: claims.OrganizationID,
	}, nil
}
