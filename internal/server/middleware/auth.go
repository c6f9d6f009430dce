// Package middleware provides HTTP middleware for the feedback360 server.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/jonathan/feedback360/internal/types"
)

type contextKey string

const identityKey contextKey = "identity"

// Identity is the authenticated caller extracted from a verified token.
type Identity struct {
	UserID         uuid.UUID
	Role           types.UserRole
	OrganizationID uuid.UUID
}

// TokenValidator validates a bearer token and returns the caller identity.
type TokenValidator interface {
	ValidateToken(token string) (*Identity, error)
}

// Auth returns middleware that requires a valid Bearer token and stores
// the caller identity in the request context.
func Auth(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				unauthorized(w, "Authorization header required")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				unauthorized(w, "Invalid authorization header format")
				return
			}

			identity, err := validator.ValidateToken(parts[1])
			if err != nil {
				unauthorized(w, "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CallerIdentity retrieves the authenticated identity from the request
// context. The second return value is false when the request did not
// pass through the Auth middleware.
func CallerIdentity(r *http.Request) (*Identity, bool) {
	identity, ok := r.Context().Value(identityKey).(*Identity)
	return identity, ok
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
