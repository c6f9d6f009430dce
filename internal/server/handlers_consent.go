package server

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"

	"github.com/jonathan/feedback360/internal/server/middleware"
	"github.com/jonathan/feedback360/internal/types"
)

// handleRecordConsent handles POST /consent. Users record decisions for
// themselves; admins may record on behalf of others (e.g. paper forms).
func (s *Server) handleRecordConsent(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.CallerIdentity(r)
	if !ok {
		errorResponse(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req types.ConsentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.PolicyVersion == "" {
		req.PolicyVersion = s.policyVersion
	}
	if err := req.Validate(); err != nil {
		errorResponse(w, http.StatusBadRequest, "user_id and policy_version are required")
		return
	}

	if identity.Role == types.RoleUser && req.UserID != identity.UserID {
		errorResponse(w, http.StatusForbidden, ErrForbidden.Error())
		return
	}

	rec, err := s.consent.RecordConsent(r.Context(), &req)
	if err != nil {
		log.Printf("Failed to record consent: %v", err)
		errorResponse(w, http.StatusInternalServerError, "Failed to record consent")
		return
	}

	jsonResponse(w, http.StatusCreated, rec)
}

// consentStatusResponse is the body of GET /consent/{user_id}.
type consentStatusResponse struct {
	Recorded bool                 `json:"recorded"`
	Consent  *types.ConsentRecord `json:"consent,omitempty"`
}

// handleGetConsent handles GET /consent/{user_id}, returning the latest
// decision on record.
func (s *Server) handleGetConsent(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.CallerIdentity(r)
	if !ok {
		errorResponse(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	userID, err := uuid.Parse(r.PathValue("user_id"))
	if err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	if identity.Role == types.RoleUser && userID != identity.UserID {
		errorResponse(w, http.StatusForbidden, ErrForbidden.Error())
		return
	}

	rec, err := s.consent.LatestConsent(r.Context(), userID)
	if err != nil {
		log.Printf("Failed to load consent: %v", err)
		errorResponse(w, http.StatusInternalServerError, "Failed to load consent")
		return
	}

	jsonResponse(w, http.StatusOK, consentStatusResponse{Recorded: rec != nil, Consent: rec})
}
