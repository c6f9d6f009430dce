package server

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/google/uuid"

	"github.com/jonathan/feedback360/internal/aggregation"
	"github.com/jonathan/feedback360/internal/schemas"
	"github.com/jonathan/feedback360/internal/server/middleware"
	"github.com/jonathan/feedback360/internal/types"
	"github.com/jonathan/feedback360/internal/validation"
)

const maxImportBytes = 10 << 20

// summaryResponse is the body of GET .../summary. A participant with no
// completed reviews gets no_data=true rather than an error.
type summaryResponse struct {
	NoData  bool                 `json:"no_data"`
	Summary *aggregation.Summary `json:"summary,omitempty"`
}

// handleSummary handles GET /assessments/{id}/participants/{pid}/summary.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	assessmentID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid assessment id")
		return
	}
	participantID, err := uuid.Parse(r.PathValue("pid"))
	if err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid participant id")
		return
	}

	identity, ok := middleware.CallerIdentity(r)
	if !ok {
		errorResponse(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	// Participants may only read their own summary.
	if identity.Role == types.RoleUser && identity.UserID != participantID {
		errorResponse(w, http.StatusForbidden, ErrForbidden.Error())
		return
	}

	set, err := s.results.GetResultSet(r.Context(), assessmentID, participantID)
	if err != nil {
		log.Printf("Failed to load result set: %v", err)
		errorResponse(w, http.StatusInternalServerError, "Failed to load results")
		return
	}
	if set == nil {
		if !s.checkResultTarget(w, r, assessmentID, participantID) {
			return
		}
		jsonResponse(w, http.StatusOK, summaryResponse{NoData: true})
		return
	}

	summary, err := aggregation.Compute(set.Sections)
	if err != nil {
		if errors.Is(err, aggregation.ErrNoData) {
			jsonResponse(w, http.StatusOK, summaryResponse{NoData: true})
			return
		}
		log.Printf("Failed to compute summary: %v", err)
		errorResponse(w, http.StatusInternalServerError, "Failed to compute summary")
		return
	}

	jsonResponse(w, http.StatusOK, summaryResponse{NoData: false, Summary: summary})
}

// checkResultTarget distinguishes "no results yet" from "no such
// assessment or participant". Returns false after writing a 404.
func (s *Server) checkResultTarget(w http.ResponseWriter, r *http.Request, assessmentID, participantID uuid.UUID) bool {
	exists, err := s.results.AssessmentExists(r.Context(), assessmentID)
	if err != nil {
		log.Printf("Failed to check assessment: %v", err)
		errorResponse(w, http.StatusInternalServerError, "Failed to load results")
		return false
	}
	if !exists {
		errorResponse(w, http.StatusNotFound, "Assessment not found")
		return false
	}

	exists, err = s.results.ParticipantExists(r.Context(), participantID)
	if err != nil {
		log.Printf("Failed to check participant: %v", err)
		errorResponse(w, http.StatusInternalServerError, "Failed to load results")
		return false
	}
	if !exists {
		errorResponse(w, http.StatusNotFound, "Participant not found")
		return false
	}
	return true
}

// importResponse is the body of POST .../results/import. Warnings are
// reported even on success.
type importResponse struct {
	Imported   bool                   `json:"imported"`
	Violations []validation.Violation `json:"violations,omitempty"`
}

// handleImport handles POST /assessments/{id}/results/import. The body is
// a result-set JSON document; it is schema-validated, rule-checked, then
// stored. The assessment id in the path wins over the one in the body.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.CallerIdentity(r)
	if !ok {
		errorResponse(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	if identity.Role != types.RoleRoot && identity.Role != types.RoleOrgAdmin {
		errorResponse(w, http.StatusForbidden, ErrForbidden.Error())
		return
	}

	assessmentID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid assessment id")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err != nil {
		errorResponse(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	if err := schemas.ValidateResultSet(body); err != nil {
		var schemaErr *schemas.ValidationError
		if errors.As(err, &schemaErr) {
			jsonResponse(w, http.StatusBadRequest, map[string]interface{}{
				"error":  "Schema validation failed",
				"issues": schemaErr.Errors,
			})
			return
		}
		errorResponse(w, http.StatusBadRequest, "Invalid result-set document")
		return
	}

	var set types.ResultSet
	if err := json.Unmarshal(body, &set); err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid result-set document")
		return
	}
	set.AssessmentID = assessmentID

	violations := validation.CheckResultSet(&set)
	if validation.HasErrors(violations) {
		jsonResponse(w, http.StatusBadRequest, importResponse{Imported: false, Violations: violations})
		return
	}

	if err := s.results.SaveResultSet(r.Context(), &set); err != nil {
		log.Printf("Failed to save result set: %v", err)
		errorResponse(w, http.StatusInternalServerError, "Failed to save results")
		return
	}

	jsonResponse(w, http.StatusCreated, importResponse{Imported: true, Violations: violations})
}
