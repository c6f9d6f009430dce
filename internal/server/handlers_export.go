package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/jonathan/feedback360/internal/export"
	"github.com/jonathan/feedback360/internal/server/middleware"
	"github.com/jonathan/feedback360/internal/types"
)

// handleExport handles POST /exports. The export scope comes from the
// caller's role, never from the request: org admins are pinned to their
// organization and participants to themselves.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.CallerIdentity(r)
	if !ok {
		errorResponse(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var opts types.ExportOptions
	if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := opts.Validate(); err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid export options: format must be csv, pdf or excel")
		return
	}

	scope := identity.Role.ExportScope()
	pinFilters(&opts, scope, identity)

	start := time.Now()
	doc, err := s.exporter.Export(r.Context(), scope, opts)
	s.metrics.ExportDuration.WithLabelValues(string(opts.Format)).Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.ExportsTotal.WithLabelValues(string(opts.Format), exportOutcome(err)).Inc()
		status := HTTPStatus(err)
		if status == http.StatusInternalServerError {
			log.Printf("Export failed: %v", err)
			errorResponse(w, status, "Export failed")
			return
		}
		errorResponse(w, status, err.Error())
		return
	}
	s.metrics.ExportsTotal.WithLabelValues(string(opts.Format), "success").Inc()

	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(doc.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(doc.Data); err != nil {
		log.Printf("Failed to write export body: %v", err)
	}
}

// pinFilters overrides caller-supplied filters with the identity-derived
// ones the scope requires, so a forged filter can never widen access.
func pinFilters(opts *types.ExportOptions, scope types.Scope, identity *middleware.Identity) {
	switch scope {
	case types.ScopeOrganization:
		if opts.Filters == nil {
			opts.Filters = &types.ExportFilters{}
		}
		opts.Filters.OrganizationID = identity.OrganizationID
	case types.ScopeSelf:
		if opts.Filters == nil {
			opts.Filters = &types.ExportFilters{}
		}
		opts.Filters.ParticipantID = identity.UserID
	}
}

func exportOutcome(err error) string {
	if export.IsNoData(err) {
		return "no_data"
	}
	return "error"
}
