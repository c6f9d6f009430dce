package types

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Format selects the export document format.
type Format string

const (
	FormatCSV   Format = "csv"
	FormatPDF   Format = "pdf"
	FormatExcel Format = "excel"
)

// ParseFormat converts a wire-level format string into a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatCSV, FormatPDF, FormatExcel:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unknown export format %q (want csv, pdf or excel)", s)
	}
}

// Extension returns the file extension for the format, without the dot.
func (f Format) Extension() string {
	switch f {
	case FormatExcel:
		return "xlsx"
	default:
		return string(f)
	}
}

// ContentType returns the MIME type for documents in this format.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatPDF:
		return "application/pdf"
	case FormatExcel:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/octet-stream"
	}
}

// Scope is the privilege level of the caller requesting an export. It
// controls which rows the row source returns.
type Scope string

const (
	// ScopeSystem sees every row in the system (root dashboards).
	ScopeSystem Scope = "system"
	// ScopeOrganization sees rows for the caller's organization.
	ScopeOrganization Scope = "organization"
	// ScopeSelf sees only the caller's own rows.
	ScopeSelf Scope = "self"
)

// DateRange restricts rows to completions inside [Start, End].
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ExportFilters narrow the row set before it reaches the formatter. The
// filtering itself happens in the row source; the formatter only shapes
// and redacts.
type ExportFilters struct {
	AssessmentID     uuid.UUID `json:"assessment_id,omitempty"`
	ParticipantID    uuid.UUID `json:"participant_id,omitempty"`
	OrganizationID   uuid.UUID `json:"organization_id,omitempty"`
	DepartmentID     uuid.UUID `json:"department_id,omitempty"`
	RelationshipType string    `json:"relationship_type,omitempty"`
}

// ExportOptions controls format, redaction and optional content of an export.
type ExportOptions struct {
	Format         Format         `json:"format" validate:"required,oneof=csv pdf excel"`
	IncludeNames   bool           `json:"include_names"`
	IncludeDetails bool           `json:"include_details"`
	IncludeCharts  bool           `json:"include_charts"`
	DateRange      *DateRange     `json:"date_range,omitempty"`
	Filters        *ExportFilters `json:"filters,omitempty"`
}

// Validate validates the ExportOptions using the validator.
func (o *ExportOptions) Validate() error {
	validate := validator.New()
	return validate.Struct(o)
}

// DetailTarget reports whether the options name the single
// participant/assessment pair that per-dimension detail requires. Detail
// export needs a scalar target, not a batch.
func (o *ExportOptions) DetailTarget() (assessmentID, participantID uuid.UUID, ok bool) {
	if !o.IncludeDetails || o.Filters == nil {
		return uuid.Nil, uuid.Nil, false
	}
	if o.Filters.AssessmentID == uuid.Nil || o.Filters.ParticipantID == uuid.Nil {
		return uuid.Nil, uuid.Nil, false
	}
	return o.Filters.AssessmentID, o.Filters.ParticipantID, true
}

// ExportRow is a flattened projection of one participant's assessment
// completion, shaped for document output. Identity fields are blanked by
// the formatter when names are excluded.
type ExportRow struct {
	ParticipantID   uuid.UUID  `json:"participant_id"`
	FirstName       string     `json:"first_name"`
	LastName        string     `json:"last_name"`
	Email           string     `json:"email"`
	Role            string     `json:"role"`
	Organization    string     `json:"organization"`
	Department      string     `json:"department"`
	AssessmentTitle string     `json:"assessment_title"`
	Status          string     `json:"status"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	SelfAverage     float64    `json:"self_average"`
	ReviewerAverage float64    `json:"reviewer_average"`
	ReviewerCount   int        `json:"reviewer_count"`
}

// DimensionDetail is the per-dimension rating breakdown for a single
// participant/assessment pair, split by reviewer relationship.
type DimensionDetail struct {
	Dimension         string  `json:"dimension"`
	SelfRating        float64 `json:"self_rating"`
	PeerAverage       float64 `json:"peer_average"`
	SubordinateAvg    float64 `json:"subordinate_average"`
	SupervisorAverage float64 `json:"supervisor_average"`
	Gap               float64 `json:"gap"`
}

// DimensionStats is an anonymized statistical summary for one dimension and
// reviewer relationship type.
type DimensionStats struct {
	Dimension        string  `json:"dimension"`
	RelationshipType string  `json:"relationship_type"`
	Mean             float64 `json:"mean"`
	Min              float64 `json:"min"`
	Max              float64 `json:"max"`
	StdDev           float64 `json:"std_dev"`
	SampleSize       int     `json:"sample_size"`
}
