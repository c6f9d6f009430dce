package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/feedback360/internal/db"
	"github.com/jonathan/feedback360/internal/export"
	"github.com/jonathan/feedback360/internal/schemas"
	"github.com/jonathan/feedback360/internal/types"
)

var exportCommand = &cobra.Command{
	Use:   "export",
	Short: "Generate an export document from the command line",
	Long: `Renders assessment results into a CSV, PDF or Excel document and writes
it to disk. Reads from the database, or from a result-set JSON file with
--input. Runs with system scope; this is an operator tool, not a user
surface.`,
	RunE: runExportCmd,
}

var (
	exportFormat         string
	exportOutput         string
	exportInputPath      string
	exportDatabaseURL    string
	exportAssessmentID   string
	exportParticipantID  string
	exportOrganizationID string
	exportIncludeNames   bool
	exportIncludeDetails bool
	exportIncludeCharts  bool
)

func init() {
	exportCommand.Flags().StringVarP(&exportFormat, "format", "f", "csv", "Export format: csv, pdf or excel")
	exportCommand.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file path (defaults to the generated filename)")
	exportCommand.Flags().StringVarP(&exportInputPath, "input", "i", "", "Path to a result-set JSON file (mutually exclusive with --db-url)")
	exportCommand.Flags().StringVar(&exportDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	exportCommand.Flags().StringVar(&exportAssessmentID, "assessment-id", "", "Restrict to one assessment")
	exportCommand.Flags().StringVar(&exportParticipantID, "participant-id", "", "Restrict to one participant")
	exportCommand.Flags().StringVar(&exportOrganizationID, "organization-id", "", "Restrict to one organization")
	exportCommand.Flags().BoolVar(&exportIncludeNames, "include-names", false, "Include participant names and emails")
	exportCommand.Flags().BoolVar(&exportIncludeDetails, "include-details", false, "Include per-dimension detail (needs --assessment-id and --participant-id)")
	exportCommand.Flags().BoolVar(&exportIncludeCharts, "include-charts", false, "Embed a chart in Excel output")

	rootCmd.AddCommand(exportCommand)
}

func runExportCmd(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	format, err := types.ParseFormat(exportFormat)
	if err != nil {
		return err
	}

	filters := &types.ExportFilters{}
	if err := parseFilterID(exportAssessmentID, &filters.AssessmentID, "assessment-id"); err != nil {
		return err
	}
	if err := parseFilterID(exportParticipantID, &filters.ParticipantID, "participant-id"); err != nil {
		return err
	}
	if err := parseFilterID(exportOrganizationID, &filters.OrganizationID, "organization-id"); err != nil {
		return err
	}

	source, cleanup, err := exportSource(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	opts := types.ExportOptions{
		Format:         format,
		IncludeNames:   exportIncludeNames,
		IncludeDetails: exportIncludeDetails,
		IncludeCharts:  exportIncludeCharts,
		Filters:        filters,
	}

	doc, err := export.NewService(source).Export(ctx, types.ScopeSystem, opts)
	if err != nil {
		if export.IsNoData(err) {
			return fmt.Errorf("no data matched the given filters")
		}
		return fmt.Errorf("export failed: %w", err)
	}

	output := exportOutput
	if output == "" {
		output = doc.Filename
	}
	if err := os.WriteFile(output, doc.Data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}

	fmt.Printf("Wrote %s (%d bytes)\n", output, len(doc.Data))
	return nil
}

// exportSource picks the row source: a result-set JSON file with --input,
// otherwise the database.
func exportSource(ctx context.Context) (export.RowSource, func(), error) {
	if exportInputPath != "" {
		if exportDatabaseURL != "" {
			return nil, nil, fmt.Errorf("--input and --db-url are mutually exclusive; provide only one")
		}
		data, err := os.ReadFile(exportInputPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read %s: %w", exportInputPath, err)
		}
		if err := schemas.ValidateResultSet(data); err != nil {
			return nil, nil, err
		}
		var set types.ResultSet
		if err := json.Unmarshal(data, &set); err != nil {
			return nil, nil, fmt.Errorf("failed to parse result set: %w", err)
		}
		return &fileSource{set: &set}, func() {}, nil
	}

	databaseURL := exportDatabaseURL
	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		return nil, nil, fmt.Errorf("DATABASE_URL environment variable or --db-url flag is required")
	}

	database, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return database, database.Close, nil
}

// fileSource serves a single result-set document as an export row source.
// Identity fields beyond the participant id are not present in the
// document, so name columns come out blank.
type fileSource struct {
	set *types.ResultSet
}

func (f *fileSource) Rows(_ context.Context, _ types.Scope, _ types.ExportOptions) ([]types.ExportRow, error) {
	var selfSum, reviewerSum float64
	var count, reviewers int
	for _, section := range f.set.Sections {
		for _, q := range section.Questions {
			selfSum += q.SelfRating
			reviewerSum += q.AvgReviewerRating
			count++
			if q.ReviewerCount > reviewers {
				reviewers = q.ReviewerCount
			}
		}
	}
	if count == 0 {
		return nil, nil
	}
	return []types.ExportRow{{
		ParticipantID:   f.set.ParticipantID,
		Status:          "completed",
		SelfAverage:     selfSum / float64(count),
		ReviewerAverage: reviewerSum / float64(count),
		ReviewerCount:   reviewers,
	}}, nil
}

func (f *fileSource) DimensionDetails(_ context.Context, _, _ uuid.UUID) ([]types.DimensionDetail, error) {
	details := make([]types.DimensionDetail, 0, len(f.set.Sections))
	for _, section := range f.set.Sections {
		if len(section.Questions) == 0 {
			continue
		}
		selfAvg := section.SelfAverage()
		reviewerAvg := section.ReviewerAverage()
		details = append(details, types.DimensionDetail{
			Dimension:   section.Title,
			SelfRating:  selfAvg,
			PeerAverage: reviewerAvg,
			Gap:         selfAvg - reviewerAvg,
		})
	}
	return details, nil
}

func (f *fileSource) AnonymizedStats(_ context.Context, _ types.ExportOptions) ([]types.DimensionStats, error) {
	// A single document has no population to anonymize over.
	return nil, nil
}

func parseFilterID(value string, target *uuid.UUID, flag string) error {
	if value == "" {
		return nil
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return fmt.Errorf("invalid --%s: %w", flag, err)
	}
	*target = id
	return nil
}
