package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/feedback360/internal/aggregation"
	"github.com/jonathan/feedback360/internal/db"
	"github.com/jonathan/feedback360/internal/observability"
	"github.com/jonathan/feedback360/internal/schemas"
	"github.com/jonathan/feedback360/internal/types"
)

var summaryCommand = &cobra.Command{
	Use:   "summary",
	Short: "Compute a perception summary for one participant",
	Long: `Aggregates a participant's result set into a perception summary:
gap categories, strengths, development areas and competency rankings.

The result set comes either from a JSON file (--input) or from the
database (--assessment-id and --participant-id).`,
	RunE: runSummaryCmd,
}

var (
	summaryInputPath     string
	summaryAssessmentID  string
	summaryParticipantID string
	summaryDatabaseURL   string
	summaryVerbose       bool
)

func init() {
	summaryCommand.Flags().StringVarP(&summaryInputPath, "input", "i", "", "Path to a result-set JSON file (mutually exclusive with --assessment-id)")
	summaryCommand.Flags().StringVar(&summaryAssessmentID, "assessment-id", "", "Assessment to load from the database")
	summaryCommand.Flags().StringVar(&summaryParticipantID, "participant-id", "", "Participant to load from the database")
	summaryCommand.Flags().StringVar(&summaryDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	summaryCommand.Flags().BoolVarP(&summaryVerbose, "verbose", "v", false, "Print a formatted report instead of JSON")

	rootCmd.AddCommand(summaryCommand)
}

func runSummaryCmd(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	set, err := loadSummaryInput(ctx)
	if err != nil {
		return err
	}

	summary, err := aggregation.Compute(set.Sections)
	if err != nil {
		return fmt.Errorf("failed to compute summary: %w", err)
	}

	if summaryVerbose {
		observability.NewPrinter(os.Stdout).PrintSummary(summary)
		return nil
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(summary)
}

func loadSummaryInput(ctx context.Context) (*types.ResultSet, error) {
	if summaryInputPath != "" && summaryAssessmentID != "" {
		return nil, fmt.Errorf("--input and --assessment-id are mutually exclusive; provide only one")
	}

	if summaryInputPath != "" {
		data, err := os.ReadFile(summaryInputPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", summaryInputPath, err)
		}
		if err := schemas.ValidateResultSet(data); err != nil {
			return nil, err
		}
		var set types.ResultSet
		if err := json.Unmarshal(data, &set); err != nil {
			return nil, fmt.Errorf("failed to parse result set: %w", err)
		}
		return &set, nil
	}

	if summaryAssessmentID == "" || summaryParticipantID == "" {
		return nil, fmt.Errorf("either --input or both --assessment-id and --participant-id must be provided")
	}
	assessmentID, err := uuid.Parse(summaryAssessmentID)
	if err != nil {
		return nil, fmt.Errorf("invalid --assessment-id: %w", err)
	}
	participantID, err := uuid.Parse(summaryParticipantID)
	if err != nil {
		return nil, fmt.Errorf("invalid --participant-id: %w", err)
	}

	databaseURL := summaryDatabaseURL
	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable or --db-url flag is required")
	}

	database, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	set, err := database.GetResultSet(ctx, assessmentID, participantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load result set: %w", err)
	}
	if set == nil {
		return nil, fmt.Errorf("no results found for participant %s in assessment %s", participantID, assessmentID)
	}
	return set, nil
}
