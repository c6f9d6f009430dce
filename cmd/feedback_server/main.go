// Package main provides the entry point for the feedback360 API server and
// its operator tools.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "feedback_server",
	Short: "360-degree feedback API server",
	Long:  "feedback360 aggregates self and reviewer ratings into perception summaries and exports assessment results as CSV, PDF or Excel documents via REST API.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
