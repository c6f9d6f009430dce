package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jonathan/feedback360/internal/config"
	"github.com/jonathan/feedback360/internal/server"
)

var serveCommand = &cobra.Command{
	Use:   "serve",
	Short: "Run the feedback360 HTTP API server",
	Long: `Starts the HTTP API server: authentication, result summaries, exports,
result imports and consent tracking.

Configuration can be loaded from a JSON file using --config. Command-line
arguments override config file values.`,
	RunE: runServeCmd,
}

var (
	serveConfigPath    string
	servePort          int
	serveDatabaseURL   string
	servePolicyVersion string
	serveMaxExportRows int
)

func init() {
	serveCommand.Flags().StringVar(&serveConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	serveCommand.Flags().IntVarP(&servePort, "port", "p", 0, "HTTP listen port (default 8080, or PORT env var)")
	serveCommand.Flags().StringVar(&serveDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	serveCommand.Flags().StringVar(&servePolicyVersion, "policy-version", "", "Current consent policy version")
	serveCommand.Flags().IntVar(&serveMaxExportRows, "max-export-rows", 0, "Upper bound on rows per export (0 = unlimited)")

	rootCmd.AddCommand(serveCommand)
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	var cfg config.Config
	if serveConfigPath != "" {
		loadedCfg, err := config.LoadConfig(serveConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loadedCfg
	}

	// CLI overrides take priority over the config file.
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = serveDatabaseURL
	}
	if cmd.Flags().Changed("policy-version") {
		cfg.PolicyVersion = servePolicyVersion
	}
	if cmd.Flags().Changed("max-export-rows") {
		cfg.MaxExportRows = serveMaxExportRows
	}

	// Environment fallbacks for unset values.
	if cfg.Port == 0 {
		if p := os.Getenv("PORT"); p != "" {
			port, err := strconv.Atoi(p)
			if err != nil {
				return fmt.Errorf("invalid PORT environment variable: %w", err)
			}
			cfg.Port = port
		} else {
			cfg.Port = 8080
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable or --db-url flag is required")
	}

	s, err := server.New(ctx, &cfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	return s.Start()
}
