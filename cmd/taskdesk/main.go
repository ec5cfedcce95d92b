// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Command taskdesk runs the project and task admin console.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/olegiv/taskdesk/internal/config"
	"github.com/olegiv/taskdesk/internal/logging"
	"github.com/olegiv/taskdesk/internal/version"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	info := version.New(appVersion, appGitCommit, appBuildTime)

	root := &cobra.Command{
		Use:           "taskdesk",
		Short:         "Taskdesk - project and task admin console",
		Version:       info.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Long: `Taskdesk is a role-gated web console in front of the project-tracking API.

Environment Variables:
  TASKDESK_SESSION_SECRET    Session encryption key (required, min 32 bytes)
  TASKDESK_API_BASE_URL      Root URL of the project-tracking API
  TASKDESK_DB_PATH           SQLite database path (default: ./data/taskdesk.db)
  TASKDESK_SERVER_PORT       Server port (default: 8080)
  TASKDESK_ENV               Environment: development|production (default: development)
  TASKDESK_REDIS_URL         Redis URL for shared lookup caching (optional)
  TASKDESK_EXPORT_SCHEDULE   Cron spec for periodic PDF exports (optional)
  TASKDESK_OTEL_ENDPOINT     OTLP collector host:port or "stdout" (optional)`,
	}
	root.SetVersionTemplate(info.String() + "\n")

	root.AddCommand(
		newServeCmd(info),
		newExportCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Show version information",
			Run: func(cmd *cobra.Command, _ []string) {
				cmd.Println(info.String())
			},
		},
	)
	return root
}

// setup loads .env files and configuration and installs the default logger.
func setup() (*config.Config, *slog.Logger, error) {
	// Load .env files if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	logger := logging.New(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

// runE wraps fn so that failures are logged the same way for every command.
func runE(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := fn(cmd, args); err != nil {
			slog.Error("application error", "command", cmd.Name(), "error", err)
			return err
		}
		return nil
	}
}
