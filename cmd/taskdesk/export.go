// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/olegiv/taskdesk/internal/apiclient"
	"github.com/olegiv/taskdesk/internal/reports"
	"github.com/olegiv/taskdesk/internal/scheduler"
	"github.com/olegiv/taskdesk/internal/store"
)

type exportOptions struct {
	start  string
	end    string
	out    string
	record bool
}

func newExportCmd() *cobra.Command {
	var opts exportOptions

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the report dashboard to a PDF file",
		Example: `  taskdesk export --start 2024-01-01 --end 2024-06-30 --out q1q2.pdf
  taskdesk export --record`,
		Args: cobra.NoArgs,
		RunE: runE(func(cmd *cobra.Command, _ []string) error {
			return runExport(cmd.Context(), cmd, opts)
		}),
	}

	f := cmd.Flags()
	f.StringVar(&opts.start, "start", "", "start date (YYYY-MM-DD), open when empty")
	f.StringVar(&opts.end, "end", "", "end date (YYYY-MM-DD), open when empty")
	f.StringVarP(&opts.out, "out", "o", "", "output file (default: a generated name in TASKDESK_EXPORT_DIR)")
	f.BoolVar(&opts.record, "record", false, "record the export in the export log")
	return cmd
}

func runExport(ctx context.Context, cmd *cobra.Command, opts exportOptions) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	filter, err := reports.ParseFilter(url.Values{
		reports.ParamStartDate: {opts.start},
		reports.ParamEndDate:   {opts.end},
	})
	if err != nil {
		return err
	}

	api, err := apiclient.New(apiclient.Options{
		BaseURL: cfg.APIBaseURL,
		Timeout: cfg.APITimeout,
	})
	if err != nil {
		return fmt.Errorf("creating API client: %w", err)
	}

	var recorder scheduler.Recorder
	if opts.record {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o750); err != nil {
			return fmt.Errorf("creating data directory: %w", err)
		}
		db, err := store.NewDB(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("initializing database: %w", err)
		}
		defer func() { _ = db.Close() }()
		if err := store.Migrate(db); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		recorder = store.New(db)
	}

	job := scheduler.NewReportJob(api, recorder, cfg.ExportDir, logger)
	rec, err := job.Export(ctx, scheduler.ExportRequest{
		Filter: filter,
		Path:   opts.out,
		Source: store.ExportSourceCLI,
	})
	if err != nil {
		return err
	}

	cmd.Printf("wrote %s (%d pages, %d bytes)\n", rec.Filename, rec.Pages, rec.SizeBytes)
	return nil
}
