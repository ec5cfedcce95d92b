// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/taskdesk/internal/reports"
	"github.com/olegiv/taskdesk/internal/store"
	"github.com/olegiv/taskdesk/internal/util"
)

// ExportJobName is the name the scheduled export is registered under.
const ExportJobName = "report-export"

// exportTimeout bounds one scheduled run, fetch and render included.
const exportTimeout = 2 * time.Minute

// Recorder persists export runs.
type Recorder interface {
	CreateReportExport(ctx context.Context, arg store.CreateReportExportParams) (store.ReportExport, error)
}

// ReportJob loads the report datasets on its own aggregator and writes them
// as a PDF document.
type ReportJob struct {
	agg      *reports.Aggregator
	recorder Recorder
	dir      string
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string
}

// NewReportJob creates an export job writing into dir. recorder may be nil.
func NewReportJob(f reports.Fetcher, recorder Recorder, dir string, logger *slog.Logger) *ReportJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportJob{
		agg:      reports.NewAggregator(f, logger),
		recorder: recorder,
		dir:      dir,
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// ExportRequest describes one export.
type ExportRequest struct {
	Filter reports.Filter
	Path   string // empty: a generated name inside the job's directory
	Source string
}

// ScheduledFilename builds the name of a scheduled export document.
func ScheduledFilename(now time.Time, id string) string {
	stem := strings.TrimSuffix(reports.Filename, filepath.Ext(reports.Filename))
	short := strings.ReplaceAll(id, "-", "")
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("%s-%s-%s.pdf", stem, now.UTC().Format("20060102-150405"), short)
}

// Export loads the datasets under req.Filter, renders them to a file and
// records the run. A failed run leaves no file behind.
func (j *ReportJob) Export(ctx context.Context, req ExportRequest) (store.ReportExport, error) {
	snap, err := j.agg.Load(ctx, req.Filter)
	if err != nil {
		return store.ReportExport{}, fmt.Errorf("loading reports: %w", err)
	}

	now := j.now()
	path := req.Path
	if path == "" {
		path, err = util.ExportPath(j.dir, ScheduledFilename(now, j.newID()))
		if err != nil {
			return store.ReportExport{}, err
		}
	} else if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return store.ReportExport{}, fmt.Errorf("creating output directory: %w", err)
	}

	layout, size, err := writeReport(path, snap, now)
	if err != nil {
		return store.ReportExport{}, err
	}

	rec := store.ReportExport{
		Filename:  filepath.Base(path),
		Source:    req.Source,
		StartDate: snap.Filter.StartValue(),
		EndDate:   snap.Filter.EndValue(),
		Pages:     int64(layout.Pages),
		SizeBytes: size,
		CreatedAt: now,
	}
	if j.recorder != nil {
		rec, err = j.recorder.CreateReportExport(ctx, store.CreateReportExportParams{
			Filename:  rec.Filename,
			Source:    rec.Source,
			StartDate: rec.StartDate,
			EndDate:   rec.EndDate,
			Pages:     rec.Pages,
			SizeBytes: rec.SizeBytes,
			CreatedAt: rec.CreatedAt,
		})
		if err != nil {
			if rmErr := os.Remove(path); rmErr != nil {
				j.logger.Warn("failed to remove unrecorded export", "file", path, "error", rmErr)
			}
			return store.ReportExport{}, fmt.Errorf("recording export: %w", err)
		}
	}

	j.logger.Info("report exported",
		"file", path,
		"source", req.Source,
		"pages", layout.Pages,
		"size_bytes", size,
	)
	return rec, nil
}

// writeReport renders into a temporary file next to path and renames it into
// place once complete.
func writeReport(path string, snap reports.Snapshot, now time.Time) (reports.Layout, int64, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".export-*.pdf")
	if err != nil {
		return reports.Layout{}, 0, fmt.Errorf("creating export file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	layout, err := reports.Export(tmp, snap.Datasets, snap.Filter, now)
	if err != nil {
		_ = tmp.Close()
		return reports.Layout{}, 0, fmt.Errorf("rendering export: %w", err)
	}

	info, err := tmp.Stat()
	if err != nil {
		_ = tmp.Close()
		return reports.Layout{}, 0, fmt.Errorf("reading export size: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return reports.Layout{}, 0, fmt.Errorf("closing export file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return reports.Layout{}, 0, fmt.Errorf("moving export into place: %w", err)
	}
	return layout, info.Size(), nil
}

// Run is the cron entry point: an unfiltered export into the job directory.
func (j *ReportJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
	defer cancel()

	if _, err := j.Export(ctx, ExportRequest{Source: store.ExportSourceSchedule}); err != nil {
		j.logger.Error("scheduled report export failed", "error", err)
	}
}

// Register adds the job to s under spec.
func (j *ReportJob) Register(s *Scheduler, spec string) error {
	return s.Add(ExportJobName, spec, j.Run)
}
