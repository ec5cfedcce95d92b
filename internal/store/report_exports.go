// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

// Export sources.
const (
	ExportSourceSchedule = "schedule"
	ExportSourceCLI      = "cli"
)

// ReportExport is one generated report document.
type ReportExport struct {
	ID        int64     `json:"id"`
	Filename  string    `json:"filename"`
	Source    string    `json:"source"`
	StartDate string    `json:"start_date"`
	EndDate   string    `json:"end_date"`
	Pages     int64     `json:"pages"`
	SizeBytes int64     `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}

const createReportExport = `-- name: CreateReportExport :one
INSERT INTO report_exports (filename, source, start_date, end_date, pages, size_bytes, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING id, filename, source, start_date, end_date, pages, size_bytes, created_at
`

// CreateReportExportParams holds the columns of a new export row.
type CreateReportExportParams struct {
	Filename  string
	Source    string
	StartDate string
	EndDate   string
	Pages     int64
	SizeBytes int64
	CreatedAt time.Time
}

// CreateReportExport records a generated export.
func (q *Queries) CreateReportExport(ctx context.Context, arg CreateReportExportParams) (ReportExport, error) {
	row := q.db.QueryRowContext(ctx, createReportExport,
		arg.Filename,
		arg.Source,
		arg.StartDate,
		arg.EndDate,
		arg.Pages,
		arg.SizeBytes,
		arg.CreatedAt,
	)
	var i ReportExport
	err := row.Scan(
		&i.ID,
		&i.Filename,
		&i.Source,
		&i.StartDate,
		&i.EndDate,
		&i.Pages,
		&i.SizeBytes,
		&i.CreatedAt,
	)
	return i, err
}

const listReportExports = `-- name: ListReportExports :many
SELECT id, filename, source, start_date, end_date, pages, size_bytes, created_at
FROM report_exports
ORDER BY created_at DESC, id DESC
LIMIT ?
`

// ListReportExports returns the most recent exports first.
func (q *Queries) ListReportExports(ctx context.Context, limit int64) ([]ReportExport, error) {
	rows, err := q.db.QueryContext(ctx, listReportExports, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []ReportExport
	for rows.Next() {
		var i ReportExport
		if err := rows.Scan(
			&i.ID,
			&i.Filename,
			&i.Source,
			&i.StartDate,
			&i.EndDate,
			&i.Pages,
			&i.SizeBytes,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
