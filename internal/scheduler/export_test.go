// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/taskdesk/internal/reports"
	"github.com/olegiv/taskdesk/internal/store"
	"github.com/olegiv/taskdesk/internal/testutil"
)

type fixtureFetcher struct {
	mu      sync.Mutex
	bodies  map[string]string
	err     error
	queries []url.Values
}

func (f *fixtureFetcher) GetJSON(_ context.Context, path string, query url.Values, out any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	if f.err != nil {
		return f.err
	}
	return json.Unmarshal([]byte(f.bodies[path]), out)
}

func newFixtureFetcher() *fixtureFetcher {
	return &fixtureFetcher{bodies: map[string]string{
		reports.PathProjectOverview: `[{"project_name":"Harbor Bridge","status":"in_progress","start_date":"2026-01-05","end_date":"2026-09-30","assigned_user":"alice","task_completion_rate":40}]`,
		reports.PathUserPerformance: `[{"username":"alice","total_tasks":5,"completed_tasks":2,"delayed_tasks":1,"completion_rate":"40.00"}]`,
		reports.PathProjectStatus:   `[{"project_id":1,"project_name":"Harbor Bridge","completion_percentage":40,"days_remaining":-3,"project_status":"Overdue","completed_tasks":2,"total_tasks":5}]`,
		reports.PathRecentUpdates:   `[{"month":"2026-02","projects_updated":4}]`,
	}}
}

func newTestJob(t *testing.T, f reports.Fetcher, rec Recorder) (*ReportJob, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "exports")
	j := NewReportJob(f, rec, dir, testutil.TestLoggerSilent())
	j.now = func() time.Time { return time.Date(2026, 3, 2, 6, 0, 0, 0, time.UTC) }
	j.newID = func() string { return "0f8e2c4a-1b2c-4d5e-8f90-123456789abc" }
	return j, dir
}

func TestScheduledFilename(t *testing.T) {
	now := time.Date(2026, 3, 2, 6, 0, 5, 0, time.UTC)
	got := ScheduledFilename(now, "0f8e2c4a-1b2c-4d5e-8f90-123456789abc")
	assert.Equal(t, "reports-dashboard-20260302-060005-0f8e2c4a.pdf", got)

	assert.Equal(t, "reports-dashboard-20260302-060005-ab.pdf", ScheduledFilename(now, "ab"))
}

func TestReportJob_ScheduledExport(t *testing.T) {
	q := testutil.TestQueries(t)
	j, dir := newTestJob(t, newFixtureFetcher(), q)
	ctx := context.Background()

	rec, err := j.Export(ctx, ExportRequest{Source: store.ExportSourceSchedule})
	require.NoError(t, err)

	assert.Equal(t, "reports-dashboard-20260302-060000-0f8e2c4a.pdf", rec.Filename)
	assert.Equal(t, store.ExportSourceSchedule, rec.Source)
	assert.Equal(t, "", rec.StartDate)
	assert.Equal(t, int64(1), rec.Pages)
	assert.NotZero(t, rec.ID)

	data, err := os.ReadFile(filepath.Join(dir, rec.Filename))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
	assert.Equal(t, int64(len(data)), rec.SizeBytes)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")

	listed, err := q.ListReportExports(ctx, 10)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, rec.Filename, listed[0].Filename)
}

func TestReportJob_FilteredExportToPath(t *testing.T) {
	f := newFixtureFetcher()
	j, _ := newTestJob(t, f, nil)

	out := filepath.Join(t.TempDir(), "nested", "q1.pdf")
	filter := reports.Filter{
		Start: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
	}

	rec, err := j.Export(context.Background(), ExportRequest{Filter: filter, Path: out, Source: store.ExportSourceCLI})
	require.NoError(t, err)

	assert.Equal(t, "q1.pdf", rec.Filename)
	assert.Equal(t, "2026-01-01", rec.StartDate)
	assert.Equal(t, "2026-03-31", rec.EndDate)
	assert.FileExists(t, out)

	require.Len(t, f.queries, 4)
	for _, q := range f.queries {
		assert.Equal(t, "2026-01-01", q.Get(reports.ParamStartDate))
		assert.Equal(t, "2026-03-31", q.Get(reports.ParamEndDate))
	}
}

func TestReportJob_FetchFailureWritesNothing(t *testing.T) {
	f := newFixtureFetcher()
	f.err = errors.New("connection refused")
	q := testutil.TestQueries(t)
	j, dir := newTestJob(t, f, q)

	_, err := j.Export(context.Background(), ExportRequest{Source: store.ExportSourceSchedule})
	require.Error(t, err)

	_, statErr := os.Stat(dir)
	assert.True(t, os.IsNotExist(statErr), "no export directory should be created on failure")

	listed, err := q.ListReportExports(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, listed)
}

type failingRecorder struct{ err error }

func (r failingRecorder) CreateReportExport(context.Context, store.CreateReportExportParams) (store.ReportExport, error) {
	return store.ReportExport{}, r.err
}

func TestReportJob_RecordFailureRemovesFile(t *testing.T) {
	j, dir := newTestJob(t, newFixtureFetcher(), failingRecorder{err: errors.New("database is locked")})

	_, err := j.Export(context.Background(), ExportRequest{Source: store.ExportSourceSchedule})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "recording export")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "an unrecorded export must not stay in the export directory")
}

func TestReportJob_RunAndRegister(t *testing.T) {
	q := testutil.TestQueries(t)
	j, dir := newTestJob(t, newFixtureFetcher(), q)

	j.Run()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	s := New(nil)
	require.NoError(t, j.Register(s, "0 6 * * 1"))
	jobs := s.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, ExportJobName, jobs[0].Name)
}
