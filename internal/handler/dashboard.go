// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/taskdesk/internal/render"
	"github.com/olegiv/taskdesk/internal/reports"
	"github.com/olegiv/taskdesk/internal/scheduler"
	"github.com/olegiv/taskdesk/internal/store"
	"github.com/olegiv/taskdesk/internal/uikit"
	"github.com/olegiv/taskdesk/internal/util"
)

// ExportsPerPage is the number of recorded exports listed.
const ExportsPerPage = 50

// ExportLister reads the export log. *store.Queries satisfies it.
type ExportLister interface {
	ListReportExports(ctx context.Context, limit int64) ([]store.ReportExport, error)
}

// DashboardHandler serves the reports dashboard and its PDF export.
type DashboardHandler struct {
	renderer   *render.Renderer
	dashboards *reports.Registry
	exports    ExportLister
	exportDir  string
	scheduler  *scheduler.Scheduler
	now        func() time.Time
}

// NewDashboardHandler creates a new DashboardHandler. exports may be nil.
func NewDashboardHandler(renderer *render.Renderer, dashboards *reports.Registry, exports ExportLister, exportDir string) *DashboardHandler {
	return &DashboardHandler{
		renderer:   renderer,
		dashboards: dashboards,
		exports:    exports,
		exportDir:  exportDir,
		now:        time.Now,
	}
}

// SetScheduler makes scheduled jobs visible on the exports page.
func (h *DashboardHandler) SetScheduler(s *scheduler.Scheduler) {
	h.scheduler = s
}

// DashboardData holds data for the dashboard template.
type DashboardData struct {
	reports.Snapshot
	StartValue  string
	EndValue    string
	FilterError string
	Loading     bool
}

// Dashboard handles GET /dashboard.
//
// Submitting the filter form (start_date or end_date present) loads under
// that filter and refresh=1 reloads under the current one. Otherwise the
// committed snapshot is shown, loading it unfiltered on the first visit.
func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	agg := h.dashboards.For(dashboardKey(currentSession(r)))
	q := r.URL.Query()
	data := DashboardData{}

	snap := agg.Snapshot()
	// The form echoes the requested range even when its load failed.
	form := snap.Filter
	_, hasStart := q[reports.ParamStartDate]
	_, hasEnd := q[reports.ParamEndDate]

	switch {
	case hasStart || hasEnd:
		filter, err := reports.ParseFilter(q)
		if err != nil {
			data.FilterError = "Dates must be in YYYY-MM-DD format"
			if errors.Is(err, reports.ErrInvertedRange) {
				data.FilterError = "End date must be on or after the start date"
			}
			data.StartValue = q.Get(reports.ParamStartDate)
			data.EndValue = q.Get(reports.ParamEndDate)
			break
		}
		snap = h.load(r.Context(), agg, filter)
		form = filter
	case q.Get("refresh") != "":
		snap = h.load(r.Context(), agg, snap.Filter)
		form = snap.Filter
	case !snap.Loaded:
		snap = h.load(r.Context(), agg, reports.Filter{})
		form = snap.Filter
	}

	data.Snapshot = snap
	data.Loading = agg.Loading()
	if data.FilterError == "" {
		data.StartValue = form.StartValue()
		data.EndValue = form.EndValue()
	}

	renderPage(w, r, h.renderer, tmplDashboard, render.PageData{
		Title:       "Reports Dashboard",
		Breadcrumbs: uikit.Crumbs("Dashboard", RouteDashboard),
		Data:        data,
	})
}

// load runs a Load and returns the snapshot to show. A superseded load shows
// whatever is committed now.
func (h *DashboardHandler) load(ctx context.Context, agg *reports.Aggregator, filter reports.Filter) reports.Snapshot {
	snap, err := agg.Load(ctx, filter)
	if errors.Is(err, reports.ErrSuperseded) {
		return agg.Snapshot()
	}
	return snap
}

// ClearFilter handles POST /dashboard/clear.
func (h *DashboardHandler) ClearFilter(w http.ResponseWriter, r *http.Request) {
	agg := h.dashboards.For(dashboardKey(currentSession(r)))
	if _, err := agg.ClearFilter(r.Context()); err != nil && !errors.Is(err, reports.ErrSuperseded) {
		slog.Warn("clearing report filter failed", "error", err)
	}
	http.Redirect(w, r, RouteDashboard, http.StatusSeeOther)
}

// Export handles GET /dashboard/export by rendering the datasets the user is
// viewing. Nothing is fetched unless the dashboard was never loaded.
func (h *DashboardHandler) Export(w http.ResponseWriter, r *http.Request) {
	agg := h.dashboards.For(dashboardKey(currentSession(r)))

	snap := agg.Snapshot()
	if !snap.Loaded {
		snap = h.load(r.Context(), agg, reports.Filter{})
		if !snap.Loaded {
			// A superseded first load leaves no message of its own.
			msg := snap.Err
			if msg == "" {
				msg = reports.FetchErrorMessage
			}
			flashError(w, r, h.renderer, RouteDashboard, msg)
			return
		}
	}

	var buf bytes.Buffer
	layout, err := reports.Export(&buf, snap.Datasets, snap.Filter, h.now())
	if err != nil {
		logAndInternalError(w, "failed to render report export", "error", err)
		return
	}

	slog.Info("report downloaded",
		"user_id", currentSession(r).UserID,
		"pages", layout.Pages,
		"filtered", snap.Filter.Active(),
	)

	w.Header().Set(HeaderContentType, "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", reports.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = buf.WriteTo(w)
}

// ExportsData holds data for the exports template.
type ExportsData struct {
	Exports []store.ReportExport
	Jobs    []scheduler.JobInfo
	Error   string
}

// Exports handles GET /dashboard/exports, the log of generated documents.
func (h *DashboardHandler) Exports(w http.ResponseWriter, r *http.Request) {
	data := ExportsData{}
	if h.scheduler != nil {
		data.Jobs = h.scheduler.Jobs()
	}
	if h.exports != nil {
		list, err := h.exports.ListReportExports(r.Context(), ExportsPerPage)
		if err != nil {
			slog.Error("failed to list report exports", "error", err)
			data.Error = "Error fetching exports"
		}
		data.Exports = list
	}

	renderPage(w, r, h.renderer, tmplExports, render.PageData{
		Title:       "Report Exports",
		Breadcrumbs: uikit.Crumbs("Dashboard", RouteDashboard, "Exports", RouteDashboardExports),
		Data:        data,
	})
}

// DownloadExport handles GET /dashboard/exports/{name}. Only PDF files
// directly inside the export directory are served.
func (h *DashboardHandler) DownloadExport(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	safe, err := util.SanitizeFilename(name)
	if err != nil || safe != name || !strings.HasSuffix(safe, ".pdf") {
		http.NotFound(w, r)
		return
	}

	path, err := util.SafeJoinPath(h.exportDir, safe)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if info, err := os.Stat(path); err != nil || !info.Mode().IsRegular() {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", safe))
	http.ServeFile(w, r, path)
}
