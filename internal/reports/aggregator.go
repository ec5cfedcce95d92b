// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package reports loads the four report datasets and renders them as a
// dashboard snapshot or a paginated PDF.
package reports

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/olegiv/taskdesk/internal/apiclient"
)

// Report endpoints, relative to the API base URL.
const (
	PathProjectOverview = "/reports/project-overview"
	PathUserPerformance = "/reports/user-performance"
	PathProjectStatus   = "/reports/project-status"
	PathRecentUpdates   = "/reports/recent-updates"
)

// FetchErrorMessage is shown when a failed load carries no API message.
const FetchErrorMessage = "Failed to fetch reports"

// ErrSuperseded is returned by Load when a newer Load started before this one
// finished. Its results were discarded.
var ErrSuperseded = errors.New("reports: load superseded by a newer request")

// Fetcher performs one GET against the API. *apiclient.Client satisfies it.
type Fetcher interface {
	GetJSON(ctx context.Context, path string, query url.Values, out any) error
}

// Datasets are the four report collections. They are always replaced together.
type Datasets struct {
	ProjectOverview []ProjectOverview
	UserPerformance []UserPerformance
	ProjectStatus   []ProjectStatus
	RecentUpdates   []RecentUpdate
}

// Empty reports whether all four datasets have no rows.
func (d Datasets) Empty() bool {
	return len(d.ProjectOverview) == 0 && len(d.UserPerformance) == 0 &&
		len(d.ProjectStatus) == 0 && len(d.RecentUpdates) == 0
}

func (d Datasets) clone() Datasets {
	return Datasets{
		ProjectOverview: slices.Clone(d.ProjectOverview),
		UserPerformance: slices.Clone(d.UserPerformance),
		ProjectStatus:   slices.Clone(d.ProjectStatus),
		RecentUpdates:   slices.Clone(d.RecentUpdates),
	}
}

// Snapshot is what a consumer observes: the last committed datasets, the filter
// of the last finished load and its error message, if any.
type Snapshot struct {
	Datasets
	Filter     Filter
	Err        string
	Loaded     bool
	LoadedAt   time.Time
	Generation uint64
}

func (s Snapshot) clone() Snapshot {
	s.Datasets = s.Datasets.clone()
	return s
}

// Aggregator owns the datasets and filter of one dashboard.
type Aggregator struct {
	fetcher Fetcher
	logger  *slog.Logger
	now     func() time.Time

	mu      sync.Mutex
	gen     uint64
	cancel  context.CancelFunc
	loading bool
	snap    Snapshot
}

// NewAggregator creates an Aggregator reading through f.
func NewAggregator(f Fetcher, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{fetcher: f, logger: logger, now: time.Now}
}

// Load fetches all four datasets under filter and commits them together.
//
// Starting a Load cancels any Load still in flight. A Load that finishes after
// a newer one started returns ErrSuperseded and leaves the state untouched.
// On failure the previous datasets and their filter are kept and
// Snapshot().Err is set.
func (a *Aggregator) Load(ctx context.Context, filter Filter) (Snapshot, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.mu.Lock()
	a.gen++
	gen := a.gen
	if a.cancel != nil {
		a.cancel()
	}
	a.cancel = cancel
	a.loading = true
	a.mu.Unlock()

	loadID := uuid.NewString()
	start := time.Now()
	ds, err := fetchAll(ctx, a.fetcher, filter)

	a.mu.Lock()
	defer a.mu.Unlock()

	if gen != a.gen {
		a.logger.Debug("report load superseded", "load_id", loadID, "generation", gen, "current", a.gen)
		return a.snap.clone(), ErrSuperseded
	}
	a.cancel = nil
	a.loading = false

	if err != nil {
		a.snap.Err = apiclient.Message(err, FetchErrorMessage)
		a.snap.Generation = gen
		a.logger.Error("failed to fetch reports", "load_id", loadID, "error", err)
		return a.snap.clone(), err
	}

	a.snap = Snapshot{
		Datasets:   ds,
		Filter:     filter,
		Loaded:     true,
		LoadedAt:   a.now(),
		Generation: gen,
	}
	a.logger.Debug("reports loaded",
		"load_id", loadID,
		"generation", gen,
		"filtered", filter.Active(),
		"duration", time.Since(start),
	)
	return a.snap.clone(), nil
}

// ClearFilter resets the filter and reloads unfiltered datasets.
func (a *Aggregator) ClearFilter(ctx context.Context) (Snapshot, error) {
	return a.Load(ctx, Filter{})
}

// Snapshot returns a copy of the committed state.
func (a *Aggregator) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snap.clone()
}

// Loading reports whether a Load is in flight.
func (a *Aggregator) Loading() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loading
}

// fetchAll runs the four fetches concurrently and fails as a unit. Each
// goroutine writes its own field of ds.
func fetchAll(ctx context.Context, f Fetcher, filter Filter) (Datasets, error) {
	var ds Datasets
	params := filter.Params()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return f.GetJSON(gctx, PathProjectOverview, params, &ds.ProjectOverview) })
	g.Go(func() error { return f.GetJSON(gctx, PathUserPerformance, params, &ds.UserPerformance) })
	g.Go(func() error { return f.GetJSON(gctx, PathProjectStatus, params, &ds.ProjectStatus) })
	g.Go(func() error { return f.GetJSON(gctx, PathRecentUpdates, params, &ds.RecentUpdates) })
	if err := g.Wait(); err != nil {
		return Datasets{}, err
	}

	if ds.ProjectOverview == nil {
		ds.ProjectOverview = []ProjectOverview{}
	}
	if ds.UserPerformance == nil {
		ds.UserPerformance = []UserPerformance{}
	}
	if ds.ProjectStatus == nil {
		ds.ProjectStatus = []ProjectStatus{}
	}
	if ds.RecentUpdates == nil {
		ds.RecentUpdates = []RecentUpdate{}
	}
	return ds, nil
}
