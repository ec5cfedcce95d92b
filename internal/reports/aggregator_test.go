// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package reports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/taskdesk/internal/apiclient"
)

// fetcherFunc adapts a function to Fetcher.
type fetcherFunc func(ctx context.Context, path string, query url.Values, out any) error

func (f fetcherFunc) GetJSON(ctx context.Context, path string, query url.Values, out any) error {
	return f(ctx, path, query, out)
}

// staticFetcher serves fixed JSON bodies per path and records queries.
type staticFetcher struct {
	mu      sync.Mutex
	bodies  map[string]string
	errs    map[string]error
	queries map[string]url.Values
}

func newStaticFetcher(bodies map[string]string) *staticFetcher {
	return &staticFetcher{bodies: bodies, errs: map[string]error{}, queries: map[string]url.Values{}}
}

func (s *staticFetcher) GetJSON(_ context.Context, path string, query url.Values, out any) error {
	s.mu.Lock()
	s.queries[path] = query
	err := s.errs[path]
	body, ok := s.bodies[path]
	s.mu.Unlock()

	if err != nil {
		return err
	}
	if !ok {
		body = "[]"
	}
	return json.Unmarshal([]byte(body), out)
}

func (s *staticFetcher) fail(path string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs[path] = err
}

func (s *staticFetcher) set(path, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bodies[path] = body
}

func fixtureBodies() map[string]string {
	return map[string]string{
		PathProjectOverview: `[{"project_name":"Apollo","status":"in_progress","start_date":"2024-01-01","end_date":"2024-06-30","assigned_user":"alice","task_completion_rate":50}]`,
		PathUserPerformance: `[{"username":"alice","total_tasks":4,"completed_tasks":2,"delayed_tasks":1,"completion_rate":"50.00"}]`,
		PathProjectStatus:   `[{"project_id":1,"project_name":"Apollo","completion_percentage":50,"days_remaining":12,"project_status":"On Track","completed_tasks":2,"total_tasks":4}]`,
		PathRecentUpdates:   `[{"month":"2024-03","projects_updated":3}]`,
	}
}

func TestLoadPopulatesAllDatasets(t *testing.T) {
	f := newStaticFetcher(fixtureBodies())
	agg := NewAggregator(f, nil)

	snap, err := agg.Load(context.Background(), Filter{})
	require.NoError(t, err)

	assert.True(t, snap.Loaded)
	assert.Empty(t, snap.Err)
	assert.Len(t, snap.ProjectOverview, 1)
	assert.Len(t, snap.UserPerformance, 1)
	assert.Len(t, snap.ProjectStatus, 1)
	assert.Len(t, snap.RecentUpdates, 1)
	assert.Equal(t, "Apollo", snap.ProjectStatus[0].ProjectName.String())
	assert.False(t, agg.Loading())
	assert.Equal(t, uint64(1), snap.Generation)
}

func TestLoadSendsSameFilterToEveryEndpoint(t *testing.T) {
	f := newStaticFetcher(fixtureBodies())
	agg := NewAggregator(f, nil)

	filter := Filter{Start: date(2024, 1, 1)}
	_, err := agg.Load(context.Background(), filter)
	require.NoError(t, err)

	for _, path := range []string{PathProjectOverview, PathUserPerformance, PathProjectStatus, PathRecentUpdates} {
		assert.Equal(t, url.Values{"start_date": {"2024-01-01"}}, f.queries[path], path)
	}
	assert.Equal(t, filter, agg.Snapshot().Filter)
}

func TestLoadNullBodiesBecomeEmpty(t *testing.T) {
	f := newStaticFetcher(map[string]string{
		PathProjectOverview: `null`,
		PathUserPerformance: `null`,
		PathProjectStatus:   `null`,
		PathRecentUpdates:   `null`,
	})
	agg := NewAggregator(f, nil)

	snap, err := agg.Load(context.Background(), Filter{})
	require.NoError(t, err)
	assert.NotNil(t, snap.ProjectOverview)
	assert.NotNil(t, snap.RecentUpdates)
	assert.True(t, snap.Empty())
}

func TestLoadFailureKeepsPreviousDatasets(t *testing.T) {
	f := newStaticFetcher(fixtureBodies())
	agg := NewAggregator(f, nil)

	before, err := agg.Load(context.Background(), Filter{})
	require.NoError(t, err)

	// The other three endpoints now return different data; none of it may
	// become visible when the fourth fails.
	f.set(PathProjectOverview, `[]`)
	f.set(PathUserPerformance, `[]`)
	f.set(PathRecentUpdates, `[]`)
	f.fail(PathProjectStatus, &apiclient.APIError{Status: 500, Message: "report backend down"})

	after, err := agg.Load(context.Background(), Filter{Start: date(2024, 1, 1)})
	require.Error(t, err)

	assert.Equal(t, "report backend down", after.Err)
	assert.Equal(t, before.Datasets, after.Datasets)
	assert.Equal(t, before.LoadedAt, after.LoadedAt)
	assert.False(t, after.Filter.Active(), "the filter belongs to the kept datasets")
	assert.Equal(t, after, agg.Snapshot())
}

func TestLoadFailureFallbackMessage(t *testing.T) {
	f := newStaticFetcher(fixtureBodies())
	f.fail(PathRecentUpdates, errors.New("dial tcp: connection refused"))
	agg := NewAggregator(f, nil)

	snap, err := agg.Load(context.Background(), Filter{})
	require.Error(t, err)
	assert.Equal(t, FetchErrorMessage, snap.Err)
	assert.False(t, snap.Loaded)
	assert.True(t, snap.Empty())
}

func TestLoadSuccessClearsError(t *testing.T) {
	f := newStaticFetcher(fixtureBodies())
	f.fail(PathRecentUpdates, errors.New("boom"))
	agg := NewAggregator(f, nil)

	_, err := agg.Load(context.Background(), Filter{})
	require.Error(t, err)

	f.fail(PathRecentUpdates, nil)
	snap, err := agg.Load(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Empty(t, snap.Err)
	assert.True(t, snap.Loaded)
}

func TestClearFilterEqualsUnfilteredLoad(t *testing.T) {
	bodies := fixtureBodies()

	cleared := NewAggregator(newStaticFetcher(bodies), nil)
	_, err := cleared.Load(context.Background(), Filter{Start: date(2024, 1, 1), End: date(2024, 3, 1)})
	require.NoError(t, err)
	afterClear, err := cleared.ClearFilter(context.Background())
	require.NoError(t, err)

	fresh := NewAggregator(newStaticFetcher(bodies), nil)
	neverSet, err := fresh.Load(context.Background(), Filter{})
	require.NoError(t, err)

	assert.Equal(t, neverSet.Datasets, afterClear.Datasets)
	assert.Equal(t, neverSet.Filter, afterClear.Filter)
	assert.False(t, afterClear.Filter.Active())
}

func TestSnapshotIsACopy(t *testing.T) {
	agg := NewAggregator(newStaticFetcher(fixtureBodies()), nil)
	snap, err := agg.Load(context.Background(), Filter{})
	require.NoError(t, err)

	snap.ProjectStatus[0].ProjectName = Text("mutated")
	assert.Equal(t, "Apollo", agg.Snapshot().ProjectStatus[0].ProjectName.String())
}

// A load that resolves after a newer load has committed must be discarded,
// even when its fetcher ignores cancellation.
func TestStaleLoadIsDiscarded(t *testing.T) {
	bodies := fixtureBodies()
	stale := `[{"project_name":"stale"}]`

	release := make(chan struct{})
	started := make(chan struct{}, 4)
	f := fetcherFunc(func(_ context.Context, path string, q url.Values, out any) error {
		if q.Get(ParamStartDate) != "" {
			started <- struct{}{}
			<-release
			return json.Unmarshal([]byte(stale), out)
		}
		return json.Unmarshal([]byte(bodies[path]), out)
	})
	agg := NewAggregator(f, nil)

	type result struct {
		snap Snapshot
		err  error
	}
	first := make(chan result, 1)
	go func() {
		s, err := agg.Load(context.Background(), Filter{Start: date(2023, 1, 1)})
		first <- result{s, err}
	}()
	<-started
	assert.True(t, agg.Loading())

	second, err := agg.Load(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), second.Generation)

	close(release)
	r := <-first
	require.ErrorIs(t, r.err, ErrSuperseded)

	snap := agg.Snapshot()
	assert.Equal(t, second.Datasets, snap.Datasets)
	assert.Equal(t, "Apollo", snap.ProjectOverview[0].ProjectName.String())
	assert.False(t, snap.Filter.Active())
	assert.False(t, agg.Loading())
}

func TestNewLoadCancelsInFlightLoad(t *testing.T) {
	bodies := fixtureBodies()
	started := make(chan struct{}, 4)
	f := fetcherFunc(func(ctx context.Context, path string, q url.Values, out any) error {
		if q.Get(ParamEndDate) != "" {
			started <- struct{}{}
			<-ctx.Done()
			return ctx.Err()
		}
		return json.Unmarshal([]byte(bodies[path]), out)
	})
	agg := NewAggregator(f, nil)

	first := make(chan error, 1)
	go func() {
		_, err := agg.Load(context.Background(), Filter{End: date(2024, 1, 1)})
		first <- err
	}()
	<-started

	_, err := agg.Load(context.Background(), Filter{})
	require.NoError(t, err)

	select {
	case err := <-first:
		assert.ErrorIs(t, err, ErrSuperseded)
	case <-time.After(5 * time.Second):
		t.Fatal("in-flight load was not cancelled")
	}
	assert.Empty(t, agg.Snapshot().Err)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(newStaticFetcher(fixtureBodies()), nil, 2)

	a := r.For("1")
	assert.Same(t, a, r.For("1"))

	r.For("2")
	time.Sleep(time.Millisecond)
	r.For("1")
	r.For("3")

	assert.Equal(t, 2, r.Len())
	assert.Same(t, a, r.For("1"), "recently used dashboard must survive eviction")

	r.Drop("1")
	assert.NotSame(t, a, r.For("1"))
}

func ExampleFilter_RangeLabel() {
	fmt.Println(Filter{Start: date(2024, 1, 5)}.RangeLabel())
	// Output: Date Range: 1/5/2024 to End
}
