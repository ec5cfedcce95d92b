// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs periodic background jobs, currently the scheduled
// report export.
package scheduler

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler wraps a cron instance with named jobs. Overlapping runs of the same
// job are skipped and panics are recovered.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger

	mu   sync.Mutex
	jobs map[string]registeredJob
}

type registeredJob struct {
	schedule string
	entryID  cron.EntryID
}

// JobInfo is the public view of a registered job.
type JobInfo struct {
	Name     string
	Schedule string
	NextRun  time.Time
	LastRun  time.Time
}

// New creates a scheduler. Jobs run in the local time zone.
func New(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	cl := cronLogger{logger: logger}
	return &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(cl),
			cron.SkipIfStillRunning(cl),
		)),
		logger: logger,
		jobs:   make(map[string]registeredJob),
	}
}

// ValidateSchedule reports whether spec is a standard five-field cron
// expression or a descriptor such as "@daily".
func ValidateSchedule(spec string) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return nil
}

// Add registers fn under name. Names are unique.
func (s *Scheduler) Add(name, spec string, fn func()) error {
	if err := ValidateSchedule(spec); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.jobs[name]; dup {
		return fmt.Errorf("job %q already registered", name)
	}

	id, err := s.cron.AddFunc(spec, fn)
	if err != nil {
		return fmt.Errorf("adding job %q: %w", name, err)
	}
	s.jobs[name] = registeredJob{schedule: spec, entryID: id}
	return nil
}

// Start begins running jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// Jobs lists registered jobs sorted by name.
func (s *Scheduler) Jobs() []JobInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]JobInfo, 0, len(s.jobs))
	for name, j := range s.jobs {
		e := s.cron.Entry(j.entryID)
		out = append(out, JobInfo{
			Name:     name,
			Schedule: j.schedule,
			NextRun:  e.Next,
			LastRun:  e.Prev,
		})
	}
	sort.Slice(out, func(i, k int) bool { return out[i].Name < out[k].Name })
	return out
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append([]any{"error", err}, keysAndValues...)...)
}
