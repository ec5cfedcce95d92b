// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package reports

import (
	"log/slog"
	"sync"
	"time"
)

// DefaultRegistrySize bounds the number of dashboards kept in memory.
const DefaultRegistrySize = 256

// Registry keeps one Aggregator per signed-in user. When full, the least
// recently used dashboard is dropped.
type Registry struct {
	fetcher Fetcher
	logger  *slog.Logger
	max     int

	mu      sync.Mutex
	entries map[string]*registryEntry
}

type registryEntry struct {
	agg      *Aggregator
	lastUsed time.Time
}

// NewRegistry creates a Registry. max <= 0 uses DefaultRegistrySize.
func NewRegistry(f Fetcher, logger *slog.Logger, max int) *Registry {
	if max <= 0 {
		max = DefaultRegistrySize
	}
	return &Registry{
		fetcher: f,
		logger:  logger,
		max:     max,
		entries: make(map[string]*registryEntry),
	}
}

// For returns the Aggregator for key, creating it on first use.
func (r *Registry) For(key string) *Aggregator {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if e, ok := r.entries[key]; ok {
		e.lastUsed = now
		return e.agg
	}

	if len(r.entries) >= r.max {
		r.evictOldest()
	}
	e := &registryEntry{agg: NewAggregator(r.fetcher, r.logger), lastUsed: now}
	r.entries[key] = e
	return e.agg
}

// Drop forgets the dashboard for key.
func (r *Registry) Drop(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, key)
}

// Len returns the number of dashboards held.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *Registry) evictOldest() {
	var (
		oldestKey string
		oldest    time.Time
		found     bool
	)
	for k, e := range r.entries {
		if !found || e.lastUsed.Before(oldest) {
			oldestKey, oldest, found = k, e.lastUsed, true
		}
	}
	if found {
		delete(r.entries, oldestKey)
	}
}
