// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package cache holds short-lived copies of remote lookup lists (assignable
// users, project pickers) behind a byte-oriented store that is either
// in-process memory or a shared Redis instance.
package cache

import (
	"context"
	"time"
)

// Cacher is a thread-safe byte store with per-entry expiry.
type Cacher interface {
	// Get returns ErrCacheMiss when the key is absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key. A zero ttl means the store default.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	Delete(ctx context.Context, key string) error

	// DeleteByPrefix removes every key starting with prefix.
	DeleteByPrefix(ctx context.Context, prefix string) error

	Clear(ctx context.Context) error

	Has(ctx context.Context, key string) (bool, error)

	Close() error
}

// StatsProvider is implemented by stores that count hits and misses.
type StatsProvider interface {
	Stats() Stats
	ResetStats()
}

// Stats is a point-in-time view of store counters.
type Stats struct {
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	Sets    int64   `json:"sets"`
	Items   int     `json:"items"`
	HitRate float64 `json:"hit_rate"`
	Size    int64   `json:"size_bytes,omitempty"`
}

func hitRate(hits, misses int64) float64 {
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total) * 100
}

// Error is a sentinel cache error.
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	// ErrCacheMiss indicates the key was not found in cache or has expired.
	ErrCacheMiss Error = "cache miss"

	// ErrCacheClosed indicates the cache has been closed.
	ErrCacheClosed Error = "cache closed"
)
