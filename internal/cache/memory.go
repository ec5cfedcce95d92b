// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// MemoryCache is the in-process Cacher used when no Redis URL is configured.
type MemoryCache struct {
	mu         sync.Mutex
	entries    map[string]memoryEntry
	defaultTTL time.Duration
	maxSize    int
	now        func() time.Time
	stopCh     chan struct{}
	closed     atomic.Bool

	hits   atomic.Int64
	misses atomic.Int64
	sets   atomic.Int64
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryCacheOptions configures the memory cache.
type MemoryCacheOptions struct {
	DefaultTTL      time.Duration
	MaxSize         int           // 0 = unlimited
	CleanupInterval time.Duration // 0 = no background sweep
}

// NewMemoryCache creates a memory cache and starts its sweeper if requested.
func NewMemoryCache(opts MemoryCacheOptions) *MemoryCache {
	c := &MemoryCache{
		entries:    make(map[string]memoryEntry),
		defaultTTL: opts.DefaultTTL,
		maxSize:    opts.MaxSize,
		now:        time.Now,
		stopCh:     make(chan struct{}),
	}

	if opts.CleanupInterval > 0 {
		go c.cleanupLoop(opts.CleanupInterval)
	}

	return c
}

// NewSimpleMemoryCache creates an unbounded memory cache with a one-minute sweep.
func NewSimpleMemoryCache(ttl time.Duration) *MemoryCache {
	return NewMemoryCache(MemoryCacheOptions{
		DefaultTTL:      ttl,
		CleanupInterval: time.Minute,
	})
}

// Get returns a copy of the stored bytes.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	if c.closed.Load() {
		return nil, ErrCacheClosed
	}

	c.mu.Lock()
	entry, ok := c.entries[key]
	if ok && !c.now().Before(entry.expiresAt) {
		delete(c.entries, key)
		ok = false
	}
	c.mu.Unlock()

	if !ok {
		c.misses.Add(1)
		return nil, ErrCacheMiss
	}

	c.hits.Add(1)
	return append([]byte(nil), entry.value...), nil
}

// Set stores a copy of value. When the cache is full, expired entries are
// swept first and then the entry closest to expiry is evicted.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if c.closed.Load() {
		return ErrCacheClosed
	}

	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && c.maxSize > 0 && len(c.entries) >= c.maxSize {
		c.removeExpiredLocked()
		if len(c.entries) >= c.maxSize {
			c.evictSoonestLocked()
		}
	}

	c.entries[key] = memoryEntry{
		value:     append([]byte(nil), value...),
		expiresAt: c.now().Add(ttl),
	}
	c.sets.Add(1)
	return nil
}

// Delete removes a key from the cache.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	if c.closed.Load() {
		return ErrCacheClosed
	}

	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

// DeleteByPrefix removes all keys starting with prefix.
func (c *MemoryCache) DeleteByPrefix(_ context.Context, prefix string) error {
	if c.closed.Load() {
		return ErrCacheClosed
	}

	c.mu.Lock()
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
	c.mu.Unlock()
	return nil
}

// Clear removes all entries from the cache.
func (c *MemoryCache) Clear(_ context.Context) error {
	if c.closed.Load() {
		return ErrCacheClosed
	}

	c.mu.Lock()
	c.entries = make(map[string]memoryEntry)
	c.mu.Unlock()
	return nil
}

// Has reports whether key holds an unexpired entry.
func (c *MemoryCache) Has(_ context.Context, key string) (bool, error) {
	if c.closed.Load() {
		return false, ErrCacheClosed
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	return ok && c.now().Before(entry.expiresAt), nil
}

// Close stops the sweeper. Later calls return ErrCacheClosed.
func (c *MemoryCache) Close() error {
	if c.closed.CompareAndSwap(false, true) {
		close(c.stopCh)
	}
	return nil
}

// Stats returns current cache statistics.
func (c *MemoryCache) Stats() Stats {
	hits, misses := c.hits.Load(), c.misses.Load()

	c.mu.Lock()
	items := len(c.entries)
	var size int64
	for _, e := range c.entries {
		size += int64(len(e.value))
	}
	c.mu.Unlock()

	return Stats{
		Hits:    hits,
		Misses:  misses,
		Sets:    c.sets.Load(),
		Items:   items,
		HitRate: hitRate(hits, misses),
		Size:    size,
	}
}

// ResetStats zeroes the hit, miss and set counters.
func (c *MemoryCache) ResetStats() {
	c.hits.Store(0)
	c.misses.Store(0)
	c.sets.Store(0)
}

func (c *MemoryCache) removeExpiredLocked() {
	now := c.now()
	for k, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, k)
		}
	}
}

func (c *MemoryCache) evictSoonestLocked() {
	var (
		victim string
		soon   time.Time
		found  bool
	)
	for k, e := range c.entries {
		if !found || e.expiresAt.Before(soon) {
			victim, soon, found = k, e.expiresAt, true
		}
	}
	if found {
		delete(c.entries, victim)
	}
}

func (c *MemoryCache) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.mu.Lock()
			c.removeExpiredLocked()
			c.mu.Unlock()
		case <-c.stopCh:
			return
		}
	}
}

var (
	_ Cacher        = (*MemoryCache)(nil)
	_ StatsProvider = (*MemoryCache)(nil)
)
