// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"encoding/json"
	"time"
)

// TypedCache stores JSON-encoded values of one type in a Cacher.
type TypedCache[T any] struct {
	cache      Cacher
	defaultTTL time.Duration
}

// NewTypedCache wraps cache for values of type T.
func NewTypedCache[T any](cache Cacher, defaultTTL time.Duration) *TypedCache[T] {
	return &TypedCache[T]{
		cache:      cache,
		defaultTTL: defaultTTL,
	}
}

// Get returns the decoded value and true on a hit. Undecodable entries count
// as misses.
func (c *TypedCache[T]) Get(ctx context.Context, key string) (T, bool) {
	var value T
	data, err := c.cache.Get(ctx, key)
	if err != nil {
		return value, false
	}
	if err := json.Unmarshal(data, &value); err != nil {
		var zero T
		return zero, false
	}
	return value, true
}

// Set stores value with the default TTL.
func (c *TypedCache[T]) Set(ctx context.Context, key string, value T) error {
	return c.SetWithTTL(ctx, key, value, c.defaultTTL)
}

// SetWithTTL stores value with a custom TTL.
func (c *TypedCache[T]) SetWithTTL(ctx context.Context, key string, value T, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.cache.Set(ctx, key, data, ttl)
}

// Delete removes a key from the cache.
func (c *TypedCache[T]) Delete(ctx context.Context, key string) error {
	return c.cache.Delete(ctx, key)
}

// GetOrSet returns the cached value or computes, stores and returns it.
// A failed store does not fail the call.
func (c *TypedCache[T]) GetOrSet(ctx context.Context, key string, fn func() (T, error)) (T, error) {
	if value, ok := c.Get(ctx, key); ok {
		return value, nil
	}

	value, err := fn()
	if err != nil {
		var zero T
		return zero, err
	}

	_ = c.Set(ctx, key, value)
	return value, nil
}
