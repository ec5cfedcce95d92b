// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/olegiv/taskdesk/internal/config"
)

// CacheBackend names the store behind a Cacher.
type CacheBackend string

// Supported backends.
const (
	CacheBackendMemory CacheBackend = "memory"
	CacheBackendRedis  CacheBackend = "redis"
)

// CacheConfig holds configuration for cache creation.
type CacheConfig struct {
	Type             CacheBackend
	RedisURL         string
	Prefix           string
	DefaultTTL       time.Duration
	MaxSize          int
	CleanupInterval  time.Duration
	FallbackToMemory bool
}

// ConfigFrom maps application settings onto a CacheConfig. Redis is selected
// when a URL is set; an unreachable Redis degrades to memory.
func ConfigFrom(cfg *config.Config) CacheConfig {
	cc := CacheConfig{
		Type:             CacheBackendMemory,
		Prefix:           cfg.CachePrefix,
		DefaultTTL:       cfg.CacheTTLDuration(),
		MaxSize:          cfg.CacheMaxSize,
		CleanupInterval:  time.Minute,
		FallbackToMemory: true,
	}
	if cfg.UseRedisCache() {
		cc.Type = CacheBackendRedis
		cc.RedisURL = cfg.RedisURL
	}
	return cc
}

// CacheResult is a created cache plus how it was obtained.
type CacheResult struct {
	Cache       Cacher
	BackendType CacheBackend
	IsFallback  bool
}

// NewCacheWithInfo creates the configured cache and reports the backend used.
func NewCacheWithInfo(cfg CacheConfig) (CacheResult, error) {
	if cfg.Type == CacheBackendRedis && cfg.RedisURL != "" {
		rc, err := NewRedisCacheFromURL(cfg.RedisURL, cfg.Prefix, cfg.DefaultTTL)
		if err == nil {
			slog.Info("lookup cache using redis", "url", SanitizeRedisURL(cfg.RedisURL))
			return CacheResult{Cache: rc, BackendType: CacheBackendRedis}, nil
		}
		if !cfg.FallbackToMemory {
			return CacheResult{}, fmt.Errorf("connecting to redis at %s: %w", SanitizeRedisURL(cfg.RedisURL), err)
		}
		slog.Warn("redis unavailable, falling back to memory cache",
			"url", SanitizeRedisURL(cfg.RedisURL), "error", err)
		return CacheResult{Cache: newMemory(cfg), BackendType: CacheBackendMemory, IsFallback: true}, nil
	}

	return CacheResult{Cache: newMemory(cfg), BackendType: CacheBackendMemory}, nil
}

// NewCache creates the configured cache.
func NewCache(cfg CacheConfig) (Cacher, error) {
	res, err := NewCacheWithInfo(cfg)
	if err != nil {
		return nil, err
	}
	return res.Cache, nil
}

func newMemory(cfg CacheConfig) *MemoryCache {
	return NewMemoryCache(MemoryCacheOptions{
		DefaultTTL:      cfg.DefaultTTL,
		MaxSize:         cfg.MaxSize,
		CleanupInterval: cfg.CleanupInterval,
	})
}

// SanitizeRedisURL masks the password of a Redis URL for logging.
func SanitizeRedisURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "[invalid URL]"
	}
	if _, has := u.User.Password(); has {
		u.User = url.UserPassword(u.User.Username(), "***")
	}
	return u.String()
}
