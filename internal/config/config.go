// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected in production.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath        string `env:"TASKDESK_DB_PATH" envDefault:"./data/taskdesk.db"`
	SessionSecret string `env:"TASKDESK_SESSION_SECRET,required"`
	ServerHost    string `env:"TASKDESK_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"TASKDESK_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"TASKDESK_ENV" envDefault:"development"`
	LogLevel      string `env:"TASKDESK_LOG_LEVEL" envDefault:"info"`

	// Remote project-tracking API
	APIBaseURL string        `env:"TASKDESK_API_BASE_URL" envDefault:"http://localhost:5000/api"`
	APITimeout time.Duration `env:"TASKDESK_API_TIMEOUT" envDefault:"15s"`

	// Cache configuration
	RedisURL     string `env:"TASKDESK_REDIS_URL"`                          // Optional Redis URL for shared lookups
	CachePrefix  string `env:"TASKDESK_CACHE_PREFIX" envDefault:"taskdesk:"` // Redis key prefix
	CacheTTL     int    `env:"TASKDESK_CACHE_TTL" envDefault:"300"`          // Lookup TTL in seconds
	CacheMaxSize int    `env:"TASKDESK_CACHE_MAX_SIZE" envDefault:"1000"`    // Max memory cache entries

	// Report exports
	ExportDir      string `env:"TASKDESK_EXPORT_DIR" envDefault:"./exports"`
	ExportSchedule string `env:"TASKDESK_EXPORT_SCHEDULE"` // cron spec, empty disables

	// Uploads
	ImageMaxDimension int `env:"TASKDESK_IMAGE_MAX_DIMENSION" envDefault:"1920"`
	UploadMaxMB       int `env:"TASKDESK_UPLOAD_MAX_MB" envDefault:"20"`

	// Tracing: OTLP/HTTP collector host:port, or "stdout"
	OTelEndpoint string `env:"TASKDESK_OTEL_ENDPOINT"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// ExportScheduled returns true if periodic report exports are configured.
func (c Config) ExportScheduled() bool {
	return strings.TrimSpace(c.ExportSchedule) != ""
}

// TracingEnabled returns true if an OpenTelemetry endpoint is configured.
func (c Config) TracingEnabled() bool {
	return c.OTelEndpoint != ""
}

// CacheTTLDuration returns the lookup cache TTL.
func (c Config) CacheTTLDuration() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

// UploadMaxBytes returns the multipart upload limit in bytes.
func (c Config) UploadMaxBytes() int64 {
	return int64(c.UploadMaxMB) << 20
}

// MinSessionSecretLength is the minimum required length for the session secret.
// AES-256 requires 32 bytes minimum for secure encryption.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	// Validate session secret length
	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("TASKDESK_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	// Reject known weak/default secrets
	for _, weak := range knownWeakSecrets {
		if cfg.SessionSecret == weak {
			return nil, fmt.Errorf("TASKDESK_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	// Warn about low-entropy secrets
	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("TASKDESK_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	u, err := url.Parse(cfg.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("TASKDESK_API_BASE_URL must be an absolute URL, got %q", cfg.APIBaseURL)
	}

	if cfg.ImageMaxDimension <= 0 {
		return nil, fmt.Errorf("TASKDESK_IMAGE_MAX_DIMENSION must be positive, got %d", cfg.ImageMaxDimension)
	}

	return cfg, nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
