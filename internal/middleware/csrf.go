// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"net/http"

	"filippo.io/csrf/gorilla"
)

// CSRFConfig holds configuration for CSRF protection.
// filippo.io/csrf/gorilla checks Fetch metadata headers rather than a token
// cookie, so forms carry no hidden token field.
type CSRFConfig struct {
	// AuthKey is a 32-byte key. The session secret is used.
	AuthKey []byte

	// ErrorHandler is called when CSRF validation fails.
	ErrorHandler http.Handler

	// TrustedOrigins are host:port values allowed to post cross-origin.
	TrustedOrigins []string
}

// DefaultCSRFConfig returns a CSRFConfig for the console listening on addr.
// In development the listen address is trusted so that forms work when the
// browser reaches the server by IP or through a port forward.
func DefaultCSRFConfig(authKey []byte, isDev bool, addr string) CSRFConfig {
	cfg := CSRFConfig{
		AuthKey: authKey,
	}

	// The csrf library expects host-only values, not full URLs
	if isDev {
		cfg.TrustedOrigins = []string{"localhost:8080", "127.0.0.1:8080"}
		if addr != "" && addr != cfg.TrustedOrigins[0] && addr != cfg.TrustedOrigins[1] {
			cfg.TrustedOrigins = append(cfg.TrustedOrigins, addr)
		}
	}

	return cfg
}

// CSRF returns a middleware that provides CSRF protection.
func CSRF(cfg CSRFConfig) func(http.Handler) http.Handler {
	var opts []csrf.Option

	if cfg.ErrorHandler != nil {
		opts = append(opts, csrf.ErrorHandler(cfg.ErrorHandler))
	} else {
		opts = append(opts, csrf.ErrorHandler(http.HandlerFunc(csrfErrorHandler)))
	}

	if len(cfg.TrustedOrigins) > 0 {
		opts = append(opts, csrf.TrustedOrigins(cfg.TrustedOrigins))
	}

	return csrf.Protect(cfg.AuthKey, opts...)
}

func csrfErrorHandler(w http.ResponseWriter, r *http.Request) {
	reason := csrf.FailureReason(r)
	reasonStr := "unknown"
	if reason != nil {
		reasonStr = reason.Error()
	}
	slog.Error("CSRF validation failed",
		"reason", reasonStr,
		"method", r.Method,
		"path", r.URL.Path,
		"origin", r.Header.Get("Origin"),
		"sec_fetch_site", r.Header.Get("Sec-Fetch-Site"),
	)
	http.Error(w, "Forbidden - CSRF validation failed", http.StatusForbidden)
}

// SkipCSRF returns a middleware that skips CSRF protection for specific paths.
// The health probe is the only caller.
func SkipCSRF(paths ...string) func(http.Handler) http.Handler {
	skipPaths := make(map[string]bool)
	for _, p := range paths {
		skipPaths[p] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skipPaths[r.URL.Path] {
				r = csrf.UnsafeSkipCheck(r)
			}
			next.ServeHTTP(w, r)
		})
	}
}
