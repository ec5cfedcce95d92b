// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

// LoginProtection combines per-IP rate limiting with lockout of identifiers
// (username or email) that keep failing to sign in. The API decides whether
// credentials are valid; this only slows down guessing through the console.
type LoginProtection struct {
	ipLimiters *limiterCache[string]

	failedAttempts map[string]*loginAttempt
	attemptsMu     sync.RWMutex

	maxFailedAttempts int           // Lock identifier after this many failures
	lockoutDuration   time.Duration // Base lockout duration (doubles with each lockout)
	attemptWindow     time.Duration // Window to count failed attempts

	stop     chan struct{}
	stopOnce sync.Once
}

// loginAttempt tracks failed sign-ins for one identifier.
type loginAttempt struct {
	count       int
	firstFailed time.Time
	lockedUntil time.Time
	lockouts    int // Number of lockouts so far (for exponential backoff)
}

// LoginProtectionConfig holds configuration for login protection.
type LoginProtectionConfig struct {
	// IPRateLimit is requests per second per IP (default: 0.5 = 1 request per 2 seconds)
	IPRateLimit float64
	// IPBurst is the maximum burst size for IP rate limiting (default: 5)
	IPBurst int
	// MaxFailedAttempts before lockout (default: 5)
	MaxFailedAttempts int
	// LockoutDuration is base lockout time, doubles with each lockout (default: 15 minutes)
	LockoutDuration time.Duration
	// AttemptWindow is the time window for counting failed attempts (default: 15 minutes)
	AttemptWindow time.Duration
}

// DefaultLoginProtectionConfig returns sensible defaults.
func DefaultLoginProtectionConfig() LoginProtectionConfig {
	return LoginProtectionConfig{
		IPRateLimit:       0.5,
		IPBurst:           5,
		MaxFailedAttempts: 5,
		LockoutDuration:   15 * time.Minute,
		AttemptWindow:     15 * time.Minute,
	}
}

// NewLoginProtection creates a new login protection instance. Call Close to
// stop its cleanup goroutine.
func NewLoginProtection(cfg LoginProtectionConfig) *LoginProtection {
	def := DefaultLoginProtectionConfig()
	if cfg.IPRateLimit <= 0 {
		cfg.IPRateLimit = def.IPRateLimit
	}
	if cfg.IPBurst <= 0 {
		cfg.IPBurst = def.IPBurst
	}
	if cfg.MaxFailedAttempts <= 0 {
		cfg.MaxFailedAttempts = def.MaxFailedAttempts
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = def.LockoutDuration
	}
	if cfg.AttemptWindow <= 0 {
		cfg.AttemptWindow = def.AttemptWindow
	}

	lp := &LoginProtection{
		ipLimiters:        newLimiterCache[string](cfg.IPRateLimit, cfg.IPBurst),
		failedAttempts:    make(map[string]*loginAttempt),
		maxFailedAttempts: cfg.MaxFailedAttempts,
		lockoutDuration:   cfg.LockoutDuration,
		attemptWindow:     cfg.AttemptWindow,
		stop:              make(chan struct{}),
	}

	go lp.cleanup()

	return lp
}

// Close stops the cleanup goroutine.
func (lp *LoginProtection) Close() {
	lp.stopOnce.Do(func() { close(lp.stop) })
}

// normalizeIdentifier folds case so "Alice" and "alice" share a counter.
func normalizeIdentifier(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// CheckIPRateLimit reports whether a request from ip is allowed.
func (lp *LoginProtection) CheckIPRateLimit(ip string) bool {
	return lp.ipLimiters.get(ip).Allow()
}

// IsLocked reports whether identifier is locked and for how much longer.
func (lp *LoginProtection) IsLocked(identifier string) (bool, time.Duration) {
	identifier = normalizeIdentifier(identifier)

	lp.attemptsMu.RLock()
	attempt, exists := lp.failedAttempts[identifier]
	lp.attemptsMu.RUnlock()

	if !exists {
		return false, 0
	}

	if time.Now().Before(attempt.lockedUntil) {
		return true, time.Until(attempt.lockedUntil)
	}

	return false, 0
}

// RecordFailedAttempt records a failed sign-in.
// Returns (locked, lockDuration) if the identifier is now locked.
func (lp *LoginProtection) RecordFailedAttempt(identifier string) (bool, time.Duration) {
	identifier = normalizeIdentifier(identifier)

	lp.attemptsMu.Lock()
	defer lp.attemptsMu.Unlock()

	now := time.Now()
	attempt, exists := lp.failedAttempts[identifier]

	if !exists {
		attempt = &loginAttempt{firstFailed: now}
		lp.failedAttempts[identifier] = attempt
	} else if now.Sub(attempt.firstFailed) > lp.attemptWindow {
		attempt.count = 0
		attempt.firstFailed = now
	}

	attempt.count++
	slog.Debug("login attempt recorded", "identifier", identifier, "count", attempt.count)

	if attempt.count < lp.maxFailedAttempts {
		return false, 0
	}

	// Exponential backoff, capped at 24 hours
	lockDuration := lp.lockoutDuration
	for i := 0; i < attempt.lockouts; i++ {
		lockDuration *= 2
		if lockDuration > 24*time.Hour {
			lockDuration = 24 * time.Hour
			break
		}
	}

	attempt.lockedUntil = now.Add(lockDuration)
	attempt.lockouts++
	attempt.count = 0

	slog.Warn("identifier locked due to failed sign-ins",
		"identifier", identifier,
		"lockouts", attempt.lockouts,
		"duration", lockDuration,
	)

	return true, lockDuration
}

// RecordSuccessfulLogin clears failed attempt tracking for identifier.
func (lp *LoginProtection) RecordSuccessfulLogin(identifier string) {
	identifier = normalizeIdentifier(identifier)

	lp.attemptsMu.Lock()
	defer lp.attemptsMu.Unlock()

	delete(lp.failedAttempts, identifier)
}

// RemainingAttempts returns the number of attempts left before lockout.
func (lp *LoginProtection) RemainingAttempts(identifier string) int {
	identifier = normalizeIdentifier(identifier)

	lp.attemptsMu.RLock()
	attempt, exists := lp.failedAttempts[identifier]
	lp.attemptsMu.RUnlock()

	if !exists || time.Since(attempt.firstFailed) > lp.attemptWindow {
		return lp.maxFailedAttempts
	}

	return max(lp.maxFailedAttempts-attempt.count, 0)
}

func (lp *LoginProtection) cleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			lp.cleanupStaleEntries()
		case <-lp.stop:
			return
		}
	}
}

func (lp *LoginProtection) cleanupStaleEntries() {
	now := time.Now()

	if lp.ipLimiters.clearIfExceeds(10000) {
		slog.Info("cleared IP rate limiters due to size")
	}

	lp.attemptsMu.Lock()
	for id, attempt := range lp.failedAttempts {
		if now.After(attempt.lockedUntil) && now.Sub(attempt.firstFailed) > lp.attemptWindow {
			delete(lp.failedAttempts, id)
		}
	}
	lp.attemptsMu.Unlock()
}

// Middleware returns HTTP middleware for IP rate limiting on login.
// Apply it to the login POST route.
func (lp *LoginProtection) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}

			ip := GetClientIP(r)
			if !lp.CheckIPRateLimit(ip) {
				slog.Warn("login rate limit exceeded", "ip", ip)
				http.Error(w, "Too many login attempts. Please try again later.", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
