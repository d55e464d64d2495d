// Copyright (c) 2025-2026 Langdesk Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/langdesk/langdesk/internal/i18n"
)

// LoginProtection combines per-IP rate limiting with lockout tracking.
// The console has a single operator account, so failed attempts are
// tracked per client IP rather than per account.
type LoginProtection struct {
	ipLimiters *limiterCache[string]

	failedAttempts map[string]*loginAttempt
	attemptsMu     sync.RWMutex

	maxFailedAttempts int           // lock after this many failures
	lockoutDuration   time.Duration // base lockout, doubles with each lockout
	attemptWindow     time.Duration // window to count failed attempts
}

// loginAttempt tracks failed login attempts from one client.
type loginAttempt struct {
	count       int
	firstFailed time.Time
	lockedUntil time.Time
	lockouts    int // for exponential backoff
}

// LoginProtectionConfig holds configuration for login protection.
type LoginProtectionConfig struct {
	// IPRateLimit is requests per second per IP.
	IPRateLimit float64
	// IPBurst is the maximum burst size for IP rate limiting.
	IPBurst int
	// MaxFailedAttempts before lockout.
	MaxFailedAttempts int
	// LockoutDuration is the base lockout time, doubling with each lockout.
	LockoutDuration time.Duration
	// AttemptWindow is the time window for counting failed attempts.
	AttemptWindow time.Duration
}

// DefaultLoginProtectionConfig returns sensible defaults.
func DefaultLoginProtectionConfig() LoginProtectionConfig {
	return LoginProtectionConfig{
		IPRateLimit:       0.5, // 1 request per 2 seconds
		IPBurst:           5,
		MaxFailedAttempts: 5,
		LockoutDuration:   15 * time.Minute,
		AttemptWindow:     15 * time.Minute,
	}
}

// NewLoginProtection creates a new login protection instance.
func NewLoginProtection(cfg LoginProtectionConfig) *LoginProtection {
	if cfg.IPRateLimit <= 0 {
		cfg.IPRateLimit = 0.5
	}
	if cfg.IPBurst <= 0 {
		cfg.IPBurst = 5
	}
	if cfg.MaxFailedAttempts <= 0 {
		cfg.MaxFailedAttempts = 5
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = 15 * time.Minute
	}
	if cfg.AttemptWindow <= 0 {
		cfg.AttemptWindow = 15 * time.Minute
	}

	lp := &LoginProtection{
		ipLimiters:        newLimiterCache[string](cfg.IPRateLimit, cfg.IPBurst),
		failedAttempts:    make(map[string]*loginAttempt),
		maxFailedAttempts: cfg.MaxFailedAttempts,
		lockoutDuration:   cfg.LockoutDuration,
		attemptWindow:     cfg.AttemptWindow,
	}

	go lp.cleanup()

	return lp
}

// CheckIPRateLimit reports whether a login request from the IP is allowed.
func (lp *LoginProtection) CheckIPRateLimit(ip string) bool {
	return lp.ipLimiters.get(ip).Allow()
}

// IsLocked checks if a client is currently locked out.
// Returns (locked, remainingTime).
func (lp *LoginProtection) IsLocked(ip string) (bool, time.Duration) {
	lp.attemptsMu.RLock()
	attempt, exists := lp.failedAttempts[ip]
	lp.attemptsMu.RUnlock()

	if !exists {
		return false, 0
	}

	if time.Now().Before(attempt.lockedUntil) {
		return true, time.Until(attempt.lockedUntil)
	}

	return false, 0
}

// RecordFailedAttempt records a failed login attempt.
// Returns (locked, lockDuration) if the client is now locked out.
func (lp *LoginProtection) RecordFailedAttempt(ip string) (bool, time.Duration) {
	lp.attemptsMu.Lock()
	defer lp.attemptsMu.Unlock()

	now := time.Now()
	attempt, exists := lp.failedAttempts[ip]

	if !exists {
		attempt = &loginAttempt{
			count:       1,
			firstFailed: now,
		}
		lp.failedAttempts[ip] = attempt
		slog.Debug("login attempt recorded", "ip", ip, "count", 1)
		return false, 0
	}

	// If the attempt window has passed, reset the counter
	if now.Sub(attempt.firstFailed) > lp.attemptWindow {
		attempt.count = 1
		attempt.firstFailed = now
		slog.Debug("login attempt window reset", "ip", ip, "count", 1)
		return false, 0
	}

	attempt.count++
	slog.Debug("login attempt recorded", "ip", ip, "count", attempt.count)

	if attempt.count >= lp.maxFailedAttempts {
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

		slog.Warn("login locked due to failed attempts",
			"category", "auth",
			"ip", ip,
			"lockouts", attempt.lockouts,
			"duration", lockDuration,
		)

		return true, lockDuration
	}

	return false, 0
}

// RecordSuccessfulLogin clears failed attempt tracking for a client.
func (lp *LoginProtection) RecordSuccessfulLogin(ip string) {
	lp.attemptsMu.Lock()
	defer lp.attemptsMu.Unlock()

	delete(lp.failedAttempts, ip)
	slog.Debug("login attempts cleared", "ip", ip)
}

// GetRemainingAttempts returns the number of attempts left before lockout.
func (lp *LoginProtection) GetRemainingAttempts(ip string) int {
	lp.attemptsMu.RLock()
	attempt, exists := lp.failedAttempts[ip]
	lp.attemptsMu.RUnlock()

	if !exists {
		return lp.maxFailedAttempts
	}

	if time.Since(attempt.firstFailed) > lp.attemptWindow {
		return lp.maxFailedAttempts
	}

	remaining := lp.maxFailedAttempts - attempt.count
	if remaining < 0 {
		return 0
	}
	return remaining
}

// cleanup periodically removes stale entries.
func (lp *LoginProtection) cleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		lp.cleanupStaleEntries()
	}
}

func (lp *LoginProtection) cleanupStaleEntries() {
	now := time.Now()

	if lp.ipLimiters.clearIfExceeds(10000) {
		slog.Info("cleared IP rate limiters due to size")
	}

	lp.attemptsMu.Lock()
	for ip, attempt := range lp.failedAttempts {
		// Remove if lockout has expired and no recent attempts
		if now.After(attempt.lockedUntil) &&
			now.Sub(attempt.firstFailed) > lp.attemptWindow {
			delete(lp.failedAttempts, ip)
		}
	}
	lp.attemptsMu.Unlock()
}

// Middleware rate limits and lockout-gates login POSTs.
func (lp *LoginProtection) Middleware(uiLang func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}

			ip := getClientIP(r)
			lang := uiLang(r)

			if locked, _ := lp.IsLocked(ip); locked {
				slog.Warn("login attempt while locked", "category", "auth", "ip", ip)
				http.Error(w, i18n.T(lang, "auth.locked"), http.StatusTooManyRequests)
				return
			}

			if !lp.CheckIPRateLimit(ip) {
				slog.Warn("login rate limit exceeded", "category", "auth", "ip", ip)
				http.Error(w, i18n.T(lang, "auth.locked"), http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
