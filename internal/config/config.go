// Copyright (c) 2025-2026 Langdesk Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	// Content backend the console talks to.
	BackendURL   string `env:"LANGDESK_BACKEND_URL,required"`
	BackendToken string `env:"LANGDESK_BACKEND_TOKEN"`

	DBPath        string `env:"LANGDESK_DB_PATH" envDefault:"./data/langdesk.db"`
	SessionSecret string `env:"LANGDESK_SESSION_SECRET,required"`
	AdminPassword string `env:"LANGDESK_ADMIN_PASSWORD,required"`
	ServerHost    string `env:"LANGDESK_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"LANGDESK_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"LANGDESK_ENV" envDefault:"development"`
	LogLevel      string `env:"LANGDESK_LOG_LEVEL" envDefault:"info"`
	UploadsDir    string `env:"LANGDESK_UPLOADS_DIR" envDefault:"./uploads"`
	UILang        string `env:"LANGDESK_UI_LANG" envDefault:"ru"`

	// Cache configuration
	RedisURL    string `env:"LANGDESK_REDIS_URL"`                        // Optional Redis URL for a shared snapshot cache
	CachePrefix string `env:"LANGDESK_CACHE_PREFIX" envDefault:"langdesk:"`
	CacheTTL    int    `env:"LANGDESK_CACHE_TTL" envDefault:"3600"` // Default cache TTL in seconds

	// Scheduled maintenance
	SnapshotRefreshSpec string `env:"LANGDESK_SNAPSHOT_REFRESH" envDefault:"@every 10m"`
	OrphanSweepSpec     string `env:"LANGDESK_ORPHAN_SWEEP" envDefault:"@daily"`
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

// MinSessionSecretLength is the minimum required length for the session secret.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if !strings.HasPrefix(cfg.BackendURL, "http://") && !strings.HasPrefix(cfg.BackendURL, "https://") {
		return nil, fmt.Errorf("LANGDESK_BACKEND_URL must be an absolute http(s) URL, got %q", cfg.BackendURL)
	}

	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("LANGDESK_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	for _, weak := range knownWeakSecrets {
		if cfg.SessionSecret == weak {
			return nil, fmt.Errorf("LANGDESK_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("LANGDESK_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
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
