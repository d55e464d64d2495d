// Copyright (c) 2025-2026 Langdesk Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import "time"

// Config holds configuration for cache creation.
type Config struct {
	// RedisURL selects the Redis backend when non-empty.
	RedisURL string

	// Prefix is the key prefix for Redis.
	Prefix string

	// DefaultTTL is the default TTL for cache entries.
	DefaultTTL time.Duration
}

// New creates a cache from the configuration: Redis when a URL is
// configured, in-memory otherwise.
func New(cfg Config) (Cache, error) {
	if cfg.RedisURL != "" {
		return NewRedisCache(RedisOptions{
			URL:        cfg.RedisURL,
			Prefix:     cfg.Prefix,
			DefaultTTL: cfg.DefaultTTL,
		})
	}
	return NewMemoryCache(cfg.DefaultTTL), nil
}
