// Copyright (c) 2025-2026 Langdesk Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package cache provides the shared caching layer used for translation
// snapshots. A single console runs fine on the in-memory implementation;
// multiple replicas point at Redis so they reuse one snapshot.
package cache

import (
	"context"
	"time"
)

// Cache is the interface for cache implementations.
// All implementations must be thread-safe. Values are []byte so the
// in-memory and Redis implementations are interchangeable.
type Cache interface {
	// Get retrieves a value. Returns ErrCacheMiss if absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with the specified TTL. TTL 0 uses the default.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a key.
	Delete(ctx context.Context, key string) error

	// Clear removes all entries.
	Clear(ctx context.Context) error

	// Has checks if a key exists and is not expired.
	Has(ctx context.Context, key string) (bool, error)

	// Close releases any resources held by the cache.
	Close() error
}

// Stats holds cache statistics.
type Stats struct {
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	Sets    int64   `json:"sets"`
	Items   int     `json:"items"`
	HitRate float64 `json:"hit_rate"`
	Size    int64   `json:"size_bytes,omitempty"`
}

// StatsProvider is an optional interface for caches that track statistics.
type StatsProvider interface {
	Stats() Stats
	ResetStats()
}

// Error represents an error type for cache operations.
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	// ErrCacheMiss indicates the key was not found or has expired.
	ErrCacheMiss Error = "cache miss"

	// ErrCacheClosed indicates the cache has been closed.
	ErrCacheClosed Error = "cache closed"
)
