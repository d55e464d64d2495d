// Copyright (c) 2025-2026 Langdesk Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package translation caches the backend's translation key/value store and
// mediates every translation mutation the console makes.
//
// The backend serves translations per language ({lang: {key: value}});
// internal consumers want them per key ({key: {lang: value}}). The store
// fetches the full payload once, transposes it, and keeps the result
// behind a loaded flag so repeated loads are no-ops until invalidated.
package translation

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/langdesk/langdesk/internal/backend"
	"github.com/langdesk/langdesk/internal/cache"
	"github.com/langdesk/langdesk/internal/model"
)

// snapshotCacheKey is the shared-cache key for the transposed payload.
const snapshotCacheKey = "translations:snapshot"

// Store is the in-memory translation cache synchronized with the backend.
// Cache state is mutated only after the backend confirms an operation, so
// a failed request never leaves the cache ahead of the backend.
type Store struct {
	client *backend.Client
	logger *slog.Logger

	// snapshot is an optional shared cache layer (memory or Redis) that
	// lets several console replicas reuse one transposed payload.
	snapshot cache.Cache

	sanitizer *bluemonday.Policy

	mu           sync.RWMutex
	translations map[string]map[string]string // key -> lang -> value
	languages    []model.Language
	loaded       bool
	langsLoaded  bool
}

// NewStore creates a store over the given backend client. snapshot may be
// nil to disable the shared cache layer.
func NewStore(client *backend.Client, snapshot cache.Cache, logger *slog.Logger) *Store {
	return &Store{
		client:       client,
		logger:       logger,
		snapshot:     snapshot,
		sanitizer:    bluemonday.UGCPolicy(),
		translations: make(map[string]map[string]string),
	}
}

// Languages returns the backend's language list, cached after first load.
func (s *Store) Languages(ctx context.Context) ([]model.Language, error) {
	s.mu.RLock()
	if s.langsLoaded {
		langs := make([]model.Language, len(s.languages))
		copy(langs, s.languages)
		s.mu.RUnlock()
		return langs, nil
	}
	s.mu.RUnlock()

	langs, err := s.client.ListLanguages(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.languages = langs
	s.langsLoaded = true
	s.mu.Unlock()

	result := make([]model.Language, len(langs))
	copy(result, langs)
	return result, nil
}

// LoadAll fetches and transposes the full translation payload. Guarded by
// the loaded flag: repeated calls are no-ops until Invalidate resets it.
func (s *Store) LoadAll(ctx context.Context) error {
	s.mu.RLock()
	if s.loaded {
		s.mu.RUnlock()
		return nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check after acquiring the write lock.
	if s.loaded {
		return nil
	}

	if byKey, ok := s.fromSnapshot(ctx); ok {
		s.translations = byKey
		s.loaded = true
		return nil
	}

	payload, err := s.client.ListTranslations(ctx)
	if err != nil {
		return err
	}

	s.translations = Transpose(payload)
	s.loaded = true
	s.storeSnapshot(ctx)
	return nil
}

// Transpose converts the backend's per-language payload into the per-key
// map the console works with. Deterministic: the same payload always
// yields the same map.
func Transpose(payload map[string]map[string]string) map[string]map[string]string {
	byKey := make(map[string]map[string]string)
	for lang, keys := range payload {
		for key, value := range keys {
			if byKey[key] == nil {
				byKey[key] = make(map[string]string)
			}
			byKey[key][lang] = value
		}
	}
	return byKey
}

// Invalidate resets the loaded flags, forcing a reload on next access,
// and drops the shared snapshot.
func (s *Store) Invalidate(ctx context.Context) {
	s.mu.Lock()
	s.loaded = false
	s.langsLoaded = false
	s.translations = make(map[string]map[string]string)
	s.languages = nil
	s.mu.Unlock()

	if s.snapshot != nil {
		if err := s.snapshot.Delete(ctx, snapshotCacheKey); err != nil && s.logger != nil {
			s.logger.Warn("dropping translation snapshot failed", "error", err)
		}
	}
}

// Has reports whether the key exists in the cache.
func (s *Store) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.translations[key]
	return ok
}

// Get returns a copy of the language map for key.
func (s *Store) Get(key string) (map[string]string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	values, ok := s.translations[key]
	if !ok {
		return nil, false
	}
	out := make(map[string]string, len(values))
	for lang, v := range values {
		out[lang] = v
	}
	return out, true
}

// ValueFor returns the value of key in lang. A missing language entry is
// an empty string, not an error: the key exists across all languages.
func (s *Store) ValueFor(key, lang string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.translations[key][lang]
}

// Keys returns every cached key.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.translations))
	for k := range s.translations {
		keys = append(keys, k)
	}
	return keys
}

// Len returns the number of cached keys.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.translations)
}

// CreateBatch creates keys with full language maps. The cache is updated
// only after the backend confirms.
func (s *Store) CreateBatch(ctx context.Context, items []backend.KeyValues) error {
	if len(items) == 0 {
		return nil
	}
	if err := s.client.CreateTranslations(ctx, items); err != nil {
		return err
	}

	s.mu.Lock()
	for _, item := range items {
		values := make(map[string]string, len(item.Values))
		for lang, v := range item.Values {
			values[lang] = v
		}
		s.translations[item.Key] = values
	}
	s.mu.Unlock()
	return nil
}

// UpdateBatch patches individual (key, language) cells, merging into the
// cache after confirmed success.
func (s *Store) UpdateBatch(ctx context.Context, cells []backend.Cell) error {
	if len(cells) == 0 {
		return nil
	}
	if err := s.client.PatchTranslations(ctx, cells); err != nil {
		return err
	}

	s.mu.Lock()
	for _, cell := range cells {
		if s.translations[cell.Key] == nil {
			s.translations[cell.Key] = make(map[string]string)
		}
		s.translations[cell.Key][cell.Lang] = cell.Value
	}
	s.mu.Unlock()
	return nil
}

// Delete removes keys from the backend, then evicts them from the cache.
// The source system evicted optimistically before the request and left
// the cache wrong when the delete failed; here the backend confirms
// first, matching the create/update policy.
func (s *Store) Delete(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.DeleteTranslations(ctx, keys); err != nil {
		return err
	}

	s.mu.Lock()
	for _, k := range keys {
		delete(s.translations, k)
	}
	s.mu.Unlock()
	return nil
}

// Export streams the backend's export archive through to the caller.
func (s *Store) Export(ctx context.Context, opts backend.ExportOptions) (string, io.ReadCloser, error) {
	return s.client.ExportTranslations(ctx, opts)
}

// Import uploads translation files and merges the accepted payload into
// the cache. Values are sanitized before merging: imported strings render
// on the public site and arrive from arbitrary files.
func (s *Store) Import(ctx context.Context, files []backend.ImportFile) (int, error) {
	merged, err := s.client.ImportTranslations(ctx, files)
	if err != nil {
		return 0, err
	}

	count := 0
	s.mu.Lock()
	for lang, keys := range merged {
		for key, value := range keys {
			if s.translations[key] == nil {
				s.translations[key] = make(map[string]string)
			}
			s.translations[key][lang] = s.sanitizer.Sanitize(value)
			count++
		}
	}
	s.mu.Unlock()
	return count, nil
}

// fromSnapshot tries to serve the transposed payload from the shared
// cache layer. Must be called with the write lock held.
func (s *Store) fromSnapshot(ctx context.Context) (map[string]map[string]string, bool) {
	if s.snapshot == nil {
		return nil, false
	}
	data, err := s.snapshot.Get(ctx, snapshotCacheKey)
	if err != nil {
		return nil, false
	}
	var byKey map[string]map[string]string
	if err := json.Unmarshal(data, &byKey); err != nil {
		if s.logger != nil {
			s.logger.Warn("corrupt translation snapshot, refetching", "error", err)
		}
		return nil, false
	}
	return byKey, true
}

// storeSnapshot publishes the transposed payload to the shared cache
// layer. Best effort; a failure only costs the next replica a refetch.
// Must be called with the write lock held.
func (s *Store) storeSnapshot(ctx context.Context) {
	if s.snapshot == nil {
		return
	}
	data, err := json.Marshal(s.translations)
	if err != nil {
		return
	}
	if err := s.snapshot.Set(ctx, snapshotCacheKey, data, 0); err != nil && s.logger != nil {
		s.logger.Warn("publishing translation snapshot failed", "error", err)
	}
}
