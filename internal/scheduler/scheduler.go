// Copyright (c) 2025-2026 Langdesk Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs the console's periodic maintenance: refreshing
// the shared translation snapshot, sweeping for orphaned translation
// keys, and pruning the audit event log.
package scheduler

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/langdesk/langdesk/internal/backend"
	"github.com/langdesk/langdesk/internal/keypath"
	"github.com/langdesk/langdesk/internal/model"
	"github.com/langdesk/langdesk/internal/reconcile"
	"github.com/langdesk/langdesk/internal/store"
	"github.com/langdesk/langdesk/internal/translation"
)

// eventRetention is how long audit events are kept.
const eventRetention = 90 * 24 * time.Hour

// jobTimeout bounds each maintenance run.
const jobTimeout = time.Minute

// managedNamespaces are the key prefixes the console owns. Keys outside
// these namespaces are never touched by the sweep.
var managedNamespaces = []string{
	model.HeaderMenuNamespace + keypath.Separator,
	model.FooterNamespace + keypath.Separator,
	model.TabNamespace + keypath.Separator,
}

// Config wires the scheduler's collaborators.
type Config struct {
	Translations *translation.Store
	Client       *backend.Client
	Queries      *store.Queries
	Logger       *slog.Logger

	RefreshSpec string // cron spec for the snapshot refresh
	SweepSpec   string // cron spec for the orphan sweep and retention
}

// Scheduler handles the console's scheduled maintenance tasks.
type Scheduler struct {
	cfg  Config
	cron *cron.Cron
}

// New creates a scheduler instance.
func New(cfg Config) *Scheduler {
	return &Scheduler{
		cfg:  cfg,
		cron: cron.New(),
	}
}

// Start registers the maintenance jobs and begins the schedule.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.RefreshSpec, s.refreshSnapshot); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(s.cfg.SweepSpec, s.maintain); err != nil {
		return err
	}

	s.cron.Start()
	s.cfg.Logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.cfg.Logger.Info("scheduler stopped")
}

// refreshSnapshot drops the cached translation payload and refetches it,
// so long-running replicas converge on edits made elsewhere.
func (s *Scheduler) refreshSnapshot() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	s.cfg.Translations.Invalidate(ctx)
	if err := s.cfg.Translations.LoadAll(ctx); err != nil {
		s.cfg.Logger.Error("translation snapshot refresh failed", "error", err)
		return
	}
	s.cfg.Logger.Info("translation snapshot refreshed", "keys", s.cfg.Translations.Len())
}

func (s *Scheduler) maintain() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if _, err := s.SweepOrphans(ctx); err != nil {
		s.cfg.Logger.Error("orphan sweep failed", "error", err)
	}
	s.pruneEvents(ctx)
}

// SweepOrphans finds translation keys inside the managed namespaces that
// no entity references anymore, typically left behind by a failed save.
// It reports them to the audit log; deletion stays a deliberate operator
// action.
func (s *Scheduler) SweepOrphans(ctx context.Context) ([]string, error) {
	if err := s.cfg.Translations.LoadAll(ctx); err != nil {
		return nil, err
	}

	entities, err := s.loadEntities(ctx)
	if err != nil {
		return nil, err
	}

	orphans := reconcile.Orphans(s.cfg.Translations.Keys(), entities, func(key string) bool {
		for _, ns := range managedNamespaces {
			if strings.HasPrefix(key, ns) {
				return true
			}
		}
		return false
	})

	if len(orphans) == 0 {
		return nil, nil
	}

	s.cfg.Logger.Warn("orphaned translation keys found",
		"category", model.EventCategoryTranslation, "count", len(orphans))

	metadata, _ := json.Marshal(map[string]any{"keys": orphans})
	if _, err := s.cfg.Queries.CreateEvent(ctx, store.CreateEventParams{
		Level:    model.EventLevelWarning,
		Category: model.EventCategoryTranslation,
		Message:  "orphaned translation keys found",
		Metadata: string(metadata),
	}); err != nil {
		s.cfg.Logger.Warn("failed to record orphan sweep event", "error", err)
	}

	return orphans, nil
}

// loadEntities fetches every key-owning entity from the backend.
func (s *Scheduler) loadEntities(ctx context.Context) ([]reconcile.Keyed, error) {
	var entities []reconcile.Keyed

	menu, err := s.cfg.Client.HeaderMenu(ctx)
	if err != nil {
		return nil, err
	}
	for i := range menu {
		entities = append(entities, &menu[i])
	}

	blocks, err := s.cfg.Client.ListFooterBlocks(ctx)
	if err != nil {
		return nil, err
	}
	for i := range blocks {
		entities = append(entities, &blocks[i])
	}

	for _, kind := range []model.TabKind{model.TabWithBackground, model.TabUnderButton} {
		tabs, err := s.cfg.Client.ListTabs(ctx, kind)
		if err != nil {
			return nil, err
		}
		for i := range tabs {
			entities = append(entities, &tabs[i])
		}
	}

	return entities, nil
}

// pruneEvents removes audit events past the retention window.
func (s *Scheduler) pruneEvents(ctx context.Context) {
	deleted, err := s.cfg.Queries.DeleteEventsBefore(ctx, time.Now().UTC().Add(-eventRetention))
	if err != nil {
		s.cfg.Logger.Warn("event retention prune failed", "error", err)
		return
	}
	if deleted > 0 {
		s.cfg.Logger.Info("pruned old audit events", "deleted", deleted)
	}
}
