// Copyright (c) 2025-2026 Langdesk Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package editor drives the lifecycle of one edit dialog: load the entity,
// snapshot its key set, accumulate draft edits, validate, and commit the
// whole change set in a fixed order.
//
// A session owns its draft exclusively. The entity is cloned once when the
// dialog opens and mutated in place afterwards; no other goroutine sees the
// draft until the save lands on the backend.
package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/langdesk/langdesk/internal/backend"
	"github.com/langdesk/langdesk/internal/i18n"
	"github.com/langdesk/langdesk/internal/keypath"
	"github.com/langdesk/langdesk/internal/model"
	"github.com/langdesk/langdesk/internal/reconcile"
)

// State is the lifecycle phase of an edit session.
type State string

// Session lifecycle states.
const (
	StateLoading    State = "loading"
	StateReady      State = "ready"
	StateValidating State = "validating"
	StateSaving     State = "saving"
	StateClosed     State = "closed"
	StateFailed     State = "failed"
)

// ErrNotReady is returned when an operation needs a ready session.
var ErrNotReady = errors.New("editor: session is not ready")

// Entity is the draft under edit: a header menu item, footer block or tab.
type Entity interface {
	reconcile.Keyed
	VisibleHrefs() []model.HrefField
}

// TranslationStore is the slice of the translation cache the editor uses.
type TranslationStore interface {
	Has(key string) bool
	ValueFor(key, lang string) string
	CreateBatch(ctx context.Context, items []backend.KeyValues) error
	UpdateBatch(ctx context.Context, cells []backend.Cell) error
	Delete(ctx context.Context, keys []string) error
}

// Notifier receives operator-facing outcome messages, already localized.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

type nopNotifier struct{}

func (nopNotifier) Success(string) {}
func (nopNotifier) Error(string)   {}

// ValidationError carries per-field messages keyed by field path: a
// translation cell is addressed as "<key>.<lang>", a link field by the
// entity's own path such as "items.2.href".
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %d fields", len(e.Fields))
}

// PartialSaveError reports a structural save failure whose translation
// compensation also failed, leaving the listed keys orphaned on the
// backend until the scheduled sweep reports them.
type PartialSaveError struct {
	Cause    error
	Orphaned []string
}

func (e *PartialSaveError) Error() string {
	return fmt.Sprintf("structural save failed and %d created keys were not rolled back: %v", len(e.Orphaned), e.Cause)
}

func (e *PartialSaveError) Unwrap() error { return e.Cause }

// Config wires a session's collaborators.
type Config struct {
	Store    TranslationStore
	Notifier Notifier
	Logger   *slog.Logger

	// Languages are the enabled site languages; every visible key needs a
	// value in each of them.
	Languages []model.Language

	// UILang selects the console language for notifier messages.
	UILang string

	// Load fetches and clones the entity to edit.
	Load func(ctx context.Context) (Entity, error)

	// SaveStructure persists the draft entity itself, after its translation
	// keys have been reconciled.
	SaveStructure func(ctx context.Context, e Entity) error
}

// Session is one open edit dialog.
type Session struct {
	mu     sync.Mutex
	state  State
	cfg    Config
	draft  Entity
	before reconcile.KeySet

	// edits holds draft translation values, key -> lang -> value. Only
	// touched cells appear here; reads fall through to the store.
	edits map[string]map[string]string
}

// Open loads the entity and starts a session. The context governs the
// initial load; a cancelled context aborts before any draft exists.
func Open(ctx context.Context, cfg Config) (*Session, error) {
	if cfg.Store == nil || cfg.Load == nil || cfg.SaveStructure == nil {
		return nil, errors.New("editor: store, load and save hooks are required")
	}
	if cfg.Notifier == nil {
		cfg.Notifier = nopNotifier{}
	}
	if cfg.UILang == "" {
		cfg.UILang = "ru"
	}

	s := &Session{state: StateLoading, cfg: cfg, edits: make(map[string]map[string]string)}

	draft, err := cfg.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.draft = draft
	s.before = reconcile.Snapshot(draft)
	s.state = StateReady
	return s, nil
}

// State returns the session's current lifecycle phase.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Draft exposes the entity for structural mutation while the session is
// open. The caller must not retain it past Close.
func (s *Session) Draft() Entity {
	return s.draft
}

// Value returns the draft value for a translation cell, falling back to
// the store for untouched cells.
func (s *Session) Value(key, lang string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if langs, ok := s.edits[key]; ok {
		if v, ok := langs[lang]; ok {
			return v
		}
	}
	return s.cfg.Store.ValueFor(key, lang)
}

// SetValue records a draft translation value. Nothing reaches the backend
// until Save.
func (s *Session) SetValue(key, lang, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReady {
		return ErrNotReady
	}
	if s.edits[key] == nil {
		s.edits[key] = make(map[string]string)
	}
	s.edits[key][lang] = value
	return nil
}

// Validate checks the draft without touching the backend: every visible
// key must be a well-formed key path with a non-empty value in each
// enabled language, and every visible link must be filled and valid.
func (s *Session) Validate() *ValidationError {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReady {
		return &ValidationError{Fields: map[string]string{"session": ErrNotReady.Error()}}
	}
	s.state = StateValidating
	defer func() { s.state = StateReady }()

	fields := make(map[string]string)
	lang := s.cfg.UILang

	for _, key := range s.draft.VisibleKeys() {
		if !keypath.IsValidToken(key) {
			fields[key] = i18n.T(lang, "validation.invalid_key")
			continue
		}
		for _, l := range s.cfg.Languages {
			if !l.Enabled {
				continue
			}
			if strings.TrimSpace(s.valueLocked(key, l.Code)) == "" {
				fields[key+keypath.Separator+l.Code] = i18n.T(lang, "validation.required")
			}
		}
	}

	for _, href := range s.draft.VisibleHrefs() {
		switch {
		case strings.TrimSpace(href.Value) == "":
			fields[href.Field] = i18n.T(lang, "validation.required")
		case !keypath.IsValidHref(href.Value):
			fields[href.Field] = i18n.T(lang, "validation.invalid_href")
		}
	}

	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

// valueLocked is Value without re-locking. Caller holds s.mu.
func (s *Session) valueLocked(key, lang string) string {
	if langs, ok := s.edits[key]; ok {
		if v, ok := langs[lang]; ok {
			return v
		}
	}
	return s.cfg.Store.ValueFor(key, lang)
}

// Save validates the draft and commits it: deletes removed keys, creates
// new ones, patches edited cells, then persists the structure. A
// validation failure aborts before any request is made. If the structural
// save fails, keys created in this save are deleted again so the backend
// does not accumulate keys no entity references.
func (s *Session) Save(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateReady {
		s.mu.Unlock()
		return ErrNotReady
	}
	s.mu.Unlock()

	if verr := s.Validate(); verr != nil {
		return verr
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReady {
		return ErrNotReady
	}
	s.state = StateSaving

	diff := reconcile.Compute(s.before, s.draft)
	plan := reconcile.BuildPlan(diff, s.cfg.Store.Has)

	if err := s.cfg.Store.Delete(ctx, plan.Delete); err != nil {
		return s.abort(err)
	}

	creates := make([]backend.KeyValues, 0, len(plan.Create))
	for _, key := range plan.Create {
		values := make(map[string]string, len(s.cfg.Languages))
		for _, l := range s.cfg.Languages {
			if l.Enabled {
				values[l.Code] = s.valueLocked(key, l.Code)
			}
		}
		creates = append(creates, backend.KeyValues{Key: key, Values: values})
	}
	if err := s.cfg.Store.CreateBatch(ctx, creates); err != nil {
		return s.abort(err)
	}

	if err := s.cfg.Store.UpdateBatch(ctx, s.updateCells(plan.Update)); err != nil {
		return s.abort(err)
	}

	if err := s.cfg.SaveStructure(ctx, s.draft); err != nil {
		if derr := s.cfg.Store.Delete(ctx, plan.Create); derr != nil {
			s.state = StateFailed
			perr := &PartialSaveError{Cause: err, Orphaned: plan.Create}
			if s.cfg.Logger != nil {
				s.cfg.Logger.Error("structural save rollback failed",
					"cause", err, "rollback_error", derr, "orphaned", plan.Create)
			}
			s.cfg.Notifier.Error(i18n.T(s.cfg.UILang, "msg.partial_save", err))
			return perr
		}
		return s.abort(err)
	}

	s.state = StateClosed
	s.cfg.Notifier.Success(i18n.T(s.cfg.UILang, "msg.saved"))
	return nil
}

// updateCells collects the dirty cells for keys that already exist,
// ordered deterministically. Caller holds s.mu.
func (s *Session) updateCells(keys []string) []backend.Cell {
	var cells []backend.Cell
	for _, key := range keys {
		for lang, v := range s.edits[key] {
			cells = append(cells, backend.Cell{Key: key, Lang: lang, Value: v})
		}
	}
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Key != cells[j].Key {
			return cells[i].Key < cells[j].Key
		}
		return cells[i].Lang < cells[j].Lang
	})
	return cells
}

// abort returns the session to ready so the operator can retry, and
// surfaces the error through the notifier. Caller holds s.mu.
func (s *Session) abort(err error) error {
	s.state = StateReady
	if s.cfg.Logger != nil {
		s.cfg.Logger.Warn("save aborted", "error", err)
	}
	s.cfg.Notifier.Error(i18n.T(s.cfg.UILang, "msg.save_failed", err))
	return err
}

// Close discards the session. Draft edits are dropped; nothing reaches
// the backend.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateClosed && s.state != StateFailed {
		s.state = StateClosed
	}
}
