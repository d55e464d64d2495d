// Copyright (c) 2025-2026 Langdesk Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package reconcile computes which translation keys must exist after an
// edit and which must be removed, so the backend never accumulates
// unreferenced keys nor loses a needed one.
//
// The algorithm is a two-set diff. At dialog-open time the caller
// snapshots the entity's full key set (every key ever referenced,
// visibility ignored). At save time the entity's visible key set is
// computed from the edited draft. Keys in the snapshot but not in the
// visible set are deleted; visible keys are upserted. A key present in
// both sets is always updated in place, never deleted and recreated.
package reconcile

import "sort"

// Keyed is implemented by entities whose translation keys the reconciler
// manages: header menu items, footer blocks and tabs.
type Keyed interface {
	// AllKeys returns every referenced key regardless of visibility.
	AllKeys() []string
	// VisibleKeys returns the keys that must exist after a save.
	VisibleKeys() []string
}

// KeySet is a set of translation keys.
type KeySet map[string]struct{}

// NewKeySet builds a set from a list of keys.
func NewKeySet(keys []string) KeySet {
	s := make(KeySet, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

// Has reports whether key is in the set.
func (s KeySet) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// Sorted returns the set's keys in lexical order.
func (s KeySet) Sorted() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Diff is the outcome of comparing the open-time snapshot with the
// save-time visible set.
type Diff struct {
	// Deleted keys existed before the edit but are no longer visible.
	Deleted []string
	// Kept keys must exist after the save (created or updated).
	Kept []string
}

// Empty reports whether the diff requires no work.
func (d Diff) Empty() bool {
	return len(d.Deleted) == 0 && len(d.Kept) == 0
}

// Snapshot captures the full key set of an entity before editing begins.
func Snapshot(e Keyed) KeySet {
	return NewKeySet(e.AllKeys())
}

// Compute diffs the before snapshot against the draft's visible keys.
// Results are sorted for deterministic request payloads.
func Compute(before KeySet, draft Keyed) Diff {
	after := NewKeySet(draft.VisibleKeys())

	var d Diff
	for k := range before {
		if !after.Has(k) {
			d.Deleted = append(d.Deleted, k)
		}
	}
	d.Kept = after.Sorted()
	sort.Strings(d.Deleted)
	return d
}

// Plan splits a diff's kept keys into creations and updates based on
// which keys the translation store already knows about.
type Plan struct {
	Create []string
	Update []string
	Delete []string
}

// BuildPlan prepares the backend operations for a diff. known reports
// whether a key already exists in the store. Deleted keys the store has
// never seen are dropped: a node hidden before its entity's first save
// references a key that was never created, so there is nothing to
// delete and the backend would reject the request.
func BuildPlan(d Diff, known func(key string) bool) Plan {
	var p Plan
	for _, k := range d.Deleted {
		if known(k) {
			p.Delete = append(p.Delete, k)
		}
	}
	for _, k := range d.Kept {
		if known(k) {
			p.Update = append(p.Update, k)
		} else {
			p.Create = append(p.Create, k)
		}
	}
	return p
}

// Orphans returns the keys under the given namespaces that no entity in
// entities references. Used by the scheduled sweep to report keys that
// leaked past save-time reconciliation (e.g. after a failed save).
func Orphans(storeKeys []string, entities []Keyed, inScope func(key string) bool) []string {
	referenced := make(KeySet)
	for _, e := range entities {
		for _, k := range e.AllKeys() {
			referenced[k] = struct{}{}
		}
	}

	var orphans []string
	for _, k := range storeKeys {
		if !inScope(k) {
			continue
		}
		if !referenced.Has(k) {
			orphans = append(orphans, k)
		}
	}
	sort.Strings(orphans)
	return orphans
}
