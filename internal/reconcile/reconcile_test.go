// Copyright (c) 2025-2026 Langdesk Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package reconcile

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/langdesk/langdesk/internal/model"
)

func TestComputeNoChanges(t *testing.T) {
	m := model.NewMenuItem("x")
	require.NoError(t, m.SetKind(model.MenuDropdown))

	before := Snapshot(m)
	d := Compute(before, m)

	assert.Empty(t, d.Deleted)
	assert.ElementsMatch(t, m.VisibleKeys(), d.Kept)
}

func TestComputeRemovedSubItem(t *testing.T) {
	m := model.NewMenuItem("x")
	require.NoError(t, m.SetKind(model.MenuDropdown))
	require.NoError(t, m.AddSubItem())
	removedKey := m.Items[0].LabelKey

	before := Snapshot(m)
	require.NoError(t, m.RemoveSubItem(0))

	d := Compute(before, m)
	assert.Equal(t, []string{removedKey}, d.Deleted)
	assert.NotContains(t, d.Kept, removedKey)
	assert.Contains(t, d.Kept, m.Items[0].LabelKey)
	assert.Contains(t, d.Kept, m.LabelKey)
}

func TestComputeHiddenNodeDeleted(t *testing.T) {
	m := model.NewMenuItem("x")
	require.NoError(t, m.SetKind(model.MenuDropdown))
	require.NoError(t, m.ToggleBadge(model.Sub(0)))
	labelKey := m.Items[0].LabelKey
	badgeKey := m.Items[0].BadgeKey

	before := Snapshot(m)

	// Hide the sub-item: its label and badge keys must go.
	require.NoError(t, m.ToggleVisible(model.Sub(0)))
	require.NoError(t, m.ToggleVisible(model.Sub(0)))
	require.False(t, *m.Items[0].Visible)

	d := Compute(before, m)
	assert.Contains(t, d.Deleted, labelKey)
	assert.Contains(t, d.Deleted, badgeKey)
}

func TestComputeSurvivorNeverChurned(t *testing.T) {
	// A key visible before and after an edit must land in Kept only,
	// even when siblings were added and removed around it.
	m := model.NewMenuItem("x")
	require.NoError(t, m.SetKind(model.MenuMega))
	survivor := m.Columns[0].Items[0].LabelKey

	before := Snapshot(m)

	require.NoError(t, m.AddColumn())
	require.NoError(t, m.AddColumnItem(0))
	require.NoError(t, m.RemoveColumn(1))
	require.NoError(t, m.RemoveColumnItem(0, 1))

	d := Compute(before, m)
	assert.Contains(t, d.Kept, survivor)
	assert.NotContains(t, d.Deleted, survivor)
}

func TestComputeMegaMenuEditSequence(t *testing.T) {
	// Arbitrary add/remove/toggle sequence on a mega item: the visible
	// set after the edit must be exactly Kept, and everything the
	// snapshot had beyond it must be in Deleted.
	m := model.NewMenuItem("mega")
	require.NoError(t, m.SetKind(model.MenuMega))
	require.NoError(t, m.AddColumn())
	require.NoError(t, m.AddColumnItem(0))
	require.NoError(t, m.AddColumnItem(1))
	require.NoError(t, m.ToggleBadge(model.ColItem(1, 0)))

	before := Snapshot(m)

	require.NoError(t, m.RemoveColumnItem(0, 0))
	require.NoError(t, m.ToggleBadge(model.ColItem(1, 0))) // hide badge, key cleared
	require.NoError(t, m.ToggleVisible(model.Col(1)))
	require.NoError(t, m.ToggleVisible(model.Col(1))) // now explicitly hidden
	require.NoError(t, m.AddColumnItem(0))

	d := Compute(before, m)

	after := NewKeySet(m.VisibleKeys())
	for _, k := range d.Kept {
		assert.True(t, after.Has(k), "kept key %q not visible", k)
	}
	for _, k := range d.Deleted {
		assert.False(t, after.Has(k), "deleted key %q still visible", k)
		assert.True(t, before.Has(k), "deleted key %q never existed", k)
	}
	// Deleted and Kept are disjoint by construction.
	kept := NewKeySet(d.Kept)
	for _, k := range d.Deleted {
		assert.False(t, kept.Has(k))
	}
}

func TestBuildPlanSplitsCreatesAndUpdates(t *testing.T) {
	m := model.NewMenuItem("x")
	require.NoError(t, m.SetKind(model.MenuDropdown))
	before := Snapshot(m)

	require.NoError(t, m.AddSubItem())
	newKey := m.Items[1].LabelKey

	d := Compute(before, m)
	p := BuildPlan(d, before.Has)

	assert.Contains(t, p.Create, newKey)
	assert.NotContains(t, p.Update, newKey)
	assert.Contains(t, p.Update, m.LabelKey)
	assert.Empty(t, p.Delete)
}

func TestBuildPlanDropsNeverCreatedDeletes(t *testing.T) {
	// A node hidden before its entity's first save: the snapshot holds the
	// key, the store has never seen it, so the plan must not delete it.
	m := model.NewMenuItem("x")
	require.NoError(t, m.SetKind(model.MenuDropdown))
	require.NoError(t, m.AddSubItem())

	before := Snapshot(m)

	require.NoError(t, m.ToggleVisible(model.Sub(1)))
	require.NoError(t, m.ToggleVisible(model.Sub(1)))
	require.False(t, *m.Items[1].Visible)

	d := Compute(before, m)
	require.Contains(t, d.Deleted, m.Items[1].LabelKey)

	p := BuildPlan(d, func(string) bool { return false })
	assert.Empty(t, p.Delete)
	assert.ElementsMatch(t, d.Kept, p.Create)
}

func TestOrphans(t *testing.T) {
	m := model.NewMenuItem("x")
	b := model.NewFooterBlock("b1")

	storeKeys := append(m.AllKeys(), b.AllKeys()...)
	storeKeys = append(storeKeys, "headerMenu.item.ghost.label", "unrelated.page.title")

	orphans := Orphans(storeKeys, []Keyed{m, b}, func(key string) bool {
		return strings.HasPrefix(key, "headerMenu.") || strings.HasPrefix(key, "footer.")
	})

	assert.Equal(t, []string{"headerMenu.item.ghost.label"}, orphans)
}
