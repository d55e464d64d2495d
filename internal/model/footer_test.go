// Copyright (c) 2025-2026 Langdesk Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFooterBlockKeys(t *testing.T) {
	b := NewFooterBlock("b1")
	assert.Equal(t, "footer.block.b1.title", b.TitleKey)

	b.AddItem()
	b.AddItem()
	for _, key := range b.AllKeys() {
		if !strings.HasPrefix(key, b.KeyRoot()+".") {
			t.Errorf("key %q does not extend block root %q", key, b.KeyRoot())
		}
	}
	assert.Len(t, b.AllKeys(), 3)
}

func TestFooterRemoveItemReorders(t *testing.T) {
	b := NewFooterBlock("b1")
	b.AddItem()
	b.AddItem()
	b.AddItem()

	require.True(t, b.RemoveItem(1))
	require.Len(t, b.Items, 2)
	assert.Equal(t, 0, b.Items[0].Order)
	assert.Equal(t, 1, b.Items[1].Order)

	assert.False(t, b.RemoveItem(5))
}

func TestFooterVisibleKeys(t *testing.T) {
	b := NewFooterBlock("b1")
	b.AddItem()
	b.AddItem()
	b.Items[0].IsVisible = false

	visible := b.VisibleKeys()
	assert.NotContains(t, visible, b.Items[0].LabelKey)
	assert.Contains(t, visible, b.Items[1].LabelKey)

	b.IsVisible = false
	assert.Empty(t, b.VisibleKeys())
}

func TestFooterRemap(t *testing.T) {
	b := NewFooterBlock("tmp1")
	b.AddItem()

	oldRoot := b.KeyRoot()
	b.ID = "9"
	b.Remap(oldRoot, b.KeyRoot())

	for _, key := range b.AllKeys() {
		assert.True(t, strings.HasPrefix(key, "footer.block.9."), "key %q not remapped", key)
	}
}

func TestTabKeys(t *testing.T) {
	tab := NewTab("t1", TabWithBackground)
	assert.Equal(t, "tabs.with-background.t1.title", tab.TitleKey)

	tab.AddEntry()
	// Entry carries both a label and a description key.
	assert.Len(t, tab.AllKeys(), 3)

	tab.Items[0].IsVisible = false
	assert.Len(t, tab.VisibleKeys(), 1)
}

func TestTabKindValidation(t *testing.T) {
	assert.True(t, IsValidTabKind(TabWithBackground))
	assert.True(t, IsValidTabKind(TabUnderButton))
	assert.False(t, IsValidTabKind(TabKind("sideways")))
}
