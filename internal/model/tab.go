// Copyright (c) 2025-2026 Langdesk Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"strings"

	"github.com/langdesk/langdesk/internal/keypath"
)

// TabKind discriminates the two tab list presentations.
type TabKind string

// Tab kinds.
const (
	TabWithBackground TabKind = "with-background"
	TabUnderButton    TabKind = "underbutton"
)

// TabNamespace is the key prefix for tab entities.
const TabNamespace = "tabs"

// IsValidTabKind checks whether k is a known tab kind.
func IsValidTabKind(k TabKind) bool {
	return k == TabWithBackground || k == TabUnderButton
}

// TabEntry is one entry inside a tab list.
type TabEntry struct {
	ID             string `json:"id"`
	LabelKey       string `json:"labelKey"`
	DescriptionKey string `json:"descriptionKey,omitempty"`
	Href           string `json:"href"`
	Order          int    `json:"order"`
	IsVisible      bool   `json:"isVisible"`
}

// Tab is a tab list entity of either kind.
type Tab struct {
	ID        string     `json:"id"`
	Kind      TabKind    `json:"type"`
	TitleKey  string     `json:"titleKey"`
	Order     int        `json:"order"`
	IsVisible bool       `json:"isVisible"`
	Items     []TabEntry `json:"items"`
}

// KeyRoot returns the key namespace owned by this tab.
func (t *Tab) KeyRoot() string {
	return TabNamespace + keypath.Separator + string(t.Kind) + keypath.Separator + t.ID
}

// NewTab creates an empty visible tab of the given kind keyed under id.
func NewTab(id string, kind TabKind) *Tab {
	t := &Tab{ID: id, Kind: kind, IsVisible: true}
	t.TitleKey = keypath.ChildKey(t.KeyRoot(), "title")
	return t
}

// AddEntry appends a visible entry with freshly derived keys.
func (t *Tab) AddEntry() *TabEntry {
	token := "entry-" + NewToken()
	key := keypath.ChildKey(t.KeyRoot(), token)
	t.Items = append(t.Items, TabEntry{
		ID:             token,
		LabelKey:       keypath.ChildKey(key, "label"),
		DescriptionKey: keypath.ChildKey(key, "description"),
		Order:          len(t.Items),
		IsVisible:      true,
	})
	return &t.Items[len(t.Items)-1]
}

// RemoveEntry removes the entry at index i, keeping order values dense.
func (t *Tab) RemoveEntry(i int) bool {
	if i < 0 || i >= len(t.Items) {
		return false
	}
	t.Items = append(t.Items[:i], t.Items[i+1:]...)
	for j := range t.Items {
		t.Items[j].Order = j
	}
	return true
}

// Clone returns a deep copy for a single-owner edit draft.
func (t *Tab) Clone() *Tab {
	c := *t
	c.Items = append([]TabEntry(nil), t.Items...)
	return &c
}

// AllKeys returns every key referenced by the tab regardless of
// visibility.
func (t *Tab) AllKeys() []string {
	keys := make([]string, 0, 2*len(t.Items)+1)
	if t.TitleKey != "" {
		keys = append(keys, t.TitleKey)
	}
	for _, it := range t.Items {
		if it.LabelKey != "" {
			keys = append(keys, it.LabelKey)
		}
		if it.DescriptionKey != "" {
			keys = append(keys, it.DescriptionKey)
		}
	}
	return keys
}

// VisibleKeys returns the keys that must exist after a save.
func (t *Tab) VisibleKeys() []string {
	if !t.IsVisible {
		return nil
	}
	keys := make([]string, 0, 2*len(t.Items)+1)
	if t.TitleKey != "" {
		keys = append(keys, t.TitleKey)
	}
	for _, it := range t.Items {
		if !it.IsVisible {
			continue
		}
		if it.LabelKey != "" {
			keys = append(keys, it.LabelKey)
		}
		if it.DescriptionKey != "" {
			keys = append(keys, it.DescriptionKey)
		}
	}
	return keys
}

// Remap rewrites every key rooted at oldRoot to the same path under
// newRoot after the backend assigns the final tab ID.
func (t *Tab) Remap(oldRoot, newRoot string) {
	swap := func(k *string) {
		if *k != "" && keypath.IsDescendant(oldRoot, *k) {
			*k = newRoot + strings.TrimPrefix(*k, oldRoot)
		}
	}
	swap(&t.TitleKey)
	for i := range t.Items {
		swap(&t.Items[i].LabelKey)
		swap(&t.Items[i].DescriptionKey)
	}
}
