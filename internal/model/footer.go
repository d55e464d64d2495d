// Copyright (c) 2025-2026 Langdesk Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"strings"

	"github.com/langdesk/langdesk/internal/keypath"
)

// FooterNamespace is the key prefix for footer menu blocks.
const FooterNamespace = "footer.block"

// FooterItem is one link inside a footer block.
type FooterItem struct {
	ID        string `json:"id"`
	LabelKey  string `json:"labelKey"`
	Href      string `json:"href"`
	Order     int    `json:"order"`
	IsVisible bool   `json:"isVisible"`
}

// FooterBlock is a titled column of links in the site footer.
type FooterBlock struct {
	ID        string       `json:"id"`
	TitleKey  string       `json:"titleKey"`
	Order     int          `json:"order"`
	IsVisible bool         `json:"isVisible"`
	Items     []FooterItem `json:"items"`
}

// KeyRoot returns the key namespace owned by this block.
func (b *FooterBlock) KeyRoot() string {
	return FooterNamespace + keypath.Separator + b.ID
}

// NewFooterBlock creates an empty visible block keyed under id.
func NewFooterBlock(id string) *FooterBlock {
	b := &FooterBlock{ID: id, IsVisible: true}
	b.TitleKey = keypath.ChildKey(b.KeyRoot(), "title")
	return b
}

// AddItem appends a visible link with a freshly derived label key.
func (b *FooterBlock) AddItem() *FooterItem {
	token := "item-" + NewToken()
	key := keypath.ChildKey(b.KeyRoot(), token)
	b.Items = append(b.Items, FooterItem{
		ID:        token,
		LabelKey:  keypath.ChildKey(key, "label"),
		Order:     len(b.Items),
		IsVisible: true,
	})
	return &b.Items[len(b.Items)-1]
}

// RemoveItem removes the item at index i, keeping order values dense.
func (b *FooterBlock) RemoveItem(i int) bool {
	if i < 0 || i >= len(b.Items) {
		return false
	}
	b.Items = append(b.Items[:i], b.Items[i+1:]...)
	for j := range b.Items {
		b.Items[j].Order = j
	}
	return true
}

// Clone returns a deep copy for a single-owner edit draft.
func (b *FooterBlock) Clone() *FooterBlock {
	c := *b
	c.Items = append([]FooterItem(nil), b.Items...)
	return &c
}

// AllKeys returns every key referenced by the block regardless of
// visibility.
func (b *FooterBlock) AllKeys() []string {
	keys := make([]string, 0, len(b.Items)+1)
	if b.TitleKey != "" {
		keys = append(keys, b.TitleKey)
	}
	for _, it := range b.Items {
		if it.LabelKey != "" {
			keys = append(keys, it.LabelKey)
		}
	}
	return keys
}

// VisibleKeys returns the keys that must exist after a save.
func (b *FooterBlock) VisibleKeys() []string {
	if !b.IsVisible {
		return nil
	}
	keys := make([]string, 0, len(b.Items)+1)
	if b.TitleKey != "" {
		keys = append(keys, b.TitleKey)
	}
	for _, it := range b.Items {
		if it.IsVisible && it.LabelKey != "" {
			keys = append(keys, it.LabelKey)
		}
	}
	return keys
}

// Remap rewrites every key rooted at oldRoot to the same path under
// newRoot after the backend assigns the final block ID.
func (b *FooterBlock) Remap(oldRoot, newRoot string) {
	swap := func(k *string) {
		if *k != "" && keypath.IsDescendant(oldRoot, *k) {
			*k = newRoot + strings.TrimPrefix(*k, oldRoot)
		}
	}
	swap(&b.TitleKey)
	for i := range b.Items {
		swap(&b.Items[i].LabelKey)
	}
}
