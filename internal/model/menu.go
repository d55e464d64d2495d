// Copyright (c) 2025-2026 Langdesk Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the content entities managed through the console:
// header menu items, footer blocks, tabs and the languages they are
// translated into.
//
// Every translatable field on an entity holds a translation key, not a
// value. Keys are dot-segmented and hierarchical: a child node's key always
// extends its parent's key, so the full key set of an entity can be
// recovered by walking its tree.
package model

import (
	"encoding/json"
	"fmt"

	"github.com/langdesk/langdesk/internal/keypath"
)

// MenuKind discriminates the navigation entry variants.
type MenuKind string

// Navigation entry kinds.
const (
	MenuSimple   MenuKind = "simple"
	MenuDropdown MenuKind = "dropdown-simple"
	MenuMega     MenuKind = "dropdown-mega"
)

// HeaderMenuNamespace is the key prefix for header menu entries.
const HeaderMenuNamespace = "headerMenu.item"

// ValidMenuKinds lists all accepted menu kinds.
var ValidMenuKinds = []MenuKind{MenuSimple, MenuDropdown, MenuMega}

// IsValidMenuKind checks whether k is a known menu kind.
func IsValidMenuKind(k MenuKind) bool {
	for _, v := range ValidMenuKinds {
		if v == k {
			return true
		}
	}
	return false
}

// SubItem is a leaf navigation entry nested under a dropdown item or a
// mega-menu column.
type SubItem struct {
	LabelKey  string `json:"labelKey"`
	Href      string `json:"href"`
	Visible   *bool  `json:"visible,omitempty"`
	BadgeKey  string `json:"badgeKey,omitempty"`
	ShowBadge bool   `json:"showBadge,omitempty"`
}

// Column is a mega-menu column: a titled group of sub-items.
type Column struct {
	TitleKey string    `json:"titleKey"`
	Visible  *bool     `json:"visible,omitempty"`
	Items    []SubItem `json:"items"`
}

// MenuImage is an optional promotional image shown inside a mega menu.
type MenuImage struct {
	Src      string `json:"src"`
	Position string `json:"position"` // left, right
}

// MenuItem is one header navigation entry. Kind selects which of the
// optional collections is meaningful: Items for dropdown-simple, Columns
// and Image for dropdown-mega, Href for simple.
type MenuItem struct {
	ID        string     `json:"id"`
	Kind      MenuKind   `json:"type"`
	LabelKey  string     `json:"labelKey"`
	Href      string     `json:"href,omitempty"`
	Visible   *bool      `json:"visible,omitempty"`
	BadgeKey  string     `json:"badgeKey,omitempty"`
	ShowBadge bool       `json:"showBadge,omitempty"`
	Items     []SubItem  `json:"items,omitempty"`
	Columns   []Column   `json:"columns,omitempty"`
	Image     *MenuImage `json:"image,omitempty"`
}

// Visible semantics are tri-state for backward compatibility with legacy
// records that lack the flag: nil and true both mean visible, only an
// explicit false hides a node.

// IsShown reports whether a tri-state visibility flag means "visible".
func IsShown(v *bool) bool {
	return v == nil || *v
}

// KeyRoot returns the key namespace owned by this item, e.g.
// "headerMenu.item.a1b2c3".
func (m *MenuItem) KeyRoot() string {
	return HeaderMenuNamespace + keypath.Separator + m.ID
}

// NewMenuItem creates a simple menu item with a freshly derived label key
// rooted at the given identifier.
func NewMenuItem(id string) *MenuItem {
	m := &MenuItem{ID: id, Kind: MenuSimple}
	m.LabelKey = keypath.ChildKey(m.KeyRoot(), "label")
	return m
}

// Clone returns a deep copy of the item. The edit session clones once at
// open time and mutates its draft in place; the original is never touched.
func (m *MenuItem) Clone() *MenuItem {
	c := *m
	if m.Image != nil {
		img := *m.Image
		c.Image = &img
	}
	if m.Visible != nil {
		v := *m.Visible
		c.Visible = &v
	}
	c.Items = cloneSubItems(m.Items)
	if m.Columns != nil {
		c.Columns = make([]Column, len(m.Columns))
		for i, col := range m.Columns {
			c.Columns[i] = col
			if col.Visible != nil {
				v := *col.Visible
				c.Columns[i].Visible = &v
			}
			c.Columns[i].Items = cloneSubItems(col.Items)
		}
	}
	return &c
}

func cloneSubItems(items []SubItem) []SubItem {
	if items == nil {
		return nil
	}
	out := make([]SubItem, len(items))
	for i, it := range items {
		out[i] = it
		if it.Visible != nil {
			v := *it.Visible
			out[i].Visible = &v
		}
	}
	return out
}

// UnmarshalJSON validates the kind discriminant while decoding.
func (m *MenuItem) UnmarshalJSON(data []byte) error {
	type alias MenuItem
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	if a.Kind == "" {
		a.Kind = MenuSimple
	}
	if !IsValidMenuKind(a.Kind) {
		return fmt.Errorf("unknown menu item type %q", a.Kind)
	}
	*m = MenuItem(a)
	return nil
}

// AllKeys returns every translation key referenced anywhere in the item's
// tree, regardless of visibility. This is the historical superset the
// reconciler snapshots at dialog-open time to detect removals.
func (m *MenuItem) AllKeys() []string {
	var keys []string
	add := func(k string) {
		if k != "" {
			keys = append(keys, k)
		}
	}
	add(m.LabelKey)
	add(m.BadgeKey)
	switch m.Kind {
	case MenuSimple:
	case MenuDropdown:
		for _, it := range m.Items {
			add(it.LabelKey)
			add(it.BadgeKey)
		}
	case MenuMega:
		for _, col := range m.Columns {
			add(col.TitleKey)
			for _, it := range col.Items {
				add(it.LabelKey)
				add(it.BadgeKey)
			}
		}
	}
	return keys
}

// VisibleKeys returns the translation keys that must exist after a save:
// only nodes whose visibility is not explicitly false are walked, and a
// badge key counts only while its badge is shown.
func (m *MenuItem) VisibleKeys() []string {
	var keys []string
	add := func(k string) {
		if k != "" {
			keys = append(keys, k)
		}
	}
	if !IsShown(m.Visible) {
		return keys
	}
	add(m.LabelKey)
	if m.ShowBadge {
		add(m.BadgeKey)
	}
	switch m.Kind {
	case MenuSimple:
	case MenuDropdown:
		for _, it := range m.Items {
			if !IsShown(it.Visible) {
				continue
			}
			add(it.LabelKey)
			if it.ShowBadge {
				add(it.BadgeKey)
			}
		}
	case MenuMega:
		for _, col := range m.Columns {
			if !IsShown(col.Visible) {
				continue
			}
			add(col.TitleKey)
			for _, it := range col.Items {
				if !IsShown(it.Visible) {
					continue
				}
				add(it.LabelKey)
				if it.ShowBadge {
					add(it.BadgeKey)
				}
			}
		}
	}
	return keys
}
