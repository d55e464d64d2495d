// Copyright (c) 2025-2026 Langdesk Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/langdesk/langdesk/internal/keypath"
)

// NewToken returns a short random token used for provisional entity IDs
// and for key segments of freshly added nodes. Randomness keeps a key
// added after a removal from colliding with a surviving sibling.
func NewToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// NodeRef addresses one node inside a menu item tree.
// Column == -1 addresses outside the mega columns; Item == -1 addresses
// the column (or the root when Column is also -1).
type NodeRef struct {
	Column int
	Item   int
}

// Root addresses the menu item itself.
var Root = NodeRef{Column: -1, Item: -1}

// Sub addresses sub-item i of a dropdown-simple item.
func Sub(i int) NodeRef { return NodeRef{Column: -1, Item: i} }

// Col addresses column c of a mega item.
func Col(c int) NodeRef { return NodeRef{Column: c, Item: -1} }

// ColItem addresses item i inside column c of a mega item.
func ColItem(c, i int) NodeRef { return NodeRef{Column: c, Item: i} }

// SetKind converts the item between kinds, preserving the common fields
// and initializing kind-specific children only when the relevant
// collection does not already exist. Re-entering a previously populated
// kind is non-destructive: the old children (and their keys) survive.
func (m *MenuItem) SetKind(kind MenuKind) error {
	if !IsValidMenuKind(kind) {
		return fmt.Errorf("unknown menu item type %q", kind)
	}
	m.Kind = kind
	switch kind {
	case MenuSimple:
	case MenuDropdown:
		if m.Items == nil {
			m.Items = []SubItem{m.newSubItem(m.KeyRoot())}
		}
	case MenuMega:
		if m.Columns == nil {
			m.Columns = []Column{m.newColumn()}
		}
	}
	return nil
}

// AddSubItem appends a sub-item with a freshly derived key to a
// dropdown-simple item.
func (m *MenuItem) AddSubItem() error {
	if m.Kind != MenuDropdown {
		return fmt.Errorf("cannot add sub-item to %q item", m.Kind)
	}
	m.Items = append(m.Items, m.newSubItem(m.KeyRoot()))
	return nil
}

// RemoveSubItem removes the sub-item at index i.
func (m *MenuItem) RemoveSubItem(i int) error {
	if m.Kind != MenuDropdown {
		return fmt.Errorf("cannot remove sub-item from %q item", m.Kind)
	}
	if i < 0 || i >= len(m.Items) {
		return fmt.Errorf("sub-item index %d out of range", i)
	}
	m.Items = append(m.Items[:i], m.Items[i+1:]...)
	return nil
}

// AddColumn appends a column with a freshly derived title key to a
// mega item.
func (m *MenuItem) AddColumn() error {
	if m.Kind != MenuMega {
		return fmt.Errorf("cannot add column to %q item", m.Kind)
	}
	m.Columns = append(m.Columns, m.newColumn())
	return nil
}

// RemoveColumn removes the column at index c.
func (m *MenuItem) RemoveColumn(c int) error {
	if m.Kind != MenuMega {
		return fmt.Errorf("cannot remove column from %q item", m.Kind)
	}
	if c < 0 || c >= len(m.Columns) {
		return fmt.Errorf("column index %d out of range", c)
	}
	m.Columns = append(m.Columns[:c], m.Columns[c+1:]...)
	return nil
}

// AddColumnItem appends a sub-item to column c of a mega item.
func (m *MenuItem) AddColumnItem(c int) error {
	if m.Kind != MenuMega {
		return fmt.Errorf("cannot add column item to %q item", m.Kind)
	}
	if c < 0 || c >= len(m.Columns) {
		return fmt.Errorf("column index %d out of range", c)
	}
	col := &m.Columns[c]
	scope := strings.TrimSuffix(col.TitleKey, keypath.Separator+"title")
	col.Items = append(col.Items, m.newSubItem(scope))
	return nil
}

// RemoveColumnItem removes sub-item i from column c of a mega item.
func (m *MenuItem) RemoveColumnItem(c, i int) error {
	if m.Kind != MenuMega {
		return fmt.Errorf("cannot remove column item from %q item", m.Kind)
	}
	if c < 0 || c >= len(m.Columns) {
		return fmt.Errorf("column index %d out of range", c)
	}
	col := &m.Columns[c]
	if i < 0 || i >= len(col.Items) {
		return fmt.Errorf("column item index %d out of range", i)
	}
	col.Items = append(col.Items[:i], col.Items[i+1:]...)
	return nil
}

// ToggleVisible flips the visibility flag of the node addressed by ref.
// Only an explicit false means hidden; a node without the flag is treated
// as visible and toggling it first materializes the flag as true.
func (m *MenuItem) ToggleVisible(ref NodeRef) error {
	v, err := m.visibleAt(ref)
	if err != nil {
		return err
	}
	*v = toggleTriState(*v)
	return nil
}

func toggleTriState(v *bool) *bool {
	next := true
	if v != nil && *v {
		next = false
	}
	return &next
}

func (m *MenuItem) visibleAt(ref NodeRef) (**bool, error) {
	if ref.Column < 0 {
		if ref.Item < 0 {
			return &m.Visible, nil
		}
		if m.Kind != MenuDropdown || ref.Item >= len(m.Items) {
			return nil, fmt.Errorf("no sub-item at index %d", ref.Item)
		}
		return &m.Items[ref.Item].Visible, nil
	}
	if m.Kind != MenuMega || ref.Column >= len(m.Columns) {
		return nil, fmt.Errorf("no column at index %d", ref.Column)
	}
	col := &m.Columns[ref.Column]
	if ref.Item < 0 {
		return &col.Visible, nil
	}
	if ref.Item >= len(col.Items) {
		return nil, fmt.Errorf("no item at index %d in column %d", ref.Item, ref.Column)
	}
	return &col.Items[ref.Item].Visible, nil
}

// ToggleBadge toggles the badge of the node addressed by ref. A node
// without a badge key gets one synthesized and shown; hiding a shown badge
// clears its key, so reshowing later derives a fresh key and the old one
// is left for the reconciler to delete.
func (m *MenuItem) ToggleBadge(ref NodeRef) error {
	badge, show, scope, err := m.badgeAt(ref)
	if err != nil {
		return err
	}
	if *badge == "" {
		*badge = keypath.ChildKey(scope, "badge-"+NewToken())
		*show = true
		return nil
	}
	*show = !*show
	if !*show {
		*badge = ""
	}
	return nil
}

func (m *MenuItem) badgeAt(ref NodeRef) (badge *string, show *bool, scope string, err error) {
	if ref.Column < 0 {
		if ref.Item < 0 {
			return &m.BadgeKey, &m.ShowBadge, m.KeyRoot(), nil
		}
		if m.Kind != MenuDropdown || ref.Item >= len(m.Items) {
			return nil, nil, "", fmt.Errorf("no sub-item at index %d", ref.Item)
		}
		it := &m.Items[ref.Item]
		return &it.BadgeKey, &it.ShowBadge, subItemScope(it.LabelKey), nil
	}
	if m.Kind != MenuMega || ref.Column >= len(m.Columns) {
		return nil, nil, "", fmt.Errorf("no column at index %d", ref.Column)
	}
	col := &m.Columns[ref.Column]
	if ref.Item < 0 || ref.Item >= len(col.Items) {
		return nil, nil, "", fmt.Errorf("no item at index %d in column %d", ref.Item, ref.Column)
	}
	it := &col.Items[ref.Item]
	return &it.BadgeKey, &it.ShowBadge, subItemScope(it.LabelKey), nil
}

// subItemScope derives the key namespace of a sub-item from its label key.
func subItemScope(labelKey string) string {
	return strings.TrimSuffix(labelKey, keypath.Separator+"label")
}

// Remap rewrites every key rooted at oldRoot to the same path under
// newRoot. Called after the backend canonicalizes a provisional ID: the
// draft was keyed under the temp ID and all keys must move before the
// translations are resubmitted.
func (m *MenuItem) Remap(oldRoot, newRoot string) {
	swap := func(k *string) {
		if *k != "" && keypath.IsDescendant(oldRoot, *k) {
			*k = newRoot + strings.TrimPrefix(*k, oldRoot)
		}
	}
	swap(&m.LabelKey)
	swap(&m.BadgeKey)
	for i := range m.Items {
		swap(&m.Items[i].LabelKey)
		swap(&m.Items[i].BadgeKey)
	}
	for c := range m.Columns {
		swap(&m.Columns[c].TitleKey)
		for i := range m.Columns[c].Items {
			swap(&m.Columns[c].Items[i].LabelKey)
			swap(&m.Columns[c].Items[i].BadgeKey)
		}
	}
}

func (m *MenuItem) newSubItem(scope string) SubItem {
	token := "item-" + NewToken()
	key := keypath.ChildKey(scope, token)
	return SubItem{
		LabelKey: keypath.ChildKey(key, "label"),
	}
}

func (m *MenuItem) newColumn() Column {
	token := "column-" + NewToken()
	key := keypath.ChildKey(m.KeyRoot(), token)
	return Column{
		TitleKey: keypath.ChildKey(key, "title"),
		Items:    []SubItem{m.newSubItem(key)},
	}
}
