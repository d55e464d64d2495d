// Copyright (c) 2025-2026 Langdesk Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "fmt"

// HrefField names one link field on an entity draft together with its
// current value. Field is a stable path usable as a validation error key,
// e.g. "href", "items.2.href", "columns.1.items.0.href".
type HrefField struct {
	Field string
	Value string
}

// VisibleHrefs returns the link fields that must be filled and valid before
// the item can be saved. Hidden nodes are skipped: their links are not
// rendered, so stale values there are harmless.
func (m *MenuItem) VisibleHrefs() []HrefField {
	var out []HrefField
	if !IsShown(m.Visible) {
		return out
	}
	switch m.Kind {
	case MenuSimple:
		out = append(out, HrefField{Field: "href", Value: m.Href})
	case MenuDropdown:
		for i, it := range m.Items {
			if !IsShown(it.Visible) {
				continue
			}
			out = append(out, HrefField{
				Field: fmt.Sprintf("items.%d.href", i),
				Value: it.Href,
			})
		}
	case MenuMega:
		for c, col := range m.Columns {
			if !IsShown(col.Visible) {
				continue
			}
			for i, it := range col.Items {
				if !IsShown(it.Visible) {
					continue
				}
				out = append(out, HrefField{
					Field: fmt.Sprintf("columns.%d.items.%d.href", c, i),
					Value: it.Href,
				})
			}
		}
	}
	return out
}

// VisibleHrefs returns the link fields on visible footer items.
func (b *FooterBlock) VisibleHrefs() []HrefField {
	var out []HrefField
	if !b.IsVisible {
		return out
	}
	for i, it := range b.Items {
		if !it.IsVisible {
			continue
		}
		out = append(out, HrefField{
			Field: fmt.Sprintf("items.%d.href", i),
			Value: it.Href,
		})
	}
	return out
}

// VisibleHrefs returns the link fields on visible tab entries.
func (t *Tab) VisibleHrefs() []HrefField {
	var out []HrefField
	if !t.IsVisible {
		return out
	}
	for i, it := range t.Items {
		if !it.IsVisible {
			continue
		}
		out = append(out, HrefField{
			Field: fmt.Sprintf("items.%d.href", i),
			Value: it.Href,
		})
	}
	return out
}
