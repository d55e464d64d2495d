// Copyright (c) 2025-2026 Langdesk Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/langdesk/langdesk/internal/model"
)

// ListTabs fetches all tabs of the given kind.
func (c *Client) ListTabs(ctx context.Context, kind model.TabKind) ([]model.Tab, error) {
	query := url.Values{"type": {string(kind)}}
	var tabs []model.Tab
	if err := c.do(ctx, http.MethodGet, "/tabs", query, nil, &tabs); err != nil {
		return nil, err
	}
	return tabs, nil
}

// tabEnvelope wraps single-tab mutations with the kind discriminant.
type tabEnvelope struct {
	Type model.TabKind `json:"type"`
	Tab  *model.Tab    `json:"tab"`
}

// tabsMassEnvelope wraps bulk tab operations.
type tabsMassEnvelope struct {
	Type  model.TabKind `json:"type"`
	Items []model.Tab   `json:"items,omitempty"`
	IDs   []string      `json:"ids,omitempty"`
}

// CreateTab creates a tab; the backend assigns the canonical ID.
func (c *Client) CreateTab(ctx context.Context, tab *model.Tab) (*model.Tab, error) {
	var created model.Tab
	if err := c.do(ctx, http.MethodPost, "/tabs", nil, tabEnvelope{Type: tab.Kind, Tab: tab}, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateTab updates an existing tab.
func (c *Client) UpdateTab(ctx context.Context, tab *model.Tab) (*model.Tab, error) {
	var updated model.Tab
	if err := c.do(ctx, http.MethodPatch, "/tabs", nil, tabEnvelope{Type: tab.Kind, Tab: tab}, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// SaveTabsMass replaces the full ordered tab list of one kind, used after
// reordering.
func (c *Client) SaveTabsMass(ctx context.Context, kind model.TabKind, tabs []model.Tab) ([]model.Tab, error) {
	var saved []model.Tab
	if err := c.do(ctx, http.MethodPatch, "/tabs/mass", nil, tabsMassEnvelope{Type: kind, Items: tabs}, &saved); err != nil {
		return nil, err
	}
	return saved, nil
}

// DeleteTabs removes tabs of one kind by ID.
func (c *Client) DeleteTabs(ctx context.Context, kind model.TabKind, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return c.do(ctx, http.MethodDelete, "/tabs/mass", nil, tabsMassEnvelope{Type: kind, IDs: ids}, nil)
}
