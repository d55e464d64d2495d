// Copyright (c) 2025-2026 Langdesk Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package backend

import (
	"context"
	"net/http"

	"github.com/langdesk/langdesk/internal/model"
)

// headerMenuEnvelope wraps the menu tree the way the backend stores it.
type headerMenuEnvelope struct {
	JSON []model.MenuItem `json:"json"`
}

// HeaderMenu fetches the full header menu tree.
func (c *Client) HeaderMenu(ctx context.Context) ([]model.MenuItem, error) {
	var items []model.MenuItem
	if err := c.do(ctx, http.MethodGet, "/header-menu", nil, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// SaveHeaderMenu replaces the stored header menu tree. Callers must have
// reconciled translations first: the tree references keys by name and the
// backend does not verify they exist.
func (c *Client) SaveHeaderMenu(ctx context.Context, items []model.MenuItem) ([]model.MenuItem, error) {
	var saved []model.MenuItem
	if err := c.do(ctx, http.MethodPatch, "/header-menu", nil, headerMenuEnvelope{JSON: items}, &saved); err != nil {
		return nil, err
	}
	return saved, nil
}
