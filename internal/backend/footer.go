// Copyright (c) 2025-2026 Langdesk Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package backend

import (
	"context"
	"net/http"

	"github.com/langdesk/langdesk/internal/model"
)

// ListFooterBlocks fetches all footer blocks with their items.
func (c *Client) ListFooterBlocks(ctx context.Context) ([]model.FooterBlock, error) {
	var blocks []model.FooterBlock
	if err := c.do(ctx, http.MethodGet, "/footer", nil, nil, &blocks); err != nil {
		return nil, err
	}
	return blocks, nil
}

// CreateFooterBlock creates a block. The backend assigns the canonical ID;
// the returned entity carries it and the caller must remap provisional
// keys before resubmitting translations.
func (c *Client) CreateFooterBlock(ctx context.Context, block *model.FooterBlock) (*model.FooterBlock, error) {
	var created model.FooterBlock
	if err := c.do(ctx, http.MethodPost, "/footer", nil, block, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateFooterBlock updates an existing block.
func (c *Client) UpdateFooterBlock(ctx context.Context, block *model.FooterBlock) (*model.FooterBlock, error) {
	var updated model.FooterBlock
	if err := c.do(ctx, http.MethodPatch, "/footer/"+block.ID, nil, block, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteFooterBlock removes a block and its items.
func (c *Client) DeleteFooterBlock(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/footer/"+id, nil, nil, nil)
}

// CreateFooterItem adds an item to a block.
func (c *Client) CreateFooterItem(ctx context.Context, blockID string, item *model.FooterItem) (*model.FooterItem, error) {
	var created model.FooterItem
	if err := c.do(ctx, http.MethodPost, "/footer/"+blockID+"/items", nil, item, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateFooterItem updates an existing footer item.
func (c *Client) UpdateFooterItem(ctx context.Context, item *model.FooterItem) (*model.FooterItem, error) {
	var updated model.FooterItem
	if err := c.do(ctx, http.MethodPatch, "/footer/items/"+item.ID, nil, item, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteFooterItem removes a footer item.
func (c *Client) DeleteFooterItem(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/footer/items/"+id, nil, nil, nil)
}
