// Copyright (c) 2025-2026 Langdesk Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package web

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/langdesk/langdesk/internal/editor"
	"github.com/langdesk/langdesk/internal/i18n"
	"github.com/langdesk/langdesk/internal/model"
)

// ListFooterBlocks handles GET /api/footer.
func (h *Handler) ListFooterBlocks(w http.ResponseWriter, r *http.Request) {
	blocks, err := h.client.ListFooterBlocks(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSONSuccess(w, map[string]any{"blocks": blocks})
}

// footerBlockRequest is the save payload of a footer block dialog.
type footerBlockRequest struct {
	Block  model.FooterBlock            `json:"block"`
	Values map[string]map[string]string `json:"values"`
}

// CreateFooterBlock handles POST /api/footer. The block arrives with a
// provisional client-side ID; the backend assigns the canonical one, the
// keys are remapped under it, and only then are translations created.
func (h *Handler) CreateFooterBlock(w http.ResponseWriter, r *http.Request) {
	var req footerBlockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Block.ID == "" {
		writeJSONError(w, http.StatusBadRequest, "missing block id")
		return
	}

	block := req.Block
	provisionalRoot := block.KeyRoot()

	created, err := h.client.CreateFooterBlock(r.Context(), &block)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if created.ID != "" && created.ID != block.ID {
		block.ID = created.ID
		block.Remap(provisionalRoot, block.KeyRoot())
		req.Values = remapValues(req.Values, provisionalRoot, block.KeyRoot())
	}

	load := func(context.Context) (editor.Entity, error) { return &block, nil }
	save := func(ctx context.Context, e editor.Entity) error {
		_, err := h.client.UpdateFooterBlock(ctx, e.(*model.FooterBlock))
		return err
	}

	n := &notes{}
	sess, err := h.openSession(r.Context(), h.uiLang(r), n, load, save)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	defer sess.Close()

	applyValues(sess, req.Values)
	if err := sess.Save(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.logger.Info("footer block created", "category", "footer",
		"operator", h.operator(r), "id", block.ID)
	writeJSONSuccess(w, map[string]any{
		"block":   &block,
		"message": n.message(),
	})
}

// SaveFooterBlock handles PUT /api/footer/{id}.
func (h *Handler) SaveFooterBlock(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req footerBlockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Block.ID == "" {
		req.Block.ID = id
	}
	if req.Block.ID != id {
		writeJSONError(w, http.StatusBadRequest, "block id mismatch")
		return
	}

	existing, err := h.findFooterBlock(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if existing == nil {
		writeJSONError(w, http.StatusNotFound, "footer block not found")
		return
	}

	load := func(context.Context) (editor.Entity, error) { return existing.Clone(), nil }
	save := func(ctx context.Context, e editor.Entity) error {
		_, err := h.client.UpdateFooterBlock(ctx, e.(*model.FooterBlock))
		return err
	}

	n := &notes{}
	sess, err := h.openSession(r.Context(), h.uiLang(r), n, load, save)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	defer sess.Close()

	*sess.Draft().(*model.FooterBlock) = req.Block
	applyValues(sess, req.Values)

	if err := sess.Save(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.logger.Info("footer block saved", "category", "footer",
		"operator", h.operator(r), "id", id)
	writeJSONSuccess(w, map[string]any{
		"block":   sess.Draft(),
		"message": n.message(),
	})
}

// DeleteFooterBlock handles DELETE /api/footer/{id}.
func (h *Handler) DeleteFooterBlock(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	block, err := h.findFooterBlock(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if block == nil {
		writeJSONError(w, http.StatusNotFound, "footer block not found")
		return
	}

	if err := h.client.DeleteFooterBlock(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.translations.Delete(r.Context(), block.AllKeys()); err != nil {
		h.logger.Warn("footer block keys not cleaned up", "category", "footer",
			"operator", h.operator(r), "id", id, "error", err)
	}

	h.logger.Info("footer block deleted", "category", "footer",
		"operator", h.operator(r), "id", id)
	writeJSONSuccess(w, map[string]any{
		"message": i18n.T(h.uiLang(r), "msg.deleted"),
	})
}

// CreateFooterItem handles POST /api/footer/{id}/items: adds one link to
// an existing block, creating its label key alongside.
func (h *Handler) CreateFooterItem(w http.ResponseWriter, r *http.Request) {
	blockID := chi.URLParam(r, "id")

	var req struct {
		Item   model.FooterItem             `json:"item"`
		Values map[string]map[string]string `json:"values"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.client.CreateFooterItem(r.Context(), blockID, &req.Item)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.createValues(r.Context(), req.Values); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.logger.Info("footer item created", "category", "footer",
		"operator", h.operator(r), "block", blockID, "id", created.ID)
	writeJSONSuccess(w, map[string]any{"item": created})
}

// UpdateFooterItem handles PATCH /api/footer/items/{id}.
func (h *Handler) UpdateFooterItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var item model.FooterItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if item.ID == "" {
		item.ID = id
	}
	if item.ID != id {
		writeJSONError(w, http.StatusBadRequest, "item id mismatch")
		return
	}

	updated, err := h.client.UpdateFooterItem(r.Context(), &item)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSONSuccess(w, map[string]any{"item": updated})
}

// DeleteFooterItem handles DELETE /api/footer/items/{id}.
func (h *Handler) DeleteFooterItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	// The item's label key comes from the stored block, not the request
	var labelKey string
	blocks, err := h.client.ListFooterBlocks(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	for i := range blocks {
		for _, it := range blocks[i].Items {
			if it.ID == id {
				labelKey = it.LabelKey
			}
		}
	}

	if err := h.client.DeleteFooterItem(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	if labelKey != "" {
		if err := h.translations.Delete(r.Context(), []string{labelKey}); err != nil {
			h.logger.Warn("footer item key not cleaned up", "category", "footer",
				"operator", h.operator(r), "id", id, "error", err)
		}
	}

	h.logger.Info("footer item deleted", "category", "footer",
		"operator", h.operator(r), "id", id)
	writeJSONSuccess(w, map[string]any{
		"message": i18n.T(h.uiLang(r), "msg.deleted"),
	})
}

// findFooterBlock returns the stored block with the given ID, or nil.
func (h *Handler) findFooterBlock(ctx context.Context, id string) (*model.FooterBlock, error) {
	blocks, err := h.client.ListFooterBlocks(ctx)
	if err != nil {
		return nil, err
	}
	for i := range blocks {
		if blocks[i].ID == id {
			return &blocks[i], nil
		}
	}
	return nil, nil
}
