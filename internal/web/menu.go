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

// HeaderMenu handles GET /api/header-menu.
func (h *Handler) HeaderMenu(w http.ResponseWriter, r *http.Request) {
	items, err := h.client.HeaderMenu(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSONSuccess(w, map[string]any{"items": items})
}

// ReorderHeaderMenu handles PATCH /api/header-menu: a pure structural
// replace used after drag reordering. No translation keys change, so the
// tree goes straight to the backend.
func (h *Handler) ReorderHeaderMenu(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Items []model.MenuItem `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	saved, err := h.client.SaveHeaderMenu(r.Context(), req.Items)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.logger.Info("header menu reordered", "category", "menu",
		"operator", h.operator(r), "items", len(saved))
	writeJSONSuccess(w, map[string]any{"items": saved})
}

// menuItemRequest is the save payload of one menu item edit dialog: the
// draft tree plus the translation values the operator typed.
type menuItemRequest struct {
	Item   model.MenuItem               `json:"item"`
	Values map[string]map[string]string `json:"values"`
}

// SaveMenuItem handles PUT /api/header-menu/items/{id}. The whole dialog
// outcome lands in one request: translation keys are reconciled against
// the item's previous state, then the updated tree is saved.
func (h *Handler) SaveMenuItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req menuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Item.ID == "" {
		req.Item.ID = id
	}
	if req.Item.ID != id {
		writeJSONError(w, http.StatusBadRequest, "item id mismatch")
		return
	}

	items, err := h.client.HeaderMenu(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	idx := -1
	for i := range items {
		if items[i].ID == id {
			idx = i
			break
		}
	}

	load := func(context.Context) (editor.Entity, error) {
		if idx >= 0 {
			// The reconciler diffs against the server-side state
			return items[idx].Clone(), nil
		}
		return &req.Item, nil
	}
	save := func(ctx context.Context, e editor.Entity) error {
		item := e.(*model.MenuItem)
		next := make([]model.MenuItem, len(items))
		copy(next, items)
		if idx >= 0 {
			next[idx] = *item
		} else {
			next = append(next, *item)
		}
		_, err := h.client.SaveHeaderMenu(ctx, next)
		return err
	}

	n := &notes{}
	sess, err := h.openSession(r.Context(), h.uiLang(r), n, load, save)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	defer sess.Close()

	if idx >= 0 {
		// Replace the draft contents with the posted tree; the key
		// snapshot was already taken from the server state.
		*sess.Draft().(*model.MenuItem) = req.Item
	}
	applyValues(sess, req.Values)

	if err := sess.Save(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.logger.Info("menu item saved", "category", "menu",
		"operator", h.operator(r), "id", id, "kind", req.Item.Kind)
	writeJSONSuccess(w, map[string]any{
		"item":    sess.Draft(),
		"message": n.message(),
	})
}

// DeleteMenuItem handles DELETE /api/header-menu/items/{id}: the item
// leaves the tree first, then its keys are removed. If the key cleanup
// fails the scheduled sweep will report the leftovers.
func (h *Handler) DeleteMenuItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	items, err := h.client.HeaderMenu(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	idx := -1
	for i := range items {
		if items[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		writeJSONError(w, http.StatusNotFound, "menu item not found")
		return
	}

	keys := items[idx].AllKeys()
	next := append(items[:idx:idx], items[idx+1:]...)
	if _, err := h.client.SaveHeaderMenu(r.Context(), next); err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.translations.Delete(r.Context(), keys); err != nil {
		h.logger.Warn("menu item keys not cleaned up", "category", "menu",
			"operator", h.operator(r), "id", id, "error", err)
	}

	h.logger.Info("menu item deleted", "category", "menu",
		"operator", h.operator(r), "id", id)
	writeJSONSuccess(w, map[string]any{
		"message": i18n.T(h.uiLang(r), "msg.deleted"),
	})
}
