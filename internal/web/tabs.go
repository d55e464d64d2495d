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

// ListTabs handles GET /api/tabs?type=.
func (h *Handler) ListTabs(w http.ResponseWriter, r *http.Request) {
	kind := model.TabKind(r.URL.Query().Get("type"))
	if !model.IsValidTabKind(kind) {
		writeJSONError(w, http.StatusBadRequest, "unknown tab type")
		return
	}

	tabs, err := h.client.ListTabs(r.Context(), kind)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSONSuccess(w, map[string]any{"tabs": tabs})
}

// tabRequest is the save payload of a tab dialog.
type tabRequest struct {
	Tab    model.Tab                    `json:"tab"`
	Values map[string]map[string]string `json:"values"`
}

// CreateTab handles POST /api/tabs. As with footer blocks, the backend
// canonicalizes the provisional ID before any translation key is created.
func (h *Handler) CreateTab(w http.ResponseWriter, r *http.Request) {
	var req tabRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !model.IsValidTabKind(req.Tab.Kind) {
		writeJSONError(w, http.StatusBadRequest, "unknown tab type")
		return
	}
	if req.Tab.ID == "" {
		writeJSONError(w, http.StatusBadRequest, "missing tab id")
		return
	}

	tab := req.Tab
	provisionalRoot := tab.KeyRoot()

	created, err := h.client.CreateTab(r.Context(), &tab)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if created.ID != "" && created.ID != tab.ID {
		tab.ID = created.ID
		tab.Remap(provisionalRoot, tab.KeyRoot())
		req.Values = remapValues(req.Values, provisionalRoot, tab.KeyRoot())
	}

	load := func(context.Context) (editor.Entity, error) { return &tab, nil }
	save := func(ctx context.Context, e editor.Entity) error {
		_, err := h.client.UpdateTab(ctx, e.(*model.Tab))
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

	h.logger.Info("tab created", "category", "tabs",
		"operator", h.operator(r), "id", tab.ID, "kind", tab.Kind)
	writeJSONSuccess(w, map[string]any{
		"tab":     &tab,
		"message": n.message(),
	})
}

// SaveTab handles PUT /api/tabs/{id}.
func (h *Handler) SaveTab(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req tabRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !model.IsValidTabKind(req.Tab.Kind) {
		writeJSONError(w, http.StatusBadRequest, "unknown tab type")
		return
	}
	if req.Tab.ID == "" {
		req.Tab.ID = id
	}
	if req.Tab.ID != id {
		writeJSONError(w, http.StatusBadRequest, "tab id mismatch")
		return
	}

	tabs, err := h.client.ListTabs(r.Context(), req.Tab.Kind)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var existing *model.Tab
	for i := range tabs {
		if tabs[i].ID == id {
			existing = &tabs[i]
			break
		}
	}
	if existing == nil {
		writeJSONError(w, http.StatusNotFound, "tab not found")
		return
	}

	load := func(context.Context) (editor.Entity, error) { return existing.Clone(), nil }
	save := func(ctx context.Context, e editor.Entity) error {
		_, err := h.client.UpdateTab(ctx, e.(*model.Tab))
		return err
	}

	n := &notes{}
	sess, err := h.openSession(r.Context(), h.uiLang(r), n, load, save)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	defer sess.Close()

	*sess.Draft().(*model.Tab) = req.Tab
	applyValues(sess, req.Values)

	if err := sess.Save(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.logger.Info("tab saved", "category", "tabs",
		"operator", h.operator(r), "id", id, "kind", req.Tab.Kind)
	writeJSONSuccess(w, map[string]any{
		"tab":     sess.Draft(),
		"message": n.message(),
	})
}

// ReorderTabs handles PATCH /api/tabs/mass: replaces the full ordered
// list of one kind after drag reordering. No keys change.
func (h *Handler) ReorderTabs(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Kind  model.TabKind `json:"type"`
		Items []model.Tab   `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !model.IsValidTabKind(req.Kind) {
		writeJSONError(w, http.StatusBadRequest, "unknown tab type")
		return
	}

	saved, err := h.client.SaveTabsMass(r.Context(), req.Kind, req.Items)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.logger.Info("tabs reordered", "category", "tabs",
		"operator", h.operator(r), "kind", req.Kind, "items", len(saved))
	writeJSONSuccess(w, map[string]any{"tabs": saved})
}

// DeleteTabs handles DELETE /api/tabs/mass.
func (h *Handler) DeleteTabs(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Kind model.TabKind `json:"type"`
		IDs  []string      `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !model.IsValidTabKind(req.Kind) {
		writeJSONError(w, http.StatusBadRequest, "unknown tab type")
		return
	}
	if len(req.IDs) == 0 {
		writeJSONError(w, http.StatusBadRequest, "no ids given")
		return
	}

	tabs, err := h.client.ListTabs(r.Context(), req.Kind)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	doomed := make(map[string]bool, len(req.IDs))
	for _, id := range req.IDs {
		doomed[id] = true
	}
	var keys []string
	for i := range tabs {
		if doomed[tabs[i].ID] {
			keys = append(keys, tabs[i].AllKeys()...)
		}
	}

	if err := h.client.DeleteTabs(r.Context(), req.Kind, req.IDs); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.translations.Delete(r.Context(), keys); err != nil {
		h.logger.Warn("tab keys not cleaned up", "category", "tabs",
			"operator", h.operator(r), "error", err)
	}

	h.logger.Info("tabs deleted", "category", "tabs",
		"operator", h.operator(r), "kind", req.Kind, "count", len(req.IDs))
	writeJSONSuccess(w, map[string]any{
		"message": i18n.T(h.uiLang(r), "msg.deleted"),
	})
}
