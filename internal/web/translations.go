// Copyright (c) 2025-2026 Langdesk Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package web

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/langdesk/langdesk/internal/backend"
	"github.com/langdesk/langdesk/internal/i18n"
	"github.com/langdesk/langdesk/internal/keypath"
)

// Languages handles GET /api/languages.
func (h *Handler) Languages(w http.ResponseWriter, r *http.Request) {
	langs, err := h.translations.Languages(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSONSuccess(w, map[string]any{"languages": langs})
}

// ListTranslations handles GET /api/translations: the full transposed
// key -> {lang: value} payload.
func (h *Handler) ListTranslations(w http.ResponseWriter, r *http.Request) {
	if err := h.translations.LoadAll(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}

	payload := make(map[string]map[string]string, h.translations.Len())
	for _, key := range h.translations.Keys() {
		if values, ok := h.translations.Get(key); ok {
			payload[key] = values
		}
	}
	writeJSONSuccess(w, map[string]any{"translations": payload})
}

// CreateTranslations handles POST /api/translations.
func (h *Handler) CreateTranslations(w http.ResponseWriter, r *http.Request) {
	var items []backend.KeyValues
	if err := json.NewDecoder(r.Body).Decode(&items); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(items) == 0 {
		writeJSONError(w, http.StatusBadRequest, "no keys given")
		return
	}

	lang := h.uiLang(r)
	fields := make(map[string]string)
	for _, item := range items {
		if !keypath.IsValidToken(item.Key) {
			fields[item.Key] = i18n.T(lang, "validation.invalid_key")
		}
	}
	if len(fields) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"success": false,
			"error":   "validation_failed",
			"fields":  fields,
		})
		return
	}

	if err := h.translations.CreateBatch(r.Context(), items); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSONSuccess(w, map[string]any{"created": len(items)})
}

// UpdateTranslations handles PATCH /api/translations.
func (h *Handler) UpdateTranslations(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Items []backend.Cell `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Items) == 0 {
		writeJSONError(w, http.StatusBadRequest, "no cells given")
		return
	}

	if err := h.translations.UpdateBatch(r.Context(), req.Items); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSONSuccess(w, map[string]any{"updated": len(req.Items)})
}

// DeleteTranslations handles DELETE /api/translations.
func (h *Handler) DeleteTranslations(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Keys []string `json:"keys"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Keys) == 0 {
		writeJSONError(w, http.StatusBadRequest, "no keys given")
		return
	}

	if err := h.translations.Delete(r.Context(), req.Keys); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.logger.Info("translation keys deleted", "category", "translation",
		"operator", h.operator(r), "count", len(req.Keys))
	writeJSONSuccess(w, map[string]any{
		"deleted": len(req.Keys),
		"message": i18n.T(h.uiLang(r), "msg.deleted"),
	})
}

// ExportTranslations handles GET /api/translations/export, streaming the
// backend's archive through to the browser.
func (h *Handler) ExportTranslations(w http.ResponseWriter, r *http.Request) {
	opts := backend.ExportOptions{
		Codes:       r.URL.Query()["langKey"],
		EnabledOnly: r.URL.Query().Get("enabledOnly") == "true",
	}

	filename, body, err := h.translations.Export(r.Context(), opts)
	if err != nil {
		lang := h.uiLang(r)
		writeJSONError(w, http.StatusBadGateway, i18n.T(lang, "msg.export_failed", err))
		return
	}
	defer func() { _ = body.Close() }()

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if _, err := io.Copy(w, body); err != nil {
		h.logger.Warn("export stream interrupted", "error", err)
	}
}

// ImportTranslations handles POST /api/translations/import with one or
// more uploaded translation files.
func (h *Handler) ImportTranslations(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}

	var files []backend.ImportFile
	for _, fh := range r.MultipartForm.File["files"] {
		f, err := fh.Open()
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "unreadable upload: "+fh.Filename)
			return
		}
		defer func() { _ = f.Close() }()
		files = append(files, backend.ImportFile{Name: fh.Filename, Content: f})
	}
	if len(files) == 0 {
		writeJSONError(w, http.StatusBadRequest, "no files given")
		return
	}

	count, err := h.translations.Import(r.Context(), files)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.logger.Info("translations imported", "category", "translation",
		"operator", h.operator(r), "count", count)
	writeJSONSuccess(w, map[string]any{
		"imported": count,
		"message":  i18n.T(h.uiLang(r), "msg.import_done", count),
	})
}

// SuggestKey handles GET /api/translations/suggest: derives a key token
// from the human label the operator typed, so the console can prefill
// the key field of a new node. With a parent key the token is appended
// under it; with a parentHref an inherited href is proposed too.
func (h *Handler) SuggestKey(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	token := keypath.LabelToken(q.Get("label"))
	if token == "" {
		writeJSONError(w, http.StatusUnprocessableEntity,
			i18n.T(h.uiLang(r), "validation.invalid_key"))
		return
	}

	key := token
	if parent := q.Get("parent"); parent != "" {
		if !keypath.IsValidToken(parent) {
			writeJSONError(w, http.StatusUnprocessableEntity,
				i18n.T(h.uiLang(r), "validation.invalid_key"))
			return
		}
		key = keypath.ChildKey(parent, token)
	}

	payload := map[string]any{"token": token, "key": key}
	if q.Has("parentHref") {
		payload["href"] = keypath.InheritHref(q.Get("parentHref"), token)
	}
	writeJSONSuccess(w, payload)
}

// parseIntQuery reads an integer query parameter with a fallback.
func parseIntQuery(r *http.Request, name string, fallback int) int {
	if raw := r.URL.Query().Get(name); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			return n
		}
	}
	return fallback
}
