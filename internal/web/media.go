// Copyright (c) 2025-2026 Langdesk Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package web

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/langdesk/langdesk/internal/i18n"
)

// maxPromoUploadSize caps a mega-menu promo image upload.
const maxPromoUploadSize = 10 << 20 // 10 MB

// UploadPromo handles POST /api/uploads/promo: decodes and normalizes a
// mega-menu promo image and returns the URLs of the generated variants.
func (h *Handler) UploadPromo(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPromoUploadSize)
	if err := r.ParseMultipartForm(maxPromoUploadSize); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "missing file")
		return
	}
	defer func() { _ = file.Close() }()

	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	result, err := h.processor.ProcessPromo(file, id, header.Filename)
	if err != nil {
		writeJSONError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	variants := make(map[string]string, len(result.Variants))
	for name, path := range result.Variants {
		variants[name] = h.uploadURL(path)
	}

	h.logger.Info("promo image uploaded", "category", "menu",
		"operator", h.operator(r), "id", id,
		"width", result.Width, "height", result.Height)
	writeJSONSuccess(w, map[string]any{
		"id":       id,
		"width":    result.Width,
		"height":   result.Height,
		"mimeType": result.MimeType,
		"src":      h.uploadURL(result.FilePath),
		"variants": variants,
	})
}

// DeletePromo handles DELETE /api/uploads/promo/{id}.
func (h *Handler) DeletePromo(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.processor.DeleteImage(id); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.logger.Info("promo image deleted", "category", "menu",
		"operator", h.operator(r), "id", id)
	writeJSONSuccess(w, map[string]any{
		"message": i18n.T(h.uiLang(r), "msg.deleted"),
	})
}

// uploadURL converts an absolute upload path into its public URL.
func (h *Handler) uploadURL(path string) string {
	absBase, err := filepath.Abs(h.cfg.UploadsDir)
	if err != nil {
		return ""
	}
	rel, err := filepath.Rel(absBase, path)
	if err != nil {
		return ""
	}
	return "/uploads/" + filepath.ToSlash(rel)
}
