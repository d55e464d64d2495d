// Copyright (c) 2025-2026 Langdesk Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/langdesk/langdesk/internal/backend"
	"github.com/langdesk/langdesk/internal/editor"
	"github.com/langdesk/langdesk/internal/i18n"
)

// writeJSON writes a JSON response with the given status.
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

// writeJSONError writes a JSON error response.
func writeJSONError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]any{
		"success": false,
		"error":   message,
	})
}

// writeJSONSuccess writes a JSON success response.
func writeJSONSuccess(w http.ResponseWriter, data map[string]any) {
	if data == nil {
		data = make(map[string]any)
	}
	data["success"] = true
	writeJSON(w, http.StatusOK, data)
}

// writeError maps domain errors onto HTTP responses: validation failures
// become 422 with per-field messages, backend rejections keep their
// status, a failed rollback reports the orphaned keys.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	lang := h.uiLang(r)

	var verr *editor.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"success": false,
			"error":   "validation_failed",
			"fields":  verr.Fields,
		})
		return
	}

	var perr *editor.PartialSaveError
	if errors.As(err, &perr) {
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success":  false,
			"error":    i18n.T(lang, "msg.partial_save", perr.Cause),
			"orphaned": perr.Orphaned,
		})
		return
	}

	var rerr *backend.RequestError
	if errors.As(err, &rerr) {
		status := rerr.Status
		// Transport failures carry no HTTP status
		if status < http.StatusBadRequest {
			status = http.StatusBadGateway
		}
		writeJSONError(w, status, rerr.Error())
		return
	}

	writeJSONError(w, http.StatusInternalServerError, err.Error())
}

// notes collects operator-facing messages from an edit session so the
// handler can return them in the response body.
type notes struct {
	successes []string
	errors    []string
}

func (n *notes) Success(msg string) { n.successes = append(n.successes, msg) }
func (n *notes) Error(msg string)   { n.errors = append(n.errors, msg) }

// message returns the most recent success message, or empty.
func (n *notes) message() string {
	if len(n.successes) == 0 {
		return ""
	}
	return n.successes[len(n.successes)-1]
}
