// Copyright (c) 2025-2026 Langdesk Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package web

import (
	"net/http"

	"github.com/langdesk/langdesk/internal/store"
)

// maxEventPageSize caps one page of the audit log.
const maxEventPageSize = 200

// Events handles GET /api/events with optional category/level filters
// and limit/offset pagination.
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 50)
	if limit > maxEventPageSize {
		limit = maxEventPageSize
	}

	params := store.ListEventsParams{
		Category: r.URL.Query().Get("category"),
		Level:    r.URL.Query().Get("level"),
		Limit:    limit,
		Offset:   parseIntQuery(r, "offset", 0),
	}

	events, err := h.queries.ListEvents(r.Context(), params)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	total, err := h.queries.CountEvents(r.Context(), params.Category, params.Level)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSONSuccess(w, map[string]any{
		"events": events,
		"total":  total,
	})
}
