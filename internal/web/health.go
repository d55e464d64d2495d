// Copyright (c) 2025-2026 Langdesk Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package web

import (
	"net/http"
	"time"

	"github.com/langdesk/langdesk/internal/session"
)

// Health handles GET /healthz. Unauthenticated callers get the bare
// status; an authenticated operator also sees version and uptime.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	code := http.StatusOK
	if err := h.db.PingContext(r.Context()); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	body := map[string]any{"status": status}
	if h.sm.GetBool(r.Context(), session.KeyAuthenticated) {
		body["version"] = h.build.String()
		body["uptime"] = time.Since(h.startTime).Round(time.Second).String()
	}
	writeJSON(w, code, body)
}
