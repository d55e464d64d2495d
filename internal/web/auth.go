// Copyright (c) 2025-2026 Langdesk Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package web

import (
	"encoding/json"
	"net/http"

	"github.com/langdesk/langdesk/internal/i18n"
	"github.com/langdesk/langdesk/internal/middleware"
	"github.com/langdesk/langdesk/internal/session"
)

// operatorName is the single operator account of the console.
const operatorName = "admin"

// Login handles POST /login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	lang := h.uiLang(r)

	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ip := clientIP(r)

	if !h.verifier.Verify(req.Password) {
		if locked, _ := h.protection.RecordFailedAttempt(ip); locked {
			h.logger.Warn("operator login locked", "category", "auth", "ip", ip)
			writeJSONError(w, http.StatusTooManyRequests, i18n.T(lang, "auth.locked"))
			return
		}
		h.logger.Warn("operator login failed", "category", "auth", "ip", ip)
		writeJSONError(w, http.StatusUnauthorized, i18n.T(lang, "auth.invalid_login"))
		return
	}

	h.protection.RecordSuccessfulLogin(ip)

	// Rotate the session token on privilege change
	if err := h.sm.RenewToken(r.Context()); err != nil {
		h.logger.Error("session token renewal failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "session error")
		return
	}
	h.sm.Put(r.Context(), session.KeyAuthenticated, true)
	h.sm.Put(r.Context(), session.KeyOperator, operatorName)

	h.logger.Info("operator logged in", "category", "auth", "operator", operatorName, "ip", ip)
	writeJSONSuccess(w, map[string]any{"operator": operatorName})
}

// Logout handles POST /logout.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	operator := middleware.Operator(h.sm, r)
	if err := h.sm.Destroy(r.Context()); err != nil {
		h.logger.Error("session destroy failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "session error")
		return
	}
	if operator != "" {
		h.logger.Info("operator logged out", "category", "auth", "operator", operator)
	}
	writeJSONSuccess(w, nil)
}

// SessionInfo handles GET /api/session.
func (h *Handler) SessionInfo(w http.ResponseWriter, r *http.Request) {
	writeJSONSuccess(w, map[string]any{
		"operator": middleware.Operator(h.sm, r),
		"uiLang":   h.uiLang(r),
		"version":  h.build.String(),
	})
}

// SetUILang handles PUT /api/session/lang, storing the operator's console
// language preference.
func (h *Handler) SetUILang(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Lang string `json:"lang"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !i18n.IsSupported(req.Lang) {
		writeJSONError(w, http.StatusBadRequest, "unsupported language")
		return
	}

	h.sm.Put(r.Context(), session.KeyUILang, req.Lang)
	writeJSONSuccess(w, map[string]any{"uiLang": req.Lang})
}

// clientIP extracts the client address, trusting proxy headers the same
// way the login protection middleware does.
func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}
