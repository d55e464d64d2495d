// Copyright (c) 2025-2026 Langdesk Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for operator authentication,
// rate limiting, CSRF protection and security headers.
package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/alexedwards/scs/v2"

	"github.com/langdesk/langdesk/internal/i18n"
	"github.com/langdesk/langdesk/internal/session"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// APIError is the JSON error envelope returned by the console API.
type APIError struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details,omitempty"`
	} `json:"error"`
}

// WriteAPIError writes a JSON error response.
func WriteAPIError(w http.ResponseWriter, statusCode int, code, message string, details map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	apiErr := APIError{}
	apiErr.Error.Code = code
	apiErr.Error.Message = message
	apiErr.Error.Details = details

	_ = json.NewEncoder(w).Encode(apiErr)
}

// Auth creates middleware that requires an authenticated operator session.
// API routes get a JSON 401; everything else is redirected to the login page.
func Auth(sm *scs.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !sm.GetBool(r.Context(), session.KeyAuthenticated) {
				if strings.HasPrefix(r.URL.Path, "/api/") {
					WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Authentication required", nil)
					return
				}
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Operator returns the operator name stored in the session, or empty
// if the request is unauthenticated.
func Operator(sm *scs.SessionManager, r *http.Request) string {
	return sm.GetString(r.Context(), session.KeyOperator)
}

// UILang returns the console UI language for the request. The session
// preference wins; otherwise the Accept-Language header is matched
// against the supported languages, falling back to the default.
func UILang(sm *scs.SessionManager, r *http.Request) string {
	if lang := sm.GetString(r.Context(), session.KeyUILang); lang != "" && i18n.IsSupported(lang) {
		return lang
	}
	if acceptLang := r.Header.Get("Accept-Language"); acceptLang != "" {
		if lang := i18n.MatchLanguage(acceptLang); lang != "" {
			return lang
		}
	}
	return i18n.DefaultLanguage()
}
