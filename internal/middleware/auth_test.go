// Copyright (c) 2025-2026 Langdesk Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/alexedwards/scs/v2"

	"github.com/langdesk/langdesk/internal/i18n"
	"github.com/langdesk/langdesk/internal/session"
)

func TestMain(m *testing.M) {
	if err := i18n.Init(slog.New(slog.NewTextHandler(io.Discard, nil))); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func newSessionManager() *scs.SessionManager {
	sm := scs.New()
	// In-memory store is enough for middleware tests
	return sm
}

// doSession runs a request through the session middleware with setup
// applied to the session first.
func doSession(t *testing.T, sm *scs.SessionManager, target string, setup func(r *http.Request), handler http.Handler) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)

	sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if setup != nil {
			setup(r)
		}
		handler.ServeHTTP(w, r)
	})).ServeHTTP(rec, req)

	return rec
}

func TestAuthRedirectsUnauthenticated(t *testing.T) {
	sm := newSessionManager()
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Error("handler must not run for unauthenticated request")
	})

	rec := doSession(t, sm, "/translations", nil, Auth(sm)(next))

	if rec.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Errorf("Location = %q, want /login", loc)
	}
}

func TestAuthReturnsJSONForAPI(t *testing.T) {
	sm := newSessionManager()
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Error("handler must not run for unauthenticated request")
	})

	rec := doSession(t, sm, "/api/translations", nil, Auth(sm)(next))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
}

func TestAuthAllowsAuthenticated(t *testing.T) {
	sm := newSessionManager()
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})

	rec := doSession(t, sm, "/api/translations", func(r *http.Request) {
		sm.Put(r.Context(), session.KeyAuthenticated, true)
	}, Auth(sm)(next))

	if !called {
		t.Error("handler was not called for authenticated request")
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestUILangPrefersSession(t *testing.T) {
	sm := newSessionManager()
	var got string

	doSession(t, sm, "/", func(r *http.Request) {
		sm.Put(r.Context(), session.KeyUILang, "en")
		r.Header.Set("Accept-Language", "ru-RU")
		got = UILang(sm, r)
	}, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	if got != "en" {
		t.Errorf("UILang = %q, want en", got)
	}
}

func TestUILangFallsBackToAcceptLanguage(t *testing.T) {
	sm := newSessionManager()
	var got string

	doSession(t, sm, "/", func(r *http.Request) {
		r.Header.Set("Accept-Language", "en-US,en;q=0.9")
		got = UILang(sm, r)
	}, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	if got != "en" {
		t.Errorf("UILang = %q, want en", got)
	}
}

func TestUILangDefault(t *testing.T) {
	sm := newSessionManager()
	var got string

	doSession(t, sm, "/", func(r *http.Request) {
		got = UILang(sm, r)
	}, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	if got != "ru" {
		t.Errorf("UILang = %q, want ru", got)
	}
}

func TestOperator(t *testing.T) {
	sm := newSessionManager()
	var got string

	doSession(t, sm, "/", func(r *http.Request) {
		sm.Put(r.Context(), session.KeyOperator, "admin")
		got = Operator(sm, r)
	}, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	if got != "admin" {
		t.Errorf("Operator = %q, want admin", got)
	}
}
