// Copyright (c) 2025-2026 Langdesk Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package web exposes the console's HTTP surface: operator login, the
// JSON API the browser console talks to, uploaded promo images and the
// health endpoint.
package web

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/langdesk/langdesk/internal/auth"
	"github.com/langdesk/langdesk/internal/backend"
	"github.com/langdesk/langdesk/internal/config"
	"github.com/langdesk/langdesk/internal/editor"
	"github.com/langdesk/langdesk/internal/imaging"
	"github.com/langdesk/langdesk/internal/keypath"
	"github.com/langdesk/langdesk/internal/middleware"
	"github.com/langdesk/langdesk/internal/store"
	"github.com/langdesk/langdesk/internal/translation"
	"github.com/langdesk/langdesk/internal/version"
)

// requestTimeout bounds every console request.
const requestTimeout = time.Minute

// Per-IP request budget. Generous: the console autosaves and polls, a
// single operator legitimately produces bursts.
const (
	rateLimitRPS   = 100
	rateLimitBurst = 200
)

// Config wires the handler's collaborators.
type Config struct {
	Cfg          *config.Config
	DB           *sql.DB
	Sessions     *scs.SessionManager
	Client       *backend.Client
	Translations *translation.Store
	Verifier     *auth.Verifier
	Processor    *imaging.Processor
	Logger       *slog.Logger
	Build        version.Info
}

// Handler carries the console's HTTP handlers and their dependencies.
type Handler struct {
	cfg          *config.Config
	db           *sql.DB
	queries      *store.Queries
	sm           *scs.SessionManager
	client       *backend.Client
	translations *translation.Store
	verifier     *auth.Verifier
	protection   *middleware.LoginProtection
	limiter      *middleware.GlobalRateLimiter
	processor    *imaging.Processor
	logger       *slog.Logger
	build        version.Info
	startTime    time.Time
}

// NewHandler creates the console handler set.
func NewHandler(c Config) *Handler {
	return &Handler{
		cfg:          c.Cfg,
		db:           c.DB,
		queries:      store.New(c.DB),
		sm:           c.Sessions,
		client:       c.Client,
		translations: c.Translations,
		verifier:     c.Verifier,
		protection:   middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig()),
		limiter:      middleware.NewGlobalRateLimiter(rateLimitRPS, rateLimitBurst),
		processor:    c.Processor,
		logger:       c.Logger,
		build:        c.Build,
		startTime:    time.Now(),
	}
}

// Router builds the console's route tree.
func (h *Handler) Router() chi.Router {
	isDev := h.cfg.IsDevelopment()

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(h.limiter.Middleware())
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(isDev)))
	r.Use(h.sm.LoadAndSave)
	r.Use(middleware.SkipCSRF("/healthz"))
	r.Use(middleware.CSRF(middleware.DefaultCSRFConfig([]byte(h.cfg.SessionSecret), isDev)))

	r.Get("/healthz", h.Health)

	r.Group(func(r chi.Router) {
		r.Use(h.protection.Middleware(h.uiLang))
		r.Post("/login", h.Login)
	})
	r.Post("/logout", h.Logout)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(h.sm))

		r.Get("/session", h.SessionInfo)
		r.Put("/session/lang", h.SetUILang)

		r.Get("/languages", h.Languages)

		r.Route("/translations", func(r chi.Router) {
			r.Get("/", h.ListTranslations)
			r.Post("/", h.CreateTranslations)
			r.Patch("/", h.UpdateTranslations)
			r.Delete("/", h.DeleteTranslations)
			r.Get("/export", h.ExportTranslations)
			r.Post("/import", h.ImportTranslations)
			r.Get("/suggest", h.SuggestKey)
		})

		r.Route("/header-menu", func(r chi.Router) {
			r.Get("/", h.HeaderMenu)
			r.Patch("/", h.ReorderHeaderMenu)
			r.Put("/items/{id}", h.SaveMenuItem)
			r.Delete("/items/{id}", h.DeleteMenuItem)
		})

		r.Route("/footer", func(r chi.Router) {
			r.Get("/", h.ListFooterBlocks)
			r.Post("/", h.CreateFooterBlock)
			r.Put("/{id}", h.SaveFooterBlock)
			r.Delete("/{id}", h.DeleteFooterBlock)
			r.Post("/{id}/items", h.CreateFooterItem)
			r.Patch("/items/{id}", h.UpdateFooterItem)
			r.Delete("/items/{id}", h.DeleteFooterItem)
		})

		r.Route("/tabs", func(r chi.Router) {
			r.Get("/", h.ListTabs)
			r.Post("/", h.CreateTab)
			r.Put("/{id}", h.SaveTab)
			r.Patch("/mass", h.ReorderTabs)
			r.Delete("/mass", h.DeleteTabs)
		})

		r.Get("/events", h.Events)

		r.Post("/uploads/promo", h.UploadPromo)
		r.Delete("/uploads/promo/{id}", h.DeletePromo)
	})

	r.Handle("/uploads/*", http.StripPrefix("/uploads/",
		http.FileServer(http.Dir(h.cfg.UploadsDir))))

	return r
}

// uiLang resolves the console language for a request.
func (h *Handler) uiLang(r *http.Request) string {
	return middleware.UILang(h.sm, r)
}

// operator returns the logged-in operator name for audit attribution.
func (h *Handler) operator(r *http.Request) string {
	return middleware.Operator(h.sm, r)
}

// openSession prepares an edit session over the shared translation store:
// languages and the key snapshot must be loaded before the editor can
// diff against them.
func (h *Handler) openSession(ctx context.Context, uiLang string, n *notes,
	load func(context.Context) (editor.Entity, error),
	save func(context.Context, editor.Entity) error) (*editor.Session, error) {

	langs, err := h.translations.Languages(ctx)
	if err != nil {
		return nil, err
	}
	if err := h.translations.LoadAll(ctx); err != nil {
		return nil, err
	}

	return editor.Open(ctx, editor.Config{
		Store:         h.translations,
		Notifier:      n,
		Logger:        h.logger,
		Languages:     langs,
		UILang:        uiLang,
		Load:          load,
		SaveStructure: save,
	})
}

// applyValues records posted draft translation values on the session.
func applyValues(sess *editor.Session, values map[string]map[string]string) {
	for key, langs := range values {
		for lang, v := range langs {
			_ = sess.SetValue(key, lang, v)
		}
	}
}

// createValues creates translation keys from a posted value map, ordered
// deterministically by key.
func (h *Handler) createValues(ctx context.Context, values map[string]map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	items := make([]backend.KeyValues, 0, len(values))
	for key, langs := range values {
		items = append(items, backend.KeyValues{Key: key, Values: langs})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Key < items[j].Key })
	return h.translations.CreateBatch(ctx, items)
}

// remapValues rewrites value map keys rooted at oldRoot to newRoot,
// mirroring the entity key remap after the backend assigns the final ID.
func remapValues(values map[string]map[string]string, oldRoot, newRoot string) map[string]map[string]string {
	if oldRoot == newRoot {
		return values
	}
	out := make(map[string]map[string]string, len(values))
	for key, langs := range values {
		if keypath.IsDescendant(oldRoot, key) {
			key = newRoot + strings.TrimPrefix(key, oldRoot)
		}
		out[key] = langs
	}
	return out
}
