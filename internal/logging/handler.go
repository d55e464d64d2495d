// Copyright (c) 2025-2026 Langdesk Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logging provides a custom slog handler that integrates with the
// audit event log. It forwards logs at WARN level and above to the
// database-backed event log so operator-affecting failures stay reviewable.
package logging

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"

	"github.com/langdesk/langdesk/internal/model"
	"github.com/langdesk/langdesk/internal/store"
)

// AuditHandler is a slog.Handler that wraps another handler and also writes
// WARN and ERROR level records to the audit event log.
type AuditHandler struct {
	inner   slog.Handler
	queries *store.Queries
	level   slog.Level // minimum level forwarded to the event log
}

// NewAuditHandler creates an AuditHandler that wraps the given handler.
// Records at WARN and above are written to both the wrapped handler and
// the event log.
func NewAuditHandler(inner slog.Handler, db *sql.DB) *AuditHandler {
	return &AuditHandler{
		inner:   inner,
		queries: store.New(db),
		level:   slog.LevelWarn,
	}
}

// NewAuditHandlerWithLevel creates an AuditHandler with a custom minimum level.
func NewAuditHandlerWithLevel(inner slog.Handler, db *sql.DB, level slog.Level) *AuditHandler {
	return &AuditHandler{
		inner:   inner,
		queries: store.New(db),
		level:   level,
	}
}

// Enabled implements slog.Handler.
func (h *AuditHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *AuditHandler) Handle(ctx context.Context, r slog.Record) error {
	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}

	if r.Level >= h.level {
		h.writeEvent(r)
	}

	return nil
}

// WithAttrs implements slog.Handler.
func (h *AuditHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &AuditHandler{
		inner:   h.inner.WithAttrs(attrs),
		queries: h.queries,
		level:   h.level,
	}
}

// WithGroup implements slog.Handler.
func (h *AuditHandler) WithGroup(name string) slog.Handler {
	return &AuditHandler{
		inner:   h.inner.WithGroup(name),
		queries: h.queries,
		level:   h.level,
	}
}

// writeEvent persists a log record as an audit event. A background context
// is used so the event lands even when the request context is cancelled.
func (h *AuditHandler) writeEvent(r slog.Record) {
	_, _ = h.queries.CreateEvent(context.Background(), store.CreateEventParams{
		Level:     eventLevel(r.Level),
		Category:  extractCategory(r),
		Message:   r.Message,
		Operator:  extractOperator(r),
		Metadata:  extractMetadata(r),
		CreatedAt: r.Time,
	})
}

// eventLevel converts a slog.Level to an event log level.
func eventLevel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return model.EventLevelError
	case level >= slog.LevelWarn:
		return model.EventLevelWarning
	default:
		return model.EventLevelInfo
	}
}

// extractCategory extracts a category from the record attributes, or
// infers one from common message patterns.
func extractCategory(r slog.Record) string {
	var category string

	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "category" {
			category = a.Value.String()
			return false
		}
		return true
	})

	if category != "" {
		return category
	}

	msg := strings.ToLower(r.Message)
	switch {
	case strings.Contains(msg, "auth") || strings.Contains(msg, "login") || strings.Contains(msg, "logout"):
		return model.EventCategoryAuth
	case strings.Contains(msg, "menu"):
		return model.EventCategoryMenu
	case strings.Contains(msg, "footer"):
		return model.EventCategoryFooter
	case strings.Contains(msg, "tab"):
		return model.EventCategoryTabs
	case strings.Contains(msg, "translation") || strings.Contains(msg, "import") || strings.Contains(msg, "export"):
		return model.EventCategoryTranslation
	case strings.Contains(msg, "backend") || strings.Contains(msg, "request"):
		return model.EventCategoryBackend
	default:
		return model.EventCategorySystem
	}
}

// extractOperator pulls the operator login from the record attributes.
func extractOperator(r slog.Record) string {
	var operator string
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "operator" {
			operator = a.Value.String()
			return false
		}
		return true
	})
	return operator
}

// extractMetadata collects remaining attributes into a JSON string.
func extractMetadata(r slog.Record) string {
	if r.NumAttrs() == 0 {
		return "{}"
	}

	var sb strings.Builder
	sb.WriteString("{")
	first := true

	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "category" || a.Key == "operator" {
			return true
		}
		if !first {
			sb.WriteString(",")
		}
		first = false
		sb.WriteString(`"`)
		sb.WriteString(escapeJSON(a.Key))
		sb.WriteString(`":"`)
		sb.WriteString(escapeJSON(a.Value.String()))
		sb.WriteString(`"`)
		return true
	})

	sb.WriteString("}")
	return sb.String()
}

// escapeJSON escapes special characters in a string for JSON.
func escapeJSON(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
