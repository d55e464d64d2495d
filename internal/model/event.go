// Copyright (c) 2025-2026 Langdesk Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Event levels
const (
	EventLevelInfo    = "info"
	EventLevelWarning = "warning"
	EventLevelError   = "error"
)

// Event categories
const (
	EventCategoryAuth        = "auth"
	EventCategoryMenu        = "menu"
	EventCategoryFooter      = "footer"
	EventCategoryTabs        = "tabs"
	EventCategoryTranslation = "translation"
	EventCategoryBackend     = "backend"
	EventCategorySystem      = "system"
)

// Event represents an audit log entry recorded by the console.
type Event struct {
	ID        int64     `json:"id"`
	Level     string    `json:"level"`
	Category  string    `json:"category"`
	Message   string    `json:"message"`
	Operator  string    `json:"operator,omitempty"` // console login, empty for system events
	Metadata  string    `json:"metadata"`           // JSON string
	CreatedAt time.Time `json:"createdAt"`
}
