// Copyright (c) 2025-2026 Langdesk Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/langdesk/langdesk/internal/model"
)

// Queries wraps the database handle with typed query methods.
type Queries struct {
	db *sql.DB
}

// New creates a Queries instance over db.
func New(db *sql.DB) *Queries {
	return &Queries{db: db}
}

// CreateEventParams holds the fields for a new audit event.
type CreateEventParams struct {
	Level     string
	Category  string
	Message   string
	Operator  string
	Metadata  string
	CreatedAt time.Time
}

// CreateEvent inserts an audit event and returns it with its assigned ID.
func (q *Queries) CreateEvent(ctx context.Context, arg CreateEventParams) (model.Event, error) {
	if arg.Metadata == "" {
		arg.Metadata = "{}"
	}
	if arg.CreatedAt.IsZero() {
		arg.CreatedAt = time.Now().UTC()
	}

	res, err := q.db.ExecContext(ctx,
		`INSERT INTO events (level, category, message, operator, metadata, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		arg.Level, arg.Category, arg.Message, arg.Operator, arg.Metadata, arg.CreatedAt)
	if err != nil {
		return model.Event{}, fmt.Errorf("inserting event: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return model.Event{}, fmt.Errorf("reading event id: %w", err)
	}

	return model.Event{
		ID:        id,
		Level:     arg.Level,
		Category:  arg.Category,
		Message:   arg.Message,
		Operator:  arg.Operator,
		Metadata:  arg.Metadata,
		CreatedAt: arg.CreatedAt,
	}, nil
}

// ListEventsParams filters and paginates the event log.
type ListEventsParams struct {
	Category string // empty matches all categories
	Level    string // empty matches all levels
	Limit    int
	Offset   int
}

// ListEvents returns audit events, newest first.
func (q *Queries) ListEvents(ctx context.Context, arg ListEventsParams) ([]model.Event, error) {
	if arg.Limit <= 0 {
		arg.Limit = 50
	}

	rows, err := q.db.QueryContext(ctx,
		`SELECT id, level, category, message, operator, metadata, created_at
		 FROM events
		 WHERE (? = '' OR category = ?) AND (? = '' OR level = ?)
		 ORDER BY created_at DESC, id DESC
		 LIMIT ? OFFSET ?`,
		arg.Category, arg.Category, arg.Level, arg.Level, arg.Limit, arg.Offset)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []model.Event
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(&e.ID, &e.Level, &e.Category, &e.Message, &e.Operator, &e.Metadata, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// CountEvents returns the number of events matching the filter.
func (q *Queries) CountEvents(ctx context.Context, category, level string) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM events
		 WHERE (? = '' OR category = ?) AND (? = '' OR level = ?)`,
		category, category, level, level).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting events: %w", err)
	}
	return n, nil
}

// DeleteEventsBefore removes events older than cutoff and reports how many
// were deleted. Used by the scheduled retention job.
func (q *Queries) DeleteEventsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM events WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("deleting events: %w", err)
	}
	return res.RowsAffected()
}
