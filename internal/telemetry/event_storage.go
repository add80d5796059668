// Copyright (c) 2025 The UFood Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package telemetry

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// =============================================================================
// EVENT STORAGE
// =============================================================================

const eventSchema = `
CREATE TABLE IF NOT EXISTS events (
	id         TEXT PRIMARY KEY,
	session_id TEXT NOT NULL,
	name       TEXT NOT NULL,
	props      TEXT NOT NULL DEFAULT '',
	at         INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_events_at ON events(at);
`

// EventStorage is the append-only SQLite log behind a Tracker.
type EventStorage struct {
	db *sql.DB
}

// OpenEventStorage opens (creating if needed) the event log at path.
func OpenEventStorage(path string) (*EventStorage, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("telemetry: open event log: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(eventSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("telemetry: init event log: %w", err)
	}
	return &EventStorage{db: db}, nil
}

// Append writes one event.
func (s *EventStorage) Append(ctx context.Context, e Event) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO events (id, session_id, name, props, at) VALUES (?, ?, ?, ?, ?)`,
		e.ID, e.SessionID, e.Name, propsJSON(e.Props), e.At.UnixMilli())
	if err != nil {
		return fmt.Errorf("telemetry: append: %w", err)
	}
	return nil
}

// Recent returns up to limit events, newest first.
func (s *EventStorage) Recent(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, name, props, at FROM events ORDER BY at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("telemetry: query: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var props string
		var at int64
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Name, &props, &at); err != nil {
			return nil, fmt.Errorf("telemetry: scan: %w", err)
		}
		if props != "" {
			if err := json.Unmarshal([]byte(props), &e.Props); err != nil {
				e.Props = nil
			}
		}
		e.At = time.UnixMilli(at).UTC()
		events = append(events, e)
	}
	return events, rows.Err()
}

// Close closes the underlying database.
func (s *EventStorage) Close() error {
	return s.db.Close()
}
