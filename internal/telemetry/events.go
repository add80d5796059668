// Copyright (c) 2025 The UFood Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package telemetry

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// EVENT NAMES
// =============================================================================

// Well-known event names. Free-form names are allowed; these are the ones
// the app emits itself.
const (
	EventAppStarted      = "app_started"
	EventUserLoggedIn    = "user_logged_in"
	EventUserLoggedOut   = "user_logged_out"
	EventUserRegistered  = "user_registered"
	EventSessionExpired  = "session_expired"
	EventListingViewed   = "listing_viewed"
	EventListingSearched = "listing_searched"
	EventListingCreated  = "listing_created"
)

// Event is one recorded occurrence.
type Event struct {
	ID        string            `json:"id"`
	SessionID string            `json:"sessionId"`
	Name      string            `json:"name"`
	Props     map[string]string `json:"props,omitempty"`
	At        time.Time         `json:"at"`
}

// =============================================================================
// TRACKER
// =============================================================================

// Tracker buffers and persists events for one app run. A nil or disabled
// tracker swallows events silently, so call sites never guard on it.
type Tracker struct {
	mu        sync.Mutex
	sessionID string
	storage   *EventStorage
	enabled   bool
	now       func() time.Time
}

// NewTracker opens a tracker over the given storage. A nil storage yields a
// disabled tracker.
func NewTracker(storage *EventStorage, enabled bool) *Tracker {
	return &Tracker{
		sessionID: uuid.NewString(),
		storage:   storage,
		enabled:   enabled && storage != nil,
		now:       time.Now,
	}
}

// SessionID returns the per-run session identifier attached to every event.
func (t *Tracker) SessionID() string {
	if t == nil {
		return ""
	}
	return t.sessionID
}

// Record persists one named event. Failures are logged and dropped; the
// tracked operation must never pay for a telemetry fault.
func (t *Tracker) Record(ctx context.Context, name string, props map[string]string) {
	if t == nil || !t.enabled {
		return
	}
	event := Event{
		ID:        uuid.NewString(),
		SessionID: t.sessionID,
		Name:      name,
		Props:     props,
		At:        t.now().UTC(),
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.storage.Append(ctx, event); err != nil {
		log.Printf("telemetry: drop event %q: %v", name, err)
	}
}

// Recent returns up to limit events, newest first.
func (t *Tracker) Recent(ctx context.Context, limit int) ([]Event, error) {
	if t == nil || t.storage == nil {
		return nil, nil
	}
	return t.storage.Recent(ctx, limit)
}

// Close flushes and closes the underlying storage.
func (t *Tracker) Close() error {
	if t == nil || t.storage == nil {
		return nil
	}
	return t.storage.Close()
}

func propsJSON(props map[string]string) string {
	if len(props) == 0 {
		return ""
	}
	data, err := json.Marshal(props)
	if err != nil {
		return ""
	}
	return string(data)
}
