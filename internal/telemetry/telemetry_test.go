// Copyright (c) 2025 The UFood Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package telemetry

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestStorage(t *testing.T) *EventStorage {
	t.Helper()
	storage, err := OpenEventStorage(filepath.Join(t.TempDir(), "events.db"))
	if err != nil {
		t.Fatalf("open storage: %v", err)
	}
	t.Cleanup(func() { storage.Close() })
	return storage
}

func TestTrackerRecordsEvents(t *testing.T) {
	storage := newTestStorage(t)
	tracker := NewTracker(storage, true)
	ctx := context.Background()

	tracker.Record(ctx, EventUserLoggedIn, map[string]string{"method": "password"})
	tracker.Record(ctx, EventListingViewed, map[string]string{"listingId": "7"})

	events, err := tracker.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	for _, e := range events {
		if e.SessionID != tracker.SessionID() {
			t.Errorf("event %q session = %q, want %q", e.Name, e.SessionID, tracker.SessionID())
		}
		if e.ID == "" {
			t.Errorf("event %q has empty ID", e.Name)
		}
	}
}

func TestDisabledTrackerDropsSilently(t *testing.T) {
	storage := newTestStorage(t)
	tracker := NewTracker(storage, false)
	ctx := context.Background()

	tracker.Record(ctx, EventAppStarted, nil)

	events, err := tracker.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("disabled tracker persisted %d events", len(events))
	}
}

func TestNilTrackerIsSafe(t *testing.T) {
	var tracker *Tracker
	tracker.Record(context.Background(), EventAppStarted, nil)
	if tracker.SessionID() != "" {
		t.Error("nil tracker session ID should be empty")
	}
	if err := tracker.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestEventPropsRoundTrip(t *testing.T) {
	storage := newTestStorage(t)
	tracker := NewTracker(storage, true)
	ctx := context.Background()

	tracker.Record(ctx, EventListingSearched, map[string]string{"query": "empanada", "results": "12"})

	events, err := tracker.Recent(ctx, 1)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events", len(events))
	}
	if events[0].Props["query"] != "empanada" || events[0].Props["results"] != "12" {
		t.Errorf("props = %v", events[0].Props)
	}
}
