// Copyright (c) 2025 The UFood Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"strconv"
	"time"

	"github.com/GutSayN/ufood-tui/internal/store"
	"github.com/GutSayN/ufood-tui/internal/util"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// MaxLoginAttempts failed logins trigger a lockout.
	MaxLoginAttempts = 5

	// LockoutDuration is how long login stays blocked after the threshold.
	LockoutDuration = 15 * time.Minute
)

// =============================================================================
// LOCKOUT MANAGER
// =============================================================================

// LockoutManager persists the failed-login counter and lockout window in the
// secure store so the policy survives restarts. The counter is incremented in
// exactly one place (RecordFailure); callers must not count a failed attempt
// more than once.
type LockoutManager struct {
	store    *store.SecureStore
	max      int
	duration time.Duration
	now      func() time.Time
}

// NewLockoutManager creates a manager with the default threshold and window.
func NewLockoutManager(st *store.SecureStore) *LockoutManager {
	return &LockoutManager{
		store:    st,
		max:      MaxLoginAttempts,
		duration: LockoutDuration,
		now:      time.Now,
	}
}

// WithPolicy overrides the attempt threshold and lockout window.
func (l *LockoutManager) WithPolicy(maxAttempts int, duration time.Duration) *LockoutManager {
	if maxAttempts > 0 {
		l.max = maxAttempts
	}
	if duration > 0 {
		l.duration = duration
	}
	return l
}

// WithClock substitutes the time source, for tests.
func (l *LockoutManager) WithClock(now func() time.Time) *LockoutManager {
	l.now = now
	return l
}

// Remaining reports whether login is currently locked out and, if so, for how
// much longer. An expired window resets the persisted counters as a side
// effect, so the next failed attempt starts a fresh count.
func (l *LockoutManager) Remaining(ctx context.Context) (time.Duration, bool) {
	raw, ok, err := l.store.Get(ctx, keyLockoutStartedAt)
	if err != nil || !ok {
		return 0, false
	}
	startedAt, ok := util.ParseMillis(raw)
	if !ok {
		// Unreadable timestamp; treat as not locked rather than wedge login.
		l.Reset(ctx)
		return 0, false
	}
	elapsed := l.now().Sub(util.TimeFromMillis(startedAt))
	if elapsed >= l.duration {
		l.Reset(ctx)
		return 0, false
	}
	return l.duration - elapsed, true
}

// RecordFailure counts one failed login. When the threshold is reached it
// opens the lockout window and returns its full length.
func (l *LockoutManager) RecordFailure(ctx context.Context) (attempts int, lockedFor time.Duration) {
	attempts = l.attempts(ctx) + 1
	if err := l.store.Set(ctx, keyLoginAttempts, strconv.Itoa(attempts)); err != nil {
		// Degrade: the attempt still counts in-call, persistence catches up
		// on the next failure.
		return attempts, 0
	}
	if attempts >= l.max {
		startedAt := util.EpochMillis(l.now())
		_ = l.store.Set(ctx, keyLockoutStartedAt, util.FormatMillis(startedAt))
		return attempts, l.duration
	}
	return attempts, 0
}

// Reset clears the attempt counter and any open lockout window.
func (l *LockoutManager) Reset(ctx context.Context) {
	_ = l.store.Remove(ctx, keyLoginAttempts)
	_ = l.store.Remove(ctx, keyLockoutStartedAt)
}

func (l *LockoutManager) attempts(ctx context.Context) int {
	raw, ok, err := l.store.Get(ctx, keyLoginAttempts)
	if err != nil || !ok {
		return 0
	}
	n, convErr := strconv.Atoi(raw)
	if convErr != nil || n < 0 {
		return 0
	}
	return n
}

// remainingMinutes converts a lockout remainder to whole minutes, rounding
// up so the UI never promises an earlier retry than the policy allows.
func remainingMinutes(d time.Duration) int {
	minutes := int(d / time.Minute)
	if d%time.Minute != 0 {
		minutes++
	}
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}
