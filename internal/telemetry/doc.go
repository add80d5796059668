// Copyright (c) 2025 The UFood Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package telemetry records named usage events (logins, listing views,
// searches) in a local append-only SQLite log. It wraps the session and
// catalog layers from outside; nothing in those layers depends on it, and
// a disabled or broken sink never affects the wrapped call.
package telemetry
