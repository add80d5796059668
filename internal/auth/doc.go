// Copyright (c) 2025 The UFood Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth implements the client-side session lifecycle: login with
// failed-attempt lockout, registration, idle-session expiry with a background
// monitor, and the persisted session state behind all of it.
//
// The session manager is the only writer of the session keys in the secure
// store. UI layers call the manager's methods and render the typed errors it
// returns; they never touch storage or HTTP directly.
package auth
