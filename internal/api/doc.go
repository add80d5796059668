// Copyright (c) 2025 The UFood Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client shared by every UFood service call.
//
// The client is the single choke point for outbound requests. Registered
// request interceptors run in order before dispatch and may mutate the
// request config (this is how the bearer token is attached); response
// interceptors run in order after the body is read (this is how session
// activity is tracked).
//
// Failure classification is central and deliberate:
//   - network failure  -> Error with Status 0
//   - timeout / abort  -> Error with Status 408
//   - non-2xx response -> Error with the server status and parsed body
//
// Upstream error copy depends on this mapping; do not collapse it.
package api
