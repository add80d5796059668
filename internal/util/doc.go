// Copyright (c) 2025 The UFood Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small shared helpers for the ufood client.
//
// # Contents
//
//   - AtomicWriteFile: crash-safe file writes (temp file + fsync + rename)
//   - Truncate / PadRight: display-width aware string helpers for the TUI
//   - Epoch conversions between time.Time and millisecond timestamps
package util
