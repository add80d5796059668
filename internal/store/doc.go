// Copyright (c) 2025 The UFood Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store provides the client's local persistence layer.
//
// Two layers compose here:
//
//   - DeviceStore: the device's durable string key-value store. The SQLite
//     implementation is the production backend; tests use it against a
//     temp-dir database.
//   - SecureStore: a decorator that applies a reversible obfuscation
//     transform to every value before it reaches the device store.
//
// The obfuscation is deliberately NOT a security boundary. It keeps tokens
// and profile data from being greppable in the raw database file, nothing
// more. Anyone with the binary can reverse it. See Obfuscator.
package store
