// Copyright (c) 2025 The UFood Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui is the Bubble Tea front end: login and registration forms,
// the listing browser, and the listing detail view. It talks to the session
// manager and catalog client only through their public methods and renders
// the typed errors they return.
package ui
