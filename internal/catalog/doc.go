// Copyright (c) 2025 The UFood Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package catalog is the typed client for the product microservice: listing
// search and CRUD, categories, and image upload. Listing validation and
// moderation live server-side; this client only shapes requests and decodes
// responses.
package catalog
