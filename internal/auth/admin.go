// Copyright (c) 2025 The UFood Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"net/url"
)

// =============================================================================
// ADMIN OPERATIONS
// =============================================================================

// The role gate here is a UX convenience: the service enforces authorization
// itself and answers 403 regardless.

// ListUsers fetches every account for the moderation panel.
func (m *Manager) ListUsers(ctx context.Context) ([]User, error) {
	if err := m.requireAdmin(); err != nil {
		return nil, err
	}
	var envelope struct {
		IsSuccess bool   `json:"isSuccess"`
		Message   string `json:"message"`
		Result    []User `json:"result"`
	}
	if err := m.client.Get(ctx, pathUsers, &envelope); err != nil {
		return nil, classify(err)
	}
	return envelope.Result, nil
}

// SetUserStatus changes another account's status, keyed by email.
func (m *Manager) SetUserStatus(ctx context.Context, email string, status Status) error {
	if err := m.requireAdmin(); err != nil {
		return err
	}
	body := struct {
		Status Status `json:"status"`
	}{Status: status}
	path := pathStatus + url.PathEscape(email)
	if err := m.client.Put(ctx, path, body, nil); err != nil {
		return classify(err)
	}
	return nil
}

func (m *Manager) requireAdmin() *Error {
	if !m.CurrentUser().HasRole(RoleAdmin) {
		return &Error{Kind: KindAccountUnavailable, Message: "admin role required"}
	}
	return nil
}
