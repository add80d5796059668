// Copyright (c) 2025 The UFood Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// STATUS
// =============================================================================

// Status is the account state reported by the auth service.
type Status int

const (
	StatusInactive Status = iota
	StatusActive
	StatusSuspended
)

// Well-known role names.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "ACTIVE"
	case StatusInactive:
		return "INACTIVE"
	case StatusSuspended:
		return "SUSPENDED"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// MarshalJSON encodes the status by name.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON accepts both encodings the auth service has used over time:
// the numeric form (0 inactive, 1 active, 2 suspended) and the named form.
func (s *Status) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		switch strings.ToUpper(strings.TrimSpace(name)) {
		case "ACTIVE":
			*s = StatusActive
		case "INACTIVE":
			*s = StatusInactive
		case "SUSPENDED":
			*s = StatusSuspended
		default:
			return fmt.Errorf("auth: unknown status %q", name)
		}
		return nil
	}
	var code int
	if err := json.Unmarshal(data, &code); err != nil {
		return err
	}
	switch code {
	case 0:
		*s = StatusInactive
	case 1:
		*s = StatusActive
	case 2:
		*s = StatusSuspended
	default:
		return fmt.Errorf("auth: unknown status code %d", code)
	}
	return nil
}

// =============================================================================
// USER
// =============================================================================

// User is the account entity returned by the auth service and persisted as
// part of the session.
type User struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phoneNumber,omitempty"`
	Roles       []string  `json:"roles"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
}

// IsActive reports whether the account may hold a session.
func (u *User) IsActive() bool { return u != nil && u.Status == StatusActive }

// HasRole reports whether the user carries the named role.
func (u *User) HasRole(role string) bool {
	if u == nil {
		return false
	}
	for _, r := range u.Roles {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}

// Credential is a transient email/password pair. It exists only for the
// duration of a login call and is never persisted.
type Credential struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the input to account creation.
type Registration struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	Password    string `json:"password"`
	Role        string `json:"role"`
}

// UserUpdate is a partial profile update; nil fields are left unchanged.
type UserUpdate struct {
	Name        *string `json:"name,omitempty"`
	PhoneNumber *string `json:"phoneNumber,omitempty"`
}
