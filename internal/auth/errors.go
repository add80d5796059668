// Copyright (c) 2025 The UFood Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/GutSayN/ufood-tui/internal/api"
)

// =============================================================================
// ERROR TAXONOMY
// =============================================================================

// Kind discriminates the failure classes surfaced by the session manager.
// UI copy branches on Kind, so the mapping from HTTP status to Kind is part
// of the package contract.
type Kind int

const (
	// KindInvalidCredentials is a rejected email/password pair (HTTP 401).
	KindInvalidCredentials Kind = iota + 1

	// KindLockedOut blocks login after too many failed attempts.
	KindLockedOut

	// KindAccountInactive is a disabled account rejected client-side after a
	// technically successful auth response.
	KindAccountInactive

	// KindAccountUnavailable is a forbidden account or action (HTTP 403).
	KindAccountUnavailable

	// KindValidation is a local per-field validation failure. No network
	// request was made.
	KindValidation

	// KindBadRequest carries a server-supplied rejection message (HTTP 400).
	KindBadRequest

	// KindEmailTaken is a registration conflict (HTTP 409).
	KindEmailTaken

	// KindServiceUnavailable is an unreachable endpoint (HTTP 404).
	KindServiceUnavailable

	// KindServer is any 5xx; internals are never exposed to the caller.
	KindServer

	// KindNetwork is a connectivity failure (synthesized status 0).
	KindNetwork

	// KindTimeout is a request abandoned at its deadline (status 408).
	KindTimeout

	// KindStorage is a persistence failure that could not be degraded away.
	KindStorage
)

// Error is the typed failure returned by every session-manager operation.
type Error struct {
	Kind    Kind
	Message string

	// Field names the offending input for KindValidation.
	Field string

	// RemainingMinutes is the ceiling-rounded lockout remainder for
	// KindLockedOut.
	RemainingMinutes int
}

func (e *Error) Error() string { return e.Message }

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var authErr *Error
	return errors.As(err, &authErr) && authErr.Kind == kind
}

// LockedOutMinutes extracts the remaining lockout minutes from err.
func LockedOutMinutes(err error) (int, bool) {
	var authErr *Error
	if errors.As(err, &authErr) && authErr.Kind == KindLockedOut {
		return authErr.RemainingMinutes, true
	}
	return 0, false
}

// Canned user-facing copy for errors that carry no server message.
const (
	msgInvalidCredentials  = "invalid email or password"
	msgAccountInactive     = "this account is inactive"
	msgAccountUnavailable  = "this account is not available"
	msgBadRequest          = "the request was rejected, check your input"
	msgEmailTaken          = "this email is already registered"
	msgServiceUnavailable  = "the service is unavailable right now"
	msgServer              = "something went wrong, please try again later"
	msgNetwork             = "no internet connection"
	msgTimeout             = "the request timed out, please try again"
	msgLockedOutFmt        = "too many failed attempts, try again in %d minutes"
	msgSessionStorageFault = "could not access local session storage"
)

func lockedOutError(remainingMinutes int) *Error {
	return &Error{
		Kind:             KindLockedOut,
		Message:          fmt.Sprintf(msgLockedOutFmt, remainingMinutes),
		RemainingMinutes: remainingMinutes,
	}
}

// classify maps api-client failures onto the auth taxonomy. The 401 branch is
// absent on purpose: login owns it because it drives the lockout counter.
func classify(err error) *Error {
	apiErr, ok := api.AsError(err)
	if !ok {
		return &Error{Kind: KindServer, Message: msgServer}
	}
	switch {
	case apiErr.Status == api.StatusNetworkError:
		return &Error{Kind: KindNetwork, Message: msgNetwork}
	case apiErr.Status == api.StatusTimeout:
		return &Error{Kind: KindTimeout, Message: msgTimeout}
	case apiErr.Status == 400:
		msg := serverMessage(apiErr)
		if msg == "" {
			msg = msgBadRequest
		}
		return &Error{Kind: KindBadRequest, Message: msg}
	case apiErr.Status == 403:
		return &Error{Kind: KindAccountUnavailable, Message: msgAccountUnavailable}
	case apiErr.Status == 404:
		return &Error{Kind: KindServiceUnavailable, Message: msgServiceUnavailable}
	case apiErr.Status >= 500:
		return &Error{Kind: KindServer, Message: msgServer}
	default:
		return &Error{Kind: KindServer, Message: msgServer}
	}
}

// serverMessage returns the message field from the API error body, or "".
func serverMessage(apiErr *api.Error) string {
	var envelope struct {
		Message string `json:"message"`
	}
	if len(apiErr.Data) > 0 && json.Unmarshal(apiErr.Data, &envelope) == nil {
		return envelope.Message
	}
	return ""
}
