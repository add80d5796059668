// Copyright (c) 2025 The UFood Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"regexp"
	"strings"
	"unicode"
)

// =============================================================================
// FIELD VALIDATION
// =============================================================================

// Known field names accepted by ValidateField.
const (
	FieldName        = "name"
	FieldEmail       = "email"
	FieldPhoneNumber = "phoneNumber"
	FieldPassword    = "password"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateField checks a single input field against the shared client-side
// rules. The field set is closed; unknown names are rejected. A nil return
// means the value is acceptable.
func ValidateField(field, value string) *Error {
	switch field {
	case FieldName:
		if len(strings.TrimSpace(value)) < 2 {
			return fieldError(field, "name must be at least 2 characters")
		}
	case FieldEmail:
		if !emailPattern.MatchString(strings.TrimSpace(value)) {
			return fieldError(field, "enter a valid email address")
		}
	case FieldPhoneNumber:
		// Optional; validated only when provided.
		if value != "" && !validPhone(value) {
			return fieldError(field, "enter a valid phone number")
		}
	case FieldPassword:
		if !validPassword(value) {
			return fieldError(field, "password must be at least 6 characters with a letter and a digit")
		}
	default:
		return fieldError(field, "unknown field")
	}
	return nil
}

// ValidateRegistration runs every field rule over a registration input,
// returning the first failure.
func ValidateRegistration(r Registration) *Error {
	if err := ValidateField(FieldName, r.Name); err != nil {
		return err
	}
	if err := ValidateField(FieldEmail, r.Email); err != nil {
		return err
	}
	if err := ValidateField(FieldPhoneNumber, r.PhoneNumber); err != nil {
		return err
	}
	return ValidateField(FieldPassword, r.Password)
}

func fieldError(field, message string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: message}
}

func validPhone(value string) bool {
	digits := 0
	for i, r := range value {
		switch {
		case unicode.IsDigit(r):
			digits++
		case r == '+' && i == 0:
		case r == ' ' || r == '-':
		default:
			return false
		}
	}
	return digits >= 8 && digits <= 15
}

func validPassword(value string) bool {
	if len(value) < 6 {
		return false
	}
	hasLetter, hasDigit := false, false
	for _, r := range value {
		if unicode.IsLetter(r) {
			hasLetter = true
		}
		if unicode.IsDigit(r) {
			hasDigit = true
		}
	}
	return hasLetter && hasDigit
}
