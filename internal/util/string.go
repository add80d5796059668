// Copyright (c) 2025 The UFood Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Truncate shortens s to at most maxWidth display columns, appending "…"
// when the string was cut. Width-aware so CJK listing titles do not break
// the browse table layout.
func Truncate(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth == 1 {
		return "…"
	}
	return runewidth.Truncate(s, maxWidth-1, "") + "…"
}

// PadRight pads s with spaces to exactly width display columns.
// Strings wider than width are truncated first.
func PadRight(s string, width int) string {
	s = Truncate(s, width)
	gap := width - runewidth.StringWidth(s)
	if gap <= 0 {
		return s
	}
	return s + strings.Repeat(" ", gap)
}

// StringWidth returns the display width of s in terminal columns.
func StringWidth(s string) int {
	return runewidth.StringWidth(s)
}

// NormalizeEmail trims surrounding whitespace and lowercases an email
// address so lookups and lockout counting are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
