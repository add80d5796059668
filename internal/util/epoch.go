// Copyright (c) 2025 The UFood Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"strconv"
	"time"
)

// Session timestamps are persisted as millisecond epoch strings so the key-value
// store stays string-valued end to end.

// EpochMillis returns t as milliseconds since the Unix epoch.
func EpochMillis(t time.Time) int64 {
	return t.UnixMilli()
}

// FormatMillis renders a millisecond epoch value as a decimal string.
func FormatMillis(ms int64) string {
	return strconv.FormatInt(ms, 10)
}

// ParseMillis parses a decimal millisecond epoch string. Returns 0 and false
// when the value is empty or malformed.
func ParseMillis(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return ms, true
}

// TimeFromMillis converts a millisecond epoch value back to time.Time.
func TimeFromMillis(ms int64) time.Time {
	return time.UnixMilli(ms)
}
