// Copyright (c) 2025 The UFood Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestAtomicWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out.txt")

	if err := AtomicWriteFile(path, []byte("hello"), 0o600); err != nil {
		t.Fatalf("AtomicWriteFile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("content = %q, want %q", data, "hello")
	}

	// Overwrite must replace, not append.
	if err := AtomicWriteFile(path, []byte("x"), 0o600); err != nil {
		t.Fatalf("AtomicWriteFile() overwrite error = %v", err)
	}
	data, _ = os.ReadFile(path)
	if string(data) != "x" {
		t.Errorf("content after overwrite = %q, want %q", data, "x")
	}

	// No temp files left behind.
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want 1", len(entries))
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in       string
		maxWidth int
		want     string
	}{
		{"", 10, ""},
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is too long", 7, "this i…"},
		{"anything", 0, ""},
		{"ab", 1, "…"},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.maxWidth); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.maxWidth, got, tt.want)
		}
	}
}

func TestTruncateWideRunes(t *testing.T) {
	// Double-width characters count as two columns.
	got := Truncate("日本語のタイトル", 7)
	if StringWidth(got) > 7 {
		t.Errorf("Truncate produced width %d, want <= 7", StringWidth(got))
	}
}

func TestPadRight(t *testing.T) {
	if got := PadRight("ab", 5); got != "ab   " {
		t.Errorf("PadRight(ab, 5) = %q", got)
	}
	if got := PadRight("abcdef", 4); StringWidth(got) != 4 {
		t.Errorf("PadRight should truncate to width, got %q", got)
	}
}

func TestEpochRoundTrip(t *testing.T) {
	now := time.Now().Truncate(time.Millisecond)
	s := FormatMillis(EpochMillis(now))

	ms, ok := ParseMillis(s)
	if !ok {
		t.Fatalf("ParseMillis(%q) not ok", s)
	}
	if !TimeFromMillis(ms).Equal(now) {
		t.Errorf("round trip = %v, want %v", TimeFromMillis(ms), now)
	}
}

func TestParseMillisInvalid(t *testing.T) {
	for _, s := range []string{"", "abc", "12.5"} {
		if _, ok := ParseMillis(s); ok {
			t.Errorf("ParseMillis(%q) ok = true, want false", s)
		}
	}
}
