// Copyright (c) 2025 The UFood Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the UFood TUI.
// All colors use Lip Gloss AdaptiveColor for automatic light/dark detection.
package styles

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// BRAND COLORS
// =============================================================================

// Tangerine - Primary accent, brand headers, selections
var Tangerine = lipgloss.AdaptiveColor{Light: "#EA580C", Dark: "#FB923C"}

// TangerineDeep - Darker tangerine for backgrounds
var TangerineDeep = lipgloss.AdaptiveColor{Light: "#C2410C", Dark: "#7C2D12"}

// Basil - Success states, price tags, active accounts
var Basil = lipgloss.AdaptiveColor{Light: "#16A34A", Dark: "#4ADE80"}

// BasilDeep - Darker basil for backgrounds
var BasilDeep = lipgloss.AdaptiveColor{Light: "#15803D", Dark: "#14532D"}

// =============================================================================
// SEMANTIC COLORS
// =============================================================================

// Chili - Errors, lockout warnings, destructive actions
var Chili = lipgloss.AdaptiveColor{Light: "#DC2626", Dark: "#F87171"}

// Saffron - Warnings, pending states
var Saffron = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}

// =============================================================================
// SURFACE COLORS
// =============================================================================

// Ink - Primary foreground text
var Ink = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#E5E7EB"}

// Slate - Secondary text, hints, timestamps
var Slate = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}

// Border - Container and input borders
var Border = lipgloss.AdaptiveColor{Light: "#D1D5DB", Dark: "#374151"}
