// Copyright (c) 2025 The UFood Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds the styled components for the application. It detects the
// terminal's color capability and adjusts accordingly.
type Theme struct {
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	Width  int
	Height int

	// ==========================================================================
	// CONTAINER STYLES
	// ==========================================================================

	App       lipgloss.Style
	Header    lipgloss.Style
	Footer    lipgloss.Style
	Container lipgloss.Style

	// ==========================================================================
	// FORM STYLES
	// ==========================================================================

	Label        lipgloss.Style
	FieldError   lipgloss.Style
	FormError    lipgloss.Style
	FormNotice   lipgloss.Style
	ButtonActive lipgloss.Style
	ButtonIdle   lipgloss.Style

	// ==========================================================================
	// LISTING STYLES
	// ==========================================================================

	RowSelected lipgloss.Style
	Row         lipgloss.Style
	Price       lipgloss.Style
	Category    lipgloss.Style
	DetailTitle lipgloss.Style
	Hint        lipgloss.Style
}

// NewTheme builds the theme from the detected terminal profile.
func NewTheme() *Theme {
	profile := termenv.ColorProfile()
	t := &Theme{
		IsDark:       lipgloss.HasDarkBackground(),
		HasTrueColor: profile == termenv.TrueColor,
		ColorProfile: profile,
	}

	t.App = lipgloss.NewStyle().Padding(0, 1)
	t.Header = lipgloss.NewStyle().
		Foreground(Tangerine).
		Bold(true).
		Padding(0, 1).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(Border)
	t.Footer = lipgloss.NewStyle().Foreground(Slate).Padding(0, 1)
	t.Container = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(1, 2)

	t.Label = lipgloss.NewStyle().Foreground(Ink).Bold(true)
	t.FieldError = lipgloss.NewStyle().Foreground(Chili)
	t.FormError = lipgloss.NewStyle().Foreground(Chili).Bold(true)
	t.FormNotice = lipgloss.NewStyle().Foreground(Saffron)
	t.ButtonActive = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(Tangerine).
		Padding(0, 2).
		Bold(true)
	t.ButtonIdle = lipgloss.NewStyle().
		Foreground(Slate).
		Padding(0, 2)

	t.RowSelected = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(TangerineDeep).
		Bold(true)
	t.Row = lipgloss.NewStyle().Foreground(Ink)
	t.Price = lipgloss.NewStyle().Foreground(Basil).Bold(true)
	t.Category = lipgloss.NewStyle().Foreground(Slate).Italic(true)
	t.DetailTitle = lipgloss.NewStyle().Foreground(Tangerine).Bold(true)
	t.Hint = lipgloss.NewStyle().Foreground(Slate)

	return t
}

// Resize records the current terminal dimensions.
func (t *Theme) Resize(width, height int) {
	t.Width = width
	t.Height = height
}
