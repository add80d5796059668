// Copyright (c) 2025 The UFood Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/GutSayN/ufood-tui/internal/catalog"
	"github.com/GutSayN/ufood-tui/internal/telemetry"
)

// =============================================================================
// BROWSE SCREEN
// =============================================================================

func (m Model) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.searching {
		switch {
		case key.Matches(keyMsg, m.keys.Enter):
			m.searching = false
			m.search.Blur()
			m.busy = true
			return m, m.loadListings(m.search.Value())
		case key.Matches(keyMsg, m.keys.Back):
			m.searching = false
			m.search.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(keyMsg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, m.keys.Down):
		if m.cursor < len(m.listings)-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, m.keys.Enter):
		if len(m.listings) > 0 {
			m.busy = true
			return m, m.loadDetail(m.listings[m.cursor].ID)
		}
	case key.Matches(keyMsg, m.keys.Search):
		m.searching = true
		m.search.Focus()
		return m, nil
	case key.Matches(keyMsg, m.keys.Refresh):
		m.busy = true
		return m, m.loadListings(m.search.Value())
	case key.Matches(keyMsg, m.keys.Logout):
		return m.doLogout()
	}
	return m, nil
}

func (m Model) doLogout() (Model, tea.Cmd) {
	session := m.deps.Session
	tracker := m.deps.Tracker
	m.screen = screenLogin
	m.loginErr = ""
	m.status = "signed out"
	m.loginFocus = 0
	m = m.focusLogin()
	return m, func() tea.Msg {
		session.Logout(context.Background())
		tracker.Record(context.Background(), telemetry.EventUserLoggedOut, nil)
		return nil
	}
}

// loadDetail fetches a listing and renders its markdown description.
func (m Model) loadDetail(id int64) tea.Cmd {
	cat := m.deps.Catalog
	width := m.viewport.Width
	return func() tea.Msg {
		listing, err := cat.Get(context.Background(), id)
		if err != nil {
			return detailMsg{err: err}
		}
		rendered, err := renderListing(listing, width)
		if err != nil {
			rendered = listing.Description
		}
		return detailMsg{listing: listing, rendered: rendered}
	}
}

// renderListing formats the detail body as markdown through glamour.
func renderListing(l *catalog.Listing, width int) (string, error) {
	if width <= 0 {
		width = 80
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	body := fmt.Sprintf("# %s\n\n**$%.0f**  ·  %s\n\n%s\n",
		l.Title, l.Price, l.SellerName, l.Description)
	return renderer.Render(body)
}
