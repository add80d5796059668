// Copyright (c) 2025 The UFood Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/GutSayN/ufood-tui/internal/auth"
	"github.com/GutSayN/ufood-tui/internal/catalog"
	"github.com/GutSayN/ufood-tui/internal/telemetry"
)

// =============================================================================
// MESSAGES
// =============================================================================

type loginDoneMsg struct {
	user *auth.User
	err  error
}

type registerDoneMsg struct{ err error }

type listingsMsg struct {
	items []catalog.Listing
	err   error
}

type detailMsg struct {
	listing  *catalog.Listing
	rendered string
	err      error
}

// SessionExpiredMsg is injected by the program when the background monitor
// tears the session down.
type SessionExpiredMsg struct{ Reason string }

// =============================================================================
// UPDATE
// =============================================================================

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.deps.Theme.Resize(msg.Width, msg.Height)
		m.viewport.Width = msg.Width - 4
		m.viewport.Height = msg.Height - 8
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case SessionExpiredMsg:
		m.screen = screenLogin
		m.loginErr = "your session expired, please sign in again"
		m.busy = false
		return m, nil

	case loginDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.loginErr = msg.err.Error()
			return m, nil
		}
		m.loginErr = ""
		m.status = fmt.Sprintf("signed in as %s", msg.user.Name)
		m.deps.Tracker.Record(context.Background(), telemetry.EventUserLoggedIn, nil)
		m.screen = screenBrowse
		return m, m.loadListings("")

	case registerDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.regErr = msg.err.Error()
			return m, nil
		}
		m.regErr = ""
		m.deps.Tracker.Record(context.Background(), telemetry.EventUserRegistered, nil)
		m.screen = screenLogin
		m.loginErr = ""
		m.status = "account created, sign in to continue"
		return m, nil

	case listingsMsg:
		m.busy = false
		if msg.err != nil {
			m.browseErr = msg.err.Error()
			return m, nil
		}
		m.browseErr = ""
		m.listings = msg.items
		if m.cursor >= len(m.listings) {
			m.cursor = 0
		}
		return m, nil

	case detailMsg:
		m.busy = false
		if msg.err != nil {
			m.browseErr = msg.err.Error()
			m.screen = screenBrowse
			return m, nil
		}
		m.detail = msg.listing
		m.viewport.SetContent(msg.rendered)
		m.viewport.GotoTop()
		m.screen = screenDetail
		m.deps.Tracker.Record(context.Background(), telemetry.EventListingViewed,
			map[string]string{"listingId": strconv.FormatInt(msg.listing.ID, 10)})
		return m, nil
	}

	switch m.screen {
	case screenLogin:
		return m.updateLogin(msg)
	case screenRegister:
		return m.updateRegister(msg)
	case screenBrowse:
		return m.updateBrowse(msg)
	case screenDetail:
		return m.updateDetail(msg)
	}
	return m, nil
}

func (m Model) updateDetail(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if key.Matches(keyMsg, m.keys.Back) {
			m.screen = screenBrowse
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}
