// Copyright (c) 2025 The UFood Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/GutSayN/ufood-tui/internal/auth"
	"github.com/GutSayN/ufood-tui/internal/catalog"
	"github.com/GutSayN/ufood-tui/internal/telemetry"
	"github.com/GutSayN/ufood-tui/internal/ui/styles"
)

// screen identifies which view the model is rendering.
type screen int

const (
	screenLogin screen = iota
	screenRegister
	screenBrowse
	screenDetail
)

// Login form field order.
const (
	loginFieldEmail = iota
	loginFieldPassword
	loginFieldCount
)

// Registration form field order.
const (
	regFieldName = iota
	regFieldEmail
	regFieldPhone
	regFieldPassword
	regFieldCount
)

// Deps are the collaborators the UI renders; it owns none of them.
type Deps struct {
	Session *auth.Manager
	Catalog *catalog.Client
	Tracker *telemetry.Tracker
	Theme   *styles.Theme
}

// Model is the root Bubble Tea model.
type Model struct {
	deps Deps
	keys keyMap

	screen screen
	busy   bool
	status string

	spinner spinner.Model

	// Login form.
	loginInputs [loginFieldCount]textinput.Model
	loginFocus  int
	loginErr    string

	// Registration form.
	regInputs [regFieldCount]textinput.Model
	regFocus  int
	regErr    string
	regNotice string

	// Browse.
	search    textinput.Model
	searching bool
	listings  []catalog.Listing
	cursor    int
	browseErr string

	// Detail.
	detail   *catalog.Listing
	viewport viewport.Model
}

// New builds the root model. authenticated selects the initial screen; the
// caller decides it from the cold-start session check.
func New(deps Deps, authenticated bool) Model {
	m := Model{
		deps: deps,
		keys: defaultKeyMap(),
	}

	m.spinner = spinner.New()
	m.spinner.Spinner = spinner.Dot

	email := textinput.New()
	email.Placeholder = "email"
	email.CharLimit = 120
	email.Focus()
	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 120
	password.EchoMode = textinput.EchoPassword
	m.loginInputs[loginFieldEmail] = email
	m.loginInputs[loginFieldPassword] = password

	name := textinput.New()
	name.Placeholder = "name"
	name.CharLimit = 80
	regEmail := textinput.New()
	regEmail.Placeholder = "email"
	regEmail.CharLimit = 120
	phone := textinput.New()
	phone.Placeholder = "phone (optional)"
	phone.CharLimit = 20
	regPassword := textinput.New()
	regPassword.Placeholder = "password"
	regPassword.CharLimit = 120
	regPassword.EchoMode = textinput.EchoPassword
	m.regInputs[regFieldName] = name
	m.regInputs[regFieldEmail] = regEmail
	m.regInputs[regFieldPhone] = phone
	m.regInputs[regFieldPassword] = regPassword

	m.search = textinput.New()
	m.search.Placeholder = "search listings"
	m.search.CharLimit = 120

	m.viewport = viewport.New(80, 20)

	if authenticated {
		m.screen = screenBrowse
	} else {
		m.screen = screenLogin
	}
	return m
}

// Init starts the spinner and, when already authenticated, the first listing
// load.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick}
	if m.screen == screenBrowse {
		cmds = append(cmds, m.loadListings(""))
	}
	return tea.Batch(cmds...)
}

// loadListings fetches the browse results for a query.
func (m Model) loadListings(query string) tea.Cmd {
	return func() tea.Msg {
		items, err := m.deps.Catalog.Search(context.Background(), query, 0)
		if err == nil {
			m.deps.Tracker.Record(context.Background(), telemetry.EventListingSearched,
				map[string]string{"query": query})
		}
		return listingsMsg{items: items, err: err}
	}
}
