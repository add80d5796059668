// Copyright (c) 2025 The UFood Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/GutSayN/ufood-tui/internal/auth"
)

// =============================================================================
// LOGIN FORM
// =============================================================================

func (m Model) updateLogin(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, m.keys.Tab):
			m.loginFocus = (m.loginFocus + 1) % loginFieldCount
			return m.focusLogin(), nil
		case key.Matches(keyMsg, m.keys.Enter):
			if m.busy {
				return m, nil
			}
			if m.loginFocus < loginFieldCount-1 {
				m.loginFocus++
				return m.focusLogin(), nil
			}
			return m.submitLogin()
		case keyMsg.String() == "ctrl+r":
			m.screen = screenRegister
			m.regFocus = 0
			return m.focusRegister(), nil
		}
	}

	var cmd tea.Cmd
	m.loginInputs[m.loginFocus], cmd = m.loginInputs[m.loginFocus].Update(msg)
	return m, cmd
}

func (m Model) focusLogin() Model {
	for i := range m.loginInputs {
		if i == m.loginFocus {
			m.loginInputs[i].Focus()
		} else {
			m.loginInputs[i].Blur()
		}
	}
	return m
}

func (m Model) submitLogin() (Model, tea.Cmd) {
	email := m.loginInputs[loginFieldEmail].Value()
	password := m.loginInputs[loginFieldPassword].Value()
	m.busy = true
	m.loginErr = ""
	session := m.deps.Session
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		user, err := session.Login(context.Background(), email, password)
		return loginDoneMsg{user: user, err: err}
	})
}

// =============================================================================
// REGISTRATION FORM
// =============================================================================

func (m Model) updateRegister(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, m.keys.Back):
			m.screen = screenLogin
			m.loginFocus = 0
			return m.focusLogin(), nil
		case key.Matches(keyMsg, m.keys.Tab):
			m.regFocus = (m.regFocus + 1) % regFieldCount
			return m.focusRegister(), nil
		case key.Matches(keyMsg, m.keys.Enter):
			if m.busy {
				return m, nil
			}
			if m.regFocus < regFieldCount-1 {
				m.regFocus++
				return m.focusRegister(), nil
			}
			return m.submitRegister()
		}
	}

	var cmd tea.Cmd
	m.regInputs[m.regFocus], cmd = m.regInputs[m.regFocus].Update(msg)
	return m, cmd
}

func (m Model) focusRegister() Model {
	for i := range m.regInputs {
		if i == m.regFocus {
			m.regInputs[i].Focus()
		} else {
			m.regInputs[i].Blur()
		}
	}
	return m
}

func (m Model) submitRegister() (Model, tea.Cmd) {
	reg := auth.Registration{
		Name:        m.regInputs[regFieldName].Value(),
		Email:       m.regInputs[regFieldEmail].Value(),
		PhoneNumber: m.regInputs[regFieldPhone].Value(),
		Password:    m.regInputs[regFieldPassword].Value(),
	}
	m.busy = true
	m.regErr = ""
	session := m.deps.Session
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		return registerDoneMsg{err: session.Register(context.Background(), reg)}
	})
}

// fieldView renders one labeled input with focus styling.
func (m Model) fieldView(label string, input textinput.Model) string {
	return m.deps.Theme.Label.Render(label) + "\n" + input.View()
}
