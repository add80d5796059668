// Copyright (c) 2025 The UFood Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"fmt"
	"strings"

	"github.com/GutSayN/ufood-tui/internal/util"
)

const headerTitle = "UFood"

func (m Model) View() string {
	var body string
	switch m.screen {
	case screenLogin:
		body = m.viewLogin()
	case screenRegister:
		body = m.viewRegister()
	case screenBrowse:
		body = m.viewBrowse()
	case screenDetail:
		body = m.viewDetail()
	}

	theme := m.deps.Theme
	var b strings.Builder
	b.WriteString(theme.Header.Render(headerTitle))
	b.WriteString("\n")
	b.WriteString(body)
	b.WriteString("\n")
	b.WriteString(theme.Footer.Render(m.footer()))
	return theme.App.Render(b.String())
}

func (m Model) footer() string {
	switch m.screen {
	case screenLogin:
		return "enter sign in · ctrl+r register · ctrl+c quit"
	case screenRegister:
		return "enter create account · esc back · ctrl+c quit"
	case screenBrowse:
		return "↑/↓ move · enter open · / search · r refresh · ctrl+l logout · ctrl+c quit"
	case screenDetail:
		return "↑/↓ scroll · esc back · ctrl+c quit"
	}
	return ""
}

func (m Model) viewLogin() string {
	theme := m.deps.Theme
	var b strings.Builder
	b.WriteString(m.fieldView("Email", m.loginInputs[loginFieldEmail]))
	b.WriteString("\n\n")
	b.WriteString(m.fieldView("Password", m.loginInputs[loginFieldPassword]))
	b.WriteString("\n\n")
	if m.busy {
		b.WriteString(m.spinner.View() + " signing in…")
	} else {
		b.WriteString(theme.ButtonActive.Render("Sign in"))
	}
	if m.loginErr != "" {
		b.WriteString("\n\n" + theme.FormError.Render(m.loginErr))
	}
	if m.status != "" && m.loginErr == "" {
		b.WriteString("\n\n" + theme.FormNotice.Render(m.status))
	}
	return theme.Container.Render(b.String())
}

func (m Model) viewRegister() string {
	theme := m.deps.Theme
	labels := [regFieldCount]string{"Name", "Email", "Phone", "Password"}
	var b strings.Builder
	for i, input := range m.regInputs {
		b.WriteString(m.fieldView(labels[i], input))
		b.WriteString("\n\n")
	}
	if m.busy {
		b.WriteString(m.spinner.View() + " creating account…")
	} else {
		b.WriteString(theme.ButtonActive.Render("Create account"))
	}
	if m.regErr != "" {
		b.WriteString("\n\n" + theme.FormError.Render(m.regErr))
	}
	return theme.Container.Render(b.String())
}

func (m Model) viewBrowse() string {
	theme := m.deps.Theme
	var b strings.Builder

	if m.searching {
		b.WriteString(m.search.View())
		b.WriteString("\n\n")
	}
	if m.busy {
		b.WriteString(m.spinner.View() + " loading…\n")
	}
	if m.browseErr != "" {
		b.WriteString(theme.FormError.Render(m.browseErr) + "\n")
	}
	if len(m.listings) == 0 && !m.busy {
		b.WriteString(theme.Hint.Render("no listings found"))
		return b.String()
	}

	titleWidth := 40
	if theme.Width > 60 {
		titleWidth = theme.Width - 24
	}
	for i, l := range m.listings {
		title := util.PadRight(l.Title, titleWidth)
		price := theme.Price.Render(fmt.Sprintf("$%8.0f", l.Price))
		row := fmt.Sprintf("%s %s", title, price)
		if i == m.cursor {
			b.WriteString(theme.RowSelected.Render("> " + row))
		} else {
			b.WriteString(theme.Row.Render("  " + row))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) viewDetail() string {
	theme := m.deps.Theme
	if m.detail == nil {
		return theme.Hint.Render("nothing selected")
	}
	return m.viewport.View()
}
