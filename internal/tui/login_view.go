package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/askmydocs/askmydocs-cli/internal/app"
)

type switchToRegisterMsg struct{}
type switchToLoginMsg struct{}

type loginResultMsg struct{ err error }

type loginModel struct {
	app   *app.Application
	theme Theme

	email    textinput.Model
	password textinput.Model
	focus    int

	submitting bool
	errMsg     string
	notice     string

	width  int
	height int
}

func newLoginModel(application *app.Application, theme Theme) loginModel {
	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.Prompt = "  "
	email.CharLimit = 128

	password := textinput.New()
	password.Placeholder = "password"
	password.Prompt = "  "
	password.CharLimit = 128
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	return loginModel{
		app:      application,
		theme:    theme,
		email:    email,
		password: password,
	}
}

func (m *loginModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

// enter prepares the form when the route switches here. A notice set by the
// register flow survives so "account created" stays visible.
func (m *loginModel) enter() tea.Cmd {
	m.submitting = false
	m.errMsg = ""
	m.password.SetValue("")
	m.focus = 0
	m.email.Focus()
	m.password.Blur()
	return textinput.Blink
}

func (m *loginModel) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.submitting {
			return nil
		}
		switch msg.String() {
		case "tab", "shift+tab", "up", "down":
			m.focus = (m.focus + 1) % 2
			if m.focus == 0 {
				m.email.Focus()
				m.password.Blur()
			} else {
				m.email.Blur()
				m.password.Focus()
			}
			return textinput.Blink
		case "enter":
			return m.submit()
		case "ctrl+n":
			return func() tea.Msg { return switchToRegisterMsg{} }
		}

	case loginResultMsg:
		m.submitting = false
		if msg.err != nil {
			m.errMsg = app.UserMessage(msg.err)
			return nil
		}
		// RootModel re-resolves the route and lands on home.
		m.notice = ""
		return nil
	}

	var cmd tea.Cmd
	if m.focus == 0 {
		m.email, cmd = m.email.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return cmd
}

func (m *loginModel) submit() tea.Cmd {
	m.submitting = true
	m.errMsg = ""
	m.notice = ""
	email := strings.TrimSpace(m.email.Value())
	password := m.password.Value()
	session := m.app.Session
	timeout := m.app.Config.Timeout()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return loginResultMsg{err: session.Login(ctx, email, password)}
	}
}

func (m *loginModel) view() string {
	t := m.theme

	var b strings.Builder
	b.WriteString(t.Title.Render("AskMyDocs") + "\n")
	b.WriteString(t.Subtitle.Render("Sign in to your account") + "\n\n")
	b.WriteString(t.Label.Render("Email") + "\n")
	b.WriteString(m.email.View() + "\n\n")
	b.WriteString(t.Label.Render("Password") + "\n")
	b.WriteString(m.password.View() + "\n\n")

	switch {
	case m.submitting:
		b.WriteString(t.Muted.Render("Signing in...") + "\n")
	case m.errMsg != "":
		b.WriteString(t.ErrLine.Render(m.errMsg) + "\n")
	case m.notice != "":
		b.WriteString(t.OkLine.Render(m.notice) + "\n")
	}

	b.WriteString("\n" + t.Footer.Render("enter sign in • tab switch field • ctrl+n register • ctrl+c quit"))

	pane := t.Pane.Width(min(56, max(36, m.width-4))).Render(b.String())
	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, pane)
	}
	return pane
}
