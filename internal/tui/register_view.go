package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/askmydocs/askmydocs-cli/internal/app"
)

type registerResultMsg struct{ err error }

type registerModel struct {
	app   *app.Application
	theme Theme

	inputs []textinput.Model // username, email, password, confirm
	focus  int

	submitting bool
	errMsg     string

	width  int
	height int
}

func newRegisterModel(application *app.Application, theme Theme) registerModel {
	mk := func(placeholder string, secret bool) textinput.Model {
		in := textinput.New()
		in.Placeholder = placeholder
		in.Prompt = "  "
		in.CharLimit = 128
		if secret {
			in.EchoMode = textinput.EchoPassword
			in.EchoCharacter = '•'
		}
		return in
	}
	return registerModel{
		app:   application,
		theme: theme,
		inputs: []textinput.Model{
			mk("username", false),
			mk("you@example.com", false),
			mk("password (min 8 chars)", true),
			mk("repeat password", true),
		},
	}
}

func (m *registerModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m *registerModel) enter() tea.Cmd {
	m.submitting = false
	m.errMsg = ""
	for i := range m.inputs {
		m.inputs[i].SetValue("")
		m.inputs[i].Blur()
	}
	m.focus = 0
	m.inputs[0].Focus()
	return textinput.Blink
}

func (m *registerModel) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.submitting {
			return nil
		}
		switch msg.String() {
		case "tab", "down":
			return m.setFocus(m.focus + 1)
		case "shift+tab", "up":
			return m.setFocus(m.focus - 1)
		case "enter":
			return m.submit()
		case "esc":
			return func() tea.Msg { return switchToLoginMsg{} }
		}

	case registerResultMsg:
		m.submitting = false
		if msg.err != nil {
			m.errMsg = app.UserMessage(msg.err)
			return nil
		}
		return func() tea.Msg { return registerSuccessMsg{} }
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return cmd
}

type registerSuccessMsg struct{}

func (m *registerModel) setFocus(i int) tea.Cmd {
	n := len(m.inputs)
	m.focus = ((i % n) + n) % n
	for j := range m.inputs {
		if j == m.focus {
			m.inputs[j].Focus()
		} else {
			m.inputs[j].Blur()
		}
	}
	return textinput.Blink
}

func (m *registerModel) submit() tea.Cmd {
	username := strings.TrimSpace(m.inputs[0].Value())
	email := strings.TrimSpace(m.inputs[1].Value())
	password := m.inputs[2].Value()
	confirm := m.inputs[3].Value()

	if password != confirm {
		m.errMsg = "passwords do not match"
		return nil
	}

	m.submitting = true
	m.errMsg = ""
	session := m.app.Session
	timeout := m.app.Config.Timeout()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return registerResultMsg{err: session.Register(ctx, username, email, password)}
	}
}

func (m *registerModel) view() string {
	t := m.theme
	labels := []string{"Username", "Email", "Password", "Confirm password"}

	var b strings.Builder
	b.WriteString(t.Title.Render("AskMyDocs") + "\n")
	b.WriteString(t.Subtitle.Render("Create an account") + "\n\n")
	for i, in := range m.inputs {
		b.WriteString(t.Label.Render(labels[i]) + "\n")
		b.WriteString(in.View() + "\n\n")
	}

	switch {
	case m.submitting:
		b.WriteString(t.Muted.Render("Creating account...") + "\n")
	case m.errMsg != "":
		b.WriteString(t.ErrLine.Render(m.errMsg) + "\n")
	}

	b.WriteString("\n" + t.Footer.Render("enter create • tab switch field • esc back to sign in"))

	pane := t.Pane.Width(min(56, max(36, m.width-4))).Render(b.String())
	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, pane)
	}
	return pane
}
