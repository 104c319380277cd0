package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/askmydocs/askmydocs-cli/internal/app"
)

// publicView picks which of the two public forms is showing.
type publicView int

const (
	viewLogin publicView = iota
	viewRegister
)

type initDoneMsg struct{}

type sessionChangedMsg struct{}

// RootModel routes between the public forms and the protected home view. It
// renders nothing until the session store finished initializing, then follows
// the guard's decision; every later render re-checks authentication so a torn
// down session falls back to login immediately.
type RootModel struct {
	app   *app.Application
	theme Theme

	width  int
	height int

	resolved bool
	route    app.Route
	public   publicView

	login    loginModel
	register registerModel
	home     homeModel
}

func NewRootModel(application *app.Application) *RootModel {
	theme := NewTheme()
	return &RootModel{
		app:      application,
		theme:    theme,
		login:    newLoginModel(application, theme),
		register: newRegisterModel(application, theme),
		home:     newHomeModel(application, theme),
	}
}

func (m *RootModel) Init() tea.Cmd {
	return func() tea.Msg {
		m.app.Session.Initialize()
		return initDoneMsg{}
	}
}

func (m *RootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.login.setSize(msg.Width, msg.Height)
		m.register.setSize(msg.Width, msg.Height)
		m.home.setSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case initDoneMsg:
		route, ok := m.app.Guard.Resolve()
		if !ok {
			// Initialize just ran, so this cannot happen; render nothing
			// rather than guess.
			return m, nil
		}
		m.resolved = true
		m.route = route
		if route == app.RouteHome {
			return m, m.home.enter()
		}
		return m, m.login.enter()

	case sessionChangedMsg:
		return m, m.reroute()

	case switchToRegisterMsg:
		m.public = viewRegister
		return m, m.register.enter()

	case switchToLoginMsg:
		m.public = viewLogin
		return m, m.login.enter()

	case registerSuccessMsg:
		m.public = viewLogin
		cmd := m.login.enter()
		m.login.notice = "Account created. Sign in below."
		return m, cmd
	}

	if !m.resolved {
		return m, nil
	}

	var cmd tea.Cmd
	switch {
	case m.route == app.RouteHome:
		cmd = m.home.update(msg)
	case m.public == viewRegister:
		cmd = m.register.update(msg)
	default:
		cmd = m.login.update(msg)
	}

	// A 401 on any call tears the session down; the next render of a
	// protected view must redirect.
	if reroute := m.reroute(); reroute != nil {
		return m, tea.Batch(cmd, reroute)
	}
	return m, cmd
}

// reroute re-applies the guard and returns the entry command of the newly
// selected view when the route actually changed.
func (m *RootModel) reroute() tea.Cmd {
	route, ok := m.app.Guard.Resolve()
	if !ok || route == m.route {
		return nil
	}
	m.route = route
	if route == app.RouteHome {
		return m.home.enter()
	}
	m.public = viewLogin
	return m.login.enter()
}

func (m *RootModel) View() string {
	// Hold rendering until the guard may decide.
	if !m.resolved {
		return ""
	}
	switch {
	case m.route == app.RouteHome:
		return m.home.view()
	case m.public == viewRegister:
		return m.register.view()
	default:
		return m.login.view()
	}
}
