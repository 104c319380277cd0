package tui

import (
	"github.com/charmbracelet/lipgloss"
)

type Theme struct {
	TextPrimary lipgloss.AdaptiveColor
	TextMuted   lipgloss.AdaptiveColor

	Accent  lipgloss.AdaptiveColor
	Success lipgloss.AdaptiveColor
	Warn    lipgloss.AdaptiveColor
	Error   lipgloss.AdaptiveColor
	Border  lipgloss.AdaptiveColor

	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	Pane      lipgloss.Style
	PaneTitle lipgloss.Style
	Footer    lipgloss.Style
	Label     lipgloss.Style
	ErrLine   lipgloss.Style
	OkLine    lipgloss.Style
	Muted     lipgloss.Style

	StatusProcessing lipgloss.Style
	StatusProcessed  lipgloss.Style
	StatusFailed     lipgloss.Style

	Spinner lipgloss.Style
}

func NewTheme() Theme {
	t := Theme{
		TextPrimary: lipgloss.AdaptiveColor{Light: "#1F2430", Dark: "#E6E8EE"},
		TextMuted:   lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"},
		Accent:      lipgloss.AdaptiveColor{Light: "#2563EB", Dark: "#7AA2F7"},
		Success:     lipgloss.AdaptiveColor{Light: "#16A34A", Dark: "#22C55E"},
		Warn:        lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#F59E42"},
		Error:       lipgloss.AdaptiveColor{Light: "#DC2626", Dark: "#EF4444"},
		Border:      lipgloss.AdaptiveColor{Light: "#D1D5DB", Dark: "#3B4261"},
	}

	t.Title = lipgloss.NewStyle().Bold(true).Foreground(t.Accent)
	t.Subtitle = lipgloss.NewStyle().Foreground(t.TextMuted)
	t.Pane = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Padding(0, 1)
	t.PaneTitle = lipgloss.NewStyle().Bold(true).Foreground(t.TextPrimary)
	t.Footer = lipgloss.NewStyle().Foreground(t.TextMuted)
	t.Label = lipgloss.NewStyle().Foreground(t.TextMuted)
	t.ErrLine = lipgloss.NewStyle().Foreground(t.Error)
	t.OkLine = lipgloss.NewStyle().Foreground(t.Success)
	t.Muted = lipgloss.NewStyle().Foreground(t.TextMuted)
	t.StatusProcessing = lipgloss.NewStyle().Foreground(t.Warn)
	t.StatusProcessed = lipgloss.NewStyle().Foreground(t.Success)
	t.StatusFailed = lipgloss.NewStyle().Foreground(t.Error)
	t.Spinner = lipgloss.NewStyle().Foreground(t.Accent)

	return t
}

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
