package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles holds the TUI styling definitions.
type Styles struct {
	Title     lipgloss.Style
	UserLabel lipgloss.Style
	BotLabel  lipgloss.Style
	Answer    lipgloss.Style
	Source    lipgloss.Style
	Error     lipgloss.Style
	Warning   lipgloss.Style
	Success   lipgloss.Style
	Muted     lipgloss.Style
	Input     lipgloss.Style
	StatusBar lipgloss.Style
}

// DefaultStyles creates the default style set.
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("213")).
			Padding(0, 1),
		UserLabel: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("75")),
		BotLabel: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("213")),
		Answer: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")),
		Source: lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			MarginLeft(2),
		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")),
		Warning: lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")),
		Success: lipgloss.NewStyle().
			Foreground(lipgloss.Color("76")),
		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")),
		Input: lipgloss.NewStyle().
			BorderTop(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("238")),
		StatusBar: lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("252")).
			Padding(0, 1),
	}
}
