package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/docuchat/cli/config"
	"github.com/docuchat/cli/internal/chatbot"
)

// Run starts the interactive chat session and blocks until the user
// quits.
func Run(bot *chatbot.Chatbot, cfg *config.Config) error {
	p := tea.NewProgram(NewModel(bot, cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
