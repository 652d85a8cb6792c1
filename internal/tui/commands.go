package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/docuchat/cli/internal/chatbot"
)

// Messages produced by async chatbot operations. Each command runs the
// blocking call off the update loop and delivers the result as a message.

type askDoneMsg struct {
	result chatbot.AskResult
}

type loadDoneMsg struct {
	result chatbot.LoadResult
}

type addDoneMsg struct {
	result chatbot.AddResult
}

type searchDoneMsg struct {
	query   string
	results []chatbot.SearchResult
	err     error
}

type infoMsg struct {
	info chatbot.SystemInfo
}

func askCmd(bot *chatbot.Chatbot, question string) tea.Cmd {
	return func() tea.Msg {
		return askDoneMsg{result: bot.Ask(context.Background(), question)}
	}
}

func loadCmd(bot *chatbot.Chatbot, dir string) tea.Cmd {
	return func() tea.Msg {
		return loadDoneMsg{result: bot.LoadDocuments(context.Background(), dir)}
	}
}

func addCmd(bot *chatbot.Chatbot, path string) tea.Cmd {
	return func() tea.Msg {
		return addDoneMsg{result: bot.AddDocument(context.Background(), path)}
	}
}

func searchCmd(bot *chatbot.Chatbot, query string, k int) tea.Cmd {
	return func() tea.Msg {
		results, err := bot.Search(context.Background(), query, k)
		return searchDoneMsg{query: query, results: results, err: err}
	}
}

func infoCmd(bot *chatbot.Chatbot) tea.Cmd {
	return func() tea.Msg {
		return infoMsg{info: bot.GetSystemInfo(context.Background())}
	}
}
