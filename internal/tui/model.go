// Package tui provides the interactive chat interface. It is a thin
// layer over the chatbot: every command maps onto one chatbot operation
// and renders its result into the transcript.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/docuchat/cli/config"
	"github.com/docuchat/cli/internal/chatbot"
	"github.com/docuchat/cli/internal/documents"
)

const helpText = `Commands:
  /load [dir]      index every supported document under dir (default from config)
  /add <file>      index a single document
  /search <query>  show raw retrieval hits without generating an answer
  /info            show system state
  /reset           clear conversation memory (the index is kept)
  /help            show this help
  /quit            exit

Anything else is asked as a question.`

// Model is the root bubbletea model.
type Model struct {
	bot    *chatbot.Chatbot
	cfg    *config.Config
	styles Styles

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	transcript []string
	busy       bool
	ready      bool
	width      int
	height     int
	quitting   bool
}

// NewModel creates the chat model around an initialized chatbot.
func NewModel(bot *chatbot.Chatbot, cfg *config.Config) Model {
	styles := DefaultStyles()

	ti := textinput.New()
	ti.Placeholder = "Ask a question, or /help for commands"
	ti.Prompt = "> "
	ti.CharLimit = 2000
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.BotLabel

	m := Model{
		bot:     bot,
		cfg:     cfg,
		styles:  styles,
		input:   ti,
		spinner: sp,
	}
	m.append(styles.Title.Render("docuchat") + styles.Muted.Render("  ask questions about your documents"))
	m.append(styles.Muted.Render("Type /help for commands."))
	return m
}

// Init starts the input cursor blink.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input, window sizing and async operation results.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = msg.Width - 4
		vpHeight := msg.Height - 4
		if vpHeight < 1 {
			vpHeight = 1
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = vpHeight
		}
		m.refreshViewport()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			if m.busy {
				return m, nil
			}
			line := strings.TrimSpace(m.input.Value())
			if line == "" {
				return m, nil
			}
			m.input.Reset()
			return m.dispatch(line)
		}

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case askDoneMsg:
		m.busy = false
		m.renderAskResult(msg.result)
		return m, nil

	case loadDoneMsg:
		m.busy = false
		m.renderStatusLine(msg.result.Status, msg.result.Message)
		if msg.result.Status == chatbot.StatusSuccess {
			s := msg.result.Stats
			m.append(m.styles.Muted.Render(fmt.Sprintf(
				"  %d chunks, %d characters, %d files", s.TotalChunks, s.TotalCharacters, s.UniqueFiles)))
		}
		return m, nil

	case addDoneMsg:
		m.busy = false
		m.renderStatusLine(msg.result.Status, msg.result.Message)
		return m, nil

	case searchDoneMsg:
		m.busy = false
		m.renderSearchResults(msg)
		return m, nil

	case infoMsg:
		m.busy = false
		m.renderInfo(msg.info)
		return m, nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// dispatch routes one input line to a chatbot operation.
func (m Model) dispatch(line string) (tea.Model, tea.Cmd) {
	if !strings.HasPrefix(line, "/") {
		m.append(m.styles.UserLabel.Render("you: ") + line)
		return m.startOp(askCmd(m.bot, line))
	}

	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "/quit", "/exit":
		m.quitting = true
		return m, tea.Quit
	case "/help":
		m.append(m.styles.Muted.Render(helpText))
		return m, nil
	case "/reset":
		m.bot.ResetConversation()
		m.append(m.styles.Success.Render("Conversation memory cleared."))
		return m, nil
	case "/load":
		return m.startOp(loadCmd(m.bot, arg))
	case "/add":
		if arg == "" {
			m.append(m.styles.Error.Render("Usage: /add <file>"))
			return m, nil
		}
		return m.startOp(addCmd(m.bot, arg))
	case "/search":
		if arg == "" {
			m.append(m.styles.Error.Render("Usage: /search <query>"))
			return m, nil
		}
		m.append(m.styles.UserLabel.Render("search: ") + arg)
		return m.startOp(searchCmd(m.bot, arg, 0))
	case "/info":
		return m.startOp(infoCmd(m.bot))
	default:
		m.append(m.styles.Error.Render("Unknown command: " + cmd))
		return m, nil
	}
}

func (m Model) startOp(op tea.Cmd) (tea.Model, tea.Cmd) {
	m.busy = true
	m.refreshViewport()
	return m, tea.Batch(op, m.spinner.Tick)
}

func (m *Model) renderAskResult(r chatbot.AskResult) {
	if r.Status != chatbot.StatusSuccess {
		if r.Answer != "" {
			m.append(m.styles.BotLabel.Render("bot: ") + m.styles.Answer.Render(r.Answer))
		}
		m.append(m.styles.Error.Render(r.Message))
		return
	}
	m.append(m.styles.BotLabel.Render("bot: ") + m.styles.Answer.Render(r.Answer))
	for _, src := range r.Sources {
		name := src.Metadata[documents.MetaFileName]
		if name == "" {
			name = src.Metadata[documents.MetaSourceFile]
		}
		m.append(m.styles.Source.Render(fmt.Sprintf("— %s: %s", name, src.Content)))
	}
}

func (m *Model) renderSearchResults(msg searchDoneMsg) {
	if msg.err != nil {
		m.append(m.styles.Error.Render(msg.err.Error()))
		return
	}
	if len(msg.results) == 0 {
		m.append(m.styles.Muted.Render("No results."))
		return
	}
	for i, r := range msg.results {
		name := r.Metadata[documents.MetaFileName]
		m.append(m.styles.Source.Render(fmt.Sprintf("%d. [%.3f] %s", i+1, r.Score, name)))
		m.append(m.styles.Answer.Render("   " + firstLine(r.Content)))
	}
}

func (m *Model) renderInfo(info chatbot.SystemInfo) {
	state := "not ready (no documents indexed)"
	if info.Ready {
		state = "ready"
	}
	m.append(m.styles.Muted.Render(fmt.Sprintf(
		"store=%s model=%s chunk=%d/%d k=%d records=%d turns=%d  %s",
		info.VectorDBType, info.Model, info.ChunkSize, info.ChunkOverlap,
		info.RetrievalK, info.RecordCount, info.ConversationTurns, state)))
}

func (m *Model) renderStatusLine(status, message string) {
	switch status {
	case chatbot.StatusSuccess:
		m.append(m.styles.Success.Render(message))
	case chatbot.StatusWarning:
		m.append(m.styles.Warning.Render(message))
	default:
		m.append(m.styles.Error.Render(message))
	}
}

func (m *Model) append(line string) {
	m.transcript = append(m.transcript, line)
	m.refreshViewport()
}

func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(strings.Join(m.transcript, "\n"))
	m.viewport.GotoBottom()
}

// View renders transcript, input line and status bar.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "loading..."
	}

	status := m.styles.StatusBar.Width(m.width).Render("ctrl+c to quit")
	if m.busy {
		status = m.styles.StatusBar.Width(m.width).Render(m.spinner.View() + " working...")
	}

	return m.viewport.View() + "\n" +
		m.styles.Input.Width(m.width).Render(m.input.View()) + "\n" +
		status
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
