// Package tui renders the chat loop as a Bubble Tea application: a
// transcript viewport above a single-line input.
package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ChatPort is the TUI-facing subset of the turn handler.
type ChatPort interface {
	Respond(message string) (string, error)
}

// Model is the Bubble Tea model for the chat application.
type Model struct {
	bot      ChatPort
	input    textinput.Model
	viewport viewport.Model
	level    zap.AtomicLevel
	lines    []string
	status   string
	ready    bool
}

// New creates a new chat model. The atomic level backs the /debug toggle.
func New(bot ChatPort, level zap.AtomicLevel) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about a spell and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		bot:      bot,
		input:    ti,
		viewport: vp,
		level:    level,
		status:   "Ready. /debug toggles score logging, /quit exits.",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, th := transcriptBoxStyle.GetFrameSize()
		_, ih := inputBoxStyle.GetFrameSize()
		reserved := 1 + 1 + ih + 1 // header, spacer, input frame, status
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-th)
		m.refreshTranscript()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		if msg.String() == "enter" {
			message := strings.TrimSpace(m.input.Value())
			if message == "" {
				break
			}
			m.input.SetValue("")
			switch message {
			case "/quit":
				return m, tea.Quit
			case "/debug":
				if m.level.Level() == zapcore.DebugLevel {
					m.level.SetLevel(zapcore.InfoLevel)
					m.status = "Debug logging disabled."
				} else {
					m.level.SetLevel(zapcore.DebugLevel)
					m.status = "Debug logging enabled."
				}
				return m, nil
			}
			m.runTurn(message)
			m.refreshTranscript()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) runTurn(message string) {
	m.lines = append(m.lines, userStyle.Render("You: ")+message)
	response, err := m.bot.Respond(message)
	if err != nil {
		m.status = "Error: " + err.Error()
		return
	}
	m.lines = append(m.lines, botStyle.Render("Grimoire: ")+response, "")
	m.status = "Ready."
}

func (m *Model) refreshTranscript() {
	if len(m.lines) == 0 {
		m.viewport.SetContent("Welcome to the spell grimoire. Ask away.")
		return
	}
	m.viewport.SetContent(strings.Join(m.lines, "\n"))
	m.viewport.GotoBottom()
}

// View renders the TUI layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Grimoire")
	transcript := transcriptBoxStyle.Render(m.viewport.View())
	input := inputBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	return header + "\n" + transcript + "\n" + input + "\n" + status
}

var (
	transcriptBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	userStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	botStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
