// Package chat is the terminal chat frontend over the agent driver.
package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/meeple-labs/rulebook-agent/pkg/agent"
)

type speaker int

const (
	speakerUser speaker = iota
	speakerAssistant
	speakerError
)

type line struct {
	who  speaker
	text string
}

// pendingClarification keeps the context needed to resume after the agent
// asked the user a question: the call to answer and the assistant message
// that made it.
type pendingClarification struct {
	callID  string
	message agent.Message
}

// turnMsg delivers a finished agent turn back into the update loop.
type turnMsg agent.Turn

// Model is the Bubble Tea model for the chat session.
type Model struct {
	driver     *agent.Driver
	input      textinput.Model
	viewport   viewport.Model
	history    []agent.Message
	transcript []line
	pending    *pendingClarification
	games      []string
	status     string
	busy       bool
	ready      bool
}

// New creates the chat model. games is shown in the header so the user
// knows which manuals are searchable.
func New(driver *agent.Driver, games []string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a rules question and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		driver:   driver,
		input:    ti,
		viewport: vp,
		games:    games,
		status:   "Ready.",
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, th := transcriptStyle.GetFrameSize()
		_, ih := inputBoxStyle.GetFrameSize()
		reserved := 2 + 1 + ih + 1 // header + summary, spacer, input frame, status
		vh := msg.Height - reserved - th
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = maxInt(20, msg.Width)
		m.viewport.Height = vh
		m.viewport.SetContent(m.renderTranscript())
		m.viewport.GotoBottom()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		if msg.String() == "enter" && !m.busy {
			text := strings.TrimSpace(m.input.Value())
			if text != "" {
				m.input.SetValue("")
				m.transcript = append(m.transcript, line{who: speakerUser, text: text})
				m.busy = true
				m.status = "Thinking..."
				m.viewport.SetContent(m.renderTranscript())
				m.viewport.GotoBottom()
				return m, m.submit(text)
			}
		}

	case turnMsg:
		m.busy = false
		turn := agent.Turn(msg)
		m.history = turn.History
		switch turn.Kind {
		case agent.TurnClarification:
			m.pending = &pendingClarification{callID: turn.CallID, message: turn.PendingMessage}
			m.transcript = append(m.transcript, line{who: speakerAssistant, text: turn.Content})
			m.status = "Waiting for your answer."
		case agent.TurnError:
			// A failed turn drops any pending clarification; resuming it
			// later against a rolled-back history would desync the thread.
			m.pending = nil
			m.transcript = append(m.transcript, line{who: speakerError, text: turn.Content})
			m.status = "Ready."
		default:
			m.pending = nil
			m.transcript = append(m.transcript, line{who: speakerAssistant, text: turn.Content})
			m.status = "Ready."
		}
		m.viewport.SetContent(m.renderTranscript())
		m.viewport.GotoBottom()
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

// submit runs the agent turn off the UI loop. A pending clarification makes
// the input an answer to that question instead of a fresh message.
func (m Model) submit(text string) tea.Cmd {
	driver := m.driver
	history := m.history
	pending := m.pending
	return func() tea.Msg {
		ctx := context.Background()
		if pending != nil {
			return turnMsg(driver.Resume(ctx, history, pending.message, pending.callID, text))
		}
		return turnMsg(driver.Send(ctx, history, text))
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := headerStyle.Render("Board Game Rules Assistant")
	summary := summaryStyle.Render(m.gamesSummary())
	transcript := transcriptStyle.Render(m.viewport.View())
	input := inputBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + summary + "\n" + transcript + "\n" + input + "\n" + status
}

func (m Model) gamesSummary() string {
	if len(m.games) == 0 {
		return "No manuals ingested yet. Run the ingest command first."
	}
	return "Manuals: " + strings.Join(m.games, ", ")
}

func (m Model) renderTranscript() string {
	if len(m.transcript) == 0 {
		return "Ask about any of the ingested game manuals."
	}
	parts := make([]string, 0, len(m.transcript))
	for _, l := range m.transcript {
		switch l.who {
		case speakerUser:
			parts = append(parts, userStyle.Render("You: ")+l.text)
		case speakerError:
			parts = append(parts, errorStyle.Render(fmt.Sprintf("Error: %s", l.text)))
		default:
			parts = append(parts, assistantStyle.Render("Assistant: ")+l.text)
		}
	}
	return strings.Join(parts, "\n\n")
}

var (
	headerStyle     = lipgloss.NewStyle().Bold(true)
	summaryStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	transcriptStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	statusStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	userStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
	assistantStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
