package views

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"diagramio/internal/adapters/tui/styles"
	"diagramio/internal/application/editor"
)

const statusExpiry = 3 * time.Second

// CommandKeyMap defines key bindings for the command pane
type CommandKeyMap struct {
	Submit key.Binding
}

var CommandKeys = CommandKeyMap{
	Submit: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "send"),
	),
}

type commandStatus int

const (
	statusIdle commandStatus = iota
	statusProcessing
	statusSuccess
	statusError
)

// rewriteDoneMsg reports the outcome of an assistant round trip.
type rewriteDoneMsg struct {
	err error
}

// statusExpiredMsg clears a success status after its display window.
type statusExpiredMsg struct {
	seq int
}

// CommandModel is the assistant pane: a one-line instruction input plus a
// status line. Success status clears itself; errors stay until the next
// submission.
type CommandModel struct {
	ViewState
	pipe *editor.Pipeline

	input     textinput.Model
	status    commandStatus
	statusMsg string
	statusSeq int
}

// NewCommandModel creates the command pane bound to the pipeline.
func NewCommandModel(pipe *editor.Pipeline) *CommandModel {
	ti := textinput.New()
	ti.Placeholder = "Describe a change, e.g. \"add an error branch after login\""
	ti.CharLimit = 500
	ti.Prompt = "> "
	return &CommandModel{pipe: pipe, input: ti}
}

// Init returns the cursor blink command
func (m *CommandModel) Init() tea.Cmd {
	return textinput.Blink
}

// Focus gives keyboard focus to the instruction input.
func (m *CommandModel) Focus() tea.Cmd {
	return m.input.Focus()
}

// Blur removes keyboard focus from the pane.
func (m *CommandModel) Blur() {
	m.input.Blur()
}

// Update handles messages for the command pane
func (m *CommandModel) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case rewriteDoneMsg:
		if msg.err != nil {
			m.setStatus(statusError, msg.err.Error())
			return nil
		}
		m.input.SetValue("")
		return tea.Batch(
			m.setStatus(statusSuccess, "Diagram updated"),
			func() tea.Msg { return DocumentLoadedMsg{} },
		)

	case statusExpiredMsg:
		if msg.seq == m.statusSeq && m.status == statusSuccess {
			m.status = statusIdle
			m.statusMsg = ""
		}
		return nil

	case StatusMsg:
		if msg.Err {
			return m.setStatus(statusError, msg.Text)
		}
		return m.setStatus(statusSuccess, msg.Text)

	case tea.KeyMsg:
		if key.Matches(msg, CommandKeys.Submit) {
			return m.submit()
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *CommandModel) submit() tea.Cmd {
	if m.status == statusProcessing {
		return nil
	}
	instruction := m.input.Value()
	m.setStatus(statusProcessing, "Thinking…")
	return func() tea.Msg {
		return rewriteDoneMsg{err: m.pipe.Rewrite(context.Background(), instruction)}
	}
}

// setStatus records a new status; success statuses schedule their own expiry.
func (m *CommandModel) setStatus(s commandStatus, text string) tea.Cmd {
	m.status = s
	m.statusMsg = text
	m.statusSeq++
	if s != statusSuccess {
		return nil
	}
	seq := m.statusSeq
	return tea.Tick(statusExpiry, func(time.Time) tea.Msg {
		return statusExpiredMsg{seq: seq}
	})
}

// View renders the command pane content
func (m *CommandModel) View() string {
	line := m.input.View()

	var status string
	switch m.status {
	case statusProcessing:
		status = styles.StatusSaving.Render(m.statusMsg)
	case statusSuccess:
		status = styles.Success.Render(m.statusMsg)
	case statusError:
		status = styles.ErrorMsg.Render(m.statusMsg)
	default:
		if doc := m.pipe.Document(); doc.Saving {
			status = styles.StatusSaving.Render("Saving…")
		}
	}

	if status == "" {
		return line
	}
	return line + "\n" + status
}
