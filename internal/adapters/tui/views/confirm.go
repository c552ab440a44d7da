package views

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"diagramio/internal/adapters/tui/styles"
	"diagramio/internal/application/editor"
	"diagramio/internal/application/state"
)

// ConfirmKeyMap defines key bindings for the confirmation dialog
type ConfirmKeyMap struct {
	Confirm key.Binding
	Cancel  key.Binding
}

var DefaultConfirmKeys = ConfirmKeyMap{
	Confirm: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "confirm"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("n", "esc"),
		key.WithHelp("n/esc", "cancel"),
	),
}

// deleteDoneMsg reports the outcome of a confirmed delete.
type deleteDoneMsg struct {
	err error
}

// ConfirmModel is the delete confirmation dialog, covering both diagram
// and folder deletes.
type ConfirmModel struct {
	ViewState
	coord *state.Coordinator
	pipe  *editor.Pipeline

	keys     ConfirmKeyMap
	question string
	// Exactly one of diagramID/folderID is set per Open.
	diagramID int64
	folderID  int64
}

// NewConfirmModel creates the confirmation dialog.
func NewConfirmModel(coord *state.Coordinator, pipe *editor.Pipeline) *ConfirmModel {
	return &ConfirmModel{coord: coord, pipe: pipe, keys: DefaultConfirmKeys}
}

// Open prepares the dialog for one delete.
func (m *ConfirmModel) Open(msg SwitchToConfirmMsg) {
	m.question = msg.Question
	m.diagramID = msg.DiagramID
	m.folderID = msg.FolderID
	m.ClearMessage()
}

// Update handles messages for the confirmation dialog
func (m *ConfirmModel) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case deleteDoneMsg:
		if msg.err != nil {
			m.SetMessage(msg.err.Error(), true)
			return nil
		}
		return tea.Batch(
			func() tea.Msg { return CloseDialogMsg{} },
			func() tea.Msg { return DocumentLoadedMsg{} },
		)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Cancel):
			return func() tea.Msg { return CloseDialogMsg{} }
		case key.Matches(msg, m.keys.Confirm):
			return m.confirm()
		}
	}
	return nil
}

func (m *ConfirmModel) confirm() tea.Cmd {
	if m.diagramID != 0 {
		id := m.diagramID
		return func() tea.Msg {
			return deleteDoneMsg{err: m.pipe.Delete(context.Background(), id)}
		}
	}
	id := m.folderID
	return func() tea.Msg {
		return deleteDoneMsg{err: m.coord.DeleteFolder(context.Background(), id)}
	}
}

// View renders the confirmation dialog
func (m *ConfirmModel) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render("Confirm Delete"))
	b.WriteString("\n\n")
	b.WriteString(m.question)
	b.WriteString("\n\n")

	if m.Message != "" {
		b.WriteString(styles.ErrorMsg.Render(m.Message))
		b.WriteString("\n\n")
	}

	b.WriteString(styles.HelpKey.Render("y"))
	b.WriteString(styles.HelpDesc.Render(" to confirm, "))
	b.WriteString(styles.HelpKey.Render("n"))
	b.WriteString(styles.HelpDesc.Render(" to cancel"))

	return styles.App.Render(b.String())
}
