package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"diagramio/internal/adapters/tui/styles"
	"diagramio/internal/application/state"
	"diagramio/internal/domain"
)

// MoveKeyMap defines key bindings for the move dialog
type MoveKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Cancel key.Binding
}

var DefaultMoveKeys = MoveKeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Select: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "move here"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
}

// moveDoneMsg reports the outcome of a move.
type moveDoneMsg struct {
	err error
}

// MoveModel is the destination-folder picker shown when moving a diagram.
type MoveModel struct {
	ViewState
	store *state.Store
	coord *state.Coordinator

	keys      MoveKeyMap
	diagramID int64
	name      string
	folders   []domain.FolderRef
	cursor    int
}

// NewMoveModel creates the move dialog over the shared store.
func NewMoveModel(store *state.Store, coord *state.Coordinator) *MoveModel {
	return &MoveModel{store: store, coord: coord, keys: DefaultMoveKeys}
}

// Open prepares the dialog for moving one diagram.
func (m *MoveModel) Open(msg SwitchToMoveMsg) {
	m.diagramID = msg.DiagramID
	m.name = msg.Name
	m.folders = m.store.FlattenedFolders()
	m.cursor = 0
	m.ClearMessage()
}

// Update handles messages for the move dialog
func (m *MoveModel) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case moveDoneMsg:
		if msg.err != nil {
			m.SetMessage(msg.err.Error(), true)
			return nil
		}
		return tea.Batch(
			func() tea.Msg { return CloseDialogMsg{} },
			func() tea.Msg { return StateChangedMsg{} },
		)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Cancel):
			return func() tea.Msg { return CloseDialogMsg{} }

		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
			return nil

		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.folders)-1 {
				m.cursor++
			}
			return nil

		case key.Matches(msg, m.keys.Select):
			if m.cursor >= len(m.folders) {
				return nil
			}
			target := m.folders[m.cursor].ID
			return func() tea.Msg {
				return moveDoneMsg{err: m.coord.MoveDiagram(context.Background(), m.diagramID, target)}
			}
		}
	}
	return nil
}

// View renders the move dialog
func (m *MoveModel) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render(fmt.Sprintf("Move %q", m.name)))
	b.WriteString("\n\n")

	if len(m.folders) == 0 {
		b.WriteString(styles.MutedText.Render("No folders available."))
	}
	for i, ref := range m.folders {
		indent := strings.Repeat("  ", ref.Depth)
		line := indent + ref.Name
		if i == m.cursor {
			line = styles.NodeSelected.Render(line)
		} else {
			line = styles.NodeFolder.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if m.Message != "" {
		b.WriteString("\n")
		b.WriteString(styles.ErrorMsg.Render(m.Message))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.HelpKey.Render("enter") + " " + styles.HelpDesc.Render("move here"))
	b.WriteString("  ")
	b.WriteString(styles.HelpKey.Render("esc") + " " + styles.HelpDesc.Render("cancel"))

	return styles.App.Render(b.String())
}
