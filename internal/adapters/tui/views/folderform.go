package views

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"diagramio/internal/adapters/tui/styles"
	"diagramio/internal/application/state"
	"diagramio/internal/domain"
)

// FormKeyMap defines key bindings for dialog forms
type FormKeyMap struct {
	Submit key.Binding
	Cancel key.Binding
}

var DefaultFormKeys = FormKeyMap{
	Submit: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "submit"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
}

// folderSavedMsg reports the outcome of a folder create or rename.
type folderSavedMsg struct {
	err error
}

// FolderFormModel is the create/rename folder dialog.
type FolderFormModel struct {
	ViewState
	coord  *state.Coordinator
	remote folderRenamer

	input    textinput.Model
	keys     FormKeyMap
	parentID int64
	renameID int64
}

// folderRenamer is the slice of the remote surface the rename path needs.
type folderRenamer interface {
	RenameFolder(ctx context.Context, id int64, name string) (*domain.Folder, error)
}

// NewFolderFormModel creates the folder dialog.
func NewFolderFormModel(coord *state.Coordinator, remote folderRenamer) *FolderFormModel {
	ti := textinput.New()
	ti.Placeholder = "Folder name"
	ti.CharLimit = 120
	return &FolderFormModel{coord: coord, remote: remote, input: ti, keys: DefaultFormKeys}
}

// Open prepares the dialog for a create (RenameID 0) or rename.
func (m *FolderFormModel) Open(msg SwitchToFolderFormMsg) tea.Cmd {
	m.parentID = msg.ParentID
	m.renameID = msg.RenameID
	m.input.SetValue(msg.CurrentName)
	m.ClearMessage()
	return tea.Batch(m.input.Focus(), textinput.Blink)
}

// Update handles messages for the folder dialog
func (m *FolderFormModel) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case folderSavedMsg:
		if msg.err != nil {
			m.SetMessage(msg.err.Error(), true)
			return nil
		}
		return func() tea.Msg { return CloseDialogMsg{} }

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Cancel):
			return func() tea.Msg { return CloseDialogMsg{} }
		case key.Matches(msg, m.keys.Submit):
			return m.submit()
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *FolderFormModel) submit() tea.Cmd {
	name := strings.TrimSpace(m.input.Value())
	if name == "" {
		m.SetMessage("folder name is required", true)
		return nil
	}

	if m.renameID != 0 {
		id := m.renameID
		return func() tea.Msg {
			if _, err := m.remote.RenameFolder(context.Background(), id, name); err != nil {
				return folderSavedMsg{err}
			}
			if err := m.coord.FetchFolders(context.Background()); err != nil {
				return folderSavedMsg{err}
			}
			return folderSavedMsg{}
		}
	}

	parentID := m.parentID
	return func() tea.Msg {
		return folderSavedMsg{err: m.coord.CreateFolder(context.Background(), name, parentID)}
	}
}

// View renders the folder dialog
func (m *FolderFormModel) View() string {
	var b strings.Builder

	if m.renameID != 0 {
		b.WriteString(styles.Title.Render("Rename Folder"))
	} else {
		b.WriteString(styles.Title.Render("New Folder"))
	}
	b.WriteString("\n\n")
	b.WriteString(styles.InputLabel.Render("Name"))
	b.WriteString("\n")
	b.WriteString(styles.InputFocused.Render(m.input.View()))
	b.WriteString("\n\n")

	if m.Message != "" {
		b.WriteString(styles.ErrorMsg.Render(m.Message))
		b.WriteString("\n\n")
	}

	b.WriteString(styles.HelpKey.Render("enter") + " " + styles.HelpDesc.Render("save"))
	b.WriteString("  ")
	b.WriteString(styles.HelpKey.Render("esc") + " " + styles.HelpDesc.Render("cancel"))

	return styles.App.Render(b.String())
}
