package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"diagramio/internal/adapters/tui/styles"
)

// HelpKeyMap defines key bindings for the help view
type HelpKeyMap struct {
	Close key.Binding
}

var HelpKeys = HelpKeyMap{
	Close: key.NewBinding(
		key.WithKeys("esc", "q", "?"),
		key.WithHelp("esc/q/?", "close"),
	),
}

// HelpModel is the model for the help view
type HelpModel struct {
	ViewState
}

// NewHelpModel creates a new help view model
func NewHelpModel() *HelpModel {
	return &HelpModel{}
}

// Update handles messages for the help view
func (m *HelpModel) Update(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if key.Matches(msg, HelpKeys.Close) {
			return func() tea.Msg { return CloseDialogMsg{} }
		}
	}
	return nil
}

// View renders the help view
func (m *HelpModel) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render("Diagramio Help"))
	b.WriteString("\n\n")

	b.WriteString(styles.Subtitle.Render("Terminal Diagram Editor"))
	b.WriteString("\n\n")

	b.WriteString(styles.InputLabel.Render("Panels"))
	b.WriteString("\n")
	b.WriteString(helpLine("tab", "Cycle focus (library / editor / command)"))
	b.WriteString(helpLine("esc", "Return focus to the library"))
	b.WriteString(helpLine("1 / 2 / 3 / 4", "Toggle editor/preview/library/command (library focus)"))
	b.WriteString(helpLine("0", "Reset panel layout (library focus)"))
	b.WriteString("\n")

	b.WriteString(styles.InputLabel.Render("Library"))
	b.WriteString("\n")
	b.WriteString(helpLine("j / k / ↑ / ↓", "Move up/down"))
	b.WriteString(helpLine("enter", "Expand folder / open diagram"))
	b.WriteString(helpLine("n / N", "New diagram / new folder"))
	b.WriteString(helpLine("R", "Rename folder"))
	b.WriteString(helpLine("d", "Delete diagram or folder"))
	b.WriteString(helpLine("m", "Move diagram"))
	b.WriteString(helpLine("r", "Refresh expanded folders"))
	b.WriteString("\n")

	b.WriteString(styles.InputLabel.Render("Editor"))
	b.WriteString("\n")
	b.WriteString(helpLine("ctrl+t", "Edit title"))
	b.WriteString(helpLine("ctrl+y", "Copy definition to clipboard"))
	b.WriteString(helpLine("ctrl+o", "Open in $EDITOR"))
	b.WriteString("\n")

	b.WriteString(styles.InputLabel.Render("Command"))
	b.WriteString("\n")
	b.WriteString(helpLine("enter", "Send instruction to the assistant"))
	b.WriteString("\n")

	b.WriteString(styles.InputLabel.Render("General"))
	b.WriteString("\n")
	b.WriteString(helpLine("?", "Toggle help"))
	b.WriteString(helpLine("ctrl+c", "Quit"))
	b.WriteString("\n\n")

	b.WriteString(styles.HelpDesc.Render("Edits save automatically one second after you stop typing."))
	b.WriteString("\n\n")

	b.WriteString(styles.HelpDesc.Render("Press "))
	b.WriteString(styles.HelpKey.Render("esc"))
	b.WriteString(styles.HelpDesc.Render(" or "))
	b.WriteString(styles.HelpKey.Render("?"))
	b.WriteString(styles.HelpDesc.Render(" to close"))

	return styles.App.Render(b.String())
}

func helpLine(key, desc string) string {
	return "  " + styles.HelpKey.Render(padRight(key, 20)) + styles.HelpDesc.Render(desc) + "\n"
}

func padRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}
