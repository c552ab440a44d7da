package views

import (
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"diagramio/internal/adapters/tui/styles"
	"diagramio/internal/application/editor"
)

// EditorKeyMap defines key bindings for the editor pane
type EditorKeyMap struct {
	Title key.Binding
	Copy  key.Binding
	Open  key.Binding
}

var EditorKeys = EditorKeyMap{
	Title: key.NewBinding(
		key.WithKeys("ctrl+t"),
		key.WithHelp("ctrl+t", "edit title"),
	),
	Copy: key.NewBinding(
		key.WithKeys("ctrl+y"),
		key.WithHelp("ctrl+y", "copy"),
	),
	Open: key.NewBinding(
		key.WithKeys("ctrl+o"),
		key.WithHelp("ctrl+o", "open in $EDITOR"),
	),
}

// OpenExternalMsg asks the root model to open the current text in $EDITOR.
type OpenExternalMsg struct {
	Text string
}

// EditorModel is the text editing pane: a definition buffer plus a title
// line, both feeding the save pipeline on every change.
type EditorModel struct {
	ViewState
	pipe *editor.Pipeline

	textarea   textarea.Model
	title      textinput.Model
	titleFocus bool
}

// NewEditorModel creates the editor pane bound to the pipeline.
func NewEditorModel(pipe *editor.Pipeline) *EditorModel {
	ta := textarea.New()
	ta.Placeholder = "Enter diagram definition..."
	ta.ShowLineNumbers = true
	ta.Focus()

	ti := textinput.New()
	ti.Placeholder = "Untitled"
	ti.CharLimit = 120
	ti.Prompt = ""

	m := &EditorModel{pipe: pipe, textarea: ta, title: ti}
	m.Reload()
	return m
}

// Init returns the cursor blink command
func (m *EditorModel) Init() tea.Cmd {
	return textarea.Blink
}

// Reload replaces both buffers from the pipeline's open document. Called
// after a document switch so pane state never drifts from the pipeline.
func (m *EditorModel) Reload() {
	doc := m.pipe.Document()
	m.textarea.SetValue(doc.Text)
	m.title.SetValue(doc.Title)
}

// Focus gives keyboard focus to the definition buffer.
func (m *EditorModel) Focus() tea.Cmd {
	m.titleFocus = false
	m.title.Blur()
	return m.textarea.Focus()
}

// Blur removes keyboard focus from the pane.
func (m *EditorModel) Blur() {
	m.textarea.Blur()
	m.title.Blur()
	m.titleFocus = false
}

// Update handles messages for the editor pane
func (m *EditorModel) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case DocumentLoadedMsg:
		m.Reload()
		return nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, EditorKeys.Title):
			if m.titleFocus {
				return m.Focus()
			}
			m.titleFocus = true
			m.textarea.Blur()
			return m.title.Focus()

		case key.Matches(msg, EditorKeys.Copy):
			text := m.textarea.Value()
			return func() tea.Msg {
				if err := clipboard.WriteAll(text); err != nil {
					return ErrMsg{err}
				}
				return StatusMsg{Text: "Copied to clipboard"}
			}

		case key.Matches(msg, EditorKeys.Open):
			text := m.textarea.Value()
			return func() tea.Msg {
				return OpenExternalMsg{Text: text}
			}
		}
	}

	var cmd tea.Cmd
	if m.titleFocus {
		m.title, cmd = m.title.Update(msg)
		m.pipe.SetTitle(m.title.Value())
	} else {
		m.textarea, cmd = m.textarea.Update(msg)
		m.pipe.SetText(m.textarea.Value())
	}
	return cmd
}

// SetText replaces the definition buffer, e.g. after an external edit or an
// assistant rewrite.
func (m *EditorModel) SetText(text string) {
	m.textarea.SetValue(text)
	m.pipe.SetText(text)
}

// SetSize updates the pane dimensions
func (m *EditorModel) SetSize(width, height int) {
	m.ViewState.SetSize(width, height)
	m.textarea.SetWidth(width)
	// Title line and its label take the top two rows.
	if height > 2 {
		m.textarea.SetHeight(height - 2)
	}
}

// View renders the editor pane content
func (m *EditorModel) View() string {
	titleLine := m.title.View()
	if m.titleFocus {
		titleLine = styles.InputLabel.Render("Title: ") + titleLine
	} else {
		titleLine = styles.MutedText.Render("Title: ") + titleLine
	}
	return titleLine + "\n" + m.textarea.View()
}
