package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"diagramio/internal/adapters/tui/styles"
	"diagramio/internal/application/editor"
	"diagramio/internal/application/state"
	"diagramio/internal/domain"
)

// LibraryKeyMap defines key bindings for the library pane
type LibraryKeyMap struct {
	Up        key.Binding
	Down      key.Binding
	Enter     key.Binding
	New       key.Binding
	NewFolder key.Binding
	Rename    key.Binding
	Delete    key.Binding
	Move      key.Binding
	Refresh   key.Binding
}

var LibraryKeys = LibraryKeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "toggle/open"),
	),
	New: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "new diagram"),
	),
	NewFolder: key.NewBinding(
		key.WithKeys("N"),
		key.WithHelp("N", "new folder"),
	),
	Rename: key.NewBinding(
		key.WithKeys("R"),
		key.WithHelp("R", "rename folder"),
	),
	Delete: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "delete"),
	),
	Move: key.NewBinding(
		key.WithKeys("m"),
		key.WithHelp("m", "move"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
}

// libraryRow is one rendered line: a folder or a diagram under it.
type libraryRow struct {
	folder  *domain.FolderRef
	diagram *domain.DiagramItem
	depth   int
	loading bool
}

// LibraryModel is the folder tree pane: folders expand lazily, diagrams
// open into the editor.
type LibraryModel struct {
	ViewState
	store *state.Store
	coord *state.Coordinator
	pipe  *editor.Pipeline

	rows    []libraryRow
	cursor  int
	offset  int
	spinner spinner.Model
}

// NewLibraryModel creates the library pane over the shared store.
func NewLibraryModel(store *state.Store, coord *state.Coordinator, pipe *editor.Pipeline) *LibraryModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.MutedText
	return &LibraryModel{
		store:   store,
		coord:   coord,
		pipe:    pipe,
		spinner: sp,
	}
}

// Init triggers the initial folder fetch.
func (m *LibraryModel) Init() tea.Cmd {
	return tea.Batch(m.fetchFolders, m.spinner.Tick)
}

func (m *LibraryModel) fetchFolders() tea.Msg {
	if err := m.coord.FetchFolders(context.Background()); err != nil {
		return ErrMsg{err}
	}
	return StateChangedMsg{}
}

// Update handles messages for the library pane
func (m *LibraryModel) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case StateChangedMsg:
		m.rebuild()
		return nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return nil
}

func (m *LibraryModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, LibraryKeys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return nil

	case key.Matches(msg, LibraryKeys.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
		return nil

	case key.Matches(msg, LibraryKeys.Enter):
		row := m.selectedRow()
		if row == nil {
			return nil
		}
		if row.folder != nil {
			return m.toggleFolder(row.folder.ID)
		}
		if row.diagram != nil {
			return m.openDiagram(row.diagram.ID)
		}
		return nil

	case key.Matches(msg, LibraryKeys.New):
		folderID := m.cursorFolderID()
		return func() tea.Msg {
			if err := m.pipe.New(context.Background(), folderID, ""); err != nil {
				return ErrMsg{err}
			}
			return DocumentLoadedMsg{}
		}

	case key.Matches(msg, LibraryKeys.NewFolder):
		parentID := m.cursorFolderID()
		return func() tea.Msg {
			return SwitchToFolderFormMsg{ParentID: parentID}
		}

	case key.Matches(msg, LibraryKeys.Rename):
		row := m.selectedRow()
		if row == nil || row.folder == nil {
			return nil
		}
		id, name := row.folder.ID, row.folder.Name
		return func() tea.Msg {
			return SwitchToFolderFormMsg{RenameID: id, CurrentName: name}
		}

	case key.Matches(msg, LibraryKeys.Delete):
		row := m.selectedRow()
		if row == nil {
			return nil
		}
		if row.diagram != nil {
			d := *row.diagram
			return func() tea.Msg {
				return SwitchToConfirmMsg{
					Question:  fmt.Sprintf("Delete diagram %q?", d.DisplayName()),
					DiagramID: d.ID,
				}
			}
		}
		if row.folder != nil {
			f := *row.folder
			if root := m.store.RootFolder(); root != nil && root.ID == f.ID {
				return func() tea.Msg {
					return ErrMsg{fmt.Errorf("the root folder cannot be deleted")}
				}
			}
			return func() tea.Msg {
				return SwitchToConfirmMsg{
					Question: fmt.Sprintf("Delete folder %q? Only empty folders can be deleted.", f.Name),
					FolderID: f.ID,
				}
			}
		}
		return nil

	case key.Matches(msg, LibraryKeys.Move):
		row := m.selectedRow()
		if row == nil || row.diagram == nil {
			return nil
		}
		d := *row.diagram
		return func() tea.Msg {
			return SwitchToMoveMsg{DiagramID: d.ID, Name: d.DisplayName()}
		}

	case key.Matches(msg, LibraryKeys.Refresh):
		return func() tea.Msg {
			if err := m.coord.RefreshExpanded(context.Background()); err != nil {
				return ErrMsg{err}
			}
			return StateChangedMsg{}
		}
	}
	return nil
}

func (m *LibraryModel) toggleFolder(folderID int64) tea.Cmd {
	return func() tea.Msg {
		if err := m.coord.ToggleFolder(context.Background(), folderID); err != nil {
			return ErrMsg{err}
		}
		return StateChangedMsg{}
	}
}

func (m *LibraryModel) openDiagram(id int64) tea.Cmd {
	return func() tea.Msg {
		if err := m.pipe.Select(context.Background(), id); err != nil {
			return ErrMsg{err}
		}
		return DocumentLoadedMsg{}
	}
}

func (m *LibraryModel) selectedRow() *libraryRow {
	if m.cursor >= 0 && m.cursor < len(m.rows) {
		return &m.rows[m.cursor]
	}
	return nil
}

// cursorFolderID returns the folder context at the cursor: the folder row
// itself, the containing folder of a diagram row, or the root.
func (m *LibraryModel) cursorFolderID() int64 {
	if row := m.selectedRow(); row != nil {
		if row.folder != nil {
			return row.folder.ID
		}
		if row.diagram != nil {
			return row.diagram.FolderID
		}
	}
	if root := m.store.RootFolder(); root != nil {
		return root.ID
	}
	return 0
}

// rebuild projects the store snapshot into display rows: every folder in
// flattened order, with the cached diagram list under each expanded one.
func (m *LibraryModel) rebuild() {
	m.rows = m.rows[:0]
	for _, ref := range m.store.FlattenedFolders() {
		ref := ref
		m.rows = append(m.rows, libraryRow{folder: &ref, depth: ref.Depth})

		if !m.store.IsExpanded(ref.ID) {
			continue
		}
		if m.store.IsRefreshing(ref.ID) && !m.store.IsLoaded(ref.ID) {
			m.rows = append(m.rows, libraryRow{depth: ref.Depth + 1, loading: true})
			continue
		}
		items := m.store.DiagramsForFolder(ref.ID)
		domain.SortDiagrams(items)
		for i := range items {
			m.rows = append(m.rows, libraryRow{diagram: &items[i], depth: ref.Depth + 1})
		}
	}
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// View renders the library pane content
func (m *LibraryModel) View() string {
	if len(m.rows) == 0 {
		return styles.MutedText.Render("Loading folders...")
	}

	visible := m.Height
	if visible < 1 {
		visible = len(m.rows)
	}
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+visible {
		m.offset = m.cursor - visible + 1
	}

	selected := m.store.Snapshot().SelectedDiagram

	var b strings.Builder
	end := min(m.offset+visible, len(m.rows))
	for i := m.offset; i < end; i++ {
		b.WriteString(m.renderRow(m.rows[i], i == m.cursor, selected))
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m *LibraryModel) renderRow(row libraryRow, underCursor bool, selectedDiagram int64) string {
	indent := strings.Repeat("  ", row.depth)

	if row.loading {
		return indent + m.spinner.View() + styles.MutedText.Render(" loading…")
	}

	var prefix, text string
	var style = styles.NodeDiagram
	switch {
	case row.folder != nil:
		if m.store.IsExpanded(row.folder.ID) {
			prefix = styles.TreeExpanded
		} else {
			prefix = styles.TreeCollapsed
		}
		text = row.folder.Name
		style = styles.NodeFolder
		if root := m.store.RootFolder(); root != nil && root.ID == row.folder.ID {
			style = styles.NodeRoot
		}
		if m.store.IsRefreshing(row.folder.ID) {
			text += " " + m.spinner.View()
		}
	case row.diagram != nil:
		prefix = styles.TreeLeaf
		text = row.diagram.DisplayName()
		if row.diagram.ID == selectedDiagram {
			style = styles.NodeOpen
		}
	}

	styled := style.Render(text)
	if underCursor {
		styled = styles.NodeSelected.Render(text)
	}
	return indent + styles.TreeBranch.Render(prefix) + styled
}
