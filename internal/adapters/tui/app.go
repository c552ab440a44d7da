// Package tui is the terminal front end: four toggleable panels over the
// shared store, coordinator, and save pipeline.
package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	editoradapter "diagramio/internal/adapters/editor"
	"diagramio/internal/adapters/tui/styles"
	"diagramio/internal/adapters/tui/views"
	"diagramio/internal/application/editor"
	"diagramio/internal/application/panel"
	"diagramio/internal/application/state"
	"diagramio/internal/ports"
)

// dialog identifies the modal view covering the panels, if any.
type dialog int

const (
	dialogNone dialog = iota
	dialogFolderForm
	dialogConfirm
	dialogMove
	dialogHelp
)

// focusTarget identifies the pane receiving keyboard input.
type focusTarget int

const (
	focusLibrary focusTarget = iota
	focusEditor
	focusCommand
)

// App is the main TUI application model
type App struct {
	store  *state.Store
	coord  *state.Coordinator
	pipe   *editor.Pipeline
	panels *panel.Manager
	opener *editoradapter.Opener

	dialog dialog
	focus  focusTarget

	library *views.LibraryModel
	editor  *views.EditorModel
	preview *views.PreviewModel
	command *views.CommandModel

	folderForm *views.FolderFormModel
	confirm    *views.ConfirmModel
	move       *views.MoveModel
	help       *views.HelpModel

	width   int
	height  int
	offline bool
}

// NewApp wires the panes over the shared application components.
func NewApp(store *state.Store, coord *state.Coordinator, pipe *editor.Pipeline, panels *panel.Manager, remote ports.RemoteStore, renderer ports.Renderer, opener *editoradapter.Opener) *App {
	return &App{
		store:  store,
		coord:  coord,
		pipe:   pipe,
		panels: panels,
		opener: opener,

		focus: focusLibrary,

		library: views.NewLibraryModel(store, coord, pipe),
		editor:  views.NewEditorModel(pipe),
		preview: views.NewPreviewModel(pipe, renderer),
		command: views.NewCommandModel(pipe),

		folderForm: views.NewFolderFormModel(coord, remote),
		confirm:    views.NewConfirmModel(coord, pipe),
		move:       views.NewMoveModel(store, coord),
		help:       views.NewHelpModel(),
	}
}

// Background refresh cadence. The tree poll catches folders created or
// deleted elsewhere; the diagram poll re-fetches expanded folders, tamed
// by the coordinator's minimum-interval guard.
const (
	folderPollEvery  = 60 * time.Second
	diagramPollEvery = 30 * time.Second
)

type bootstrapDoneMsg struct {
	err error
}

type folderPollMsg struct{}

type diagramPollMsg struct{}

type saveEventMsg struct {
	event editor.Event
}

type externalEditMsg struct {
	path string
	err  error
}

// Init starts the backend bootstrap, the initial folder fetch, and the save
// event listener.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.bootstrap,
		a.library.Init(),
		a.editor.Init(),
		a.command.Init(),
		a.waitForSaveEvent(),
		pollFolders(),
		pollDiagrams(),
	)
}

func pollFolders() tea.Cmd {
	return tea.Tick(folderPollEvery, func(time.Time) tea.Msg { return folderPollMsg{} })
}

func pollDiagrams() tea.Cmd {
	return tea.Tick(diagramPollEvery, func(time.Time) tea.Msg { return diagramPollMsg{} })
}

// refreshFolders re-syncs the folder tree in the background. Poll failures
// stay silent; the manual refresh key is the path that reports errors.
func (a *App) refreshFolders() tea.Cmd {
	return func() tea.Msg {
		if err := a.coord.FetchFolders(context.Background()); err != nil {
			return nil
		}
		return views.StateChangedMsg{}
	}
}

func (a *App) refreshDiagrams() tea.Cmd {
	return func() tea.Msg {
		if err := a.coord.RefreshExpanded(context.Background()); err != nil {
			return nil
		}
		return views.StateChangedMsg{}
	}
}

func (a *App) bootstrap() tea.Msg {
	return bootstrapDoneMsg{err: a.pipe.Bootstrap(context.Background())}
}

// waitForSaveEvent blocks on the pipeline's event channel and re-arms after
// every delivery.
func (a *App) waitForSaveEvent() tea.Cmd {
	return func() tea.Msg {
		return saveEventMsg{event: <-a.pipe.Events()}
	}
}

// Update handles messages for the application
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.recalcLayout()
		return a, nil

	case bootstrapDoneMsg:
		if msg.err != nil {
			a.offline = true
			return a, tea.Batch(
				a.command.Update(views.StatusMsg{Text: "Backend unavailable. Saving and AI are disabled.", Err: true}),
				a.broadcast(views.DocumentLoadedMsg{}),
			)
		}
		return a, a.broadcast(views.DocumentLoadedMsg{})

	case saveEventMsg:
		return a, tea.Batch(a.handleSaveEvent(msg.event), a.waitForSaveEvent())

	case folderPollMsg:
		return a, tea.Batch(a.refreshFolders(), pollFolders())

	case diagramPollMsg:
		return a, tea.Batch(a.refreshDiagrams(), pollDiagrams())

	case views.StateChangedMsg:
		return a, a.library.Update(msg)

	case views.DocumentLoadedMsg:
		return a, a.broadcast(msg)

	case views.ErrMsg:
		return a, a.command.Update(views.StatusMsg{Text: msg.Err.Error(), Err: true})

	case views.StatusMsg:
		return a, a.command.Update(msg)

	// Dialog switching
	case views.SwitchToFolderFormMsg:
		a.dialog = dialogFolderForm
		return a, a.folderForm.Open(msg)

	case views.SwitchToConfirmMsg:
		a.dialog = dialogConfirm
		a.confirm.Open(msg)
		return a, nil

	case views.SwitchToMoveMsg:
		a.dialog = dialogMove
		a.move.Open(msg)
		return a, nil

	case views.SwitchToHelpMsg:
		a.dialog = dialogHelp
		return a, nil

	case views.CloseDialogMsg:
		a.dialog = dialogNone
		return a, a.library.Update(views.StateChangedMsg{})

	case views.OpenExternalMsg:
		return a, a.openExternal(msg.Text)

	case externalEditMsg:
		if msg.err != nil {
			return a, a.command.Update(views.StatusMsg{Text: msg.err.Error(), Err: true})
		}
		text, err := a.opener.ReadBack(msg.path)
		if err != nil {
			return a, a.command.Update(views.StatusMsg{Text: err.Error(), Err: true})
		}
		a.editor.SetText(text)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	return a, a.routeToDialogOrFocus(msg)
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	if a.dialog != dialogNone {
		return a, a.routeToDialogOrFocus(msg)
	}

	switch msg.String() {
	case "tab":
		a.cycleFocus()
		return a, a.applyFocus()
	case "esc":
		if a.focus != focusLibrary {
			a.focus = focusLibrary
			return a, a.applyFocus()
		}
		return a, nil
	}

	// Layout and help keys live on the library pane so they never collide
	// with text entry.
	if a.focus == focusLibrary {
		switch msg.String() {
		case "q":
			return a, tea.Quit
		case "?":
			a.dialog = dialogHelp
			return a, nil
		case "1":
			a.panels.Toggle(panel.Editor)
			a.recalcLayout()
			return a, nil
		case "2":
			a.panels.Toggle(panel.Preview)
			a.recalcLayout()
			return a, nil
		case "3":
			a.panels.Toggle(panel.Library)
			a.recalcLayout()
			return a, nil
		case "4":
			a.panels.Toggle(panel.Command)
			a.recalcLayout()
			return a, nil
		case "0":
			a.panels.Reset()
			a.recalcLayout()
			return a, nil
		}
	}

	return a, a.routeToDialogOrFocus(msg)
}

func (a *App) routeToDialogOrFocus(msg tea.Msg) tea.Cmd {
	switch a.dialog {
	case dialogFolderForm:
		return a.folderForm.Update(msg)
	case dialogConfirm:
		return a.confirm.Update(msg)
	case dialogMove:
		return a.move.Update(msg)
	case dialogHelp:
		return a.help.Update(msg)
	}

	switch a.focus {
	case focusEditor:
		return a.editor.Update(msg)
	case focusCommand:
		return a.command.Update(msg)
	default:
		return a.library.Update(msg)
	}
}

func (a *App) cycleFocus() {
	switch a.focus {
	case focusLibrary:
		a.focus = focusEditor
	case focusEditor:
		a.focus = focusCommand
	default:
		a.focus = focusLibrary
	}
}

func (a *App) applyFocus() tea.Cmd {
	a.editor.Blur()
	a.command.Blur()
	switch a.focus {
	case focusEditor:
		return a.editor.Focus()
	case focusCommand:
		return a.command.Focus()
	}
	return nil
}

func (a *App) handleSaveEvent(ev editor.Event) tea.Cmd {
	if ev.Kind == editor.EventSaveFailed {
		text := "Save failed"
		if ev.Err != nil {
			text = "Save failed: " + ev.Err.Error()
		}
		return a.command.Update(views.StatusMsg{Text: text, Err: true})
	}
	if ev.Created {
		// First save assigned an identity; the library gains a row.
		return tea.Batch(
			a.library.Update(views.StateChangedMsg{}),
			a.command.Update(views.StatusMsg{Text: "Saved"}),
		)
	}
	return a.library.Update(views.StateChangedMsg{})
}

// broadcast forwards a message to every pane that mirrors document state.
func (a *App) broadcast(msg tea.Msg) tea.Cmd {
	return tea.Batch(
		a.editor.Update(msg),
		a.library.Update(msg),
	)
}

func (a *App) openExternal(text string) tea.Cmd {
	if a.opener == nil {
		return nil
	}
	path, err := a.opener.WriteTemp(text)
	if err != nil {
		return func() tea.Msg { return views.ErrMsg{Err: err} }
	}
	cmd, err := a.opener.Command(path)
	if err != nil {
		return func() tea.Msg { return views.ErrMsg{Err: err} }
	}
	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		return externalEditMsg{path: path, err: err}
	})
}

// recalcLayout pushes the current panel allocation into the panes. Frames
// take two columns and two rows; horizontal panes also carry one column of
// padding per side.
func (a *App) recalcLayout() {
	if a.width == 0 || a.height == 0 {
		return
	}

	cmdHeight := a.panels.Style(panel.Command).Size
	topHeight := a.height - cmdHeight - 3 // command frame plus the status row

	widths := a.panels.SplitRow(a.width, panel.Editor, panel.Preview, panel.Library)
	a.editor.SetSize(max(widths[0]-4, 1), max(topHeight-2, 1))
	a.preview.SetSize(max(widths[1]-4, 1), max(topHeight-2, 1))
	a.library.SetSize(max(widths[2]-4, 1), max(topHeight-2, 1))
	a.command.SetSize(max(a.width-4, 1), cmdHeight)
}

// View renders the panel layout or the active dialog
func (a *App) View() string {
	switch a.dialog {
	case dialogFolderForm:
		return a.folderForm.View()
	case dialogConfirm:
		return a.confirm.View()
	case dialogMove:
		return a.move.View()
	case dialogHelp:
		return a.help.View()
	}

	if a.width == 0 {
		return "Loading..."
	}

	cmdHeight := a.panels.Style(panel.Command).Size
	topHeight := a.height - cmdHeight - 3

	widths := a.panels.SplitRow(a.width, panel.Editor, panel.Preview, panel.Library)
	top := lipgloss.JoinHorizontal(lipgloss.Top,
		a.renderPane("Editor", panel.Editor, a.editor.View(), widths[0], topHeight, focusEditor),
		a.renderPane("Preview", panel.Preview, a.preview.View(), widths[1], topHeight, -1),
		a.renderPane("Library", panel.Library, a.library.View(), widths[2], topHeight, focusLibrary),
	)
	bottom := a.renderPane("Assistant", panel.Command, a.command.View(), a.width, cmdHeight+2, focusCommand)

	return lipgloss.JoinVertical(lipgloss.Left, top, bottom, a.statusBar())
}

// renderPane frames one panel, marking focus on the border. Collapsed
// panels shrink to a labelled sliver.
func (a *App) renderPane(title, id, content string, width, height int, focusID focusTarget) string {
	st := a.panels.Style(id)
	if st.Collapsed {
		return styles.PaneCollapsed.
			Width(max(width-2, 1)).
			Height(max(height-2, 1)).
			Render(string(title[0]))
	}

	frame := styles.Pane
	if focusID >= 0 && a.focus == focusID && a.dialog == dialogNone {
		frame = styles.PaneFocused
	}
	header := styles.PaneTitle.Render(title)
	return frame.
		Width(max(width-2, 1)).
		Height(max(height-2, 1)).
		Render(header + "\n" + content)
}

func (a *App) statusBar() string {
	doc := a.pipe.Document()

	left := doc.Title
	if left == "" {
		left = "Untitled"
	}
	if doc.RemoteID == 0 {
		left += styles.MutedText.Render(" (unsaved)")
	}
	if doc.Saving {
		left += " " + styles.StatusSaving.Render("saving…")
	}
	if a.offline {
		left += " " + styles.ErrorMsg.Render("offline")
	}

	right := styles.HelpKey.Render("tab") + styles.HelpDesc.Render(" focus") +
		styles.HelpSeparator.String() +
		styles.HelpKey.Render("?") + styles.HelpDesc.Render(" help") +
		styles.HelpSeparator.String() +
		styles.HelpKey.Render("ctrl+c") + styles.HelpDesc.Render(" quit")

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return styles.StatusBar.Width(a.width).Render(left + lipgloss.NewStyle().Width(gap).Render("") + right)
}
