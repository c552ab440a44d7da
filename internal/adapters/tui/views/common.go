package views

// ViewState contains common state shared by all pane models.
// Embed this struct in pane models to get width/height and message handling.
type ViewState struct {
	Width      int
	Height     int
	Message    string
	MessageErr bool
}

// SetSize updates the view dimensions
func (s *ViewState) SetSize(width, height int) {
	s.Width = width
	s.Height = height
}

// SetMessage sets a message to display in the view
func (s *ViewState) SetMessage(msg string, isErr bool) {
	s.Message = msg
	s.MessageErr = isErr
}

// ClearMessage clears the current message
func (s *ViewState) ClearMessage() {
	s.Message = ""
	s.MessageErr = false
}

// --- shared messages ---

// StateChangedMsg signals that the folder/diagram store changed and panes
// reading from it should rebuild.
type StateChangedMsg struct{}

// DocumentLoadedMsg signals that a different document is now open and the
// editor pane should reload its buffers.
type DocumentLoadedMsg struct{}

// StatusMsg carries a transient message for the command pane's status line.
type StatusMsg struct {
	Text string
	Err  bool
}

// ErrMsg wraps an error from an async operation.
type ErrMsg struct {
	Err error
}

// Dialog-switching messages, handled by the root model.

type SwitchToFolderFormMsg struct {
	ParentID int64
	// RenameID is non-zero when editing an existing folder's name.
	RenameID    int64
	CurrentName string
}

type SwitchToConfirmMsg struct {
	Question string
	// Exactly one of DiagramID/FolderID is set.
	DiagramID int64
	FolderID  int64
}

type SwitchToMoveMsg struct {
	DiagramID int64
	Name      string
}

type SwitchToHelpMsg struct{}

type CloseDialogMsg struct{}
