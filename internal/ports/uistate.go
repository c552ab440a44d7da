package ports

// UIStateStore is the durable client-side store for UI state that survives
// restarts: the expanded-folder set, the selected diagram, and the panel
// layout. Each key is written by exactly one owning component and
// read-validated against the normalized state on reload.
type UIStateStore interface {
	ExpandedFolders() ([]int64, error)
	SaveExpandedFolders(ids []int64) error

	// SelectedDiagram returns 0 when nothing is selected.
	SelectedDiagram() (int64, error)
	// SaveSelectedDiagram with id 0 clears the selection.
	SaveSelectedDiagram(id int64) error

	// PanelLayout returns nil when no layout has been persisted.
	PanelLayout() ([]byte, error)
	SavePanelLayout(data []byte) error
	ClearPanelLayout() error

	Close() error
}
