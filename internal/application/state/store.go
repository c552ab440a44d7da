package state

import (
	"slices"
	"sync"

	"diagramio/internal/domain"
	"diagramio/internal/ports"
)

// Store is the single writer for normalized folder/diagram data. UI-facing
// components read snapshots and invoke the Coordinator's or Pipeline's
// mutation methods; nothing mutates the maps directly.
//
// Expansion and selection are persisted through the UIStateStore
// synchronously with each change, and revalidated against the folder set on
// every SetFolders.
type Store struct {
	mu    sync.Mutex
	state State
	ui    ports.UIStateStore
}

// NewStore creates a store seeded from the durable UI state. Persisted
// expansion and selection are restored as-is here; the first SetFolders
// purges anything that no longer resolves.
func NewStore(ui ports.UIStateStore) *Store {
	s := &Store{state: newState(), ui: ui}
	if ui == nil {
		return s
	}
	if ids, err := ui.ExpandedFolders(); err == nil {
		for _, id := range ids {
			s.state.Expanded[id] = struct{}{}
		}
	}
	if id, err := ui.SelectedDiagram(); err == nil {
		s.state.SelectedDiagram = id
	}
	return s
}

// Snapshot returns a copy of the current state. The contained maps are
// shared but never mutated in place, so the snapshot is safe to read.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetFolders replaces the folder tree and revalidates every derived set.
func (s *Store) SetFolders(tree []domain.Folder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	before := s.state
	s.state = setFolders(s.state, tree)
	if len(s.state.Expanded) != len(before.Expanded) {
		s.persistExpanded()
	}
	if s.state.SelectedDiagram != before.SelectedDiagram {
		s.persistSelected()
	}
}

// SetDiagramsForFolder replaces one folder's cached diagram list.
func (s *Store) SetDiagramsForFolder(folderID int64, items []domain.DiagramItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = setDiagramsForFolder(s.state, folderID, items)
}

// AddDiagram records a newly created diagram in its folder's list.
func (s *Store) AddDiagram(folderID int64, item domain.DiagramItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = addDiagram(s.state, folderID, item)
}

// UpdateDiagram rewrites a diagram's list entry after a successful save.
func (s *Store) UpdateDiagram(item domain.DiagramItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = updateDiagram(s.state, item)
}

// RemoveDiagram drops a diagram from its folder's list.
func (s *Store) RemoveDiagram(id, folderID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	before := s.state.SelectedDiagram
	s.state = removeDiagram(s.state, id, folderID)
	if s.state.SelectedDiagram != before {
		s.persistSelected()
	}
}

// MoveDiagram applies the remove-then-add transition for a move.
func (s *Store) MoveDiagram(id, fromFolderID, toFolderID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = moveDiagram(s.state, id, fromFolderID, toFolderID)
}

// ToggleExpansion flips a folder's expansion and persists the new set.
// Returns true when the folder is now expanded.
func (s *Store) ToggleExpansion(folderID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = toggleExpansion(s.state, folderID)
	s.persistExpanded()
	_, expanded := s.state.Expanded[folderID]
	return expanded
}

// SetSelected records the selected diagram (0 clears) and persists it.
func (s *Store) SetSelected(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = setSelected(s.state, id)
	s.persistSelected()
}

// BeginRefresh marks a folder as refreshing. It returns false when a fetch
// is already in flight for that folder; this check-and-set is the sole
// at-most-one-in-flight guard.
func (s *Store) BeginRefresh(folderID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.state.Refreshing[folderID]; busy {
		return false
	}
	s.state = setRefreshing(s.state, folderID, true)
	return true
}

// EndRefresh clears a folder's refreshing flag.
func (s *Store) EndRefresh(folderID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = setRefreshing(s.state, folderID, false)
}

// UnloadFolder forgets everything cached about a folder.
func (s *Store) UnloadFolder(folderID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = unloadFolder(s.state, folderID)
	s.persistExpanded()
}

// IsExpanded reports whether a folder is currently expanded.
func (s *Store) IsExpanded(folderID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.state.Expanded[folderID]
	return ok
}

// IsLoaded reports whether a folder's diagrams were ever fetched.
func (s *Store) IsLoaded(folderID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.state.Loaded[folderID]
	return ok
}

// IsRefreshing reports whether a fetch is in flight for a folder.
func (s *Store) IsRefreshing(folderID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.state.Refreshing[folderID]
	return ok
}

// DiagramsForFolder returns the cached list for a folder (nil when never
// loaded). The slice is a copy; callers may sort or filter it freely.
func (s *Store) DiagramsForFolder(folderID int64) []domain.DiagramItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.state.DiagramsByFolder[folderID])
}

// FindDiagramFolder returns the folder currently caching the given diagram,
// or 0 when it is not in any loaded list.
func (s *Store) FindDiagramFolder(id int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	for folderID, items := range s.state.DiagramsByFolder {
		for _, d := range items {
			if d.ID == id {
				return folderID
			}
		}
	}
	return 0
}

// RootFolder returns the account's root folder, or nil before the first
// successful folder fetch.
func (s *Store) RootFolder() *domain.Folder {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Hierarchy.RootID == 0 {
		return nil
	}
	f, ok := s.state.Folders[s.state.Hierarchy.RootID]
	if !ok {
		return nil
	}
	return &f
}

// FlattenedFolders returns the depth-annotated folder list for pickers.
func (s *Store) FlattenedFolders() []domain.FolderRef {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Flattened
}

// ExpandedFolders returns the expanded set as a sorted slice.
func (s *Store) ExpandedFolders() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedIDs(s.state.Expanded)
}

func (s *Store) persistExpanded() {
	if s.ui == nil {
		return
	}
	_ = s.ui.SaveExpandedFolders(sortedIDs(s.state.Expanded))
}

func (s *Store) persistSelected() {
	if s.ui == nil {
		return
	}
	_ = s.ui.SaveSelectedDiagram(s.state.SelectedDiagram)
}

func sortedIDs(set map[int64]struct{}) []int64 {
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
