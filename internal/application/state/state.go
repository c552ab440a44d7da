// Package state owns the normalized folder/diagram representation and the
// coordinator that decides when to fetch or refresh it. All transitions are
// pure functions of (current state, input) → new state; the Store is the
// single writer, everything else holds read-only snapshots.
package state

import (
	"maps"
	"slices"

	"diagramio/internal/domain"
)

// State is the normalized client-side view of the remote store: flat
// folder records, an explicit hierarchy index, per-folder diagram caches,
// and the expansion/selection bookkeeping derived views depend on.
type State struct {
	Folders          map[int64]domain.Folder
	Hierarchy        domain.Hierarchy
	DiagramsByFolder map[int64][]domain.DiagramItem
	Loaded           map[int64]struct{}
	Expanded         map[int64]struct{}
	Refreshing       map[int64]struct{}
	SelectedDiagram  int64 // 0 when nothing is selected
	Flattened        []domain.FolderRef
}

func newState() State {
	return State{
		Folders:          map[int64]domain.Folder{},
		Hierarchy:        domain.Hierarchy{ChildrenByParent: map[int64][]int64{}},
		DiagramsByFolder: map[int64][]domain.DiagramItem{},
		Loaded:           map[int64]struct{}{},
		Expanded:         map[int64]struct{}{},
		Refreshing:       map[int64]struct{}{},
	}
}

// setFolders replaces the folder records and hierarchy wholesale, then
// revalidates every derived set against the new id set. This is the single
// choke point preventing stale references after concurrent deletions.
func setFolders(s State, tree []domain.Folder) State {
	folders, hierarchy := domain.Normalize(tree)

	next := s
	next.Folders = folders
	next.Hierarchy = hierarchy
	next.Flattened = domain.Flatten(folders, hierarchy)

	next.Expanded = intersect(s.Expanded, folders)
	next.Loaded = intersect(s.Loaded, folders)
	next.Refreshing = intersect(s.Refreshing, folders)

	next.DiagramsByFolder = make(map[int64][]domain.DiagramItem, len(s.DiagramsByFolder))
	for folderID, items := range s.DiagramsByFolder {
		if _, ok := folders[folderID]; ok {
			next.DiagramsByFolder[folderID] = items
		}
	}

	if s.SelectedDiagram != 0 && !diagramKnown(next.DiagramsByFolder, s.SelectedDiagram) {
		next.SelectedDiagram = 0
	}
	return next
}

func intersect(set map[int64]struct{}, folders map[int64]domain.Folder) map[int64]struct{} {
	result := make(map[int64]struct{}, len(set))
	for id := range set {
		if _, ok := folders[id]; ok {
			result[id] = struct{}{}
		}
	}
	return result
}

func diagramKnown(byFolder map[int64][]domain.DiagramItem, id int64) bool {
	for _, items := range byFolder {
		for _, d := range items {
			if d.ID == id {
				return true
			}
		}
	}
	return false
}

// setDiagramsForFolder replaces one folder's cached list and records the
// folder as loaded.
func setDiagramsForFolder(s State, folderID int64, items []domain.DiagramItem) State {
	next := s
	next.DiagramsByFolder = maps.Clone(s.DiagramsByFolder)
	next.DiagramsByFolder[folderID] = slices.Clone(items)
	next.Loaded = maps.Clone(s.Loaded)
	next.Loaded[folderID] = struct{}{}
	return next
}

// addDiagram appends an item to a folder's list, or replaces the existing
// entry when the id is already present.
func addDiagram(s State, folderID int64, item domain.DiagramItem) State {
	next := s
	next.DiagramsByFolder = maps.Clone(s.DiagramsByFolder)

	items := slices.Clone(s.DiagramsByFolder[folderID])
	replaced := false
	for i, d := range items {
		if d.ID == item.ID {
			items[i] = item
			replaced = true
			break
		}
	}
	if !replaced {
		items = append(items, item)
	}
	next.DiagramsByFolder[folderID] = items
	return next
}

// updateDiagram rewrites an item in place within its folder's list; a no-op
// when the folder was never loaded.
func updateDiagram(s State, item domain.DiagramItem) State {
	items, ok := s.DiagramsByFolder[item.FolderID]
	if !ok {
		return s
	}
	next := s
	next.DiagramsByFolder = maps.Clone(s.DiagramsByFolder)
	updated := slices.Clone(items)
	for i, d := range updated {
		if d.ID == item.ID {
			updated[i] = item
		}
	}
	next.DiagramsByFolder[item.FolderID] = updated
	return next
}

// removeDiagram drops an item from a folder's list and clears the selection
// when the removed item was selected.
func removeDiagram(s State, id, folderID int64) State {
	items, ok := s.DiagramsByFolder[folderID]
	if !ok {
		return s
	}
	next := s
	next.DiagramsByFolder = maps.Clone(s.DiagramsByFolder)
	next.DiagramsByFolder[folderID] = slices.DeleteFunc(slices.Clone(items), func(d domain.DiagramItem) bool {
		return d.ID == id
	})
	if s.SelectedDiagram == id {
		next.SelectedDiagram = 0
	}
	return next
}

// moveDiagram is remove-then-add within one transition. When the source
// folder's diagrams were never loaded there is nothing to remove and only
// the addition happens; the caller refreshes both folders afterward to
// reconcile any inconsistency.
func moveDiagram(s State, id, fromFolderID, toFolderID int64) State {
	var moved *domain.DiagramItem
	for _, d := range s.DiagramsByFolder[fromFolderID] {
		if d.ID == id {
			found := d
			moved = &found
			break
		}
	}
	if moved == nil {
		return s
	}

	next := s
	next.DiagramsByFolder = maps.Clone(s.DiagramsByFolder)
	next.DiagramsByFolder[fromFolderID] = slices.DeleteFunc(
		slices.Clone(s.DiagramsByFolder[fromFolderID]),
		func(d domain.DiagramItem) bool { return d.ID == id },
	)
	moved.FolderID = toFolderID
	next.DiagramsByFolder[toFolderID] = append(slices.Clone(s.DiagramsByFolder[toFolderID]), *moved)
	return next
}

// toggleExpansion flips a folder's membership in the expanded set.
func toggleExpansion(s State, folderID int64) State {
	next := s
	next.Expanded = maps.Clone(s.Expanded)
	if _, ok := next.Expanded[folderID]; ok {
		delete(next.Expanded, folderID)
	} else {
		next.Expanded[folderID] = struct{}{}
	}
	return next
}

func setSelected(s State, id int64) State {
	next := s
	next.SelectedDiagram = id
	return next
}

func setRefreshing(s State, folderID int64, refreshing bool) State {
	next := s
	next.Refreshing = maps.Clone(s.Refreshing)
	if refreshing {
		next.Refreshing[folderID] = struct{}{}
	} else {
		delete(next.Refreshing, folderID)
	}
	return next
}

// unloadFolder forgets a folder's cached diagrams and expansion, the
// recovery path when a fetch reveals the folder no longer exists.
func unloadFolder(s State, folderID int64) State {
	next := s
	next.Loaded = maps.Clone(s.Loaded)
	delete(next.Loaded, folderID)
	next.Expanded = maps.Clone(s.Expanded)
	delete(next.Expanded, folderID)
	next.DiagramsByFolder = maps.Clone(s.DiagramsByFolder)
	delete(next.DiagramsByFolder, folderID)
	return next
}
