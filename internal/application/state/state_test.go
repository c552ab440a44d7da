package state

import (
	"fmt"
	"testing"

	"diagramio/internal/domain"
)

func intPtr(v int64) *int64 { return &v }

// treeWith returns a root folder (id 1) with the given child ids.
func treeWith(childIDs ...int64) []domain.Folder {
	root := domain.Folder{ID: 1, Name: "Root", IsRoot: true}
	for _, id := range childIDs {
		root.Children = append(root.Children, domain.Folder{
			ID: id, Name: folderName(id), ParentID: intPtr(1),
		})
	}
	return []domain.Folder{root}
}

func folderName(id int64) string {
	return fmt.Sprintf("Folder %d", id)
}

func TestSetFoldersPurgesStaleReferences(t *testing.T) {
	s := newState()
	s = setFolders(s, treeWith(3, 5, 9))
	s = toggleExpansion(s, 3)
	s = toggleExpansion(s, 5)
	s = toggleExpansion(s, 9)
	s = setDiagramsForFolder(s, 5, []domain.DiagramItem{{ID: 42, FolderID: 5}})
	s = setSelected(s, 42)

	// Folder 5 disappears on the next fetch.
	s = setFolders(s, treeWith(3, 9))

	for _, id := range []int64{3, 9} {
		if _, ok := s.Expanded[id]; !ok {
			t.Errorf("folder %d should remain expanded", id)
		}
	}
	if _, ok := s.Expanded[5]; ok {
		t.Error("folder 5 should be purged from expanded set")
	}
	if _, ok := s.Loaded[5]; ok {
		t.Error("folder 5 should be purged from loaded set")
	}
	if _, ok := s.DiagramsByFolder[5]; ok {
		t.Error("folder 5's diagram cache should be dropped")
	}
	if s.SelectedDiagram != 0 {
		t.Errorf("selection should be cleared, got %d", s.SelectedDiagram)
	}
}

func TestSetFoldersKeepsResolvableSelection(t *testing.T) {
	s := newState()
	s = setFolders(s, treeWith(3))
	s = setDiagramsForFolder(s, 3, []domain.DiagramItem{{ID: 7, FolderID: 3}})
	s = setSelected(s, 7)

	s = setFolders(s, treeWith(3, 5))

	if s.SelectedDiagram != 7 {
		t.Errorf("selection should survive, got %d", s.SelectedDiagram)
	}
}

func TestAddDiagramReplacesExisting(t *testing.T) {
	s := newState()
	s = setDiagramsForFolder(s, 3, []domain.DiagramItem{{ID: 7, Name: "old", FolderID: 3}})
	s = addDiagram(s, 3, domain.DiagramItem{ID: 7, Name: "new", FolderID: 3})

	items := s.DiagramsByFolder[3]
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].Name != "new" {
		t.Errorf("expected replacement, got %q", items[0].Name)
	}
}

func TestRemoveDiagramClearsSelection(t *testing.T) {
	s := newState()
	s = setDiagramsForFolder(s, 3, []domain.DiagramItem{{ID: 7, FolderID: 3}, {ID: 8, FolderID: 3}})
	s = setSelected(s, 7)

	s = removeDiagram(s, 7, 3)

	if len(s.DiagramsByFolder[3]) != 1 {
		t.Fatalf("expected 1 remaining item, got %d", len(s.DiagramsByFolder[3]))
	}
	if s.SelectedDiagram != 0 {
		t.Errorf("selection should be cleared, got %d", s.SelectedDiagram)
	}

	// Removing another diagram leaves an unrelated selection alone.
	s = setSelected(s, 8)
	s = removeDiagram(s, 99, 3)
	if s.SelectedDiagram != 8 {
		t.Errorf("unrelated selection should survive, got %d", s.SelectedDiagram)
	}
}

func TestMoveDiagramLoadedSource(t *testing.T) {
	s := newState()
	s = setDiagramsForFolder(s, 3, []domain.DiagramItem{{ID: 7, Name: "doc", FolderID: 3}})
	s = setDiagramsForFolder(s, 5, nil)

	s = moveDiagram(s, 7, 3, 5)

	if len(s.DiagramsByFolder[3]) != 0 {
		t.Errorf("source folder should be empty, got %v", s.DiagramsByFolder[3])
	}
	target := s.DiagramsByFolder[5]
	if len(target) != 1 || target[0].ID != 7 {
		t.Fatalf("target folder should hold the diagram, got %v", target)
	}
	if target[0].FolderID != 5 {
		t.Errorf("moved item should carry the new folder id, got %d", target[0].FolderID)
	}
}

func TestMoveDiagramUnloadedSourceIsNoOp(t *testing.T) {
	s := newState()
	s = setDiagramsForFolder(s, 5, nil)

	s = moveDiagram(s, 7, 3, 5)

	if len(s.DiagramsByFolder[5]) != 0 {
		t.Errorf("nothing should be added when the source was never loaded, got %v", s.DiagramsByFolder[5])
	}
}

func TestUnloadFolder(t *testing.T) {
	s := newState()
	s = setFolders(s, treeWith(3))
	s = toggleExpansion(s, 3)
	s = setDiagramsForFolder(s, 3, []domain.DiagramItem{{ID: 7, FolderID: 3}})

	s = unloadFolder(s, 3)

	if _, ok := s.Loaded[3]; ok {
		t.Error("folder should no longer be loaded")
	}
	if _, ok := s.Expanded[3]; ok {
		t.Error("folder should no longer be expanded")
	}
	if _, ok := s.DiagramsByFolder[3]; ok {
		t.Error("folder's diagram cache should be dropped")
	}
}
