package domain

import "slices"

// Folder represents a folder as delivered by the backend: tree-shaped,
// with nested children. Exactly one folder per account is the root.
type Folder struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	ParentID    *int64   `json:"parent_id"`
	IsRoot      bool     `json:"is_root"`
	CreatedAt   string   `json:"created_at"`
	LastUpdated string   `json:"last_updated"`
	Children    []Folder `json:"children"`
}

// FolderRef is a depth-annotated entry of the flattened folder hierarchy,
// used by picker-style views.
type FolderRef struct {
	ID    int64
	Name  string
	Depth int
}

// Hierarchy is the arena-style index of the folder tree: flat id-keyed
// records plus explicit parent→children adjacency.
type Hierarchy struct {
	RootID           int64 // 0 when no root has been seen yet
	ChildrenByParent map[int64][]int64
}

// Normalize converts a tree-shaped folder payload into flat id-keyed maps
// plus the parent→children index. A folder with a duplicate id, or a subtree
// visited twice, is a corruption signal from the backend and is skipped
// rather than crashed on.
func Normalize(tree []Folder) (map[int64]Folder, Hierarchy) {
	folders := make(map[int64]Folder, len(tree))
	h := Hierarchy{ChildrenByParent: make(map[int64][]int64)}

	var walk func(list []Folder, parentID int64)
	walk = func(list []Folder, parentID int64) {
		for _, f := range list {
			if _, seen := folders[f.ID]; seen {
				continue
			}
			rec := f
			rec.Children = nil
			folders[f.ID] = rec

			if f.IsRoot {
				h.RootID = f.ID
			}
			if parentID != 0 {
				h.ChildrenByParent[parentID] = append(h.ChildrenByParent[parentID], f.ID)
			}
			if len(f.Children) > 0 {
				walk(f.Children, f.ID)
			}
		}
	}
	walk(tree, 0)
	return folders, h
}

// Flatten returns the depth-annotated linear ordering of the hierarchy,
// children sorted by name under each parent.
func Flatten(folders map[int64]Folder, h Hierarchy) []FolderRef {
	var result []FolderRef

	var walk func(ids []int64, depth int)
	walk = func(ids []int64, depth int) {
		sorted := slices.Clone(ids)
		slices.SortFunc(sorted, func(a, b int64) int {
			na, nb := folders[a].Name, folders[b].Name
			if na < nb {
				return -1
			}
			if na > nb {
				return 1
			}
			return 0
		})
		for _, id := range sorted {
			f, ok := folders[id]
			if !ok {
				continue
			}
			result = append(result, FolderRef{ID: f.ID, Name: f.Name, Depth: depth})
			if children := h.ChildrenByParent[f.ID]; len(children) > 0 {
				walk(children, depth+1)
			}
		}
	}

	if h.RootID != 0 {
		walk([]int64{h.RootID}, 0)
	}
	return result
}
