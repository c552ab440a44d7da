package domain

import (
	"fmt"
	"slices"
)

// DiagramItem is the list-level view of a diagram: metadata only.
type DiagramItem struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	LastUpdated string `json:"last_updated"`
	FolderID    int64  `json:"folder_id"`
}

// DiagramContent is the full diagram record, including the definition text.
type DiagramContent struct {
	ID          int64  `json:"id"`
	Content     string `json:"content"`
	Name        string `json:"name"`
	LastUpdated string `json:"last_updated"`
	FolderID    int64  `json:"folder_id"`
}

// DisplayName returns the diagram's name, or a stable placeholder when the
// name is empty.
func (d DiagramItem) DisplayName() string {
	if d.Name == "" {
		return fmt.Sprintf("Untitled Diagram %d", d.ID)
	}
	return d.Name
}

// SortDiagrams sorts diagram items by name, falling back to id for equal names.
func SortDiagrams(items []DiagramItem) {
	slices.SortFunc(items, func(a, b DiagramItem) int {
		an, bn := a.DisplayName(), b.DisplayName()
		if an < bn {
			return -1
		}
		if an > bn {
			return 1
		}
		return int(a.ID - b.ID)
	})
}
