package ports

import (
	"context"

	"diagramio/internal/domain"
)

// RemoteStore defines the backend's CRUD surface for diagrams and folders.
// Every call that can fail returns a distinguishable error; not-found and
// folder-not-empty conditions map to the application sentinels.
type RemoteStore interface {
	// Diagram operations
	ListDiagrams(ctx context.Context) ([]domain.DiagramItem, error)
	GetDiagram(ctx context.Context, id int64) (*domain.DiagramContent, error)
	// LatestDiagram returns (nil, nil) when no diagram exists yet.
	LatestDiagram(ctx context.Context) (*domain.DiagramContent, error)
	// CreateDiagram creates in the given folder; folderID 0 lets the backend
	// pick its default location.
	CreateDiagram(ctx context.Context, content, name string, folderID int64) (*domain.DiagramContent, error)
	UpdateDiagram(ctx context.Context, id int64, content, name string) (*domain.DiagramContent, error)
	DeleteDiagram(ctx context.Context, id int64) error
	MoveDiagram(ctx context.Context, id, folderID int64) error

	// Folder operations
	ListFolders(ctx context.Context) ([]domain.Folder, error)
	CreateFolder(ctx context.Context, name string, parentID int64) (*domain.Folder, error)
	RenameFolder(ctx context.Context, id int64, name string) (*domain.Folder, error)
	DeleteFolder(ctx context.Context, id int64) error
	FolderDiagrams(ctx context.Context, folderID int64) ([]domain.DiagramItem, error)
}

// HealthChecker reports whether the backend is reachable.
type HealthChecker interface {
	Healthy(ctx context.Context) bool
}
