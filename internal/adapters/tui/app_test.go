package tui

import (
	"context"
	"sync"
	"testing"

	"diagramio/internal/application/editor"
	"diagramio/internal/application/panel"
	"diagramio/internal/application/state"
	"diagramio/internal/domain"
)

// pollRemote serves a fixed tree and counts the calls the background
// refresh loop issues.
type pollRemote struct {
	mu sync.Mutex

	listFoldersCalls   int
	folderDiagramCalls map[int64]int
}

func newPollRemote() *pollRemote {
	return &pollRemote{folderDiagramCalls: map[int64]int{}}
}

func (r *pollRemote) ListFolders(ctx context.Context) ([]domain.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listFoldersCalls++
	parent := int64(1)
	return []domain.Folder{{
		ID: 1, Name: "Root", IsRoot: true,
		Children: []domain.Folder{{ID: 3, Name: "Work", ParentID: &parent}},
	}}, nil
}

func (r *pollRemote) FolderDiagrams(ctx context.Context, folderID int64) ([]domain.DiagramItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.folderDiagramCalls[folderID]++
	return nil, nil
}

func (r *pollRemote) ListDiagrams(ctx context.Context) ([]domain.DiagramItem, error) {
	return nil, nil
}

func (r *pollRemote) GetDiagram(ctx context.Context, id int64) (*domain.DiagramContent, error) {
	return &domain.DiagramContent{ID: id}, nil
}

func (r *pollRemote) LatestDiagram(ctx context.Context) (*domain.DiagramContent, error) {
	return nil, nil
}

func (r *pollRemote) CreateDiagram(ctx context.Context, content, name string, folderID int64) (*domain.DiagramContent, error) {
	return &domain.DiagramContent{ID: 42, Content: content, Name: name, FolderID: folderID}, nil
}

func (r *pollRemote) UpdateDiagram(ctx context.Context, id int64, content, name string) (*domain.DiagramContent, error) {
	return &domain.DiagramContent{ID: id, Content: content, Name: name}, nil
}

func (r *pollRemote) DeleteDiagram(ctx context.Context, id int64) error { return nil }

func (r *pollRemote) MoveDiagram(ctx context.Context, id, folderID int64) error { return nil }

func (r *pollRemote) CreateFolder(ctx context.Context, name string, parentID int64) (*domain.Folder, error) {
	return &domain.Folder{ID: 90, Name: name}, nil
}

func (r *pollRemote) RenameFolder(ctx context.Context, id int64, name string) (*domain.Folder, error) {
	return &domain.Folder{ID: id, Name: name}, nil
}

func (r *pollRemote) DeleteFolder(ctx context.Context, id int64) error { return nil }

func (r *pollRemote) Rewrite(ctx context.Context, current, instruction string) (string, error) {
	return current, nil
}

func (r *pollRemote) Healthy(ctx context.Context) bool     { return true }
func (r *pollRemote) IsAvailable(ctx context.Context) bool { return true }

type plainRenderer struct{}

func (plainRenderer) Render(text string, width int) (string, error) { return text, nil }

func newTestApp(remote *pollRemote) (*App, *state.Store, *state.Coordinator) {
	store := state.NewStore(nil)
	coord := state.NewCoordinator(store, remote)
	pipe := editor.NewPipeline(remote, remote, remote, coord, store)
	panels := panel.NewManager(nil)
	app := NewApp(store, coord, pipe, panels, remote, plainRenderer{}, nil)
	return app, store, coord
}

func TestBackgroundFolderPoll(t *testing.T) {
	remote := newPollRemote()
	app, _, _ := newTestApp(remote)

	msg := app.refreshFolders()()
	if msg == nil {
		t.Fatal("a successful folder poll should announce a state change")
	}
	remote.mu.Lock()
	calls := remote.listFoldersCalls
	remote.mu.Unlock()
	if calls != 1 {
		t.Errorf("ListFolders calls = %d, want 1", calls)
	}

	// The poll message re-arms the loop alongside the refresh.
	if _, cmd := app.Update(folderPollMsg{}); cmd == nil {
		t.Error("folderPollMsg should produce a refresh and a re-arm")
	}
}

func TestBackgroundDiagramPoll(t *testing.T) {
	remote := newPollRemote()
	app, store, _ := newTestApp(remote)

	if msg := app.refreshFolders()(); msg == nil {
		t.Fatal("seed fetch failed")
	}
	store.ToggleExpansion(3)

	if msg := app.refreshDiagrams()(); msg == nil {
		t.Fatal("a successful diagram poll should announce a state change")
	}
	remote.mu.Lock()
	calls := remote.folderDiagramCalls[3]
	remote.mu.Unlock()
	if calls != 1 {
		t.Errorf("expanded folder fetches = %d, want 1", calls)
	}

	// A second poll inside the minimum interval stays quiet on the wire.
	app.refreshDiagrams()()
	remote.mu.Lock()
	calls = remote.folderDiagramCalls[3]
	remote.mu.Unlock()
	if calls != 1 {
		t.Errorf("rate-limited poll still fetched, calls = %d", calls)
	}

	if _, cmd := app.Update(diagramPollMsg{}); cmd == nil {
		t.Error("diagramPollMsg should produce a refresh and a re-arm")
	}
}
