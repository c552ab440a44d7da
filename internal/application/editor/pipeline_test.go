package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"diagramio/internal/application"
	"diagramio/internal/application/state"
	"diagramio/internal/domain"
)

const testDebounce = 30 * time.Millisecond

type createCall struct {
	content  string
	name     string
	folderID int64
}

type updateCall struct {
	id      int64
	content string
	name    string
}

// fakeBackend implements the remote store, assistant, and health checker
// with canned data and call recording.
type fakeBackend struct {
	mu sync.Mutex

	nextID   int64
	healthy  bool
	creates  []createCall
	updates  []updateCall
	diagrams map[int64]*domain.DiagramContent
	tree     []domain.Folder

	rewriteFn func(current, instruction string) (string, error)

	// createGate, when set, blocks CreateDiagram until closed.
	createGate chan struct{}
}

func newFakeBackend() *fakeBackend {
	root := domain.Folder{ID: 1, Name: "Root", IsRoot: true}
	return &fakeBackend{
		nextID:   41,
		healthy:  true,
		diagrams: map[int64]*domain.DiagramContent{},
		tree:     []domain.Folder{root},
	}
}

func (f *fakeBackend) ListDiagrams(ctx context.Context) ([]domain.DiagramItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var items []domain.DiagramItem
	for _, d := range f.diagrams {
		items = append(items, domain.DiagramItem{ID: d.ID, Name: d.Name, FolderID: d.FolderID})
	}
	domain.SortDiagrams(items)
	return items, nil
}

func (f *fakeBackend) GetDiagram(ctx context.Context, id int64) (*domain.DiagramContent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.diagrams[id]
	if !ok {
		return nil, &application.RequestError{Op: "get diagram", Status: 404, Message: "Diagram not found"}
	}
	out := *d
	return &out, nil
}

func (f *fakeBackend) LatestDiagram(ctx context.Context) (*domain.DiagramContent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *domain.DiagramContent
	for _, d := range f.diagrams {
		if latest == nil || d.ID > latest.ID {
			latest = d
		}
	}
	if latest == nil {
		return nil, nil
	}
	out := *latest
	return &out, nil
}

func (f *fakeBackend) CreateDiagram(ctx context.Context, content, name string, folderID int64) (*domain.DiagramContent, error) {
	if f.createGate != nil {
		<-f.createGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	if folderID == 0 {
		folderID = 1
	}
	f.creates = append(f.creates, createCall{content, name, folderID})
	d := &domain.DiagramContent{ID: f.nextID, Content: content, Name: name, FolderID: folderID}
	f.diagrams[d.ID] = d
	return d, nil
}

func (f *fakeBackend) UpdateDiagram(ctx context.Context, id int64, content, name string) (*domain.DiagramContent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, updateCall{id, content, name})
	d, ok := f.diagrams[id]
	if !ok {
		return nil, &application.RequestError{Op: "update diagram", Status: 404, Message: "Diagram not found"}
	}
	d.Content, d.Name = content, name
	out := *d
	return &out, nil
}

func (f *fakeBackend) DeleteDiagram(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.diagrams, id)
	return nil
}

func (f *fakeBackend) MoveDiagram(ctx context.Context, id, folderID int64) error { return nil }

func (f *fakeBackend) ListFolders(ctx context.Context) ([]domain.Folder, error) {
	return f.tree, nil
}

func (f *fakeBackend) CreateFolder(ctx context.Context, name string, parentID int64) (*domain.Folder, error) {
	return &domain.Folder{ID: 90, Name: name, ParentID: &parentID}, nil
}

func (f *fakeBackend) RenameFolder(ctx context.Context, id int64, name string) (*domain.Folder, error) {
	return &domain.Folder{ID: id, Name: name}, nil
}

func (f *fakeBackend) DeleteFolder(ctx context.Context, id int64) error { return nil }

func (f *fakeBackend) FolderDiagrams(ctx context.Context, folderID int64) ([]domain.DiagramItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var items []domain.DiagramItem
	for _, d := range f.diagrams {
		if d.FolderID == folderID {
			items = append(items, domain.DiagramItem{ID: d.ID, Name: d.Name, FolderID: d.FolderID})
		}
	}
	return items, nil
}

func (f *fakeBackend) Healthy(ctx context.Context) bool { return f.healthy }

func (f *fakeBackend) Rewrite(ctx context.Context, current, instruction string) (string, error) {
	if f.rewriteFn != nil {
		return f.rewriteFn(current, instruction)
	}
	return current + "\n  A --> B", nil
}

func (f *fakeBackend) IsAvailable(ctx context.Context) bool { return f.healthy }

func (f *fakeBackend) createCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.creates)
}

func (f *fakeBackend) updateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.updates)
}

func newTestPipeline(t *testing.T, backend *fakeBackend) (*Pipeline, *state.Store) {
	t.Helper()
	store := state.NewStore(nil)
	coord := state.NewCoordinator(store, backend)
	p := NewPipeline(backend, backend, backend, coord, store, WithDebounce(testDebounce))
	if err := p.Bootstrap(context.Background()); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	return p, store
}

func waitForEvent(t *testing.T, p *Pipeline) Event {
	t.Helper()
	select {
	case ev := <-p.Events():
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for save event")
		return Event{}
	}
}

func TestDebounceCoalescesEdits(t *testing.T) {
	backend := newFakeBackend()
	p, _ := newTestPipeline(t, backend)

	for i := 0; i < 10; i++ {
		p.SetText(fmt.Sprintf("graph TD\n  step%d", i))
	}

	ev := waitForEvent(t, p)
	if ev.Kind != EventSaved || !ev.Created {
		t.Fatalf("expected a created save event, got %+v", ev)
	}

	if got := backend.createCount(); got != 1 {
		t.Errorf("10 rapid edits should coalesce into 1 save, got %d", got)
	}
	backend.mu.Lock()
	saved := backend.creates[0].content
	backend.mu.Unlock()
	if saved != "graph TD\n  step9" {
		t.Errorf("save should carry the final text, got %q", saved)
	}
}

func TestCreateThenUpdate(t *testing.T) {
	backend := newFakeBackend()
	p, store := newTestPipeline(t, backend)

	p.SetText("graph TD\n  A --> B")
	first := waitForEvent(t, p)
	if !first.Created {
		t.Fatal("first save should create")
	}
	if doc := p.Document(); doc.RemoteID != first.ID {
		t.Errorf("pipeline should adopt the assigned id %d, got %d", first.ID, doc.RemoteID)
	}
	if got := store.Snapshot().SelectedDiagram; got != first.ID {
		t.Errorf("created diagram should become the selection, got %d", got)
	}

	p.SetText("graph TD\n  A --> C")
	second := waitForEvent(t, p)
	if second.Created {
		t.Error("second save must update, not create")
	}
	if second.ID != first.ID {
		t.Errorf("update should target id %d, got %d", first.ID, second.ID)
	}
	if backend.createCount() != 1 || backend.updateCount() != 1 {
		t.Errorf("want 1 create + 1 update, got %d/%d", backend.createCount(), backend.updateCount())
	}
}

func TestUnchangedTextDoesNotSchedule(t *testing.T) {
	backend := newFakeBackend()
	p, _ := newTestPipeline(t, backend)

	p.SetText(EmptyDefinition) // same as the initial text

	time.Sleep(3 * testDebounce)
	if got := backend.createCount(); got != 0 {
		t.Errorf("identical text must not trigger a save, got %d", got)
	}
}

func TestFlushBeforeSelect(t *testing.T) {
	backend := newFakeBackend()
	p, store := newTestPipeline(t, backend)

	// The switch target exists remotely but is not the open document.
	other, _ := backend.CreateDiagram(context.Background(), "graph LR\n  X --> Y", "Other", 1)

	p.SetText("graph TD\n  pending edit")
	if err := p.Select(context.Background(), other.ID); err != nil {
		t.Fatal(err)
	}

	// The pending edit was persisted before the switch, not dropped.
	if got := backend.createCount(); got != 2 { // one in setup, one from the flush
		t.Errorf("pending edit should flush before switching, got %d creates", got)
	}

	doc := p.Document()
	if doc.RemoteID != other.ID || doc.Text != "graph LR\n  X --> Y" {
		t.Errorf("document should be replaced wholesale, got %+v", doc)
	}
	if got := store.Snapshot().SelectedDiagram; got != other.ID {
		t.Errorf("selection should follow the switch, got %d", got)
	}
}

func TestFlushWaitsOutInFlightSave(t *testing.T) {
	backend := newFakeBackend()
	gate := make(chan struct{})
	backend.createGate = gate
	p, _ := newTestPipeline(t, backend)

	p.SetText("graph TD\n  first")
	deadline := time.Now().Add(2 * time.Second)
	for {
		p.mu.Lock()
		saving := p.saving
		p.mu.Unlock()
		if saving {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("debounced save never started")
		}
		time.Sleep(time.Millisecond)
	}

	// Typed while the first save is still on the wire.
	p.SetText("graph TD\n  second")

	done := make(chan error, 1)
	go func() { done <- p.Flush(context.Background()) }()

	select {
	case <-done:
		t.Fatal("flush returned while a save was still in flight")
	case <-time.After(5 * testDebounce):
	}

	close(gate)
	if err := <-done; err != nil {
		t.Fatalf("flush: %v", err)
	}

	if got := backend.createCount(); got != 1 {
		t.Errorf("creates = %d, want 1", got)
	}
	if got := backend.updateCount(); got != 1 {
		t.Errorf("the edit typed during the save should flush as an update, got %d updates", got)
	}
	backend.mu.Lock()
	flushed := backend.updates[0].content
	backend.mu.Unlock()
	if flushed != "graph TD\n  second" {
		t.Errorf("flushed content = %q, want the later edit", flushed)
	}
}

func TestRewriteGuards(t *testing.T) {
	backend := newFakeBackend()
	p, _ := newTestPipeline(t, backend)
	ctx := context.Background()

	var verr *application.ValidationError
	if err := p.Rewrite(ctx, "   "); !errors.As(err, &verr) {
		t.Errorf("blank instruction should fail validation, got %v", err)
	}

	p.SetText("   ")
	if err := p.Rewrite(ctx, "do something"); !errors.As(err, &verr) {
		t.Errorf("blank text should fail validation, got %v", err)
	}
	// Drain the save the edit above scheduled.
	waitForEvent(t, p)
}

func TestRewriteUnavailableService(t *testing.T) {
	backend := newFakeBackend()
	backend.healthy = false

	store := state.NewStore(nil)
	coord := state.NewCoordinator(store, backend)
	p := NewPipeline(backend, backend, backend, coord, store, WithDebounce(testDebounce))
	if err := p.Bootstrap(context.Background()); !errors.Is(err, application.ErrServiceUnavailable) {
		t.Fatalf("bootstrap against a dead backend should report unavailability, got %v", err)
	}

	err := p.Rewrite(context.Background(), "do something")
	if !errors.Is(err, application.ErrServiceUnavailable) {
		t.Errorf("expected ErrServiceUnavailable, got %v", err)
	}
}

func TestRewriteRefusedWhileInFlight(t *testing.T) {
	backend := newFakeBackend()
	release := make(chan struct{})
	backend.rewriteFn = func(current, instruction string) (string, error) {
		<-release
		return current, nil
	}
	p, _ := newTestPipeline(t, backend)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- p.Rewrite(ctx, "slow request") }()

	// Wait until the first request is in flight.
	deadline := time.Now().Add(time.Second)
	for {
		p.mu.Lock()
		inFlight := p.rewriting
		p.mu.Unlock()
		if inFlight {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("first rewrite never started")
		}
		time.Sleep(time.Millisecond)
	}

	var verr *application.ValidationError
	if err := p.Rewrite(ctx, "second request"); !errors.As(err, &verr) {
		t.Errorf("concurrent rewrite should be refused, got %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Errorf("first rewrite should succeed, got %v", err)
	}
}

func TestRewriteReplacesText(t *testing.T) {
	backend := newFakeBackend()
	backend.rewriteFn = func(current, instruction string) (string, error) {
		return "graph TD\n  rewritten", nil
	}
	p, _ := newTestPipeline(t, backend)

	p.SetText("graph TD\n  original")
	waitForEvent(t, p)

	if err := p.Rewrite(context.Background(), "rewrite it"); err != nil {
		t.Fatal(err)
	}
	if got := p.Document().Text; got != "graph TD\n  rewritten" {
		t.Errorf("text should be replaced wholesale, got %q", got)
	}

	// The rewritten text persists through the normal debounced path.
	ev := waitForEvent(t, p)
	if ev.Kind != EventSaved {
		t.Fatalf("expected a save, got %+v", ev)
	}
	backend.mu.Lock()
	last := backend.updates[len(backend.updates)-1].content
	backend.mu.Unlock()
	if last != "graph TD\n  rewritten" {
		t.Errorf("rewritten text should be saved, got %q", last)
	}
}

func TestNewResolvesRootFolder(t *testing.T) {
	backend := newFakeBackend()
	p, store := newTestPipeline(t, backend)

	if err := p.New(context.Background(), 0, "Fresh"); err != nil {
		t.Fatal(err)
	}

	backend.mu.Lock()
	call := backend.creates[len(backend.creates)-1]
	backend.mu.Unlock()
	if call.folderID != 1 {
		t.Errorf("create should target the resolved root, got folder %d", call.folderID)
	}
	if call.content != EmptyDefinition {
		t.Errorf("new diagram should start from the empty definition, got %q", call.content)
	}
	if store.Snapshot().SelectedDiagram == 0 {
		t.Error("new diagram should be selected")
	}
}

func TestDeleteOpenDocumentFallsBack(t *testing.T) {
	backend := newFakeBackend()
	keep, _ := backend.CreateDiagram(context.Background(), "graph TD\n  keep", "Keep", 1)

	p, store := newTestPipeline(t, backend)
	if err := p.New(context.Background(), 0, "Doomed"); err != nil {
		t.Fatal(err)
	}
	doomed := p.Document().RemoteID

	if err := p.Delete(context.Background(), doomed); err != nil {
		t.Fatal(err)
	}

	doc := p.Document()
	if doc.RemoteID != keep.ID {
		t.Errorf("should fall back to the first remaining diagram %d, got %d", keep.ID, doc.RemoteID)
	}
	if got := store.Snapshot().SelectedDiagram; got != keep.ID {
		t.Errorf("selection should follow the fallback, got %d", got)
	}
}

func TestDeleteLastDocumentResetsEmpty(t *testing.T) {
	backend := newFakeBackend()
	p, store := newTestPipeline(t, backend)

	if err := p.New(context.Background(), 0, "Only"); err != nil {
		t.Fatal(err)
	}
	id := p.Document().RemoteID

	if err := p.Delete(context.Background(), id); err != nil {
		t.Fatal(err)
	}

	doc := p.Document()
	if doc.RemoteID != 0 || doc.Text != EmptyDefinition || doc.Title != "" {
		t.Errorf("deleting the last diagram should reset to an empty document, got %+v", doc)
	}
	if got := store.Snapshot().SelectedDiagram; got != 0 {
		t.Errorf("selection should be cleared, got %d", got)
	}
}

func TestBootstrapRestoresLatest(t *testing.T) {
	backend := newFakeBackend()
	backend.CreateDiagram(context.Background(), "graph TD\n  old", "Old", 1)
	latest, _ := backend.CreateDiagram(context.Background(), "graph TD\n  new", "New", 1)

	p, _ := newTestPipeline(t, backend)

	doc := p.Document()
	if doc.RemoteID != latest.ID || doc.Text != "graph TD\n  new" {
		t.Errorf("bootstrap should open the latest diagram, got %+v", doc)
	}
}
