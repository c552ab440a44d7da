// Package editor owns the currently-open document: its text and title, the
// debounced persistence pipeline, and the AI-assisted rewrite operation.
package editor

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"diagramio/internal/application"
	"diagramio/internal/application/state"
	"diagramio/internal/domain"
	"diagramio/internal/ports"
)

// EmptyDefinition seeds a freshly created document.
const EmptyDefinition = "graph TD"

const defaultDebounce = time.Second

// Document is a read-only snapshot of the open document.
type Document struct {
	Text      string
	Title     string
	RemoteID  int64 // 0 until the first save assigns an identity
	LastSaved time.Time
	Saving    bool
}

// EventKind classifies pipeline events delivered to the UI.
type EventKind int

const (
	EventSaved EventKind = iota
	EventSaveFailed
)

// Event is an async notification from the save pipeline.
type Event struct {
	Kind    EventKind
	ID      int64
	Created bool
	Err     error
}

// Pipeline buffers local edits, persists them after a quiet period, and
// performs the create→update identity transition on first save.
type Pipeline struct {
	remote    ports.RemoteStore
	assistant ports.Assistant
	health    ports.HealthChecker
	coord     *state.Coordinator
	store     *state.Store

	mu        sync.Mutex
	text      string
	title     string
	remoteID  int64
	lastSaved time.Time
	saving    bool
	pending   bool
	available bool
	rewriting bool
	timer     *time.Timer
	saveDone  *sync.Cond

	debounce time.Duration
	events   chan Event
}

// Option configures the Pipeline.
type Option func(*Pipeline)

// WithDebounce overrides the quiet period before a save fires.
func WithDebounce(d time.Duration) Option {
	return func(p *Pipeline) {
		if d > 0 {
			p.debounce = d
		}
	}
}

// NewPipeline creates a pipeline over the remote store and assistant.
func NewPipeline(remote ports.RemoteStore, assistant ports.Assistant, health ports.HealthChecker, coord *state.Coordinator, store *state.Store, opts ...Option) *Pipeline {
	p := &Pipeline{
		remote:    remote,
		assistant: assistant,
		health:    health,
		coord:     coord,
		store:     store,
		text:      EmptyDefinition,
		debounce:  defaultDebounce,
		events:    make(chan Event, 16),
	}
	p.saveDone = sync.NewCond(&p.mu)
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Events delivers save notifications to the UI loop.
func (p *Pipeline) Events() <-chan Event {
	return p.events
}

// Bootstrap checks backend availability and restores the open document:
// the persisted selection if it still resolves, else the latest diagram,
// else an empty identity-less document.
func (p *Pipeline) Bootstrap(ctx context.Context) error {
	available := p.health.Healthy(ctx)
	p.mu.Lock()
	p.available = available
	p.mu.Unlock()
	if !available {
		return application.ErrServiceUnavailable
	}

	if id := p.store.Snapshot().SelectedDiagram; id != 0 {
		if err := p.Select(ctx, id); err == nil {
			return nil
		}
		// Fall through to the latest diagram when the selection no longer
		// resolves.
	}

	latest, err := p.remote.LatestDiagram(ctx)
	if err != nil || latest == nil {
		return nil
	}
	p.mu.Lock()
	p.text = latest.Content
	p.title = latest.Name
	p.remoteID = latest.ID
	p.lastSaved = time.Now()
	p.mu.Unlock()
	p.store.SetSelected(latest.ID)
	return nil
}

// Available reports the result of the startup health check.
func (p *Pipeline) Available() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.available
}

// Document returns a snapshot of the open document.
func (p *Pipeline) Document() Document {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Document{
		Text:      p.text,
		Title:     p.title,
		RemoteID:  p.remoteID,
		LastSaved: p.lastSaved,
		Saving:    p.saving,
	}
}

// SetText replaces the document text and restarts the quiet-period timer.
func (p *Pipeline) SetText(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.text == text {
		return
	}
	p.text = text
	p.scheduleLocked()
}

// SetTitle replaces the document title and restarts the quiet-period timer.
func (p *Pipeline) SetTitle(title string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.title == title {
		return
	}
	p.title = title
	p.scheduleLocked()
}

func (p *Pipeline) scheduleLocked() {
	if !p.available {
		return
	}
	p.pending = true
	if p.timer == nil {
		p.timer = time.AfterFunc(p.debounce, p.onTimer)
		return
	}
	p.timer.Reset(p.debounce)
}

func (p *Pipeline) onTimer() {
	p.mu.Lock()
	if p.saving {
		// A save is in flight; run again once it finishes.
		if p.timer != nil {
			p.timer.Reset(p.debounce)
		}
		p.mu.Unlock()
		return
	}
	if !p.pending {
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	if ev, ok := p.save(context.Background()); ok {
		p.emit(ev)
	}
}

// Flush persists any pending edit immediately, superseding the timer. A
// save already in flight is waited out first, then pending is re-checked:
// an edit typed during that save still gets persisted. Used before
// switching documents so the last edit is never lost.
func (p *Pipeline) Flush(ctx context.Context) error {
	p.mu.Lock()
	for p.saving {
		p.saveDone.Wait()
	}
	if !p.pending {
		p.mu.Unlock()
		return nil
	}
	if p.timer != nil {
		p.timer.Stop()
	}
	p.mu.Unlock()

	ev, ok := p.save(ctx)
	if !ok {
		return nil
	}
	p.emit(ev)
	return ev.Err
}

// save performs one create-or-update round trip with the current text and
// title. The first save assigns the remote identity; every later save is an
// update keyed by it. The pending flag is claimed under the lock, so when
// the timer and a flush race only one of them performs the round trip; the
// loser reports false and no event.
func (p *Pipeline) save(ctx context.Context) (Event, bool) {
	p.mu.Lock()
	for p.saving {
		p.saveDone.Wait()
	}
	if !p.pending {
		p.mu.Unlock()
		return Event{}, false
	}
	p.pending = false
	p.saving = true
	text, title, remoteID := p.text, p.title, p.remoteID
	p.mu.Unlock()

	var (
		saved   *domain.DiagramContent
		created bool
		err     error
	)
	if remoteID == 0 {
		saved, err = p.remote.CreateDiagram(ctx, text, title, 0)
		created = true
	} else {
		saved, err = p.remote.UpdateDiagram(ctx, remoteID, text, title)
	}

	p.mu.Lock()
	p.saving = false
	if err == nil {
		p.lastSaved = time.Now()
		if created {
			p.remoteID = saved.ID
		}
	}
	p.saveDone.Broadcast()
	p.mu.Unlock()

	if err != nil {
		return Event{Kind: EventSaveFailed, ID: remoteID, Err: err}, true
	}

	item := domain.DiagramItem{
		ID:          saved.ID,
		Name:        saved.Name,
		LastUpdated: saved.LastUpdated,
		FolderID:    saved.FolderID,
	}
	if created {
		p.store.AddDiagram(saved.FolderID, item)
		p.store.SetSelected(saved.ID)
	} else {
		p.store.UpdateDiagram(item)
	}
	return Event{Kind: EventSaved, ID: saved.ID, Created: created}, true
}

func (p *Pipeline) emit(ev Event) {
	select {
	case p.events <- ev:
	default:
	}
}

// Rewrite sends the current text and a natural-language instruction to the
// assistant and replaces the text wholesale with the response, which then
// persists through the normal debounced-save path. Empty text, empty
// instructions, and an unavailable service are rejected locally without a
// network call; resubmission is refused while a round trip is outstanding.
func (p *Pipeline) Rewrite(ctx context.Context, instruction string) error {
	instruction = strings.TrimSpace(instruction)

	p.mu.Lock()
	if p.rewriting {
		p.mu.Unlock()
		return &application.ValidationError{Field: "request", Message: "a request is already being processed"}
	}
	if !p.available {
		p.mu.Unlock()
		return application.ErrServiceUnavailable
	}
	if strings.TrimSpace(p.text) == "" {
		p.mu.Unlock()
		return &application.ValidationError{Field: "content", Message: "enter some diagram text first"}
	}
	if instruction == "" {
		p.mu.Unlock()
		return &application.ValidationError{Field: "request", Message: "instruction is required"}
	}
	p.rewriting = true
	text := p.text
	p.mu.Unlock()

	updated, err := p.assistant.Rewrite(ctx, text, instruction)

	p.mu.Lock()
	p.rewriting = false
	p.mu.Unlock()

	if err != nil {
		return fmt.Errorf("rewrite: %w", err)
	}
	p.SetText(updated)
	return nil
}

// Select flushes any pending save, then replaces the open document with the
// given diagram's content.
func (p *Pipeline) Select(ctx context.Context, id int64) error {
	if err := p.Flush(ctx); err != nil {
		return fmt.Errorf("flush before switch: %w", err)
	}

	diagram, err := p.remote.GetDiagram(ctx, id)
	if err != nil {
		return fmt.Errorf("load diagram %d: %w", id, err)
	}

	p.mu.Lock()
	p.text = diagram.Content
	p.title = diagram.Name
	p.remoteID = diagram.ID
	p.lastSaved = time.Now()
	p.pending = false
	p.mu.Unlock()

	p.store.SetSelected(diagram.ID)
	return nil
}

// New creates an empty diagram. With folderID 0 the account's root folder
// is resolved first; creation never targets an implicit location.
func (p *Pipeline) New(ctx context.Context, folderID int64, title string) error {
	if folderID == 0 {
		root := p.store.RootFolder()
		if root == nil {
			tree, err := p.remote.ListFolders(ctx)
			if err != nil {
				return fmt.Errorf("resolve root folder: %w", err)
			}
			p.store.SetFolders(tree)
			root = p.store.RootFolder()
		}
		if root == nil {
			return application.ErrNoRootFolder
		}
		folderID = root.ID
	}

	created, err := p.remote.CreateDiagram(ctx, EmptyDefinition, title, folderID)
	if err != nil {
		return fmt.Errorf("create diagram: %w", err)
	}

	p.mu.Lock()
	p.text = created.Content
	p.title = created.Name
	p.remoteID = created.ID
	p.lastSaved = time.Now()
	p.pending = false
	p.mu.Unlock()

	p.store.AddDiagram(folderID, domain.DiagramItem{
		ID:          created.ID,
		Name:        created.Name,
		LastUpdated: created.LastUpdated,
		FolderID:    folderID,
	})
	p.store.SetSelected(created.ID)
	return p.coord.RefreshExpanded(ctx)
}

// Delete removes a diagram. Deleting the open document falls back to the
// first remaining diagram, or resets to an empty identity-less document
// when none remain.
func (p *Pipeline) Delete(ctx context.Context, id int64) error {
	folderID := p.store.FindDiagramFolder(id)

	if err := p.remote.DeleteDiagram(ctx, id); err != nil {
		return fmt.Errorf("delete diagram %d: %w", id, err)
	}
	if folderID != 0 {
		p.store.RemoveDiagram(id, folderID)
	}

	p.mu.Lock()
	wasOpen := p.remoteID == id
	if wasOpen {
		p.remoteID = 0
		p.pending = false
	}
	p.mu.Unlock()

	if wasOpen {
		remaining, err := p.remote.ListDiagrams(ctx)
		if err == nil && len(remaining) > 0 {
			if serr := p.Select(ctx, remaining[0].ID); serr == nil {
				return p.coord.RefreshExpanded(ctx)
			}
		}
		p.mu.Lock()
		p.text = EmptyDefinition
		p.title = ""
		p.remoteID = 0
		p.lastSaved = time.Time{}
		p.mu.Unlock()
		p.store.SetSelected(0)
	}
	return p.coord.RefreshExpanded(ctx)
}
