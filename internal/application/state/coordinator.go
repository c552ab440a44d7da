package state

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"diagramio/internal/application"
	"diagramio/internal/ports"
)

const (
	// A loaded folder older than this gets a forced refresh on expand.
	staleAfter = 30 * time.Second
	// RefreshExpanded skips folders refreshed more recently than this, so a
	// burst of toggles or a short polling interval cannot saturate the
	// backend.
	minRefreshInterval = 5 * time.Second
)

// Coordinator decides when folder data is fetched or refreshed: on first
// expand, on explicit refresh, and on staleness. It deduplicates concurrent
// fetches through the Store's refreshing flag.
type Coordinator struct {
	store  *Store
	remote ports.RemoteStore

	mu          sync.Mutex
	lastRefresh map[int64]time.Time

	staleAfter  time.Duration
	minInterval time.Duration
	now         func() time.Time
}

// NewCoordinator creates a coordinator over the given store and remote.
func NewCoordinator(store *Store, remote ports.RemoteStore) *Coordinator {
	return &Coordinator{
		store:       store,
		remote:      remote,
		lastRefresh: map[int64]time.Time{},
		staleAfter:  staleAfter,
		minInterval: minRefreshInterval,
		now:         time.Now,
	}
}

// FetchFolders replaces the folder tree from the backend and then loads the
// root folder's diagrams if they were never fetched.
func (c *Coordinator) FetchFolders(ctx context.Context) error {
	tree, err := c.remote.ListFolders(ctx)
	if err != nil {
		return fmt.Errorf("fetch folders: %w", err)
	}
	c.store.SetFolders(tree)

	if root := c.store.RootFolder(); root != nil && !c.store.IsLoaded(root.ID) {
		return c.FetchDiagrams(ctx, root.ID, false)
	}
	return nil
}

// FetchDiagrams loads one folder's diagram list. With forceRefresh false a
// folder that is already loaded is a no-op; at most one fetch is in flight
// per folder at any time. A not-found failure means the folder was deleted
// by another client: its local traces are purged and the whole tree is
// refetched.
func (c *Coordinator) FetchDiagrams(ctx context.Context, folderID int64, forceRefresh bool) error {
	if folderID == 0 {
		return nil
	}
	if !forceRefresh && c.store.IsLoaded(folderID) {
		return nil
	}
	if !c.store.BeginRefresh(folderID) {
		return nil
	}
	defer c.store.EndRefresh(folderID)

	items, err := c.remote.FolderDiagrams(ctx, folderID)
	if err != nil {
		if errors.Is(err, application.ErrNotFound) {
			c.store.UnloadFolder(folderID)
			c.forgetRefresh(folderID)
			if ferr := c.FetchFolders(ctx); ferr != nil {
				return fmt.Errorf("resync after deleted folder %d: %w", folderID, ferr)
			}
			return nil
		}
		return fmt.Errorf("fetch diagrams for folder %d: %w", folderID, err)
	}

	c.store.SetDiagramsForFolder(folderID, items)
	c.touchRefresh(folderID)
	return nil
}

// ToggleFolder flips a folder's expansion. Newly expanding an unloaded
// folder triggers its first fetch; expanding a folder whose data is older
// than the staleness threshold triggers a forced refresh.
func (c *Coordinator) ToggleFolder(ctx context.Context, folderID int64) error {
	expanded := c.store.ToggleExpansion(folderID)
	if !expanded {
		return nil
	}
	if !c.store.IsLoaded(folderID) {
		return c.FetchDiagrams(ctx, folderID, false)
	}
	if c.now().Sub(c.refreshedAt(folderID)) > c.staleAfter {
		return c.FetchDiagrams(ctx, folderID, true)
	}
	return nil
}

// RefreshExpanded force-refreshes every expanded folder not refreshed
// within the minimum interval.
func (c *Coordinator) RefreshExpanded(ctx context.Context) error {
	var errs []string
	for _, folderID := range c.store.ExpandedFolders() {
		if c.now().Sub(c.refreshedAt(folderID)) <= c.minInterval {
			continue
		}
		if err := c.FetchDiagrams(ctx, folderID, true); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("refresh expanded folders: %s", strings.Join(errs, "; "))
	}
	return nil
}

// CreateFolder creates a folder under the given parent (root when 0) and
// resynchronizes the tree.
func (c *Coordinator) CreateFolder(ctx context.Context, name string, parentID int64) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return &application.ValidationError{Field: "name", Message: "folder name is required"}
	}
	if parentID == 0 {
		root := c.store.RootFolder()
		if root == nil {
			return application.ErrNoRootFolder
		}
		parentID = root.ID
	}
	if _, err := c.remote.CreateFolder(ctx, name, parentID); err != nil {
		return fmt.Errorf("create folder: %w", err)
	}
	return c.FetchFolders(ctx)
}

// DeleteFolder deletes a folder and resynchronizes the tree. A non-empty
// folder is refused by the backend; that failure carries the backend's
// verbatim message and no local state changes.
func (c *Coordinator) DeleteFolder(ctx context.Context, folderID int64) error {
	if err := c.remote.DeleteFolder(ctx, folderID); err != nil {
		return err
	}
	return c.FetchFolders(ctx)
}

// MoveDiagram moves a diagram remotely, applies the local remove-then-add
// transition, then force-refreshes both folders to reconcile.
func (c *Coordinator) MoveDiagram(ctx context.Context, diagramID, targetFolderID int64) error {
	sourceFolderID := c.store.FindDiagramFolder(diagramID)

	if err := c.remote.MoveDiagram(ctx, diagramID, targetFolderID); err != nil {
		return fmt.Errorf("move diagram %d: %w", diagramID, err)
	}

	if sourceFolderID != 0 {
		c.store.MoveDiagram(diagramID, sourceFolderID, targetFolderID)
		if err := c.FetchDiagrams(ctx, sourceFolderID, true); err != nil {
			return err
		}
	}
	return c.FetchDiagrams(ctx, targetFolderID, true)
}

func (c *Coordinator) refreshedAt(folderID int64) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastRefresh[folderID]
}

func (c *Coordinator) touchRefresh(folderID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastRefresh[folderID] = c.now()
}

func (c *Coordinator) forgetRefresh(folderID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.lastRefresh, folderID)
}
