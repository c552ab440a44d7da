// Package restapi implements the remote store and assistant ports over the
// backend's REST surface.
package restapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"diagramio/internal/application"
	"diagramio/internal/domain"
	"diagramio/internal/ports"
)

// requestTimeout bounds every call so a hung request cannot leave a
// refreshing or processing flag set indefinitely.
const requestTimeout = 15 * time.Second

// Client talks to the diagram backend.
type Client struct {
	baseURL string
	http    *http.Client
}

// Ensure Client implements the ports it serves
var (
	_ ports.RemoteStore   = (*Client)(nil)
	_ ports.Assistant     = (*Client)(nil)
	_ ports.HealthChecker = (*Client)(nil)
)

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client (used in tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// NewClient creates a client for the given base URL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: requestTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// apiError is the error envelope every endpoint may return.
type apiError struct {
	Error string `json:"error"`
}

func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w: %v", op, application.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: read response: %w", op, err)
	}

	if resp.StatusCode >= 400 {
		var envelope apiError
		_ = json.Unmarshal(data, &envelope)
		return &application.RequestError{Op: op, Status: resp.StatusCode, Message: envelope.Error}
	}

	// Successful responses may still carry an error field.
	var envelope apiError
	if json.Unmarshal(data, &envelope) == nil && envelope.Error != "" {
		return &application.RequestError{Op: op, Status: resp.StatusCode, Message: envelope.Error}
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("%s: decode response: %w", op, err)
		}
	}
	return nil
}

// ListDiagrams retrieves metadata for every diagram.
func (c *Client) ListDiagrams(ctx context.Context) ([]domain.DiagramItem, error) {
	var items []domain.DiagramItem
	if err := c.do(ctx, "list diagrams", http.MethodGet, "/api/diagrams", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// GetDiagram retrieves one diagram with its content.
func (c *Client) GetDiagram(ctx context.Context, id int64) (*domain.DiagramContent, error) {
	var diagram domain.DiagramContent
	if err := c.do(ctx, "get diagram", http.MethodGet, fmt.Sprintf("/api/diagram/%d", id), nil, &diagram); err != nil {
		return nil, err
	}
	return &diagram, nil
}

// LatestDiagram retrieves the most recently updated diagram, or (nil, nil)
// when none exist: the backend signals that with an empty-content sentinel.
func (c *Client) LatestDiagram(ctx context.Context) (*domain.DiagramContent, error) {
	var diagram domain.DiagramContent
	if err := c.do(ctx, "get latest diagram", http.MethodGet, "/api/diagram", nil, &diagram); err != nil {
		return nil, err
	}
	if diagram.Content == "" {
		return nil, nil
	}
	return &diagram, nil
}

type diagramRequest struct {
	Content  string `json:"content"`
	Name     string `json:"name"`
	FolderID int64  `json:"folder_id,omitempty"`
}

// CreateDiagram creates a diagram, optionally in a specific folder.
func (c *Client) CreateDiagram(ctx context.Context, content, name string, folderID int64) (*domain.DiagramContent, error) {
	var created domain.DiagramContent
	body := diagramRequest{Content: content, Name: name, FolderID: folderID}
	if err := c.do(ctx, "create diagram", http.MethodPost, "/api/diagram", body, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateDiagram updates an existing diagram's content and name.
func (c *Client) UpdateDiagram(ctx context.Context, id int64, content, name string) (*domain.DiagramContent, error) {
	var updated domain.DiagramContent
	body := diagramRequest{Content: content, Name: name}
	if err := c.do(ctx, "update diagram", http.MethodPut, fmt.Sprintf("/api/diagram/%d", id), body, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteDiagram deletes a diagram by id.
func (c *Client) DeleteDiagram(ctx context.Context, id int64) error {
	return c.do(ctx, "delete diagram", http.MethodDelete, fmt.Sprintf("/api/diagram/%d", id), nil, nil)
}

// MoveDiagram moves a diagram into another folder.
func (c *Client) MoveDiagram(ctx context.Context, id, folderID int64) error {
	body := struct {
		FolderID int64 `json:"folder_id"`
	}{folderID}
	return c.do(ctx, "move diagram", http.MethodPut, fmt.Sprintf("/api/diagram/%d/move", id), body, nil)
}

// ListFolders retrieves the tree-shaped folder hierarchy.
func (c *Client) ListFolders(ctx context.Context) ([]domain.Folder, error) {
	var tree []domain.Folder
	if err := c.do(ctx, "list folders", http.MethodGet, "/api/folders", nil, &tree); err != nil {
		return nil, err
	}
	return tree, nil
}

// CreateFolder creates a folder under the given parent.
func (c *Client) CreateFolder(ctx context.Context, name string, parentID int64) (*domain.Folder, error) {
	var created domain.Folder
	body := struct {
		Name     string `json:"name"`
		ParentID int64  `json:"parent_id"`
	}{name, parentID}
	if err := c.do(ctx, "create folder", http.MethodPost, "/api/folder", body, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// RenameFolder updates a folder's name.
func (c *Client) RenameFolder(ctx context.Context, id int64, name string) (*domain.Folder, error) {
	var updated domain.Folder
	body := struct {
		Name string `json:"name"`
	}{name}
	if err := c.do(ctx, "rename folder", http.MethodPut, fmt.Sprintf("/api/folder/%d", id), body, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteFolder deletes a folder. Deleting a folder that still contains
// diagrams fails with the backend's message intact so the UI can surface
// it verbatim.
func (c *Client) DeleteFolder(ctx context.Context, id int64) error {
	return c.do(ctx, "delete folder", http.MethodDelete, fmt.Sprintf("/api/folder/%d", id), nil, nil)
}

// FolderDiagrams lists the diagrams in one folder.
func (c *Client) FolderDiagrams(ctx context.Context, folderID int64) ([]domain.DiagramItem, error) {
	var items []domain.DiagramItem
	if err := c.do(ctx, "list folder diagrams", http.MethodGet, fmt.Sprintf("/api/folder/%d/diagrams", folderID), nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Healthy reports whether the backend answers its health endpoint.
func (c *Client) Healthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
