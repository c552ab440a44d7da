package restapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"diagramio/internal/application"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL), srv
}

func TestGetDiagramDecodesResponse(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		if r.URL.Path != "/api/diagram/7" {
			t.Errorf("path = %s, want /api/diagram/7", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id":        7,
			"content":   "graph TD\n  a --> b",
			"name":      "Flow",
			"folder_id": 3,
		})
	})

	diagram, err := client.GetDiagram(context.Background(), 7)
	if err != nil {
		t.Fatalf("GetDiagram() error = %v", err)
	}
	if diagram.ID != 7 || diagram.Name != "Flow" || diagram.FolderID != 3 {
		t.Errorf("diagram = %+v", diagram)
	}
	if diagram.Content != "graph TD\n  a --> b" {
		t.Errorf("content = %q", diagram.Content)
	}
}

func TestNotFoundMapsToSentinel(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "Diagram not found"})
	})

	_, err := client.GetDiagram(context.Background(), 99)
	if !errors.Is(err, application.ErrNotFound) {
		t.Fatalf("GetDiagram() error = %v, want ErrNotFound", err)
	}
	var reqErr *application.RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("error is not a RequestError: %v", err)
	}
	if reqErr.Message != "Diagram not found" {
		t.Errorf("message = %q, want backend text verbatim", reqErr.Message)
	}
}

func TestDeleteFolderNotEmptyPassesMessageThrough(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "Cannot delete folder that contains diagrams",
		})
	})

	err := client.DeleteFolder(context.Background(), 5)
	if !errors.Is(err, application.ErrFolderNotEmpty) {
		t.Fatalf("DeleteFolder() error = %v, want ErrFolderNotEmpty", err)
	}
	if !strings.Contains(err.Error(), "Cannot delete folder that contains diagrams") {
		t.Errorf("error text lost the backend message: %v", err)
	}
}

func TestErrorEnvelopeOnSuccessStatus(t *testing.T) {
	// Some endpoints answer 200 with an error field in the body.
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"error": "something went wrong"})
	})

	_, err := client.ListFolders(context.Background())
	var reqErr *application.RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("ListFolders() error = %v, want RequestError", err)
	}
	if reqErr.Message != "something went wrong" {
		t.Errorf("message = %q", reqErr.Message)
	}
}

func TestCreateDiagramSendsFolder(t *testing.T) {
	var got diagramRequest
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/diagram" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id": 42, "content": got.Content, "name": got.Name, "folder_id": got.FolderID,
		})
	})

	created, err := client.CreateDiagram(context.Background(), "graph TD", "New", 3)
	if err != nil {
		t.Fatalf("CreateDiagram() error = %v", err)
	}
	if got.Content != "graph TD" || got.Name != "New" || got.FolderID != 3 {
		t.Errorf("request body = %+v", got)
	}
	if created.ID != 42 {
		t.Errorf("created.ID = %d, want 42", created.ID)
	}
}

func TestLatestDiagramEmptySentinel(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"id": 0, "content": ""})
	})

	diagram, err := client.LatestDiagram(context.Background())
	if err != nil {
		t.Fatalf("LatestDiagram() error = %v", err)
	}
	if diagram != nil {
		t.Errorf("diagram = %+v, want nil for the empty sentinel", diagram)
	}
}

func TestMoveDiagramRequest(t *testing.T) {
	var gotPath string
	var gotBody struct {
		FolderID int64 `json:"folder_id"`
	}
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.Method + " " + r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte("{}"))
	})

	if err := client.MoveDiagram(context.Background(), 7, 5); err != nil {
		t.Fatalf("MoveDiagram() error = %v", err)
	}
	if gotPath != "PUT /api/diagram/7/move" {
		t.Errorf("request = %s", gotPath)
	}
	if gotBody.FolderID != 5 {
		t.Errorf("folder_id = %d, want 5", gotBody.FolderID)
	}
}

func TestRewriteReturnsUpdatedCode(t *testing.T) {
	var got rewriteRequest
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/update-diagram" {
			t.Errorf("path = %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(map[string]string{"updated_code": "graph LR\n  a --> b"})
	})

	updated, err := client.Rewrite(context.Background(), "graph TD", "make it horizontal")
	if err != nil {
		t.Fatalf("Rewrite() error = %v", err)
	}
	if got.CurrentCode != "graph TD" || got.UserRequest != "make it horizontal" {
		t.Errorf("request body = %+v", got)
	}
	if updated != "graph LR\n  a --> b" {
		t.Errorf("updated = %q", updated)
	}
}

func TestRewriteRejectsEmptyPayload(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{}"))
	})

	_, err := client.Rewrite(context.Background(), "graph TD", "anything")
	if err == nil || !strings.Contains(err.Error(), "malformed response") {
		t.Fatalf("Rewrite() error = %v, want malformed response", err)
	}
}

func TestHealthy(t *testing.T) {
	healthy := true
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/health" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if !healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	})

	if !client.Healthy(context.Background()) {
		t.Error("Healthy() = false for a 200 response")
	}
	healthy = false
	if client.Healthy(context.Background()) {
		t.Error("Healthy() = true for a 503 response")
	}
}

func TestUnreachableBackendIsServiceUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := NewClient(url)
	_, err := client.ListFolders(context.Background())
	if !errors.Is(err, application.ErrServiceUnavailable) {
		t.Fatalf("ListFolders() error = %v, want ErrServiceUnavailable", err)
	}
}
