package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"diagramio/internal/domain"
	"diagramio/internal/ports"
)

// RegisterReadTools adds all read-only diagram tools to the MCP server.
func RegisterReadTools(s *server.MCPServer, remote ports.RemoteStore) {
	s.AddTool(treeTool(), treeHandler(remote))
	s.AddTool(listTool(), listHandler(remote))
	s.AddTool(readTool(), readHandler(remote))
}

// --- tree ---

func treeTool() mcp.Tool {
	return mcp.NewTool("tree",
		mcp.WithDescription("Display the folder hierarchy as an indented tree, with folder IDs."),
	)
}

func treeHandler(remote ports.RemoteStore) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		tree, err := remote.ListFolders(ctx)
		if err != nil {
			return toolError(err)
		}
		folders, hierarchy := domain.Normalize(tree)

		var sb strings.Builder
		for _, ref := range domain.Flatten(folders, hierarchy) {
			fmt.Fprintf(&sb, "%s[%d] %s\n", strings.Repeat("  ", ref.Depth), ref.ID, ref.Name)
		}
		if sb.Len() == 0 {
			return mcp.NewToolResultText("No folders."), nil
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- list ---

func listTool() mcp.Tool {
	return mcp.NewTool("list",
		mcp.WithDescription("List diagrams. Without arguments lists every diagram. With a folder ID lists only that folder's diagrams."),
		mcp.WithNumber("folder_id",
			mcp.Description("Folder ID to list diagrams of. Omit to list all diagrams."),
		),
	)
}

func listHandler(remote ports.RemoteStore) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		folderID := int64(req.GetFloat("folder_id", 0))

		var (
			items []domain.DiagramItem
			err   error
		)
		if folderID == 0 {
			items, err = remote.ListDiagrams(ctx)
		} else {
			items, err = remote.FolderDiagrams(ctx, folderID)
		}
		if err != nil {
			return toolError(err)
		}

		if len(items) == 0 {
			return mcp.NewToolResultText("No diagrams."), nil
		}
		domain.SortDiagrams(items)

		var sb strings.Builder
		for _, item := range items {
			fmt.Fprintf(&sb, "[%d] %s  (folder %d, updated %s)\n",
				item.ID, item.DisplayName(), item.FolderID, item.LastUpdated)
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- read ---

func readTool() mcp.Tool {
	return mcp.NewTool("read",
		mcp.WithDescription("Read a diagram's definition text by its ID."),
		mcp.WithNumber("id",
			mcp.Description("Diagram ID"),
			mcp.Required(),
		),
	)
}

func readHandler(remote ports.RemoteStore) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := int64(req.GetFloat("id", 0))
		if id == 0 {
			return toolError(fmt.Errorf("id is required"))
		}

		diagram, err := remote.GetDiagram(ctx, id)
		if err != nil {
			return toolError(err)
		}

		return mcp.NewToolResultText(diagram.Content), nil
	}
}

// --- helpers ---

func toolError(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}
