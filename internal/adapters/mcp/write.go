package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"diagramio/internal/ports"
)

// RegisterWriteTools adds all mutating diagram tools to the MCP server.
func RegisterWriteTools(s *server.MCPServer, remote ports.RemoteStore, assistant ports.Assistant) {
	s.AddTool(createTool(), createHandler(remote))
	s.AddTool(updateTool(), updateHandler(remote))
	s.AddTool(moveTool(), moveHandler(remote))
	s.AddTool(deleteTool(), deleteHandler(remote))
	s.AddTool(rewriteTool(), rewriteHandler(remote, assistant))
}

// --- create ---

func createTool() mcp.Tool {
	return mcp.NewTool("create",
		mcp.WithDescription("Create a new diagram. Without a folder ID the backend places it in the root folder."),
		mcp.WithString("content",
			mcp.Description("Diagram definition text"),
			mcp.Required(),
		),
		mcp.WithString("name",
			mcp.Description("Diagram name. Omit for an untitled diagram."),
		),
		mcp.WithNumber("folder_id",
			mcp.Description("Folder ID to create the diagram in. Omit for the root folder."),
		),
	)
}

func createHandler(remote ports.RemoteStore) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		content := req.GetString("content", "")
		name := req.GetString("name", "")
		folderID := int64(req.GetFloat("folder_id", 0))

		if content == "" {
			return toolError(fmt.Errorf("content is required"))
		}

		diagram, err := remote.CreateDiagram(ctx, content, name, folderID)
		if err != nil {
			return toolError(err)
		}

		return mcp.NewToolResultText(fmt.Sprintf("Created diagram %d in folder %d", diagram.ID, diagram.FolderID)), nil
	}
}

// --- update ---

func updateTool() mcp.Tool {
	return mcp.NewTool("update",
		mcp.WithDescription("Replace a diagram's definition text and name."),
		mcp.WithNumber("id",
			mcp.Description("Diagram ID"),
			mcp.Required(),
		),
		mcp.WithString("content",
			mcp.Description("New definition text"),
			mcp.Required(),
		),
		mcp.WithString("name",
			mcp.Description("New name. Omit to keep the diagram untitled."),
		),
	)
}

func updateHandler(remote ports.RemoteStore) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := int64(req.GetFloat("id", 0))
		content := req.GetString("content", "")
		name := req.GetString("name", "")

		if id == 0 {
			return toolError(fmt.Errorf("id is required"))
		}
		if content == "" {
			return toolError(fmt.Errorf("content is required"))
		}

		diagram, err := remote.UpdateDiagram(ctx, id, content, name)
		if err != nil {
			return toolError(err)
		}

		return mcp.NewToolResultText(fmt.Sprintf("Updated diagram %d", diagram.ID)), nil
	}
}

// --- move ---

func moveTool() mcp.Tool {
	return mcp.NewTool("move",
		mcp.WithDescription("Move a diagram to a different folder."),
		mcp.WithNumber("id",
			mcp.Description("Diagram ID"),
			mcp.Required(),
		),
		mcp.WithNumber("folder_id",
			mcp.Description("Destination folder ID"),
			mcp.Required(),
		),
	)
}

func moveHandler(remote ports.RemoteStore) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := int64(req.GetFloat("id", 0))
		folderID := int64(req.GetFloat("folder_id", 0))

		if id == 0 || folderID == 0 {
			return toolError(fmt.Errorf("id and folder_id are required"))
		}

		if err := remote.MoveDiagram(ctx, id, folderID); err != nil {
			return toolError(err)
		}

		return mcp.NewToolResultText(fmt.Sprintf("Moved diagram %d to folder %d", id, folderID)), nil
	}
}

// --- delete ---

func deleteTool() mcp.Tool {
	return mcp.NewTool("delete",
		mcp.WithDescription("Delete a diagram by its ID."),
		mcp.WithNumber("id",
			mcp.Description("Diagram ID"),
			mcp.Required(),
		),
	)
}

func deleteHandler(remote ports.RemoteStore) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := int64(req.GetFloat("id", 0))
		if id == 0 {
			return toolError(fmt.Errorf("id is required"))
		}

		if err := remote.DeleteDiagram(ctx, id); err != nil {
			return toolError(err)
		}

		return mcp.NewToolResultText(fmt.Sprintf("Deleted diagram %d", id)), nil
	}
}

// --- rewrite ---

func rewriteTool() mcp.Tool {
	return mcp.NewTool("rewrite",
		mcp.WithDescription("Rewrite a diagram's definition with the AI assistant and save the result."),
		mcp.WithNumber("id",
			mcp.Description("Diagram ID"),
			mcp.Required(),
		),
		mcp.WithString("instruction",
			mcp.Description("Natural-language instruction for the rewrite (e.g. \"add an error branch after the login step\")"),
			mcp.Required(),
		),
	)
}

func rewriteHandler(remote ports.RemoteStore, assistant ports.Assistant) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := int64(req.GetFloat("id", 0))
		instruction := req.GetString("instruction", "")

		if id == 0 {
			return toolError(fmt.Errorf("id is required"))
		}
		if instruction == "" {
			return toolError(fmt.Errorf("instruction is required"))
		}

		diagram, err := remote.GetDiagram(ctx, id)
		if err != nil {
			return toolError(err)
		}

		updated, err := assistant.Rewrite(ctx, diagram.Content, instruction)
		if err != nil {
			return toolError(err)
		}

		if _, err := remote.UpdateDiagram(ctx, id, updated, diagram.Name); err != nil {
			return toolError(err)
		}

		return mcp.NewToolResultText(updated), nil
	}
}
