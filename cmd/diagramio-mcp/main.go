package main

import (
	"context"
	"flag"
	"log"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	mcpadapter "diagramio/internal/adapters/mcp"
	"diagramio/internal/adapters/restapi"
	"diagramio/internal/config"
)

func main() {
	apiFlag := flag.String("api-url", config.APIURL(), "base URL of the backend")
	flag.Parse()

	client := restapi.NewClient(*apiFlag)

	mcpServer := server.NewMCPServer(
		"diagramio-mcp",
		"0.1.0",
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(
		mcp.NewTool("ping",
			mcp.WithDescription("Health check — returns pong"),
		),
		func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText("pong"), nil
		},
	)

	mcpadapter.RegisterReadTools(mcpServer, client)
	mcpadapter.RegisterWriteTools(mcpServer, client, client)

	if err := server.ServeStdio(mcpServer); err != nil {
		log.Fatalf("diagramio-mcp: %v", err)
	}
}
