package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	editoradapter "diagramio/internal/adapters/editor"
	"diagramio/internal/adapters/preview"
	"diagramio/internal/adapters/restapi"
	"diagramio/internal/adapters/sqlite"
	"diagramio/internal/adapters/tui"
	"diagramio/internal/application/editor"
	"diagramio/internal/application/panel"
	"diagramio/internal/application/state"
	"diagramio/internal/config"
	"diagramio/internal/ports"
)

func main() {
	apiURL := config.APIURL()

	// Initialize adapters
	client := restapi.NewClient(apiURL)
	renderer := preview.NewRenderer()
	opener := editoradapter.NewOpener()

	// UI state is a convenience; run with defaults when it can't open.
	var uiState ports.UIStateStore
	if db, err := sqlite.Open(apiURL); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: ui state unavailable: %v\n", err)
	} else {
		uiState = db
		defer db.Close()
	}

	// Wire the application core
	store := state.NewStore(uiState)
	coord := state.NewCoordinator(store, client)
	pipe := editor.NewPipeline(client, client, client, coord, store)
	panels := panel.NewManager(uiState)

	app := tui.NewApp(store, coord, pipe, panels, client, renderer, opener)

	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
