// Package preview renders diagram definition text for the terminal.
package preview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"diagramio/internal/ports"
)

// Renderer implements ports.Renderer with glamour: the definition is shown
// as a highlighted fenced block, which keeps the preview purely a function
// of the text.
type Renderer struct {
	style string
}

// Ensure Renderer implements the port
var _ ports.Renderer = (*Renderer)(nil)

// NewRenderer creates a renderer with the auto-detected terminal style.
func NewRenderer() *Renderer {
	return &Renderer{style: "auto"}
}

// Render produces the preview for the given definition text.
func (r *Renderer) Render(text string, width int) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	if width < 10 {
		width = 10
	}

	tr, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(r.style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("preview renderer: %w", err)
	}

	out, err := tr.Render("```mermaid\n" + text + "\n```")
	if err != nil {
		return "", fmt.Errorf("render preview: %w", err)
	}
	return strings.TrimRight(out, "\n"), nil
}
