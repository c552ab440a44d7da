package views

import (
	"diagramio/internal/adapters/tui/styles"
	"diagramio/internal/application/editor"
	"diagramio/internal/ports"
)

// PreviewModel renders the open document's definition through the markdown
// renderer. Rendering is memoized on (text, width) so View stays cheap.
type PreviewModel struct {
	ViewState
	pipe     *editor.Pipeline
	renderer ports.Renderer

	lastText  string
	lastWidth int
	rendered  string
}

// NewPreviewModel creates the preview pane.
func NewPreviewModel(pipe *editor.Pipeline, renderer ports.Renderer) *PreviewModel {
	return &PreviewModel{pipe: pipe, renderer: renderer}
}

// View renders the preview pane content
func (m *PreviewModel) View() string {
	text := m.pipe.Document().Text
	if text == "" {
		return styles.MutedText.Render("Nothing to preview yet.")
	}

	if text != m.lastText || m.Width != m.lastWidth {
		out, err := m.renderer.Render(text, m.Width)
		if err != nil {
			return styles.ErrorMsg.Render("preview: " + err.Error())
		}
		m.lastText = text
		m.lastWidth = m.Width
		m.rendered = out
	}
	return m.rendered
}
