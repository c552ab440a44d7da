package ports

// Renderer turns diagram definition text into a terminal-displayable
// preview. It is a pure function of its inputs: text in, visual or error out.
type Renderer interface {
	Render(text string, width int) (string, error)
}
