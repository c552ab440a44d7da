// Package editor opens the current diagram definition in an external
// editor, round-tripping the text through a temp file.
package editor

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// Opener launches the user's preferred editor.
type Opener struct{}

// NewOpener creates a new editor opener
func NewOpener() *Opener {
	return &Opener{}
}

// WriteTemp writes definition text to a temp .mmd file and returns its path.
func (o *Opener) WriteTemp(text string) (string, error) {
	f, err := os.CreateTemp("", "diagramio-*.mmd")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	if _, err := f.WriteString(text); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

// ReadBack reads the edited file and removes it.
func (o *Opener) ReadBack(path string) (string, error) {
	defer os.Remove(path)
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("read edited file: %w", err)
	}
	return string(data), nil
}

// Command returns an exec.Cmd for opening a file in the editor.
// This is useful for integrating with bubbletea's ExecProcess.
func (o *Opener) Command(path string) (*exec.Cmd, error) {
	editor := o.findEditor()
	if editor == "" {
		return nil, fmt.Errorf("no editor found: set $EDITOR environment variable")
	}

	cmd := exec.Command(editor, path)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return cmd, nil
}

// findEditor returns the editor to use
func (o *Opener) findEditor() string {
	if editor := os.Getenv("EDITOR"); editor != "" {
		return editor
	}
	if visual := os.Getenv("VISUAL"); visual != "" {
		return visual
	}
	editors := []string{"nvim", "vim", "vi", "nano", "code"}
	for _, editor := range editors {
		if path, err := exec.LookPath(editor); err == nil {
			return path
		}
	}
	return ""
}
