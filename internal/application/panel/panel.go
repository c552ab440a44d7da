// Package panel tracks expand/collapse and size-allocation state for the
// independently toggleable UI regions. Panels do not coordinate: collapsing
// one never forces another to expand.
package panel

import (
	"encoding/json"
	"sync"

	"diagramio/internal/ports"
)

// Panel ids for the four regions.
const (
	Editor  = "editor"
	Preview = "preview"
	Library = "library"
	Command = "command"
)

// Orientation of a panel's main axis.
type Orientation string

const (
	Horizontal Orientation = "horizontal"
	Vertical   Orientation = "vertical"
)

// Position of a panel within the layout.
type Position string

const (
	Left   Position = "left"
	Center Position = "center"
	Right  Position = "right"
	Bottom Position = "bottom"
)

// Panel holds one region's layout state.
type Panel struct {
	ID            string      `json:"id"`
	Expanded      bool        `json:"is_expanded"`
	DefaultFlex   int         `json:"default_flex"`
	ExpandedFlex  int         `json:"expanded_flex"`
	CollapsedSize int         `json:"collapsed_size"`
	PreferredSize int         `json:"preferred_size"`
	Orientation   Orientation `json:"orientation"`
	Position      Position    `json:"position"`
}

// Style is the sizing descriptor consumed by views: a collapsed panel
// always renders at its fixed collapsed size; exactly one expanded panel
// (the preview) grows to absorb remaining space.
type Style struct {
	Size      int
	Grow      bool
	Collapsed bool
}

func defaults() map[string]Panel {
	return map[string]Panel{
		Editor: {
			ID: Editor, Expanded: true,
			DefaultFlex: 1, ExpandedFlex: 2,
			CollapsedSize: 3, PreferredSize: 40,
			Orientation: Horizontal, Position: Left,
		},
		Preview: {
			ID: Preview, Expanded: true,
			DefaultFlex: 2, ExpandedFlex: 3,
			CollapsedSize: 3, PreferredSize: 0,
			Orientation: Horizontal, Position: Center,
		},
		Library: {
			ID: Library, Expanded: true,
			DefaultFlex: 1, ExpandedFlex: 2,
			CollapsedSize: 3, PreferredSize: 34,
			Orientation: Horizontal, Position: Right,
		},
		Command: {
			ID: Command, Expanded: true,
			DefaultFlex: 1, ExpandedFlex: 1,
			CollapsedSize: 1, PreferredSize: 5,
			Orientation: Vertical, Position: Bottom,
		},
	}
}

// Manager owns panel state and persists it on every change.
type Manager struct {
	mu     sync.Mutex
	panels map[string]Panel
	ui     ports.UIStateStore
}

// NewManager restores persisted layout state, falling back to the
// documented defaults when nothing valid is stored.
func NewManager(ui ports.UIStateStore) *Manager {
	m := &Manager{panels: defaults(), ui: ui}
	if ui == nil {
		return m
	}
	data, err := ui.PanelLayout()
	if err != nil || len(data) == 0 {
		return m
	}
	var stored map[string]Panel
	if err := json.Unmarshal(data, &stored); err != nil {
		return m
	}
	// Only expansion survives a restore; geometry always comes from the
	// defaults so upgrades can change sizes without a reset.
	for id, p := range m.panels {
		if s, ok := stored[id]; ok {
			p.Expanded = s.Expanded
			m.panels[id] = p
		}
	}
	return m
}

// Toggle flips a panel's expansion and persists the layout. Returns the
// new expansion state.
func (m *Manager) Toggle(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.panels[id]
	if !ok {
		return false
	}
	p.Expanded = !p.Expanded
	m.panels[id] = p
	m.persistLocked()
	return p.Expanded
}

// IsExpanded reports a panel's expansion state.
func (m *Manager) IsExpanded(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.panels[id].Expanded
}

// Style returns the sizing descriptor for a panel.
func (m *Manager) Style(id string) Style {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.panels[id]
	if !ok {
		return Style{}
	}
	if !p.Expanded {
		return Style{Size: p.CollapsedSize, Collapsed: true}
	}
	if p.Orientation == Horizontal && p.Position == Center {
		return Style{Grow: true}
	}
	return Style{Size: p.PreferredSize}
}

// Reset discards persisted state and restores the defaults.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.panels = defaults()
	if m.ui != nil {
		_ = m.ui.ClearPanelLayout()
	}
}

// SplitRow allocates a total width across the given panels in order:
// collapsed and side panels take their fixed sizes, growing panels split
// the remainder. Every panel gets at least one cell.
func (m *Manager) SplitRow(total int, ids ...string) []int {
	widths := make([]int, len(ids))
	styles := make([]Style, len(ids))
	fixed, growers := 0, 0
	for i, id := range ids {
		styles[i] = m.Style(id)
		if styles[i].Grow {
			growers++
			continue
		}
		widths[i] = styles[i].Size
		fixed += widths[i]
	}

	remaining := total - fixed
	if growers > 0 {
		share := remaining / growers
		for i := range ids {
			if styles[i].Grow {
				widths[i] = share
				remaining -= share
				growers--
				if growers == 0 {
					widths[i] += remaining
				}
			}
		}
	}
	for i := range widths {
		if widths[i] < 1 {
			widths[i] = 1
		}
	}
	return widths
}

func (m *Manager) persistLocked() {
	if m.ui == nil {
		return
	}
	if data, err := json.Marshal(m.panels); err == nil {
		_ = m.ui.SavePanelLayout(data)
	}
}
