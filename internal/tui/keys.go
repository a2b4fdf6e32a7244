package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Resume    key.Binding
	Edit      key.Binding
	Role      key.Binding
	Kind      key.Binding
	Quit      key.Binding
	PreviewUp key.Binding
	PreviewDn key.Binding
	PageUp    key.Binding
	PageDown  key.Binding
}

// statusHelp is what the status bar advertises, in order.
func (k keyMap) statusHelp() []key.Binding {
	return []key.Binding{k.Resume, k.Edit, k.Role, k.Kind, k.Quit}
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "ctrl+k"),
		key.WithHelp("up/C-k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "ctrl+j"),
		key.WithHelp("dn/C-j", "down"),
	),
	Resume: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("Enter", "copy resume cmd"),
	),
	Edit: key.NewBinding(
		key.WithKeys("ctrl+o"),
		key.WithHelp("C-o", "open log"),
	),
	Role: key.NewBinding(
		key.WithKeys("ctrl+r"),
		key.WithHelp("C-r", "role"),
	),
	Kind: key.NewBinding(
		key.WithKeys("ctrl+t"),
		key.WithHelp("C-t", "block kind"),
	),
	Quit: key.NewBinding(
		key.WithKeys("esc", "ctrl+c"),
		key.WithHelp("Esc", "quit"),
	),
	PreviewUp: key.NewBinding(
		key.WithKeys("ctrl+u"),
		key.WithHelp("C-u", "preview up"),
	),
	PreviewDn: key.NewBinding(
		key.WithKeys("ctrl+d"),
		key.WithHelp("C-d", "preview down"),
	),
	PageUp: key.NewBinding(
		key.WithKeys("pgup"),
		key.WithHelp("pgup", "preview pgup"),
	),
	PageDown: key.NewBinding(
		key.WithKeys("pgdown"),
		key.WithHelp("pgdn", "preview pgdn"),
	),
}

var (
	roleFilters = []string{"", "user", "assistant"}
	kindFilters = []string{"", "text", "thinking", "tool_use", "tool_result"}
)

// nextFilter cycles through values, wrapping back to "" (no filter). An
// unknown current value restarts the cycle.
func nextFilter(values []string, current string) string {
	for i, v := range values {
		if v == current {
			return values[(i+1)%len(values)]
		}
	}
	return values[0]
}
