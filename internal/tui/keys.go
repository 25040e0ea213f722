package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the client
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Home     key.Binding
	End      key.Binding
	Select   key.Binding

	NextField key.Binding
	PrevField key.Binding
	Submit    key.Binding

	// Screen switching
	GoHome     key.Binding
	GoAircraft key.Binding
	GoAirports key.Binding
	GoAirlines key.Binding
	GoGlobe    key.Binding
	GoContact  key.Binding
	GoAbout    key.Binding
	Back       key.Binding

	// List controls
	Search       key.Binding
	Blur         key.Binding
	CycleCountry key.Binding
	CycleActive  key.Binding
	ClearFilters key.Binding
	Retry        key.Binding
	ToggleTheme  key.Binding
	Quit         key.Binding
	ForceQuit    key.Binding
}

// DefaultKeyMap is the built-in key binding set. Vim-style navigation
// (j/k) alongside standard arrow keys and page up/down.
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	PageUp: key.NewBinding(
		key.WithKeys("ctrl+u", "pgup"),
		key.WithHelp("C-u", "page up"),
	),
	PageDown: key.NewBinding(
		key.WithKeys("ctrl+d", "pgdown"),
		key.WithHelp("C-d", "page down"),
	),
	Home: key.NewBinding(
		key.WithKeys("g", "home"),
		key.WithHelp("g", "top"),
	),
	End: key.NewBinding(
		key.WithKeys("G", "end"),
		key.WithHelp("G", "bottom"),
	),
	Select: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("Enter", "open"),
	),
	NextField: key.NewBinding(
		key.WithKeys("tab", "down"),
		key.WithHelp("Tab", "next field"),
	),
	PrevField: key.NewBinding(
		key.WithKeys("shift+tab", "up"),
		key.WithHelp("S-Tab", "previous field"),
	),
	Submit: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("C-s", "send"),
	),
	GoHome: key.NewBinding(
		key.WithKeys("1"),
		key.WithHelp("1", "home"),
	),
	GoAircraft: key.NewBinding(
		key.WithKeys("2"),
		key.WithHelp("2", "aircraft"),
	),
	GoAirports: key.NewBinding(
		key.WithKeys("3"),
		key.WithHelp("3", "airports"),
	),
	GoAirlines: key.NewBinding(
		key.WithKeys("4"),
		key.WithHelp("4", "airlines"),
	),
	GoGlobe: key.NewBinding(
		key.WithKeys("5"),
		key.WithHelp("5", "globe"),
	),
	GoContact: key.NewBinding(
		key.WithKeys("6"),
		key.WithHelp("6", "contact"),
	),
	GoAbout: key.NewBinding(
		key.WithKeys("7"),
		key.WithHelp("7", "about"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc", "backspace"),
		key.WithHelp("Esc", "back"),
	),
	Search: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "search"),
	),
	Blur: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("Esc", "leave input"),
	),
	CycleCountry: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "country"),
	),
	CycleActive: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "active"),
	),
	ClearFilters: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "clear filters"),
	),
	Retry: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "retry"),
	),
	ToggleTheme: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "theme"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q"),
		key.WithHelp("q", "quit"),
	),
	ForceQuit: key.NewBinding(
		key.WithKeys("ctrl+c"),
	),
}

func helpLine(bindings ...key.Binding) string {
	line := ""
	for i, b := range bindings {
		h := b.Help()
		if h.Key == "" {
			continue
		}
		if i > 0 && line != "" {
			line += "  "
		}
		line += h.Key + " " + h.Desc
	}
	return line
}
