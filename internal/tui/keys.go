package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the normal-mode bindings. It doubles as the help.KeyMap
// rendered by the help overlay.
type keyMap struct {
	SwitchView key.Binding
	Filter     key.Binding
	DateRange  key.Binding
	IgnoreCase key.Binding
	Container  key.Binding
	ClearAll   key.Binding
	Up         key.Binding
	Down       key.Binding
	PageUp     key.Binding
	PageDown   key.Binding
	Top        key.Binding
	Latest     key.Binding
	Refresh    key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		SwitchView: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "logs/alerts view")),
		Filter:     key.NewBinding(key.WithKeys("/", "s"), key.WithHelp("/ s", "text filter")),
		DateRange:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "date range (FROM..TO)")),
		IgnoreCase: key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "toggle ignore case")),
		Container:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "watch another container")),
		ClearAll:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear filters")),
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "scroll up")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "scroll down")),
		PageUp:     key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "half page up")),
		PageDown:   key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "half page down")),
		Top:        key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g/home", "go to top")),
		Latest:     key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G/end", "jump to latest")),
		Refresh:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh alerts")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.SwitchView, k.Filter, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown, k.Top, k.Latest},
		{k.Filter, k.DateRange, k.IgnoreCase, k.ClearAll},
		{k.SwitchView, k.Container, k.Refresh, k.Help, k.Quit},
	}
}
