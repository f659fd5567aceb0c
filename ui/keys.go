package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings of the folder list.
type KeyMap struct {
	Up         key.Binding
	Down       key.Binding
	Open       key.Binding
	Into       key.Binding
	Back       key.Binding
	AddRecent  key.Binding
	CopyPath   key.Binding
	Forget     key.Binding
	NextAction key.Binding
	PrevAction key.Binding
	Reveal     key.Binding
	Escape     key.Binding
	Quit       key.Binding
}

var Keys = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "ctrl+p"),
		key.WithHelp("↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "ctrl+n"),
		key.WithHelp("↓", "down"),
	),
	Open: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "open"),
	),
	Into: key.NewBinding(
		key.WithKeys("right"),
		key.WithHelp("→", "browse into"),
	),
	Back: key.NewBinding(
		key.WithKeys("left"),
		key.WithHelp("←", "back"),
	),
	AddRecent: key.NewBinding(
		key.WithKeys("ctrl+r"),
		key.WithHelp("ctrl+r", "add to recent"),
	),
	CopyPath: key.NewBinding(
		key.WithKeys("ctrl+y"),
		key.WithHelp("ctrl+y", "copy path"),
	),
	Forget: key.NewBinding(
		key.WithKeys("ctrl+x"),
		key.WithHelp("ctrl+x", "remove from recent"),
	),
	NextAction: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "cycle action"),
	),
	PrevAction: key.NewBinding(
		key.WithKeys("shift+tab"),
	),
	Reveal: key.NewBinding(
		key.WithKeys("ctrl+f"),
		key.WithHelp("ctrl+f", "reveal"),
	),
	Escape: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back/quit"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
	),
}

// helpBindings are shown in the footer.
func helpBindings() []key.Binding {
	return []key.Binding{Keys.Open, Keys.Into, Keys.AddRecent, Keys.CopyPath, Keys.Forget, Keys.NextAction, Keys.Escape}
}
