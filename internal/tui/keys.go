package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up         key.Binding
	Down       key.Binding
	Left       key.Binding
	Right      key.Binding
	GrowUp     key.Binding
	GrowDown   key.Binding
	GrowLeft   key.Binding
	GrowRight  key.Binding
	Next       key.Binding
	Prev       key.Binding
	Add        key.Binding
	Delete     key.Binding
	Save       key.Binding
	Cancel     key.Binding
	ToggleHelp key.Binding
	Quit       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "move up")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "move down")),
		Left:       key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "move left")),
		Right:      key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "move right")),
		GrowUp:     key.NewBinding(key.WithKeys("shift+up", "K"), key.WithHelp("shift+↑", "shorter")),
		GrowDown:   key.NewBinding(key.WithKeys("shift+down", "J"), key.WithHelp("shift+↓", "taller")),
		GrowLeft:   key.NewBinding(key.WithKeys("shift+left", "H"), key.WithHelp("shift+←", "narrower")),
		GrowRight:  key.NewBinding(key.WithKeys("shift+right", "L"), key.WithHelp("shift+→", "wider")),
		Next:       key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next widget")),
		Prev:       key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev widget")),
		Add:        key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		Delete:     key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "remove")),
		Save:       key.NewBinding(key.WithKeys("s", "ctrl+s"), key.WithHelp("s", "save")),
		Cancel:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel drag")),
		ToggleHelp: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Right, k.GrowRight, k.Add, k.Delete, k.Save, k.ToggleHelp, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.GrowUp, k.GrowDown, k.GrowLeft, k.GrowRight},
		{k.Next, k.Prev, k.Add, k.Delete},
		{k.Save, k.Cancel, k.ToggleHelp, k.Quit},
	}
}
