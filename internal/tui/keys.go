package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Add     key.Binding
	Rename  key.Binding
	Date    key.Binding
	Reset   key.Binding
	Delete  key.Binding
	Sort    key.Binding
	Share   key.Binding
	SignOut key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("k/up", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("j/down", "down")),
		Add:     key.NewBinding(key.WithKeys("n", "a"), key.WithHelp("n", "new tracker")),
		Rename:  key.NewBinding(key.WithKeys("r", "enter"), key.WithHelp("r", "rename")),
		Date:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit date")),
		Reset:   key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "reset to now")),
		Delete:  key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
		Sort:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
		Share:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "share")),
		SignOut: key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "sign out")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Add, k.Rename, k.Date, k.Sort, k.Share, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Add, k.Delete},
		{k.Rename, k.Date, k.Reset},
		{k.Sort, k.Share},
		{k.SignOut, k.Help, k.Quit},
	}
}

type editKeyMap struct {
	Prev   key.Binding
	Next   key.Binding
	Inc    key.Binding
	Dec    key.Binding
	Commit key.Binding
	Cancel key.Binding
}

func newEditKeyMap() editKeyMap {
	return editKeyMap{
		Prev:   key.NewBinding(key.WithKeys("left", "h", "shift+tab"), key.WithHelp("←/→", "field")),
		Next:   key.NewBinding(key.WithKeys("right", "l", "tab")),
		Inc:    key.NewBinding(key.WithKeys("up", "k", "+"), key.WithHelp("↑/↓", "change")),
		Dec:    key.NewBinding(key.WithKeys("down", "j", "-")),
		Commit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
		Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}

func (k editKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Inc, k.Commit, k.Cancel}
}

func (k editKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
