package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	next     key.Binding
	prev     key.Binding
	up       key.Binding
	down     key.Binding
	enter    key.Binding
	back     key.Binding
	search   key.Binding
	refresh  key.Binding
	target   key.Binding
	auto     key.Binding
	remove   key.Binding
	faster   key.Binding
	slower   key.Binding
	markRead key.Binding
	logout   key.Binding
	help     key.Binding
	quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		next:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		prev:     key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev tab")),
		up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh prices")),
		target:   key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "edit target")),
		auto:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "auto-purchase")),
		remove:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		faster:   key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "shorter")),
		slower:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "longer")),
		markRead: key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "mark read")),
		logout:   key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "sign out")),
		help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.next, k.help, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.next, k.prev, k.up, k.down},
		{k.enter, k.back, k.search, k.refresh},
		{k.target, k.auto, k.remove, k.markRead},
		{k.faster, k.slower, k.logout, k.quit},
	}
}
