package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up       key.Binding
	down     key.Binding
	nextPage key.Binding
	prevPage key.Binding
	enter    key.Binding
	back     key.Binding
	search   key.Binding
	sort     key.Binding
	tier     key.Binding
	genre    key.Binding
	reset    key.Binding
	warm     key.Binding
	clear    key.Binding
	open     key.Binding
	help     key.Binding
	quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		nextPage: key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next page")),
		prevPage: key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev page")),
		enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
		back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		sort:     key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7"), key.WithHelp("1-7", "sort")),
		tier:     key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "tier")),
		genre:    key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "genre")),
		reset:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "reset filters")),
		warm:     key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "warm page")),
		clear:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear cache")),
		open:     key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open in Spotify")),
		help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
		quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.search, k.sort, k.enter, k.help, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.nextPage, k.prevPage},
		{k.search, k.sort, k.tier, k.genre, k.reset},
		{k.enter, k.warm, k.clear, k.quit},
	}
}
