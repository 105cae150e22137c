package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up       key.Binding
	down     key.Binding
	left     key.Binding
	right    key.Binding
	enter    key.Binding
	back     key.Binding
	nextPage key.Binding
	prevPage key.Binding
	search   key.Binding
	sort     key.Binding
	view     key.Binding
	mark     key.Binding
	zoomIn   key.Binding
	zoomOut  key.Binding
	open     key.Binding
	details  key.Binding
	remove   key.Binding
	copy     key.Binding
	debug    key.Binding
	clear    key.Binding
	quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		left:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev")),
		right:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next")),
		enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "view")),
		back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		nextPage: key.NewBinding(key.WithKeys("n", "pgdown"), key.WithHelp("n", "next page")),
		prevPage: key.NewBinding(key.WithKeys("p", "pgup"), key.WithHelp("p", "prev page")),
		search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		sort:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
		view:     key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "layout")),
		mark:     key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "select")),
		zoomIn:   key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
		zoomOut:  key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "zoom out")),
		open:     key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open")),
		details:  key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "details")),
		remove:   key.NewBinding(key.WithKeys("delete"), key.WithHelp("del", "delete")),
		copy:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "copy url")),
		debug:    key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "debug")),
		clear:    key.NewBinding(key.WithKeys("X"), key.WithHelp("X", "clear debug")),
		quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.left, k.right, k.enter},
		{k.nextPage, k.prevPage, k.search, k.sort, k.view, k.mark},
		{k.zoomIn, k.zoomOut, k.open, k.details, k.remove, k.copy},
		{k.debug, k.clear, k.back, k.quit},
	}
}
