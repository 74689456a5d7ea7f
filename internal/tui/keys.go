package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Left    key.Binding
	Right   key.Binding
	Sort    key.Binding
	PrevPg  key.Binding
	NextPg  key.Binding
	Filter  key.Binding
	Clear   key.Binding
	Refresh key.Binding
	Dismiss key.Binding
	Logout  key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Left:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/→", "column")),
		Right:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("←/→", "column")),
		Sort:    key.NewBinding(key.WithKeys("enter", "s"), key.WithHelp("s", "sort")),
		PrevPg:  key.NewBinding(key.WithKeys("p", "pgup"), key.WithHelp("p", "prev page")),
		NextPg:  key.NewBinding(key.WithKeys("n", "pgdown"), key.WithHelp("n", "next page")),
		Filter:  key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filter")),
		Clear:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear filter")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Dismiss: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "dismiss")),
		Logout:  key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "logout")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Sort, k.NextPg, k.PrevPg, k.Filter, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Sort, k.PrevPg, k.NextPg},
		{k.Filter, k.Clear, k.Refresh, k.Dismiss},
		{k.Logout, k.Help, k.Quit},
	}
}

// formKeyMap covers the login and filter forms, where letters are input.
type formKeyMap struct {
	Next   key.Binding
	Submit key.Binding
	Cancel key.Binding
	Quit   key.Binding
}

func defaultFormKeyMap() formKeyMap {
	return formKeyMap{
		Next:   key.NewBinding(key.WithKeys("tab", "shift+tab", "up", "down"), key.WithHelp("tab", "switch field")),
		Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Quit:   key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

func (k formKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Submit, k.Cancel, k.Quit}
}

func (k formKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
