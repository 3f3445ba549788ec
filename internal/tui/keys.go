package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Top      key.Binding
	Bottom   key.Binding
	HalfUp   key.Binding
	HalfDown key.Binding
	Enter    key.Binding
	Collapse key.Binding
	Add      key.Binding
	Delete   key.Binding
	Help     key.Binding
	Sync     key.Binding
	Quit     key.Binding

	// ForceQuit exits from any view or popup.
	ForceQuit key.Binding

	Back  key.Binding
	Open  key.Binding
	Fetch key.Binding
	End   key.Binding

	Yes     key.Binding
	No      key.Binding
	Cancel  key.Binding
	Submit  key.Binding
	Dismiss key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Top:      key.NewBinding(key.WithKeys("g"), key.WithHelp("g g", "top")),
		Bottom:   key.NewBinding(key.WithKeys("G"), key.WithHelp("G", "bottom")),
		HalfUp:   key.NewBinding(key.WithKeys("ctrl+u"), key.WithHelp("ctrl+u", "half page up")),
		HalfDown: key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "half page down")),
		Enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "expand/read")),
		Collapse: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "collapse")),
		Add:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add feed")),
		Delete:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete feed")),
		Help:     key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "help")),
		Sync:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sync")),
		Quit:     key.NewBinding(key.WithKeys("esc", "q", "ctrl+c"), key.WithHelp("q", "quit")),

		ForceQuit: key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),

		Back:  key.NewBinding(key.WithKeys("esc", "q"), key.WithHelp("q", "back")),
		Open:  key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open link")),
		Fetch: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "full content")),
		End:   key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "bottom")),

		Yes:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "delete")),
		No:      key.NewBinding(key.WithKeys("n", "q", "esc"), key.WithHelp("n", "cancel")),
		Cancel:  key.NewBinding(key.WithKeys("esc", "q"), key.WithHelp("esc", "cancel")),
		Submit:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "add")),
		Dismiss: key.NewBinding(key.WithKeys("esc", "q", "enter"), key.WithHelp("enter", "dismiss")),
	}
}

// feedListHelp and entryHelp adapt the key map to help.KeyMap for each view.
type feedListHelp struct{ k keyMap }

func (h feedListHelp) ShortHelp() []key.Binding {
	return []key.Binding{h.k.Enter, h.k.Add, h.k.Delete, h.k.Sync, h.k.Help, h.k.Quit}
}

func (h feedListHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{h.k.Up, h.k.Down, h.k.Top, h.k.Bottom, h.k.HalfUp, h.k.HalfDown},
		{h.k.Enter, h.k.Collapse, h.k.Add, h.k.Delete, h.k.Sync, h.k.Quit},
	}
}

type entryHelp struct{ k keyMap }

func (h entryHelp) ShortHelp() []key.Binding {
	return []key.Binding{h.k.Down, h.k.Up, h.k.Open, h.k.Fetch, h.k.Help, h.k.Back}
}

func (h entryHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{h.k.Up, h.k.Down, h.k.Top, h.k.End, h.k.HalfUp, h.k.HalfDown},
		{h.k.Open, h.k.Fetch, h.k.Back},
	}
}
