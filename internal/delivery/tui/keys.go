package tui

import "github.com/charmbracelet/bubbles/key"

type rowKeys struct {
	Up       key.Binding
	Down     key.Binding
	Add      key.Binding
	Open     key.Binding
	MoveUp   key.Binding
	MoveDown key.Binding
	Discount key.Binding
	Quit     key.Binding
}

func defaultRowKeys() rowKeys {
	return rowKeys{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Add:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add row")),
		Open:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select product")),
		MoveUp:   key.NewBinding(key.WithKeys("K", "shift+up"), key.WithHelp("K", "move up")),
		MoveDown: key.NewBinding(key.WithKeys("J", "shift+down"), key.WithHelp("J", "move down")),
		Discount: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "discount")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

type dialogKeys struct {
	Up       key.Binding
	Down     key.Binding
	Focus    key.Binding
	Toggle   key.Binding
	LoadMore key.Binding
	Confirm  key.Binding
	Cancel   key.Binding
}

func defaultDialogKeys() dialogKeys {
	return dialogKeys{
		Up:       key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "up")),
		Down:     key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "down")),
		Focus:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "search/list")),
		Toggle:   key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "toggle")),
		LoadMore: key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "load more")),
		Confirm:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "add")),
		Cancel:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}

type discountKeys struct {
	Kind    key.Binding
	Apply   key.Binding
	Discard key.Binding
}

func defaultDiscountKeys() discountKeys {
	return discountKeys{
		Kind:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "% / flat")),
		Apply:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply")),
		Discard: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}

// helpLine renders "key: desc" pairs for the footer
func helpLine(bindings ...key.Binding) string {
	var out string
	for i, b := range bindings {
		if i > 0 {
			out += "  "
		}
		h := b.Help()
		out += h.Key + ": " + h.Desc
	}
	return out
}
