package ui

import (
	"github.com/charmbracelet/bubbles/key"
)

type keyMap struct {
	Up          key.Binding
	Down        key.Binding
	Tap         key.Binding
	LongPress   key.Binding
	Edit        key.Binding
	Delete      key.Binding
	Cancel      key.Binding
	Focus       key.Binding
	Add         key.Binding
	Help        key.Binding
	Quit        key.Binding
	ForceQuit   key.Binding
	Save        key.Binding
	Deadline    key.Binding
	Next        key.Binding
	Prev        key.Binding
	ModalCancel key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Tap: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "edit/select"),
		),
		LongPress: key.NewBinding(
			key.WithKeys(" ", "space"),
			key.WithHelp("space", "select"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "delete selected"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel selection"),
		),
		Focus: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "list/input"),
		),
		Add: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "add"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		Save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "save"),
		),
		Deadline: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("ctrl+d", "toggle deadline"),
		),
		Next: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab", "next field"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("shift+tab", "previous field"),
		),
		ModalCancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tap, k.LongPress, k.Edit, k.Focus, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Tap, k.LongPress},
		{k.Edit, k.Delete, k.Cancel},
		{k.Focus, k.Add, k.Help, k.Quit},
	}
}

// modalKeys is the help view shown inside the editor.
type modalKeys struct{ keyMap }

func (k modalKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Prev, k.Deadline, k.Save, k.ModalCancel}
}

func (k modalKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
