package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"brainboard/internal/config"
)

type keyMap struct {
	Close         key.Binding
	DismissToasts key.Binding
	Help          key.Binding
	AddCard       key.Binding
	Suggest       key.Binding
	Menu          key.Binding
	Submit        key.Binding
	SelectUp      key.Binding
	SelectDown    key.Binding
	SelectLeft    key.Binding
	SelectRight   key.Binding
	NudgeUp       key.Binding
	NudgeDown     key.Binding
	NudgeLeft     key.Binding
	NudgeRight    key.Binding
	Reload        key.Binding
	Quit          key.Binding
}

func binding(keys []string, desc string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(strings.Join(keys, "/"), desc))
}

func newKeyMap(k config.KeyMappings) keyMap {
	return keyMap{
		Close:         binding(k.Close, "close dialogs and menu"),
		DismissToasts: binding(k.DismissToasts, "dismiss notifications"),
		Help:          binding(k.Help, "help"),
		AddCard:       binding(k.AddCard, "add a card"),
		Suggest:       binding(k.Suggest, "AI suggestions"),
		Menu:          binding(k.Menu, "card menu"),
		Submit:        binding(k.Submit, "submit card"),
		SelectUp:      binding(k.SelectUp, "select card above"),
		SelectDown:    binding(k.SelectDown, "select card below"),
		SelectLeft:    binding(k.SelectLeft, "select card left"),
		SelectRight:   binding(k.SelectRight, "select card right"),
		NudgeUp:       binding(k.NudgeUp, "move card up"),
		NudgeDown:     binding(k.NudgeDown, "move card down"),
		NudgeLeft:     binding(k.NudgeLeft, "move card left"),
		NudgeRight:    binding(k.NudgeRight, "move card right"),
		Reload:        binding(k.Reload, "reload board"),
		Quit:          binding(k.Quit, "quit"),
	}
}

// all lists bindings in help order.
func (k keyMap) all() []key.Binding {
	return []key.Binding{
		k.AddCard, k.Suggest, k.Menu,
		k.SelectUp, k.SelectDown, k.SelectLeft, k.SelectRight,
		k.NudgeUp, k.NudgeDown, k.NudgeLeft, k.NudgeRight,
		k.Reload, k.DismissToasts, k.Close, k.Help, k.Quit,
	}
}
