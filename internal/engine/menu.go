package engine

import "brainboard/internal/model"

type Action int

const (
	ActionEdit Action = iota
	ActionRecolor
	ActionDuplicate
	ActionDelete
)

func (a Action) Label() string {
	switch a {
	case ActionEdit:
		return "Edit text"
	case ActionRecolor:
		return "Change colour"
	case ActionDuplicate:
		return "Duplicate"
	case ActionDelete:
		return "Delete"
	default:
		return ""
	}
}

// MenuActions is the fixed item order of the card context menu.
var MenuActions = []Action{ActionEdit, ActionRecolor, ActionDuplicate, ActionDelete}

// Menu is an open context menu for one card. Coordinates are in whatever unit the caller
// placed it with (the TUI uses cells).
type Menu struct {
	CardID int
	X, Y   int
	W, H   int
	Cursor int
}

// PlaceMenu opens a w x h menu at the pointer. A menu that would overflow the right edge opens
// to the left of the pointer, one that would overflow the bottom opens above it; the result is
// never negative.
func PlaceMenu(cardID, px, py, w, h, viewW, viewH int) Menu {
	x, y := px, py
	if viewW > 0 && x+w > viewW {
		x = px - w
	}
	if viewH > 0 && y+h > viewH {
		y = py - h
	}
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	return Menu{CardID: cardID, X: x, Y: y, W: w, H: h}
}

// Contains reports whether (x, y) falls on the menu.
func (m Menu) Contains(x, y int) bool {
	return x >= m.X && x < m.X+m.W && y >= m.Y && y < m.Y+m.H
}

func (m *Menu) Next() { m.Cursor = (m.Cursor + 1) % len(MenuActions) }

func (m *Menu) Prev() { m.Cursor = (m.Cursor - 1 + len(MenuActions)) % len(MenuActions) }

func (m Menu) Selected() Action {
	if m.Cursor < 0 || m.Cursor >= len(MenuActions) {
		return MenuActions[0]
	}
	return MenuActions[m.Cursor]
}

// DuplicateOffset is how far a duplicate lands from its original.
var DuplicateOffset = model.Position{X: 20, Y: 20}

// DuplicatePosition places a copy of a card at orig shifted by DuplicateOffset, kept inside a
// viewW x viewH viewport (zero disables the bound).
func DuplicatePosition(orig model.Position, viewW, viewH float64) model.Position {
	p := orig.Add(DuplicateOffset)
	p.X = clampAxis(p.X, viewW-model.CardWidth)
	p.Y = clampAxis(p.Y, viewH-model.CardHeight)
	return p
}
