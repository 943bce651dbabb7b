package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"brainboard/internal/api"
	"brainboard/internal/engine"
	"brainboard/internal/model"
)

func menuSize() (w, h int) {
	for _, a := range engine.MenuActions {
		w = max(w, lipgloss.Width(a.Label()))
	}
	// Border plus one column of padding each side and the cursor marker.
	return w + 6, len(engine.MenuActions) + 2
}

// openMenuAt opens the context menu for the card under a right click.
func (m *appModel) openMenuAt(x, y int) {
	if !m.onBoard(y) {
		return
	}
	c, ok := m.board.TopmostAt(m.pointerPx(x, y))
	if !ok || !m.engine.Attached(c.ID) {
		return
	}
	m.selected = c.ID
	w, h := menuSize()
	menu := engine.PlaceMenu(c.ID, x, y, w, h, m.width, m.height)
	m.menu = &menu
}

// openMenuForSelected opens the menu from the keyboard, anchored inside the selected card.
func (m *appModel) openMenuForSelected() {
	c, ok := m.board.Find(m.selected)
	if !ok || !m.engine.Attached(c.ID) {
		return
	}
	col, row := m.cellOf(c.Position)
	w, h := menuSize()
	menu := engine.PlaceMenu(c.ID, col+2, row+1, w, h, m.width, m.height)
	m.menu = &menu
}

func (m appModel) renderMenu() string {
	if m.menu == nil {
		return ""
	}
	w, _ := menuSize()
	item := lipgloss.NewStyle().Width(w - 2).PaddingLeft(1)
	active := item.Background(colorAccent).Foreground(colorAccentFg).Bold(true)

	rows := make([]string, len(engine.MenuActions))
	for i, a := range engine.MenuActions {
		if i == m.menu.Cursor {
			rows[i] = active.Render("› " + a.Label())
			continue
		}
		rows[i] = item.Render("  " + a.Label())
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Background(colorSurfaceBg).
		Foreground(colorSurfaceFg).
		Render(strings.Join(rows, "\n"))
}

func (m appModel) handleMenuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Close) {
		m.menu = nil
		return m, nil
	}
	if key.Matches(msg, m.keys.Quit) {
		return m.quit()
	}
	if i, ok := digitIndex(msg, len(engine.MenuActions)); ok {
		return m, m.applyMenuAction(engine.MenuActions[i])
	}
	switch msg.String() {
	case "up", "k", "shift+tab":
		m.menu.Prev()
	case "down", "j", "tab":
		m.menu.Next()
	case "enter", " ":
		return m, m.applyMenuAction(m.menu.Selected())
	}
	return m, nil
}

func (m appModel) handleMenuClick(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Button != tea.MouseButtonLeft {
		return m, nil
	}
	i := msg.Y - m.menu.Y - 1
	if i < 0 || i >= len(engine.MenuActions) {
		return m, nil
	}
	m.menu.Cursor = i
	return m, m.applyMenuAction(engine.MenuActions[i])
}

// applyMenuAction closes the menu and runs a on its card.
func (m *appModel) applyMenuAction(a engine.Action) tea.Cmd {
	id := m.menu.CardID
	m.menu = nil
	c, ok := m.board.Find(id)
	if !ok {
		return nil
	}
	switch a {
	case engine.ActionEdit:
		return m.openEditCard(c)
	case engine.ActionRecolor:
		m.openColor(c)
		return nil
	case engine.ActionDuplicate:
		return m.duplicateCard(c)
	case engine.ActionDelete:
		return m.deleteCard(c)
	}
	return nil
}

func (m *appModel) duplicateCard(c model.Card) tea.Cmd {
	vw, vh := m.viewportPx()
	req := api.CreateCardRequest{
		SessionID: m.boardURL.SessionID,
		Text:      c.Text,
		Color:     c.Color,
		Category:  c.Category,
		Position:  engine.DuplicatePosition(c.Position, vw, vh),
	}
	// Older cards may have neither; the copy gets what the board renders them with.
	if strings.TrimSpace(req.Color) == "" {
		req.Color = m.palette.At(0)
	}
	if strings.TrimSpace(string(req.Category)) == "" {
		req.Category = model.CategoryManual
	}
	spin := m.showLoading("Duplicating card…", "")
	return tea.Batch(spin, m.createCardCmd(originDuplicate, req))
}

func (m *appModel) deleteCard(c model.Card) tea.Cmd {
	ctx, backend := m.ctx, m.backend
	return func() tea.Msg {
		return cardDeletedMsg{cardID: c.ID, err: backend.DeleteCard(ctx, c.ID)}
	}
}

func (m *appModel) handleCardDeleted(msg cardDeletedMsg) tea.Cmd {
	if msg.err != nil {
		m.log.Warn("card delete failed", zapCard(msg.cardID, msg.err)...)
		return m.toastError(api.Message(msg.err, "Could not delete the card"))
	}
	idx := m.board.Index(msg.cardID)
	if !m.board.Remove(msg.cardID) {
		return nil
	}
	m.engine.Forget(msg.cardID)
	if m.selected == msg.cardID {
		m.selected = 0
		if n := m.board.Len(); n > 0 {
			c, _ := m.board.CardAt(min(idx, n-1))
			m.selected = c.ID
		}
	}
	return m.toastSuccess("Card deleted")
}

func (m *appModel) updateCardCmd(origin cardOrigin, req api.UpdateCardRequest) tea.Cmd {
	ctx, backend := m.ctx, m.backend
	return func() tea.Msg {
		_, err := backend.UpdateCard(ctx, req)
		return cardUpdatedMsg{origin: origin, cardID: req.CardID, text: req.Text, color: req.Color, err: err}
	}
}

func (m *appModel) handleCardUpdated(msg cardUpdatedMsg) tea.Cmd {
	fade := m.hideModal(modalLoading)
	if msg.err != nil {
		m.log.Warn("card update failed", zapCard(msg.cardID, msg.err)...)
		toast := m.toastError(api.Message(msg.err, "Could not update the card"))
		if msg.origin == originEdit {
			m.restoreDraft()
			return toast
		}
		return tea.Batch(fade, toast)
	}
	m.board.Update(msg.cardID, func(c *model.Card) {
		if msg.text != nil {
			c.Text = *msg.text
		}
		if msg.color != nil {
			c.Color = *msg.color
		}
	})
	label := "Card updated"
	if msg.origin == originRecolor {
		label = "Colour changed"
	}
	return tea.Batch(fade, m.toastSuccess(label))
}
