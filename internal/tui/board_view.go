package tui

import (
	"errors"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"brainboard/internal/api"
	"brainboard/internal/engine"
	"brainboard/internal/journal"
	"brainboard/internal/model"
)

const minCardCells = 3

// cardCells is the on-screen size of a card in cells.
func (m appModel) cardCells() (cols, rows int) {
	cols = int(model.CardWidth) / m.cfg.Board.CellWidthPx
	rows = int(model.CardHeight) / m.cfg.Board.CellHeightPx
	return max(cols, minCardCells), max(rows, minCardCells)
}

// cellOf maps a board position to the screen cell of its top-left corner.
func (m appModel) cellOf(p model.Position) (col, row int) {
	col = int(math.Floor(p.X / float64(m.cfg.Board.CellWidthPx)))
	row = int(math.Floor(p.Y/float64(m.cfg.Board.CellHeightPx))) + boardTop
	return col, row
}

// pointerPx maps a screen cell to the board pixel at its centre.
func (m appModel) pointerPx(col, row int) model.Position {
	cw, ch := float64(m.cfg.Board.CellWidthPx), float64(m.cfg.Board.CellHeightPx)
	return model.Position{
		X: float64(col)*cw + cw/2,
		Y: float64(row-boardTop)*ch + ch/2,
	}
}

func (m appModel) onBoard(row int) bool {
	return row >= boardTop && row < m.height-1
}

func (m appModel) renderBoard(width, height int) string {
	blank := strings.Repeat(" ", width)
	lines := make([]string, height)
	for i := range lines {
		lines[i] = blank
	}
	canvas := strings.Join(lines, "\n")

	if m.halted {
		msg := styleMuted().Render("No board loaded.")
		x, y := centerIn(lipgloss.Width(msg), 1, width, height)
		return placeOverlay(x, y, msg, canvas)
	}
	if m.loaded && m.board.Len() == 0 {
		msg := styleMuted().Render("The board is empty. Press tab to add an idea or ctrl+s for suggestions.")
		x, y := centerIn(lipgloss.Width(msg), 1, width, height)
		canvas = placeOverlay(x, y, msg, canvas)
	}

	dragID, dragging := m.engine.Dragging()
	for _, c := range m.board.Cards() {
		col, row := m.cellOf(c.Position)
		v := m.renderCard(c, c.HasID() && c.ID == m.selected, dragging && c.ID == dragID)
		canvas = placeOverlay(col, row-boardTop, v, canvas)
	}
	return canvas
}

func (m appModel) renderCard(c model.Card, selected, dragging bool) string {
	cols, rows := m.cardCells()

	border := lipgloss.RoundedBorder()
	var borderColor lipgloss.TerminalColor = lipgloss.Color("#555555")
	switch {
	case dragging:
		border = lipgloss.DoubleBorder()
		borderColor = colorAccent
	case selected:
		border = lipgloss.ThickBorder()
		borderColor = colorSelected
	}

	bg := lipgloss.Color(c.Color)
	if c.Color == "" {
		bg = lipgloss.Color(model.DefaultPalette.At(0))
	}
	innerW, innerH := cols-2, rows-2

	text := strings.TrimSpace(c.Text)
	if c.Category == model.CategoryIASuggestion && innerH > 1 {
		innerH--
	}
	body := lipgloss.NewStyle().Width(innerW).MaxHeight(innerH).Render(text)
	if c.Category == model.CategoryIASuggestion && rows-2 > 1 {
		body = normalizePane(body, innerW, innerH) + "\n" + lipgloss.NewStyle().Italic(true).Render("✦ AI")
	}

	return lipgloss.NewStyle().
		Border(border).
		BorderForeground(borderColor).
		Background(bg).
		Foreground(colorCardFg).
		Width(innerW).
		Height(rows - 2).
		MaxHeight(rows).
		Render(body)
}

// selectToward moves the selection to the nearest card whose centre lies in direction
// (dx, dy) from the selected one.
func (m *appModel) selectToward(dx, dy int) {
	cards := m.board.Cards()
	if len(cards) == 0 {
		return
	}
	cur, ok := m.board.Find(m.selected)
	if !ok {
		m.selected = cards[0].ID
		return
	}
	centre := func(c model.Card) model.Position {
		return model.Position{X: c.Position.X + model.CardWidth/2, Y: c.Position.Y + model.CardHeight/2}
	}
	from := centre(cur)

	best, bestScore := 0, math.Inf(1)
	for _, c := range cards {
		if c.ID == cur.ID {
			continue
		}
		d := centre(c).Sub(from)
		along := d.X*float64(dx) + d.Y*float64(dy)
		if along <= 0 {
			continue
		}
		across := math.Abs(d.X*float64(dy)) + math.Abs(d.Y*float64(dx))
		if score := along + 2*across; score < bestScore {
			best, bestScore = c.ID, score
		}
	}
	if best != 0 {
		m.selected = best
	}
}

// nudge moves the selected card one cell through a full drag cycle.
func (m *appModel) nudge(dx, dy int) tea.Cmd {
	c, ok := m.board.Find(m.selected)
	if !ok {
		return nil
	}
	origin := c.Position
	if !m.engine.BeginDrag(c, origin) {
		return nil
	}
	to := origin.Add(model.Position{
		X: float64(dx * m.cfg.Board.CellWidthPx),
		Y: float64(dy * m.cfg.Board.CellHeightPx),
	})
	if p, ok := m.engine.DragTo(to); ok {
		m.board.Move(c.ID, p)
	}
	mv, moved := m.engine.EndDrag(to)
	if !moved {
		return nil
	}
	return m.savePosition(mv)
}

// savePosition persists a move in the background. Failures are logged and journaled only;
// the card stays where the user put it.
func (m *appModel) savePosition(mv engine.Move) tea.Cmd {
	ctx, backend, j, log := m.ctx, m.backend, m.journal, m.log
	sid := m.boardURL.SessionID
	return func() tea.Msg {
		ok, err := backend.UpdateCardPosition(ctx, mv.CardID, mv.X, mv.Y)
		if err == nil && ok {
			return positionSavedMsg{cardID: mv.CardID, ok: true}
		}
		if err == nil {
			err = errors.New("position update not acknowledged")
		}
		reqID := api.RequestIDOf(err)
		log.Warn("card position not saved",
			zap.Int("card_id", mv.CardID),
			zap.Float64("x", mv.X),
			zap.Float64("y", mv.Y),
			zap.String("request_id", reqID),
			zap.Error(err),
		)
		if j != nil {
			f := journal.Failure{SessionID: sid, CardID: mv.CardID, X: mv.X, Y: mv.Y, Error: err.Error(), RequestID: reqID, At: time.Now()}
			if _, jerr := j.RecordFailure(ctx, f); jerr != nil {
				log.Debug("journal write failed", zap.Error(jerr))
			}
		}
		return positionSavedMsg{cardID: mv.CardID}
	}
}

func (m appModel) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action == tea.MouseActionPress {
		if seq, ok := m.toastAt(msg.X, msg.Y); ok {
			m.removeToast(seq)
			return m, nil
		}
	}
	if m.halted {
		return m, nil
	}
	if m.modalOpen() {
		return m.handleModalMouse(msg)
	}
	if m.menu != nil && msg.Action == tea.MouseActionPress {
		if m.menu.Contains(msg.X, msg.Y) {
			return m.handleMenuClick(msg)
		}
		// Any click elsewhere closes the menu and is otherwise ignored.
		m.menu = nil
		return m, nil
	}

	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonLeft:
			return m.pressCard(msg)
		case tea.MouseButtonRight:
			m.openMenuAt(msg.X, msg.Y)
		}
	case tea.MouseActionMotion:
		if id, ok := m.engine.Dragging(); ok {
			if p, ok := m.engine.DragTo(m.pointerPx(msg.X, msg.Y)); ok {
				m.board.Move(id, p)
			}
		}
	case tea.MouseActionRelease:
		if id, ok := m.engine.Dragging(); ok {
			to := m.pointerPx(msg.X, msg.Y)
			if p, ok := m.engine.DragTo(to); ok {
				m.board.Move(id, p)
			}
			if mv, moved := m.engine.EndDrag(to); moved {
				return m, m.savePosition(mv)
			}
		}
	}
	return m, nil
}

func (m appModel) pressCard(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if !m.onBoard(msg.Y) {
		return m, nil
	}
	p := m.pointerPx(msg.X, msg.Y)
	c, ok := m.board.TopmostAt(p)
	if !ok {
		return m, nil
	}
	m.selected = c.ID
	m.engine.BeginDrag(c, p)
	return m, nil
}
