package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"brainboard/internal/api"
	"brainboard/internal/model"
)

const (
	cardInputHeight = 4
	cardCharLimit   = 500
	swatchWidth     = 3
)

func (m appModel) newCardInput(value string) (textarea.Model, tea.Cmd) {
	ta := textarea.New()
	ta.Placeholder = "Describe your idea…"
	ta.CharLimit = cardCharLimit
	ta.ShowLineNumbers = false
	ta.Prompt = ""
	ta.SetWidth(m.modalWidth() - 6)
	ta.SetHeight(cardInputHeight)
	ta.Cursor.SetMode(cursor.CursorStatic)
	ta.SetValue(value)
	cmd := ta.Focus()
	return ta, cmd
}

// openAddCard shows the empty add-card modal.
func (m *appModel) openAddCard() tea.Cmd {
	m.draft = cardDraft{}
	return m.showCardForm("Add an idea", cardDraft{})
}

// openEditCard shows the add-card modal prefilled with c, saving instead of adding.
func (m *appModel) openEditCard(c model.Card) tea.Cmd {
	d := cardDraft{text: c.Text, colorIdx: max(m.palette.Index(c.Color), 0), cardID: c.ID}
	m.draft = d
	return m.showCardForm("Edit card", d)
}

func (m *appModel) showCardForm(title string, d cardDraft) tea.Cmd {
	input, cmd := m.newCardInput(d.text)
	buttons := []modalButton{buttonCancel, buttonAdd}
	if d.cardID != 0 {
		buttons = []modalButton{buttonCancel, buttonSave}
	}
	m.showModal(&modal{
		kind:     modalAddCard,
		title:    title,
		input:    input,
		colorIdx: d.colorIdx,
		cardID:   d.cardID,
		buttons:  buttons,
		button:   -1,
	})
	return cmd
}

// restoreDraft reopens the card form as it was when it was submitted.
func (m *appModel) restoreDraft() {
	title := "Add an idea"
	if m.draft.cardID != 0 {
		title = "Edit card"
	}
	m.showCardForm(title, m.draft)
}

// submitCard validates the form and sends it. Blank text keeps the modal open.
func (m *appModel) submitCard() tea.Cmd {
	md := m.modal
	text := strings.TrimSpace(md.input.Value())
	if text == "" {
		err := &api.ValidationError{Field: "text", Message: "is required"}
		m.log.Debug("card form rejected", zap.Error(err))
		return m.toastError("Please write your idea before adding it")
	}
	m.draft = cardDraft{text: md.input.Value(), colorIdx: md.colorIdx, cardID: md.cardID}
	color := m.palette.At(md.colorIdx)

	if md.cardID != 0 {
		spin := m.showLoading("Saving card…", "")
		return tea.Batch(spin, m.updateCardCmd(originEdit, api.UpdateCardRequest{CardID: md.cardID, Text: &text, Color: &color}))
	}

	vw, vh := m.viewportPx()
	req := api.CreateCardRequest{
		SessionID: m.boardURL.SessionID,
		Text:      text,
		Color:     color,
		Category:  model.CategoryManual,
		Position:  m.placer.RandomPosition(vw, vh),
	}
	spin := m.showLoading("Adding card…", "")
	return tea.Batch(spin, m.createCardCmd(originManual, req))
}

func (m appModel) handleAddCardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	md := m.modal
	switch {
	case key.Matches(msg, m.keys.Submit):
		return m, m.submitCard()
	case msg.String() == "tab":
		md.colorIdx = (md.colorIdx + 1) % len(m.palette)
		return m, nil
	case msg.String() == "shift+tab":
		md.colorIdx = (md.colorIdx - 1 + len(m.palette)) % len(m.palette)
		return m, nil
	}
	var cmd tea.Cmd
	md.input, cmd = md.input.Update(msg)
	return m, cmd
}

// openColor shows the recolour picker for c.
func (m *appModel) openColor(c model.Card) {
	m.showModal(&modal{
		kind:     modalColor,
		title:    "Change colour",
		cardID:   c.ID,
		colorIdx: max(m.palette.Index(c.Color), 0),
		buttons:  []modalButton{buttonCancel, buttonApply},
		button:   -1,
	})
}

func (m *appModel) applyColor() tea.Cmd {
	md := m.modal
	if md == nil || md.kind != modalColor {
		return nil
	}
	color := m.palette.At(md.colorIdx)
	id := md.cardID
	if c, ok := m.board.Find(id); ok && strings.EqualFold(c.Color, color) {
		return m.hideModal(modalColor)
	}
	spin := m.showLoading("Changing colour…", "")
	return tea.Batch(spin, m.updateCardCmd(originRecolor, api.UpdateCardRequest{CardID: id, Color: &color}))
}

func (m appModel) handleColorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	md := m.modal
	if i, ok := colorDigit(msg, len(m.palette)); ok {
		md.colorIdx = i
		return m, m.applyColor()
	}
	switch msg.String() {
	case "right", "l", "tab":
		md.colorIdx = (md.colorIdx + 1) % len(m.palette)
	case "left", "h", "shift+tab":
		md.colorIdx = (md.colorIdx - 1 + len(m.palette)) % len(m.palette)
	case "enter", " ":
		return m, m.applyColor()
	}
	return m, nil
}

// colorDigit maps 1..9 and 0 (the tenth colour) to palette indexes.
func colorDigit(msg tea.KeyMsg, n int) (int, bool) {
	if msg.Type == tea.KeyRunes && len(msg.Runes) == 1 && msg.Runes[0] == '0' {
		return 9, n >= 10
	}
	return digitIndex(msg, n)
}

func (m appModel) renderSwatches(selected int) string {
	parts := make([]string, 0, len(m.palette))
	for i, c := range m.palette {
		mark := "   "
		if i == selected {
			mark = " ✓ "
		}
		parts = append(parts, lipgloss.NewStyle().Background(lipgloss.Color(c)).Foreground(colorCardFg).Bold(true).Render(mark))
	}
	return strings.Join(parts, " ")
}

// swatchAt returns the palette index under column x of a swatch row.
func swatchAt(x, n int) (int, bool) {
	if x < 0 || x%(swatchWidth+1) == swatchWidth {
		return 0, false
	}
	i := x / (swatchWidth + 1)
	return i, i < n
}

func (m appModel) renderAddCardBody(st *modalStyles, _ int) string {
	md := m.modal
	var b strings.Builder
	b.WriteString(st.title.Render(md.title) + "\n\n")
	b.WriteString(md.input.View() + "\n\n")
	b.WriteString(m.renderSwatches(md.colorIdx) + "\n\n")
	b.WriteString(renderButtons(st, md.buttons, md.button) + "  " + st.hint.Render("ctrl+s submit · tab colour"))
	return b.String()
}

func (m appModel) renderColorBody(st *modalStyles) string {
	md := m.modal
	var b strings.Builder
	b.WriteString(st.title.Render(md.title) + "\n\n")
	b.WriteString(m.renderSwatches(md.colorIdx) + "\n\n")
	b.WriteString(renderButtons(st, md.buttons, md.button) + "  " + st.hint.Render("←/→ · 1-0 · enter"))
	return b.String()
}

// Content rows of the forms, counted from the first line inside the modal padding.
const (
	addCardSwatchRow  = 2 + cardInputHeight + 1
	colorSwatchRow    = 2
	suggestionListRow = 2
)

// handleModalMouse routes a click inside the open modal. Clicks on the dimmed board are ignored.
func (m appModel) handleModalMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	md := m.modal
	if md.kind == modalHelp {
		var cmd tea.Cmd
		md.help, cmd = md.help.Update(msg)
		return m, cmd
	}
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}

	w, h := blockSize(m.renderModal())
	mx, my := centerIn(w, h, m.width, m.height)
	// Border plus padding: two rows above, three columns left.
	x, y := msg.X-mx-3, msg.Y-my-2
	lastRow := h - 5
	if x < 0 || y < 0 || x >= w-6 || y > lastRow {
		return m, nil
	}

	if y == lastRow {
		if b, ok := buttonAt(m.styles.ensure(md.kind), md.buttons, x); ok {
			return m, m.pressButton(b)
		}
		return m, nil
	}

	switch md.kind {
	case modalSuggestions:
		if i := y - suggestionListRow; i >= 0 && i < len(md.suggestions) {
			md.cursor = i
			return m, m.acceptSuggestion(i)
		}
	case modalAddCard:
		if y == addCardSwatchRow {
			if i, ok := swatchAt(x, len(m.palette)); ok {
				md.colorIdx = i
			}
		}
	case modalColor:
		if y == colorSwatchRow {
			if i, ok := swatchAt(x, len(m.palette)); ok {
				md.colorIdx = i
				return m, m.applyColor()
			}
		}
	}
	return m, nil
}

func (m *appModel) pressButton(b modalButton) tea.Cmd {
	md := m.modal
	switch b {
	case buttonRetry:
		return m.runRetry(md.retry)
	case buttonNewSuggestions:
		return m.startSuggestions()
	case buttonAdd, buttonSave:
		return m.submitCard()
	case buttonApply:
		return m.applyColor()
	case buttonClose, buttonCancel:
		return m.hideModal(md.kind)
	}
	return nil
}
