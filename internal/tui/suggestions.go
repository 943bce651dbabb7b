package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	xansi "github.com/charmbracelet/x/ansi"
	"go.uber.org/zap"

	"brainboard/internal/api"
	"brainboard/internal/model"
)

// startSuggestions asks the backend for ideas. It is also the Retry action and the "new
// suggestions" action of an open list. An earlier request still in flight is not cancelled; the
// last answer wins.
func (m *appModel) startSuggestions() tea.Cmd {
	sc := m.reader.SessionContext()
	existing := m.reader.ExistingCards()
	spin := m.showLoading("Generating suggestions…", "Theme: "+sc.Theme)

	ctx, backend, sid, log := m.ctx, m.backend, m.boardURL.SessionID, m.log
	return tea.Batch(spin, func() tea.Msg {
		list, err := backend.RequestSuggestions(ctx, sid, sc, existing)
		if err != nil {
			log.Warn("suggestions failed", zap.Error(err), zap.String("request_id", api.RequestIDOf(err)))
		}
		return suggestionsMsg{suggestions: list, err: err}
	})
}

func (m *appModel) handleSuggestions(msg suggestionsMsg) tea.Cmd {
	if msg.err != nil {
		m.showError("Could not generate suggestions", api.Message(msg.err, "The suggestions could not be generated."), retrySuggestions)
		return nil
	}
	m.showSuggestions(msg.suggestions, 0)
	n := len(msg.suggestions)
	noun := "suggestions"
	if n == 1 {
		noun = "suggestion"
	}
	return m.toastSuccess(fmt.Sprintf("%d %s generated", n, noun))
}

func (m *appModel) showSuggestions(list []string, cursor int) {
	m.showModal(&modal{
		kind:        modalSuggestions,
		title:       "Suggestions",
		suggestions: list,
		cursor:      cursor,
		buttons:     []modalButton{buttonNewSuggestions, buttonClose},
		button:      -1,
	})
}

// acceptSuggestion turns entry i into a card. The list is kept aside so a failed save can put
// it back exactly as it was.
func (m *appModel) acceptSuggestion(i int) tea.Cmd {
	md := m.modal
	if md == nil || md.kind != modalSuggestions || i < 0 || i >= len(md.suggestions) {
		return nil
	}
	m.pendingSuggestions = md.suggestions
	m.pendingCursor = i

	vw, vh := m.viewportPx()
	req := api.CreateCardRequest{
		SessionID: m.boardURL.SessionID,
		Text:      md.suggestions[i],
		Color:     m.palette.At(i),
		Category:  model.CategoryIASuggestion,
		Position:  m.placer.RandomPosition(vw, vh),
	}
	spin := m.showLoading("Adding suggestion…", xansi.Truncate(req.Text, 50, "…"))
	return tea.Batch(spin, m.createCardCmd(originSuggestion, req))
}

func (m *appModel) createCardCmd(origin cardOrigin, req api.CreateCardRequest) tea.Cmd {
	ctx, backend := m.ctx, m.backend
	return func() tea.Msg {
		c, err := backend.CreateCard(ctx, req)
		return cardCreatedMsg{origin: origin, card: c, err: err}
	}
}

func (m *appModel) handleCardCreated(msg cardCreatedMsg) tea.Cmd {
	if msg.err != nil {
		m.log.Warn("card not created", zapCard(msg.card.ID, msg.err)...)
		toast := m.toastError(api.Message(msg.err, "Could not add the card"))
		switch msg.origin {
		case originSuggestion:
			m.showSuggestions(m.pendingSuggestions, m.pendingCursor)
			return toast
		case originManual:
			m.restoreDraft()
			return toast
		}
		return tea.Batch(m.hideModal(modalLoading), toast)
	}

	m.pendingSuggestions = nil
	fade := m.hideModal(modalLoading)
	m.board.Append(msg.card)
	if msg.card.HasID() {
		m.selected = msg.card.ID
	}

	label := "Card added"
	switch msg.origin {
	case originSuggestion:
		label = "Suggestion added to the board"
	case originDuplicate:
		label = "Card duplicated"
	}
	return tea.Batch(fade, m.toastSuccess(label))
}

func (m appModel) handleSuggestionsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	md := m.modal
	if i, ok := digitIndex(msg, len(md.suggestions)); ok {
		return m, m.acceptSuggestion(i)
	}
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case msg.String() == "n", key.Matches(msg, m.keys.Suggest):
		return m, m.startSuggestions()
	}
	switch msg.String() {
	case "up", "k", "shift+tab":
		if len(md.suggestions) > 0 {
			md.cursor = (md.cursor - 1 + len(md.suggestions)) % len(md.suggestions)
		}
	case "down", "j", "tab":
		if len(md.suggestions) > 0 {
			md.cursor = (md.cursor + 1) % len(md.suggestions)
		}
	case "enter", " ":
		return m, m.acceptSuggestion(md.cursor)
	}
	return m, nil
}

func (m appModel) renderSuggestionsBody(st *modalStyles, inner int) string {
	md := m.modal
	var b strings.Builder
	b.WriteString(st.title.Render(md.title) + "\n\n")
	for i, s := range md.suggestions {
		line := xansi.Truncate(fmt.Sprintf("%d. %s", i+1, s), inner-2, "…")
		if i == md.cursor {
			b.WriteString(st.itemActive.Render(line))
		} else {
			b.WriteString(st.item.Render(line))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n" + st.hint.Render(fmt.Sprintf("%d suggestions · enter or 1-9 to add · n for new ones", len(md.suggestions))))
	b.WriteString("\n\n" + renderButtons(st, md.buttons, md.button))
	return b.String()
}

// digitIndex maps the keys 1..9 to indexes below n.
func digitIndex(msg tea.KeyMsg, n int) (int, bool) {
	if msg.Type != tea.KeyRunes || len(msg.Runes) != 1 {
		return 0, false
	}
	r := msg.Runes[0]
	if r < '1' || r > '9' {
		return 0, false
	}
	i := int(r - '1')
	return i, i < n
}

func zapCard(id int, err error) []zap.Field {
	return []zap.Field{zap.Int("card_id", id), zap.Error(err), zap.String("request_id", api.RequestIDOf(err))}
}
