package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type modalButton int

const (
	buttonClose modalButton = iota
	buttonRetry
	buttonNewSuggestions
	buttonCancel
	buttonAdd
	buttonSave
	buttonApply
)

func (b modalButton) label() string {
	switch b {
	case buttonRetry:
		return "Retry"
	case buttonNewSuggestions:
		return "New suggestions"
	case buttonCancel:
		return "Cancel"
	case buttonAdd:
		return "Add"
	case buttonSave:
		return "Save"
	case buttonApply:
		return "Apply"
	default:
		return "Close"
	}
}

// modal is the single overlay on screen. Only the fields of its kind are used.
type modal struct {
	kind    modalKind
	seq     int
	closing bool

	title    string
	subtitle string

	// error
	message string
	buttons []modalButton
	button  int
	retry   retryKind

	// suggestions
	suggestions []string
	cursor      int

	// add-card (also edit) and color
	input    textarea.Model
	colorIdx int
	cardID   int

	// help
	help viewport.Model
}

// showModal replaces whatever modal is open with md.
func (m *appModel) showModal(md *modal) {
	m.seq++
	md.seq = m.seq
	m.styles.ensure(md.kind)
	m.modal = md
}

// hideModal fades out the open modal when it is of kind; anything else is left alone.
func (m *appModel) hideModal(kind modalKind) tea.Cmd {
	if m.modal == nil || m.modal.kind != kind || m.modal.closing {
		return nil
	}
	m.modal.closing = true
	return m.after(m.cfg.Modal.Fade(), modalFadeDoneMsg{seq: m.modal.seq})
}

// hideAllModals removes every modal immediately.
func (m *appModel) hideAllModals() {
	m.modal = nil
}

func (m *appModel) finishModalFade(seq int) {
	if m.modal != nil && m.modal.closing && m.modal.seq == seq {
		m.modal = nil
	}
}

// modalOpen reports an interactive modal; a fading one no longer takes input.
func (m appModel) modalOpen() bool {
	return m.modal != nil && !m.modal.closing
}

func (m appModel) modalIs(kind modalKind) bool {
	return m.modalOpen() && m.modal.kind == kind
}

// modalStyles is the per-kind style set, built on first use of the kind.
type modalStyles struct {
	frame        lipgloss.Style
	title        lipgloss.Style
	body         lipgloss.Style
	button       lipgloss.Style
	buttonActive lipgloss.Style
	item         lipgloss.Style
	itemActive   lipgloss.Style
	hint         lipgloss.Style
}

type styleRegistry struct {
	sets   map[modalKind]*modalStyles
	builds map[modalKind]int
}

func newStyleRegistry() *styleRegistry {
	return &styleRegistry{sets: map[modalKind]*modalStyles{}, builds: map[modalKind]int{}}
}

func (r *styleRegistry) ensure(kind modalKind) *modalStyles {
	if st := r.sets[kind]; st != nil {
		return st
	}
	st := buildModalStyles(kind)
	r.sets[kind] = st
	r.builds[kind]++
	return st
}

func buildModalStyles(kind modalKind) *modalStyles {
	accent := colorAccent
	switch kind {
	case modalError:
		accent = colorError
	case modalLoading, modalHelp:
		accent = colorBorder
	}
	return &modalStyles{
		frame: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Background(colorSurfaceBg).
			Foreground(colorSurfaceFg).
			Padding(1, 2),
		title:        lipgloss.NewStyle().Bold(true).Foreground(accent),
		body:         lipgloss.NewStyle().Foreground(colorSurfaceFg),
		button:       lipgloss.NewStyle().Padding(0, 2).Background(colorControlBg).Foreground(colorSurfaceFg),
		buttonActive: lipgloss.NewStyle().Padding(0, 2).Background(accent).Foreground(colorAccentFg).Bold(true),
		item:         lipgloss.NewStyle().PaddingLeft(2),
		itemActive:   lipgloss.NewStyle().PaddingLeft(1).Border(lipgloss.ThickBorder(), false, false, false, true).BorderForeground(accent).Bold(true),
		hint:         styleMuted(),
	}
}

func (m appModel) modalWidth() int {
	w := 64
	if m.width > 0 && m.width-6 < w {
		w = m.width - 6
	}
	if w < 24 {
		w = 24
	}
	return w
}

func renderButtons(st *modalStyles, buttons []modalButton, active int) string {
	parts := make([]string, 0, len(buttons)*2)
	for i, b := range buttons {
		s := st.button
		if i == active {
			s = st.buttonActive
		}
		if i > 0 {
			parts = append(parts, "  ")
		}
		parts = append(parts, s.Render(b.label()))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

// buttonAt returns the button under column x of a row drawn by renderButtons.
func buttonAt(st *modalStyles, buttons []modalButton, x int) (modalButton, bool) {
	left := 0
	for _, b := range buttons {
		w := lipgloss.Width(st.button.Render(b.label()))
		if x >= left && x < left+w {
			return b, true
		}
		left += w + 2
	}
	return 0, false
}

// renderModal returns the framed modal body for the open modal.
func (m appModel) renderModal() string {
	md := m.modal
	if md == nil {
		return ""
	}
	st := m.styles.ensure(md.kind)
	w := m.modalWidth()
	inner := w - 6

	var b strings.Builder
	switch md.kind {
	case modalLoading:
		b.WriteString(m.spinner.View() + " " + st.title.Render(md.title))
		if md.subtitle != "" {
			b.WriteString("\n\n" + st.hint.Render(md.subtitle))
		}
	case modalError:
		b.WriteString(st.title.Render(md.title))
		b.WriteString("\n\n" + st.body.Width(inner).Render(md.message))
		b.WriteString("\n\n" + renderButtons(st, md.buttons, md.button))
	case modalSuggestions:
		b.WriteString(m.renderSuggestionsBody(st, inner))
	case modalAddCard:
		b.WriteString(m.renderAddCardBody(st, inner))
	case modalColor:
		b.WriteString(m.renderColorBody(st))
	case modalHelp:
		b.WriteString(st.title.Render(md.title) + "\n\n" + md.help.View())
		b.WriteString("\n" + st.hint.Render("esc close · ↑/↓ scroll"))
	}

	frame := st.frame.Width(w - 2)
	out := frame.Render(b.String())
	if md.closing {
		out = dimBackground(out)
	}
	return out
}
