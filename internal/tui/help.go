package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

func (m appModel) helpMarkdown() string {
	var b strings.Builder
	b.WriteString("## Keys\n\n")
	b.WriteString("| key | action |\n|---|---|\n")
	for _, kb := range m.keys.all() {
		h := kb.Help()
		if h.Key == "" {
			continue
		}
		fmt.Fprintf(&b, "| `%s` | %s |\n", h.Key, h.Desc)
	}
	b.WriteString("\n## Mouse\n\n")
	b.WriteString("- Drag a card to move it. Moves shorter than a few pixels are ignored.\n")
	b.WriteString("- Right click a card for **Edit**, **Change colour**, **Duplicate** and **Delete**.\n")
	b.WriteString("- Click a notification to dismiss it.\n")
	b.WriteString("\n## Board\n\n")
	fmt.Fprintf(&b, "Session `%d` at %s.\n", m.boardURL.SessionID, m.boardURL.Base)
	if groups := m.board.Groups(); len(groups) > 0 {
		b.WriteString("\n## Groups\n\n")
		for _, g := range groups {
			if d := strings.TrimSpace(g.Description); d != "" {
				fmt.Fprintf(&b, "- **%s**: %s\n", g.Name, d)
			} else {
				fmt.Fprintf(&b, "- **%s**\n", g.Name)
			}
		}
	}
	return b.String()
}

func (m appModel) helpHeight() int {
	h := m.height - 10
	if h < 5 {
		h = 5
	}
	return h
}

func (m *appModel) openHelp() {
	inner := m.modalWidth() - 6
	vp := viewport.New(inner, m.helpHeight())
	vp.SetContent(renderMarkdown(m.helpMarkdown(), inner))
	m.showModal(&modal{kind: modalHelp, title: "Help", help: vp})
}

func (m *appModel) resizeHelp() {
	inner := m.modalWidth() - 6
	m.modal.help.Width = inner
	m.modal.help.Height = m.helpHeight()
	m.modal.help.SetContent(renderMarkdown(m.helpMarkdown(), inner))
}

func (m appModel) handleHelpKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Help) || msg.String() == "q" {
		return m, m.hideModal(modalHelp)
	}
	var cmd tea.Cmd
	m.modal.help, cmd = m.modal.help.Update(msg)
	return m, cmd
}
