package tui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	toastSlideOut   = 300 * time.Millisecond
	toastMaxWidth   = 44
	toastTopMargin  = 1
	toastSideMargin = 1
)

type toast struct {
	seq      int
	sev      severity
	message  string
	leaving  bool
	duration time.Duration
}

// showToast inserts a toast, replacing any toast of the same severity, and schedules its
// expiry.
func (m *appModel) showToast(message string, sev severity, d time.Duration) tea.Cmd {
	kept := m.toasts[:0]
	for _, t := range m.toasts {
		if t.sev != sev {
			kept = append(kept, t)
		}
	}
	m.toasts = kept

	m.seq++
	t := toast{seq: m.seq, sev: sev, message: strings.TrimSpace(message), duration: d}
	m.toasts = append(m.toasts, t)
	return m.after(d, toastExpireMsg{seq: t.seq})
}

func (m *appModel) toastSuccess(msg string) tea.Cmd {
	return m.showToast(msg, sevSuccess, m.cfg.Toasts.Success())
}

func (m *appModel) toastError(msg string) tea.Cmd {
	return m.showToast(msg, sevError, m.cfg.Toasts.Error())
}

func (m *appModel) toastInfo(msg string) tea.Cmd {
	return m.showToast(msg, sevInfo, m.cfg.Toasts.Info())
}

func (m *appModel) toastWarning(msg string) tea.Cmd {
	return m.showToast(msg, sevWarning, m.cfg.Toasts.Warning())
}

func (m *appModel) toastIndex(seq int) int {
	for i, t := range m.toasts {
		if t.seq == seq {
			return i
		}
	}
	return -1
}

// expireToast starts the slide-out of a toast that is still on screen.
func (m *appModel) expireToast(seq int) tea.Cmd {
	i := m.toastIndex(seq)
	if i < 0 || m.toasts[i].leaving {
		return nil
	}
	m.toasts[i].leaving = true
	return m.after(toastSlideOut, toastRemoveMsg{seq: seq})
}

func (m *appModel) removeToast(seq int) {
	if i := m.toastIndex(seq); i >= 0 {
		m.toasts = append(m.toasts[:i], m.toasts[i+1:]...)
	}
}

func (m *appModel) dismissAllToasts() {
	m.toasts = nil
}

func (m appModel) toastOfSeverity(sev severity) (toast, bool) {
	for _, t := range m.toasts {
		if t.sev == sev {
			return t, true
		}
	}
	return toast{}, false
}

func renderToast(t toast) string {
	c := severityColor(t.sev)
	icon := lipgloss.NewStyle().Foreground(c).Bold(true).Render(severityIcon(t.sev))
	closeCtl := styleMuted().Render("×")
	body := lipgloss.NewStyle().Width(toastMaxWidth - 8).Render(t.message)

	row := lipgloss.JoinHorizontal(lipgloss.Top, icon, " ", body, " ", closeCtl)
	st := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(c).
		Padding(0, 1)
	if t.leaving {
		st = st.Faint(true)
	}
	return st.Render(row)
}

type toastBox struct {
	seq        int
	x, y, w, h int
	view       string
}

// toastLayout stacks toasts in the top-right corner. Leaving toasts slide towards the edge.
func (m appModel) toastLayout() []toastBox {
	var out []toastBox
	y := toastTopMargin
	for _, t := range m.toasts {
		v := renderToast(t)
		w, h := blockSize(v)
		x := m.width - w - toastSideMargin
		if t.leaving {
			x += w / 2
		}
		if x < 0 {
			x = 0
		}
		out = append(out, toastBox{seq: t.seq, x: x, y: y, w: w, h: h, view: v})
		y += h
	}
	return out
}

func (m appModel) overlayToasts(base string) string {
	for _, b := range m.toastLayout() {
		base = placeOverlay(b.x, b.y, b.view, base)
	}
	return base
}

// toastAt returns the toast under a click.
func (m appModel) toastAt(x, y int) (int, bool) {
	for _, b := range m.toastLayout() {
		if x >= b.x && x < b.x+b.w && y >= b.y && y < b.y+b.h {
			return b.seq, true
		}
	}
	return 0, false
}
