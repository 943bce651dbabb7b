package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// normalizePane forces s to be exactly width columns wide (ANSI-aware) and height lines tall.
func normalizePane(s string, width, height int) string {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}

	lines := strings.Split(s, "\n")
	if height > 0 {
		if len(lines) > height {
			lines = lines[:height]
		}
		for len(lines) < height {
			lines = append(lines, "")
		}
	}

	for i, ln := range lines {
		w := xansi.StringWidth(ln)
		if w > width {
			switch {
			case width <= 0:
				ln = ""
			case width == 1:
				ln = xansi.Cut(ln, 0, 1)
			default:
				ln = xansi.Cut(ln, 0, width-1) + "…"
			}
			w = xansi.StringWidth(ln)
		}
		if w < width {
			ln += strings.Repeat(" ", width-w)
		}
		lines[i] = ln
	}
	return strings.Join(lines, "\n")
}

// placeOverlay draws fg on top of bg with its top-left corner at column x, line y. Parts of
// fg outside bg are dropped; bg keeps its size.
func placeOverlay(x, y int, fg, bg string) string {
	if fg == "" {
		return bg
	}
	bgLines := strings.Split(bg, "\n")
	fgLines := strings.Split(fg, "\n")
	if x < 0 {
		x = 0
	}

	for i, fl := range fgLines {
		row := y + i
		if row < 0 || row >= len(bgLines) {
			continue
		}
		bl := bgLines[row]
		bw := xansi.StringWidth(bl)
		fw := xansi.StringWidth(fl)
		if x >= bw {
			continue
		}
		if x+fw > bw {
			fl = xansi.Cut(fl, 0, bw-x)
			fw = bw - x
		}
		left := xansi.Cut(bl, 0, x)
		right := xansi.Cut(bl, x+fw, bw)
		bgLines[row] = left + "\x1b[0m" + fl + "\x1b[0m" + right
	}
	return strings.Join(bgLines, "\n")
}

// dimBackground renders s in the scrim colour. Inner styles are stripped first so they cannot
// override the scrim.
func dimBackground(s string) string {
	st := lipgloss.NewStyle().Foreground(colorScrim)
	lines := strings.Split(s, "\n")
	for i, ln := range lines {
		plain := xansi.Strip(ln)
		if strings.TrimSpace(plain) == "" {
			lines[i] = plain
			continue
		}
		lines[i] = st.Render(plain)
	}
	return strings.Join(lines, "\n")
}

// centerIn returns the top-left corner that centres a w x h block in a width x height area.
func centerIn(w, h, width, height int) (int, int) {
	x := (width - w) / 2
	y := (height - h) / 2
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	return x, y
}

func blockSize(s string) (int, int) {
	return lipgloss.Width(s), lipgloss.Height(s)
}
