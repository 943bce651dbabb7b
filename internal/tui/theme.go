package tui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// The board must stay readable on light and dark terminals. Chrome uses AdaptiveColor; card
// faces use the fixed post-it palette with dark text, which reads on both.

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

func faintIfDark(st lipgloss.Style) lipgloss.Style {
	if lipgloss.HasDarkBackground() {
		return st.Faint(true)
	}
	return st
}

var (
	colorMuted     = ac("240", "243")
	colorSurfaceFg = ac("235", "252")
	colorSurfaceBg = ac("255", "235")
	colorControlBg = ac("252", "236")
	colorAccent    = ac("27", "62")
	colorAccentFg  = ac("255", "255")
	colorBorder    = ac("250", "243")
	colorSelected  = ac("232", "255")
	colorScrim     = lipgloss.Color("241")

	colorSuccess = ac("28", "78")
	colorError   = ac("160", "203")
	colorInfo    = ac("25", "75")
	colorWarning = ac("130", "214")

	// Text printed on top of a palette colour.
	colorCardFg = lipgloss.Color("#222222")
)

func styleMuted() lipgloss.Style {
	return faintIfDark(lipgloss.NewStyle().Foreground(colorMuted))
}

func severityColor(s severity) lipgloss.AdaptiveColor {
	switch s {
	case sevSuccess:
		return colorSuccess
	case sevError:
		return colorError
	case sevWarning:
		return colorWarning
	default:
		return colorInfo
	}
}

func severityIcon(s severity) string {
	switch s {
	case sevSuccess:
		return "✔"
	case sevError:
		return "✖"
	case sevWarning:
		return "⚠"
	default:
		return "ℹ"
	}
}

// applyColorProfilePreference only honours NO_COLOR and otherwise trusts the terminal;
// termenv.EnvColorProfile would also obey CLICOLOR, which is meant for piped CLI output.
func applyColorProfilePreference() {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}

	profile := termenv.ColorProfile()
	colorterm := strings.ToLower(strings.TrimSpace(os.Getenv("COLORTERM")))
	term := strings.ToLower(strings.TrimSpace(os.Getenv("TERM")))
	switch {
	case strings.Contains(colorterm, "truecolor") || strings.Contains(colorterm, "24bit"):
		if profile != termenv.Ascii {
			profile = termenv.TrueColor
		}
	case strings.Contains(term, "256color"):
		if profile == termenv.Ascii || profile == termenv.ANSI {
			profile = termenv.ANSI256
		}
	}
	lipgloss.SetColorProfile(profile)
}

// applyThemePreference configures background detection.
//
// Priority:
// 1) BRAINBOARD_TUI_THEME=light|dark|auto
// 2) COLORFGBG heuristic ("fg;bg")
func applyThemePreference() {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("BRAINBOARD_TUI_THEME"))) {
	case "light":
		lipgloss.SetHasDarkBackground(false)
		return
	case "dark":
		lipgloss.SetHasDarkBackground(true)
		return
	}

	if v := strings.TrimSpace(os.Getenv("COLORFGBG")); v != "" {
		parts := strings.Split(v, ";")
		if bg, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1])); err == nil {
			// xterm palette: 0-6 dark, 7-15 light.
			lipgloss.SetHasDarkBackground(bg < 7)
		}
	}
}
