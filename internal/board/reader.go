package board

import (
	"strings"

	"brainboard/internal/model"
)

// Probe is one source of session theme/description. Either value may be empty.
type Probe interface {
	Name() string
	Lookup() (theme, description string)
}

type staticProbe struct {
	name, theme, description string
}

func (p staticProbe) Name() string { return p.name }
func (p staticProbe) Lookup() (string, string) { return p.theme, p.description }

// Static returns a probe with fixed values (command-line overrides, config defaults).
func Static(name, theme, description string) Probe {
	return staticProbe{name: name, theme: theme, description: description}
}

type sessionProbe struct{ b *Board }

func (p sessionProbe) Name() string { return "board" }
func (p sessionProbe) Lookup() (string, string) {
	s := p.b.Session()
	return s.Theme, s.Description
}

// SessionProbe reads the session loaded into b.
func SessionProbe(b *Board) Probe { return sessionProbe{b: b} }

// Reader answers questions about the live board for the suggestion backend.
type Reader struct {
	board  *Board
	probes []Probe
}

// NewReader ranks probes by argument order: the first probe with a non-empty theme wins the
// theme, and likewise for the description.
func NewReader(b *Board, probes ...Probe) *Reader {
	return &Reader{board: b, probes: probes}
}

// ExistingCards returns the trimmed, non-empty texts of every card in board order.
func (r *Reader) ExistingCards() []string {
	out := []string{}
	if r.board == nil {
		return out
	}
	for _, c := range r.board.cards {
		if t := strings.TrimSpace(c.Text); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// SessionContext never fails: missing values fall back to the default theme and an empty
// description.
func (r *Reader) SessionContext() model.SessionContext {
	var theme, desc string
	for _, p := range r.probes {
		if p == nil {
			continue
		}
		t, d := p.Lookup()
		if theme == "" {
			theme = strings.TrimSpace(t)
		}
		if desc == "" {
			desc = strings.TrimSpace(d)
		}
		if theme != "" && desc != "" {
			break
		}
	}
	if theme == "" {
		theme = model.DefaultTheme
	}
	return model.SessionContext{
		Theme:       theme,
		Description: desc,
		CardCount:   len(r.ExistingCards()),
	}
}
