package model

import "strings"

type Category string

const (
	CategoryManual       Category = "manual"
	CategoryIASuggestion Category = "ia_suggestion"
)

type Session struct {
	ID          int    `json:"id"`
	Theme       string `json:"theme"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty"`
}

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p shifted by d.
func (p Position) Add(d Position) Position {
	return Position{X: p.X + d.X, Y: p.Y + d.Y}
}

// Sub returns the displacement from q to p.
func (p Position) Sub(q Position) Position {
	return Position{X: p.X - q.X, Y: p.Y - q.Y}
}

type Card struct {
	// ID is assigned by the backend. Zero means the card has no stable identifier
	// and cannot be targeted by mutation requests.
	ID       int      `json:"id"`
	Text     string   `json:"text"`
	Color    string   `json:"color"`
	Category Category `json:"category"`
	Position Position `json:"position"`
}

// HasID reports whether the card can be used as a key for mutation requests.
func (c Card) HasID() bool { return c.ID > 0 }

type Group struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
}

// SessionContext is what the suggestion backend gets to know about the board.
type SessionContext struct {
	Theme       string `json:"theme"`
	Description string `json:"description"`
	CardCount   int    `json:"card_count"`
}

// Snapshot is the full persisted state of a session as exported by the backend.
type Snapshot struct {
	Session Session `json:"session"`
	Cards   []Card  `json:"cards"`
	Groups  []Group `json:"groups,omitempty"`
}

// Board geometry, in pixels. The terminal renderer scales these onto its cell grid.
const (
	CardWidth       = 200.0
	CardHeight      = 120.0
	PlacementMargin = 50.0
	DragThreshold   = 5.0
)

// DefaultTheme is reported to the suggestion backend when no theme can be found.
const DefaultTheme = "jogo educativo"

type Palette []string

// DefaultPalette is the fixed post-it palette.
var DefaultPalette = Palette{
	"#FFD700", "#87CEEB", "#98FB98", "#DDA0DD", "#F0E68C",
	"#FFB6C1", "#87CEFA", "#90EE90", "#FFA07A", "#20B2AA",
}

// At returns the colour for index i, wrapping around the palette.
func (p Palette) At(i int) string {
	if len(p) == 0 {
		return ""
	}
	n := len(p)
	return p[((i%n)+n)%n]
}

// Index returns the palette position of color (case-insensitive) or -1.
func (p Palette) Index(color string) int {
	color = strings.TrimSpace(color)
	for i, c := range p {
		if strings.EqualFold(c, color) {
			return i
		}
	}
	return -1
}
