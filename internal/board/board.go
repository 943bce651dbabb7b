package board

import (
	"slices"

	"brainboard/internal/model"
)

// Board is the live, ordered set of cards on screen. It is owned by the UI goroutine and is not
// safe for concurrent use.
type Board struct {
	session model.Session
	groups  []model.Group
	cards   []model.Card
	subs    []func(model.Card)
}

func New(session model.Session) *Board {
	return &Board{session: session}
}

func (b *Board) Session() model.Session { return b.session }

func (b *Board) Groups() []model.Group { return slices.Clone(b.groups) }

// Subscribe registers fn to be called for every card inserted from now on, including the cards
// of a Load. It returns a func that removes the subscription.
func (b *Board) Subscribe(fn func(model.Card)) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	b.subs = append(b.subs, fn)
	idx := len(b.subs) - 1
	return func() {
		if idx < len(b.subs) {
			b.subs[idx] = nil
		}
	}
}

func (b *Board) notify(c model.Card) {
	for _, fn := range b.subs {
		if fn != nil {
			fn(c)
		}
	}
}

// Load replaces the board wholesale with snap and reports the cards that disappeared.
func (b *Board) Load(snap model.Snapshot) (removed []int) {
	keep := make(map[int]bool, len(snap.Cards))
	for _, c := range snap.Cards {
		if c.HasID() {
			keep[c.ID] = true
		}
	}
	for _, c := range b.cards {
		if c.HasID() && !keep[c.ID] {
			removed = append(removed, c.ID)
		}
	}

	if snap.Session.ID != 0 || snap.Session.Theme != "" {
		b.session = snap.Session
	}
	b.groups = slices.Clone(snap.Groups)
	b.cards = make([]model.Card, 0, len(snap.Cards))
	for _, c := range snap.Cards {
		b.cards = append(b.cards, c)
		b.notify(c)
	}
	return removed
}

// Append adds c at the end of the board.
func (b *Board) Append(c model.Card) {
	b.cards = append(b.cards, c)
	b.notify(c)
}

func (b *Board) Len() int { return len(b.cards) }

// Cards returns a copy in board order.
func (b *Board) Cards() []model.Card { return slices.Clone(b.cards) }

// CardAt returns the i-th card in board order.
func (b *Board) CardAt(i int) (model.Card, bool) {
	if i < 0 || i >= len(b.cards) {
		return model.Card{}, false
	}
	return b.cards[i], true
}

func (b *Board) indexOf(id int) int {
	if id <= 0 {
		return -1
	}
	for i, c := range b.cards {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (b *Board) Find(id int) (model.Card, bool) {
	i := b.indexOf(id)
	if i < 0 {
		return model.Card{}, false
	}
	return b.cards[i], true
}

// Index returns the board position of the card with id, or -1.
func (b *Board) Index(id int) int { return b.indexOf(id) }

// Move sets a card's position. Cards without an id cannot be addressed.
func (b *Board) Move(id int, p model.Position) bool {
	i := b.indexOf(id)
	if i < 0 {
		return false
	}
	b.cards[i].Position = p
	return true
}

// Update applies fn to the card with id in place.
func (b *Board) Update(id int, fn func(*model.Card)) bool {
	i := b.indexOf(id)
	if i < 0 || fn == nil {
		return false
	}
	fn(&b.cards[i])
	// The id is the key; callers may not change it.
	b.cards[i].ID = id
	return true
}

func (b *Board) Remove(id int) bool {
	i := b.indexOf(id)
	if i < 0 {
		return false
	}
	b.cards = slices.Delete(b.cards, i, i+1)
	return true
}

// TopmostAt returns the last card in board order whose rectangle contains p. Later cards are
// drawn above earlier ones.
func (b *Board) TopmostAt(p model.Position) (model.Card, bool) {
	for i := len(b.cards) - 1; i >= 0; i-- {
		c := b.cards[i]
		if p.X >= c.Position.X && p.X < c.Position.X+model.CardWidth &&
			p.Y >= c.Position.Y && p.Y < c.Position.Y+model.CardHeight {
			return c, true
		}
	}
	return model.Card{}, false
}
