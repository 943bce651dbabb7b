package engine

import (
	"math"

	"go.uber.org/zap"

	"brainboard/internal/board"
	"brainboard/internal/model"
)

type State int

const (
	Idle State = iota
	Dragging
)

func (s State) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "idle"
}

// Move is a position change that should be persisted.
type Move struct {
	CardID int
	X, Y   float64
}

type drag struct {
	cardID  int
	initial model.Position
	origin  model.Position
	current model.Position
}

// Engine tracks which cards accept pointer interaction and the drag in progress. At most one
// card is dragged at a time. Owned by the UI goroutine.
type Engine struct {
	attached map[int]bool
	active   *drag
	// Viewport in pixels; zero disables clamping on that axis.
	viewW, viewH float64
	log          *zap.Logger
}

func New(log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{attached: map[int]bool{}, log: log}
}

// SetViewport bounds dragged cards to the visible board.
func (e *Engine) SetViewport(w, h float64) {
	e.viewW, e.viewH = w, h
}

// Attach marks a card as interactive. A second call for the same card is a no-op; it
// reports whether the card was newly attached.
func (e *Engine) Attach(id int) bool {
	if id <= 0 || e.attached[id] {
		return false
	}
	e.attached[id] = true
	e.log.Debug("card attached", zap.Int("card_id", id))
	return true
}

func (e *Engine) Attached(id int) bool { return e.attached[id] }

// Forget drops cards that left the board. A drag on a forgotten card is cancelled.
func (e *Engine) Forget(ids ...int) {
	for _, id := range ids {
		delete(e.attached, id)
		if e.active != nil && e.active.cardID == id {
			e.active = nil
		}
	}
}

// AttachedCount is the number of interactive cards.
func (e *Engine) AttachedCount() int { return len(e.attached) }

// Watch attaches every card inserted into b from now on. Cards already on the board are
// attached immediately. The returned func stops watching.
func (e *Engine) Watch(b *board.Board) (stop func()) {
	for _, c := range b.Cards() {
		e.Attach(c.ID)
	}
	return b.Subscribe(func(c model.Card) { e.Attach(c.ID) })
}

// State reports the interaction state of a card.
func (e *Engine) State(id int) State {
	if e.active != nil && e.active.cardID == id {
		return Dragging
	}
	return Idle
}

// Dragging returns the card being dragged, if any.
func (e *Engine) Dragging() (int, bool) {
	if e.active == nil {
		return 0, false
	}
	return e.active.cardID, true
}

// BeginDrag starts dragging c from pointer. Cards without an id or not attached stay idle.
// Starting a new drag abandons any drag in progress.
func (e *Engine) BeginDrag(c model.Card, pointer model.Position) bool {
	if !c.HasID() {
		e.log.Warn("card has no id; position cannot be updated")
		return false
	}
	if !e.attached[c.ID] {
		return false
	}
	e.active = &drag{cardID: c.ID, initial: c.Position, origin: pointer, current: c.Position}
	return true
}

// DragTo moves the dragged card with the pointer and returns its live position.
func (e *Engine) DragTo(pointer model.Position) (model.Position, bool) {
	if e.active == nil {
		return model.Position{}, false
	}
	p := e.active.initial.Add(pointer.Sub(e.active.origin))
	e.active.current = e.clamp(p)
	return e.active.current, true
}

// EndDrag finishes the drag at pointer. It yields a Move only when the card travelled at least
// model.DragThreshold pixels on either axis.
func (e *Engine) EndDrag(pointer model.Position) (Move, bool) {
	if e.active == nil {
		return Move{}, false
	}
	final, _ := e.DragTo(pointer)
	d := e.active
	e.active = nil

	delta := final.Sub(d.initial)
	if math.Abs(delta.X) < model.DragThreshold && math.Abs(delta.Y) < model.DragThreshold {
		return Move{}, false
	}
	return Move{CardID: d.cardID, X: final.X, Y: final.Y}, true
}

// CancelDrag abandons the drag and returns the card's position before it started.
func (e *Engine) CancelDrag() (cardID int, initial model.Position, ok bool) {
	if e.active == nil {
		return 0, model.Position{}, false
	}
	d := e.active
	e.active = nil
	return d.cardID, d.initial, true
}

func (e *Engine) clamp(p model.Position) model.Position {
	p.X = clampAxis(p.X, e.viewW-model.CardWidth)
	p.Y = clampAxis(p.Y, e.viewH-model.CardHeight)
	return p
}

func clampAxis(v, limit float64) float64 {
	if v < 0 {
		v = 0
	}
	if limit > 0 && v > limit {
		v = limit
	}
	return v
}
