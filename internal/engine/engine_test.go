package engine

import (
	"math/rand/v2"
	"testing"

	"brainboard/internal/board"
	"brainboard/internal/model"
)

func attachedEngine(ids ...int) *Engine {
	e := New(nil)
	for _, id := range ids {
		e.Attach(id)
	}
	return e
}

func TestDrag_BelowThresholdYieldsNoMove(t *testing.T) {
	e := attachedEngine(1)
	c := model.Card{ID: 1, Position: model.Position{X: 100, Y: 100}}

	if !e.BeginDrag(c, model.Position{X: 110, Y: 110}) {
		t.Fatalf("BeginDrag should succeed on an attached card")
	}
	if e.State(1) != Dragging {
		t.Fatalf("expected dragging state")
	}
	if _, ok := e.EndDrag(model.Position{X: 114, Y: 106}); ok {
		t.Fatalf("4px displacement must not produce a move")
	}
	if e.State(1) != Idle {
		t.Fatalf("expected idle after drag end")
	}
}

func TestDrag_AtThresholdYieldsOneMoveWithFinalCoordinates(t *testing.T) {
	e := attachedEngine(1)
	c := model.Card{ID: 1, Position: model.Position{X: 100, Y: 100}}

	e.BeginDrag(c, model.Position{X: 110, Y: 110})
	if p, ok := e.DragTo(model.Position{X: 200, Y: 150}); !ok || p != (model.Position{X: 190, Y: 140}) {
		t.Fatalf("unexpected live position %+v", p)
	}
	mv, ok := e.EndDrag(model.Position{X: 110, Y: 115})
	if !ok {
		t.Fatalf("5px displacement must produce a move")
	}
	if mv != (Move{CardID: 1, X: 100, Y: 105}) {
		t.Fatalf("unexpected move %+v", mv)
	}
	if _, ok := e.EndDrag(model.Position{X: 500, Y: 500}); ok {
		t.Fatalf("a finished drag must not yield a second move")
	}
}

func TestDrag_RequiresAttachmentAndID(t *testing.T) {
	e := attachedEngine(1)
	if e.BeginDrag(model.Card{ID: 2}, model.Position{}) {
		t.Fatalf("unattached card must not drag")
	}
	if e.BeginDrag(model.Card{}, model.Position{}) {
		t.Fatalf("card without id must not drag")
	}
}

func TestCancelDrag_ReturnsInitialPosition(t *testing.T) {
	e := attachedEngine(3)
	e.BeginDrag(model.Card{ID: 3, Position: model.Position{X: 40, Y: 60}}, model.Position{X: 0, Y: 0})
	e.DragTo(model.Position{X: 100, Y: 100})

	id, p, ok := e.CancelDrag()
	if !ok || id != 3 || p != (model.Position{X: 40, Y: 60}) {
		t.Fatalf("unexpected cancel result %d %+v %v", id, p, ok)
	}
	if _, dragging := e.Dragging(); dragging {
		t.Fatalf("expected no drag after cancel")
	}
}

func TestDragTo_ClampsInsideViewport(t *testing.T) {
	e := attachedEngine(1)
	e.SetViewport(800, 600)
	e.BeginDrag(model.Card{ID: 1, Position: model.Position{X: 10, Y: 10}}, model.Position{})

	p, _ := e.DragTo(model.Position{X: -50, Y: 1000})
	if p != (model.Position{X: 0, Y: 480}) {
		t.Fatalf("unexpected clamped position %+v", p)
	}
}

func TestAttach_IsIdempotent(t *testing.T) {
	e := New(nil)
	if !e.Attach(5) {
		t.Fatalf("first attach should report new")
	}
	if e.Attach(5) {
		t.Fatalf("second attach must be a no-op")
	}
	if e.AttachedCount() != 1 {
		t.Fatalf("expected one attached card, got %d", e.AttachedCount())
	}
}

func TestWatch_AttachesInsertedCardsWithoutReinit(t *testing.T) {
	b := board.New(model.Session{ID: 42})
	b.Append(model.Card{ID: 1, Text: "existing"})

	e := New(nil)
	e.Watch(b)
	if !e.Attached(1) {
		t.Fatalf("existing card should be attached")
	}

	b.Append(model.Card{ID: 2, Text: "new"})
	if !e.Attached(2) {
		t.Fatalf("inserted card should be attached")
	}
	if !e.BeginDrag(model.Card{ID: 2}, model.Position{}) {
		t.Fatalf("inserted card should be draggable")
	}

	// Reload re-notifies every card; attachment stays single.
	removed := b.Load(model.Snapshot{Cards: []model.Card{{ID: 2}}})
	e.Forget(removed...)
	if e.Attached(1) || !e.Attached(2) || e.AttachedCount() != 1 {
		t.Fatalf("unexpected attachment after reload: 1=%v 2=%v n=%d", e.Attached(1), e.Attached(2), e.AttachedCount())
	}
}

func TestPlaceMenu_FlipsAndClamps(t *testing.T) {
	m := PlaceMenu(1, 10, 5, 20, 6, 80, 24)
	if m.X != 10 || m.Y != 5 {
		t.Fatalf("menu that fits should open at the pointer, got %+v", m)
	}
	m = PlaceMenu(1, 70, 20, 20, 6, 80, 24)
	if m.X != 50 || m.Y != 14 {
		t.Fatalf("overflowing menu should flip left and up, got %+v", m)
	}
	m = PlaceMenu(1, 5, 3, 20, 6, 10, 5)
	if m.X != 0 || m.Y != 0 {
		t.Fatalf("flipped menu must clamp to zero, got %+v", m)
	}
	if !m.Contains(0, 0) || m.Contains(20, 0) {
		t.Fatalf("unexpected hit test")
	}
}

func TestMenuCursorWraps(t *testing.T) {
	m := Menu{}
	m.Prev()
	if m.Selected() != ActionDelete {
		t.Fatalf("expected wrap to delete, got %v", m.Selected().Label())
	}
	m.Next()
	if m.Selected() != ActionEdit {
		t.Fatalf("expected edit, got %v", m.Selected().Label())
	}
}

func TestDuplicatePosition(t *testing.T) {
	if p := DuplicatePosition(model.Position{X: 100, Y: 100}, 800, 600); p != (model.Position{X: 120, Y: 120}) {
		t.Fatalf("unexpected %+v", p)
	}
	if p := DuplicatePosition(model.Position{X: 590, Y: 470}, 800, 600); p != (model.Position{X: 600, Y: 480}) {
		t.Fatalf("expected clamp to viewport, got %+v", p)
	}
}

func TestRandomPosition_StaysInRange(t *testing.T) {
	p := NewPlacer(rand.New(rand.NewPCG(1, 2)))
	for i := 0; i < 500; i++ {
		pos := p.RandomPosition(1024, 768)
		if pos.X < 50 || pos.X > 1024-250 || pos.Y < 50 || pos.Y > 768-170 {
			t.Fatalf("position out of range: %+v", pos)
		}
	}
}

func TestRandomPosition_SmallViewportPinsToMargin(t *testing.T) {
	p := NewPlacer(rand.New(rand.NewPCG(3, 4)))
	for i := 0; i < 50; i++ {
		if pos := p.RandomPosition(200, 100); pos != (model.Position{X: 50, Y: 50}) {
			t.Fatalf("expected (50,50) on tiny viewport, got %+v", pos)
		}
	}
}
