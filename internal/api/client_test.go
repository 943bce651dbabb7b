package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brainboard/internal/model"
)

type recorded struct {
	method string
	path   string
	query  string
	header http.Header
	body   map[string]any
}

// fakeBackend answers every request with the handler registered for its path and records
// what it received.
type fakeBackend struct {
	t        *testing.T
	mu       sync.Mutex
	requests []recorded
	routes   map[string]http.HandlerFunc
}

func newFakeBackend(t *testing.T) (*fakeBackend, *Client) {
	t.Helper()
	fb := &fakeBackend{t: t, routes: map[string]http.HandlerFunc{}}
	srv := httptest.NewServer(http.HandlerFunc(fb.serve))
	t.Cleanup(srv.Close)
	c, err := New(srv.URL, WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return fb, c
}

func (fb *fakeBackend) serve(w http.ResponseWriter, r *http.Request) {
	rec := recorded{method: r.Method, path: r.URL.Path, query: r.URL.RawQuery, header: r.Header.Clone()}
	if b, _ := io.ReadAll(r.Body); len(b) > 0 {
		_ = json.Unmarshal(b, &rec.body)
	}
	fb.mu.Lock()
	fb.requests = append(fb.requests, rec)
	h := fb.routes[r.URL.Path]
	fb.mu.Unlock()
	if h == nil {
		http.NotFound(w, r)
		return
	}
	h(w, r)
}

func (fb *fakeBackend) handle(path string, status int, body string) {
	fb.routes[path] = func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func (fb *fakeBackend) last() recorded {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	require.NotEmpty(fb.t, fb.requests)
	return fb.requests[len(fb.requests)-1]
}

func (fb *fakeBackend) count() int {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return len(fb.requests)
}

func TestRequestSuggestions_SendsContextAndExistingCards(t *testing.T) {
	fb, c := newFakeBackend(t)
	fb.handle(pathSuggestions, http.StatusOK, `{"success":true,"suggestions":["Add sensors","Solar power"]}`)

	got, err := c.RequestSuggestions(context.Background(), 42,
		model.SessionContext{Theme: "robots", Description: "", CardCount: 2},
		[]string{"Arms", "Wheels"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Add sensors", "Solar power"}, got)

	req := fb.last()
	assert.Equal(t, http.MethodPost, req.method)
	assert.Equal(t, "application/json", req.header.Get("Content-Type"))
	assert.NotEmpty(t, req.header.Get(headerRequestID))
	assert.EqualValues(t, 42, req.body["session_id"])
	assert.Equal(t, map[string]any{"theme": "robots", "description": "", "card_count": float64(2)}, req.body["context"])
	assert.Equal(t, []any{"Arms", "Wheels"}, req.body["existing_cards"])
}

func TestRequestSuggestions_EmptyExistingCardsIsAnArray(t *testing.T) {
	fb, c := newFakeBackend(t)
	fb.handle(pathSuggestions, http.StatusOK, `{"success":true,"suggestions":["One"]}`)

	_, err := c.RequestSuggestions(context.Background(), 1, model.SessionContext{Theme: model.DefaultTheme}, nil)
	require.NoError(t, err)
	assert.Equal(t, []any{}, fb.last().body["existing_cards"])
}

func TestRequestSuggestions_BackendFailureCarriesMessage(t *testing.T) {
	fb, c := newFakeBackend(t)
	fb.handle(pathSuggestions, http.StatusOK, `{"success":false,"error":"quota exceeded"}`)

	_, err := c.RequestSuggestions(context.Background(), 42, model.SessionContext{}, nil)
	var ee *EmptyResultError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, KindApplication, KindOf(err))
	assert.Equal(t, "quota exceeded", Message(err, "fallback"))
}

func TestRequestSuggestions_ZeroSuggestionsIsEmptyResult(t *testing.T) {
	fb, c := newFakeBackend(t)
	fb.handle(pathSuggestions, http.StatusOK, `{"success":true,"suggestions":[]}`)

	_, err := c.RequestSuggestions(context.Background(), 42, model.SessionContext{}, nil)
	var ee *EmptyResultError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, noSuggestionsMessage, Message(err, "fallback"))
}

func TestRequestSuggestions_NonSuccessStatusIsTransportError(t *testing.T) {
	fb, c := newFakeBackend(t)
	fb.handle(pathSuggestions, http.StatusInternalServerError, `{"success":false,"error":"boom"}`)

	_, err := c.RequestSuggestions(context.Background(), 42, model.SessionContext{}, nil)
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusInternalServerError, te.StatusCode)
	assert.Equal(t, "boom", Message(err, "fallback"))
	assert.Equal(t, KindTransport, KindOf(err))
	assert.NotEmpty(t, RequestIDOf(err))
}

func TestRequestSuggestions_MalformedBodyIsTransportError(t *testing.T) {
	fb, c := newFakeBackend(t)
	fb.handle(pathSuggestions, http.StatusOK, `<html>oops</html>`)

	_, err := c.RequestSuggestions(context.Background(), 42, model.SessionContext{}, nil)
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Zero(t, te.StatusCode)
}

func TestRequestSuggestions_InvalidSessionNeverSent(t *testing.T) {
	fb, c := newFakeBackend(t)

	_, err := c.RequestSuggestions(context.Background(), 0, model.SessionContext{}, nil)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "session_id", ve.Field)
	assert.Equal(t, 0, fb.count())
}

func TestCreateCard_SendsTextAsContentAndReturnsBackendID(t *testing.T) {
	fb, c := newFakeBackend(t)
	fb.handle(pathAddCard, http.StatusOK, `{"success":true,"card":{"id":7,"text":"Add sensors","content":"Add sensors","category":"ia_suggestion","color":"#87CEEB","position_x":120,"position_y":80}}`)

	card, err := c.CreateCard(context.Background(), CreateCardRequest{
		SessionID: 42,
		Text:      "  Add sensors ",
		Color:     model.DefaultPalette.At(1),
		Category:  model.CategoryIASuggestion,
		Position:  model.Position{X: 120, Y: 80},
	})
	require.NoError(t, err)
	assert.Equal(t, 7, card.ID)
	assert.Equal(t, "Add sensors", card.Text)
	assert.Equal(t, model.CategoryIASuggestion, card.Category)
	assert.Equal(t, model.Position{X: 120, Y: 80}, card.Position)

	body := fb.last().body
	assert.Equal(t, "Add sensors", body["text"])
	assert.Equal(t, "Add sensors", body["content"])
	assert.Equal(t, "#87CEEB", body["color"])
	assert.Equal(t, "ia_suggestion", body["category"])
	assert.EqualValues(t, 120, body["position_x"])
	assert.EqualValues(t, 80, body["position_y"])
}

func TestCreateCard_BlankTextIsValidationError(t *testing.T) {
	fb, c := newFakeBackend(t)

	_, err := c.CreateCard(context.Background(), CreateCardRequest{SessionID: 1, Text: "   ", Color: "#FFD700", Category: model.CategoryManual})
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Equal(t, 0, fb.count())
}

func TestCreateCard_ApplicationFailure(t *testing.T) {
	fb, c := newFakeBackend(t)
	fb.handle(pathAddCard, http.StatusOK, `{"success":false,"error":"session closed"}`)

	_, err := c.CreateCard(context.Background(), CreateCardRequest{SessionID: 1, Text: "x", Color: "#FFD700", Category: model.CategoryManual})
	var ae *ApplicationError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "session closed", Message(err, "could not add card"))
}

func TestCreateCard_ErrorStatusKeepsBackendMessage(t *testing.T) {
	fb, c := newFakeBackend(t)
	fb.handle(pathAddCard, http.StatusNotFound, `{"success":false,"error":"Sessão não encontrada"}`)

	_, err := c.CreateCard(context.Background(), CreateCardRequest{SessionID: 1, Text: "x", Color: "#FFD700", Category: model.CategoryManual})
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, KindTransport, KindOf(err))
	assert.Equal(t, http.StatusNotFound, te.StatusCode)
	assert.Equal(t, "Sessão não encontrada", Message(err, "could not add card"))
	assert.Contains(t, err.Error(), "Sessão não encontrada")
}

func TestCreateCard_ErrorStatusWithoutEnvelopeFallsBack(t *testing.T) {
	fb, c := newFakeBackend(t)
	fb.handle(pathAddCard, http.StatusBadGateway, `<html>bad gateway</html>`)

	_, err := c.CreateCard(context.Background(), CreateCardRequest{SessionID: 1, Text: "x", Color: "#FFD700", Category: model.CategoryManual})
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Empty(t, te.Message)
	assert.Equal(t, "could not add card", Message(err, "could not add card"))
	assert.Equal(t, "add card: HTTP 502 Bad Gateway", err.Error())
}

func TestUpdateCardPosition(t *testing.T) {
	fb, c := newFakeBackend(t)
	fb.handle(pathUpdatePosition, http.StatusOK, `{"success":true}`)

	ok, err := c.UpdateCardPosition(context.Background(), 3, 210.5, 99)
	require.NoError(t, err)
	assert.True(t, ok)
	body := fb.last().body
	assert.EqualValues(t, 3, body["card_id"])
	assert.EqualValues(t, 210.5, body["position_x"])
	assert.EqualValues(t, 99, body["position_y"])

	fb.handle(pathUpdatePosition, http.StatusOK, `{"success":false}`)
	ok, err = c.UpdateCardPosition(context.Background(), 3, 1, 1)
	assert.False(t, ok)
	assert.Equal(t, KindApplication, KindOf(err))
}

func TestUpdateCard_OnlySendsSetFields(t *testing.T) {
	fb, c := newFakeBackend(t)
	fb.handle(pathUpdateCard, http.StatusOK, `{"success":true}`)

	color := "#20B2AA"
	card, err := c.UpdateCard(context.Background(), UpdateCardRequest{CardID: 9, Color: &color})
	require.NoError(t, err)
	assert.Equal(t, 9, card.ID)

	body := fb.last().body
	assert.Equal(t, "#20B2AA", body["color"])
	_, hasText := body["text"]
	assert.False(t, hasText)
}

func TestUpdateCard_RejectsBadColour(t *testing.T) {
	_, c := newFakeBackend(t)

	color := "yellow"
	_, err := c.UpdateCard(context.Background(), UpdateCardRequest{CardID: 9, Color: &color})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "color", ve.Field)
}

func TestDeleteCard(t *testing.T) {
	fb, c := newFakeBackend(t)
	fb.handle(pathDeleteCard, http.StatusOK, `{"success":true}`)

	require.NoError(t, c.DeleteCard(context.Background(), 4))
	assert.EqualValues(t, 4, fb.last().body["card_id"])
}

func TestExport_ParsesSnapshot(t *testing.T) {
	fb, c := newFakeBackend(t)
	fb.handle(pathExport, http.StatusOK, `{"success":true,"data":{
		"session":{"id":42,"theme":"robots","description":null,"status":"active"},
		"cards":[
			{"id":1,"content":"Arms","category":"manual","color":"#FFD700","position_x":60,"position_y":70},
			{"id":2,"content":"Wheels","category":null,"color":null,"position_x":null,"position_y":null}
		],
		"groups":[{"id":5,"name":"Mobility"}]}}`)

	snap, err := c.Export(context.Background(), 42)
	require.NoError(t, err)
	req := fb.last()
	assert.Equal(t, http.MethodGet, req.method)
	assert.Equal(t, "session_id=42", req.query)

	assert.Equal(t, "robots", snap.Session.Theme)
	assert.Equal(t, "", snap.Session.Description)
	require.Len(t, snap.Cards, 2)
	assert.Equal(t, model.Card{ID: 1, Text: "Arms", Color: "#FFD700", Category: model.CategoryManual, Position: model.Position{X: 60, Y: 70}}, snap.Cards[0])
	assert.Equal(t, "Wheels", snap.Cards[1].Text)
	assert.Equal(t, model.Position{}, snap.Cards[1].Position)
	require.Len(t, snap.Groups, 1)
	assert.Equal(t, "Mobility", snap.Groups[0].Name)
}

func TestFinishSession_ResolvesRelativeRedirect(t *testing.T) {
	fb, c := newFakeBackend(t)
	fb.handle(pathFinishSession, http.StatusOK, `{"success":true,"redirect_url":"/brainstorm/results/42"}`)

	got, err := c.FinishSession(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, c.BaseURL()+"/brainstorm/results/42", got)
}

func TestClearAllAndCreateGroup(t *testing.T) {
	fb, c := newFakeBackend(t)
	fb.handle(pathClearAll, http.StatusOK, `{"success":true}`)
	fb.handle(pathCreateGroup, http.StatusOK, `{"success":true,"group":{"id":3,"name":"Power","color":"#98FB98"}}`)

	require.NoError(t, c.ClearAll(context.Background(), 42))
	assert.EqualValues(t, 42, fb.last().body["session_id"])

	g, err := c.CreateGroup(context.Background(), CreateGroupRequest{SessionID: 42, Name: " Power "})
	require.NoError(t, err)
	assert.Equal(t, 3, g.ID)
	assert.Equal(t, "Power", fb.last().body["name"])
}

func TestTransportFailureWithoutServer(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	c, err := New(srv.URL)
	require.NoError(t, err)
	srv.Close()

	_, err = c.Export(context.Background(), 1)
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Zero(t, te.StatusCode)
	assert.True(t, errors.Unwrap(err) != nil)
}
