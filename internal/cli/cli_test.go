package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"brainboard/internal/api"
	"brainboard/internal/model"
)

type backendCall struct {
	path string
	body map[string]any
}

// fakeBoard serves canned /brainstorm/* answers and records the requests it saw.
type fakeBoard struct {
	mu     sync.Mutex
	calls  []backendCall
	routes map[string]string
	status map[string]int
}

func newFakeBoard(t *testing.T) (*fakeBoard, string) {
	t.Helper()
	t.Setenv("BRAINBOARD_HOME", t.TempDir())
	t.Setenv("BRAINBOARD_CONFIG", filepath.Join(t.TempDir(), "config.yaml"))
	t.Setenv("BRAINBOARD_FORMAT", "")

	fb := &fakeBoard{
		routes: map[string]string{
			"/brainstorm/export": `{"success":true,"data":{"session":{"id":42,"theme":"Robots","status":"active"},` +
				`"cards":[{"id":1,"text":"Line follower","category":"manual","color":"#FFD700","position_x":0,"position_y":0},` +
				`{"id":2,"text":"Cardboard arm","category":"ia_suggestion","color":"#87CEEB","position_x":400,"position_y":200}]}}`,
			"/brainstorm/get-suggestions":        `{"success":true,"suggestions":["Solar car","Maze solver","Plant monitor"]}`,
			"/brainstorm/add-card":               `{"success":true,"card":{"id":77}}`,
			"/brainstorm/update-card-position":   `{"success":true}`,
			"/brainstorm/update-card":            `{"success":true,"card":{"id":2,"text":"Cardboard arm","color":"#98FB98"}}`,
			"/brainstorm/delete-card":            `{"success":true}`,
			"/brainstorm/clear-all":              `{"success":true}`,
			"/brainstorm/finish-session":         `{"success":true,"redirect_url":"/brainstorm/results/42"}`,
			"/brainstorm/create-group":           `{"success":true,"group":{"id":5,"name":"Sensors"}}`,
		},
		status: map[string]int{},
	}
	srv := httptest.NewServer(http.HandlerFunc(fb.serve))
	t.Cleanup(srv.Close)
	return fb, srv.URL + "/brainstorm/?session_id=42"
}

func (fb *fakeBoard) serve(w http.ResponseWriter, r *http.Request) {
	call := backendCall{path: r.URL.Path}
	if b, _ := io.ReadAll(r.Body); len(b) > 0 {
		_ = json.Unmarshal(b, &call.body)
	}
	fb.mu.Lock()
	fb.calls = append(fb.calls, call)
	body, ok := fb.routes[r.URL.Path]
	status := fb.status[r.URL.Path]
	fb.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func (fb *fakeBoard) callsTo(path string) []backendCall {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	var out []backendCall
	for _, c := range fb.calls {
		if c.path == path {
			out = append(out, c)
		}
	}
	return out
}

func runCLI(t *testing.T, args []string) (stdout []byte, stderr []byte, err error) {
	t.Helper()

	cmd := NewRootCmd()

	var outBuf bytes.Buffer
	var errBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)

	e := cmd.Execute()
	return outBuf.Bytes(), errBuf.Bytes(), e
}

func decodeData(t *testing.T, out []byte) any {
	t.Helper()
	var env struct {
		Data any `json:"data"`
	}
	if err := json.Unmarshal(out, &env); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	return env.Data
}

func TestExportJSONAndMarkdown(t *testing.T) {
	_, url := newFakeBoard(t)

	out, _, err := runCLI(t, []string{"export", url})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	var snap model.Snapshot
	if err := json.Unmarshal(out, &snap); err != nil {
		t.Fatalf("decode snapshot: %v\n%s", err, out)
	}
	if snap.Session.Theme != "Robots" || len(snap.Cards) != 2 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if snap.Cards[1].Position != (model.Position{X: 400, Y: 200}) {
		t.Fatalf("card position lost: %+v", snap.Cards[1])
	}

	out, _, err = runCLI(t, []string{"export", url, "--format", "markdown"})
	if err != nil {
		t.Fatalf("export markdown: %v", err)
	}
	md := string(out)
	if !strings.HasPrefix(md, "# Robots") || !strings.Contains(md, "Line follower") {
		t.Fatalf("unexpected markdown:\n%s", md)
	}
}

func TestExportToFile(t *testing.T) {
	_, url := newFakeBoard(t)
	path := filepath.Join(t.TempDir(), "board.html")

	out, _, err := runCLI(t, []string{"export", url, "--format", "html", "-o", path})
	if err != nil {
		t.Fatalf("export html: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected nothing on stdout, got %q", out)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.Contains(string(b), "<html") || !strings.Contains(string(b), "Cardboard arm") {
		t.Fatalf("unexpected html:\n%s", b)
	}
}

func TestSuggestSendsBoardContext(t *testing.T) {
	fb, url := newFakeBoard(t)

	out, _, err := runCLI(t, []string{"suggest", url})
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	got, _ := decodeData(t, out).([]any)
	if len(got) != 3 || got[0] != "Solar car" {
		t.Fatalf("unexpected suggestions: %#v", got)
	}

	calls := fb.callsTo("/brainstorm/get-suggestions")
	if len(calls) != 1 {
		t.Fatalf("expected one suggestions request, got %d", len(calls))
	}
	body := calls[0].body
	ctx, _ := body["context"].(map[string]any)
	if ctx["theme"] != "Robots" || ctx["card_count"] != float64(2) {
		t.Fatalf("unexpected context: %#v", ctx)
	}
	existing, _ := body["existing_cards"].([]any)
	if len(existing) != 2 || existing[0] != "Line follower" {
		t.Fatalf("unexpected existing cards: %#v", existing)
	}
	if len(fb.callsTo("/brainstorm/add-card")) != 0 {
		t.Fatalf("suggest without --accept must not add a card")
	}
}

func TestSuggestThemeFlagWins(t *testing.T) {
	fb, url := newFakeBoard(t)

	if _, _, err := runCLI(t, []string{"suggest", url, "--theme", "Space"}); err != nil {
		t.Fatalf("suggest: %v", err)
	}
	ctx, _ := fb.callsTo("/brainstorm/get-suggestions")[0].body["context"].(map[string]any)
	if ctx["theme"] != "Space" {
		t.Fatalf("expected flag theme, got %#v", ctx["theme"])
	}
}

func TestSuggestAcceptAddsCard(t *testing.T) {
	fb, url := newFakeBoard(t)

	if _, _, err := runCLI(t, []string{"suggest", url, "--accept", "2", "--seed", "7"}); err != nil {
		t.Fatalf("suggest --accept: %v", err)
	}
	calls := fb.callsTo("/brainstorm/add-card")
	if len(calls) != 1 {
		t.Fatalf("expected one add-card request, got %d", len(calls))
	}
	body := calls[0].body
	if body["text"] != "Maze solver" {
		t.Fatalf("unexpected text: %#v", body["text"])
	}
	if body["color"] != model.DefaultPalette.At(1) {
		t.Fatalf("expected palette colour 1, got %#v", body["color"])
	}
	if body["category"] != string(model.CategoryIASuggestion) {
		t.Fatalf("unexpected category: %#v", body["category"])
	}
	x, _ := body["position_x"].(float64)
	y, _ := body["position_y"].(float64)
	if x < model.PlacementMargin || x > defaultViewW-model.CardWidth-model.PlacementMargin {
		t.Fatalf("x out of range: %v", x)
	}
	if y < model.PlacementMargin || y > defaultViewH-model.CardHeight-model.PlacementMargin {
		t.Fatalf("y out of range: %v", y)
	}
}

func TestSuggestAcceptOutOfRange(t *testing.T) {
	fb, url := newFakeBoard(t)

	_, _, err := runCLI(t, []string{"suggest", url, "--accept", "4"})
	if err == nil {
		t.Fatalf("expected error for --accept past the list")
	}
	if ExitCode(err) != ExitUsage {
		t.Fatalf("expected usage exit code, got %d", ExitCode(err))
	}
	if len(fb.callsTo("/brainstorm/add-card")) != 0 {
		t.Fatalf("no card should be added")
	}
}

func TestAddCardWithPosition(t *testing.T) {
	fb, url := newFakeBoard(t)

	out, _, err := runCLI(t, []string{"add", url, "--text", "Robot pet", "--x", "120", "--y", "80"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	body := fb.callsTo("/brainstorm/add-card")[0].body
	if body["position_x"] != float64(120) || body["position_y"] != float64(80) {
		t.Fatalf("unexpected position: %#v", body)
	}
	if body["color"] != model.DefaultPalette.At(0) || body["category"] != "manual" {
		t.Fatalf("unexpected defaults: %#v", body)
	}
	card, _ := decodeData(t, out).(map[string]any)
	if card["id"] != float64(77) || card["text"] != "Robot pet" {
		t.Fatalf("unexpected card: %#v", card)
	}
}

func TestAddRejectsBlankText(t *testing.T) {
	fb, url := newFakeBoard(t)

	_, _, err := runCLI(t, []string{"add", url, "--text", "   "})
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if api.KindOf(err) != api.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(fb.callsTo("/brainstorm/add-card")) != 0 {
		t.Fatalf("blank card must not be sent")
	}
}

func TestMoveFailureIsJournaled(t *testing.T) {
	fb, url := newFakeBoard(t)
	fb.routes["/brainstorm/update-card-position"] = `{"success":false,"error":"card locked"}`

	_, stderr, err := runCLI(t, []string{"move", url, "2", "--x", "10", "--y", "20"})
	if err == nil {
		t.Fatalf("expected move to fail")
	}
	if ExitCode(err) != ExitApplication {
		t.Fatalf("expected application exit code, got %d", ExitCode(err))
	}
	if !strings.Contains(string(stderr), "card locked") || !strings.Contains(string(stderr), "(request ") {
		t.Fatalf("unexpected stderr: %q", stderr)
	}

	out, _, err := runCLI(t, []string{"journal"})
	if err != nil {
		t.Fatalf("journal: %v", err)
	}
	entries, _ := decodeData(t, out).([]any)
	if len(entries) != 1 {
		t.Fatalf("expected one journal entry, got %#v", entries)
	}
	e, _ := entries[0].(map[string]any)
	if e["card_id"] != float64(2) || e["x"] != float64(10) || e["session_id"] != float64(42) {
		t.Fatalf("unexpected entry: %#v", e)
	}

	out, _, err = runCLI(t, []string{"journal", "clear"})
	if err != nil {
		t.Fatalf("journal clear: %v", err)
	}
	res, _ := decodeData(t, out).(map[string]any)
	if res["cleared"] != float64(1) {
		t.Fatalf("unexpected clear result: %#v", res)
	}
}

func TestEditSendsOnlyChangedFields(t *testing.T) {
	fb, url := newFakeBoard(t)

	if _, _, err := runCLI(t, []string{"edit", url, "2", "--color", "#98FB98"}); err != nil {
		t.Fatalf("edit: %v", err)
	}
	body := fb.callsTo("/brainstorm/update-card")[0].body
	if body["color"] != "#98FB98" {
		t.Fatalf("unexpected color: %#v", body)
	}
	if _, ok := body["text"]; ok {
		t.Fatalf("text must not be sent when unchanged: %#v", body)
	}

	_, _, err := runCLI(t, []string{"edit", url, "2"})
	if err == nil || ExitCode(err) != ExitUsage {
		t.Fatalf("expected usage error for an empty edit, got %v", err)
	}
}

func TestDeleteRejectsBadCardID(t *testing.T) {
	fb, url := newFakeBoard(t)

	_, _, err := runCLI(t, []string{"delete", url, "abc"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if len(fb.callsTo("/brainstorm/delete-card")) != 0 {
		t.Fatalf("no request expected")
	}

	if _, _, err := runCLI(t, []string{"delete", url, "1"}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if body := fb.callsTo("/brainstorm/delete-card")[0].body; body["card_id"] != float64(1) {
		t.Fatalf("unexpected body: %#v", body)
	}
}

func TestClearNeedsConfirmation(t *testing.T) {
	fb, url := newFakeBoard(t)

	_, _, err := runCLI(t, []string{"clear", url})
	if err == nil || ExitCode(err) != ExitUsage {
		t.Fatalf("expected usage error, got %v", err)
	}
	if len(fb.callsTo("/brainstorm/clear-all")) != 0 {
		t.Fatalf("clear must not run without --yes")
	}

	if _, _, err := runCLI(t, []string{"clear", url, "--yes"}); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if body := fb.callsTo("/brainstorm/clear-all")[0].body; body["session_id"] != float64(42) {
		t.Fatalf("unexpected body: %#v", body)
	}
}

func TestFinishResolvesRedirect(t *testing.T) {
	_, url := newFakeBoard(t)

	out, _, err := runCLI(t, []string{"finish", url})
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	res, _ := decodeData(t, out).(map[string]any)
	redirect, _ := res["redirect"].(string)
	if !strings.HasPrefix(redirect, "http://") || !strings.HasSuffix(redirect, "/brainstorm/results/42") {
		t.Fatalf("unexpected redirect: %q", redirect)
	}
}

func TestGroupCreate(t *testing.T) {
	fb, url := newFakeBoard(t)

	out, _, err := runCLI(t, []string{"group", url, "--name", "Sensors", "--color", "#20B2AA"})
	if err != nil {
		t.Fatalf("group: %v", err)
	}
	body := fb.callsTo("/brainstorm/create-group")[0].body
	if body["name"] != "Sensors" || body["color"] != "#20B2AA" {
		t.Fatalf("unexpected body: %#v", body)
	}
	g, _ := decodeData(t, out).(map[string]any)
	if g["id"] != float64(5) {
		t.Fatalf("unexpected group: %#v", g)
	}
}

func TestMissingSessionIDIsUsageError(t *testing.T) {
	_, url := newFakeBoard(t)
	noSession := strings.TrimSuffix(url, "?session_id=42")

	_, stderr, err := runCLI(t, []string{"export", noSession})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !errors.Is(err, api.ErrSessionIDNotFound) {
		t.Fatalf("expected ErrSessionIDNotFound, got %v", err)
	}
	if ExitCode(err) != ExitUsage {
		t.Fatalf("expected usage exit code, got %d", ExitCode(err))
	}
	if len(stderr) == 0 {
		t.Fatalf("expected a message on stderr")
	}
}

func TestBackendDownIsTransportError(t *testing.T) {
	fb, url := newFakeBoard(t)
	fb.status["/brainstorm/export"] = http.StatusBadGateway

	_, _, err := runCLI(t, []string{"export", url})
	if ExitCode(err) != ExitTransport {
		t.Fatalf("expected transport exit code, got %d (%v)", ExitCode(err), err)
	}
}

func TestYAMLOutput(t *testing.T) {
	_, url := newFakeBoard(t)

	out, _, err := runCLI(t, []string{"--format", "yaml", "group", url, "--name", "Sensors"})
	if err != nil {
		t.Fatalf("group: %v", err)
	}
	if !strings.Contains(string(out), "name: Sensors") {
		t.Fatalf("unexpected yaml:\n%s", out)
	}
}

func TestConfigInitAndPath(t *testing.T) {
	newFakeBoard(t)

	out, _, err := runCLI(t, []string{"config", "path"})
	if err != nil {
		t.Fatalf("config path: %v", err)
	}
	res, _ := decodeData(t, out).(map[string]any)
	if res["exists"] != false {
		t.Fatalf("config should not exist yet: %#v", res)
	}

	if _, _, err := runCLI(t, []string{"config", "init"}); err != nil {
		t.Fatalf("config init: %v", err)
	}
	if _, _, err := runCLI(t, []string{"config", "init"}); err == nil {
		t.Fatalf("second init without --force should fail")
	}

	out, _, err = runCLI(t, []string{"config", "show"})
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(string(out), "cell_width_px: 8") {
		t.Fatalf("unexpected config:\n%s", out)
	}
}

func TestLogClosedAfterCommand(t *testing.T) {
	fb, url := newFakeBoard(t)
	fb.status["/brainstorm/delete-card"] = http.StatusInternalServerError

	for _, args := range [][]string{
		{"version"},
		{"delete", url, "1"},
	} {
		app := &App{}
		cmd := newRootCmd(app)
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs(args)
		_ = cmd.Execute()

		if app.log == nil {
			t.Fatalf("%v: logger was never set up", args)
		}
		if app.closeLog != nil {
			t.Fatalf("%v: log file left open", args)
		}
	}
	if _, err := os.Stat(filepath.Join(os.Getenv("BRAINBOARD_HOME"), "logs", "brainboard.log")); err != nil {
		t.Fatalf("log file missing: %v", err)
	}
}

func TestErrorStatusShowsBackendMessage(t *testing.T) {
	fb, url := newFakeBoard(t)
	fb.routes["/brainstorm/add-card"] = `{"success":false,"error":"Sessão não encontrada"}`
	fb.status["/brainstorm/add-card"] = http.StatusNotFound

	_, stderr, err := runCLI(t, []string{"add", url, "--text", "Robot pet"})
	if ExitCode(err) != ExitTransport {
		t.Fatalf("expected transport exit code, got %d (%v)", ExitCode(err), err)
	}
	if !strings.Contains(string(stderr), "Sessão não encontrada") {
		t.Fatalf("backend message missing from stderr: %q", stderr)
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, ExitOK},
		{errors.New("boom"), ExitFailure},
		{errUsage("bad"), ExitUsage},
		{&api.ValidationError{Message: "bad"}, ExitUsage},
		{&api.TransportError{Op: "export", StatusCode: 502}, ExitTransport},
		{&api.ApplicationError{Op: "export", Message: "nope"}, ExitApplication},
	}
	for _, tt := range tests {
		if got := ExitCode(tt.err); got != tt.want {
			t.Fatalf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
