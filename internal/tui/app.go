package tui

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"brainboard/internal/api"
	"brainboard/internal/board"
	"brainboard/internal/config"
	"brainboard/internal/engine"
	"brainboard/internal/journal"
	"brainboard/internal/model"
)

// Rows taken by the header and the status line.
const (
	boardTop    = 1
	chromeLines = 2
)

// Options configure the interactive board.
type Options struct {
	Board api.BoardURL
	// InitErr is the error from parsing the board URL. When set the board starts halted.
	InitErr error

	Backend Backend
	Journal Journal
	Logger  *zap.Logger
	Config  *config.Config

	// Theme and Description override what the backend reports for the suggestion context.
	Theme       string
	Description string

	// Rand seeds card placement; nil picks a random seed.
	Rand *rand.Rand
}

type appModel struct {
	ctx     context.Context
	backend Backend
	journal Journal
	log     *zap.Logger
	cfg     *config.Config
	keys    keyMap
	palette model.Palette

	boardURL api.BoardURL
	halted   bool
	loaded   bool

	board  *board.Board
	reader *board.Reader
	engine *engine.Engine
	placer *engine.Placer

	width    int
	height   int
	selected int

	modal  *modal
	styles *styleRegistry
	toasts []toast
	menu   *engine.Menu
	seq    int

	spinner spinner.Model
	// after schedules msg once d has elapsed; tests replace it to avoid real timers.
	after func(d time.Duration, msg tea.Msg) tea.Cmd

	// What an in-flight save came from, so a failure can restore it.
	pendingSuggestions []string
	pendingCursor      int
	draft              cardDraft

	initCmds []tea.Cmd
}

type cardDraft struct {
	text     string
	colorIdx int
	cardID   int
}

func newAppModel(ctx context.Context, opts Options) appModel {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := appModel{
		ctx:      ctx,
		backend:  opts.Backend,
		journal:  opts.Journal,
		log:      log,
		cfg:      cfg,
		keys:     newKeyMap(cfg.Keys),
		palette:  model.DefaultPalette,
		boardURL: opts.Board,
		board:    board.New(model.Session{ID: opts.Board.SessionID}),
		engine:   engine.New(log),
		placer:   engine.NewPlacer(opts.Rand),
		styles:   newStyleRegistry(),
		spinner:  sp,
		after: func(d time.Duration, msg tea.Msg) tea.Cmd {
			return tea.Tick(d, func(time.Time) tea.Msg { return msg })
		},
	}
	m.reader = board.NewReader(m.board,
		board.Static("flags", opts.Theme, opts.Description),
		board.SessionProbe(m.board),
		board.Static("config", cfg.DefaultTheme, cfg.DefaultDescription),
	)

	initErr := opts.InitErr
	if initErr == nil && opts.Board.SessionID <= 0 {
		initErr = &api.InitializationError{Err: api.ErrSessionIDNotFound}
	}
	if initErr == nil && opts.Backend == nil {
		initErr = &api.InitializationError{Message: "no backend configured"}
	}
	if initErr != nil {
		// Halted: nothing is attached and only quit works.
		m.halted = true
		msg := api.Message(initErr, "Initialization failed")
		if errors.Is(initErr, api.ErrSessionIDNotFound) {
			msg = "Session ID not found"
		}
		log.Error("board halted", zap.Error(initErr))
		m.initCmds = append(m.initCmds, m.toastError(msg))
		return m
	}

	m.engine.Watch(m.board)
	m.initCmds = append(m.initCmds, m.startLoad())
	return m
}

func (m appModel) Init() tea.Cmd {
	return tea.Batch(m.initCmds...)
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		vw, vh := m.viewportPx()
		m.engine.SetViewport(vw, vh)
		if m.modal != nil && m.modal.kind == modalHelp {
			m.resizeHelp()
		}
		return m, nil

	case toastExpireMsg:
		return m, m.expireToast(msg.seq)

	case toastRemoveMsg:
		m.removeToast(msg.seq)
		return m, nil

	case modalFadeDoneMsg:
		m.finishModalFade(msg.seq)
		return m, nil

	case spinner.TickMsg:
		if m.modal == nil || m.modal.kind != modalLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case boardLoadedMsg:
		return m, m.handleBoardLoaded(msg)

	case suggestionsMsg:
		return m, m.handleSuggestions(msg)

	case cardCreatedMsg:
		return m, m.handleCardCreated(msg)

	case cardUpdatedMsg:
		return m, m.handleCardUpdated(msg)

	case cardDeletedMsg:
		return m, m.handleCardDeleted(msg)

	case positionSavedMsg:
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m appModel) quit() (tea.Model, tea.Cmd) {
	m.hideAllModals()
	m.menu = nil
	return m, tea.Quit
}

func (m appModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m.quit()
	}
	if m.halted {
		if key.Matches(msg, m.keys.Quit) {
			return m.quit()
		}
		return m, nil
	}
	if m.modalOpen() {
		return m.handleModalKey(msg)
	}
	if m.menu != nil {
		return m.handleMenuKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Close):
		m.closeOverlays()
		return m, nil
	case key.Matches(msg, m.keys.AddCard):
		return m, m.openAddCard()
	case key.Matches(msg, m.keys.Suggest):
		return m, m.startSuggestions()
	case key.Matches(msg, m.keys.Help):
		m.openHelp()
		return m, nil
	case key.Matches(msg, m.keys.Reload):
		return m, m.startLoad()
	case key.Matches(msg, m.keys.DismissToasts):
		m.dismissAllToasts()
		return m, nil
	case key.Matches(msg, m.keys.Menu):
		m.openMenuForSelected()
		return m, nil
	case key.Matches(msg, m.keys.NudgeUp):
		return m, m.nudge(0, -1)
	case key.Matches(msg, m.keys.NudgeDown):
		return m, m.nudge(0, 1)
	case key.Matches(msg, m.keys.NudgeLeft):
		return m, m.nudge(-1, 0)
	case key.Matches(msg, m.keys.NudgeRight):
		return m, m.nudge(1, 0)
	case key.Matches(msg, m.keys.SelectUp):
		m.selectToward(0, -1)
	case key.Matches(msg, m.keys.SelectDown):
		m.selectToward(0, 1)
	case key.Matches(msg, m.keys.SelectLeft):
		m.selectToward(-1, 0)
	case key.Matches(msg, m.keys.SelectRight):
		m.selectToward(1, 0)
	}
	return m, nil
}

// closeOverlays is Escape: every modal and the context menu go away at once, and a drag in
// progress snaps back.
func (m *appModel) closeOverlays() {
	m.hideAllModals()
	m.menu = nil
	if id, p, ok := m.engine.CancelDrag(); ok {
		m.board.Move(id, p)
	}
}

func (m appModel) handleModalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Close) {
		m.closeOverlays()
		return m, nil
	}
	switch m.modal.kind {
	case modalError:
		return m.handleErrorKey(msg)
	case modalSuggestions:
		return m.handleSuggestionsKey(msg)
	case modalAddCard:
		return m.handleAddCardKey(msg)
	case modalColor:
		return m.handleColorKey(msg)
	case modalHelp:
		return m.handleHelpKey(msg)
	}
	return m, nil
}

func (m appModel) handleErrorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	md := m.modal
	switch msg.String() {
	case "left", "h", "shift+tab":
		md.button = (md.button - 1 + len(md.buttons)) % len(md.buttons)
	case "right", "l", "tab":
		md.button = (md.button + 1) % len(md.buttons)
	case "r":
		if md.retry != retryNone {
			return m, m.runRetry(md.retry)
		}
	case "enter", " ":
		if md.buttons[md.button] == buttonRetry {
			return m, m.runRetry(md.retry)
		}
		return m, m.hideModal(modalError)
	}
	return m, nil
}

func (m *appModel) runRetry(r retryKind) tea.Cmd {
	switch r {
	case retrySuggestions:
		return m.startSuggestions()
	case retryLoad:
		return m.startLoad()
	}
	return m.hideModal(modalError)
}

func (m *appModel) showError(title, message string, retry retryKind) {
	buttons := []modalButton{buttonClose}
	if retry != retryNone {
		buttons = []modalButton{buttonRetry, buttonClose}
	}
	m.showModal(&modal{kind: modalError, title: title, message: message, buttons: buttons, retry: retry})
}

func (m *appModel) showLoading(title, subtitle string) tea.Cmd {
	m.showModal(&modal{kind: modalLoading, title: title, subtitle: subtitle})
	return m.spinner.Tick
}

// startLoad fetches the whole board. It is the initial load and the reload key.
func (m *appModel) startLoad() tea.Cmd {
	spin := m.showLoading("Loading board…", m.boardURL.String())
	ctx, backend, sid := m.ctx, m.backend, m.boardURL.SessionID
	return tea.Batch(spin, func() tea.Msg {
		snap, err := backend.Export(ctx, sid)
		return boardLoadedMsg{snap: snap, err: err}
	})
}

func (m *appModel) handleBoardLoaded(msg boardLoadedMsg) tea.Cmd {
	if msg.err != nil {
		m.log.Warn("board load failed", zap.Error(msg.err), zap.String("request_id", api.RequestIDOf(msg.err)))
		m.showError("Could not load the board", api.Message(msg.err, "The board could not be loaded."), retryLoad)
		return nil
	}
	fade := m.hideModal(modalLoading)
	removed := m.board.Load(msg.snap)
	m.engine.Forget(removed...)
	if _, ok := m.board.Find(m.selected); !ok {
		m.selected = 0
		if c, ok := m.board.CardAt(0); ok {
			m.selected = c.ID
		}
	}
	if m.menu != nil {
		if _, ok := m.board.Find(m.menu.CardID); !ok {
			m.menu = nil
		}
	}
	m.loaded = true
	return tea.Batch(fade, m.touchRecent())
}

func (m *appModel) touchRecent() tea.Cmd {
	if m.journal == nil {
		return nil
	}
	ctx, j, log := m.ctx, m.journal, m.log
	rb := journal.RecentBoard{URL: m.boardURL.String(), SessionID: m.boardURL.SessionID, Theme: m.board.Session().Theme}
	return func() tea.Msg {
		if err := j.Touch(ctx, rb); err != nil {
			log.Debug("recent board not recorded", zap.Error(err))
		}
		return nil
	}
}

// viewportPx is the board area in pixels. Before the first resize a desktop-sized board is
// assumed.
func (m appModel) viewportPx() (float64, float64) {
	if m.width <= 0 || m.height <= chromeLines {
		return 1024, 768
	}
	return float64(m.width * m.cfg.Board.CellWidthPx), float64((m.height - chromeLines) * m.cfg.Board.CellHeightPx)
}

func (m appModel) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}
	boardH := m.height - chromeLines
	if boardH < 1 {
		boardH = 1
	}

	view := strings.Join([]string{
		m.renderHeader(),
		m.renderBoard(m.width, boardH),
		m.renderStatus(),
	}, "\n")

	if m.menu != nil {
		view = placeOverlay(m.menu.X, m.menu.Y, m.renderMenu(), view)
	}
	if m.modal != nil {
		mv := m.renderModal()
		w, h := blockSize(mv)
		x, y := centerIn(w, h, m.width, m.height)
		view = placeOverlay(x, y, mv, dimBackground(view))
	}
	return m.overlayToasts(view)
}

func (m appModel) renderHeader() string {
	s := m.board.Session()
	theme := s.Theme
	if theme == "" {
		theme = m.reader.SessionContext().Theme
	}
	left := lipgloss.NewStyle().Bold(true).Render("brainboard")
	parts := []string{left, theme}
	if m.boardURL.SessionID > 0 {
		parts = append(parts, fmt.Sprintf("session %d", m.boardURL.SessionID))
	}
	parts = append(parts, fmt.Sprintf("%d cards", m.board.Len()))
	line := strings.Join(parts, styleMuted().Render("  ·  "))
	return normalizePane(line, m.width, 1)
}

func (m appModel) renderStatus() string {
	var line string
	switch {
	case m.halted:
		line = lipgloss.NewStyle().Foreground(colorError).Render("halted") + styleMuted().Render("  ·  press q to quit")
	case m.menu != nil:
		line = styleMuted().Render("↑/↓ choose · enter apply · esc close")
	default:
		line = styleMuted().Render("tab add · ctrl+s suggest · m menu · HJKL move · r reload · ? help · q quit")
	}
	return normalizePane(line, m.width, 1)
}
