package cli

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"brainboard/internal/api"
	"brainboard/internal/board"
	"brainboard/internal/engine"
	"brainboard/internal/journal"
	"brainboard/internal/model"
)

// Scripted commands have no window, so random placement uses a desktop-sized viewport.
const (
	defaultViewW = 1280
	defaultViewH = 800
)

func parseCardID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || id <= 0 {
		return 0, &api.ValidationError{Field: "card_id", Message: fmt.Sprintf("invalid card id %q", s)}
	}
	return id, nil
}

func newSuggestCmd(app *App) *cobra.Command {
	var theme, description string
	var accept int
	var seed uint64

	cmd := &cobra.Command{
		Use:   "suggest <board-url>",
		Short: "Ask the backend for card suggestions",
		Long: "Ask the backend for card suggestions based on the board's theme and existing cards. " +
			"With --accept N the N-th suggestion is added to the board.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, b, err := app.board(args[0])
			if err != nil {
				return app.writeErr(cmd, err)
			}
			snap, err := c.Export(ctx, b.SessionID)
			if err != nil {
				return app.writeErr(cmd, err)
			}

			bd := board.New(model.Session{ID: b.SessionID})
			bd.Load(snap)
			reader := board.NewReader(bd,
				board.Static("flags", theme, description),
				board.SessionProbe(bd),
				board.Static("config", app.cfg.DefaultTheme, app.cfg.DefaultDescription),
			)
			sc := reader.SessionContext()

			list, err := c.RequestSuggestions(ctx, b.SessionID, sc, reader.ExistingCards())
			if err != nil {
				return app.writeErr(cmd, err)
			}
			if accept == 0 {
				return writeOut(cmd, app, map[string]any{"data": list, "meta": map[string]any{"context": sc}})
			}
			if accept < 1 || accept > len(list) {
				return app.writeErr(cmd, &api.ValidationError{Field: "accept", Message: fmt.Sprintf("must be between 1 and %d", len(list))})
			}

			i := accept - 1
			var rng *rand.Rand
			if cmd.Flags().Changed("seed") {
				rng = rand.New(rand.NewPCG(seed, seed))
			}
			card, err := c.CreateCard(ctx, api.CreateCardRequest{
				SessionID: b.SessionID,
				Text:      list[i],
				Color:     model.DefaultPalette.At(i),
				Category:  model.CategoryIASuggestion,
				Position:  engine.NewPlacer(rng).RandomPosition(defaultViewW, defaultViewH),
			})
			if err != nil {
				return app.writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": card, "meta": map[string]any{"suggestions": list}})
		},
	}

	cmd.Flags().StringVar(&theme, "theme", "", "Theme to send (overrides the board's)")
	cmd.Flags().StringVar(&description, "description", "", "Description to send")
	cmd.Flags().IntVar(&accept, "accept", 0, "Add the N-th suggestion (1-based) to the board")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Seed for random placement")
	return cmd
}

func newAddCmd(app *App) *cobra.Command {
	var text, color, category string
	var x, y float64

	cmd := &cobra.Command{
		Use:   "add <board-url>",
		Short: "Add a card",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, b, err := app.board(args[0])
			if err != nil {
				return app.writeErr(cmd, err)
			}
			pos := engine.NewPlacer(nil).RandomPosition(defaultViewW, defaultViewH)
			if cmd.Flags().Changed("x") {
				pos.X = x
			}
			if cmd.Flags().Changed("y") {
				pos.Y = y
			}
			if color == "" {
				color = model.DefaultPalette.At(0)
			}
			card, err := c.CreateCard(cmd.Context(), api.CreateCardRequest{
				SessionID: b.SessionID,
				Text:      text,
				Color:     color,
				Category:  model.Category(category),
				Position:  pos,
			})
			if err != nil {
				return app.writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": card})
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "Card text")
	cmd.Flags().StringVar(&color, "color", "", "Card colour (#RRGGBB, default the first palette colour)")
	cmd.Flags().StringVar(&category, "category", string(model.CategoryManual), "Card category")
	cmd.Flags().Float64Var(&x, "x", 0, "X position in pixels (default random)")
	cmd.Flags().Float64Var(&y, "y", 0, "Y position in pixels (default random)")
	_ = cmd.MarkFlagRequired("text")
	return cmd
}

func newMoveCmd(app *App) *cobra.Command {
	var x, y float64

	cmd := &cobra.Command{
		Use:   "move <board-url> <card-id>",
		Short: "Move a card",
		Long:  "Move a card. A failed update is recorded in the journal like one from the board.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, b, err := app.board(args[0])
			if err != nil {
				return app.writeErr(cmd, err)
			}
			id, err := parseCardID(args[1])
			if err != nil {
				return app.writeErr(cmd, err)
			}
			if _, err := c.UpdateCardPosition(ctx, id, x, y); err != nil {
				app.recordFailure(cmd, journal.Failure{SessionID: b.SessionID, CardID: id, X: x, Y: y, Error: err.Error(), RequestID: api.RequestIDOf(err), At: time.Now()})
				return app.writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"card_id": id, "x": x, "y": y}})
		},
	}

	cmd.Flags().Float64Var(&x, "x", 0, "X position in pixels")
	cmd.Flags().Float64Var(&y, "y", 0, "Y position in pixels")
	_ = cmd.MarkFlagRequired("x")
	_ = cmd.MarkFlagRequired("y")
	return cmd
}

// recordFailure journals a failed position update; a journal that cannot be opened is only
// logged.
func (app *App) recordFailure(cmd *cobra.Command, f journal.Failure) {
	ctx := cmd.Context()
	j, err := app.openJournal(ctx)
	if err != nil {
		app.log.Warn("journal unavailable", zap.Error(err))
		return
	}
	defer j.Close()
	if _, err := j.RecordFailure(ctx, f); err != nil {
		app.log.Warn("journal write failed", zap.Error(err))
	}
}

func newEditCmd(app *App) *cobra.Command {
	var text, color string

	cmd := &cobra.Command{
		Use:   "edit <board-url> <card-id>",
		Short: "Change a card's text or colour",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := app.board(args[0])
			if err != nil {
				return app.writeErr(cmd, err)
			}
			id, err := parseCardID(args[1])
			if err != nil {
				return app.writeErr(cmd, err)
			}
			req := api.UpdateCardRequest{CardID: id}
			if cmd.Flags().Changed("text") {
				req.Text = &text
			}
			if cmd.Flags().Changed("color") {
				req.Color = &color
			}
			if req.Text == nil && req.Color == nil {
				return app.writeErr(cmd, &api.ValidationError{Message: "nothing to change: pass --text and/or --color"})
			}
			card, err := c.UpdateCard(cmd.Context(), req)
			if err != nil {
				return app.writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": card})
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "New text")
	cmd.Flags().StringVar(&color, "color", "", "New colour (#RRGGBB)")
	return cmd
}

func newDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <board-url> <card-id>",
		Short: "Delete a card",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := app.board(args[0])
			if err != nil {
				return app.writeErr(cmd, err)
			}
			id, err := parseCardID(args[1])
			if err != nil {
				return app.writeErr(cmd, err)
			}
			if err := c.DeleteCard(cmd.Context(), id); err != nil {
				return app.writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"card_id": id, "deleted": true}})
		},
	}
}
