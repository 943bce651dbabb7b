package cli

import (
	"github.com/spf13/cobra"

	"brainboard/internal/api"
)

func newClearCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear <board-url>",
		Short: "Delete every card on a board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return app.writeErr(cmd, errUsage("clear deletes every card; pass --yes to confirm"))
			}
			c, b, err := app.board(args[0])
			if err != nil {
				return app.writeErr(cmd, err)
			}
			if err := c.ClearAll(cmd.Context(), b.SessionID); err != nil {
				return app.writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"session_id": b.SessionID, "cleared": true}})
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm deleting every card")
	return cmd
}

func newFinishCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "finish <board-url>",
		Short: "Finish a brainstorm session",
		Long:  "Finish a brainstorm session and print the page the backend redirects to.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, b, err := app.board(args[0])
			if err != nil {
				return app.writeErr(cmd, err)
			}
			redirect, err := c.FinishSession(cmd.Context(), b.SessionID)
			if err != nil {
				return app.writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"session_id": b.SessionID, "redirect": redirect}})
		},
	}
}

func newGroupCmd(app *App) *cobra.Command {
	var name, description, color string

	cmd := &cobra.Command{
		Use:   "group <board-url>",
		Short: "Create a card group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, b, err := app.board(args[0])
			if err != nil {
				return app.writeErr(cmd, err)
			}
			g, err := c.CreateGroup(cmd.Context(), api.CreateGroupRequest{
				SessionID:   b.SessionID,
				Name:        name,
				Description: description,
				Color:       color,
			})
			if err != nil {
				return app.writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": g})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Group name")
	cmd.Flags().StringVar(&description, "description", "", "Group description")
	cmd.Flags().StringVar(&color, "color", "", "Group colour (#RRGGBB)")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}
