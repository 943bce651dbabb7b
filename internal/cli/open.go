package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"brainboard/internal/api"
	"brainboard/internal/tui"
)

func newOpenCmd(app *App) *cobra.Command {
	var theme, description string

	cmd := &cobra.Command{
		Use:   "open <board-url>",
		Short: "Open a board in the terminal",
		Long: "Open a board in the terminal. Without a session_id in the URL the board starts halted " +
			"and only quitting works.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			b, initErr := api.ParseBoardURL(args[0])

			opts := tui.Options{
				Board:       b,
				Logger:      app.log,
				Config:      app.cfg,
				Theme:       theme,
				Description: description,
			}
			if b.Base != "" {
				c, err := app.client(b.Base)
				if err != nil && initErr == nil {
					initErr = err
				}
				if c != nil {
					opts.Backend = c
				}
			}
			opts.InitErr = initErr

			j, err := app.openJournal(ctx)
			if err != nil {
				app.log.Warn("journal unavailable", zap.Error(err))
			} else {
				defer j.Close()
				opts.Journal = j
			}

			if err := tui.Run(ctx, opts); err != nil {
				return app.writeErr(cmd, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&theme, "theme", "", "Theme sent with suggestion requests (overrides the board's)")
	cmd.Flags().StringVar(&description, "description", "", "Description sent with suggestion requests")
	return cmd
}
