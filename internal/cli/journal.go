package cli

import (
	"github.com/spf13/cobra"
)

func newJournalCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "List card moves the backend did not save",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			j, err := app.openJournal(ctx)
			if err != nil {
				return app.writeErr(cmd, err)
			}
			defer j.Close()
			fs, err := j.Failures(ctx, limit)
			if err != nil {
				return app.writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": fs, "meta": map[string]any{"count": len(fs)}})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum entries to list (newest first)")

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Forget recorded failures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			j, err := app.openJournal(ctx)
			if err != nil {
				return app.writeErr(cmd, err)
			}
			defer j.Close()
			n, err := j.ClearFailures(ctx)
			if err != nil {
				return app.writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"cleared": n}})
		},
	})
	return cmd
}

func newRecentCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List recently opened boards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			j, err := app.openJournal(ctx)
			if err != nil {
				return app.writeErr(cmd, err)
			}
			defer j.Close()
			rs, err := j.Recent(ctx, limit)
			if err != nil {
				return app.writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": rs})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum boards to list")
	return cmd
}
