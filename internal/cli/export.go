package cli

import (
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"brainboard/internal/export"
)

func newExportCmd(app *App) *cobra.Command {
	var out, style string
	var render bool
	var width int

	cmd := &cobra.Command{
		Use:   "export <board-url>",
		Short: "Export a board",
		Long: "Export a board. --format picks json, yaml, markdown or html; --render prints the " +
			"markdown styled for the terminal instead.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, b, err := app.board(args[0])
			if err != nil {
				return app.writeErr(cmd, err)
			}
			snap, err := c.Export(cmd.Context(), b.SessionID)
			if err != nil {
				return app.writeErr(cmd, err)
			}

			w := cmd.OutOrStdout()
			if strings.TrimSpace(out) != "" {
				f, err := os.Create(out)
				if err != nil {
					return app.writeErr(cmd, err)
				}
				defer f.Close()
				w = f
			}

			if render {
				s, err := export.Render(snap, width, style)
				if err != nil {
					return app.writeErr(cmd, err)
				}
				if _, err := io.WriteString(w, s); err != nil {
					return app.writeErr(cmd, err)
				}
				return nil
			}
			if err := export.Write(w, snap, app.Format, app.PrettyJSON); err != nil {
				return app.writeErr(cmd, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "", "Write to a file instead of stdout")
	cmd.Flags().BoolVar(&render, "render", false, "Render markdown for the terminal")
	cmd.Flags().IntVar(&width, "width", 80, "Wrap width for --render")
	cmd.Flags().StringVar(&style, "style", "dark", "Style for --render (dark|light|notty|ascii)")
	return cmd
}
