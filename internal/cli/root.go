package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"brainboard/internal/api"
	"brainboard/internal/config"
	"brainboard/internal/format"
	"brainboard/internal/journal"
	"brainboard/internal/logging"
)

// Version is set at build time with -ldflags "-X brainboard/internal/cli.Version=...".
var Version = "dev"

type App struct {
	ConfigPath string
	PrettyJSON bool
	Format     string
	LogFile    string
	Debug      bool
	Timeout    time.Duration

	cfg      *config.Config
	log      *zap.Logger
	closeLog func()
}

func NewRootCmd() *cobra.Command {
	return newRootCmd(&App{})
}

func newRootCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "brainboard",
		Short:        "Terminal brainstorm board",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Open a board (shortcut for: brainboard open <board-url>)
  brainboard 'http://localhost:5000/brainstorm/?session_id=42'

  # Ask for suggestions and add the second one
  brainboard suggest 'http://localhost:5000/brainstorm/?session_id=42' --accept 2

  # Export the board as Markdown
  brainboard export 'http://localhost:5000/brainstorm/?session_id=42' --format markdown
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.setup()
	}
	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		app.shutdown()
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", envOr("BRAINBOARD_CONFIG", ""), "Path to config.yaml")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("BRAINBOARD_FORMAT", "json"), "Output format (json|yaml; export also takes markdown|html)")
	cmd.PersistentFlags().StringVar(&app.LogFile, "log-file", "", "Log file (default ~/.brainboard/logs/brainboard.log)")
	cmd.PersistentFlags().BoolVar(&app.Debug, "debug", false, "Log at debug level")
	cmd.PersistentFlags().DurationVar(&app.Timeout, "timeout", 0, "Per-request timeout (overrides http.timeout)")

	cmd.AddCommand(newOpenCmd(app))
	cmd.AddCommand(newSuggestCmd(app))
	cmd.AddCommand(newAddCmd(app))
	cmd.AddCommand(newMoveCmd(app))
	cmd.AddCommand(newEditCmd(app))
	cmd.AddCommand(newDeleteCmd(app))
	cmd.AddCommand(newClearCmd(app))
	cmd.AddCommand(newFinishCmd(app))
	cmd.AddCommand(newGroupCmd(app))
	cmd.AddCommand(newExportCmd(app))
	cmd.AddCommand(newJournalCmd(app))
	cmd.AddCommand(newRecentCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newVersionCmd(app))

	return cmd
}

// setup loads the config and opens the log. A log that cannot be opened is not fatal.
func (app *App) setup() error {
	path := app.ConfigPath
	if path == "" {
		p, err := config.Path()
		if err != nil {
			return err
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if app.LogFile != "" {
		cfg.Log.File = app.LogFile
	}
	if app.Debug {
		cfg.Log.Level = "debug"
	}
	if app.Timeout > 0 {
		cfg.HTTP.Timeout = app.Timeout
	}
	app.cfg = cfg

	logPath, err := cfg.LogPath()
	if err != nil {
		app.log = zap.NewNop()
		return nil
	}
	app.log, app.closeLog, _ = logging.NewOrNop(logPath, cfg.Log.Level)
	return nil
}

// shutdown flushes and closes the log file.
func (app *App) shutdown() {
	if app.log != nil {
		_ = app.log.Sync()
	}
	if app.closeLog != nil {
		app.closeLog()
		app.closeLog = nil
	}
}

// board parses a board URL for a scripted command; unlike the TUI, a missing session id is an
// error here.
func (app *App) board(raw string) (*api.Client, api.BoardURL, error) {
	b, err := api.ParseBoardURL(raw)
	if err != nil {
		return nil, b, err
	}
	c, err := app.client(b.Base)
	if err != nil {
		return nil, b, err
	}
	return c, b, nil
}

func (app *App) client(base string) (*api.Client, error) {
	opts := []api.Option{api.WithLogger(app.log)}
	if app.cfg.HTTP.Timeout > 0 {
		opts = append(opts, api.WithTimeout(app.cfg.HTTP.Timeout))
	}
	if ua := strings.TrimSpace(app.cfg.HTTP.UserAgent); ua != "" {
		opts = append(opts, api.WithUserAgent(ua+"/"+Version))
	}
	return api.New(base, opts...)
}

func (app *App) openJournal(ctx context.Context) (*journal.Journal, error) {
	path, err := app.cfg.JournalPath()
	if err != nil {
		return nil, err
	}
	return journal.Open(ctx, path)
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

// writeErr reports a failed command on stderr. Cobra skips PersistentPostRunE after an
// error, so the log is closed here as well.
func (app *App) writeErr(cmd *cobra.Command, err error) error {
	app.shutdown()
	msg := err.Error()
	if id := api.RequestIDOf(err); id != "" {
		msg = fmt.Sprintf("%s (request %s)", msg, id)
	}
	fmt.Fprintln(cmd.ErrOrStderr(), msg)
	return err
}
