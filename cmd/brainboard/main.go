package main

import (
	"os"
	"strings"

	"brainboard/internal/cli"
)

func isBoardURL(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func rewriteDirectBoardArgs(argv []string) []string {
	// Convenience: `brainboard <board-url>` works like `brainboard open <board-url>`.
	//
	// Cobra treats the first non-flag token as a subcommand, so we rewrite argv before parsing.
	// Persistent flags may come first (e.g. `brainboard --debug <url>`), so we look for the first
	// positional token, not just argv[1].
	if len(argv) < 2 {
		return argv
	}

	// Unknown flags are skipped without consuming a value so the URL is never swallowed.
	valueFlags := map[string]bool{
		"--config":   true,
		"--format":   true,
		"--log-file": true,
		"--timeout":  true,
	}
	boolFlags := map[string]bool{
		"--pretty": true,
		"--debug":  true,
	}

	insertOpen := func(i int) []string {
		out := make([]string, 0, len(argv)+1)
		out = append(out, argv[:i]...)
		out = append(out, "open")
		return append(out, argv[i:]...)
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		if a == "" {
			continue
		}
		if a == "--" {
			// Cobra reads everything after "--" as arguments, so the subcommand goes before it.
			if i+1 < len(argv) && isBoardURL(argv[i+1]) {
				return insertOpen(i)
			}
			return argv
		}
		if strings.HasPrefix(a, "-") {
			if strings.Contains(a, "=") || boolFlags[a] {
				continue
			}
			if valueFlags[a] {
				i++
			}
			continue
		}

		if isBoardURL(a) {
			return insertOpen(i)
		}
		return argv
	}
	return argv
}

func main() {
	os.Args = rewriteDirectBoardArgs(os.Args)

	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(cli.ExitCode(err))
	}
}
