package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a JSON logger appending to path and the func that closes the file. The terminal
// belongs to the TUI, so nothing is written to stdout or stderr. Callers Sync the logger and
// then call close before exit.
func New(path, level string) (*zap.Logger, func(), error) {
	lvl := zapcore.InfoLevel
	if s := strings.TrimSpace(level); s != "" {
		parsed, err := zapcore.ParseLevel(s)
		if err != nil {
			return nil, nil, fmt.Errorf("log level: %w", err)
		}
		lvl = parsed
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	sink, closeSink, err := zap.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), sink, lvl)
	return zap.New(core, zap.AddCaller(), zap.ErrorOutput(sink)), closeSink, nil
}

// NewOrNop falls back to a no-op logger when the log file cannot be opened; a broken log
// location must not stop the board from starting.
func NewOrNop(path, level string) (*zap.Logger, func(), error) {
	l, closeFn, err := New(path, level)
	if err != nil {
		return zap.NewNop(), func() {}, err
	}
	return l, closeFn, nil
}
