package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"brainboard/internal/model"
)

// Config is the user configuration read from config.yaml. Every field is optional.
type Config struct {
	DefaultTheme       string `yaml:"default_theme"`
	DefaultDescription string `yaml:"default_description"`

	HTTP    HTTPConfig    `yaml:"http"`
	Board   BoardConfig   `yaml:"board"`
	Toasts  ToastConfig   `yaml:"toasts"`
	Modal   ModalConfig   `yaml:"modal"`
	Keys    KeyMappings   `yaml:"keys"`
	Log     LogConfig     `yaml:"log"`
	Journal JournalConfig `yaml:"journal"`
}

type HTTPConfig struct {
	// Timeout applies to each backend request; zero means none.
	Timeout   time.Duration `yaml:"timeout" validate:"gte=0"`
	UserAgent string        `yaml:"user_agent"`
}

// BoardConfig maps terminal cells onto board pixels.
type BoardConfig struct {
	CellWidthPx  int `yaml:"cell_width_px" validate:"gte=0"`
	CellHeightPx int `yaml:"cell_height_px" validate:"gte=0"`
}

type ToastConfig struct {
	SuccessMs int `yaml:"success_ms" validate:"gte=0"`
	ErrorMs   int `yaml:"error_ms" validate:"gte=0"`
	InfoMs    int `yaml:"info_ms" validate:"gte=0"`
	WarningMs int `yaml:"warning_ms" validate:"gte=0"`
}

type ModalConfig struct {
	FadeMs int `yaml:"fade_ms" validate:"gte=0"`
}

type LogConfig struct {
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	File  string `yaml:"file"`
}

type JournalConfig struct {
	Path string `yaml:"path"`
}

const (
	defaultCellWidthPx  = 8
	defaultCellHeightPx = 16
	defaultSuccessMs    = 4000
	defaultErrorMs      = 6000
	defaultInfoMs       = 3000
	defaultWarningMs    = 3000
	defaultFadeMs       = 300
	defaultLogLevel     = "info"
	defaultUserAgent    = "brainboard"
)

// Default returns the configuration used when no file exists.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.DefaultTheme) == "" {
		c.DefaultTheme = model.DefaultTheme
	}
	if strings.TrimSpace(c.HTTP.UserAgent) == "" {
		c.HTTP.UserAgent = defaultUserAgent
	}
	if c.Board.CellWidthPx == 0 {
		c.Board.CellWidthPx = defaultCellWidthPx
	}
	if c.Board.CellHeightPx == 0 {
		c.Board.CellHeightPx = defaultCellHeightPx
	}
	if c.Toasts.SuccessMs == 0 {
		c.Toasts.SuccessMs = defaultSuccessMs
	}
	if c.Toasts.ErrorMs == 0 {
		c.Toasts.ErrorMs = defaultErrorMs
	}
	if c.Toasts.InfoMs == 0 {
		c.Toasts.InfoMs = defaultInfoMs
	}
	if c.Toasts.WarningMs == 0 {
		c.Toasts.WarningMs = defaultWarningMs
	}
	if c.Modal.FadeMs == 0 {
		c.Modal.FadeMs = defaultFadeMs
	}
	if strings.TrimSpace(c.Log.Level) == "" {
		c.Log.Level = defaultLogLevel
	}
	c.Keys.applyDefaults()
}

var validate = validator.New()

// Load reads the config file at path. An empty path resolves through Path(). A missing file
// yields defaults; missing fields are filled with defaults.
func Load(path string) (*Config, error) {
	if strings.TrimSpace(path) == "" {
		p, err := Path()
		if err != nil {
			// No home directory: run on defaults.
			return Default(), nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := validate.Struct(&c); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	c.applyDefaults()
	return &c, nil
}

// Save writes c to path, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Path resolves the config file location: $BRAINBOARD_CONFIG, then
// $XDG_CONFIG_HOME/brainboard/config.yaml, then ~/.config/brainboard/config.yaml.
func Path() (string, error) {
	if v := strings.TrimSpace(os.Getenv("BRAINBOARD_CONFIG")); v != "" {
		return v, nil
	}
	if v := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); v != "" {
		return filepath.Join(v, "brainboard", "config.yaml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "brainboard", "config.yaml"), nil
}

// DataDir is where logs and the sync journal live: $BRAINBOARD_HOME or ~/.brainboard.
func DataDir() (string, error) {
	// Tests point this at a temp dir.
	if v := strings.TrimSpace(os.Getenv("BRAINBOARD_HOME")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".brainboard"), nil
}

// LogPath returns the configured log file, defaulting to <DataDir>/logs/brainboard.log.
func (c *Config) LogPath() (string, error) {
	if p := strings.TrimSpace(c.Log.File); p != "" {
		return p, nil
	}
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "logs", "brainboard.log"), nil
}

// JournalPath returns the sqlite journal location, defaulting to <DataDir>/journal.sqlite.
func (c *Config) JournalPath() (string, error) {
	if p := strings.TrimSpace(c.Journal.Path); p != "" {
		return p, nil
	}
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "journal.sqlite"), nil
}

func (t ToastConfig) Success() time.Duration { return ms(t.SuccessMs) }
func (t ToastConfig) Error() time.Duration   { return ms(t.ErrorMs) }
func (t ToastConfig) Info() time.Duration    { return ms(t.InfoMs) }
func (t ToastConfig) Warning() time.Duration { return ms(t.WarningMs) }
func (m ModalConfig) Fade() time.Duration    { return ms(m.FadeMs) }

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }
