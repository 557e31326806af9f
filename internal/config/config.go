// Package config loads fsmdiagram settings from a YAML file, an optional
// .env file and the environment, in that order of precedence (lowest first).
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the user's home directory.
const FileName = ".fsmdiagram.yaml"

// Environment overrides.
const (
	EnvAddr      = "FSMDIAGRAM_ADDR"
	EnvLogLevel  = "FSMDIAGRAM_LOG_LEVEL"
	EnvExportDir = "FSMDIAGRAM_EXPORT_DIR"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Canvas holds renderer geometry and the starting diagram.
type Canvas struct {
	NodeWidth  float64 `yaml:"node_width"`
	NodeHeight float64 `yaml:"node_height"`
	Seed       bool    `yaml:"seed"`
}

// Export holds defaults for diagram export.
type Export struct {
	Format string `yaml:"format"`
	Dir    string `yaml:"dir"`
}

// Serve holds bridge server settings.
type Serve struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Log holds logging settings.
type Log struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Config is the full settings tree.
type Config struct {
	Canvas Canvas `yaml:"canvas"`
	Export Export `yaml:"export"`
	Serve  Serve  `yaml:"serve"`
	Log    Log    `yaml:"log"`
}

// Default returns the built-in configuration.
func Default() Config {
	cwd, _ := os.Getwd()
	return Config{
		Canvas: Canvas{NodeWidth: 150, NodeHeight: 40, Seed: true},
		Export: Export{Format: "png", Dir: cwd},
		Serve:  Serve{Addr: "127.0.0.1:8080"},
		Log:    Log{Level: "info"},
	}
}

// Path returns the default config file location.
func Path() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return FileName
	}
	return filepath.Join(home, FileName)
}

// Load reads path (Path() when empty) over the defaults, then applies .env
// and environment overrides. A missing file is not an error; a malformed one
// is.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = Path()
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		slog.Debug("config file not found, using defaults", "path", path)
	default:
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}

	// .env never overrides variables already set in the process.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvAddr); v != "" {
		c.Serve.Addr = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv(EnvExportDir); v != "" {
		c.Export.Dir = v
	}
}

// Save writes cfg to path (Path() when empty).
func Save(path string, cfg Config) error {
	if path == "" {
		path = Path()
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	content := append([]byte("# fsmdiagram configuration\n"), data...)
	return os.WriteFile(path, content, 0644)
}

// Validate checks every field that has a restricted range.
func (c Config) Validate() error {
	if c.Canvas.NodeWidth <= 0 || c.Canvas.NodeHeight <= 0 {
		return fmt.Errorf("%w: canvas node size must be positive, got %gx%g",
			ErrInvalid, c.Canvas.NodeWidth, c.Canvas.NodeHeight)
	}
	switch strings.ToLower(c.Export.Format) {
	case "png", "svg", "dot":
	default:
		return fmt.Errorf("%w: export.format %q (want png, svg or dot)", ErrInvalid, c.Export.Format)
	}
	if c.Serve.Addr == "" {
		return fmt.Errorf("%w: serve.addr is empty", ErrInvalid)
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel parses the configured log level.
func (l Log) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("%w: log.level %q", ErrInvalid, l.Level)
	}
	return lvl, nil
}

// OriginAllowed reports whether a browser origin may use the bridge. An
// empty allow list admits only requests without an Origin header and
// same-host origins.
func (s Serve) OriginAllowed(origin, host string) bool {
	if origin == "" {
		return true
	}
	for _, o := range s.AllowedOrigins {
		if o == "*" || strings.EqualFold(o, origin) {
			return true
		}
	}
	trimmed := strings.TrimPrefix(strings.TrimPrefix(origin, "http://"), "https://")
	return strings.EqualFold(trimmed, host)
}
