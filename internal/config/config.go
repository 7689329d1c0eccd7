package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"

	"github.com/jfoltran/gallery/internal/masonry"
)

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Listen string `toml:"listen"`
	Port   int    `toml:"port"`
}

// Addr returns the listen address in host:port form.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Listen, s.Port)
}

// AssetsConfig points at the static asset root served at "/".
type AssetsConfig struct {
	Dir   string `toml:"dir"`
	Watch bool   `toml:"watch"`
}

// LayoutConfig holds the terminal grid geometry. RowHeight and RowGap are
// in terminal lines, breakpoint widths in columns.
type LayoutConfig struct {
	RowHeight   int                 `toml:"row_height"`
	RowGap      int                 `toml:"row_gap"`
	Breakpoints masonry.Breakpoints `toml:"breakpoints"`
}

// ViewConfig holds settings for the terminal gallery client.
type ViewConfig struct {
	APIAddr string `toml:"api_addr"`
}

// LoggingConfig holds settings for structured logging.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

// Config is the top-level configuration. It is built once at startup and
// passed by value afterwards.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Assets  AssetsConfig  `toml:"assets"`
	Layout  LayoutConfig  `toml:"layout"`
	View    ViewConfig    `toml:"view"`
	Logging LoggingConfig `toml:"logging"`
}

// DefaultTerminalBreakpoints maps terminal widths to column counts.
func DefaultTerminalBreakpoints() masonry.Breakpoints {
	return masonry.Breakpoints{
		{MinWidth: 0, Columns: 1},
		{MinWidth: 60, Columns: 2},
		{MinWidth: 100, Columns: 3},
		{MinWidth: 140, Columns: 4},
	}
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Listen: "127.0.0.1",
			Port:   7654,
		},
		Assets: AssetsConfig{
			Dir:   "public",
			Watch: true,
		},
		Layout: LayoutConfig{
			RowHeight:   1,
			RowGap:      1,
			Breakpoints: DefaultTerminalBreakpoints(),
		},
		View: ViewConfig{
			APIAddr: "http://localhost:7654",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load builds a Config from defaults, then the TOML file at path (or the
// first one found in the standard locations when path is empty), then
// GALLERY_* environment variables.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if path == "" {
		path = findConfigFile()
	}

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func findConfigFile() string {
	candidates := []string{}

	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".gallery", "config.toml"))
	}
	candidates = append(candidates, "/etc/gallery/config.toml")

	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("GALLERY_LISTEN"); v != "" {
		cfg.Server.Listen = v
	}
	if v := os.Getenv("GALLERY_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("GALLERY_ASSETS_DIR"); v != "" {
		cfg.Assets.Dir = v
	}
	if v := os.Getenv("GALLERY_API_ADDR"); v != "" {
		cfg.View.APIAddr = v
	}
	if v := os.Getenv("GALLERY_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("GALLERY_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}

// Validate checks that required fields are present and values are sane,
// filling in defaults where a zero value has an obvious meaning.
func (c *Config) Validate() error {
	var errs []error

	if c.Assets.Dir == "" {
		errs = append(errs, errors.New("assets dir is required"))
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server port %d out of range", c.Server.Port))
	}
	if c.Layout.RowHeight < 0 {
		errs = append(errs, errors.New("layout row height must not be negative"))
	}
	if c.Layout.RowGap < 0 {
		errs = append(errs, errors.New("layout row gap must not be negative"))
	}
	for i, b := range c.Layout.Breakpoints {
		if b.Columns < 1 {
			errs = append(errs, fmt.Errorf("layout breakpoint %d: columns must be at least 1", i))
		}
	}
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Logging.Format))
	}

	if c.Server.Port == 0 {
		c.Server.Port = 7654
	}
	if c.Layout.RowHeight == 0 {
		c.Layout.RowHeight = 1
	}
	if len(c.Layout.Breakpoints) == 0 {
		c.Layout.Breakpoints = DefaultTerminalBreakpoints()
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}

	return errors.Join(errs...)
}

// Grid returns the terminal grid geometry.
func (l LayoutConfig) Grid() masonry.Grid {
	return masonry.Grid{RowHeight: l.RowHeight, RowGap: l.RowGap}
}
