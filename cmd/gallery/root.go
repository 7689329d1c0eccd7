package main

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jfoltran/gallery/internal/config"
)

var (
	cfg        config.Config
	logger     zerolog.Logger
	logOutput  io.Writer
	configPath string
	logLevel   string
	logFormat  string
)

var rootCmd = &cobra.Command{
	Use:   "gallery",
	Short: "Masonry image gallery server and terminal viewer",
	Long: `gallery serves the images of a directory as a masonry gallery.
The server lists eligible images at /api/images and serves a page that
lays them out on a fixed-row grid; the view command renders the same
layout in the terminal against a running server.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded

		if cmd.Flags().Changed("log-level") {
			cfg.Logging.Level = logLevel
		}
		if cmd.Flags().Changed("log-format") {
			cfg.Logging.Format = logFormat
		}
		applyCommandFlags(cmd)

		if err := cfg.Validate(); err != nil {
			return err
		}

		switch cfg.Logging.Format {
		case "json":
			logOutput = os.Stdout
		default:
			logOutput = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
		}
		logger = newLogger(logOutput)
		return nil
	},
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&configPath, "config", "", "Path to config file (default ~/.gallery/config.toml)")
	f.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	f.StringVar(&logFormat, "log-format", "console", "Log format (console, json)")
}

func newLogger(w io.Writer) zerolog.Logger {
	l := zerolog.New(w).With().Timestamp().Logger()
	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	return l.Level(level)
}

// applyCommandFlags copies explicitly set subcommand flags over the loaded
// config. Flags left at their defaults do not override the file.
func applyCommandFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Lookup("listen") != nil && flags.Changed("listen") {
		cfg.Server.Listen, _ = flags.GetString("listen")
	}
	if flags.Lookup("port") != nil && flags.Changed("port") {
		cfg.Server.Port, _ = flags.GetInt("port")
	}
	if flags.Lookup("assets") != nil && flags.Changed("assets") {
		cfg.Assets.Dir, _ = flags.GetString("assets")
	}
	if flags.Lookup("no-watch") != nil && flags.Changed("no-watch") {
		noWatch, _ := flags.GetBool("no-watch")
		cfg.Assets.Watch = !noWatch
	}
	if flags.Lookup("api-addr") != nil && flags.Changed("api-addr") {
		cfg.View.APIAddr, _ = flags.GetString("api-addr")
	}
}
