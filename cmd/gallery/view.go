package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jfoltran/gallery/internal/gallery"
	"github.com/jfoltran/gallery/internal/tui"
)

var viewLogFile string

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Browse a running gallery in the terminal",
	Long: `View fetches the image listing from a running gallery server and lays
the images out as a masonry grid in the terminal. Arrow keys or hjkl move
the selection, enter or a click opens the details of an image.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// The screen belongs to the TUI, so logs only go to a file.
		var out io.Writer = io.Discard
		if viewLogFile != "" {
			f, err := os.OpenFile(viewLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return fmt.Errorf("open log file: %w", err)
			}
			defer f.Close()
			out = f
		}
		viewLogger := newLogger(out)

		client := gallery.NewClient(cfg.View.APIAddr, nil)
		return tui.Run(cmd.Context(), client, client.Base(), cfg.Layout.Grid(), cfg.Layout.Breakpoints, viewLogger)
	},
}

func init() {
	f := viewCmd.Flags()
	f.String("api-addr", "http://localhost:7654", "Address of the gallery server")
	f.StringVar(&viewLogFile, "log-file", "", "Write logs to this file")
	rootCmd.AddCommand(viewCmd)
}
