// Command fsmdiagram edits finite state machine diagrams, either in the
// terminal or as a backend for a browser renderer.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ha1tch/automata-diagram/internal/config"
	"github.com/ha1tch/automata-diagram/pkg/export"
	"github.com/ha1tch/automata-diagram/pkg/graph"
)

// Set with -ldflags "-X main.version=...".
var version = "dev"

var (
	configPath string
	logLevel   string

	rootCmd = &cobra.Command{
		Use:           "fsmdiagram",
		Short:         "Finite state machine diagram editor",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "fsmdiagram", version)
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/"+config.FileName+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(editCmd, serveCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig() (config.Config, error) {
	path := configPath
	if path == "" {
		path = config.Path()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
		if err := cfg.Validate(); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

// newLogger builds a text logger at the configured level.
func newLogger(w io.Writer, cfg config.Config) *slog.Logger {
	level, err := cfg.Log.SlogLevel()
	if err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func startGraph(cfg config.Config) graph.Graph {
	if cfg.Canvas.Seed {
		return graph.Seed()
	}
	return graph.New()
}

func exportOptions(cfg config.Config) export.Options {
	opts := export.DefaultOptions()
	opts.Render.NodeWidth = cfg.Canvas.NodeWidth
	opts.Render.NodeHeight = cfg.Canvas.NodeHeight
	return opts
}
