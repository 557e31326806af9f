package main

import (
	"fmt"
	"io"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/ha1tch/automata-diagram/internal/tui"
	"github.com/ha1tch/automata-diagram/pkg/editor"
	"github.com/ha1tch/automata-diagram/pkg/export"
)

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit a diagram in the terminal",
	RunE:  runEdit,
}

func runEdit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// The terminal is the canvas, so logs go to a file or nowhere.
	var logOut io.Writer = io.Discard
	if cfg.Log.File != "" {
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	log := newLogger(logOut, cfg)

	format, err := export.ParseFormat(cfg.Export.Format)
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer screen.Fini()
	screen.Clear()

	ed := editor.New(startGraph(cfg), editor.WithLogger(log))
	app := tui.New(screen, ed, tui.Options{
		ExportDir:    cfg.Export.Dir,
		ExportFormat: format,
		Export:       exportOptions(cfg),
		Logger:       log,
	})
	log.Info("terminal editor started", "version", version)
	app.Run()
	return nil
}
