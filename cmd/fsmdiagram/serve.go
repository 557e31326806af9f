package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ha1tch/automata-diagram/internal/bridge"
	"github.com/ha1tch/automata-diagram/pkg/editor"
)

var (
	serveAddr string

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve the editor to a browser renderer over WebSocket",
		RunE:  runServe,
	}
)

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides serve.addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Serve.Addr = serveAddr
	}
	log := newLogger(os.Stderr, cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ed := editor.New(startGraph(cfg), editor.WithLogger(log))
	loop := editor.NewLoop(ed, 64)
	srv := bridge.New(ed, loop, cfg.Serve, exportOptions(cfg), log)

	go func() {
		if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("editor loop stopped", "error", err)
		}
	}()

	err = srv.ListenAndServe(ctx, cfg.Serve.Addr)
	stop()
	<-loop.Done()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
