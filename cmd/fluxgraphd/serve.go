package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/fluxgraph/catalog"
	"github.com/dshills/fluxgraph/command"
	"github.com/dshills/fluxgraph/scheduler"
	"github.com/dshills/fluxgraph/store"
	"github.com/dshills/fluxgraph/store/storehttp/httpserver"
	"github.com/dshills/fluxgraph/telemetry"
)

func newServeCmd() *cobra.Command {
	var joinPreviousTick bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the configured backend over HTTP and accept scheduler control",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), joinPreviousTick)
		},
	}
	cmd.Flags().BoolVar(&joinPreviousTick, "join-previous-tick", false,
		"wait for the previous tick to finish before starting the next one (overrides config)")
	return cmd
}

func runServe(ctx context.Context, joinPreviousTick bool) error {
	backend, closeBackend, err := openBackend(ctx, cfg.Backend)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeBackend(); err != nil {
			telemetry.Log.Warn().Err(err).Msg("error closing backend")
		}
	}()

	s := store.New(backend)

	registry := command.NewRegistry()
	catalog.Register(registry)

	emitter, metricsHandler, shutdownEmitter, err := newEmitter(cfg.Emitter)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownEmitter(shutdownCtx); err != nil {
			telemetry.Log.Warn().Err(err).Msg("error shutting down emitter")
		}
	}()

	opts := scheduler.Options{JoinPreviousTick: cfg.Scheduler.JoinPreviousTick || joinPreviousTick}
	fc := scheduler.New(s, registry, opts, emitter)

	mux := http.NewServeMux()
	mux.Handle("/v1/", httpserver.New(backend).Handler())
	mux.Handle("/admin/", adminMux(fc))
	if metricsHandler != nil {
		mux.Handle("/metrics", metricsHandler)
	}

	srv := &http.Server{Addr: cfg.Server.ListenAddress, Handler: mux}

	serveErr := make(chan error, 1)
	go func() {
		telemetry.Log.Info().Str("address", cfg.Server.ListenAddress).Str("backend", cfg.Backend.Kind).Msg("fluxgraphd listening")
		serveErr <- srv.ListenAndServe()
	}()

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case <-sigCtx.Done():
		telemetry.Log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	}
}
