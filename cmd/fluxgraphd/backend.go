package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/dshills/fluxgraph/config"
	"github.com/dshills/fluxgraph/store"
	"github.com/dshills/fluxgraph/store/storebadger"
	"github.com/dshills/fluxgraph/store/storehttp"
	"github.com/dshills/fluxgraph/store/storepostgres"
	"github.com/dshills/fluxgraph/store/storesql"
)

// openBackend opens the store.Backend cfg.Backend names, the single
// switch point every subcommand routes through instead of each
// duplicating the kind-to-constructor mapping.
func openBackend(ctx context.Context, cfg config.BackendConfig) (store.Backend, func() error, error) {
	switch strings.ToLower(cfg.Kind) {
	case "badger":
		b, err := storebadger.Open(cfg.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open badger backend: %w", err)
		}
		return b, b.Close, nil
	case "sqlite":
		b, err := storesql.Open(cfg.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite backend: %w", err)
		}
		return b, b.Close, nil
	case "postgres":
		b, err := storepostgres.Open(ctx, cfg.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres backend: %w", err)
		}
		return b, func() error { b.Close(); return nil }, nil
	case "http":
		b := storehttp.Open(cfg.RemoteURL, &http.Client{Timeout: config.RequestTimeout})
		return b, func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown backend kind %q", cfg.Kind)
	}
}

// withStore opens the configured backend, runs fn against a *store.Store
// wrapping it, and closes the backend afterward regardless of fn's
// outcome — the one-shot counterpart to serve's long-lived backend.
func withStore(ctx context.Context, fn func(s *store.Store) error) error {
	backend, closeBackend, err := openBackend(ctx, cfg.Backend)
	if err != nil {
		return err
	}
	defer closeBackend()

	return fn(store.New(backend))
}
