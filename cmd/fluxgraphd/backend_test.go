package main

import (
	"context"
	"testing"

	"github.com/dshills/fluxgraph/config"
	"github.com/dshills/fluxgraph/store"
)

func TestOpenBackendBadger(t *testing.T) {
	backend, closeFn, err := openBackend(context.Background(), config.BackendConfig{Kind: "badger", Path: ""})
	if err != nil {
		t.Fatalf("open badger backend: %v", err)
	}
	defer closeFn()

	s := store.New(backend)
	if _, err := s.Execute(context.Background(), store.CreateGraphAction{Props: store.Properties{}}); err != nil {
		t.Fatalf("create graph: %v", err)
	}
}

func TestOpenBackendUnknownKind(t *testing.T) {
	if _, _, err := openBackend(context.Background(), config.BackendConfig{Kind: "mongodb"}); err == nil {
		t.Fatalf("expected error for unknown backend kind")
	}
}

func TestWithStoreRunsCallback(t *testing.T) {
	cfg = &config.Config{Backend: config.BackendConfig{Kind: "badger", Path: ""}}

	var ranFn bool
	err := withStore(context.Background(), func(s *store.Store) error {
		ranFn = true
		_, err := s.Execute(context.Background(), store.CreateGraphAction{Props: store.Properties{}})
		return err
	})
	if err != nil {
		t.Fatalf("withStore: %v", err)
	}
	if !ranFn {
		t.Fatalf("expected callback to run")
	}
}
