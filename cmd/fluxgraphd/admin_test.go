package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dshills/fluxgraph/command"
	"github.com/dshills/fluxgraph/emit"
	"github.com/dshills/fluxgraph/scheduler"
	"github.com/dshills/fluxgraph/store"
	"github.com/dshills/fluxgraph/store/storebadger"
)

func TestAdminDeployAndUndeployRoundTrip(t *testing.T) {
	backend, err := storebadger.Open("")
	if err != nil {
		t.Fatalf("open backend: %v", err)
	}
	defer backend.Close()

	s := store.New(backend)
	reply, err := s.Execute(context.Background(), store.CreateGraphAction{Props: store.Properties{}})
	if err != nil {
		t.Fatalf("create graph: %v", err)
	}
	graphID := store.GraphID(reply.(store.ReplyID).ID)

	fc := scheduler.New(s, command.NewRegistry(), scheduler.Options{}, emit.NewNullEmitter())
	srv := httptest.NewServer(adminMux(fc))
	defer srv.Close()

	deployResp, err := postAdmin(srv.URL, "/admin/deploy", map[string]any{
		"graph_id":  graphID.String(),
		"period_ms": (time.Hour).Milliseconds(),
	})
	if err != nil {
		t.Fatalf("deploy: %v", err)
	}
	if deployResp == "" {
		t.Fatalf("expected non-empty deploy response")
	}

	undeployResp, err := postAdmin(srv.URL, "/admin/undeploy", map[string]any{"graph_id": graphID.String()})
	if err != nil {
		t.Fatalf("undeploy: %v", err)
	}
	if undeployResp == "" {
		t.Fatalf("expected non-empty undeploy response")
	}
}

func TestAdminDeployRejectsMissingBody(t *testing.T) {
	backend, err := storebadger.Open("")
	if err != nil {
		t.Fatalf("open backend: %v", err)
	}
	defer backend.Close()

	fc := scheduler.New(store.New(backend), command.NewRegistry(), scheduler.Options{}, emit.NewNullEmitter())
	srv := httptest.NewServer(adminMux(fc))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/admin/deploy", "application/json", nil)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing body, got %d", resp.StatusCode)
	}
}
