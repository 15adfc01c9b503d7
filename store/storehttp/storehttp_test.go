package storehttp_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/dshills/fluxgraph/store"
	"github.com/dshills/fluxgraph/store/storebadger"
	"github.com/dshills/fluxgraph/store/storehttp"
	"github.com/dshills/fluxgraph/store/storehttp/httpserver"
)

// newTestServer wires an in-process HTTP server fronting a fresh
// storebadger instance and returns a storehttp.Backend client pointed
// at it, so the wire protocol is exercised end to end without a real
// network hop.
func newTestServer(t *testing.T) *storehttp.Backend {
	t.Helper()
	badgerBackend, err := storebadger.Open("")
	if err != nil {
		t.Fatalf("open badger backend: %v", err)
	}
	t.Cleanup(func() { _ = badgerBackend.Close() })

	srv := httptest.NewServer(httpserver.New(badgerBackend).Handler())
	t.Cleanup(srv.Close)

	return storehttp.Open(srv.URL, nil)
}

func TestCreateGraphAndNodeRoundTripOverHTTP(t *testing.T) {
	ctx := context.Background()
	backend := newTestServer(t)
	s := store.New(backend)

	reply, err := s.Execute(ctx, store.CreateGraphAction{Props: store.Properties{"name": store.PropString("remote")}})
	if err != nil {
		t.Fatalf("create graph: %v", err)
	}
	graphID := store.GraphID(reply.(store.ReplyID).ID)

	nodeReply, err := s.Execute(ctx, store.MutateAction{
		GraphID: graphID,
		Kind:    store.CreateNode{Props: store.Properties{"label": store.PropString("child")}},
	})
	if err != nil {
		t.Fatalf("create node: %v", err)
	}
	nodeID := store.NodeID(nodeReply.(store.ReplyID).ID)

	readReply, err := s.Execute(ctx, store.QueryAction{Kind: store.ReadNode{NodeID: nodeID}})
	if err != nil {
		t.Fatalf("read node: %v", err)
	}
	if got := readReply.(store.ReplyNode).Node.ID; got != nodeID {
		t.Fatalf("read back wrong node: %v", got)
	}
}

func TestCreateEdgeAndCascadeDeleteOverHTTP(t *testing.T) {
	ctx := context.Background()
	backend := newTestServer(t)
	s := store.New(backend)

	graphReply, _ := s.Execute(ctx, store.CreateGraphAction{Props: store.Properties{}})
	graphID := store.GraphID(graphReply.(store.ReplyID).ID)

	n1, _ := s.Execute(ctx, store.MutateAction{GraphID: graphID, Kind: store.CreateNode{Props: store.Properties{}}})
	n2, _ := s.Execute(ctx, store.MutateAction{GraphID: graphID, Kind: store.CreateNode{Props: store.Properties{}}})
	from := store.NodeID(n1.(store.ReplyID).ID)
	to := store.NodeID(n2.(store.ReplyID).ID)

	if _, err := s.Execute(ctx, store.MutateAction{
		GraphID: graphID,
		Kind:    store.CreateEdge{From: from, To: to, Props: store.Properties{}},
	}); err != nil {
		t.Fatalf("create edge: %v", err)
	}

	node, err := s.Execute(ctx, store.QueryAction{Kind: store.ReadNode{NodeID: from}})
	if err != nil {
		t.Fatalf("read node: %v", err)
	}
	if len(node.(store.ReplyNode).Node.Outbound) == 0 {
		t.Fatalf("expected outbound edge to be recorded")
	}

	if _, err := s.Execute(ctx, store.DeleteGraphAction{GraphID: graphID}); err != nil {
		t.Fatalf("delete graph: %v", err)
	}
	if _, err := s.Execute(ctx, store.QueryAction{Kind: store.ReadNode{NodeID: from}}); err == nil {
		t.Fatalf("expected node gone after cascade delete")
	}
}

func TestReadMissingNodeFailsOverHTTP(t *testing.T) {
	ctx := context.Background()
	backend := newTestServer(t)
	s := store.New(backend)

	var unknown store.NodeID
	if _, err := s.Execute(ctx, store.QueryAction{Kind: store.ReadNode{NodeID: unknown}}); err == nil {
		t.Fatalf("expected error reading unknown node")
	}
}
