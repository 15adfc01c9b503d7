//go:build integration

package storepostgres_test

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dshills/fluxgraph/store"
	"github.com/dshills/fluxgraph/store/storepostgres"
)

// testPool is shared across all integration tests in this file, created
// once in TestMain and reused the way leofalp-aigo's pgmemory integration
// suite reuses its pool.
var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	ctx := context.Background()
	pool, cleanup, err := storepostgres.NewTestPool(ctx)
	if err != nil {
		panic(err)
	}
	testPool = pool
	code := m.Run()
	cleanup()
	os.Exit(code)
}

func TestStoreRoundTripAgainstLivePostgres(t *testing.T) {
	ctx := context.Background()
	backend := storepostgres.New(testPool)
	s := store.New(backend)

	reply, err := s.Execute(ctx, store.CreateGraphAction{Props: store.Properties{"name": store.PropString("live")}})
	if err != nil {
		t.Fatalf("create graph: %v", err)
	}
	graphID := store.GraphID(reply.(store.ReplyID).ID)

	nodeReply, err := s.Execute(ctx, store.MutateAction{GraphID: graphID, Kind: store.CreateNode{Props: store.Properties{}}})
	if err != nil {
		t.Fatalf("create node: %v", err)
	}
	nodeID := store.NodeID(nodeReply.(store.ReplyID).ID)

	if _, err := s.Execute(ctx, store.QueryAction{Kind: store.ReadNode{NodeID: nodeID}}); err != nil {
		t.Fatalf("read node: %v", err)
	}

	if _, err := s.Execute(ctx, store.DeleteGraphAction{GraphID: graphID}); err != nil {
		t.Fatalf("delete graph: %v", err)
	}
	if _, err := s.Execute(ctx, store.QueryAction{Kind: store.ReadNode{NodeID: nodeID}}); err == nil {
		t.Fatalf("expected node gone after cascade delete")
	}
}
