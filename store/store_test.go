package store_test

import (
	"context"
	"testing"

	"github.com/dshills/fluxgraph/store"
	"github.com/dshills/fluxgraph/store/storebadger"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	backend, err := storebadger.Open("")
	if err != nil {
		t.Fatalf("open backend: %v", err)
	}
	t.Cleanup(func() { _ = backend.Close() })
	return store.New(backend)
}

func TestUndoEmptyReturnsSentinel(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Execute(context.Background(), store.UndoAction{}); err != store.ErrUndoBufferEmpty {
		t.Fatalf("expected ErrUndoBufferEmpty, got %v", err)
	}
}

func TestRedoEmptyReturnsSentinel(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Execute(context.Background(), store.RedoAction{}); err != store.ErrRedoBufferEmpty {
		t.Fatalf("expected ErrRedoBufferEmpty, got %v", err)
	}
}

// TestMutationClearsRedoStack is scenario S3: undoing a create, then
// issuing a fresh mutation, must drop the stale redo entry rather than
// let a later Redo resurrect it.
func TestMutationClearsRedoStack(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	graphReply, err := s.Execute(ctx, store.CreateGraphAction{Props: store.Properties{}})
	if err != nil {
		t.Fatalf("create graph: %v", err)
	}
	graphID := store.GraphID(graphReply.(store.ReplyID).ID)

	if _, err := s.Execute(ctx, store.MutateAction{GraphID: graphID, Kind: store.CreateNode{Props: store.Properties{}}}); err != nil {
		t.Fatalf("create node: %v", err)
	}
	if s.UndoDepth() != 2 {
		t.Fatalf("expected undo depth 2 after two mutations, got %d", s.UndoDepth())
	}

	if _, err := s.Execute(ctx, store.UndoAction{}); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if s.RedoDepth() != 1 {
		t.Fatalf("expected redo depth 1 after undo, got %d", s.RedoDepth())
	}

	if _, err := s.Execute(ctx, store.MutateAction{GraphID: graphID, Kind: store.CreateNode{Props: store.Properties{}}}); err != nil {
		t.Fatalf("create second node: %v", err)
	}
	if s.RedoDepth() != 0 {
		t.Fatalf("expected redo stack cleared by fresh mutation, got depth %d", s.RedoDepth())
	}
}

func TestQueryNeverTouchesUndoStack(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	graphReply, err := s.Execute(ctx, store.CreateGraphAction{Props: store.Properties{}})
	if err != nil {
		t.Fatalf("create graph: %v", err)
	}
	graphID := store.GraphID(graphReply.(store.ReplyID).ID)
	depthBefore := s.UndoDepth()

	if _, err := s.Execute(ctx, store.QueryAction{Kind: store.ReadGraph{GraphID: graphID}}); err != nil {
		t.Fatalf("read graph: %v", err)
	}
	if s.UndoDepth() != depthBefore {
		t.Fatalf("query mutated undo depth: before=%d after=%d", depthBefore, s.UndoDepth())
	}
}

func TestUndoRedoRoundTripRestoresNode(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	graphReply, err := s.Execute(ctx, store.CreateGraphAction{Props: store.Properties{}})
	if err != nil {
		t.Fatalf("create graph: %v", err)
	}
	graphID := store.GraphID(graphReply.(store.ReplyID).ID)

	nodeReply, err := s.Execute(ctx, store.MutateAction{
		GraphID: graphID,
		Kind:    store.CreateNode{Props: store.Properties{"label": store.PropString("a")}},
	})
	if err != nil {
		t.Fatalf("create node: %v", err)
	}
	nodeID := store.NodeID(nodeReply.(store.ReplyID).ID)

	if _, err := s.Execute(ctx, store.MutateAction{GraphID: graphID, Kind: store.DeleteNode{NodeID: nodeID}}); err != nil {
		t.Fatalf("delete node: %v", err)
	}
	if _, err := s.Execute(ctx, store.QueryAction{Kind: store.ReadNode{NodeID: nodeID}}); err == nil {
		t.Fatalf("expected node gone after delete")
	}

	if _, err := s.Execute(ctx, store.UndoAction{}); err != nil {
		t.Fatalf("undo delete: %v", err)
	}
	if _, err := s.Execute(ctx, store.QueryAction{Kind: store.ReadNode{NodeID: nodeID}}); err != nil {
		t.Fatalf("expected node restored after undo: %v", err)
	}

	if _, err := s.Execute(ctx, store.RedoAction{}); err != nil {
		t.Fatalf("redo delete: %v", err)
	}
	if _, err := s.Execute(ctx, store.QueryAction{Kind: store.ReadNode{NodeID: nodeID}}); err == nil {
		t.Fatalf("expected node gone again after redo")
	}
}

func TestHistoryRecordsEveryAction(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if _, err := s.Execute(ctx, store.CreateGraphAction{Props: store.Properties{}}); err != nil {
		t.Fatalf("create graph: %v", err)
	}
	if _, err := s.Execute(ctx, store.UndoAction{}); err != nil {
		t.Fatalf("undo: %v", err)
	}

	if got := len(s.History()); got != 2 {
		t.Fatalf("expected 2 history entries, got %d", got)
	}
}

