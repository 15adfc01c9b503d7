package storebadger_test

import (
	"context"
	"testing"

	"github.com/dshills/fluxgraph/store"
	"github.com/dshills/fluxgraph/store/storebadger"
)

func openTestBackend(t *testing.T) *storebadger.Backend {
	t.Helper()
	b, err := storebadger.Open("")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestCreateGraphRoundTrip(t *testing.T) {
	ctx := context.Background()
	backend := openTestBackend(t)
	s := store.New(backend)

	reply, err := s.Execute(ctx, store.CreateGraphAction{Props: store.Properties{"name": store.PropString("g1")}})
	if err != nil {
		t.Fatalf("create graph: %v", err)
	}
	id, ok := reply.(store.ReplyID)
	if !ok {
		t.Fatalf("expected ReplyID, got %T", reply)
	}

	listReply, err := s.Execute(ctx, store.QueryAction{Kind: store.ListGraphs{}})
	if err != nil {
		t.Fatalf("list graphs: %v", err)
	}
	nl, ok := listReply.(store.ReplyNodeList)
	if !ok || len(nl.Nodes) != 1 {
		t.Fatalf("expected one graph root, got %#v", listReply)
	}
	if nl.Nodes[0].ID != store.NodeID(id.ID) {
		t.Fatalf("listed root id mismatch")
	}
}

func TestCreateNodeAndUndo(t *testing.T) {
	ctx := context.Background()
	backend := openTestBackend(t)
	s := store.New(backend)

	graphReply, err := s.Execute(ctx, store.CreateGraphAction{Props: store.Properties{}})
	if err != nil {
		t.Fatalf("create graph: %v", err)
	}
	graphID := store.GraphID(graphReply.(store.ReplyID).ID)

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

	if _, err := s.Execute(ctx, store.UndoAction{}); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if _, err := s.Execute(ctx, store.QueryAction{Kind: store.ReadNode{NodeID: nodeID}}); err == nil {
		t.Fatalf("expected node to be gone after undo")
	}

	if _, err := s.Execute(ctx, store.RedoAction{}); err != nil {
		t.Fatalf("redo: %v", err)
	}
	if _, err := s.Execute(ctx, store.QueryAction{Kind: store.ReadNode{NodeID: nodeID}}); err != nil {
		t.Fatalf("expected node back after redo: %v", err)
	}
}

func TestCreateEdgeRecordsOutboundOnNode(t *testing.T) {
	ctx := context.Background()
	backend := openTestBackend(t)
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
}

// TestCreateEdgeAllowsParallelEdgesBetweenSameNodePair covers spec §8
// scenario S2: two edges between the same (from, to) node pair are both
// accepted rather than the second being rejected as a duplicate, and each
// is assigned its own distinct EdgeType.
func TestCreateEdgeAllowsParallelEdgesBetweenSameNodePair(t *testing.T) {
	ctx := context.Background()
	backend := openTestBackend(t)
	s := store.New(backend)

	graphReply, _ := s.Execute(ctx, store.CreateGraphAction{Props: store.Properties{}})
	graphID := store.GraphID(graphReply.(store.ReplyID).ID)

	n1, _ := s.Execute(ctx, store.MutateAction{GraphID: graphID, Kind: store.CreateNode{Props: store.Properties{}}})
	n2, _ := s.Execute(ctx, store.MutateAction{GraphID: graphID, Kind: store.CreateNode{Props: store.Properties{}}})

	from := store.NodeID(n1.(store.ReplyID).ID)
	to := store.NodeID(n2.(store.ReplyID).ID)

	first, err := s.Execute(ctx, store.MutateAction{
		GraphID: graphID,
		Kind:    store.CreateEdge{From: from, To: to, Props: store.Properties{}},
	})
	if err != nil {
		t.Fatalf("create first edge: %v", err)
	}

	second, err := s.Execute(ctx, store.MutateAction{
		GraphID: graphID,
		Kind:    store.CreateEdge{From: from, To: to, Props: store.Properties{}},
	})
	if err != nil {
		t.Fatalf("create second parallel edge: %v", err)
	}

	firstType := first.(store.ReplyEdgeType).EdgeType
	secondType := second.(store.ReplyEdgeType).EdgeType
	if firstType == secondType {
		t.Fatalf("expected distinct edge types, got the same %s for both", firstType)
	}

	node, err := s.Execute(ctx, store.QueryAction{Kind: store.ReadNode{NodeID: from}})
	if err != nil {
		t.Fatalf("read node: %v", err)
	}
	outbound := node.(store.ReplyNode).Node.Outbound
	if len(outbound) != 2 {
		t.Fatalf("expected 2 outbound edges after two parallel creates, got %d", len(outbound))
	}
}

func TestDeleteGraphCascades(t *testing.T) {
	ctx := context.Background()
	backend := openTestBackend(t)
	s := store.New(backend)

	graphReply, _ := s.Execute(ctx, store.CreateGraphAction{Props: store.Properties{}})
	graphID := store.GraphID(graphReply.(store.ReplyID).ID)

	nodeReply, _ := s.Execute(ctx, store.MutateAction{GraphID: graphID, Kind: store.CreateNode{Props: store.Properties{}}})
	nodeID := store.NodeID(nodeReply.(store.ReplyID).ID)

	if _, err := s.Execute(ctx, store.DeleteGraphAction{GraphID: graphID}); err != nil {
		t.Fatalf("delete graph: %v", err)
	}

	if _, err := s.Execute(ctx, store.QueryAction{Kind: store.ReadGraph{GraphID: graphID}}); err == nil {
		t.Fatalf("expected graph to be gone")
	}
	if _, err := s.Execute(ctx, store.QueryAction{Kind: store.ReadNode{NodeID: nodeID}}); err == nil {
		t.Fatalf("expected child node to be gone after cascade")
	}
}
