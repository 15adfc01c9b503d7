package flow_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/dshills/fluxgraph/flow"
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

func descriptorProp(t *testing.T, kind string) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(map[string]any{"kind": kind})
	if err != nil {
		t.Fatalf("marshal descriptor: %v", err)
	}
	return raw
}

func TestLoadMaterialisesNodesAndWiredEdges(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	graphReply, err := s.Execute(ctx, store.CreateGraphAction{Props: store.Properties{}})
	if err != nil {
		t.Fatalf("create graph: %v", err)
	}
	graphID := store.GraphID(graphReply.(store.ReplyID).ID)

	sourceReply, err := s.Execute(ctx, store.MutateAction{
		GraphID: graphID,
		Kind: store.CreateNode{Props: store.Properties{
			store.KeyCommand:   descriptorProp(t, "const"),
			store.KeyStartNode: store.PropBool(true),
		}},
	})
	if err != nil {
		t.Fatalf("create source node: %v", err)
	}
	sourceID := store.NodeID(sourceReply.(store.ReplyID).ID)

	sinkReply, err := s.Execute(ctx, store.MutateAction{
		GraphID: graphID,
		Kind:    store.CreateNode{Props: store.Properties{store.KeyCommand: descriptorProp(t, "print")}},
	})
	if err != nil {
		t.Fatalf("create sink node: %v", err)
	}
	sinkID := store.NodeID(sinkReply.(store.ReplyID).ID)

	if _, err := s.Execute(ctx, store.MutateAction{
		GraphID: graphID,
		Kind: store.CreateEdge{
			From: sourceID,
			To:   sinkID,
			Props: store.Properties{
				store.KeyOutputName: store.PropString("value"),
				store.KeyInputName:  store.PropString("message"),
			},
		},
	}); err != nil {
		t.Fatalf("create edge: %v", err)
	}

	f, err := flow.Load(ctx, s, graphID)
	if err != nil {
		t.Fatalf("load flow: %v", err)
	}

	if f.GraphID != graphID {
		t.Fatalf("expected GraphID %v, got %v", graphID, f.GraphID)
	}
	if got := len(f.Nodes); got != 2 {
		t.Fatalf("expected 2 flow nodes, got %d", got)
	}

	source, ok := f.Nodes[sourceID]
	if !ok {
		t.Fatalf("source node missing from flow")
	}
	if !source.StartNode {
		t.Fatalf("expected source node to be marked start node")
	}
	if source.Descriptor.Kind != "const" {
		t.Fatalf("expected source descriptor kind const, got %q", source.Descriptor.Kind)
	}

	sink, ok := f.Nodes[sinkID]
	if !ok {
		t.Fatalf("sink node missing from flow")
	}
	if sink.StartNode {
		t.Fatalf("sink node should not be a start node")
	}

	if got := len(f.Edges); got != 1 {
		t.Fatalf("expected 1 wired edge, got %d", got)
	}
	edge := f.Edges[0]
	if edge.From != sourceID || edge.To != sinkID {
		t.Fatalf("unexpected edge endpoints: %+v", edge)
	}
	if edge.OutputName != "value" || edge.InputName != "message" {
		t.Fatalf("unexpected edge wire names: %+v", edge)
	}
}

func TestLoadSkipsPlainDataNodes(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	graphReply, err := s.Execute(ctx, store.CreateGraphAction{Props: store.Properties{}})
	if err != nil {
		t.Fatalf("create graph: %v", err)
	}
	graphID := store.GraphID(graphReply.(store.ReplyID).ID)

	if _, err := s.Execute(ctx, store.MutateAction{
		GraphID: graphID,
		Kind:    store.CreateNode{Props: store.Properties{"label": store.PropString("plain data")}},
	}); err != nil {
		t.Fatalf("create plain node: %v", err)
	}

	f, err := flow.Load(ctx, s, graphID)
	if err != nil {
		t.Fatalf("load flow: %v", err)
	}
	if got := len(f.Nodes); got != 0 {
		t.Fatalf("expected plain data node to be skipped, got %d flow nodes", got)
	}
}

func TestDecodeDescriptorRepairsTrailingComma(t *testing.T) {
	desc, err := flow.DecodeDescriptor(json.RawMessage(`{"kind":"const",}`))
	if err != nil {
		t.Fatalf("expected jsonrepair to recover from a trailing comma: %v", err)
	}
	if desc.Kind != "const" {
		t.Fatalf("expected kind const, got %q", desc.Kind)
	}
}

func TestDecodeDescriptorValidJSON(t *testing.T) {
	desc, err := flow.DecodeDescriptor(json.RawMessage(`{"kind":"arith","static":{}}`))
	if err != nil {
		t.Fatalf("decode descriptor: %v", err)
	}
	if desc.Kind != "arith" {
		t.Fatalf("expected kind arith, got %q", desc.Kind)
	}
}
