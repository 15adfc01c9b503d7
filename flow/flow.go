// Package flow layers the flow convention (spec §2, §6) on top of the
// store: a flow is a graph whose nodes carry a reserved "command"
// property and whose edges carry "input_name"/"output_name" properties.
// This package only materialises that convention into a static
// description; wiring channels and running tasks is the scheduler's
// job.
package flow

import (
	"context"
	"encoding/json"

	"github.com/kaptinlin/jsonrepair"

	"github.com/dshills/fluxgraph/command"
	"github.com/dshills/fluxgraph/store"
	"github.com/dshills/fluxgraph/telemetry"
)

// EdgeWire is a single materialised edge: the channel endpoint names
// plus the node ids it connects.
type EdgeWire struct {
	From       store.NodeID
	To         store.NodeID
	OutputName string
	InputName  string
}

// FlowNode is one vertex's materialised shape: its parsed command
// descriptor, and whether the scheduler should seed it each tick.
type FlowNode struct {
	ID         store.NodeID
	Descriptor command.Descriptor
	StartNode  bool
}

// Flow is the per-tick materialisation of a store graph (spec §3's
// derived "Flow" entity): every node's descriptor plus the edges
// linking them, discarded at the end of the tick that built it.
type Flow struct {
	GraphID store.GraphID
	Nodes   map[store.NodeID]FlowNode
	Edges   []EdgeWire
}

// Load implements tick-algorithm step 1-2 (spec §4.3): read_graph
// followed by per-edge property reads, decoding each node's command
// descriptor and each edge's input_name/output_name pair.
func Load(ctx context.Context, s *store.Store, graphID store.GraphID) (*Flow, error) {
	reply, err := s.Execute(ctx, store.QueryAction{Kind: store.ReadGraph{GraphID: graphID}})
	if err != nil {
		return nil, err
	}
	graph := reply.(store.ReplyGraph).Graph

	f := &Flow{
		GraphID: graphID,
		Nodes:   make(map[store.NodeID]FlowNode, len(graph.Nodes)),
	}

	seenEdges := make(map[store.Edge]struct{})
	for _, node := range graph.Nodes {
		fn, ok, err := decodeNode(node)
		if err != nil {
			return nil, err
		}
		if ok {
			f.Nodes[node.ID] = fn
		}

		for _, e := range append(append([]store.Edge{}, node.Outbound...), node.Inbound...) {
			if _, dup := seenEdges[e]; dup {
				continue
			}
			seenEdges[e] = struct{}{}

			propsReply, err := s.Execute(ctx, store.QueryAction{Kind: store.ReadEdgeProperties{Edge: e}})
			if err != nil {
				return nil, err
			}
			props := propsReply.(store.ReplyProperties).Props

			inputName, _ := store.AsString(props[store.KeyInputName])
			outputName, _ := store.AsString(props[store.KeyOutputName])
			if inputName == "" && outputName == "" {
				continue
			}
			f.Edges = append(f.Edges, EdgeWire{
				From:       e.From,
				To:         e.To,
				OutputName: outputName,
				InputName:  inputName,
			})
		}
	}

	return f, nil
}

// decodeNode reads a node's reserved "command" property, if present,
// and decodes it into a FlowNode. Graph-root vertices and plain data
// nodes carry no command property and are skipped (ok=false).
func decodeNode(node store.Node) (FlowNode, bool, error) {
	raw, present := node.Properties[store.KeyCommand]
	if !present {
		return FlowNode{}, false, nil
	}

	desc, err := DecodeDescriptor(raw)
	if err != nil {
		return FlowNode{}, false, err
	}

	start := false
	if startRaw, ok := node.Properties[store.KeyStartNode]; ok {
		start, _ = store.AsBool(startRaw)
	}

	return FlowNode{ID: node.ID, Descriptor: desc, StartNode: start}, true, nil
}

// DecodeDescriptor parses a node's command property into a
// command.Descriptor. It tries strict JSON first; on failure it
// attempts kaptinlin/jsonrepair and logs the repair via telemetry
// before retrying, so a hand-authored or upstream-mangled descriptor
// still loads when it is merely malformed, not semantically wrong.
func DecodeDescriptor(raw json.RawMessage) (command.Descriptor, error) {
	var desc command.Descriptor
	if err := json.Unmarshal(raw, &desc); err == nil {
		return desc, nil
	}

	repaired, repairErr := jsonrepair.JSONRepair(string(raw))
	if repairErr != nil {
		return command.Descriptor{}, store.WrapErr(store.ErrJSON, repairErr)
	}
	telemetry.Log.Warn().Str("original", string(raw)).Msg("repaired malformed command descriptor")

	if err := json.Unmarshal([]byte(repaired), &desc); err != nil {
		return command.Descriptor{}, store.WrapErr(store.ErrJSON, err)
	}
	return desc, nil
}
