package scheduler

import (
	"github.com/dshills/fluxgraph/flow"
	"github.com/dshills/fluxgraph/store"
)

// channelWidth bounds how many unread values a fan-out sender may queue
// before blocking, keeping memory bounded if a consumer is slow.
const channelWidth = 1

// nodeTask is one node's per-tick wiring: a receiver per declared input
// name, and the set of senders each output name must fan out to.
type nodeTask struct {
	inputs  map[string]chan store.Value
	outputs map[string][]chan store.Value
}

// network is the full per-tick channel graph built from a Flow (spec
// §4.3 step 3): every edge becomes a dedicated channel from its source
// node's output to its destination node's input, and a node whose
// output feeds N edges gets N independent sender channels so no
// consumer can block another.
type network struct {
	tasks          map[store.NodeID]*nodeTask
	starterSenders []chan store.Value
}

// buildNetwork wires one channel per edge and collects a synthetic
// sender for every start node, which tick() seeds with an empty Value
// so start nodes with no inbound edge still run (spec §4.3 step 4).
func buildNetwork(f *flow.Flow) *network {
	net := &network{tasks: make(map[store.NodeID]*nodeTask, len(f.Nodes))}

	taskFor := func(id store.NodeID) *nodeTask {
		t, ok := net.tasks[id]
		if !ok {
			t = &nodeTask{
				inputs:  make(map[string]chan store.Value),
				outputs: make(map[string][]chan store.Value),
			}
			net.tasks[id] = t
		}
		return t
	}

	for id := range f.Nodes {
		taskFor(id)
	}

	for _, e := range f.Edges {
		ch := make(chan store.Value, channelWidth)
		taskFor(e.From).outputs[e.OutputName] = append(taskFor(e.From).outputs[e.OutputName], ch)
		taskFor(e.To).inputs[e.InputName] = ch
	}

	for id, node := range f.Nodes {
		if !node.StartNode {
			continue
		}
		if _, hasInbound := net.tasks[id].inputs[""]; hasInbound {
			continue
		}
		ch := make(chan store.Value, channelWidth)
		net.tasks[id].inputs[""] = ch
		net.starterSenders = append(net.starterSenders, ch)
	}

	return net
}
