package storehttp

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/dshills/fluxgraph/store"
)

func parseNodeID(s string) (store.NodeID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return store.NodeID{}, store.WrapErr(store.ErrInvalidID, err)
	}
	return store.NodeID(u), nil
}

func parseNodeIDs(ss []string) ([]store.NodeID, error) {
	ids := make([]store.NodeID, 0, len(ss))
	for _, s := range ss {
		id, err := parseNodeID(s)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseEdges(wires []edgeWire) ([]store.Edge, error) {
	edges := make([]store.Edge, 0, len(wires))
	for _, w := range wires {
		from, err := parseNodeID(w.From)
		if err != nil {
			return nil, err
		}
		typ, err := uuid.Parse(w.Type)
		if err != nil {
			return nil, store.WrapErr(store.ErrInvalidID, err)
		}
		to, err := parseNodeID(w.To)
		if err != nil {
			return nil, err
		}
		edges = append(edges, store.Edge{From: from, To: to, Type: store.EdgeType(typ)})
	}
	return edges, nil
}

func decodePropsJSON(raw json.RawMessage) (store.Properties, error) {
	if len(raw) == 0 {
		return store.Properties{}, nil
	}
	var props store.Properties
	if err := json.Unmarshal(raw, &props); err != nil {
		return nil, store.WrapErr(store.ErrJSON, err)
	}
	return props, nil
}
